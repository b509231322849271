package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	FoldersCollection = "folders"
	FilesCollection   = "files"
	UsersCollection   = "users"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
)

// EnsureIndexes creates the indexes the services rely on. The folder name
// index backs sibling uniqueness when two creates race.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(FoldersCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "parent_id", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("owner_parent_name_unique"),
		},
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "path", Value: 1}},
			Options: options.Index().SetName("owner_path"),
		},
	})
	if err != nil {
		return fmt.Errorf("create folder indexes: %w", err)
	}

	_, err = db.Collection(FilesCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "folder_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("owner_folder_created"),
		},
	})
	if err != nil {
		return fmt.Errorf("create file indexes: %w", err)
	}

	_, err = db.Collection(UsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}

// containsPattern builds a case-insensitive regex that matches text literally.
func containsPattern(text string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(text), Options: "i"}
}

var newestFirst = bson.D{{Key: "created_at", Value: -1}}
