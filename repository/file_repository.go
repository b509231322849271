package repository

import (
	"context"
	"fmt"
	"time"

	"driveclone/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FileChanges describes a rename and an optional move of a file record.
type FileChanges struct {
	Name      string
	Move      bool
	FolderID  *primitive.ObjectID
	UpdatedAt time.Time
}

type FileRepository struct {
	collection *mongo.Collection
}

func NewFileRepository(db *mongo.Database) *FileRepository {
	return &FileRepository{collection: db.Collection(FilesCollection)}
}

func (r *FileRepository) Create(ctx context.Context, file *models.File) error {
	if file.ID.IsZero() {
		file.ID = primitive.NewObjectID()
	}
	if _, err := r.collection.InsertOne(ctx, file); err != nil {
		return fmt.Errorf("insert file: %w", err)
	}
	return nil
}

func (r *FileRepository) FindByID(ctx context.Context, id, ownerID primitive.ObjectID) (*models.File, error) {
	var file models.File
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "owner_id": ownerID}).Decode(&file)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find file %s: %w", id.Hex(), err)
	}
	return &file, nil
}

func (r *FileRepository) ListByFolder(ctx context.Context, ownerID primitive.ObjectID, folderID *primitive.ObjectID) ([]models.File, error) {
	filter := bson.M{"owner_id": ownerID, "folder_id": folderID}
	return r.find(ctx, filter, options.Find().SetSort(newestFirst))
}

func (r *FileRepository) HasFilesInFolder(ctx context.Context, ownerID, folderID primitive.ObjectID) (bool, error) {
	count, err := r.collection.CountDocuments(ctx,
		bson.M{"owner_id": ownerID, "folder_id": folderID},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, fmt.Errorf("count files in folder: %w", err)
	}
	return count > 0, nil
}

func (r *FileRepository) Update(ctx context.Context, id, ownerID primitive.ObjectID, changes FileChanges) error {
	set := bson.M{"name": changes.Name, "updated_at": changes.UpdatedAt}
	if changes.Move {
		set["folder_id"] = changes.FolderID
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "owner_id": ownerID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update file %s: %w", id.Hex(), err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *FileRepository) Delete(ctx context.Context, id, ownerID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "owner_id": ownerID})
	if err != nil {
		return fmt.Errorf("delete file %s: %w", id.Hex(), err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Search matches text against both the display name and the uploaded name.
func (r *FileRepository) Search(ctx context.Context, ownerID primitive.ObjectID, text string, limit int64) ([]models.File, error) {
	pattern := containsPattern(text)
	filter := bson.M{
		"owner_id": ownerID,
		"$or": []bson.M{
			{"name": pattern},
			{"original_name": pattern},
		},
	}
	return r.find(ctx, filter, options.Find().SetLimit(limit))
}

func (r *FileRepository) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.File, error) {
	cursor, err := r.collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find files: %w", err)
	}
	defer cursor.Close(ctx)

	files := []models.File{}
	if err := cursor.All(ctx, &files); err != nil {
		return nil, fmt.Errorf("decode files: %w", err)
	}
	return files, nil
}
