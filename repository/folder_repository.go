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

// PathUpdate replaces the materialized ancestor path of one folder.
type PathUpdate struct {
	ID   primitive.ObjectID
	Path []primitive.ObjectID
}

type FolderRepository struct {
	collection *mongo.Collection
}

func NewFolderRepository(db *mongo.Database) *FolderRepository {
	return &FolderRepository{collection: db.Collection(FoldersCollection)}
}

func (r *FolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	if folder.ID.IsZero() {
		folder.ID = primitive.NewObjectID()
	}
	if folder.Path == nil {
		folder.Path = []primitive.ObjectID{}
	}

	_, err := r.collection.InsertOne(ctx, folder)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert folder: %w", err)
	}
	return nil
}

func (r *FolderRepository) FindByID(ctx context.Context, id, ownerID primitive.ObjectID) (*models.Folder, error) {
	var folder models.Folder
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "owner_id": ownerID}).Decode(&folder)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find folder %s: %w", id.Hex(), err)
	}
	return &folder, nil
}

// FindByName looks up the sibling called name under parentID (nil = root).
func (r *FolderRepository) FindByName(ctx context.Context, ownerID primitive.ObjectID, parentID *primitive.ObjectID, name string) (*models.Folder, error) {
	var folder models.Folder
	err := r.collection.FindOne(ctx, bson.M{
		"owner_id":  ownerID,
		"parent_id": parentID,
		"name":      name,
	}).Decode(&folder)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find folder by name: %w", err)
	}
	return &folder, nil
}

func (r *FolderRepository) ListByParent(ctx context.Context, ownerID primitive.ObjectID, parentID *primitive.ObjectID) ([]models.Folder, error) {
	filter := bson.M{"owner_id": ownerID, "parent_id": parentID}
	return r.find(ctx, filter, options.Find().SetSort(newestFirst))
}

func (r *FolderRepository) HasSubfolders(ctx context.Context, ownerID, folderID primitive.ObjectID) (bool, error) {
	count, err := r.collection.CountDocuments(ctx,
		bson.M{"owner_id": ownerID, "parent_id": folderID},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, fmt.Errorf("count subfolders: %w", err)
	}
	return count > 0, nil
}

func (r *FolderRepository) Rename(ctx context.Context, id, ownerID primitive.ObjectID, name string, at time.Time) error {
	return r.updateOne(ctx, id, ownerID, bson.M{"name": name, "updated_at": at})
}

// Reparent moves a folder under parentID and stores its recomputed path.
func (r *FolderRepository) Reparent(ctx context.Context, id, ownerID primitive.ObjectID, parentID *primitive.ObjectID, path []primitive.ObjectID, at time.Time) error {
	return r.updateOne(ctx, id, ownerID, bson.M{"parent_id": parentID, "path": path, "updated_at": at})
}

func (r *FolderRepository) updateOne(ctx context.Context, id, ownerID primitive.ObjectID, set bson.M) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "owner_id": ownerID}, bson.M{"$set": set})
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("update folder %s: %w", id.Hex(), err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListDescendants returns every folder whose ancestor path contains folderID.
func (r *FolderRepository) ListDescendants(ctx context.Context, ownerID, folderID primitive.ObjectID) ([]models.Folder, error) {
	return r.find(ctx, bson.M{"owner_id": ownerID, "path": folderID})
}

func (r *FolderRepository) SetPaths(ctx context.Context, updates []PathUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	writes := make([]mongo.WriteModel, 0, len(updates))
	for _, u := range updates {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": u.ID}).
			SetUpdate(bson.M{"$set": bson.M{"path": u.Path}}))
	}

	if _, err := r.collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("bulk update folder paths: %w", err)
	}
	return nil
}

func (r *FolderRepository) Delete(ctx context.Context, id, ownerID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "owner_id": ownerID})
	if err != nil {
		return fmt.Errorf("delete folder %s: %w", id.Hex(), err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *FolderRepository) Search(ctx context.Context, ownerID primitive.ObjectID, text string, limit int64) ([]models.Folder, error) {
	filter := bson.M{"owner_id": ownerID, "name": containsPattern(text)}
	return r.find(ctx, filter, options.Find().SetLimit(limit))
}

// ForEach streams every folder in the collection to fn, stopping at the
// first error fn returns.
func (r *FolderRepository) ForEach(ctx context.Context, fn func(models.Folder) error) error {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("scan folders: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var folder models.Folder
		if err := cursor.Decode(&folder); err != nil {
			return fmt.Errorf("decode folder: %w", err)
		}
		if err := fn(folder); err != nil {
			return err
		}
	}
	return cursor.Err()
}

func (r *FolderRepository) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Folder, error) {
	cursor, err := r.collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find folders: %w", err)
	}
	defer cursor.Close(ctx)

	folders := []models.Folder{}
	if err := cursor.All(ctx, &folders); err != nil {
		return nil, fmt.Errorf("decode folders: %w", err)
	}
	return folders, nil
}
