package services

import (
	"context"
	"time"

	"driveclone/models"
	"driveclone/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FolderStore is the persistence surface of the folder hierarchy.
// *repository.FolderRepository satisfies it.
type FolderStore interface {
	Create(ctx context.Context, folder *models.Folder) error
	FindByID(ctx context.Context, id, ownerID primitive.ObjectID) (*models.Folder, error)
	FindByName(ctx context.Context, ownerID primitive.ObjectID, parentID *primitive.ObjectID, name string) (*models.Folder, error)
	ListByParent(ctx context.Context, ownerID primitive.ObjectID, parentID *primitive.ObjectID) ([]models.Folder, error)
	HasSubfolders(ctx context.Context, ownerID, folderID primitive.ObjectID) (bool, error)
	Rename(ctx context.Context, id, ownerID primitive.ObjectID, name string, at time.Time) error
	Reparent(ctx context.Context, id, ownerID primitive.ObjectID, parentID *primitive.ObjectID, path []primitive.ObjectID, at time.Time) error
	ListDescendants(ctx context.Context, ownerID, folderID primitive.ObjectID) ([]models.Folder, error)
	SetPaths(ctx context.Context, updates []repository.PathUpdate) error
	Delete(ctx context.Context, id, ownerID primitive.ObjectID) error
	Search(ctx context.Context, ownerID primitive.ObjectID, text string, limit int64) ([]models.Folder, error)
	ForEach(ctx context.Context, fn func(models.Folder) error) error
}

type FileStore interface {
	Create(ctx context.Context, file *models.File) error
	FindByID(ctx context.Context, id, ownerID primitive.ObjectID) (*models.File, error)
	ListByFolder(ctx context.Context, ownerID primitive.ObjectID, folderID *primitive.ObjectID) ([]models.File, error)
	HasFilesInFolder(ctx context.Context, ownerID, folderID primitive.ObjectID) (bool, error)
	Update(ctx context.Context, id, ownerID primitive.ObjectID, changes repository.FileChanges) error
	Delete(ctx context.Context, id, ownerID primitive.ObjectID) error
	Search(ctx context.Context, ownerID primitive.ObjectID, text string, limit int64) ([]models.File, error)
}

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// folderLookup is the slice of FolderStore the path resolver needs.
type folderLookup interface {
	FindByID(ctx context.Context, id, ownerID primitive.ObjectID) (*models.Folder, error)
}

var (
	_ FolderStore = (*repository.FolderRepository)(nil)
	_ FileStore   = (*repository.FileRepository)(nil)
	_ UserStore   = (*repository.UserRepository)(nil)
)
