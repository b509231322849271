package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"driveclone/models"
	"driveclone/repository"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	msgFolderNotFound  = "Folder not found"
	msgParentNotFound  = "Parent folder not found"
	msgFolderNotEmpty  = "Cannot delete folder that contains files or subfolders"
	msgFolderNameTaken = "A folder with this name already exists"
)

// FolderDetails is a folder together with its breadcrumb.
type FolderDetails struct {
	Folder *models.Folder    `json:"folder"`
	Path   []models.PathItem `json:"path"`
}

type FolderService struct {
	folders FolderStore
	files   FileStore
	paths   *PathService
	logger  *zap.Logger
	now     func() time.Time
}

func NewFolderService(folders FolderStore, files FileStore, paths *PathService, logger *zap.Logger) *FolderService {
	return &FolderService{
		folders: folders,
		files:   files,
		paths:   paths,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// CreateFolder creates name under parentID, or at the root when parentID is nil.
func (s *FolderService) CreateFolder(ctx context.Context, name string, parentID *primitive.ObjectID, ownerID primitive.ObjectID) (*models.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("Folder name is required")
	}

	path := []primitive.ObjectID{}
	if parentID != nil {
		parent, err := s.folders.FindByID(ctx, *parentID, ownerID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound(msgParentNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("load parent folder: %w", err)
		}
		path = append(slices.Clone(parent.Path), parent.ID)
	}

	if err := s.ensureNameAvailable(ctx, ownerID, parentID, name, primitive.NilObjectID); err != nil {
		return nil, err
	}

	now := s.now()
	folder := &models.Folder{
		Name:      name,
		ParentID:  parentID,
		OwnerID:   ownerID,
		Path:      path,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.folders.Create(ctx, folder)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, folderNameTaken()
	}
	if err != nil {
		return nil, fmt.Errorf("create folder: %w", err)
	}

	s.logger.Debug("folder created",
		zap.String("folder_id", folder.ID.Hex()),
		zap.String("owner_id", ownerID.Hex()),
		zap.Int("depth", len(path)),
	)
	return folder, nil
}

// RenameFolder changes the name only; the stored ancestor path is untouched.
func (s *FolderService) RenameFolder(ctx context.Context, folderID primitive.ObjectID, newName string, ownerID primitive.ObjectID) (*models.Folder, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, invalid("Folder name is required")
	}

	folder, err := s.getOwned(ctx, folderID, ownerID)
	if err != nil {
		return nil, err
	}

	if err := s.ensureNameAvailable(ctx, ownerID, folder.ParentID, newName, folder.ID); err != nil {
		return nil, err
	}

	now := s.now()
	switch err := s.folders.Rename(ctx, folderID, ownerID, newName, now); {
	case errors.Is(err, repository.ErrDuplicate):
		return nil, folderNameTaken()
	case errors.Is(err, repository.ErrNotFound):
		return nil, notFound(msgFolderNotFound)
	case err != nil:
		return nil, fmt.Errorf("rename folder: %w", err)
	}

	s.paths.Forget(ctx, folderID)

	folder.Name = newName
	folder.UpdatedAt = now
	return folder, nil
}

// DeleteFolder removes an empty folder. The emptiness check and the delete
// are separate round trips, so a concurrent insert can still slip in between.
func (s *FolderService) DeleteFolder(ctx context.Context, folderID, ownerID primitive.ObjectID) error {
	if _, err := s.getOwned(ctx, folderID, ownerID); err != nil {
		return err
	}

	hasFolders, err := s.folders.HasSubfolders(ctx, ownerID, folderID)
	if err != nil {
		return fmt.Errorf("check subfolders: %w", err)
	}
	hasFiles, err := s.files.HasFilesInFolder(ctx, ownerID, folderID)
	if err != nil {
		return fmt.Errorf("check files: %w", err)
	}
	if hasFolders || hasFiles {
		return invalid(msgFolderNotEmpty)
	}

	err = s.folders.Delete(ctx, folderID, ownerID)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound(msgFolderNotFound)
	}
	if err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}

	s.paths.Forget(ctx, folderID)
	return nil
}

// ListFolders returns the children of parentID, newest first. A nil parentID
// lists the root.
func (s *FolderService) ListFolders(ctx context.Context, parentID *primitive.ObjectID, ownerID primitive.ObjectID) ([]models.Folder, error) {
	folders, err := s.folders.ListByParent(ctx, ownerID, parentID)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	return folders, nil
}

func (s *FolderService) GetFolder(ctx context.Context, folderID, ownerID primitive.ObjectID) (*FolderDetails, error) {
	folder, err := s.getOwned(ctx, folderID, ownerID)
	if err != nil {
		return nil, err
	}

	return &FolderDetails{
		Folder: folder,
		Path:   s.paths.Resolve(ctx, folderID, ownerID),
	}, nil
}

// MoveFolder reparents a folder and rewrites the ancestor path of the folder
// and of everything below it. A nil newParentID moves it to the root.
func (s *FolderService) MoveFolder(ctx context.Context, folderID primitive.ObjectID, newParentID *primitive.ObjectID, ownerID primitive.ObjectID) (*models.Folder, error) {
	folder, err := s.getOwned(ctx, folderID, ownerID)
	if err != nil {
		return nil, err
	}

	newPath := []primitive.ObjectID{}
	if newParentID != nil {
		if *newParentID == folderID {
			return nil, invalid("A folder cannot be moved into itself")
		}
		target, err := s.folders.FindByID(ctx, *newParentID, ownerID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("Target folder not found")
		}
		if err != nil {
			return nil, fmt.Errorf("load target folder: %w", err)
		}
		ancestors, err := s.parentChain(ctx, target)
		if err != nil {
			return nil, err
		}
		if lo.Contains(ancestors, folderID) {
			return nil, invalid("A folder cannot be moved into one of its subfolders")
		}
		newPath = append(ancestors, target.ID)
	}

	if sameParent(folder.ParentID, newParentID) {
		return folder, nil
	}

	if err := s.ensureNameAvailable(ctx, ownerID, newParentID, folder.Name, folder.ID); err != nil {
		return nil, err
	}

	descendants, err := s.folders.ListDescendants(ctx, ownerID, folderID)
	if err != nil {
		return nil, fmt.Errorf("list descendants: %w", err)
	}

	now := s.now()
	switch err := s.folders.Reparent(ctx, folderID, ownerID, newParentID, newPath, now); {
	case errors.Is(err, repository.ErrDuplicate):
		return nil, folderNameTaken()
	case errors.Is(err, repository.ErrNotFound):
		return nil, notFound(msgFolderNotFound)
	case err != nil:
		return nil, fmt.Errorf("reparent folder: %w", err)
	}

	prefix := append(slices.Clone(newPath), folderID)
	updates := lo.FilterMap(descendants, func(d models.Folder, _ int) (repository.PathUpdate, bool) {
		idx := slices.Index(d.Path, folderID)
		if idx < 0 {
			return repository.PathUpdate{}, false
		}
		return repository.PathUpdate{
			ID:   d.ID,
			Path: append(slices.Clone(prefix), d.Path[idx+1:]...),
		}, true
	})
	if err := s.folders.SetPaths(ctx, updates); err != nil {
		return nil, fmt.Errorf("rewrite descendant paths: %w", err)
	}

	s.paths.Forget(ctx, append(lo.Map(descendants, func(d models.Folder, _ int) primitive.ObjectID {
		return d.ID
	}), folderID)...)

	s.logger.Info("folder moved",
		zap.String("folder_id", folderID.Hex()),
		zap.Int("descendants", len(updates)),
	)

	folder.ParentID = newParentID
	folder.Path = newPath
	folder.UpdatedAt = now
	return folder, nil
}

// ReconcilePaths recomputes every folder's ancestor path from its parent
// links and rewrites the ones that drifted. Folders whose chain is broken
// are left alone. It returns the number of folders repaired.
func (s *FolderService) ReconcilePaths(ctx context.Context) (int, error) {
	memo := make(map[primitive.ObjectID][]primitive.ObjectID)
	var updates []repository.PathUpdate

	err := s.folders.ForEach(ctx, func(folder models.Folder) error {
		expected, ok, err := s.ancestorPath(ctx, &folder, memo, make(map[primitive.ObjectID]bool))
		if err != nil {
			return err
		}
		if !ok {
			s.logger.Warn("folder has a broken parent chain",
				zap.String("folder_id", folder.ID.Hex()),
				zap.String("owner_id", folder.OwnerID.Hex()),
			)
			return nil
		}
		if !slices.Equal(expected, folder.Path) {
			updates = append(updates, repository.PathUpdate{ID: folder.ID, Path: expected})
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan folders: %w", err)
	}

	if err := s.folders.SetPaths(ctx, updates); err != nil {
		return 0, err
	}
	return len(updates), nil
}

func (s *FolderService) ancestorPath(ctx context.Context, folder *models.Folder, memo map[primitive.ObjectID][]primitive.ObjectID, visiting map[primitive.ObjectID]bool) ([]primitive.ObjectID, bool, error) {
	if folder.ParentID == nil {
		return []primitive.ObjectID{}, true, nil
	}
	if path, ok := memo[folder.ID]; ok {
		return path, true, nil
	}
	if visiting[folder.ID] {
		return nil, false, nil
	}
	visiting[folder.ID] = true

	parent, err := s.folders.FindByID(ctx, *folder.ParentID, folder.OwnerID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load parent %s: %w", folder.ParentID.Hex(), err)
	}

	parentPath, ok, err := s.ancestorPath(ctx, parent, memo, visiting)
	if err != nil || !ok {
		return nil, ok, err
	}

	path := append(slices.Clone(parentPath), parent.ID)
	memo[folder.ID] = path
	return path, true, nil
}

// parentChain follows parent links up from folder and returns its ancestors
// root first. The stored path is not consulted. The walk stops at a missing
// parent or a repeated folder.
func (s *FolderService) parentChain(ctx context.Context, folder *models.Folder) ([]primitive.ObjectID, error) {
	chain := []primitive.ObjectID{}
	seen := map[primitive.ObjectID]bool{folder.ID: true}

	for parentID := folder.ParentID; parentID != nil && !seen[*parentID]; {
		seen[*parentID] = true

		parent, err := s.folders.FindByID(ctx, *parentID, folder.OwnerID)
		if errors.Is(err, repository.ErrNotFound) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("load parent %s: %w", parentID.Hex(), err)
		}
		chain = append(chain, parent.ID)
		parentID = parent.ParentID
	}

	return lo.Reverse(chain), nil
}

func (s *FolderService) getOwned(ctx context.Context, folderID, ownerID primitive.ObjectID) (*models.Folder, error) {
	folder, err := s.folders.FindByID(ctx, folderID, ownerID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound(msgFolderNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load folder: %w", err)
	}
	return folder, nil
}

// ensureNameAvailable fails when a sibling other than self already uses name.
func (s *FolderService) ensureNameAvailable(ctx context.Context, ownerID primitive.ObjectID, parentID *primitive.ObjectID, name string, self primitive.ObjectID) error {
	existing, err := s.folders.FindByName(ctx, ownerID, parentID, name)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("check folder name: %w", err)
	}
	if existing.ID == self {
		return nil
	}
	return &ConflictError{
		Message:      msgFolderNameTaken,
		ResourceType: "folder",
		ResourceID:   existing.ID.Hex(),
	}
}

// folderNameTaken reports a clash caught by the unique index rather than by
// the lookup, so the clashing folder's id is unknown.
func folderNameTaken() error {
	return &ConflictError{Message: msgFolderNameTaken, ResourceType: "folder"}
}

func sameParent(a, b *primitive.ObjectID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
