package services

import (
	"context"
	"errors"
	"slices"
	"time"

	"driveclone/models"
	"driveclone/repository"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// PathService builds breadcrumbs by walking parent links. Lookups go through
// the folder cache first when one is configured.
type PathService struct {
	folders     folderLookup
	cache       FolderCache
	group       singleflight.Group
	walkTimeout time.Duration
	logger      *zap.Logger
}

const defaultWalkTimeout = 10 * time.Second

func NewPathService(folders folderLookup, cache FolderCache, logger *zap.Logger) *PathService {
	if cache == nil {
		cache = NopFolderCache{}
	}
	return &PathService{folders: folders, cache: cache, walkTimeout: defaultWalkTimeout, logger: logger}
}

// Resolve returns the root-first chain ending at folderID. The walk stops
// quietly at the first folder it cannot load, so a dangling parent yields a
// shorter breadcrumb instead of an error. An unknown folderID yields an
// empty slice.
//
// Concurrent calls for the same folder share one walk. The shared walk does
// not inherit any single caller's cancellation, and a caller whose ctx ends
// first gets an empty slice without waiting.
func (s *PathService) Resolve(ctx context.Context, folderID, ownerID primitive.ObjectID) []models.PathItem {
	key := ownerID.Hex() + ":" + folderID.Hex()
	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (interface{}, error) {
		walkCtx, cancel := context.WithTimeout(shared, s.walkTimeout)
		defer cancel()
		return s.walk(walkCtx, folderID, ownerID), nil
	})

	select {
	case res := <-ch:
		return slices.Clone(res.Val.([]models.PathItem))
	case <-ctx.Done():
		return []models.PathItem{}
	}
}

func (s *PathService) walk(ctx context.Context, folderID, ownerID primitive.ObjectID) []models.PathItem {
	items := []models.PathItem{}
	visited := make(map[primitive.ObjectID]bool)

	current := &folderID
	for current != nil && !visited[*current] {
		visited[*current] = true

		folder, err := s.load(ctx, *current, ownerID)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				s.logger.Warn("path walk stopped early",
					zap.String("folder_id", current.Hex()),
					zap.Error(err),
				)
			}
			break
		}

		items = append(items, models.PathItem{ID: folder.ID, Name: folder.Name})
		current = folder.ParentID
	}

	return lo.Reverse(items)
}

func (s *PathService) load(ctx context.Context, folderID, ownerID primitive.ObjectID) (*models.Folder, error) {
	cached, err := s.cache.Get(ctx, folderID)
	switch {
	case err == nil && cached.OwnerID == ownerID:
		return cached, nil
	case err != nil && !errors.Is(err, ErrCacheMiss):
		s.logger.Warn("folder cache read failed", zap.String("folder_id", folderID.Hex()), zap.Error(err))
	}

	folder, err := s.folders.FindByID(ctx, folderID, ownerID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, folder); err != nil {
		s.logger.Warn("folder cache write failed", zap.String("folder_id", folderID.Hex()), zap.Error(err))
	}
	return folder, nil
}

// Forget drops cached copies of the given folders after they change.
func (s *PathService) Forget(ctx context.Context, folderIDs ...primitive.ObjectID) {
	if len(folderIDs) == 0 {
		return
	}
	if err := s.cache.Delete(ctx, folderIDs...); err != nil {
		s.logger.Warn("folder cache invalidation failed", zap.Int("folders", len(folderIDs)), zap.Error(err))
	}
}
