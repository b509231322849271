package services

import (
	"context"
	"fmt"
	"strings"

	"driveclone/models"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

const searchLimit = 20

type FolderHit struct {
	models.Folder
	Type string `json:"type"`
}

type FileHit struct {
	models.File
	Type string `json:"type"`
}

type SearchResult struct {
	Folders []FolderHit `json:"folders"`
	Files   []FileHit   `json:"files"`
}

type SearchService struct {
	folders FolderStore
	files   FileStore
}

func NewSearchService(folders FolderStore, files FileStore) *SearchService {
	return &SearchService{folders: folders, files: files}
}

// Search runs a case-insensitive substring match over the caller's folder
// names and file names (display or original). Each list holds at most 20.
func (s *SearchService) Search(ctx context.Context, query string, ownerID primitive.ObjectID) (*SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, invalid("Search query is required")
	}

	var (
		folders []models.Folder
		files   []models.File
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		folders, err = s.folders.Search(gctx, ownerID, query, searchLimit)
		if err != nil {
			return fmt.Errorf("search folders: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		files, err = s.files.Search(gctx, ownerID, query, searchLimit)
		if err != nil {
			return fmt.Errorf("search files: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &SearchResult{
		Folders: lo.Map(lo.Slice(folders, 0, searchLimit), func(f models.Folder, _ int) FolderHit {
			return FolderHit{Folder: f, Type: "folder"}
		}),
		Files: lo.Map(lo.Slice(files, 0, searchLimit), func(f models.File, _ int) FileHit {
			return FileHit{File: f, Type: "file"}
		}),
	}, nil
}
