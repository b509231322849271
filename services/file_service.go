package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"driveclone/models"
	"driveclone/repository"
	"driveclone/utils"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	msgFileNotFound         = "File not found"
	msgFileFolderNotFound   = "Folder not found"
	msgMissingRequiredField = "Missing required fields"
)

// NewFileInput is the metadata recorded after a blob has been uploaded.
type NewFileInput struct {
	Name         string
	OriginalName string
	Type         string
	Size         int64
	FolderID     *primitive.ObjectID
	URL          string
	BlobID       string
}

// FileUpdate renames a file and, when MoveFolder is set, moves it to
// FolderID (nil = root).
type FileUpdate struct {
	Name       string
	MoveFolder bool
	FolderID   *primitive.ObjectID
}

type FileService struct {
	files   FileStore
	folders folderLookup
	blobs   BlobStore
	logger  *zap.Logger
	now     func() time.Time
}

func NewFileService(files FileStore, folders folderLookup, blobs BlobStore, logger *zap.Logger) *FileService {
	return &FileService{
		files:   files,
		folders: folders,
		blobs:   blobs,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *FileService) CreateFile(ctx context.Context, in NewFileInput, ownerID primitive.ObjectID) (*models.File, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateNewFile(&in); err != nil {
		return nil, invalid(utils.ValidationMessage(err))
	}

	if in.FolderID != nil {
		if err := s.ensureFolder(ctx, *in.FolderID, ownerID); err != nil {
			return nil, err
		}
	}

	now := s.now()
	file := &models.File{
		Name:         in.Name,
		OriginalName: in.OriginalName,
		MimeType:     in.Type,
		Size:         in.Size,
		FolderID:     in.FolderID,
		OwnerID:      ownerID,
		URL:          in.URL,
		BlobID:       in.BlobID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.files.Create(ctx, file); err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}
	return file, nil
}

func validateNewFile(in *NewFileInput) error {
	required := validation.Required.Error(msgMissingRequiredField)
	return validation.ValidateStruct(in,
		validation.Field(&in.Name, required),
		validation.Field(&in.OriginalName, required),
		validation.Field(&in.Type, required),
		validation.Field(&in.Size, required, validation.Min(int64(1)).Error(msgMissingRequiredField)),
		validation.Field(&in.URL, required),
	)
}

func (s *FileService) GetFile(ctx context.Context, fileID, ownerID primitive.ObjectID) (*models.File, error) {
	file, err := s.files.FindByID(ctx, fileID, ownerID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound(msgFileNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load file: %w", err)
	}
	return file, nil
}

// ListFiles returns the files in folderID (nil = root), newest first.
func (s *FileService) ListFiles(ctx context.Context, folderID *primitive.ObjectID, ownerID primitive.ObjectID) ([]models.File, error) {
	files, err := s.files.ListByFolder(ctx, ownerID, folderID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return files, nil
}

func (s *FileService) UpdateFile(ctx context.Context, fileID primitive.ObjectID, update FileUpdate, ownerID primitive.ObjectID) (*models.File, error) {
	name := strings.TrimSpace(update.Name)
	if name == "" {
		return nil, invalid("File name is required")
	}

	file, err := s.GetFile(ctx, fileID, ownerID)
	if err != nil {
		return nil, err
	}

	if update.MoveFolder && update.FolderID != nil {
		if err := s.ensureFolder(ctx, *update.FolderID, ownerID); err != nil {
			return nil, err
		}
	}

	now := s.now()
	err = s.files.Update(ctx, fileID, ownerID, repository.FileChanges{
		Name:      name,
		Move:      update.MoveFolder,
		FolderID:  update.FolderID,
		UpdatedAt: now,
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound(msgFileNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update file: %w", err)
	}

	file.Name = name
	if update.MoveFolder {
		file.FolderID = update.FolderID
	}
	file.UpdatedAt = now
	return file, nil
}

// DeleteFile removes the record and returns it. The blob is deleted
// afterwards on a best-effort basis and a failure there is only logged.
func (s *FileService) DeleteFile(ctx context.Context, fileID, ownerID primitive.ObjectID) (*models.File, error) {
	file, err := s.GetFile(ctx, fileID, ownerID)
	if err != nil {
		return nil, err
	}

	err = s.files.Delete(ctx, fileID, ownerID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound(msgFileNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("delete file: %w", err)
	}

	if file.BlobID != "" && s.blobs != nil {
		if err := s.blobs.Delete(ctx, file.BlobID); err != nil {
			s.logger.Warn("blob delete failed, record already removed",
				zap.String("file_id", fileID.Hex()),
				zap.String("blob_id", file.BlobID),
				zap.Error(err),
			)
		}
	}
	return file, nil
}

func (s *FileService) ensureFolder(ctx context.Context, folderID, ownerID primitive.ObjectID) error {
	_, err := s.folders.FindByID(ctx, folderID, ownerID)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound(msgFileFolderNotFound)
	}
	if err != nil {
		return fmt.Errorf("load folder: %w", err)
	}
	return nil
}
