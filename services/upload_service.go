package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	DefaultMaxUploadSize = 50 << 20
	uploadFolder         = "driveClone"
	genericContentType   = "application/octet-stream"
)

var errBlobStoreDisabled = errors.New("blob storage is not configured")

// UploadedBlob is what the client needs to register the file afterwards.
type UploadedBlob struct {
	URL          string `json:"url"`
	PublicID     string `json:"publicId"`
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size"`
	Type         string `json:"type"`
}

// UploadSource is an uploaded form part. multipart.File satisfies it.
type UploadSource interface {
	io.Reader
	io.Seeker
}

type UploadService struct {
	blobs   BlobStore
	maxSize int64
	logger  *zap.Logger
}

func NewUploadService(blobs BlobStore, maxSize int64, logger *zap.Logger) *UploadService {
	if maxSize <= 0 {
		maxSize = DefaultMaxUploadSize
	}
	return &UploadService{blobs: blobs, maxSize: maxSize, logger: logger}
}

func (s *UploadService) MaxSize() int64 {
	return s.maxSize
}

// Upload stores src under driveClone/<owner>/<uuid><ext>.
func (s *UploadService) Upload(ctx context.Context, src UploadSource, filename string, size int64, contentType string, ownerID primitive.ObjectID) (*UploadedBlob, error) {
	if s.blobs == nil {
		return nil, errBlobStoreDisabled
	}
	if filename == "" {
		return nil, invalid("No file provided")
	}
	if size > s.maxSize {
		return nil, &TooLargeError{Limit: s.maxSize}
	}

	contentType, err := s.resolveContentType(src, contentType)
	if err != nil {
		return nil, err
	}

	objectName := fmt.Sprintf("%s/%s/%s%s",
		uploadFolder, ownerID.Hex(), uuid.NewString(), strings.ToLower(filepath.Ext(filename)))

	blob, err := s.blobs.Put(ctx, objectName, contentType, io.LimitReader(src, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}
	if blob.Size > s.maxSize {
		if err := s.blobs.Delete(ctx, blob.Name); err != nil {
			s.logger.Warn("oversized upload left behind", zap.String("blob_id", blob.Name), zap.Error(err))
		}
		return nil, &TooLargeError{Limit: s.maxSize}
	}

	s.logger.Info("file uploaded",
		zap.String("owner_id", ownerID.Hex()),
		zap.String("blob_id", blob.Name),
		zap.Int64("size", blob.Size),
		zap.String("sha1", blob.SHA1),
	)

	return &UploadedBlob{
		URL:          blob.URL,
		PublicID:     blob.Name,
		OriginalName: filename,
		Size:         blob.Size,
		Type:         contentType,
	}, nil
}

// resolveContentType sniffs the leading bytes when the client sent no
// usable type, then rewinds src.
func (s *UploadService) resolveContentType(src UploadSource, declared string) (string, error) {
	if declared != "" && declared != genericContentType {
		return declared, nil
	}

	detected, err := mimetype.DetectReader(src)
	if err != nil {
		return "", fmt.Errorf("detect content type: %w", err)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}
	return detected.String(), nil
}
