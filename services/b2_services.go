package services

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/kurin/blazer/b2"
)

// BlobStore keeps file bytes outside the document store. Objects are
// addressed by name; the name doubles as the public blob identifier.
type BlobStore interface {
	Put(ctx context.Context, objectName, contentType string, r io.Reader) (*StoredBlob, error)
	Delete(ctx context.Context, objectName string) error
}

type StoredBlob struct {
	Name string
	URL  string
	Size int64
	SHA1 string
}

type B2Service struct {
	client     *b2.Client
	bucketName string
	bucket     *b2.Bucket
	signedTTL  time.Duration
}

// NewB2Service connects to the bucket. With a positive signedTTL the returned
// URLs are signed for that long, otherwise the bucket is assumed public.
func NewB2Service(ctx context.Context, keyID, applicationKey, bucketName string, signedTTL time.Duration) (*B2Service, error) {
	client, err := b2.NewClient(ctx, keyID, applicationKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create B2 client: %w", err)
	}

	bucket, err := client.Bucket(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket %s: %w", bucketName, err)
	}

	return &B2Service{
		client:     client,
		bucketName: bucketName,
		bucket:     bucket,
		signedTTL:  signedTTL,
	}, nil
}

func (s *B2Service) Put(ctx context.Context, objectName, contentType string, r io.Reader) (*StoredBlob, error) {
	obj := s.bucket.Object(objectName)
	writer := obj.NewWriter(ctx, b2.WithAttrsOption(&b2.Attrs{ContentType: contentType}))

	// Stream straight through to B2 while hashing.
	hasher := sha1.New()
	written, err := io.Copy(io.MultiWriter(writer, hasher), r)
	if err != nil {
		writer.Close()
		return nil, fmt.Errorf("failed to upload %s to B2: %w", objectName, err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close B2 writer: %w", err)
	}

	url, err := s.objectURL(ctx, obj)
	if err != nil {
		return nil, err
	}

	return &StoredBlob{
		Name: objectName,
		URL:  url,
		Size: written,
		SHA1: hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

func (s *B2Service) objectURL(ctx context.Context, obj *b2.Object) (string, error) {
	if s.signedTTL <= 0 {
		return obj.URL(), nil
	}
	signed, err := obj.AuthURL(ctx, s.signedTTL, "")
	if err != nil {
		return "", fmt.Errorf("failed to generate signed URL: %w", err)
	}
	return signed.String(), nil
}

func (s *B2Service) Delete(ctx context.Context, objectName string) error {
	if err := s.bucket.Object(objectName).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete %s from B2: %w", objectName, err)
	}
	return nil
}
