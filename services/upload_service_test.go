package services

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestUpload(t *testing.T) {
	ctx := context.Background()
	owner := primitive.NewObjectID()

	t.Run("stores under the owner prefix", func(t *testing.T) {
		blobs := newMemBlobs()
		svc := NewUploadService(blobs, 1<<20, zap.NewNop())

		body := []byte("%PDF-1.4 hello")
		blob, err := svc.Upload(ctx, bytes.NewReader(body), "Report.PDF", int64(len(body)), "application/pdf", owner)
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(blob.PublicID, "driveClone/"+owner.Hex()+"/"))
		assert.True(t, strings.HasSuffix(blob.PublicID, ".pdf"))
		assert.Equal(t, "https://blobs.test/"+blob.PublicID, blob.URL)
		assert.Equal(t, "Report.PDF", blob.OriginalName)
		assert.Equal(t, int64(len(body)), blob.Size)
		assert.Equal(t, "application/pdf", blob.Type)
		assert.Equal(t, body, blobs.objects[blob.PublicID])
	})

	t.Run("logs the content hash", func(t *testing.T) {
		core, logs := observer.New(zap.InfoLevel)
		svc := NewUploadService(newMemBlobs(), 1<<20, zap.New(core))

		_, err := svc.Upload(ctx, strings.NewReader("hello"), "hello.txt", 5, "text/plain", owner)
		require.NoError(t, err)

		entries := logs.FilterMessage("file uploaded").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d", entries[0].ContextMap()["sha1"])
	})

	t.Run("sniffs a missing content type", func(t *testing.T) {
		blobs := newMemBlobs()
		svc := NewUploadService(blobs, 1<<20, zap.NewNop())

		blob, err := svc.Upload(ctx, bytes.NewReader(pngHeader), "pixel.png", int64(len(pngHeader)), "application/octet-stream", owner)
		require.NoError(t, err)
		assert.Equal(t, "image/png", blob.Type)
		assert.Equal(t, "image/png", blobs.types[blob.PublicID])
		assert.Equal(t, pngHeader, blobs.objects[blob.PublicID], "sniffing must not eat the leading bytes")
	})

	t.Run("declared size over the limit", func(t *testing.T) {
		blobs := newMemBlobs()
		svc := NewUploadService(blobs, 8, zap.NewNop())

		_, err := svc.Upload(ctx, bytes.NewReader(make([]byte, 16)), "big.bin", 16, "application/zip", owner)
		require.Error(t, err)

		var tooLarge *TooLargeError
		require.ErrorAs(t, err, &tooLarge)
		assert.Equal(t, int64(8), tooLarge.Limit)
		assert.Empty(t, blobs.objects)
	})

	t.Run("understated size is caught after streaming", func(t *testing.T) {
		blobs := newMemBlobs()
		svc := NewUploadService(blobs, 8, zap.NewNop())

		_, err := svc.Upload(ctx, bytes.NewReader(make([]byte, 64)), "big.bin", 4, "application/zip", owner)
		var tooLarge *TooLargeError
		require.ErrorAs(t, err, &tooLarge)
		assert.Len(t, blobs.deleted, 1)
		assert.Empty(t, blobs.objects)
	})

	t.Run("no file name", func(t *testing.T) {
		svc := NewUploadService(newMemBlobs(), 1<<20, zap.NewNop())

		_, err := svc.Upload(ctx, bytes.NewReader([]byte("x")), "", 1, "text/plain", owner)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("blob storage disabled", func(t *testing.T) {
		svc := NewUploadService(nil, 1<<20, zap.NewNop())

		_, err := svc.Upload(ctx, bytes.NewReader([]byte("x")), "a.txt", 1, "text/plain", owner)
		assert.ErrorIs(t, err, errBlobStoreDisabled)
	})
}

func TestNewUploadServiceDefaultsLimit(t *testing.T) {
	svc := NewUploadService(nil, 0, zap.NewNop())
	assert.Equal(t, int64(DefaultMaxUploadSize), svc.MaxSize())
}

func TestTooLargeErrorMessage(t *testing.T) {
	err := &TooLargeError{Limit: 50 << 20}
	assert.Equal(t, "File exceeds the 50 MB upload limit", err.Error())
	assert.Equal(t, 413, err.StatusCode())
}
