package services

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"driveclone/models"
	"driveclone/repository/memstore"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	_ FolderStore = (*memstore.Folders)(nil)
	_ FileStore   = (*memstore.Files)(nil)
	_ UserStore   = (*memstore.Users)(nil)
	_ BlobStore   = (*memBlobs)(nil)
)

type memBlobs struct {
	mu        sync.Mutex
	objects   map[string][]byte
	types     map[string]string
	deleted   []string
	deleteErr error
}

func newMemBlobs() *memBlobs {
	return &memBlobs{objects: make(map[string][]byte), types: make(map[string]string)}
}

func (m *memBlobs) Put(_ context.Context, objectName, contentType string, r io.Reader) (*StoredBlob, error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, r)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[objectName] = buf.Bytes()
	m.types[objectName] = contentType
	sum := sha1.Sum(buf.Bytes())
	return &StoredBlob{
		Name: objectName,
		URL:  "https://blobs.test/" + objectName,
		Size: n,
		SHA1: hex.EncodeToString(sum[:]),
	}, nil
}

func (m *memBlobs) Delete(_ context.Context, objectName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deleted = append(m.deleted, objectName)
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.objects, objectName)
	return nil
}

// countingLookup counts store round trips made by the path resolver.
type countingLookup struct {
	next  folderLookup
	calls atomic.Int32
	delay time.Duration
}

func (c *countingLookup) FindByID(ctx context.Context, id, ownerID primitive.ObjectID) (*models.Folder, error) {
	c.calls.Add(1)
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	return c.next.FindByID(ctx, id, ownerID)
}

var errStoreDown = errors.New("store unavailable")

// fixture wires the folder, file and path services over in-memory stores.
type fixture struct {
	folders *memstore.Folders
	files   *memstore.Files
	blobs   *memBlobs

	paths      *PathService
	folderSvc  *FolderService
	fileSvc    *FileService
	searchSvc  *SearchService
	owner      primitive.ObjectID
	otherOwner primitive.ObjectID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := zap.NewNop()
	folders := memstore.NewFolders()
	files := memstore.NewFiles()
	blobs := newMemBlobs()
	paths := NewPathService(folders, nil, logger)

	f := &fixture{
		folders:    folders,
		files:      files,
		blobs:      blobs,
		paths:      paths,
		folderSvc:  NewFolderService(folders, files, paths, logger),
		fileSvc:    NewFileService(files, folders, blobs, logger),
		searchSvc:  NewSearchService(folders, files),
		owner:      primitive.NewObjectID(),
		otherOwner: primitive.NewObjectID(),
	}

	clock := steppingClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	f.folderSvc.now = clock
	f.fileSvc.now = clock
	return f
}

// steppingClock returns a clock that advances one second per call, so
// creation order is visible in newest-first listings.
func steppingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	current := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	}
}

func (f *fixture) mkdir(t *testing.T, name string, parent *models.Folder) *models.Folder {
	t.Helper()

	var parentID *primitive.ObjectID
	if parent != nil {
		parentID = &parent.ID
	}
	folder, err := f.folderSvc.CreateFolder(context.Background(), name, parentID, f.owner)
	if err != nil {
		t.Fatalf("create folder %q: %v", name, err)
	}
	return folder
}

func (f *fixture) addFile(t *testing.T, name string, folder *models.Folder) *models.File {
	t.Helper()

	var folderID *primitive.ObjectID
	if folder != nil {
		folderID = &folder.ID
	}
	file, err := f.fileSvc.CreateFile(context.Background(), NewFileInput{
		Name:         name,
		OriginalName: name,
		Type:         "application/pdf",
		Size:         1024,
		FolderID:     folderID,
		URL:          "https://blobs.test/" + name,
		BlobID:       "driveClone/" + name,
	}, f.owner)
	if err != nil {
		t.Fatalf("create file %q: %v", name, err)
	}
	return file
}

func pathNames(items []models.PathItem) []string {
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name)
	}
	return names
}
