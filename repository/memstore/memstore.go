// Package memstore keeps folders, files and users in process memory. It
// mirrors the MongoDB repositories closely enough to stand in for them in
// tests: owner scoping, sibling name uniqueness and newest-first listings.
package memstore

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"driveclone/models"
	"driveclone/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func sameID(a, b *primitive.ObjectID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func cloneFolder(f models.Folder) models.Folder {
	f.Path = slices.Clone(f.Path)
	if f.ParentID != nil {
		p := *f.ParentID
		f.ParentID = &p
	}
	return f
}

type Folders struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]models.Folder

	// Err, when set, is returned by Create and FindByID.
	Err error
}

func NewFolders() *Folders {
	return &Folders{items: make(map[primitive.ObjectID]models.Folder)}
}

func (m *Folders) Create(_ context.Context, folder *models.Folder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}

	if m.clashes(primitive.NilObjectID, folder) {
		return repository.ErrDuplicate
	}
	if folder.ID.IsZero() {
		folder.ID = primitive.NewObjectID()
	}
	if folder.Path == nil {
		folder.Path = []primitive.ObjectID{}
	}
	m.items[folder.ID] = cloneFolder(*folder)
	return nil
}

func (m *Folders) FindByID(_ context.Context, id, ownerID primitive.ObjectID) (*models.Folder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	f, ok := m.items[id]
	if !ok || f.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	f = cloneFolder(f)
	return &f, nil
}

func (m *Folders) FindByName(_ context.Context, ownerID primitive.ObjectID, parentID *primitive.ObjectID, name string) (*models.Folder, error) {
	found := m.filter(func(f models.Folder) bool {
		return f.OwnerID == ownerID && sameID(f.ParentID, parentID) && f.Name == name
	}, false)
	if len(found) == 0 {
		return nil, repository.ErrNotFound
	}
	return &found[0], nil
}

func (m *Folders) ListByParent(_ context.Context, ownerID primitive.ObjectID, parentID *primitive.ObjectID) ([]models.Folder, error) {
	return m.filter(func(f models.Folder) bool {
		return f.OwnerID == ownerID && sameID(f.ParentID, parentID)
	}, true), nil
}

func (m *Folders) HasSubfolders(_ context.Context, ownerID, folderID primitive.ObjectID) (bool, error) {
	children := m.filter(func(f models.Folder) bool {
		return f.OwnerID == ownerID && f.ParentID != nil && *f.ParentID == folderID
	}, false)
	return len(children) > 0, nil
}

func (m *Folders) Rename(_ context.Context, id, ownerID primitive.ObjectID, name string, at time.Time) error {
	return m.update(id, ownerID, func(f *models.Folder) {
		f.Name = name
		f.UpdatedAt = at
	})
}

func (m *Folders) Reparent(_ context.Context, id, ownerID primitive.ObjectID, parentID *primitive.ObjectID, path []primitive.ObjectID, at time.Time) error {
	return m.update(id, ownerID, func(f *models.Folder) {
		f.ParentID = parentID
		f.Path = slices.Clone(path)
		f.UpdatedAt = at
	})
}

func (m *Folders) update(id, ownerID primitive.ObjectID, apply func(*models.Folder)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.items[id]
	if !ok || f.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	f = cloneFolder(f)
	apply(&f)
	if m.clashes(id, &f) {
		return repository.ErrDuplicate
	}
	m.items[id] = f
	return nil
}

// clashes reports whether a folder other than self already holds folder's
// (owner, parent, name) slot. Callers hold mu.
func (m *Folders) clashes(self primitive.ObjectID, folder *models.Folder) bool {
	for id, other := range m.items {
		if id != self && other.OwnerID == folder.OwnerID && sameID(other.ParentID, folder.ParentID) && other.Name == folder.Name {
			return true
		}
	}
	return false
}

func (m *Folders) ListDescendants(_ context.Context, ownerID, folderID primitive.ObjectID) ([]models.Folder, error) {
	return m.filter(func(f models.Folder) bool {
		return f.OwnerID == ownerID && slices.Contains(f.Path, folderID)
	}, false), nil
}

func (m *Folders) SetPaths(_ context.Context, updates []repository.PathUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range updates {
		if f, ok := m.items[u.ID]; ok {
			f.Path = slices.Clone(u.Path)
			m.items[u.ID] = f
		}
	}
	return nil
}

func (m *Folders) Delete(_ context.Context, id, ownerID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.items[id]
	if !ok || f.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *Folders) Search(_ context.Context, ownerID primitive.ObjectID, text string, limit int64) ([]models.Folder, error) {
	needle := strings.ToLower(text)
	found := m.filter(func(f models.Folder) bool {
		return f.OwnerID == ownerID && strings.Contains(strings.ToLower(f.Name), needle)
	}, false)
	if int64(len(found)) > limit {
		found = found[:limit]
	}
	return found, nil
}

// ForEach walks a snapshot, so fn may call back into the store.
func (m *Folders) ForEach(_ context.Context, fn func(models.Folder) error) error {
	for _, f := range m.filter(func(models.Folder) bool { return true }, false) {
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

// Put stores f as given, skipping every check.
func (m *Folders) Put(f models.Folder) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[f.ID] = cloneFolder(f)
}

// Get returns the stored copy of id, or a zero Folder.
func (m *Folders) Get(id primitive.ObjectID) models.Folder {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneFolder(m.items[id])
}

func (m *Folders) filter(keep func(models.Folder) bool, newestFirst bool) []models.Folder {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []models.Folder{}
	for _, f := range m.items {
		if keep(f) {
			out = append(out, cloneFolder(f))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if newestFirst && !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() < out[j].ID.Hex()
	})
	return out
}

type Files struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]models.File
}

func NewFiles() *Files {
	return &Files{items: make(map[primitive.ObjectID]models.File)}
}

func (m *Files) Create(_ context.Context, file *models.File) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if file.ID.IsZero() {
		file.ID = primitive.NewObjectID()
	}
	m.items[file.ID] = *file
	return nil
}

func (m *Files) FindByID(_ context.Context, id, ownerID primitive.ObjectID) (*models.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.items[id]
	if !ok || f.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	return &f, nil
}

func (m *Files) ListByFolder(_ context.Context, ownerID primitive.ObjectID, folderID *primitive.ObjectID) ([]models.File, error) {
	return m.filter(func(f models.File) bool {
		return f.OwnerID == ownerID && sameID(f.FolderID, folderID)
	}), nil
}

func (m *Files) HasFilesInFolder(_ context.Context, ownerID, folderID primitive.ObjectID) (bool, error) {
	found := m.filter(func(f models.File) bool {
		return f.OwnerID == ownerID && f.FolderID != nil && *f.FolderID == folderID
	})
	return len(found) > 0, nil
}

func (m *Files) Update(_ context.Context, id, ownerID primitive.ObjectID, changes repository.FileChanges) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.items[id]
	if !ok || f.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	f.Name = changes.Name
	if changes.Move {
		f.FolderID = changes.FolderID
	}
	f.UpdatedAt = changes.UpdatedAt
	m.items[id] = f
	return nil
}

func (m *Files) Delete(_ context.Context, id, ownerID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.items[id]
	if !ok || f.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *Files) Search(_ context.Context, ownerID primitive.ObjectID, text string, limit int64) ([]models.File, error) {
	needle := strings.ToLower(text)
	found := m.filter(func(f models.File) bool {
		return f.OwnerID == ownerID &&
			(strings.Contains(strings.ToLower(f.Name), needle) || strings.Contains(strings.ToLower(f.OriginalName), needle))
	})
	if int64(len(found)) > limit {
		found = found[:limit]
	}
	return found, nil
}

func (m *Files) filter(keep func(models.File) bool) []models.File {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []models.File{}
	for _, f := range m.items {
		if keep(f) {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() < out[j].ID.Hex()
	})
	return out
}

type Users struct {
	mu      sync.Mutex
	byEmail map[string]models.User
}

func NewUsers() *Users {
	return &Users{byEmail: make(map[string]models.User)}
}

func (m *Users) Create(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user.Email = strings.ToLower(user.Email)
	if _, ok := m.byEmail[user.Email]; ok {
		return repository.ErrDuplicate
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	m.byEmail[user.Email] = *user
	return nil
}

func (m *Users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}
