package services

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockStorageService is an in-memory implementation of StorageInterface for testing
type MockStorageService struct {
	mu     sync.RWMutex
	files  map[string]*mockStoredFile // by file ID
	nextID int

	// Error injection
	UploadErr error
	MoveErr   error
	FindErr   error
}

type mockStoredFile struct {
	id         string
	folder     string
	name       string
	content    []byte
	modifiedAt time.Time
}

// NewMockStorageService creates a new mock storage service
func NewMockStorageService() *MockStorageService {
	return &MockStorageService{files: make(map[string]*mockStoredFile)}
}

// SetAsMockForTesting sets this mock as the global storage service instance for testing
func (m *MockStorageService) SetAsMockForTesting() {
	SetStorageService(m)
}

// Upload stores the content under the folder/name pair
func (m *MockStorageService) Upload(ctx context.Context, folder, name string, content []byte) (string, error) {
	if m.UploadErr != nil {
		return "", m.UploadErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	id := fmt.Sprintf("mock-file-%d", m.nextID)
	m.files[id] = &mockStoredFile{
		id:         id,
		folder:     folder,
		name:       name,
		content:    append([]byte(nil), content...),
		modifiedAt: time.Now(),
	}
	return id, nil
}

// Move reparents a stored file; a missing file is tolerated
func (m *MockStorageService) Move(ctx context.Context, fileID, fromFolder, toFolder string) error {
	if m.MoveErr != nil {
		return m.MoveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if f, ok := m.files[fileID]; ok {
		f.folder = toFolder
	}
	return nil
}

// Find locates a file by folder and name; nil means not present
func (m *MockStorageService) Find(ctx context.Context, folder, name string) (*StoredFile, error) {
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, f := range m.files {
		if f.folder == folder && f.name == name {
			return &StoredFile{ID: f.id, Name: f.name, ModifiedAt: f.modifiedAt}, nil
		}
	}
	return nil, nil
}

// Delete removes a file; a missing file is not an error
func (m *MockStorageService) Delete(ctx context.Context, fileID string) error {
	m.mu.Lock()
	delete(m.files, fileID)
	m.mu.Unlock()
	return nil
}

// FolderOf returns which folder currently holds the named file, or ""
// (for testing assertions)
func (m *MockStorageService) FolderOf(name string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, f := range m.files {
		if f.name == name {
			return f.folder
		}
	}
	return ""
}

// FileCount returns the number of stored files (for testing assertions)
func (m *MockStorageService) FileCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}

// SetModifiedAt backdates a stored file's timestamp (for testing staleness)
func (m *MockStorageService) SetModifiedAt(name string, t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.files {
		if f.name == name {
			f.modifiedAt = t
		}
	}
}
