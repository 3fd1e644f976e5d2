// mock_storage.go - In-memory artifact store for handler tests
package testutil

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/pdc-tracking/backend/internal/models"
	"github.com/pdc-tracking/backend/internal/storage"
)

var errNotFound = errors.New("artifact not found")

// MockStorage implements storage.Store in memory
type MockStorage struct {
	mu    sync.RWMutex
	files map[string]*models.ArtifactInfo
	data  map[string][]byte
	seq   int

	// Now stamps CreatedAt; tests move it to exercise CleanupOlderThan.
	Now func() time.Time
	// SaveErr, when set, is returned by every save.
	SaveErr error
}

// NewMockStorage creates an empty mock store
func NewMockStorage() *MockStorage {
	return &MockStorage{
		files: make(map[string]*models.ArtifactInfo),
		data:  make(map[string][]byte),
		Now:   time.Now,
	}
}

func (m *MockStorage) Save(name string, kind models.ArtifactKind, device string, r io.Reader) (*models.ArtifactInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return m.SaveBytes(name, kind, device, data)
}

func (m *MockStorage) SaveBytes(name string, kind models.ArtifactKind, device string, data []byte) (*models.ArtifactInfo, error) {
	if m.SaveErr != nil {
		return nil, m.SaveErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	info := &models.ArtifactInfo{
		ID:        fmt.Sprintf("test-id-%d", m.seq),
		Name:      name,
		Kind:      kind,
		Device:    device,
		Size:      int64(len(data)),
		CreatedAt: m.Now(),
	}
	m.files[info.ID] = info
	m.data[info.ID] = data
	return info, nil
}

func (m *MockStorage) Get(id string) (*models.ArtifactInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	info, ok := m.files[id]
	if !ok {
		return nil, errNotFound
	}
	return info, nil
}

func (m *MockStorage) Open(id string) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.data[id]
	if !ok {
		return nil, errNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *MockStorage) List(limit int) ([]*models.ArtifactInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]*models.ArtifactInfo, 0, len(m.files))
	for _, info := range m.files {
		list = append(list, info)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (m *MockStorage) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.files[id]; !ok {
		return errNotFound
	}
	delete(m.files, id)
	delete(m.data, id)
	return nil
}

func (m *MockStorage) CleanupOlderThan(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.Now().Add(-maxAge)
	removed := 0
	for id, info := range m.files {
		if info.CreatedAt.Before(cutoff) {
			delete(m.files, id)
			delete(m.data, id)
			removed++
		}
	}
	return removed
}

// Ensure MockStorage implements storage.Store
var _ storage.Store = (*MockStorage)(nil)

// AddArtifact stores data under a fixed id
func (m *MockStorage) AddArtifact(id, name string, kind models.ArtifactKind, data []byte) *models.ArtifactInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	info := &models.ArtifactInfo{
		ID:        id,
		Name:      name,
		Kind:      kind,
		Size:      int64(len(data)),
		CreatedAt: m.Now(),
	}
	m.files[id] = info
	m.data[id] = data
	return info
}

// Count returns the number of stored artifacts
func (m *MockStorage) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}
