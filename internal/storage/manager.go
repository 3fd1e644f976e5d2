package storage

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pdc-tracking/backend/internal/models"
)

// Store defines the interface for export artifact storage.
type Store interface {
	Save(name string, kind models.ArtifactKind, device string, r io.Reader) (*models.ArtifactInfo, error)
	SaveBytes(name string, kind models.ArtifactKind, device string, data []byte) (*models.ArtifactInfo, error)
	Get(id string) (*models.ArtifactInfo, error)
	Open(id string) (io.ReadCloser, error)
	List(limit int) ([]*models.ArtifactInfo, error)
	Delete(id string) error
	CleanupOlderThan(maxAge time.Duration) int
}

// LocalStore implements Store using the local filesystem. Artifacts only live
// for the session: the index is in memory and CleanupOlderThan removes
// expired files.
type LocalStore struct {
	mu        sync.RWMutex
	exportDir string
	files     map[string]*models.ArtifactInfo
	now       func() time.Time
	create    func(path string) (io.WriteCloser, error)
}

func createFile(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

// NewLocalStore creates a new LocalStore.
func NewLocalStore(exportDir string) (*LocalStore, error) {
	if err := os.MkdirAll(exportDir, 0755); err != nil {
		return nil, fmt.Errorf("creating export directory: %w", err)
	}

	return &LocalStore{
		exportDir: exportDir,
		files:     make(map[string]*models.ArtifactInfo),
		now:       time.Now,
		create:    createFile,
	}, nil
}

// Save writes an artifact to the export directory.
func (s *LocalStore) Save(name string, kind models.ArtifactKind, device string, r io.Reader) (*models.ArtifactInfo, error) {
	id := uuid.New().String()
	path := filepath.Join(s.exportDir, id)

	f, err := s.create(path)
	if err != nil {
		return nil, fmt.Errorf("creating file: %w", err)
	}

	size, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("writing file: %w", err)
	}
	// an artifact whose close fails is not indexed
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("closing file: %w", err)
	}

	info := &models.ArtifactInfo{
		ID:        id,
		Name:      name,
		Kind:      kind,
		Device:    device,
		Size:      size,
		CreatedAt: s.now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[id] = info

	return info, nil
}

// SaveBytes saves an in-memory artifact.
func (s *LocalStore) SaveBytes(name string, kind models.ArtifactKind, device string, data []byte) (*models.ArtifactInfo, error) {
	return s.Save(name, kind, device, bytes.NewReader(data))
}

// Get retrieves artifact metadata by ID.
func (s *LocalStore) Get(id string) (*models.ArtifactInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, ok := s.files[id]
	if !ok {
		return nil, fmt.Errorf("artifact not found: %s", id)
	}

	return info, nil
}

// Open returns the artifact content.
func (s *LocalStore) Open(id string) (io.ReadCloser, error) {
	s.mu.RLock()
	_, ok := s.files[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("artifact not found: %s", id)
	}

	f, err := os.Open(filepath.Join(s.exportDir, id))
	if err != nil {
		return nil, fmt.Errorf("opening artifact: %w", err)
	}
	return f, nil
}

// List returns the most recent artifacts.
func (s *LocalStore) List(limit int) ([]*models.ArtifactInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var list []*models.ArtifactInfo
	for _, info := range s.files {
		list = append(list, info)
	}

	// Sort by CreatedAt desc
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})

	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}

	return list, nil
}

// Delete removes an artifact from storage.
func (s *LocalStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.deleteLocked(id)
}

func (s *LocalStore) deleteLocked(id string) error {
	if _, ok := s.files[id]; !ok {
		return fmt.Errorf("artifact not found: %s", id)
	}

	path := filepath.Join(s.exportDir, id)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting file: %w", err)
	}

	delete(s.files, id)
	return nil
}

// CleanupOlderThan deletes artifacts created more than maxAge ago and
// returns how many were removed.
func (s *LocalStore) CleanupOlderThan(maxAge time.Duration) int {
	cutoff := s.now().Add(-maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, info := range s.files {
		if info.CreatedAt.Before(cutoff) {
			if err := s.deleteLocked(id); err == nil {
				removed++
			}
		}
	}
	return removed
}
