// manager_test.go - Tests for the artifact store
package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pdc-tracking/backend/internal/models"
)

func createTestStore(t *testing.T) *LocalStore {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return store
}

func TestNewLocalStore(t *testing.T) {
	t.Run("creates export directory", func(t *testing.T) {
		exportDir := filepath.Join(t.TempDir(), "exports")

		store, err := NewLocalStore(exportDir)
		if err != nil {
			t.Fatalf("Failed to create store: %v", err)
		}

		if _, err := os.Stat(exportDir); os.IsNotExist(err) {
			t.Error("Expected export directory to be created")
		}
		if store.exportDir != exportDir {
			t.Errorf("Expected exportDir %s, got %s", exportDir, store.exportDir)
		}
	})
}

func TestLocalStore_Save(t *testing.T) {
	t.Run("saves artifact from reader", func(t *testing.T) {
		store := createTestStore(t)

		content := "Month,Power Consumption (kW)\n2024-01,10\n"
		info, err := store.Save("Rome.csv", models.ArtifactCSV, "Rome", strings.NewReader(content))
		if err != nil {
			t.Fatalf("Failed to save artifact: %v", err)
		}

		if info.ID == "" {
			t.Error("Expected ID to be set")
		}
		if info.Name != "Rome.csv" {
			t.Errorf("Expected name 'Rome.csv', got %v", info.Name)
		}
		if info.Kind != models.ArtifactCSV {
			t.Errorf("Expected kind csv, got %v", info.Kind)
		}
		if info.Device != "Rome" {
			t.Errorf("Expected device Rome, got %v", info.Device)
		}
		if info.Size != int64(len(content)) {
			t.Errorf("Expected size %d, got %d", len(content), info.Size)
		}
	})

	t.Run("creates physical file", func(t *testing.T) {
		store := createTestStore(t)

		info, err := store.SaveBytes("report.pdf", models.ArtifactPDF, "Bari", []byte("%PDF-1.3"))
		if err != nil {
			t.Fatalf("Failed to save artifact: %v", err)
		}

		data, err := os.ReadFile(filepath.Join(store.exportDir, info.ID))
		if err != nil {
			t.Fatalf("Failed to read saved file: %v", err)
		}
		if string(data) != "%PDF-1.3" {
			t.Errorf("Unexpected content %q", data)
		}
	})

	t.Run("generates unique IDs", func(t *testing.T) {
		store := createTestStore(t)

		a, _ := store.SaveBytes("a.csv", models.ArtifactCSV, "Rome", nil)
		b, _ := store.SaveBytes("a.csv", models.ArtifactCSV, "Rome", nil)
		if a.ID == b.ID {
			t.Error("Expected unique IDs")
		}
	})
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("read failed") }

// closeFailer closes the underlying file and then reports an error.
type closeFailer struct{ *os.File }

func (c closeFailer) Close() error {
	c.File.Close()
	return errors.New("close failed")
}

func assertNoArtifacts(t *testing.T, store *LocalStore) {
	t.Helper()
	entries, err := os.ReadDir(store.exportDir)
	if err != nil {
		t.Fatalf("Failed to read export dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no files left behind, got %d", len(entries))
	}
	if list, _ := store.List(0); len(list) != 0 {
		t.Errorf("Expected empty index, got %d entries", len(list))
	}
}

func TestLocalStore_SaveFailures(t *testing.T) {
	t.Run("read error removes file", func(t *testing.T) {
		store := createTestStore(t)

		_, err := store.Save("Rome.csv", models.ArtifactCSV, "Rome", failingReader{})
		if err == nil || !strings.Contains(err.Error(), "writing file") {
			t.Fatalf("Expected write error, got %v", err)
		}
		assertNoArtifacts(t, store)
	})

	t.Run("close error removes file", func(t *testing.T) {
		store := createTestStore(t)
		store.create = func(path string) (io.WriteCloser, error) {
			f, err := os.Create(path)
			if err != nil {
				return nil, err
			}
			return closeFailer{f}, nil
		}

		_, err := store.SaveBytes("Rome.csv", models.ArtifactCSV, "Rome", []byte("Month\n"))
		if err == nil || !strings.Contains(err.Error(), "closing file") {
			t.Fatalf("Expected close error, got %v", err)
		}
		assertNoArtifacts(t, store)
	})
}

func TestLocalStore_GetAndOpen(t *testing.T) {
	store := createTestStore(t)
	info, _ := store.SaveBytes("a.csv", models.ArtifactCSV, "Rome", []byte("hello"))

	t.Run("get existing", func(t *testing.T) {
		got, err := store.Get(info.ID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.Name != "a.csv" {
			t.Errorf("Expected a.csv, got %s", got.Name)
		}
	})

	t.Run("open existing", func(t *testing.T) {
		rc, err := store.Open(info.ID)
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		defer rc.Close()
		data, _ := io.ReadAll(rc)
		if string(data) != "hello" {
			t.Errorf("Expected hello, got %q", data)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		if _, err := store.Get("missing"); err == nil {
			t.Error("Expected error for missing artifact")
		}
		if _, err := store.Open("missing"); err == nil {
			t.Error("Expected error for missing artifact")
		}
	})
}

func TestLocalStore_List(t *testing.T) {
	store := createTestStore(t)
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	store.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	for _, name := range []string{"first.csv", "second.csv", "third.csv"} {
		if _, err := store.SaveBytes(name, models.ArtifactCSV, "Rome", []byte(name)); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	list, err := store.List(2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("Expected 2 artifacts, got %d", len(list))
	}
	if list[0].Name != "third.csv" || list[1].Name != "second.csv" {
		t.Errorf("Expected newest first, got %s, %s", list[0].Name, list[1].Name)
	}

	all, _ := store.List(0)
	if len(all) != 3 {
		t.Errorf("Expected 3 artifacts without limit, got %d", len(all))
	}
}

func TestLocalStore_Delete(t *testing.T) {
	store := createTestStore(t)
	info, _ := store.SaveBytes("a.csv", models.ArtifactCSV, "Rome", []byte("x"))

	if err := store.Delete(info.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(store.exportDir, info.ID)); !os.IsNotExist(err) {
		t.Error("Expected file to be removed")
	}
	if err := store.Delete(info.ID); err == nil {
		t.Error("Expected error deleting twice")
	}
}

func TestLocalStore_CleanupOlderThan(t *testing.T) {
	store := createTestStore(t)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	old, _ := store.SaveBytes("old.csv", models.ArtifactCSV, "Rome", []byte("old"))
	now = now.Add(20 * time.Minute)
	fresh, _ := store.SaveBytes("fresh.csv", models.ArtifactCSV, "Rome", []byte("fresh"))
	now = now.Add(20 * time.Minute)

	removed := store.CleanupOlderThan(30 * time.Minute)
	if removed != 1 {
		t.Errorf("Expected 1 artifact removed, got %d", removed)
	}
	if _, err := store.Get(old.ID); err == nil {
		t.Error("Expected old artifact to be gone")
	}
	if _, err := store.Get(fresh.ID); err != nil {
		t.Error("Expected fresh artifact to remain")
	}
}
