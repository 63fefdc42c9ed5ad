package archive

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeSource(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create source directory: %v", err)
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("Failed to create file %s: %v", name, err)
		}
	}
}

func TestManager_CreateAndExtractAll(t *testing.T) {
	tempDir := t.TempDir()

	testFiles := map[string]string{
		"http___x_tile.png":      "tile bytes",
		"https___host_layer.xml": "<layer/>",
	}
	sourceDir := filepath.Join(tempDir, "source")
	writeSource(t, sourceDir, testFiles)

	stamp := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := os.Chtimes(filepath.Join(sourceDir, "http___x_tile.png"), stamp, stamp); err != nil {
		t.Fatalf("Failed to set mtime: %v", err)
	}

	am := NewManager()
	ctx := context.Background()

	archivePath := filepath.Join(tempDir, "snapshot.tar.gz")
	n, err := am.CreateFile(ctx, sourceDir, archivePath, nil)
	if err != nil {
		t.Fatalf("Failed to create archive: %v", err)
	}
	if n != len(testFiles) {
		t.Errorf("Expected %d archived files, got %d", len(testFiles), n)
	}

	extractDir := filepath.Join(tempDir, "extracted")
	n, err = am.ExtractAll(ctx, archivePath, extractDir, 0o640, nil)
	if err != nil {
		t.Fatalf("Failed to extract archive: %v", err)
	}
	if n != len(testFiles) {
		t.Errorf("Expected %d extracted files, got %d", len(testFiles), n)
	}

	for name, expectedContent := range testFiles {
		content, err := os.ReadFile(filepath.Join(extractDir, name))
		if err != nil {
			t.Errorf("Failed to read extracted file %s: %v", name, err)
			continue
		}
		if string(content) != expectedContent {
			t.Errorf("File %s has wrong content. Expected: %s, Got: %s", name, expectedContent, string(content))
		}
	}

	info, err := os.Stat(filepath.Join(extractDir, "http___x_tile.png"))
	if err != nil {
		t.Fatalf("Failed to stat extracted file: %v", err)
	}
	if !info.ModTime().Equal(stamp) {
		t.Errorf("Expected mtime %v, got %v", stamp, info.ModTime())
	}
	if info.Mode().Perm() != 0o640 {
		t.Errorf("Expected mode 0640, got %v", info.Mode().Perm())
	}
}

func TestManager_CreateFilter(t *testing.T) {
	tempDir := t.TempDir()
	sourceDir := filepath.Join(tempDir, "source")
	writeSource(t, sourceDir, map[string]string{
		"keep.png":    "a",
		".tmp-123456": "partial",
	})

	var buf bytes.Buffer
	n, err := NewManager().Create(context.Background(), sourceDir, &buf, func(name string) bool {
		return !strings.HasPrefix(name, ".tmp-")
	})
	if err != nil {
		t.Fatalf("Failed to create archive: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 archived file, got %d", n)
	}
	if buf.Len() == 0 {
		t.Error("Expected archive bytes to be written")
	}
}

func TestManager_ExtractAll_MissingArchive(t *testing.T) {
	_, err := NewManager().ExtractAll(context.Background(), filepath.Join(t.TempDir(), "missing.tar.gz"), t.TempDir(), 0o644, nil)
	if err == nil {
		t.Fatal("Expected error for missing archive")
	}
}
