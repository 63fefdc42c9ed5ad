package fsutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMove_File_SameFilesystem(t *testing.T) {
	tempDir := t.TempDir()

	srcFile := filepath.Join(tempDir, "source.txt")
	dstFile := filepath.Join(tempDir, "nested", "destination.txt")

	content := "Hello, World!"
	require.NoError(t, os.WriteFile(srcFile, []byte(content), 0644))

	require.NoError(t, Move(srcFile, dstFile))

	movedContent, err := os.ReadFile(dstFile)
	require.NoError(t, err)
	assert.Equal(t, content, string(movedContent))

	_, err = os.Stat(srcFile)
	assert.True(t, os.IsNotExist(err))
}

func TestMove_EmptyPaths(t *testing.T) {
	assert.Error(t, Move("", "dst"))
	assert.Error(t, Move("src", ""))
}

func TestWriteFileAtomic(t *testing.T) {
	tests := []struct {
		name    string
		modTime time.Time
	}{
		{name: "keeps write time when no mod time given"},
		{name: "applies mod time", modTime: time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "a", "b", "entry")
			require.NoError(t, WriteFileAtomic(path, []byte("tile"), FileModeShared, tt.modTime))

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, "tile", string(data))

			info, err := os.Stat(path)
			require.NoError(t, err)
			if !tt.modTime.IsZero() {
				assert.True(t, tt.modTime.Equal(info.ModTime()))
			}
			if runtime.GOOS != "windows" {
				assert.Equal(t, os.FileMode(FileModeShared), info.Mode().Perm())
			}

			entries, err := os.ReadDir(filepath.Dir(path))
			require.NoError(t, err)
			assert.Len(t, entries, 1, "temp file should not be left behind")
		})
	}
}

func TestWriteFileAtomic_Overwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entry")
	require.NoError(t, WriteFileAtomic(path, []byte("old"), FileModeShared, time.Time{}))
	require.NoError(t, WriteFileAtomic(path, []byte("new"), FileModeShared, time.Time{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestEnsureFileDir(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "nested", "parent", "file.txt")
	require.NoError(t, EnsureFileDir(filePath))
	assert.DirExists(t, filepath.Dir(filePath))
}

func TestGetDataDir(t *testing.T) {
	assert.Equal(t, AppName, filepath.Base(GetDataDir()))
	assert.Equal(t, AppName, filepath.Base(GetConfigDir()))
}
