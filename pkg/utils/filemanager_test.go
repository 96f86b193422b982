package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *FileManager {
	t.Helper()
	root := t.TempDir()
	fm := NewFileManager(
		filepath.Join(root, "input"),
		filepath.Join(root, "output"),
		filepath.Join(root, "archive"),
	)
	require.NoError(t, fm.EnsureDirectories())
	return fm
}

func TestEnsureDirectories(t *testing.T) {
	fm := newTestManager(t)

	for _, dir := range []string{fm.InputDir, fm.OutputDir, fm.ArchiveDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestArchiveInputMovesFile(t *testing.T) {
	fm := newTestManager(t)

	src := filepath.Join(fm.InputDir, "pam.csv")
	require.NoError(t, os.WriteFile(src, []byte("data"), 0644))

	archived, err := fm.ArchiveInput(src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(fm.ArchiveDir, "pam.csv"), archived)

	_, err = os.Stat(src)
	assert.True(t, os.IsNotExist(err))

	data, err := os.ReadFile(archived)
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))
}

func TestArchiveInputResolvesCollisions(t *testing.T) {
	fm := newTestManager(t)

	require.NoError(t, os.WriteFile(filepath.Join(fm.ArchiveDir, "pam.csv"), []byte("old"), 0644))

	src := filepath.Join(fm.InputDir, "pam.csv")
	require.NoError(t, os.WriteFile(src, []byte("new"), 0644))

	archived, err := fm.ArchiveInput(src)
	require.NoError(t, err)
	assert.NotEqual(t, filepath.Join(fm.ArchiveDir, "pam.csv"), archived)

	// The earlier archive is untouched and the new file carries a suffix.
	old, err := os.ReadFile(filepath.Join(fm.ArchiveDir, "pam.csv"))
	require.NoError(t, err)
	assert.Equal(t, "old", string(old))

	data, err := os.ReadFile(archived)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}
