package storage

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFileWriterCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")

	w, err := NewFileWriter(dir)

	require.NoError(t, err)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, filepath.Join(dir, "combined.json"), w.Path("combined.json"))
}

func TestWriteFileReplacesContent(t *testing.T) {
	dir := t.TempDir()
	w, err := NewFileWriter(dir)
	require.NoError(t, err)

	require.NoError(t, w.WriteFile("combined.json", []byte("first")))
	require.NoError(t, w.WriteFile("combined.json", []byte("second")))

	data, err := os.ReadFile(filepath.Join(dir, "combined.json"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
}

func TestWriteFileFailsWhenDirectoryIsGone(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	w, err := NewFileWriter(dir)
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(dir))

	err = w.WriteFile("combined.json", []byte("{}"))

	assert.Error(t, err)
}

func TestRemoveMatching(t *testing.T) {
	dir := t.TempDir()
	w, err := NewFileWriter(dir)
	require.NoError(t, err)
	for _, name := range []string{"chunk_1.json", "chunk_12.json", "chunk_notes.json", "combined.json", "notes.txt"} {
		require.NoError(t, w.WriteFile(name, []byte("x")))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "chunk_7.json"), 0755))

	removed, err := w.RemoveMatching(regexp.MustCompile(`^chunk_[0-9]+\.json$`))

	require.NoError(t, err)
	sort.Strings(removed)
	assert.Equal(t, []string{"chunk_1.json", "chunk_12.json"}, removed)
	_, err = os.Stat(filepath.Join(dir, "combined.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "chunk_notes.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "chunk_7.json"))
	assert.NoError(t, err, "directories are left alone")
	_, err = os.Stat(filepath.Join(dir, "chunk_1.json"))
	assert.True(t, os.IsNotExist(err))
}
