package lake

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLakeFile(t *testing.T, root, dataset, name, content string) {
	t.Helper()
	dir := filepath.Join(root, dataset)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestReader_ListDatasets(t *testing.T) {
	root := t.TempDir()
	writeLakeFile(t, root, "TRANSACTIONS_COMPLETED", "a.json", "{}")
	writeLakeFile(t, root, "AUDIT_EVENTS", "b.json", "{}")
	require.NoError(t, os.WriteFile(filepath.Join(root, "stray.txt"), []byte("x"), 0o644))

	reader := NewReader()
	datasets, err := reader.ListDatasets(root)
	require.NoError(t, err)

	assert.Equal(t, []string{"AUDIT_EVENTS", "TRANSACTIONS_COMPLETED"}, datasets)
}

func TestReader_ListDatasets_MissingRoot(t *testing.T) {
	reader := NewReader()
	_, err := reader.ListDatasets(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestReader_DatasetExists(t *testing.T) {
	root := t.TempDir()
	writeLakeFile(t, root, "DS", "a.json", "{}")

	reader := NewReader()
	assert.True(t, reader.DatasetExists(root, "DS"))
	assert.False(t, reader.DatasetExists(root, "OTHER"))
}

func TestReader_ListFiles_SortedJSONOnly(t *testing.T) {
	root := t.TempDir()
	writeLakeFile(t, root, "DS", "b.json", "{}")
	writeLakeFile(t, root, "DS", "a.json", "{}")
	writeLakeFile(t, root, "DS", "notes.md", "ignored")

	reader := NewReader()
	files, err := reader.ListFiles(root, "DS")
	require.NoError(t, err)

	assert.Equal(t, []string{"a.json", "b.json"}, files)
}

func TestReader_ReadFile(t *testing.T) {
	root := t.TempDir()
	writeLakeFile(t, root, "DS", "a.json", `{"A": 1}`)

	reader := NewReader()
	data, err := reader.ReadFile(root, "DS", "a.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"A": 1}`, string(data))

	_, err = reader.ReadFile(root, "DS", "missing.json")
	assert.Error(t, err)
}
