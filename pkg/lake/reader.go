// Package lake reads raw JSON record files out of a versioned data lake
// directory tree: <version root>/<dataset>/<file>.json. It is purely a
// storage reader; authorization and materialization live in the services
// layer.
package lake

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// dataExt is the only file extension recognized as record-bearing.
const dataExt = ".json"

// Reader yields dataset folder names and raw file contents under a lake
// version root.
type Reader interface {
	// ListDatasets returns the dataset folder names directly under root,
	// sorted ascending.
	ListDatasets(root string) ([]string, error)

	// DatasetExists reports whether the dataset folder is present under root.
	DatasetExists(root, dataset string) bool

	// ListFiles returns the data file names directly under the dataset
	// folder, in lexicographic order. Lake directories are not assumed
	// pre-sorted, so the order is made explicit here.
	ListFiles(root, dataset string) ([]string, error)

	// ReadFile returns the raw bytes of one data file.
	ReadFile(root, dataset, name string) ([]byte, error)
}

// fsReader is the filesystem-backed Reader.
type fsReader struct{}

// NewReader returns a Reader over the local filesystem.
func NewReader() Reader {
	return &fsReader{}
}

func (fsReader) ListDatasets(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read lake root %s: %w", root, err)
	}

	var datasets []string
	for _, e := range entries {
		if e.IsDir() {
			datasets = append(datasets, e.Name())
		}
	}
	sort.Strings(datasets)
	return datasets, nil
}

func (fsReader) DatasetExists(root, dataset string) bool {
	info, err := os.Stat(filepath.Join(root, dataset))
	return err == nil && info.IsDir()
}

func (fsReader) ListFiles(root, dataset string) ([]string, error) {
	dir := filepath.Join(root, dataset)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset directory %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), dataExt) {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func (fsReader) ReadFile(root, dataset, name string) ([]byte, error) {
	path := filepath.Join(root, dataset, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file %s: %w", path, err)
	}
	return data, nil
}
