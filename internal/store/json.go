package store

import (
	"errors"
	"io/fs"
	"sync"

	"github.com/lox/shutthebox/internal/fileutil"
	"github.com/lox/shutthebox/internal/game"
)

// JSONFile keeps the latest snapshot in a single JSON file.
type JSONFile struct {
	mu   sync.Mutex
	path string
}

// NewJSONFile returns a store writing to path.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

// Path returns the file location.
func (f *JSONFile) Path() string { return f.path }

// WriteSnapshot replaces the file contents with s.
func (f *JSONFile) WriteSnapshot(s game.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fileutil.WriteJSON(f.path, s)
}

// Load reads the last written snapshot.
func (f *JSONFile) Load() (game.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var s game.Snapshot
	if err := fileutil.ReadJSON(f.path, &s); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, ErrNotFound
		}
		return s, err
	}
	return s, nil
}
