package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/example/holidaze/internal/internaltypes"
)

// FileStore keeps state in a single JSON file, used by the CLI between runs.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore { return &FileStore{path: path} }

// DefaultPath is ~/.config/holidaze/state.json (or the OS equivalent).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "holidaze", "state.json"), nil
}

func (f *FileStore) read() (map[string]map[string]string, error) {
	data := map[string]map[string]string{}
	b, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return data, nil
	}
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("state file %s: %w", f.path, err)
	}
	return data, nil
}

func (f *FileStore) write(data map[string]map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

func (f *FileStore) Get(_ context.Context, sid, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.read()
	if err != nil {
		return "", err
	}
	v, ok := data[sid][key]
	if !ok {
		return "", internaltypes.ErrNotFound
	}
	return v, nil
}

func (f *FileStore) Set(_ context.Context, sid, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.read()
	if err != nil {
		return err
	}
	if data[sid] == nil {
		data[sid] = map[string]string{}
	}
	data[sid][key] = value
	return f.write(data)
}

func (f *FileStore) Clear(_ context.Context, sid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := data[sid]; !ok {
		return nil
	}
	delete(data, sid)
	return f.write(data)
}
