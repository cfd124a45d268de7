package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/i474232898/city-weather/internal/logger"
)

// ErrCorrupt is returned by Get when the backing file is not a JSON object
// of strings. Writes replace such a file.
var ErrCorrupt = errors.New("store file is corrupt")

// FileStore keeps all keys in a single JSON object on disk. Every write
// rewrites the file through a temp file and a rename so a crash never leaves
// a half-written document behind.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a FileStore backed by path. The file and its parent
// directory are created lazily on the first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPath returns the store location under the user's config directory.
func DefaultPath(app string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, app, "state.json"), nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return "", err
	}
	v, ok := data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.readForWrite()
	if err != nil {
		return err
	}
	data[key] = value
	return s.write(data)
}

func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.readForWrite()
	if err != nil {
		return err
	}
	if _, ok := data[key]; !ok {
		return nil
	}
	delete(data, key)
	return s.write(data)
}

// readForWrite is read, except that a corrupt document is moved aside to
// <path>.bak and replaced by an empty one.
func (s *FileStore) readForWrite() (map[string]string, error) {
	data, err := s.read()
	if !errors.Is(err, ErrCorrupt) {
		return data, err
	}
	if err := os.Rename(s.path, s.path+".bak"); err != nil {
		return nil, fmt.Errorf("move corrupt store file: %w", err)
	}
	logger.L().Warn("file_store_reset", "path", s.path, "backup", s.path+".bak")
	data = make(map[string]string)
	if err := s.write(data); err != nil {
		return nil, err
	}
	return data, nil
}

// read loads the document. A missing file is an empty store; a file that is
// not a JSON object of strings yields ErrCorrupt.
func (s *FileStore) read() (map[string]string, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store file: %w", err)
	}
	data := make(map[string]string)
	if len(b) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}
	return data, nil
}

func (s *FileStore) write(data map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".state-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}
