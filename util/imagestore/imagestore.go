package imagestore

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var ErrNotImage = errors.New("file is not an image")

// Store keeps listing images as flat files under a single directory.
// Names are generated, so callers never control the on-disk path.
type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

// Save sniffs the content type, rejects non-images, and writes the file
// under a fresh uuid name. Returns the stored file name.
func (s *Store) Save(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", ErrNotImage
	}
	name := uuid.NewString() + mt.Extension()
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", err
	}
	return name, nil
}

// Path maps a stored name back to its on-disk path. The base-name strip
// blocks traversal through names read back from the database.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}

func (s *Store) Remove(name string) error {
	return os.Remove(s.Path(name))
}

// ModTime reports when a stored file was written.
func (s *Store) ModTime(name string) (time.Time, error) {
	fi, err := os.Stat(s.Path(name))
	if err != nil {
		return time.Time{}, err
	}
	return fi.ModTime(), nil
}

// List returns the stored file names, for orphan sweeping.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() {
			out = append(out, e.Name())
		}
	}
	return out, nil
}
