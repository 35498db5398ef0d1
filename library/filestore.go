package library

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// fileStore keeps problem documents in a directory tree. Every access goes
// through an os.Root, so symlinks and ".." cannot reach outside dir.
type fileStore struct {
	dir string
}

// NewFileStore returns a Store over the problem documents under dir. Only
// files with one of the Extensions are listed; dot entries are skipped and a
// missing dir lists as empty.
func NewFileStore(dir string) Store {
	return &fileStore{dir: dir}
}

func (s *fileStore) List(ctx context.Context) ([]string, error) {
	root, err := os.OpenRoot(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}
	defer root.Close()

	var keys []string
	err = fs.WalkDir(root.FS(), ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if name == "." {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && isProblemFile(name) {
			keys = append(keys, name)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}
	return keys, nil
}

func (s *fileStore) Load(_ context.Context, keys ...string) ([]Entry, error) {
	if err := validKeys(keys); err != nil {
		return nil, err
	}

	root, err := os.OpenRoot(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		if len(keys) == 0 {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, keys[0])
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}
	defer root.Close()

	entries := make([]Entry, 0, len(keys))
	for _, key := range keys {
		data, err := root.ReadFile(filepath.FromSlash(key))
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadFailed, key, err)
		}
		entries = append(entries, Entry{Key: key, Value: data})
	}
	return entries, nil
}

// Save writes each document under a temporary name and renames it into
// place, so a concurrent Load sees the old or the new document, never half.
func (s *fileStore) Save(_ context.Context, entries ...Entry) error {
	for _, e := range entries {
		if err := validKey(e.Key); err != nil {
			return err
		}
	}
	if len(entries) == 0 {
		return nil
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	root, err := os.OpenRoot(s.dir)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	defer root.Close()

	for _, e := range entries {
		if err := writeAtomic(root, filepath.FromSlash(e.Key), e.Value); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrSaveFailed, e.Key, err)
		}
	}
	return nil
}

func writeAtomic(root *os.Root, name string, data []byte) error {
	dir := filepath.Dir(name)
	if err := root.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp := filepath.Join(dir, ".tmp-"+uuid.NewString())
	f, err := root.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		root.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		root.Remove(tmp)
		return err
	}
	if err := root.Rename(tmp, name); err != nil {
		root.Remove(tmp)
		return err
	}
	return nil
}

// Delete removes documents and then any directories they leave empty. The
// store directory itself is never removed.
func (s *fileStore) Delete(_ context.Context, keys ...string) error {
	if err := validKeys(keys); err != nil {
		return err
	}

	root, err := os.OpenRoot(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	defer root.Close()

	for _, key := range keys {
		err := root.Remove(filepath.FromSlash(key))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: delete %s: %v", ErrSaveFailed, key, err)
		}

		// Remove fails on a non-empty directory, which ends the walk.
		for dir := path.Dir(key); dir != "."; dir = path.Dir(dir) {
			if root.Remove(filepath.FromSlash(dir)) != nil {
				break
			}
		}
	}
	return nil
}

func isProblemFile(name string) bool {
	return slices.Contains(Extensions, path.Ext(name))
}

// validKey accepts only relative, /-separated keys that stay inside the
// store: no "..", no absolute paths, no empty key.
func validKey(key string) error {
	if key == "" || !filepath.IsLocal(filepath.FromSlash(key)) || strings.Contains(key, `\`) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

func validKeys(keys []string) error {
	for _, key := range keys {
		if err := validKey(key); err != nil {
			return err
		}
	}
	return nil
}
