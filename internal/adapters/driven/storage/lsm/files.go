package lsm

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// writeFileAtomic replaces path with data via a temp file and rename.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

// fileCache keeps a bounded set of read-only data files open.
// Evicted handles are closed.
type fileCache struct {
	mu    sync.Mutex
	files *lru.Cache[string, *os.File]
}

func newFileCache(size int) (*fileCache, error) {
	files, err := lru.NewWithEvict(size, func(_ string, f *os.File) {
		_ = f.Close()
	})
	if err != nil {
		return nil, fmt.Errorf("create file cache: %w", err)
	}
	return &fileCache{files: files}, nil
}

// get returns an open handle for path, opening it on a miss.
func (c *fileCache) get(path string) (*os.File, error) {
	if f, ok := c.files.Get(path); ok {
		return f, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if f, ok := c.files.Get(path); ok {
		return f, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	c.files.Add(path, f)
	return f, nil
}

// evict closes the handle for path, if any.
func (c *fileCache) evict(path string) {
	c.files.Remove(path)
}

func (c *fileCache) len() int {
	return c.files.Len()
}

// close closes every cached handle.
func (c *fileCache) close() {
	c.files.Purge()
}
