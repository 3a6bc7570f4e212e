package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Cache manages the staging folder archives are downloaded into before extraction
type Cache struct {
	fs       afero.Fs
	basePath string
}

// New creates a new cache manager
func New(fs afero.Fs, basePath string) *Cache {
	return &Cache{fs: fs, basePath: basePath}
}

// BasePath returns the cache root
func (c *Cache) BasePath() string {
	return c.basePath
}

// ArchivePath returns where an archive for the given key is staged.
// Keys are operation-scoped so parallel installs never share a file.
func (c *Cache) ArchivePath(operationID, key string) string {
	return filepath.Join(c.basePath, operationID, safeName(key)+".zip")
}

// Exists checks if a staged archive is present
func (c *Cache) Exists(operationID, key string) bool {
	info, err := c.fs.Stat(c.ArchivePath(operationID, key))
	return err == nil && !info.IsDir()
}

// Remove deletes a staged archive
func (c *Cache) Remove(operationID, key string) error {
	err := c.fs.Remove(c.ArchivePath(operationID, key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing cached archive: %w", err)
	}
	return nil
}

// RemoveOperation deletes every archive staged by one operation
func (c *Cache) RemoveOperation(operationID string) error {
	if err := c.fs.RemoveAll(filepath.Join(c.basePath, operationID)); err != nil {
		return fmt.Errorf("removing cached operation: %w", err)
	}
	return nil
}

// Clear removes the whole cache
func (c *Cache) Clear() error {
	if err := c.fs.RemoveAll(c.basePath); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	return nil
}

// Size returns the total size of staged archives
func (c *Cache) Size() (int64, error) {
	exists, err := afero.DirExists(c.fs, c.basePath)
	if err != nil || !exists {
		return 0, err
	}

	var totalSize int64
	err = afero.Walk(c.fs, c.basePath, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			totalSize += info.Size()
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("calculating cache size: %w", err)
	}

	return totalSize, nil
}

// safeName flattens a unique name or URL into a single path element
func safeName(key string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '?', '*', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, key)
}
