// Package media downloads, caches and plays pronunciation audio.
package media

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileCache stores one audio file per key in a directory.
type FileCache struct {
	rootDir   string
	extension string
}

func NewFileCache(cacheDirectory, extension string) *FileCache {
	return &FileCache{
		rootDir:   cacheDirectory,
		extension: normalizeExtension(extension),
	}
}

func normalizeExtension(extension string) string {
	if extension != "" && !strings.HasPrefix(extension, ".") {
		return "." + extension
	}
	return extension
}

func (cache *FileCache) filePath(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("invalid audio key %q", key)
	}
	return filepath.Join(cache.rootDir, key+cache.extension), nil
}

// Has reports whether the key is cached.
func (cache *FileCache) Has(key string) bool {
	path, err := cache.filePath(key)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Cache returns the path of the cached file, calling f to fill the cache on
// a miss. Files are renamed into place so readers never see partial files.
func (cache *FileCache) Cache(key string, f func() ([]byte, error)) (string, error) {
	path, err := cache.filePath(key)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("os.Stat(%s) > %w", path, err)
	}

	contents, err := f()
	if err != nil {
		return "", fmt.Errorf("fetch %s > %w", key, err)
	}

	if err := os.MkdirAll(cache.rootDir, 0755); err != nil {
		return "", fmt.Errorf("os.MkdirAll(%s) > %w", cache.rootDir, err)
	}
	tmp, err := os.CreateTemp(cache.rootDir, key+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("os.CreateTemp > %w", err)
	}
	if _, err := tmp.Write(contents); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("file.Write > %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("file.Close > %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("os.Rename(%s) > %w", path, err)
	}
	return path, nil
}
