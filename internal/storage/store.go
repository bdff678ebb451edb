// Package storage provides a sandboxed file store for pack assets and
// disk quota inspection. All paths are relative to the store root;
// anything escaping it is rejected before touching the filesystem.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	grerrors "github.com/samhita-labs/grantha/internal/errors"
)

// Quota reports disk usage for a store's filesystem.
type Quota struct {
	TotalBytes     uint64
	AvailableBytes uint64
}

// FileStore roots all file operations under a single directory.
type FileStore struct {
	root string
}

// NewFileStore creates the root directory if needed and returns a
// store over it.
func NewFileStore(root string) (*FileStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, grerrors.New(grerrors.ErrCodeInvalidPath, "resolve store root", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, grerrors.New(grerrors.ErrCodeFilePermission, "create store root", err)
	}
	return &FileStore{root: abs}, nil
}

// Root returns the absolute store root.
func (s *FileStore) Root() string { return s.root }

// resolve joins name onto the root, rejecting absolute paths and any
// traversal that would escape it.
func (s *FileStore) resolve(name string) (string, error) {
	if name == "" || filepath.IsAbs(name) {
		return "", grerrors.New(grerrors.ErrCodeInvalidPath,
			fmt.Sprintf("invalid asset path %q", name), nil)
	}
	clean := filepath.Clean(name)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", grerrors.New(grerrors.ErrCodeInvalidPath,
			fmt.Sprintf("asset path %q escapes the store", name), nil)
	}
	return filepath.Join(s.root, clean), nil
}

// WriteFile streams r into name atomically: the content lands in a
// temp file first and is renamed into place only when fully written.
func (s *FileStore) WriteFile(name string, r io.Reader) (int64, error) {
	path, err := s.resolve(name)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, grerrors.New(grerrors.ErrCodeFilePermission, "create asset directory", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".grantha-*")
	if err != nil {
		return 0, grerrors.New(grerrors.ErrCodeFilePermission, "create temp file", err)
	}
	n, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return 0, grerrors.New(grerrors.ErrCodeAssetDownload, "write asset", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return 0, grerrors.New(grerrors.ErrCodeFilePermission, "close temp file", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return 0, grerrors.New(grerrors.ErrCodeFilePermission, "finalize asset", err)
	}
	return n, nil
}

// Open opens an asset for reading.
func (s *FileStore) Open(name string) (*os.File, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, grerrors.New(grerrors.ErrCodeFileNotFound,
				fmt.Sprintf("asset %s not found", name), err)
		}
		return nil, grerrors.New(grerrors.ErrCodeFilePermission, "open asset", err)
	}
	return f, nil
}

// Stat returns file info for an asset, or a not-found error.
func (s *FileStore) Stat(name string) (os.FileInfo, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, grerrors.New(grerrors.ErrCodeFileNotFound,
				fmt.Sprintf("asset %s not found", name), err)
		}
		return nil, grerrors.New(grerrors.ErrCodeFilePermission, "stat asset", err)
	}
	return info, nil
}

// Exists reports whether an asset is present.
func (s *FileStore) Exists(name string) bool {
	_, err := s.Stat(name)
	return err == nil
}

// Remove deletes one asset. Missing files are not an error.
func (s *FileStore) Remove(name string) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return grerrors.New(grerrors.ErrCodeFilePermission, "remove asset", err)
	}
	return nil
}

// RemoveAll deletes the entire store contents, keeping the root.
func (s *FileStore) RemoveAll() error {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return grerrors.New(grerrors.ErrCodeFilePermission, "read store root", err)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(s.root, e.Name())); err != nil {
			return grerrors.New(grerrors.ErrCodeFilePermission, "clear store", err)
		}
	}
	return nil
}

// List returns the relative paths of all regular files under the root.
func (s *FileStore) List() ([]string, error) {
	var names []string
	err := filepath.WalkDir(s.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			rel, err := filepath.Rel(s.root, path)
			if err != nil {
				return err
			}
			names = append(names, rel)
		}
		return nil
	})
	if err != nil {
		return nil, grerrors.New(grerrors.ErrCodeFilePermission, "list store", err)
	}
	return names, nil
}

// Quota reports total and available bytes on the store's filesystem.
// Filesystems that cannot be queried surface as unsupported storage.
func (s *FileStore) Quota() (Quota, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(s.root, &stat); err != nil {
		return Quota{}, grerrors.New(grerrors.ErrCodeStorageUnsupported,
			"cannot determine free disk space", err)
	}
	bsize := uint64(stat.Bsize)
	return Quota{
		TotalBytes:     stat.Blocks * bsize,
		AvailableBytes: stat.Bavail * bsize,
	}, nil
}
