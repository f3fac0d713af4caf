package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
)

// LocalStore serves a directory on disk through the Store contract.
// Store paths are resolved below Root; ".." segments are cleaned away before joining.
type LocalStore struct {
	Root string
}

// NewLocalStore resolves root to an absolute directory.
func NewLocalStore(root string) (*LocalStore, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root %s: %w", root, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("stat root %s: %w", absRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", absRoot)
	}
	return &LocalStore{Root: absRoot}, nil
}

// ToStorePath converts an absolute OS path below Root to a store path.
func (s *LocalStore) ToStorePath(osPath string) (string, error) {
	rel, err := filepath.Rel(s.Root, osPath)
	if err != nil {
		return "", err
	}
	return CleanPath(filepath.ToSlash(rel)), nil
}

func (s *LocalStore) osPath(storePath string) string {
	return filepath.Join(s.Root, filepath.FromSlash(CleanPath(storePath)))
}

func (s *LocalStore) ListDirectory(ctx context.Context, dirPath string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dirPath = CleanPath(dirPath)
	dirEntries, err := os.ReadDir(s.osPath(dirPath))
	if err != nil {
		return nil, wrapLocalError("listing", dirPath, err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, dirEntry := range dirEntries {
		info, err := dirEntry.Info()
		if err != nil {
			// Removed between ReadDir and Info
			continue
		}
		entries = append(entries, entryFromInfo(path.Join(dirPath, dirEntry.Name()), info))
	}
	return entries, nil
}

func (s *LocalStore) ReadFile(ctx context.Context, filePath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.osPath(filePath))
	if err != nil {
		return nil, wrapLocalError("reading", filePath, err)
	}
	return data, nil
}

func (s *LocalStore) ReadFileLimited(ctx context.Context, filePath string, limit int64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.osPath(filePath))
	if err != nil {
		return nil, wrapLocalError("reading", filePath, err)
	}
	defer f.Close()

	if limit <= 0 {
		return []byte{}, nil
	}
	data, err := io.ReadAll(io.LimitReader(f, limit))
	if err != nil {
		return nil, wrapLocalError("reading", filePath, err)
	}
	return data, nil
}

func (s *LocalStore) Stat(ctx context.Context, filePath string) (*Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	filePath = CleanPath(filePath)
	info, err := os.Stat(s.osPath(filePath))
	if err != nil {
		return nil, wrapLocalError("stat", filePath, err)
	}
	entry := entryFromInfo(filePath, info)
	return &entry, nil
}

func entryFromInfo(storePath string, info fs.FileInfo) Entry {
	entry := Entry{
		Path:         storePath,
		Name:         path.Base(storePath),
		LastModified: info.ModTime().UTC(),
		IsDirectory:  info.IsDir(),
	}
	if storePath == "/" {
		entry.Name = ""
	}
	if !info.IsDir() {
		entry.Size = info.Size()
		entry.ContentType = mime.TypeByExtension(path.Ext(storePath))
	}
	return entry
}

func wrapLocalError(op string, storePath string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s %s: %w", op, storePath, ErrNotFound)
	}
	return fmt.Errorf("%s %s: %w", op, storePath, err)
}
