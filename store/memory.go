package store

import (
	"context"
	"fmt"
	"path"
	"sort"
	"sync"
	"time"
)

type memoryFile struct {
	entry   Entry
	content []byte
}

// MemoryStore is an in-process Store, mainly for tests.
// Parent directories are created implicitly by AddFile and AddDir.
// SetListError and SetListDelay let callers simulate slow or failing directories.
type MemoryStore struct {
	mu    sync.RWMutex
	files map[string]*memoryFile
	dirs  map[string]Entry

	listErrors map[string]error
	listDelays map[string]time.Duration
	listCalls  int
	readCalls  int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		files:      make(map[string]*memoryFile),
		dirs:       map[string]Entry{"/": {Path: "/", IsDirectory: true}},
		listErrors: make(map[string]error),
		listDelays: make(map[string]time.Duration),
	}
}

// AddFile stores content at filePath. contentType may be empty.
func (m *MemoryStore) AddFile(filePath string, content []byte, contentType string, modified time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	filePath = CleanPath(filePath)
	m.ensureDirLocked(path.Dir(filePath), modified)
	m.files[filePath] = &memoryFile{
		entry: Entry{
			Path:         filePath,
			Name:         path.Base(filePath),
			Size:         int64(len(content)),
			LastModified: modified,
			ContentType:  contentType,
		},
		content: content,
	}
}

// AddSizedFile registers a file whose reported size differs from its stored content.
// Used to exercise size guards without allocating the bytes.
func (m *MemoryStore) AddSizedFile(filePath string, size int64, contentType string, modified time.Time) {
	m.AddFile(filePath, nil, contentType, modified)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[CleanPath(filePath)].entry.Size = size
}

func (m *MemoryStore) AddDir(dirPath string, modified time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureDirLocked(CleanPath(dirPath), modified)
}

// Remove deletes a file, or a directory and everything below it.
func (m *MemoryStore) Remove(p string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p = CleanPath(p)
	for filePath := range m.files {
		if HasPathPrefix(filePath, p) {
			delete(m.files, filePath)
		}
	}
	if p == "/" {
		return
	}
	for dirPath := range m.dirs {
		if HasPathPrefix(dirPath, p) {
			delete(m.dirs, dirPath)
		}
	}
}

// SetListError makes every ListDirectory call on dirPath fail with err. A nil err clears it.
func (m *MemoryStore) SetListError(dirPath string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.listErrors, CleanPath(dirPath))
		return
	}
	m.listErrors[CleanPath(dirPath)] = err
}

// SetListDelay makes ListDirectory on dirPath block for d or until the context ends.
func (m *MemoryStore) SetListDelay(dirPath string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listDelays[CleanPath(dirPath)] = d
}

// ListCalls returns how many ListDirectory calls were made.
func (m *MemoryStore) ListCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listCalls
}

// ReadCalls returns how many ReadFile and ReadFileLimited calls were made.
func (m *MemoryStore) ReadCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.readCalls
}

func (m *MemoryStore) ensureDirLocked(dirPath string, modified time.Time) {
	for dirPath != "/" {
		if _, exists := m.dirs[dirPath]; exists {
			return
		}
		m.dirs[dirPath] = Entry{
			Path:         dirPath,
			Name:         path.Base(dirPath),
			LastModified: modified,
			IsDirectory:  true,
		}
		dirPath = path.Dir(dirPath)
	}
}

func (m *MemoryStore) ListDirectory(ctx context.Context, dirPath string) ([]Entry, error) {
	dirPath = CleanPath(dirPath)

	m.mu.Lock()
	m.listCalls++
	delay := m.listDelays[dirPath]
	listErr := m.listErrors[dirPath]
	m.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if listErr != nil {
		return nil, fmt.Errorf("listing %s: %w", dirPath, listErr)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, exists := m.dirs[dirPath]; !exists {
		return nil, fmt.Errorf("listing %s: %w", dirPath, ErrNotFound)
	}

	var entries []Entry
	for p, dir := range m.dirs {
		if p != "/" && path.Dir(p) == dirPath {
			entries = append(entries, dir)
		}
	}
	for p, file := range m.files {
		if path.Dir(p) == dirPath {
			entries = append(entries, file.entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})
	return entries, nil
}

func (m *MemoryStore) ReadFile(ctx context.Context, filePath string) ([]byte, error) {
	return m.ReadFileLimited(ctx, filePath, -1)
}

func (m *MemoryStore) ReadFileLimited(ctx context.Context, filePath string, limit int64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	filePath = CleanPath(filePath)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.readCalls++

	file, exists := m.files[filePath]
	if !exists {
		return nil, fmt.Errorf("reading %s: %w", filePath, ErrNotFound)
	}
	content := file.content
	if limit >= 0 && int64(len(content)) > limit {
		content = content[:limit]
	}
	out := make([]byte, len(content))
	copy(out, content)
	return out, nil
}

func (m *MemoryStore) Stat(ctx context.Context, filePath string) (*Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	filePath = CleanPath(filePath)

	m.mu.RLock()
	defer m.mu.RUnlock()
	if file, exists := m.files[filePath]; exists {
		entry := file.entry
		return &entry, nil
	}
	if dir, exists := m.dirs[filePath]; exists {
		return &dir, nil
	}
	return nil, fmt.Errorf("stat %s: %w", filePath, ErrNotFound)
}
