package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_MemoryStore_ListDirectory(t *testing.T) {
	assert := require.New(t)
	now := time.Now()

	m := NewMemoryStore()
	m.AddFile("/docs/a.txt", []byte("alpha"), "text/plain", now)
	m.AddFile("/docs/deep/b.txt", []byte("beta"), "text/plain", now)
	m.AddDir("/empty", now)

	root, err := m.ListDirectory(context.Background(), "/")
	assert.NoError(err)
	assert.Len(root, 2)
	assert.Equal("/docs", root[0].Path)
	assert.Equal("/empty", root[1].Path)

	docs, err := m.ListDirectory(context.Background(), "/docs")
	assert.NoError(err)
	assert.Len(docs, 2)
	assert.Equal("/docs/a.txt", docs[0].Path)
	assert.Equal(int64(5), docs[0].Size)
	assert.True(docs[1].IsDirectory)

	_, err = m.ListDirectory(context.Background(), "/nope")
	assert.ErrorIs(err, ErrNotFound)
	assert.Equal(3, m.ListCalls())
}

func Test_MemoryStore_RemoveDirectory(t *testing.T) {
	assert := require.New(t)
	m := NewMemoryStore()
	m.AddFile("/docs/a.txt", []byte("a"), "", time.Now())
	m.AddFile("/docs2/b.txt", []byte("b"), "", time.Now())

	m.Remove("/docs")

	_, err := m.Stat(context.Background(), "/docs/a.txt")
	assert.ErrorIs(err, ErrNotFound)
	_, err = m.Stat(context.Background(), "/docs2/b.txt")
	assert.NoError(err)
}

func Test_MemoryStore_ListErrorAndDelay(t *testing.T) {
	assert := require.New(t)
	m := NewMemoryStore()
	m.AddDir("/slow", time.Now())
	m.AddDir("/broken", time.Now())
	m.SetListDelay("/slow", time.Second)
	m.SetListError("/broken", errors.New("boom"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := m.ListDirectory(ctx, "/slow")
	assert.ErrorIs(err, context.DeadlineExceeded)

	_, err = m.ListDirectory(context.Background(), "/broken")
	assert.ErrorContains(err, "boom")
}

func Test_MemoryStore_ReadFileLimited(t *testing.T) {
	assert := require.New(t)
	m := NewMemoryStore()
	m.AddFile("/a.txt", []byte("0123456789"), "", time.Now())

	data, err := m.ReadFileLimited(context.Background(), "/a.txt", 4)
	assert.NoError(err)
	assert.Equal("0123", string(data))
	assert.Equal(1, m.ReadCalls())
}

func Test_LocalStore_Roundtrip(t *testing.T) {
	assert := require.New(t)
	dir := t.TempDir()
	assert.NoError(os.MkdirAll(filepath.Join(dir, "notes"), 0o755))
	assert.NoError(os.WriteFile(filepath.Join(dir, "notes", "todo.md"), []byte("# todo\nbuy milk"), 0o644))

	s, err := NewLocalStore(dir)
	assert.NoError(err)

	entries, err := s.ListDirectory(context.Background(), "/")
	assert.NoError(err)
	assert.Len(entries, 1)
	assert.Equal("/notes", entries[0].Path)
	assert.True(entries[0].IsDirectory)

	entry, err := s.Stat(context.Background(), "/notes/todo.md")
	assert.NoError(err)
	assert.Equal(int64(15), entry.Size)
	assert.Equal("todo.md", entry.Name)

	head, err := s.ReadFileLimited(context.Background(), "/notes/todo.md", 6)
	assert.NoError(err)
	assert.Equal("# todo", string(head))

	_, err = s.ReadFile(context.Background(), "/notes/../../etc/passwd")
	assert.ErrorIs(err, ErrNotFound)

	storePath, err := s.ToStorePath(filepath.Join(dir, "notes", "todo.md"))
	assert.NoError(err)
	assert.Equal("/notes/todo.md", storePath)
}
