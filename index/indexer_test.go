package index

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/lexandro/davsearch-mcp/ignore"
	"github.com/lexandro/davsearch-mcp/store"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newDeepStore builds /l0/l1/.../l{levels-1}, each level holding one file.
func newDeepStore(levels int) *store.MemoryStore {
	m := store.NewMemoryStore()
	dir := ""
	for i := 0; i < levels; i++ {
		dir = fmt.Sprintf("%s/l%d", dir, i)
		m.AddFile(dir+"/file.txt", []byte("x"), "text/plain", time.Now())
	}
	return m
}

func Test_Indexer_DepthBound(t *testing.T) {
	assert := require.New(t)
	m := newDeepStore(8)

	for _, maxDepth := range []int{1, 2, 4} {
		ix := NewIndexer(m, Options{}, testLogger())
		fi, err := ix.GetIndex(context.Background(), Request{BasePath: "/", MaxDepth: maxDepth})
		assert.NoError(err)

		deepest := 0
		for _, file := range fi.Files {
			assert.LessOrEqual(file.Depth, maxDepth, "entry %s too deep", file.Path)
			deepest = max(deepest, file.Depth)
		}
		assert.Equal(maxDepth, deepest)
	}
}

func Test_Indexer_QuickRootUsesShallowDepth(t *testing.T) {
	assert := require.New(t)
	ix := NewIndexer(newDeepStore(8), Options{}, testLogger())

	fi, err := ix.GetIndex(context.Background(), Request{BasePath: "/", Quick: true})
	assert.NoError(err)
	assert.Equal(2, fi.MaxDepth)

	fi, err = ix.GetIndex(context.Background(), Request{BasePath: "/l0"})
	assert.NoError(err)
	assert.Equal(10, fi.MaxDepth)
}

func Test_Indexer_SizeBound(t *testing.T) {
	assert := require.New(t)
	m := store.NewMemoryStore()
	for d := 0; d < 5; d++ {
		for f := 0; f < 10; f++ {
			m.AddFile(fmt.Sprintf("/dir%d/file%02d.txt", d, f), []byte("x"), "", time.Now())
		}
	}

	ix := NewIndexer(m, Options{MaxIndexSize: 17}, testLogger())
	fi, err := ix.GetIndex(context.Background(), Request{BasePath: "/"})
	assert.NoError(err)
	assert.LessOrEqual(len(fi.Files), 17)
	assert.True(fi.Truncated)
}

func Test_Indexer_FilesBeforeDirectories(t *testing.T) {
	assert := require.New(t)
	m := store.NewMemoryStore()
	m.AddFile("/a-dir/inner.txt", []byte("x"), "", time.Now())
	m.AddFile("/z-file.txt", []byte("x"), "", time.Now())

	// Room for exactly one root entry: the file must win over the directory
	ix := NewIndexer(m, Options{MaxIndexSize: 1}, testLogger())
	fi, err := ix.GetIndex(context.Background(), Request{BasePath: "/"})
	assert.NoError(err)
	assert.Len(fi.Files, 1)
	assert.Equal("/z-file.txt", fi.Files[0].Path)
}

func Test_Indexer_FailedDirectoryIsSkipped(t *testing.T) {
	assert := require.New(t)
	m := store.NewMemoryStore()
	m.AddFile("/good/a.txt", []byte("x"), "", time.Now())
	m.AddFile("/bad/b.txt", []byte("x"), "", time.Now())
	m.SetListError("/bad", errors.New("503 service unavailable"))

	ix := NewIndexer(m, Options{}, testLogger())
	fi, err := ix.GetIndex(context.Background(), Request{BasePath: "/"})
	assert.NoError(err)
	assert.NotNil(fi.Get("/good/a.txt"))
	assert.NotNil(fi.Get("/bad"))
	assert.Nil(fi.Get("/bad/b.txt"))
}

func Test_Indexer_SlowDirectoryHitsListingTimeout(t *testing.T) {
	assert := require.New(t)
	m := store.NewMemoryStore()
	m.AddFile("/slow/a.txt", []byte("x"), "", time.Now())
	m.AddFile("/fast/b.txt", []byte("x"), "", time.Now())
	m.SetListDelay("/slow", time.Minute)

	ix := NewIndexer(m, Options{ListingTimeout: 20 * time.Millisecond}, testLogger())
	fi, err := ix.GetIndex(context.Background(), Request{BasePath: "/"})
	assert.NoError(err)
	assert.NotNil(fi.Get("/fast/b.txt"))
	assert.Nil(fi.Get("/slow/a.txt"))
}

func Test_Indexer_OverallTimeout(t *testing.T) {
	m := store.NewMemoryStore()
	m.AddDir("/", time.Now())
	m.SetListDelay("/", time.Minute)

	ix := NewIndexer(m, Options{QuickRootTimeout: 10 * time.Millisecond}, testLogger())
	_, err := ix.GetIndex(context.Background(), Request{BasePath: "/", Quick: true})
	require.ErrorIs(t, err, ErrIndexTimeout)
}

func Test_Indexer_BaseListingFailure(t *testing.T) {
	m := store.NewMemoryStore()

	ix := NewIndexer(m, Options{}, testLogger())
	_, err := ix.GetIndex(context.Background(), Request{BasePath: "/does-not-exist"})
	require.ErrorIs(t, err, ErrIndexFailed)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func Test_Indexer_CallerCancellationIsNotTimeout(t *testing.T) {
	m := store.NewMemoryStore()
	m.SetListDelay("/", time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ix := NewIndexer(m, Options{}, testLogger())
	_, err := ix.GetIndex(ctx, Request{BasePath: "/"})
	require.ErrorIs(t, err, context.Canceled)
	require.NotErrorIs(t, err, ErrIndexTimeout)
}

func Test_Indexer_CacheReuseAndTTL(t *testing.T) {
	assert := require.New(t)
	m := newDeepStore(3)

	ix := NewIndexer(m, Options{CacheTTL: 50 * time.Millisecond}, testLogger())
	_, err := ix.GetIndex(context.Background(), Request{BasePath: "/l0"})
	assert.NoError(err)
	calls := m.ListCalls()

	_, err = ix.GetIndex(context.Background(), Request{BasePath: "/l0/"})
	assert.NoError(err)
	assert.Equal(calls, m.ListCalls(), "expected cache hit")

	time.Sleep(60 * time.Millisecond)
	_, err = ix.GetIndex(context.Background(), Request{BasePath: "/l0"})
	assert.NoError(err)
	assert.Greater(m.ListCalls(), calls, "expected re-walk after TTL")
}

func Test_Indexer_ShallowCacheDoesNotServeDeeperRequest(t *testing.T) {
	assert := require.New(t)
	m := newDeepStore(6)
	ix := NewIndexer(m, Options{}, testLogger())

	_, err := ix.GetIndex(context.Background(), Request{BasePath: "/", Quick: true})
	assert.NoError(err)
	calls := m.ListCalls()

	fi, err := ix.GetIndex(context.Background(), Request{BasePath: "/", Quick: false})
	assert.NoError(err)
	assert.Greater(m.ListCalls(), calls)
	assert.Equal(3, fi.MaxDepth)

	// The deeper snapshot now serves quick requests too
	calls = m.ListCalls()
	_, err = ix.GetIndex(context.Background(), Request{BasePath: "/", Quick: true})
	assert.NoError(err)
	assert.Equal(calls, m.ListCalls())
}

func Test_Indexer_UpdateIndexInvalidatesMostSpecific(t *testing.T) {
	assert := require.New(t)
	m := newDeepStore(4)
	ix := NewIndexer(m, Options{}, testLogger())

	_, err := ix.GetIndex(context.Background(), Request{BasePath: "/"})
	assert.NoError(err)
	_, err = ix.GetIndex(context.Background(), Request{BasePath: "/l0/l1"})
	assert.NoError(err)
	assert.Len(ix.Stats(), 2)

	assert.Equal("/l0/l1", ix.UpdateIndex("/l0/l1/l2/file.txt"))
	stats := ix.Stats()
	assert.Len(stats, 1)
	assert.Equal("/", stats[0].BasePath)

	assert.Equal("/", ix.UpdateIndex("/l0/file.txt"))
	assert.Empty(ix.Stats())
	assert.Equal("", ix.UpdateIndex("/l0/file.txt"))
}

func Test_Indexer_IgnoreMatcherSkipsSubtrees(t *testing.T) {
	assert := require.New(t)
	m := store.NewMemoryStore()
	m.AddFile("/.git/config", []byte("x"), "", time.Now())
	m.AddFile("/Archive/old.txt", []byte("x"), "", time.Now())
	m.AddFile("/notes.txt", []byte("x"), "", time.Now())

	matcher, err := ignore.NewMatcher(ignore.MatcherOptions{Rules: []string{"Archive/"}})
	assert.NoError(err)

	ix := NewIndexer(m, Options{Matcher: matcher}, testLogger())
	fi, err := ix.GetIndex(context.Background(), Request{BasePath: "/"})
	assert.NoError(err)
	assert.Len(fi.Files, 1)
	assert.Equal("/notes.txt", fi.Files[0].Path)
}

func Test_Indexer_Clear(t *testing.T) {
	ix := NewIndexer(newDeepStore(2), Options{}, testLogger())
	_, err := ix.GetIndex(context.Background(), Request{BasePath: "/"})
	require.NoError(t, err)

	ix.Clear()
	require.Empty(t, ix.Stats())
}

func Test_Indexer_ListShallow(t *testing.T) {
	assert := require.New(t)
	m := newDeepStore(3)
	m.AddFile("/.DS_Store", []byte("x"), "", time.Now())
	matcher, err := ignore.NewMatcher(ignore.MatcherOptions{})
	assert.NoError(err)
	ix := NewIndexer(m, Options{Matcher: matcher}, testLogger())

	files, err := ix.ListShallow(context.Background(), "/")
	assert.NoError(err)
	assert.Len(files, 1)
	assert.Equal("/l0", files[0].Path)
	assert.Equal(0, files[0].Depth)
	assert.Empty(ix.Stats())

	m.SetListDelay("/l0", time.Second)
	ix = NewIndexer(m, Options{ListingTimeout: 10 * time.Millisecond}, testLogger())
	_, err = ix.ListShallow(context.Background(), "/l0")
	assert.ErrorIs(err, context.DeadlineExceeded)
}

// listingCounter records how many directory listings run at once.
type listingCounter struct {
	*store.MemoryStore
	delay time.Duration

	mu          sync.Mutex
	inFlight    int
	maxInFlight int
}

func (c *listingCounter) ListDirectory(ctx context.Context, dirPath string) ([]store.Entry, error) {
	c.mu.Lock()
	c.inFlight++
	c.maxInFlight = max(c.maxInFlight, c.inFlight)
	c.mu.Unlock()

	time.Sleep(c.delay)

	c.mu.Lock()
	c.inFlight--
	c.mu.Unlock()
	return c.MemoryStore.ListDirectory(ctx, dirPath)
}

func Test_Indexer_ConcurrencyWindow(t *testing.T) {
	cases := map[string]struct {
		concurrency int
		expected    int
	}{
		"Default": {0, 3},
		"Serial":  {1, 1},
		"Five":    {5, 5},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert := require.New(t)
			m := store.NewMemoryStore()
			for i := 0; i < 12; i++ {
				m.AddFile(fmt.Sprintf("/Projects/p%02d/plan.md", i), []byte("x"), "text/markdown", time.Now())
			}
			counter := &listingCounter{MemoryStore: m, delay: 20 * time.Millisecond}

			ix := NewIndexer(counter, Options{Concurrency: tc.concurrency}, testLogger())
			fi, err := ix.GetIndex(context.Background(), Request{BasePath: "/Projects"})
			assert.NoError(err)
			assert.Len(fi.Files, 24)

			assert.LessOrEqual(counter.maxInFlight, tc.expected)
			assert.Equal(tc.expected, counter.maxInFlight)
		})
	}
}
