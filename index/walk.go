package index

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lexandro/davsearch-mcp/ignore"
	"github.com/lexandro/davsearch-mcp/store"
)

type walkJob struct {
	dirPath string
	depth   int // Depth of the directory's children
}

// walker collects a depth- and size-bounded listing of a subtree with a fixed
// number of concurrent directory listings.
type walker struct {
	store          store.Store
	matcher        *ignore.Matcher
	logger         *slog.Logger
	maxDepth       int
	maxEntries     int
	concurrency    int
	listingTimeout time.Duration

	mu         sync.Mutex
	entries    []*FileMetadata
	truncated  bool
	failedDirs int
}

// run lists basePath synchronously, then walks its subdirectories through a bounded
// worker pool. A failure listing basePath itself is returned; failures below it are
// logged and skipped.
func (w *walker) run(ctx context.Context, basePath string) error {
	children, err := w.list(ctx, basePath)
	if err != nil {
		return err
	}
	pending := w.collect(children, 0)

	workerCount := max(w.concurrency, 1)
	jobs := make(chan walkJob)
	done := make(chan []walkJob)

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				found := w.visit(ctx, job)
				select {
				case done <- found:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	// Dispatch loop: FIFO queue of directories, at most workerCount in flight
	inFlight := 0
	for {
		var sendCh chan walkJob
		var next walkJob
		if len(pending) > 0 && !w.full() {
			sendCh = jobs
			next = pending[0]
		}
		if sendCh == nil && inFlight == 0 {
			break
		}

		select {
		case sendCh <- next:
			pending = pending[1:]
			inFlight++
		case found := <-done:
			inFlight--
			pending = append(pending, found...)
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		}
	}

	close(jobs)
	wg.Wait()
	return nil
}

func (w *walker) visit(ctx context.Context, job walkJob) []walkJob {
	children, err := w.list(ctx, job.dirPath)
	if err != nil {
		if ctx.Err() == nil {
			w.logger.Warn("skipping unreadable directory", "path", job.dirPath, "error", err)
			w.mu.Lock()
			w.failedDirs++
			w.mu.Unlock()
		}
		return nil
	}
	return w.collect(children, job.depth)
}

func (w *walker) list(ctx context.Context, dirPath string) ([]store.Entry, error) {
	return runWithTimeout(ctx, w.listingTimeout, func(callCtx context.Context) ([]store.Entry, error) {
		return w.store.ListDirectory(callCtx, dirPath)
	})
}

// collect records one directory's children, files before directories, and returns
// the subdirectories that may still be descended into.
func (w *walker) collect(children []store.Entry, depth int) []walkJob {
	files := make([]*FileMetadata, 0, len(children))
	var dirs []*FileMetadata
	for _, child := range children {
		if w.matcher != nil && w.matcher.ShouldIgnore(child.Path, child.IsDirectory) {
			continue
		}
		metadata := NewFileMetadata(child, depth)
		if metadata.IsDirectory {
			dirs = append(dirs, metadata)
		} else {
			files = append(files, metadata)
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	var next []walkJob
	for _, metadata := range append(files, dirs...) {
		if len(w.entries) >= w.maxEntries {
			w.truncated = true
			break
		}
		w.entries = append(w.entries, metadata)
		if metadata.IsDirectory && depth < w.maxDepth {
			next = append(next, walkJob{dirPath: metadata.Path, depth: depth + 1})
		}
	}
	return next
}

func (w *walker) full() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entries) >= w.maxEntries
}
