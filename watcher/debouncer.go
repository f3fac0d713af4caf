package watcher

import (
	"maps"
	"slices"
	"sync"
	"time"
)

// DebouncedEvent is one store path that changed during a quiet window.
type DebouncedEvent struct {
	Path string // e.g. /Documents/notes.txt
	Op   EventOp
}

type EventOp int

const (
	OpCreate EventOp = iota
	OpWrite
	OpRemove
	OpRename
)

var opNames = [...]string{OpCreate: "create", OpWrite: "write", OpRemove: "remove", OpRename: "rename"}

func (op EventOp) String() string {
	if op < 0 || int(op) >= len(opNames) {
		return "unknown"
	}
	return opNames[op]
}

// changesListing is true when the parent folder's listing is affected.
func (op EventOp) changesListing() bool {
	return op != OpWrite
}

// merge folds a later op into a pending one. A plain write never hides a listing change.
func (op EventOp) merge(later EventOp) EventOp {
	if op.changesListing() && !later.changesListing() {
		return op
	}
	return later
}

// Debouncer coalesces change events per path and emits them, sorted by path,
// once no new event has arrived for the configured interval.
type Debouncer struct {
	interval time.Duration
	output   chan []DebouncedEvent

	mu      sync.Mutex
	pending map[string]EventOp
	timer   *time.Timer
	stopped bool
}

func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{
		interval: interval,
		output:   make(chan []DebouncedEvent, 16),
		pending:  map[string]EventOp{},
	}
}

// Output returns the channel that receives batched events.
func (d *Debouncer) Output() <-chan []DebouncedEvent {
	return d.output
}

// Add records an event and restarts the quiet window.
func (d *Debouncer) Add(storePath string, op EventOp) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	if previous, ok := d.pending[storePath]; ok {
		op = previous.merge(op)
	}
	d.pending[storePath] = op

	if d.timer == nil {
		d.timer = time.AfterFunc(d.interval, d.flush)
		return
	}
	d.timer.Reset(d.interval)
}

// Stop discards pending events. Later calls to Add are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	clear(d.pending)
}

func (d *Debouncer) flush() {
	d.mu.Lock()
	if d.stopped || len(d.pending) == 0 {
		d.mu.Unlock()
		return
	}
	batch := make([]DebouncedEvent, 0, len(d.pending))
	for _, storePath := range slices.Sorted(maps.Keys(d.pending)) {
		batch = append(batch, DebouncedEvent{Path: storePath, Op: d.pending[storePath]})
	}
	clear(d.pending)
	d.mu.Unlock()

	d.output <- batch
}
