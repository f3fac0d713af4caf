package watcher

import (
	"testing"
	"time"
)

const quietWindow = 40 * time.Millisecond

func nextBatch(t *testing.T, d *Debouncer) []DebouncedEvent {
	t.Helper()
	select {
	case batch := <-d.Output():
		return batch
	case <-time.After(20 * quietWindow):
		t.Fatal("no batch emitted")
		return nil
	}
}

func Test_Debouncer_Batches(t *testing.T) {
	cases := []struct {
		name     string
		adds     []DebouncedEvent
		expected []DebouncedEvent
	}{
		{
			name:     "Single",
			adds:     []DebouncedEvent{{"/Documents/notes.txt", OpWrite}},
			expected: []DebouncedEvent{{"/Documents/notes.txt", OpWrite}},
		},
		{
			name:     "LatestOpWins",
			adds:     []DebouncedEvent{{"/Documents/notes.txt", OpWrite}, {"/Documents/notes.txt", OpRemove}},
			expected: []DebouncedEvent{{"/Documents/notes.txt", OpRemove}},
		},
		{
			name:     "WriteKeepsCreate",
			adds:     []DebouncedEvent{{"/Documents/new.txt", OpCreate}, {"/Documents/new.txt", OpWrite}},
			expected: []DebouncedEvent{{"/Documents/new.txt", OpCreate}},
		},
		{
			name: "SortedByPath",
			adds: []DebouncedEvent{
				{"/Documents/notes.txt", OpWrite},
				{"/Documents/budget.md", OpCreate},
				{"/Archive", OpRemove},
			},
			expected: []DebouncedEvent{
				{"/Archive", OpRemove},
				{"/Documents/budget.md", OpCreate},
				{"/Documents/notes.txt", OpWrite},
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := NewDebouncer(quietWindow)
			for _, event := range tc.adds {
				d.Add(event.Path, event.Op)
			}
			batch := nextBatch(t, d)
			if len(batch) != len(tc.expected) {
				t.Fatalf("expected %d events, got %v", len(tc.expected), batch)
			}
			for i := range batch {
				if batch[i] != tc.expected[i] {
					t.Errorf("event %d: expected %v, got %v", i, tc.expected[i], batch[i])
				}
			}
		})
	}
}

func Test_Debouncer_LateEventExtendsWindow(t *testing.T) {
	d := NewDebouncer(quietWindow)

	d.Add("/Documents/notes.txt", OpWrite)
	time.Sleep(quietWindow / 2)
	d.Add("/Documents/budget.md", OpWrite)

	if batch := nextBatch(t, d); len(batch) != 2 {
		t.Fatalf("expected both events in one batch, got %v", batch)
	}
}

func Test_Debouncer_StopDiscardsPending(t *testing.T) {
	d := NewDebouncer(quietWindow)

	d.Add("/Documents/notes.txt", OpWrite)
	d.Stop()
	d.Add("/Documents/other.txt", OpWrite)

	select {
	case batch := <-d.Output():
		t.Fatalf("expected no batch after Stop, got %v", batch)
	case <-time.After(3 * quietWindow):
	}
}

func Test_EventOp_String(t *testing.T) {
	if OpRename.String() != "rename" || EventOp(42).String() != "unknown" {
		t.Errorf("unexpected names: %s %s", OpRename, EventOp(42))
	}
}
