package watcher

import (
	"sort"
	"sync"
	"time"
)

// Op is the kind of change seen for a path.
type Op int

const (
	// OpSave covers creation and writes: the file should be rescanned.
	OpSave Op = iota
	// OpRemove covers removal and rename: the path no longer holds the file.
	OpRemove
)

// Change is one debounced file change.
type Change struct {
	Path string
	Op   Op
}

// Debouncer collects changes and emits them as one batch after a quiet period.
// Several changes to one path inside the window collapse into the latest.
type Debouncer struct {
	interval time.Duration
	pending  map[string]Op
	mu       sync.Mutex
	timer    *time.Timer
	output   chan []Change
}

// NewDebouncer creates a debouncer with the specified quiet interval.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{
		interval: interval,
		pending:  make(map[string]Op),
		output:   make(chan []Change, 16),
	}
}

// Output returns the channel that receives batches, each sorted by path.
func (d *Debouncer) Output() <-chan []Change {
	return d.output
}

// Add records a change and restarts the quiet period.
func (d *Debouncer) Add(path string, op Op) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[path] = op

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, d.flush)
}

func (d *Debouncer) flush() {
	d.mu.Lock()
	if len(d.pending) == 0 {
		d.mu.Unlock()
		return
	}
	batch := make([]Change, 0, len(d.pending))
	for path, op := range d.pending {
		batch = append(batch, Change{Path: path, Op: op})
	}
	d.pending = make(map[string]Op)
	d.mu.Unlock()

	sort.Slice(batch, func(i, j int) bool { return batch[i].Path < batch[j].Path })
	d.output <- batch
}
