package eval

import (
	"sync"

	"github.com/freeeve/repertoire/internal/board"
)

// BrowseQueue holds positions users looked at that have no evaluation yet.
// Entries are deduplicated by position key; the oldest entry is dropped
// when the queue is full.
type BrowseQueue struct {
	mu      sync.Mutex
	queue   []string
	seen    map[string]bool
	maxSize int
}

// NewBrowseQueue creates a browse queue holding at most maxSize positions.
func NewBrowseQueue(maxSize int) *BrowseQueue {
	if maxSize <= 0 {
		maxSize = 10000
	}
	return &BrowseQueue{
		queue:   make([]string, 0, 64),
		seen:    make(map[string]bool),
		maxSize: maxSize,
	}
}

// Enqueue adds fen unless its position is already queued. It reports
// whether the position was added.
func (bq *BrowseQueue) Enqueue(fen string) bool {
	bq.mu.Lock()
	defer bq.mu.Unlock()

	key := board.Key(fen)
	if bq.seen[key] {
		return false
	}
	if len(bq.queue) >= bq.maxSize {
		delete(bq.seen, board.Key(bq.queue[0]))
		bq.queue = bq.queue[1:]
	}
	bq.queue = append(bq.queue, fen)
	bq.seen[key] = true
	return true
}

// Dequeue returns the oldest queued FEN, or false when empty.
func (bq *BrowseQueue) Dequeue() (string, bool) {
	bq.mu.Lock()
	defer bq.mu.Unlock()

	if len(bq.queue) == 0 {
		return "", false
	}
	fen := bq.queue[0]
	bq.queue = bq.queue[1:]
	delete(bq.seen, board.Key(fen))
	return fen, true
}

// Len returns the current queue size.
func (bq *BrowseQueue) Len() int {
	bq.mu.Lock()
	defer bq.mu.Unlock()
	return len(bq.queue)
}

// Contains reports whether fen's position is queued.
func (bq *BrowseQueue) Contains(fen string) bool {
	bq.mu.Lock()
	defer bq.mu.Unlock()
	return bq.seen[board.Key(fen)]
}
