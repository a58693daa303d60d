package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a notification.
type Kind string

// Notification kinds.
const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notification is a transient, dismissible user-facing message describing
// the outcome of an operation.
type Notification struct {
	ID        string    `json:"id"`
	Body      string    `json:"body"`
	Kind      Kind      `json:"kind"`
	CreatedAt time.Time `json:"createdAt"`
}

// Queue is an append-only notification queue. Display order is insertion
// order; entries may be dismissed out of order without renumbering the rest.
type Queue struct {
	mu      sync.Mutex
	entries []Notification
}

// New creates an empty Queue.
func New() *Queue {
	return &Queue{}
}

// Enqueue appends a notification, assigning it a unique id, and returns it.
func (q *Queue) Enqueue(body string, kind Kind) Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := Notification{
		ID:        uuid.NewString(),
		Body:      body,
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	}
	q.entries = append(q.entries, n)
	return n
}

// Dismiss removes the entry with the given id regardless of its position.
// It reports whether an entry was removed.
func (q *Queue) Dismiss(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, n := range q.entries {
		if n.ID == id {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Entries returns a copy of all entries in insertion order.
func (q *Queue) Entries() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Notification, len(q.entries))
	copy(out, q.entries)
	return out
}

// Len returns the number of queued entries.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// ExpireOlderThan removes entries older than maxAge and returns how many
// were removed. Intended to be driven by an external timer.
func (q *Queue) ExpireOlderThan(maxAge time.Duration) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	cutoff := time.Now().UTC().Add(-maxAge)
	kept := q.entries[:0]
	removed := 0
	for _, n := range q.entries {
		if n.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, n)
	}
	q.entries = kept
	return removed
}
