package notify

import (
	"testing"
	"time"
)

func TestEnqueueAssignsUniqueIDs(t *testing.T) {
	t.Parallel()
	q := New()
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		n := q.Enqueue("msg", KindSuccess)
		if n.ID == "" {
			t.Fatal("expected non-empty id")
		}
		if seen[n.ID] {
			t.Fatalf("duplicate id %s", n.ID)
		}
		seen[n.ID] = true
	}
	if q.Len() != 50 {
		t.Errorf("expected 50 entries, got %d", q.Len())
	}
}

func TestEntriesInsertionOrder(t *testing.T) {
	t.Parallel()
	q := New()
	q.Enqueue("first", KindSuccess)
	q.Enqueue("second", KindError)
	q.Enqueue("third", KindSuccess)

	entries := q.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, want := range []string{"first", "second", "third"} {
		if entries[i].Body != want {
			t.Errorf("entry %d: expected %s, got %s", i, want, entries[i].Body)
		}
	}
}

func TestDismissOutOfOrder(t *testing.T) {
	t.Parallel()
	q := New()
	older := q.Enqueue("older", KindError)
	newer := q.Enqueue("newer", KindSuccess)

	if !q.Dismiss(older.ID) {
		t.Fatal("expected dismissal of older entry")
	}
	entries := q.Entries()
	if len(entries) != 1 || entries[0].ID != newer.ID {
		t.Errorf("expected only newer entry to remain, got %v", entries)
	}

	if q.Dismiss(older.ID) {
		t.Error("expected second dismissal to report false")
	}
	if q.Dismiss("nope") {
		t.Error("expected dismissal of unknown id to report false")
	}
}

func TestExpireOlderThan(t *testing.T) {
	t.Parallel()
	q := New()
	q.Enqueue("old", KindError)
	q.Enqueue("also old", KindError)

	// Entries were created just now, so a generous cutoff keeps them.
	if n := q.ExpireOlderThan(time.Minute); n != 0 {
		t.Errorf("expected 0 expired, got %d", n)
	}

	time.Sleep(20 * time.Millisecond)
	if n := q.ExpireOlderThan(10 * time.Millisecond); n != 2 {
		t.Errorf("expected 2 expired, got %d", n)
	}
	if q.Len() != 0 {
		t.Errorf("expected empty queue, got %d entries", q.Len())
	}
}
