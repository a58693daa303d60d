package paging

import (
	"errors"
	"sync"
	"testing"
)

func TestStateUnknownRoom(t *testing.T) {
	t.Parallel()
	tr := NewTracker()
	st := tr.State("r1")
	if st.Phase != PhaseEmpty || st.CurrentPage != 0 || !st.HasMore || st.TotalKnown {
		t.Errorf("unexpected initial state: %+v", st)
	}
}

func TestFetchLifecycle(t *testing.T) {
	t.Parallel()
	tr := NewTracker()
	tr.SetTotalPages("r1", 3)

	if err := tr.BeginFetch("r1"); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if st := tr.State("r1"); st.Phase != PhaseLoading {
		t.Errorf("expected loading, got %s", st.Phase)
	}

	tr.FinishFetch("r1", 1)
	st := tr.State("r1")
	if st.Phase != PhaseLoaded || st.CurrentPage != 1 || !st.HasMore {
		t.Errorf("unexpected state after first page: %+v", st)
	}
}

func TestBeginFetchRejectsConcurrent(t *testing.T) {
	t.Parallel()
	tr := NewTracker()
	if err := tr.BeginFetch("r1"); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := tr.BeginFetch("r1"); !errors.Is(err, ErrFetchInFlight) {
		t.Errorf("expected ErrFetchInFlight, got %v", err)
	}
	// Other rooms are unaffected.
	if err := tr.BeginFetch("r2"); err != nil {
		t.Errorf("expected independent room to begin, got %v", err)
	}
}

func TestCurrentPageMonotonic(t *testing.T) {
	t.Parallel()
	tr := NewTracker()
	tr.SetTotalPages("r1", 5)

	tr.BeginFetch("r1")
	tr.FinishFetch("r1", 2)
	tr.BeginFetch("r1")
	// A stale completion for an earlier page must not regress the cursor.
	tr.FinishFetch("r1", 1)

	if st := tr.State("r1"); st.CurrentPage != 2 {
		t.Errorf("expected cursor 2, got %d", st.CurrentPage)
	}
}

func TestAbortFetchRestoresPhase(t *testing.T) {
	t.Parallel()
	tr := NewTracker()

	tr.BeginFetch("r1")
	tr.AbortFetch("r1")
	if st := tr.State("r1"); st.Phase != PhaseEmpty || st.CurrentPage != 0 {
		t.Errorf("expected empty after aborted first fetch, got %+v", st)
	}

	tr.BeginFetch("r1")
	tr.FinishFetch("r1", 1)
	tr.BeginFetch("r1")
	tr.AbortFetch("r1")
	if st := tr.State("r1"); st.Phase != PhaseLoaded || st.CurrentPage != 1 {
		t.Errorf("expected loaded at page 1 after abort, got %+v", st)
	}
}

func TestHasMoreForcedFalseAtTotal(t *testing.T) {
	t.Parallel()
	tr := NewTracker()
	tr.SetTotalPages("r1", 2)

	tr.BeginFetch("r1")
	tr.FinishFetch("r1", 1)
	if st := tr.State("r1"); !st.HasMore {
		t.Error("expected more pages after 1 of 2")
	}

	tr.BeginFetch("r1")
	tr.FinishFetch("r1", 2)
	if st := tr.State("r1"); st.HasMore {
		t.Error("expected HasMore false after final page")
	}
}

func TestTotalPagesTruncation(t *testing.T) {
	t.Parallel()
	tr := NewTracker()
	tr.SetTotalPages("r1", 5)
	tr.BeginFetch("r1")
	tr.FinishFetch("r1", 3)

	// Backend truncation: count drops at or below the cursor.
	tr.SetTotalPages("r1", 2)
	if st := tr.State("r1"); st.HasMore {
		t.Error("expected HasMore false after truncation")
	}
}

func TestMarkExhaustedTerminal(t *testing.T) {
	t.Parallel()
	tr := NewTracker()
	tr.SetTotalPages("r1", 1)
	tr.BeginFetch("r1")
	tr.FinishFetch("r1", 1)
	tr.MarkExhausted("r1")

	if err := tr.BeginFetch("r1"); !errors.Is(err, ErrExhausted) {
		t.Errorf("expected ErrExhausted, got %v", err)
	}
	// A grown page count does not reopen an exhausted room.
	tr.SetTotalPages("r1", 4)
	if st := tr.State("r1"); st.Phase != PhaseExhausted || st.HasMore {
		t.Errorf("expected exhausted to stick, got %+v", st)
	}
}

func TestResetClearsRoom(t *testing.T) {
	t.Parallel()
	tr := NewTracker()
	tr.SetTotalPages("r1", 1)
	tr.BeginFetch("r1")
	tr.FinishFetch("r1", 1)
	tr.MarkExhausted("r1")

	tr.Reset("r1")
	st := tr.State("r1")
	if st.Phase != PhaseEmpty || st.CurrentPage != 0 || !st.HasMore {
		t.Errorf("expected fresh state after reset, got %+v", st)
	}
	if err := tr.BeginFetch("r1"); err != nil {
		t.Errorf("expected fetch to begin after reset, got %v", err)
	}
}

func TestBeginFetchConcurrentOneWinner(t *testing.T) {
	t.Parallel()
	tr := NewTracker()
	tr.SetTotalPages("r1", 3)

	const goroutines = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := tr.BeginFetch("r1"); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if wins != 1 {
		t.Errorf("expected exactly 1 winner, got %d", wins)
	}
}
