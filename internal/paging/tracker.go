package paging

import (
	"errors"
	"sync"
)

// Phase is the lifecycle phase of a room's pagination.
type Phase int

// Pagination phases. A room starts Empty, moves to Loading while a fetch is
// in flight, settles in Loaded, and terminates in Exhausted once every page
// has been fetched. Exhausted is irreversible until the room is Reset.
const (
	PhaseEmpty Phase = iota
	PhaseLoading
	PhaseLoaded
	PhaseExhausted
)

// String returns a readable phase name for logs.
func (p Phase) String() string {
	switch p {
	case PhaseEmpty:
		return "empty"
	case PhaseLoading:
		return "loading"
	case PhaseLoaded:
		return "loaded"
	case PhaseExhausted:
		return "exhausted"
	}
	return "unknown"
}

// Tracker errors.
var (
	// ErrFetchInFlight is returned by BeginFetch while another fetch for
	// the same room is outstanding.
	ErrFetchInFlight = errors.New("fetch already in flight")
	// ErrExhausted is returned by BeginFetch once all pages are fetched.
	ErrExhausted = errors.New("all pages fetched")
)

// PageState is the pagination cursor for one room. CurrentPage is 0 when
// nothing has been fetched; HasMore is stored explicitly so exhaustion can
// be forced even against a stale page count.
type PageState struct {
	Phase       Phase
	CurrentPage int
	TotalPages  int
	TotalKnown  bool
	HasMore     bool
}

// Tracker holds per-room pagination state. Rooms are independent; there is
// no shared cursor across rooms.
type Tracker struct {
	mu    sync.Mutex
	rooms map[string]*PageState
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{rooms: make(map[string]*PageState)}
}

// get returns the state for a room, creating it on first use.
// Caller must hold t.mu.
func (t *Tracker) get(roomID string) *PageState {
	st, ok := t.rooms[roomID]
	if !ok {
		st = &PageState{Phase: PhaseEmpty, HasMore: true}
		t.rooms[roomID] = st
	}
	return st
}

// recompute forces HasMore false once the cursor reaches the known total.
// Caller must hold t.mu.
func recompute(st *PageState) {
	if st.TotalKnown && st.CurrentPage >= st.TotalPages {
		st.HasMore = false
	}
}

// State returns a copy of the room's pagination state. Unknown rooms report
// an Empty state with HasMore true.
func (t *Tracker) State(roomID string) PageState {
	t.mu.Lock()
	defer t.mu.Unlock()
	if st, ok := t.rooms[roomID]; ok {
		return *st
	}
	return PageState{Phase: PhaseEmpty, HasMore: true}
}

// SetTotalPages records the total page count reported by the backend. A
// count at or below the current cursor forces HasMore false; an exhausted
// room stays exhausted even if the count later grows.
func (t *Tracker) SetTotalPages(roomID string, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st := t.get(roomID)
	st.TotalPages = total
	st.TotalKnown = true
	if st.Phase == PhaseExhausted {
		return
	}
	recompute(st)
}

// BeginFetch marks a fetch as in flight. It fails with ErrFetchInFlight if
// another fetch for the room is outstanding, and with ErrExhausted once the
// room has no pages left; in both cases no state is changed.
func (t *Tracker) BeginFetch(roomID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	st := t.get(roomID)
	switch st.Phase {
	case PhaseLoading:
		return ErrFetchInFlight
	case PhaseExhausted:
		return ErrExhausted
	}
	st.Phase = PhaseLoading
	return nil
}

// FinishFetch records a successfully merged page. Call it only after the
// page's messages have been merged into the cache, so no observer sees a
// cursor ahead of the cached data. The cursor never regresses: an
// out-of-order completion for an older page leaves it unchanged.
func (t *Tracker) FinishFetch(roomID string, page int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st := t.get(roomID)
	st.Phase = PhaseLoaded
	if page > st.CurrentPage {
		st.CurrentPage = page
	}
	recompute(st)
}

// AbortFetch rolls a failed fetch back to the pre-call phase. The cursor is
// untouched, so a retry targets the same page.
func (t *Tracker) AbortFetch(roomID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st := t.get(roomID)
	if st.Phase != PhaseLoading {
		return
	}
	if st.CurrentPage == 0 {
		st.Phase = PhaseEmpty
	} else {
		st.Phase = PhaseLoaded
	}
}

// MarkExhausted moves the room to the terminal Exhausted phase and forces
// HasMore false, even if the stored page count is stale.
func (t *Tracker) MarkExhausted(roomID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st := t.get(roomID)
	st.Phase = PhaseExhausted
	st.HasMore = false
}

// Reset drops all pagination state for a room, e.g. when the room is
// deleted or the cache is cleared.
func (t *Tracker) Reset(roomID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.rooms, roomID)
}
