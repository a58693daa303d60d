package selection

import "sync"

// State tracks which room is currently open and whether the sidebar is
// visible. It is process-wide UI state: it survives room switches and is
// reset only by an explicit Clear.
type State struct {
	mu          sync.Mutex
	selectedID  string
	hasSelected bool
	sidebarOpen bool
}

// New creates a State with nothing selected and the sidebar open.
func New() *State {
	return &State{sidebarOpen: true}
}

// Select sets the selected room. It reports whether the selection actually
// changed; selecting the already-selected room is a no-op, so dependent
// refetches are not triggered spuriously.
func (s *State) Select(roomID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hasSelected && s.selectedID == roomID {
		return false
	}
	s.selectedID = roomID
	s.hasSelected = true
	return true
}

// Clear unsets the selection.
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedID = ""
	s.hasSelected = false
}

// Selected returns the selected room id, if any.
func (s *State) Selected() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedID, s.hasSelected
}

// OpenSidebar makes the sidebar visible.
func (s *State) OpenSidebar() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sidebarOpen = true
}

// CloseSidebar hides the sidebar.
func (s *State) CloseSidebar() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sidebarOpen = false
}

// SidebarOpen reports whether the sidebar is visible.
func (s *State) SidebarOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sidebarOpen
}
