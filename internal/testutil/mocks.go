package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/parley-chat/parley/internal/domain"
)

// MockArchive implements cache.Archive for testing.
type MockArchive struct {
	mu    sync.Mutex
	Err   error
	saved []domain.Message
}

// NewMockArchive creates a new MockArchive.
func NewMockArchive() *MockArchive {
	return &MockArchive{}
}

// SaveMessages records the batch, or fails with the configured error.
func (a *MockArchive) SaveMessages(msgs []domain.Message) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Err != nil {
		return a.Err
	}
	a.saved = append(a.saved, msgs...)
	return nil
}

// Saved returns a copy of every message saved so far.
func (a *MockArchive) Saved() []domain.Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.Message, len(a.saved))
	copy(out, a.saved)
	return out
}

// MockAPI implements the REST collaborator interfaces used by the fetch
// coordinator and the mutation gateway. Behavior is configured through the
// exported fields; calls are recorded for assertions.
type MockAPI struct {
	mu sync.Mutex

	PageCount    int
	PageCountErr error

	Pages         map[int][]domain.Message
	AutoPageSize  int // when set, missing pages are generated per room
	MessagesErr   error
	MessagesDelay time.Duration

	CreatedRoom    domain.ChatRoom
	CreateRoomErr  error
	DeleteRoomErr  error
	ParticipantErr error

	messageCalls     []int
	pageCountCalls   int
	createCalls      int
	deleteCalls      []string
	participantCalls []string
}

// NewMockAPI creates a MockAPI with no pages configured.
func NewMockAPI() *MockAPI {
	return &MockAPI{Pages: make(map[int][]domain.Message)}
}

// Messages returns the configured page after the configured delay.
func (m *MockAPI) Messages(ctx context.Context, roomID string, page int) ([]domain.Message, error) {
	m.mu.Lock()
	m.messageCalls = append(m.messageCalls, page)
	delay := m.MessagesDelay
	err := m.MessagesErr
	msgs, ok := m.Pages[page]
	if !ok && m.AutoPageSize > 0 {
		msgs = PageOfMessages(roomID, page, m.AutoPageSize)
	}
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

// MessagePageCount returns the configured total page count.
func (m *MockAPI) MessagePageCount(ctx context.Context, roomID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pageCountCalls++
	if m.PageCountErr != nil {
		return 0, m.PageCountErr
	}
	return m.PageCount, nil
}

// CreateRoom returns the configured room or error.
func (m *MockAPI) CreateRoom(ctx context.Context, participantUsername string) (domain.ChatRoom, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.CreateRoomErr != nil {
		return domain.ChatRoom{}, m.CreateRoomErr
	}
	return m.CreatedRoom, nil
}

// DeleteRoom records the call and returns the configured error.
func (m *MockAPI) DeleteRoom(ctx context.Context, roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCalls = append(m.deleteCalls, roomID)
	return m.DeleteRoomErr
}

// AddParticipant records the call and returns the configured error.
func (m *MockAPI) AddParticipant(ctx context.Context, roomID, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.participantCalls = append(m.participantCalls, "add:"+roomID+":"+username)
	return m.ParticipantErr
}

// RemoveParticipant records the call and returns the configured error.
func (m *MockAPI) RemoveParticipant(ctx context.Context, roomID, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.participantCalls = append(m.participantCalls, "remove:"+roomID+":"+username)
	return m.ParticipantErr
}

// MessageCalls returns the pages requested so far, in call order.
func (m *MockAPI) MessageCalls() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int, len(m.messageCalls))
	copy(out, m.messageCalls)
	return out
}

// PageCountCalls returns how many times the page count was queried.
func (m *MockAPI) PageCountCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pageCountCalls
}

// CreateCalls returns how many room creations were requested.
func (m *MockAPI) CreateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createCalls
}

// DeleteCalls returns the room ids whose deletion was requested.
func (m *MockAPI) DeleteCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.deleteCalls))
	copy(out, m.deleteCalls)
	return out
}

// ParticipantCalls returns the recorded participant mutations.
func (m *MockAPI) ParticipantCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.participantCalls))
	copy(out, m.participantCalls)
	return out
}

// PageOfMessages builds a page of n messages for a room. Messages within a
// page are newest first, and page 1 holds the newest messages, matching the
// backend's paging scheme.
func PageOfMessages(roomID string, page, n int) []domain.Message {
	base := time.Date(2026, time.January, 1, 12, 0, 0, 0, time.UTC)
	msgs := make([]domain.Message, 0, n)
	for i := 0; i < n; i++ {
		age := time.Duration((page-1)*n+i) * time.Minute
		msgs = append(msgs, domain.Message{
			ID:         fmt.Sprintf("%s-p%d-m%d", roomID, page, i),
			ChatRoomID: roomID,
			AuthorID:   fmt.Sprintf("user%d", i%3),
			Body:       fmt.Sprintf("message %d of page %d", i, page),
			CreatedAt:  base.Add(-age),
		})
	}
	return msgs
}
