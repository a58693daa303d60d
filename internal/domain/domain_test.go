package domain

import (
	"testing"
	"time"
)

func TestDecodeMessage(t *testing.T) {
	t.Parallel()
	data := []byte(`{"id":"m1","chatRoomId":"r1","authorId":"alice","body":"hello","createdAt":"2026-01-01T12:00:00Z"}`)
	m, err := DecodeMessage(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m.ID != "m1" || m.ChatRoomID != "r1" || m.AuthorID != "alice" || m.Body != "hello" {
		t.Errorf("unexpected message: %+v", m)
	}
	if !m.CreatedAt.Equal(time.Date(2026, time.January, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected timestamp: %v", m.CreatedAt)
	}
}

func TestDecodeMessageInvalid(t *testing.T) {
	t.Parallel()
	if _, err := DecodeMessage([]byte("not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestWithParticipant(t *testing.T) {
	t.Parallel()
	r := ChatRoom{ID: "r1", Participants: []string{"alice"}}

	r2 := r.WithParticipant("bob")
	if !r2.HasParticipant("bob") || len(r2.Participants) != 2 {
		t.Errorf("expected bob added, got %v", r2.Participants)
	}
	// Original is untouched.
	if r.HasParticipant("bob") {
		t.Error("expected original room unchanged")
	}
	// Adding an existing participant keeps set semantics.
	r3 := r2.WithParticipant("bob")
	if len(r3.Participants) != 2 {
		t.Errorf("expected 2 participants, got %v", r3.Participants)
	}
}

func TestWithoutParticipant(t *testing.T) {
	t.Parallel()
	r := ChatRoom{ID: "r1", Participants: []string{"alice", "bob"}}

	r2 := r.WithoutParticipant("bob")
	if r2.HasParticipant("bob") || len(r2.Participants) != 1 {
		t.Errorf("expected bob removed, got %v", r2.Participants)
	}
	// Removing an absent participant is a no-op.
	r3 := r2.WithoutParticipant("carol")
	if len(r3.Participants) != 1 {
		t.Errorf("expected 1 participant, got %v", r3.Participants)
	}
}
