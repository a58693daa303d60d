package domain

// ChatRoom is a chat conversation with a set of participants. Rooms are
// never mutated in place except for participant membership; cache updates
// replace the whole record.
type ChatRoom struct {
	ID            string   `json:"id"`
	Participants  []string `json:"participants"`
	LastMessageID string   `json:"lastMessageId,omitempty"`
}

// HasParticipant reports whether the given user id is a participant.
func (r ChatRoom) HasParticipant(userID string) bool {
	for _, p := range r.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// WithParticipant returns a copy of the room with the user added.
// Adding an existing participant is a no-op copy.
func (r ChatRoom) WithParticipant(userID string) ChatRoom {
	if r.HasParticipant(userID) {
		return r
	}
	out := r
	out.Participants = append(append([]string(nil), r.Participants...), userID)
	return out
}

// WithoutParticipant returns a copy of the room with the user removed.
func (r ChatRoom) WithoutParticipant(userID string) ChatRoom {
	out := r
	out.Participants = make([]string, 0, len(r.Participants))
	for _, p := range r.Participants {
		if p != userID {
			out.Participants = append(out.Participants, p)
		}
	}
	return out
}
