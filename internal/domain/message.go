package domain

import (
	"encoding/json"
	"time"
)

// Message is a single chat message. Messages are immutable once cached;
// CreatedAt is non-decreasing within a correctly ordered page sequence.
type Message struct {
	ID         string    `json:"id"`
	ChatRoomID string    `json:"chatRoomId"`
	AuthorID   string    `json:"authorId"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"createdAt"`
}

// MessagePage is the result of one page fetch for one room. Pages are
// 1-based and ordered newest-first, matching the backend's paging scheme.
type MessagePage struct {
	ChatRoomID string    `json:"chatRoomId"`
	Page       int       `json:"page"`
	Messages   []Message `json:"messages"`
}

// Encode serializes a value to JSON bytes.
func Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

// DecodeMessage deserializes JSON bytes into a Message.
func DecodeMessage(data []byte) (Message, error) {
	var m Message
	err := json.Unmarshal(data, &m)
	return m, err
}
