package cache

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/parley-chat/parley/internal/domain"
)

// Change entity names.
const (
	EntityRoom    = "room"
	EntityMessage = "message"
)

// Change describes one cache mutation: which entity kind changed and the
// ids involved. Every mutating operation returns its Change and publishes
// it to subscribers, so observers never depend on implicit reactivity.
type Change struct {
	Entity string
	IDs    []string
}

// Archive persists messages merged into the cache, for offline history.
type Archive interface {
	// SaveMessages persists a batch of messages. Saving an already-stored
	// message id must be a no-op.
	SaveMessages(msgs []domain.Message) error
}

// Cache is the normalized in-memory store of rooms and messages. It owns
// these records exclusively; other components hold ids, never copies of
// message bodies. All mutations are whole-record replacements.
//
// Per-room message order is insertion order merged by page order: page
// fetches append at the tail (older pages), live messages prepend at the
// head (newest first). Nothing is re-sorted on read, so the cost of a merge
// stays linear in the newly added items.
type Cache struct {
	mu       sync.RWMutex
	rooms    map[string]domain.ChatRoom
	messages map[string]domain.Message
	order    map[string][]string // room id -> message ids, newest first
	subs     map[chan Change]bool
	archive  Archive
}

// New creates an empty Cache. A nil archive disables write-through.
func New(archive Archive) *Cache {
	return &Cache{
		rooms:    make(map[string]domain.ChatRoom),
		messages: make(map[string]domain.Message),
		order:    make(map[string][]string),
		subs:     make(map[chan Change]bool),
		archive:  archive,
	}
}

// UpsertMessages merges an ordered page of messages into a room, appending
// after all previously merged pages. The merge is idempotent: an id that is
// already cached is skipped without touching its content or position. The
// returned Change lists only the newly added ids.
func (c *Cache) UpsertMessages(roomID string, msgs []domain.Message) Change {
	c.mu.Lock()
	added := make([]string, 0, len(msgs))
	fresh := make([]domain.Message, 0, len(msgs))
	for _, m := range msgs {
		if _, ok := c.messages[m.ID]; ok {
			continue
		}
		c.messages[m.ID] = m
		c.order[roomID] = append(c.order[roomID], m.ID)
		added = append(added, m.ID)
		fresh = append(fresh, m)
	}
	c.mu.Unlock()

	c.archiveSave(fresh)
	ch := Change{Entity: EntityMessage, IDs: added}
	if len(added) > 0 {
		c.publish(ch)
	}
	return ch
}

// PrependMessages merges messages at the head of a room's order, for live
// updates that are newer than anything fetched. Idempotency matches
// UpsertMessages.
func (c *Cache) PrependMessages(roomID string, msgs []domain.Message) Change {
	c.mu.Lock()
	added := make([]string, 0, len(msgs))
	fresh := make([]domain.Message, 0, len(msgs))
	for _, m := range msgs {
		if _, ok := c.messages[m.ID]; ok {
			continue
		}
		c.messages[m.ID] = m
		added = append(added, m.ID)
		fresh = append(fresh, m)
	}
	if len(added) > 0 {
		c.order[roomID] = append(append([]string(nil), added...), c.order[roomID]...)
		if r, ok := c.rooms[roomID]; ok {
			r.LastMessageID = c.order[roomID][0]
			c.rooms[roomID] = r
		}
	}
	c.mu.Unlock()

	c.archiveSave(fresh)
	ch := Change{Entity: EntityMessage, IDs: added}
	if len(added) > 0 {
		c.publish(ch)
	}
	return ch
}

// UpsertRoom inserts or replaces a room record by id.
func (c *Cache) UpsertRoom(room domain.ChatRoom) Change {
	c.mu.Lock()
	c.rooms[room.ID] = room
	c.mu.Unlock()

	ch := Change{Entity: EntityRoom, IDs: []string{room.ID}}
	c.publish(ch)
	return ch
}

// RemoveRoom deletes a room and its message order index. Orphaned messages
// stay addressable by id but become unreachable via the room listing; room
// ids are never reused, so they are simply ignored.
func (c *Cache) RemoveRoom(roomID string) Change {
	c.mu.Lock()
	delete(c.rooms, roomID)
	delete(c.order, roomID)
	c.mu.Unlock()

	ch := Change{Entity: EntityRoom, IDs: []string{roomID}}
	c.publish(ch)
	return ch
}

// Room returns a room record by id.
func (c *Cache) Room(id string) (domain.ChatRoom, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.rooms[id]
	return r, ok
}

// Rooms returns all cached rooms.
func (c *Cache) Rooms() []domain.ChatRoom {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.ChatRoom, 0, len(c.rooms))
	for _, r := range c.rooms {
		out = append(out, r)
	}
	return out
}

// Message returns a message by id, even if its room was removed.
func (c *Cache) Message(id string) (domain.Message, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.messages[id]
	return m, ok
}

// MessagesByRoom returns a room's messages in cache order (newest first),
// starting at offset.
func (c *Cache) MessagesByRoom(roomID string, offset int) []domain.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := c.order[roomID]
	if offset < 0 || offset >= len(ids) {
		return nil
	}
	out := make([]domain.Message, 0, len(ids)-offset)
	for _, id := range ids[offset:] {
		out = append(out, c.messages[id])
	}
	return out
}

// LastMessage returns a room's most recent cached message.
func (c *Cache) LastMessage(roomID string) (domain.Message, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := c.order[roomID]
	if len(ids) == 0 {
		return domain.Message{}, false
	}
	return c.messages[ids[0]], true
}

// Reset drops every cached record. Subscriptions survive.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.rooms = make(map[string]domain.ChatRoom)
	c.messages = make(map[string]domain.Message)
	c.order = make(map[string][]string)
	c.mu.Unlock()
}

// Subscribe registers a change listener. The channel is buffered; a
// subscriber that falls behind has changes dropped rather than blocking
// cache mutations.
func (c *Cache) Subscribe() chan Change {
	ch := make(chan Change, 64)
	c.mu.Lock()
	c.subs[ch] = true
	c.mu.Unlock()
	return ch
}

// Unsubscribe removes a change listener and closes its channel.
func (c *Cache) Unsubscribe(ch chan Change) {
	c.mu.Lock()
	if c.subs[ch] {
		delete(c.subs, ch)
		close(ch)
	}
	c.mu.Unlock()
}

func (c *Cache) publish(change Change) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for ch := range c.subs {
		select {
		case ch <- change:
		default:
			log.Warn().Str("entity", change.Entity).Msg("cache subscriber buffer full, dropping change")
		}
	}
}

func (c *Cache) archiveSave(msgs []domain.Message) {
	if c.archive == nil || len(msgs) == 0 {
		return
	}
	if err := c.archive.SaveMessages(msgs); err != nil {
		log.Error().Err(err).Msg("archive save error")
	}
}
