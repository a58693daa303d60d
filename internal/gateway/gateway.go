package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/parley-chat/parley/internal/apiclient"
	"github.com/parley-chat/parley/internal/cache"
	"github.com/parley-chat/parley/internal/domain"
	"github.com/parley-chat/parley/internal/metrics"
	"github.com/parley-chat/parley/internal/notify"
	"github.com/parley-chat/parley/internal/paging"
)

// RoomAPI is what the gateway needs from the REST client.
type RoomAPI interface {
	CreateRoom(ctx context.Context, participantUsername string) (domain.ChatRoom, error)
	DeleteRoom(ctx context.Context, roomID string) error
	AddParticipant(ctx context.Context, roomID, username string) error
	RemoveParticipant(ctx context.Context, roomID, username string) error
}

// Notifier receives user-facing outcome notifications.
type Notifier interface {
	Enqueue(body string, kind notify.Kind) notify.Notification
}

// Local validation errors. These are rejected before any request is issued
// and produce no notification; the form surfaces them inline.
var (
	ErrUsernameTooShort = errors.New("username must contain at least 3 characters")
	ErrUsernameTooLong  = errors.New("username must contain at most 100 characters")
)

const (
	minUsernameLen = 3
	maxUsernameLen = 100
)

// Gateway issues room and participant mutations. Each operation performs
// exactly one request; on success it updates the cache and enqueues a
// SUCCESS notification, on failure it enqueues an ERROR notification and
// leaves the cache untouched. There are no optimistic writes, so failures
// never require a rollback.
type Gateway struct {
	api        RoomAPI
	cache      *cache.Cache
	tracker    *paging.Tracker
	queue      Notifier
	authSignal func()
}

// New creates a Gateway.
func New(api RoomAPI, c *cache.Cache, t *paging.Tracker, q Notifier) *Gateway {
	return &Gateway{api: api, cache: c, tracker: t, queue: q}
}

// SetAuthSignal registers a callback invoked on authorization failures.
func (g *Gateway) SetAuthSignal(fn func()) {
	g.authSignal = fn
}

// CreateRoom creates a room with the given participant. The username is
// validated locally first; an invalid one is rejected without a request.
func (g *Gateway) CreateRoom(ctx context.Context, participantUsername string) (domain.ChatRoom, error) {
	if err := validateUsername(participantUsername); err != nil {
		return domain.ChatRoom{}, err
	}
	room, err := g.api.CreateRoom(ctx, participantUsername)
	if err != nil {
		g.fail("create_room", "Create chat", err)
		return domain.ChatRoom{}, err
	}
	g.cache.UpsertRoom(room)
	g.succeed("create_room", "Chat successfully created")
	return room, nil
}

// DeleteRoom deletes a room. On success the room is removed from the cache
// and its pagination state is reset.
func (g *Gateway) DeleteRoom(ctx context.Context, roomID string) error {
	if err := g.api.DeleteRoom(ctx, roomID); err != nil {
		g.fail("delete_room", "Delete chat", err)
		return err
	}
	g.cache.RemoveRoom(roomID)
	g.tracker.Reset(roomID)
	g.succeed("delete_room", "Chat successfully deleted")
	return nil
}

// AddParticipant adds a participant to a room.
func (g *Gateway) AddParticipant(ctx context.Context, roomID, username string) error {
	if err := validateUsername(username); err != nil {
		return err
	}
	if err := g.api.AddParticipant(ctx, roomID, username); err != nil {
		g.fail("add_participant", "Add participant", err)
		return err
	}
	if room, ok := g.cache.Room(roomID); ok {
		g.cache.UpsertRoom(room.WithParticipant(username))
	}
	g.succeed("add_participant", "Participant successfully added")
	return nil
}

// RemoveParticipant removes a participant from a room.
func (g *Gateway) RemoveParticipant(ctx context.Context, roomID, username string) error {
	if err := g.api.RemoveParticipant(ctx, roomID, username); err != nil {
		g.fail("remove_participant", "Remove participant", err)
		return err
	}
	if room, ok := g.cache.Room(roomID); ok {
		g.cache.UpsertRoom(room.WithoutParticipant(username))
	}
	g.succeed("remove_participant", "Participant successfully removed")
	return nil
}

func validateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < minUsernameLen {
		return ErrUsernameTooShort
	}
	if n > maxUsernameLen {
		return ErrUsernameTooLong
	}
	return nil
}

func (g *Gateway) succeed(op, body string) {
	metrics.MutationsTotal.WithLabelValues(op, "success").Inc()
	g.queue.Enqueue(body, notify.KindSuccess)
}

func (g *Gateway) fail(op, prefix string, err error) {
	metrics.MutationsTotal.WithLabelValues(op, "failure").Inc()

	apiErr, ok := apiclient.AsError(err)
	if !ok {
		apiErr = &apiclient.Error{Kind: apiclient.KindTransport, Message: apiclient.MsgUnexpected}
	}
	body := fmt.Sprintf("%s: %q", prefix, apiErr.Message)
	if len(apiErr.Fields) > 0 {
		msgs := make([]string, 0, len(apiErr.Fields))
		for _, f := range apiErr.Fields {
			msgs = append(msgs, f.Msg)
		}
		body += " (" + strings.Join(msgs, "; ") + ")"
	}
	g.queue.Enqueue(body, notify.KindError)

	if apiErr.Kind == apiclient.KindAuth && g.authSignal != nil {
		g.authSignal()
	}
}
