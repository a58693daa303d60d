package fetcher

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/parley-chat/parley/internal/apiclient"
	"github.com/parley-chat/parley/internal/cache"
	"github.com/parley-chat/parley/internal/domain"
	"github.com/parley-chat/parley/internal/metrics"
	"github.com/parley-chat/parley/internal/notify"
	"github.com/parley-chat/parley/internal/paging"
)

// PageSource is what the coordinator needs from the REST client.
type PageSource interface {
	Messages(ctx context.Context, roomID string, page int) ([]domain.Message, error)
	MessagePageCount(ctx context.Context, roomID string) (int, error)
}

// Notifier receives user-facing failure notifications.
type Notifier interface {
	Enqueue(body string, kind notify.Kind) notify.Notification
}

// ErrPageCountUnavailable is returned when the total page count for a room
// has never been resolved; the call is a no-op and may be retried.
var ErrPageCountUnavailable = errors.New("page count unavailable")

// Coordinator orchestrates page fetches for rooms: it consults the
// pagination tracker, deduplicates in-flight requests, merges results into
// the cache, and only then advances the cursor. A room has at most one
// outstanding request, so completions are applied in page order by
// construction even when the transport completes out of order.
type Coordinator struct {
	api        PageSource
	cache      *cache.Cache
	tracker    *paging.Tracker
	queue      Notifier
	authSignal func()
}

// New creates a Coordinator.
func New(api PageSource, c *cache.Cache, t *paging.Tracker, q Notifier) *Coordinator {
	return &Coordinator{api: api, cache: c, tracker: t, queue: q}
}

// SetAuthSignal registers a callback invoked on authorization failures, so
// the authentication collaborator can re-evaluate sign-in state.
func (co *Coordinator) SetAuthSignal(fn func()) {
	co.authSignal = fn
}

// FetchNextPage fetches the next unfetched page for a room and returns the
// room's pagination state afterwards.
//
// Exhaustion is the normal termination, not an error: once the cursor
// reaches the page count the room is marked exhausted and no request is
// issued. A concurrent call while a fetch is outstanding is rejected with
// paging.ErrFetchInFlight without issuing a request. On failure the tracker
// keeps its pre-call state and an ERROR notification is enqueued.
func (co *Coordinator) FetchNextPage(ctx context.Context, roomID string) (paging.PageState, error) {
	st := co.tracker.State(roomID)
	if st.Phase == paging.PhaseLoading {
		return st, paging.ErrFetchInFlight
	}

	total, err := co.api.MessagePageCount(ctx, roomID)
	switch {
	case err == nil:
		co.tracker.SetTotalPages(roomID, total)
	case !st.TotalKnown:
		// Without a count we cannot tell whether a next page exists, so
		// refuse to guess and let the caller retry.
		co.report(err)
		return st, errors.Join(ErrPageCountUnavailable, err)
	default:
		// A stale count is tolerable; the exhaustion check still guards.
		log.Warn().Err(err).Str("room", roomID).Msg("page count refresh failed, using last known")
	}

	st = co.tracker.State(roomID)
	next := st.CurrentPage + 1
	if next > st.TotalPages {
		co.tracker.MarkExhausted(roomID)
		return co.tracker.State(roomID), nil
	}

	if err := co.tracker.BeginFetch(roomID); err != nil {
		return co.tracker.State(roomID), err
	}

	msgs, err := co.api.Messages(ctx, roomID, next)
	if err != nil {
		co.tracker.AbortFetch(roomID)
		co.report(err)
		return co.tracker.State(roomID), err
	}

	// Merge happens-before cursor advance: no observer may see the cursor
	// at page N while page N's messages are absent from the cache.
	co.cache.UpsertMessages(roomID, msgs)
	co.tracker.FinishFetch(roomID, next)
	metrics.PagesFetchedTotal.Inc()

	out := co.tracker.State(roomID)
	log.Debug().
		Str("room", roomID).
		Int("page", next).
		Int("messages", len(msgs)).
		Bool("hasMore", out.HasMore).
		Msg("page merged")
	return out, nil
}

// report converts a normalized API failure into an ERROR notification and
// signals the auth collaborator on authorization failures.
func (co *Coordinator) report(err error) {
	apiErr, ok := apiclient.AsError(err)
	if !ok {
		apiErr = &apiclient.Error{Kind: apiclient.KindTransport, Message: apiclient.MsgUnexpected}
	}
	metrics.FetchFailuresTotal.WithLabelValues(string(apiErr.Kind)).Inc()

	body := fmt.Sprintf("Load messages: %q", apiErr.Message)
	if len(apiErr.Fields) > 0 {
		msgs := make([]string, 0, len(apiErr.Fields))
		for _, f := range apiErr.Fields {
			msgs = append(msgs, f.Msg)
		}
		body += " (" + strings.Join(msgs, "; ") + ")"
	}
	co.queue.Enqueue(body, notify.KindError)

	if apiErr.Kind == apiclient.KindAuth && co.authSignal != nil {
		co.authSignal()
	}
}
