package live

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/parley-chat/parley/internal/cache"
	"github.com/parley-chat/parley/internal/domain"
	"github.com/parley-chat/parley/internal/testutil"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// setupPushServer serves one websocket connection and writes each payload
// to it in order.
func setupPushServer(t *testing.T, payloads [][]byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		for _, p := range payloads {
			if err := conn.WriteMessage(websocket.TextMessage, p); err != nil {
				return
			}
		}
	}))
}

func wsURL(httpURL string) string {
	return "ws" + strings.TrimPrefix(httpURL, "http")
}

func waitForMessages(t *testing.T, c *cache.Cache, roomID string, want int) []domain.Message {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if got := c.MessagesByRoom(roomID, 0); len(got) >= want {
			return got
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d messages in %s", want, roomID)
	return nil
}

func TestFeedMergesPushedMessages(t *testing.T) {
	t.Parallel()
	older := domain.Message{ID: "live-1", ChatRoomID: "r1", AuthorID: "bob", Body: "first"}
	newer := domain.Message{ID: "live-2", ChatRoomID: "r1", AuthorID: "bob", Body: "second"}
	d1, _ := domain.Encode(older)
	d2, _ := domain.Encode(newer)
	server := setupPushServer(t, [][]byte{d1, d2})
	defer server.Close()

	c := cache.New(nil)
	feed, err := Dial(wsURL(server.URL), c)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer feed.Stop()
	go feed.Run()

	got := waitForMessages(t, c, "r1", 2)
	// Later pushes land at the head.
	if got[0].ID != "live-2" || got[1].ID != "live-1" {
		t.Errorf("unexpected order: %s, %s", got[0].ID, got[1].ID)
	}
}

func TestFeedIdempotentWithFetchedPage(t *testing.T) {
	t.Parallel()
	page := testutil.PageOfMessages("r1", 1, 3)
	dup, _ := domain.Encode(page[0])
	fresh := domain.Message{ID: "live-9", ChatRoomID: "r1", AuthorID: "bob", Body: "new"}
	df, _ := domain.Encode(fresh)
	server := setupPushServer(t, [][]byte{dup, df})
	defer server.Close()

	c := cache.New(nil)
	c.UpsertMessages("r1", page)

	feed, err := Dial(wsURL(server.URL), c)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer feed.Stop()
	go feed.Run()

	got := waitForMessages(t, c, "r1", 4)
	if len(got) != 4 {
		t.Fatalf("expected 4 messages (duplicate push ignored), got %d", len(got))
	}
	if got[0].ID != "live-9" {
		t.Errorf("expected live-9 at the head, got %s", got[0].ID)
	}
	// The duplicate did not move the already-cached message.
	if got[1].ID != page[0].ID {
		t.Errorf("expected %s in place, got %s", page[0].ID, got[1].ID)
	}
}

func TestFeedDropsMalformedPayloads(t *testing.T) {
	t.Parallel()
	good := domain.Message{ID: "live-1", ChatRoomID: "r1", AuthorID: "bob", Body: "ok"}
	dg, _ := domain.Encode(good)
	server := setupPushServer(t, [][]byte{[]byte("not json"), []byte(`{"body":"no ids"}`), dg})
	defer server.Close()

	c := cache.New(nil)
	feed, err := Dial(wsURL(server.URL), c)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer feed.Stop()
	go feed.Run()

	got := waitForMessages(t, c, "r1", 1)
	if len(got) != 1 || got[0].ID != "live-1" {
		t.Errorf("expected only the valid message, got %v", got)
	}
}
