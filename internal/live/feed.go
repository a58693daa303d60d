package live

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/parley-chat/parley/internal/cache"
	"github.com/parley-chat/parley/internal/domain"
	"github.com/parley-chat/parley/internal/metrics"
)

const (
	// Time allowed to write a control message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

// Feed subscribes to the backend's push stream and merges incoming messages
// into the cache. Pushed and fetched messages meet in the cache under the
// same id-based idempotency rule, so a message seen on both paths is cached
// once. The REST fetch path never depends on the feed.
type Feed struct {
	conn  *websocket.Conn
	cache *cache.Cache
	quit  chan struct{}
	once  sync.Once
}

// Dial connects to the push stream at the given websocket URL.
func Dial(url string, c *cache.Cache) (*Feed, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	return &Feed{conn: conn, cache: c, quit: make(chan struct{})}, nil
}

// Run reads pushed messages until the connection closes or Stop is called.
// Should be called as a goroutine.
func (f *Feed) Run() {
	go f.pingLoop()
	defer f.conn.Close()

	f.conn.SetReadLimit(maxMessageSize)
	f.conn.SetReadDeadline(time.Now().Add(pongWait))
	f.conn.SetPongHandler(func(string) error {
		f.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := f.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("live feed read error")
			}
			return
		}

		msg, err := domain.DecodeMessage(data)
		if err != nil || msg.ID == "" || msg.ChatRoomID == "" {
			log.Warn().Err(err).Msg("live feed: dropping malformed message")
			continue
		}
		f.cache.PrependMessages(msg.ChatRoomID, []domain.Message{msg})
		metrics.LiveMessagesTotal.Inc()
	}
}

// Stop closes the feed. Safe to call more than once.
func (f *Feed) Stop() {
	f.once.Do(func() { close(f.quit) })
}

func (f *Feed) pingLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			f.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := f.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-f.quit:
			f.conn.SetWriteDeadline(time.Now().Add(writeWait))
			f.conn.WriteMessage(websocket.CloseMessage, []byte{})
			f.conn.Close()
			return
		}
	}
}
