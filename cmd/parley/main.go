package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/parley-chat/parley/internal/apiclient"
	"github.com/parley-chat/parley/internal/archive"
	"github.com/parley-chat/parley/internal/cache"
	"github.com/parley-chat/parley/internal/config"
	"github.com/parley-chat/parley/internal/fetcher"
	"github.com/parley-chat/parley/internal/live"
	"github.com/parley-chat/parley/internal/logging"
	"github.com/parley-chat/parley/internal/notify"
	"github.com/parley-chat/parley/internal/paging"
	"github.com/parley-chat/parley/internal/selection"
)

func main() {
	cfg := config.Load()
	logging.Init(cfg.Env)

	roomID := flag.String("room", "", "chat room id to page through")
	flag.Parse()
	if *roomID == "" {
		log.Fatal().Msg("usage: parley -room <chat-room-id>")
	}

	var arch cache.Archive
	if cfg.ArchivePath != "" {
		store, err := archive.NewSQLite(cfg.ArchivePath)
		if err != nil {
			log.Fatal().Err(err).Msg("archive")
		}
		defer store.Close()
		arch = store
	}

	c := cache.New(arch)
	tracker := paging.NewTracker()
	queue := notify.New()
	api := apiclient.New(cfg.APIBaseURL, &http.Client{Timeout: 15 * time.Second})

	coord := fetcher.New(api, c, tracker, queue)
	coord.SetAuthSignal(func() {
		log.Warn().Msg("backend rejected credentials, sign in again")
	})

	sel := selection.New()
	sel.Select(*roomID)

	if cfg.LiveWSURL != "" {
		feed, err := live.Dial(cfg.LiveWSURL, c)
		if err != nil {
			log.Warn().Err(err).Msg("live feed unavailable")
		} else {
			go feed.Run()
			defer feed.Stop()
		}
	}

	ttl := time.Duration(cfg.NotificationTTL) * time.Second
	ticker := time.NewTicker(ttl)
	defer ticker.Stop()
	go func() {
		for range ticker.C {
			queue.ExpireOlderThan(ttl)
		}
	}()

	ctx := context.Background()
	for {
		st, err := coord.FetchNextPage(ctx, *roomID)
		if err != nil {
			log.Error().Err(err).Msg("fetch failed")
			break
		}
		log.Info().Int("page", st.CurrentPage).Bool("hasMore", st.HasMore).Msg("page loaded")
		if !st.HasMore {
			break
		}
	}

	for _, m := range c.MessagesByRoom(*roomID, 0) {
		fmt.Printf("[%s] %s: %s\n", m.CreatedAt.Format(time.RFC3339), m.AuthorID, m.Body)
	}
	for _, n := range queue.Entries() {
		log.Info().Str("kind", string(n.Kind)).Msg(n.Body)
	}
}
