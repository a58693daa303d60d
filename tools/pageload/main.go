package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// pageload hammers the message paging endpoints to measure how the backend
// behaves under many clients walking a room's history at once.
func main() {
	base := flag.String("url", "http://localhost:8080/api", "API base URL")
	clients := flag.Int("clients", 10, "Number of concurrent clients")
	room := flag.String("room", "loadtest", "Room to page through")
	maxPages := flag.Int("max-pages", 10, "Page cap per client")
	flag.Parse()

	log.Printf("Page load test: %d clients, up to %d pages each, room=%s", *clients, *maxPages, *room)

	var (
		fetched   int64
		errors    int64
		latencies []time.Duration
		latencyMu sync.Mutex
		wg        sync.WaitGroup
	)

	httpClient := &http.Client{Timeout: 10 * time.Second}
	start := time.Now()

	for i := 0; i < *clients; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()

			countURL := fmt.Sprintf("%s/chat-rooms/%s/messages/page-count", *base, *room)
			total, err := fetchPageCount(httpClient, countURL)
			if err != nil {
				atomic.AddInt64(&errors, 1)
				log.Printf("client %d: page count error: %v", id, err)
				return
			}
			if total > *maxPages {
				total = *maxPages
			}

			for page := 1; page <= total; page++ {
				url := fmt.Sprintf("%s/chat-rooms/%s/messages?page=%d", *base, *room, page)
				sendTime := time.Now()
				resp, err := httpClient.Get(url)
				if err != nil {
					atomic.AddInt64(&errors, 1)
					return
				}
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				if resp.StatusCode != http.StatusOK {
					atomic.AddInt64(&errors, 1)
					continue
				}
				atomic.AddInt64(&fetched, 1)
				lat := time.Since(sendTime)
				latencyMu.Lock()
				latencies = append(latencies, lat)
				latencyMu.Unlock()
			}
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	// Calculate percentiles.
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	fmt.Println("\n=== Page Load Results ===")
	fmt.Printf("Duration:    %s\n", elapsed.Round(time.Millisecond))
	fmt.Printf("Clients:     %d\n", *clients)
	fmt.Printf("Pages:       %d fetched\n", fetched)
	fmt.Printf("Errors:      %d\n", errors)
	if len(latencies) > 0 {
		fmt.Printf("Latency p50: %s\n", percentile(latencies, 50))
		fmt.Printf("Latency p95: %s\n", percentile(latencies, 95))
		fmt.Printf("Latency p99: %s\n", percentile(latencies, 99))
	}
	fmt.Printf("Throughput:  %.0f pages/sec\n", float64(fetched)/elapsed.Seconds())
}

func fetchPageCount(c *http.Client, url string) (int, error) {
	resp, err := c.Get(url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("status %d", resp.StatusCode)
	}
	var body struct {
		PageCount int `json:"pageCount"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, err
	}
	return body.PageCount, nil
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
