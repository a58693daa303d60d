package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/parley-chat/parley/internal/domain"
)

// Client talks to the chat backend's REST API. Timeouts and retries are the
// caller's concern, via the supplied http.Client and contexts.
type Client struct {
	base string
	http *http.Client
}

// New creates a Client for the given base URL, e.g. "http://host/api".
// A nil httpClient falls back to http.DefaultClient.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// Messages fetches one page of a room's messages. Pages are 1-based and
// ordered newest-first.
func (c *Client) Messages(ctx context.Context, roomID string, page int) ([]domain.Message, error) {
	path := "/chat-rooms/" + url.PathEscape(roomID) + "/messages?page=" + strconv.Itoa(page)
	var pg domain.MessagePage
	if err := c.do(ctx, http.MethodGet, path, nil, &pg); err != nil {
		return nil, err
	}
	return pg.Messages, nil
}

// MessagePageCount returns the total number of message pages for a room.
func (c *Client) MessagePageCount(ctx context.Context, roomID string) (int, error) {
	path := "/chat-rooms/" + url.PathEscape(roomID) + "/messages/page-count"
	var body struct {
		PageCount int `json:"pageCount"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &body); err != nil {
		return 0, err
	}
	return body.PageCount, nil
}

// CreateRoom creates a room with the given participant and returns it.
func (c *Client) CreateRoom(ctx context.Context, participantUsername string) (domain.ChatRoom, error) {
	body := map[string]string{"participantUsername": participantUsername}
	var room domain.ChatRoom
	if err := c.do(ctx, http.MethodPost, "/chat-rooms", body, &room); err != nil {
		return domain.ChatRoom{}, err
	}
	return room, nil
}

// DeleteRoom deletes a room.
func (c *Client) DeleteRoom(ctx context.Context, roomID string) error {
	return c.do(ctx, http.MethodDelete, "/chat-rooms/"+url.PathEscape(roomID), nil, nil)
}

// AddParticipant adds a participant to a room.
func (c *Client) AddParticipant(ctx context.Context, roomID, username string) error {
	body := map[string]string{"participantUsername": username}
	return c.do(ctx, http.MethodPost, "/chat-rooms/"+url.PathEscape(roomID)+"/participants", body, nil)
}

// RemoveParticipant removes a participant from a room.
func (c *Client) RemoveParticipant(ctx context.Context, roomID, username string) error {
	body := map[string]string{"participantUsername": username}
	return c.do(ctx, http.MethodDelete, "/chat-rooms/"+url.PathEscape(roomID)+"/participants", body, nil)
}

// do issues one request and decodes the response into out, normalizing any
// failure into *Error at this boundary.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return normalizeTransport(err)
		}
		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rdr)
	if err != nil {
		return normalizeTransport(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return normalizeTransport(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return normalizeTransport(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := normalizeStatus(resp.StatusCode, data)
		log.Debug().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Str("kind", string(apiErr.Kind)).
			Msg("api request failed")
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return normalizeTransport(err)
		}
	}
	return nil
}
