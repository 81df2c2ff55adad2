// Package watchlistapi is the HTTP client for the remote watchlist API.
//
// Every call makes a single attempt and folds transport, HTTP and decoding
// failures into the returned envelope. Callers never receive a Go error and
// check Success together with the payload they expect.
package watchlistapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"cinelist/models"
)

const (
	defaultTimeout   = 30 * time.Second
	maxResponseBytes = 4 << 20
)

// ErrNotAuthenticated is reported when a call is made without a token.
var ErrNotAuthenticated = errors.New("not authenticated")

// Client talks to the watchlist API rooted at baseURL (for example
// http://localhost:7777/api).
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a client. A non-positive timeout uses the default.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// BaseURL returns the API root the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListWatchlists fetches every watchlist of the token's owner. On failure the
// envelope carries an empty, non-nil slice.
func (c *Client) ListWatchlists(ctx context.Context, token string) models.WatchlistsEnvelope {
	var resp models.WatchlistsEnvelope
	if err := c.do(ctx, token, http.MethodGet, "/watchlists", nil, &resp); err != nil {
		c.logFailure("list watchlists", err)
		return models.WatchlistsEnvelope{Success: false, Watchlists: []models.Watchlist{}, Error: err.Error()}
	}
	if !resp.Success {
		return models.WatchlistsEnvelope{Success: false, Watchlists: []models.Watchlist{}, Error: resp.Error}
	}
	if resp.Watchlists == nil {
		resp.Watchlists = []models.Watchlist{}
	}
	return resp
}

// CreateWatchlist creates a watchlist with the given name. The name is
// forwarded as given; the server validates it.
func (c *Client) CreateWatchlist(ctx context.Context, token, name string) models.WatchlistEnvelope {
	return c.sendWatchlist(ctx, token, http.MethodPost, "/watchlists", name, "create watchlist")
}

// UpdateWatchlist renames a watchlist.
func (c *Client) UpdateWatchlist(ctx context.Context, token, watchlistID, name string) models.WatchlistEnvelope {
	return c.sendWatchlist(ctx, token, http.MethodPut, watchlistPath(watchlistID), name, "update watchlist")
}

func (c *Client) sendWatchlist(ctx context.Context, token, method, path, name, op string) models.WatchlistEnvelope {
	var resp models.WatchlistEnvelope
	if err := c.do(ctx, token, method, path, models.WatchlistNameRequest{Name: name}, &resp); err != nil {
		c.logFailure(op, err)
		return models.WatchlistEnvelope{Success: false, Error: err.Error()}
	}
	if !resp.Success || resp.Watchlist == nil {
		return models.WatchlistEnvelope{Success: false, Error: missingPayload(resp.Error, "watchlist")}
	}
	return resp
}

// DeleteWatchlist deletes a watchlist and its items.
func (c *Client) DeleteWatchlist(ctx context.Context, token, watchlistID string) models.MessageEnvelope {
	return c.sendDelete(ctx, token, watchlistPath(watchlistID), "delete watchlist")
}

// ListItems fetches the items of one watchlist.
func (c *Client) ListItems(ctx context.Context, token, watchlistID string) models.ItemsEnvelope {
	var resp models.ItemsEnvelope
	if err := c.do(ctx, token, http.MethodGet, watchlistPath(watchlistID)+"/items", nil, &resp); err != nil {
		c.logFailure("list items", err)
		return models.ItemsEnvelope{Success: false, Items: []models.WatchlistItem{}, Error: err.Error()}
	}
	if !resp.Success {
		return models.ItemsEnvelope{Success: false, Items: []models.WatchlistItem{}, Error: resp.Error}
	}
	if resp.Items == nil {
		resp.Items = []models.WatchlistItem{}
	}
	return resp
}

// AddItem adds content to req.WatchlistID. An unset status is sent as PLANNED
// and a nil ScheduledAt leaves the key out of the payload.
func (c *Client) AddItem(ctx context.Context, token string, req models.AddItemRequest) models.ItemEnvelope {
	req.Status = req.Status.OrDefault()

	var resp models.ItemEnvelope
	if err := c.do(ctx, token, http.MethodPost, watchlistPath(req.WatchlistID)+"/items", req, &resp); err != nil {
		c.logFailure("add item", err)
		return models.ItemEnvelope{Success: false, Error: err.Error()}
	}
	if !resp.Success || resp.Item == nil {
		return models.ItemEnvelope{Success: false, Error: missingPayload(resp.Error, "item")}
	}
	return resp
}

// RemoveItem deletes one item by its server id.
func (c *Client) RemoveItem(ctx context.Context, token, watchlistID, itemID string) models.MessageEnvelope {
	return c.sendDelete(ctx, token, watchlistPath(watchlistID)+"/items/"+url.PathEscape(itemID), "remove item")
}

// CheckMembership lists the watchlist's items and returns the first one that
// matches both tmdbID and mediaType. Any failure reports InWatchlist false.
func (c *Client) CheckMembership(ctx context.Context, token, watchlistID string, tmdbID int, mediaType models.MediaType) models.Membership {
	resp := c.ListItems(ctx, token, watchlistID)
	if !resp.Success {
		return models.Membership{}
	}
	for _, item := range resp.Items {
		if item.Matches(tmdbID, mediaType) {
			return models.Membership{InWatchlist: true, ItemID: item.ID}
		}
	}
	return models.Membership{}
}

func (c *Client) sendDelete(ctx context.Context, token, path, op string) models.MessageEnvelope {
	var resp models.MessageEnvelope
	if err := c.do(ctx, token, http.MethodDelete, path, nil, &resp); err != nil {
		c.logFailure(op, err)
		return models.MessageEnvelope{Success: false, Error: err.Error()}
	}
	if !resp.Success && resp.Error == "" {
		resp.Error = "request failed"
	}
	return resp
}

// do performs one request. body, when non-nil, is sent as JSON and the
// response is decoded into out. Non-2xx responses become errors carrying the
// server's envelope error or the raw status and body.
func (c *Client) do(ctx context.Context, token, method, path string, body, out any) error {
	if token == "" {
		return ErrNotAuthenticated
	}
	return c.send(ctx, token, method, path, body, out)
}

func (c *Client) send(ctx context.Context, token, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req, token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var envelope models.MessageEnvelope
		if json.Unmarshal(data, &envelope) == nil && envelope.Error != "" {
			return errors.New(envelope.Error)
		}
		return fmt.Errorf("%s - %s", resp.Status, strings.TrimSpace(string(data)))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// setHeaders adds the JSON and auth headers every call carries.
func (c *Client) setHeaders(req *http.Request, token string) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func (c *Client) logFailure(op string, err error) {
	event := c.log.Warn()
	if errors.Is(err, ErrNotAuthenticated) {
		event = c.log.Debug()
	}
	event.Err(err).Str("op", op).Msg("watchlist api call failed")
}

func watchlistPath(id string) string {
	return "/watchlists/" + url.PathEscape(id)
}

// missingPayload picks the error reported when the server answered success
// without the expected field.
func missingPayload(serverErr, field string) string {
	if serverErr != "" {
		return serverErr
	}
	return "response missing " + field
}
