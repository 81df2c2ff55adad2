package watchlistapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinelist/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL+"/api/", time.Second, zerolog.Nop())
}

func writeBody(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestNewClient_TrimsBaseURL(t *testing.T) {
	c := NewClient(" http://localhost:7777/api/ ", 0, zerolog.Nop())
	assert.Equal(t, "http://localhost:7777/api", c.BaseURL())
	assert.Equal(t, defaultTimeout, c.httpClient.Timeout)
}

func TestListWatchlists(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/watchlists", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		io.WriteString(w, `{"success":true,"watchlists":[{"id":"w1","name":"Weekend","WatchlistItem":[{"id":"i1","tmdbId":603,"mediaType":"MOVIE"}]}]}`)
	})

	resp := c.ListWatchlists(context.Background(), "tok")
	require.True(t, resp.Success)
	require.Len(t, resp.Watchlists, 1)
	assert.Equal(t, "Weekend", resp.Watchlists[0].Name)
	require.Len(t, resp.Watchlists[0].Items, 1)
	assert.True(t, resp.Watchlists[0].Items[0].Matches(603, models.MediaTypeMovie))
}

func TestListWatchlists_FailureYieldsEmptySlice(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	resp := c.ListWatchlists(context.Background(), "tok")
	assert.False(t, resp.Success)
	assert.NotNil(t, resp.Watchlists)
	assert.Empty(t, resp.Watchlists)
	assert.Equal(t, "502 Bad Gateway - boom", resp.Error)
}

func TestMissingToken_SendsNothing(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})
	ctx := context.Background()

	list := c.ListWatchlists(ctx, "")
	assert.False(t, list.Success)
	assert.Equal(t, ErrNotAuthenticated.Error(), list.Error)

	assert.False(t, c.CreateWatchlist(ctx, "", "x").Success)
	assert.False(t, c.AddItem(ctx, "", models.AddItemRequest{WatchlistID: "w1", TmdbID: 1, MediaType: models.MediaTypeTV}).Success)
	assert.False(t, c.RemoveItem(ctx, "", "w1", "i1").Success)
	assert.False(t, c.CheckMembership(ctx, "", "w1", 1, models.MediaTypeTV).InWatchlist)
	assert.False(t, c.Logout(ctx, "").Success)

	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestCreateWatchlist(t *testing.T) {
	var body map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeBody(w, http.StatusCreated, models.WatchlistEnvelope{
			Success:   true,
			Watchlist: &models.Watchlist{ID: "w9", Name: "Horror", Items: []models.WatchlistItem{}},
		})
	})

	resp := c.CreateWatchlist(context.Background(), "tok", "Horror")
	require.True(t, resp.Success)
	assert.Equal(t, "w9", resp.Watchlist.ID)
	assert.Equal(t, map[string]any{"name": "Horror"}, body)
}

func TestCreateWatchlist_SuccessWithoutPayloadIsFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":true}`)
	})

	resp := c.CreateWatchlist(context.Background(), "tok", "Horror")
	assert.False(t, resp.Success)
	assert.Nil(t, resp.Watchlist)
	assert.Equal(t, "response missing watchlist", resp.Error)
}

func TestCreateWatchlist_ServerErrorEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusConflict, models.MessageEnvelope{Error: "a watchlist with this name already exists"})
	})

	resp := c.CreateWatchlist(context.Background(), "tok", "Horror")
	assert.False(t, resp.Success)
	assert.Equal(t, "a watchlist with this name already exists", resp.Error)
}

func TestUpdateAndDeleteWatchlist(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/watchlists/w1", r.URL.Path)
		switch r.Method {
		case http.MethodPut:
			writeBody(w, http.StatusOK, models.WatchlistEnvelope{Success: true, Watchlist: &models.Watchlist{ID: "w1", Name: "Renamed"}})
		case http.MethodDelete:
			writeBody(w, http.StatusOK, models.MessageEnvelope{Success: true, Message: "watchlist deleted"})
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	})
	ctx := context.Background()

	updated := c.UpdateWatchlist(ctx, "tok", "w1", "Renamed")
	require.True(t, updated.Success)
	assert.Equal(t, "Renamed", updated.Watchlist.Name)

	deleted := c.DeleteWatchlist(ctx, "tok", "w1")
	assert.True(t, deleted.Success)
	assert.Equal(t, "watchlist deleted", deleted.Message)
}

func TestAddItem_OmitsScheduledAtWhenNil(t *testing.T) {
	var raw string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/watchlists/w1/items", r.URL.Path)
		data, _ := io.ReadAll(r.Body)
		raw = string(data)
		writeBody(w, http.StatusCreated, models.ItemEnvelope{
			Success: true,
			Item:    &models.WatchlistItem{ID: "i1", TmdbID: 603, MediaType: models.MediaTypeMovie, Status: models.StatusPlanned, WatchlistID: "w1"},
		})
	})

	resp := c.AddItem(context.Background(), "tok", models.AddItemRequest{
		WatchlistID: "w1",
		TmdbID:      603,
		MediaType:   models.MediaTypeMovie,
	})
	require.True(t, resp.Success)
	assert.Equal(t, "i1", resp.Item.ID)

	assert.JSONEq(t, `{"tmdbId":603,"mediaType":"MOVIE","status":"PLANNED"}`, raw)
	assert.NotContains(t, raw, "scheduledAt")
}

func TestAddItem_SendsScheduledAt(t *testing.T) {
	var got models.AddItemRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeBody(w, http.StatusCreated, models.ItemEnvelope{Success: true, Item: &models.WatchlistItem{ID: "i2"}})
	})

	when := time.Date(2026, 12, 24, 20, 0, 0, 0, time.UTC)
	resp := c.AddItem(context.Background(), "tok", models.AddItemRequest{
		WatchlistID: "w1",
		TmdbID:      1399,
		MediaType:   models.MediaTypeTV,
		Status:      models.StatusInProgress,
		ScheduledAt: &when,
	})
	require.True(t, resp.Success)
	require.NotNil(t, got.ScheduledAt)
	assert.True(t, when.Equal(*got.ScheduledAt))
	assert.Equal(t, models.StatusInProgress, got.Status)
}

func TestAddItem_UndecodableErrorBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, "<html>oops</html>")
	})

	resp := c.AddItem(context.Background(), "tok", models.AddItemRequest{WatchlistID: "w1", TmdbID: 1, MediaType: models.MediaTypeMovie})
	assert.False(t, resp.Success)
	assert.Equal(t, "500 Internal Server Error - <html>oops</html>", resp.Error)
}

func TestRemoveItem(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/watchlists/w1/items/i1", r.URL.Path)
		writeBody(w, http.StatusOK, models.MessageEnvelope{Success: true, Message: "item removed"})
	})

	resp := c.RemoveItem(context.Background(), "tok", "w1", "i1")
	assert.True(t, resp.Success)
	assert.Equal(t, "item removed", resp.Message)
}

func TestCheckMembership(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/watchlists/w1/items", r.URL.Path)
		writeBody(w, http.StatusOK, models.ItemsEnvelope{Success: true, Items: []models.WatchlistItem{
			{ID: "tv-603", TmdbID: 603, MediaType: models.MediaTypeTV},
			{ID: "movie-603", TmdbID: 603, MediaType: models.MediaTypeMovie},
			{ID: "movie-603-dup", TmdbID: 603, MediaType: models.MediaTypeMovie},
		}})
	})
	ctx := context.Background()

	found := c.CheckMembership(ctx, "tok", "w1", 603, models.MediaTypeMovie)
	assert.Equal(t, models.Membership{InWatchlist: true, ItemID: "movie-603"}, found)

	missing := c.CheckMembership(ctx, "tok", "w1", 604, models.MediaTypeMovie)
	assert.Equal(t, models.Membership{}, missing)
}

func TestCheckMembership_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	c := NewClient(server.URL, time.Second, zerolog.Nop())
	assert.False(t, c.CheckMembership(context.Background(), "tok", "w1", 603, models.MediaTypeMovie).InWatchlist)
}

func TestLoginAndLogout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			assert.Empty(t, r.Header.Get("Authorization"))
			var creds models.Credentials
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
			if creds.Password != "redpill" {
				writeBody(w, http.StatusUnauthorized, models.MessageEnvelope{Error: "invalid username or password"})
				return
			}
			writeBody(w, http.StatusOK, models.AuthEnvelope{Success: true, Token: "tok", AccountID: "a1", Username: creds.Username})
		case "/api/auth/logout":
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			writeBody(w, http.StatusOK, models.MessageEnvelope{Success: true, Message: "logged out"})
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	bad := c.Login(ctx, "morpheus", "bluepill")
	assert.False(t, bad.Success)
	assert.Equal(t, "invalid username or password", bad.Error)

	good := c.Login(ctx, "morpheus", "redpill")
	require.True(t, good.Success)
	assert.Equal(t, "tok", good.Token)

	assert.True(t, c.Logout(ctx, good.Token).Success)
}

func TestRegister_NotFoundBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	resp := c.Register(context.Background(), "neo", "matrix")
	assert.False(t, resp.Success)
	assert.True(t, strings.HasPrefix(resp.Error, "404 Not Found - "), resp.Error)
}

func TestContextCancellation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusOK, models.WatchlistsEnvelope{Success: true})
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp := c.ListWatchlists(ctx, "tok")
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "context canceled")
}
