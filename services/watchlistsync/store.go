// Package watchlistsync keeps a session-scoped, in-memory mirror of the
// user's watchlists.
//
// The Store answers membership queries from its cache and applies a mutation
// to the cache only after the server has confirmed it. One Store is built per
// authenticated session and handed to every consumer.
package watchlistsync

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	"cinelist/models"
)

//go:generate mockgen -destination=mock_service_test.go -package=watchlistsync cinelist/services/watchlistsync Service

// Service is the remote watchlist API. Implementations fold every failure
// into the returned envelope.
type Service interface {
	ListWatchlists(ctx context.Context, token string) models.WatchlistsEnvelope
	CreateWatchlist(ctx context.Context, token, name string) models.WatchlistEnvelope
	UpdateWatchlist(ctx context.Context, token, watchlistID, name string) models.WatchlistEnvelope
	DeleteWatchlist(ctx context.Context, token, watchlistID string) models.MessageEnvelope
	ListItems(ctx context.Context, token, watchlistID string) models.ItemsEnvelope
	AddItem(ctx context.Context, token string, req models.AddItemRequest) models.ItemEnvelope
	RemoveItem(ctx context.Context, token, watchlistID, itemID string) models.MessageEnvelope
	CheckMembership(ctx context.Context, token, watchlistID string, tmdbID int, mediaType models.MediaType) models.Membership
}

// TokenSource provides the current bearer token, or "" when logged out.
type TokenSource interface {
	Token() string
}

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNameRequired     = errors.New("watchlist name is required")
)

const defaultHydrateWorkers = 4

// AddOptions tune AddItem. A blank WatchlistID targets the selected
// watchlist; a blank Status means PLANNED.
type AddOptions struct {
	WatchlistID string
	Status      models.WatchStatus
	ScheduledAt *time.Time
}

// State is a snapshot handed to subscribers after every change.
type State struct {
	Watchlists          []models.Watchlist
	SelectedWatchlistID string
	Loading             bool
	Err                 error
}

// Store is the client-side watchlist cache.
type Store struct {
	svc            Service
	tokens         TokenSource
	log            zerolog.Logger
	hydrateWorkers int

	mu         sync.RWMutex
	watchlists []models.Watchlist
	selected   string
	loading    bool
	err        error

	subMu   sync.Mutex
	subs    map[int]func(State)
	nextSub int
}

// Option configures a Store.
type Option func(*Store)

// WithHydrateWorkers bounds how many item lists Refresh fetches at once.
func WithHydrateWorkers(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.hydrateWorkers = n
		}
	}
}

// WithSelection restores a previously selected watchlist id.
func WithSelection(id string) Option {
	return func(s *Store) {
		s.selected = strings.TrimSpace(id)
	}
}

// NewStore creates an empty store. Call Refresh to populate it.
func NewStore(svc Service, tokens TokenSource, log zerolog.Logger, opts ...Option) *Store {
	s := &Store{
		svc:            svc,
		tokens:         tokens,
		log:            log,
		hydrateWorkers: defaultHydrateWorkers,
		watchlists:     []models.Watchlist{},
		subs:           make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Refresh replaces the cache with the server's watchlists. Without a token it
// leaves the cache untouched and returns ErrNotAuthenticated. When nothing is
// selected afterwards, the first watchlist in server order is selected.
func (s *Store) Refresh(ctx context.Context) error {
	token := s.tokens.Token()
	if token == "" {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
		s.notify()
		return ErrNotAuthenticated
	}

	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()
	s.notify()

	resp := s.svc.ListWatchlists(ctx, token)
	if !resp.Success {
		err := errors.New(orDefault(resp.Error, "failed to load watchlists"))
		s.log.Warn().Err(err).Msg("refresh watchlists failed")

		s.mu.Lock()
		s.loading = false
		s.err = err
		s.mu.Unlock()
		s.notify()
		return err
	}

	lists := s.hydrate(ctx, token, resp.Watchlists)

	s.mu.Lock()
	s.watchlists = lists
	s.loading = false
	s.err = nil
	if s.selected != "" && indexOf(lists, s.selected) < 0 {
		s.log.Debug().Str("watchlist", s.selected).Msg("selected watchlist no longer exists")
		s.selected = ""
	}
	s.selected = DefaultSelection(lists, s.selected)
	s.mu.Unlock()

	s.log.Debug().Int("watchlists", len(lists)).Msg("watchlists refreshed")
	s.notify()
	return nil
}

// hydrate fills in item arrays the server left out of the list response.
func (s *Store) hydrate(ctx context.Context, token string, lists []models.Watchlist) []models.Watchlist {
	out := make([]models.Watchlist, len(lists))
	copy(out, lists)

	p := pool.New().WithMaxGoroutines(s.hydrateWorkers)
	for i := range out {
		if out[i].Items != nil {
			continue
		}
		p.Go(func() {
			resp := s.svc.ListItems(ctx, token, out[i].ID)
			if !resp.Success {
				s.log.Warn().Str("watchlist", out[i].ID).Str("error", resp.Error).Msg("failed to load watchlist items")
				out[i].Items = []models.WatchlistItem{}
				return
			}
			out[i].Items = resp.Items
		})
	}
	p.Wait()
	return out
}

// IsItemInWatchlist reports whether any cached watchlist holds the content.
// It never touches the network.
func (s *Store) IsItemInWatchlist(tmdbID int, mediaType models.MediaType) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ContainsItem(s.watchlists, tmdbID, mediaType)
}

// WatchlistsContaining returns the ids of cached watchlists holding the content.
func (s *Store) WatchlistsContaining(tmdbID int, mediaType models.MediaType) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return WatchlistsContaining(s.watchlists, tmdbID, mediaType)
}

// AddItem adds content to opts.WatchlistID, or to the selected watchlist when
// none is given. The cache is patched only after the server confirms.
func (s *Store) AddItem(ctx context.Context, item models.ContentItem, mediaType models.MediaType, opts AddOptions) bool {
	token, target, ok := s.resolve(opts.WatchlistID)
	if !ok {
		return false
	}
	if !mediaType.Valid() {
		s.log.Debug().Str("mediaType", string(mediaType)).Msg("add item: unknown media type")
		return false
	}

	resp := s.svc.AddItem(ctx, token, models.AddItemRequest{
		WatchlistID: target,
		TmdbID:      item.ID,
		MediaType:   mediaType,
		Status:      opts.Status.OrDefault(),
		ScheduledAt: opts.ScheduledAt,
	})
	if !resp.Success || resp.Item == nil {
		s.log.Debug().Str("watchlist", target).Int("tmdbId", item.ID).Str("error", resp.Error).Msg("add item failed")
		return false
	}

	added := *resp.Item
	if added.MediaDetails.IsZero() {
		added.MediaDetails = item.Details(mediaType)
	}

	s.apply(func(lists []models.Watchlist) []models.Watchlist {
		return AppendItem(lists, target, added)
	})
	return true
}

// RemoveItem removes content from watchlistID, or from the selected watchlist
// when it is blank. The server item id is always resolved with a membership
// lookup first, even when the cache holds it.
func (s *Store) RemoveItem(ctx context.Context, item models.ContentItem, mediaType models.MediaType, watchlistID string) bool {
	token, target, ok := s.resolve(watchlistID)
	if !ok {
		return false
	}

	membership := s.svc.CheckMembership(ctx, token, target, item.ID, mediaType)
	if !membership.InWatchlist || membership.ItemID == "" {
		s.log.Debug().Str("watchlist", target).Int("tmdbId", item.ID).Msg("remove item: not in watchlist")
		return false
	}

	resp := s.svc.RemoveItem(ctx, token, target, membership.ItemID)
	if !resp.Success {
		s.log.Debug().Str("watchlist", target).Str("item", membership.ItemID).Str("error", resp.Error).Msg("remove item failed")
		return false
	}

	s.apply(func(lists []models.Watchlist) []models.Watchlist {
		return RemoveItem(lists, target, membership.ItemID)
	})
	return true
}

// resolve returns the token and target watchlist, or false when either is missing.
func (s *Store) resolve(explicit string) (string, string, bool) {
	token := s.tokens.Token()
	target := strings.TrimSpace(explicit)
	if target == "" {
		target = s.SelectedWatchlistID()
	}
	if token == "" || target == "" {
		s.log.Debug().Bool("token", token != "").Str("watchlist", target).Msg("watchlist operation skipped")
		return "", "", false
	}
	return token, target, true
}

// Select moves the selection cursor. It does not call the server.
func (s *Store) Select(id string) {
	s.mu.Lock()
	s.selected = strings.TrimSpace(id)
	s.mu.Unlock()
	s.notify()
}

// CreateWatchlist creates a watchlist, appends it to the cache and selects it.
func (s *Store) CreateWatchlist(ctx context.Context, name string) models.WatchlistEnvelope {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.WatchlistEnvelope{Success: false, Error: ErrNameRequired.Error()}
	}
	token := s.tokens.Token()
	if token == "" {
		return models.WatchlistEnvelope{Success: false, Error: ErrNotAuthenticated.Error()}
	}

	resp := s.svc.CreateWatchlist(ctx, token, name)
	if !resp.Success || resp.Watchlist == nil {
		return models.WatchlistEnvelope{Success: false, Error: orDefault(resp.Error, "failed to create watchlist")}
	}

	created := *resp.Watchlist
	if created.Items == nil {
		created.Items = []models.WatchlistItem{}
	}

	s.mu.Lock()
	lists := make([]models.Watchlist, 0, len(s.watchlists)+1)
	lists = append(lists, s.watchlists...)
	s.watchlists = append(lists, created)
	s.selected = created.ID
	s.mu.Unlock()
	s.notify()

	return resp
}

// UpdateWatchlist renames a watchlist. Only the cached name changes.
func (s *Store) UpdateWatchlist(ctx context.Context, id, name string) models.WatchlistEnvelope {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.WatchlistEnvelope{Success: false, Error: ErrNameRequired.Error()}
	}
	token := s.tokens.Token()
	if token == "" {
		return models.WatchlistEnvelope{Success: false, Error: ErrNotAuthenticated.Error()}
	}

	resp := s.svc.UpdateWatchlist(ctx, token, id, name)
	if !resp.Success || resp.Watchlist == nil {
		return models.WatchlistEnvelope{Success: false, Error: orDefault(resp.Error, "failed to update watchlist")}
	}

	renamed := resp.Watchlist.Name
	s.apply(func(lists []models.Watchlist) []models.Watchlist {
		return RenameWatchlist(lists, id, renamed)
	})
	return resp
}

// DeleteWatchlist deletes a watchlist and drops it from the cache. The
// selection is cleared when it pointed at the deleted watchlist.
func (s *Store) DeleteWatchlist(ctx context.Context, id string) models.MessageEnvelope {
	token := s.tokens.Token()
	if token == "" {
		return models.MessageEnvelope{Success: false, Error: ErrNotAuthenticated.Error()}
	}

	resp := s.svc.DeleteWatchlist(ctx, token, id)
	if !resp.Success {
		return models.MessageEnvelope{Success: false, Error: orDefault(resp.Error, "failed to delete watchlist")}
	}

	s.mu.Lock()
	s.watchlists = RemoveWatchlist(s.watchlists, id)
	if s.selected == id {
		s.selected = ""
	}
	s.mu.Unlock()
	s.notify()

	return resp
}

// apply patches the cache as it is now, not as it was when the operation
// started.
func (s *Store) apply(patch func([]models.Watchlist) []models.Watchlist) {
	s.mu.Lock()
	s.watchlists = patch(s.watchlists)
	s.mu.Unlock()
	s.notify()
}

// Watchlists returns a deep copy of the cache in server order.
func (s *Store) Watchlists() []models.Watchlist {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return CloneWatchlists(s.watchlists)
}

// SelectedWatchlistID returns the selection cursor, or "" when unset.
func (s *Store) SelectedWatchlistID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// SelectedWatchlist returns the cached watchlist under the cursor.
func (s *Store) SelectedWatchlist() (models.Watchlist, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := indexOf(s.watchlists, s.selected)
	if idx < 0 {
		return models.Watchlist{}, false
	}
	return CloneWatchlists(s.watchlists[idx : idx+1])[0], true
}

// Loading reports whether a Refresh is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the error of the last failed Refresh, cleared by a successful one.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{
		Watchlists:          CloneWatchlists(s.watchlists),
		SelectedWatchlistID: s.selected,
		Loading:             s.loading,
		Err:                 s.err,
	}
}

// Reset empties the cache and the cursor, e.g. after logout.
func (s *Store) Reset() {
	s.mu.Lock()
	s.watchlists = []models.Watchlist{}
	s.selected = ""
	s.loading = false
	s.err = nil
	s.mu.Unlock()
	s.notify()
}

// Subscribe registers fn to be called with a snapshot after every change.
// Callbacks run on the goroutine that made the change. The returned func
// removes the subscription.
func (s *Store) Subscribe(fn func(State)) (cancel func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify() {
	s.subMu.Lock()
	if len(s.subs) == 0 {
		s.subMu.Unlock()
		return
	}
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	state := s.Snapshot()
	for _, fn := range fns {
		fn(state)
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
