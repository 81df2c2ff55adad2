package watchlist

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mozillazg/go-unidecode"
	"github.com/spf13/afero"

	"cinelist/internal/storage"
	"cinelist/models"
)

var (
	ErrStorageDirRequired = errors.New("storage directory not provided")
	ErrOwnerRequired      = errors.New("owner id is required")
	ErrNameRequired       = errors.New("name is required")
	ErrNameExists         = errors.New("a watchlist with this name already exists")
	ErrWatchlistNotFound  = errors.New("watchlist not found")
	ErrItemNotFound       = errors.New("item not found")
	ErrItemExists         = errors.New("item already in watchlist")
	ErrInvalidItem        = errors.New("tmdb id and media type are required")
)

// Service manages persistence of named watchlists and their items, keyed by owner.
type Service struct {
	mu    sync.RWMutex
	file  *storage.JSONFile
	lists map[string][]models.Watchlist
}

// NewService creates a watchlist service storing watchlists.json inside storageDir.
func NewService(fs afero.Fs, storageDir string) (*Service, error) {
	if strings.TrimSpace(storageDir) == "" {
		return nil, ErrStorageDirRequired
	}

	svc := &Service{
		file:  storage.NewJSONFile(fs, filepath.Join(storageDir, "watchlists.json")),
		lists: make(map[string][]models.Watchlist),
	}

	if err := svc.load(); err != nil {
		return nil, err
	}

	return svc, nil
}

// List returns the owner's watchlists in creation order. Item arrays are never nil.
func (s *Service) List(ownerID string) ([]models.Watchlist, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, ErrOwnerRequired
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	owned := s.lists[ownerID]
	out := make([]models.Watchlist, 0, len(owned))
	for _, wl := range owned {
		out = append(out, cloneWatchlist(wl))
	}
	return out, nil
}

// Get returns one watchlist. Watchlists belonging to another owner are
// reported as not found.
func (s *Service) Get(ownerID, id string) (models.Watchlist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, err := s.indexLocked(ownerID, id)
	if err != nil {
		return models.Watchlist{}, err
	}
	return cloneWatchlist(s.lists[strings.TrimSpace(ownerID)][idx]), nil
}

// Create adds an empty watchlist for the owner.
func (s *Service) Create(ownerID, name string) (models.Watchlist, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return models.Watchlist{}, ErrOwnerRequired
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Watchlist{}, ErrNameRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nameTakenLocked(ownerID, name, "") {
		return models.Watchlist{}, ErrNameExists
	}

	wl := models.Watchlist{
		ID:        uuid.NewString(),
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
		Items:     []models.WatchlistItem{},
	}

	s.lists[ownerID] = append(s.lists[ownerID], wl)
	if err := s.saveLocked(); err != nil {
		s.lists[ownerID] = s.lists[ownerID][:len(s.lists[ownerID])-1]
		return models.Watchlist{}, err
	}

	return cloneWatchlist(wl), nil
}

// Rename changes a watchlist's name.
func (s *Service) Rename(ownerID, id, name string) (models.Watchlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Watchlist{}, ErrNameRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.indexLocked(ownerID, id)
	if err != nil {
		return models.Watchlist{}, err
	}
	ownerID = strings.TrimSpace(ownerID)
	owned := s.lists[ownerID]

	if s.nameTakenLocked(ownerID, name, owned[idx].ID) {
		return models.Watchlist{}, ErrNameExists
	}

	previous := owned[idx].Name
	owned[idx].Name = name
	if err := s.saveLocked(); err != nil {
		owned[idx].Name = previous
		return models.Watchlist{}, err
	}

	return cloneWatchlist(owned[idx]), nil
}

// Delete removes a watchlist and all of its items.
func (s *Service) Delete(ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.indexLocked(ownerID, id)
	if err != nil {
		return err
	}
	ownerID = strings.TrimSpace(ownerID)
	previous := s.lists[ownerID]

	remaining := make([]models.Watchlist, 0, len(previous)-1)
	remaining = append(remaining, previous[:idx]...)
	remaining = append(remaining, previous[idx+1:]...)
	s.lists[ownerID] = remaining

	if err := s.saveLocked(); err != nil {
		s.lists[ownerID] = previous
		return err
	}
	return nil
}

// DeleteOwner removes every watchlist belonging to the owner and reports how
// many were removed.
func (s *Service) DeleteOwner(ownerID string) (int, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return 0, ErrOwnerRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous, ok := s.lists[ownerID]
	if !ok {
		return 0, nil
	}

	delete(s.lists, ownerID)
	if err := s.saveLocked(); err != nil {
		s.lists[ownerID] = previous
		return 0, err
	}
	return len(previous), nil
}

// ListItems returns the items of one watchlist in insertion order.
func (s *Service) ListItems(ownerID, id string) ([]models.WatchlistItem, error) {
	wl, err := s.Get(ownerID, id)
	if err != nil {
		return nil, err
	}
	return wl.Items, nil
}

// AddItem appends an entry. The same (tmdbId, mediaType) pair may appear only
// once per watchlist.
func (s *Service) AddItem(ownerID string, req models.AddItemRequest) (models.WatchlistItem, error) {
	if req.TmdbID <= 0 || !req.MediaType.Valid() {
		return models.WatchlistItem{}, ErrInvalidItem
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.indexLocked(ownerID, req.WatchlistID)
	if err != nil {
		return models.WatchlistItem{}, err
	}
	ownerID = strings.TrimSpace(ownerID)
	wl := &s.lists[ownerID][idx]

	for _, existing := range wl.Items {
		if existing.Matches(req.TmdbID, req.MediaType) {
			return models.WatchlistItem{}, ErrItemExists
		}
	}

	var scheduled *time.Time
	if req.ScheduledAt != nil {
		t := req.ScheduledAt.UTC()
		scheduled = &t
	}

	item := models.WatchlistItem{
		ID:          uuid.NewString(),
		TmdbID:      req.TmdbID,
		MediaType:   req.MediaType,
		Status:      req.Status.OrDefault(),
		ScheduledAt: scheduled,
		WatchlistID: wl.ID,
		CreatedAt:   time.Now().UTC(),
		MediaDetails: models.MediaDetails{
			ID:        req.TmdbID,
			MediaType: req.MediaType.ContentType(),
		},
	}

	previous := wl.Items
	wl.Items = append(append(make([]models.WatchlistItem, 0, len(previous)+1), previous...), item)
	if err := s.saveLocked(); err != nil {
		wl.Items = previous
		return models.WatchlistItem{}, err
	}

	return item, nil
}

// RemoveItem deletes an entry by its server id.
func (s *Service) RemoveItem(ownerID, watchlistID, itemID string) error {
	itemID = strings.TrimSpace(itemID)

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.indexLocked(ownerID, watchlistID)
	if err != nil {
		return err
	}
	wl := &s.lists[strings.TrimSpace(ownerID)][idx]

	previous := wl.Items
	remaining := make([]models.WatchlistItem, 0, len(previous))
	for _, item := range previous {
		if item.ID != itemID {
			remaining = append(remaining, item)
		}
	}
	if len(remaining) == len(previous) {
		return ErrItemNotFound
	}

	wl.Items = remaining
	if err := s.saveLocked(); err != nil {
		wl.Items = previous
		return err
	}
	return nil
}

// Count returns the number of watchlists across all owners.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, owned := range s.lists {
		total += len(owned)
	}
	return total
}

func (s *Service) indexLocked(ownerID, id string) (int, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return -1, ErrOwnerRequired
	}
	id = strings.TrimSpace(id)
	for i, wl := range s.lists[ownerID] {
		if wl.ID == id {
			return i, nil
		}
	}
	return -1, ErrWatchlistNotFound
}

func (s *Service) nameTakenLocked(ownerID, name, exceptID string) bool {
	folded := foldName(name)
	for _, wl := range s.lists[ownerID] {
		if wl.ID != exceptID && foldName(wl.Name) == folded {
			return true
		}
	}
	return false
}

// foldName reduces a name to lower-case ASCII so "Películas" and "peliculas"
// collide.
func foldName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(unidecode.Unidecode(name)), " "))
}

func (s *Service) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stored map[string][]models.Watchlist
	if _, err := s.file.Load(&stored); err != nil {
		return fmt.Errorf("load watchlists: %w", err)
	}

	for ownerID, owned := range stored {
		ownerID = strings.TrimSpace(ownerID)
		if ownerID == "" {
			continue
		}
		normalised := make([]models.Watchlist, 0, len(owned))
		for _, wl := range owned {
			if strings.TrimSpace(wl.ID) == "" {
				continue
			}
			wl.OwnerID = ownerID
			if wl.Items == nil {
				wl.Items = []models.WatchlistItem{}
			}
			normalised = append(normalised, wl)
		}
		sort.SliceStable(normalised, func(i, j int) bool {
			return normalised[i].CreatedAt.Before(normalised[j].CreatedAt)
		})
		s.lists[ownerID] = normalised
	}

	return nil
}

func (s *Service) saveLocked() error {
	return s.file.Save(s.lists)
}

func cloneWatchlist(wl models.Watchlist) models.Watchlist {
	items := make([]models.WatchlistItem, len(wl.Items))
	copy(items, wl.Items)
	wl.Items = items
	return wl
}
