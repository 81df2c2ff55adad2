// Package credentials keeps the client's session token and selected watchlist
// on disk between CLI invocations.
package credentials

import (
	"strings"
	"sync"

	"github.com/spf13/afero"

	"cinelist/internal/storage"
	"cinelist/models"
)

// Credentials is the persisted client session.
type Credentials struct {
	Token               string `json:"token"`
	AccountID           string `json:"accountId,omitempty"`
	Username            string `json:"username,omitempty"`
	ExpiresAt           string `json:"expiresAt,omitempty"`
	SelectedWatchlistID string `json:"selectedWatchlistId,omitempty"`
}

// Store is a token provider backed by a JSON file.
type Store struct {
	mu   sync.RWMutex
	file *storage.JSONFile
	data Credentials
}

// Open loads the credentials file at path. A missing file yields an empty,
// unauthenticated store.
func Open(fs afero.Fs, path string) (*Store, error) {
	s := &Store{file: storage.NewJSONFile(fs, path)}
	if _, err := s.file.Load(&s.data); err != nil {
		return nil, err
	}
	return s, nil
}

// Token returns the bearer token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Token
}

// Current returns a copy of the stored credentials.
func (s *Store) Current() Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

// SaveAuth stores the session returned by login or register. The previous
// watchlist selection is dropped when the account changes.
func (s *Store) SaveAuth(resp models.AuthEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := Credentials{
		Token:     resp.Token,
		AccountID: resp.AccountID,
		Username:  resp.Username,
		ExpiresAt: resp.ExpiresAt,
	}
	if resp.AccountID != "" && resp.AccountID == s.data.AccountID {
		next.SelectedWatchlistID = s.data.SelectedWatchlistID
	}
	if err := s.file.Save(next); err != nil {
		return err
	}
	s.data = next
	return nil
}

// SelectedWatchlistID returns the persisted selection cursor.
func (s *Store) SelectedWatchlistID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.SelectedWatchlistID
}

// SetSelectedWatchlistID persists the selection cursor. Writing the current
// value is a no-op.
func (s *Store) SetSelectedWatchlistID(id string) error {
	id = strings.TrimSpace(id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data.SelectedWatchlistID == id {
		return nil
	}

	next := s.data
	next.SelectedWatchlistID = id
	if err := s.file.Save(next); err != nil {
		return err
	}
	s.data = next
	return nil
}

// Clear forgets the session and removes the file.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.file.Remove(); err != nil {
		return err
	}
	s.data = Credentials{}
	return nil
}
