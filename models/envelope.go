package models

// Every watchlist API response is wrapped in a success envelope. Clients treat
// a response as successful only when Success is set and the expected payload
// is present.

// WatchlistsEnvelope answers GET /watchlists.
type WatchlistsEnvelope struct {
	Success    bool        `json:"success"`
	Watchlists []Watchlist `json:"watchlists"`
	Error      string      `json:"error,omitempty"`
}

// WatchlistEnvelope answers create, get and rename calls.
type WatchlistEnvelope struct {
	Success   bool       `json:"success"`
	Watchlist *Watchlist `json:"watchlist,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// ItemsEnvelope answers GET /watchlists/{id}/items.
type ItemsEnvelope struct {
	Success bool            `json:"success"`
	Items   []WatchlistItem `json:"items"`
	Error   string          `json:"error,omitempty"`
}

// ItemEnvelope answers an add-item call.
type ItemEnvelope struct {
	Success bool           `json:"success"`
	Item    *WatchlistItem `json:"item,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// MessageEnvelope answers delete calls.
type MessageEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Membership is the result of checking one watchlist for a piece of content.
type Membership struct {
	InWatchlist bool   `json:"inWatchlist"`
	ItemID      string `json:"itemId,omitempty"`
}

// AuthEnvelope answers login and register calls.
type AuthEnvelope struct {
	Success   bool   `json:"success"`
	Token     string `json:"token,omitempty"`
	AccountID string `json:"accountId,omitempty"`
	Username  string `json:"username,omitempty"`
	ExpiresAt string `json:"expiresAt,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Credentials is the body of login and register calls.
type Credentials struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,min=4,max=128"`
}
