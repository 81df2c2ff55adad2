package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MediaType identifies which content catalogue a tmdb id belongs to.
type MediaType string

const (
	MediaTypeMovie MediaType = "MOVIE"
	MediaTypeTV    MediaType = "TV"
)

// ParseMediaType accepts both the watchlist wire form (MOVIE, TV) and the
// content service form (movie, tv).
func ParseMediaType(value string) (MediaType, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "MOVIE":
		return MediaTypeMovie, nil
	case "TV", "SERIES", "SHOW":
		return MediaTypeTV, nil
	}
	return "", fmt.Errorf("unknown media type %q", value)
}

// Valid reports whether m is one of the known media types.
func (m MediaType) Valid() bool {
	switch m {
	case MediaTypeMovie, MediaTypeTV:
		return true
	}
	return false
}

// ContentType returns the lower-case form used by the content service.
func (m MediaType) ContentType() string {
	switch m {
	case MediaTypeMovie:
		return "movie"
	case MediaTypeTV:
		return "tv"
	}
	return strings.ToLower(string(m))
}

// Label returns a display label for the media type.
func (m MediaType) Label() string {
	switch m {
	case MediaTypeMovie:
		return "Movie"
	case MediaTypeTV:
		return "TV Show"
	}
	return "Unknown"
}

// WatchStatus tracks where the user is with a watchlist entry.
type WatchStatus string

const (
	StatusPlanned    WatchStatus = "PLANNED"
	StatusWatched    WatchStatus = "WATCHED"
	StatusInProgress WatchStatus = "IN_PROGRESS"
	StatusDropped    WatchStatus = "DROPPED"
)

// WatchStatuses lists every status in display order.
func WatchStatuses() []WatchStatus {
	return []WatchStatus{StatusPlanned, StatusInProgress, StatusWatched, StatusDropped}
}

// ParseWatchStatus parses a status name. Dashes and spaces are accepted in
// place of underscores.
func ParseWatchStatus(value string) (WatchStatus, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)
	status := WatchStatus(normalized)
	if !status.Valid() {
		return "", fmt.Errorf("unknown watch status %q", value)
	}
	return status, nil
}

// Valid reports whether s is one of the known statuses.
func (s WatchStatus) Valid() bool {
	switch s {
	case StatusPlanned, StatusWatched, StatusInProgress, StatusDropped:
		return true
	}
	return false
}

// OrDefault returns PLANNED when s is unset.
func (s WatchStatus) OrDefault() WatchStatus {
	if s == "" {
		return StatusPlanned
	}
	return s
}

// Label returns the user-facing name of the status.
func (s WatchStatus) Label() string {
	switch s {
	case StatusPlanned:
		return "Planned"
	case StatusWatched:
		return "Watched"
	case StatusInProgress:
		return "Watching"
	case StatusDropped:
		return "Dropped"
	}
	return "Unknown"
}

// Icon returns the icon name shown next to an entry with this status.
func (s WatchStatus) Icon() string {
	switch s {
	case StatusPlanned:
		return "bookmark-outline"
	case StatusWatched:
		return "checkmark-circle"
	case StatusInProgress:
		return "play-circle"
	case StatusDropped:
		return "close-circle"
	}
	return "help-circle"
}

// Color returns the badge color for the status as a hex string.
func (s WatchStatus) Color() string {
	switch s {
	case StatusPlanned:
		return "#3B82F6"
	case StatusWatched:
		return "#22C55E"
	case StatusInProgress:
		return "#F59E0B"
	case StatusDropped:
		return "#EF4444"
	}
	return "#9CA3AF"
}

// MediaDetails is the denormalized snapshot of a content item stored with a
// watchlist entry.
type MediaDetails struct {
	ID          int    `json:"id"`
	Title       string `json:"title,omitempty"`
	PosterPath  string `json:"poster_path,omitempty"`
	ReleaseDate string `json:"release_date,omitempty"`
	MediaType   string `json:"media_type,omitempty"`
}

// IsZero reports whether no detail besides the identifiers is known.
func (d MediaDetails) IsZero() bool {
	return d.Title == "" && d.PosterPath == "" && d.ReleaseDate == ""
}

// ContentItem is a movie or show record as returned by the content service.
// Movies carry Title/ReleaseDate, shows carry Name/FirstAirDate.
type ContentItem struct {
	ID           int    `json:"id"`
	MediaType    string `json:"media_type,omitempty"`
	Title        string `json:"title,omitempty"`
	Name         string `json:"name,omitempty"`
	PosterPath   string `json:"poster_path,omitempty"`
	ReleaseDate  string `json:"release_date,omitempty"`
	FirstAirDate string `json:"first_air_date,omitempty"`
}

// DisplayTitle returns the title for movies or the name for shows.
func (c ContentItem) DisplayTitle() string {
	if strings.TrimSpace(c.Title) != "" {
		return c.Title
	}
	return c.Name
}

// Details builds the media snapshot stored alongside a watchlist entry.
func (c ContentItem) Details(mediaType MediaType) MediaDetails {
	release := c.ReleaseDate
	if release == "" {
		release = c.FirstAirDate
	}
	return MediaDetails{
		ID:          c.ID,
		Title:       c.DisplayTitle(),
		PosterPath:  c.PosterPath,
		ReleaseDate: release,
		MediaType:   mediaType.ContentType(),
	}
}

// WatchlistItem is one content entry inside a watchlist.
type WatchlistItem struct {
	ID           string       `json:"id"`
	TmdbID       int          `json:"tmdbId"`
	MediaType    MediaType    `json:"mediaType"`
	Status       WatchStatus  `json:"status"`
	ScheduledAt  *time.Time   `json:"scheduledAt"`
	WatchlistID  string       `json:"watchlistId"`
	CreatedAt    time.Time    `json:"createdAt"`
	MediaDetails MediaDetails `json:"media_details"`
}

// Matches reports whether the entry refers to the given content.
func (i WatchlistItem) Matches(tmdbID int, mediaType MediaType) bool {
	return i.TmdbID == tmdbID && i.MediaType == mediaType
}

// Key returns a stable identifier combining media type and tmdb id.
func (i WatchlistItem) Key() string {
	return ContentKey(i.TmdbID, i.MediaType)
}

// ContentKey combines media type and tmdb id into a lookup key.
func ContentKey(tmdbID int, mediaType MediaType) string {
	return string(mediaType) + ":" + strconv.Itoa(tmdbID)
}

// Watchlist is a named collection of entries owned by one account. Items are
// embedded under the WatchlistItem key; a nil slice means the server did not
// include them.
type Watchlist struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	OwnerID   string          `json:"ownerId"`
	CreatedAt time.Time       `json:"createdAt"`
	Items     []WatchlistItem `json:"WatchlistItem"`
}

// WatchlistNameRequest is the body of create and rename calls.
type WatchlistNameRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// AddItemRequest is the body of an add-item call. ScheduledAt is omitted from
// the payload when nil: absence means "no schedule", which the server does
// not treat the same as an explicit null.
type AddItemRequest struct {
	WatchlistID string      `json:"-"`
	TmdbID      int         `json:"tmdbId" validate:"required,gt=0"`
	MediaType   MediaType   `json:"mediaType" validate:"required,oneof=MOVIE TV"`
	Status      WatchStatus `json:"status" validate:"omitempty,oneof=PLANNED WATCHED IN_PROGRESS DROPPED"`
	ScheduledAt *time.Time  `json:"scheduledAt,omitempty"`
}
