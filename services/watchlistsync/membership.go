package watchlistsync

import "cinelist/models"

// ContainsItem reports whether any watchlist holds the given content.
func ContainsItem(watchlists []models.Watchlist, tmdbID int, mediaType models.MediaType) bool {
	for i := range watchlists {
		if _, ok := FindItem(watchlists[i], tmdbID, mediaType); ok {
			return true
		}
	}
	return false
}

// FindItem returns the first item of wl matching the content.
func FindItem(wl models.Watchlist, tmdbID int, mediaType models.MediaType) (models.WatchlistItem, bool) {
	for _, item := range wl.Items {
		if item.Matches(tmdbID, mediaType) {
			return item, true
		}
	}
	return models.WatchlistItem{}, false
}

// WatchlistsContaining returns the ids of every watchlist holding the content,
// each at most once, in cache order.
func WatchlistsContaining(watchlists []models.Watchlist, tmdbID int, mediaType models.MediaType) []string {
	var ids []string
	for i := range watchlists {
		if _, ok := FindItem(watchlists[i], tmdbID, mediaType); ok {
			ids = append(ids, watchlists[i].ID)
		}
	}
	return ids
}

// DefaultSelection keeps current when it is set, otherwise picks the first
// watchlist in server order. It returns "" for an empty collection.
func DefaultSelection(watchlists []models.Watchlist, current string) string {
	if current != "" || len(watchlists) == 0 {
		return current
	}
	return watchlists[0].ID
}

func indexOf(watchlists []models.Watchlist, id string) int {
	for i := range watchlists {
		if watchlists[i].ID == id {
			return i
		}
	}
	return -1
}

// AppendItem returns a copy of watchlists with item appended to watchlist id.
// The input is not modified. An unknown id returns the input unchanged.
func AppendItem(watchlists []models.Watchlist, id string, item models.WatchlistItem) []models.Watchlist {
	idx := indexOf(watchlists, id)
	if idx < 0 {
		return watchlists
	}

	out := append([]models.Watchlist(nil), watchlists...)
	items := make([]models.WatchlistItem, 0, len(out[idx].Items)+1)
	items = append(items, out[idx].Items...)
	out[idx].Items = append(items, item)
	return out
}

// RemoveItem returns a copy of watchlists without itemID in watchlist id.
func RemoveItem(watchlists []models.Watchlist, id, itemID string) []models.Watchlist {
	idx := indexOf(watchlists, id)
	if idx < 0 {
		return watchlists
	}

	out := append([]models.Watchlist(nil), watchlists...)
	items := make([]models.WatchlistItem, 0, len(out[idx].Items))
	for _, item := range out[idx].Items {
		if item.ID != itemID {
			items = append(items, item)
		}
	}
	out[idx].Items = items
	return out
}

// RenameWatchlist returns a copy of watchlists with only the name of id replaced.
func RenameWatchlist(watchlists []models.Watchlist, id, name string) []models.Watchlist {
	idx := indexOf(watchlists, id)
	if idx < 0 {
		return watchlists
	}

	out := append([]models.Watchlist(nil), watchlists...)
	out[idx].Name = name
	return out
}

// RemoveWatchlist returns a copy of watchlists without id.
func RemoveWatchlist(watchlists []models.Watchlist, id string) []models.Watchlist {
	out := make([]models.Watchlist, 0, len(watchlists))
	for _, wl := range watchlists {
		if wl.ID != id {
			out = append(out, wl)
		}
	}
	return out
}

// CloneWatchlists deep-copies the collection including item arrays.
func CloneWatchlists(watchlists []models.Watchlist) []models.Watchlist {
	out := make([]models.Watchlist, len(watchlists))
	for i, wl := range watchlists {
		out[i] = wl
		if wl.Items != nil {
			out[i].Items = make([]models.WatchlistItem, len(wl.Items))
			copy(out[i].Items, wl.Items)
		}
		for j := range out[i].Items {
			if at := out[i].Items[j].ScheduledAt; at != nil {
				t := *at
				out[i].Items[j].ScheduledAt = &t
			}
		}
	}
	return out
}
