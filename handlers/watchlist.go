package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"cinelist/internal/auth"
	"cinelist/models"
	"cinelist/services/watchlist"
)

type watchlistService interface {
	List(ownerID string) ([]models.Watchlist, error)
	Get(ownerID, id string) (models.Watchlist, error)
	Create(ownerID, name string) (models.Watchlist, error)
	Rename(ownerID, id, name string) (models.Watchlist, error)
	Delete(ownerID, id string) error
	ListItems(ownerID, id string) ([]models.WatchlistItem, error)
	AddItem(ownerID string, req models.AddItemRequest) (models.WatchlistItem, error)
	RemoveItem(ownerID, watchlistID, itemID string) error
}

var _ watchlistService = (*watchlist.Service)(nil)

type WatchlistHandler struct {
	Service watchlistService
	Log     zerolog.Logger
}

func NewWatchlistHandler(service watchlistService, log zerolog.Logger) *WatchlistHandler {
	return &WatchlistHandler{Service: service, Log: log}
}

func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.requireOwner(w, r)
	if !ok {
		return
	}

	lists, err := h.Service.List(ownerID)
	if err != nil {
		h.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.WatchlistsEnvelope{Success: true, Watchlists: lists})
}

func (h *WatchlistHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.requireOwner(w, r)
	if !ok {
		return
	}

	wl, err := h.Service.Get(ownerID, mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.WatchlistEnvelope{Success: true, Watchlist: &wl})
}

func (h *WatchlistHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.requireOwner(w, r)
	if !ok {
		return
	}

	var body models.WatchlistNameRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	wl, err := h.Service.Create(ownerID, body.Name)
	if err != nil {
		h.fail(w, err)
		return
	}

	h.Log.Debug().Str("accountId", ownerID).Str("watchlistId", wl.ID).Msg("watchlist created")
	writeJSON(w, http.StatusCreated, models.WatchlistEnvelope{Success: true, Watchlist: &wl})
}

func (h *WatchlistHandler) Rename(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.requireOwner(w, r)
	if !ok {
		return
	}

	var body models.WatchlistNameRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	wl, err := h.Service.Rename(ownerID, mux.Vars(r)["id"], body.Name)
	if err != nil {
		h.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.WatchlistEnvelope{Success: true, Watchlist: &wl})
}

func (h *WatchlistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.requireOwner(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(ownerID, mux.Vars(r)["id"]); err != nil {
		h.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.MessageEnvelope{Success: true, Message: "watchlist deleted"})
}

func (h *WatchlistHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.requireOwner(w, r)
	if !ok {
		return
	}

	items, err := h.Service.ListItems(ownerID, mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ItemsEnvelope{Success: true, Items: items})
}

func (h *WatchlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.requireOwner(w, r)
	if !ok {
		return
	}

	var body models.AddItemRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	body.WatchlistID = mux.Vars(r)["id"]

	item, err := h.Service.AddItem(ownerID, body)
	if err != nil {
		h.fail(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, models.ItemEnvelope{Success: true, Item: &item})
}

func (h *WatchlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.requireOwner(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	if err := h.Service.RemoveItem(ownerID, vars["id"], vars["itemId"]); err != nil {
		h.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.MessageEnvelope{Success: true, Message: "item removed"})
}

func (h *WatchlistHandler) requireOwner(w http.ResponseWriter, r *http.Request) (string, bool) {
	ownerID := auth.GetAccountID(r)
	if ownerID == "" {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return "", false
	}
	return ownerID, true
}

func (h *WatchlistHandler) fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, watchlist.ErrWatchlistNotFound), errors.Is(err, watchlist.ErrItemNotFound):
		status = http.StatusNotFound
	case errors.Is(err, watchlist.ErrNameExists), errors.Is(err, watchlist.ErrItemExists):
		status = http.StatusConflict
	case errors.Is(err, watchlist.ErrNameRequired), errors.Is(err, watchlist.ErrInvalidItem),
		errors.Is(err, watchlist.ErrOwnerRequired):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		h.Log.Error().Err(err).Msg("watchlist request failed")
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}
