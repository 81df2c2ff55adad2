package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"cinelist/internal/auth"
	"cinelist/models"
	"cinelist/services/accounts"
	"cinelist/services/sessions"
)

type accountsService interface {
	Create(username, password string) (models.Account, error)
	Authenticate(username, password string) (models.Account, error)
	Get(id string) (models.Account, bool)
	Delete(id string) error
}

type sessionsService interface {
	Create(accountID, userAgent, ipAddress string) (models.Session, error)
	Revoke(token string) error
	Refresh(token string) (models.Session, error)
	RevokeAllForAccount(accountID string) int
}

// ownerPurger removes all data owned by an account.
type ownerPurger interface {
	DeleteOwner(ownerID string) (int, error)
}

var (
	_ accountsService = (*accounts.Service)(nil)
	_ sessionsService = (*sessions.Service)(nil)
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	accounts   accountsService
	sessions   sessionsService
	watchlists ownerPurger
	log        zerolog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(accountsSvc accountsService, sessionsSvc sessionsService, watchlists ownerPurger, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		accounts:   accountsSvc,
		sessions:   sessionsSvc,
		watchlists: watchlists,
		log:        log,
	}
}

// AccountResponse represents account info response.
type AccountResponse struct {
	Success   bool      `json:"success"`
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// Register creates an account and logs it in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.Credentials
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	account, err := h.accounts.Create(req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, accounts.ErrUsernameExists):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, accounts.ErrUsernameRequired), errors.Is(err, accounts.ErrPasswordRequired):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.log.Error().Err(err).Str("username", req.Username).Msg("create account failed")
			writeError(w, http.StatusInternalServerError, "failed to create account")
		}
		return
	}

	h.log.Info().Str("accountId", account.ID).Str("username", account.Username).Msg("account registered")
	h.issueSession(w, r, account, http.StatusCreated)
}

// Login authenticates a user and returns a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.Credentials
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	account, err := h.accounts.Authenticate(req.Username, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	h.issueSession(w, r, account, http.StatusOK)
}

func (h *AuthHandler) issueSession(w http.ResponseWriter, r *http.Request, account models.Account, status int) {
	session, err := h.sessions.Create(account.ID, r.Header.Get("User-Agent"), getClientIPAddress(r))
	if err != nil {
		h.log.Error().Err(err).Str("accountId", account.ID).Msg("create session failed")
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	writeJSON(w, status, sessionResponse(session, account))
}

// Logout invalidates the current session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.GetSession(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	if err := h.sessions.Revoke(session.Token); err != nil {
		// Session not found is OK - might already be expired
		if !errors.Is(err, sessions.ErrSessionNotFound) {
			h.log.Error().Err(err).Msg("revoke session failed")
			writeError(w, http.StatusInternalServerError, "failed to revoke session")
			return
		}
	}

	writeJSON(w, http.StatusOK, models.MessageEnvelope{Success: true, Message: "logged out"})
}

// Me returns the current authenticated account info.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	account, ok := h.accounts.Get(auth.GetAccountID(r))
	if !ok {
		writeError(w, http.StatusNotFound, "account not found")
		return
	}

	writeJSON(w, http.StatusOK, AccountResponse{
		Success:   true,
		ID:        account.ID,
		Username:  account.Username,
		CreatedAt: account.CreatedAt,
	})
}

// Refresh extends the session expiration.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	current, ok := auth.GetSession(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	session, err := h.sessions.Refresh(current.Token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid or expired session")
		return
	}

	account, ok := h.accounts.Get(session.AccountID)
	if !ok {
		writeError(w, http.StatusNotFound, "account not found")
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse(session, account))
}

// DeleteAccount removes the current account, its watchlists and every session.
func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	accountID := auth.GetAccountID(r)

	if h.watchlists != nil {
		if _, err := h.watchlists.DeleteOwner(accountID); err != nil {
			h.log.Error().Err(err).Str("accountId", accountID).Msg("delete account watchlists failed")
			writeError(w, http.StatusInternalServerError, "failed to delete watchlists")
			return
		}
	}

	if err := h.accounts.Delete(accountID); err != nil {
		if errors.Is(err, accounts.ErrAccountNotFound) {
			writeError(w, http.StatusNotFound, "account not found")
			return
		}
		h.log.Error().Err(err).Str("accountId", accountID).Msg("delete account failed")
		writeError(w, http.StatusInternalServerError, "failed to delete account")
		return
	}

	revoked := h.sessions.RevokeAllForAccount(accountID)
	h.log.Info().Str("accountId", accountID).Int("sessions", revoked).Msg("account deleted")

	writeJSON(w, http.StatusOK, models.MessageEnvelope{Success: true, Message: "account deleted"})
}

func sessionResponse(session models.Session, account models.Account) models.AuthEnvelope {
	return models.AuthEnvelope{
		Success:   true,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.UTC().Format(time.RFC3339),
		AccountID: account.ID,
		Username:  account.Username,
	}
}

// getClientIPAddress extracts the client IP address from the request.
func getClientIPAddress(r *http.Request) string {
	// Take the first IP in the chain
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
