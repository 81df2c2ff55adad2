package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"cinelist/handlers"
)

// Routes bundles everything Register needs to mount the API.
type Routes struct {
	Prefix      string
	Auth        *handlers.AuthHandler
	Watchlists  *handlers.WatchlistHandler
	Sessions    sessionValidator
	AuthLimiter *IPRateLimiter
	Log         zerolog.Logger
}

// Register mounts the auth and watchlist routes under rt.Prefix and exposes
// /metrics at the root.
func Register(r *mux.Router, rt Routes) {
	r.Use(RequestLogger(rt.Log))
	r.Handle("/metrics", MetricsHandler()).Methods(http.MethodGet)

	base := r.PathPrefix(rt.Prefix).Subrouter()

	// Public auth routes, rate limited per client IP.
	public := base.PathPrefix("/auth").Subrouter()
	limit := func(h http.HandlerFunc) http.HandlerFunc {
		if rt.AuthLimiter == nil {
			return h
		}
		return RateLimitHandlerFunc(rt.AuthLimiter, h)
	}
	public.HandleFunc("/register", limit(rt.Auth.Register)).Methods(http.MethodPost)
	public.HandleFunc("/login", limit(rt.Auth.Login)).Methods(http.MethodPost)

	protected := base.NewRoute().Subrouter()
	protected.Use(AccountAuthMiddleware(rt.Sessions))

	protected.HandleFunc("/auth/logout", rt.Auth.Logout).Methods(http.MethodPost)
	protected.HandleFunc("/auth/refresh", rt.Auth.Refresh).Methods(http.MethodPost)
	protected.HandleFunc("/auth/me", rt.Auth.Me).Methods(http.MethodGet)
	protected.HandleFunc("/auth/me", rt.Auth.DeleteAccount).Methods(http.MethodDelete)

	wl := rt.Watchlists
	protected.HandleFunc("/watchlists", wl.List).Methods(http.MethodGet)
	protected.HandleFunc("/watchlists", wl.Create).Methods(http.MethodPost)
	protected.HandleFunc("/watchlists/{id}", wl.Get).Methods(http.MethodGet)
	protected.HandleFunc("/watchlists/{id}", wl.Rename).Methods(http.MethodPut)
	protected.HandleFunc("/watchlists/{id}", wl.Delete).Methods(http.MethodDelete)
	protected.HandleFunc("/watchlists/{id}/items", wl.ListItems).Methods(http.MethodGet)
	protected.HandleFunc("/watchlists/{id}/items", wl.AddItem).Methods(http.MethodPost)
	protected.HandleFunc("/watchlists/{id}/items/{itemId}", wl.RemoveItem).Methods(http.MethodDelete)
}
