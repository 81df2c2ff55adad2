package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-password/password"
	"github.com/spf13/afero"

	"cinelist/api"
	"cinelist/config"
	"cinelist/handlers"
	"cinelist/internal/logging"
	"cinelist/services/accounts"
	"cinelist/services/sessions"
	"cinelist/services/watchlist"
	"cinelist/utils"
)

func main() {
	configFlag := flag.String("config", "", "path to settings.yaml (default $CINELIST_CONFIG or cache/settings.yaml)")
	portOverride := flag.Int("port", 0, "override server port from config")
	seedUser := flag.String("seed-user", "", "create this account with a generated password if it does not exist")
	flag.Parse()

	cfgManager := config.NewManager(config.ResolvePath(*configFlag))
	settings, err := cfgManager.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load settings: %v\n", err)
		os.Exit(1)
	}

	logging.Init(settings.Log.Logging())
	defer logging.Close()
	log := logging.Component("server")

	if *portOverride > 0 {
		settings.Server.Port = *portOverride
	}

	log.Info().Str("config", cfgManager.Path()).Str("storage", settings.Server.StorageDir).Msg("cinelist backend starting")

	if err := run(settings.Server, *seedUser, log); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		logging.Close()
		os.Exit(1)
	}
}

func run(cfg config.ServerSettings, seedUser string, log zerolog.Logger) error {
	fs := afero.NewOsFs()
	if err := fs.MkdirAll(cfg.StorageDir, 0o755); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}

	accountsSvc, err := accounts.NewService(fs, cfg.StorageDir)
	if err != nil {
		return fmt.Errorf("init accounts: %w", err)
	}
	sessionsSvc, err := sessions.NewService(fs, cfg.StorageDir, cfg.SessionDuration)
	if err != nil {
		return fmt.Errorf("init sessions: %w", err)
	}
	watchlistSvc, err := watchlist.NewService(fs, cfg.StorageDir)
	if err != nil {
		return fmt.Errorf("init watchlists: %w", err)
	}

	if seedUser != "" {
		if err := seedAccount(accountsSvc, seedUser, log); err != nil {
			return err
		}
	}

	api.RegisterGaugeFunc("cinelist_sessions_active", "Number of live sessions", func() float64 {
		return float64(sessionsSvc.Count())
	})
	api.RegisterGaugeFunc("cinelist_watchlists", "Number of stored watchlists", func() float64 {
		return float64(watchlistSvc.Count())
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	limiter := api.NewIPRateLimiter(api.PerMinute(cfg.AuthRatePerMin), cfg.AuthRateBurst)
	go limiter.Run(ctx)
	go sessionsSvc.Run(ctx, sessions.CleanupInterval)

	r := utils.NewRouter(utils.NewOriginPolicy(cfg.AllowedOrigins))
	api.Register(r, api.Routes{
		Prefix:      cfg.APIPrefix,
		Auth:        handlers.NewAuthHandler(accountsSvc, sessionsSvc, watchlistSvc, logging.Component("auth")),
		Watchlists:  handlers.NewWatchlistHandler(watchlistSvc, logging.Component("watchlists")),
		Sessions:    sessionsSvc,
		AuthLimiter: limiter,
		Log:         logging.Component("http"),
	})

	srv := &http.Server{
		Addr:              cfg.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("prefix", cfg.APIPrefix).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutdown signal received")
	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("shutdown complete")
	return nil
}

// seedAccount creates username with a random password unless it already
// exists. The password is printed once.
func seedAccount(svc *accounts.Service, username string, log zerolog.Logger) error {
	pw, err := password.Generate(16, 4, 0, false, true)
	if err != nil {
		return fmt.Errorf("generate seed password: %w", err)
	}

	account, err := svc.Create(username, pw)
	if errors.Is(err, accounts.ErrUsernameExists) {
		log.Info().Str("username", username).Msg("seed account already exists")
		return nil
	}
	if err != nil {
		return fmt.Errorf("create seed account: %w", err)
	}

	log.Info().Str("accountId", account.ID).Str("username", username).Msg("seed account created")
	fmt.Printf("seed account %q password: %s\n", username, pw)
	return nil
}
