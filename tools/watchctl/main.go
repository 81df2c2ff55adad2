// Command watchctl manages watchlists on a cinelist server from the terminal.
//
//	watchctl login neo followthewhiterabbit
//	watchctl create "Weekend"
//	watchctl add -title "The Matrix" movie 603
//	watchctl check movie 603
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"cinelist/config"
	"cinelist/internal/logging"
	"cinelist/services/credentials"
	"cinelist/services/watchlistapi"
	"cinelist/services/watchlistsync"
)

const usage = `usage: watchctl [-config file] [-v] <command> [args]

commands:
  register <username> <password>   create an account and log in
  login <username> <password>      log in and store the session token
  logout                           revoke the session and forget the token
  lists                            show watchlists (* marks the selected one)
  create <name>                    create a watchlist and select it
  rename <id> <name>               rename a watchlist
  delete <id>                      delete a watchlist
  select <id>                      make a watchlist the default target
  items [id]                       show items of a watchlist (default: selected)
  add [-list id] [-status s] [-at time] [-title t] <movie|tv> <tmdbId>
  remove [-list id] <movie|tv> <tmdbId>
  check <movie|tv> <tmdbId>        show which watchlists hold the content
  watch                            refresh periodically and print changes
`

var errUsage = errors.New("invalid arguments")

func main() {
	configFlag := flag.String("config", "", "path to settings.yaml (default $CINELIST_CONFIG or cache/settings.yaml)")
	verbose := flag.Bool("v", false, "log debug output to stderr")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	settings, err := config.NewManager(config.ResolvePath(*configFlag)).Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load settings: %v\n", err)
		os.Exit(1)
	}

	logCfg := settings.Log.Logging()
	logCfg.Level = "warn"
	if *verbose {
		logCfg.Level = "debug"
	}
	logging.Init(logCfg)
	defer logging.Close()

	a, err := newApp(afero.NewOsFs(), settings.Client, os.Stdout, logging.Component("watchctl"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "watchctl: %v\n", err)
		os.Exit(1)
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.run(ctx, flag.Args()); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
		} else {
			fmt.Fprintf(os.Stderr, "watchctl: %v\n", err)
		}
		logging.Close()
		os.Exit(1)
	}
}

type app struct {
	cfg    config.ClientSettings
	client *watchlistapi.Client
	creds  *credentials.Store
	store  *watchlistsync.Store
	out    io.Writer
	log    zerolog.Logger

	unsubscribe func()
}

func newApp(fs afero.Fs, cfg config.ClientSettings, out io.Writer, log zerolog.Logger) (*app, error) {
	creds, err := credentials.Open(fs, cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("open credentials: %w", err)
	}

	client := watchlistapi.NewClient(cfg.BaseURL, cfg.Timeout, log.With().Str("component", "watchlistapi").Logger())
	store := watchlistsync.NewStore(client, creds, log,
		watchlistsync.WithHydrateWorkers(cfg.HydrateWorkers),
		watchlistsync.WithSelection(creds.SelectedWatchlistID()),
	)

	a := &app{cfg: cfg, client: client, creds: creds, store: store, out: out, log: log}

	// The selection survives between invocations.
	a.unsubscribe = store.Subscribe(func(s watchlistsync.State) {
		if creds.Token() == "" {
			return
		}
		if err := creds.SetSelectedWatchlistID(s.SelectedWatchlistID); err != nil {
			log.Warn().Err(err).Msg("failed to persist selected watchlist")
		}
	})
	return a, nil
}

func (a *app) close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
}
