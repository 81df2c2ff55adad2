package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"cinelist/models"
	"cinelist/services/watchlistsync"
)

const defaultWatchInterval = 30 * time.Second

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "register", "login":
		return a.authenticate(ctx, cmd, rest)
	case "logout":
		return a.logout(ctx)
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return nil
	}

	if a.creds.Token() == "" {
		return errors.New("not logged in: run watchctl login <username> <password>")
	}
	if err := a.store.Refresh(ctx); err != nil {
		return fmt.Errorf("load watchlists: %w", err)
	}

	switch cmd {
	case "lists":
		return a.lists()
	case "create":
		return a.create(ctx, rest)
	case "rename":
		return a.rename(ctx, rest)
	case "delete":
		return a.delete(ctx, rest)
	case "select":
		return a.selectWatchlist(rest)
	case "items":
		return a.items(rest)
	case "add":
		return a.add(ctx, rest)
	case "remove":
		return a.remove(ctx, rest)
	case "check":
		return a.check(rest)
	case "watch":
		return a.watch(ctx)
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
}

func (a *app) authenticate(ctx context.Context, cmd string, args []string) error {
	if len(args) != 2 {
		return errUsage
	}

	var resp models.AuthEnvelope
	if cmd == "register" {
		resp = a.client.Register(ctx, args[0], args[1])
	} else {
		resp = a.client.Login(ctx, args[0], args[1])
	}
	if !resp.Success {
		return fmt.Errorf("%s failed: %s", cmd, resp.Error)
	}
	if err := a.creds.SaveAuth(resp); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}

	fmt.Fprintf(a.out, "logged in as %s (session expires %s)\n", resp.Username, resp.ExpiresAt)
	return nil
}

func (a *app) logout(ctx context.Context) error {
	if token := a.creds.Token(); token != "" {
		if resp := a.client.Logout(ctx, token); !resp.Success {
			a.log.Warn().Str("error", resp.Error).Msg("server logout failed, forgetting token anyway")
		}
	}
	a.store.Reset()
	if err := a.creds.Clear(); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	fmt.Fprintln(a.out, "logged out")
	return nil
}

func (a *app) lists() error {
	lists := a.store.Watchlists()
	if len(lists) == 0 {
		fmt.Fprintln(a.out, "no watchlists yet: run watchctl create <name>")
		return nil
	}

	selected := a.store.SelectedWatchlistID()
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tID\tNAME\tITEMS")
	for _, wl := range lists {
		marker := ""
		if wl.ID == selected {
			marker = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", marker, wl.ID, wl.Name, len(wl.Items))
	}
	return tw.Flush()
}

func (a *app) create(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	resp := a.store.CreateWatchlist(ctx, strings.Join(args, " "))
	if !resp.Success {
		return fmt.Errorf("create failed: %s", resp.Error)
	}
	fmt.Fprintf(a.out, "created %q (%s) and selected it\n", resp.Watchlist.Name, resp.Watchlist.ID)
	return nil
}

func (a *app) rename(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errUsage
	}
	resp := a.store.UpdateWatchlist(ctx, args[0], strings.Join(args[1:], " "))
	if !resp.Success {
		return fmt.Errorf("rename failed: %s", resp.Error)
	}
	fmt.Fprintf(a.out, "renamed %s to %q\n", resp.Watchlist.ID, resp.Watchlist.Name)
	return nil
}

func (a *app) delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	resp := a.store.DeleteWatchlist(ctx, args[0])
	if !resp.Success {
		return fmt.Errorf("delete failed: %s", resp.Error)
	}
	fmt.Fprintf(a.out, "deleted %s\n", args[0])
	return nil
}

func (a *app) selectWatchlist(args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	for _, wl := range a.store.Watchlists() {
		if wl.ID == args[0] {
			a.store.Select(wl.ID)
			fmt.Fprintf(a.out, "selected %q\n", wl.Name)
			return nil
		}
	}
	return fmt.Errorf("watchlist %s not found", args[0])
}

func (a *app) items(args []string) error {
	var (
		wl models.Watchlist
		ok bool
	)
	switch len(args) {
	case 0:
		wl, ok = a.store.SelectedWatchlist()
	case 1:
		for _, candidate := range a.store.Watchlists() {
			if candidate.ID == args[0] {
				wl, ok = candidate, true
			}
		}
	default:
		return errUsage
	}
	if !ok {
		return errors.New("no such watchlist")
	}

	if len(wl.Items) == 0 {
		fmt.Fprintf(a.out, "%s is empty\n", wl.Name)
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tTMDB\tTITLE\tSTATUS\tSCHEDULED")
	for _, item := range wl.Items {
		title := item.MediaDetails.Title
		if title == "" {
			title = "-"
		}
		scheduled := "-"
		if item.ScheduledAt != nil {
			scheduled = item.ScheduledAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", item.MediaType.Label(), item.TmdbID, title, item.Status.Label(), scheduled)
	}
	return tw.Flush()
}

func (a *app) add(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(a.out)
	listID := fs.String("list", "", "target watchlist id (default: selected)")
	status := fs.String("status", "", "planned, in-progress, watched or dropped")
	at := fs.String("at", "", "scheduled time, RFC3339 or YYYY-MM-DD")
	title := fs.String("title", "", "title stored with the entry")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	mediaType, tmdbID, err := parseContent(fs.Args())
	if err != nil {
		return err
	}

	opts := watchlistsync.AddOptions{WatchlistID: *listID}
	if *status != "" {
		if opts.Status, err = models.ParseWatchStatus(*status); err != nil {
			return err
		}
	}
	if *at != "" {
		when, err := parseSchedule(*at)
		if err != nil {
			return err
		}
		opts.ScheduledAt = &when
	}

	item := models.ContentItem{ID: tmdbID, MediaType: mediaType.ContentType(), Title: *title}
	if !a.store.AddItem(ctx, item, mediaType, opts) {
		return errors.New("could not add item: check that a watchlist is selected and the item is not already in it")
	}
	fmt.Fprintf(a.out, "added %s %d\n", mediaType.Label(), tmdbID)
	return nil
}

func (a *app) remove(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("remove", flag.ContinueOnError)
	fs.SetOutput(a.out)
	listID := fs.String("list", "", "watchlist id (default: selected)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	mediaType, tmdbID, err := parseContent(fs.Args())
	if err != nil {
		return err
	}

	if !a.store.RemoveItem(ctx, models.ContentItem{ID: tmdbID}, mediaType, *listID) {
		return errors.New("could not remove item: it is not in that watchlist")
	}
	fmt.Fprintf(a.out, "removed %s %d\n", mediaType.Label(), tmdbID)
	return nil
}

func (a *app) check(args []string) error {
	mediaType, tmdbID, err := parseContent(args)
	if err != nil {
		return err
	}

	if !a.store.IsItemInWatchlist(tmdbID, mediaType) {
		fmt.Fprintf(a.out, "%s %d is not in any watchlist\n", mediaType.Label(), tmdbID)
		return nil
	}

	names := make(map[string]string)
	for _, wl := range a.store.Watchlists() {
		names[wl.ID] = wl.Name
	}
	var in []string
	for _, id := range a.store.WatchlistsContaining(tmdbID, mediaType) {
		in = append(in, strconv.Quote(names[id]))
	}
	fmt.Fprintf(a.out, "%s %d is in %s\n", mediaType.Label(), tmdbID, strings.Join(in, ", "))
	return nil
}

func (a *app) watch(ctx context.Context) error {
	interval := a.cfg.RefreshInterval
	if interval <= 0 {
		interval = defaultWatchInterval
	}

	last := summarize(a.store.Snapshot())
	a.printSummary(last)

	cancel := a.store.Subscribe(func(s watchlistsync.State) {
		if s.Loading {
			return
		}
		if line := summarize(s); line != last {
			last = line
			a.printSummary(line)
		}
	})
	defer cancel()

	watchlistsync.NewPoller(a.store, interval, a.log).Run(ctx)
	return nil
}

func (a *app) printSummary(line string) {
	fmt.Fprintf(a.out, "%s  %s\n", time.Now().Format("15:04:05"), line)
}

// summarize describes a state by list count, item count, selection and
// error. Equal states give equal lines.
func summarize(s watchlistsync.State) string {
	items := 0
	for _, wl := range s.Watchlists {
		items += len(wl.Items)
	}
	line := fmt.Sprintf("%d watchlists, %d items, selected=%q", len(s.Watchlists), items, s.SelectedWatchlistID)
	if s.Err != nil {
		line += "  error: " + s.Err.Error()
	}
	return line
}

func parseContent(args []string) (models.MediaType, int, error) {
	if len(args) != 2 {
		return "", 0, errUsage
	}
	mediaType, err := models.ParseMediaType(args[0])
	if err != nil {
		return "", 0, err
	}
	tmdbID, err := strconv.Atoi(args[1])
	if err != nil || tmdbID <= 0 {
		return "", 0, fmt.Errorf("invalid tmdb id %q", args[1])
	}
	return mediaType, tmdbID, nil
}

func parseSchedule(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", value, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid time %q: use RFC3339 or YYYY-MM-DD", value)
}
