package credentials

import (
	"testing"

	"github.com/spf13/afero"

	"cinelist/models"
)

const path = "/home/user/.cinelist/credentials.json"

func TestOpen_MissingFile(t *testing.T) {
	store, err := Open(afero.NewMemMapFs(), path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if store.Token() != "" || store.SelectedWatchlistID() != "" {
		t.Fatalf("expected empty store, got %+v", store.Current())
	}
}

func TestSaveAuthPersists(t *testing.T) {
	fs := afero.NewMemMapFs()
	store, _ := Open(fs, path)

	if err := store.SaveAuth(models.AuthEnvelope{Success: true, Token: "tok", AccountID: "a1", Username: "neo"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.SetSelectedWatchlistID("w1"); err != nil {
		t.Fatalf("select: %v", err)
	}

	reopened, err := Open(fs, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got := reopened.Current()
	if got.Token != "tok" || got.Username != "neo" || got.SelectedWatchlistID != "w1" {
		t.Fatalf("unexpected reloaded credentials %+v", got)
	}
}

func TestSaveAuth_SelectionFollowsAccount(t *testing.T) {
	store, _ := Open(afero.NewMemMapFs(), path)
	store.SaveAuth(models.AuthEnvelope{Token: "t1", AccountID: "a1"})
	store.SetSelectedWatchlistID("w1")

	store.SaveAuth(models.AuthEnvelope{Token: "t2", AccountID: "a1"})
	if store.SelectedWatchlistID() != "w1" {
		t.Fatalf("expected selection kept for the same account, got %q", store.SelectedWatchlistID())
	}

	store.SaveAuth(models.AuthEnvelope{Token: "t3", AccountID: "a2"})
	if store.SelectedWatchlistID() != "" {
		t.Fatalf("expected selection dropped for another account, got %q", store.SelectedWatchlistID())
	}
}

func TestClear(t *testing.T) {
	fs := afero.NewMemMapFs()
	store, _ := Open(fs, path)
	store.SaveAuth(models.AuthEnvelope{Token: "tok", AccountID: "a1"})

	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if store.Token() != "" {
		t.Fatal("expected token to be cleared")
	}
	if exists, _ := afero.Exists(fs, path); exists {
		t.Fatal("expected credentials file to be removed")
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}
