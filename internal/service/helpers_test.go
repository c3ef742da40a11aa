package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/sakif/mushroom-tracker/internal/auth"
	"github.com/sakif/mushroom-tracker/internal/model"
	"github.com/sakif/mushroom-tracker/internal/repository"
	"github.com/sakif/mushroom-tracker/internal/repository/blob"
	"github.com/sakif/mushroom-tracker/internal/repository/memory"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestRepo returns blob repositories over two in-memory stores. The
// real blob encoding is exercised, so a stored value looks exactly like it
// would in SQLite.
func newTestRepo(t *testing.T) *blob.Repository {
	t.Helper()
	durable, err := memory.New(1000)
	if err != nil {
		t.Fatalf("memory.New: %v", err)
	}
	sessions, err := memory.New(1000)
	if err != nil {
		t.Fatalf("memory.New: %v", err)
	}
	return blob.New(durable, sessions)
}

// as returns ctx carrying a session for username, the way the HTTP
// middleware would after a login.
func as(ctx context.Context, username string) context.Context {
	return auth.WithSession(ctx, &model.Session{ID: "sess-" + username, Username: username, LoginTime: time.Now()})
}

// stack is every service wired over one repository.
type stack struct {
	repo       *blob.Repository
	catalogue  *CatalogueService
	private    *PrivateSpecimenService
	aggregator *Aggregator
	submission *SubmissionService
}

func newStack(t *testing.T, geocoder Geocoder) *stack {
	t.Helper()
	repo := newTestRepo(t)
	logger := testLogger()
	catalogue := NewCatalogueService(repo, logger)
	private := NewPrivateSpecimenService(repo, logger)
	return &stack{
		repo:       repo,
		catalogue:  catalogue,
		private:    private,
		aggregator: NewAggregator(catalogue, private),
		submission: NewSubmissionService(catalogue, private, geocoder, logger),
	}
}

// fakeGeocoder returns a fixed point, or err when set.
type fakeGeocoder struct {
	coords model.Coordinates
	err    error
	calls  int
}

func (f *fakeGeocoder) Geocode(ctx context.Context, location string) (model.Coordinates, error) {
	f.calls++
	if f.err != nil {
		return model.Coordinates{}, f.err
	}
	return f.coords, nil
}

// failingCatalogueRepo simulates a storage outage.
type failingCatalogueRepo struct{}

var errStorageDown = errors.New("storage down")

func (failingCatalogueRepo) LoadCatalogue(context.Context) ([]model.Species, bool, error) {
	return nil, false, errStorageDown
}

func (failingCatalogueRepo) SaveCatalogue(context.Context, []model.Species) error {
	return errStorageDown
}

var _ repository.CatalogueRepository = failingCatalogueRepo{}

// fixedClock returns a clock that starts at start and advances by step on
// every call.
func fixedClock(start time.Time, step time.Duration) func() time.Time {
	next := start
	return func() time.Time {
		t := next
		next = next.Add(step)
		return t
	}
}
