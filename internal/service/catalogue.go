// Package service contains the business logic of the mushroom tracker.
//
//	Handler (HTTP) / CLI → Service (rules, merging) → Repository (blobs)
//
// Services take repository interfaces, never concrete stores, so tests run
// against in-memory stores and main picks SQLite, Postgres or memory.
//
// The current user is never a parameter. It is read from the session in
// ctx (auth.SessionFromContext), so a caller cannot ask for someone else's
// private data.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sakif/mushroom-tracker/internal/apperror"
	"github.com/sakif/mushroom-tracker/internal/auth"
	"github.com/sakif/mushroom-tracker/internal/model"
	"github.com/sakif/mushroom-tracker/internal/repository"
	"github.com/sakif/mushroom-tracker/internal/seed"
)

// CatalogueService owns the shared species catalogue.
//
// The catalogue is stored as one blob, so every mutation is a full
// load-modify-save. mu makes this service the only writer.
type CatalogueService struct {
	mu     sync.Mutex
	repo   repository.CatalogueRepository
	seed   func() ([]model.Species, error)
	logger *slog.Logger
	now    func() time.Time
}

// NewCatalogueService creates a CatalogueService seeded from the embedded
// species dataset.
func NewCatalogueService(repo repository.CatalogueRepository, logger *slog.Logger) *CatalogueService {
	return &CatalogueService{
		repo:   repo,
		seed:   seed.Species,
		logger: logger,
		now:    time.Now,
	}
}

// Initialize seeds the catalogue if it has never been saved and returns the
// current state. Calling it again is a no-op.
func (s *CatalogueService) Initialize(ctx context.Context) ([]model.Species, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

// GetAll returns every species in catalogue order.
func (s *CatalogueService) GetAll(ctx context.Context) ([]model.Species, error) {
	return s.Initialize(ctx)
}

// GetByID returns one species or apperror.ErrNotFound.
func (s *CatalogueService) GetByID(ctx context.Context, id int) (*model.Species, error) {
	all, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if i := indexOfSpecies(all, id); i >= 0 {
		return &all[i], nil
	}
	return nil, apperror.SpeciesNotFound(id)
}

// FindByName returns the species whose title and scientific name both
// match, ignoring case. There is no fuzzy matching.
func (s *CatalogueService) FindByName(ctx context.Context, title, scientificName string) (*model.Species, error) {
	all, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].MatchesName(title, scientificName) {
			return &all[i], nil
		}
	}
	return nil, apperror.SpeciesNameNotFound(strings.TrimSpace(title))
}

// AppendSpecimen adds a public specimen to the end of a species' list.
// An unknown species ID is an error; nothing is written.
func (s *CatalogueService) AppendSpecimen(ctx context.Context, speciesID int, specimen model.Specimen) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.loadLocked(ctx)
	if err != nil {
		return err
	}
	i := indexOfSpecies(all, speciesID)
	if i < 0 {
		return apperror.SpeciesNotFound(speciesID)
	}

	specimen.MushroomID = speciesID
	all[i].Specimens = append(all[i].Specimens, specimen)
	if err := s.repo.SaveCatalogue(ctx, all); err != nil {
		return fmt.Errorf("service/catalogue: saving catalogue: %w", err)
	}
	return nil
}

// AddSpecies contributes a new species to the catalogue.
//
// It needs a logged-in user. The new ID is one more than the largest
// existing ID. Specimens start empty, Verified starts false and the
// provenance fields are stamped from the session; whatever the caller put
// in those fields is ignored. A species whose common and scientific names
// both match an existing one is rejected with apperror.ErrConflict.
func (s *CatalogueService) AddSpecies(ctx context.Context, data model.Species) (*model.Species, error) {
	session, ok := auth.SessionFromContext(ctx)
	if !ok {
		return nil, apperror.NotAuthenticated("add new species")
	}

	data.Title = strings.TrimSpace(data.Title)
	data.Name = strings.TrimSpace(data.Name)
	data.ScientificName = strings.TrimSpace(data.ScientificName)
	data.SyncNames()
	if data.Title == "" {
		return nil, apperror.ValidationFailed("title", "species name is required")
	}
	if !data.Edibility.Valid() {
		return nil, apperror.ValidationFailed("edibility",
			fmt.Sprintf("edibility must be one of %s, %s, %s or %s", model.Edible, model.Poisonous, model.Inedible, model.Unknown))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.loadLocked(ctx)
	if err != nil {
		return nil, err
	}

	maxID := 0
	for i := range all {
		if all[i].MatchesName(data.Title, data.ScientificName) {
			return nil, apperror.DuplicateSpecies(data.Title, data.ScientificName)
		}
		maxID = max(maxID, all[i].ID)
	}
	contributed := s.now().UTC()
	data.ID = maxID + 1
	data.Specimens = []model.Specimen{}
	data.Verified = false
	data.ContributedBy = session.Username
	data.DateContributed = &contributed

	if err := s.repo.SaveCatalogue(ctx, append(all, data)); err != nil {
		return nil, fmt.Errorf("service/catalogue: saving catalogue: %w", err)
	}

	s.logger.Info("species added",
		slog.Int("id", data.ID),
		slog.String("title", data.Title),
		slog.String("contributedBy", data.ContributedBy),
	)
	return &data, nil
}

// loadLocked returns the catalogue, seeding it first if needed.
// Callers hold s.mu.
func (s *CatalogueService) loadLocked(ctx context.Context) ([]model.Species, error) {
	all, found, err := s.repo.LoadCatalogue(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/catalogue: loading catalogue: %w", err)
	}
	if found {
		for i := range all {
			if all[i].Specimens == nil {
				all[i].Specimens = []model.Specimen{}
			}
			all[i].SyncNames()
		}
		return all, nil
	}

	all, err = s.seed()
	if err != nil {
		return nil, fmt.Errorf("service/catalogue: reading seed data: %w", err)
	}
	if err := s.repo.SaveCatalogue(ctx, all); err != nil {
		return nil, fmt.Errorf("service/catalogue: saving seed catalogue: %w", err)
	}
	s.logger.Info("catalogue initialized", slog.Int("species", len(all)))
	return all, nil
}

func indexOfSpecies(all []model.Species, id int) int {
	for i := range all {
		if all[i].ID == id {
			return i
		}
	}
	return -1
}
