package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sakif/mushroom-tracker/internal/apperror"
	"github.com/sakif/mushroom-tracker/internal/auth"
	"github.com/sakif/mushroom-tracker/internal/model"
	"github.com/sakif/mushroom-tracker/internal/repository"
)

// PrivateSpecimenService owns the per-user private specimen partitions.
//
// The partition is always the one of the session in ctx. There is no method
// that takes a username, so no code path reads another user's partition.
type PrivateSpecimenService struct {
	mu     sync.Mutex
	repo   repository.PrivateSpecimenRepository
	logger *slog.Logger
}

func NewPrivateSpecimenService(repo repository.PrivateSpecimenRepository, logger *slog.Logger) *PrivateSpecimenService {
	return &PrivateSpecimenService{repo: repo, logger: logger}
}

// Initialize makes sure the current user's partition exists and returns it.
// Without a session it returns an empty mapping and writes nothing.
func (s *PrivateSpecimenService) Initialize(ctx context.Context) (model.PrivateSpecimens, error) {
	session, ok := auth.SessionFromContext(ctx)
	if !ok {
		return model.PrivateSpecimens{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	partition, found, err := s.repo.LoadPartition(ctx, session.Username)
	if err != nil {
		return nil, fmt.Errorf("service/private: loading partition: %w", err)
	}
	if !found {
		if err := s.repo.SavePartition(ctx, session.Username, partition); err != nil {
			return nil, fmt.Errorf("service/private: creating partition: %w", err)
		}
	}
	return partition, nil
}

// GetAll returns the current user's mapping of species ID to private
// specimens, or an empty mapping when nobody is logged in.
func (s *PrivateSpecimenService) GetAll(ctx context.Context) (model.PrivateSpecimens, error) {
	session, ok := auth.SessionFromContext(ctx)
	if !ok {
		return model.PrivateSpecimens{}, nil
	}

	partition, _, err := s.repo.LoadPartition(ctx, session.Username)
	if err != nil {
		return nil, fmt.Errorf("service/private: loading partition: %w", err)
	}
	return partition, nil
}

// AppendSpecimen adds a private specimen under speciesID for the current
// user. Only that user's partition is written.
func (s *PrivateSpecimenService) AppendSpecimen(ctx context.Context, speciesID int, specimen model.Specimen) error {
	session, ok := auth.SessionFromContext(ctx)
	if !ok {
		return apperror.NotAuthenticated("save private specimens")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	partition, _, err := s.repo.LoadPartition(ctx, session.Username)
	if err != nil {
		return fmt.Errorf("service/private: loading partition: %w", err)
	}
	specimen.MushroomID = speciesID
	partition[speciesID] = append(partition[speciesID], specimen)

	if err := s.repo.SavePartition(ctx, session.Username, partition); err != nil {
		return fmt.Errorf("service/private: saving partition: %w", err)
	}
	return nil
}
