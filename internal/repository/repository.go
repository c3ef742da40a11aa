// Package repository defines the storage contracts of the catalogue.
//
// Every logical table is a whole-value repository: callers load the complete
// value, change it in memory and save it back. There are no row-level updates.
// The services own the load-modify-save cycle and serialise it; repositories
// only move bytes.
//
// KeyValueStore is the lowest layer. The blob package implements the table
// repositories on top of any KeyValueStore by JSON-encoding one value per key,
// so swapping SQLite for PostgreSQL (or memory) never touches the services.
package repository

import (
	"context"

	"github.com/sakif/mushroom-tracker/internal/model"
)

// KeyValueStore stores opaque values under string keys.
// Get returns an error wrapping apperror.ErrNotFound when the key is absent.
// Delete of a missing key is not an error.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// UserRepository holds the registered user list.
// found is false when no list has ever been saved.
type UserRepository interface {
	LoadUsers(ctx context.Context) (users []model.User, found bool, err error)
	SaveUsers(ctx context.Context, users []model.User) error
}

// SessionRepository holds live sessions, keyed by Session.ID.
// GetSession returns apperror.ErrNotFound for unknown or cleared sessions.
type SessionRepository interface {
	GetSession(ctx context.Context, id string) (*model.Session, error)
	SaveSession(ctx context.Context, session *model.Session) error
	DeleteSession(ctx context.Context, id string) error
}

// CatalogueRepository holds the shared species catalogue.
type CatalogueRepository interface {
	LoadCatalogue(ctx context.Context) (species []model.Species, found bool, err error)
	SaveCatalogue(ctx context.Context, species []model.Species) error
}

// PrivateSpecimenRepository holds one private partition per username.
type PrivateSpecimenRepository interface {
	LoadPartition(ctx context.Context, username string) (partition model.PrivateSpecimens, found bool, err error)
	SavePartition(ctx context.Context, username string, partition model.PrivateSpecimens) error
}
