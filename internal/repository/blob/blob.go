// Package blob implements the table repositories as JSON values in a
// key-value store: one key per logical table, one key per private partition
// and one key per session.
//
// Two stores are used. The durable store keeps users, the catalogue and the
// private partitions. The session store keeps only session records and is
// expected to forget them on restart.
package blob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sakif/mushroom-tracker/internal/apperror"
	"github.com/sakif/mushroom-tracker/internal/model"
	"github.com/sakif/mushroom-tracker/internal/repository"
)

// Storage keys. The names are the ones the catalogue has always used, so an
// exported dump of the old browser storage can be imported key by key.
const (
	CatalogueKey     = "publicMushroomDatabase"
	UsersKey         = "registeredUsers"
	PrivateKeyPrefix = "privateMushroomSpecimens:"
	SessionKeyPrefix = "mushroomTrackerAuth:"
)

var (
	_ repository.UserRepository            = (*Repository)(nil)
	_ repository.SessionRepository         = (*Repository)(nil)
	_ repository.CatalogueRepository       = (*Repository)(nil)
	_ repository.PrivateSpecimenRepository = (*Repository)(nil)
)

// Repository implements every table repository on two key-value stores.
type Repository struct {
	durable repository.KeyValueStore
	session repository.KeyValueStore
}

// New returns a Repository. The same store may be passed twice when
// sessions should survive restarts.
func New(durable, session repository.KeyValueStore) *Repository {
	return &Repository{durable: durable, session: session}
}

// PartitionKey returns the storage key of a user's private partition.
// Usernames are case-insensitive, so the key uses the lower-cased name.
func PartitionKey(username string) string {
	return PrivateKeyPrefix + strings.ToLower(username)
}

// SessionKey returns the storage key of a session record.
func SessionKey(id string) string {
	return SessionKeyPrefix + id
}

func (r *Repository) LoadUsers(ctx context.Context) ([]model.User, bool, error) {
	var users []model.User
	found, err := load(ctx, r.durable, UsersKey, &users)
	if err != nil {
		return nil, false, err
	}
	return users, found, nil
}

func (r *Repository) SaveUsers(ctx context.Context, users []model.User) error {
	if users == nil {
		users = []model.User{}
	}
	return save(ctx, r.durable, UsersKey, users)
}

func (r *Repository) GetSession(ctx context.Context, id string) (*model.Session, error) {
	var s model.Session
	found, err := load(ctx, r.session, SessionKey(id), &s)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperror.NotFound("session", id)
	}
	return &s, nil
}

func (r *Repository) SaveSession(ctx context.Context, session *model.Session) error {
	if session == nil || session.ID == "" {
		return fmt.Errorf("blob: session must have an ID")
	}
	return save(ctx, r.session, SessionKey(session.ID), session)
}

func (r *Repository) DeleteSession(ctx context.Context, id string) error {
	if err := r.session.Delete(ctx, SessionKey(id)); err != nil {
		return fmt.Errorf("blob: deleting session %s: %w", id, err)
	}
	return nil
}

func (r *Repository) LoadCatalogue(ctx context.Context) ([]model.Species, bool, error) {
	var species []model.Species
	found, err := load(ctx, r.durable, CatalogueKey, &species)
	if err != nil {
		return nil, false, err
	}
	return species, found, nil
}

func (r *Repository) SaveCatalogue(ctx context.Context, species []model.Species) error {
	if species == nil {
		species = []model.Species{}
	}
	return save(ctx, r.durable, CatalogueKey, species)
}

func (r *Repository) LoadPartition(ctx context.Context, username string) (model.PrivateSpecimens, bool, error) {
	partition := model.PrivateSpecimens{}
	found, err := load(ctx, r.durable, PartitionKey(username), &partition)
	if err != nil {
		return nil, false, err
	}
	if partition == nil {
		partition = model.PrivateSpecimens{}
	}
	return partition, found, nil
}

func (r *Repository) SavePartition(ctx context.Context, username string, partition model.PrivateSpecimens) error {
	if partition == nil {
		partition = model.PrivateSpecimens{}
	}
	return save(ctx, r.durable, PartitionKey(username), partition)
}

// load decodes the JSON value at key into dst.
// A missing key is reported as found=false, not as an error.
func load(ctx context.Context, kv repository.KeyValueStore, key string, dst any) (bool, error) {
	raw, err := kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("blob: reading %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("blob: decoding %s: %w", key, err)
	}
	return true, nil
}

func save(ctx context.Context, kv repository.KeyValueStore, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("blob: encoding %s: %w", key, err)
	}
	if err := kv.Put(ctx, key, raw); err != nil {
		return fmt.Errorf("blob: writing %s: %w", key, err)
	}
	return nil
}
