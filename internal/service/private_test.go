package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/mushroom-tracker/internal/apperror"
	"github.com/sakif/mushroom-tracker/internal/model"
)

func TestPrivate_InitializeWithoutSessionWritesNothing(t *testing.T) {
	s := newStack(t, nil)
	ctx := context.Background()

	got, err := s.private.Initialize(ctx)
	if err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Initialize() = %v, want empty mapping", got)
	}
}

func TestPrivate_InitializeCreatesPartition(t *testing.T) {
	s := newStack(t, nil)
	ctx := as(context.Background(), "demo")

	if _, err := s.private.Initialize(ctx); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if _, found, err := s.repo.LoadPartition(ctx, "demo"); err != nil || !found {
		t.Errorf("partition not created: found %v, err %v", found, err)
	}
}

func TestPrivate_AppendRequiresSession(t *testing.T) {
	s := newStack(t, nil)

	err := s.private.AppendSpecimen(context.Background(), 1, model.Specimen{ID: 1})
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("AppendSpecimen() error = %v, want ErrUnauthorized", err)
	}
}

func TestPrivate_PartitionsAreIsolated(t *testing.T) {
	s := newStack(t, nil)
	alice := as(context.Background(), "alice")
	bob := as(context.Background(), "bob")

	if err := s.private.AppendSpecimen(alice, 1, model.Specimen{ID: 1, AddedBy: "alice"}); err != nil {
		t.Fatalf("AppendSpecimen(alice) error = %v", err)
	}
	if err := s.private.AppendSpecimen(alice, 1, model.Specimen{ID: 2, AddedBy: "alice"}); err != nil {
		t.Fatalf("AppendSpecimen(alice) error = %v", err)
	}
	if err := s.private.AppendSpecimen(bob, 3, model.Specimen{ID: 3, AddedBy: "bob"}); err != nil {
		t.Fatalf("AppendSpecimen(bob) error = %v", err)
	}

	a, _ := s.private.GetAll(alice)
	if len(a[1]) != 2 || len(a[3]) != 0 {
		t.Errorf("alice's partition = %v", a)
	}
	b, _ := s.private.GetAll(bob)
	if len(b[1]) != 0 || len(b[3]) != 1 {
		t.Errorf("bob's partition = %v", b)
	}

	// usernames are case-insensitive, so "ALICE" is the same partition
	upper, _ := s.private.GetAll(as(context.Background(), "ALICE"))
	if len(upper[1]) != 2 {
		t.Errorf("ALICE sees %d specimens under species 1, want 2", len(upper[1]))
	}

	anon, _ := s.private.GetAll(context.Background())
	if len(anon) != 0 {
		t.Errorf("anonymous GetAll() = %v, want empty", anon)
	}
}
