package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakif/mushroom-tracker/internal/apperror"
	"github.com/sakif/mushroom-tracker/internal/model"
)

func TestGetAllWithUserData_AnonymousNeverSeesPrivate(t *testing.T) {
	s := newStack(t, nil)
	demo := as(context.Background(), "demo")

	if err := s.private.AppendSpecimen(demo, 1, model.Specimen{ID: 1, AddedBy: "demo", Privacy: model.Private}); err != nil {
		t.Fatalf("AppendSpecimen() error = %v", err)
	}
	if err := s.catalogue.AppendSpecimen(demo, 1, model.Specimen{ID: 2, AddedBy: "demo", Privacy: model.Public}); err != nil {
		t.Fatalf("AppendSpecimen() error = %v", err)
	}

	views, err := s.aggregator.GetAllWithUserData(context.Background())
	if err != nil {
		t.Fatalf("GetAllWithUserData() error = %v", err)
	}
	for _, v := range views {
		if len(v.PrivateSpecimens) != 0 {
			t.Errorf("species %d exposes %d private specimens to an anonymous caller", v.ID, len(v.PrivateSpecimens))
		}
		for _, sp := range v.AllSpecimens {
			if sp.Privacy == model.Private {
				t.Errorf("species %d AllSpecimens contains private specimen %d", v.ID, sp.ID)
			}
		}
	}
	if len(views[0].AllSpecimens) != 1 || views[0].AllSpecimens[0].ID != 2 {
		t.Errorf("Chanterelle AllSpecimens = %v, want only public specimen 2", views[0].AllSpecimens)
	}
}

func TestGetAllWithUserData_OtherUserNeverSeesPrivate(t *testing.T) {
	s := newStack(t, nil)
	alice := as(context.Background(), "alice")
	bob := as(context.Background(), "bob")

	if err := s.private.AppendSpecimen(alice, 1, model.Specimen{ID: 1, AddedBy: "alice"}); err != nil {
		t.Fatalf("AppendSpecimen() error = %v", err)
	}

	views, err := s.aggregator.GetAllWithUserData(bob)
	if err != nil {
		t.Fatalf("GetAllWithUserData() error = %v", err)
	}
	if n := len(views[0].PrivateSpecimens); n != 0 {
		t.Errorf("bob sees %d of alice's private specimens", n)
	}

	set, err := s.aggregator.GetSpecimensFor(bob, 1)
	if err != nil {
		t.Fatalf("GetSpecimensFor() error = %v", err)
	}
	if len(set.Private) != 0 || len(set.All) != 0 {
		t.Errorf("bob's specimen set = %+v, want empty", set)
	}
}

func TestGetAllWithUserData_MergesPublicThenPrivate(t *testing.T) {
	s := newStack(t, nil)
	demo := as(context.Background(), "demo")

	_ = s.private.AppendSpecimen(demo, 1, model.Specimen{ID: 10})
	_ = s.catalogue.AppendSpecimen(demo, 1, model.Specimen{ID: 20})

	view, err := s.aggregator.GetSpeciesWithUserData(demo, 1)
	if err != nil {
		t.Fatalf("GetSpeciesWithUserData() error = %v", err)
	}
	if len(view.AllSpecimens) != 2 || view.AllSpecimens[0].ID != 20 || view.AllSpecimens[1].ID != 10 {
		t.Errorf("AllSpecimens = %v, want public 20 then private 10", view.AllSpecimens)
	}
	if len(view.PublicSpecimens) != 1 || len(view.PrivateSpecimens) != 1 {
		t.Errorf("public/private = %d/%d, want 1/1", len(view.PublicSpecimens), len(view.PrivateSpecimens))
	}

	if _, err := s.aggregator.GetSpeciesWithUserData(demo, 9999); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetSpeciesWithUserData(9999) error = %v, want ErrNotFound", err)
	}
}

func TestGetSpecimensFor_UnknownSpeciesIsEmpty(t *testing.T) {
	s := newStack(t, nil)

	set, err := s.aggregator.GetSpecimensFor(context.Background(), 9999)
	if err != nil {
		t.Fatalf("GetSpecimensFor() error = %v", err)
	}
	if set.Public == nil || set.Private == nil || set.All == nil {
		t.Errorf("GetSpecimensFor() = %+v, want empty non-nil lists", set)
	}
	if len(set.All) != 0 {
		t.Errorf("len(All) = %d, want 0", len(set.All))
	}
}

func TestGetAllUserSpecimens_SortedNewestFirst(t *testing.T) {
	s := newStack(t, nil)
	demo := as(context.Background(), "demo")
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	add := func(private bool, species int, id int64, by string, offset time.Duration) {
		t.Helper()
		sp := model.Specimen{ID: id, AddedBy: by, DateAdded: base.Add(offset)}
		var err error
		if private {
			err = s.private.AppendSpecimen(demo, species, sp)
		} else {
			err = s.catalogue.AppendSpecimen(demo, species, sp)
		}
		if err != nil {
			t.Fatalf("append %d: %v", id, err)
		}
	}
	add(true, 1, 1, "demo", 1*time.Hour)
	add(false, 2, 2, "demo", 3*time.Hour)
	add(false, 1, 3, "developer", 2*time.Hour)
	add(true, 3, 4, "demo", 0)
	// a private specimen under a species that does not exist is skipped
	add(true, 9999, 5, "demo", 10*time.Hour)

	got, err := s.aggregator.GetAllUserSpecimens(demo, "demo")
	if err != nil {
		t.Fatalf("GetAllUserSpecimens() error = %v", err)
	}
	wantIDs := []int64{2, 1, 4}
	if len(got) != len(wantIDs) {
		t.Fatalf("got %d specimens, want %d: %+v", len(got), len(wantIDs), got)
	}
	for i, id := range wantIDs {
		if got[i].ID != id {
			t.Errorf("got[%d].ID = %d, want %d", i, got[i].ID, id)
		}
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].DateAdded.Before(got[i].DateAdded) {
			t.Errorf("entries %d and %d are out of order", i-1, i)
		}
	}
	if got[1].MushroomTitle != "Chanterelle" || got[1].MushroomID != 1 {
		t.Errorf("got[1] annotated as %q (%d), want Chanterelle (1)", got[1].MushroomTitle, got[1].MushroomID)
	}

	everyone, _ := s.aggregator.GetAllUserSpecimens(demo, "")
	if len(everyone) != 4 {
		t.Errorf("unfiltered = %d specimens, want 4", len(everyone))
	}
}

func TestSearchAll(t *testing.T) {
	s := newStack(t, nil)
	ctx := context.Background()

	cases := []struct {
		term    string
		wantHit int // a species ID that must be present, 0 for no results
	}{
		{"chanterelle", 1},
		{"CHANTERELLE", 1},
		{"cantharellus", 1},
		{"poisonous", 3},
		{"oak", 1},
		{"no-such-mushroom-anywhere", 0},
	}
	for _, tc := range cases {
		t.Run(tc.term, func(t *testing.T) {
			got, err := s.aggregator.SearchAll(ctx, tc.term)
			if err != nil {
				t.Fatalf("SearchAll() error = %v", err)
			}
			if tc.wantHit == 0 {
				if len(got) != 0 {
					t.Errorf("SearchAll(%q) = %d results, want 0", tc.term, len(got))
				}
				return
			}
			found := false
			for _, v := range got {
				found = found || v.ID == tc.wantHit
			}
			if !found {
				t.Errorf("SearchAll(%q) did not return species %d", tc.term, tc.wantHit)
			}
		})
	}
}

func TestSearchAll_SkipsEmptyFieldsAndKeepsOrder(t *testing.T) {
	s := newStack(t, nil)
	ctx := as(context.Background(), "demo")

	// a contributed species with nothing searchable apart from its title
	if _, err := s.catalogue.AddSpecies(ctx, model.Species{Title: "Zzz"}); err != nil {
		t.Fatalf("AddSpecies() error = %v", err)
	}

	got, err := s.aggregator.SearchAll(ctx, "edible")
	if err != nil {
		t.Fatalf("SearchAll() error = %v", err)
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].ID > got[i].ID {
			t.Errorf("results out of catalogue order: %d before %d", got[i-1].ID, got[i].ID)
		}
	}
	for _, v := range got {
		if v.Title == "Zzz" {
			t.Error("species with no matching field was returned")
		}
	}
}

func TestSearchPublic(t *testing.T) {
	s := newStack(t, nil)

	got, err := s.aggregator.SearchPublic(context.Background(), "amanita")
	if err != nil {
		t.Fatalf("SearchPublic() error = %v", err)
	}
	if len(got) < 2 {
		t.Errorf("SearchPublic(amanita) = %d results, want at least 2", len(got))
	}
}

func TestMapPoints(t *testing.T) {
	s := newStack(t, nil)
	demo := as(context.Background(), "demo")
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	specimens := []struct {
		private bool
		s       model.Specimen
	}{
		{false, model.Specimen{ID: 1, Date: "2024-05-10", Latitude: "44.0", Longitude: "-90.0", HasGeolocation: true, DateAdded: now}},
		{true, model.Specimen{ID: 2, Date: "2024-05-01", Latitude: "45.5", Longitude: "-91.5", HasGeolocation: true, DateAdded: now}},
		// flagged but unusable coordinates
		{false, model.Specimen{ID: 3, Date: "2024-01-01", Latitude: "", Longitude: "-91", HasGeolocation: true, DateAdded: now}},
		// coordinates without the flag
		{false, model.Specimen{ID: 4, Date: "2023-01-01", Latitude: "1", Longitude: "1", DateAdded: now}},
	}
	for _, sp := range specimens {
		var err error
		if sp.private {
			err = s.private.AppendSpecimen(demo, 1, sp.s)
		} else {
			err = s.catalogue.AppendSpecimen(demo, 1, sp.s)
		}
		if err != nil {
			t.Fatalf("append %d: %v", sp.s.ID, err)
		}
	}

	m, err := s.aggregator.MapPoints(demo, 1)
	if err != nil {
		t.Fatalf("MapPoints() error = %v", err)
	}
	if len(m.Points) != 2 {
		t.Fatalf("len(Points) = %d, want 2", len(m.Points))
	}
	// earliest find is the private one on 2024-05-01
	if m.Center != (model.Coordinates{Lat: 45.5, Lng: -91.5}) {
		t.Errorf("Center = %+v, want the earliest find", m.Center)
	}

	anon, err := s.aggregator.MapPoints(context.Background(), 1)
	if err != nil {
		t.Fatalf("anonymous MapPoints() error = %v", err)
	}
	if len(anon.Points) != 1 || anon.Points[0].ID != 1 {
		t.Errorf("anonymous points = %+v, want only public specimen 1", anon.Points)
	}
}

func TestMapPoints_DefaultCenter(t *testing.T) {
	s := newStack(t, nil)

	m, err := s.aggregator.MapPoints(context.Background(), 2)
	if err != nil {
		t.Fatalf("MapPoints() error = %v", err)
	}
	if m.Center != DefaultMapCenter {
		t.Errorf("Center = %+v, want %+v", m.Center, DefaultMapCenter)
	}
	if m.Points == nil || len(m.Points) != 0 {
		t.Errorf("Points = %v, want empty list", m.Points)
	}

	if _, err := s.aggregator.MapPoints(context.Background(), 9999); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("MapPoints(9999) error = %v, want ErrNotFound", err)
	}
}
