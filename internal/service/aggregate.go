package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/sakif/mushroom-tracker/internal/model"
)

// DefaultMapCenter is used when a species has no mappable specimen
// (Madison, Wisconsin).
var DefaultMapCenter = model.Coordinates{Lat: 43.0731, Lng: -89.4012}

// Aggregator merges the public catalogue with the current user's private
// specimens. It only reads; all writes go through the two stores.
//
// Private data comes from PrivateSpecimenService, which resolves the user
// from ctx. An anonymous ctx therefore never sees any private specimen.
type Aggregator struct {
	catalogue *CatalogueService
	private   *PrivateSpecimenService
}

func NewAggregator(catalogue *CatalogueService, private *PrivateSpecimenService) *Aggregator {
	return &Aggregator{catalogue: catalogue, private: private}
}

// GetAllWithUserData returns every species with its public and (for a
// logged-in user) private specimens, in catalogue order.
func (a *Aggregator) GetAllWithUserData(ctx context.Context) ([]model.SpeciesView, error) {
	all, err := a.catalogue.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	partition, err := a.private.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]model.SpeciesView, 0, len(all))
	for _, sp := range all {
		views = append(views, merge(sp, partition[sp.ID]))
	}
	return views, nil
}

// GetSpeciesWithUserData is GetAllWithUserData for one species.
func (a *Aggregator) GetSpeciesWithUserData(ctx context.Context, id int) (*model.SpeciesView, error) {
	sp, err := a.catalogue.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	partition, err := a.private.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	view := merge(*sp, partition[sp.ID])
	return &view, nil
}

// GetSpecimensFor returns the specimens of one species split by visibility.
// An unknown species yields empty sets.
func (a *Aggregator) GetSpecimensFor(ctx context.Context, speciesID int) (model.SpecimenSet, error) {
	all, err := a.catalogue.GetAll(ctx)
	if err != nil {
		return model.SpecimenSet{}, err
	}
	public := []model.Specimen{}
	if i := indexOfSpecies(all, speciesID); i >= 0 {
		public = all[i].Specimens
	}

	partition, err := a.private.GetAll(ctx)
	if err != nil {
		return model.SpecimenSet{}, err
	}
	private := partition[speciesID]
	if private == nil {
		private = []model.Specimen{}
	}

	return model.SpecimenSet{
		Public:  public,
		Private: private,
		All:     concat(public, private),
	}, nil
}

// GetAllUserSpecimens lists the specimens visible to the current session,
// newest first, each labelled with its species.
//
// When username is non-empty only specimens whose AddedBy equals it are
// returned; an empty username returns everything visible. Private
// specimens filed under a species that no longer exists are skipped.
func (a *Aggregator) GetAllUserSpecimens(ctx context.Context, username string) ([]model.UserSpecimen, error) {
	all, err := a.catalogue.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	partition, err := a.private.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	out := []model.UserSpecimen{}
	keep := func(sp *model.Species, specimens []model.Specimen) {
		for _, s := range specimens {
			if username != "" && s.AddedBy != username {
				continue
			}
			s.MushroomID = sp.ID
			out = append(out, model.UserSpecimen{
				Specimen:               s,
				MushroomTitle:          sp.Title,
				MushroomScientificName: sp.ScientificName,
			})
		}
	}

	// Private first, then public, species in catalogue order. The stable
	// sort below keeps this order among equal timestamps.
	for i := range all {
		if specimens, ok := partition[all[i].ID]; ok {
			keep(&all[i], specimens)
		}
	}
	for i := range all {
		keep(&all[i], all[i].Specimens)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DateAdded.After(out[j].DateAdded)
	})
	return out, nil
}

// SearchAll returns the merged views whose title, description, scientific
// name, edibility or habitat contains term, ignoring case.
func (a *Aggregator) SearchAll(ctx context.Context, term string) ([]model.SpeciesView, error) {
	views, err := a.GetAllWithUserData(ctx)
	if err != nil {
		return nil, err
	}
	term = strings.ToLower(strings.TrimSpace(term))

	out := []model.SpeciesView{}
	for _, v := range views {
		if v.Contains(term) {
			out = append(out, v)
		}
	}
	return out, nil
}

// SearchPublic applies the SearchAll match to the public catalogue only.
func (a *Aggregator) SearchPublic(ctx context.Context, term string) ([]model.Species, error) {
	all, err := a.catalogue.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	term = strings.ToLower(strings.TrimSpace(term))

	out := []model.Species{}
	for _, sp := range all {
		if sp.Contains(term) {
			out = append(out, sp)
		}
	}
	return out, nil
}

// MapPoints returns the geolocated specimens of a species that the current
// session may see, and where to centre a map of them.
//
// The centre is the earliest find (by found date, falling back to the
// submission time). With no points it is DefaultMapCenter.
func (a *Aggregator) MapPoints(ctx context.Context, speciesID int) (*model.SpecimenMap, error) {
	if _, err := a.catalogue.GetByID(ctx, speciesID); err != nil {
		return nil, err
	}
	set, err := a.GetSpecimensFor(ctx, speciesID)
	if err != nil {
		return nil, err
	}

	m := &model.SpecimenMap{
		SpeciesID: speciesID,
		Center:    DefaultMapCenter,
		Points:    []model.MapPoint{},
	}
	var earliest time.Time
	for _, s := range set.All {
		c, ok := s.Coordinates()
		if !ok {
			continue
		}
		m.Points = append(m.Points, model.MapPoint{Specimen: s, Coordinates: c})
		if found := foundAt(s); len(m.Points) == 1 || found.Before(earliest) {
			earliest = found
			m.Center = c
		}
	}
	return m, nil
}

// foundAt is when a specimen was found: its date field if it parses,
// otherwise when it was submitted.
func foundAt(s model.Specimen) time.Time {
	for _, d := range []string{s.Date, s.FindDate} {
		if d == "" {
			continue
		}
		if t, err := time.Parse(time.DateOnly, d); err == nil {
			return t
		}
		if t, err := time.Parse(time.RFC3339, d); err == nil {
			return t
		}
	}
	return s.DateAdded
}

func merge(sp model.Species, private []model.Specimen) model.SpeciesView {
	public := sp.Specimens
	if public == nil {
		public = []model.Specimen{}
	}
	if private == nil {
		private = []model.Specimen{}
	}
	return model.SpeciesView{
		Species:          sp,
		AllSpecimens:     concat(public, private),
		PublicSpecimens:  public,
		PrivateSpecimens: private,
	}
}

func concat(a, b []model.Specimen) []model.Specimen {
	out := make([]model.Specimen, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
