// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data, similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import (
	"strings"
	"time"
)

// Edibility classifies whether a species is safe to eat.
type Edibility string

const (
	Edible    Edibility = "edible"
	Poisonous Edibility = "poisonous"
	Inedible  Edibility = "inedible"
	Unknown   Edibility = "unknown"
)

// Valid reports whether e is one of the known edibility values.
// The empty string counts as valid: edibility is optional on a species.
func (e Edibility) Valid() bool {
	switch e {
	case "", Edible, Poisonous, Inedible, Unknown:
		return true
	}
	return false
}

// Species is one catalogued mushroom type in the shared public catalogue.
//
// Title and Name hold the same common name. Both are kept because older
// records were written with only one of them; SyncNames copies whichever is
// set into the other.
//
// The `json:"..."` tags keep the camelCase field names of the stored catalogue
// blob, so existing data decodes without a migration step.
//
// Specimens holds the PUBLIC specimens only. Private specimens live in a
// separate per-user partition and are merged in by the aggregation layer.
type Species struct {
	ID             int       `json:"id"`
	Title          string    `json:"title"`
	Name           string    `json:"name,omitempty"`
	ScientificName string    `json:"scientificName,omitempty"`
	Description    string    `json:"description,omitempty"`
	Edibility      Edibility `json:"edibility,omitempty"`
	Habitat        string    `json:"habitat,omitempty"`
	Image          string    `json:"image,omitempty"`

	Season            string `json:"season,omitempty"`
	Size              string `json:"size,omitempty"`
	Color             string `json:"color,omitempty"`
	Texture           string `json:"texture,omitempty"`
	SporeColor        string `json:"sporeColor,omitempty"`
	Distribution      string `json:"distribution,omitempty"`
	GrowingConditions string `json:"growingConditions,omitempty"`
	CulinaryUses      string `json:"culinaryUses,omitempty"`
	SimilarSpecies    string `json:"similarSpecies,omitempty"`

	Specimens []Specimen `json:"specimens"`

	// Provenance, set only on user-contributed species.
	ContributedBy   string     `json:"contributedBy,omitempty"`
	DateContributed *time.Time `json:"dateContributed,omitempty"`
	Verified        bool       `json:"verified"`
}

// SyncNames makes Title and Name agree. Title wins when both are set.
func (s *Species) SyncNames() {
	switch {
	case s.Title != "":
		s.Name = s.Title
	case s.Name != "":
		s.Title = s.Name
	}
}

// MatchesName reports whether the species has exactly this common name and
// scientific name, ignoring case and surrounding whitespace.
// A missing scientific name only matches an empty one.
func (s *Species) MatchesName(title, scientificName string) bool {
	return strings.EqualFold(strings.TrimSpace(s.Title), strings.TrimSpace(title)) &&
		strings.EqualFold(strings.TrimSpace(s.ScientificName), strings.TrimSpace(scientificName))
}

// Contains reports whether term (already lower-cased) appears in any of the
// searchable fields: title, description, scientific name, edibility, habitat.
// Empty fields never match.
func (s *Species) Contains(term string) bool {
	fields := [...]string{s.Title, s.Description, s.ScientificName, string(s.Edibility), s.Habitat}
	for _, f := range fields {
		if f == "" {
			continue
		}
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}
