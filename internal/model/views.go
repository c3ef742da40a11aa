package model

// SpeciesView is a species merged with the specimens the current session may
// see. PublicSpecimens mirrors Species.Specimens; PrivateSpecimens is empty
// when nobody is logged in. AllSpecimens is public followed by private.
type SpeciesView struct {
	Species
	AllSpecimens     []Specimen `json:"allSpecimens"`
	PublicSpecimens  []Specimen `json:"publicSpecimens"`
	PrivateSpecimens []Specimen `json:"privateSpecimens"`
}

// SpecimenSet groups the specimens of one species by visibility.
type SpecimenSet struct {
	Public  []Specimen `json:"public"`
	Private []Specimen `json:"private"`
	All     []Specimen `json:"all"`
}

// UserSpecimen is a specimen annotated with its parent species, used by
// "my collection" listings.
type UserSpecimen struct {
	Specimen
	MushroomTitle          string `json:"mushroomTitle"`
	MushroomScientificName string `json:"mushroomScientificName,omitempty"`
}

// MapPoint is one specimen that can be placed on a map.
type MapPoint struct {
	Specimen
	Coordinates Coordinates `json:"coordinates"`
}

// SpecimenMap is everything a map view needs for one species.
type SpecimenMap struct {
	SpeciesID int         `json:"speciesId"`
	Center    Coordinates `json:"center"`
	Points    []MapPoint  `json:"points"`
}
