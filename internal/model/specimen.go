package model

import (
	"strconv"
	"strings"
	"time"
)

// Privacy decides which store holds a specimen.
type Privacy string

const (
	Private Privacy = "private"
	Public  Privacy = "public"
)

// ParsePrivacy converts user input into a Privacy value.
// An empty value defaults to Private; "shared" is accepted as an alias for
// Public because that is what the submission form sends.
func ParsePrivacy(s string) (Privacy, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "private":
		return Private, true
	case "public", "shared":
		return Public, true
	}
	return "", false
}

// Anonymous is recorded as AddedBy when nobody is logged in.
const Anonymous = "Anonymous"

// Specimen is one dated, located observation of a species.
//
// Latitude and Longitude are kept as strings: they come straight from form
// input and an empty string means "not recorded". HasGeolocation is true only
// when both coordinates are present and trusted.
//
// Public and private specimens share this shape. Privacy is redundant with
// the store the record lives in, but it is carried along so list and map
// views can label each entry without knowing where it came from.
type Specimen struct {
	ID             int64     `json:"id"`
	MushroomID     int       `json:"mushroomId"`
	ImageURL       string    `json:"imageUrl"`
	Location       string    `json:"location"`
	Date           string    `json:"date"`
	FindDate       string    `json:"findDate,omitempty"`
	Notes          string    `json:"notes"`
	Latitude       string    `json:"latitude"`
	Longitude      string    `json:"longitude"`
	HasGeolocation bool      `json:"hasGeolocation"`
	AddedBy        string    `json:"addedBy"`
	DateAdded      time.Time `json:"dateAdded"`
	Privacy        Privacy   `json:"privacy"`
}

// Coordinates returns the parsed latitude/longitude pair.
// ok is false unless HasGeolocation is set and both values parse as floats.
func (s *Specimen) Coordinates() (c Coordinates, ok bool) {
	if !s.HasGeolocation || s.Latitude == "" || s.Longitude == "" {
		return Coordinates{}, false
	}
	lat, err := strconv.ParseFloat(s.Latitude, 64)
	if err != nil {
		return Coordinates{}, false
	}
	lng, err := strconv.ParseFloat(s.Longitude, 64)
	if err != nil {
		return Coordinates{}, false
	}
	return Coordinates{Lat: lat, Lng: lng}, true
}

// Coordinates is a point in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// PrivateSpecimens is one user's private partition: species ID → specimens.
// encoding/json writes the int keys as strings, matching the stored format.
type PrivateSpecimens map[int][]Specimen
