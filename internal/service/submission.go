package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sakif/mushroom-tracker/internal/apperror"
	"github.com/sakif/mushroom-tracker/internal/auth"
	"github.com/sakif/mushroom-tracker/internal/model"
)

var (
	specimensSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mushroom_specimens_submitted_total",
			Help: "Specimens accepted by the submission workflow.",
		},
		[]string{"privacy"},
	)
	geocodeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mushroom_geocode_failures_total",
		Help: "Location lookups that failed; the specimen was saved without coordinates.",
	})
)

// SpeciesNotFoundMessage is shown when a submission names no known species.
const SpeciesNotFoundMessage = "Mushroom species not found in database. Please select a known species or contact administrators to add new species."

// Geocoder resolves a free-text location. geocode.Nominatim implements it.
type Geocoder interface {
	Geocode(ctx context.Context, location string) (model.Coordinates, error)
}

// SpecimenSubmission is the input of the add-specimen form.
type SpecimenSubmission struct {
	// Species to attach to, matched on both names ignoring case.
	Name           string `json:"name"`
	ScientificName string `json:"scientificName"`

	// NewSpecies creates the species first; Species carries its descriptive
	// fields (Name and ScientificName above win over Species.Title).
	NewSpecies bool          `json:"newSpecies"`
	Species    model.Species `json:"species"`

	ImageURL string `json:"imageUrl"`
	Location string `json:"location"`
	Date     string `json:"date"`
	Notes    string `json:"notes"`

	// Manual coordinates. Supplying one requires the other.
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`

	// Geocode asks for Location to be resolved when no manual coordinates
	// were given.
	Geocode bool `json:"geocode"`

	// Privacy is "private" (default), "public" or "shared".
	Privacy string `json:"privacy"`
}

// SubmissionResult reports where the specimen went.
type SubmissionResult struct {
	Specimen     model.Specimen `json:"specimen"`
	SpeciesID    int            `json:"speciesId"`
	SpeciesTitle string         `json:"speciesTitle"`
	Privacy      model.Privacy  `json:"privacy"`
	Message      string         `json:"message"`
}

// SubmissionService validates a specimen, resolves its species and routes
// it to the public catalogue or the user's private partition.
// It keeps no state between submissions.
type SubmissionService struct {
	catalogue *CatalogueService
	private   *PrivateSpecimenService
	geocoder  Geocoder
	ids       *IDGenerator
	logger    *slog.Logger
	now       func() time.Time
}

// NewSubmissionService creates a SubmissionService. geocoder may be nil, in
// which case location lookups are skipped.
func NewSubmissionService(
	catalogue *CatalogueService,
	private *PrivateSpecimenService,
	geocoder Geocoder,
	logger *slog.Logger,
) *SubmissionService {
	return &SubmissionService{
		catalogue: catalogue,
		private:   private,
		geocoder:  geocoder,
		ids:       NewIDGenerator(time.Now),
		logger:    logger,
		now:       time.Now,
	}
}

// Submit runs the add-specimen workflow. Validation and authorization
// failures return before anything is written.
func (s *SubmissionService) Submit(ctx context.Context, in SpecimenSubmission) (*SubmissionResult, error) {
	// === VALIDATION ===
	in.Name = strings.TrimSpace(in.Name)
	in.ScientificName = strings.TrimSpace(in.ScientificName)
	in.Location = strings.TrimSpace(in.Location)
	in.Date = strings.TrimSpace(in.Date)
	in.Notes = strings.TrimSpace(in.Notes)
	in.ImageURL = strings.TrimSpace(in.ImageURL)

	if in.Name == "" || in.Location == "" || in.Date == "" {
		return nil, apperror.ValidationFailed("", "Please fill in all required fields (Name, Location, and Date).")
	}
	coords, manual, err := parseCoordinates(in.Latitude, in.Longitude)
	if err != nil {
		return nil, err
	}
	privacy, ok := model.ParsePrivacy(in.Privacy)
	if !ok {
		return nil, apperror.ValidationFailed("privacy", "privacy must be private or public")
	}

	session, loggedIn := auth.SessionFromContext(ctx)
	if !loggedIn {
		switch {
		case in.NewSpecies:
			return nil, apperror.NotAuthenticated("add new species")
		case privacy == model.Private:
			return nil, apperror.NotAuthenticated("save private specimens")
		}
	}

	// === RESOLVE SPECIES ===
	var species *model.Species
	if in.NewSpecies {
		data := in.Species
		data.Title = in.Name
		data.Name = in.Name
		data.ScientificName = in.ScientificName
		species, err = s.catalogue.AddSpecies(ctx, data)
	} else {
		species, err = s.catalogue.FindByName(ctx, in.Name, in.ScientificName)
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, &apperror.AppError{Err: apperror.ErrNotFound, Message: SpeciesNotFoundMessage, Field: "name"}
		}
	}
	if err != nil {
		return nil, err
	}

	// === GEOLOCATION ===
	hasCoords := manual
	if !manual && in.Geocode && s.geocoder != nil {
		c, err := s.geocoder.Geocode(ctx, in.Location)
		if err != nil {
			geocodeFailures.Inc()
			s.logger.Warn("geocoding failed, saving specimen without coordinates",
				slog.String("location", in.Location),
				slog.String("error", err.Error()),
			)
		} else {
			coords, hasCoords = c, true
		}
	}

	// === BUILD AND ROUTE ===
	addedBy := model.Anonymous
	if loggedIn {
		addedBy = session.Username
	}
	specimen := model.Specimen{
		ID:         s.ids.Next(),
		MushroomID: species.ID,
		ImageURL:   in.ImageURL,
		Location:   in.Location,
		Date:       in.Date,
		FindDate:   in.Date,
		Notes:      in.Notes,
		AddedBy:    addedBy,
		DateAdded:  s.now().UTC(),
		Privacy:    privacy,
	}
	if hasCoords {
		specimen.Latitude = strconv.FormatFloat(coords.Lat, 'f', -1, 64)
		specimen.Longitude = strconv.FormatFloat(coords.Lng, 'f', -1, 64)
		specimen.HasGeolocation = true
	}

	if privacy == model.Private {
		err = s.private.AppendSpecimen(ctx, species.ID, specimen)
	} else {
		err = s.catalogue.AppendSpecimen(ctx, species.ID, specimen)
	}
	if err != nil {
		return nil, err
	}

	specimensSubmitted.WithLabelValues(string(privacy)).Inc()
	s.logger.Info("specimen submitted",
		slog.Int64("id", specimen.ID),
		slog.Int("speciesId", species.ID),
		slog.String("privacy", string(privacy)),
		slog.String("addedBy", addedBy),
		slog.Bool("geolocated", specimen.HasGeolocation),
	)

	return &SubmissionResult{
		Specimen:     specimen,
		SpeciesID:    species.ID,
		SpeciesTitle: species.Title,
		Privacy:      privacy,
		Message:      successMessage(privacy, species.Title),
	}, nil
}

func successMessage(p model.Privacy, title string) string {
	visibility := "This specimen is now visible to all users."
	if p == model.Private {
		visibility = "Only you can see this specimen."
	}
	return fmt.Sprintf("%s specimen added successfully to %s! %s", p, title, visibility)
}

// parseCoordinates validates manually entered coordinates. Both empty means
// none were given; one without the other is an error.
func parseCoordinates(latStr, lngStr string) (model.Coordinates, bool, error) {
	latStr, lngStr = strings.TrimSpace(latStr), strings.TrimSpace(lngStr)
	if latStr == "" && lngStr == "" {
		return model.Coordinates{}, false, nil
	}
	if latStr == "" || lngStr == "" {
		return model.Coordinates{}, false, apperror.ValidationFailed("latitude", "Please enter both latitude and longitude.")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil || !(lat >= -90 && lat <= 90) {
		return model.Coordinates{}, false, apperror.ValidationFailed("latitude", "Latitude must be a number between -90 and 90.")
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil || !(lng >= -180 && lng <= 180) {
		return model.Coordinates{}, false, apperror.ValidationFailed("longitude", "Longitude must be a number between -180 and 180.")
	}
	return model.Coordinates{Lat: lat, Lng: lng}, true, nil
}

// IDGenerator hands out specimen IDs derived from the clock in
// milliseconds. Two calls in the same millisecond still get distinct,
// increasing IDs.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewIDGenerator(now func() time.Time) *IDGenerator {
	return &IDGenerator{now: now}
}

func (g *IDGenerator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}
