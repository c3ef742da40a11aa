package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/mushroom-tracker/internal/model"
	"github.com/sakif/mushroom-tracker/internal/service"
)

// SpeciesHandler serves the catalogue. Every read merges in the private
// specimens of the session in the request context, if any.
type SpeciesHandler struct {
	catalogue  *service.CatalogueService
	aggregator *service.Aggregator
	logger     *slog.Logger
}

// NewSpeciesHandler creates a SpeciesHandler.
func NewSpeciesHandler(catalogue *service.CatalogueService, aggregator *service.Aggregator, logger *slog.Logger) *SpeciesHandler {
	return &SpeciesHandler{catalogue: catalogue, aggregator: aggregator, logger: logger}
}

// HandleList returns every species, or the ones matching ?q=.
//
// HTTP: GET /api/species
// HTTP: GET /api/species?q=oak
//
// An empty or blank q lists the whole catalogue.
func (h *SpeciesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	var (
		views []model.SpeciesView
		err   error
	)
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		views, err = h.aggregator.SearchAll(r.Context(), q)
	} else {
		views, err = h.aggregator.GetAllWithUserData(r.Context())
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// HandleGetByID returns one species with its visible specimens.
//
// HTTP: GET /api/species/{id}
func (h *SpeciesHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	id, err := speciesID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	view, err := h.aggregator.GetSpeciesWithUserData(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleSpecimens returns the specimens of one species grouped by visibility.
// An unknown id yields three empty lists.
//
// HTTP: GET /api/species/{id}/specimens
func (h *SpeciesHandler) HandleSpecimens(w http.ResponseWriter, r *http.Request) {
	id, err := speciesID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	set, err := h.aggregator.GetSpecimensFor(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

// HandleMap returns the plottable specimens of one species and a map centre.
//
// HTTP: GET /api/species/{id}/map
func (h *SpeciesHandler) HandleMap(w http.ResponseWriter, r *http.Request) {
	id, err := speciesID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	m, err := h.aggregator.MapPoints(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// HandleCreate adds a user-contributed species to the catalogue.
//
// HTTP: POST /api/species
// Auth: Required
//
// Request body is a species record; id, specimens and provenance fields are
// assigned by the server and ignored if sent.
func (h *SpeciesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req model.Species
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	created, err := h.catalogue.AddSpecies(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("species created via API",
		slog.Int("id", created.ID),
		slog.String("title", created.Title),
	)
	writeJSON(w, http.StatusCreated, created)
}
