package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/mushroom-tracker/internal/apperror"
	"github.com/sakif/mushroom-tracker/internal/auth"
	"github.com/sakif/mushroom-tracker/internal/service"
)

// SpecimenHandler serves specimen submission and the collection listings.
type SpecimenHandler struct {
	submission *service.SubmissionService
	aggregator *service.Aggregator
	logger     *slog.Logger
}

// NewSpecimenHandler creates a SpecimenHandler.
func NewSpecimenHandler(submission *service.SubmissionService, aggregator *service.Aggregator, logger *slog.Logger) *SpecimenHandler {
	return &SpecimenHandler{submission: submission, aggregator: aggregator, logger: logger}
}

// HandleSubmit records a new find.
//
// HTTP: POST /api/specimens
// Auth: Optional. Anonymous callers may only submit public specimens of
// existing species.
//
// Request body:
//
//	{"name": "Chanterelle", "scientificName": "Cantharellus cibarius",
//	 "location": "Oak forest", "date": "2024-05-01", "privacy": "private"}
func (h *SpecimenHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req service.SpecimenSubmission
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.submission.Submit(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// HandleList returns public and (for the caller) private specimens across
// all species, newest first.
//
// HTTP: GET /api/specimens?addedBy=demo
//
// Without addedBy every visible specimen is returned.
func (h *SpecimenHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	addedBy := strings.TrimSpace(r.URL.Query().Get("addedBy"))
	list, err := h.aggregator.GetAllUserSpecimens(r.Context(), addedBy)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleMine returns the caller's own specimens.
//
// HTTP: GET /api/specimens/mine
// Auth: Required
func (h *SpecimenHandler) HandleMine(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeError(w, apperror.NotAuthenticated("view your collection"))
		return
	}
	list, err := h.aggregator.GetAllUserSpecimens(r.Context(), session.Username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
