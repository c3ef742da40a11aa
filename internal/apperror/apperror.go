package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("Validation Error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized returns an AppError for a missing or rejected identity.
// HTTP handlers map this to 401 Unauthorized.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// The constructors below give the user-facing messages of the catalogue.
// They wrap the generic sentinels so callers can still branch with errors.Is.

// DuplicateUsername is returned by registration when the name is taken.
func DuplicateUsername(username string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: "Username already exists. Please choose a different username.",
		Field:   "username",
	}
}

// InvalidCredentials is returned when no user matches the username/password pair.
func InvalidCredentials() *AppError {
	return Unauthorized("Invalid username or password.")
}

// NotAuthenticated is returned when an operation needs a logged-in user.
func NotAuthenticated(action string) *AppError {
	return Unauthorized(fmt.Sprintf("You must be logged in to %s.", action))
}

// SpeciesNotFound is returned when a species ID does not exist in the catalogue.
func SpeciesNotFound(id int) *AppError {
	return NotFound("species", fmt.Sprint(id))
}

// SpeciesNameNotFound is returned when no species has the given common name.
func SpeciesNameNotFound(title string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("species %q not found", title),
		Field:   "name",
	}
}

// DuplicateSpecies is returned when a species with the same common and
// scientific name is already catalogued.
func DuplicateSpecies(title, scientificName string) *AppError {
	msg := fmt.Sprintf("species %q is already in the catalogue", title)
	if scientificName != "" {
		msg = fmt.Sprintf("species %q (%s) is already in the catalogue", title, scientificName)
	}
	return &AppError{
		Err:     ErrConflict,
		Message: msg,
		Field:   "name",
	}
}
