// GO TESTING BASICS:
// 1. Test files MUST end in _test.go; Go's tooling auto-discovers them
// 2. Test functions MUST start with "Test" and take *testing.T as the only param
// 3. Same package as the code being tested (so we can access unexported stuff)
// 4. Run with: go test ./internal/apperror/ -v  (-v = verbose, shows each test name)
package apperror

import (
	"errors"
	"testing"
)

// TABLE-DRIVEN TESTS:
// This is Go's idiomatic pattern for testing multiple cases.
// Instead of writing 5 separate test functions, we define a slice of test cases
// and loop over them. Benefits:
// - Adding a new test case = adding one struct to the slice
// - Every case gets a name (shows up in test output)
// - DRY: the assertion logic is written once

func TestErrorsIs(t *testing.T) {
	// Each test case checks that errors.Is() correctly identifies the error type
	tests := []struct {
		name     string // Descriptive name for test output
		err      error  // The error to test
		target   error  // What we expect it to match
		wantMatch bool  // Should errors.Is() return true?
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("species", "7"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("location", "location is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("species", "7"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("species", "7"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "ValidationFailed does NOT match ErrNotFound",
			err:       ValidationFailed("name", "too long"),
			target:    ErrNotFound,
			wantMatch: false,
		},
		{
			name:      "DuplicateUsername wraps ErrConflict",
			err:       DuplicateUsername("demo"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "InvalidCredentials wraps ErrUnauthorized",
			err:       InvalidCredentials(),
			target:    ErrUnauthorized,
			wantMatch: true,
		},
		{
			name:      "NotAuthenticated wraps ErrUnauthorized",
			err:       NotAuthenticated("add species"),
			target:    ErrUnauthorized,
			wantMatch: true,
		},
		{
			name:      "SpeciesNotFound wraps ErrNotFound",
			err:       SpeciesNotFound(42),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "NotAuthenticated does NOT match ErrForbidden",
			err:       NotAuthenticated("add species"),
			target:    ErrForbidden,
			wantMatch: false,
		},
	}

	// t.Run() creates a sub-test for each case.
	// Output looks like: TestErrorsIs/NotFound_wraps_ErrNotFound
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				// t.Errorf marks the test as failed but continues running other tests
				// (vs t.Fatalf which stops immediately)
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("species", "7"),
			wantMessage: "species not found with id 7",
		},
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("location", "location is required"),
			wantMessage: "location is required",
		},
		{
			name:        "Conflict message includes resource and id",
			err:         Conflict("species", "7"),
			wantMessage: "species conflict with id 7",
		},
		{
			name:        "SpeciesNotFound formats the numeric id",
			err:         SpeciesNotFound(12),
			wantMessage: "species not found with id 12",
		},
		{
			name:        "SpeciesNameNotFound quotes the name",
			err:         SpeciesNameNotFound("Foo"),
			wantMessage: `species "Foo" not found`,
		},
		{
			name:        "DuplicateSpecies names both names",
			err:         DuplicateSpecies("Chanterelle", "Cantharellus cibarius"),
			wantMessage: `species "Chanterelle" (Cantharellus cibarius) is already in the catalogue`,
		},
		{
			name:        "InvalidCredentials uses the login form message",
			err:         InvalidCredentials(),
			wantMessage: "Invalid username or password.",
		},
		{
			name:        "NotAuthenticated names the action",
			err:         NotAuthenticated("add species"),
			wantMessage: "You must be logged in to add species.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// .Error() should return the human-readable message
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	// Verify that Unwrap() returns the underlying sentinel error.
	// This is what makes errors.Is() work: it "unwraps" the chain.
	err := NotFound("species", "7")
	unwrapped := err.Unwrap()

	if unwrapped != ErrNotFound {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, ErrNotFound)
	}
}

func TestValidationFailedField(t *testing.T) {
	// Verify that the Field is set correctly for validation errors.
	// This lets handlers tell the frontend WHICH field was invalid.
	err := ValidationFailed("latitude", "latitude must be between -90 and 90")

	if err.Field != "latitude" {
		t.Errorf("Field = %q, want %q", err.Field, "latitude")
	}
}

func TestDuplicateUsernameField(t *testing.T) {
	err := DuplicateUsername("demo")

	if err.Field != "username" {
		t.Errorf("Field = %q, want %q", err.Field, "username")
	}
}
