// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered user account.
//
// Usernames are unique ignoring case: "Demo" and "demo" are the same account.
// The original spelling is kept for display and for the AddedBy field of the
// user's specimens.
//
// Only the bcrypt hash of the password is kept (see internal/auth/password.go).
type User struct {
	Username       string    `json:"username"`
	PasswordHash   string    `json:"passwordHash"`
	Email          string    `json:"email"`
	RegisteredDate time.Time `json:"registeredDate"`
}

// Session identifies the currently authenticated user.
//
// ID is the key of the session record in the session-scope store; Token is
// the signed value handed to the client (cookie or bearer header). A session
// lives until logout, until the session store forgets it, or until the token
// expires, whichever comes first.
type Session struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	LoginTime time.Time `json:"loginTime"`
}
