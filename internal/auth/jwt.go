// Package auth provides password hashing, session tokens and the HTTP
// middleware that puts the current session into the request context.
//
// SESSION FLOW OVERVIEW:
// 1. User posts username + password to /api/auth/login
// 2. AuthService checks the password against the stored bcrypt hash
// 3. AuthService creates a Session record (ID = xid) in the session store
//    and asks TokenService for a signed token naming that session
// 4. The token goes back as an HttpOnly cookie (and in the JSON body for CLI use)
// 5. On later requests, middleware validates the token, loads the Session
//    record and stores it in the request context
//
// WHY A SIGNED TOKEN AND A STORED RECORD?
// The signature proves the token was issued by us and has not been edited.
// The stored record is what makes logout work: deleting it ends the session
// immediately, even though the token itself is still validly signed.
//
// JWT STRUCTURE (three base64-encoded parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: algorithm + token type → {"alg":"HS256","typ":"JWT"}
//	- Payload: claims → {"sub":"demo","jti":"<session id>","exp":1234567890}
//	- Signature: HMAC-SHA256(header+"."+payload, secretKey)
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "mushroom-tracker"

// DefaultSessionLifetime bounds how long a session token is accepted.
const DefaultSessionLifetime = 12 * time.Hour

// TokenService handles session token creation and validation.
type TokenService struct {
	secret   []byte
	lifetime time.Duration
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: MUSHROOM_SESSION_SECRET=$(openssl rand -hex 32)
//
// A non-positive lifetime falls back to DefaultSessionLifetime.
func NewTokenService(secret string, lifetime time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: session secret must be at least 16 characters")
	}
	if lifetime <= 0 {
		lifetime = DefaultSessionLifetime
	}
	return &TokenService{secret: []byte(secret), lifetime: lifetime}, nil
}

// Claims identifies the session a token belongs to.
// Subject holds the username and ID (jti) the session record key.
type Claims struct {
	jwt.RegisteredClaims
}

// SessionID returns the session record key carried by the token.
func (c *Claims) SessionID() string { return c.ID }

// Username returns the user the session was issued to.
func (c *Claims) Username() string { return c.Subject }

// Generate creates and signs a token for the given session.
func (s *TokenService) Generate(sessionID, username string) (string, error) {
	return s.GenerateWithDuration(sessionID, username, s.lifetime)
}

// GenerateWithDuration creates a token with a custom expiry duration.
// Used in tests to produce already-expired tokens.
func (s *TokenService) GenerateWithDuration(sessionID, username string, d time.Duration) (string, error) {
	if sessionID == "" || username == "" {
		return "", errors.New("auth: session ID and username are required")
	}
	now := time.Now()

	c := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	// jwt.NewWithClaims creates an unsigned token with the given algorithm.
	// SignedString(key) signs it and returns the complete JWT string.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a token string and returns its claims.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid (wasn't tampered with)
//   - Token is not expired (ExpiresAt is in the future)
//   - Issuer matches "mushroom-tracker"
//   - Algorithm is HS256 (prevents algorithm confusion attacks)
func (s *TokenService) Validate(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("auth: token expired")
		}
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("auth: invalid token claims")
	}
	if c.ID == "" || c.Subject == "" {
		return nil, fmt.Errorf("auth: token has no session")
	}

	return c, nil
}
