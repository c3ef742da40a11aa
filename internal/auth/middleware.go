package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/sakif/mushroom-tracker/internal/model"
)

// CookieName is the cookie the session token travels in.
const CookieName = "token"

// contextKey is package-private so no other package can read or shadow
// the session stored in a request context.
type contextKey string

const sessionKey contextKey = "session"

// SessionResolver turns a raw token into the live session it names.
// A nil session with a nil error means the token no longer names one.
// service.AuthService implements it; the interface keeps this package free
// of a dependency on the service layer.
type SessionResolver interface {
	CurrentSession(ctx context.Context, token string) (*model.Session, error)
}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s *model.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFromContext returns the session attached by the middleware.
//
// Returns (nil, false) for anonymous requests.
func SessionFromContext(ctx context.Context) (*model.Session, bool) {
	s, ok := ctx.Value(sessionKey).(*model.Session)
	return s, ok && s != nil
}

// OptionalSession attaches the caller's session when a valid token is
// present and lets the request through either way.
//
// Most routes use this: anonymous visitors can browse the catalogue while
// logged-in users additionally see their private specimens.
func OptionalSession(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := TokenFromRequest(r); token != "" {
				if s, err := resolver.CurrentSession(r.Context(), token); err == nil && s != nil {
					r = r.WithContext(WithSession(r.Context(), s))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession rejects the request with 401 unless a valid session is
// present.
//
// Chi applies middlewares in a chain: req → M1 → M2 → Handler → M2 → M1 → resp
func RequireSession(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := SessionFromContext(r.Context()); ok {
				next.ServeHTTP(w, r)
				return
			}
			token := TokenFromRequest(r)
			if token == "" {
				unauthorized(w)
				return
			}
			s, err := resolver.CurrentSession(r.Context(), token)
			if err != nil || s == nil {
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}

// TokenFromRequest reads the session token from the "token" cookie, falling
// back to an "Authorization: Bearer <token>" header for non-browser clients.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	h := r.Header.Get("Authorization")
	if scheme, token, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"unauthorized","message":"valid session required"}`))
}
