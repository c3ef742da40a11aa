package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sakif/mushroom-tracker/internal/apperror"
	"github.com/sakif/mushroom-tracker/internal/auth"
	"github.com/sakif/mushroom-tracker/internal/model"
	"github.com/sakif/mushroom-tracker/internal/service"
)

// minPasswordLength is enforced by the registration form, not the service.
const minPasswordLength = 6

// AuthHandler serves registration, login, logout and "who am I".
//
// The session token is returned both as an HttpOnly cookie (browsers) and
// in the response body (the CLI sends it back as a Bearer header).
type AuthHandler struct {
	auth           *service.AuthService
	cookieLifetime time.Duration
	logger         *slog.Logger
}

// NewAuthHandler creates an AuthHandler. cookieLifetime should match the
// session token lifetime.
func NewAuthHandler(svc *service.AuthService, cookieLifetime time.Duration, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: svc, cookieLifetime: cookieLifetime, logger: logger}
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SessionResponse describes the logged-in user.
type SessionResponse struct {
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Token     string    `json:"token,omitempty"`
	LoginTime time.Time `json:"loginTime"`
}

func sessionResponse(s *model.Session, withToken bool) SessionResponse {
	resp := SessionResponse{Username: s.Username, Email: s.Email, LoginTime: s.LoginTime}
	if withToken {
		resp.Token = s.Token
	}
	return resp
}

// HandleRegister creates an account and logs it in.
//
// HTTP: POST /api/auth/register
//
// The form checks (all fields present, passwords match, minimum length)
// happen here; the service only enforces uniqueness.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	switch {
	case strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Email) == "" ||
		req.Password == "" || req.ConfirmPassword == "":
		writeError(w, apperror.ValidationFailed("", "Please fill in all required fields."))
		return
	case req.Password != req.ConfirmPassword:
		writeError(w, apperror.ValidationFailed("confirmPassword", "Passwords do not match."))
		return
	case len(req.Password) < minPasswordLength:
		writeError(w, apperror.ValidationFailed("password", "Password must be at least 6 characters long."))
		return
	}

	if _, err := h.auth.Register(r.Context(), req.Username, req.Password, req.Email); err != nil {
		writeError(w, err)
		return
	}

	session, err := h.auth.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setTokenCookie(w, session.Token)
	writeJSON(w, http.StatusCreated, sessionResponse(session, true))
}

// HandleLogin checks credentials and opens a session.
//
// HTTP: POST /api/auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		writeError(w, apperror.ValidationFailed("", "Please enter both username and password."))
		return
	}

	session, err := h.auth.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setTokenCookie(w, session.Token)
	writeJSON(w, http.StatusOK, sessionResponse(session, true))
}

// HandleLogout ends the session and clears the cookie.
//
// HTTP: POST /api/auth/logout
//
// Unlike a stateless JWT logout, deleting the session record makes the
// token useless immediately even if a client kept a copy.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), auth.TokenFromRequest(r)); err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, MessageResponse{Message: "logged out"})
}

// HandleMe returns the current session.
//
// HTTP: GET /api/auth/me
// Auth: Required (RequireSession puts the session in the context)
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeError(w, apperror.NotAuthenticated("view your profile"))
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(session, false))
}

// setTokenCookie stores the session token in an HttpOnly cookie.
// Secure should be set when serving over HTTPS.
func (h *AuthHandler) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookieLifetime.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
