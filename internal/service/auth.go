package service

// AuthService is the credential store: registration, login and sessions.
//
//	AuthHandler (HTTP) → AuthService → UserRepository    (durable: user list)
//	                                 ↘ SessionRepository (session scope)
//	                                 ↘ TokenService      (signed session tokens)
//
// The user list is one blob. Every change loads the whole list, edits it in
// memory and saves it back, so all writers go through s.mu.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/mushroom-tracker/internal/apperror"
	"github.com/sakif/mushroom-tracker/internal/auth"
	"github.com/sakif/mushroom-tracker/internal/model"
	"github.com/sakif/mushroom-tracker/internal/repository"
)

// DemoUser is an account created on first start so the catalogue can be
// tried without registering.
type DemoUser struct {
	Username string
	Password string
	Email    string
}

// DemoUsers are seeded by Initialize when no user list exists yet.
var DemoUsers = []DemoUser{
	{Username: "demo", Password: "password", Email: "demo@example.com"},
	{Username: "developer", Password: "dev", Email: "dev@example.com"},
}

var _ auth.SessionResolver = (*AuthService)(nil)

// AuthService handles registration, login and session lookup.
type AuthService struct {
	mu        sync.Mutex
	users     repository.UserRepository
	sessions  repository.SessionRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger

	seedDemo bool
	now      func() time.Time
}

// NewAuthService creates an AuthService. Demo users are seeded by default;
// see SetSeedDemoUsers.
func NewAuthService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		sessions:  sessions,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
		seedDemo:  true,
		now:       time.Now,
	}
}

// SetSeedDemoUsers controls whether Initialize creates DemoUsers.
// Call it before Initialize.
func (s *AuthService) SetSeedDemoUsers(on bool) {
	s.seedDemo = on
}

// Initialize creates the user list if it has never been saved.
// It is safe to call on every start; an existing list is left alone.
func (s *AuthService) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.loadUsersLocked(ctx)
	return err
}

// loadUsersLocked returns the user list, creating it (with the demo users
// when enabled) on first use. Callers hold s.mu.
func (s *AuthService) loadUsersLocked(ctx context.Context) ([]model.User, error) {
	users, found, err := s.users.LoadUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/auth: loading users: %w", err)
	}
	if found {
		return users, nil
	}

	users = []model.User{}
	if s.seedDemo {
		for _, d := range DemoUsers {
			hash, err := s.passwords.Hash(d.Password)
			if err != nil {
				return nil, fmt.Errorf("service/auth: hashing demo password for %s: %w", d.Username, err)
			}
			users = append(users, model.User{
				Username:       d.Username,
				PasswordHash:   hash,
				Email:          d.Email,
				RegisteredDate: s.now().UTC(),
			})
		}
	}
	if err := s.users.SaveUsers(ctx, users); err != nil {
		return nil, fmt.Errorf("service/auth: saving initial users: %w", err)
	}
	s.logger.Info("user list initialized", slog.Int("demoUsers", len(users)))
	return users, nil
}

// Register adds a new user.
//
// Usernames are compared case-insensitively: registering "Demo" when "demo"
// exists fails with apperror.ErrConflict and leaves the list untouched.
// Password strength and email format are the caller's business.
func (s *AuthService) Register(ctx context.Context, username, password, email string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsersLocked(ctx)
	if err != nil {
		return nil, err
	}
	if findUser(users, username) >= 0 {
		return nil, apperror.DuplicateUsername(username)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}

	user := model.User{
		Username:       username,
		PasswordHash:   hash,
		Email:          email,
		RegisteredDate: s.now().UTC(),
	}
	if err := s.users.SaveUsers(ctx, append(users, user)); err != nil {
		return nil, fmt.Errorf("service/auth: saving users: %w", err)
	}

	s.logger.Info("user registered", slog.String("username", username))
	return &user, nil
}

// Authenticate checks the credentials and opens a session.
//
// The username matches ignoring case; the password must match exactly.
// Any mismatch yields the same InvalidCredentials error, so callers cannot
// tell which half was wrong.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*model.Session, error) {
	s.mu.Lock()
	users, err := s.loadUsersLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	i := findUser(users, strings.TrimSpace(username))
	if i < 0 {
		return nil, apperror.InvalidCredentials()
	}
	user := users[i]
	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Warn("stored password hash is unreadable",
				slog.String("username", user.Username),
				slog.String("error", err.Error()),
			)
		}
		return nil, apperror.InvalidCredentials()
	}

	session := &model.Session{
		ID:        xid.New().String(),
		Username:  user.Username,
		Email:     user.Email,
		LoginTime: s.now().UTC(),
	}
	token, err := s.tokens.Generate(session.ID, session.Username)
	if err != nil {
		return nil, fmt.Errorf("service/auth: issuing token for %s: %w", user.Username, err)
	}
	session.Token = token

	if err := s.sessions.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("service/auth: saving session: %w", err)
	}

	s.logger.Info("user logged in", slog.String("username", user.Username))
	return session, nil
}

// CurrentSession returns the live session named by token.
//
// An invalid or expired token, or one whose session was logged out or
// forgotten, yields (nil, nil). Only storage failures are errors.
func (s *AuthService) CurrentSession(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, nil
	}
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, nil
	}

	session, err := s.sessions.GetSession(ctx, claims.SessionID())
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("service/auth: loading session: %w", err)
	}
	if !strings.EqualFold(session.Username, claims.Username()) {
		return nil, nil
	}
	return session, nil
}

// IsLoggedIn reports whether token names a live session.
func (s *AuthService) IsLoggedIn(ctx context.Context, token string) bool {
	session, err := s.CurrentSession(ctx, token)
	return err == nil && session != nil
}

// Logout ends the session named by token. Logging out twice, or with a
// token that never named a session, is not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil
	}
	if err := s.sessions.DeleteSession(ctx, claims.SessionID()); err != nil {
		return fmt.Errorf("service/auth: deleting session: %w", err)
	}
	s.logger.Info("user logged out", slog.String("username", claims.Username()))
	return nil
}

// findUser returns the index of username in users ignoring case, or -1.
func findUser(users []model.User, username string) int {
	for i := range users {
		if strings.EqualFold(users[i].Username, username) {
			return i
		}
	}
	return -1
}
