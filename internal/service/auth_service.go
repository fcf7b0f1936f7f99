package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/task-service/internal/auth"
	"github.com/spec-kit/task-service/internal/config"
	"github.com/spec-kit/task-service/internal/domain"
	"github.com/spec-kit/task-service/internal/events"
	"github.com/spec-kit/task-service/internal/repository"
	apperrors "github.com/spec-kit/task-service/pkg/util"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

const (
	usernameMinLen = 3
	usernameMaxLen = 50
	passwordMinLen = 8
)

// AuthService coordinates registration, login and profile lookup.
type AuthService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, users repository.UserRepository, dispatcher events.Dispatcher) *AuthService {
	return &AuthService{
		users:      users,
		dispatcher: dispatcher,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL()),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Register creates a new account. The raw password is hashed before anything
// is persisted and never leaves this function.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if details := validateRegistration(username, email, password); len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid registration payload", details)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewDuplicate("user already exists")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// constraint backstop for the race between the existence check and insert
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.NewDuplicate("user already exists")
		}
		return nil, err
	}

	s.publish(ctx, events.EventUserRegistered, user.ID, events.UserRegisteredPayload{
		Username: user.Username,
		Email:    user.Email,
	})
	return user, nil
}

// Login authenticates by email and password and issues a bearer token. Unknown
// email and wrong password produce the identical error.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, time.Time, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", time.Time{}, apperrors.NewInvalidCredentials()
		}
		return "", time.Time{}, err
	}
	if err := auth.ComparePassword(user.PasswordHash, strings.TrimSpace(password)); err != nil {
		return "", time.Time{}, apperrors.NewInvalidCredentials()
	}

	return s.tokenMgr.GenerateToken(user.ID)
}

// GetUser loads the account for an authenticated caller. Returns not-found
// when the row disappeared after the token was issued.
func (s *AuthService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}
	return user, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, userID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

func validateRegistration(username, email, password string) map[string]any {
	details := map[string]any{}
	if username == "" {
		details["username"] = "username is required"
	} else if len(username) < usernameMinLen || len(username) > usernameMaxLen {
		details["username"] = "username must be between 3 and 50 characters"
	}
	if email == "" {
		details["email"] = "email is required"
	} else if !emailPattern.MatchString(email) {
		details["email"] = "please provide a valid email"
	}
	if password == "" {
		details["password"] = "password is required"
	} else if len(password) < passwordMinLen {
		details["password"] = "password must be at least 8 characters"
	}
	return details
}
