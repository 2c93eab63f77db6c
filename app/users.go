package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"mediavault/ports"
)

// User service errors surfaced to the HTTP boundary.
var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidEmail       = errors.New("invalid email address")
)

// UserService manages account registration and credential checks.
type UserService struct {
	users  ports.UserStore
	hasher ports.Hasher
	clock  ports.Clock
	idgen  ports.IDGenerator
	logger zerolog.Logger
}

// NewUserService creates the user service.
func NewUserService(users ports.UserStore, hasher ports.Hasher, clock ports.Clock, idgen ports.IDGenerator, logger zerolog.Logger) *UserService {
	return &UserService{
		users:  users,
		hasher: hasher,
		clock:  clock,
		idgen:  idgen,
		logger: logger.With().Str("service", "users").Logger(),
	}
}

// Register creates a new account with a hashed password.
func (s *UserService) Register(ctx context.Context, email, password, name string) (ports.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return ports.User{}, ErrInvalidEmail
	}
	if len(password) < 8 {
		return ports.User{}, ErrWeakPassword
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return ports.User{}, ErrEmailTaken
	} else if !errors.Is(err, ports.ErrNotFound) {
		return ports.User{}, fmt.Errorf("check email: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return ports.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.clock.Now().UTC()
	u := ports.User{
		ID:           s.idgen.New(),
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(name),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return ports.User{}, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info().Str("user_id", u.ID).Msg("user registered")
	return u, nil
}

// Authenticate verifies credentials and returns the account.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (ports.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return ports.User{}, ErrInvalidCredentials
		}
		return ports.User{}, fmt.Errorf("get user: %w", err)
	}
	if !s.hasher.Verify(u.PasswordHash, password) {
		return ports.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Get returns an account by ID.
func (s *UserService) Get(ctx context.Context, id string) (ports.User, error) {
	u, err := s.users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return ports.User{}, ErrUserNotFound
		}
		return ports.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetByEmail returns an account by email address.
func (s *UserService) GetByEmail(ctx context.Context, email string) (ports.User, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return ports.User{}, ErrUserNotFound
		}
		return ports.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}
