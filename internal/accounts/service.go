// Package accounts authenticates admin users and issues the bearer tokens
// the authoring client attaches to write calls.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tdc-backend/internal/auth"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrDuplicate          = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotConfigured      = errors.New("admin auth not configured")
)

type Token struct {
	Value     string
	ExpiresAt time.Time
	User      User
}

type Service struct {
	repo    Repository
	manager *auth.Manager
	now     func() time.Time
}

func NewService(repo Repository, manager *auth.Manager) *Service {
	return &Service{repo: repo, manager: manager, now: time.Now}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login checks the password of an admin account and signs a token for it.
func (s *Service) Login(ctx context.Context, email, password string) (Token, error) {
	if s.manager == nil || len(s.manager.Secret) == 0 {
		return Token{}, ErrNotConfigured
	}
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrNotFound) {
		return Token{}, ErrInvalidCredentials
	}
	if err != nil {
		return Token{}, err
	}
	if user.Role != auth.RoleAdmin {
		return Token{}, ErrInvalidCredentials
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return Token{}, ErrInvalidCredentials
	}

	value, expires, err := s.manager.NewAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}
	return Token{Value: value, ExpiresAt: expires, User: user}, nil
}

// EnsureAdmin creates the admin account, or resets its password when the
// stored hash no longer matches. It reports whether anything changed.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return false, ErrNotConfigured
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if auth.ComparePassword(existing.PasswordHash, password) == nil {
			return false, nil
		}
		hash, err := auth.HashPassword(password)
		if err != nil {
			return false, err
		}
		if err := s.repo.UpdatePassword(ctx, existing.ID, hash); err != nil {
			return false, err
		}
		return true, nil
	case !errors.Is(err, ErrNotFound):
		return false, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, err
	}
	now := s.now().UTC()
	user := User{
		ID:           primitive.NewObjectID().Hex(),
		Email:        email,
		PasswordHash: hash,
		Role:         auth.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return false, err
	}
	return true, nil
}
