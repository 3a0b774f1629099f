package service

import (
	"context"
	"errors"
	"fmt"

	"microshop/internal/features/auth/domain"
	"microshop/internal/features/auth/ports"

	"golang.org/x/crypto/bcrypt"
)

// AuthService implements ports.UserService.
type AuthService struct {
	repo   ports.UserRepository
	tokens ports.TokenIssuer
	cost   int
}

// NewAuthService creates a new AuthService hashing with bcrypt.DefaultCost.
func NewAuthService(repo ports.UserRepository, tokens ports.TokenIssuer) *AuthService {
	return &AuthService{
		repo:   repo,
		tokens: tokens,
		cost:   bcrypt.DefaultCost,
	}
}

// Login checks the credentials and issues a bearer token.
func (s *AuthService) Login(ctx context.Context, creds domain.Credentials) (*ports.Session, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByUsername(ctx, creds.Username)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("service: failed to find user: %w", err)
	}

	if !user.CheckPassword(creds.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("service: failed to issue token: %w", err)
	}

	return &ports.Session{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      *user,
	}, nil
}

// Register stores a new account with a hashed password.
func (s *AuthService) Register(ctx context.Context, r domain.Registration) (*domain.User, error) {
	user, err := domain.NewUser(r, s.cost)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("service: failed to register user: %w", err)
	}

	return user, nil
}

// ListUsers returns every account without password hashes.
func (s *AuthService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list users: %w", err)
	}

	return users, nil
}
