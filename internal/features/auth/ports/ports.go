package ports

import (
	"context"
	"time"

	"microshop/internal/features/auth/domain"
)

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      domain.User
}

// UserService defines the primary port for account operations.
type UserService interface {
	Login(ctx context.Context, creds domain.Credentials) (*Session, error)
	Register(ctx context.Context, r domain.Registration) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
}

// UserRepository defines the secondary port for account storage.
type UserRepository interface {
	// Create returns domain.ErrUserExists when the username or email is taken.
	Create(ctx context.Context, u *domain.User) error
	// FindByUsername returns domain.ErrUserNotFound when nothing matches.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

// TokenIssuer signs bearer tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID int64, username string) (string, time.Time, error)
}
