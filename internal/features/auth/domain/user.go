package domain

import (
	"fmt"
	"strings"
	"time"

	"microshop/internal/core/apperr"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrUserNotFound is returned when no user has the requested username.
	ErrUserNotFound = fmt.Errorf("user %w", apperr.ErrNotFound)
	// ErrInvalidCredentials hides whether the username or the password was wrong.
	ErrInvalidCredentials = apperr.Mark(apperr.ErrUnauthorized, "Invalid credentials")
	// ErrUserExists is returned when the username or email is already registered.
	ErrUserExists = apperr.Mark(apperr.ErrConflict, "Username or email already exists")
)

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// User is a registered account.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Credentials is a login attempt.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate reports missing fields.
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Username) == "" || c.Password == "" {
		return apperr.NewValidation("Username and password required")
	}
	return nil
}

// Registration is a sign-up request.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate reports every rule the registration breaks.
func (r Registration) Validate() error {
	if strings.TrimSpace(r.Username) == "" || strings.TrimSpace(r.Email) == "" || r.Password == "" {
		return apperr.NewValidation("All fields required")
	}
	if !strings.Contains(r.Email, "@") {
		return apperr.NewValidation("Valid email is required")
	}
	if len(r.Password) > MaxPasswordBytes {
		return apperr.NewValidation(fmt.Sprintf("Password must be at most %d bytes", MaxPasswordBytes))
	}
	return nil
}

// NewUser hashes the password of a valid registration.
func NewUser(r Registration, cost int) (*User, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	hash, err := HashPassword(r.Password, cost)
	if err != nil {
		return nil, err
	}

	return &User{
		Username:     strings.TrimSpace(r.Username),
		Email:        strings.TrimSpace(r.Email),
		PasswordHash: hash,
	}, nil
}

// HashPassword returns the bcrypt hash of plain.
func HashPassword(plain string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether plain matches the stored hash.
func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plain)) == nil
}
