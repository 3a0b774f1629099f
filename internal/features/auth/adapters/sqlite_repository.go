package adapters

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"microshop/internal/core/database"
	"microshop/internal/features/auth/domain"

	"github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteUserRepository implements ports.UserRepository on SQLite.
type SQLiteUserRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteUserRepository creates the users table if needed and returns the repository.
func NewSQLiteUserRepository(ctx context.Context, db *sql.DB) (*SQLiteUserRepository, error) {
	if err := database.ApplySchema(ctx, db, schemaSQL); err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}
	return &SQLiteUserRepository{db: db, now: time.Now}, nil
}

// Create inserts the user and fills in its id and creation time.
func (r *SQLiteUserRepository) Create(ctx context.Context, u *domain.User) error {
	createdAt := r.now().UTC()

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO users (username, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)
	`, u.Username, u.Email, u.PasswordHash, createdAt)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return domain.ErrUserExists
		}
		return fmt.Errorf("create user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	u.ID = id
	u.CreatedAt = createdAt
	return nil
}

// FindByUsername returns the user with the given username.
func (r *SQLiteUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	err := r.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, created_at FROM users WHERE username = ?
	`, username).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user %q: %w", username, err)
	}
	return &u, nil
}

// List returns every user in registration order. Hashes are not read.
func (r *SQLiteUserRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, username, email, created_at FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return users, nil
}

// Seed registers the demo accounts when the table is empty.
func (r *SQLiteUserRepository) Seed(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("seed users: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	for i, reg := range sampleUsers {
		u, err := domain.NewUser(reg, bcrypt.DefaultCost)
		if err != nil {
			return i, fmt.Errorf("seed users: %w", err)
		}
		if err := r.Create(ctx, u); err != nil {
			return i, fmt.Errorf("seed users: %w", err)
		}
	}
	return len(sampleUsers), nil
}

var sampleUsers = []domain.Registration{
	{Username: "admin", Email: "admin@example.com", Password: "admin123"},
	{Username: "user1", Email: "user1@example.com", Password: "password123"},
	{Username: "john", Email: "john@example.com", Password: "john123"},
}
