package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"Postboard/internal/core/users"
)

type postgresUserRepo struct {
	db *sql.DB
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *sql.DB) users.Repository {
	return &postgresUserRepo{db: db}
}

// Create inserts a new user into the users table
func (r *postgresUserRepo) Create(ctx context.Context, req users.CreateUserRequest) (*users.User, error) {
	query := `
		INSERT INTO users (id, email, first_name, last_name)
		VALUES ($1, $2, $3, $4)
		RETURNING id, email, first_name, last_name, created_at, updated_at`

	user := &users.User{}
	err := r.db.QueryRowContext(ctx, query, req.ID, strings.ToLower(req.Email), req.Name.FirstName, req.Name.LastName).
		Scan(&user.ID, &user.Email, &user.Name.FirstName, &user.Name.LastName, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		// Check for unique constraint violations
		if strings.Contains(err.Error(), "duplicate key") {
			if strings.Contains(err.Error(), "users_pkey") {
				return nil, users.ErrUserAlreadyExists
			}
			if strings.Contains(err.Error(), "users_email_key") {
				return nil, users.ErrEmailAlreadyTaken
			}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetByID retrieves a user by id
func (r *postgresUserRepo) GetByID(ctx context.Context, id string) (*users.User, error) {
	user := &users.User{}
	query := `SELECT id, email, first_name, last_name, created_at, updated_at FROM users WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&user.ID, &user.Email, &user.Name.FirstName, &user.Name.LastName, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, users.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

// Exists reports whether a user with the given id is registered
func (r *postgresUserRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}
