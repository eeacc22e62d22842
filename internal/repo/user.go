package repo

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/inkpress/blog-api/internal/models"
	"github.com/lib/pq"
)

// ==========================
// UserRepo
// ==========================
type UserRepo struct {
	DB *sql.DB
}

// ==========================
// Constructor
// ==========================
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

// ==========================
// Create User
// ==========================
// The email is normalized to lower case before insertion so uniqueness is
// case-insensitive. A unique violation maps to ErrDuplicateEmail.
func (r *UserRepo) Create(ctx context.Context, name, email, passwordHash, role string) (*models.User, error) {
	query := `
		INSERT INTO users (name, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, email, role, created_at
	`

	user := &models.User{}

	err := r.DB.QueryRowContext(ctx, query, name, strings.ToLower(email), passwordHash, role).
		Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	return user, nil
}

// ==========================
// Get By ID
// ==========================
func (r *UserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `
		SELECT id, name, email, password_hash, role, created_at
		FROM users
		WHERE id = $1
	`

	user := &models.User{}

	err := r.DB.QueryRowContext(ctx, query, id).
		Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

// ==========================
// Get By Email
// ==========================
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, name, email, password_hash, role, created_at
		FROM users
		WHERE email = $1
	`

	user := &models.User{}

	err := r.DB.QueryRowContext(ctx, query, strings.ToLower(email)).
		Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

// ==========================
// Set Role
// ==========================
// SetRole changes a user's role. This is only reachable through the
// privileged CLI path, never from registration input.
func (r *UserRepo) SetRole(ctx context.Context, id int, role string) (*models.User, error) {
	query := `
		UPDATE users
		SET role = $1
		WHERE id = $2
		RETURNING id, name, email, role, created_at
	`

	user := &models.User{}

	err := r.DB.QueryRowContext(ctx, query, role, id).
		Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}
