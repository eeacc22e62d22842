package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/inkpress/blog-api/internal/models"
)

// ==========================
// PostRepo
// ==========================
type PostRepo struct {
	DB *sql.DB
}

// ==========================
// Constructor
// ==========================
func NewPostRepo(db *sql.DB) *PostRepo {
	return &PostRepo{DB: db}
}

const postColumns = `id, title, content, COALESCE(image, ''), author_id, author_name, approved, created_at, updated_at`

func scanPost(row *sql.Row) (*models.Post, error) {
	p := &models.Post{}
	err := row.Scan(&p.ID, &p.Title, &p.Content, &p.Image, &p.AuthorID, &p.AuthorName, &p.Approved, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ==========================
// Create Post
// ==========================
// New posts always start unapproved; only an admin flips the flag.
func (r *PostRepo) Create(ctx context.Context, title, content, image string, authorID int, authorName string) (*models.Post, error) {
	query := `
		INSERT INTO posts (title, content, image, author_id, author_name)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5)
		RETURNING ` + postColumns

	return scanPost(r.DB.QueryRowContext(ctx, query, title, content, image, authorID, authorName))
}

// ==========================
// Get By ID
// ==========================
func (r *PostRepo) GetByID(ctx context.Context, id int) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	return scanPost(r.DB.QueryRowContext(ctx, query, id))
}

// ==========================
// List Approved (public, newest first)
// ==========================
func (r *PostRepo) ListApproved(ctx context.Context) ([]models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE approved = TRUE ORDER BY created_at DESC`
	return r.list(ctx, query)
}

// ==========================
// List By Author (all states, newest first)
// ==========================
func (r *PostRepo) ListByAuthor(ctx context.Context, authorID int) ([]models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE author_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, authorID)
}

// ==========================
// List Pending (moderation queue, newest first)
// ==========================
func (r *PostRepo) ListPending(ctx context.Context) ([]models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE approved = FALSE ORDER BY created_at DESC`
	return r.list(ctx, query)
}

// ==========================
// Count Pending
// ==========================
func (r *PostRepo) CountPending(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE approved = FALSE`).Scan(&n)
	return n, err
}

// ==========================
// Update Post (partial)
// ==========================
// Nil fields are left unchanged; updated_at always refreshes. The ownership
// check happens in the handler after GetByID, not here.
func (r *PostRepo) Update(ctx context.Context, id int, title, content, image *string) (*models.Post, error) {
	query := `
		UPDATE posts
		SET title = COALESCE($1, title),
		    content = COALESCE($2, content),
		    image = COALESCE(NULLIF($3, ''), image),
		    updated_at = now()
		WHERE id = $4
		RETURNING ` + postColumns

	return scanPost(r.DB.QueryRowContext(ctx, query, nullable(title), nullable(content), nullable(image), id))
}

// ==========================
// Delete Post
// ==========================
func (r *PostRepo) Delete(ctx context.Context, id int) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// ==========================
// Approve Post
// ==========================
// One-way transition; approving an already-approved post is a no-op update.
func (r *PostRepo) Approve(ctx context.Context, id int) (*models.Post, error) {
	query := `
		UPDATE posts
		SET approved = TRUE, updated_at = now()
		WHERE id = $1
		RETURNING ` + postColumns

	return scanPost(r.DB.QueryRowContext(ctx, query, id))
}

func (r *PostRepo) list(ctx context.Context, query string, args ...interface{}) ([]models.Post, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.Image, &p.AuthorID, &p.AuthorName, &p.Approved, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// nullable converts a *string into a value the driver can bind as NULL.
func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
