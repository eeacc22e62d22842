package repo

import (
	"context"
	"database/sql"

	"github.com/inkpress/blog-api/internal/models"
)

// ModerationRepo persists moderation log entries.
type ModerationRepo struct {
	db *sql.DB
}

// NewModerationRepo returns a new ModerationRepo.
func NewModerationRepo(db *sql.DB) *ModerationRepo {
	return &ModerationRepo{db: db}
}

// Log records a moderation entry. action is create|delete|approve.
func (r *ModerationRepo) Log(ctx context.Context, userID int, action string, postID int, details string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO moderation_log (user_id, action, post_id, details) VALUES ($1, $2, $3, $4)`,
		userID, action, postID, details,
	)
	return err
}

// List returns recent moderation entries, newest first.
func (r *ModerationRepo) List(ctx context.Context, limit, offset int) ([]models.ModerationEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, action, post_id, COALESCE(details,''), created_at FROM moderation_log ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.ModerationEntry
	for rows.Next() {
		var e models.ModerationEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.PostID, &e.Details, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
