package repo

import (
	"context"
	"database/sql"

	"github.com/inkpress/blog-api/internal/models"
)

// ==========================
// FeedbackRepo
// ==========================
// Append-only side channels: visitor feedback and newsletter subscriptions.
type FeedbackRepo struct {
	DB *sql.DB
}

func NewFeedbackRepo(db *sql.DB) *FeedbackRepo {
	return &FeedbackRepo{DB: db}
}

// ==========================
// Add Feedback
// ==========================
func (r *FeedbackRepo) Add(ctx context.Context, name, email, feedback string) (*models.Feedback, error) {
	query := `
		INSERT INTO feedback (name, email, feedback)
		VALUES ($1, $2, $3)
		RETURNING id, name, email, feedback, created_at
	`

	f := &models.Feedback{}

	err := r.DB.QueryRowContext(ctx, query, name, email, feedback).
		Scan(&f.ID, &f.Name, &f.Email, &f.Feedback, &f.CreatedAt)

	if err != nil {
		return nil, err
	}

	return f, nil
}

// ==========================
// Add Subscriber
// ==========================
func (r *FeedbackRepo) AddSubscriber(ctx context.Context, email string) (*models.Subscriber, error) {
	query := `
		INSERT INTO subscribers (email)
		VALUES ($1)
		RETURNING id, email, created_at
	`

	s := &models.Subscriber{}

	err := r.DB.QueryRowContext(ctx, query, email).
		Scan(&s.ID, &s.Email, &s.CreatedAt)

	if err != nil {
		return nil, err
	}

	return s, nil
}
