package models

import "time"

// ModerationEntry represents one moderation log row.
type ModerationEntry struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Action    string    `json:"action"` // create, delete, approve
	PostID    int       `json:"post_id"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
