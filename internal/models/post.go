package models

import "time"

// MaxTitleLength mirrors the posts.title column constraint.
const MaxTitleLength = 100

type Post struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	// Image is an optional URL reference; empty when the post has no image.
	Image    string `json:"image,omitempty"`
	AuthorID int    `json:"author"`
	// AuthorName is denormalized at creation so listings need no join.
	AuthorName string    `json:"authorName"`
	Approved   bool      `json:"approved"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// VisibleTo reports whether the post may be read by the given user.
// Approved posts are public; pending posts are visible only to their author
// and to admins. u may be nil for anonymous readers.
func (p *Post) VisibleTo(u *User) bool {
	if p.Approved {
		return true
	}
	if u == nil {
		return false
	}
	return u.ID == p.AuthorID || u.IsAdmin()
}
