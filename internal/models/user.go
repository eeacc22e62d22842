package models

import "time"

// RoleUser is the default role assigned at registration.
const RoleUser = "user"

// RoleAdmin can approve posts and read the moderation queue.
const RoleAdmin = "admin"

type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
