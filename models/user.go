package models

import "time"

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// User is a pool participant. Demo accounts exist for product walkthroughs
// and are excluded from leaderboard aggregates.
type User struct {
	ID           int       `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Nickname     string    `json:"nickname" db:"nickname"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         UserRole  `json:"role" db:"role"`
	IsDemo       bool      `json:"is_demo" db:"is_demo"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
