package model

import (
	"time"
)

type User struct {
	ID             string     `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	HashedPassword string     `json:"-"` // Not exposed
	IsAdmin        bool       `json:"isAdmin"`
	LoginAttempts  int        `json:"-"`
	LockUntil      *time.Time `json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Locked reports whether the account is under an active login lockout.
func (u *User) Locked(now time.Time) bool {
	return u.LockUntil != nil && u.LockUntil.After(now)
}
