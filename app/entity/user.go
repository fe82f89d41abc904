package entity

import (
	"database/sql"
	"time"
)

type User struct {
	ID                  uint64
	Email               string
	PasswordHash        string
	ResetToken          sql.NullString
	ResetTokenExpiresAt sql.NullTime
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// HasPendingReset reports whether a reset token is set and still valid at now.
func (u *User) HasPendingReset(now time.Time) bool {
	return u.ResetToken.Valid && u.ResetTokenExpiresAt.Valid && u.ResetTokenExpiresAt.Time.After(now)
}

// SessionUser is the copy of a user kept in the HTTP session after login.
// Credential and reset fields are not copied.
type SessionUser struct {
	ID        uint64
	Email     string
	CreatedAt time.Time
}

func (u *User) SessionCopy() SessionUser {
	return SessionUser{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
