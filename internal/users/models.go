package users

import "time"

// User represents an account persisted in SQLite. Password material never
// leaves the package; handlers only see the exported identity fields.
type User struct {
	ID        int64
	Name      string
	Email     string
	Role      Role
	CreatedAt time.Time

	passwordSalt   string
	passwordDigest string
}

// NewUser carries the caller-supplied fields for account creation.
type NewUser struct {
	Name     string
	Email    string
	Password string
	Role     Role
}

// Session represents an issued bearer token with an absolute expiry.
type Session struct {
	Token     string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is past its expiry at the given instant.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
