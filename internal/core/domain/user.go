package domain

import (
	"strings"
	"time"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// LoginSecurity tracks consecutive failed logins and the lockout state.
// Counters are only ever mutated inside a store update, never read-modify-
// written across two calls.
type LoginSecurity struct {
	FailedAttempts int        `json:"failedAttempts"`
	LockedUntil    *time.Time `json:"lockedUntil,omitempty"`
	LastFailedAt   *time.Time `json:"lastFailedAt,omitempty"`
}

// LockedAt reports whether the account is locked at the given instant.
func (s LoginSecurity) LockedAt(now time.Time) bool {
	return s.LockedUntil != nil && s.LockedUntil.After(now)
}

// User models a registered account as persisted in the document store.
// Raw refresh tokens are never stored, only their digests.
type User struct {
	ID                 string        `json:"id"`
	Email              string        `json:"email"`
	Name               string        `json:"name"`
	Role               string        `json:"role"`
	PasswordHash       string        `json:"passwordHash"`
	RefreshTokenHashes []string      `json:"refreshTokenHashes"`
	LoginSecurity      LoginSecurity `json:"loginSecurity"`
	CreatedAt          time.Time     `json:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt"`
}

// HasRefreshTokenHash reports whether hash is currently a valid session digest.
func (u *User) HasRefreshTokenHash(hash string) bool {
	for _, h := range u.RefreshTokenHashes {
		if h == hash {
			return true
		}
	}
	return false
}

// PublicUser is the sanitized projection returned by the API: no password
// hash, no token digests, no lockout bookkeeping.
type PublicUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Public returns the sanitized projection of the user.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// NormalizeEmail lower-cases and trims an address so lookups and the
// uniqueness check agree on a single canonical form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// LockoutPolicy governs progressive account lockout on failed logins.
type LockoutPolicy struct {
	MaxAttempts   int
	LockoutWindow time.Duration
}
