package ports

import (
	"context"

	"github.com/palettekit/palette-api/internal/core/domain"
)

// NewUser carries the fields needed to create an account. Email must already
// be normalized; the repository enforces uniqueness atomically.
type NewUser struct {
	Email        string
	Name         string
	PasswordHash string
	Role         string
}

// UserRepository persists accounts and owns the refresh-token-digest and
// login-security bookkeeping. Every method is a single atomic store
// operation.
type UserRepository interface {
	Create(ctx context.Context, input NewUser) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)

	AppendRefreshTokenHash(ctx context.Context, userID, hash string) (*domain.User, error)
	RemoveRefreshTokenHash(ctx context.Context, userID, hash string) (*domain.User, error)
	ClearRefreshTokenHashes(ctx context.Context, userID string) (*domain.User, error)

	UpdatePasswordHash(ctx context.Context, userID, newHash string) (*domain.User, error)

	RegisterFailedLoginAttempt(ctx context.Context, userID string, policy domain.LockoutPolicy) (*domain.User, error)
	ClearLoginSecurityState(ctx context.Context, userID string) (*domain.User, error)
}
