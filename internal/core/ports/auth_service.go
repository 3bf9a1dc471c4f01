package ports

import (
	"context"

	"github.com/palettekit/palette-api/internal/core/domain"
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

// AuthResult is the outcome of every transition that establishes a session.
type AuthResult struct {
	User   domain.PublicUser `json:"user"`
	Tokens domain.TokenPair  `json:"tokens"`
}

// AuthService drives the session lineage state machine:
// anonymous → authenticated → (rotated)* → revoked.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)
	Logout(ctx context.Context, refreshToken string) error
	LogoutAll(ctx context.Context, userID string) error
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) (*AuthResult, error)
	GetProfile(ctx context.Context, userID string) (*domain.PublicUser, error)
}
