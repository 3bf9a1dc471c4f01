package ports

import "github.com/palettekit/palette-api/internal/core/domain"

// PasswordHasher is a slow, salted, one-way credential hash.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hashed string) bool
}

// TokenIssuer signs and verifies the two token kinds and computes the stable
// digest under which a refresh token is stored.
type TokenIssuer interface {
	CreateAccessToken(userID, email, name, role string) (string, error)
	CreateRefreshToken(userID, tokenID string) (string, error)
	VerifyAccessToken(token string) (*domain.AccessTokenClaims, error)
	VerifyRefreshToken(token string) (*domain.RefreshTokenClaims, error)
	HashRefreshToken(token string) string
}
