package security

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/palettekit/palette-api/internal/core/domain"
)

type accessClaims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type refreshClaims struct {
	TokenID string `json:"tokenId"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies access and refresh tokens. The two token
// kinds use distinct secrets: leaking the access secret must not allow
// minting refresh tokens.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenIssuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (t *TokenIssuer) CreateAccessToken(userID, email, name, role string) (string, error) {
	now := time.Now().UTC()
	claims := accessClaims{
		Email: email,
		Name:  name,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.accessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.accessSecret)
}

func (t *TokenIssuer) CreateRefreshToken(userID, tokenID string) (string, error) {
	now := time.Now().UTC()
	claims := refreshClaims{
		TokenID: tokenID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.refreshTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.refreshSecret)
}

// VerifyAccessToken fails on bad signature, expiry, or malformed structure.
func (t *TokenIssuer) VerifyAccessToken(token string) (*domain.AccessTokenClaims, error) {
	claims := &accessClaims{}
	if err := t.verify(token, claims, t.accessSecret); err != nil {
		return nil, err
	}
	return &domain.AccessTokenClaims{
		UserID: claims.Subject,
		Email:  claims.Email,
		Name:   claims.Name,
		Role:   claims.Role,
	}, nil
}

// VerifyRefreshToken fails on bad signature, expiry, or malformed structure.
func (t *TokenIssuer) VerifyRefreshToken(token string) (*domain.RefreshTokenClaims, error) {
	claims := &refreshClaims{}
	if err := t.verify(token, claims, t.refreshSecret); err != nil {
		return nil, err
	}
	return &domain.RefreshTokenClaims{
		UserID:  claims.Subject,
		TokenID: claims.TokenID,
	}, nil
}

func (t *TokenIssuer) verify(token string, claims jwt.Claims, secret []byte) error {
	parsed, err := jwt.ParseWithClaims(token, claims, func(tkn *jwt.Token) (any, error) {
		if tkn.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		return fmt.Errorf("verify token: %w", err)
	}
	if !parsed.Valid {
		return jwt.ErrTokenInvalidClaims
	}
	return nil
}

// HashRefreshToken returns the hex SHA-256 digest stored and compared in
// place of the raw token.
func (t *TokenIssuer) HashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
