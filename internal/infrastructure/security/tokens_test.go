package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIssuer() *TokenIssuer {
	return NewTokenIssuer("access-secret", "refresh-secret", time.Minute, time.Hour)
}

func TestTokenIssuer_AccessTokenRoundTrip(t *testing.T) {
	issuer := newTestIssuer()

	token, err := issuer.CreateAccessToken("u1", "a@example.com", "Alice", "admin")
	require.NoError(t, err)

	claims, err := issuer.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.Equal(t, "Alice", claims.Name)
	assert.Equal(t, "admin", claims.Role)
}

func TestTokenIssuer_RefreshTokenRoundTrip(t *testing.T) {
	issuer := newTestIssuer()

	token, err := issuer.CreateRefreshToken("u1", "session-1")
	require.NoError(t, err)

	claims, err := issuer.VerifyRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "session-1", claims.TokenID)
}

// The two token kinds must not be interchangeable: each is signed with its
// own secret.
func TestTokenIssuer_KindsUseDistinctSecrets(t *testing.T) {
	issuer := newTestIssuer()

	access, err := issuer.CreateAccessToken("u1", "", "", "user")
	require.NoError(t, err)
	_, err = issuer.VerifyRefreshToken(access)
	assert.Error(t, err)

	refresh, err := issuer.CreateRefreshToken("u1", "session-1")
	require.NoError(t, err)
	_, err = issuer.VerifyAccessToken(refresh)
	assert.Error(t, err)
}

func TestTokenIssuer_ExpiredTokenRejected(t *testing.T) {
	issuer := NewTokenIssuer("access-secret", "refresh-secret", time.Millisecond, time.Millisecond)

	token, err := issuer.CreateAccessToken("u1", "", "", "user")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	_, err = issuer.VerifyAccessToken(token)
	assert.Error(t, err)
}

func TestTokenIssuer_ForeignSignatureRejected(t *testing.T) {
	issuer := newTestIssuer()
	other := NewTokenIssuer("other-access", "other-refresh", time.Minute, time.Hour)

	token, err := other.CreateAccessToken("u1", "", "", "user")
	require.NoError(t, err)

	_, err = issuer.VerifyAccessToken(token)
	assert.Error(t, err)
}

func TestHashRefreshToken_DeterministicDigest(t *testing.T) {
	issuer := newTestIssuer()

	h1 := issuer.HashRefreshToken("token-a")
	h2 := issuer.HashRefreshToken("token-a")
	h3 := issuer.HashRefreshToken("token-b")

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64)
	assert.NotContains(t, h1, "token-a")
}
