package domain

// AccessTokenClaims is the decoded payload of a verified access token.
type AccessTokenClaims struct {
	UserID string
	Email  string
	Name   string
	Role   string
}

// RefreshTokenClaims is the decoded payload of a verified refresh token.
// TokenID makes every issued token unique so two logins in the same second
// never share a stored digest.
type RefreshTokenClaims struct {
	UserID  string
	TokenID string
}

// TokenPair is the credential set returned by every successful
// authentication transition.
type TokenPair struct {
	TokenType    string `json:"tokenType"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
