package service

import (
	"context"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/palettekit/palette-api/internal/core/domain"
	"github.com/palettekit/palette-api/internal/core/ports"
)

const maxNameLength = 80

// AuthService drives registration, login, refresh rotation, logout, password
// change and profile retrieval. All persistence goes through the user
// repository; this service never touches the store directly.
type AuthService struct {
	users               ports.UserRepository
	hasher              ports.PasswordHasher
	tokens              ports.TokenIssuer
	logger              zerolog.Logger
	bootstrapAdminEmail string
	lockout             domain.LockoutPolicy
}

func NewAuthService(
	users ports.UserRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	logger zerolog.Logger,
	bootstrapAdminEmail string,
	lockout domain.LockoutPolicy,
) *AuthService {
	return &AuthService{
		users:               users,
		hasher:              hasher,
		tokens:              tokens,
		logger:              logger,
		bootstrapAdminEmail: domain.NormalizeEmail(bootstrapAdminEmail),
		lockout:             lockout,
	}
}

// Register creates an account and establishes its first session. The email
// uniqueness check happens atomically inside the repository's create, so a
// concurrent duplicate registration cannot slip past it.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*ports.AuthResult, error) {
	email := domain.NormalizeEmail(input.Email)
	name := domain.SanitizeText(input.Name, maxNameLength)

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}

	role := domain.RoleUser
	if s.bootstrapAdminEmail != "" && email == s.bootstrapAdminEmail {
		role = domain.RoleAdmin
	}

	user, err := s.users.Create(ctx, ports.NewUser{
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailExists) {
			return nil, domain.NewEmailAlreadyExistsError()
		}
		return nil, err
	}

	s.logger.Info().Str("userId", user.ID).Msg("user registered")
	return s.issueTokens(ctx, user)
}

// Login verifies credentials. The lockout state is checked before the
// password comparison so a locked account never reveals whether the password
// was right.
func (s *AuthService) Login(ctx context.Context, input ports.LoginInput) (*ports.AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.NewInvalidCredentialsError()
		}
		return nil, err
	}

	now := time.Now().UTC()
	if user.LoginSecurity.LockedAt(now) {
		return nil, lockedError(user.LoginSecurity.LockedUntil, now)
	}

	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		failed, recErr := s.users.RegisterFailedLoginAttempt(ctx, user.ID, s.lockout)
		if recErr != nil {
			return nil, recErr
		}
		now = time.Now().UTC()
		if failed.LoginSecurity.LockedAt(now) {
			s.logger.Warn().Str("userId", user.ID).Msg("account locked after repeated failures")
			return nil, lockedError(failed.LoginSecurity.LockedUntil, now)
		}
		return nil, domain.NewInvalidCredentialsError()
	}

	if user.LoginSecurity.FailedAttempts > 0 || user.LoginSecurity.LockedUntil != nil || user.LoginSecurity.LastFailedAt != nil {
		if _, err := s.users.ClearLoginSecurityState(ctx, user.ID); err != nil {
			return nil, err
		}
	}

	s.logger.Info().Str("userId", user.ID).Msg("user logged in")
	return s.issueTokens(ctx, user)
}

// Refresh exchanges a refresh token for a new pair. A token that verifies
// cryptographically but whose digest is no longer stored has been rotated or
// revoked already: that is a reuse event, and every outstanding session of
// the user is revoked in response.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*ports.AuthResult, error) {
	if refreshToken == "" {
		return nil, domain.NewRefreshTokenRequiredError()
	}

	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, domain.NewInvalidRefreshTokenError().WithCause(err)
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.NewUserNotFoundError(http.StatusUnauthorized)
		}
		return nil, err
	}

	hash := s.tokens.HashRefreshToken(refreshToken)
	if !user.HasRefreshTokenHash(hash) {
		if _, revokeErr := s.users.ClearRefreshTokenHashes(ctx, user.ID); revokeErr != nil {
			return nil, revokeErr
		}
		s.logger.Warn().Str("userId", user.ID).Msg("refresh token reuse detected, all sessions revoked")
		return nil, domain.NewRefreshTokenReuseError()
	}

	// Rotation: one refresh token is usable exactly once.
	if _, err := s.users.RemoveRefreshTokenHash(ctx, user.ID, hash); err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, user)
}

// Logout drops the single session matching the token. It is best-effort and
// never fails the caller, even for a token that is already invalid.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		s.logger.Debug().Err(err).Msg("refresh token invalid on logout")
		return nil
	}

	hash := s.tokens.HashRefreshToken(refreshToken)
	if _, err := s.users.RemoveRefreshTokenHash(ctx, claims.UserID, hash); err != nil {
		s.logger.Debug().Err(err).Str("userId", claims.UserID).Msg("could not remove session on logout")
	}
	return nil
}

// LogoutAll revokes every session of the user.
func (s *AuthService) LogoutAll(ctx context.Context, userID string) error {
	if _, err := s.users.ClearRefreshTokenHashes(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.NewUserNotFoundError(http.StatusNotFound)
		}
		return err
	}
	return nil
}

// ChangePassword rotates the credential and revokes every session issued
// under the old one, then starts a fresh session for the caller.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) (*ports.AuthResult, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.NewUserNotFoundError(http.StatusNotFound)
		}
		return nil, err
	}

	if !s.hasher.Verify(currentPassword, user.PasswordHash) {
		return nil, domain.NewInvalidCredentialsError()
	}

	newHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}

	updated, err := s.users.UpdatePasswordHash(ctx, userID, newHash)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.ClearRefreshTokenHashes(ctx, userID); err != nil {
		return nil, err
	}

	s.logger.Info().Str("userId", userID).Msg("password changed, sessions revoked")
	return s.issueTokens(ctx, updated)
}

// GetProfile returns the sanitized projection of the user.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*domain.PublicUser, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.NewUserNotFoundError(http.StatusNotFound)
		}
		return nil, err
	}
	public := user.Public()
	return &public, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *domain.User) (*ports.AuthResult, error) {
	accessToken, err := s.tokens.CreateAccessToken(user.ID, user.Email, user.Name, user.Role)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}

	refreshToken, err := s.tokens.CreateRefreshToken(user.ID, uuid.NewString())
	if err != nil {
		return nil, domain.NewInternalError(err)
	}

	hash := s.tokens.HashRefreshToken(refreshToken)
	updated, err := s.users.AppendRefreshTokenHash(ctx, user.ID, hash)
	if err != nil {
		return nil, err
	}

	return &ports.AuthResult{
		User: updated.Public(),
		Tokens: domain.TokenPair{
			TokenType:    "Bearer",
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
		},
	}, nil
}

func lockedError(lockedUntil *time.Time, now time.Time) *domain.AppError {
	retryAfter := 1
	if lockedUntil != nil {
		retryAfter = int(math.Ceil(lockedUntil.Sub(now).Seconds()))
	}
	return domain.NewAccountLockedError(retryAfter)
}
