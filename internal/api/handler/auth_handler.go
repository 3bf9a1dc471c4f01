package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/palettekit/palette-api/internal/api/metrics"
	"github.com/palettekit/palette-api/internal/core/domain"
	"github.com/palettekit/palette-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=80"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=128"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Register creates a new account and opens its first session.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return domain.NewAppError(http.StatusBadRequest, domain.CodeValidationError, "invalid request body").WithCause(err)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, result)
}

// Login authenticates credentials and returns a fresh token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return domain.NewAppError(http.StatusBadRequest, domain.CodeValidationError, "invalid request body").WithCause(err)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.authService.Login(c.Request().Context(), ports.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(loginResultLabel(err)).Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return respond(c, http.StatusOK, result)
}

// Refresh exchanges a valid refresh token for a new pair, rotating the old
// one out of the session set.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return domain.NewAppError(http.StatusBadRequest, domain.CodeValidationError, "invalid request body").WithCause(err)
	}

	result, err := h.authService.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		if appErr, ok := domain.AsAppError(err); ok && appErr.Code == domain.CodeRefreshTokenReuse {
			metrics.RefreshReuseDetectedTotal.Inc()
		}
		return err
	}

	metrics.RefreshRotationsTotal.Inc()
	return respond(c, http.StatusOK, result)
}

// Logout revokes the presented refresh token. Always succeeds so clients can
// discard local state unconditionally.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return domain.NewAppError(http.StatusBadRequest, domain.CodeValidationError, "invalid request body").WithCause(err)
	}

	if err := h.authService.Logout(c.Request().Context(), req.RefreshToken); err != nil {
		return err
	}
	return respond(c, http.StatusOK, messageResponse{Message: "logged out"})
}

// LogoutAll revokes every session of the authenticated user.
func (h *AuthHandler) LogoutAll(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	if err := h.authService.LogoutAll(c.Request().Context(), userID); err != nil {
		return err
	}
	return respond(c, http.StatusOK, messageResponse{Message: "all sessions revoked"})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	profile, err := h.authService.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, profile)
}

// ChangePassword verifies the current password, sets the new one, revokes
// every existing session and returns a fresh token pair.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return domain.NewAppError(http.StatusBadRequest, domain.CodeValidationError, "invalid request body").WithCause(err)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.authService.ChangePassword(c.Request().Context(), userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, result)
}

func loginResultLabel(err error) string {
	if appErr, ok := domain.AsAppError(err); ok && appErr.Code == domain.CodeAccountLocked {
		return "locked"
	}
	return "invalid_credentials"
}
