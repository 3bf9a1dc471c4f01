package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Machine-readable error codes surfaced to API clients. Codes are part of the
// contract and must stay stable; messages are free to change.
const (
	CodeEmailAlreadyExists    = "EMAIL_ALREADY_EXISTS"
	CodeInvalidCredentials    = "INVALID_CREDENTIALS"
	CodeAccountLocked         = "ACCOUNT_LOCKED"
	CodeAuthTokenMissing      = "AUTH_TOKEN_MISSING"
	CodeAuthTokenInvalid      = "AUTH_TOKEN_INVALID"
	CodeRefreshTokenRequired  = "REFRESH_TOKEN_REQUIRED"
	CodeInvalidRefreshToken   = "INVALID_REFRESH_TOKEN"
	CodeRefreshTokenReuse     = "REFRESH_TOKEN_REUSE_DETECTED"
	CodeForbidden             = "FORBIDDEN"
	CodeUserNotFound          = "USER_NOT_FOUND"
	CodePaletteNotFound       = "PALETTE_NOT_FOUND"
	CodePublicPaletteNotFound = "PUBLIC_PALETTE_NOT_FOUND"
	CodeInvalidIdempotencyKey = "INVALID_IDEMPOTENCY_KEY"
	CodeValidationError       = "VALIDATION_ERROR"
	CodeLoginRateLimited      = "AUTH_LOGIN_RATE_LIMITED"
	CodeInternalError         = "INTERNAL_ERROR"
)

// Repository-level sentinel errors. Services translate these into AppErrors
// at the boundary; repositories never build HTTP-shaped errors themselves.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailExists     = errors.New("email already registered")
	ErrPaletteNotFound = errors.New("palette not found")
)

// AppError is a typed domain error carrying the HTTP status and stable code
// the routing layer needs to render a response. It wraps an optional cause so
// infrastructure failures keep their chain for logging.
type AppError struct {
	Code       string
	StatusCode int
	Message    string
	Details    map[string]any
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// WithCause attaches the underlying error and returns the receiver.
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// WithDetails attaches machine-readable details and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

// NewAppError builds an AppError with an explicit status and code.
func NewAppError(statusCode int, code, message string) *AppError {
	return &AppError{Code: code, StatusCode: statusCode, Message: message}
}

// AsAppError unwraps err into an *AppError when one is in the chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func NewEmailAlreadyExistsError() *AppError {
	return NewAppError(http.StatusConflict, CodeEmailAlreadyExists, "email is already registered")
}

func NewInvalidCredentialsError() *AppError {
	return NewAppError(http.StatusUnauthorized, CodeInvalidCredentials, "invalid credentials")
}

// NewAccountLockedError reports a locked account. retryAfterSeconds is always
// at least 1 so clients never observe a zero backoff while still locked.
func NewAccountLockedError(retryAfterSeconds int) *AppError {
	if retryAfterSeconds < 1 {
		retryAfterSeconds = 1
	}
	return NewAppError(http.StatusLocked, CodeAccountLocked, "account temporarily locked").
		WithDetails(map[string]any{"retryAfterSeconds": retryAfterSeconds})
}

func NewAuthTokenMissingError() *AppError {
	return NewAppError(http.StatusUnauthorized, CodeAuthTokenMissing, "authentication token missing")
}

func NewAuthTokenInvalidError() *AppError {
	return NewAppError(http.StatusUnauthorized, CodeAuthTokenInvalid, "authentication token invalid or expired")
}

func NewRefreshTokenRequiredError() *AppError {
	return NewAppError(http.StatusBadRequest, CodeRefreshTokenRequired, "refresh token is required")
}

func NewInvalidRefreshTokenError() *AppError {
	return NewAppError(http.StatusUnauthorized, CodeInvalidRefreshToken, "refresh token invalid or expired")
}

func NewRefreshTokenReuseError() *AppError {
	return NewAppError(http.StatusUnauthorized, CodeRefreshTokenReuse, "refresh token already used; all sessions revoked")
}

func NewForbiddenError() *AppError {
	return NewAppError(http.StatusForbidden, CodeForbidden, "not allowed to perform this action")
}

func NewUserNotFoundError(statusCode int) *AppError {
	return NewAppError(statusCode, CodeUserNotFound, "user not found")
}

func NewPaletteNotFoundError() *AppError {
	return NewAppError(http.StatusNotFound, CodePaletteNotFound, "palette not found")
}

func NewPublicPaletteNotFoundError() *AppError {
	return NewAppError(http.StatusNotFound, CodePublicPaletteNotFound, "public palette not found")
}

func NewInternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, "internal server error").WithCause(err)
}
