package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/palettekit/palette-api/internal/api/metrics"
	"github.com/palettekit/palette-api/internal/core/domain"
)

type errorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// errorEnvelope is the canonical envelope for all API errors.
type errorEnvelope struct {
	Success   bool      `json:"success"`
	Error     errorBody `json:"error"`
	RequestID string    `json:"requestId,omitempty"`
	Timestamp string    `json:"timestamp"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Renders domain AppErrors with their status and stable machine code.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Mirrors the lockout backoff into a Retry-After header.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		appErr := resolveError(err, log, c)
		metrics.HTTPErrorsTotal.WithLabelValues(appErr.Code).Inc()

		if appErr.Code == domain.CodeAccountLocked {
			if retryAfter, ok := appErr.Details["retryAfterSeconds"].(int); ok {
				c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
			}
		}

		_ = c.JSON(appErr.StatusCode, errorEnvelope{
			Success: false,
			Error: errorBody{
				Code:    appErr.Code,
				Message: appErr.Message,
				Details: appErr.Details,
			},
			RequestID: c.Response().Header().Get(echo.HeaderXRequestID),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) *domain.AppError {
	if appErr, ok := domain.AsAppError(err); ok {
		if appErr.StatusCode >= http.StatusInternalServerError {
			logUnhandled(log, appErr, c)
		}
		return appErr
	}

	// Echo's own errors: bind failures, 404 from the router, etc.
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return domain.NewAppError(he.Code, codeForStatus(he.Code), fmt.Sprintf("%v", he.Message))
	}

	logUnhandled(log, err, c)
	return domain.NewInternalError(err)
}

func logUnhandled(log zerolog.Logger, err error, c echo.Context) {
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("requestId", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return domain.CodeValidationError
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusTooManyRequests:
		return domain.CodeLoginRateLimited
	default:
		return domain.CodeInternalError
	}
}
