package handler

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/palettekit/palette-api/internal/core/domain"
)

// ctxUserID extracts the authenticated user id injected by the Auth
// middleware. An empty id means the middleware did not run; reject instead
// of proceeding with an anonymous mutation.
func ctxUserID(c echo.Context) (string, error) {
	userID, _ := c.Get("userId").(string)
	if userID == "" {
		return "", domain.NewAuthTokenMissingError()
	}
	return userID, nil
}

var idempotencyKeyRe = regexp.MustCompile(`^[A-Za-z0-9._:-]{8,128}$`)

// idempotencyKeyFrom reads and validates the optional Idempotency-Key
// header. Absence is fine; a malformed value is a client error.
func idempotencyKeyFrom(c echo.Context) (string, error) {
	raw := c.Request().Header.Get("Idempotency-Key")
	if raw == "" {
		return "", nil
	}
	key := strings.TrimSpace(raw)
	if !idempotencyKeyRe.MatchString(key) {
		return "", domain.NewAppError(http.StatusBadRequest, domain.CodeInvalidIdempotencyKey, "invalid Idempotency-Key header").
			WithDetails(map[string]any{"expected": "8-128 characters of [A-Za-z0-9._:-]"})
	}
	return key, nil
}
