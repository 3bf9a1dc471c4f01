package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/palettekit/palette-api/internal/core/domain"
	"github.com/palettekit/palette-api/internal/infrastructure/security"
)

func newContext(t *testing.T, authorization string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	return e.NewContext(req, httptest.NewRecorder())
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	issuer := security.NewTokenIssuer("access-secret", "refresh-secret", time.Minute, time.Hour)
	token, err := issuer.CreateAccessToken("u1", "alice@example.com", "Alice", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	c := newContext(t, "Bearer "+token)
	called := false
	handler := Auth(issuer)(func(c echo.Context) error {
		called = true
		if c.Get("userId") != "u1" {
			t.Fatalf("userId not set")
		}
		if c.Get("role") != domain.RoleAdmin {
			t.Fatalf("role not set")
		}
		if c.Get("email") != "alice@example.com" {
			t.Fatalf("email not set")
		}
		if c.Get("name") != "Alice" {
			t.Fatalf("name not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	issuer := security.NewTokenIssuer("access-secret", "refresh-secret", time.Minute, time.Hour)

	handler := Auth(issuer)(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	appErr, ok := domain.AsAppError(handler(newContext(t, "")))
	if !ok || appErr.Code != domain.CodeAuthTokenMissing {
		t.Fatalf("expected AUTH_TOKEN_MISSING, got %v", appErr)
	}
}

func TestAuthMiddleware_WrongScheme(t *testing.T) {
	issuer := security.NewTokenIssuer("access-secret", "refresh-secret", time.Minute, time.Hour)

	handler := Auth(issuer)(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	appErr, ok := domain.AsAppError(handler(newContext(t, "Token abc")))
	if !ok || appErr.Code != domain.CodeAuthTokenMissing {
		t.Fatalf("expected AUTH_TOKEN_MISSING, got %v", appErr)
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	issuer := security.NewTokenIssuer("access-secret", "refresh-secret", time.Minute, time.Hour)

	handler := Auth(issuer)(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	appErr, ok := domain.AsAppError(handler(newContext(t, "Bearer not-a-token")))
	if !ok || appErr.Code != domain.CodeAuthTokenInvalid {
		t.Fatalf("expected AUTH_TOKEN_INVALID, got %v", appErr)
	}
}

// A refresh token must never pass as an access token.
func TestAuthMiddleware_RefreshTokenRejected(t *testing.T) {
	issuer := security.NewTokenIssuer("access-secret", "refresh-secret", time.Minute, time.Hour)
	refresh, err := issuer.CreateRefreshToken("u1", "session-1")
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	handler := Auth(issuer)(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	appErr, ok := domain.AsAppError(handler(newContext(t, "Bearer "+refresh)))
	if !ok || appErr.Code != domain.CodeAuthTokenInvalid {
		t.Fatalf("expected AUTH_TOKEN_INVALID, got %v", appErr)
	}
}
