package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/palettekit/palette-api/internal/core/domain"
	"github.com/palettekit/palette-api/internal/core/ports"
)

// Auth validates the bearer access token and injects the claims into the
// request context under "userId", "role", "email" and "name".
func Auth(tokens ports.TokenIssuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return domain.NewAuthTokenMissingError()
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return domain.NewAuthTokenMissingError()
			}

			claims, err := tokens.VerifyAccessToken(strings.TrimSpace(parts[1]))
			if err != nil {
				return domain.NewAuthTokenInvalidError().WithCause(err)
			}

			c.Set("userId", claims.UserID)
			c.Set("role", claims.Role)
			c.Set("email", claims.Email)
			c.Set("name", claims.Name)

			return next(c)
		}
	}
}
