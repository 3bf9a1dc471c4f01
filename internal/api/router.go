package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/palettekit/palette-api/internal/api/handler"
	"github.com/palettekit/palette-api/internal/api/middleware"
	"github.com/palettekit/palette-api/internal/core/domain"
	"github.com/palettekit/palette-api/internal/core/service"
	"github.com/palettekit/palette-api/internal/infrastructure/config"
	"github.com/palettekit/palette-api/internal/infrastructure/repository"
	"github.com/palettekit/palette-api/internal/infrastructure/security"
	"github.com/palettekit/palette-api/internal/infrastructure/store"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg *config.Config, st *store.Store, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.CORS())
	e.Use(echomiddleware.BodyLimit("1M"))
	e.Use(echoprometheus.NewMiddleware("palette_api"))

	// --- Dependencies ---
	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost)
	tokens := security.NewTokenIssuer(
		cfg.Auth.AccessSecret,
		cfg.Auth.RefreshSecret,
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.RefreshTokenTTL,
	)

	userRepo := repository.NewUserRepository(st, cfg.Auth.MaxRefreshHashes)
	paletteRepo := repository.NewPaletteRepository(st)
	idempotencyRepo := repository.NewIdempotencyRepository(st, cfg.Idempotency.TTL, cfg.Idempotency.MaxRecords)

	authService := service.NewAuthService(userRepo, hasher, tokens, log, cfg.Auth.BootstrapAdminEmail, domain.LockoutPolicy{
		MaxAttempts:   cfg.Auth.MaxFailedAttempts,
		LockoutWindow: cfg.Auth.LockoutWindow,
	})
	paletteService := service.NewPaletteService(paletteRepo, idempotencyRepo, log)

	authHandler := handler.NewAuthHandler(authService)
	paletteHandler := handler.NewPaletteHandler(paletteService)
	healthHandler := handler.NewHealthHandler(st, Version)

	authMiddleware := middleware.Auth(tokens)
	adminOnly := middleware.RBAC(domain.RoleAdmin)
	loginLimiter := loginRateLimiter(cfg.RateLimit)

	// --- Health probes and metrics (no auth required) ---
	e.GET("/health", healthHandler.Live)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Ready) // readiness – is the document store loaded?
	e.GET("/metrics", echoprometheus.NewHandler())

	v1 := e.Group("/api/v1")

	// --- Auth routes ---
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login, loginLimiter)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", authHandler.Logout)
	auth.POST("/logout-all", authHandler.LogoutAll, authMiddleware)
	auth.GET("/me", authHandler.Me, authMiddleware)
	auth.POST("/change-password", authHandler.ChangePassword, authMiddleware)

	// --- Palette routes ---
	palettes := v1.Group("/palettes", authMiddleware)
	palettes.GET("", paletteHandler.List)
	palettes.POST("", paletteHandler.Create)
	palettes.POST("/import", paletteHandler.Import)
	palettes.GET("/analytics", paletteHandler.Analytics)
	palettes.GET("/:id", paletteHandler.Get)
	palettes.PATCH("/:id", paletteHandler.Update)
	palettes.DELETE("/:id", paletteHandler.Delete)
	palettes.POST("/:id/share", paletteHandler.Share)
	palettes.DELETE("/:id/share", paletteHandler.Unshare)

	// --- Public share links ---
	v1.GET("/public/palettes/:shareId", paletteHandler.GetPublic)

	// --- Admin ---
	v1.GET("/admin/stats", healthHandler.Stats, authMiddleware, adminOnly)

	return e
}

// loginRateLimiter throttles credential guessing per client IP. The memory
// store refills at max/window and allows short bursts up to max.
func loginRateLimiter(cfg config.RateLimitConfig) echo.MiddlewareFunc {
	limit := rate.Limit(float64(cfg.LoginMax) / cfg.LoginWindow.Seconds())
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
			Rate:      limit,
			Burst:     cfg.LoginMax,
			ExpiresIn: cfg.LoginWindow,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return domain.NewAppError(http.StatusTooManyRequests, domain.CodeLoginRateLimited, "too many login attempts, slow down").WithCause(err)
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return domain.NewAppError(http.StatusTooManyRequests, domain.CodeLoginRateLimited, "too many login attempts, slow down")
		},
	})
}
