package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/palettekit/palette-api/internal/api/metrics"
	"github.com/palettekit/palette-api/internal/core/domain"
	"github.com/palettekit/palette-api/internal/core/ports"
)

type PaletteHandler struct {
	paletteService ports.PaletteService
}

func NewPaletteHandler(paletteService ports.PaletteService) *PaletteHandler {
	return &PaletteHandler{paletteService: paletteService}
}

type createPaletteRequest struct {
	Name        string            `json:"name" validate:"required,min=1,max=120"`
	Description string            `json:"description" validate:"max=500"`
	Tags        []string          `json:"tags"`
	Tokens      map[string]string `json:"tokens" validate:"required"`
}

type importPaletteRequest struct {
	Name        string            `json:"name" validate:"max=120"`
	Description string            `json:"description" validate:"max=500"`
	Tags        []string          `json:"tags"`
	Tokens      map[string]string `json:"tokens" validate:"required"`
}

type updatePaletteRequest struct {
	Name        *string           `json:"name" validate:"omitempty,min=1,max=120"`
	Description *string           `json:"description" validate:"omitempty,max=500"`
	Tags        []string          `json:"tags"`
	Tokens      map[string]string `json:"tokens"`
}

// List returns one page of the owner's palettes, optionally filtered by a
// free-text query over name, description and tags.
func (h *PaletteHandler) List(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	query := ports.PaletteListQuery{Query: c.QueryParam("q")}
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return domain.NewAppError(http.StatusBadRequest, domain.CodeValidationError, "limit must be a positive integer")
		}
		query.Limit = limit
	}
	if raw := c.QueryParam("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return domain.NewAppError(http.StatusBadRequest, domain.CodeValidationError, "offset must be a non-negative integer")
		}
		query.Offset = offset
	}

	page, err := h.paletteService.ListForUser(c.Request().Context(), userID, query)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, page)
}

// Create stores a new palette. An Idempotency-Key header makes the request
// safely retryable: a retry with the same key replays the first outcome.
func (h *PaletteHandler) Create(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	idemKey, err := idempotencyKeyFrom(c)
	if err != nil {
		return err
	}

	var req createPaletteRequest
	if err := c.Bind(&req); err != nil {
		return domain.NewAppError(http.StatusBadRequest, domain.CodeValidationError, "invalid request body").WithCause(err)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	started := time.Now()
	palette, err := h.paletteService.CreateForUser(c.Request().Context(), userID, ports.CreatePaletteInput{
		Name:        req.Name,
		Description: req.Description,
		Tags:        req.Tags,
		Tokens:      req.Tokens,
	}, idemKey)
	if err != nil {
		return err
	}

	recordCreation(palette, idemKey, started, "create")
	return respond(c, http.StatusCreated, palette)
}

// Import accepts an exported palette document and stores it under the
// authenticated user, filling in defaults for missing metadata.
func (h *PaletteHandler) Import(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	idemKey, err := idempotencyKeyFrom(c)
	if err != nil {
		return err
	}

	var req importPaletteRequest
	if err := c.Bind(&req); err != nil {
		return domain.NewAppError(http.StatusBadRequest, domain.CodeValidationError, "invalid request body").WithCause(err)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	started := time.Now()
	palette, err := h.paletteService.ImportForUser(c.Request().Context(), userID, ports.CreatePaletteInput{
		Name:        req.Name,
		Description: req.Description,
		Tags:        req.Tags,
		Tokens:      req.Tokens,
	}, idemKey)
	if err != nil {
		return err
	}

	recordCreation(palette, idemKey, started, "import")
	return respond(c, http.StatusCreated, palette)
}

// Get returns a single palette owned by the authenticated user.
func (h *PaletteHandler) Get(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	palette, err := h.paletteService.GetByIDForUser(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, palette)
}

// Update applies a partial update. Absent fields are left untouched.
func (h *PaletteHandler) Update(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req updatePaletteRequest
	if err := c.Bind(&req); err != nil {
		return domain.NewAppError(http.StatusBadRequest, domain.CodeValidationError, "invalid request body").WithCause(err)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	palette, err := h.paletteService.UpdateForUser(c.Request().Context(), userID, c.Param("id"), domain.PalettePatch{
		Name:        req.Name,
		Description: req.Description,
		Tags:        req.Tags,
		Tokens:      req.Tokens,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, palette)
}

// Delete removes a palette owned by the authenticated user.
func (h *PaletteHandler) Delete(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	if err := h.paletteService.DeleteForUser(c.Request().Context(), userID, c.Param("id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, messageResponse{Message: "palette deleted"})
}

// Share marks a palette public and returns it with its share id. Sharing an
// already-public palette keeps the existing share id.
func (h *PaletteHandler) Share(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	palette, err := h.paletteService.ShareForUser(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, palette)
}

// Unshare makes a palette private again and invalidates its share link.
func (h *PaletteHandler) Unshare(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	palette, err := h.paletteService.UnshareForUser(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, palette)
}

// GetPublic resolves a share link without authentication.
func (h *PaletteHandler) GetPublic(c echo.Context) error {
	palette, err := h.paletteService.GetPublicByShareID(c.Request().Context(), c.Param("shareId"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, palette)
}

// Analytics summarizes the authenticated user's collection.
func (h *PaletteHandler) Analytics(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	analytics, err := h.paletteService.AnalyticsForUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, analytics)
}

// recordCreation increments the creation counters. A palette stamped before
// this request began was replayed from an idempotency record, not created.
func recordCreation(palette *domain.Palette, idemKey string, started time.Time, source string) {
	if idemKey != "" && palette.CreatedAt.Before(started) {
		metrics.IdempotentReplaysTotal.Inc()
		return
	}
	metrics.PalettesCreatedTotal.WithLabelValues(source).Inc()
}
