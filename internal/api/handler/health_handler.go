package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/palettekit/palette-api/internal/infrastructure/store"
)

type HealthHandler struct {
	st        *store.Store
	startedAt time.Time
	version   string
}

func NewHealthHandler(st *store.Store, version string) *HealthHandler {
	return &HealthHandler{st: st, startedAt: time.Now(), version: version}
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

type readinessResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}

type statsResponse struct {
	Users              int    `json:"users"`
	Palettes           int    `json:"palettes"`
	IdempotencyRecords int    `json:"idempotencyRecords"`
	SchemaVersion      int    `json:"schemaVersion"`
	Uptime             string `json:"uptime"`
}

// Live reports process liveness. It never touches the store.
func (h *HealthHandler) Live(c echo.Context) error {
	return respond(c, http.StatusOK, healthResponse{
		Status:  "ok",
		Version: h.version,
		Uptime:  time.Since(h.startedAt).Round(time.Second).String(),
	})
}

// Ready reports whether the document store is loaded and readable.
func (h *HealthHandler) Ready(c echo.Context) error {
	if _, err := h.st.Read(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, dataEnvelope{Success: false, Data: readinessResponse{
			Status: "unavailable",
			Store:  err.Error(),
		}})
	}
	return respond(c, http.StatusOK, readinessResponse{Status: "ready", Store: "loaded"})
}

// Stats exposes document store counters. Admin only.
func (h *HealthHandler) Stats(c echo.Context) error {
	doc, err := h.st.Read(c.Request().Context())
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, statsResponse{
		Users:              len(doc.Users),
		Palettes:           len(doc.Palettes),
		IdempotencyRecords: len(doc.IdempotencyRecords),
		SchemaVersion:      doc.Metadata.SchemaVersion,
		Uptime:             time.Since(h.startedAt).Round(time.Second).String(),
	})
}
