package handler

import "github.com/labstack/echo/v4"

// dataEnvelope is the canonical envelope for successful responses. Errors use
// the matching envelope rendered by the central error handler.
type dataEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

func respond(c echo.Context, status int, data any) error {
	return c.JSON(status, dataEnvelope{Success: true, Data: data})
}
