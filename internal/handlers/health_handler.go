package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/sghss/sghss-api/internal/dto"
)

// Pinger reports whether the database is reachable.
type Pinger func(ctx context.Context) error

type HealthHandler struct {
	ping    Pinger
	version string
}

func NewHealthHandler(ping Pinger, version string) *HealthHandler {
	return &HealthHandler{ping: ping, version: version}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status, dbStatus := "ok", "ok"
	code := fiber.StatusOK
	if err := h.ping(ctx); err != nil {
		status, dbStatus = "degraded", "unhealthy"
		code = fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(dto.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
	})
}

func (h *HealthHandler) Status(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "running",
		"service":   "sghss-api",
		"version":   h.version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
