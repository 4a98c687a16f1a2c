package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// PingFunc reports whether the backing store is reachable.
type PingFunc func(ctx context.Context) error

// HealthHandler serves the liveness endpoint.
type HealthHandler struct {
	ping   PingFunc
	logger *zap.Logger
}

// NewHealthHandler creates a HealthHandler. A nil ping means the API runs on
// in-memory storage.
func NewHealthHandler(ping PingFunc, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{ping: ping, logger: logger}
}

// RegisterRoutes mounts GET /health on router.
func (h *HealthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.HandleHealth)
}

// HandleHealth reports service status and database reachability. It answers
// 503 when the database does not respond to a ping.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	status, database, code := "healthy", "memory", fiber.StatusOK
	if h.ping != nil {
		database = "connected"
		if err := h.ping(c.UserContext()); err != nil {
			h.logger.Warn("database ping failed", zap.Error(err))
			status, database, code = "unhealthy", "unreachable", fiber.StatusServiceUnavailable
		}
	}

	return c.Status(code).JSON(fiber.Map{
		"status":   status,
		"time":     time.Now().Format(time.RFC3339),
		"database": database,
	})
}
