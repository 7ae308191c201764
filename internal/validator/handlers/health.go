package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// ============================================================
// Health Check Handlers
// ============================================================

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Health struct {
	db     Pinger
	logger *zap.Logger
}

func NewHealth(db Pinger, logger *zap.Logger) *Health {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Health{db: db, logger: logger}
}

// Liveness reports that the process is serving requests.
func (h *Health) Liveness(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "alive"})
}

// Readiness checks that the results database answers.
func (h *Health) Readiness(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn("readiness check failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unavailable",
			"error":  err.Error(),
		})
	}
	return c.JSON(fiber.Map{"status": "ready"})
}

func (h *Health) Startup(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "started"})
}
