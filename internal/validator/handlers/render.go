package handlers

import (
	"scan-validator/internal/validator/parser"
	"scan-validator/internal/validator/render"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// ============================================================
// Render Handler
// ============================================================

type Render struct {
	renderer *render.Renderer
	logger   *zap.Logger
}

func NewRender(renderer *render.Renderer, logger *zap.Logger) *Render {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Render{renderer: renderer, logger: logger}
}

// RenderSVG draws the footprints of a scan document.
func (h *Render) RenderSVG(c fiber.Ctx) error {
	if len(c.Body()) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "body required",
		})
	}

	scan, err := parser.ParseScanBytes(c.Body())
	if err != nil {
		h.logger.Debug("render decode failed", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	svg, err := h.renderer.Render(scan)
	if err != nil {
		h.logger.Error("render failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	c.Set(fiber.HeaderContentType, "image/svg+xml")
	return c.SendString(svg)
}
