package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"scan-validator/internal/validator/engine"
	"scan-validator/internal/validator/models"
	"scan-validator/internal/validator/parser"
	"scan-validator/internal/validator/report"
	"scan-validator/internal/validator/repository"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Store persists runs and the per-hash verdict cache.
type Store interface {
	SaveRun(ctx context.Context, run repository.Run, results []engine.Result) error
	GetRun(ctx context.Context, id string) (*repository.Run, error)
	ListResults(ctx context.Context, runID string) ([]engine.Result, error)
	CachedFlags(ctx context.Context, hash string) (models.Flags, error)
	CacheFlags(ctx context.Context, hash string, flags models.Flags) error
}

type Validation struct {
	validator *engine.Validator
	store     Store
	logger    *zap.Logger
}

func NewValidation(validator *engine.Validator, store Store, logger *zap.Logger) *Validation {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Validation{validator: validator, store: store, logger: logger}
}

// Register mounts the validation routes.
func (h *Validation) Register(r fiber.Router) {
	r.Post("/validate", h.Validate)
	r.Post("/validate/batch", h.ValidateBatch)
	r.Get("/runs/:id", h.GetRun)
	r.Get("/runs/:id/report", h.RunReport)
}

// ============================================================
// Single scan
// ============================================================

// Validate checks one scan document. Verdicts are cached by content hash.
func (h *Validation) Validate(c fiber.Ctx) error {
	body := c.Body()
	if len(body) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "scan document required",
		})
	}

	ctx := c.Context()
	hash := parser.Hash(body)

	flags, err := h.store.CachedFlags(ctx, hash)
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"hash": hash, "cached": true, "flags": flags})
	case !errors.Is(err, repository.ErrNotFound):
		h.logger.Warn("verdict cache lookup failed", zap.String("hash", hash), zap.Error(err))
	}

	scan, err := parser.ParseScanBytes(body)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	flags = engine.Validate(scan)
	if err := h.store.CacheFlags(ctx, hash, flags); err != nil {
		h.logger.Warn("verdict cache write failed", zap.String("hash", hash), zap.Error(err))
	}

	return c.JSON(fiber.Map{"hash": hash, "cached": false, "flags": flags})
}

// ============================================================
// Batch runs
// ============================================================

type batchItem struct {
	ID   string          `json:"id"`
	Scan json.RawMessage `json:"scan"`
}

// ValidateBatch validates a list of scans as one stored run.
func (h *Validation) ValidateBatch(c fiber.Ctx) error {
	var items []batchItem
	if err := json.Unmarshal(c.Body(), &items); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "body must be a list of {id, scan}",
		})
	}
	if len(items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "batch is empty",
		})
	}

	seen := make(map[string]struct{}, len(items))
	artifacts := make([]engine.Artifact, len(items))
	for i, item := range items {
		if item.ID == "" {
			item.ID = fmt.Sprintf("artifact-%d", i+1)
		}
		if _, dup := seen[item.ID]; dup {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("duplicate artifact id %q", item.ID),
			})
		}
		seen[item.ID] = struct{}{}
		artifacts[i] = engine.Artifact{ID: item.ID, Data: item.Scan}
	}

	ctx := c.Context()
	results, err := h.validator.ValidateBatch(ctx, artifacts)
	if err != nil {
		h.logger.Error("batch validation aborted", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "batch validation aborted",
		})
	}

	run := repository.NewRun("api", len(artifacts))
	if err := h.store.SaveRun(ctx, run, results); err != nil {
		h.logger.Error("failed to store run", zap.String("run_id", run.ID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to store run",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"run_id":  run.ID,
		"results": results,
		"summary": report.Tally(results),
	})
}

// GetRun returns a stored run with its results and tally.
func (h *Validation) GetRun(c fiber.Ctx) error {
	run, results, err := h.loadRun(c.Context(), c.Params("id"))
	if err != nil {
		return h.runError(c, err)
	}
	return c.JSON(fiber.Map{
		"run":     run,
		"results": results,
		"summary": report.Tally(results),
	})
}

// RunReport downloads a stored run as an xlsx workbook.
func (h *Validation) RunReport(c fiber.Ctx) error {
	run, results, err := h.loadRun(c.Context(), c.Params("id"))
	if err != nil {
		return h.runError(c, err)
	}

	data, err := report.WriteXLSX(report.Tally(results), results)
	if err != nil {
		h.logger.Error("failed to render report", zap.String("run_id", run.ID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to render report",
		})
	}

	c.Attachment(fmt.Sprintf("run-%s.xlsx", run.ID))
	c.Set(fiber.HeaderContentType, xlsxContentType)
	return c.Send(data)
}

func (h *Validation) loadRun(ctx context.Context, id string) (*repository.Run, []engine.Result, error) {
	run, err := h.store.GetRun(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	results, err := h.store.ListResults(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return run, results, nil
}

func (h *Validation) runError(c fiber.Ctx, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "run not found",
		})
	}
	h.logger.Error("failed to load run", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "failed to load run",
	})
}
