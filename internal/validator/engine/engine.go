// Package engine runs the rule battery over scan artifacts, one at a time or
// as a parallel batch.
package engine

import (
	"context"
	"runtime"
	"time"

	"scan-validator/internal/validator/models"
	"scan-validator/internal/validator/parser"
	"scan-validator/internal/validator/rules"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Validate runs every rule over one scan.
func Validate(scan *models.RawScan) models.Flags {
	return rules.Evaluate(scan)
}

// ============================================================
// Batch validation
// ============================================================

// Artifact is one raw scan document waiting for validation.
type Artifact struct {
	ID   string
	Data []byte
}

// Result is the verdict for one artifact. Err is set when the document could
// not be decoded; Flags is then zero.
type Result struct {
	ArtifactID string       `json:"artifact_id"`
	Hash       string       `json:"hash"`
	Flags      models.Flags `json:"flags"`
	Err        string       `json:"error,omitempty"`
}

// Failed reports whether the artifact could not be validated.
func (r Result) Failed() bool {
	return r.Err != ""
}

type Validator struct {
	workers int
	logger  *zap.Logger
}

// New creates a Validator. workers <= 0 means one per CPU.
func New(workers int, logger *zap.Logger) *Validator {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Validator{workers: workers, logger: logger}
}

// ValidateArtifact decodes and validates a single artifact.
func (v *Validator) ValidateArtifact(a Artifact) Result {
	res := Result{ArtifactID: a.ID, Hash: parser.Hash(a.Data)}

	scan, err := parser.ParseScanBytes(a.Data)
	if err != nil {
		v.logger.Warn("skipping unparsable artifact",
			zap.String("artifact_id", a.ID),
			zap.Error(err),
		)
		res.Err = err.Error()
		return res
	}

	res.Flags = Validate(scan)
	return res
}

// ValidateBatch validates artifacts in parallel. Results keep the input
// order. Decode failures are recorded per artifact; only cancellation of ctx
// aborts the batch.
func (v *Validator) ValidateBatch(ctx context.Context, artifacts []Artifact) ([]Result, error) {
	start := time.Now()
	results := make([]Result, len(artifacts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.workers)

	for i, a := range artifacts {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = v.ValidateArtifact(a)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v.logger.Info("batch validated",
		zap.Int("artifacts", len(artifacts)),
		zap.Int("workers", v.workers),
		zap.Duration("elapsed", time.Since(start)),
	)
	return results, nil
}
