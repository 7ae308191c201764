package scansync

import (
	"context"
	"fmt"

	"scan-validator/internal/validator/engine"

	"go.uber.org/zap"
)

// Source lists and downloads remote artifacts.
type Source interface {
	ListArtifacts(ctx context.Context) ([]ArtifactRef, error)
	FetchScan(ctx context.Context, id string) ([]byte, error)
}

// Syncer mirrors remote artifacts into the local file cache.
type Syncer struct {
	source  Source
	storage *FileStorage
	logger  *zap.Logger
}

func NewSyncer(source Source, storage *FileStorage, logger *zap.Logger) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Syncer{source: source, storage: storage, logger: logger}
}

// Sync downloads every artifact missing from the cache, then returns the
// whole cache ready for validation. A failed download is logged and skipped.
func (s *Syncer) Sync(ctx context.Context) ([]engine.Artifact, error) {
	refs, err := s.source.ListArtifacts(ctx)
	if err != nil {
		return nil, err
	}

	fetched := 0
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if s.storage.Has(ref.ID) {
			continue
		}

		data, err := s.source.FetchScan(ctx, ref.ID)
		if err != nil {
			s.logger.Warn("artifact download failed", zap.String("artifact_id", ref.ID), zap.Error(err))
			continue
		}
		if err := s.storage.Save(ref.ID, data); err != nil {
			return nil, fmt.Errorf("cache artifact: %w", err)
		}
		fetched++
	}

	s.logger.Info("artifacts synced",
		zap.Int("remote", len(refs)),
		zap.Int("fetched", fetched),
	)
	return s.Artifacts()
}

// Artifacts loads every cached artifact for validation.
func (s *Syncer) Artifacts() ([]engine.Artifact, error) {
	return LoadArtifacts(s.storage)
}

// LoadArtifacts reads every cached artifact from storage.
func LoadArtifacts(storage *FileStorage) ([]engine.Artifact, error) {
	ids, err := storage.List()
	if err != nil {
		return nil, err
	}

	out := make([]engine.Artifact, 0, len(ids))
	for _, id := range ids {
		data, err := storage.Load(id)
		if err != nil {
			return nil, err
		}
		out = append(out, engine.Artifact{ID: id, Data: data})
	}
	return out, nil
}
