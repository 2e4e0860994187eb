package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/user/imagewatch/internal/entity"
	"github.com/user/imagewatch/internal/repository"
)

// SourceSyncer upserts configured sources into the record store.
type SourceSyncer interface {
	Sync(ctx context.Context, sources []entity.Source) error
}

type sourceSyncer struct {
	srcRepo repository.SourceRepository
	logger  *zap.Logger
}

// NewSourceSyncer creates a new instance of the source syncer.
func NewSourceSyncer(srcRepo repository.SourceRepository, logger *zap.Logger) SourceSyncer {
	return &sourceSyncer{srcRepo: srcRepo, logger: logger}
}

// Sync stores every source keyed by URL. Sources already in the store but absent
// from the list are left untouched.
func (uc *sourceSyncer) Sync(ctx context.Context, sources []entity.Source) error {
	for i := range sources {
		source := sources[i]
		id, err := uc.srcRepo.InsertSource(ctx, &source)
		if err != nil {
			return fmt.Errorf("failed to sync source %s: %w", source.URL, err)
		}
		uc.logger.Debug("Source synced", zap.Int64("source_id", id), zap.String("url", source.URL))
	}
	uc.logger.Info("Sources synced", zap.Int("count", len(sources)))
	return nil
}
