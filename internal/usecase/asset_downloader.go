package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/user/imagewatch/internal/entity"
	"github.com/user/imagewatch/internal/repository"
	"github.com/user/imagewatch/pkg/metrics"
)

// AssetDownloader resolves a pending image to a terminal status.
type AssetDownloader interface {
	// Download makes at most one fetch attempt and always writes Active or Failed.
	// It returns the status written; an error means that write itself failed.
	Download(ctx context.Context, image entity.Image) (entity.Status, error)
}

type assetDownloader struct {
	fetcher   repository.PageFetcher
	assets    repository.AssetStore
	imageRepo repository.ImageRepository
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewAssetDownloader creates a new instance of the asset downloader.
func NewAssetDownloader(
	fetcher repository.PageFetcher,
	assets repository.AssetStore,
	imageRepo repository.ImageRepository,
	m *metrics.Metrics,
	logger *zap.Logger,
) AssetDownloader {
	return &assetDownloader{
		fetcher:   fetcher,
		assets:    assets,
		imageRepo: imageRepo,
		metrics:   m,
		logger:    logger,
	}
}

func (uc *assetDownloader) Download(ctx context.Context, image entity.Image) (entity.Status, error) {
	status := entity.StatusFailed
	outcome := "failure"

	if image.IsPlaceholder() {
		outcome = "placeholder"
	} else if err := uc.fetchAndStore(ctx, image); err != nil {
		uc.logger.Warn("Error downloading image",
			zap.Int64("image_id", image.ID),
			zap.String("url", image.URL),
			zap.Error(err),
		)
	} else {
		status = entity.StatusActive
		outcome = "success"
	}

	if err := uc.imageRepo.UpdateImageStatus(ctx, image.ID, status); err != nil {
		return status, fmt.Errorf("failed to mark image %d %s: %w", image.ID, status, err)
	}
	uc.metrics.ImageDownloadsTotal.WithLabelValues(outcome).Inc()
	return status, nil
}

func (uc *assetDownloader) fetchAndStore(ctx context.Context, image entity.Image) error {
	uc.logger.Debug("Downloading image", zap.Int64("image_id", image.ID), zap.String("url", image.URL))

	startTime := time.Now()
	data, err := uc.fetcher.Fetch(ctx, image.URL)
	uc.metrics.FetchDuration.WithLabelValues("asset").Observe(time.Since(startTime).Seconds())
	if err != nil {
		return err
	}

	if err := uc.assets.Save(ctx, image.ID, data); err != nil {
		return fmt.Errorf("%w: failed to save asset: %w", repository.ErrPersistence, err)
	}
	return nil
}
