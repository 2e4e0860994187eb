package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/user/imagewatch/internal/entity"
	"github.com/user/imagewatch/internal/repository"
	"github.com/user/imagewatch/pkg/metrics"
)

// SourceIngestor polls a single source and stores the new items found on its page.
type SourceIngestor interface {
	// Ingest fetches the source page, classifies its candidates and inserts the new
	// ones. It fails only when the page cannot be fetched or parsed, or the source is
	// misconfigured; per-item failures are logged and skipped.
	Ingest(ctx context.Context, source entity.Source) (*entity.IngestResult, error)
}

type sourceIngestor struct {
	fetcher   repository.PageFetcher
	extractor repository.Extractor
	linkRepo  repository.LinkRepository
	srcRepo   repository.SourceRepository
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewSourceIngestor creates a new instance of the source ingestor.
func NewSourceIngestor(
	fetcher repository.PageFetcher,
	extractor repository.Extractor,
	linkRepo repository.LinkRepository,
	srcRepo repository.SourceRepository,
	m *metrics.Metrics,
	logger *zap.Logger,
) SourceIngestor {
	return &sourceIngestor{
		fetcher:   fetcher,
		extractor: extractor,
		linkRepo:  linkRepo,
		srcRepo:   srcRepo,
		metrics:   m,
		logger:    logger,
	}
}

func (uc *sourceIngestor) Ingest(ctx context.Context, source entity.Source) (*entity.IngestResult, error) {
	if !source.Type.Valid() {
		return nil, fmt.Errorf("source %d %q has type %q: %w", source.ID, source.Title, source.Type, repository.ErrUnknownSourceType)
	}

	uc.logger.Info("Checking source", zap.Int64("source_id", source.ID), zap.String("title", source.Title))

	startTime := time.Now()
	document, err := uc.fetcher.Fetch(ctx, source.URL)
	uc.metrics.FetchDuration.WithLabelValues("page").Observe(time.Since(startTime).Seconds())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch source %s: %w", source.URL, err)
	}

	candidates, err := uc.extractor.ExtractCandidates(source.URL, document)
	if err != nil {
		return nil, fmt.Errorf("failed to extract candidates from %s: %w", source.URL, err)
	}

	result := &entity.IngestResult{SourceID: source.ID, Candidates: len(candidates)}
	for _, candidate := range candidates {
		item, ok := classify(source, candidate)
		if !ok {
			continue
		}
		result.Kept++
		uc.insert(ctx, source, item, result)
	}

	if err := uc.srcRepo.UpdateSourcePollTime(ctx, source.ID); err != nil {
		return result, fmt.Errorf("failed to record poll of source %d: %w", source.ID, err)
	}

	uc.metrics.ItemsDiscoveredTotal.WithLabelValues(source.Title).Add(float64(result.NewItems))
	uc.metrics.DuplicatesTotal.Add(float64(result.Duplicates))
	uc.logger.Info("Source polled",
		zap.Int64("source_id", source.ID),
		zap.String("title", source.Title),
		zap.Int("new_items", result.NewItems),
		zap.Int("candidates", result.Candidates),
	)
	return result, nil
}

// insert stores one classified item. A duplicate is an expected no-op; any other
// failure is logged and the item is skipped.
func (uc *sourceIngestor) insert(ctx context.Context, source entity.Source, item entity.NewItem, result *entity.IngestResult) {
	_, _, err := uc.linkRepo.InsertLinkWithImage(ctx, item)
	switch {
	case err == nil:
		result.NewItems++
	case errors.Is(err, repository.ErrDuplicateKey):
		result.Duplicates++
	default:
		result.Failed++
		uc.logger.Warn("Failed to store discovered item, skipping",
			zap.Int64("source_id", source.ID),
			zap.String("url", item.LinkURL),
			zap.String("image_url", item.ImageURL),
			zap.Error(err),
		)
	}
}

// classify applies the source's policy to a candidate. It reports false when the
// policy discards the candidate. The source type must already be valid.
func classify(source entity.Source, c entity.Candidate) (entity.NewItem, bool) {
	image, link := c.Image, c.Link

	switch source.Type {
	case entity.SourceTypeImagesAndLinks:
		if image == nil || link == nil {
			return entity.NewItem{}, false
		}
	case entity.SourceTypeImagesOnly:
		if image == nil {
			return entity.NewItem{}, false
		}
		if link == nil {
			title := image.Title
			if title == "" {
				title = source.Title
			}
			link = &entity.CandidateLink{URL: source.URL + "#" + image.URL, Title: title}
		}
	case entity.SourceTypeLinksOnly:
		if link == nil {
			return entity.NewItem{}, false
		}
		if image == nil {
			image = &entity.CandidateImage{URL: entity.PlaceholderImageURL, Title: link.Title}
		}
	default:
		return entity.NewItem{}, false
	}

	return entity.NewItem{
		SourceID:  source.ID,
		LinkURL:   link.URL,
		LinkTitle: link.Title,
		ImageURL:  image.URL,
	}, true
}
