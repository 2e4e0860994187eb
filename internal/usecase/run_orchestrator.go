package usecase

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/user/imagewatch/internal/entity"
	"github.com/user/imagewatch/internal/repository"
	"github.com/user/imagewatch/pkg/metrics"
)

const (
	defaultSourceConcurrency   = 4
	defaultDownloadConcurrency = 8
	defaultLockTTL             = 30 * time.Minute
)

// Runner drives one complete run.
type Runner interface {
	// Run executes every phase in order. It returns an error only when the
	// record store fails at the run level; per-source, per-image and
	// per-target failures are logged and counted in the summary.
	Run(ctx context.Context) (*entity.RunSummary, error)
}

// RunOptions bounds the parallelism of a run.
type RunOptions struct {
	SourceConcurrency   int
	DownloadConcurrency int
	LockTTL             time.Duration
}

// RunDeps are the collaborators of the run orchestrator.
// Lock is optional; Now defaults to time.Now.
type RunDeps struct {
	SourceRepo repository.SourceRepository
	ImageRepo  repository.ImageRepository
	Ingestor   SourceIngestor
	Downloader AssetDownloader
	Selector   ReportSelector
	Emitters   []Emitter
	Lock       repository.RunLock
	Now        func() time.Time
	Metrics    *metrics.Metrics
	Logger     *zap.Logger
}

type runOrchestrator struct {
	RunDeps
	opts RunOptions
}

// NewRunOrchestrator creates a new run orchestrator.
func NewRunOrchestrator(deps RunDeps, opts RunOptions) Runner {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if opts.SourceConcurrency <= 0 {
		opts.SourceConcurrency = defaultSourceConcurrency
	}
	if opts.DownloadConcurrency <= 0 {
		opts.DownloadConcurrency = defaultDownloadConcurrency
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = defaultLockTTL
	}
	return &runOrchestrator{RunDeps: deps, opts: opts}
}

func (o *runOrchestrator) Run(ctx context.Context) (*entity.RunSummary, error) {
	summary := &entity.RunSummary{StartedAt: o.Now()}
	o.enter(entity.RunPhaseStart)

	if o.Lock != nil {
		acquired, err := o.Lock.TryLock(ctx, o.opts.LockTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire run lock: %w", err)
		}
		if !acquired {
			o.Logger.Info("Another run is in progress, skipping")
			summary.Skipped = true
			return summary, nil
		}
		defer func() {
			if err := o.Lock.Unlock(context.WithoutCancel(ctx)); err != nil {
				o.Logger.Warn("Failed to release run lock", zap.Error(err))
			}
		}()
	}

	sources, err := o.SourceRepo.ListSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}

	o.enter(entity.RunPhasePollSources)
	// Captured before any source is touched so this run's own items are at or after it.
	summary.Watermark = o.Now()
	o.pollSources(ctx, sources, summary)

	o.enter(entity.RunPhaseDownloadPendingAssets)
	if err := o.downloadPendingAssets(ctx, summary); err != nil {
		return nil, err
	}

	o.enter(entity.RunPhaseSelectIncrementalWindow)
	items, err := o.Selector.SelectSince(ctx, summary.Watermark)
	if err != nil {
		return nil, err
	}
	summary.Matches = len(items)
	o.Logger.Info("Matches found", zap.Int("matches", len(items)))

	o.enter(entity.RunPhaseEmit)
	o.emit(ctx, items, summary)

	o.enter(entity.RunPhaseEnd)
	summary.Duration = o.Now().Sub(summary.StartedAt)
	o.Metrics.RunDuration.Observe(summary.Duration.Seconds())
	o.Metrics.LastRunMatches.Set(float64(summary.Matches))
	o.Metrics.LastRunTimestamp.Set(float64(o.Now().Unix()))
	o.Logger.Info("Run finished",
		zap.Int("sources_polled", summary.SourcesPolled),
		zap.Int("sources_failed", summary.SourcesFailed),
		zap.Int("new_items", summary.NewItems),
		zap.Int("images_downloaded", summary.ImagesDownloaded),
		zap.Int("images_failed", summary.ImagesFailed),
		zap.Int("matches", summary.Matches),
		zap.Duration("duration", summary.Duration),
	)
	return summary, nil
}

func (o *runOrchestrator) enter(phase entity.RunPhase) {
	o.Logger.Debug("Entering run phase", zap.String("phase", string(phase)))
}

func (o *runOrchestrator) pollSources(ctx context.Context, sources []*entity.Source, summary *entity.RunSummary) {
	var newItems atomic.Int64

	outcomes := ForEach(ctx, sources, o.opts.SourceConcurrency, func(ctx context.Context, source *entity.Source) error {
		result, err := o.Ingestor.Ingest(ctx, *source)
		if err != nil {
			// The poll attempt still counts even though the ingest did not finish.
			if updateErr := o.SourceRepo.UpdateSourcePollTime(ctx, source.ID); updateErr != nil {
				o.Logger.Error("Failed to record source poll time",
					zap.Int64("source_id", source.ID),
					zap.Error(updateErr),
				)
			}
			return err
		}
		newItems.Add(int64(result.NewItems))
		return nil
	})

	summary.SourcesPolled = len(sources)
	for _, outcome := range outcomes {
		if outcome.Err == nil {
			o.Metrics.SourcesPolledTotal.WithLabelValues("success").Inc()
			continue
		}
		summary.SourcesFailed++
		o.Metrics.SourcesPolledTotal.WithLabelValues("failure").Inc()
		o.Logger.Error("Error polling source",
			zap.Int64("source_id", outcome.Item.ID),
			zap.String("title", outcome.Item.Title),
			zap.String("url", outcome.Item.URL),
			zap.Error(outcome.Err),
		)
	}
	summary.NewItems = int(newItems.Load())
}

func (o *runOrchestrator) downloadPendingAssets(ctx context.Context, summary *entity.RunSummary) error {
	images, err := o.ImageRepo.ListImagesByStatus(ctx, entity.StatusPending)
	if err != nil {
		return fmt.Errorf("failed to list pending images: %w", err)
	}

	var downloaded, failed atomic.Int64
	outcomes := ForEach(ctx, images, o.opts.DownloadConcurrency, func(ctx context.Context, image *entity.Image) error {
		status, err := o.Downloader.Download(ctx, *image)
		if err != nil {
			return err
		}
		if status == entity.StatusActive {
			downloaded.Add(1)
		} else {
			failed.Add(1)
		}
		return nil
	})

	for _, outcome := range outcomes {
		if outcome.Err == nil {
			continue
		}
		failed.Add(1)
		o.Logger.Error("Error saving image",
			zap.Int64("image_id", outcome.Item.ID),
			zap.String("url", outcome.Item.URL),
			zap.Error(outcome.Err),
		)
	}

	summary.ImagesDownloaded = int(downloaded.Load())
	summary.ImagesFailed = int(failed.Load())
	return nil
}

// emit hands the items to every target concurrently and waits for all of them.
// A failing target never suppresses the others.
func (o *runOrchestrator) emit(ctx context.Context, items []entity.ReportItem, summary *entity.RunSummary) {
	if len(items) == 0 {
		o.Logger.Info("No new matches, skipping report")
		return
	}

	outcomes := ForEach(ctx, o.Emitters, len(o.Emitters), func(ctx context.Context, e Emitter) error {
		return e.Emit(ctx, items)
	})

	for _, outcome := range outcomes {
		name := outcome.Item.Name()
		if outcome.Err != nil {
			summary.EmitFailures = append(summary.EmitFailures, name)
			o.Metrics.EmissionsTotal.WithLabelValues(name, "failure").Inc()
			o.Logger.Error("Error emitting report", zap.String("target", name), zap.Error(outcome.Err))
			continue
		}
		summary.Emitted = append(summary.Emitted, name)
		o.Metrics.EmissionsTotal.WithLabelValues(name, "success").Inc()
	}
}
