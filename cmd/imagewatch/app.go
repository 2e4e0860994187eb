package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/user/imagewatch/internal/adapter/chromedp_crawler"
	"github.com/user/imagewatch/internal/adapter/filestore"
	"github.com/user/imagewatch/internal/adapter/goquery_extractor"
	"github.com/user/imagewatch/internal/adapter/htmlreport"
	"github.com/user/imagewatch/internal/adapter/httpfetch"
	"github.com/user/imagewatch/internal/adapter/redis"
	"github.com/user/imagewatch/internal/adapter/s3store"
	"github.com/user/imagewatch/internal/adapter/ses"
	"github.com/user/imagewatch/internal/adapter/sourcesfile"
	"github.com/user/imagewatch/internal/adapter/sqlstore"
	"github.com/user/imagewatch/internal/repository"
	"github.com/user/imagewatch/internal/usecase"
	"github.com/user/imagewatch/pkg/config"
	"github.com/user/imagewatch/pkg/logger"
	"github.com/user/imagewatch/pkg/metrics"
)

const pushJobName = "imagewatch"

// app holds everything a command needs, wired from configuration.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    *sqlstore.Store
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	selector usecase.ReportSelector
	runner   usecase.Runner

	closers []func() error
}

// newApp loads configuration and wires every component. Targets are required for
// commands that emit reports.
func newApp(ctx context.Context, envFile string, requireTargets bool) (*app, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	validate := cfg.Validate
	if requireTargets {
		validate = cfg.ValidateRun
	}
	if err := validate(); err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", repository.ErrConfiguration, err)
	}

	a := &app{cfg: cfg, logger: log}
	if err := a.wire(ctx); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) wire(ctx context.Context) error {
	cfg := a.cfg

	store, err := sqlstore.Open(ctx, cfg.DBDriver, cfg.DBPath)
	if err != nil {
		return err
	}
	a.store = store
	a.closers = append(a.closers, store.Close)
	a.logger.Info("Record store ready", zap.String("driver", cfg.DBDriver))

	if cfg.SourcesFile != "" {
		sources, err := sourcesfile.Load(cfg.SourcesFile)
		if err != nil {
			return err
		}
		if err := usecase.NewSourceSyncer(store, a.logger).Sync(ctx, sources); err != nil {
			return err
		}
	}

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.metrics = metrics.New(a.registry)

	httpFetcher, err := httpfetch.NewFetcher(httpfetch.Options{
		Timeout:   cfg.FetchTimeout,
		UserAgent: cfg.UserAgent,
		RateLimit: cfg.FetchRateLimit,
	})
	if err != nil {
		return err
	}

	var pageFetcher repository.PageFetcher = httpFetcher
	if cfg.RenderJS {
		userAgent := cfg.UserAgent
		if userAgent == "" {
			userAgent = httpfetch.DefaultUserAgent
		}
		renderer := chromedp_crawler.NewChromedpFetcher(userAgent, cfg.FetchTimeout, a.logger)
		a.closers = append(a.closers, func() error { renderer.Close(); return nil })
		pageFetcher = renderer
	}

	assets, err := a.assetStore(ctx)
	if err != nil {
		return err
	}

	emitters, err := a.emitters(ctx)
	if err != nil {
		return err
	}

	lock, err := a.runLock(ctx)
	if err != nil {
		return err
	}

	a.selector = usecase.NewReportSelector(store)
	a.runner = usecase.NewRunOrchestrator(usecase.RunDeps{
		SourceRepo: store,
		ImageRepo:  store,
		Ingestor:   usecase.NewSourceIngestor(pageFetcher, goquery_extractor.NewExtractor(), store, store, a.metrics, a.logger),
		Downloader: usecase.NewAssetDownloader(httpFetcher, assets, store, a.metrics, a.logger),
		Selector:   a.selector,
		Emitters:   emitters,
		Lock:       lock,
		Metrics:    a.metrics,
		Logger:     a.logger,
	}, usecase.RunOptions{
		SourceConcurrency:   cfg.SourceConcurrency,
		DownloadConcurrency: cfg.DownloadConcurrency,
		LockTTL:             cfg.RunLockTTL,
	})
	return nil
}

func (a *app) awsConfig(ctx context.Context) (aws.Config, error) {
	cfg, err := s3store.LoadAWSConfig(ctx, a.cfg.AWSRegion, s3store.Credentials{
		AccessKeyID:     a.cfg.AWSAccessKeyID,
		SecretAccessKey: a.cfg.AWSSecretAccessKey,
	})
	if err != nil {
		return aws.Config{}, fmt.Errorf("%w: %w", repository.ErrConfiguration, err)
	}
	return cfg, nil
}

func (a *app) assetStore(ctx context.Context) (repository.AssetStore, error) {
	if a.cfg.AssetS3Bucket != "" {
		awsCfg, err := a.awsConfig(ctx)
		if err != nil {
			return nil, err
		}
		a.logger.Info("Storing images in S3", zap.String("bucket", a.cfg.AssetS3Bucket))
		return s3store.NewAssetStore(awsCfg, a.cfg.AssetS3Bucket, a.cfg.AssetS3Prefix), nil
	}
	return filestore.NewAssetStore(a.cfg.ImagesDir)
}

func (a *app) emitters(ctx context.Context) ([]usecase.Emitter, error) {
	renderer, err := htmlreport.NewRenderer(a.cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", repository.ErrConfiguration, err)
	}

	var emitters []usecase.Emitter
	if a.cfg.ArtifactEnabled() {
		writer := htmlreport.NewWriter(a.cfg.ReportsDir, nil)
		emitters = append(emitters, usecase.NewArtifactEmitter(renderer, writer, a.logger))
	}
	if a.cfg.NotificationEnabled() {
		awsCfg, err := a.awsConfig(ctx)
		if err != nil {
			return nil, err
		}
		notifier := ses.NewNotifier(awsCfg)
		emitters = append(emitters, usecase.NewNotificationEmitter(renderer, notifier, a.cfg.EmailTo, a.cfg.EmailFrom, time.Now, a.logger))
	}
	return emitters, nil
}

func (a *app) runLock(ctx context.Context) (repository.RunLock, error) {
	if a.cfg.RedisAddr == "" {
		return nil, nil
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     a.cfg.RedisAddr,
		Password: a.cfg.RedisPassword,
		DB:       a.cfg.RedisDB,
	})
	a.closers = append(a.closers, client.Close)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("unable to connect to redis at %s: %w", a.cfg.RedisAddr, err)
	}
	a.logger.Info("Redis run lock enabled", zap.String("addr", a.cfg.RedisAddr))
	return redis.NewRunLock(client, a.cfg.DBDriver+":"+a.cfg.DBPath), nil
}

// pushMetrics sends the registry to the Pushgateway when one is configured.
func (a *app) pushMetrics(ctx context.Context) {
	if a.cfg.PushgatewayURL == "" {
		return
	}
	if err := metrics.Push(ctx, a.cfg.PushgatewayURL, pushJobName, a.registry); err != nil {
		a.logger.Warn("Failed to push metrics", zap.Error(err))
	}
}

func (a *app) close() {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	if err := errors.Join(errs...); err != nil {
		a.logger.Warn("Failed to release resources", zap.Error(err))
	}
	_ = a.logger.Sync()
}
