package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/user/imagewatch/internal/entity"
	"github.com/user/imagewatch/internal/repository"
)

const (
	EmitterArtifact     = "artifact"
	EmitterNotification = "notification"

	// subjectDateLayout renders dates like "Thu Oct 15 2026".
	subjectDateLayout = "Mon Jan 02 2006"
)

// Emitter is one report emission target.
type Emitter interface {
	Name() string
	Emit(ctx context.Context, items []entity.ReportItem) error
}

type artifactEmitter struct {
	renderer repository.ReportRenderer
	writer   repository.ArtifactWriter
	logger   *zap.Logger
}

// NewArtifactEmitter creates an emitter that renders the report and writes it to disk.
func NewArtifactEmitter(renderer repository.ReportRenderer, writer repository.ArtifactWriter, logger *zap.Logger) Emitter {
	return &artifactEmitter{renderer: renderer, writer: writer, logger: logger}
}

func (e *artifactEmitter) Name() string { return EmitterArtifact }

func (e *artifactEmitter) Emit(ctx context.Context, items []entity.ReportItem) error {
	e.logger.Info("Generating report...")

	document, err := e.renderer.Render(items)
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	location, err := e.writer.Write(ctx, document)
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	e.logger.Info("Report written", zap.String("location", location), zap.Int("matches", len(items)))
	return nil
}

type notificationEmitter struct {
	renderer repository.ReportRenderer
	notifier repository.Notifier
	to       string
	from     string
	now      func() time.Time
	logger   *zap.Logger
}

// NewNotificationEmitter creates an emitter that mails the rendered report.
func NewNotificationEmitter(
	renderer repository.ReportRenderer,
	notifier repository.Notifier,
	to, from string,
	now func() time.Time,
	logger *zap.Logger,
) Emitter {
	return &notificationEmitter{
		renderer: renderer,
		notifier: notifier,
		to:       to,
		from:     from,
		now:      now,
		logger:   logger,
	}
}

func (e *notificationEmitter) Name() string { return EmitterNotification }

func (e *notificationEmitter) Emit(ctx context.Context, items []entity.ReportItem) error {
	e.logger.Info("Sending email report...")

	document, err := e.renderer.Render(items)
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	notification := repository.Notification{
		To:      e.to,
		From:    e.from,
		Subject: NotificationSubject(e.now(), len(items)),
		Body:    string(document),
	}
	if err := e.notifier.Send(ctx, notification); err != nil {
		return fmt.Errorf("failed to send report to %s: %w", e.to, err)
	}

	e.logger.Info("Email report sent", zap.String("to", e.to), zap.Int("matches", len(items)))
	return nil
}

// NotificationSubject formats the subject line of a report notification.
func NotificationSubject(date time.Time, matches int) string {
	return fmt.Sprintf("Report: %s, %d matches", date.Format(subjectDateLayout), matches)
}
