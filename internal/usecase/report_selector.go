package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/user/imagewatch/internal/entity"
	"github.com/user/imagewatch/internal/repository"
)

// ReportSelector picks the report items surfaced since a watermark.
type ReportSelector interface {
	// SelectSince never returns a nil slice; an empty window is not an error.
	SelectSince(ctx context.Context, watermark time.Time) ([]entity.ReportItem, error)
}

type reportSelector struct {
	reportRepo repository.ReportRepository
}

// NewReportSelector creates a new instance of the report selector.
func NewReportSelector(reportRepo repository.ReportRepository) ReportSelector {
	return &reportSelector{reportRepo: reportRepo}
}

func (uc *reportSelector) SelectSince(ctx context.Context, watermark time.Time) ([]entity.ReportItem, error) {
	items, err := uc.reportRepo.SelectReportItems(ctx, watermark)
	if err != nil {
		return nil, fmt.Errorf("failed to select report items since %s: %w", watermark.Format(time.RFC3339), err)
	}
	if items == nil {
		items = []entity.ReportItem{}
	}
	return items, nil
}
