package repository

import (
	"context"
	"time"

	"github.com/user/imagewatch/internal/entity"
)

// ReportRepository selects report rows.
type ReportRepository interface {
	// SelectReportItems returns every Active link whose Active image was updated at or
	// after watermark, newest link first and link ID ascending on ties.
	SelectReportItems(ctx context.Context, watermark time.Time) ([]entity.ReportItem, error)
}
