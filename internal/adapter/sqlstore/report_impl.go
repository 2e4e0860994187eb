package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/user/imagewatch/internal/entity"
)

type reportRow struct {
	Title       string `db:"title"`
	URL         string `db:"url"`
	LastUpdated int64  `db:"last_updated"`
	ImageID     int64  `db:"image_id"`
	SourceTitle string `db:"source_title"`
	SourceURL   string `db:"source_url"`
}

// SelectReportItems returns eligible link/image pairs updated at or after watermark.
func (s *Store) SelectReportItems(ctx context.Context, watermark time.Time) ([]entity.ReportItem, error) {
	query := s.db.Rebind(`
		SELECT
			links.title AS title,
			links.url AS url,
			links.last_updated AS last_updated,
			images.id AS image_id,
			sources.title AS source_title,
			sources.url AS source_url
		FROM links
		INNER JOIN images ON images.link_id = links.id
		INNER JOIN sources ON sources.id = links.source_id
		WHERE links.status = ?
			AND images.status = ?
			AND images.last_updated >= ?
		ORDER BY links.last_updated DESC, links.id ASC`)

	var rows []reportRow
	if err := s.db.SelectContext(ctx, &rows, query, statusCodeActive, statusCodeActive, toMillis(watermark)); err != nil {
		return nil, fmt.Errorf("failed to select report items: %w", err)
	}

	items := make([]entity.ReportItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, entity.ReportItem{
			Title:       row.Title,
			URL:         row.URL,
			LastUpdated: fromMillis(row.LastUpdated),
			ImageID:     row.ImageID,
			SourceTitle: row.SourceTitle,
			SourceURL:   row.SourceURL,
		})
	}
	return items, nil
}
