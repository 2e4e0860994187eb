package entity

import "time"

// ReportItem is one row of the incremental report: an eligible Link joined
// with its Image and owning Source.
type ReportItem struct {
	Title       string
	URL         string
	LastUpdated time.Time
	ImageID     int64
	SourceTitle string
	SourceURL   string
}
