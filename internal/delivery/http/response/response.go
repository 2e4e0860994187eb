package response

import (
	"time"

	"github.com/user/imagewatch/internal/entity"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}

// ReportItemResponse is a DTO for one report row, mirroring entity.ReportItem.
type ReportItemResponse struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	LastUpdated time.Time `json:"last_updated"`
	ImageID     int64     `json:"image_id"`
	SourceTitle string    `json:"source_title"`
	SourceURL   string    `json:"source_url"`
}

type LatestReportResponse struct {
	Since   time.Time            `json:"since"`
	Matches int                  `json:"matches"`
	Items   []ReportItemResponse `json:"items"`
}

type RunResponse struct {
	StartedAt        time.Time `json:"started_at"`
	Watermark        time.Time `json:"watermark"`
	DurationMS       int64     `json:"duration_ms"`
	Skipped          bool      `json:"skipped"`
	SourcesPolled    int       `json:"sources_polled"`
	SourcesFailed    int       `json:"sources_failed"`
	NewItems         int       `json:"new_items"`
	ImagesDownloaded int       `json:"images_downloaded"`
	ImagesFailed     int       `json:"images_failed"`
	Matches          int       `json:"matches"`
	Emitted          []string  `json:"emitted"`
	EmitFailures     []string  `json:"emit_failures,omitempty"`
}

func NewLatestReportResponse(since time.Time, items []entity.ReportItem) LatestReportResponse {
	out := make([]ReportItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, ReportItemResponse{
			Title:       item.Title,
			URL:         item.URL,
			LastUpdated: item.LastUpdated,
			ImageID:     item.ImageID,
			SourceTitle: item.SourceTitle,
			SourceURL:   item.SourceURL,
		})
	}
	return LatestReportResponse{Since: since, Matches: len(out), Items: out}
}

func NewRunResponse(s *entity.RunSummary) RunResponse {
	emitted := s.Emitted
	if emitted == nil {
		emitted = []string{}
	}
	return RunResponse{
		StartedAt:        s.StartedAt,
		Watermark:        s.Watermark,
		DurationMS:       s.Duration.Milliseconds(),
		Skipped:          s.Skipped,
		SourcesPolled:    s.SourcesPolled,
		SourcesFailed:    s.SourcesFailed,
		NewItems:         s.NewItems,
		ImagesDownloaded: s.ImagesDownloaded,
		ImagesFailed:     s.ImagesFailed,
		Matches:          s.Matches,
		Emitted:          emitted,
		EmitFailures:     s.EmitFailures,
	}
}
