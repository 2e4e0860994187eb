package entity

import "time"

// RunPhase names a step of a single run. Phases execute strictly in order.
type RunPhase string

const (
	RunPhaseStart                   RunPhase = "start"
	RunPhasePollSources             RunPhase = "poll_sources"
	RunPhaseDownloadPendingAssets   RunPhase = "download_pending_assets"
	RunPhaseSelectIncrementalWindow RunPhase = "select_incremental_window"
	RunPhaseEmit                    RunPhase = "emit"
	RunPhaseEnd                     RunPhase = "end"
)

// IngestResult summarizes one source's ingest call.
type IngestResult struct {
	SourceID   int64
	Candidates int
	Kept       int
	NewItems   int
	Duplicates int
	Failed     int
}

// RunSummary is what a run reports back once it ends.
type RunSummary struct {
	StartedAt        time.Time
	Watermark        time.Time
	Duration         time.Duration
	Skipped          bool
	SourcesPolled    int
	SourcesFailed    int
	NewItems         int
	ImagesDownloaded int
	ImagesFailed     int
	Matches          int
	Emitted          []string
	EmitFailures     []string
}
