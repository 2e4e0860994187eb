package entity

import "time"

// SourceType is the classification policy applied to a source's candidates.
type SourceType string

const (
	SourceTypeImagesAndLinks SourceType = "images-and-links"
	SourceTypeImagesOnly     SourceType = "images-only"
	SourceTypeLinksOnly      SourceType = "links-only"
)

// Valid reports whether t is a recognized policy.
func (t SourceType) Valid() bool {
	switch t {
	case SourceTypeImagesAndLinks, SourceTypeImagesOnly, SourceTypeLinksOnly:
		return true
	default:
		return false
	}
}

// Source mirrors the `sources` table: a configured origin that gets polled each run.
type Source struct {
	ID    int64
	Title string
	URL   string
	Type  SourceType
	// LastUpdated is the last poll attempt; zero when the source was never polled.
	LastUpdated time.Time
}
