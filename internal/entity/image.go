package entity

import "time"

// PlaceholderImageURL marks an Image synthesized for a links-only source.
// It has no payload and is never downloaded.
const PlaceholderImageURL = "placeholder"

// Image mirrors the `images` table. Every Image belongs to exactly one Link.
type Image struct {
	ID          int64
	LinkID      int64
	SourceID    int64
	URL         string
	Status      Status
	LastUpdated time.Time
}

// IsPlaceholder reports whether the image carries the placeholder sentinel URL.
func (i Image) IsPlaceholder() bool {
	return i.URL == PlaceholderImageURL
}
