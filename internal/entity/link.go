package entity

import "time"

// Link mirrors the `links` table. (SourceID, URL) is unique.
type Link struct {
	ID          int64
	SourceID    int64
	URL         string
	Title       string
	Text        string
	Status      Status
	LastUpdated time.Time
}
