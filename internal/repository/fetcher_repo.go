package repository

import (
	"context"

	"github.com/user/imagewatch/internal/entity"
)

// PageFetcher retrieves the raw bytes behind a URL.
type PageFetcher interface {
	// Fetch returns the response body. Failures are reported as *FetchError.
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Extractor turns a fetched document into candidates.
type Extractor interface {
	ExtractCandidates(baseURL string, document []byte) ([]entity.Candidate, error)
	ExtractTitleAndText(document []byte) (entity.PageMeta, error)
}
