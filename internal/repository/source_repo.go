package repository

import (
	"context"

	"github.com/user/imagewatch/internal/entity"
)

// SourceRepository defines the persistence contract for configured sources.
type SourceRepository interface {
	// InsertSource stores a source keyed by URL. An existing row keeps its ID and
	// poll time but takes the new title and type.
	InsertSource(ctx context.Context, source *entity.Source) (int64, error)
	// ListSources returns every configured source ordered by ID.
	ListSources(ctx context.Context) ([]*entity.Source, error)
	// UpdateSourcePollTime stamps the source's last poll attempt with the current time.
	UpdateSourcePollTime(ctx context.Context, sourceID int64) error
}
