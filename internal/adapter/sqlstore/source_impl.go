package sqlstore

import (
	"context"
	"fmt"

	"github.com/user/imagewatch/internal/entity"
	"github.com/user/imagewatch/internal/repository"
)

type sourceRow struct {
	ID          int64  `db:"id"`
	Title       string `db:"title"`
	URL         string `db:"url"`
	Type        string `db:"type"`
	LastUpdated int64  `db:"last_updated"`
}

func (r sourceRow) toEntity() *entity.Source {
	return &entity.Source{
		ID:          r.ID,
		Title:       r.Title,
		URL:         r.URL,
		Type:        entity.SourceType(r.Type),
		LastUpdated: fromMillis(r.LastUpdated),
	}
}

// InsertSource stores a source keyed by URL, refreshing title and type on conflict.
func (s *Store) InsertSource(ctx context.Context, source *entity.Source) (int64, error) {
	query := s.db.Rebind(`
		INSERT INTO sources (title, url, type)
		VALUES (?, ?, ?)
		ON CONFLICT (url) DO UPDATE SET
			title = excluded.title,
			type = excluded.type
		RETURNING id`)

	var id int64
	if err := s.db.QueryRowxContext(ctx, query, source.Title, source.URL, string(source.Type)).Scan(&id); err != nil {
		return 0, fmt.Errorf("%w: failed to insert source %s: %w", repository.ErrPersistence, source.URL, err)
	}
	source.ID = id
	return id, nil
}

// ListSources returns every source ordered by ID.
func (s *Store) ListSources(ctx context.Context) ([]*entity.Source, error) {
	var rows []sourceRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, title, url, type, last_updated FROM sources ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}

	sources := make([]*entity.Source, 0, len(rows))
	for _, row := range rows {
		sources = append(sources, row.toEntity())
	}
	return sources, nil
}

// UpdateSourcePollTime stamps a source's last poll attempt.
func (s *Store) UpdateSourcePollTime(ctx context.Context, sourceID int64) error {
	query := s.db.Rebind(`UPDATE sources SET last_updated = ? WHERE id = ?`)
	result, err := s.db.ExecContext(ctx, query, s.stamp(), sourceID)
	if err = execRequireRows(result, err, repository.ErrNotFound); err != nil {
		return fmt.Errorf("failed to update poll time for source %d: %w", sourceID, err)
	}
	return nil
}
