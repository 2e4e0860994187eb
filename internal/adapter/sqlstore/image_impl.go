package sqlstore

import (
	"context"
	"fmt"

	"github.com/user/imagewatch/internal/entity"
	"github.com/user/imagewatch/internal/repository"
)

type imageRow struct {
	ID          int64  `db:"id"`
	LinkID      int64  `db:"link_id"`
	SourceID    int64  `db:"source_id"`
	URL         string `db:"url"`
	Status      int    `db:"status"`
	LastUpdated int64  `db:"last_updated"`
}

func (r imageRow) toEntity() (*entity.Image, error) {
	status, err := statusFromCode(r.Status)
	if err != nil {
		return nil, fmt.Errorf("image %d: %w", r.ID, err)
	}
	return &entity.Image{
		ID:          r.ID,
		LinkID:      r.LinkID,
		SourceID:    r.SourceID,
		URL:         r.URL,
		Status:      status,
		LastUpdated: fromMillis(r.LastUpdated),
	}, nil
}

// InsertImage creates a Pending image for an existing link.
func (s *Store) InsertImage(ctx context.Context, linkID, sourceID int64, url string) (int64, error) {
	var id int64
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(insertImageQuery),
		linkID, sourceID, url, statusCodePending, s.stamp(),
	).Scan(&id)
	if err != nil {
		return 0, mapInsertErr(err, "image "+url)
	}
	return id, nil
}

// ListImagesByStatus returns images in the given status across all sources, ordered by ID.
func (s *Store) ListImagesByStatus(ctx context.Context, status entity.Status) ([]*entity.Image, error) {
	code, err := statusToCode(status)
	if err != nil {
		return nil, err
	}

	var rows []imageRow
	query := s.db.Rebind(`
		SELECT id, link_id, source_id, url, status, last_updated
		FROM images
		WHERE status = ?
		ORDER BY id`)
	if err := s.db.SelectContext(ctx, &rows, query, code); err != nil {
		return nil, fmt.Errorf("failed to list %s images: %w", status, err)
	}

	images := make([]*entity.Image, 0, len(rows))
	for _, row := range rows {
		image, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		images = append(images, image)
	}
	return images, nil
}

// UpdateImageStatus moves an image to a terminal status.
func (s *Store) UpdateImageStatus(ctx context.Context, id int64, status entity.Status) error {
	if !entity.StatusPending.CanTransitionTo(status) {
		return fmt.Errorf("images %d to %s: %w", id, status, repository.ErrInvalidStatusTransition)
	}
	code, err := statusToCode(status)
	if err != nil {
		return err
	}

	query := s.db.Rebind(`
		UPDATE images
		SET status = ?, last_updated = ?
		WHERE id = ? AND status IN (?, ?)`)
	result, err := s.db.ExecContext(ctx, query, code, s.stamp(), id, statusCodePending, code)
	if err = execRequireRows(result, err, errNoRowsChanged); err != nil {
		return s.explainStatusMiss(ctx, "images", id, status, err)
	}
	return nil
}
