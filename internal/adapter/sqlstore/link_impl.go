package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/user/imagewatch/internal/entity"
	"github.com/user/imagewatch/internal/repository"
)

const (
	insertLinkQuery = `
		INSERT INTO links (source_id, url, title, status, last_updated)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`
	insertImageQuery = `
		INSERT INTO images (link_id, source_id, url, status, last_updated)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`
)

type linkRow struct {
	ID          int64  `db:"id"`
	SourceID    int64  `db:"source_id"`
	URL         string `db:"url"`
	Title       string `db:"title"`
	Text        string `db:"text"`
	Status      int    `db:"status"`
	LastUpdated int64  `db:"last_updated"`
}

func (r linkRow) toEntity() (*entity.Link, error) {
	status, err := statusFromCode(r.Status)
	if err != nil {
		return nil, fmt.Errorf("link %d: %w", r.ID, err)
	}
	return &entity.Link{
		ID:          r.ID,
		SourceID:    r.SourceID,
		URL:         r.URL,
		Title:       r.Title,
		Text:        r.Text,
		Status:      status,
		LastUpdated: fromMillis(r.LastUpdated),
	}, nil
}

// InsertLink creates a Pending link on its own.
func (s *Store) InsertLink(ctx context.Context, sourceID int64, url, title string) (int64, error) {
	var id int64
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(insertLinkQuery),
		sourceID, url, title, statusCodePending, s.stamp(),
	).Scan(&id)
	if err != nil {
		return 0, mapInsertErr(err, "link "+url)
	}
	return id, nil
}

// InsertLinkWithImage creates a Pending link and its Pending image inside one transaction.
func (s *Store) InsertLinkWithImage(ctx context.Context, item entity.NewItem) (int64, int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: failed to begin transaction: %w", repository.ErrPersistence, err)
	}
	defer tx.Rollback()

	now := s.stamp()

	var linkID int64
	err = tx.QueryRowxContext(ctx, tx.Rebind(insertLinkQuery),
		item.SourceID, item.LinkURL, item.LinkTitle, statusCodePending, now,
	).Scan(&linkID)
	if err != nil {
		return 0, 0, mapInsertErr(err, "link "+item.LinkURL)
	}

	var imageID int64
	err = tx.QueryRowxContext(ctx, tx.Rebind(insertImageQuery),
		linkID, item.SourceID, item.ImageURL, statusCodePending, now,
	).Scan(&imageID)
	if err != nil {
		return 0, 0, mapInsertErr(err, "image "+item.ImageURL)
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("%w: failed to commit link %s: %w", repository.ErrPersistence, item.LinkURL, err)
	}
	return linkID, imageID, nil
}

// ListLinksByStatus returns links in the given status ordered by ID.
func (s *Store) ListLinksByStatus(ctx context.Context, status entity.Status) ([]*entity.Link, error) {
	code, err := statusToCode(status)
	if err != nil {
		return nil, err
	}

	var rows []linkRow
	query := s.db.Rebind(`
		SELECT id, source_id, url, title, text, status, last_updated
		FROM links
		WHERE status = ?
		ORDER BY id`)
	if err := s.db.SelectContext(ctx, &rows, query, code); err != nil {
		return nil, fmt.Errorf("failed to list %s links: %w", status, err)
	}

	links := make([]*entity.Link, 0, len(rows))
	for _, row := range rows {
		link, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	return links, nil
}

// UpdateLinkStatusAndContent records enrichment output for a link.
func (s *Store) UpdateLinkStatusAndContent(ctx context.Context, id int64, title, text string, status entity.Status) error {
	if !entity.StatusPending.CanTransitionTo(status) {
		return fmt.Errorf("link %d to %s: %w", id, status, repository.ErrInvalidStatusTransition)
	}
	code, err := statusToCode(status)
	if err != nil {
		return err
	}

	query := s.db.Rebind(`
		UPDATE links
		SET title = ?, text = ?, status = ?, last_updated = ?
		WHERE id = ? AND status IN (?, ?)`)
	result, err := s.db.ExecContext(ctx, query, title, text, code, s.stamp(), id, statusCodePending, code)
	if err = execRequireRows(result, err, errNoRowsChanged); err != nil {
		return s.explainStatusMiss(ctx, "links", id, status, err)
	}
	return nil
}

var errNoRowsChanged = errors.New("no rows changed")

// explainStatusMiss turns a zero-row status update into ErrNotFound or
// ErrInvalidStatusTransition depending on whether the row exists.
func (s *Store) explainStatusMiss(ctx context.Context, table string, id int64, status entity.Status, err error) error {
	if !errors.Is(err, errNoRowsChanged) {
		return fmt.Errorf("%w: failed to update %s %d: %w", repository.ErrPersistence, table, id, err)
	}

	var exists int
	query := s.db.Rebind(`SELECT COUNT(*) FROM ` + table + ` WHERE id = ?`)
	if err := s.db.GetContext(ctx, &exists, query, id); err != nil {
		return fmt.Errorf("%w: failed to look up %s %d: %w", repository.ErrPersistence, table, id, err)
	}
	if exists == 0 {
		return fmt.Errorf("%s %d: %w", table, id, repository.ErrNotFound)
	}
	return fmt.Errorf("%s %d to %s: %w", table, id, status, repository.ErrInvalidStatusTransition)
}
