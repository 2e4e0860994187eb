package repository

import (
	"context"

	"github.com/user/imagewatch/internal/entity"
)

// LinkRepository defines the persistence contract for discovered links.
type LinkRepository interface {
	// InsertLink creates a Pending link. Returns ErrDuplicateKey if (sourceID, url) exists.
	InsertLink(ctx context.Context, sourceID int64, url, title string) (int64, error)
	// InsertLinkWithImage creates a Pending link and its Pending image in one unit of work.
	// Either both rows exist afterwards or neither does. Returns ErrDuplicateKey if the
	// link already exists for the source.
	InsertLinkWithImage(ctx context.Context, item entity.NewItem) (linkID, imageID int64, err error)
	ListLinksByStatus(ctx context.Context, status entity.Status) ([]*entity.Link, error)
	// UpdateLinkStatusAndContent records enrichment results for a link.
	UpdateLinkStatusAndContent(ctx context.Context, id int64, title, text string, status entity.Status) error
}
