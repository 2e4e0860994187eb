package repository

import (
	"context"

	"github.com/user/imagewatch/internal/entity"
)

// ImageRepository defines the persistence contract for discovered images.
type ImageRepository interface {
	InsertImage(ctx context.Context, linkID, sourceID int64, url string) (int64, error)
	ListImagesByStatus(ctx context.Context, status entity.Status) ([]*entity.Image, error)
	// UpdateImageStatus moves an image to a terminal status and refreshes its timestamp.
	UpdateImageStatus(ctx context.Context, id int64, status entity.Status) error
}
