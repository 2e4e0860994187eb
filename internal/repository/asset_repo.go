package repository

import "context"

// AssetStore persists downloaded image payloads keyed by image ID.
type AssetStore interface {
	Save(ctx context.Context, imageID int64, data []byte) error
}
