// Package storage removes page image artifacts from object storage.
package storage

import (
	"context"

	"epaper-app/internal/domain/media"
)

// ImageDeleter removes every stored rendition of a page image.
type ImageDeleter interface {
	DeletePageImages(ctx context.Context, img media.PageImage) error
}

// NoopDeleter is used when no object storage is configured.
type NoopDeleter struct{}

func (NoopDeleter) DeletePageImages(context.Context, media.PageImage) error { return nil }
