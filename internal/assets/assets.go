// Package assets hosts token images and metadata blobs. Only the token
// creation path uses it; trading never touches assets.
package assets

import (
	"context"
	"errors"
)

// ErrUnsupportedMediaType is returned for mime types the host rejects.
var ErrUnsupportedMediaType = errors.New("unsupported media type")

// ErrEmptyAsset is returned when the payload is empty.
var ErrEmptyAsset = errors.New("empty asset payload")

// Host stores an asset and returns a stable URL for it.
type Host interface {
	Store(ctx context.Context, data []byte, mimeType string) (string, error)
}

// Mime types accepted for token images and banners.
var acceptedMimeTypes = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}
