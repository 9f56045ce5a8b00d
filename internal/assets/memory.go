package assets

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
)

// MemoryHost is a content-addressed in-memory asset host. Identical payloads
// map to identical URLs, so re-uploading an image is idempotent.
type MemoryHost struct {
	baseURL string

	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryHost creates a host that serves URLs under baseURL.
func NewMemoryHost(baseURL string) *MemoryHost {
	return &MemoryHost{
		baseURL: baseURL,
		blobs:   make(map[string][]byte),
	}
}

// Compile-time interface check.
var _ Host = (*MemoryHost)(nil)

// Store saves the payload and returns its content-addressed URL.
func (h *MemoryHost) Store(_ context.Context, data []byte, mimeType string) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyAsset
	}
	ext, ok := acceptedMimeTypes[mimeType]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMediaType, mimeType)
	}

	sum := sha256.Sum256(data)
	key := hex.EncodeToString(sum[:16])

	h.mu.Lock()
	h.blobs[key] = data
	h.mu.Unlock()

	return fmt.Sprintf("%s/%s.%s", h.baseURL, key, ext), nil
}

// Get retrieves a stored payload by its key. Returns false if absent.
func (h *MemoryHost) Get(key string) ([]byte, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	data, ok := h.blobs[key]
	return data, ok
}
