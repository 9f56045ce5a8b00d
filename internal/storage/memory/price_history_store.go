package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"meme-launchpad/internal/domain"
	"meme-launchpad/internal/storage"
)

// PriceHistoryStore is an in-memory implementation of storage.PricePointStore.
type PriceHistoryStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PricePoint // keyed by composite key
}

// NewPriceHistoryStore creates a new in-memory price history store.
func NewPriceHistoryStore() *PriceHistoryStore {
	return &PriceHistoryStore{
		data: make(map[string]*domain.PricePoint),
	}
}

// bucketKey generates a unique key for a price bucket.
func bucketKey(tokenID string, intervalSeconds int, bucketStart int64) string {
	return fmt.Sprintf("%s|%d|%d", tokenID, intervalSeconds, bucketStart)
}

// InsertBulk adds multiple buckets. Fails entire batch on any duplicate.
func (s *PriceHistoryStore) InsertBulk(_ context.Context, points []*domain.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// First pass: check for duplicates (existing + intra-batch)
	batchKeys := make(map[string]struct{}, len(points))
	for _, p := range points {
		if p == nil || p.TokenID == "" {
			return storage.ErrInvalidInput
		}
		key := bucketKey(p.TokenID, p.IntervalSeconds, p.BucketStart)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	// Second pass: insert all
	for _, p := range points {
		key := bucketKey(p.TokenID, p.IntervalSeconds, p.BucketStart)
		copy := *p
		s.data[key] = &copy
	}

	return nil
}

// GetByTokenRange retrieves buckets within [start, end], ordered by bucket_start ASC.
func (s *PriceHistoryStore) GetByTokenRange(_ context.Context, tokenID string, intervalSeconds int, start, end int64) ([]*domain.PricePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PricePoint
	for _, p := range s.data {
		if p.TokenID == tokenID && p.IntervalSeconds == intervalSeconds &&
			p.BucketStart >= start && p.BucketStart <= end {
			copy := *p
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].BucketStart < result[j].BucketStart
	})

	return result, nil
}

// DeleteByToken removes all buckets for a token at one granularity.
func (s *PriceHistoryStore) DeleteByToken(_ context.Context, tokenID string, intervalSeconds int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, p := range s.data {
		if p.TokenID == tokenID && p.IntervalSeconds == intervalSeconds {
			delete(s.data, key)
		}
	}

	return nil
}

var _ storage.PricePointStore = (*PriceHistoryStore)(nil)
