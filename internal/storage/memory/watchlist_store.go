package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"meme-launchpad/internal/domain"
	"meme-launchpad/internal/storage"
)

// WatchlistStore is an in-memory implementation of storage.WatchlistStore.
type WatchlistStore struct {
	mu     sync.RWMutex
	nextID int64
	data   map[string]*domain.WatchlistEntry // keyed by (user, token) pair
}

// NewWatchlistStore creates a new in-memory watchlist store.
func NewWatchlistStore() *WatchlistStore {
	return &WatchlistStore{
		nextID: 1,
		data:   make(map[string]*domain.WatchlistEntry),
	}
}

// pairKey generates a unique key for a watchlist pair.
func pairKey(userAddress, tokenID string) string {
	return fmt.Sprintf("%s|%s", userAddress, tokenID)
}

// Add inserts a watchlist entry. Returns ErrDuplicateKey if the pair exists.
func (s *WatchlistStore) Add(_ context.Context, e *domain.WatchlistEntry) error {
	if e == nil || e.UserAddress == "" || e.TokenID == "" {
		return storage.ErrInvalidInput
	}

	key := pairKey(e.UserAddress, e.TokenID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *e
	copy.ID = s.nextID
	s.nextID++
	s.data[key] = &copy
	e.ID = copy.ID
	return nil
}

// Remove deletes the entry for the pair. Returns ErrNotFound if absent.
func (s *WatchlistStore) Remove(_ context.Context, userAddress, tokenID string) error {
	key := pairKey(userAddress, tokenID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[key]; !exists {
		return storage.ErrNotFound
	}

	delete(s.data, key)
	return nil
}

// ListByUser retrieves a user's entries, newest first.
func (s *WatchlistStore) ListByUser(_ context.Context, userAddress string) ([]*domain.WatchlistEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.WatchlistEntry
	for _, e := range s.data {
		if e.UserAddress == userAddress {
			copy := *e
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt > result[j].CreatedAt
		}
		return result[i].ID > result[j].ID
	})

	return result, nil
}

var _ storage.WatchlistStore = (*WatchlistStore)(nil)
