package memory

import (
	"context"
	"sort"
	"sync"

	"meme-launchpad/internal/domain"
	"meme-launchpad/internal/storage"
)

// CreatorFeeStore is an in-memory implementation of storage.CreatorFeeStore.
type CreatorFeeStore struct {
	mu     sync.RWMutex
	nextID int64
	data   map[string]*domain.CreatorFee // keyed by (creator, token) pair
}

// NewCreatorFeeStore creates a new in-memory creator fee store.
func NewCreatorFeeStore() *CreatorFeeStore {
	return &CreatorFeeStore{
		nextID: 1,
		data:   make(map[string]*domain.CreatorFee),
	}
}

// Get retrieves the accrual row for a (creator, token) pair.
func (s *CreatorFeeStore) Get(_ context.Context, creatorAddress, tokenAddress string) (*domain.CreatorFee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, exists := s.data[pairKey(creatorAddress, tokenAddress)]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *f
	if f.LastClaimedAt != nil {
		at := *f.LastClaimedAt
		copy.LastClaimedAt = &at
	}
	return &copy, nil
}

// ListByCreator retrieves all accrual rows for a creator.
func (s *CreatorFeeStore) ListByCreator(_ context.Context, creatorAddress string) ([]*domain.CreatorFee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.CreatorFee
	for _, f := range s.data {
		if f.CreatorAddress == creatorAddress {
			copy := *f
			if f.LastClaimedAt != nil {
				at := *f.LastClaimedAt
				copy.LastClaimedAt = &at
			}
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt < result[j].CreatedAt
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// UpsertIncrement adds delta to total_fees for the pair, creating the row if absent.
func (s *CreatorFeeStore) UpsertIncrement(_ context.Context, creatorAddress, tokenAddress string, delta float64, now int64) error {
	if creatorAddress == "" || tokenAddress == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.upsertIncrementLocked(creatorAddress, tokenAddress, delta, now)
	return nil
}

// upsertIncrementLocked applies the increment under an already-held lock.
// Shared with the in-memory trade committer.
func (s *CreatorFeeStore) upsertIncrementLocked(creatorAddress, tokenAddress string, delta float64, now int64) {
	key := pairKey(creatorAddress, tokenAddress)

	if f, exists := s.data[key]; exists {
		f.TotalFees += delta
		f.UpdatedAt = now
		return
	}

	s.data[key] = &domain.CreatorFee{
		ID:             s.nextID,
		CreatorAddress: creatorAddress,
		TokenAddress:   tokenAddress,
		TotalFees:      delta,
		ClaimedFees:    0,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.nextID++
}

// MarkClaimed adds amount to claimed_fees and sets last_claimed_at.
// Returns ErrInvalidInput if the claim would exceed total_fees.
func (s *CreatorFeeStore) MarkClaimed(_ context.Context, creatorAddress, tokenAddress string, amount float64, claimedAt int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, exists := s.data[pairKey(creatorAddress, tokenAddress)]
	if !exists {
		return storage.ErrNotFound
	}
	if f.ClaimedFees+amount > f.TotalFees {
		return storage.ErrInvalidInput
	}

	f.ClaimedFees += amount
	at := claimedAt
	f.LastClaimedAt = &at
	f.UpdatedAt = claimedAt
	return nil
}

var _ storage.CreatorFeeStore = (*CreatorFeeStore)(nil)
