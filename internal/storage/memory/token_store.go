package memory

import (
	"context"
	"sort"
	"sync"

	"meme-launchpad/internal/domain"
	"meme-launchpad/internal/storage"
)

// TokenStore is an in-memory implementation of storage.TokenStore.
type TokenStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Token // keyed by token id
}

// NewTokenStore creates a new in-memory token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{
		data: make(map[string]*domain.Token),
	}
}

// Insert adds a new token. Returns ErrDuplicateKey if the id, symbol, name
// or curve address already exists.
func (s *TokenStore) Insert(_ context.Context, t *domain.Token) error {
	if t == nil || t.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[t.ID]; exists {
		return storage.ErrDuplicateKey
	}
	for _, existing := range s.data {
		if existing.Symbol == t.Symbol || existing.Name == t.Name || existing.CurveAddress == t.CurveAddress {
			return storage.ErrDuplicateKey
		}
	}

	copy := *t
	s.data[t.ID] = &copy
	return nil
}

// GetByID retrieves a token by its ID. Returns ErrNotFound if not exists.
func (s *TokenStore) GetByID(_ context.Context, id string) (*domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *t
	return &copy, nil
}

// GetByCurveAddress retrieves a token by its bonding curve account address.
func (s *TokenStore) GetByCurveAddress(_ context.Context, curveAddress string) (*domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.data {
		if t.CurveAddress == curveAddress {
			copy := *t
			return &copy, nil
		}
	}

	return nil, storage.ErrNotFound
}

// ExistsBySymbolOrName reports whether any token already uses the symbol or name.
func (s *TokenStore) ExistsBySymbolOrName(_ context.Context, symbol, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.data {
		if t.Symbol == symbol || t.Name == name {
			return true, nil
		}
	}

	return false, nil
}

// UpdateCurveState replaces the mutable curve fields and bumps updated_at.
func (s *TokenStore) UpdateCurveState(_ context.Context, id string, state domain.CurveState, updatedAt int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.updateCurveStateLocked(id, state, updatedAt)
}

// updateCurveStateLocked applies the update under an already-held lock.
// Shared with the in-memory trade committer.
func (s *TokenStore) updateCurveStateLocked(id string, state domain.CurveState, updatedAt int64) error {
	t, exists := s.data[id]
	if !exists {
		return storage.ErrNotFound
	}

	t.CurrentSupply = state.CurrentSupply
	t.Price = state.Price
	t.MarketCap = state.MarketCap
	t.IsGraduated = state.IsGraduated
	if state.GraduatedAt != nil {
		at := *state.GraduatedAt
		t.GraduatedAt = &at
	}
	t.UpdatedAt = updatedAt
	return nil
}

// List retrieves tokens ordered by market cap DESC, newest first on ties.
func (s *TokenStore) List(_ context.Context, limit, offset int) ([]*domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*domain.Token, 0, len(s.data))
	for _, t := range s.data {
		copy := *t
		all = append(all, &copy)
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].MarketCap != all[j].MarketCap {
			return all[i].MarketCap > all[j].MarketCap
		}
		return all[i].CreatedAt > all[j].CreatedAt
	})

	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}

	return all, nil
}

var _ storage.TokenStore = (*TokenStore)(nil)
