package memory

import (
	"context"
	"sort"
	"sync"

	"meme-launchpad/internal/domain"
	"meme-launchpad/internal/storage"
)

// TransactionStore is an in-memory implementation of storage.TransactionStore.
// Append-only: records are never updated or deleted.
type TransactionStore struct {
	mu     sync.RWMutex
	nextID int64
	bySig  map[string]*domain.Transaction
}

// NewTransactionStore creates a new in-memory transaction store.
func NewTransactionStore() *TransactionStore {
	return &TransactionStore{
		nextID: 1,
		bySig:  make(map[string]*domain.Transaction),
	}
}

// Insert appends an execution record. Returns ErrDuplicateKey if the ledger
// signature already exists.
func (s *TransactionStore) Insert(_ context.Context, tx *domain.Transaction) error {
	if tx == nil || tx.TokenID == "" || tx.Signature == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.insertLocked(tx)
}

// insertLocked appends under an already-held lock. Shared with the
// in-memory trade committer.
func (s *TransactionStore) insertLocked(tx *domain.Transaction) error {
	if _, exists := s.bySig[tx.Signature]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *tx
	copy.ID = s.nextID
	s.nextID++
	s.bySig[copy.Signature] = &copy
	tx.ID = copy.ID
	return nil
}

// GetByToken retrieves all transactions for a token, ordered by created_at ASC, id ASC.
func (s *TransactionStore) GetByToken(_ context.Context, tokenID string) ([]*domain.Transaction, error) {
	return s.collect(func(tx *domain.Transaction) bool {
		return tx.TokenID == tokenID
	})
}

// GetByTokenSince retrieves transactions for a token with created_at >= since.
func (s *TransactionStore) GetByTokenSince(_ context.Context, tokenID string, since int64) ([]*domain.Transaction, error) {
	return s.collect(func(tx *domain.Transaction) bool {
		return tx.TokenID == tokenID && tx.CreatedAt >= since
	})
}

// GetByUserAndToken retrieves one user's transactions for a token.
func (s *TransactionStore) GetByUserAndToken(_ context.Context, userAddress, tokenID string) ([]*domain.Transaction, error) {
	return s.collect(func(tx *domain.Transaction) bool {
		return tx.UserAddress == userAddress && tx.TokenID == tokenID
	})
}

// collect returns matching transactions ordered by created_at ASC, id ASC.
func (s *TransactionStore) collect(match func(*domain.Transaction) bool) ([]*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Transaction
	for _, tx := range s.bySig {
		if match(tx) {
			copy := *tx
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

var _ storage.TransactionStore = (*TransactionStore)(nil)
