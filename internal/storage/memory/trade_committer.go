package memory

import (
	"context"
	"sync"

	"meme-launchpad/internal/storage"
)

// TradeCommitter implements storage.TradeCommitter over the in-memory
// stores. A committer-level mutex makes the cross-store mutation atomic
// with respect to other commits.
type TradeCommitter struct {
	mu     sync.Mutex
	tokens *TokenStore
	txs    *TransactionStore
	fees   *CreatorFeeStore
}

// NewTradeCommitter creates a committer over the given in-memory stores.
func NewTradeCommitter(tokens *TokenStore, txs *TransactionStore, fees *CreatorFeeStore) *TradeCommitter {
	return &TradeCommitter{tokens: tokens, txs: txs, fees: fees}
}

// Compile-time interface check.
var _ storage.TradeCommitter = (*TradeCommitter)(nil)

// CommitTrade applies the mutation atomically. The duplicate-signature check
// runs before any store is touched so a rejected commit leaves no state.
func (c *TradeCommitter) CommitTrade(ctx context.Context, m *storage.TradeMutation) error {
	if m == nil || m.Transaction == nil {
		return storage.ErrInvalidInput
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Lock all three stores for the duration of the commit.
	c.tokens.mu.Lock()
	defer c.tokens.mu.Unlock()
	c.txs.mu.Lock()
	defer c.txs.mu.Unlock()
	c.fees.mu.Lock()
	defer c.fees.mu.Unlock()

	if _, exists := c.tokens.data[m.TokenID]; !exists {
		return storage.ErrNotFound
	}
	if _, exists := c.txs.bySig[m.Transaction.Signature]; exists {
		return storage.ErrDuplicateKey
	}

	if err := c.txs.insertLocked(m.Transaction); err != nil {
		return err
	}
	if err := c.tokens.updateCurveStateLocked(m.TokenID, m.State, m.Now); err != nil {
		return err
	}
	c.fees.upsertIncrementLocked(m.FeeCreator, m.FeeToken, m.FeeDelta, m.Now)

	return nil
}
