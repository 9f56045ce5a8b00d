package storage

import (
	"context"

	"meme-launchpad/internal/domain"
)

// TokenStore provides access to tokens storage.
type TokenStore interface {
	// Insert adds a new token. Returns ErrDuplicateKey if the id, symbol,
	// name or curve address already exists.
	Insert(ctx context.Context, t *domain.Token) error

	// GetByID retrieves a token by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.Token, error)

	// GetByCurveAddress retrieves a token by its bonding curve account
	// address. Returns ErrNotFound if not exists.
	GetByCurveAddress(ctx context.Context, curveAddress string) (*domain.Token, error)

	// ExistsBySymbolOrName reports whether any token already uses the symbol
	// or the name. Used for uniqueness checks before creation.
	ExistsBySymbolOrName(ctx context.Context, symbol, name string) (bool, error)

	// UpdateCurveState replaces the mutable curve fields of a token and
	// bumps updated_at. Returns ErrNotFound if the token does not exist.
	UpdateCurveState(ctx context.Context, id string, state domain.CurveState, updatedAt int64) error

	// List retrieves tokens ordered by market cap DESC, newest first on ties.
	List(ctx context.Context, limit, offset int) ([]*domain.Token, error)
}

// TransactionStore provides access to transactions storage. Append-only:
// records are never updated or deleted.
type TransactionStore interface {
	// Insert appends an execution record. Returns ErrDuplicateKey if the
	// ledger signature already exists.
	Insert(ctx context.Context, tx *domain.Transaction) error

	// GetByToken retrieves all transactions for a token, ordered by
	// created_at ASC, id ASC.
	GetByToken(ctx context.Context, tokenID string) ([]*domain.Transaction, error)

	// GetByTokenSince retrieves transactions for a token with
	// created_at >= since, ordered by created_at ASC, id ASC.
	GetByTokenSince(ctx context.Context, tokenID string, since int64) ([]*domain.Transaction, error)

	// GetByUserAndToken retrieves one user's transactions for a token,
	// ordered by created_at ASC, id ASC.
	GetByUserAndToken(ctx context.Context, userAddress, tokenID string) ([]*domain.Transaction, error)
}

// WatchlistStore provides access to watchlist storage.
type WatchlistStore interface {
	// Add inserts a watchlist entry. Returns ErrDuplicateKey if the
	// (user, token) pair already exists.
	Add(ctx context.Context, e *domain.WatchlistEntry) error

	// Remove deletes the entry for the pair. Returns ErrNotFound if absent.
	Remove(ctx context.Context, userAddress, tokenID string) error

	// ListByUser retrieves a user's entries, newest first.
	ListByUser(ctx context.Context, userAddress string) ([]*domain.WatchlistEntry, error)
}

// CreatorFeeStore provides access to creator_fees storage.
type CreatorFeeStore interface {
	// Get retrieves the accrual row for a (creator, token) pair.
	// Returns ErrNotFound if no fees have ever accrued.
	Get(ctx context.Context, creatorAddress, tokenAddress string) (*domain.CreatorFee, error)

	// ListByCreator retrieves all accrual rows for a creator.
	ListByCreator(ctx context.Context, creatorAddress string) ([]*domain.CreatorFee, error)

	// UpsertIncrement adds delta to total_fees for the pair, creating the
	// row if absent. The increment is commutative and needs no external
	// serialization.
	UpsertIncrement(ctx context.Context, creatorAddress, tokenAddress string, delta float64, now int64) error

	// MarkClaimed adds amount to claimed_fees and sets last_claimed_at.
	// Returns ErrInvalidInput if the claim would exceed total_fees and
	// ErrNotFound if the row does not exist.
	MarkClaimed(ctx context.Context, creatorAddress, tokenAddress string, amount float64, claimedAt int64) error
}

// PricePointStore provides access to the price_history materialized view.
type PricePointStore interface {
	// InsertBulk adds multiple buckets. Fails the batch on an intra-batch
	// duplicate (token_id, interval_seconds, bucket_start).
	InsertBulk(ctx context.Context, points []*domain.PricePoint) error

	// GetByTokenRange retrieves buckets for a token at one granularity
	// within [start, end] (inclusive), ordered by bucket_start ASC.
	GetByTokenRange(ctx context.Context, tokenID string, intervalSeconds int, start, end int64) ([]*domain.PricePoint, error)

	// DeleteByToken removes all buckets for a token at one granularity.
	// Used by backfill before rewriting the view.
	DeleteByToken(ctx context.Context, tokenID string, intervalSeconds int) error
}

// TradeMutation is the full set of state changes produced by one settled
// trade. CommitTrade applies it as a single atomic unit: a trade is never
// observable with the token updated but the transaction record missing, or
// vice versa.
type TradeMutation struct {
	TokenID     string
	State       domain.CurveState   // post-trade curve state
	Transaction *domain.Transaction // execution record to append
	FeeCreator  string              // creator_fees key
	FeeToken    string              // creator_fees key (curve address)
	FeeDelta    float64             // SOL added to total_fees
	Now         int64               // settle timestamp (ms)
}

// TradeCommitter applies a TradeMutation atomically. Returns
// ErrDuplicateKey if the transaction signature already exists (the whole
// mutation is rolled back) and ErrNotFound if the token is missing.
type TradeCommitter interface {
	CommitTrade(ctx context.Context, m *TradeMutation) error
}
