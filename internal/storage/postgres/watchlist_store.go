package postgres

import (
	"context"
	"fmt"

	"meme-launchpad/internal/domain"
	"meme-launchpad/internal/storage"
)

// WatchlistStore implements storage.WatchlistStore using PostgreSQL.
type WatchlistStore struct {
	pool *Pool
}

// NewWatchlistStore creates a new WatchlistStore.
func NewWatchlistStore(pool *Pool) *WatchlistStore {
	return &WatchlistStore{pool: pool}
}

// Compile-time interface check.
var _ storage.WatchlistStore = (*WatchlistStore)(nil)

// Add inserts a watchlist entry. Returns ErrDuplicateKey if the pair exists.
func (s *WatchlistStore) Add(ctx context.Context, e *domain.WatchlistEntry) error {
	query := `
		INSERT INTO watchlist (user_address, token_id, created_at)
		VALUES ($1, $2, $3)
	`

	_, err := s.pool.Exec(ctx, query, e.UserAddress, e.TokenID, e.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert watchlist entry: %w", err)
	}
	return nil
}

// Remove deletes the entry for the pair. Returns ErrNotFound if absent.
func (s *WatchlistStore) Remove(ctx context.Context, userAddress, tokenID string) error {
	query := `DELETE FROM watchlist WHERE user_address = $1 AND token_id = $2`

	tag, err := s.pool.Exec(ctx, query, userAddress, tokenID)
	if err != nil {
		return fmt.Errorf("delete watchlist entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListByUser retrieves a user's entries, newest first.
func (s *WatchlistStore) ListByUser(ctx context.Context, userAddress string) ([]*domain.WatchlistEntry, error) {
	query := `
		SELECT id, user_address, token_id, created_at
		FROM watchlist
		WHERE user_address = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := s.pool.Query(ctx, query, userAddress)
	if err != nil {
		return nil, fmt.Errorf("list watchlist by user: %w", err)
	}
	defer rows.Close()

	var entries []*domain.WatchlistEntry
	for rows.Next() {
		var e domain.WatchlistEntry
		if err := rows.Scan(&e.ID, &e.UserAddress, &e.TokenID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan watchlist row: %w", err)
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate watchlist rows: %w", err)
	}

	return entries, nil
}
