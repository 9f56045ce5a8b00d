package domain

// WatchlistEntry marks a token a user is following.
// Corresponds to watchlist table in PostgreSQL, unique per (user, token) pair.
type WatchlistEntry struct {
	ID          int64  // BIGSERIAL primary key
	UserAddress string // wallet address
	TokenID     string // FK to tokens
	CreatedAt   int64  // Unix timestamp in milliseconds
}
