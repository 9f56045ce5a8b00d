package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"meme-launchpad/internal/domain"
	"meme-launchpad/internal/storage"
)

// TransactionStore implements storage.TransactionStore using PostgreSQL.
// The transactions table is append-only.
type TransactionStore struct {
	pool *Pool
}

// NewTransactionStore creates a new TransactionStore.
func NewTransactionStore(pool *Pool) *TransactionStore {
	return &TransactionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TransactionStore = (*TransactionStore)(nil)

// Insert appends an execution record. Returns ErrDuplicateKey if the ledger
// signature already exists.
func (s *TransactionStore) Insert(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions (
			token_id, user_address, type, amount, sol_amount, price, signature, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		tx.TokenID, tx.UserAddress, tx.Type,
		tx.Amount, tx.SolAmount, tx.Price, tx.Signature, tx.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByToken retrieves all transactions for a token, ordered by created_at ASC, id ASC.
func (s *TransactionStore) GetByToken(ctx context.Context, tokenID string) ([]*domain.Transaction, error) {
	query := `
		SELECT id, token_id, user_address, type, amount, sol_amount, price, signature, created_at
		FROM transactions
		WHERE token_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, tokenID)
	if err != nil {
		return nil, fmt.Errorf("get transactions by token: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// GetByTokenSince retrieves transactions for a token with created_at >= since.
func (s *TransactionStore) GetByTokenSince(ctx context.Context, tokenID string, since int64) ([]*domain.Transaction, error) {
	query := `
		SELECT id, token_id, user_address, type, amount, sol_amount, price, signature, created_at
		FROM transactions
		WHERE token_id = $1 AND created_at >= $2
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, tokenID, since)
	if err != nil {
		return nil, fmt.Errorf("get transactions since: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// GetByUserAndToken retrieves one user's transactions for a token.
func (s *TransactionStore) GetByUserAndToken(ctx context.Context, userAddress, tokenID string) ([]*domain.Transaction, error) {
	query := `
		SELECT id, token_id, user_address, type, amount, sol_amount, price, signature, created_at
		FROM transactions
		WHERE user_address = $1 AND token_id = $2
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, userAddress, tokenID)
	if err != nil {
		return nil, fmt.Errorf("get transactions by user and token: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// scanTransactions scans multiple rows into a slice of Transaction.
func scanTransactions(rows pgx.Rows) ([]*domain.Transaction, error) {
	var txs []*domain.Transaction

	for rows.Next() {
		var tx domain.Transaction

		err := rows.Scan(
			&tx.ID, &tx.TokenID, &tx.UserAddress, &tx.Type,
			&tx.Amount, &tx.SolAmount, &tx.Price, &tx.Signature, &tx.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}

		txs = append(txs, &tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}

	return txs, nil
}
