package postgres

import (
	"context"
	"fmt"

	"meme-launchpad/internal/domain"
	"meme-launchpad/internal/storage"
)

// CreatorFeeStore implements storage.CreatorFeeStore using PostgreSQL.
type CreatorFeeStore struct {
	pool *Pool
}

// NewCreatorFeeStore creates a new CreatorFeeStore.
func NewCreatorFeeStore(pool *Pool) *CreatorFeeStore {
	return &CreatorFeeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CreatorFeeStore = (*CreatorFeeStore)(nil)

// Get retrieves the accrual row for a (creator, token) pair.
func (s *CreatorFeeStore) Get(ctx context.Context, creatorAddress, tokenAddress string) (*domain.CreatorFee, error) {
	query := `
		SELECT id, creator_address, token_address, total_fees, claimed_fees,
		       last_claimed_at, created_at, updated_at
		FROM creator_fees
		WHERE creator_address = $1 AND token_address = $2
	`

	var f domain.CreatorFee
	err := s.pool.QueryRow(ctx, query, creatorAddress, tokenAddress).Scan(
		&f.ID, &f.CreatorAddress, &f.TokenAddress, &f.TotalFees, &f.ClaimedFees,
		&f.LastClaimedAt, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get creator fee: %w", err)
	}

	return &f, nil
}

// ListByCreator retrieves all accrual rows for a creator.
func (s *CreatorFeeStore) ListByCreator(ctx context.Context, creatorAddress string) ([]*domain.CreatorFee, error) {
	query := `
		SELECT id, creator_address, token_address, total_fees, claimed_fees,
		       last_claimed_at, created_at, updated_at
		FROM creator_fees
		WHERE creator_address = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, creatorAddress)
	if err != nil {
		return nil, fmt.Errorf("list creator fees: %w", err)
	}
	defer rows.Close()

	var fees []*domain.CreatorFee
	for rows.Next() {
		var f domain.CreatorFee
		err := rows.Scan(
			&f.ID, &f.CreatorAddress, &f.TokenAddress, &f.TotalFees, &f.ClaimedFees,
			&f.LastClaimedAt, &f.CreatedAt, &f.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan creator fee row: %w", err)
		}
		fees = append(fees, &f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate creator fee rows: %w", err)
	}

	return fees, nil
}

// UpsertIncrement adds delta to total_fees for the pair, creating the row if
// absent. The increment is a single statement so concurrent trades against
// the same token never lose an update.
func (s *CreatorFeeStore) UpsertIncrement(ctx context.Context, creatorAddress, tokenAddress string, delta float64, now int64) error {
	query := `
		INSERT INTO creator_fees (creator_address, token_address, total_fees, claimed_fees, created_at, updated_at)
		VALUES ($1, $2, $3, 0, $4, $4)
		ON CONFLICT (creator_address, token_address)
		DO UPDATE SET total_fees = creator_fees.total_fees + EXCLUDED.total_fees,
		              updated_at = EXCLUDED.updated_at
	`

	if _, err := s.pool.Exec(ctx, query, creatorAddress, tokenAddress, delta, now); err != nil {
		return fmt.Errorf("upsert creator fee increment: %w", err)
	}
	return nil
}

// MarkClaimed adds amount to claimed_fees and sets last_claimed_at. The
// claimed_fees <= total_fees invariant is enforced in the WHERE clause.
func (s *CreatorFeeStore) MarkClaimed(ctx context.Context, creatorAddress, tokenAddress string, amount float64, claimedAt int64) error {
	query := `
		UPDATE creator_fees
		SET claimed_fees = claimed_fees + $3,
		    last_claimed_at = $4,
		    updated_at = $4
		WHERE creator_address = $1 AND token_address = $2
		  AND claimed_fees + $3 <= total_fees
	`

	tag, err := s.pool.Exec(ctx, query, creatorAddress, tokenAddress, amount, claimedAt)
	if err != nil {
		return fmt.Errorf("mark fees claimed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a missing row from an over-claim.
		if _, getErr := s.Get(ctx, creatorAddress, tokenAddress); getErr != nil {
			return getErr
		}
		return storage.ErrInvalidInput
	}
	return nil
}
