package postgres

import (
	"context"
	"fmt"

	"meme-launchpad/internal/storage"
)

// TradeCommitter implements storage.TradeCommitter using a single PostgreSQL
// transaction spanning the token update, the transaction insert and the
// creator fee upsert. Either all three land or none do.
type TradeCommitter struct {
	pool *Pool
}

// NewTradeCommitter creates a new TradeCommitter.
func NewTradeCommitter(pool *Pool) *TradeCommitter {
	return &TradeCommitter{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeCommitter = (*TradeCommitter)(nil)

// CommitTrade applies the mutation atomically.
func (c *TradeCommitter) CommitTrade(ctx context.Context, m *storage.TradeMutation) error {
	if m == nil || m.Transaction == nil {
		return storage.ErrInvalidInput
	}

	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin trade commit: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE tokens
		SET current_supply = $2, price = $3, market_cap = $4,
		    is_graduated = $5, graduated_at = COALESCE($6, graduated_at),
		    updated_at = $7
		WHERE id = $1
	`,
		m.TokenID, m.State.CurrentSupply, m.State.Price, m.State.MarketCap,
		m.State.IsGraduated, m.State.GraduatedAt, m.Now,
	)
	if err != nil {
		return fmt.Errorf("update token in trade commit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO transactions (
			token_id, user_address, type, amount, sol_amount, price, signature, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		m.Transaction.TokenID, m.Transaction.UserAddress, m.Transaction.Type,
		m.Transaction.Amount, m.Transaction.SolAmount, m.Transaction.Price,
		m.Transaction.Signature, m.Transaction.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert transaction in trade commit: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO creator_fees (creator_address, token_address, total_fees, claimed_fees, created_at, updated_at)
		VALUES ($1, $2, $3, 0, $4, $4)
		ON CONFLICT (creator_address, token_address)
		DO UPDATE SET total_fees = creator_fees.total_fees + EXCLUDED.total_fees,
		              updated_at = EXCLUDED.updated_at
	`,
		m.FeeCreator, m.FeeToken, m.FeeDelta, m.Now,
	)
	if err != nil {
		return fmt.Errorf("upsert creator fee in trade commit: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit trade: %w", err)
	}

	return nil
}
