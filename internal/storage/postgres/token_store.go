package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"meme-launchpad/internal/domain"
	"meme-launchpad/internal/storage"
)

// TokenStore implements storage.TokenStore using PostgreSQL.
type TokenStore struct {
	pool *Pool
}

// NewTokenStore creates a new TokenStore.
func NewTokenStore(pool *Pool) *TokenStore {
	return &TokenStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TokenStore = (*TokenStore)(nil)

const tokenColumns = `
	id, name, symbol, creator_address, mint_address, curve_address,
	description, image_url, banner_url, website, twitter, telegram,
	total_supply, current_supply, price, market_cap,
	is_graduated, graduated_at, rug_score, created_at, updated_at
`

// Insert adds a new token. Returns ErrDuplicateKey if the id, symbol, name
// or curve address already exists.
func (s *TokenStore) Insert(ctx context.Context, t *domain.Token) error {
	query := `
		INSERT INTO tokens (
			id, name, symbol, creator_address, mint_address, curve_address,
			description, image_url, banner_url, website, twitter, telegram,
			total_supply, current_supply, price, market_cap,
			is_graduated, graduated_at, rug_score, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21
		)
	`

	_, err := s.pool.Exec(ctx, query,
		t.ID, t.Name, t.Symbol, t.CreatorAddress, t.MintAddress, t.CurveAddress,
		t.Description, t.ImageURL, t.BannerURL, t.Website, t.Twitter, t.Telegram,
		t.TotalSupply, t.CurrentSupply, t.Price, t.MarketCap,
		t.IsGraduated, t.GraduatedAt, t.RugScore, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}

// GetByID retrieves a token by its ID. Returns ErrNotFound if not exists.
func (s *TokenStore) GetByID(ctx context.Context, id string) (*domain.Token, error) {
	query := `SELECT ` + tokenColumns + ` FROM tokens WHERE id = $1`

	row := s.pool.QueryRow(ctx, query, id)
	return scanToken(row)
}

// GetByCurveAddress retrieves a token by its bonding curve account address.
func (s *TokenStore) GetByCurveAddress(ctx context.Context, curveAddress string) (*domain.Token, error) {
	query := `SELECT ` + tokenColumns + ` FROM tokens WHERE curve_address = $1`

	row := s.pool.QueryRow(ctx, query, curveAddress)
	return scanToken(row)
}

// ExistsBySymbolOrName reports whether any token already uses the symbol or name.
func (s *TokenStore) ExistsBySymbolOrName(ctx context.Context, symbol, name string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM tokens WHERE symbol = $1 OR name = $2)`

	var exists bool
	if err := s.pool.QueryRow(ctx, query, symbol, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("check symbol or name exists: %w", err)
	}
	return exists, nil
}

// UpdateCurveState replaces the mutable curve fields and bumps updated_at.
func (s *TokenStore) UpdateCurveState(ctx context.Context, id string, state domain.CurveState, updatedAt int64) error {
	query := `
		UPDATE tokens
		SET current_supply = $2, price = $3, market_cap = $4,
		    is_graduated = $5, graduated_at = COALESCE($6, graduated_at),
		    updated_at = $7
		WHERE id = $1
	`

	tag, err := s.pool.Exec(ctx, query,
		id, state.CurrentSupply, state.Price, state.MarketCap,
		state.IsGraduated, state.GraduatedAt, updatedAt,
	)
	if err != nil {
		return fmt.Errorf("update curve state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// List retrieves tokens ordered by market cap DESC, newest first on ties.
func (s *TokenStore) List(ctx context.Context, limit, offset int) ([]*domain.Token, error) {
	query := `
		SELECT ` + tokenColumns + `
		FROM tokens
		ORDER BY market_cap DESC, created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := s.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}
	defer rows.Close()

	var tokens []*domain.Token
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate token rows: %w", err)
	}

	return tokens, nil
}

// scanToken scans a single row into a Token.
func scanToken(row pgx.Row) (*domain.Token, error) {
	var t domain.Token

	err := row.Scan(
		&t.ID, &t.Name, &t.Symbol, &t.CreatorAddress, &t.MintAddress, &t.CurveAddress,
		&t.Description, &t.ImageURL, &t.BannerURL, &t.Website, &t.Twitter, &t.Telegram,
		&t.TotalSupply, &t.CurrentSupply, &t.Price, &t.MarketCap,
		&t.IsGraduated, &t.GraduatedAt, &t.RugScore, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("scan token row: %w", err)
	}

	return &t, nil
}
