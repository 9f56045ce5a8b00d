package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meme-launchpad/internal/domain"
	"meme-launchpad/internal/storage"
)

func TestTokenStore_InsertAndGetByID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTokenStore(pool)
	ctx := context.Background()

	token := testToken("a")
	token.Website = "https://example.com"
	token.Twitter = "@example"
	token.RugScore = 35

	err := store.Insert(ctx, token)
	require.NoError(t, err)

	retrieved, err := store.GetByID(ctx, token.ID)
	require.NoError(t, err)

	assert.Equal(t, token.ID, retrieved.ID)
	assert.Equal(t, token.Name, retrieved.Name)
	assert.Equal(t, token.Symbol, retrieved.Symbol)
	assert.Equal(t, token.CreatorAddress, retrieved.CreatorAddress)
	assert.Equal(t, token.MintAddress, retrieved.MintAddress)
	assert.Equal(t, token.CurveAddress, retrieved.CurveAddress)
	assert.Equal(t, token.Website, retrieved.Website)
	assert.Equal(t, token.Twitter, retrieved.Twitter)
	assert.Equal(t, token.TotalSupply, retrieved.TotalSupply)
	assert.Equal(t, token.Price, retrieved.Price)
	assert.Equal(t, token.RugScore, retrieved.RugScore)
	assert.False(t, retrieved.IsGraduated)
	assert.Nil(t, retrieved.GraduatedAt)
}

func TestTokenStore_GetByIDNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTokenStore(pool)

	_, err := store.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTokenStore_InsertDuplicateSymbol(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTokenStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testToken("a")))

	dup := testToken("b")
	dup.Symbol = "TKa"
	err := store.Insert(ctx, dup)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestTokenStore_GetByCurveAddress(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTokenStore(pool)
	ctx := context.Background()

	token := testToken("a")
	require.NoError(t, store.Insert(ctx, token))

	retrieved, err := store.GetByCurveAddress(ctx, token.CurveAddress)
	require.NoError(t, err)
	assert.Equal(t, token.ID, retrieved.ID)

	_, err = store.GetByCurveAddress(ctx, "curve-missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTokenStore_ExistsBySymbolOrName(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTokenStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testToken("a")))

	exists, err := store.ExistsBySymbolOrName(ctx, "TKa", "something else")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.ExistsBySymbolOrName(ctx, "OTHER", "Token a")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.ExistsBySymbolOrName(ctx, "OTHER", "something else")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTokenStore_UpdateCurveState(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTokenStore(pool)
	ctx := context.Background()

	token := testToken("a")
	require.NoError(t, store.Insert(ctx, token))

	state := domain.CurveState{
		CurrentSupply: 50_000_000,
		Price:         0.00000005,
		MarketCap:     2.5,
	}
	require.NoError(t, store.UpdateCurveState(ctx, token.ID, state, 1704067300000))

	retrieved, err := store.GetByID(ctx, token.ID)
	require.NoError(t, err)
	assert.Equal(t, state.CurrentSupply, retrieved.CurrentSupply)
	assert.Equal(t, state.Price, retrieved.Price)
	assert.Equal(t, state.MarketCap, retrieved.MarketCap)
	assert.False(t, retrieved.IsGraduated)
	assert.Equal(t, int64(1704067300000), retrieved.UpdatedAt)
}

func TestTokenStore_UpdateCurveStateGraduation(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTokenStore(pool)
	ctx := context.Background()

	token := testToken("a")
	require.NoError(t, store.Insert(ctx, token))

	graduatedAt := int64(1704067400000)
	state := domain.CurveState{
		CurrentSupply: 800_000_000,
		Price:         0.00011,
		MarketCap:     31.0,
		IsGraduated:   true,
		GraduatedAt:   &graduatedAt,
	}
	require.NoError(t, store.UpdateCurveState(ctx, token.ID, state, graduatedAt))

	retrieved, err := store.GetByID(ctx, token.ID)
	require.NoError(t, err)
	assert.True(t, retrieved.IsGraduated)
	require.NotNil(t, retrieved.GraduatedAt)
	assert.Equal(t, graduatedAt, *retrieved.GraduatedAt)

	// A later update without GraduatedAt must not clear the timestamp.
	state.GraduatedAt = nil
	state.MarketCap = 32.0
	require.NoError(t, store.UpdateCurveState(ctx, token.ID, state, graduatedAt+1000))

	retrieved, err = store.GetByID(ctx, token.ID)
	require.NoError(t, err)
	require.NotNil(t, retrieved.GraduatedAt)
	assert.Equal(t, graduatedAt, *retrieved.GraduatedAt)
}

func TestTokenStore_UpdateCurveStateNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTokenStore(pool)

	err := store.UpdateCurveState(context.Background(), "missing", domain.CurveState{}, 1)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTokenStore_ListOrderedByMarketCap(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTokenStore(pool)
	ctx := context.Background()

	caps := map[string]float64{"a": 5.0, "b": 25.0, "c": 1.0}
	for suffix, mcap := range caps {
		token := testToken(suffix)
		token.MarketCap = mcap
		require.NoError(t, store.Insert(ctx, token))
	}

	tokens, err := store.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, tokens, 3)
	assert.Equal(t, "token-b", tokens[0].ID)
	assert.Equal(t, "token-a", tokens[1].ID)
	assert.Equal(t, "token-c", tokens[2].ID)

	// Pagination
	page, err := store.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "token-a", page[0].ID)
}
