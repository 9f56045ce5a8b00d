package holders

import (
	"testing"

	"meme-launchpad/internal/domain"
)

func tx(addr, typ string, amount, sol float64, at int64) *domain.Transaction {
	return &domain.Transaction{
		TokenID:     "tok1",
		UserAddress: addr,
		Type:        typ,
		Amount:      amount,
		SolAmount:   sol,
		CreatedAt:   at,
	}
}

func TestBuild_NetBalance(t *testing.T) {
	txs := []*domain.Transaction{
		tx("addr1", domain.TxTypeBuy, 100, 0.01, 1000),
		tx("addr1", domain.TxTypeBuy, 50, 0.005, 2000),
		tx("addr1", domain.TxTypeSell, 30, 0.004, 3000),
	}

	holders := Build(txs, 0.0001, 1_000_000)
	if len(holders) != 1 {
		t.Fatalf("expected 1 holder, got %d", len(holders))
	}

	h := holders[0]
	if h.Balance != 120 {
		t.Errorf("Balance = %.0f, want 120", h.Balance)
	}
	if h.TotalBought != 150 || h.TotalSold != 30 {
		t.Errorf("bought/sold = %.0f/%.0f, want 150/30", h.TotalBought, h.TotalSold)
	}
	if h.FirstBuyAt != 1000 {
		t.Errorf("FirstBuyAt = %d, want 1000", h.FirstBuyAt)
	}
	if h.LastActivityAt != 3000 {
		t.Errorf("LastActivityAt = %d, want 3000", h.LastActivityAt)
	}

	wantAvgBuy := 0.015 / 150
	if !almostEqual(h.AverageBuyPrice, wantAvgBuy) {
		t.Errorf("AverageBuyPrice = %v, want %v", h.AverageBuyPrice, wantAvgBuy)
	}
	wantAvgSell := 0.004 / 30
	if !almostEqual(h.AverageSellPrice, wantAvgSell) {
		t.Errorf("AverageSellPrice = %v, want %v", h.AverageSellPrice, wantAvgSell)
	}
	if !almostEqual(h.UnrealizedPNL, (0.0001-wantAvgBuy)*120) {
		t.Errorf("UnrealizedPNL = %v", h.UnrealizedPNL)
	}
	if !almostEqual(h.RealizedPNL, (wantAvgSell-wantAvgBuy)*30) {
		t.Errorf("RealizedPNL = %v", h.RealizedPNL)
	}
}

func TestBuild_ExcludesExited(t *testing.T) {
	txs := []*domain.Transaction{
		tx("exited", domain.TxTypeBuy, 100, 0.01, 1000),
		tx("exited", domain.TxTypeSell, 100, 0.012, 2000),
		tx("held", domain.TxTypeBuy, 10, 0.001, 1500),
	}

	holders := Build(txs, 0.0001, 1_000_000)
	if len(holders) != 1 {
		t.Fatalf("expected 1 holder, got %d", len(holders))
	}
	if holders[0].Address != "held" {
		t.Errorf("holder = %q, want %q", holders[0].Address, "held")
	}
}

func TestBuild_WhaleFlags(t *testing.T) {
	txs := []*domain.Transaction{
		// 2% of total supply.
		tx("supplyWhale", domain.TxTypeBuy, 20_000, 1, 1000),
		// Tiny share of supply but a large position value.
		tx("valueWhale", domain.TxTypeBuy, 5_000, 1, 1000),
		tx("minnow", domain.TxTypeBuy, 100, 0.001, 1000),
	}

	// valueWhale: 5_000 * 3 SOL = 15_000 > 10_000.
	// minnow: 0.01% of supply, value 300.
	holders := Build(txs, 3, 1_000_000)
	flags := map[string]bool{}
	for _, h := range holders {
		flags[h.Address] = h.IsWhale
	}

	if !flags["supplyWhale"] {
		t.Error("supplyWhale not flagged")
	}
	if !flags["valueWhale"] {
		t.Error("valueWhale not flagged")
	}
	if flags["minnow"] {
		t.Error("minnow flagged as whale")
	}
}

func TestBuild_SortedAndCapped(t *testing.T) {
	var txs []*domain.Transaction
	for i := 0; i < MaxHolders+20; i++ {
		txs = append(txs, tx(addrN(i), domain.TxTypeBuy, float64(i+1), 0.001, int64(1000+i)))
	}

	holders := Build(txs, 0.0001, 1_000_000_000)
	if len(holders) != MaxHolders {
		t.Fatalf("expected cap at %d, got %d", MaxHolders, len(holders))
	}
	for i := 1; i < len(holders); i++ {
		if holders[i].Balance > holders[i-1].Balance {
			t.Fatalf("not sorted descending at %d", i)
		}
	}
	// The largest balance leads.
	if holders[0].Balance != float64(MaxHolders+20) {
		t.Errorf("top balance = %.0f, want %d", holders[0].Balance, MaxHolders+20)
	}
}

func TestBuild_Empty(t *testing.T) {
	if holders := Build(nil, 0.0001, 1_000_000); len(holders) != 0 {
		t.Errorf("expected empty projection, got %d", len(holders))
	}
}

func addrN(i int) string {
	return "addr" + string(rune('A'+i/26)) + string(rune('A'+i%26))
}

func almostEqual(a, b float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < 1e-12
}
