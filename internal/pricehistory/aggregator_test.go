package pricehistory

import (
	"testing"

	"meme-launchpad/internal/domain"
)

func print(price, amount float64, at int64) *domain.Transaction {
	return &domain.Transaction{
		TokenID:   "tok1",
		Type:      domain.TxTypeBuy,
		Amount:    amount,
		SolAmount: price * amount,
		Price:     price,
		CreatedAt: at,
	}
}

func TestAggregate_VWAP(t *testing.T) {
	base := int64(1704067200000) // aligned to a 15m boundary
	txs := []*domain.Transaction{
		print(0.001, 1, base),
		print(0.002, 1, base+60_000),
		print(0.003, 2, base+120_000),
	}

	points := Aggregate("tok1", txs, domain.Interval15Min)
	if len(points) != 1 {
		t.Fatalf("expected 1 bucket, got %d", len(points))
	}

	p := points[0]
	// (0.001*1 + 0.002*1 + 0.003*2) / 4 = 0.0025
	if p.Price != 0.0025 {
		t.Errorf("VWAP = %v, want 0.0025", p.Price)
	}
	if p.Volume != 4 {
		t.Errorf("Volume = %v, want 4", p.Volume)
	}
	if p.TxCount != 3 {
		t.Errorf("TxCount = %d, want 3", p.TxCount)
	}
	if p.BucketStart != base {
		t.Errorf("BucketStart = %d, want %d", p.BucketStart, base)
	}
}

func TestAggregate_BucketBoundaries(t *testing.T) {
	base := int64(1704067200000)
	txs := []*domain.Transaction{
		print(0.001, 1, base+899_999), // last ms of bucket one
		print(0.002, 1, base+900_000), // first ms of bucket two
	}

	points := Aggregate("tok1", txs, domain.Interval15Min)
	if len(points) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(points))
	}
	if points[0].BucketStart != base || points[1].BucketStart != base+900_000 {
		t.Errorf("bucket starts = %d, %d", points[0].BucketStart, points[1].BucketStart)
	}
	// Ascending order.
	if points[0].BucketStart >= points[1].BucketStart {
		t.Error("buckets not ascending")
	}
}

func TestAggregate_NoiseFilter(t *testing.T) {
	base := int64(1704067200000)
	txs := []*domain.Transaction{
		print(0.001, 1, base),
		print(-0.5, 1, base),    // negative price
		print(2e6, 1, base),     // absurd price
		{TokenID: "tok1", Type: domain.TxTypeBuy, Amount: 0, SolAmount: 0, CreatedAt: base}, // zero everything
	}

	points := Aggregate("tok1", txs, domain.Interval15Min)
	if len(points) != 1 {
		t.Fatalf("expected 1 bucket, got %d", len(points))
	}
	if points[0].TxCount != 1 {
		t.Errorf("TxCount = %d, want 1 after noise filtering", points[0].TxCount)
	}
}

func TestAggregate_DerivesPriceFromLegs(t *testing.T) {
	base := int64(1704067200000)
	// Price field missing: derived as solAmount/amount.
	txs := []*domain.Transaction{
		{TokenID: "tok1", Type: domain.TxTypeBuy, Amount: 100, SolAmount: 0.5, CreatedAt: base},
	}

	points := Aggregate("tok1", txs, domain.Interval1Min)
	if len(points) != 1 {
		t.Fatalf("expected 1 bucket, got %d", len(points))
	}
	if points[0].Price != 0.005 {
		t.Errorf("derived price = %v, want 0.005", points[0].Price)
	}
}

func TestAggregate_UnsupportedIntervalFallsBack(t *testing.T) {
	base := int64(1704067200000)
	points := Aggregate("tok1", []*domain.Transaction{print(0.001, 1, base)}, 42)
	if len(points) != 1 {
		t.Fatalf("expected 1 bucket, got %d", len(points))
	}
	if points[0].IntervalSeconds != DefaultIntervalSeconds {
		t.Errorf("interval = %d, want default %d", points[0].IntervalSeconds, DefaultIntervalSeconds)
	}
}

func TestSummarize(t *testing.T) {
	base := int64(1704067200000)
	txs := []*domain.Transaction{
		print(0.001, 10, base),
		print(0.004, 10, base+900_000),
		print(0.002, 20, base+1_800_000),
	}

	points := Aggregate("tok1", txs, domain.Interval15Min)
	s := Summarize(points)

	if s.Buckets != 3 {
		t.Fatalf("Buckets = %d, want 3", s.Buckets)
	}
	if s.CurrentPrice != 0.002 {
		t.Errorf("CurrentPrice = %v, want 0.002", s.CurrentPrice)
	}
	if s.HighPrice != 0.004 || s.LowPrice != 0.001 {
		t.Errorf("high/low = %v/%v", s.HighPrice, s.LowPrice)
	}
	if !floatEq(s.Change, 0.001) {
		t.Errorf("Change = %v, want 0.001", s.Change)
	}
	if !floatEq(s.ChangePct, 100) {
		t.Errorf("ChangePct = %v, want 100", s.ChangePct)
	}
	if s.TotalVolume != 40 {
		t.Errorf("TotalVolume = %v, want 40", s.TotalVolume)
	}
	if !floatEq(s.AvgBucketVolume, 40.0/3) {
		t.Errorf("AvgBucketVolume = %v", s.AvgBucketVolume)
	}
	if s.TxCount != 3 {
		t.Errorf("TxCount = %d, want 3", s.TxCount)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	if s.Buckets != 0 || s.TotalVolume != 0 {
		t.Errorf("empty summary = %+v", s)
	}
}

func floatEq(a, b float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < 1e-12
}
