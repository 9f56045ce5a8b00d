package reporting

import "time"

// Report represents the market report structure.
type Report struct {
	// Metadata
	GeneratedAt time.Time

	// Market Summary
	Market MarketSummary

	// Top tokens by market cap
	TopTokens []TokenRow

	// Risk score distribution across level bands
	RiskDistribution []RiskBucketRow

	// Graduated tokens, most recent first
	Graduations []GraduationRow
}

// MarketSummary contains catalog-wide figures.
type MarketSummary struct {
	TokenCount      int
	GraduatedCount  int
	TotalMarketCap  float64 // SOL, across all tokens
	Volume24h       float64 // SOL legs settled in the last 24 hours
	Transactions24h int
	ActiveTokens24h int // tokens with at least one trade in the window
}

// TokenRow represents one row in the top tokens table.
type TokenRow struct {
	Symbol    string
	Name      string
	Price     float64
	MarketCap float64
	Progress  float64 // graduation progress in percent
	RugScore  int
	Graduated bool
}

// RiskBucketRow represents one risk level band.
type RiskBucketRow struct {
	Level string
	Count int
	Pct   float64 // share of the catalog
}

// GraduationRow lists one graduated token.
type GraduationRow struct {
	Symbol      string
	Name        string
	MarketCap   float64
	GraduatedAt int64 // Unix ms
}
