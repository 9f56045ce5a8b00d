package domain

// Quote is a read-only trade preview against the current curve state.
// No state is mutated when a quote is produced.
type Quote struct {
	TokenID       string
	Direction     string  // TxTypeBuy | TxTypeSell
	InputAmount   float64 // SOL for buys, tokens for sells
	OutputAmount  float64 // tokens for buys, SOL net of fee for sells
	ExpectedPrice float64 // pre-trade spot price
	ActualPrice   float64 // effective execution price
	PriceImpact   float64 // percent deviation from expected price
	Fee           float64 // SOL fee that would be charged
}

// TradeResult describes a settled trade as returned to the caller.
type TradeResult struct {
	TokenID      string
	Direction    string  // TxTypeBuy | TxTypeSell
	UserAddress  string  // trader wallet
	TokenAmount  float64 // tokens transferred
	SolAmount    float64 // SOL leg (gross for buys, net of fee for sells)
	Price        float64 // effective execution price
	PriceImpact  float64 // percent deviation from pre-trade price
	Fee          float64 // SOL fee accrued to the creator
	NewSupply    float64 // currentSupply after settle
	NewPrice     float64 // spot price after settle
	NewMarketCap float64 // market cap after settle
	Graduated    bool    // true if this trade triggered graduation
	Signature    string  // ledger reference
	ExecutedAt   int64   // Unix timestamp in milliseconds
}

// ClaimResult describes a successful creator fee claim.
type ClaimResult struct {
	CreatorAddress string
	TokenAddress   string
	Amount         float64 // SOL claimed
	ClaimedAt      int64   // Unix timestamp in milliseconds
}
