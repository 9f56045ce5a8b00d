package domain

// Holder is a derived balance snapshot for one address, reconstructed by
// replaying the token's transaction history. Never authoritative: safe to
// discard and rebuild at any time.
type Holder struct {
	Address          string
	Balance          float64 // totalBought - totalSold, always > 0 in output
	Percentage       float64 // balance as % of token total supply
	TotalBought      float64 // sum of BUY amounts
	TotalSold        float64 // sum of SELL amounts
	TotalSolSpent    float64 // SOL paid across buys
	TotalSolReceived float64 // SOL received across sells
	AverageBuyPrice  float64 // totalSolSpent / totalBought, 0 if no buys
	AverageSellPrice float64 // totalSolReceived / totalSold, 0 if no sells
	UnrealizedPNL    float64 // (currentPrice - averageBuyPrice) * balance
	RealizedPNL      float64 // (averageSellPrice - averageBuyPrice) * totalSold
	IsWhale          bool    // >1% of supply or position value above threshold
	FirstBuyAt       int64   // Unix timestamp in milliseconds
	LastActivityAt   int64   // Unix timestamp in milliseconds
}
