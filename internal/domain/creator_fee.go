package domain

// CreatorFee is the fee accrual ledger for one (creator, token) pair.
// Corresponds to creator_fees table in PostgreSQL, unique per pair.
// TotalFees and ClaimedFees are both monotonically increasing and
// ClaimedFees never exceeds TotalFees.
type CreatorFee struct {
	ID             int64   // BIGSERIAL primary key
	CreatorAddress string  // token creator wallet
	TokenAddress   string  // bonding curve account address
	TotalFees      float64 // SOL accrued from trades against the token
	ClaimedFees    float64 // SOL already claimed by the creator
	LastClaimedAt  *int64  // Unix timestamp in milliseconds (nullable)
	CreatedAt      int64   // record creation timestamp (ms)
	UpdatedAt      int64   // last update timestamp (ms)
}

// Unclaimed returns the SOL amount still claimable.
func (f *CreatorFee) Unclaimed() float64 {
	return f.TotalFees - f.ClaimedFees
}
