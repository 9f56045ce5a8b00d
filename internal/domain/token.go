package domain

// Token represents a launched asset trading on the bonding curve.
// Corresponds to tokens table in PostgreSQL.
type Token struct {
	ID             string // PRIMARY KEY, deterministic hash
	Name           string // globally unique
	Symbol         string // globally unique
	CreatorAddress string // wallet that launched the token
	MintAddress    string // on-chain mint address
	CurveAddress   string // bonding curve account address, unique

	// Metadata
	Description string
	ImageURL    string
	BannerURL   string
	Website     string
	Twitter     string
	Telegram    string

	// Economics
	TotalSupply   float64 // fixed at creation
	CurrentSupply float64 // tokens issued via buys, reduced by sells
	Price         float64 // derived, SOL per token
	MarketCap     float64 // derived, SOL

	// Lifecycle
	IsGraduated bool
	GraduatedAt *int64 // Unix timestamp in milliseconds (nullable)

	// Risk
	RugScore int // 0-100, higher = riskier

	CreatedAt int64 // record creation timestamp (ms)
	UpdatedAt int64 // last update timestamp (ms)
}

// CurveState is the mutable slice of a token updated on every settled trade.
type CurveState struct {
	CurrentSupply float64
	Price         float64
	MarketCap     float64
	IsGraduated   bool
	GraduatedAt   *int64 // set only on the graduation transition
}
