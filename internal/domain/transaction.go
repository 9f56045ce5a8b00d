package domain

// Transaction is an immutable trade execution record.
// Corresponds to transactions table in PostgreSQL. Append-only: the
// transaction history is the source of truth for holder and price projections.
type Transaction struct {
	ID          int64   // BIGSERIAL primary key
	TokenID     string  // FK to tokens
	UserAddress string  // trader wallet
	Type        string  // "BUY" | "SELL"
	Amount      float64 // token amount
	SolAmount   float64 // SOL leg (gross for buys, net of fee for sells)
	Price       float64 // effective execution price
	Signature   string  // ledger proof, unique across all transactions
	CreatedAt   int64   // Unix timestamp in milliseconds
}

// Transaction type constants
const (
	TxTypeBuy  = "BUY"
	TxTypeSell = "SELL"
)
