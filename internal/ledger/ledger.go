// Package ledger wraps on-chain transaction submission behind a capability
// interface. The trading core never special-cases the implementation: the
// real RPC submitter and the deterministic fake satisfy the same contract.
package ledger

import (
	"context"
	"errors"
	"fmt"
)

// TradeIntent describes an already-computed trade to broadcast. The ledger
// transmits it; it never re-enters pricing logic.
type TradeIntent struct {
	TokenID      string  // internal token id
	MintAddress  string  // on-chain mint
	CurveAddress string  // bonding curve account
	UserAddress  string  // trader wallet
	Direction    string  // "BUY" | "SELL"
	TokenAmount  float64 // tokens moved
	SolAmount    float64 // SOL leg
	Nonce        int64   // settle timestamp (ms), disambiguates repeat trades
}

// Ledger submits trade intents to the chain and returns the signature.
type Ledger interface {
	// Submit broadcasts the intent. Transient failures are retried
	// internally with bounded backoff; an error return is definitive.
	Submit(ctx context.Context, intent *TradeIntent) (string, error)
}

// ErrSubmissionFailed is the sentinel wrapped by every definitive
// submission error.
var ErrSubmissionFailed = errors.New("ledger submission failed")

// Failure reason codes.
const (
	ReasonCongestion        = "NETWORK_CONGESTION"
	ReasonInsufficientFunds = "INSUFFICIENT_FUNDS"
	ReasonRejected          = "REJECTED"
	ReasonTimeout           = "TIMEOUT"
)

// SubmissionError carries the reason code for a definitive failure.
type SubmissionError struct {
	Reason    string
	Permanent bool // true if retrying can never succeed
	Err       error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrSubmissionFailed, e.Reason, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return ErrSubmissionFailed
}
