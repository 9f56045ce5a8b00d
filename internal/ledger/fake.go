package ledger

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"fmt"
	"sync"

	"github.com/mr-tron/base58"
)

// Fake is a deterministic in-process Ledger for tests and local runs.
// Signatures are real ed25519 signatures over the canonical intent payload,
// base58-encoded, so identical intents always produce identical signatures.
type Fake struct {
	mu         sync.Mutex
	key        ed25519.PrivateKey
	submitted  []*TradeIntent
	failNext   error
	failAlways error
}

// NewFake creates a fake ledger with a signing key derived from seed.
func NewFake(seed string) *Fake {
	sum := sha256.Sum256([]byte(seed))
	return &Fake{
		key: ed25519.NewKeyFromSeed(sum[:]),
	}
}

// Compile-time interface check.
var _ Ledger = (*Fake)(nil)

// Submit signs the canonical intent payload and records the submission.
func (f *Fake) Submit(_ context.Context, intent *TradeIntent) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failAlways != nil {
		return "", f.failAlways
	}
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return "", err
	}

	payload := fmt.Sprintf("%s|%s|%s|%s|%.9f|%.9f|%d",
		intent.TokenID,
		intent.UserAddress,
		intent.Direction,
		intent.CurveAddress,
		intent.TokenAmount,
		intent.SolAmount,
		intent.Nonce,
	)

	sig := ed25519.Sign(f.key, []byte(payload))
	copied := *intent
	f.submitted = append(f.submitted, &copied)

	return base58.Encode(sig), nil
}

// FailNext makes the next Submit return err, then recover.
func (f *Fake) FailNext(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failNext = err
}

// FailAlways makes every Submit return err until reset with nil.
func (f *Fake) FailAlways(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failAlways = err
}

// Submitted returns a copy of all recorded intents.
func (f *Fake) Submitted() []*TradeIntent {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]*TradeIntent, len(f.submitted))
	for i, s := range f.submitted {
		copied := *s
		out[i] = &copied
	}
	return out
}

// PublicKey returns the fake's base58-encoded verifying key.
func (f *Fake) PublicKey() string {
	return base58.Encode(f.key.Public().(ed25519.PublicKey))
}
