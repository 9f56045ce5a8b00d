package trading

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"meme-launchpad/internal/domain"
	"meme-launchpad/internal/storage"
)

// FeeClaimer pays out accrued creator fees. A claim always takes the full
// unclaimed balance for the pair; partial claims are not supported.
type FeeClaimer struct {
	fees   storage.CreatorFeeStore
	logger *log.Logger
	now    func() int64
}

// ClaimerOption configures a FeeClaimer.
type ClaimerOption func(*FeeClaimer)

// WithClaimerLogger sets the claimer's logger.
func WithClaimerLogger(l *log.Logger) ClaimerOption {
	return func(c *FeeClaimer) { c.logger = l }
}

// WithClaimerClock overrides the timestamp source.
func WithClaimerClock(now func() int64) ClaimerOption {
	return func(c *FeeClaimer) { c.now = now }
}

// NewFeeClaimer creates a fee claimer.
func NewFeeClaimer(fees storage.CreatorFeeStore, opts ...ClaimerOption) *FeeClaimer {
	c := &FeeClaimer{
		fees:   fees,
		logger: log.New(log.Writer(), "[claims] ", log.LstdFlags),
		now:    func() int64 { return time.Now().UnixMilli() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Claim pays out the unclaimed balance for one (creator, token) pair.
func (c *FeeClaimer) Claim(ctx context.Context, creatorAddress, tokenAddress string) (*domain.ClaimResult, error) {
	if creatorAddress == "" || tokenAddress == "" {
		return nil, invalidInput("creator and token addresses are required")
	}

	fee, err := c.fees.Get(ctx, creatorAddress, tokenAddress)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, &TradeError{
				Code:    CodeFeesNotFound,
				Message: fmt.Sprintf("no fees have accrued for creator %s on token %s", creatorAddress, tokenAddress),
				Err:     err,
			}
		}
		return nil, fmt.Errorf("load creator fees: %w", err)
	}

	amount := fee.Unclaimed()
	if amount <= 0 {
		return nil, &TradeError{
			Code:    CodeNothingToClaim,
			Message: fmt.Sprintf("all %.9f SOL already claimed", fee.TotalFees),
		}
	}

	now := c.now()
	if err := c.fees.MarkClaimed(ctx, creatorAddress, tokenAddress, amount, now); err != nil {
		return nil, fmt.Errorf("mark fees claimed: %w", err)
	}

	c.logger.Printf("creator %s claimed %.9f SOL for token %s", creatorAddress, amount, tokenAddress)
	return &domain.ClaimResult{
		CreatorAddress: creatorAddress,
		TokenAddress:   tokenAddress,
		Amount:         amount,
		ClaimedAt:      now,
	}, nil
}

// ClaimAll pays out every token with an unclaimed balance for the creator.
// Pairs with nothing to claim are skipped, not errors.
func (c *FeeClaimer) ClaimAll(ctx context.Context, creatorAddress string) ([]*domain.ClaimResult, error) {
	if creatorAddress == "" {
		return nil, invalidInput("creator address is required")
	}

	fees, err := c.fees.ListByCreator(ctx, creatorAddress)
	if err != nil {
		return nil, fmt.Errorf("list creator fees: %w", err)
	}

	var results []*domain.ClaimResult
	for _, fee := range fees {
		if fee.Unclaimed() <= 0 {
			continue
		}
		res, err := c.Claim(ctx, creatorAddress, fee.TokenAddress)
		if err != nil {
			return results, fmt.Errorf("claim token %s: %w", fee.TokenAddress, err)
		}
		results = append(results, res)
	}
	return results, nil
}
