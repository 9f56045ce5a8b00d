// Package trading orchestrates trade execution against the bonding curve:
// validation, quoting, slippage policy, fees, atomic settlement and the
// one-way graduation transition. It also handles token launches and
// creator fee claims.
package trading

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"meme-launchpad/internal/curve"
	"meme-launchpad/internal/domain"
	"meme-launchpad/internal/ledger"
	"meme-launchpad/internal/storage"
)

// DefaultSlippageTolerance is the maximum price impact in percent applied
// when the caller does not supply one.
const DefaultSlippageTolerance = 5.0

// Publisher receives settled trades for fan-out to subscribers. Publish
// must not block the trading path.
type Publisher interface {
	PublishTrade(result *domain.TradeResult)
}

// TradeRequest is one buy or sell order.
type TradeRequest struct {
	TokenID           string
	Direction         string  // domain.TxTypeBuy | domain.TxTypeSell
	Amount            float64 // SOL for buys, tokens for sells
	UserAddress       string
	SlippageTolerance float64 // percent; 0 means DefaultSlippageTolerance
}

// Executor runs the per-trade state machine. The quote-to-settle sequence
// for a token is serialized with a per-token lock so concurrent trades
// never price against a stale supply.
type Executor struct {
	engine    *curve.Engine
	tokens    storage.TokenStore
	committer storage.TradeCommitter
	ledger    ledger.Ledger
	publisher Publisher
	logger    *log.Logger
	locks     *tokenLocks
	now       func() int64
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithPublisher attaches a trade stream publisher.
func WithPublisher(p Publisher) ExecutorOption {
	return func(x *Executor) { x.publisher = p }
}

// WithLogger sets the executor's logger.
func WithLogger(l *log.Logger) ExecutorOption {
	return func(x *Executor) { x.logger = l }
}

// WithClock overrides the timestamp source. Tests use it for
// reproducible settle times.
func WithClock(now func() int64) ExecutorOption {
	return func(x *Executor) { x.now = now }
}

// NewExecutor creates a trade executor.
func NewExecutor(engine *curve.Engine, tokens storage.TokenStore, committer storage.TradeCommitter, led ledger.Ledger, opts ...ExecutorOption) *Executor {
	x := &Executor{
		engine:    engine,
		tokens:    tokens,
		committer: committer,
		ledger:    led,
		logger:    log.New(log.Writer(), "[trading] ", log.LstdFlags),
		locks:     newTokenLocks(),
		now:       func() int64 { return time.Now().UnixMilli() },
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// quoteFigures carries every number the settle step needs, computed once
// from a single supply reading.
type quoteFigures struct {
	expectedPrice float64
	actualPrice   float64
	impact        float64
	tokensDelta   float64 // tokens bought or sold
	grossSol      float64 // curve SOL leg before fees
	netSol        float64 // SOL recorded on the execution record
	fee           float64 // SOL accrued to the creator
}

// Quote produces a read-only trade preview. No state is mutated and no
// lock is held, so a quote can race a settle; ExecuteTrade re-quotes
// under the token lock.
func (x *Executor) Quote(ctx context.Context, tokenID, direction string, amount float64) (*domain.Quote, error) {
	if err := validateRequest(tokenID, direction, amount); err != nil {
		return nil, err
	}

	token, err := x.getToken(ctx, tokenID)
	if err != nil {
		return nil, err
	}

	fig, err := x.quote(token, direction, amount)
	if err != nil {
		return nil, err
	}

	q := &domain.Quote{
		TokenID:       tokenID,
		Direction:     direction,
		InputAmount:   amount,
		ExpectedPrice: fig.expectedPrice,
		ActualPrice:   fig.actualPrice,
		PriceImpact:   fig.impact,
		Fee:           fig.fee,
	}
	if direction == domain.TxTypeBuy {
		q.OutputAmount = fig.tokensDelta
	} else {
		q.OutputAmount = fig.netSol
	}
	return q, nil
}

// ExecuteTrade runs the full state machine for one trade and settles it
// atomically. A rejection at any gate leaves no state change and no
// execution record.
func (x *Executor) ExecuteTrade(ctx context.Context, req *TradeRequest) (*domain.TradeResult, error) {
	if err := validateRequest(req.TokenID, req.Direction, req.Amount); err != nil {
		return nil, err
	}
	if req.UserAddress == "" {
		return nil, invalidInput("user address is required")
	}
	tolerance := req.SlippageTolerance
	if tolerance <= 0 {
		tolerance = DefaultSlippageTolerance
	}

	x.locks.lock(req.TokenID)
	defer x.locks.unlock(req.TokenID)

	token, err := x.getToken(ctx, req.TokenID)
	if err != nil {
		return nil, err
	}

	fig, err := x.quote(token, req.Direction, req.Amount)
	if err != nil {
		return nil, err
	}

	if fig.impact > tolerance {
		return nil, &TradeError{
			Code:      CodePriceImpactExceeded,
			Message:   fmt.Sprintf("price impact %.2f%% exceeds tolerance %.2f%%", fig.impact, tolerance),
			Impact:    fig.impact,
			Tolerance: tolerance,
		}
	}

	now := x.now()
	state := x.nextState(token, req.Direction, fig, now)

	signature, err := x.ledger.Submit(ctx, &ledger.TradeIntent{
		TokenID:      token.ID,
		MintAddress:  token.MintAddress,
		CurveAddress: token.CurveAddress,
		UserAddress:  req.UserAddress,
		Direction:    req.Direction,
		TokenAmount:  fig.tokensDelta,
		SolAmount:    fig.netSol,
		Nonce:        now,
	})
	if err != nil {
		return nil, &TradeError{
			Code:    CodeLedgerSubmission,
			Message: "trade could not be broadcast",
			Err:     err,
		}
	}

	mutation := &storage.TradeMutation{
		TokenID: token.ID,
		State:   state,
		Transaction: &domain.Transaction{
			TokenID:     token.ID,
			UserAddress: req.UserAddress,
			Type:        req.Direction,
			Amount:      fig.tokensDelta,
			SolAmount:   fig.netSol,
			Price:       fig.actualPrice,
			Signature:   signature,
			CreatedAt:   now,
		},
		FeeCreator: token.CreatorAddress,
		FeeToken:   token.CurveAddress,
		FeeDelta:   fig.fee,
		Now:        now,
	}
	if err := x.committer.CommitTrade(ctx, mutation); err != nil {
		return nil, fmt.Errorf("commit trade for token %s: %w", token.ID, err)
	}

	graduated := state.IsGraduated && !token.IsGraduated
	if graduated {
		x.logger.Printf("token %s (%s) graduated: supply=%.0f marketCap=%.4f",
			token.ID, token.Symbol, state.CurrentSupply, state.MarketCap)
	}

	result := &domain.TradeResult{
		TokenID:      token.ID,
		Direction:    req.Direction,
		UserAddress:  req.UserAddress,
		TokenAmount:  fig.tokensDelta,
		SolAmount:    fig.netSol,
		Price:        fig.actualPrice,
		PriceImpact:  fig.impact,
		Fee:          fig.fee,
		NewSupply:    state.CurrentSupply,
		NewPrice:     state.Price,
		NewMarketCap: state.MarketCap,
		Graduated:    graduated,
		Signature:    signature,
		ExecutedAt:   now,
	}

	if x.publisher != nil {
		x.publisher.PublishTrade(result)
	}
	return result, nil
}

// quote computes all trade figures from the token's current supply. The
// graduation gate runs before any curve math.
func (x *Executor) quote(token *domain.Token, direction string, amount float64) (*quoteFigures, error) {
	if token.IsGraduated {
		return nil, &TradeError{
			Code:    CodeGraduatedToken,
			Message: fmt.Sprintf("token %s has graduated; curve trading is closed", token.Symbol),
		}
	}

	supply := token.CurrentSupply
	expected := x.engine.Price(supply)

	if direction == domain.TxTypeBuy {
		tokensOut, err := x.engine.TokensForSol(amount, supply)
		if err != nil {
			return nil, x.mapCurveError(token, err)
		}
		if tokensOut <= 0 {
			return nil, invalidInput("trade of %.9f SOL is too small to buy a whole token", amount)
		}
		actual := amount / tokensOut
		return &quoteFigures{
			expectedPrice: expected,
			actualPrice:   actual,
			impact:        priceImpact(actual, expected),
			tokensDelta:   tokensOut,
			grossSol:      amount,
			netSol:        amount, // buys record the gross SOL leg
			fee:           x.engine.BuyFee(amount),
		}, nil
	}

	if amount > supply {
		return nil, &TradeError{
			Code:      CodeInsufficientSupply,
			Message:   fmt.Sprintf("sell of %.0f tokens exceeds circulating supply %.0f", amount, supply),
			Requested: amount,
			Available: supply,
		}
	}
	grossSol, err := x.engine.SolForTokens(amount, supply)
	if err != nil {
		return nil, x.mapCurveError(token, err)
	}
	fee := x.engine.SellFee(grossSol)
	actual := grossSol / amount
	return &quoteFigures{
		expectedPrice: expected,
		actualPrice:   actual,
		impact:        priceImpact(actual, expected),
		tokensDelta:   amount,
		grossSol:      grossSol,
		netSol:        grossSol - fee, // sells record the net SOL leg
		fee:           fee,
	}, nil
}

// nextState derives the post-trade curve state, including the one-way
// graduation transition.
func (x *Executor) nextState(token *domain.Token, direction string, fig *quoteFigures, now int64) domain.CurveState {
	state := domain.CurveState{
		IsGraduated: token.IsGraduated,
		GraduatedAt: token.GraduatedAt,
	}
	if direction == domain.TxTypeBuy {
		state.CurrentSupply = token.CurrentSupply + fig.tokensDelta
		state.MarketCap = token.MarketCap + fig.grossSol
	} else {
		state.CurrentSupply = token.CurrentSupply - fig.tokensDelta
		state.MarketCap = math.Max(0, token.MarketCap-fig.grossSol)
	}
	state.Price = x.engine.Price(state.CurrentSupply)

	if !state.IsGraduated && x.engine.ShouldGraduate(state.CurrentSupply, state.MarketCap) {
		state.IsGraduated = true
		state.GraduatedAt = &now
	}
	return state
}

func (x *Executor) getToken(ctx context.Context, tokenID string) (*domain.Token, error) {
	token, err := x.tokens.GetByID(ctx, tokenID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, &TradeError{
				Code:    CodeTokenNotFound,
				Message: fmt.Sprintf("token %s does not exist", tokenID),
				Err:     err,
			}
		}
		return nil, fmt.Errorf("load token %s: %w", tokenID, err)
	}
	return token, nil
}

// mapCurveError covers the race where a token graduates between the
// IsGraduated gate and the curve call.
func (x *Executor) mapCurveError(token *domain.Token, err error) error {
	if errors.Is(err, curve.ErrGraduated) {
		return &TradeError{
			Code:    CodeGraduatedToken,
			Message: fmt.Sprintf("token %s has graduated; curve trading is closed", token.Symbol),
			Err:     err,
		}
	}
	return err
}

func validateRequest(tokenID, direction string, amount float64) error {
	if tokenID == "" {
		return invalidInput("token id is required")
	}
	if direction != domain.TxTypeBuy && direction != domain.TxTypeSell {
		return invalidInput("direction must be %s or %s", domain.TxTypeBuy, domain.TxTypeSell)
	}
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return invalidInput("amount must be a positive finite number")
	}
	return nil
}

func priceImpact(actual, expected float64) float64 {
	if expected == 0 {
		return 0
	}
	return math.Abs(actual-expected) / expected * 100
}
