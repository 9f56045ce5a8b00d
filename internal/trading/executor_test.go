package trading

import (
	"context"
	"errors"
	"sync"
	"testing"

	"meme-launchpad/internal/curve"
	"meme-launchpad/internal/domain"
	"meme-launchpad/internal/ledger"
	"meme-launchpad/internal/storage"
	"meme-launchpad/internal/storage/memory"
)

type fixture struct {
	executor *Executor
	tokens   *memory.TokenStore
	txs      *memory.TransactionStore
	fees     *memory.CreatorFeeStore
	ledger   *ledger.Fake
	engine   *curve.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tokens := memory.NewTokenStore()
	txs := memory.NewTransactionStore()
	fees := memory.NewCreatorFeeStore()
	fake := ledger.NewFake("test-seed")
	engine := curve.New(curve.DefaultParams())

	clock := int64(1704067200000)
	executor := NewExecutor(engine, tokens, memory.NewTradeCommitter(tokens, txs, fees), fake,
		WithClock(func() int64 { clock++; return clock }),
	)
	return &fixture{executor: executor, tokens: tokens, txs: txs, fees: fees, ledger: fake, engine: engine}
}

func (f *fixture) seedToken(t *testing.T, supply float64) *domain.Token {
	t.Helper()
	token := &domain.Token{
		ID:             "tok1",
		Name:           "Pepe Classic",
		Symbol:         "PEPE",
		CreatorAddress: "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU",
		MintAddress:    "So11111111111111111111111111111111111111112",
		CurveAddress:   "curve1",
		TotalSupply:    1_000_000_000,
		CurrentSupply:  supply,
		Price:          curve.New(curve.DefaultParams()).Price(supply),
		MarketCap:      0,
		CreatedAt:      1704067200000,
		UpdatedAt:      1704067200000,
	}
	if err := f.tokens.Insert(context.Background(), token); err != nil {
		t.Fatalf("seed token: %v", err)
	}
	return token
}

func tradeErr(t *testing.T, err error) *TradeError {
	t.Helper()
	var te *TradeError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TradeError, got %T: %v", err, err)
	}
	return te
}

func TestExecuteTrade_Buy(t *testing.T) {
	f := newFixture(t)
	f.seedToken(t, 0)
	ctx := context.Background()

	res, err := f.executor.ExecuteTrade(ctx, &TradeRequest{
		TokenID:     "tok1",
		Direction:   domain.TxTypeBuy,
		Amount:      1.0,
		UserAddress: "buyer1",
	})
	if err != nil {
		t.Fatalf("buy failed: %v", err)
	}

	wantTokens, err := f.engine.TokensForSol(1.0, 0)
	if err != nil {
		t.Fatalf("TokensForSol: %v", err)
	}
	if res.TokenAmount != wantTokens {
		t.Errorf("TokenAmount = %.0f, want %.0f", res.TokenAmount, wantTokens)
	}
	if res.NewSupply != wantTokens {
		t.Errorf("NewSupply = %.0f, want %.0f", res.NewSupply, wantTokens)
	}
	// Buys record the gross SOL leg and add it to market cap whole.
	if res.SolAmount != 1.0 {
		t.Errorf("SolAmount = %.9f, want gross 1.0", res.SolAmount)
	}
	if res.NewMarketCap != 1.0 {
		t.Errorf("NewMarketCap = %.9f, want 1.0", res.NewMarketCap)
	}
	if res.Fee != 0.01 {
		t.Errorf("Fee = %.9f, want 0.01", res.Fee)
	}
	if res.Signature == "" {
		t.Error("missing ledger signature")
	}

	token, err := f.tokens.GetByID(ctx, "tok1")
	if err != nil {
		t.Fatalf("reload token: %v", err)
	}
	if token.CurrentSupply != wantTokens {
		t.Errorf("stored supply = %.0f, want %.0f", token.CurrentSupply, wantTokens)
	}
	if token.Price != f.engine.Price(wantTokens) {
		t.Errorf("stored price = %v, want %v", token.Price, f.engine.Price(wantTokens))
	}

	txs, err := f.txs.GetByToken(ctx, "tok1")
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txs))
	}
	if txs[0].Type != domain.TxTypeBuy || txs[0].SolAmount != 1.0 {
		t.Errorf("transaction = %+v", txs[0])
	}

	fee, err := f.fees.Get(ctx, "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU", "curve1")
	if err != nil {
		t.Fatalf("load creator fee: %v", err)
	}
	if fee.TotalFees != 0.01 {
		t.Errorf("TotalFees = %.9f, want 0.01", fee.TotalFees)
	}
}

func TestExecuteTrade_SellRecordsNetOfFee(t *testing.T) {
	f := newFixture(t)
	f.seedToken(t, 0)
	ctx := context.Background()

	buy, err := f.executor.ExecuteTrade(ctx, &TradeRequest{
		TokenID: "tok1", Direction: domain.TxTypeBuy, Amount: 2.0, UserAddress: "trader",
		SlippageTolerance: 100,
	})
	if err != nil {
		t.Fatalf("buy failed: %v", err)
	}

	sellTokens := buy.TokenAmount / 2
	grossSol, err := f.engine.SolForTokens(sellTokens, buy.NewSupply)
	if err != nil {
		t.Fatalf("SolForTokens: %v", err)
	}

	res, err := f.executor.ExecuteTrade(ctx, &TradeRequest{
		TokenID: "tok1", Direction: domain.TxTypeSell, Amount: sellTokens, UserAddress: "trader",
		SlippageTolerance: 100,
	})
	if err != nil {
		t.Fatalf("sell failed: %v", err)
	}

	// The buy path records gross SOL while the sell path records net of
	// the 5% fee. The asymmetry is carried deliberately from the curve's
	// fee accounting.
	wantNet := grossSol * 0.95
	if !almostEqual(res.SolAmount, wantNet) {
		t.Errorf("SolAmount = %.12f, want net %.12f", res.SolAmount, wantNet)
	}
	if !almostEqual(res.Fee, grossSol*0.05) {
		t.Errorf("Fee = %.12f, want %.12f", res.Fee, grossSol*0.05)
	}
	if res.NewSupply != buy.NewSupply-sellTokens {
		t.Errorf("NewSupply = %.0f, want %.0f", res.NewSupply, buy.NewSupply-sellTokens)
	}
	// Market cap drops by the gross curve output, floored at zero.
	if !almostEqual(res.NewMarketCap, buy.NewMarketCap-grossSol) {
		t.Errorf("NewMarketCap = %.12f, want %.12f", res.NewMarketCap, buy.NewMarketCap-grossSol)
	}

	txs, _ := f.txs.GetByToken(ctx, "tok1")
	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txs))
	}
	if !almostEqual(txs[1].SolAmount, wantNet) {
		t.Errorf("recorded SolAmount = %.12f, want %.12f", txs[1].SolAmount, wantNet)
	}
}

func TestExecuteTrade_GraduatedRejectedBeforeQuoting(t *testing.T) {
	f := newFixture(t)
	token := f.seedToken(t, 0)
	ctx := context.Background()

	gradAt := int64(1704067200000)
	state := domain.CurveState{
		CurrentSupply: token.CurrentSupply,
		Price:         token.Price,
		MarketCap:     token.MarketCap,
		IsGraduated:   true,
		GraduatedAt:   &gradAt,
	}
	if err := f.tokens.UpdateCurveState(ctx, "tok1", state, gradAt); err != nil {
		t.Fatalf("graduate token: %v", err)
	}

	_, err := f.executor.ExecuteTrade(ctx, &TradeRequest{
		TokenID: "tok1", Direction: domain.TxTypeBuy, Amount: 1.0, UserAddress: "buyer1",
	})
	te := tradeErr(t, err)
	if te.Code != CodeGraduatedToken {
		t.Errorf("code = %s, want %s", te.Code, CodeGraduatedToken)
	}
	if len(f.ledger.Submitted()) != 0 {
		t.Error("graduated rejection must not reach the ledger")
	}
	if txs, _ := f.txs.GetByToken(ctx, "tok1"); len(txs) != 0 {
		t.Error("graduated rejection must not record a transaction")
	}
}

func TestExecuteTrade_InsufficientSupply(t *testing.T) {
	f := newFixture(t)
	f.seedToken(t, 1000)
	ctx := context.Background()

	_, err := f.executor.ExecuteTrade(ctx, &TradeRequest{
		TokenID: "tok1", Direction: domain.TxTypeSell, Amount: 5000, UserAddress: "seller",
	})
	te := tradeErr(t, err)
	if te.Code != CodeInsufficientSupply {
		t.Errorf("code = %s, want %s", te.Code, CodeInsufficientSupply)
	}
	if te.Requested != 5000 || te.Available != 1000 {
		t.Errorf("figures = requested %.0f available %.0f, want 5000/1000", te.Requested, te.Available)
	}

	token, _ := f.tokens.GetByID(ctx, "tok1")
	if token.CurrentSupply != 1000 {
		t.Errorf("supply mutated to %.0f on a rejection", token.CurrentSupply)
	}
	if txs, _ := f.txs.GetByToken(ctx, "tok1"); len(txs) != 0 {
		t.Error("rejection recorded a transaction")
	}
}

func TestExecuteTrade_SlippageRejection(t *testing.T) {
	f := newFixture(t)
	f.seedToken(t, 0)
	ctx := context.Background()

	// A huge buy moves the price far beyond a 0.01% tolerance.
	_, err := f.executor.ExecuteTrade(ctx, &TradeRequest{
		TokenID:           "tok1",
		Direction:         domain.TxTypeBuy,
		Amount:            10,
		UserAddress:       "buyer1",
		SlippageTolerance: 0.01,
	})
	te := tradeErr(t, err)
	if te.Code != CodePriceImpactExceeded {
		t.Errorf("code = %s, want %s", te.Code, CodePriceImpactExceeded)
	}
	if te.Impact <= te.Tolerance {
		t.Errorf("impact %.4f should exceed tolerance %.4f", te.Impact, te.Tolerance)
	}

	// A small buy moves the price little and passes the default tolerance.
	if _, err := f.executor.ExecuteTrade(ctx, &TradeRequest{
		TokenID: "tok1", Direction: domain.TxTypeBuy, Amount: 0.5, UserAddress: "buyer1",
	}); err != nil {
		t.Errorf("default tolerance buy failed: %v", err)
	}
}

func TestExecuteTrade_LedgerFailureLeavesNoState(t *testing.T) {
	f := newFixture(t)
	f.seedToken(t, 0)
	ctx := context.Background()

	f.ledger.FailNext(&ledger.SubmissionError{
		Reason: ledger.ReasonInsufficientFunds, Permanent: true, Err: errors.New("wallet empty"),
	})

	_, err := f.executor.ExecuteTrade(ctx, &TradeRequest{
		TokenID: "tok1", Direction: domain.TxTypeBuy, Amount: 1.0, UserAddress: "buyer1",
	})
	te := tradeErr(t, err)
	if te.Code != CodeLedgerSubmission {
		t.Errorf("code = %s, want %s", te.Code, CodeLedgerSubmission)
	}
	if !errors.Is(err, ledger.ErrSubmissionFailed) {
		t.Error("underlying submission error not wrapped")
	}

	token, _ := f.tokens.GetByID(ctx, "tok1")
	if token.CurrentSupply != 0 {
		t.Error("failed broadcast mutated token state")
	}
	if txs, _ := f.txs.GetByToken(ctx, "tok1"); len(txs) != 0 {
		t.Error("failed broadcast recorded a transaction")
	}
}

func TestExecuteTrade_Graduation(t *testing.T) {
	f := newFixture(t)
	f.seedToken(t, 0)
	ctx := context.Background()

	// Push market cap past the graduation threshold with large buys.
	var last *domain.TradeResult
	for i := 0; i < 4; i++ {
		res, err := f.executor.ExecuteTrade(ctx, &TradeRequest{
			TokenID:           "tok1",
			Direction:         domain.TxTypeBuy,
			Amount:            10,
			UserAddress:       "whale",
			SlippageTolerance: 100,
		})
		if err != nil {
			te := tradeErr(t, err)
			if te.Code != CodeGraduatedToken {
				t.Fatalf("buy %d failed: %v", i, err)
			}
			break
		}
		last = res
	}
	if last == nil || !last.Graduated {
		t.Fatal("token never graduated")
	}

	token, _ := f.tokens.GetByID(ctx, "tok1")
	if !token.IsGraduated || token.GraduatedAt == nil {
		t.Error("graduation not persisted")
	}

	// One-way: all further trades are rejected at validation.
	_, err := f.executor.ExecuteTrade(ctx, &TradeRequest{
		TokenID: "tok1", Direction: domain.TxTypeSell, Amount: 1, UserAddress: "whale",
	})
	if te := tradeErr(t, err); te.Code != CodeGraduatedToken {
		t.Errorf("post-graduation code = %s, want %s", te.Code, CodeGraduatedToken)
	}
}

func TestExecuteTrade_ConcurrentBuysNoLostUpdate(t *testing.T) {
	f := newFixture(t)
	f.seedToken(t, 0)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.executor.ExecuteTrade(ctx, &TradeRequest{
				TokenID:           "tok1",
				Direction:         domain.TxTypeBuy,
				Amount:            0.5,
				UserAddress:       "buyer1",
				SlippageTolerance: 100,
			})
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Fatalf("concurrent buy %d failed: %v", i, err)
		}
	}

	// Replaying the same buys sequentially from supply 0 must land on the
	// exact same final supply: no trade may quote from a stale base.
	var supply float64
	for i := 0; i < workers; i++ {
		out, err := f.engine.TokensForSol(0.5, supply)
		if err != nil {
			t.Fatalf("sequential replay: %v", err)
		}
		supply += out
	}

	token, _ := f.tokens.GetByID(ctx, "tok1")
	if token.CurrentSupply != supply {
		t.Errorf("final supply = %.0f, want sequential %.0f", token.CurrentSupply, supply)
	}
	if txs, _ := f.txs.GetByToken(ctx, "tok1"); len(txs) != workers {
		t.Errorf("expected %d transactions, got %d", workers, len(txs))
	}
}

func TestExecuteTrade_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  *TradeRequest
	}{
		{"zero amount", &TradeRequest{TokenID: "tok1", Direction: domain.TxTypeBuy, Amount: 0, UserAddress: "u"}},
		{"negative amount", &TradeRequest{TokenID: "tok1", Direction: domain.TxTypeSell, Amount: -1, UserAddress: "u"}},
		{"bad direction", &TradeRequest{TokenID: "tok1", Direction: "SWAP", Amount: 1, UserAddress: "u"}},
		{"missing token id", &TradeRequest{Direction: domain.TxTypeBuy, Amount: 1, UserAddress: "u"}},
		{"missing user", &TradeRequest{TokenID: "tok1", Direction: domain.TxTypeBuy, Amount: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.executor.ExecuteTrade(ctx, tc.req)
			if te := tradeErr(t, err); te.Code != CodeInvalidInput {
				t.Errorf("code = %s, want %s", te.Code, CodeInvalidInput)
			}
		})
	}
}

func TestExecuteTrade_UnknownToken(t *testing.T) {
	f := newFixture(t)

	_, err := f.executor.ExecuteTrade(context.Background(), &TradeRequest{
		TokenID: "missing", Direction: domain.TxTypeBuy, Amount: 1, UserAddress: "u",
	})
	te := tradeErr(t, err)
	if te.Code != CodeTokenNotFound {
		t.Errorf("code = %s, want %s", te.Code, CodeTokenNotFound)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		t.Error("storage sentinel not wrapped")
	}
}

func TestQuote_DoesNotMutate(t *testing.T) {
	f := newFixture(t)
	f.seedToken(t, 0)
	ctx := context.Background()

	q, err := f.executor.Quote(ctx, "tok1", domain.TxTypeBuy, 1.0)
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	if q.OutputAmount <= 0 {
		t.Errorf("OutputAmount = %v", q.OutputAmount)
	}
	if q.ActualPrice <= q.ExpectedPrice {
		t.Error("buy execution price should exceed spot price")
	}
	if q.Fee != 0.01 {
		t.Errorf("Fee = %.9f, want 0.01", q.Fee)
	}

	token, _ := f.tokens.GetByID(ctx, "tok1")
	if token.CurrentSupply != 0 {
		t.Error("quote mutated token state")
	}
	if len(f.ledger.Submitted()) != 0 {
		t.Error("quote reached the ledger")
	}
}

func almostEqual(a, b float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < 1e-9
}
