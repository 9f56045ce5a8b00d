// Package main generates a market report over the token catalog:
// MARKET_REPORT.md plus a TOKENS.csv export of the top tokens.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"meme-launchpad/internal/curve"
	"meme-launchpad/internal/domain"
	"meme-launchpad/internal/ledger"
	"meme-launchpad/internal/reporting"
	"meme-launchpad/internal/storage"
	"meme-launchpad/internal/storage/memory"
	pgstore "meme-launchpad/internal/storage/postgres"
	"meme-launchpad/internal/trading"
)

func main() {
	// Parse flags
	outputDir := flag.String("output-dir", "output", "Output directory for generated files")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	topTokens := flag.Int("top", reporting.DefaultTopTokens, "Number of tokens in the top table")
	useFixtures := flag.Bool("use-fixtures", false, "Use in-memory demo data instead of a database")
	flag.Parse()

	ctx := context.Background()

	// Validate flags
	if !*useFixtures && *postgresDSN == "" {
		fmt.Fprintln(os.Stderr, "Error: --postgres-dsn is required when not using fixtures")
		fmt.Fprintln(os.Stderr, "Use --use-fixtures to run with demo data instead")
		os.Exit(1)
	}

	// Create stores based on mode
	var (
		tokens  storage.TokenStore
		txs     storage.TransactionStore
		cleanup func()
	)
	if *useFixtures {
		tokens, txs = createFixtureStores(ctx)
		cleanup = func() {}
	} else {
		var err error
		tokens, txs, cleanup, err = createDatabaseStores(ctx, *postgresDSN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error connecting to database: %v\n", err)
			os.Exit(1)
		}
	}
	defer cleanup()

	engine := curve.New(curve.DefaultParams())
	generator := reporting.NewGenerator(tokens, txs, engine).WithTopTokens(*topTokens)

	report, err := generator.Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating report: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	mdPath := filepath.Join(*outputDir, "MARKET_REPORT.md")
	if err := os.WriteFile(mdPath, []byte(reporting.RenderMarkdown(report)), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing markdown report: %v\n", err)
		os.Exit(1)
	}

	csvPath := filepath.Join(*outputDir, "TOKENS.csv")
	if err := os.WriteFile(csvPath, []byte(reporting.RenderCSV(report.TopTokens)), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing CSV export: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Market report generated successfully:")
	fmt.Printf("  - %s\n", mdPath)
	fmt.Printf("  - %s\n", csvPath)
	fmt.Printf("  %d tokens, %.4f SOL total market cap, %d graduated\n",
		report.Market.TokenCount, report.Market.TotalMarketCap, report.Market.GraduatedCount)
}

// createFixtureStores creates in-memory stores populated by replaying a
// small demo session through the real trade path.
func createFixtureStores(ctx context.Context) (storage.TokenStore, storage.TransactionStore) {
	tokens := memory.NewTokenStore()
	txs := memory.NewTransactionStore()
	fees := memory.NewCreatorFeeStore()
	committer := memory.NewTradeCommitter(tokens, txs, fees)

	engine := curve.New(curve.DefaultParams())
	executor := trading.NewExecutor(engine, tokens, committer, ledger.NewFake("report-fixtures"))

	creator := "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"
	demo := []struct {
		symbol, name string
		buys         []float64
	}{
		{"PEPE", "Pepe Classic", []float64{1.0, 0.5, 0.25}},
		{"DOGE2", "Doge Squared", []float64{5.0, 10.0, 10.0, 8.0}},
		{"MOON", "To The Moon", []float64{0.1}},
	}

	for i, d := range demo {
		mint := ledger.NewMintAddress(fmt.Sprintf("%s|%s|%d", d.symbol, creator, i))
		curveAddr, err := ledger.DeriveCurveAddress(mint)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error deriving fixture address: %v\n", err)
			os.Exit(1)
		}
		token := &domain.Token{
			ID:             fmt.Sprintf("fixture-token-%d", i),
			Name:           d.name,
			Symbol:         d.symbol,
			CreatorAddress: creator,
			MintAddress:    mint,
			CurveAddress:   curveAddr,
			TotalSupply:    trading.DefaultTotalSupply,
			Price:          engine.Price(0),
			RugScore:       20 + i*30,
			CreatedAt:      1704067200000,
			UpdatedAt:      1704067200000,
		}
		if err := tokens.Insert(ctx, token); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading fixtures: %v\n", err)
			os.Exit(1)
		}

		for _, sol := range d.buys {
			_, err := executor.ExecuteTrade(ctx, &trading.TradeRequest{
				TokenID:           token.ID,
				Direction:         domain.TxTypeBuy,
				Amount:            sol,
				UserAddress:       creator,
				SlippageTolerance: 100,
			})
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error replaying fixture trades: %v\n", err)
				os.Exit(1)
			}
		}
	}

	return tokens, txs
}

// createDatabaseStores connects to PostgreSQL and creates stores.
func createDatabaseStores(ctx context.Context, postgresDSN string) (storage.TokenStore, storage.TransactionStore, func(), error) {
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	return pgstore.NewTokenStore(pool), pgstore.NewTransactionStore(pool), pool.Close, nil
}
