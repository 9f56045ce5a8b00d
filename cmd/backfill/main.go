// Package main rebuilds the persisted price history views in ClickHouse
// from the PostgreSQL transaction log. Run it after a schema change or
// whenever the analytical views drift from the source of truth.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"meme-launchpad/internal/pricehistory"
	chstore "meme-launchpad/internal/storage/clickhouse"
	"meme-launchpad/internal/storage/migrations"
	pgstore "meme-launchpad/internal/storage/postgres"
)

const tokenPageSize = 200

func main() {
	// Parse flags (env vars as defaults)
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	tokenID := flag.String("token", "", "Rebuild a single token (default: all tokens)")
	intervals := flag.String("intervals", "60,300,900,3600", "Comma-separated bucket widths in seconds")
	flag.Parse()

	logger := log.New(os.Stdout, "[backfill] ", log.LstdFlags)

	if *postgresDSN == "" || *clickhouseDSN == "" {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required")
	}

	intervalList, err := parseIntervals(*intervals)
	if err != nil {
		logger.Fatalf("Invalid --intervals: %v", err)
	}

	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, cancelling backfill...", sig)
		cancel()
	}()

	// Connect to databases
	pool, err := pgstore.NewPool(ctx, *postgresDSN)
	if err != nil {
		logger.Fatalf("Connect to postgres: %v", err)
	}
	defer pool.Close()

	chConn, err := migrations.RunClickhouseMigrations(ctx, *clickhouseDSN)
	if err != nil {
		logger.Fatalf("Clickhouse migrations: %v", err)
	}
	defer chConn.Close()

	tokens := pgstore.NewTokenStore(pool)
	txs := pgstore.NewTransactionStore(pool)
	points := chstore.NewPriceHistoryStore(chConn)

	service := pricehistory.NewService(txs,
		pricehistory.WithPointStore(points),
		pricehistory.WithLogger(logger),
	)

	start := time.Now()
	rebuilt, buckets, err := run(ctx, service, tokens, *tokenID, intervalList, logger)
	if err != nil {
		logger.Fatalf("Backfill failed: %v", err)
	}

	logger.Printf("Backfill complete: %d token/interval views, %d buckets in %v",
		rebuilt, buckets, time.Since(start).Round(time.Millisecond))
}

// run rebuilds every requested (token, interval) view and returns the
// view and bucket counts.
func run(ctx context.Context, service *pricehistory.Service, tokens *pgstore.TokenStore, tokenID string, intervals []int, logger *log.Logger) (int, int, error) {
	if tokenID != "" {
		return rebuildToken(ctx, service, tokenID, intervals, logger)
	}

	var rebuilt, buckets int
	for offset := 0; ; offset += tokenPageSize {
		page, err := tokens.List(ctx, tokenPageSize, offset)
		if err != nil {
			return rebuilt, buckets, fmt.Errorf("list tokens at offset %d: %w", offset, err)
		}
		if len(page) == 0 {
			return rebuilt, buckets, nil
		}

		for _, t := range page {
			r, b, err := rebuildToken(ctx, service, t.ID, intervals, logger)
			rebuilt += r
			buckets += b
			if err != nil {
				return rebuilt, buckets, err
			}
		}
	}
}

func rebuildToken(ctx context.Context, service *pricehistory.Service, tokenID string, intervals []int, logger *log.Logger) (int, int, error) {
	var rebuilt, buckets int
	for _, interval := range intervals {
		if err := ctx.Err(); err != nil {
			return rebuilt, buckets, err
		}
		n, err := service.Rebuild(ctx, tokenID, interval)
		if err != nil {
			return rebuilt, buckets, fmt.Errorf("rebuild %s at %ds: %w", tokenID, interval, err)
		}
		logger.Printf("Rebuilt %s at %ds: %d buckets", tokenID, interval, n)
		rebuilt++
		buckets += n
	}
	return rebuilt, buckets, nil
}

func parseIntervals(raw string) ([]int, error) {
	var list []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", part, err)
		}
		if !pricehistory.SupportedInterval(n) {
			return nil, fmt.Errorf("unsupported interval %d", n)
		}
		list = append(list, n)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("no intervals given")
	}
	return list, nil
}
