// Package main runs the launchpad API server: token launches, bonding
// curve trades, creator fee claims, holder and price projections, and a
// WebSocket trade feed, all behind one HTTP listener.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"meme-launchpad/internal/assets"
	"meme-launchpad/internal/curve"
	"meme-launchpad/internal/domain"
	"meme-launchpad/internal/holders"
	"meme-launchpad/internal/ledger"
	"meme-launchpad/internal/observability"
	"meme-launchpad/internal/pricehistory"
	"meme-launchpad/internal/risk"
	"meme-launchpad/internal/storage"
	chstore "meme-launchpad/internal/storage/clickhouse"
	"meme-launchpad/internal/storage/memory"
	"meme-launchpad/internal/storage/migrations"
	pgstore "meme-launchpad/internal/storage/postgres"
	"meme-launchpad/internal/stream"
	"meme-launchpad/internal/trading"
)

// Server holds all components of the API service.
type Server struct {
	executor  *trading.Executor
	launcher  *trading.Launcher
	claimer   *trading.FeeClaimer
	holders   *holders.Service
	history   *pricehistory.Service
	hub       *stream.Hub
	assetHost *assets.MemoryHost
	stores    *appStores
	logger    *log.Logger

	startedAt time.Time
	trades    atomic.Int64
	launches  atomic.Int64
}

// appStores holds all storage implementations.
type appStores struct {
	tokens    storage.TokenStore
	txs       storage.TransactionStore
	fees      storage.CreatorFeeStore
	watchlist storage.WatchlistStore
	points    storage.PricePointStore
	committer storage.TradeCommitter
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	addr := flag.String("addr", envOr("SERVER_ADDR", ":8080"), "HTTP listen address")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("LEDGER_RPC_ENDPOINT"), "Ledger RPC endpoint (empty: deterministic in-process ledger)")
	assetBaseURL := flag.String("asset-base-url", envOr("ASSET_BASE_URL", "http://localhost:8080/assets"), "Base URL for hosted token assets")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")

	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	var led ledger.Ledger
	if *rpcEndpoint == "" {
		logger.Println("No RPC endpoint configured, using deterministic in-process ledger")
		led = ledger.NewFake("launchpad")
	} else {
		led = ledger.NewRPCLedger(*rpcEndpoint)
	}

	server := newServer(stores, led, *assetBaseURL, logger)

	mux := http.NewServeMux()
	server.registerRoutes(mux)

	httpServer := &http.Server{
		Addr:         *addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		go func() {
			// Wait for second signal for immediate shutdown
			sig := <-sigCh
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		}()

		server.hub.Close()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("Shutdown error: %v", err)
		}
	}()

	logger.Printf("Starting HTTP server on %s", *addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("HTTP server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// newServer wires all components against the given stores and ledger.
func newServer(stores *appStores, led ledger.Ledger, assetBaseURL string, logger *log.Logger) *Server {
	engine := curve.New(curve.DefaultParams())
	hub := stream.NewHub(nil, log.New(os.Stdout, "[stream] ", log.LstdFlags))
	assetHost := assets.NewMemoryHost(assetBaseURL)

	executor := trading.NewExecutor(engine, stores.tokens, stores.committer, led,
		trading.WithPublisher(hub),
		trading.WithLogger(log.New(os.Stdout, "[trading] ", log.LstdFlags)),
	)
	launcher := trading.NewLauncher(stores.tokens, executor, assetHost, engine,
		trading.WithLauncherLogger(log.New(os.Stdout, "[launch] ", log.LstdFlags)),
	)
	claimer := trading.NewFeeClaimer(stores.fees)

	historyOpts := []pricehistory.ServiceOption{}
	if stores.points != nil {
		historyOpts = append(historyOpts, pricehistory.WithPointStore(stores.points))
	}

	return &Server{
		executor:  executor,
		launcher:  launcher,
		claimer:   claimer,
		holders:   holders.NewService(stores.tokens, stores.txs),
		history:   pricehistory.NewService(stores.txs, historyOpts...),
		hub:       hub,
		assetHost: assetHost,
		stores:    stores,
		logger:    logger,
		startedAt: time.Now(),
	}
}

// createStores creates all required stores.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*appStores, func(), error) {
	if useMemory {
		tokens := memory.NewTokenStore()
		txs := memory.NewTransactionStore()
		fees := memory.NewCreatorFeeStore()
		stores := &appStores{
			tokens:    tokens,
			txs:       txs,
			fees:      fees,
			watchlist: memory.NewWatchlistStore(),
			points:    memory.NewPriceHistoryStore(),
			committer: memory.NewTradeCommitter(tokens, txs, fees),
		}
		return stores, func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}

	// ClickHouse (migrations create the database and tables, then reconnect)
	chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
	}

	stores := &appStores{
		tokens:    pgstore.NewTokenStore(pool),
		txs:       pgstore.NewTransactionStore(pool),
		fees:      pgstore.NewCreatorFeeStore(pool),
		watchlist: pgstore.NewWatchlistStore(pool),
		points:    chstore.NewPriceHistoryStore(chConn),
		committer: pgstore.NewTradeCommitter(pool),
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}

	return stores, cleanup, nil
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", observability.Handler())
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.Handle("GET /ws", s.hub)

	mux.HandleFunc("POST /api/tokens", s.handleLaunch)
	mux.HandleFunc("GET /api/tokens", s.handleListTokens)
	mux.HandleFunc("GET /api/tokens/{id}", s.handleGetToken)
	mux.HandleFunc("GET /api/tokens/{id}/quote", s.handleQuote)
	mux.HandleFunc("POST /api/tokens/{id}/trades", s.handleTrade)
	mux.HandleFunc("GET /api/tokens/{id}/transactions", s.handleTransactions)
	mux.HandleFunc("GET /api/tokens/{id}/holders", s.handleHolders)
	mux.HandleFunc("GET /api/tokens/{id}/whales", s.handleWhales)
	mux.HandleFunc("GET /api/tokens/{id}/history", s.handleHistory)
	mux.HandleFunc("GET /api/tokens/{id}/history/summary", s.handleHistorySummary)
	mux.HandleFunc("GET /api/tokens/{id}/risk", s.handleRisk)

	mux.HandleFunc("POST /api/fees/claim", s.handleClaim)

	mux.HandleFunc("GET /api/users/{address}/watchlist", s.handleWatchlist)
	mux.HandleFunc("POST /api/users/{address}/watchlist", s.handleWatchlistAdd)
	mux.HandleFunc("DELETE /api/users/{address}/watchlist/{token}", s.handleWatchlistRemove)

	mux.HandleFunc("GET /assets/{file}", s.handleAsset)
}

// launchPayload is the JSON body for POST /api/tokens. Image and banner
// bytes arrive base64-encoded.
type launchPayload struct {
	Name           string  `json:"name"`
	Symbol         string  `json:"symbol"`
	Description    string  `json:"description"`
	CreatorAddress string  `json:"creatorAddress"`
	Image          []byte  `json:"image,omitempty"`
	ImageMime      string  `json:"imageMime,omitempty"`
	Banner         []byte  `json:"banner,omitempty"`
	BannerMime     string  `json:"bannerMime,omitempty"`
	Website        string  `json:"website,omitempty"`
	Twitter        string  `json:"twitter,omitempty"`
	Telegram       string  `json:"telegram,omitempty"`
	TotalSupply    float64 `json:"totalSupply,omitempty"`
	InitialBuySol  float64 `json:"initialBuySol,omitempty"`
}

func (s *Server) handleLaunch(w http.ResponseWriter, r *http.Request) {
	var p launchPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}

	token, trade, err := s.launcher.Launch(r.Context(), &trading.LaunchRequest{
		Name:           p.Name,
		Symbol:         p.Symbol,
		Description:    p.Description,
		CreatorAddress: p.CreatorAddress,
		Image:          p.Image,
		ImageMime:      p.ImageMime,
		Banner:         p.Banner,
		BannerMime:     p.BannerMime,
		Website:        p.Website,
		Twitter:        p.Twitter,
		Telegram:       p.Telegram,
		TotalSupply:    p.TotalSupply,
		InitialBuySol:  p.InitialBuySol,
	})
	if err != nil && token == nil {
		observability.RecordLaunchFailure(tradeErrorCode(err))
		writeTradeError(w, err)
		return
	}

	s.launches.Add(1)
	observability.RecordLaunch(token.RugScore)

	resp := map[string]any{"token": tokenView(token)}
	if trade != nil {
		resp["initialBuy"] = trade
	}
	if err != nil {
		// Token stands even when the dev buy failed.
		resp["initialBuyError"] = err.Error()
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListTokens(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)
	if limit < 1 || limit > 500 {
		limit = 50
	}

	tokens, err := s.stores.tokens.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}

	views := make([]*tokenResponse, 0, len(tokens))
	for _, t := range tokens {
		views = append(views, tokenView(t))
	}
	writeJSON(w, http.StatusOK, map[string]any{"tokens": views, "limit": limit, "offset": offset})
}

func (s *Server) handleGetToken(w http.ResponseWriter, r *http.Request) {
	token, err := s.stores.tokens.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, trading.CodeTokenNotFound, "token not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, tokenView(token))
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	direction := strings.ToUpper(r.URL.Query().Get("direction"))
	amount, err := strconv.ParseFloat(r.URL.Query().Get("amount"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, trading.CodeInvalidInput, "amount must be a number")
		return
	}

	quote, err := s.executor.Quote(r.Context(), r.PathValue("id"), direction, amount)
	if err != nil {
		writeTradeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

// tradePayload is the JSON body for POST /api/tokens/{id}/trades.
type tradePayload struct {
	Direction         string  `json:"direction"`
	Amount            float64 `json:"amount"`
	UserAddress       string  `json:"userAddress"`
	SlippageTolerance float64 `json:"slippageTolerance,omitempty"`
}

func (s *Server) handleTrade(w http.ResponseWriter, r *http.Request) {
	var p tradePayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}

	start := time.Now()
	result, err := s.executor.ExecuteTrade(r.Context(), &trading.TradeRequest{
		TokenID:           r.PathValue("id"),
		Direction:         strings.ToUpper(p.Direction),
		Amount:            p.Amount,
		UserAddress:       p.UserAddress,
		SlippageTolerance: p.SlippageTolerance,
	})
	if err != nil {
		observability.RecordRejection(tradeErrorCode(err))
		writeTradeError(w, err)
		return
	}

	s.trades.Add(1)
	observability.RecordTrade(result.Direction, result.SolAmount, time.Since(start).Seconds())
	observability.RecordFees(result.Fee)
	if result.Graduated {
		observability.RecordGraduation()
	}

	// Holder projection is stale the moment a trade settles.
	s.holders.Refresh(result.TokenID)

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	tokenID := r.PathValue("id")

	var (
		txs []*domain.Transaction
		err error
	)
	if user := r.URL.Query().Get("user"); user != "" {
		txs, err = s.stores.txs.GetByUserAndToken(r.Context(), user, tokenID)
	} else {
		txs, err = s.stores.txs.GetByToken(r.Context(), tokenID)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": txs})
}

func (s *Server) handleHolders(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", holders.MaxHolders)
	list, err := s.holders.GetHolders(r.Context(), r.PathValue("id"), limit)
	if err != nil {
		writeHoldersError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"holders": list})
}

func (s *Server) handleWhales(w http.ResponseWriter, r *http.Request) {
	list, err := s.holders.GetWhales(r.Context(), r.PathValue("id"))
	if err != nil {
		writeHoldersError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"whales": list})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	hours := queryInt(r, "hours", pricehistory.DefaultLookbackHours)
	interval := queryInt(r, "interval", pricehistory.DefaultIntervalSeconds)

	points, err := s.history.GetHistory(r.Context(), r.PathValue("id"), hours, interval)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"points": points, "intervalSeconds": interval})
}

func (s *Server) handleHistorySummary(w http.ResponseWriter, r *http.Request) {
	hours := queryInt(r, "hours", pricehistory.DefaultLookbackHours)
	interval := queryInt(r, "interval", pricehistory.DefaultIntervalSeconds)

	summary, err := s.history.GetSummary(r.Context(), r.PathValue("id"), hours, interval)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleRisk(w http.ResponseWriter, r *http.Request) {
	token, err := s.stores.tokens.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, trading.CodeTokenNotFound, "token not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}

	meta := &risk.Metadata{
		Name:           token.Name,
		Symbol:         token.Symbol,
		Description:    token.Description,
		ImageURL:       token.ImageURL,
		BannerURL:      token.BannerURL,
		Website:        token.Website,
		Twitter:        token.Twitter,
		Telegram:       token.Telegram,
		CreatorAddress: token.CreatorAddress,
		TotalSupply:    token.TotalSupply,
	}
	// Creator's earliest buy counts as the dev buy for scoring.
	if txs, err := s.stores.txs.GetByUserAndToken(r.Context(), token.CreatorAddress, token.ID); err == nil {
		for i := len(txs) - 1; i >= 0; i-- {
			if txs[i].Type == domain.TxTypeBuy {
				meta.InitialBuy = txs[i].SolAmount
			}
		}
	}

	writeJSON(w, http.StatusOK, risk.DetailedAnalysis(meta))
}

// claimPayload is the JSON body for POST /api/fees/claim. An empty
// tokenAddress claims across all of the creator's tokens.
type claimPayload struct {
	CreatorAddress string `json:"creatorAddress"`
	TokenAddress   string `json:"tokenAddress,omitempty"`
}

func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request) {
	var p claimPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	if p.CreatorAddress == "" {
		writeError(w, http.StatusBadRequest, trading.CodeInvalidInput, "creatorAddress is required")
		return
	}

	if p.TokenAddress != "" {
		result, err := s.claimer.Claim(r.Context(), p.CreatorAddress, p.TokenAddress)
		if err != nil {
			writeTradeError(w, err)
			return
		}
		observability.RecordClaim(result.Amount)
		writeJSON(w, http.StatusOK, map[string]any{"claims": []*domain.ClaimResult{result}})
		return
	}

	results, err := s.claimer.ClaimAll(r.Context(), p.CreatorAddress)
	if err != nil {
		writeTradeError(w, err)
		return
	}
	for _, res := range results {
		observability.RecordClaim(res.Amount)
	}
	writeJSON(w, http.StatusOK, map[string]any{"claims": results})
}

func (s *Server) handleWatchlist(w http.ResponseWriter, r *http.Request) {
	entries, err := s.stores.watchlist.ListByUser(r.Context(), r.PathValue("address"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"watchlist": entries})
}

func (s *Server) handleWatchlistAdd(w http.ResponseWriter, r *http.Request) {
	var p struct {
		TokenID string `json:"tokenId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	if p.TokenID == "" {
		writeError(w, http.StatusBadRequest, trading.CodeInvalidInput, "tokenId is required")
		return
	}

	// Reject watchlist entries for tokens that do not exist.
	if _, err := s.stores.tokens.GetByID(r.Context(), p.TokenID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, trading.CodeTokenNotFound, "token not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}

	entry := &domain.WatchlistEntry{
		UserAddress: r.PathValue("address"),
		TokenID:     p.TokenID,
		CreatedAt:   time.Now().UnixMilli(),
	}
	if err := s.stores.watchlist.Add(r.Context(), entry); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			writeError(w, http.StatusConflict, "ALREADY_WATCHING", "token already on watchlist")
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleWatchlistRemove(w http.ResponseWriter, r *http.Request) {
	err := s.stores.watchlist.Remove(r.Context(), r.PathValue("address"), r.PathValue("token"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_WATCHING", "token not on watchlist")
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	file := r.PathValue("file")
	key, ext, ok := strings.Cut(file, ".")
	if !ok {
		http.NotFound(w, r)
		return
	}
	data, found := s.assetHost.Get(key)
	if !found {
		http.NotFound(w, r)
		return
	}

	switch ext {
	case "png":
		w.Header().Set("Content-Type", "image/png")
	case "jpg":
		w.Header().Set("Content-Type", "image/jpeg")
	case "gif":
		w.Header().Set("Content-Type", "image/gif")
	case "webp":
		w.Header().Set("Content-Type", "image/webp")
	default:
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	w.Write(data)
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status         string `json:"status"`
	Uptime         string `json:"uptime"`
	TradesServed   int64  `json:"trades_served"`
	TokensLaunched int64  `json:"tokens_launched"`
	StreamClients  int    `json:"stream_clients"`
	StreamDropped  uint64 `json:"stream_dropped"`
}

// handleStatus returns server status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Status:         "running",
		Uptime:         time.Since(s.startedAt).String(),
		TradesServed:   s.trades.Load(),
		TokensLaunched: s.launches.Load(),
		StreamClients:  s.hub.ClientCount(),
		StreamDropped:  s.hub.Dropped(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// tokenResponse is the JSON view of a token.
type tokenResponse struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Symbol         string  `json:"symbol"`
	CreatorAddress string  `json:"creatorAddress"`
	MintAddress    string  `json:"mintAddress"`
	CurveAddress   string  `json:"curveAddress"`
	Description    string  `json:"description,omitempty"`
	ImageURL       string  `json:"imageUrl,omitempty"`
	BannerURL      string  `json:"bannerUrl,omitempty"`
	Website        string  `json:"website,omitempty"`
	Twitter        string  `json:"twitter,omitempty"`
	Telegram       string  `json:"telegram,omitempty"`
	TotalSupply    float64 `json:"totalSupply"`
	CurrentSupply  float64 `json:"currentSupply"`
	Price          float64 `json:"price"`
	MarketCap      float64 `json:"marketCap"`
	IsGraduated    bool    `json:"isGraduated"`
	GraduatedAt    *int64  `json:"graduatedAt,omitempty"`
	RugScore       int     `json:"rugScore"`
	CreatedAt      int64   `json:"createdAt"`
	UpdatedAt      int64   `json:"updatedAt"`
}

func tokenView(t *domain.Token) *tokenResponse {
	return &tokenResponse{
		ID:             t.ID,
		Name:           t.Name,
		Symbol:         t.Symbol,
		CreatorAddress: t.CreatorAddress,
		MintAddress:    t.MintAddress,
		CurveAddress:   t.CurveAddress,
		Description:    t.Description,
		ImageURL:       t.ImageURL,
		BannerURL:      t.BannerURL,
		Website:        t.Website,
		Twitter:        t.Twitter,
		Telegram:       t.Telegram,
		TotalSupply:    t.TotalSupply,
		CurrentSupply:  t.CurrentSupply,
		Price:          t.Price,
		MarketCap:      t.MarketCap,
		IsGraduated:    t.IsGraduated,
		GraduatedAt:    t.GraduatedAt,
		RugScore:       t.RugScore,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Code      string  `json:"code"`
	Message   string  `json:"message"`
	Impact    float64 `json:"impact,omitempty"`
	Tolerance float64 `json:"tolerance,omitempty"`
	Requested float64 `json:"requested,omitempty"`
	Available float64 `json:"available,omitempty"`
}

// writeTradeError maps trading errors onto HTTP statuses.
func writeTradeError(w http.ResponseWriter, err error) {
	var te *trading.TradeError
	if !errors.As(err, &te) {
		writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
		return
	}

	status := http.StatusInternalServerError
	switch te.Code {
	case trading.CodeInvalidInput, trading.CodePriceImpactExceeded, trading.CodeInsufficientSupply:
		status = http.StatusBadRequest
	case trading.CodeTokenNotFound, trading.CodeFeesNotFound:
		status = http.StatusNotFound
	case trading.CodeTokenExists, trading.CodeGraduatedToken, trading.CodeNothingToClaim:
		status = http.StatusConflict
	case trading.CodeLedgerSubmission:
		status = http.StatusBadGateway
	}

	writeJSON(w, status, errorResponse{
		Code:      te.Code,
		Message:   te.Message,
		Impact:    te.Impact,
		Tolerance: te.Tolerance,
		Requested: te.Requested,
		Available: te.Available,
	})
}

func writeHoldersError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, trading.CodeTokenNotFound, "token not found")
		return
	}
	writeError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
}

func tradeErrorCode(err error) string {
	var te *trading.TradeError
	if errors.As(err, &te) {
		return te.Code
	}
	return "INTERNAL"
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
