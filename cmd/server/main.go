// Package main provides the unified fee distribution server:
// - HTTP API: vault initialization, permissionless crank submission, state reads
// - Live event stream over websocket, optional ClickHouse analytics sink
// - Optional auto-crank scheduler that pages through each vault's investors
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"star-fee-distributor/internal/cpamm/stub"
	"star-fee-distributor/internal/crank"
	"star-fee-distributor/internal/distribution"
	"star-fee-distributor/internal/domain"
	"star-fee-distributor/internal/events"
	"star-fee-distributor/internal/observability"
	"star-fee-distributor/internal/solana"
	"star-fee-distributor/internal/storage"
	chstore "star-fee-distributor/internal/storage/clickhouse"
	"star-fee-distributor/internal/storage/memory"
	"star-fee-distributor/internal/storage/migrations"
	pgstore "star-fee-distributor/internal/storage/postgres"
	"star-fee-distributor/internal/treasury"
	"star-fee-distributor/internal/vesting"
)

// Server holds all components of the distribution service.
type Server struct {
	// Stores
	policies storage.PolicyStore
	progress storage.ProgressStore
	payouts  storage.PayoutStore

	// Components
	orch        *crank.Orchestrator
	provider    *vesting.LinearProvider
	claimer     *stub.Claimer
	ledger      *treasury.Ledger
	broadcaster *events.Broadcaster
	logger      *log.Logger

	// Configuration
	authToken     string
	pageSize      uint64
	crankInterval time.Duration

	// State
	mu           sync.Mutex
	creators     map[string]string // vault -> creator quote ATA
	lastCrankRun time.Time
	crankRuns    int
	started      time.Time
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	listenAddr := flag.String("listen-addr", envOr("LISTEN_ADDR", ":8080"), "HTTP listen address")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (optional event sink)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	authToken := flag.String("auth-token", os.Getenv("AUTH_TOKEN"), "Capability token required to initialize vaults")
	crankInterval := flag.Duration("crank-interval", 0, "Auto-crank interval (0 disables the scheduler)")
	pageSize := flag.Uint64("page-size", 25, "Investors per page for the auto-crank scheduler")

	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}
	if *pageSize == 0 {
		logger.Fatal("--page-size must be greater than zero")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Stores
	policies, progress, payouts, committer, cleanup, err := createStores(ctx, *postgresDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Event sinks: always log + websocket, ClickHouse when configured
	broadcaster := events.NewBroadcaster(log.New(os.Stdout, "[ws] ", log.LstdFlags))
	defer broadcaster.Close()
	sinks := events.MultiSink{
		events.NewLogSink(log.New(os.Stdout, "[events] ", log.LstdFlags)),
		broadcaster,
	}
	if *clickhouseDSN != "" {
		chConn, err := chstore.NewConn(ctx, *clickhouseDSN)
		if err != nil {
			logger.Fatalf("Failed to connect to clickhouse: %v", err)
		}
		defer chConn.Close()

		eventStore := chstore.NewEventStore(chConn)
		if err := eventStore.EnsureSchema(ctx); err != nil {
			logger.Fatalf("Failed to ensure clickhouse schema: %v", err)
		}
		sinks = append(sinks, events.NewClickHouseSink(eventStore, log.New(os.Stdout, "[chsink] ", log.LstdFlags)))
		logger.Println("ClickHouse event sink enabled")
	}

	metrics := observability.NewMetrics("")
	claimer := stub.NewClaimer()
	ledger := treasury.NewLedger()
	provider := vesting.NewLinearProvider()

	orch := crank.New(crank.Options{
		PolicyStore:   policies,
		ProgressStore: progress,
		Committer:     committer,
		Claimer:       claimer,
		Treasury:      ledger,
		Funder:        ledger,
		Events:        sinks,
		Metrics:       metrics,
		Logger:        log.New(os.Stdout, "[crank] ", log.LstdFlags),
	})

	server := &Server{
		policies:      policies,
		progress:      progress,
		payouts:       payouts,
		orch:          orch,
		provider:      provider,
		claimer:       claimer,
		ledger:        ledger,
		broadcaster:   broadcaster,
		logger:        logger,
		authToken:     *authToken,
		pageSize:      *pageSize,
		crankInterval: *crankInterval,
		creators:      make(map[string]string),
		started:       time.Now(),
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	if *crankInterval > 0 {
		go server.runCrankScheduler(ctx)
	}

	httpServer := &http.Server{Addr: *listenAddr, Handler: server.routes()}
	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("HTTP shutdown error: %v", err)
		}
	}()

	logger.Printf("Listening on %s", *listenAddr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("HTTP server error: %v", err)
	}
	logger.Println("Shutdown complete")
}

// createStores wires either in-memory or PostgreSQL-backed stores.
func createStores(ctx context.Context, postgresDSN string, useMemory bool) (
	storage.PolicyStore, storage.ProgressStore, storage.PayoutStore, storage.PageCommitter, func(), error,
) {
	if useMemory {
		policies := memory.NewPolicyStore()
		progress := memory.NewProgressStore()
		payouts := memory.NewPayoutStore()
		return policies, progress, payouts, memory.NewCommitter(progress, payouts), func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, nil, nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	return pgstore.NewPolicyStore(pool),
		pgstore.NewProgressStore(pool),
		pgstore.NewPayoutStore(pool),
		pgstore.NewCommitter(pool),
		pool.Close,
		nil
}

// routes builds the HTTP mux.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", observability.Handler())
	mux.Handle("GET /ws", s.broadcaster)
	mux.HandleFunc("GET /status", s.handleStatus)

	mux.HandleFunc("POST /v1/vaults", s.requireAuth(s.handleInitialize))
	mux.HandleFunc("GET /v1/vaults", s.handleListVaults)
	mux.HandleFunc("POST /v1/vaults/{vault}/streams", s.requireAuth(s.handleAddStream))
	mux.HandleFunc("POST /v1/vaults/{vault}/accrue", s.requireAuth(s.handleAccrue))

	// Cranking is permissionless: anyone may advance a vault's distribution.
	mux.HandleFunc("POST /v1/vaults/{vault}/crank", s.handleCrank)
	mux.HandleFunc("POST /v1/vaults/{vault}/crank-day", s.handleCrankDay)

	mux.HandleFunc("GET /v1/vaults/{vault}/policy", s.handleGetPolicy)
	mux.HandleFunc("GET /v1/vaults/{vault}/progress", s.handleGetProgress)
	mux.HandleFunc("GET /v1/vaults/{vault}/payouts", s.handleGetPayouts)

	return mux
}

// requireAuth gates mutating non-crank endpoints behind the capability token.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.authToken == "" {
			next(w, r)
			return
		}
		got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if got != s.authToken {
			writeJSONError(w, http.StatusUnauthorized, "invalid or missing capability token")
			return
		}
		next(w, r)
	}
}

type initializeRequest struct {
	Vault               string `json:"vault"`
	QuoteMint           string `json:"quote_mint"`
	Creator             string `json:"creator"`
	InvestorFeeShareBps uint16 `json:"investor_fee_share_bps"`
	DailyCap            uint64 `json:"daily_cap"`
	MinPayoutLamports   uint64 `json:"min_payout_lamports"`
	Y0                  uint64 `json:"y0"`
	Pool                struct {
		TokenA    string `json:"token_a"`
		TokenB    string `json:"token_b"`
		PoolID    string `json:"pool_id"`
		TickLower int32  `json:"tick_lower"`
		TickUpper int32  `json:"tick_upper"`
	} `json:"pool"`
}

func (s *Server) handleInitialize(w http.ResponseWriter, r *http.Request) {
	var req initializeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	res, err := s.orch.Initialize(r.Context(), crank.InitializeRequest{
		Vault:     req.Vault,
		QuoteMint: req.QuoteMint,
		Pool: domain.PoolConfig{
			TokenA:    req.Pool.TokenA,
			TokenB:    req.Pool.TokenB,
			PoolID:    req.Pool.PoolID,
			TickLower: req.Pool.TickLower,
			TickUpper: req.Pool.TickUpper,
		},
		InvestorFeeShareBps: req.InvestorFeeShareBps,
		DailyCap:            req.DailyCap,
		MinPayoutLamports:   req.MinPayoutLamports,
		Y0:                  req.Y0,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if req.Creator != "" {
		s.mu.Lock()
		s.creators[req.Vault] = req.Creator
		s.mu.Unlock()
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"policy":         res.Policy,
		"position_owner": res.PositionOwner,
		"treasury":       res.Treasury,
	})
}

type crankPageRequest struct {
	Page           uint64 `json:"page"`
	PageSize       uint64 `json:"page_size"`
	TotalInvestors uint64 `json:"total_investors"`
	Creator        string `json:"creator"`
	Investors      []struct {
		Stream       string `json:"stream"`
		QuoteATA     string `json:"quote_ata"`
		LockedAmount uint64 `json:"locked_amount"`
	} `json:"investors"`
}

func (s *Server) handleCrank(w http.ResponseWriter, r *http.Request) {
	vault := r.PathValue("vault")

	var req crankPageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	creq := crank.CrankRequest{
		Vault:          vault,
		Page:           req.Page,
		PageSize:       req.PageSize,
		TotalInvestors: req.TotalInvestors,
		Creator:        s.creatorFor(vault, req.Creator),
	}
	for _, inv := range req.Investors {
		creq.Investors = append(creq.Investors, domain.InvestorRecord{
			Stream:       inv.Stream,
			QuoteATA:     inv.QuoteATA,
			LockedAmount: inv.LockedAmount,
		})
	}

	// A request without an explicit snapshot pages through the registered
	// vesting streams instead.
	if len(creq.Investors) == 0 {
		if err := s.fillPageFromStreams(r.Context(), &creq); err != nil {
			writeError(w, err)
			return
		}
	}

	res, err := s.orch.Crank(r.Context(), creq)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCrankDay(w http.ResponseWriter, r *http.Request) {
	vault := r.PathValue("vault")

	var req struct {
		Creator  string `json:"creator"`
		PageSize uint64 `json:"page_size"`
	}
	// Body is optional: an empty POST cranks with registered defaults.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSONError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	pageSize := req.PageSize
	if pageSize == 0 {
		pageSize = s.pageSize
	}

	results, err := s.orch.RunDay(r.Context(), s.provider, crank.RunOptions{
		Vault:    vault,
		Creator:  s.creatorFor(vault, req.Creator),
		PageSize: pageSize,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pages": results})
}

func (s *Server) handleAddStream(w http.ResponseWriter, r *http.Request) {
	vault := r.PathValue("vault")

	var req struct {
		Address  string `json:"address"`
		QuoteATA string `json:"quote_ata"`
		Total    uint64 `json:"total"`
		StartTS  int64  `json:"start_ts"`
		EndTS    int64  `json:"end_ts"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Address == "" || req.QuoteATA == "" {
		writeJSONError(w, http.StatusBadRequest, "address and quote_ata are required")
		return
	}

	s.provider.AddStream(vesting.LinearStream{
		Address:  req.Address,
		QuoteATA: req.QuoteATA,
		Vault:    vault,
		Total:    req.Total,
		StartTS:  req.StartTS,
		EndTS:    req.EndTS,
	})
	w.WriteHeader(http.StatusNoContent)
}

// handleAccrue injects fee accrual into the stub claimer. Simulation hook
// for deployments without a live CP-AMM integration.
func (s *Server) handleAccrue(w http.ResponseWriter, r *http.Request) {
	vault := r.PathValue("vault")

	var req struct {
		BaseAmount  uint64 `json:"base_amount"`
		QuoteAmount uint64 `json:"quote_amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	position, _, err := solana.DerivePositionOwnerAddress(vault)
	if err != nil {
		writeError(w, err)
		return
	}
	s.claimer.Accrue(position, req.BaseAmount, req.QuoteAmount)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListVaults(w http.ResponseWriter, r *http.Request) {
	vaults, err := s.policies.ListVaults(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"vaults": vaults})
}

func (s *Server) handleGetPolicy(w http.ResponseWriter, r *http.Request) {
	policy, err := s.policies.GetByVault(r.Context(), r.PathValue("vault"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, policy)
}

func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	prog, err := s.progress.GetByVault(r.Context(), r.PathValue("vault"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prog)
}

func (s *Server) handleGetPayouts(w http.ResponseWriter, r *http.Request) {
	day, err := strconv.ParseInt(r.URL.Query().Get("day"), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "day query parameter is required")
		return
	}

	payouts, err := s.payouts.GetByVaultDay(r.Context(), r.PathValue("vault"), day)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"payouts": payouts})
}

// StatusResponse is the JSON response for the /status endpoint.
type StatusResponse struct {
	Status       string    `json:"status"`
	Uptime       string    `json:"uptime"`
	Subscribers  int       `json:"ws_subscribers"`
	LastCrankRun time.Time `json:"last_crank_run,omitempty"`
	CrankRuns    int       `json:"crank_runs"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := StatusResponse{
		Status:       "running",
		Uptime:       time.Since(s.started).String(),
		Subscribers:  s.broadcaster.SubscriberCount(),
		LastCrankRun: s.lastCrankRun,
		CrankRuns:    s.crankRuns,
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}

// runCrankScheduler periodically attempts a full-day crank for every vault.
// Vaults whose window has not opened yet are skipped silently.
func (s *Server) runCrankScheduler(ctx context.Context) {
	s.logger.Printf("Starting auto-crank scheduler (interval: %v)...", s.crankInterval)

	ticker := time.NewTicker(s.crankInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.crankAllVaults(ctx)
		}
	}
}

func (s *Server) crankAllVaults(ctx context.Context) {
	vaults, err := s.policies.ListVaults(ctx)
	if err != nil {
		s.logger.Printf("Auto-crank: list vaults: %v", err)
		return
	}

	for _, vault := range vaults {
		creator := s.creatorFor(vault, "")
		if creator == "" {
			s.logger.Printf("Auto-crank: vault %s has no creator registered, skipping", vault)
			continue
		}

		_, err := s.orch.RunDay(ctx, s.provider, crank.RunOptions{
			Vault:    vault,
			Creator:  creator,
			PageSize: s.pageSize,
		})
		switch {
		case err == nil:
			s.logger.Printf("Auto-crank: vault %s day complete", vault)
		case errors.Is(err, crank.ErrDistributionTooEarly),
			errors.Is(err, crank.ErrDistributionAlreadyComplete):
			// Window not open yet, try again next tick.
		default:
			s.logger.Printf("Auto-crank: vault %s: %v", vault, err)
		}
	}

	s.mu.Lock()
	s.lastCrankRun = time.Now()
	s.crankRuns++
	s.mu.Unlock()
}

// fillPageFromStreams builds the page's investor snapshot from the vesting
// provider when the caller did not supply one.
func (s *Server) fillPageFromStreams(ctx context.Context, req *crank.CrankRequest) error {
	streams, err := s.provider.ListStreams(ctx, req.Vault)
	if err != nil {
		return err
	}
	total := uint64(len(streams))
	if req.TotalInvestors == 0 {
		req.TotalInvestors = total
	}
	if req.PageSize == 0 {
		req.PageSize = s.pageSize
	}

	start, end, err := distribution.PageBounds(req.Page, req.PageSize)
	if err != nil {
		return err
	}
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	now := time.Now().Unix()
	for _, st := range streams[start:end] {
		locked, err := s.provider.LockedAmount(ctx, st.Address, now)
		if err != nil {
			return err
		}
		req.Investors = append(req.Investors, domain.InvestorRecord{
			Stream:       st.Address,
			QuoteATA:     st.QuoteATA,
			LockedAmount: locked,
		})
	}
	return nil
}

// creatorFor resolves the creator account: explicit request value first,
// then the address registered at initialization.
func (s *Server) creatorFor(vault, explicit string) string {
	if explicit != "" {
		return explicit
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creators[vault]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeError maps domain errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, crank.ErrAlreadyInitialized),
		errors.Is(err, crank.ErrDistributionAlreadyComplete),
		errors.Is(err, storage.ErrDuplicateKey):
		writeJSONError(w, http.StatusConflict, err.Error())
	case errors.Is(err, crank.ErrDistributionTooEarly):
		writeJSONError(w, http.StatusTooEarly, err.Error())
	case errors.Is(err, distribution.ErrBaseFeeDetected):
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, distribution.ErrInvalidPage),
		errors.Is(err, distribution.ErrNoLockedInvestors),
		errors.Is(err, distribution.ErrInvalidPoolTokenOrder),
		errors.Is(err, storage.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidFeeShareBps),
		errors.Is(err, domain.ErrInvalidDailyCap),
		errors.Is(err, domain.ErrInvalidMinPayout),
		errors.Is(err, domain.ErrInvalidY0):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	default:
		writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}

// envOr returns the environment variable's value or a fallback.
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
