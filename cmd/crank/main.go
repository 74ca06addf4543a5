// Package main provides a one-shot crank CLI: it submits a single
// distribution page for a vault directly against the stores, loading the
// investor snapshot from a JSON file.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"star-fee-distributor/internal/cpamm/stub"
	"star-fee-distributor/internal/crank"
	"star-fee-distributor/internal/domain"
	"star-fee-distributor/internal/events"
	"star-fee-distributor/internal/solana"
	pgstore "star-fee-distributor/internal/storage/postgres"
	"star-fee-distributor/internal/treasury"
)

// investorFile is the JSON shape of the investor snapshot file.
type investorFile struct {
	TotalInvestors uint64 `json:"total_investors"`
	Investors      []struct {
		Stream       string `json:"stream"`
		QuoteATA     string `json:"quote_ata"`
		LockedAmount uint64 `json:"locked_amount"`
	} `json:"investors"`
}

func main() {
	// Parse flags
	vault := flag.String("vault", "", "Vault address (required)")
	page := flag.Uint64("page", 0, "Page number, 1-indexed (required)")
	pageSize := flag.Uint64("page-size", 25, "Investors per page")
	creator := flag.String("creator", "", "Creator quote token account")
	investorsPath := flag.String("investors", "", "Path to investor snapshot JSON (required)")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	accrueQuote := flag.Uint64("accrue-quote", 0, "Quote fee accrual to claim in this run (simulation)")
	outputJSON := flag.Bool("json", false, "Output result as JSON")

	flag.Parse()

	logger := log.New(os.Stderr, "[crank] ", log.LstdFlags)

	if *vault == "" {
		logger.Fatal("--vault is required")
	}
	if *page == 0 {
		logger.Fatal("--page is required")
	}
	if *investorsPath == "" {
		logger.Fatal("--investors is required")
	}
	if *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	// Load investor snapshot
	data, err := os.ReadFile(*investorsPath)
	if err != nil {
		logger.Fatalf("read investors file: %v", err)
	}
	var file investorFile
	if err := json.Unmarshal(data, &file); err != nil {
		logger.Fatalf("parse investors file: %v", err)
	}

	// Create stores
	pool, err := pgstore.NewPool(ctx, *postgresDSN)
	if err != nil {
		logger.Fatalf("connect to postgres: %v", err)
	}
	defer pool.Close()

	claimer := stub.NewClaimer()
	ledger := treasury.NewLedger()
	if *accrueQuote > 0 {
		position, _, err := solana.DerivePositionOwnerAddress(*vault)
		if err != nil {
			logger.Fatalf("derive position owner: %v", err)
		}
		claimer.Accrue(position, 0, *accrueQuote)
	}

	orch := crank.New(crank.Options{
		PolicyStore:   pgstore.NewPolicyStore(pool),
		ProgressStore: pgstore.NewProgressStore(pool),
		Committer:     pgstore.NewCommitter(pool),
		Claimer:       claimer,
		Treasury:      ledger,
		Funder:        ledger,
		Events:        events.NewLogSink(log.New(os.Stderr, "[events] ", log.LstdFlags)),
		Logger:        logger,
	})

	req := crank.CrankRequest{
		Vault:          *vault,
		Page:           *page,
		PageSize:       *pageSize,
		TotalInvestors: file.TotalInvestors,
		Creator:        *creator,
	}
	for _, inv := range file.Investors {
		req.Investors = append(req.Investors, domain.InvestorRecord{
			Stream:       inv.Stream,
			QuoteATA:     inv.QuoteATA,
			LockedAmount: inv.LockedAmount,
		})
	}

	res, err := orch.Crank(ctx, req)
	if err != nil {
		logger.Fatalf("crank failed: %v", err)
	}

	if *outputJSON {
		json.NewEncoder(os.Stdout).Encode(res)
		return
	}
	fmt.Printf("day %d page %d: distributed %d to %d investors, carry-over %d\n",
		res.Day, res.Page, res.Distributed, res.PayoutCount, res.CarryOver)
	if res.DayComplete {
		fmt.Printf("day closed, creator remainder %d\n", res.CreatorRemainder)
	}
}
