package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"tesoro/internal/domain/authz"
	"tesoro/internal/domain/treasurer"
	"tesoro/internal/infrastructure/postgres"
	"tesoro/internal/shared/auth"
	"tesoro/internal/shared/config"
)

const usage = `Tesoro Admin CLI - Management commands for the Tesoro API

Usage:
  admin <command> [options]

Commands:
  create-treasurer   Register a treasurer account
  verify-balances    Check every fund balance against its ledger

Examples:
  # Register a national treasurer
  admin create-treasurer --email=nt@example.org --name="Ana" --role=national_treasurer --password=secret

  # Register a church treasurer scoped to funds 3 and 4
  admin create-treasurer --email=ct@example.org --name="Luis" --role=church_treasurer --church-id=7 --funds=3,4 --password=secret

  # Verify the balance invariant across all funds
  admin verify-balances
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "create-treasurer":
		runCreateTreasurer(os.Args[2:])
	case "verify-balances":
		runVerifyBalances(os.Args[2:])
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		fmt.Print(usage)
		os.Exit(1)
	}
}

func connect() *postgres.DB {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := postgres.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")
	return db
}

func runCreateTreasurer(args []string) {
	fs := flag.NewFlagSet("create-treasurer", flag.ExitOnError)

	email := fs.String("email", "", "Login email (required)")
	name := fs.String("name", "", "Display name (required)")
	role := fs.String("role", "", "Role: church_treasurer, fund_supervisor or national_treasurer (required)")
	password := fs.String("password", "", "Initial password (required)")
	churchID := fs.Int64("church-id", 0, "Home church ID (church treasurers)")
	funds := fs.String("funds", "", "Fund IDs the account is scoped to (comma-separated)")

	fs.Usage = func() {
		fmt.Println("Usage: admin create-treasurer [options]")
		fmt.Println("\nOptions:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *email == "" || *name == "" || *role == "" || *password == "" {
		fmt.Println("Error: --email, --name, --role and --password are required")
		fs.Usage()
		os.Exit(1)
	}

	hash, err := auth.HashPassword(*password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	params := treasurer.CreateParams{
		Email:        *email,
		Name:         *name,
		Role:         authz.Role(*role),
		PasswordHash: hash,
	}
	if *churchID > 0 {
		params.ChurchID = churchID
	}
	if *funds != "" {
		for _, p := range strings.Split(*funds, ",") {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			id, err := strconv.ParseInt(p, 10, 64)
			if err != nil {
				log.Fatalf("Invalid fund ID '%s': %v", p, err)
			}
			params.FundIDs = append(params.FundIDs, id)
		}
	}

	db := connect()
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo := postgres.NewTreasurerRepository(db)
	created, err := repo.Create(ctx, params)
	if err != nil {
		log.Fatalf("Failed to create treasurer: %v", err)
	}

	fmt.Printf("Created treasurer %d (%s, %s)\n", created.ID, created.Email, created.Role)
}

// runVerifyBalances compares every fund's stored balance with the running
// balance of its latest ledger entry. A mismatch means the posting invariant
// was broken and needs investigation.
func runVerifyBalances(args []string) {
	fs := flag.NewFlagSet("verify-balances", flag.ExitOnError)
	timeoutStr := fs.String("timeout", "5m", "Timeout for the operation (e.g., 30s, 5m)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	timeout, err := time.ParseDuration(*timeoutStr)
	if err != nil {
		log.Fatalf("Invalid timeout format: %v", err)
	}

	db := connect()
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	fundRepo := postgres.NewFundRepository(db)
	ledgerStore := postgres.NewLedgerStore(db)

	funds, err := fundRepo.List(ctx, true)
	if err != nil {
		log.Fatalf("Failed to list funds: %v", err)
	}

	mismatches := 0
	for _, f := range funds {
		entries, err := ledgerStore.EntriesByFund(ctx, f.ID, 1, 0)
		if err != nil {
			log.Fatalf("Failed to read ledger for fund %d: %v", f.ID, err)
		}
		if len(entries) == 0 {
			if !f.Balance.IsZero() {
				mismatches++
				fmt.Printf("MISMATCH fund %d (%s): balance %s with no ledger entries\n", f.ID, f.Name, f.Balance)
			}
			continue
		}
		if !entries[0].Balance.Equal(f.Balance) {
			mismatches++
			fmt.Printf("MISMATCH fund %d (%s): balance %s, latest entry says %s\n",
				f.ID, f.Name, f.Balance, entries[0].Balance)
		}
	}

	if mismatches > 0 {
		log.Fatalf("Balance verification failed: %d fund(s) out of sync", mismatches)
	}
	fmt.Printf("All %d funds verified\n", len(funds))
}
