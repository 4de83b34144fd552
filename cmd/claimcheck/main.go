package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/shopspring/decimal"

	"github.com/expensedesk/claims-engine/constants"
	"github.com/expensedesk/claims-engine/internal/acquire"
	"github.com/expensedesk/claims-engine/internal/claims"
	"github.com/expensedesk/claims-engine/internal/entity"
	"github.com/expensedesk/claims-engine/internal/extract"
	"github.com/expensedesk/claims-engine/internal/normalize"
	"github.com/expensedesk/claims-engine/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		inmem      = flag.Bool("inmem", false, "use an in-memory store instead of SQLite")
		dbPath     = flag.String("db", "claims.db", "SQLite database path")
		claimant   = flag.String("claimant", "", "claimant code (required)")
		claimType  = flag.String("type", "Travel", "claim type label")
		subType    = flag.String("subtype", string(constants.IndividualExpense), "voucher sub-type")
		billStr    = flag.String("bill", "", "voucher bill amount (required)")
		limitStr   = flag.String("limit", "", "daily limit for tabular sheets (optional)")
		totalStr   = flag.String("expected", "", "declared claim total (optional)")
		knownDate  = flag.String("known-date", "", "declared document date (optional)")
		knownTotal = flag.String("known-total", "", "declared document total (optional)")
	)
	flag.Parse()

	if *claimant == "" {
		printError("Error: --claimant is required\n")
		os.Exit(1)
	}
	if flag.NArg() == 0 {
		printError("Error: at least one attachment file is required\n")
		os.Exit(1)
	}
	canonical, ok := constants.CanonicalSubType(*subType)
	if !ok {
		printError("Error: unknown sub-type %q\n", *subType)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	ctx := context.Background()

	var store repository.ClaimStore
	if *inmem {
		store = repository.NewMemoryStore()
	} else {
		sqlite, err := repository.OpenSQLite(ctx, "file:"+*dbPath, logger)
		if err != nil {
			printError("Error: open store: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = sqlite.Close() }()
		store = sqlite
	}

	if *billStr == "" {
		printError("Error: --bill is required\n")
		os.Exit(1)
	}
	bill, err := decimal.NewFromString(*billStr)
	if err != nil {
		printError("Error: invalid --bill: %v\n", err)
		os.Exit(1)
	}
	voucher := entity.Voucher{SubType: canonical, BillAmount: bill}
	if *limitStr != "" {
		limit, err := decimal.NewFromString(*limitStr)
		if err != nil {
			printError("Error: invalid --limit: %v\n", err)
			os.Exit(1)
		}
		voucher.DailyLimit = &limit
	}

	known := entity.KnownFields{}
	if *knownDate != "" {
		date, ok := normalize.ParseDate(*knownDate)
		if !ok {
			printError("Error: unparseable --known-date %q\n", *knownDate)
			os.Exit(1)
		}
		known.Date = &date
	}
	if *knownTotal != "" {
		total, err := decimal.NewFromString(*knownTotal)
		if err != nil {
			printError("Error: invalid --known-total: %v\n", err)
			os.Exit(1)
		}
		known.Total = &total
	}

	for _, path := range flag.Args() {
		if _, err := acquire.FormatForFilename(path); err != nil {
			printError("Error: %v (allowed: pdf, jpg, jpeg, png, xls, xlsx, txt)\n", err)
			os.Exit(1)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			printError("Error: read %s: %v\n", path, err)
			os.Exit(1)
		}
		voucher.Attachments = append(voucher.Attachments, entity.Attachment{
			Bytes:    data,
			Filename: path,
			Known:    known,
		})
	}

	req := entity.ClaimRequest{
		ClaimantCode: *claimant,
		ClaimType:    *claimType,
		Vouchers:     []entity.Voucher{voucher},
	}
	if *totalStr != "" {
		total, err := decimal.NewFromString(*totalStr)
		if err != nil {
			printError("Error: invalid --expected: %v\n", err)
			os.Exit(1)
		}
		req.ExpectedTotal = &total
	}

	engine := claims.NewEngine(store, acquire.PlainText{}, extract.DefaultConfig(), logger)
	result, err := engine.Evaluate(ctx, req)
	if err != nil {
		printError("Error: evaluation failed: %v\n", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		printError("Error: encode result: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
	if result.Status != constants.StatusNewClaim {
		os.Exit(2)
	}
}
