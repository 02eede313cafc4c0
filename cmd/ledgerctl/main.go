// Command ledgerctl runs maintenance jobs against the retailcore ledger:
// stock reconciliation, cached-total rebuilds and number issuance.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erp/retailcore/internal/domain/sequence"
	"github.com/erp/retailcore/internal/infrastructure/config"
	"github.com/erp/retailcore/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// exitMismatch is returned by reconcile when stock disagrees with movements
const exitMismatch = 2

func main() {
	flag.Usage = printUsage
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     "stderr",
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, cfg, log, args[0], args[1:])
	stop()
	_ = log.Sync()
	os.Exit(code)
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger, command string, args []string) int {
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	tenant := fs.String("tenant", "", "Tenant ID (required)")
	kind := fs.String("kind", "order", "Number kind for next-number (order, invoice)")
	at := fs.String("at", "", "Any instant inside the summary period, RFC3339 (default now)")
	peek := fs.Bool("peek", false, "Print the last issued number instead of drawing a new one")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	switch command {
	case "reconcile", "recompute-invoices", "recompute-snapshots", "next-number", "sales-summary":
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		return 1
	}

	tenantID, err := uuid.Parse(*tenant)
	if err != nil {
		log.Error("A valid -tenant is required", zap.String("tenant", *tenant), zap.Error(err))
		return 1
	}

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to initialize", zap.Error(err))
		return 1
	}
	defer a.close(context.Background(), log)

	ctx = logger.WithContext(ctx, log)
	ctx = logger.WithRequestID(ctx, command+"-"+uuid.NewString()[:8])
	ctx = logger.WithTenantID(ctx, tenantID)
	log = logger.ForContext(ctx, log.With(zap.String("command", command)))

	switch command {
	case "reconcile":
		report, err := a.inventory.Reconcile(ctx, tenantID)
		if err != nil {
			log.Error("Reconcile failed", zap.Error(err))
			return 1
		}
		printJSON(report)
		if !report.Consistent() {
			return exitMismatch
		}
		log.Info("Inventory matches movement log", zap.Int("checked", report.Checked))

	case "recompute-invoices":
		changed, err := a.invoices.RecalculateAll(ctx, tenantID)
		if err != nil {
			log.Error("Invoice recompute failed", zap.Error(err))
			return 1
		}
		log.Info("Invoice paid amounts recomputed", zap.Int("changed", changed))

	case "recompute-snapshots":
		count, err := a.snapshots.RecomputeAll(ctx, tenantID)
		if err != nil {
			log.Error("Snapshot recompute failed", zap.Error(err), zap.Int("recomputed", count))
			return 1
		}
		log.Info("Customer snapshots recomputed", zap.Int("customers", count))

	case "next-number":
		var seq sequence.Kind
		switch *kind {
		case "order":
			seq = sequence.KindSalesOrder
		case "invoice":
			seq = sequence.KindInvoice
		default:
			log.Error("Unknown number kind", zap.String("kind", *kind))
			return 1
		}
		var number string
		if *peek {
			number, err = a.numbering.Peek(ctx, tenantID, seq)
		} else if seq == sequence.KindInvoice {
			number, err = a.numbering.NextInvoiceNumber(ctx, tenantID)
		} else {
			number, err = a.numbering.NextOrderNumber(ctx, tenantID)
		}
		if err != nil {
			log.Error("Failed to issue number", zap.Error(err), zap.Bool("peek", *peek))
			return 1
		}
		if number == "" {
			log.Info("No number issued yet", zap.String("kind", *kind))
			return 0
		}
		fmt.Println(number)

	case "sales-summary":
		instant := time.Now()
		if *at != "" {
			instant, err = time.Parse(time.RFC3339, *at)
			if err != nil {
				log.Error("Invalid -at", zap.Error(err))
				return 1
			}
		}
		rows, err := a.summaries.ForPeriod(ctx, tenantID, instant)
		if err != nil {
			log.Error("Failed to load sales summary", zap.Error(err))
			return 1
		}
		printJSON(rows)
	}
	return 0
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func printUsage() {
	fmt.Println(`Usage: ledgerctl <command> -tenant <uuid> [options]

Commands:
  reconcile            Compare stored stock with movement sums (exit 2 on mismatch)
  recompute-invoices   Rebuild every invoice's paid amount from its payments
  recompute-snapshots  Rebuild every customer financial snapshot
  next-number          Issue the next document number (-kind order|invoice),
                       or print the last one with -peek
  sales-summary        Print per-product sales for the period containing -at

Configuration is read from config.toml and RETAILCORE_* environment variables,
e.g. RETAILCORE_DATABASE_HOST, RETAILCORE_REDIS_ENABLED, RETAILCORE_TELEMETRY_ENABLED.`)
}
