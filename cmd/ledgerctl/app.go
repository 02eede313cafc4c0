package main

import (
	"context"
	"errors"
	"fmt"

	financeapp "github.com/erp/retailcore/internal/application/finance"
	inventoryapp "github.com/erp/retailcore/internal/application/inventory"
	"github.com/erp/retailcore/internal/application/numbering"
	reportapp "github.com/erp/retailcore/internal/application/report"
	domainreport "github.com/erp/retailcore/internal/domain/report"
	"github.com/erp/retailcore/internal/domain/sequence"
	"github.com/erp/retailcore/internal/infrastructure/cache"
	"github.com/erp/retailcore/internal/infrastructure/config"
	"github.com/erp/retailcore/internal/infrastructure/event"
	"github.com/erp/retailcore/internal/infrastructure/persistence"
	"github.com/erp/retailcore/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// app holds the services a ledgerctl command can reach
type app struct {
	db        *persistence.Database
	provider  *telemetry.Provider
	closers   []func() error
	inventory *inventoryapp.InventoryService
	invoices  *financeapp.InvoiceService
	snapshots *financeapp.SnapshotService
	numbering *numbering.NumberingService
	summaries *reportapp.SalesSummaryService
}

// newApp connects to the database and builds the service graph. The event
// bus is wired even though the commands here publish few events, so that
// invoice changes still reach subscribers.
func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	provider, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to start telemetry: %w", err)
	}
	a := &app{provider: provider}

	db, err := persistence.NewDatabase(&cfg.Database, log)
	if err != nil {
		_ = provider.Shutdown(ctx)
		return nil, err
	}
	a.db = db
	a.closers = append(a.closers, db.Close)

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:    cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		DBName:     cfg.Database.DBName,
		LogFullSQL: cfg.Telemetry.DBLogFullSQL,
	}, log); err != nil {
		log.Warn("Failed to register database tracing", zap.Error(err))
	}

	metrics, err := telemetry.NewLedgerMetrics(nil)
	if err != nil {
		log.Warn("Failed to create ledger metrics", zap.Error(err))
		metrics = nil
	}

	snapshotCache, err := cache.NewSnapshotCacheFactory(cfg.Redis, cache.WithLogger(log)).CreateCache()
	if err != nil {
		a.close(ctx, log)
		return nil, err
	}
	if c, ok := snapshotCache.(interface{ Close() error }); ok {
		a.closers = append(a.closers, c.Close)
	}

	scope := db.TransactionScope()
	bus := event.NewInMemoryEventBus(log)

	a.numbering = numbering.NewNumberingService(scope, sequence.Prefixes{
		sequence.KindSalesOrder: cfg.Ledger.OrderPrefix,
		sequence.KindInvoice:    cfg.Ledger.InvoicePrefix,
	}, log)
	a.numbering.SetMetrics(metrics)

	a.inventory = inventoryapp.NewInventoryService(scope, inventoryapp.NewLedger(log), log)
	a.snapshots = financeapp.NewSnapshotService(scope, snapshotCache, log)

	a.invoices = financeapp.NewInvoiceService(scope, a.numbering, a.snapshots, log)
	a.invoices.SetEventPublisher(bus)
	a.invoices.SetMetrics(metrics)

	a.summaries = reportapp.NewSalesSummaryService(scope, domainreport.Period(cfg.Ledger.SummaryPeriod), log)
	bus.Subscribe(reportapp.NewSalesSummaryHandler(a.summaries, log))

	return a, nil
}

// close releases resources in reverse order and flushes telemetry
func (a *app) close(ctx context.Context, log *zap.Logger) {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	if a.provider != nil {
		errs = append(errs, a.provider.Shutdown(ctx))
	}
	if err := errors.Join(errs...); err != nil {
		log.Error("Error during shutdown", zap.Error(err))
	}
}
