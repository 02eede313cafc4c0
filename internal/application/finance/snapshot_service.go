// Package finance records invoice payments and keeps customer account
// rollups in step with the customer ledger.
package finance

import (
	"context"

	"github.com/erp/retailcore/internal/application/uow"
	"github.com/erp/retailcore/internal/domain/finance"
	"github.com/erp/retailcore/internal/infrastructure/logger"
	"github.com/erp/retailcore/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SnapshotService maintains CustomerFinancialSnapshot rows. Snapshots are
// always rebuilt from the full ledger, never patched incrementally.
type SnapshotService struct {
	scope  uow.TransactionScope
	cache  finance.SnapshotCache
	logger *zap.Logger
}

// NewSnapshotService creates a new SnapshotService. cache may be nil.
func NewSnapshotService(scope uow.TransactionScope, cache finance.SnapshotCache, logger *zap.Logger) *SnapshotService {
	return &SnapshotService{
		scope:  scope,
		cache:  cache,
		logger: logger,
	}
}

// OnLedgerChanged recomputes one customer's snapshot in its own transaction
// and writes it through to the cache
func (s *SnapshotService) OnLedgerChanged(ctx context.Context, tenantID, customerID uuid.UUID) (*finance.CustomerFinancialSnapshot, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "snapshot", "recompute", "customer_id", customerID.String())
	defer span.End()
	log := logger.ForContext(ctx, s.logger)

	var snapshot *finance.CustomerFinancialSnapshot
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		snapshot, err = s.recompute(ctx, repos, tenantID, customerID)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		log.Error("Failed to recompute customer snapshot",
			zap.String("customer_id", customerID.String()),
			zap.Error(err))
		return nil, err
	}
	s.writeThrough(ctx, snapshot)
	return snapshot, nil
}

func (s *SnapshotService) recompute(ctx context.Context, repos uow.Repositories, tenantID, customerID uuid.UUID) (*finance.CustomerFinancialSnapshot, error) {
	entries, err := repos.CustomerLedgerRepo().FindByCustomer(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	snapshot := finance.Recompute(tenantID, customerID, entries)
	if err := repos.SnapshotRepo().Upsert(ctx, snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (s *SnapshotService) writeThrough(ctx context.Context, snapshot *finance.CustomerFinancialSnapshot) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, snapshot); err != nil {
		logger.ForContext(ctx, s.logger).Warn("Failed to cache customer snapshot",
			zap.String("customer_id", snapshot.CustomerID.String()),
			zap.Error(err))
	}
}

// Get returns a customer's snapshot, from the cache when present
func (s *SnapshotService) Get(ctx context.Context, tenantID, customerID uuid.UUID) (*SnapshotResponse, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, tenantID, customerID)
		if err != nil {
			logger.ForContext(ctx, s.logger).Warn("Snapshot cache read failed",
				zap.String("customer_id", customerID.String()),
				zap.Error(err))
		} else if ok {
			resp := ToSnapshotResponse(cached)
			return &resp, nil
		}
	}

	var snapshot *finance.CustomerFinancialSnapshot
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		snapshot, err = repos.SnapshotRepo().FindByCustomer(ctx, tenantID, customerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.writeThrough(ctx, snapshot)
	resp := ToSnapshotResponse(snapshot)
	return &resp, nil
}

// RecomputeAll rebuilds the snapshot of every customer with ledger entries
// and returns how many were rebuilt
func (s *SnapshotService) RecomputeAll(ctx context.Context, tenantID uuid.UUID) (int, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "snapshot", "recompute_all")
	defer span.End()

	var customers []uuid.UUID
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		customers, err = repos.CustomerLedgerRepo().ListCustomerIDs(ctx, tenantID)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return 0, err
	}
	for i, customerID := range customers {
		if _, err := s.OnLedgerChanged(ctx, tenantID, customerID); err != nil {
			return i, err
		}
	}
	logger.ForContext(ctx, s.logger).Info("Recomputed customer snapshots",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("customers", len(customers)))
	return len(customers), nil
}
