package finance

import (
	"context"

	"github.com/erp/retailcore/internal/application/uow"
	"github.com/erp/retailcore/internal/domain/finance"
	"github.com/erp/retailcore/internal/domain/shared"
	"github.com/erp/retailcore/internal/infrastructure/logger"
	"github.com/erp/retailcore/internal/infrastructure/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LedgerService posts and removes manual customer ledger entries. Entries
// written for invoices and payments are owned by InvoiceService.
type LedgerService struct {
	scope     uow.TransactionScope
	snapshots *SnapshotService
	logger    *zap.Logger
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(scope uow.TransactionScope, snapshots *SnapshotService, logger *zap.Logger) *LedgerService {
	return &LedgerService{
		scope:     scope,
		snapshots: snapshots,
		logger:    logger,
	}
}

// AddManualEntry posts an adjustment and recomputes the customer's snapshot
func (s *LedgerService) AddManualEntry(ctx context.Context, tenantID uuid.UUID, req ManualEntryRequest) (*LedgerEntryResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	entry, err := finance.NewLedgerEntry(tenantID, req.CustomerID, req.Type, finance.EntryKindAdjustment, req.Amount, req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		return repos.CustomerLedgerRepo().Append(ctx, entry)
	}); err != nil {
		return nil, err
	}

	logger.ForContext(ctx, s.logger).Info("Manual ledger entry posted",
		zap.String("customer_id", entry.CustomerID.String()),
		zap.String("type", string(entry.Type)),
		zap.String("amount", entry.Amount.StringFixed(2)))
	s.refresh(ctx, tenantID, entry.CustomerID)
	resp := ToLedgerEntryResponse(*entry)
	return &resp, nil
}

// DeleteEntry removes a manual entry and recomputes the customer's snapshot.
// Entries tied to an invoice or payment cannot be deleted.
func (s *LedgerService) DeleteEntry(ctx context.Context, tenantID, entryID uuid.UUID) error {
	var customerID uuid.UUID
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		entry, err := repos.CustomerLedgerRepo().FindByID(ctx, tenantID, entryID)
		if err != nil {
			return err
		}
		if entry.InvoiceID != nil || entry.PaymentID != nil {
			return shared.Errorf(shared.ErrInvalidState,
				"Ledger entry %s belongs to an invoice and cannot be deleted", entryID)
		}
		customerID = entry.CustomerID
		return repos.CustomerLedgerRepo().Delete(ctx, tenantID, entryID)
	})
	if err != nil {
		return err
	}

	logger.ForContext(ctx, s.logger).Info("Ledger entry deleted",
		zap.String("entry_id", entryID.String()),
		zap.String("customer_id", customerID.String()))
	s.refresh(ctx, tenantID, customerID)
	return nil
}

// Entries lists a customer's ledger, oldest first
func (s *LedgerService) Entries(ctx context.Context, tenantID, customerID uuid.UUID) ([]LedgerEntryResponse, error) {
	var entries []finance.LedgerEntry
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		entries, err = repos.CustomerLedgerRepo().FindByCustomer(ctx, tenantID, customerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := make([]LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, ToLedgerEntryResponse(e))
	}
	return resp, nil
}

func (s *LedgerService) refresh(ctx context.Context, tenantID, customerID uuid.UUID) {
	if s.snapshots == nil {
		return
	}
	_, _ = s.snapshots.OnLedgerChanged(ctx, tenantID, customerID)
}
