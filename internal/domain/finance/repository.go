package finance

import (
	"context"

	"github.com/google/uuid"
)

// InvoiceRepository persists invoices
type InvoiceRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)
	// FindByIDForUpdate locks the invoice row so payments on one invoice serialize.
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)
	FindBySalesOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*Invoice, error)
	ListIDsForTenant(ctx context.Context, tenantID uuid.UUID) ([]uuid.UUID, error)
	Save(ctx context.Context, invoice *Invoice) error
}

// PaymentRepository is append-only
type PaymentRepository interface {
	Append(ctx context.Context, payment *Payment) error
	FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]Payment, error)
}

// CustomerLedgerRepository stores customer ledger entries
type CustomerLedgerRepository interface {
	Append(ctx context.Context, entries ...*LedgerEntry) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*LedgerEntry, error)
	FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]LedgerEntry, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	ListCustomerIDs(ctx context.Context, tenantID uuid.UUID) ([]uuid.UUID, error)
}

// SnapshotRepository stores computed snapshots
type SnapshotRepository interface {
	FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerFinancialSnapshot, error)
	Upsert(ctx context.Context, snapshot *CustomerFinancialSnapshot) error
}
