package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerFinancialSnapshot is a denormalized rollup of one customer's
// ledger. It is only ever produced by Recompute.
type CustomerFinancialSnapshot struct {
	TenantID      uuid.UUID       `json:"tenant_id"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	TotalSales    decimal.Decimal `json:"total_sales"`
	TotalPayments decimal.Decimal `json:"total_payments"`
	TotalRefunds  decimal.Decimal `json:"total_refunds"`
	TotalDebt     decimal.Decimal `json:"total_debt"`
	EntryCount    int             `json:"entry_count"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Recompute rebuilds the snapshot from the full ledger history:
//
//	total_sales    = sum of debits
//	total_payments = sum of credits
//	total_refunds  = sum of refund entries
//	total_debt     = total_sales - total_payments
func Recompute(tenantID, customerID uuid.UUID, entries []LedgerEntry) *CustomerFinancialSnapshot {
	s := &CustomerFinancialSnapshot{
		TenantID:      tenantID,
		CustomerID:    customerID,
		TotalSales:    decimal.Zero,
		TotalPayments: decimal.Zero,
		TotalRefunds:  decimal.Zero,
		UpdatedAt:     time.Now(),
	}
	for _, e := range entries {
		if e.CustomerID != customerID {
			continue
		}
		switch e.Type {
		case EntryTypeDebit:
			s.TotalSales = s.TotalSales.Add(e.Amount)
		case EntryTypeCredit:
			s.TotalPayments = s.TotalPayments.Add(e.Amount)
		}
		if e.Kind == EntryKindRefund {
			s.TotalRefunds = s.TotalRefunds.Add(e.Amount)
		}
		s.EntryCount++
	}
	s.TotalDebt = s.TotalSales.Sub(s.TotalPayments)
	return s
}

// SnapshotCache is a read-through copy of computed snapshots. The database
// row stays the source of truth; a cache miss is not an error.
type SnapshotCache interface {
	Get(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerFinancialSnapshot, bool, error)
	Set(ctx context.Context, snapshot *CustomerFinancialSnapshot) error
	Delete(ctx context.Context, tenantID, customerID uuid.UUID) error
}
