// Package report holds derived sales rollups.
package report

import (
	"context"
	"time"

	"github.com/erp/retailcore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Period is the bucket size of a sales summary
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodMonthly Period = "monthly"
)

// IsValid checks if the period is known
func (p Period) IsValid() bool {
	return p == PeriodDaily || p == PeriodMonthly
}

// Bounds returns the [start, end) interval of the period containing t, in t's location
func (p Period) Bounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	switch p {
	case PeriodMonthly:
		start := time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
		return start, start.AddDate(0, 1, 0)
	default:
		start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
		return start, start.AddDate(0, 0, 1)
	}
}

// ProductSalesSummary is the per-product rollup of completed sales in one period
type ProductSalesSummary struct {
	ID            uuid.UUID
	TenantID      uuid.UUID
	ProductID     uuid.UUID
	Period        Period
	PeriodStart   time.Time
	PeriodEnd     time.Time
	TotalQuantity int64
	TotalRevenue  decimal.Decimal
	TotalOrders   int
	UpdatedAt     time.Time
}

// SoldLine is one completed order line used to build a summary
type SoldLine struct {
	OrderID    uuid.UUID
	ProductID  uuid.UUID
	Quantity   int64
	TotalPrice decimal.Decimal
}

// Summarize folds lines into a summary. It returns nil when there are no
// lines, meaning the row should not exist.
func Summarize(tenantID, productID uuid.UUID, period Period, start, end time.Time, lines []SoldLine) *ProductSalesSummary {
	orders := make(map[uuid.UUID]struct{})
	s := &ProductSalesSummary{
		ID:           uuid.New(),
		TenantID:     tenantID,
		ProductID:    productID,
		Period:       period,
		PeriodStart:  start,
		PeriodEnd:    end,
		TotalRevenue: decimal.Zero,
		UpdatedAt:    time.Now(),
	}
	for _, l := range lines {
		if l.ProductID != productID {
			continue
		}
		s.TotalQuantity += l.Quantity
		s.TotalRevenue = s.TotalRevenue.Add(l.TotalPrice)
		orders[l.OrderID] = struct{}{}
	}
	if len(orders) == 0 {
		return nil
	}
	s.TotalOrders = len(orders)
	s.TotalRevenue = shared.RoundCurrency(s.TotalRevenue)
	return s
}

// SalesSummaryRepository persists summaries and reads the completed lines they are built from
type SalesSummaryRepository interface {
	CompletedLines(ctx context.Context, tenantID, productID uuid.UUID, from, to time.Time) ([]SoldLine, error)
	Find(ctx context.Context, tenantID, productID uuid.UUID, period Period, start time.Time) (*ProductSalesSummary, error)
	Upsert(ctx context.Context, summary *ProductSalesSummary) error
	Delete(ctx context.Context, tenantID, productID uuid.UUID, period Period, start time.Time) error
	ListForPeriod(ctx context.Context, tenantID uuid.UUID, period Period, start time.Time) ([]ProductSalesSummary, error)
}
