// Package report maintains per-product sales summaries of completed orders.
package report

import (
	"context"
	"sort"
	"time"

	"github.com/erp/retailcore/internal/application/uow"
	"github.com/erp/retailcore/internal/domain/report"
	"github.com/erp/retailcore/internal/domain/shared"
	"github.com/erp/retailcore/internal/infrastructure/logger"
	"github.com/erp/retailcore/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SalesSummaryService rebuilds ProductSalesSummary rows. Periods are
// bucketed in UTC.
type SalesSummaryService struct {
	scope  uow.TransactionScope
	period report.Period
	logger *zap.Logger
}

// NewSalesSummaryService creates a new SalesSummaryService. An unknown
// period falls back to daily.
func NewSalesSummaryService(scope uow.TransactionScope, period report.Period, logger *zap.Logger) *SalesSummaryService {
	if !period.IsValid() {
		period = report.PeriodDaily
	}
	return &SalesSummaryService{
		scope:  scope,
		period: period,
		logger: logger,
	}
}

// Period returns the bucket size the service writes
func (s *SalesSummaryService) Period() report.Period {
	return s.period
}

// RefreshForOrder recomputes the summary of each product in the period that
// contains orderCreatedAt. A product left with no completed lines in that
// period loses its row.
func (s *SalesSummaryService) RefreshForOrder(ctx context.Context, tenantID uuid.UUID, productIDs []uuid.UUID, orderCreatedAt time.Time) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "sales_summary", "refresh", "products", len(productIDs))
	defer span.End()

	start, end := s.period.Bounds(orderCreatedAt.UTC())
	products := uniqueSorted(productIDs)

	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		summaries := repos.SalesSummaryRepo()
		for _, productID := range products {
			lines, err := summaries.CompletedLines(ctx, tenantID, productID, start, end)
			if err != nil {
				return err
			}
			summary := report.Summarize(tenantID, productID, s.period, start, end, lines)
			if summary == nil {
				if err := summaries.Delete(ctx, tenantID, productID, s.period, start); err != nil {
					return err
				}
				continue
			}
			if err := summaries.Upsert(ctx, summary); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		logger.ForContext(ctx, s.logger).Error("Failed to refresh sales summary",
			zap.String("tenant_id", tenantID.String()),
			zap.Time("period_start", start),
			zap.Error(err))
		return err
	}
	return nil
}

// SummaryResponse is one product's row in a period report
type SummaryResponse struct {
	ProductID     uuid.UUID       `json:"product_id"`
	Period        string          `json:"period"`
	PeriodStart   time.Time       `json:"period_start"`
	PeriodEnd     time.Time       `json:"period_end"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalOrders   int             `json:"total_orders"`
}

// ForPeriod lists the summaries of the period containing at, highest
// revenue first
func (s *SalesSummaryService) ForPeriod(ctx context.Context, tenantID uuid.UUID, at time.Time) ([]SummaryResponse, error) {
	start, _ := s.period.Bounds(at.UTC())
	var rows []report.ProductSalesSummary
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		rows, err = repos.SalesSummaryRepo().ListForPeriod(ctx, tenantID, s.period, start)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]SummaryResponse, len(rows))
	for i, r := range rows {
		out[i] = SummaryResponse{
			ProductID:     r.ProductID,
			Period:        string(r.Period),
			PeriodStart:   r.PeriodStart,
			PeriodEnd:     r.PeriodEnd,
			TotalQuantity: r.TotalQuantity,
			TotalRevenue:  r.TotalRevenue,
			TotalOrders:   r.TotalOrders,
		}
	}
	return out, nil
}

// Find returns one product's summary for the period containing at
func (s *SalesSummaryService) Find(ctx context.Context, tenantID, productID uuid.UUID, at time.Time) (*report.ProductSalesSummary, error) {
	if productID == uuid.Nil {
		return nil, shared.Errorf(shared.ErrInvalidInput, "Product is required")
	}
	start, _ := s.period.Bounds(at.UTC())
	var summary *report.ProductSalesSummary
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		summary, err = repos.SalesSummaryRepo().Find(ctx, tenantID, productID, s.period, start)
		return err
	})
	return summary, err
}

func uniqueSorted(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == uuid.Nil {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
