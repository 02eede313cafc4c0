package report

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/retailcore/internal/domain/shared"
	"github.com/erp/retailcore/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SalesSummaryHandler refreshes summaries when an order enters or leaves
// completed
type SalesSummaryHandler struct {
	service *SalesSummaryService
	logger  *zap.Logger
}

// NewSalesSummaryHandler creates a new SalesSummaryHandler
func NewSalesSummaryHandler(service *SalesSummaryService, logger *zap.Logger) *SalesSummaryHandler {
	return &SalesSummaryHandler{
		service: service,
		logger:  logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *SalesSummaryHandler) EventTypes() []string {
	return []string{trade.EventTypeSalesOrderCompleted, trade.EventTypeSalesOrderReopened}
}

// Handle processes SalesOrderCompleted and SalesOrderReopened
func (h *SalesSummaryHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *trade.SalesOrderCompletedEvent:
		return h.refresh(ctx, e.TenantID(), e.Lines, e.OrderCreatedAt)
	case *trade.SalesOrderReopenedEvent:
		return h.refresh(ctx, e.TenantID(), e.Lines, e.OrderCreatedAt)
	default:
		h.logger.Error("unexpected event type",
			zap.String("actual", event.EventType()))
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
}

func (h *SalesSummaryHandler) refresh(ctx context.Context, tenantID uuid.UUID, lines []trade.OrderLine, createdAt time.Time) error {
	products := make([]uuid.UUID, len(lines))
	for i, l := range lines {
		products[i] = l.ProductID
	}
	return h.service.RefreshForOrder(ctx, tenantID, products, createdAt)
}

// Ensure SalesSummaryHandler implements shared.EventHandler
var _ shared.EventHandler = (*SalesSummaryHandler)(nil)
