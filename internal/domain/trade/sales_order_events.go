package trade

import (
	"time"

	"github.com/erp/retailcore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeSalesOrder = "SalesOrder"

// Event type constants
const (
	EventTypeSalesOrderCompleted = "SalesOrderCompleted"
	EventTypeSalesOrderInTransit = "SalesOrderInTransit"
	EventTypeSalesOrderReopened  = "SalesOrderReopened"
	EventTypeSalesOrderCancelled = "SalesOrderCancelled"
)

// OrderLine is the item snapshot carried by order events
type OrderLine struct {
	ProductID  uuid.UUID       `json:"product_id"`
	Quantity   int64           `json:"quantity"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

func orderLines(o *SalesOrder) []OrderLine {
	lines := make([]OrderLine, len(o.Items))
	for i, item := range o.Items {
		lines[i] = OrderLine{ProductID: item.ProductID, Quantity: item.Quantity, TotalPrice: item.TotalPrice}
	}
	return lines
}

// SalesOrderCompletedEvent is raised when an order reaches completed
type SalesOrderCompletedEvent struct {
	shared.BaseDomainEvent
	OrderNumber    string          `json:"order_number"`
	Mode           BusinessMode    `json:"mode"`
	FromStatus     OrderStatus     `json:"from_status"`
	CustomerID     *uuid.UUID      `json:"customer_id,omitempty"`
	Total          decimal.Decimal `json:"total"`
	Lines          []OrderLine     `json:"lines"`
	OrderCreatedAt time.Time       `json:"order_created_at"`
}

// NewSalesOrderCompletedEvent creates a new SalesOrderCompletedEvent
func NewSalesOrderCompletedEvent(o *SalesOrder, mode BusinessMode, from OrderStatus) *SalesOrderCompletedEvent {
	return &SalesOrderCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSalesOrderCompleted, AggregateTypeSalesOrder, o.ID, o.TenantID),
		OrderNumber:     o.OrderNumber,
		Mode:            mode,
		FromStatus:      from,
		CustomerID:      o.CustomerID,
		Total:           o.CachedTotal,
		Lines:           orderLines(o),
		OrderCreatedAt:  o.CreatedAt,
	}
}

// SalesOrderInTransitEvent is raised when wholesale goods leave the warehouse
type SalesOrderInTransitEvent struct {
	shared.BaseDomainEvent
	OrderNumber string      `json:"order_number"`
	Lines       []OrderLine `json:"lines"`
}

// NewSalesOrderInTransitEvent creates a new SalesOrderInTransitEvent
func NewSalesOrderInTransitEvent(o *SalesOrder) *SalesOrderInTransitEvent {
	return &SalesOrderInTransitEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSalesOrderInTransit, AggregateTypeSalesOrder, o.ID, o.TenantID),
		OrderNumber:     o.OrderNumber,
		Lines:           orderLines(o),
	}
}

// SalesOrderReopenedEvent is raised when a finalized order goes back to draft
type SalesOrderReopenedEvent struct {
	shared.BaseDomainEvent
	OrderNumber    string      `json:"order_number"`
	FromStatus     OrderStatus `json:"from_status"`
	Lines          []OrderLine `json:"lines"`
	OrderCreatedAt time.Time   `json:"order_created_at"`
}

// NewSalesOrderReopenedEvent creates a new SalesOrderReopenedEvent
func NewSalesOrderReopenedEvent(o *SalesOrder, from OrderStatus) *SalesOrderReopenedEvent {
	return &SalesOrderReopenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSalesOrderReopened, AggregateTypeSalesOrder, o.ID, o.TenantID),
		OrderNumber:     o.OrderNumber,
		FromStatus:      from,
		Lines:           orderLines(o),
		OrderCreatedAt:  o.CreatedAt,
	}
}

// SalesOrderCancelledEvent is raised when a draft order is cancelled
type SalesOrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderNumber string `json:"order_number"`
}

// NewSalesOrderCancelledEvent creates a new SalesOrderCancelledEvent
func NewSalesOrderCancelledEvent(o *SalesOrder) *SalesOrderCancelledEvent {
	return &SalesOrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSalesOrderCancelled, AggregateTypeSalesOrder, o.ID, o.TenantID),
		OrderNumber:     o.OrderNumber,
	}
}
