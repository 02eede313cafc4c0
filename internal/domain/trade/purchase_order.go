package trade

import (
	"strings"
	"time"

	"github.com/erp/retailcore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus represents the status of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusPending   PurchaseOrderStatus = "pending"
	PurchaseOrderStatusReceived  PurchaseOrderStatus = "received"
	PurchaseOrderStatusCancelled PurchaseOrderStatus = "cancelled"
)

// IsValid checks if the status is a valid PurchaseOrderStatus
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case PurchaseOrderStatusPending, PurchaseOrderStatusReceived, PurchaseOrderStatusCancelled:
		return true
	}
	return false
}

// PurchaseOrderItem is one line of a purchase order
type PurchaseOrderItem struct {
	ID         uuid.UUID
	OrderID    uuid.UUID
	ProductID  uuid.UUID
	Quantity   int64
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
}

// PurchaseOrder is an order placed with a supplier. Receiving it brings every
// line into stock at Location exactly once.
type PurchaseOrder struct {
	shared.TenantAggregateRoot
	Reference    string
	SupplierName string
	Location     string
	Status       PurchaseOrderStatus
	Note         string
	TotalAmount  decimal.Decimal
	Items        []PurchaseOrderItem
	ReceivedAt   *time.Time
}

// NewPurchaseOrder creates a pending purchase order
func NewPurchaseOrder(tenantID uuid.UUID, reference, supplierName, location string) (*PurchaseOrder, error) {
	if strings.TrimSpace(supplierName) == "" {
		return nil, shared.Errorf(shared.ErrInvalidInput, "Supplier is required")
	}
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, shared.Errorf(shared.ErrInvalidInput, "Receiving location is required")
	}
	return &PurchaseOrder{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Reference:           strings.TrimSpace(reference),
		SupplierName:        strings.TrimSpace(supplierName),
		Location:            location,
		Status:              PurchaseOrderStatusPending,
		TotalAmount:         decimal.Zero,
		Items:               make([]PurchaseOrderItem, 0),
	}, nil
}

// AddItem adds a line to a pending purchase order
func (p *PurchaseOrder) AddItem(productID uuid.UUID, quantity int64, unitPrice decimal.Decimal) (*PurchaseOrderItem, error) {
	if p.Status != PurchaseOrderStatusPending {
		return nil, shared.Errorf(shared.ErrInvalidState, "Cannot add items to a %s purchase order", p.Status)
	}
	if productID == uuid.Nil {
		return nil, shared.Errorf(shared.ErrInvalidInput, "Product is required")
	}
	if quantity <= 0 {
		return nil, shared.Errorf(shared.ErrInvalidInput, "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.Errorf(shared.ErrInvalidInput, "Unit price cannot be negative")
	}
	unitPrice = shared.RoundCurrency(unitPrice)
	item := PurchaseOrderItem{
		ID:         uuid.New(),
		OrderID:    p.ID,
		ProductID:  productID,
		Quantity:   quantity,
		UnitPrice:  unitPrice,
		TotalPrice: shared.RoundCurrency(unitPrice.Mul(decimal.NewFromInt(quantity))),
	}
	p.Items = append(p.Items, item)
	p.TotalAmount = p.TotalAmount.Add(item.TotalPrice)
	p.IncrementVersion()
	return &item, nil
}

// MarkReceived flips a pending order to received
func (p *PurchaseOrder) MarkReceived() error {
	switch p.Status {
	case PurchaseOrderStatusReceived:
		return shared.Errorf(shared.ErrAlreadyReceived, "Purchase order %s has already been received", p.displayRef())
	case PurchaseOrderStatusCancelled:
		return shared.Errorf(shared.ErrInvalidTransition, "Purchase order %s is cancelled", p.displayRef())
	}
	if len(p.Items) == 0 {
		return shared.Errorf(shared.ErrInvalidInput, "Purchase order %s has no items", p.displayRef())
	}
	now := time.Now()
	p.Status = PurchaseOrderStatusReceived
	p.ReceivedAt = &now
	p.IncrementVersion()
	p.AddDomainEvent(NewPurchaseOrderReceivedEvent(p))
	return nil
}

// Cancel cancels a pending purchase order
func (p *PurchaseOrder) Cancel() error {
	if p.Status != PurchaseOrderStatusPending {
		return shared.Errorf(shared.ErrInvalidTransition, "Cannot cancel a %s purchase order", p.Status)
	}
	p.Status = PurchaseOrderStatusCancelled
	p.IncrementVersion()
	return nil
}

func (p *PurchaseOrder) displayRef() string {
	if p.Reference != "" {
		return p.Reference
	}
	return p.ID.String()
}

// Aggregate type constant
const AggregateTypePurchaseOrder = "PurchaseOrder"

// EventTypePurchaseOrderReceived is published after a receipt commits
const EventTypePurchaseOrderReceived = "PurchaseOrderReceived"

// PurchaseOrderReceivedEvent is raised when a purchase order is received
type PurchaseOrderReceivedEvent struct {
	shared.BaseDomainEvent
	Reference string          `json:"reference"`
	Location  string          `json:"location"`
	Total     decimal.Decimal `json:"total"`
}

// NewPurchaseOrderReceivedEvent creates a new PurchaseOrderReceivedEvent
func NewPurchaseOrderReceivedEvent(p *PurchaseOrder) *PurchaseOrderReceivedEvent {
	return &PurchaseOrderReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderReceived, AggregateTypePurchaseOrder, p.ID, p.TenantID),
		Reference:       p.Reference,
		Location:        p.Location,
		Total:           p.TotalAmount,
	}
}
