package trade

import (
	"strings"
	"time"

	"github.com/erp/retailcore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the status of a sales order
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "draft"
	OrderStatusInTransit OrderStatus = "in_transit"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusDraft, OrderStatusInTransit, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// HasStockImpact reports whether inventory has been deducted for the order
func (s OrderStatus) HasStockImpact() bool {
	return s == OrderStatusInTransit || s == OrderStatusCompleted
}

// CustomerType distinguishes walk-in sales from registered customers
type CustomerType string

const (
	CustomerTypeWalkIn     CustomerType = "walk_in"
	CustomerTypeRegistered CustomerType = "registered"
)

// OrderItem is one line of a sales order. TotalPrice is fixed at write time.
type OrderItem struct {
	ID         uuid.UUID
	OrderID    uuid.UUID
	ProductID  uuid.UUID
	Quantity   int64
	Price      decimal.Decimal
	TotalPrice decimal.Decimal
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func newOrderItem(orderID, productID uuid.UUID, quantity int64, price decimal.Decimal) (*OrderItem, error) {
	if productID == uuid.Nil {
		return nil, shared.Errorf(shared.ErrInvalidInput, "Product is required")
	}
	if quantity <= 0 {
		return nil, shared.Errorf(shared.ErrInvalidInput, "Quantity must be positive")
	}
	if price.IsNegative() {
		return nil, shared.Errorf(shared.ErrInvalidInput, "Price cannot be negative")
	}
	now := time.Now()
	item := &OrderItem{
		ID:        uuid.New(),
		OrderID:   orderID,
		ProductID: productID,
		Quantity:  quantity,
		Price:     shared.RoundCurrency(price),
		CreatedAt: now,
		UpdatedAt: now,
	}
	item.computeTotal()
	return item, nil
}

func (i *OrderItem) computeTotal() {
	i.TotalPrice = shared.RoundCurrency(i.Price.Mul(decimal.NewFromInt(i.Quantity)))
}

// SalesOrder is a point-of-sale or wholesale order.
// Items can only change while the order is a draft; finalization is the only
// path that touches inventory.
type SalesOrder struct {
	shared.TenantAggregateRoot
	OrderNumber  string
	Status       OrderStatus
	Location     string
	CustomerType CustomerType
	CustomerID   *uuid.UUID
	EmployeeID   *uuid.UUID
	Note         string
	CachedTotal  decimal.Decimal
	Items        []OrderItem
	CompletedAt  *time.Time
}

// NewSalesOrder creates a draft order. A walk-in order never carries a
// customer reference; a registered one must.
func NewSalesOrder(tenantID uuid.UUID, orderNumber, location string, customerType CustomerType, customerID *uuid.UUID) (*SalesOrder, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" {
		return nil, shared.Errorf(shared.ErrInvalidInput, "Order number cannot be empty")
	}
	if strings.TrimSpace(location) == "" {
		return nil, shared.Errorf(shared.ErrInvalidInput, "Location cannot be empty")
	}
	switch customerType {
	case CustomerTypeWalkIn:
		customerID = nil
	case CustomerTypeRegistered:
		if customerID == nil || *customerID == uuid.Nil {
			return nil, shared.Errorf(shared.ErrInvalidInput, "Registered orders need a customer")
		}
	default:
		return nil, shared.Errorf(shared.ErrInvalidInput, "Unknown customer type %q", customerType)
	}

	return &SalesOrder{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		OrderNumber:         orderNumber,
		Status:              OrderStatusDraft,
		Location:            strings.TrimSpace(location),
		CustomerType:        customerType,
		CustomerID:          customerID,
		CachedTotal:         decimal.Zero,
		Items:               make([]OrderItem, 0),
	}, nil
}

// SetEmployee records who took the order
func (o *SalesOrder) SetEmployee(employeeID uuid.UUID) {
	if employeeID != uuid.Nil {
		o.EmployeeID = &employeeID
	}
}

func (o *SalesOrder) requireDraft(action string) error {
	if o.Status != OrderStatusDraft {
		return shared.Errorf(shared.ErrInvalidState, "Cannot %s on a %s order", action, o.Status)
	}
	return nil
}

// AddItem adds a line to a draft order
func (o *SalesOrder) AddItem(productID uuid.UUID, quantity int64, price decimal.Decimal) (*OrderItem, error) {
	if err := o.requireDraft("add items"); err != nil {
		return nil, err
	}
	for _, item := range o.Items {
		if item.ProductID == productID {
			return nil, shared.NewDomainError("DUPLICATE_PRODUCT", "Product already exists in order, update quantity instead")
		}
	}
	item, err := newOrderItem(o.ID, productID, quantity, price)
	if err != nil {
		return nil, err
	}
	o.Items = append(o.Items, *item)
	o.RecalculateTotal()
	o.IncrementVersion()
	return item, nil
}

// UpdateItemQuantity changes the quantity of a draft line
func (o *SalesOrder) UpdateItemQuantity(itemID uuid.UUID, quantity int64) error {
	if err := o.requireDraft("update items"); err != nil {
		return err
	}
	if quantity <= 0 {
		return shared.Errorf(shared.ErrInvalidInput, "Quantity must be positive")
	}
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			o.Items[i].Quantity = quantity
			o.Items[i].computeTotal()
			o.Items[i].UpdatedAt = time.Now()
			o.RecalculateTotal()
			o.IncrementVersion()
			return nil
		}
	}
	return shared.Errorf(shared.ErrNotFound, "Order item not found")
}

// RemoveItem drops a draft line
func (o *SalesOrder) RemoveItem(itemID uuid.UUID) error {
	if err := o.requireDraft("remove items"); err != nil {
		return err
	}
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			o.Items = append(o.Items[:i], o.Items[i+1:]...)
			o.RecalculateTotal()
			o.IncrementVersion()
			return nil
		}
	}
	return shared.Errorf(shared.ErrNotFound, "Order item not found")
}

// RecalculateTotal sets CachedTotal to the sum of line totals
func (o *SalesOrder) RecalculateTotal() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.TotalPrice)
	}
	o.CachedTotal = total
}

// RequiredQuantities sums ordered quantity per product
func (o *SalesOrder) RequiredQuantities() map[uuid.UUID]int64 {
	required := make(map[uuid.UUID]int64, len(o.Items))
	for _, item := range o.Items {
		required[item.ProductID] += item.Quantity
	}
	return required
}

// ProductIDs lists the distinct products on the order
func (o *SalesOrder) ProductIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(o.Items))
	for id := range o.RequiredQuantities() {
		ids = append(ids, id)
	}
	return ids
}

// CheckComplete validates the completion guard without changing the order.
//
// Retail completes from draft. Wholesale completes only after the goods
// have shipped (in_transit).
func (o *SalesOrder) CheckComplete(mode BusinessMode) error {
	switch o.Status {
	case OrderStatusCompleted:
		return shared.Errorf(shared.ErrAlreadyFinalized, "Order %s is already completed", o.OrderNumber)
	case OrderStatusCancelled:
		return shared.Errorf(shared.ErrInvalidTransition, "Order %s is cancelled", o.OrderNumber)
	}
	switch mode {
	case BusinessModeRetail:
		if o.Status != OrderStatusDraft {
			return shared.Errorf(shared.ErrInvalidTransition,
				"Retail order %s cannot be completed from %s", o.OrderNumber, o.Status)
		}
	case BusinessModeWholesale:
		if o.Status != OrderStatusInTransit {
			return shared.Errorf(shared.ErrInvalidTransition,
				"Wholesale order %s must be marked in transit before completion", o.OrderNumber)
		}
	default:
		return shared.Errorf(shared.ErrInvalidInput, "Unknown business mode %q", mode)
	}
	if len(o.Items) == 0 {
		return shared.Errorf(shared.ErrInvalidInput, "Order %s has no items", o.OrderNumber)
	}
	return nil
}

// Complete marks the order completed
func (o *SalesOrder) Complete(mode BusinessMode) error {
	if err := o.CheckComplete(mode); err != nil {
		return err
	}
	from := o.Status
	now := time.Now()
	o.Status = OrderStatusCompleted
	o.CompletedAt = &now
	o.RecalculateTotal()
	o.IncrementVersion()
	o.AddDomainEvent(NewSalesOrderCompletedEvent(o, mode, from))
	return nil
}

// CheckMarkInTransit validates the shipping guard without changing the order
func (o *SalesOrder) CheckMarkInTransit(mode BusinessMode) error {
	switch o.Status {
	case OrderStatusCompleted:
		return shared.Errorf(shared.ErrAlreadyFinalized, "Order %s is already completed", o.OrderNumber)
	case OrderStatusInTransit:
		return shared.Errorf(shared.ErrInvalidTransition, "Order %s is already in transit", o.OrderNumber)
	case OrderStatusCancelled:
		return shared.Errorf(shared.ErrInvalidTransition, "Order %s is cancelled", o.OrderNumber)
	}
	if mode != BusinessModeWholesale {
		return shared.Errorf(shared.ErrInvalidTransition, "Only wholesale orders can be marked in transit")
	}
	if len(o.Items) == 0 {
		return shared.Errorf(shared.ErrInvalidInput, "Order %s has no items", o.OrderNumber)
	}
	return nil
}

// MarkInTransit records that the goods left the warehouse
func (o *SalesOrder) MarkInTransit(mode BusinessMode) error {
	if err := o.CheckMarkInTransit(mode); err != nil {
		return err
	}
	o.Status = OrderStatusInTransit
	o.RecalculateTotal()
	o.IncrementVersion()
	o.AddDomainEvent(NewSalesOrderInTransitEvent(o))
	return nil
}

// Reopen puts a completed or in-transit order back to draft. The caller is
// responsible for reversing its stock movements in the same transaction.
func (o *SalesOrder) Reopen() error {
	if !o.Status.HasStockImpact() {
		return shared.Errorf(shared.ErrInvalidTransition, "Cannot reopen a %s order", o.Status)
	}
	from := o.Status
	o.Status = OrderStatusDraft
	o.CompletedAt = nil
	o.IncrementVersion()
	o.AddDomainEvent(NewSalesOrderReopenedEvent(o, from))
	return nil
}

// Cancel cancels a draft order
func (o *SalesOrder) Cancel() error {
	switch o.Status {
	case OrderStatusDraft:
	case OrderStatusCompleted:
		return shared.Errorf(shared.ErrAlreadyFinalized, "Order %s is already completed", o.OrderNumber)
	default:
		return shared.Errorf(shared.ErrInvalidTransition, "Cannot cancel a %s order", o.Status)
	}
	o.Status = OrderStatusCancelled
	o.IncrementVersion()
	o.AddDomainEvent(NewSalesOrderCancelledEvent(o))
	return nil
}
