package inventory

import (
	"time"

	"github.com/erp/retailcore/internal/domain/shared"
	"github.com/google/uuid"
)

// ChangeType classifies a stock movement
type ChangeType string

const (
	ChangeTypePurchaseReceive ChangeType = "PURCHASE_RECEIVE"
	ChangeTypeSale            ChangeType = "SALE"
	ChangeTypeSaleInTransit   ChangeType = "SALE_IN_TRANSIT"
	ChangeTypeReturnIn        ChangeType = "RETURN_IN"
	ChangeTypeReturnOut       ChangeType = "RETURN_OUT"
	ChangeTypeAdjustment      ChangeType = "ADJUSTMENT"
)

// String returns the string representation of ChangeType
func (c ChangeType) String() string {
	return string(c)
}

// IsValid returns true if the change type is known
func (c ChangeType) IsValid() bool {
	switch c {
	case ChangeTypePurchaseReceive, ChangeTypeSale, ChangeTypeSaleInTransit,
		ChangeTypeReturnIn, ChangeTypeReturnOut, ChangeTypeAdjustment:
		return true
	}
	return false
}

// acceptsChange checks the sign rules of each change type.
// SALE allows zero for the "sale finalized" marker written after an
// in-transit shipment.
func (c ChangeType) acceptsChange(delta int64) bool {
	switch c {
	case ChangeTypePurchaseReceive, ChangeTypeReturnIn:
		return delta > 0
	case ChangeTypeSale:
		return delta <= 0
	case ChangeTypeSaleInTransit, ChangeTypeReturnOut:
		return delta < 0
	case ChangeTypeAdjustment:
		return delta != 0
	}
	return false
}

// StockMovement is an immutable audit record of one quantity change at one
// location. Rows are only ever appended; corrections are new ADJUSTMENT rows.
type StockMovement struct {
	ID                 uuid.UUID
	TenantID           uuid.UUID
	ProductID          uuid.UUID
	Location           string
	ChangeType         ChangeType
	QuantityChange     int64
	SalesOrderID       *uuid.UUID
	PurchaseOrderID    *uuid.UUID
	ReversesMovementID *uuid.UUID
	Note               string
	CreatedAt          time.Time
}

// MovementOption configures optional links of a movement
type MovementOption func(*StockMovement)

// ForSalesOrder links the movement to a sales order
func ForSalesOrder(id uuid.UUID) MovementOption {
	return func(m *StockMovement) {
		if id != uuid.Nil {
			m.SalesOrderID = &id
		}
	}
}

// ForPurchaseOrder links the movement to a purchase order
func ForPurchaseOrder(id uuid.UUID) MovementOption {
	return func(m *StockMovement) {
		if id != uuid.Nil {
			m.PurchaseOrderID = &id
		}
	}
}

// Reversing marks the movement as compensation for another one
func Reversing(id uuid.UUID) MovementOption {
	return func(m *StockMovement) {
		m.ReversesMovementID = &id
	}
}

// WithNote sets a free-text note
func WithNote(note string) MovementOption {
	return func(m *StockMovement) {
		m.Note = note
	}
}

// NewStockMovement creates a movement record. Ids are UUIDv7 so that rows
// sort in creation order even when timestamps collide.
func NewStockMovement(tenantID, productID uuid.UUID, location string, changeType ChangeType, delta int64, opts ...MovementOption) (*StockMovement, error) {
	if !changeType.IsValid() {
		return nil, shared.Errorf(shared.ErrInvalidInput, "Unknown change type %q", changeType)
	}
	if !changeType.acceptsChange(delta) {
		return nil, shared.Errorf(shared.ErrInvalidInput, "Quantity change %d is not valid for %s", delta, changeType)
	}
	if location == "" || location == AllLocations {
		return nil, shared.Errorf(shared.ErrInvalidInput, "Movement requires a concrete location")
	}
	m := &StockMovement{
		ID:             uuid.Must(uuid.NewV7()),
		TenantID:       tenantID,
		ProductID:      productID,
		Location:       location,
		ChangeType:     changeType,
		QuantityChange: delta,
		CreatedAt:      time.Now(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// IsDeduction reports whether the movement took stock out for a sale
func (m *StockMovement) IsDeduction() bool {
	return m.QuantityChange < 0 &&
		(m.ChangeType == ChangeTypeSale || m.ChangeType == ChangeTypeSaleInTransit)
}

// DeductedQuantity returns the positive amount a deduction removed
func (m *StockMovement) DeductedQuantity() int64 {
	if !m.IsDeduction() {
		return 0
	}
	return -m.QuantityChange
}

// LocationBalance is the ledger sum of one (product, location)
type LocationBalance struct {
	ProductID uuid.UUID
	Location  string
	Quantity  int64
}
