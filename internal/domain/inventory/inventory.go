package inventory

import (
	"strings"

	"github.com/erp/retailcore/internal/domain/shared"
	"github.com/google/uuid"
)

// AllLocations selects every location of a product when deducting
const AllLocations = "*"

// Inventory is the on-hand quantity of one product at one location.
// Quantity never goes below zero.
type Inventory struct {
	shared.TenantAggregateRoot
	ProductID uuid.UUID
	Location  string
	Quantity  int64
}

// NewInventory creates an empty stock row
func NewInventory(tenantID, productID uuid.UUID, location string) (*Inventory, error) {
	location = strings.TrimSpace(location)
	if location == "" || location == AllLocations {
		return nil, shared.Errorf(shared.ErrInvalidInput, "A concrete location is required")
	}
	if productID == uuid.Nil {
		return nil, shared.Errorf(shared.ErrInvalidInput, "Product is required")
	}
	return &Inventory{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ProductID:           productID,
		Location:            location,
	}, nil
}

// CanFulfill reports whether qty units are on hand
func (i *Inventory) CanFulfill(qty int64) bool {
	return qty <= i.Quantity
}

// Deduct removes qty units
func (i *Inventory) Deduct(qty int64) error {
	if qty <= 0 {
		return shared.Errorf(shared.ErrInvalidInput, "Deduction quantity must be positive")
	}
	if !i.CanFulfill(qty) {
		return shared.Errorf(shared.ErrInsufficientStock,
			"Not enough stock at %s: available %d, requested %d", i.Location, i.Quantity, qty)
	}
	i.Quantity -= qty
	i.IncrementVersion()
	return nil
}

// Add puts qty units back on hand
func (i *Inventory) Add(qty int64) error {
	if qty <= 0 {
		return shared.Errorf(shared.ErrInvalidInput, "Quantity to add must be positive")
	}
	i.Quantity += qty
	i.IncrementVersion()
	return nil
}

// Apply adds a signed delta
func (i *Inventory) Apply(delta int64) error {
	switch {
	case delta > 0:
		return i.Add(delta)
	case delta < 0:
		return i.Deduct(-delta)
	}
	return shared.Errorf(shared.ErrInvalidInput, "Adjustment cannot be zero")
}

// TotalQuantity sums quantities across rows
func TotalQuantity(rows []*Inventory) int64 {
	var total int64
	for _, r := range rows {
		total += r.Quantity
	}
	return total
}
