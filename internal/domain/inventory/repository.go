package inventory

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository persists products
type ProductRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)
	// FindByIDForUpdate locks the product row until the transaction ends.
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Product, error)
	Save(ctx context.Context, product *Product) error
}

// InventoryRepository persists per-location stock rows
type InventoryRepository interface {
	FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]*Inventory, error)
	// LockByProduct loads every location row of a product FOR UPDATE.
	LockByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]*Inventory, error)
	// GetOrCreateForUpdate returns the locked row at location, inserting an
	// empty one first when missing.
	GetOrCreateForUpdate(ctx context.Context, tenantID, productID uuid.UUID, location string) (*Inventory, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]*Inventory, error)
	Save(ctx context.Context, rows ...*Inventory) error
}

// StockMovementRepository is append-only: there is no update or delete.
type StockMovementRepository interface {
	Append(ctx context.Context, movements ...*StockMovement) error
	FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]StockMovement, error)
	FindBySalesOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]StockMovement, error)
	FindByPurchaseOrder(ctx context.Context, tenantID, poID uuid.UUID) ([]StockMovement, error)
	// BalancesForTenant sums quantity_change per (product, location).
	BalancesForTenant(ctx context.Context, tenantID uuid.UUID) ([]LocationBalance, error)
}
