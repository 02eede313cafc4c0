package trade

import (
	"context"

	"github.com/google/uuid"
)

// SalesOrderRepository persists sales orders with their items
type SalesOrderRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*SalesOrder, error)
	// FindByIDForUpdate locks the order row until the transaction ends.
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*SalesOrder, error)
	FindByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*SalesOrder, error)
	// Save upserts the order and replaces its item rows.
	Save(ctx context.Context, order *SalesOrder) error
}

// PurchaseOrderRepository persists purchase orders with their items
type PurchaseOrderRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*PurchaseOrder, error)
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*PurchaseOrder, error)
	Save(ctx context.Context, po *PurchaseOrder) error
}
