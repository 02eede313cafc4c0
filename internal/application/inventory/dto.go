package inventory

import (
	"time"

	"github.com/erp/retailcore/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a request to register a product
type CreateProductRequest struct {
	Name  string          `json:"name" validate:"required,min=1,max=200"`
	SKU   string          `json:"sku" validate:"max=100"`
	Cost  decimal.Decimal `json:"cost"`
	Price decimal.Decimal `json:"price"`
}

// ProductResponse represents a product in responses
type ProductResponse struct {
	ID        uuid.UUID       `json:"id"`
	TenantID  uuid.UUID       `json:"tenant_id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Cost      decimal.Decimal `json:"cost"`
	Price     decimal.Decimal `json:"price"`
	Version   int             `json:"version"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *inventory.Product) ProductResponse {
	return ProductResponse{
		ID:        p.ID,
		TenantID:  p.TenantID,
		Name:      p.Name,
		SKU:       p.SKU,
		Cost:      p.Cost,
		Price:     p.Price,
		Version:   p.Version,
		UpdatedAt: p.UpdatedAt,
	}
}

// SetOpeningStockRequest sets the on-hand quantity at one location
type SetOpeningStockRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Location  string    `json:"location" validate:"required,ne=*"`
	Quantity  int64     `json:"quantity" validate:"gte=0"`
	Note      string    `json:"note" validate:"max=500"`
}

// AdjustStockRequest applies a signed correction at one location
type AdjustStockRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Location  string    `json:"location" validate:"required,ne=*"`
	Delta     int64     `json:"delta" validate:"ne=0"`
	Note      string    `json:"note" validate:"max=500"`
}

// ReceiveStockRequest records goods arriving outside a purchase order
type ReceiveStockRequest struct {
	ProductID uuid.UUID       `json:"product_id" validate:"required"`
	Location  string          `json:"location" validate:"required,ne=*"`
	Quantity  int64           `json:"quantity" validate:"gt=0"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	Note      string          `json:"note" validate:"max=500"`
}

// CustomerReturnRequest records goods coming back from a customer
type CustomerReturnRequest struct {
	ProductID    uuid.UUID  `json:"product_id" validate:"required"`
	Location     string     `json:"location" validate:"required,ne=*"`
	Quantity     int64      `json:"quantity" validate:"gt=0"`
	SalesOrderID *uuid.UUID `json:"sales_order_id"`
	Note         string     `json:"note" validate:"max=500"`
}

// SupplierReturnRequest records goods sent back to a supplier
type SupplierReturnRequest struct {
	ProductID       uuid.UUID  `json:"product_id" validate:"required"`
	Location        string     `json:"location" validate:"required,ne=*"`
	Quantity        int64      `json:"quantity" validate:"gt=0"`
	PurchaseOrderID *uuid.UUID `json:"purchase_order_id"`
	Note            string     `json:"note" validate:"max=500"`
}

// LocationQuantity is the stock of one location
type LocationQuantity struct {
	Location string `json:"location"`
	Quantity int64  `json:"quantity"`
}

// StockLevelResponse is the stock of one product
type StockLevelResponse struct {
	ProductID uuid.UUID          `json:"product_id"`
	Total     int64              `json:"total"`
	Cost      decimal.Decimal    `json:"cost"`
	Locations []LocationQuantity `json:"locations"`
}

func toStockLevel(product *inventory.Product, rows []*inventory.Inventory) *StockLevelResponse {
	resp := &StockLevelResponse{
		ProductID: product.ID,
		Total:     inventory.TotalQuantity(rows),
		Cost:      product.Cost,
		Locations: make([]LocationQuantity, len(rows)),
	}
	for i, row := range rows {
		resp.Locations[i] = LocationQuantity{Location: row.Location, Quantity: row.Quantity}
	}
	return resp
}

// MovementResponse represents a stock movement
type MovementResponse struct {
	ID                 uuid.UUID  `json:"id"`
	ProductID          uuid.UUID  `json:"product_id"`
	Location           string     `json:"location"`
	ChangeType         string     `json:"change_type"`
	QuantityChange     int64      `json:"quantity_change"`
	SalesOrderID       *uuid.UUID `json:"sales_order_id,omitempty"`
	PurchaseOrderID    *uuid.UUID `json:"purchase_order_id,omitempty"`
	ReversesMovementID *uuid.UUID `json:"reverses_movement_id,omitempty"`
	Note               string     `json:"note,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// ToMovementResponse converts a domain StockMovement to MovementResponse
func ToMovementResponse(m inventory.StockMovement) MovementResponse {
	return MovementResponse{
		ID:                 m.ID,
		ProductID:          m.ProductID,
		Location:           m.Location,
		ChangeType:         m.ChangeType.String(),
		QuantityChange:     m.QuantityChange,
		SalesOrderID:       m.SalesOrderID,
		PurchaseOrderID:    m.PurchaseOrderID,
		ReversesMovementID: m.ReversesMovementID,
		Note:               m.Note,
		CreatedAt:          m.CreatedAt,
	}
}

// ToMovementResponses converts a list of movements
func ToMovementResponses(movements []inventory.StockMovement) []MovementResponse {
	out := make([]MovementResponse, len(movements))
	for i, m := range movements {
		out[i] = ToMovementResponse(m)
	}
	return out
}

// Mismatch is a (product, location) whose stored quantity disagrees with its movements
type Mismatch struct {
	ProductID   uuid.UUID `json:"product_id"`
	Location    string    `json:"location"`
	Recorded    int64     `json:"recorded"`
	MovementSum int64     `json:"movement_sum"`
}

// ReconcileReport is the result of checking stock against the movement log
type ReconcileReport struct {
	TenantID   uuid.UUID  `json:"tenant_id"`
	Checked    int        `json:"checked"`
	Mismatches []Mismatch `json:"mismatches"`
}

// Consistent reports whether every row matched
func (r *ReconcileReport) Consistent() bool {
	return len(r.Mismatches) == 0
}
