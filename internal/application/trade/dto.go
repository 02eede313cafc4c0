package trade

import (
	"time"

	"github.com/erp/retailcore/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ========== Sales order DTOs ==========

// CreateSalesOrderRequest represents a request to open a draft sales order
type CreateSalesOrderRequest struct {
	Location     string                   `json:"location" validate:"max=100"`
	CustomerType trade.CustomerType       `json:"customer_type" validate:"required,oneof=walk_in registered"`
	CustomerID   *uuid.UUID               `json:"customer_id"`
	EmployeeID   *uuid.UUID               `json:"employee_id"`
	Note         string                   `json:"note" validate:"max=500"`
	Items        []CreateOrderItemRequest `json:"items" validate:"dive"`
}

// CreateOrderItemRequest represents an order line. Price defaults to the
// product's list price.
type CreateOrderItemRequest struct {
	ProductID uuid.UUID        `json:"product_id" validate:"required"`
	Quantity  int64            `json:"quantity" validate:"gt=0"`
	Price     *decimal.Decimal `json:"price"`
}

// UpdateItemQuantityRequest changes the quantity of a draft line
type UpdateItemQuantityRequest struct {
	ItemID   uuid.UUID `json:"item_id" validate:"required"`
	Quantity int64     `json:"quantity" validate:"gt=0"`
}

// SalesOrderResponse represents a sales order in responses
type SalesOrderResponse struct {
	ID           uuid.UUID           `json:"id"`
	TenantID     uuid.UUID           `json:"tenant_id"`
	OrderNumber  string              `json:"order_number"`
	Status       string              `json:"status"`
	Location     string              `json:"location"`
	CustomerType string              `json:"customer_type"`
	CustomerID   *uuid.UUID          `json:"customer_id,omitempty"`
	EmployeeID   *uuid.UUID          `json:"employee_id,omitempty"`
	Note         string              `json:"note,omitempty"`
	Total        decimal.Decimal     `json:"total"`
	Items        []OrderItemResponse `json:"items"`
	CompletedAt  *time.Time          `json:"completed_at,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	Version      int                 `json:"version"`
}

// OrderItemResponse represents an order line in responses
type OrderItemResponse struct {
	ID         uuid.UUID       `json:"id"`
	ProductID  uuid.UUID       `json:"product_id"`
	Quantity   int64           `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// ToSalesOrderResponse converts a domain SalesOrder to SalesOrderResponse
func ToSalesOrderResponse(o *trade.SalesOrder) SalesOrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ID:         item.ID,
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			Price:      item.Price,
			TotalPrice: item.TotalPrice,
		}
	}
	return SalesOrderResponse{
		ID:           o.ID,
		TenantID:     o.TenantID,
		OrderNumber:  o.OrderNumber,
		Status:       o.Status.String(),
		Location:     o.Location,
		CustomerType: string(o.CustomerType),
		CustomerID:   o.CustomerID,
		EmployeeID:   o.EmployeeID,
		Note:         o.Note,
		Total:        o.CachedTotal,
		Items:        items,
		CompletedAt:  o.CompletedAt,
		CreatedAt:    o.CreatedAt,
		Version:      o.Version,
	}
}

// ========== Purchase order DTOs ==========

// CreatePurchaseOrderRequest represents a request to place a purchase order
type CreatePurchaseOrderRequest struct {
	Reference    string                      `json:"reference" validate:"max=100"`
	SupplierName string                      `json:"supplier_name" validate:"required,max=200"`
	Location     string                      `json:"location" validate:"max=100,ne=*"`
	Note         string                      `json:"note" validate:"max=500"`
	Items        []CreatePurchaseItemRequest `json:"items" validate:"required,min=1,dive"`
}

// CreatePurchaseItemRequest represents a purchase order line
type CreatePurchaseItemRequest struct {
	ProductID uuid.UUID       `json:"product_id" validate:"required"`
	Quantity  int64           `json:"quantity" validate:"gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// PurchaseOrderResponse represents a purchase order in responses
type PurchaseOrderResponse struct {
	ID           uuid.UUID              `json:"id"`
	TenantID     uuid.UUID              `json:"tenant_id"`
	Reference    string                 `json:"reference,omitempty"`
	SupplierName string                 `json:"supplier_name"`
	Location     string                 `json:"location"`
	Status       string                 `json:"status"`
	TotalAmount  decimal.Decimal        `json:"total_amount"`
	Items        []PurchaseItemResponse `json:"items"`
	ReceivedAt   *time.Time             `json:"received_at,omitempty"`
	Version      int                    `json:"version"`
}

// PurchaseItemResponse represents a purchase order line in responses
type PurchaseItemResponse struct {
	ID         uuid.UUID       `json:"id"`
	ProductID  uuid.UUID       `json:"product_id"`
	Quantity   int64           `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// ToPurchaseOrderResponse converts a domain PurchaseOrder to PurchaseOrderResponse
func ToPurchaseOrderResponse(p *trade.PurchaseOrder) PurchaseOrderResponse {
	items := make([]PurchaseItemResponse, len(p.Items))
	for i, item := range p.Items {
		items[i] = PurchaseItemResponse{
			ID:         item.ID,
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.TotalPrice,
		}
	}
	return PurchaseOrderResponse{
		ID:           p.ID,
		TenantID:     p.TenantID,
		Reference:    p.Reference,
		SupplierName: p.SupplierName,
		Location:     p.Location,
		Status:       string(p.Status),
		TotalAmount:  p.TotalAmount,
		Items:        items,
		ReceivedAt:   p.ReceivedAt,
		Version:      p.Version,
	}
}
