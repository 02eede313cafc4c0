package models

import (
	"time"

	"github.com/erp/retailcore/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product aggregate root.
type ProductModel struct {
	TenantAggregateModel
	Name  string          `gorm:"type:varchar(200);not null"`
	SKU   string          `gorm:"column:sku;type:varchar(100);index"`
	Cost  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Price decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() *inventory.Product {
	return &inventory.Product{
		TenantAggregateRoot: m.TenantAggregateRoot(),
		Name:                m.Name,
		SKU:                 m.SKU,
		Cost:                m.Cost,
		Price:               m.Price,
	}
}

// ProductModelFromDomain creates a persistence model from a domain Product
func ProductModelFromDomain(p *inventory.Product) *ProductModel {
	m := &ProductModel{
		Name:  p.Name,
		SKU:   p.SKU,
		Cost:  p.Cost,
		Price: p.Price,
	}
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	return m
}

// InventoryModel is one (product, location) stock row
type InventoryModel struct {
	TenantAggregateModel
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_product_location,priority:1"`
	Location  string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_inventory_product_location,priority:2"`
	Quantity  int64     `gorm:"not null;check:chk_inventory_quantity_non_negative,quantity >= 0"`
}

// TableName returns the table name for GORM
func (InventoryModel) TableName() string {
	return "inventories"
}

// ToDomain converts the persistence model to a domain Inventory
func (m *InventoryModel) ToDomain() *inventory.Inventory {
	return &inventory.Inventory{
		TenantAggregateRoot: m.TenantAggregateRoot(),
		ProductID:           m.ProductID,
		Location:            m.Location,
		Quantity:            m.Quantity,
	}
}

// InventoryModelFromDomain creates a persistence model from a domain Inventory
func InventoryModelFromDomain(i *inventory.Inventory) *InventoryModel {
	m := &InventoryModel{
		ProductID: i.ProductID,
		Location:  i.Location,
		Quantity:  i.Quantity,
	}
	m.FromDomainTenantAggregateRoot(i.TenantAggregateRoot)
	return m
}

// StockMovementModel is an append-only movement row
type StockMovementModel struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TenantID           uuid.UUID  `gorm:"type:uuid;not null;index:idx_movement_tenant_product,priority:1"`
	ProductID          uuid.UUID  `gorm:"type:uuid;not null;index:idx_movement_tenant_product,priority:2"`
	Location           string     `gorm:"type:varchar(100);not null"`
	ChangeType         string     `gorm:"type:varchar(30);not null"`
	QuantityChange     int64      `gorm:"not null"`
	SalesOrderID       *uuid.UUID `gorm:"type:uuid;index"`
	PurchaseOrderID    *uuid.UUID `gorm:"type:uuid;index"`
	ReversesMovementID *uuid.UUID `gorm:"type:uuid"`
	Note               string     `gorm:"type:text"`
	CreatedAt          time.Time  `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (StockMovementModel) TableName() string {
	return "stock_movements"
}

// ToDomain converts the persistence model to a domain StockMovement
func (m *StockMovementModel) ToDomain() inventory.StockMovement {
	return inventory.StockMovement{
		ID:                 m.ID,
		TenantID:           m.TenantID,
		ProductID:          m.ProductID,
		Location:           m.Location,
		ChangeType:         inventory.ChangeType(m.ChangeType),
		QuantityChange:     m.QuantityChange,
		SalesOrderID:       m.SalesOrderID,
		PurchaseOrderID:    m.PurchaseOrderID,
		ReversesMovementID: m.ReversesMovementID,
		Note:               m.Note,
		CreatedAt:          m.CreatedAt,
	}
}

// StockMovementModelFromDomain creates a persistence model from a domain StockMovement
func StockMovementModelFromDomain(s *inventory.StockMovement) *StockMovementModel {
	return &StockMovementModel{
		ID:                 s.ID,
		TenantID:           s.TenantID,
		ProductID:          s.ProductID,
		Location:           s.Location,
		ChangeType:         s.ChangeType.String(),
		QuantityChange:     s.QuantityChange,
		SalesOrderID:       s.SalesOrderID,
		PurchaseOrderID:    s.PurchaseOrderID,
		ReversesMovementID: s.ReversesMovementID,
		Note:               s.Note,
		CreatedAt:          s.CreatedAt.UTC(),
	}
}

// SequenceModel holds the last number issued per (tenant, kind)
type SequenceModel struct {
	TenantID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Kind      string    `gorm:"type:varchar(30);primaryKey"`
	Value     int64     `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SequenceModel) TableName() string {
	return "document_sequences"
}
