package models

import (
	"time"

	"github.com/erp/retailcore/internal/domain/shared"
	"github.com/erp/retailcore/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesOrderModel is the persistence model for the SalesOrder aggregate root.
type SalesOrderModel struct {
	BaseModel
	Version      int                   `gorm:"not null"`
	TenantID     uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex:idx_sales_order_tenant_number,priority:1"`
	OrderNumber  string                `gorm:"type:varchar(50);not null;uniqueIndex:idx_sales_order_tenant_number,priority:2"`
	Status       string                `gorm:"type:varchar(20);not null;index"`
	Location     string                `gorm:"type:varchar(100);not null"`
	CustomerType string                `gorm:"type:varchar(20);not null"`
	CustomerID   *uuid.UUID            `gorm:"type:uuid;index"`
	EmployeeID   *uuid.UUID            `gorm:"type:uuid"`
	Note         string                `gorm:"type:text"`
	CachedTotal  decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	CompletedAt  *time.Time            `gorm:"index"`
	Items        []SalesOrderItemModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (SalesOrderModel) TableName() string {
	return "sales_orders"
}

// ToDomain converts the persistence model to a domain SalesOrder
func (m *SalesOrderModel) ToDomain() *trade.SalesOrder {
	order := &trade.SalesOrder{
		TenantAggregateRoot: shared.TenantAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{
					ID:        m.ID,
					CreatedAt: m.CreatedAt,
					UpdatedAt: m.UpdatedAt,
				},
				Version: m.Version,
			},
			TenantID: m.TenantID,
		},
		OrderNumber:  m.OrderNumber,
		Status:       trade.OrderStatus(m.Status),
		Location:     m.Location,
		CustomerType: trade.CustomerType(m.CustomerType),
		CustomerID:   m.CustomerID,
		EmployeeID:   m.EmployeeID,
		Note:         m.Note,
		CachedTotal:  m.CachedTotal,
		CompletedAt:  m.CompletedAt,
		Items:        make([]trade.OrderItem, len(m.Items)),
	}
	for i, item := range m.Items {
		order.Items[i] = item.ToDomain()
	}
	return order
}

// SalesOrderModelFromDomain creates a persistence model from a domain SalesOrder
func SalesOrderModelFromDomain(o *trade.SalesOrder) *SalesOrderModel {
	m := &SalesOrderModel{
		Version:      o.Version,
		TenantID:     o.TenantID,
		OrderNumber:  o.OrderNumber,
		Status:       o.Status.String(),
		Location:     o.Location,
		CustomerType: string(o.CustomerType),
		CustomerID:   o.CustomerID,
		EmployeeID:   o.EmployeeID,
		Note:         o.Note,
		CachedTotal:  o.CachedTotal,
		CompletedAt:  o.CompletedAt,
		Items:        make([]SalesOrderItemModel, len(o.Items)),
	}
	m.FromDomainBaseEntity(o.BaseEntity)
	for i := range o.Items {
		m.Items[i] = SalesOrderItemModelFromDomain(&o.Items[i])
	}
	return m
}

// SalesOrderItemModel is one order line
type SalesOrderItemModel struct {
	BaseModel
	OrderID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity   int64           `gorm:"not null"`
	Price      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (SalesOrderItemModel) TableName() string {
	return "sales_order_items"
}

// ToDomain converts the persistence model to a domain OrderItem
func (m *SalesOrderItemModel) ToDomain() trade.OrderItem {
	return trade.OrderItem{
		ID:         m.ID,
		OrderID:    m.OrderID,
		ProductID:  m.ProductID,
		Quantity:   m.Quantity,
		Price:      m.Price,
		TotalPrice: m.TotalPrice,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// SalesOrderItemModelFromDomain creates a persistence model from a domain OrderItem
func SalesOrderItemModelFromDomain(i *trade.OrderItem) SalesOrderItemModel {
	return SalesOrderItemModel{
		BaseModel: BaseModel{
			ID:        i.ID,
			CreatedAt: i.CreatedAt.UTC(),
			UpdatedAt: i.UpdatedAt.UTC(),
		},
		OrderID:    i.OrderID,
		ProductID:  i.ProductID,
		Quantity:   i.Quantity,
		Price:      i.Price,
		TotalPrice: i.TotalPrice,
	}
}

// PurchaseOrderModel is the persistence model for the PurchaseOrder aggregate root.
type PurchaseOrderModel struct {
	TenantAggregateModel
	Reference    string                   `gorm:"type:varchar(100)"`
	SupplierName string                   `gorm:"type:varchar(200);not null"`
	Location     string                   `gorm:"type:varchar(100);not null"`
	Status       string                   `gorm:"type:varchar(20);not null;index"`
	Note         string                   `gorm:"type:text"`
	TotalAmount  decimal.Decimal          `gorm:"type:decimal(18,2);not null"`
	ReceivedAt   *time.Time               ``
	Items        []PurchaseOrderItemModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// ToDomain converts the persistence model to a domain PurchaseOrder
func (m *PurchaseOrderModel) ToDomain() *trade.PurchaseOrder {
	po := &trade.PurchaseOrder{
		TenantAggregateRoot: m.TenantAggregateRoot(),
		Reference:           m.Reference,
		SupplierName:        m.SupplierName,
		Location:            m.Location,
		Status:              trade.PurchaseOrderStatus(m.Status),
		Note:                m.Note,
		TotalAmount:         m.TotalAmount,
		ReceivedAt:          m.ReceivedAt,
		Items:               make([]trade.PurchaseOrderItem, len(m.Items)),
	}
	for i, item := range m.Items {
		po.Items[i] = trade.PurchaseOrderItem{
			ID:         item.ID,
			OrderID:    item.OrderID,
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.TotalPrice,
		}
	}
	return po
}

// PurchaseOrderModelFromDomain creates a persistence model from a domain PurchaseOrder
func PurchaseOrderModelFromDomain(p *trade.PurchaseOrder) *PurchaseOrderModel {
	m := &PurchaseOrderModel{
		Reference:    p.Reference,
		SupplierName: p.SupplierName,
		Location:     p.Location,
		Status:       string(p.Status),
		Note:         p.Note,
		TotalAmount:  p.TotalAmount,
		ReceivedAt:   p.ReceivedAt,
		Items:        make([]PurchaseOrderItemModel, len(p.Items)),
	}
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	for i, item := range p.Items {
		m.Items[i] = PurchaseOrderItemModel{
			BaseModel: BaseModel{
				ID:        item.ID,
				CreatedAt: p.CreatedAt,
				UpdatedAt: p.UpdatedAt,
			},
			OrderID:    p.ID,
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.TotalPrice,
		}
	}
	return m
}

// PurchaseOrderItemModel is one purchase order line
type PurchaseOrderItemModel struct {
	BaseModel
	OrderID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity   int64           `gorm:"not null"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (PurchaseOrderItemModel) TableName() string {
	return "purchase_order_items"
}
