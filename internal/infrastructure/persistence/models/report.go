package models

import (
	"time"

	"github.com/erp/retailcore/internal/domain/report"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductSalesSummaryModel is one product's rollup for one period
type ProductSalesSummaryModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_sales_summary_key,priority:1"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_sales_summary_key,priority:2"`
	Period        string          `gorm:"type:varchar(10);not null;uniqueIndex:idx_sales_summary_key,priority:3"`
	PeriodStart   time.Time       `gorm:"not null;uniqueIndex:idx_sales_summary_key,priority:4"`
	PeriodEnd     time.Time       `gorm:"not null"`
	TotalQuantity int64           `gorm:"not null"`
	TotalRevenue  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalOrders   int             `gorm:"not null"`
	UpdatedAt     time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductSalesSummaryModel) TableName() string {
	return "product_sales_summaries"
}

// ToDomain converts the persistence model to a domain summary
func (m *ProductSalesSummaryModel) ToDomain() report.ProductSalesSummary {
	return report.ProductSalesSummary{
		ID:            m.ID,
		TenantID:      m.TenantID,
		ProductID:     m.ProductID,
		Period:        report.Period(m.Period),
		PeriodStart:   m.PeriodStart,
		PeriodEnd:     m.PeriodEnd,
		TotalQuantity: m.TotalQuantity,
		TotalRevenue:  m.TotalRevenue,
		TotalOrders:   m.TotalOrders,
		UpdatedAt:     m.UpdatedAt,
	}
}

// ProductSalesSummaryModelFromDomain creates a persistence model from a domain summary
func ProductSalesSummaryModelFromDomain(s *report.ProductSalesSummary) *ProductSalesSummaryModel {
	return &ProductSalesSummaryModel{
		ID:            s.ID,
		TenantID:      s.TenantID,
		ProductID:     s.ProductID,
		Period:        string(s.Period),
		PeriodStart:   s.PeriodStart.UTC(),
		PeriodEnd:     s.PeriodEnd.UTC(),
		TotalQuantity: s.TotalQuantity,
		TotalRevenue:  s.TotalRevenue,
		TotalOrders:   s.TotalOrders,
		UpdatedAt:     s.UpdatedAt,
	}
}
