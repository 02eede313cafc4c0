package models

import (
	"time"

	"github.com/erp/retailcore/internal/domain/finance"
	"github.com/erp/retailcore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
type InvoiceModel struct {
	BaseModel
	Version            int             `gorm:"not null"`
	TenantID           uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_invoice_tenant_number,priority:1;uniqueIndex:idx_invoice_tenant_order,priority:1"`
	InvoiceNumber      string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoice_tenant_number,priority:2"`
	SalesOrderID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_invoice_tenant_order,priority:2"`
	CustomerID         *uuid.UUID      `gorm:"type:uuid;index"`
	PaymentStatus      string          `gorm:"type:varchar(20);not null"`
	CachedPaidAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalInvoiceAmount decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice
func (m *InvoiceModel) ToDomain() *finance.Invoice {
	return &finance.Invoice{
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
		InvoiceNumber:      m.InvoiceNumber,
		SalesOrderID:       m.SalesOrderID,
		CustomerID:         m.CustomerID,
		PaymentStatus:      finance.PaymentStatus(m.PaymentStatus),
		CachedPaidAmount:   m.CachedPaidAmount,
		TotalInvoiceAmount: m.TotalInvoiceAmount,
	}
}

// InvoiceModelFromDomain creates a persistence model from a domain Invoice
func InvoiceModelFromDomain(i *finance.Invoice) *InvoiceModel {
	m := &InvoiceModel{
		Version:            i.Version,
		TenantID:           i.TenantID,
		InvoiceNumber:      i.InvoiceNumber,
		SalesOrderID:       i.SalesOrderID,
		CustomerID:         i.CustomerID,
		PaymentStatus:      string(i.PaymentStatus),
		CachedPaidAmount:   i.CachedPaidAmount,
		TotalInvoiceAmount: i.TotalInvoiceAmount,
	}
	m.FromDomainBaseEntity(i.BaseEntity)
	return m
}

// PaymentModel is an append-only payment or refund row
type PaymentModel struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Type       string          `gorm:"type:varchar(20);not null"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Method     string          `gorm:"type:varchar(20);not null"`
	Reference  string          `gorm:"type:varchar(100)"`
	ReceivedBy *uuid.UUID      `gorm:"type:uuid"`
	PaidAt     time.Time       `gorm:"not null"`
	CreatedAt  time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment
func (m *PaymentModel) ToDomain() finance.Payment {
	return finance.Payment{
		ID:         m.ID,
		TenantID:   m.TenantID,
		InvoiceID:  m.InvoiceID,
		Type:       finance.PaymentType(m.Type),
		Amount:     m.Amount,
		Method:     finance.PaymentMethod(m.Method),
		Reference:  m.Reference,
		ReceivedBy: m.ReceivedBy,
		PaidAt:     m.PaidAt,
		CreatedAt:  m.CreatedAt,
	}
}

// PaymentModelFromDomain creates a persistence model from a domain Payment
func PaymentModelFromDomain(p *finance.Payment) *PaymentModel {
	return &PaymentModel{
		ID:         p.ID,
		TenantID:   p.TenantID,
		InvoiceID:  p.InvoiceID,
		Type:       string(p.Type),
		Amount:     p.Amount,
		Method:     string(p.Method),
		Reference:  p.Reference,
		ReceivedBy: p.ReceivedBy,
		PaidAt:     p.PaidAt,
		CreatedAt:  p.CreatedAt.UTC(),
	}
}

// CustomerLedgerEntryModel is one line of a customer account
type CustomerLedgerEntryModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_ledger_tenant_customer,priority:1"`
	CustomerID  uuid.UUID       `gorm:"type:uuid;not null;index:idx_ledger_tenant_customer,priority:2"`
	Type        string          `gorm:"type:varchar(10);not null"`
	Kind        string          `gorm:"type:varchar(20);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	InvoiceID   *uuid.UUID      `gorm:"type:uuid;index"`
	PaymentID   *uuid.UUID      `gorm:"type:uuid"`
	Description string          `gorm:"type:text"`
	CreatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CustomerLedgerEntryModel) TableName() string {
	return "customer_ledger_entries"
}

// ToDomain converts the persistence model to a domain LedgerEntry
func (m *CustomerLedgerEntryModel) ToDomain() finance.LedgerEntry {
	return finance.LedgerEntry{
		ID:          m.ID,
		TenantID:    m.TenantID,
		CustomerID:  m.CustomerID,
		Type:        finance.EntryType(m.Type),
		Kind:        finance.EntryKind(m.Kind),
		Amount:      m.Amount,
		InvoiceID:   m.InvoiceID,
		PaymentID:   m.PaymentID,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
	}
}

// CustomerLedgerEntryModelFromDomain creates a persistence model from a domain LedgerEntry
func CustomerLedgerEntryModelFromDomain(e *finance.LedgerEntry) *CustomerLedgerEntryModel {
	return &CustomerLedgerEntryModel{
		ID:          e.ID,
		TenantID:    e.TenantID,
		CustomerID:  e.CustomerID,
		Type:        string(e.Type),
		Kind:        string(e.Kind),
		Amount:      e.Amount,
		InvoiceID:   e.InvoiceID,
		PaymentID:   e.PaymentID,
		Description: e.Description,
		CreatedAt:   e.CreatedAt.UTC(),
	}
}

// CustomerFinancialSnapshotModel is the rollup row of one customer
type CustomerFinancialSnapshotModel struct {
	TenantID      uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CustomerID    uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TotalSales    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalPayments decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalRefunds  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalDebt     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	EntryCount    int             `gorm:"not null"`
	UpdatedAt     time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CustomerFinancialSnapshotModel) TableName() string {
	return "customer_financial_snapshots"
}

// ToDomain converts the persistence model to a domain snapshot
func (m *CustomerFinancialSnapshotModel) ToDomain() *finance.CustomerFinancialSnapshot {
	return &finance.CustomerFinancialSnapshot{
		TenantID:      m.TenantID,
		CustomerID:    m.CustomerID,
		TotalSales:    m.TotalSales,
		TotalPayments: m.TotalPayments,
		TotalRefunds:  m.TotalRefunds,
		TotalDebt:     m.TotalDebt,
		EntryCount:    m.EntryCount,
		UpdatedAt:     m.UpdatedAt,
	}
}

// CustomerFinancialSnapshotModelFromDomain creates a persistence model from a domain snapshot
func CustomerFinancialSnapshotModelFromDomain(s *finance.CustomerFinancialSnapshot) *CustomerFinancialSnapshotModel {
	return &CustomerFinancialSnapshotModel{
		TenantID:      s.TenantID,
		CustomerID:    s.CustomerID,
		TotalSales:    s.TotalSales,
		TotalPayments: s.TotalPayments,
		TotalRefunds:  s.TotalRefunds,
		TotalDebt:     s.TotalDebt,
		EntryCount:    s.EntryCount,
		UpdatedAt:     s.UpdatedAt,
	}
}
