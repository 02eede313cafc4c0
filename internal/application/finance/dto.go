package finance

import (
	"time"

	"github.com/erp/retailcore/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordPaymentRequest records money received against an invoice
type RecordPaymentRequest struct {
	InvoiceID  uuid.UUID             `json:"invoice_id" validate:"required"`
	Amount     decimal.Decimal       `json:"amount"`
	Method     finance.PaymentMethod `json:"method" validate:"required,oneof=cash upi card bank_transfer"`
	Reference  string                `json:"reference" validate:"max=100"`
	ReceivedBy *uuid.UUID            `json:"received_by"`
}

// RecordRefundRequest records money returned against an invoice
type RecordRefundRequest struct {
	InvoiceID  uuid.UUID             `json:"invoice_id" validate:"required"`
	Amount     decimal.Decimal       `json:"amount"`
	Method     finance.PaymentMethod `json:"method" validate:"required,oneof=cash upi card bank_transfer"`
	Reference  string                `json:"reference" validate:"max=100"`
	ReceivedBy *uuid.UUID            `json:"received_by"`
}

// InvoiceResponse represents an invoice in responses
type InvoiceResponse struct {
	ID            uuid.UUID         `json:"id"`
	TenantID      uuid.UUID         `json:"tenant_id"`
	InvoiceNumber string            `json:"invoice_number"`
	SalesOrderID  uuid.UUID         `json:"sales_order_id"`
	CustomerID    *uuid.UUID        `json:"customer_id,omitempty"`
	PaymentStatus string            `json:"payment_status"`
	PaidAmount    decimal.Decimal   `json:"paid_amount"`
	TotalAmount   decimal.Decimal   `json:"total_amount"`
	Outstanding   decimal.Decimal   `json:"outstanding"`
	Payments      []PaymentResponse `json:"payments,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

// PaymentResponse represents a payment or refund in responses
type PaymentResponse struct {
	ID         uuid.UUID       `json:"id"`
	Type       string          `json:"type"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	Reference  string          `json:"reference,omitempty"`
	ReceivedBy *uuid.UUID      `json:"received_by,omitempty"`
	PaidAt     time.Time       `json:"paid_at"`
}

// ToInvoiceResponse converts a domain Invoice to InvoiceResponse
func ToInvoiceResponse(i *finance.Invoice, payments []finance.Payment) InvoiceResponse {
	resp := InvoiceResponse{
		ID:            i.ID,
		TenantID:      i.TenantID,
		InvoiceNumber: i.InvoiceNumber,
		SalesOrderID:  i.SalesOrderID,
		CustomerID:    i.CustomerID,
		PaymentStatus: string(i.PaymentStatus),
		PaidAmount:    i.CachedPaidAmount,
		TotalAmount:   i.TotalInvoiceAmount,
		Outstanding:   i.Outstanding(),
		CreatedAt:     i.CreatedAt,
	}
	for _, p := range payments {
		resp.Payments = append(resp.Payments, PaymentResponse{
			ID:         p.ID,
			Type:       string(p.Type),
			Amount:     p.Amount,
			Method:     string(p.Method),
			Reference:  p.Reference,
			ReceivedBy: p.ReceivedBy,
			PaidAt:     p.PaidAt,
		})
	}
	return resp
}

// ManualEntryRequest posts an adjustment to a customer account
type ManualEntryRequest struct {
	CustomerID  uuid.UUID         `json:"customer_id" validate:"required"`
	Type        finance.EntryType `json:"type" validate:"required,oneof=debit credit"`
	Amount      decimal.Decimal   `json:"amount"`
	Description string            `json:"description" validate:"max=500"`
}

// LedgerEntryResponse represents a customer ledger entry
type LedgerEntryResponse struct {
	ID          uuid.UUID       `json:"id"`
	CustomerID  uuid.UUID       `json:"customer_id"`
	Type        string          `json:"type"`
	Kind        string          `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	InvoiceID   *uuid.UUID      `json:"invoice_id,omitempty"`
	PaymentID   *uuid.UUID      `json:"payment_id,omitempty"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ToLedgerEntryResponse converts a domain LedgerEntry
func ToLedgerEntryResponse(e finance.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:          e.ID,
		CustomerID:  e.CustomerID,
		Type:        string(e.Type),
		Kind:        string(e.Kind),
		Amount:      e.Amount,
		InvoiceID:   e.InvoiceID,
		PaymentID:   e.PaymentID,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
	}
}

// SnapshotResponse represents a customer's financial rollup
type SnapshotResponse struct {
	CustomerID    uuid.UUID       `json:"customer_id"`
	TotalSales    decimal.Decimal `json:"total_sales"`
	TotalPayments decimal.Decimal `json:"total_payments"`
	TotalRefunds  decimal.Decimal `json:"total_refunds"`
	TotalDebt     decimal.Decimal `json:"total_debt"`
	EntryCount    int             `json:"entry_count"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ToSnapshotResponse converts a domain snapshot
func ToSnapshotResponse(s *finance.CustomerFinancialSnapshot) SnapshotResponse {
	return SnapshotResponse{
		CustomerID:    s.CustomerID,
		TotalSales:    s.TotalSales,
		TotalPayments: s.TotalPayments,
		TotalRefunds:  s.TotalRefunds,
		TotalDebt:     s.TotalDebt,
		EntryCount:    s.EntryCount,
		UpdatedAt:     s.UpdatedAt,
	}
}
