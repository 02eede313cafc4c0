package finance

import (
	"github.com/erp/retailcore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeInvoice = "Invoice"

// Event type constants
const (
	EventTypeInvoiceCreated  = "InvoiceCreated"
	EventTypePaymentRecorded = "PaymentRecorded"
)

// InvoiceCreatedEvent is raised when an invoice is issued
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	SalesOrderID  uuid.UUID       `json:"sales_order_id"`
	Total         decimal.Decimal `json:"total"`
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(i *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCreated, AggregateTypeInvoice, i.ID, i.TenantID),
		InvoiceNumber:   i.InvoiceNumber,
		SalesOrderID:    i.SalesOrderID,
		Total:           i.TotalInvoiceAmount,
	}
}

// PaymentRecordedEvent is raised for every payment or refund appended
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	PaymentID     uuid.UUID       `json:"payment_id"`
	Type          PaymentType     `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
}

// NewPaymentRecordedEvent creates a new PaymentRecordedEvent
func NewPaymentRecordedEvent(i *Invoice, p *Payment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, AggregateTypeInvoice, i.ID, i.TenantID),
		PaymentID:       p.ID,
		Type:            p.Type,
		Amount:          p.Amount,
		PaymentStatus:   i.PaymentStatus,
	}
}
