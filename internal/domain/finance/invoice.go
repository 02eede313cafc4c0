package finance

import (
	"strings"

	"github.com/erp/retailcore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus is derived from the payment history, never set by hand
type PaymentStatus string

const (
	PaymentStatusUnpaid        PaymentStatus = "unpaid"
	PaymentStatusPartiallyPaid PaymentStatus = "partially_paid"
	PaymentStatusPaid          PaymentStatus = "paid"
)

// PaymentStatusFor derives the status from net paid and invoice total
func PaymentStatusFor(net, total decimal.Decimal) PaymentStatus {
	switch {
	case net.GreaterThanOrEqual(total):
		return PaymentStatusPaid
	case net.IsPositive():
		return PaymentStatusPartiallyPaid
	default:
		return PaymentStatusUnpaid
	}
}

// Invoice bills a completed sales order. Its identity never changes after
// creation; only the cached payment aggregate moves.
type Invoice struct {
	shared.TenantAggregateRoot
	InvoiceNumber      string
	SalesOrderID       uuid.UUID
	CustomerID         *uuid.UUID
	PaymentStatus      PaymentStatus
	CachedPaidAmount   decimal.Decimal
	TotalInvoiceAmount decimal.Decimal
}

// NewInvoice creates an unpaid invoice
func NewInvoice(tenantID uuid.UUID, invoiceNumber string, salesOrderID uuid.UUID, customerID *uuid.UUID, total decimal.Decimal) (*Invoice, error) {
	if strings.TrimSpace(invoiceNumber) == "" {
		return nil, shared.Errorf(shared.ErrInvalidInput, "Invoice number cannot be empty")
	}
	if salesOrderID == uuid.Nil {
		return nil, shared.Errorf(shared.ErrInvalidInput, "Sales order is required")
	}
	if total.IsNegative() {
		return nil, shared.Errorf(shared.ErrInvalidInput, "Invoice total cannot be negative")
	}
	inv := &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		InvoiceNumber:       strings.TrimSpace(invoiceNumber),
		SalesOrderID:        salesOrderID,
		CustomerID:          customerID,
		CachedPaidAmount:    decimal.Zero,
		TotalInvoiceAmount:  shared.RoundCurrency(total),
	}
	inv.PaymentStatus = PaymentStatusFor(inv.CachedPaidAmount, inv.TotalInvoiceAmount)
	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))
	return inv, nil
}

// Reconcile recomputes CachedPaidAmount and PaymentStatus from the full
// payment history. Calling it twice with the same history is a no-op.
func (i *Invoice) Reconcile(payments []Payment) Totals {
	totals := SumPayments(payments)
	i.CachedPaidAmount = totals.Net()
	i.PaymentStatus = PaymentStatusFor(i.CachedPaidAmount, i.TotalInvoiceAmount)
	i.IncrementVersion()
	return totals
}

// CheckRefund rejects a refund larger than what has been paid net
func CheckRefund(history []Payment, amount decimal.Decimal) error {
	available := SumPayments(history).AvailableForRefund()
	if amount.GreaterThan(available) {
		return shared.Errorf(shared.ErrRefundExceedsAvailable,
			"Refund of %s exceeds the %s available for refund", amount.StringFixed(2), available.StringFixed(2))
	}
	return nil
}

// Outstanding is what is still owed on the invoice
func (i *Invoice) Outstanding() decimal.Decimal {
	rest := i.TotalInvoiceAmount.Sub(i.CachedPaidAmount)
	if rest.IsNegative() {
		return decimal.Zero
	}
	return rest
}
