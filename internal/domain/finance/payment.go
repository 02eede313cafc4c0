package finance

import (
	"strings"
	"time"

	"github.com/erp/retailcore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentType distinguishes money received from money returned
type PaymentType string

const (
	PaymentTypePayment PaymentType = "payment"
	PaymentTypeRefund  PaymentType = "refund"
)

// PaymentMethod is how the money moved
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodUPI          PaymentMethod = "upi"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

// IsValid checks if the payment method is known
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodUPI, PaymentMethodCard, PaymentMethodBankTransfer:
		return true
	}
	return false
}

// Payment is an append-only record of money received for, or refunded
// against, an invoice. Amount is always positive; Type carries the sign.
type Payment struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	InvoiceID  uuid.UUID
	Type       PaymentType
	Amount     decimal.Decimal
	Method     PaymentMethod
	Reference  string
	ReceivedBy *uuid.UUID
	PaidAt     time.Time
	CreatedAt  time.Time
}

// NewPayment creates a payment record
func NewPayment(tenantID, invoiceID uuid.UUID, paymentType PaymentType, amount decimal.Decimal, method PaymentMethod, reference string) (*Payment, error) {
	if paymentType != PaymentTypePayment && paymentType != PaymentTypeRefund {
		return nil, shared.Errorf(shared.ErrInvalidInput, "Unknown payment type %q", paymentType)
	}
	if !amount.IsPositive() {
		return nil, shared.Errorf(shared.ErrInvalidInput, "Amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.Errorf(shared.ErrInvalidInput, "Unknown payment method %q", method)
	}
	now := time.Now()
	return &Payment{
		ID:        uuid.New(),
		TenantID:  tenantID,
		InvoiceID: invoiceID,
		Type:      paymentType,
		Amount:    shared.RoundCurrency(amount),
		Method:    method,
		Reference: strings.TrimSpace(reference),
		PaidAt:    now,
		CreatedAt: now,
	}, nil
}

// Totals is the payment/refund split of a payment history
type Totals struct {
	Payments decimal.Decimal
	Refunds  decimal.Decimal
}

// Net is payments minus refunds
func (t Totals) Net() decimal.Decimal {
	return t.Payments.Sub(t.Refunds)
}

// AvailableForRefund is what can still be refunded. It is the same figure as
// Net; the name exists so call sites read as the rule they enforce.
func (t Totals) AvailableForRefund() decimal.Decimal {
	return t.Net()
}

// SumPayments splits a history into payment and refund totals
func SumPayments(payments []Payment) Totals {
	totals := Totals{Payments: decimal.Zero, Refunds: decimal.Zero}
	for _, p := range payments {
		switch p.Type {
		case PaymentTypePayment:
			totals.Payments = totals.Payments.Add(p.Amount)
		case PaymentTypeRefund:
			totals.Refunds = totals.Refunds.Add(p.Amount)
		}
	}
	return totals
}
