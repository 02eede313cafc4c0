package finance

import (
	"strings"
	"time"

	"github.com/erp/retailcore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryType is the accounting side of a ledger entry
type EntryType string

const (
	EntryTypeDebit  EntryType = "debit"
	EntryTypeCredit EntryType = "credit"
)

// EntryKind tags what produced the entry. Refunds are debits (money goes
// back to the customer) and are told apart from sales by their kind.
type EntryKind string

const (
	EntryKindSale       EntryKind = "sale"
	EntryKindPayment    EntryKind = "payment"
	EntryKindRefund     EntryKind = "refund"
	EntryKindAdjustment EntryKind = "adjustment"
)

// IsValid checks if the kind is known
func (k EntryKind) IsValid() bool {
	switch k {
	case EntryKindSale, EntryKindPayment, EntryKindRefund, EntryKindAdjustment:
		return true
	}
	return false
}

// LedgerEntry is one line of a customer's account
type LedgerEntry struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	CustomerID  uuid.UUID
	Type        EntryType
	Kind        EntryKind
	Amount      decimal.Decimal
	InvoiceID   *uuid.UUID
	PaymentID   *uuid.UUID
	Description string
	CreatedAt   time.Time
}

// NewLedgerEntry creates a ledger entry
func NewLedgerEntry(tenantID, customerID uuid.UUID, entryType EntryType, kind EntryKind, amount decimal.Decimal, description string) (*LedgerEntry, error) {
	if customerID == uuid.Nil {
		return nil, shared.Errorf(shared.ErrInvalidInput, "Customer is required")
	}
	if entryType != EntryTypeDebit && entryType != EntryTypeCredit {
		return nil, shared.Errorf(shared.ErrInvalidInput, "Unknown entry type %q", entryType)
	}
	if !kind.IsValid() {
		return nil, shared.Errorf(shared.ErrInvalidInput, "Unknown entry kind %q", kind)
	}
	if !amount.IsPositive() {
		return nil, shared.Errorf(shared.ErrInvalidInput, "Amount must be positive")
	}
	return &LedgerEntry{
		ID:          uuid.New(),
		TenantID:    tenantID,
		CustomerID:  customerID,
		Type:        entryType,
		Kind:        kind,
		Amount:      shared.RoundCurrency(amount),
		Description: strings.TrimSpace(description),
		CreatedAt:   time.Now(),
	}, nil
}

// ForInvoice links the entry to an invoice
func (e *LedgerEntry) ForInvoice(invoiceID uuid.UUID) *LedgerEntry {
	e.InvoiceID = &invoiceID
	return e
}

// ForPayment links the entry to a payment row
func (e *LedgerEntry) ForPayment(paymentID uuid.UUID) *LedgerEntry {
	e.PaymentID = &paymentID
	return e
}
