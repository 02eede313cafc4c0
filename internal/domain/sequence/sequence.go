// Package sequence models the per-tenant counters behind human-readable
// document numbers such as SO-00042 and INV-00007.
package sequence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Kind identifies which counter a number is drawn from
type Kind string

const (
	KindSalesOrder Kind = "sales_order"
	KindInvoice    Kind = "invoice"
)

// Default prefixes
const (
	DefaultOrderPrefix   = "SO"
	DefaultInvoicePrefix = "INV"
)

// IsValid checks if the kind is known
func (k Kind) IsValid() bool {
	return k == KindSalesOrder || k == KindInvoice
}

// Prefixes maps each kind to its number prefix
type Prefixes map[Kind]string

// DefaultPrefixes returns SO / INV
func DefaultPrefixes() Prefixes {
	return Prefixes{
		KindSalesOrder: DefaultOrderPrefix,
		KindInvoice:    DefaultInvoicePrefix,
	}
}

// For returns the prefix of kind, falling back to the default one
func (p Prefixes) For(kind Kind) string {
	if prefix, ok := p[kind]; ok && prefix != "" {
		return prefix
	}
	return DefaultPrefixes()[kind]
}

// Format renders n as {PREFIX}-{n:05d}
func Format(prefix string, n int64) string {
	return fmt.Sprintf("%s-%05d", prefix, n)
}

// Fallback is the number handed out when no tenant is known. It is not unique.
func Fallback(prefix string) string {
	return Format(prefix, 1)
}

// Repository increments counters. Next must be called inside a transaction:
// the counter row stays locked until that transaction ends, so a rollback
// also rolls back the increment.
type Repository interface {
	Next(ctx context.Context, tenantID uuid.UUID, kind Kind) (int64, error)
	Current(ctx context.Context, tenantID uuid.UUID, kind Kind) (int64, error)
}
