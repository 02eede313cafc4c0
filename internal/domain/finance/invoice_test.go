package finance

import (
	"errors"
	"testing"

	"github.com/erp/retailcore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func payment(t *testing.T, typ PaymentType, amount string) Payment {
	t.Helper()
	p, err := NewPayment(uuid.New(), uuid.New(), typ, dec(amount), PaymentMethodCash, "")
	require.NoError(t, err)
	return *p
}

func TestPaymentStatusFor(t *testing.T) {
	tests := []struct {
		net, total string
		want       PaymentStatus
	}{
		{"0", "100", PaymentStatusUnpaid},
		{"-5", "100", PaymentStatusUnpaid},
		{"0.01", "100", PaymentStatusPartiallyPaid},
		{"70", "100", PaymentStatusPartiallyPaid},
		{"100", "100", PaymentStatusPaid},
		{"120", "100", PaymentStatusPaid},
		{"0", "0", PaymentStatusPaid},
	}
	for _, tt := range tests {
		t.Run(tt.net+"/"+tt.total, func(t *testing.T) {
			assert.Equal(t, tt.want, PaymentStatusFor(dec(tt.net), dec(tt.total)))
		})
	}
}

func TestInvoice_Reconcile(t *testing.T) {
	inv, err := NewInvoice(uuid.New(), "INV-00001", uuid.New(), nil, dec("100.00"))
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusUnpaid, inv.PaymentStatus)

	history := []Payment{payment(t, PaymentTypePayment, "100.00")}
	inv.Reconcile(history)
	assert.Equal(t, PaymentStatusPaid, inv.PaymentStatus)
	assert.Equal(t, "100.00", inv.CachedPaidAmount.StringFixed(2))

	history = append(history, payment(t, PaymentTypeRefund, "30.00"))
	totals := inv.Reconcile(history)
	assert.Equal(t, PaymentStatusPartiallyPaid, inv.PaymentStatus)
	assert.Equal(t, "70.00", inv.CachedPaidAmount.StringFixed(2))
	assert.Equal(t, "30.00", totals.Refunds.StringFixed(2))
	assert.Equal(t, "30.00", inv.Outstanding().StringFixed(2))

	t.Run("recompute is idempotent", func(t *testing.T) {
		inv.Reconcile(history)
		assert.Equal(t, "70.00", inv.CachedPaidAmount.StringFixed(2))
		assert.Equal(t, PaymentStatusPartiallyPaid, inv.PaymentStatus)
	})
}

func TestCheckRefund(t *testing.T) {
	history := []Payment{
		payment(t, PaymentTypePayment, "60.00"),
		payment(t, PaymentTypePayment, "40.00"),
		payment(t, PaymentTypeRefund, "30.00"),
	}

	assert.NoError(t, CheckRefund(history, dec("70.00")))

	err := CheckRefund(history, dec("70.01"))
	assert.True(t, errors.Is(err, shared.ErrRefundExceedsAvailable))

	assert.True(t, errors.Is(CheckRefund(nil, dec("1")), shared.ErrRefundExceedsAvailable))
}

func TestNewPayment_Validation(t *testing.T) {
	_, err := NewPayment(uuid.New(), uuid.New(), PaymentTypePayment, decimal.Zero, PaymentMethodCash, "")
	assert.Error(t, err)
	_, err = NewPayment(uuid.New(), uuid.New(), PaymentTypePayment, dec("1"), PaymentMethod("cheque"), "")
	assert.Error(t, err)
	_, err = NewPayment(uuid.New(), uuid.New(), PaymentType("chargeback"), dec("1"), PaymentMethodUPI, "")
	assert.Error(t, err)
}
