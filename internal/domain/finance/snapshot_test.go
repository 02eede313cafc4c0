package finance

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(t *testing.T, tenantID, customerID uuid.UUID, typ EntryType, kind EntryKind, amount string) LedgerEntry {
	t.Helper()
	e, err := NewLedgerEntry(tenantID, customerID, typ, kind, dec(amount), "")
	require.NoError(t, err)
	return *e
}

func TestRecompute(t *testing.T) {
	tenantID, customerID := uuid.New(), uuid.New()
	entries := []LedgerEntry{
		entry(t, tenantID, customerID, EntryTypeDebit, EntryKindSale, "100.00"),
		entry(t, tenantID, customerID, EntryTypeCredit, EntryKindPayment, "100.00"),
		entry(t, tenantID, customerID, EntryTypeDebit, EntryKindRefund, "30.00"),
		entry(t, tenantID, uuid.New(), EntryTypeDebit, EntryKindSale, "999.00"),
	}

	s := Recompute(tenantID, customerID, entries)
	assert.Equal(t, "130.00", s.TotalSales.StringFixed(2))
	assert.Equal(t, "100.00", s.TotalPayments.StringFixed(2))
	assert.Equal(t, "30.00", s.TotalRefunds.StringFixed(2))
	assert.Equal(t, "30.00", s.TotalDebt.StringFixed(2))
	assert.Equal(t, 3, s.EntryCount)

	t.Run("empty ledger is all zero", func(t *testing.T) {
		s := Recompute(tenantID, customerID, nil)
		assert.True(t, s.TotalDebt.IsZero())
		assert.Equal(t, 0, s.EntryCount)
	})
}

func TestNewLedgerEntry_Validation(t *testing.T) {
	_, err := NewLedgerEntry(uuid.New(), uuid.Nil, EntryTypeDebit, EntryKindSale, dec("1"), "")
	assert.Error(t, err)
	_, err = NewLedgerEntry(uuid.New(), uuid.New(), EntryTypeDebit, EntryKind("gift"), dec("1"), "")
	assert.Error(t, err)
	_, err = NewLedgerEntry(uuid.New(), uuid.New(), EntryTypeCredit, EntryKindPayment, dec("-1"), "")
	assert.Error(t, err)
}
