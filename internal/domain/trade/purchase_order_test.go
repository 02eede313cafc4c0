package trade

import (
	"errors"
	"testing"

	"github.com/erp/retailcore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurchaseOrder_Receive(t *testing.T) {
	po, err := NewPurchaseOrder(uuid.New(), "PO-7", "Acme Supplies", "Main Store")
	require.NoError(t, err)

	assert.True(t, errors.Is(po.MarkReceived(), shared.ErrInvalidInput))

	_, err = po.AddItem(uuid.New(), 20, decimal.RequireFromString("5.00"))
	require.NoError(t, err)
	assert.Equal(t, "100.00", po.TotalAmount.StringFixed(2))

	require.NoError(t, po.MarkReceived())
	assert.Equal(t, PurchaseOrderStatusReceived, po.Status)
	assert.NotNil(t, po.ReceivedAt)
	require.Len(t, po.GetDomainEvents(), 1)

	t.Run("second receipt fails", func(t *testing.T) {
		err := po.MarkReceived()
		assert.True(t, errors.Is(err, shared.ErrAlreadyReceived))
		assert.Contains(t, err.Error(), "PO-7")
	})

	t.Run("received order is frozen", func(t *testing.T) {
		_, err := po.AddItem(uuid.New(), 1, decimal.NewFromInt(1))
		assert.Error(t, err)
		assert.Error(t, po.Cancel())
	})
}

func TestPurchaseOrder_Cancel(t *testing.T) {
	po, err := NewPurchaseOrder(uuid.New(), "", "Acme", "Main Store")
	require.NoError(t, err)
	require.NoError(t, po.Cancel())
	assert.True(t, errors.Is(po.MarkReceived(), shared.ErrInvalidTransition))
}

func TestNewPurchaseOrder_Validation(t *testing.T) {
	_, err := NewPurchaseOrder(uuid.New(), "", "", "Main")
	assert.Error(t, err)
	_, err = NewPurchaseOrder(uuid.New(), "", "Acme", "")
	assert.Error(t, err)
}
