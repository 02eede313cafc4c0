package inventory

import (
	"context"
	"testing"

	"github.com/erp/retailcore/internal/application/uow"
	"github.com/erp/retailcore/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) quantities(t *testing.T, productID uuid.UUID) map[string]int64 {
	t.Helper()
	level, err := f.svc.StockOf(context.Background(), f.tenantID, productID)
	require.NoError(t, err)
	out := make(map[string]int64, len(level.Locations))
	for _, l := range level.Locations {
		out[l.Location] = l.Quantity
	}
	return out
}

func TestLedger_RestorePutsBackEveryDeduction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	productID := f.product(t, "2.00")
	f.stock(t, productID, "Aisle", 3)
	f.stock(t, productID, "Back", 5)
	before := f.quantities(t, productID)
	orderID := uuid.New()

	deducted, err := f.deduct(t, DeductRequest{
		TenantID:     f.tenantID,
		ProductID:    productID,
		Quantity:     7,
		Location:     inventory.AllLocations,
		ChangeType:   inventory.ChangeTypeSale,
		SalesOrderID: orderID,
	})
	require.NoError(t, err)
	require.Len(t, deducted, 2)
	assert.Equal(t, map[string]int64{"Aisle": 1, "Back": 0}, f.quantities(t, productID))

	history, err := f.svc.Movements(ctx, f.tenantID, productID)
	require.NoError(t, err)
	var opening inventory.StockMovement
	for _, m := range history {
		if m.ChangeType == inventory.ChangeTypeAdjustment.String() {
			opening = inventory.StockMovement{
				ID: m.ID, TenantID: f.tenantID, ProductID: productID, Location: m.Location,
				ChangeType: inventory.ChangeTypeAdjustment, QuantityChange: m.QuantityChange,
			}
			break
		}
	}
	require.NotEqual(t, uuid.Nil, opening.ID)

	var written []inventory.StockMovement
	require.NoError(t, f.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		written, err = f.ledger.Restore(ctx, repos, append(deducted, opening), "Order voided")
		return err
	}))

	assert.Equal(t, before, f.quantities(t, productID))

	require.Len(t, written, 2)
	reversed := map[uuid.UUID]int64{}
	for _, m := range written {
		assert.Equal(t, inventory.ChangeTypeAdjustment, m.ChangeType)
		require.NotNil(t, m.ReversesMovementID)
		reversed[*m.ReversesMovementID] = m.QuantityChange
	}
	for _, d := range deducted {
		assert.Equal(t, d.DeductedQuantity(), reversed[d.ID])
	}
	assert.NotContains(t, reversed, opening.ID)

	var stored []inventory.StockMovement
	require.NoError(t, f.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		stored, err = repos.MovementRepo().FindBySalesOrder(ctx, f.tenantID, orderID)
		return err
	}))
	byID := make(map[uuid.UUID]inventory.StockMovement, len(stored))
	for _, m := range stored {
		byID[m.ID] = m
	}
	for _, d := range deducted {
		require.Contains(t, byID, d.ID)
		assert.Equal(t, d.QuantityChange, byID[d.ID].QuantityChange)
		assert.Equal(t, inventory.ChangeTypeSale, byID[d.ID].ChangeType)
		assert.Equal(t, d.Location, byID[d.ID].Location)
	}
	assert.Empty(t, Outstanding(stored))

	report, err := f.svc.Reconcile(ctx, f.tenantID)
	require.NoError(t, err)
	assert.True(t, report.Consistent())
}

func TestLedger_ReverseOrderFullAndPartial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	productID := f.product(t, "2.00")
	f.stock(t, productID, "Aisle", 3)
	f.stock(t, productID, "Back", 5)
	orderID := uuid.New()

	_, err := f.deduct(t, DeductRequest{
		TenantID: f.tenantID, ProductID: productID, Quantity: 7,
		Location: inventory.AllLocations, ChangeType: inventory.ChangeTypeSale, SalesOrderID: orderID,
	})
	require.NoError(t, err)

	reverse := func(qty int64) ([]inventory.StockMovement, error) {
		var out []inventory.StockMovement
		err := f.scope.Execute(ctx, func(repos uow.Repositories) error {
			var err error
			out, err = f.ledger.ReverseOrder(ctx, repos, f.tenantID, orderID, productID, qty)
			return err
		})
		return out, err
	}

	partial, err := reverse(2)
	require.NoError(t, err)
	require.Len(t, partial, 1)
	assert.Equal(t, int64(2), partial[0].QuantityChange)
	assert.Equal(t, int64(3), func() int64 {
		var total int64
		for _, q := range f.quantities(t, productID) {
			total += q
		}
		return total
	}())

	rest, err := reverse(5)
	require.NoError(t, err)
	var restored int64
	for _, m := range rest {
		restored += m.QuantityChange
	}
	assert.Equal(t, int64(5), restored)
	assert.Equal(t, map[string]int64{"Aisle": 3, "Back": 5}, f.quantities(t, productID))

	report, err := f.svc.Reconcile(ctx, f.tenantID)
	require.NoError(t, err)
	assert.True(t, report.Consistent())
}
