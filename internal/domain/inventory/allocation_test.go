package inventory

import (
	"errors"
	"testing"
	"time"

	"github.com/erp/retailcore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanDeduction_PinnedLocation(t *testing.T) {
	productID := uuid.New()
	rows := []*Inventory{
		newRow(t, productID, "Main", 10),
		newRow(t, productID, "Backroom", 50),
	}

	t.Run("takes everything from the pinned row", func(t *testing.T) {
		plan, err := PlanDeduction(rows, "Main", 4)
		require.NoError(t, err)
		require.Len(t, plan, 1)
		assert.Equal(t, "Main", plan[0].Inventory.Location)
		assert.Equal(t, int64(4), plan[0].Quantity)
	})

	t.Run("does not spill into other locations", func(t *testing.T) {
		_, err := PlanDeduction(rows, "Main", 11)
		assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
	})

	t.Run("missing row is reported", func(t *testing.T) {
		_, err := PlanDeduction(rows, "Warehouse", 1)
		assert.True(t, errors.Is(err, shared.ErrNoInventoryRecord))
	})
}

func TestPlanDeduction_AllLocations(t *testing.T) {
	productID := uuid.New()
	rows := []*Inventory{
		newRow(t, productID, "A", 3),
		newRow(t, productID, "B", 8),
		newRow(t, productID, "C", 0),
		newRow(t, productID, "D", 3),
	}

	t.Run("drains largest first", func(t *testing.T) {
		plan, err := PlanDeduction(rows, AllLocations, 12)
		require.NoError(t, err)
		require.Len(t, plan, 3)
		assert.Equal(t, "B", plan[0].Inventory.Location)
		assert.Equal(t, int64(8), plan[0].Quantity)
		assert.Equal(t, "A", plan[1].Inventory.Location)
		assert.Equal(t, int64(3), plan[1].Quantity)
		assert.Equal(t, "D", plan[2].Inventory.Location)
		assert.Equal(t, int64(1), plan[2].Quantity)

		var sum int64
		for _, a := range plan {
			sum += a.Quantity
		}
		assert.Equal(t, int64(12), sum)
	})

	t.Run("fails before planning when aggregate is short", func(t *testing.T) {
		_, err := PlanDeduction(rows, AllLocations, 15)
		assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
	})

	t.Run("no rows means zero availability", func(t *testing.T) {
		_, err := PlanDeduction(nil, AllLocations, 1)
		assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
	})
}

func movement(t *testing.T, location string, changeType ChangeType, delta int64, at time.Time) StockMovement {
	t.Helper()
	m, err := NewStockMovement(uuid.New(), uuid.New(), location, changeType, delta)
	require.NoError(t, err)
	m.CreatedAt = at
	return *m
}

func TestPlanReversal(t *testing.T) {
	base := time.Now()
	movements := []StockMovement{
		movement(t, "A", ChangeTypeSale, -5, base),
		movement(t, "B", ChangeTypeSale, -3, base.Add(time.Second)),
		movement(t, "B", ChangeTypeSale, 0, base.Add(2*time.Second)),
		movement(t, "B", ChangeTypeAdjustment, 2, base.Add(3*time.Second)),
	}

	t.Run("walks newest first and splits the last movement", func(t *testing.T) {
		plan, err := PlanReversal(movements, 6)
		require.NoError(t, err)
		require.Len(t, plan, 2)
		assert.Equal(t, "B", plan[0].Movement.Location)
		assert.Equal(t, int64(3), plan[0].Quantity)
		assert.Equal(t, "A", plan[1].Movement.Location)
		assert.Equal(t, int64(3), plan[1].Quantity)
	})

	t.Run("cannot reverse more than was deducted", func(t *testing.T) {
		_, err := PlanReversal(movements, 9)
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
	})
}

func TestNewStockMovement_SignRules(t *testing.T) {
	tenant, product := uuid.New(), uuid.New()
	cases := []struct {
		changeType ChangeType
		delta      int64
		ok         bool
	}{
		{ChangeTypePurchaseReceive, 5, true},
		{ChangeTypePurchaseReceive, -5, false},
		{ChangeTypeSale, -2, true},
		{ChangeTypeSale, 0, true},
		{ChangeTypeSale, 2, false},
		{ChangeTypeSaleInTransit, 0, false},
		{ChangeTypeReturnIn, 1, true},
		{ChangeTypeReturnOut, -1, true},
		{ChangeTypeAdjustment, 0, false},
		{ChangeTypeAdjustment, -4, true},
		{ChangeType("BOGUS"), 1, false},
	}
	for _, tc := range cases {
		_, err := NewStockMovement(tenant, product, "Main", tc.changeType, tc.delta)
		if tc.ok {
			assert.NoError(t, err, "%s %d", tc.changeType, tc.delta)
		} else {
			assert.Error(t, err, "%s %d", tc.changeType, tc.delta)
		}
	}
}

func TestNewStockMovement_Options(t *testing.T) {
	orderID, reversed := uuid.New(), uuid.New()
	m, err := NewStockMovement(uuid.New(), uuid.New(), "Main", ChangeTypeAdjustment, 3,
		ForSalesOrder(orderID), Reversing(reversed), WithNote("reopen"), ForPurchaseOrder(uuid.Nil))
	require.NoError(t, err)
	assert.Equal(t, orderID, *m.SalesOrderID)
	assert.Equal(t, reversed, *m.ReversesMovementID)
	assert.Nil(t, m.PurchaseOrderID)
	assert.Equal(t, "reopen", m.Note)
	assert.False(t, m.IsDeduction())
}

func TestSortedProductIDs(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	b := uuid.MustParse("00000000-0000-0000-0000-000000000002")
	assert.Equal(t, []uuid.UUID{a, b}, SortedProductIDs([]uuid.UUID{b, a, b}))
}
