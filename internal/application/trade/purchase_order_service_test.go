package trade

import (
	"context"
	"testing"

	"github.com/erp/retailcore/internal/application/uow"
	"github.com/erp/retailcore/internal/domain/inventory"
	"github.com/erp/retailcore/internal/domain/shared"
	"github.com/erp/retailcore/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurchaseOrderService_ReceiveMovesCost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	productID := f.product(t, "9.00", map[string]int64{"Main": 10})

	require.NoError(t, f.scope.Execute(ctx, func(repos uow.Repositories) error {
		p, err := repos.ProductRepo().FindByIDForUpdate(ctx, f.tenantID, productID)
		if err != nil {
			return err
		}
		p.Cost = decimal.RequireFromString("4.00")
		return repos.ProductRepo().Save(ctx, p)
	}))

	po, err := f.purchases.Create(ctx, f.tenantID, CreatePurchaseOrderRequest{
		Reference:    "PO-7",
		SupplierName: "Acme Supply",
		Items: []CreatePurchaseItemRequest{
			{ProductID: productID, Quantity: 20, UnitPrice: decimal.RequireFromString("5.00")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", po.Status)
	assert.Equal(t, "Main", po.Location)
	assert.Equal(t, "100.00", po.TotalAmount.StringFixed(2))

	received, err := f.purchases.ReceivePurchaseOrder(ctx, f.tenantID, po.ID)
	require.NoError(t, err)
	assert.Equal(t, "received", received.Status)
	assert.NotNil(t, received.ReceivedAt)

	level, err := f.stock.StockOf(ctx, f.tenantID, productID)
	require.NoError(t, err)
	assert.Equal(t, int64(30), level.Total)
	assert.Equal(t, "4.67", level.Cost.StringFixed(2))

	_, err = f.purchases.ReceivePurchaseOrder(ctx, f.tenantID, po.ID)
	assert.ErrorIs(t, err, shared.ErrAlreadyReceived)
	assert.Equal(t, int64(30), f.onHand(t, productID))

	var moves []inventory.StockMovement
	require.NoError(t, f.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		moves, err = repos.MovementRepo().FindByPurchaseOrder(ctx, f.tenantID, po.ID)
		return err
	}))
	require.Len(t, moves, 1)
	assert.Equal(t, inventory.ChangeTypePurchaseReceive, moves[0].ChangeType)
	assert.Equal(t, int64(20), moves[0].QuantityChange)

	_, err = f.purchases.Cancel(ctx, f.tenantID, po.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidTransition)
	assert.Equal(t, []string{trade.EventTypePurchaseOrderReceived}, f.events.Types())
}

func TestPurchaseOrderService_ReceiveCreatesLocationRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "1.00", nil)
	b := f.product(t, "1.00", nil)

	po, err := f.purchases.Create(ctx, f.tenantID, CreatePurchaseOrderRequest{
		SupplierName: "Acme Supply",
		Location:     "Warehouse",
		Items: []CreatePurchaseItemRequest{
			{ProductID: a, Quantity: 3, UnitPrice: decimal.RequireFromString("2.00")},
			{ProductID: b, Quantity: 5, UnitPrice: decimal.RequireFromString("0.80")},
		},
	})
	require.NoError(t, err)
	_, err = f.purchases.ReceivePurchaseOrder(ctx, f.tenantID, po.ID)
	require.NoError(t, err)

	levelA, err := f.stock.StockOf(ctx, f.tenantID, a)
	require.NoError(t, err)
	require.Len(t, levelA.Locations, 1)
	assert.Equal(t, "Warehouse", levelA.Locations[0].Location)
	assert.Equal(t, "2.00", levelA.Cost.StringFixed(2))

	levelB, err := f.stock.StockOf(ctx, f.tenantID, b)
	require.NoError(t, err)
	assert.Equal(t, int64(5), levelB.Total)
	assert.Equal(t, "0.80", levelB.Cost.StringFixed(2))

	report, err := f.stock.Reconcile(ctx, f.tenantID)
	require.NoError(t, err)
	assert.True(t, report.Consistent())
}

func TestPurchaseOrderService_CreateAndCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.purchases.Create(ctx, f.tenantID, CreatePurchaseOrderRequest{SupplierName: "Acme Supply"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = f.purchases.Create(ctx, f.tenantID, CreatePurchaseOrderRequest{
		SupplierName: "Acme Supply",
		Items:        []CreatePurchaseItemRequest{{ProductID: uuid.New(), Quantity: 1}},
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	productID := f.product(t, "1.00", nil)
	po, err := f.purchases.Create(ctx, f.tenantID, CreatePurchaseOrderRequest{
		SupplierName: "Acme Supply",
		Items:        []CreatePurchaseItemRequest{{ProductID: productID, Quantity: 1, UnitPrice: decimal.NewFromInt(1)}},
	})
	require.NoError(t, err)

	cancelled, err := f.purchases.Cancel(ctx, f.tenantID, po.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)

	_, err = f.purchases.ReceivePurchaseOrder(ctx, f.tenantID, po.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidTransition)
	assert.Equal(t, int64(0), f.onHand(t, productID))

	fetched, err := f.purchases.GetByID(ctx, f.tenantID, po.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", fetched.Status)
	require.Len(t, fetched.Items, 1)
}
