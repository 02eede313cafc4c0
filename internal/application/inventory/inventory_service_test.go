package inventory

import (
	"context"
	"testing"

	"github.com/erp/retailcore/internal/application/uow"
	"github.com/erp/retailcore/internal/domain/inventory"
	"github.com/erp/retailcore/internal/domain/shared"
	"github.com/erp/retailcore/internal/infrastructure/persistence"
	"github.com/erp/retailcore/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	scope    uow.TransactionScope
	ledger   *Ledger
	svc      *InventoryService
	tenantID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	scope := persistence.NewGormTransactionScope(testutil.NewSQLiteDB(t))
	ledger := NewLedger(zap.NewNop())
	return &fixture{
		scope:    scope,
		ledger:   ledger,
		svc:      NewInventoryService(scope, ledger, zap.NewNop()),
		tenantID: testutil.NewTenantID(),
	}
}

func (f *fixture) product(t *testing.T, cost string) uuid.UUID {
	t.Helper()
	p, err := f.svc.CreateProduct(context.Background(), f.tenantID, CreateProductRequest{
		Name:  "Widget",
		SKU:   "W-1",
		Cost:  decimal.RequireFromString(cost),
		Price: decimal.NewFromInt(9),
	})
	require.NoError(t, err)
	return p.ID
}

func (f *fixture) stock(t *testing.T, productID uuid.UUID, location string, qty int64) {
	t.Helper()
	_, err := f.svc.SetOpeningStock(context.Background(), f.tenantID, SetOpeningStockRequest{
		ProductID: productID,
		Location:  location,
		Quantity:  qty,
	})
	require.NoError(t, err)
}

func (f *fixture) deduct(t *testing.T, req DeductRequest) ([]inventory.StockMovement, error) {
	t.Helper()
	var out []inventory.StockMovement
	err := f.scope.Execute(context.Background(), func(repos uow.Repositories) error {
		var err error
		out, err = f.ledger.Deduct(context.Background(), repos, req)
		return err
	})
	return out, err
}

func TestInventoryService_ReceiveStockMovesCostByWeightedAverage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	productID := f.product(t, "4.00")

	_, err := f.svc.ReceiveStock(ctx, f.tenantID, ReceiveStockRequest{
		ProductID: productID, Location: "Main Store", Quantity: 10, UnitCost: decimal.RequireFromString("4.00"),
	})
	require.NoError(t, err)

	level, err := f.svc.ReceiveStock(ctx, f.tenantID, ReceiveStockRequest{
		ProductID: productID, Location: "Main Store", Quantity: 20, UnitCost: decimal.RequireFromString("5.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(30), level.Total)
	assert.Equal(t, "4.67", level.Cost.StringFixed(2))
}

func TestInventoryService_ReceiveIntoEmptyStockTakesUnitCost(t *testing.T) {
	f := newFixture(t)
	productID := f.product(t, "9.99")

	level, err := f.svc.ReceiveStock(context.Background(), f.tenantID, ReceiveStockRequest{
		ProductID: productID, Location: "Backroom", Quantity: 3, UnitCost: decimal.RequireFromString("2.50"),
	})
	require.NoError(t, err)
	assert.Equal(t, "2.50", level.Cost.StringFixed(2))
	require.Len(t, level.Locations, 1)
	assert.Equal(t, "Backroom", level.Locations[0].Location)
}

func TestLedger_DeductPinnedLocation(t *testing.T) {
	f := newFixture(t)
	productID := f.product(t, "1.00")
	f.stock(t, productID, "Main Store", 10)

	orderID := uuid.New()
	moves, err := f.deduct(t, DeductRequest{
		TenantID: f.tenantID, ProductID: productID, Quantity: 4, Location: "Main Store",
		ChangeType: inventory.ChangeTypeSale, SalesOrderID: orderID,
	})
	require.NoError(t, err)
	require.Len(t, moves, 1)
	assert.Equal(t, int64(-4), moves[0].QuantityChange)

	_, err = f.deduct(t, DeductRequest{
		TenantID: f.tenantID, ProductID: productID, Quantity: 7, Location: "Main Store",
		ChangeType: inventory.ChangeTypeSale, SalesOrderID: uuid.New(),
	})
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)

	_, err = f.deduct(t, DeductRequest{
		TenantID: f.tenantID, ProductID: productID, Quantity: 1, Location: "Warehouse",
		ChangeType: inventory.ChangeTypeSale, SalesOrderID: uuid.New(),
	})
	assert.ErrorIs(t, err, shared.ErrNoInventoryRecord)

	level, err := f.svc.StockOf(context.Background(), f.tenantID, productID)
	require.NoError(t, err)
	assert.Equal(t, int64(6), level.Total)
}

func TestLedger_DeductAcrossLocationsLargestFirst(t *testing.T) {
	f := newFixture(t)
	productID := f.product(t, "1.00")
	f.stock(t, productID, "Backroom", 3)
	f.stock(t, productID, "Main Store", 5)

	moves, err := f.deduct(t, DeductRequest{
		TenantID: f.tenantID, ProductID: productID, Quantity: 7, Location: inventory.AllLocations,
		ChangeType: inventory.ChangeTypeSale, SalesOrderID: uuid.New(),
	})
	require.NoError(t, err)
	require.Len(t, moves, 2)
	assert.Equal(t, "Main Store", moves[0].Location)
	assert.Equal(t, int64(-5), moves[0].QuantityChange)
	assert.Equal(t, "Backroom", moves[1].Location)
	assert.Equal(t, int64(-2), moves[1].QuantityChange)
}

func TestLedger_ReverseOrderOnlyRestoresOutstanding(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	productID := f.product(t, "1.00")
	f.stock(t, productID, "Main Store", 10)
	orderID := uuid.New()

	_, err := f.deduct(t, DeductRequest{
		TenantID: f.tenantID, ProductID: productID, Quantity: 4, Location: "Main Store",
		ChangeType: inventory.ChangeTypeSale, SalesOrderID: orderID,
	})
	require.NoError(t, err)

	reverse := func(qty int64) error {
		return f.scope.Execute(ctx, func(repos uow.Repositories) error {
			_, err := f.ledger.ReverseOrder(ctx, repos, f.tenantID, orderID, productID, qty)
			return err
		})
	}
	require.NoError(t, reverse(4))
	assert.ErrorIs(t, reverse(1), shared.ErrInvalidState)

	level, err := f.svc.StockOf(ctx, f.tenantID, productID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), level.Total)

	moves, err := f.svc.Movements(ctx, f.tenantID, productID)
	require.NoError(t, err)
	require.NotEmpty(t, moves)
	assert.Equal(t, inventory.ChangeTypeAdjustment.String(), moves[0].ChangeType)
	assert.NotNil(t, moves[0].ReversesMovementID)
}

func TestInventoryService_Returns(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	productID := f.product(t, "1.00")
	f.stock(t, productID, "Main Store", 2)

	level, err := f.svc.ReturnFromCustomer(ctx, f.tenantID, CustomerReturnRequest{
		ProductID: productID, Location: "Main Store", Quantity: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), level.Total)

	_, err = f.svc.ReturnToSupplier(ctx, f.tenantID, SupplierReturnRequest{
		ProductID: productID, Location: "Main Store", Quantity: 6,
	})
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)

	_, err = f.svc.ReturnToSupplier(ctx, f.tenantID, SupplierReturnRequest{
		ProductID: productID, Location: "Warehouse", Quantity: 1,
	})
	assert.ErrorIs(t, err, shared.ErrNoInventoryRecord)

	level, err = f.svc.ReturnToSupplier(ctx, f.tenantID, SupplierReturnRequest{
		ProductID: productID, Location: "Main Store", Quantity: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), level.Total)
}

func TestInventoryService_ValidationAndAdjust(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	productID := f.product(t, "1.00")

	_, err := f.svc.Adjust(ctx, f.tenantID, AdjustStockRequest{ProductID: productID, Location: "Main Store", Delta: 0})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = f.svc.Adjust(ctx, f.tenantID, AdjustStockRequest{ProductID: productID, Location: inventory.AllLocations, Delta: 1})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = f.svc.Adjust(ctx, f.tenantID, AdjustStockRequest{ProductID: uuid.New(), Location: "Main Store", Delta: 1})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	level, err := f.svc.Adjust(ctx, f.tenantID, AdjustStockRequest{ProductID: productID, Location: "Main Store", Delta: 8})
	require.NoError(t, err)
	assert.Equal(t, int64(8), level.Total)

	f.stock(t, productID, "Main Store", 3)
	level, err = f.svc.StockOf(ctx, f.tenantID, productID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), level.Total)
}

func TestInventoryService_ReconcileMatchesMovementLog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "1.00")
	b := f.product(t, "2.00")
	f.stock(t, a, "Main Store", 10)
	f.stock(t, b, "Backroom", 4)

	_, err := f.deduct(t, DeductRequest{
		TenantID: f.tenantID, ProductID: a, Quantity: 3, Location: inventory.AllLocations,
		ChangeType: inventory.ChangeTypeSale, SalesOrderID: uuid.New(),
	})
	require.NoError(t, err)
	_, err = f.svc.ReceiveStock(ctx, f.tenantID, ReceiveStockRequest{ProductID: b, Location: "Main Store", Quantity: 2, UnitCost: decimal.NewFromInt(2)})
	require.NoError(t, err)

	report, err := f.svc.Reconcile(ctx, f.tenantID)
	require.NoError(t, err)
	assert.True(t, report.Consistent())
	assert.Equal(t, 3, report.Checked)

	// A write that bypasses the ledger shows up as a mismatch.
	require.NoError(t, f.scope.Execute(ctx, func(repos uow.Repositories) error {
		row, err := repos.InventoryRepo().GetOrCreateForUpdate(ctx, f.tenantID, a, "Main Store")
		if err != nil {
			return err
		}
		row.Quantity = 99
		return repos.InventoryRepo().Save(ctx, row)
	}))
	report, err = f.svc.Reconcile(ctx, f.tenantID)
	require.NoError(t, err)
	require.Len(t, report.Mismatches, 1)
	assert.Equal(t, int64(99), report.Mismatches[0].Recorded)
	assert.Equal(t, int64(7), report.Mismatches[0].MovementSum)
}

func TestOutstanding(t *testing.T) {
	tenantID, productID := uuid.New(), uuid.New()
	sale, err := inventory.NewStockMovement(tenantID, productID, "Main Store", inventory.ChangeTypeSale, -5)
	require.NoError(t, err)
	back, err := inventory.NewStockMovement(tenantID, productID, "Main Store", inventory.ChangeTypeAdjustment, 2, inventory.Reversing(sale.ID))
	require.NoError(t, err)

	left := Outstanding([]inventory.StockMovement{*sale, *back})
	require.Len(t, left, 1)
	assert.Equal(t, int64(-3), left[0].QuantityChange)

	full, err := inventory.NewStockMovement(tenantID, productID, "Main Store", inventory.ChangeTypeAdjustment, 3, inventory.Reversing(sale.ID))
	require.NoError(t, err)
	assert.Empty(t, Outstanding([]inventory.StockMovement{*sale, *back, *full}))
}
