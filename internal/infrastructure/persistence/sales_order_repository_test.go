package persistence

import (
	"context"
	"testing"

	"github.com/erp/retailcore/internal/domain/shared"
	"github.com/erp/retailcore/internal/domain/trade"
	"github.com/erp/retailcore/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormSalesOrderRepository_SaveReplacesItems(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewGormSalesOrderRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	order, err := trade.NewSalesOrder(tenantID, "SO-00001", "Main Store", trade.CustomerTypeWalkIn, nil)
	require.NoError(t, err)
	first, err := order.AddItem(uuid.New(), 2, decimal.NewFromFloat(10.50))
	require.NoError(t, err)
	_, err = order.AddItem(uuid.New(), 1, decimal.NewFromInt(4))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, order))

	loaded, err := repo.FindByID(ctx, tenantID, order.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 2)
	assert.True(t, decimal.NewFromInt(25).Equal(loaded.CachedTotal))
	assert.Equal(t, trade.OrderStatusDraft, loaded.Status)

	require.NoError(t, loaded.RemoveItem(first.ID))
	require.NoError(t, repo.Save(ctx, loaded))

	reloaded, err := repo.FindByOrderNumber(ctx, tenantID, "SO-00001")
	require.NoError(t, err)
	require.Len(t, reloaded.Items, 1)
	assert.True(t, decimal.NewFromInt(4).Equal(reloaded.CachedTotal))

	_, err = repo.FindByID(ctx, uuid.New(), order.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormSalesOrderRepository_OrderNumberUniquePerTenant(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewGormSalesOrderRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	a, err := trade.NewSalesOrder(tenantID, "SO-00001", "Main Store", trade.CustomerTypeWalkIn, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, a))

	b, err := trade.NewSalesOrder(tenantID, "SO-00001", "Main Store", trade.CustomerTypeWalkIn, nil)
	require.NoError(t, err)
	assert.Error(t, repo.Save(ctx, b))

	other, err := trade.NewSalesOrder(uuid.New(), "SO-00001", "Main Store", trade.CustomerTypeWalkIn, nil)
	require.NoError(t, err)
	assert.NoError(t, repo.Save(ctx, other))
}

func TestGormPurchaseOrderRepository_RoundTrip(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewGormPurchaseOrderRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	po, err := trade.NewPurchaseOrder(tenantID, "PO-7", "Acme Supplies", "Main Store")
	require.NoError(t, err)
	_, err = po.AddItem(uuid.New(), 5, decimal.NewFromInt(4))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, po))

	loaded, err := repo.FindByIDForUpdate(ctx, tenantID, po.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, int64(5), loaded.Items[0].Quantity)
	assert.True(t, decimal.NewFromInt(20).Equal(loaded.TotalAmount))
	assert.Equal(t, trade.PurchaseOrderStatusPending, loaded.Status)
}
