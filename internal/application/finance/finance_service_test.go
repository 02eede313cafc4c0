package finance

import (
	"context"
	"testing"

	"github.com/erp/retailcore/internal/application/numbering"
	"github.com/erp/retailcore/internal/application/uow"
	"github.com/erp/retailcore/internal/domain/finance"
	"github.com/erp/retailcore/internal/domain/shared"
	"github.com/erp/retailcore/internal/domain/trade"
	"github.com/erp/retailcore/internal/infrastructure/cache"
	"github.com/erp/retailcore/internal/infrastructure/persistence"
	"github.com/erp/retailcore/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	scope     uow.TransactionScope
	invoices  *InvoiceService
	snapshots *SnapshotService
	ledger    *LedgerService
	cache     *cache.InMemorySnapshotCache
	events    *testutil.RecordingPublisher
	tenantID  uuid.UUID
	customer  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	scope := persistence.NewGormTransactionScope(testutil.NewSQLiteDB(t))
	snapshotCache := cache.NewInMemorySnapshotCache(0)
	snapshots := NewSnapshotService(scope, snapshotCache, zap.NewNop())
	events := &testutil.RecordingPublisher{}

	invoices := NewInvoiceService(scope, numbering.NewNumberingService(scope, nil, zap.NewNop()), snapshots, zap.NewNop())
	invoices.SetEventPublisher(events)

	return &fixture{
		scope:     scope,
		invoices:  invoices,
		snapshots: snapshots,
		ledger:    NewLedgerService(scope, snapshots, zap.NewNop()),
		cache:     snapshotCache,
		events:    events,
		tenantID:  testutil.NewTenantID(),
		customer:  uuid.New(),
	}
}

// order stores a one-line order priced at total, completed when asked
func (f *fixture) order(t *testing.T, number, total string, customerID *uuid.UUID, complete bool) uuid.UUID {
	t.Helper()
	customerType := trade.CustomerTypeWalkIn
	if customerID != nil {
		customerType = trade.CustomerTypeRegistered
	}
	order, err := trade.NewSalesOrder(f.tenantID, number, "Main", customerType, customerID)
	require.NoError(t, err)
	_, err = order.AddItem(uuid.New(), 1, decimal.RequireFromString(total))
	require.NoError(t, err)
	if complete {
		require.NoError(t, order.Complete(trade.BusinessModeRetail))
	}
	require.NoError(t, f.scope.Execute(context.Background(), func(repos uow.Repositories) error {
		return repos.SalesOrderRepo().Save(context.Background(), order)
	}))
	return order.ID
}

func (f *fixture) pay(t *testing.T, invoiceID uuid.UUID, amount string) *InvoiceResponse {
	t.Helper()
	resp, err := f.invoices.RecordPayment(context.Background(), f.tenantID, RecordPaymentRequest{
		InvoiceID: invoiceID,
		Amount:    decimal.RequireFromString(amount),
		Method:    finance.PaymentMethodCash,
	})
	require.NoError(t, err)
	return resp
}

func (f *fixture) refund(invoiceID uuid.UUID, amount string) (*InvoiceResponse, error) {
	return f.invoices.RecordRefund(context.Background(), f.tenantID, RecordRefundRequest{
		InvoiceID: invoiceID,
		Amount:    decimal.RequireFromString(amount),
		Method:    finance.PaymentMethodUPI,
		Reference: "RF-1",
	})
}

func TestInvoiceService_PaymentThenPartialRefund(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderID := f.order(t, "SO-1", "100.00", &f.customer, true)

	inv, err := f.invoices.CreateInvoice(ctx, f.tenantID, orderID)
	require.NoError(t, err)
	assert.Equal(t, "INV-00001", inv.InvoiceNumber)
	assert.Equal(t, "unpaid", inv.PaymentStatus)
	assert.Equal(t, "100.00", inv.TotalAmount.StringFixed(2))

	paid := f.pay(t, inv.ID, "100.00")
	assert.Equal(t, "paid", paid.PaymentStatus)
	assert.Equal(t, "100.00", paid.PaidAmount.StringFixed(2))

	refunded, err := f.refund(inv.ID, "30.00")
	require.NoError(t, err)
	assert.Equal(t, "partially_paid", refunded.PaymentStatus)
	assert.Equal(t, "70.00", refunded.PaidAmount.StringFixed(2))
	assert.Equal(t, "30.00", refunded.Outstanding.StringFixed(2))
	require.Len(t, refunded.Payments, 2)

	entries, err := f.ledger.Entries(ctx, f.tenantID, f.customer)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"sale", "payment", "refund"},
		[]string{entries[0].Kind, entries[1].Kind, entries[2].Kind})
	assert.Equal(t, "debit", entries[2].Type)
	require.NotNil(t, entries[2].PaymentID)

	snapshot, err := f.snapshots.Get(ctx, f.tenantID, f.customer)
	require.NoError(t, err)
	assert.Equal(t, "130.00", snapshot.TotalSales.StringFixed(2))
	assert.Equal(t, "100.00", snapshot.TotalPayments.StringFixed(2))
	assert.Equal(t, "30.00", snapshot.TotalRefunds.StringFixed(2))
	assert.Equal(t, "30.00", snapshot.TotalDebt.StringFixed(2))
	assert.Equal(t, 3, snapshot.EntryCount)

	assert.Equal(t, []string{
		finance.EventTypeInvoiceCreated,
		finance.EventTypePaymentRecorded,
		finance.EventTypePaymentRecorded,
	}, f.events.Types())
}

func TestInvoiceService_RefundCannotExceedNetPaid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv, err := f.invoices.CreateInvoice(ctx, f.tenantID, f.order(t, "SO-1", "100.00", &f.customer, true))
	require.NoError(t, err)

	_, err = f.refund(inv.ID, "1.00")
	assert.ErrorIs(t, err, shared.ErrRefundExceedsAvailable)

	f.pay(t, inv.ID, "40.00")
	_, err = f.refund(inv.ID, "25.00")
	require.NoError(t, err)
	_, err = f.refund(inv.ID, "15.01")
	assert.ErrorIs(t, err, shared.ErrRefundExceedsAvailable)

	got, err := f.invoices.GetInvoice(ctx, f.tenantID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "15.00", got.PaidAmount.StringFixed(2))
	assert.Equal(t, "partially_paid", got.PaymentStatus)
	assert.Len(t, got.Payments, 2)

	_, err = f.refund(inv.ID, "15.00")
	require.NoError(t, err)
	got, err = f.invoices.GetInvoice(ctx, f.tenantID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "unpaid", got.PaymentStatus)
	assert.True(t, got.PaidAmount.IsZero())
}

func TestInvoiceService_CreateInvoiceGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.invoices.CreateInvoice(ctx, f.tenantID, f.order(t, "SO-1", "10.00", nil, false))
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	_, err = f.invoices.CreateInvoice(ctx, f.tenantID, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)

	completed := f.order(t, "SO-2", "10.00", nil, true)
	first, err := f.invoices.CreateInvoice(ctx, f.tenantID, completed)
	require.NoError(t, err)
	assert.Equal(t, "INV-00001", first.InvoiceNumber)

	_, err = f.invoices.CreateInvoice(ctx, f.tenantID, completed)
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	second, err := f.invoices.CreateInvoice(ctx, f.tenantID, f.order(t, "SO-3", "5.00", nil, true))
	require.NoError(t, err)
	assert.Equal(t, "INV-00002", second.InvoiceNumber)
}

func TestInvoiceService_WalkInWritesNoLedger(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv, err := f.invoices.CreateInvoice(ctx, f.tenantID, f.order(t, "SO-1", "20.00", nil, true))
	require.NoError(t, err)
	assert.Nil(t, inv.CustomerID)
	f.pay(t, inv.ID, "20.00")

	var ids []uuid.UUID
	require.NoError(t, f.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		ids, err = repos.CustomerLedgerRepo().ListCustomerIDs(ctx, f.tenantID)
		return err
	}))
	assert.Empty(t, ids)
	assert.Equal(t, 0, f.cache.Len())
}

func TestInvoiceService_PaymentValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv, err := f.invoices.CreateInvoice(ctx, f.tenantID, f.order(t, "SO-1", "20.00", nil, true))
	require.NoError(t, err)

	_, err = f.invoices.RecordPayment(ctx, f.tenantID, RecordPaymentRequest{
		InvoiceID: inv.ID, Amount: decimal.Zero, Method: finance.PaymentMethodCard,
	})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = f.invoices.RecordPayment(ctx, f.tenantID, RecordPaymentRequest{
		InvoiceID: inv.ID, Amount: decimal.NewFromInt(5), Method: "cheque",
	})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = f.invoices.RecordPayment(ctx, f.tenantID, RecordPaymentRequest{
		InvoiceID: uuid.New(), Amount: decimal.NewFromInt(5), Method: finance.PaymentMethodCard,
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestInvoiceService_RecalculateRepairsCachedAmount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv, err := f.invoices.CreateInvoice(ctx, f.tenantID, f.order(t, "SO-1", "50.00", nil, true))
	require.NoError(t, err)
	f.pay(t, inv.ID, "20.00")

	require.NoError(t, f.scope.Execute(ctx, func(repos uow.Repositories) error {
		stored, err := repos.InvoiceRepo().FindByID(ctx, f.tenantID, inv.ID)
		if err != nil {
			return err
		}
		stored.CachedPaidAmount = decimal.NewFromInt(999)
		stored.PaymentStatus = finance.PaymentStatusPaid
		return repos.InvoiceRepo().Save(ctx, stored)
	}))

	changed, err := f.invoices.RecalculateAll(ctx, f.tenantID)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	got, err := f.invoices.RecalculatePaidAmount(ctx, f.tenantID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "20.00", got.PaidAmount.StringFixed(2))
	assert.Equal(t, "partially_paid", got.PaymentStatus)

	changed, err = f.invoices.RecalculateAll(ctx, f.tenantID)
	require.NoError(t, err)
	assert.Equal(t, 0, changed)
}

func TestSnapshotService_CacheFallsBackToDatabase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.invoices.CreateInvoice(ctx, f.tenantID, f.order(t, "SO-1", "80.00", &f.customer, true))
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.Len())

	require.NoError(t, f.cache.Delete(ctx, f.tenantID, f.customer))
	snapshot, err := f.snapshots.Get(ctx, f.tenantID, f.customer)
	require.NoError(t, err)
	assert.Equal(t, "80.00", snapshot.TotalDebt.StringFixed(2))
	assert.Equal(t, 1, f.cache.Len())

	_, err = f.snapshots.Get(ctx, f.tenantID, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestSnapshotService_RecomputeAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other := uuid.New()
	_, err := f.invoices.CreateInvoice(ctx, f.tenantID, f.order(t, "SO-1", "10.00", &f.customer, true))
	require.NoError(t, err)
	_, err = f.invoices.CreateInvoice(ctx, f.tenantID, f.order(t, "SO-2", "15.00", &other, true))
	require.NoError(t, err)

	n, err := f.snapshots.RecomputeAll(ctx, f.tenantID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	snapshot, err := f.snapshots.Get(ctx, f.tenantID, other)
	require.NoError(t, err)
	assert.Equal(t, "15.00", snapshot.TotalSales.StringFixed(2))
}

func TestLedgerService_ManualEntries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.invoices.CreateInvoice(ctx, f.tenantID, f.order(t, "SO-1", "60.00", &f.customer, true))
	require.NoError(t, err)

	entry, err := f.ledger.AddManualEntry(ctx, f.tenantID, ManualEntryRequest{
		CustomerID:  f.customer,
		Type:        finance.EntryTypeCredit,
		Amount:      decimal.RequireFromString("25.00"),
		Description: "Goodwill credit",
	})
	require.NoError(t, err)
	assert.Equal(t, "adjustment", entry.Kind)

	snapshot, err := f.snapshots.Get(ctx, f.tenantID, f.customer)
	require.NoError(t, err)
	assert.Equal(t, "35.00", snapshot.TotalDebt.StringFixed(2))

	require.NoError(t, f.ledger.DeleteEntry(ctx, f.tenantID, entry.ID))
	snapshot, err = f.snapshots.Get(ctx, f.tenantID, f.customer)
	require.NoError(t, err)
	assert.Equal(t, "60.00", snapshot.TotalDebt.StringFixed(2))
	assert.Equal(t, 1, snapshot.EntryCount)

	entries, err := f.ledger.Entries(ctx, f.tenantID, f.customer)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	err = f.ledger.DeleteEntry(ctx, f.tenantID, entries[0].ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	assert.ErrorIs(t, f.ledger.DeleteEntry(ctx, f.tenantID, uuid.New()), shared.ErrNotFound)

	_, err = f.ledger.AddManualEntry(ctx, f.tenantID, ManualEntryRequest{
		CustomerID: f.customer,
		Type:       finance.EntryTypeDebit,
		Amount:     decimal.Zero,
	})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}
