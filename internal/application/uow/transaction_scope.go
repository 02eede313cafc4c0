// Package uow defines the transaction boundary shared by the ledger services.
package uow

import (
	"context"

	"github.com/erp/retailcore/internal/domain/finance"
	"github.com/erp/retailcore/internal/domain/inventory"
	"github.com/erp/retailcore/internal/domain/report"
	"github.com/erp/retailcore/internal/domain/sequence"
	"github.com/erp/retailcore/internal/domain/trade"
)

// TransactionScope runs work inside one database transaction.
// When fn returns an error every write made through repos is rolled back,
// including sequence increments and stock movements.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories gives access to every repository bound to the current
// transaction. Locks taken through FindByIDForUpdate / LockByProduct are held
// until Execute returns.
type Repositories interface {
	SequenceRepo() sequence.Repository
	ProductRepo() inventory.ProductRepository
	InventoryRepo() inventory.InventoryRepository
	MovementRepo() inventory.StockMovementRepository
	SalesOrderRepo() trade.SalesOrderRepository
	PurchaseOrderRepo() trade.PurchaseOrderRepository
	InvoiceRepo() finance.InvoiceRepository
	PaymentRepo() finance.PaymentRepository
	CustomerLedgerRepo() finance.CustomerLedgerRepository
	SnapshotRepo() finance.SnapshotRepository
	SalesSummaryRepo() report.SalesSummaryRepository
}
