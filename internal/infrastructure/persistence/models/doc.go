// Package models contains GORM persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free
// of ORM concerns; every model has ToDomain and a ...FromDomain mapper.
//
// Structure:
//   - base.go: shared base fields
//   - inventory.go: products, inventories, stock_movements, document_sequences
//   - trade.go: sales and purchase orders with their items
//   - finance.go: invoices, payments, customer ledger, snapshots
//   - report.go: product sales summaries
package models

// All returns every model, in dependency order, for AutoMigrate in tests.
// Production schemas come from the SQL migrations.
func All() []any {
	return []any{
		&SequenceModel{},
		&ProductModel{},
		&InventoryModel{},
		&StockMovementModel{},
		&SalesOrderModel{},
		&SalesOrderItemModel{},
		&PurchaseOrderModel{},
		&PurchaseOrderItemModel{},
		&InvoiceModel{},
		&PaymentModel{},
		&CustomerLedgerEntryModel{},
		&CustomerFinancialSnapshotModel{},
		&ProductSalesSummaryModel{},
	}
}
