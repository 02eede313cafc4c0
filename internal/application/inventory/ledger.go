package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/retailcore/internal/application/uow"
	"github.com/erp/retailcore/internal/domain/inventory"
	"github.com/erp/retailcore/internal/domain/shared"
	"github.com/erp/retailcore/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Ledger applies stock changes inside a caller's transaction. Every quantity
// change on an inventory row is paired with exactly one appended movement.
type Ledger struct {
	logger  *zap.Logger
	metrics *telemetry.LedgerMetrics
}

// NewLedger creates a new Ledger
func NewLedger(logger *zap.Logger) *Ledger {
	return &Ledger{logger: logger}
}

// SetMetrics sets the ledger metrics (optional)
func (l *Ledger) SetMetrics(metrics *telemetry.LedgerMetrics) {
	l.metrics = metrics
}

// DeductRequest describes stock leaving for a sale
type DeductRequest struct {
	TenantID     uuid.UUID
	ProductID    uuid.UUID
	Quantity     int64
	Location     string // a concrete location or inventory.AllLocations
	ChangeType   inventory.ChangeType
	SalesOrderID uuid.UUID
	Note         string
}

// ReceiveRequest describes stock arriving from a supplier
type ReceiveRequest struct {
	TenantID        uuid.UUID
	ProductID       uuid.UUID
	Quantity        int64
	Location        string
	UnitCost        decimal.Decimal
	PurchaseOrderID uuid.UUID
	Note            string
}

// ReceiveResult is the outcome of one receipt
type ReceiveResult struct {
	Movement    *inventory.StockMovement
	PriorQty    int64
	NewCost     decimal.Decimal
	LocationQty int64
}

// AdjustRequest describes a signed manual change at one location
type AdjustRequest struct {
	TenantID        uuid.UUID
	ProductID       uuid.UUID
	Location        string
	Delta           int64
	ChangeType      inventory.ChangeType
	SalesOrderID    uuid.UUID
	PurchaseOrderID uuid.UUID
	Note            string
}

// Stock holds the locked inventory rows of several products
type Stock map[uuid.UUID][]*inventory.Inventory

// LockProducts locks every location row of each product, in ascending product
// id order.
func (l *Ledger) LockProducts(ctx context.Context, repos uow.Repositories, tenantID uuid.UUID, productIDs []uuid.UUID) (Stock, error) {
	stock := make(Stock, len(productIDs))
	for _, id := range inventory.SortedProductIDs(productIDs) {
		rows, err := repos.InventoryRepo().LockByProduct(ctx, tenantID, id)
		if err != nil {
			return nil, fmt.Errorf("failed to lock inventory of product %s: %w", id, err)
		}
		stock[id] = rows
	}
	return stock, nil
}

// Check verifies that every required quantity can be covered at location
// without changing anything.
func (s Stock) Check(required map[uuid.UUID]int64, location string) error {
	ids := make([]uuid.UUID, 0, len(required))
	for id := range required {
		ids = append(ids, id)
	}
	for _, id := range inventory.SortedProductIDs(ids) {
		if _, err := inventory.PlanDeduction(s[id], location, required[id]); err != nil {
			return forProduct(err, id)
		}
	}
	return nil
}

// Deduct locks the product's rows and removes stock
func (l *Ledger) Deduct(ctx context.Context, repos uow.Repositories, req DeductRequest) ([]inventory.StockMovement, error) {
	rows, err := repos.InventoryRepo().LockByProduct(ctx, req.TenantID, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock inventory of product %s: %w", req.ProductID, err)
	}
	return l.DeductLocked(ctx, repos, rows, req)
}

// DeductLocked removes stock from rows the caller already holds locks on.
// A pinned location without a row fails with NO_INVENTORY_RECORD; not enough
// stock fails with INSUFFICIENT_STOCK. Nothing is written on failure.
func (l *Ledger) DeductLocked(ctx context.Context, repos uow.Repositories, rows []*inventory.Inventory, req DeductRequest) ([]inventory.StockMovement, error) {
	if req.ChangeType != inventory.ChangeTypeSale && req.ChangeType != inventory.ChangeTypeSaleInTransit {
		return nil, shared.Errorf(shared.ErrInvalidInput, "Deductions are recorded as SALE or SALE_IN_TRANSIT, got %s", req.ChangeType)
	}
	plan, err := inventory.PlanDeduction(rows, req.Location, req.Quantity)
	if err != nil {
		return nil, forProduct(err, req.ProductID)
	}

	changed := make([]*inventory.Inventory, 0, len(plan))
	movements := make([]*inventory.StockMovement, 0, len(plan))
	for _, a := range plan {
		if err := a.Inventory.Deduct(a.Quantity); err != nil {
			return nil, forProduct(err, req.ProductID)
		}
		m, err := inventory.NewStockMovement(req.TenantID, req.ProductID, a.Inventory.Location, req.ChangeType, -a.Quantity,
			inventory.ForSalesOrder(req.SalesOrderID), inventory.WithNote(req.Note))
		if err != nil {
			return nil, err
		}
		changed = append(changed, a.Inventory)
		movements = append(movements, m)
	}

	if err := repos.InventoryRepo().Save(ctx, changed...); err != nil {
		return nil, err
	}
	if err := repos.MovementRepo().Append(ctx, movements...); err != nil {
		return nil, fmt.Errorf("failed to append stock movements: %w", err)
	}
	l.metrics.RecordMovements(ctx, req.ChangeType.String(), len(movements))
	l.logger.Debug("Stock deducted",
		zap.String("product_id", req.ProductID.String()),
		zap.Int64("quantity", req.Quantity),
		zap.Int("rows", len(plan)))
	return derefMovements(movements), nil
}

// Restore puts back the full quantity of each deduction movement
func (l *Ledger) Restore(ctx context.Context, repos uow.Repositories, movements []inventory.StockMovement, note string) ([]inventory.StockMovement, error) {
	reversals := make([]inventory.Reversal, 0, len(movements))
	for _, m := range movements {
		if !m.IsDeduction() {
			continue
		}
		reversals = append(reversals, inventory.Reversal{Movement: m, Quantity: m.DeductedQuantity()})
	}
	return l.restore(ctx, repos, reversals, note)
}

// ReverseOrder restores qty units of a product taken by a sales order,
// walking the order's outstanding deductions newest first.
func (l *Ledger) ReverseOrder(ctx context.Context, repos uow.Repositories, tenantID, orderID, productID uuid.UUID, qty int64) ([]inventory.StockMovement, error) {
	history, err := repos.MovementRepo().FindBySalesOrder(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	ofProduct := make([]inventory.StockMovement, 0, len(history))
	for _, m := range history {
		if m.ProductID == productID {
			ofProduct = append(ofProduct, m)
		}
	}
	outstanding := Outstanding(ofProduct)
	const note = "Reversal of sales order deduction"
	var total int64
	for _, m := range outstanding {
		total += m.DeductedQuantity()
	}
	if qty > 0 && total == qty {
		return l.Restore(ctx, repos, outstanding, note)
	}
	plan, err := inventory.PlanReversal(outstanding, qty)
	if err != nil {
		return nil, forProduct(err, productID)
	}
	return l.restore(ctx, repos, plan, note)
}

func (l *Ledger) restore(ctx context.Context, repos uow.Repositories, plan []inventory.Reversal, note string) ([]inventory.StockMovement, error) {
	if len(plan) == 0 {
		return nil, nil
	}
	type rowKey struct {
		product  uuid.UUID
		location string
	}
	tenantID := plan[0].Movement.TenantID
	productIDs := make([]uuid.UUID, 0, len(plan))
	for _, r := range plan {
		productIDs = append(productIDs, r.Movement.ProductID)
	}
	// Same lock order as finalize: products ascending, then location ASC.
	stock, err := l.LockProducts(ctx, repos, tenantID, productIDs)
	if err != nil {
		return nil, err
	}
	locked := make(map[rowKey]*inventory.Inventory)
	for productID, rows := range stock {
		for _, row := range rows {
			locked[rowKey{productID, row.Location}] = row
		}
	}

	changed := make([]*inventory.Inventory, 0, len(plan))
	touched := make(map[rowKey]bool, len(plan))
	written := make([]*inventory.StockMovement, 0, len(plan))
	for _, r := range plan {
		src := r.Movement
		key := rowKey{src.ProductID, src.Location}
		row, ok := locked[key]
		if !ok {
			row, err = repos.InventoryRepo().GetOrCreateForUpdate(ctx, src.TenantID, src.ProductID, src.Location)
			if err != nil {
				return nil, err
			}
			locked[key] = row
		}
		if err := row.Add(r.Quantity); err != nil {
			return nil, err
		}
		if !touched[key] {
			touched[key] = true
			changed = append(changed, row)
		}
		opts := []inventory.MovementOption{inventory.Reversing(src.ID), inventory.WithNote(note)}
		if src.SalesOrderID != nil {
			opts = append(opts, inventory.ForSalesOrder(*src.SalesOrderID))
		}
		m, err := inventory.NewStockMovement(src.TenantID, src.ProductID, src.Location, inventory.ChangeTypeAdjustment, r.Quantity, opts...)
		if err != nil {
			return nil, err
		}
		written = append(written, m)
	}
	if err := repos.InventoryRepo().Save(ctx, changed...); err != nil {
		return nil, err
	}
	if err := repos.MovementRepo().Append(ctx, written...); err != nil {
		return nil, fmt.Errorf("failed to append compensating movements: %w", err)
	}
	l.metrics.RecordMovements(ctx, inventory.ChangeTypeAdjustment.String(), len(written))
	return derefMovements(written), nil
}

// MarkSold writes a zero-quantity SALE marker next to every outstanding
// SALE_IN_TRANSIT deduction of an order. Stock already left when the order
// shipped, so quantities do not change.
func (l *Ledger) MarkSold(ctx context.Context, repos uow.Repositories, tenantID, orderID uuid.UUID) ([]inventory.StockMovement, error) {
	history, err := repos.MovementRepo().FindBySalesOrder(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	markers := make([]*inventory.StockMovement, 0)
	for _, m := range Outstanding(history) {
		if m.ChangeType != inventory.ChangeTypeSaleInTransit {
			continue
		}
		marker, err := inventory.NewStockMovement(tenantID, m.ProductID, m.Location, inventory.ChangeTypeSale, 0,
			inventory.ForSalesOrder(orderID),
			inventory.WithNote(fmt.Sprintf("Sale finalized for %d units shipped in transit", m.DeductedQuantity())))
		if err != nil {
			return nil, err
		}
		markers = append(markers, marker)
	}
	if err := repos.MovementRepo().Append(ctx, markers...); err != nil {
		return nil, fmt.Errorf("failed to append sale markers: %w", err)
	}
	l.metrics.RecordMovements(ctx, inventory.ChangeTypeSale.String(), len(markers))
	return derefMovements(markers), nil
}

// Receive adds purchased stock and moves the product cost by weighted
// average. The product row is locked before its inventory rows.
func (l *Ledger) Receive(ctx context.Context, repos uow.Repositories, req ReceiveRequest) (*ReceiveResult, error) {
	if req.Quantity <= 0 {
		return nil, shared.Errorf(shared.ErrInvalidInput, "Received quantity must be positive")
	}
	if req.UnitCost.IsNegative() {
		return nil, shared.Errorf(shared.ErrInvalidInput, "Unit cost cannot be negative")
	}

	product, err := repos.ProductRepo().FindByIDForUpdate(ctx, req.TenantID, req.ProductID)
	if err != nil {
		return nil, err
	}
	rows, err := repos.InventoryRepo().LockByProduct(ctx, req.TenantID, req.ProductID)
	if err != nil {
		return nil, err
	}
	prior := inventory.TotalQuantity(rows)

	row, err := repos.InventoryRepo().GetOrCreateForUpdate(ctx, req.TenantID, req.ProductID, req.Location)
	if err != nil {
		return nil, err
	}
	if err := row.Add(req.Quantity); err != nil {
		return nil, err
	}
	newCost := product.ApplyReceiptCost(prior, req.Quantity, req.UnitCost)

	m, err := inventory.NewStockMovement(req.TenantID, req.ProductID, row.Location, inventory.ChangeTypePurchaseReceive, req.Quantity,
		inventory.ForPurchaseOrder(req.PurchaseOrderID), inventory.WithNote(req.Note))
	if err != nil {
		return nil, err
	}

	if err := repos.InventoryRepo().Save(ctx, row); err != nil {
		return nil, err
	}
	if err := repos.ProductRepo().Save(ctx, product); err != nil {
		return nil, err
	}
	if err := repos.MovementRepo().Append(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to append receipt movement: %w", err)
	}
	l.metrics.RecordMovements(ctx, inventory.ChangeTypePurchaseReceive.String(), 1)
	l.logger.Debug("Stock received",
		zap.String("product_id", req.ProductID.String()),
		zap.Int64("quantity", req.Quantity),
		zap.Int64("prior_quantity", prior),
		zap.String("cost", newCost.StringFixed(2)))

	return &ReceiveResult{Movement: m, PriorQty: prior, NewCost: newCost, LocationQty: row.Quantity}, nil
}

// Adjust applies a signed change at one concrete location. Removing stock
// from a location that has no row fails with NO_INVENTORY_RECORD.
func (l *Ledger) Adjust(ctx context.Context, repos uow.Repositories, req AdjustRequest) (*inventory.StockMovement, error) {
	if req.Location == "" || req.Location == inventory.AllLocations {
		return nil, shared.Errorf(shared.ErrInvalidInput, "Adjustments need a concrete location")
	}
	if req.ChangeType == "" {
		req.ChangeType = inventory.ChangeTypeAdjustment
	}
	m, err := inventory.NewStockMovement(req.TenantID, req.ProductID, req.Location, req.ChangeType, req.Delta,
		inventory.ForSalesOrder(req.SalesOrderID), inventory.ForPurchaseOrder(req.PurchaseOrderID), inventory.WithNote(req.Note))
	if err != nil {
		return nil, err
	}

	var row *inventory.Inventory
	if req.Delta < 0 {
		row, err = l.lockedRowAt(ctx, repos, req.TenantID, req.ProductID, req.Location)
	} else {
		row, err = repos.InventoryRepo().GetOrCreateForUpdate(ctx, req.TenantID, req.ProductID, req.Location)
	}
	if err != nil {
		return nil, err
	}
	if err := row.Apply(req.Delta); err != nil {
		return nil, forProduct(err, req.ProductID)
	}
	if err := repos.InventoryRepo().Save(ctx, row); err != nil {
		return nil, err
	}
	if err := repos.MovementRepo().Append(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to append stock movement: %w", err)
	}
	l.metrics.RecordMovements(ctx, req.ChangeType.String(), 1)
	return m, nil
}

func (l *Ledger) lockedRowAt(ctx context.Context, repos uow.Repositories, tenantID, productID uuid.UUID, location string) (*inventory.Inventory, error) {
	rows, err := repos.InventoryRepo().LockByProduct(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if row.Location == location {
			return row, nil
		}
	}
	return nil, shared.Errorf(shared.ErrNoInventoryRecord, "Product %s has no inventory record at %s", productID, location)
}

// Outstanding returns the deductions in movements that have not been fully
// compensated yet, with QuantityChange reduced by what was already put back.
func Outstanding(movements []inventory.StockMovement) []inventory.StockMovement {
	restored := make(map[uuid.UUID]int64)
	for _, m := range movements {
		if m.ReversesMovementID != nil && m.QuantityChange > 0 {
			restored[*m.ReversesMovementID] += m.QuantityChange
		}
	}
	out := make([]inventory.StockMovement, 0, len(movements))
	for _, m := range movements {
		if !m.IsDeduction() {
			continue
		}
		left := m.DeductedQuantity() - restored[m.ID]
		if left <= 0 {
			continue
		}
		m.QuantityChange = -left
		out = append(out, m)
	}
	return out
}

func forProduct(err error, productID uuid.UUID) error {
	var de *shared.DomainError
	if !errors.As(err, &de) {
		return err
	}
	return shared.NewDomainError(de.Code, fmt.Sprintf("Product %s: %s", productID, de.Message))
}

func derefMovements(in []*inventory.StockMovement) []inventory.StockMovement {
	out := make([]inventory.StockMovement, len(in))
	for i, m := range in {
		out[i] = *m
	}
	return out
}
