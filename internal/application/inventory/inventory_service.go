package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/erp/retailcore/internal/application/uow"
	"github.com/erp/retailcore/internal/domain/inventory"
	"github.com/erp/retailcore/internal/domain/shared"
	"github.com/erp/retailcore/internal/infrastructure/logger"
	"github.com/erp/retailcore/internal/infrastructure/telemetry"
	"github.com/erp/retailcore/internal/infrastructure/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InventoryService handles stock operations that are not part of an order
// flow. Each call runs in its own transaction.
type InventoryService struct {
	scope  uow.TransactionScope
	ledger *Ledger
	logger *zap.Logger
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(scope uow.TransactionScope, ledger *Ledger, logger *zap.Logger) *InventoryService {
	return &InventoryService{
		scope:  scope,
		ledger: ledger,
		logger: logger,
	}
}

// CreateProduct registers a product
func (s *InventoryService) CreateProduct(ctx context.Context, tenantID uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	product, err := inventory.NewProduct(tenantID, req.Name, req.SKU, req.Cost, req.Price)
	if err != nil {
		return nil, err
	}
	if err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		return repos.ProductRepo().Save(ctx, product)
	}); err != nil {
		return nil, fmt.Errorf("failed to save product: %w", err)
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// SetOpeningStock brings a location to an absolute quantity with one
// ADJUSTMENT movement. Nothing is written when the quantity already matches.
func (s *InventoryService) SetOpeningStock(ctx context.Context, tenantID uuid.UUID, req SetOpeningStockRequest) (*StockLevelResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "inventory", "set_opening_stock", "product_id", req.ProductID.String())
	defer span.End()

	var level *StockLevelResponse
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		product, err := repos.ProductRepo().FindByID(ctx, tenantID, req.ProductID)
		if err != nil {
			return err
		}
		row, err := repos.InventoryRepo().GetOrCreateForUpdate(ctx, tenantID, req.ProductID, req.Location)
		if err != nil {
			return err
		}
		if delta := req.Quantity - row.Quantity; delta != 0 {
			note := req.Note
			if note == "" {
				note = "Opening stock"
			}
			if _, err := s.ledger.Adjust(ctx, repos, AdjustRequest{
				TenantID:  tenantID,
				ProductID: req.ProductID,
				Location:  req.Location,
				Delta:     delta,
				Note:      note,
			}); err != nil {
				return err
			}
		}
		level, err = s.stockLevel(ctx, repos, product)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return level, nil
}

// Adjust applies a signed correction at one location
func (s *InventoryService) Adjust(ctx context.Context, tenantID uuid.UUID, req AdjustStockRequest) (*StockLevelResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	return s.applyChange(ctx, tenantID, "adjust", AdjustRequest{
		TenantID:   tenantID,
		ProductID:  req.ProductID,
		Location:   req.Location,
		Delta:      req.Delta,
		ChangeType: inventory.ChangeTypeAdjustment,
		Note:       req.Note,
	})
}

// ReturnFromCustomer puts returned goods back on hand (RETURN_IN)
func (s *InventoryService) ReturnFromCustomer(ctx context.Context, tenantID uuid.UUID, req CustomerReturnRequest) (*StockLevelResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	change := AdjustRequest{
		TenantID:   tenantID,
		ProductID:  req.ProductID,
		Location:   req.Location,
		Delta:      req.Quantity,
		ChangeType: inventory.ChangeTypeReturnIn,
		Note:       req.Note,
	}
	if req.SalesOrderID != nil {
		change.SalesOrderID = *req.SalesOrderID
	}
	return s.applyChange(ctx, tenantID, "return_from_customer", change)
}

// ReturnToSupplier takes goods off hand (RETURN_OUT). The location must hold
// enough stock.
func (s *InventoryService) ReturnToSupplier(ctx context.Context, tenantID uuid.UUID, req SupplierReturnRequest) (*StockLevelResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	change := AdjustRequest{
		TenantID:   tenantID,
		ProductID:  req.ProductID,
		Location:   req.Location,
		Delta:      -req.Quantity,
		ChangeType: inventory.ChangeTypeReturnOut,
		Note:       req.Note,
	}
	if req.PurchaseOrderID != nil {
		change.PurchaseOrderID = *req.PurchaseOrderID
	}
	return s.applyChange(ctx, tenantID, "return_to_supplier", change)
}

func (s *InventoryService) applyChange(ctx context.Context, tenantID uuid.UUID, method string, change AdjustRequest) (*StockLevelResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "inventory", method,
		"product_id", change.ProductID.String(), "delta", change.Delta)
	defer span.End()

	var level *StockLevelResponse
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		product, err := repos.ProductRepo().FindByID(ctx, tenantID, change.ProductID)
		if err != nil {
			return err
		}
		if _, err := s.ledger.Adjust(ctx, repos, change); err != nil {
			return err
		}
		level, err = s.stockLevel(ctx, repos, product)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		logger.ForContext(ctx, s.logger).Warn("Stock change rejected",
			zap.String("operation", method),
			zap.String("product_id", change.ProductID.String()),
			zap.Error(err))
		return nil, err
	}
	return level, nil
}

// ReceiveStock adds stock received outside a purchase order and updates the
// product cost by weighted average
func (s *InventoryService) ReceiveStock(ctx context.Context, tenantID uuid.UUID, req ReceiveStockRequest) (*StockLevelResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "inventory", "receive", "product_id", req.ProductID.String())
	defer span.End()

	var level *StockLevelResponse
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		if _, err := s.ledger.Receive(ctx, repos, ReceiveRequest{
			TenantID:  tenantID,
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
			Location:  req.Location,
			UnitCost:  req.UnitCost,
			Note:      req.Note,
		}); err != nil {
			return err
		}
		product, err := repos.ProductRepo().FindByID(ctx, tenantID, req.ProductID)
		if err != nil {
			return err
		}
		level, err = s.stockLevel(ctx, repos, product)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return level, nil
}

// StockOf returns the aggregate and per-location stock of a product
func (s *InventoryService) StockOf(ctx context.Context, tenantID, productID uuid.UUID) (*StockLevelResponse, error) {
	var level *StockLevelResponse
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		product, err := repos.ProductRepo().FindByID(ctx, tenantID, productID)
		if err != nil {
			return err
		}
		level, err = s.stockLevel(ctx, repos, product)
		return err
	})
	if err != nil {
		return nil, err
	}
	return level, nil
}

// Movements lists a product's movements, newest first
func (s *InventoryService) Movements(ctx context.Context, tenantID, productID uuid.UUID) ([]MovementResponse, error) {
	var movements []inventory.StockMovement
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		movements, err = repos.MovementRepo().FindByProduct(ctx, tenantID, productID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ToMovementResponses(movements), nil
}

// Reconcile checks that every stored quantity equals the sum of its
// movements
func (s *InventoryService) Reconcile(ctx context.Context, tenantID uuid.UUID) (*ReconcileReport, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "inventory", "reconcile")
	defer span.End()

	type key struct {
		product  uuid.UUID
		location string
	}
	report := &ReconcileReport{TenantID: tenantID, Mismatches: make([]Mismatch, 0)}

	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		rows, err := repos.InventoryRepo().FindAllForTenant(ctx, tenantID)
		if err != nil {
			return err
		}
		balances, err := repos.MovementRepo().BalancesForTenant(ctx, tenantID)
		if err != nil {
			return err
		}

		recorded := make(map[key]int64, len(rows))
		for _, row := range rows {
			recorded[key{row.ProductID, row.Location}] = row.Quantity
		}
		summed := make(map[key]int64, len(balances))
		for _, b := range balances {
			summed[key{b.ProductID, b.Location}] = b.Quantity
		}

		keys := make(map[key]struct{}, len(recorded)+len(summed))
		for k := range recorded {
			keys[k] = struct{}{}
		}
		for k := range summed {
			keys[k] = struct{}{}
		}
		for k := range keys {
			report.Checked++
			if recorded[k] != summed[k] {
				report.Mismatches = append(report.Mismatches, Mismatch{
					ProductID:   k.product,
					Location:    k.location,
					Recorded:    recorded[k],
					MovementSum: summed[k],
				})
			}
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	sort.Slice(report.Mismatches, func(i, j int) bool {
		a, b := report.Mismatches[i], report.Mismatches[j]
		if a.ProductID != b.ProductID {
			return a.ProductID.String() < b.ProductID.String()
		}
		return a.Location < b.Location
	})
	if !report.Consistent() {
		logger.ForContext(ctx, s.logger).Warn("Inventory does not match movement log",
			zap.String("tenant_id", tenantID.String()),
			zap.Int("mismatches", len(report.Mismatches)))
		telemetry.RecordError(span, shared.Errorf(shared.ErrInvalidState, "%d inventory rows disagree with movements", len(report.Mismatches)))
	}
	return report, nil
}

func (s *InventoryService) stockLevel(ctx context.Context, repos uow.Repositories, product *inventory.Product) (*StockLevelResponse, error) {
	rows, err := repos.InventoryRepo().FindByProduct(ctx, product.TenantID, product.ID)
	if err != nil {
		return nil, err
	}
	return toStockLevel(product, rows), nil
}
