package persistence

import (
	"context"

	"github.com/erp/retailcore/internal/domain/inventory"
	"github.com/erp/retailcore/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStockMovementRepository implements inventory.StockMovementRepository.
// It only inserts and reads; movements are never updated or deleted.
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// Append inserts movements
func (r *GormStockMovementRepository) Append(ctx context.Context, movements ...*inventory.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	rows := make([]*models.StockMovementModel, len(movements))
	for i, m := range movements {
		rows[i] = models.StockMovementModelFromDomain(m)
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// FindByProduct lists a product's movements, newest first
func (r *GormStockMovementRepository) FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]inventory.StockMovement, error) {
	return r.find(r.db.WithContext(ctx).Where("tenant_id = ? AND product_id = ?", tenantID, productID))
}

// FindBySalesOrder lists the movements of a sales order, newest first
func (r *GormStockMovementRepository) FindBySalesOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]inventory.StockMovement, error) {
	return r.find(r.db.WithContext(ctx).Where("tenant_id = ? AND sales_order_id = ?", tenantID, orderID))
}

// FindByPurchaseOrder lists the movements of a purchase order, newest first
func (r *GormStockMovementRepository) FindByPurchaseOrder(ctx context.Context, tenantID, poID uuid.UUID) ([]inventory.StockMovement, error) {
	return r.find(r.db.WithContext(ctx).Where("tenant_id = ? AND purchase_order_id = ?", tenantID, poID))
}

func (r *GormStockMovementRepository) find(db *gorm.DB) ([]inventory.StockMovement, error) {
	var rows []models.StockMovementModel
	if err := db.Order("created_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]inventory.StockMovement, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

type balanceRow struct {
	ProductID uuid.UUID
	Location  string
	Quantity  int64
}

// BalancesForTenant sums quantity_change per (product, location)
func (r *GormStockMovementRepository) BalancesForTenant(ctx context.Context, tenantID uuid.UUID) ([]inventory.LocationBalance, error) {
	var rows []balanceRow
	if err := r.db.WithContext(ctx).
		Model(&models.StockMovementModel{}).
		Select("product_id, location, SUM(quantity_change) AS quantity").
		Where("tenant_id = ?", tenantID).
		Group("product_id, location").
		Order("product_id ASC, location ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]inventory.LocationBalance, len(rows))
	for i, row := range rows {
		out[i] = inventory.LocationBalance{ProductID: row.ProductID, Location: row.Location, Quantity: row.Quantity}
	}
	return out, nil
}

// Ensure GormStockMovementRepository implements inventory.StockMovementRepository
var _ inventory.StockMovementRepository = (*GormStockMovementRepository)(nil)
