package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/retailcore/internal/domain/inventory"
	"github.com/erp/retailcore/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInventoryRepository implements inventory.InventoryRepository using GORM
type GormInventoryRepository struct {
	db *gorm.DB
}

// NewGormInventoryRepository creates a new GormInventoryRepository
func NewGormInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

// FindByProduct returns every location row of a product
func (r *GormInventoryRepository) FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]*inventory.Inventory, error) {
	return r.byProduct(r.db.WithContext(ctx), tenantID, productID)
}

// LockByProduct returns every location row of a product, locked FOR UPDATE.
// Rows are read in location order so lock acquisition is deterministic.
func (r *GormInventoryRepository) LockByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]*inventory.Inventory, error) {
	return r.byProduct(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), tenantID, productID)
}

func (r *GormInventoryRepository) byProduct(db *gorm.DB, tenantID, productID uuid.UUID) ([]*inventory.Inventory, error) {
	var rows []models.InventoryModel
	if err := db.Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Order("location ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toInventories(rows), nil
}

// GetOrCreateForUpdate returns the locked row at location, inserting an empty one when missing
func (r *GormInventoryRepository) GetOrCreateForUpdate(ctx context.Context, tenantID, productID uuid.UUID, location string) (*inventory.Inventory, error) {
	db := r.db.WithContext(ctx)
	row, err := r.lockOne(db, tenantID, productID, location)
	if err == nil {
		return row, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fresh, err := inventory.NewInventory(tenantID, productID, location)
	if err != nil {
		return nil, err
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(models.InventoryModelFromDomain(fresh)).Error; err != nil {
		return nil, fmt.Errorf("failed to create inventory row: %w", err)
	}
	return r.lockOne(db, tenantID, productID, location)
}

func (r *GormInventoryRepository) lockOne(db *gorm.DB, tenantID, productID uuid.UUID, location string) (*inventory.Inventory, error) {
	var model models.InventoryModel
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND product_id = ? AND location = ?", tenantID, productID, location).
		First(&model).Error; err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant returns every stock row of a tenant
func (r *GormInventoryRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]*inventory.Inventory, error) {
	var rows []models.InventoryModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("product_id ASC, location ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toInventories(rows), nil
}

// Save persists the given rows
func (r *GormInventoryRepository) Save(ctx context.Context, rows ...*inventory.Inventory) error {
	db := r.db.WithContext(ctx)
	for _, row := range rows {
		if err := db.Save(models.InventoryModelFromDomain(row)).Error; err != nil {
			return fmt.Errorf("failed to save inventory %s/%s: %w", row.ProductID, row.Location, err)
		}
	}
	return nil
}

func toInventories(rows []models.InventoryModel) []*inventory.Inventory {
	out := make([]*inventory.Inventory, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}

// Ensure GormInventoryRepository implements inventory.InventoryRepository
var _ inventory.InventoryRepository = (*GormInventoryRepository)(nil)
