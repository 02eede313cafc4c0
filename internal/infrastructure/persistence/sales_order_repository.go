package persistence

import (
	"context"
	"errors"

	"github.com/erp/retailcore/internal/domain/shared"
	"github.com/erp/retailcore/internal/domain/trade"
	"github.com/erp/retailcore/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSalesOrderRepository implements trade.SalesOrderRepository using GORM
type GormSalesOrderRepository struct {
	db *gorm.DB
}

// NewGormSalesOrderRepository creates a new GormSalesOrderRepository
func NewGormSalesOrderRepository(db *gorm.DB) *GormSalesOrderRepository {
	return &GormSalesOrderRepository{db: db}
}

// FindByID finds a sales order with its items
func (r *GormSalesOrderRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*trade.SalesOrder, error) {
	return r.findOne(r.db.WithContext(ctx), "tenant_id = ? AND id = ?", tenantID, id)
}

// FindByIDForUpdate finds a sales order and locks its row
func (r *GormSalesOrderRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*trade.SalesOrder, error) {
	return r.findOne(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}),
		"tenant_id = ? AND id = ?", tenantID, id)
}

// FindByOrderNumber finds a sales order by order number for a tenant
func (r *GormSalesOrderRepository) FindByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*trade.SalesOrder, error) {
	return r.findOne(r.db.WithContext(ctx), "tenant_id = ? AND order_number = ?", tenantID, orderNumber)
}

func (r *GormSalesOrderRepository) findOne(db *gorm.DB, query string, args ...any) (*trade.SalesOrder, error) {
	var model models.SalesOrderModel
	if err := db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC, id ASC")
	}).Where(query, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.Errorf(shared.ErrNotFound, "Sales order not found")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save upserts the order row and replaces its item rows
func (r *GormSalesOrderRepository) Save(ctx context.Context, order *trade.SalesOrder) error {
	db := r.db.WithContext(ctx)
	model := models.SalesOrderModelFromDomain(order)

	if err := db.Omit(clause.Associations).Save(model).Error; err != nil {
		return err
	}
	if err := db.Where("order_id = ?", order.ID).Delete(&models.SalesOrderItemModel{}).Error; err != nil {
		return err
	}
	if len(model.Items) == 0 {
		return nil
	}
	return db.Create(&model.Items).Error
}

// Ensure GormSalesOrderRepository implements trade.SalesOrderRepository
var _ trade.SalesOrderRepository = (*GormSalesOrderRepository)(nil)
