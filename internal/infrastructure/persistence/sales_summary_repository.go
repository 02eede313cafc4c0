package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/retailcore/internal/domain/report"
	"github.com/erp/retailcore/internal/domain/shared"
	"github.com/erp/retailcore/internal/domain/trade"
	"github.com/erp/retailcore/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSalesSummaryRepository implements report.SalesSummaryRepository using GORM
type GormSalesSummaryRepository struct {
	db *gorm.DB
}

// NewGormSalesSummaryRepository creates a new GormSalesSummaryRepository
func NewGormSalesSummaryRepository(db *gorm.DB) *GormSalesSummaryRepository {
	return &GormSalesSummaryRepository{db: db}
}

type soldLineRow struct {
	OrderID    uuid.UUID
	ProductID  uuid.UUID
	Quantity   int64
	TotalPrice decimal.Decimal
}

// CompletedLines returns the product's lines on completed orders created in [from, to)
func (r *GormSalesSummaryRepository) CompletedLines(ctx context.Context, tenantID, productID uuid.UUID, from, to time.Time) ([]report.SoldLine, error) {
	var rows []soldLineRow
	if err := r.db.WithContext(ctx).
		Table("sales_order_items AS i").
		Select("i.order_id, i.product_id, i.quantity, i.total_price").
		Joins("JOIN sales_orders AS o ON o.id = i.order_id").
		Where("o.tenant_id = ? AND i.product_id = ? AND o.status = ?", tenantID, productID, trade.OrderStatusCompleted.String()).
		Where("o.created_at >= ? AND o.created_at < ?", from.UTC(), to.UTC()).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	lines := make([]report.SoldLine, len(rows))
	for i, row := range rows {
		lines[i] = report.SoldLine{
			OrderID:    row.OrderID,
			ProductID:  row.ProductID,
			Quantity:   row.Quantity,
			TotalPrice: row.TotalPrice,
		}
	}
	return lines, nil
}

// Find returns one summary row
func (r *GormSalesSummaryRepository) Find(ctx context.Context, tenantID, productID uuid.UUID, period report.Period, start time.Time) (*report.ProductSalesSummary, error) {
	var model models.ProductSalesSummaryModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ? AND period = ? AND period_start = ?", tenantID, productID, string(period), start.UTC()).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.Errorf(shared.ErrNotFound, "No %s summary for product %s", period, productID)
		}
		return nil, err
	}
	summary := model.ToDomain()
	return &summary, nil
}

// Upsert inserts or replaces a summary row
func (r *GormSalesSummaryRepository) Upsert(ctx context.Context, summary *report.ProductSalesSummary) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}, {Name: "product_id"}, {Name: "period"}, {Name: "period_start"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"period_end", "total_quantity", "total_revenue", "total_orders", "updated_at",
		}),
	}).Create(models.ProductSalesSummaryModelFromDomain(summary)).Error
}

// Delete removes a summary row if present
func (r *GormSalesSummaryRepository) Delete(ctx context.Context, tenantID, productID uuid.UUID, period report.Period, start time.Time) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ? AND period = ? AND period_start = ?", tenantID, productID, string(period), start.UTC()).
		Delete(&models.ProductSalesSummaryModel{}).Error
}

// ListForPeriod lists every product summary of one period
func (r *GormSalesSummaryRepository) ListForPeriod(ctx context.Context, tenantID uuid.UUID, period report.Period, start time.Time) ([]report.ProductSalesSummary, error) {
	var rows []models.ProductSalesSummaryModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND period = ? AND period_start = ?", tenantID, string(period), start.UTC()).
		Order("total_revenue DESC, product_id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]report.ProductSalesSummary, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// Ensure GormSalesSummaryRepository implements report.SalesSummaryRepository
var _ report.SalesSummaryRepository = (*GormSalesSummaryRepository)(nil)
