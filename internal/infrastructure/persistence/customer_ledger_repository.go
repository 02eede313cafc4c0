package persistence

import (
	"context"
	"errors"

	"github.com/erp/retailcore/internal/domain/finance"
	"github.com/erp/retailcore/internal/domain/shared"
	"github.com/erp/retailcore/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCustomerLedgerRepository implements finance.CustomerLedgerRepository using GORM
type GormCustomerLedgerRepository struct {
	db *gorm.DB
}

// NewGormCustomerLedgerRepository creates a new GormCustomerLedgerRepository
func NewGormCustomerLedgerRepository(db *gorm.DB) *GormCustomerLedgerRepository {
	return &GormCustomerLedgerRepository{db: db}
}

// Append inserts ledger entries
func (r *GormCustomerLedgerRepository) Append(ctx context.Context, entries ...*finance.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]*models.CustomerLedgerEntryModel, len(entries))
	for i, e := range entries {
		rows[i] = models.CustomerLedgerEntryModelFromDomain(e)
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// FindByID finds a ledger entry
func (r *GormCustomerLedgerRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*finance.LedgerEntry, error) {
	var model models.CustomerLedgerEntryModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.Errorf(shared.ErrNotFound, "Ledger entry %s not found", id)
		}
		return nil, err
	}
	entry := model.ToDomain()
	return &entry, nil
}

// FindByCustomer lists a customer's entries, oldest first
func (r *GormCustomerLedgerRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]finance.LedgerEntry, error) {
	var rows []models.CustomerLedgerEntryModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND customer_id = ?", tenantID, customerID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]finance.LedgerEntry, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// Delete removes a ledger entry
func (r *GormCustomerLedgerRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&models.CustomerLedgerEntryModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.Errorf(shared.ErrNotFound, "Ledger entry %s not found", id)
	}
	return nil
}

// ListCustomerIDs lists the customers that have ledger entries
func (r *GormCustomerLedgerRepository) ListCustomerIDs(ctx context.Context, tenantID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.CustomerLedgerEntryModel{}).
		Where("tenant_id = ?", tenantID).
		Distinct().
		Order("customer_id ASC").
		Pluck("customer_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Ensure GormCustomerLedgerRepository implements finance.CustomerLedgerRepository
var _ finance.CustomerLedgerRepository = (*GormCustomerLedgerRepository)(nil)

// GormSnapshotRepository implements finance.SnapshotRepository using GORM
type GormSnapshotRepository struct {
	db *gorm.DB
}

// NewGormSnapshotRepository creates a new GormSnapshotRepository
func NewGormSnapshotRepository(db *gorm.DB) *GormSnapshotRepository {
	return &GormSnapshotRepository{db: db}
}

// FindByCustomer returns the stored snapshot of a customer
func (r *GormSnapshotRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (*finance.CustomerFinancialSnapshot, error) {
	var model models.CustomerFinancialSnapshotModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND customer_id = ?", tenantID, customerID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.Errorf(shared.ErrNotFound, "No financial snapshot for customer %s", customerID)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Upsert inserts or replaces a snapshot
func (r *GormSnapshotRepository) Upsert(ctx context.Context, snapshot *finance.CustomerFinancialSnapshot) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}, {Name: "customer_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_sales", "total_payments", "total_refunds", "total_debt", "entry_count", "updated_at",
		}),
	}).Create(models.CustomerFinancialSnapshotModelFromDomain(snapshot)).Error
}

// Ensure GormSnapshotRepository implements finance.SnapshotRepository
var _ finance.SnapshotRepository = (*GormSnapshotRepository)(nil)
