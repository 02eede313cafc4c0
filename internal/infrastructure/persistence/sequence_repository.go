package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/retailcore/internal/domain/sequence"
	"github.com/erp/retailcore/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSequenceRepository implements sequence.Repository using GORM
type GormSequenceRepository struct {
	db *gorm.DB
}

// NewGormSequenceRepository creates a new GormSequenceRepository
func NewGormSequenceRepository(db *gorm.DB) *GormSequenceRepository {
	return &GormSequenceRepository{db: db}
}

// Next ensures the counter row exists, locks it and increments it.
// Concurrent callers for the same (tenant, kind) queue on the row lock.
func (r *GormSequenceRepository) Next(ctx context.Context, tenantID uuid.UUID, kind sequence.Kind) (int64, error) {
	db := r.db.WithContext(ctx)
	now := time.Now()

	seed := models.SequenceModel{TenantID: tenantID, Kind: string(kind), Value: 0, UpdatedAt: now}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return 0, fmt.Errorf("failed to seed sequence %s: %w", kind, err)
	}

	var current models.SequenceModel
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND kind = ?", tenantID, string(kind)).
		First(&current).Error; err != nil {
		return 0, fmt.Errorf("failed to lock sequence %s: %w", kind, err)
	}

	next := current.Value + 1
	if err := db.Model(&models.SequenceModel{}).
		Where("tenant_id = ? AND kind = ?", tenantID, string(kind)).
		Updates(map[string]any{"value": next, "updated_at": now}).Error; err != nil {
		return 0, fmt.Errorf("failed to advance sequence %s: %w", kind, err)
	}
	return next, nil
}

// Current returns the last number issued, or 0
func (r *GormSequenceRepository) Current(ctx context.Context, tenantID uuid.UUID, kind sequence.Kind) (int64, error) {
	var current models.SequenceModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND kind = ?", tenantID, string(kind)).
		First(&current).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return current.Value, nil
}

// Ensure GormSequenceRepository implements sequence.Repository
var _ sequence.Repository = (*GormSequenceRepository)(nil)
