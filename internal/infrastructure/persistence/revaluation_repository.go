package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/finbooks/backend/internal/domain/costing"
	"github.com/finbooks/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormRevaluationRepository implements costing.RevaluationRepository using GORM
type GormRevaluationRepository struct {
	db *gorm.DB
}

// NewGormRevaluationRepository creates a new GormRevaluationRepository
func NewGormRevaluationRepository(db *gorm.DB) *GormRevaluationRepository {
	return &GormRevaluationRepository{db: db}
}

// FindByIDForTenant finds a revaluation by ID, or nil when absent
func (r *GormRevaluationRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*costing.CostRevaluation, error) {
	var model models.RevaluationModel
	err := dbFrom(ctx, r.db).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists revaluations, most recent posting date first
func (r *GormRevaluationRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, status *costing.RevaluationStatus, limit, offset int) ([]*costing.CostRevaluation, error) {
	query := dbFrom(ctx, r.db).
		Where("tenant_id = ?", tenantID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	var revalModels []models.RevaluationModel
	if err := query.Order("posting_date DESC, number DESC").Find(&revalModels).Error; err != nil {
		return nil, err
	}

	revals := make([]*costing.CostRevaluation, len(revalModels))
	for i := range revalModels {
		revals[i] = revalModels[i].ToDomain()
	}
	return revals, nil
}

// CountForTenant counts revaluations matching the optional status filter
func (r *GormRevaluationRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, status *costing.RevaluationStatus) (int64, error) {
	query := dbFrom(ctx, r.db).Model(&models.RevaluationModel{}).
		Where("tenant_id = ?", tenantID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// Save persists a revaluation, translating duplicate numbers to CONFLICT
func (r *GormRevaluationRepository) Save(ctx context.Context, reval *costing.CostRevaluation) error {
	model := models.RevaluationModelFromDomain(reval)
	err := dbFrom(ctx, r.db).Save(model).Error
	return translateSaveError(err, fmt.Sprintf("Revaluation number %s already exists", reval.Number))
}

// NextNumber computes the next revaluation number under the
// REVAL-{year} prefix by scanning the max existing suffix.
func (r *GormRevaluationRepository) NextNumber(ctx context.Context, tenantID uuid.UUID, year int) (string, error) {
	prefix := fmt.Sprintf("REVAL-%d-", year)
	max, err := maxNumberSuffix(dbFrom(ctx, r.db), "cost_revaluations", tenantID, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefix, max+1), nil
}
