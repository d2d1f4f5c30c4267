package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/finbooks/backend/internal/domain/costing"
	"github.com/finbooks/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStandardCostRepository implements costing.StandardCostRepository using GORM
type GormStandardCostRepository struct {
	db *gorm.DB
}

// NewGormStandardCostRepository creates a new GormStandardCostRepository
func NewGormStandardCostRepository(db *gorm.DB) *GormStandardCostRepository {
	return &GormStandardCostRepository{db: db}
}

// FindByIDForTenant finds a cost version by ID, or nil when absent
func (r *GormStandardCostRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*costing.StandardCost, error) {
	var model models.StandardCostModel
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

// FindEffective returns the version covering the given instant, or nil
func (r *GormStandardCostRepository) FindEffective(ctx context.Context, tenantID, productID uuid.UUID, at time.Time) (*costing.StandardCost, error) {
	var model models.StandardCostModel
	err := dbFrom(ctx, r.db).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Where("effective_from <= ?", at).
		Where("effective_to IS NULL OR effective_to > ?", at).
		Order("effective_from DESC").
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindOverlapping returns the versions whose effective range intersects
// [from, to). Both ranges are half-open; a nil end is open-ended.
func (r *GormStandardCostRepository) FindOverlapping(ctx context.Context, tenantID, productID uuid.UUID, from time.Time, to *time.Time) ([]*costing.StandardCost, error) {
	query := dbFrom(ctx, r.db).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Where("effective_to IS NULL OR effective_to > ?", from)
	if to != nil {
		query = query.Where("effective_from < ?", *to)
	}

	var costModels []models.StandardCostModel
	if err := query.Order("effective_from ASC").Find(&costModels).Error; err != nil {
		return nil, err
	}

	costs := make([]*costing.StandardCost, len(costModels))
	for i := range costModels {
		costs[i] = costModels[i].ToDomain()
	}
	return costs, nil
}

// FindAllForProduct returns all cost versions for a product, newest first
func (r *GormStandardCostRepository) FindAllForProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]*costing.StandardCost, error) {
	var costModels []models.StandardCostModel
	if err := dbFrom(ctx, r.db).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Order("effective_from DESC").
		Find(&costModels).Error; err != nil {
		return nil, err
	}

	costs := make([]*costing.StandardCost, len(costModels))
	for i := range costModels {
		costs[i] = costModels[i].ToDomain()
	}
	return costs, nil
}

// Save persists a cost version
func (r *GormStandardCostRepository) Save(ctx context.Context, cost *costing.StandardCost) error {
	model := models.StandardCostModelFromDomain(cost)
	return dbFrom(ctx, r.db).Save(model).Error
}

// GormBOMRepository implements costing.BOMRepository using GORM
type GormBOMRepository struct {
	db *gorm.DB
}

// NewGormBOMRepository creates a new GormBOMRepository
func NewGormBOMRepository(db *gorm.DB) *GormBOMRepository {
	return &GormBOMRepository{db: db}
}

// ComponentsFor returns the direct component lines of a parent product
func (r *GormBOMRepository) ComponentsFor(ctx context.Context, tenantID, parentProductID uuid.UUID) ([]*costing.BOMComponent, error) {
	var componentModels []models.BOMComponentModel
	if err := dbFrom(ctx, r.db).
		Where("tenant_id = ? AND parent_product_id = ?", tenantID, parentProductID).
		Order("created_at ASC").
		Find(&componentModels).Error; err != nil {
		return nil, err
	}

	components := make([]*costing.BOMComponent, len(componentModels))
	for i := range componentModels {
		components[i] = componentModels[i].ToDomain()
	}
	return components, nil
}

// Save persists a component line
func (r *GormBOMRepository) Save(ctx context.Context, component *costing.BOMComponent) error {
	model := models.BOMComponentModelFromDomain(component)
	return dbFrom(ctx, r.db).Save(model).Error
}
