package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/finbooks/backend/internal/domain/costing"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProductCostReader implements costing.ProductCostReader over the
// product valuation snapshot.
type GormProductCostReader struct {
	db *gorm.DB
}

// NewGormProductCostReader creates a new GormProductCostReader
func NewGormProductCostReader(db *gorm.DB) *GormProductCostReader {
	return &GormProductCostReader{db: db}
}

// CostFor returns the valuation snapshot for one product
func (r *GormProductCostReader) CostFor(ctx context.Context, tenantID, productID uuid.UUID) (*costing.ProductCost, error) {
	var model models.ProductModel
	err := dbFrom(ctx, r.db).
		Where("tenant_id = ? AND id = ?", tenantID, productID).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.NewNotFoundError("Product not found")
	}
	if err != nil {
		return nil, err
	}
	return model.ToProductCost(), nil
}

// CostsWithStandard returns the valuation snapshots of all active
// products that have a standard cost version effective at the instant.
func (r *GormProductCostReader) CostsWithStandard(ctx context.Context, tenantID uuid.UUID, at time.Time) ([]*costing.ProductCost, error) {
	var productModels []models.ProductModel
	err := dbFrom(ctx, r.db).
		Where("tenant_id = ? AND active = ?", tenantID, true).
		Where(`id IN (
			SELECT product_id FROM standard_costs
			WHERE tenant_id = ? AND effective_from <= ?
			AND (effective_to IS NULL OR effective_to > ?)
		)`, tenantID, at, at).
		Order("name ASC").
		Find(&productModels).Error
	if err != nil {
		return nil, err
	}

	costs := make([]*costing.ProductCost, len(productModels))
	for i := range productModels {
		costs[i] = productModels[i].ToProductCost()
	}
	return costs, nil
}
