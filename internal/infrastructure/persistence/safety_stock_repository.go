package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/finbooks/backend/internal/domain/planning"
	"github.com/finbooks/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSafetyStockRepository implements planning.Repository using GORM
type GormSafetyStockRepository struct {
	db *gorm.DB
}

// NewGormSafetyStockRepository creates a new GormSafetyStockRepository
func NewGormSafetyStockRepository(db *gorm.DB) *GormSafetyStockRepository {
	return &GormSafetyStockRepository{db: db}
}

// FindEffective returns the active record in force at the given time
// for the product/warehouse pair, or nil when none exists.
func (r *GormSafetyStockRepository) FindEffective(ctx context.Context, tenantID, productID, warehouseID uuid.UUID, at time.Time) (*planning.SafetyStock, error) {
	var model models.SafetyStockModel
	err := dbFrom(ctx, r.db).
		Where("tenant_id = ? AND product_id = ? AND warehouse_id = ?", tenantID, productID, warehouseID).
		Where("active = ? AND effective_from <= ?", true, at).
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

// FindAllForProduct returns the full recommendation history for a
// product across warehouses, most recent first.
func (r *GormSafetyStockRepository) FindAllForProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]planning.SafetyStock, error) {
	var recordModels []models.SafetyStockModel
	if err := dbFrom(ctx, r.db).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Order("effective_from DESC").
		Find(&recordModels).Error; err != nil {
		return nil, err
	}

	records := make([]planning.SafetyStock, len(recordModels))
	for i, model := range recordModels {
		records[i] = *model.ToDomain()
	}
	return records, nil
}

// Save persists a safety stock record
func (r *GormSafetyStockRepository) Save(ctx context.Context, s *planning.SafetyStock) error {
	model := models.SafetyStockModelFromDomain(s)
	return dbFrom(ctx, r.db).Save(model).Error
}
