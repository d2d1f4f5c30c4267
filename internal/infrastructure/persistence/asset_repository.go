package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finbooks/backend/internal/domain/asset"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAssetRepository implements asset.Repository using GORM
type GormAssetRepository struct {
	db *gorm.DB
}

// NewGormAssetRepository creates a new GormAssetRepository
func NewGormAssetRepository(db *gorm.DB) *GormAssetRepository {
	return &GormAssetRepository{db: db}
}

// FindByIDForTenant finds an asset by ID within a tenant
func (r *GormAssetRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*asset.Asset, error) {
	var model models.AssetModel
	if err := dbFrom(ctx, r.db).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveForDepreciation returns the ACTIVE assets whose
// depreciation has started on or before the cutoff, ordered by number
// for deterministic batch runs.
func (r *GormAssetRepository) FindActiveForDepreciation(ctx context.Context, tenantID uuid.UUID, startedOnOrBefore time.Time) ([]asset.Asset, error) {
	var assetModels []models.AssetModel
	if err := dbFrom(ctx, r.db).
		Where("tenant_id = ? AND status = ? AND depreciation_start_date <= ?",
			tenantID, asset.AssetStatusActive, startedOnOrBefore).
		Order("number ASC").
		Find(&assetModels).Error; err != nil {
		return nil, err
	}

	assets := make([]asset.Asset, len(assetModels))
	for i, model := range assetModels {
		assets[i] = *model.ToDomain()
	}
	return assets, nil
}

// Save persists an asset, translating duplicate numbers to CONFLICT
func (r *GormAssetRepository) Save(ctx context.Context, a *asset.Asset) error {
	model := models.AssetModelFromDomain(a)
	err := dbFrom(ctx, r.db).Save(model).Error
	return translateSaveError(err, fmt.Sprintf("Asset number %s already exists", a.Number))
}

// NextNumber computes the next asset number under the ASSET-{year}
// prefix by scanning the max existing suffix.
func (r *GormAssetRepository) NextNumber(ctx context.Context, tenantID uuid.UUID, year int) (string, error) {
	prefix := fmt.Sprintf("ASSET-%d-", year)
	max, err := maxNumberSuffix(dbFrom(ctx, r.db), "fixed_assets", tenantID, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefix, max+1), nil
}

// GormAssetCategoryRepository implements asset.CategoryRepository using GORM
type GormAssetCategoryRepository struct {
	db *gorm.DB
}

// NewGormAssetCategoryRepository creates a new GormAssetCategoryRepository
func NewGormAssetCategoryRepository(db *gorm.DB) *GormAssetCategoryRepository {
	return &GormAssetCategoryRepository{db: db}
}

// FindByIDForTenant finds a category by ID within a tenant
func (r *GormAssetCategoryRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*asset.Category, error) {
	var model models.AssetCategoryModel
	if err := dbFrom(ctx, r.db).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save persists a category
func (r *GormAssetCategoryRepository) Save(ctx context.Context, c *asset.Category) error {
	model := models.AssetCategoryModelFromDomain(c)
	return dbFrom(ctx, r.db).Save(model).Error
}

// GormDepreciationRepository implements asset.DepreciationRepository using GORM
type GormDepreciationRepository struct {
	db *gorm.DB
}

// NewGormDepreciationRepository creates a new GormDepreciationRepository
func NewGormDepreciationRepository(db *gorm.DB) *GormDepreciationRepository {
	return &GormDepreciationRepository{db: db}
}

// FindByAssetAndPeriod finds the record for one asset period
func (r *GormDepreciationRepository) FindByAssetAndPeriod(ctx context.Context, assetID uuid.UUID, period string) (*asset.Depreciation, error) {
	var model models.DepreciationModel
	if err := dbFrom(ctx, r.db).
		Where("asset_id = ? AND period = ?", assetID, period).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByAsset returns all records for an asset ordered by period
func (r *GormDepreciationRepository) FindByAsset(ctx context.Context, assetID uuid.UUID) ([]asset.Depreciation, error) {
	var recordModels []models.DepreciationModel
	if err := dbFrom(ctx, r.db).
		Where("asset_id = ?", assetID).
		Order("period ASC").
		Find(&recordModels).Error; err != nil {
		return nil, err
	}

	records := make([]asset.Depreciation, len(recordModels))
	for i, model := range recordModels {
		records[i] = *model.ToDomain()
	}
	return records, nil
}

// FindLatestForAsset returns the most recent record, or nil when the
// asset has never been depreciated.
func (r *GormDepreciationRepository) FindLatestForAsset(ctx context.Context, assetID uuid.UUID) (*asset.Depreciation, error) {
	var model models.DepreciationModel
	if err := dbFrom(ctx, r.db).
		Where("asset_id = ?", assetID).
		Order("period DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsForPeriod reports whether the asset already has a record for the period
func (r *GormDepreciationRepository) ExistsForPeriod(ctx context.Context, assetID uuid.UUID, period string) (bool, error) {
	var count int64
	if err := dbFrom(ctx, r.db).Model(&models.DepreciationModel{}).
		Where("asset_id = ? AND period = ?", assetID, period).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save persists a record. A duplicate (asset, period) surfaces as
// CONFLICT so a concurrent double-run loses cleanly.
func (r *GormDepreciationRepository) Save(ctx context.Context, d *asset.Depreciation) error {
	model := models.DepreciationModelFromDomain(d)
	err := dbFrom(ctx, r.db).Save(model).Error
	return translateSaveError(err, fmt.Sprintf("Depreciation for period %s already recorded", d.Period))
}
