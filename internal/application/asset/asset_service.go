package asset

import (
	"context"
	"time"

	"github.com/finbooks/backend/internal/domain/asset"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AssetService manages fixed-asset and category lifecycle
type AssetService struct {
	assetRepo    asset.Repository
	categoryRepo asset.CategoryRepository
}

// NewAssetService creates a new AssetService
func NewAssetService(assetRepo asset.Repository, categoryRepo asset.CategoryRepository) *AssetService {
	return &AssetService{
		assetRepo:    assetRepo,
		categoryRepo: categoryRepo,
	}
}

// CreateCategoryRequest represents a request to create an asset category
type CreateCategoryRequest struct {
	Name                    string          `json:"name" binding:"required"`
	ExpenseAccountID        uuid.UUID       `json:"expense_account_id" binding:"required"`
	AccumulatedAccountID    uuid.UUID       `json:"accumulated_account_id" binding:"required"`
	JurisdictionRatePercent decimal.Decimal `json:"jurisdiction_rate_percent"`
}

// CreateAssetRequest represents a request to register a depreciable asset
type CreateAssetRequest struct {
	Name                  string          `json:"name" binding:"required"`
	CategoryID            uuid.UUID       `json:"category_id" binding:"required"`
	PurchasePrice         decimal.Decimal `json:"purchase_price" binding:"required"`
	SalvageValue          decimal.Decimal `json:"salvage_value"`
	UsefulLifeYears       int             `json:"useful_life_years" binding:"required,min=1"`
	Method                string          `json:"method" binding:"required"`
	DepreciationStartDate time.Time       `json:"depreciation_start_date" binding:"required"`
}

// AssetResponse represents an asset in API responses
type AssetResponse struct {
	ID                      uuid.UUID       `json:"id"`
	Number                  string          `json:"number"`
	Name                    string          `json:"name"`
	CategoryID              uuid.UUID       `json:"category_id"`
	PurchasePrice           decimal.Decimal `json:"purchase_price"`
	SalvageValue            decimal.Decimal `json:"salvage_value"`
	UsefulLifeYears         int             `json:"useful_life_years"`
	Method                  string          `json:"method"`
	DepreciationStartDate   time.Time       `json:"depreciation_start_date"`
	BookValue               decimal.Decimal `json:"book_value"`
	AccumulatedDepreciation decimal.Decimal `json:"accumulated_depreciation"`
	TaxBookValue            decimal.Decimal `json:"tax_book_value"`
	Status                  string          `json:"status"`
	FullyDepreciated        bool            `json:"fully_depreciated"`
	DisposedAt              *time.Time      `json:"disposed_at,omitempty"`
	CreatedAt               time.Time       `json:"created_at"`
	Version                 int             `json:"version"`
}

// CategoryResponse represents an asset category in API responses
type CategoryResponse struct {
	ID                      uuid.UUID       `json:"id"`
	Name                    string          `json:"name"`
	ExpenseAccountID        uuid.UUID       `json:"expense_account_id"`
	AccumulatedAccountID    uuid.UUID       `json:"accumulated_account_id"`
	JurisdictionRatePercent decimal.Decimal `json:"jurisdiction_rate_percent"`
	DecliningRate           decimal.Decimal `json:"declining_rate"`
}

// CreateCategory creates an asset category
func (s *AssetService) CreateCategory(ctx context.Context, tenantID uuid.UUID, req CreateCategoryRequest) (*CategoryResponse, error) {
	category, err := asset.NewCategory(tenantID, req.Name, req.ExpenseAccountID, req.AccumulatedAccountID, req.JurisdictionRatePercent)
	if err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}
	return toCategoryResponse(category), nil
}

// CreateAsset registers a depreciable asset and assigns its number
func (s *AssetService) CreateAsset(ctx context.Context, tenantID uuid.UUID, req CreateAssetRequest) (*AssetResponse, error) {
	category, err := s.categoryRepo.FindByIDForTenant(ctx, tenantID, req.CategoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, shared.NewNotFoundError("Asset category not found")
	}

	number, err := s.assetRepo.NextNumber(ctx, tenantID, req.DepreciationStartDate.Year())
	if err != nil {
		return nil, err
	}

	a, err := asset.NewAsset(tenantID, number, req.Name, req.CategoryID,
		req.PurchasePrice, req.SalvageValue, req.UsefulLifeYears,
		asset.DepreciationMethod(req.Method), req.DepreciationStartDate)
	if err != nil {
		return nil, err
	}

	if err := s.assetRepo.Save(ctx, a); err != nil {
		return nil, err
	}
	return toAssetResponse(a), nil
}

// GetAsset fetches one asset within the tenant's scope
func (s *AssetService) GetAsset(ctx context.Context, tenantID, id uuid.UUID) (*AssetResponse, error) {
	a, err := s.findAsset(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return toAssetResponse(a), nil
}

// DisposeAsset transitions an asset to its terminal DISPOSED state
func (s *AssetService) DisposeAsset(ctx context.Context, tenantID, id uuid.UUID) (*AssetResponse, error) {
	a, err := s.findAsset(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := a.Dispose(); err != nil {
		return nil, err
	}
	if err := s.assetRepo.Save(ctx, a); err != nil {
		return nil, err
	}
	return toAssetResponse(a), nil
}

func (s *AssetService) findAsset(ctx context.Context, tenantID, id uuid.UUID) (*asset.Asset, error) {
	a, err := s.assetRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, shared.NewNotFoundError("Asset not found")
	}
	return a, nil
}

func toAssetResponse(a *asset.Asset) *AssetResponse {
	return &AssetResponse{
		ID:                      a.ID,
		Number:                  a.Number,
		Name:                    a.Name,
		CategoryID:              a.CategoryID,
		PurchasePrice:           a.PurchasePrice,
		SalvageValue:            a.SalvageValue,
		UsefulLifeYears:         a.UsefulLifeYears,
		Method:                  a.Method.String(),
		DepreciationStartDate:   a.DepreciationStartDate,
		BookValue:               a.BookValue,
		AccumulatedDepreciation: a.AccumulatedDepreciation,
		TaxBookValue:            a.TaxBookValue,
		Status:                  a.Status.String(),
		FullyDepreciated:        a.FullyDepreciated(),
		DisposedAt:              a.DisposedAt,
		CreatedAt:               a.CreatedAt,
		Version:                 a.Version,
	}
}

func toCategoryResponse(c *asset.Category) *CategoryResponse {
	return &CategoryResponse{
		ID:                      c.ID,
		Name:                    c.Name,
		ExpenseAccountID:        c.DepreciationExpenseAccountID,
		AccumulatedAccountID:    c.AccumulatedDepreciationAccount,
		JurisdictionRatePercent: c.JurisdictionRatePercent,
		DecliningRate:           c.DecliningRate(),
	}
}
