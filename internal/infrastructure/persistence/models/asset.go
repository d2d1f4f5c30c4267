package models

import (
	"time"

	"github.com/finbooks/backend/internal/domain/asset"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AssetCategoryModel is the persistence model for the asset Category aggregate root.
type AssetCategoryModel struct {
	TenantAggregateModel
	Name                           string          `gorm:"type:varchar(200);not null"`
	DepreciationExpenseAccountID   uuid.UUID       `gorm:"type:uuid;not null"`
	AccumulatedDepreciationAccount uuid.UUID       `gorm:"type:uuid;not null"`
	JurisdictionRatePercent        decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (AssetCategoryModel) TableName() string {
	return "asset_categories"
}

// ToDomain converts the persistence model to a domain Category entity.
func (m *AssetCategoryModel) ToDomain() *asset.Category {
	c := &asset.Category{
		Name:                           m.Name,
		DepreciationExpenseAccountID:   m.DepreciationExpenseAccountID,
		AccumulatedDepreciationAccount: m.AccumulatedDepreciationAccount,
		JurisdictionRatePercent:        m.JurisdictionRatePercent,
	}
	m.PopulateTenantAggregateRoot(&c.TenantAggregateRoot)
	return c
}

// FromDomain populates the persistence model from a domain Category entity.
func (m *AssetCategoryModel) FromDomain(c *asset.Category) {
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	m.Name = c.Name
	m.DepreciationExpenseAccountID = c.DepreciationExpenseAccountID
	m.AccumulatedDepreciationAccount = c.AccumulatedDepreciationAccount
	m.JurisdictionRatePercent = c.JurisdictionRatePercent
}

// AssetCategoryModelFromDomain creates a new persistence model from a domain Category.
func AssetCategoryModelFromDomain(c *asset.Category) *AssetCategoryModel {
	m := &AssetCategoryModel{}
	m.FromDomain(c)
	return m
}

// AssetModel is the persistence model for the Asset aggregate root.
type AssetModel struct {
	TenantAggregateModel
	Number                  string                   `gorm:"type:varchar(30);not null;uniqueIndex:idx_asset_tenant_number,priority:2"`
	Name                    string                   `gorm:"type:varchar(200);not null"`
	CategoryID              uuid.UUID                `gorm:"type:uuid;not null;index"`
	PurchasePrice           decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	SalvageValue            decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	UsefulLifeYears         int                      `gorm:"not null"`
	Method                  asset.DepreciationMethod `gorm:"type:varchar(30);not null"`
	DepreciationStartDate   time.Time                `gorm:"not null;index"`
	BookValue               decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	AccumulatedDepreciation decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	TaxBookValue            decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	Status                  asset.AssetStatus        `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	DisposedAt              *time.Time
}

// TableName returns the table name for GORM
func (AssetModel) TableName() string {
	return "fixed_assets"
}

// ToDomain converts the persistence model to a domain Asset entity.
func (m *AssetModel) ToDomain() *asset.Asset {
	a := &asset.Asset{
		Number:                  m.Number,
		Name:                    m.Name,
		CategoryID:              m.CategoryID,
		PurchasePrice:           m.PurchasePrice,
		SalvageValue:            m.SalvageValue,
		UsefulLifeYears:         m.UsefulLifeYears,
		Method:                  m.Method,
		DepreciationStartDate:   m.DepreciationStartDate,
		BookValue:               m.BookValue,
		AccumulatedDepreciation: m.AccumulatedDepreciation,
		TaxBookValue:            m.TaxBookValue,
		Status:                  m.Status,
		DisposedAt:              m.DisposedAt,
	}
	m.PopulateTenantAggregateRoot(&a.TenantAggregateRoot)
	return a
}

// FromDomain populates the persistence model from a domain Asset entity.
func (m *AssetModel) FromDomain(a *asset.Asset) {
	m.FromDomainTenantAggregateRoot(a.TenantAggregateRoot)
	m.Number = a.Number
	m.Name = a.Name
	m.CategoryID = a.CategoryID
	m.PurchasePrice = a.PurchasePrice
	m.SalvageValue = a.SalvageValue
	m.UsefulLifeYears = a.UsefulLifeYears
	m.Method = a.Method
	m.DepreciationStartDate = a.DepreciationStartDate
	m.BookValue = a.BookValue
	m.AccumulatedDepreciation = a.AccumulatedDepreciation
	m.TaxBookValue = a.TaxBookValue
	m.Status = a.Status
	m.DisposedAt = a.DisposedAt
}

// AssetModelFromDomain creates a new persistence model from a domain Asset.
func AssetModelFromDomain(a *asset.Asset) *AssetModel {
	m := &AssetModel{}
	m.FromDomain(a)
	return m
}

// DepreciationModel is the persistence model for one period's depreciation record.
// The unique (asset_id, period) index is what makes concurrent monthly
// runs lose cleanly instead of double-charging a period.
type DepreciationModel struct {
	BaseModel
	AssetID             uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_depreciation_asset_period,priority:1"`
	Period              string          `gorm:"type:varchar(7);not null;uniqueIndex:idx_depreciation_asset_period,priority:2"`
	OpeningBookValue    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Amount              decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ClosingBookValue    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TaxOpeningBookValue decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TaxAmount           decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TaxClosingBookValue decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Posted              bool            `gorm:"not null;default:false"`
	TransactionID       *uuid.UUID      `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (DepreciationModel) TableName() string {
	return "asset_depreciations"
}

// ToDomain converts the persistence model to a domain Depreciation record.
func (m *DepreciationModel) ToDomain() *asset.Depreciation {
	return &asset.Depreciation{
		BaseEntity:          m.BaseModel.ToDomain(),
		AssetID:             m.AssetID,
		Period:              m.Period,
		OpeningBookValue:    m.OpeningBookValue,
		Amount:              m.Amount,
		ClosingBookValue:    m.ClosingBookValue,
		TaxOpeningBookValue: m.TaxOpeningBookValue,
		TaxAmount:           m.TaxAmount,
		TaxClosingBookValue: m.TaxClosingBookValue,
		Posted:              m.Posted,
		TransactionID:       m.TransactionID,
	}
}

// FromDomain populates the persistence model from a domain Depreciation record.
func (m *DepreciationModel) FromDomain(d *asset.Depreciation) {
	m.FromDomainBaseEntity(d.BaseEntity)
	m.AssetID = d.AssetID
	m.Period = d.Period
	m.OpeningBookValue = d.OpeningBookValue
	m.Amount = d.Amount
	m.ClosingBookValue = d.ClosingBookValue
	m.TaxOpeningBookValue = d.TaxOpeningBookValue
	m.TaxAmount = d.TaxAmount
	m.TaxClosingBookValue = d.TaxClosingBookValue
	m.Posted = d.Posted
	m.TransactionID = d.TransactionID
}

// DepreciationModelFromDomain creates a new persistence model from a domain Depreciation.
func DepreciationModelFromDomain(d *asset.Depreciation) *DepreciationModel {
	m := &DepreciationModel{}
	m.FromDomain(d)
	return m
}
