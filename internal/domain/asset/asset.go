package asset

import (
	"fmt"
	"time"

	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AssetStatus represents the lifecycle state of a fixed asset
type AssetStatus string

const (
	AssetStatusActive   AssetStatus = "ACTIVE"
	AssetStatusDisposed AssetStatus = "DISPOSED" // terminal
)

// IsValid checks if the status is a valid AssetStatus
func (s AssetStatus) IsValid() bool {
	return s == AssetStatusActive || s == AssetStatusDisposed
}

// String returns the string representation of AssetStatus
func (s AssetStatus) String() string {
	return string(s)
}

// Category groups assets and carries the GL accounts used when posting
// depreciation, plus the jurisdiction's statutory declining-balance rate
// for the parallel tax book.
type Category struct {
	shared.TenantAggregateRoot
	Name                           string          `json:"name"`
	DepreciationExpenseAccountID   uuid.UUID       `json:"depreciation_expense_account_id"`
	AccumulatedDepreciationAccount uuid.UUID       `json:"accumulated_depreciation_account_id"`
	JurisdictionRatePercent        decimal.Decimal `json:"jurisdiction_rate_percent"`
}

// DefaultDecliningRate is used when a category carries no jurisdiction rate
var DefaultDecliningRate = decimal.NewFromInt(20)

// NewCategory creates an asset category
func NewCategory(tenantID uuid.UUID, name string, expenseAccountID, accumulatedAccountID uuid.UUID, jurisdictionRate decimal.Decimal) (*Category, error) {
	if name == "" {
		return nil, shared.NewValidationError("Category name cannot be empty")
	}
	if expenseAccountID == uuid.Nil || accumulatedAccountID == uuid.Nil {
		return nil, shared.NewValidationError("Category requires depreciation expense and accumulated depreciation accounts")
	}
	if jurisdictionRate.IsNegative() {
		return nil, shared.NewValidationError("Jurisdiction rate cannot be negative")
	}
	return &Category{
		TenantAggregateRoot:            shared.NewTenantAggregateRoot(tenantID),
		Name:                           name,
		DepreciationExpenseAccountID:   expenseAccountID,
		AccumulatedDepreciationAccount: accumulatedAccountID,
		JurisdictionRatePercent:        jurisdictionRate,
	}, nil
}

// DecliningRate returns the jurisdiction rate, falling back to the default
func (c *Category) DecliningRate() decimal.Decimal {
	if c.JurisdictionRatePercent.IsZero() {
		return DefaultDecliningRate
	}
	return c.JurisdictionRatePercent
}

// Asset is a depreciable resource. Book value and accumulated
// depreciation are cached from posted period records; the schedule is
// always recomputable from purchase price and persisted periods.
type Asset struct {
	shared.TenantAggregateRoot
	Number                  string             `json:"number"`
	Name                    string             `json:"name"`
	CategoryID              uuid.UUID          `json:"category_id"`
	PurchasePrice           decimal.Decimal    `json:"purchase_price"`
	SalvageValue            decimal.Decimal    `json:"salvage_value"`
	UsefulLifeYears         int                `json:"useful_life_years"`
	Method                  DepreciationMethod `json:"method"`
	DepreciationStartDate   time.Time          `json:"depreciation_start_date"`
	BookValue               decimal.Decimal    `json:"book_value"`
	AccumulatedDepreciation decimal.Decimal    `json:"accumulated_depreciation"`
	TaxBookValue            decimal.Decimal    `json:"tax_book_value"`
	Status                  AssetStatus        `json:"status"`
	DisposedAt              *time.Time         `json:"disposed_at,omitempty"`
}

// NewAsset creates an ACTIVE asset with book values initialized to cost
func NewAsset(
	tenantID uuid.UUID,
	number, name string,
	categoryID uuid.UUID,
	purchasePrice, salvageValue decimal.Decimal,
	usefulLifeYears int,
	method DepreciationMethod,
	startDate time.Time,
) (*Asset, error) {
	if number == "" {
		return nil, shared.NewValidationError("Asset number cannot be empty")
	}
	if name == "" {
		return nil, shared.NewValidationError("Asset name cannot be empty")
	}
	if categoryID == uuid.Nil {
		return nil, shared.NewValidationError("Asset category is required")
	}
	if purchasePrice.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("Purchase price must be positive")
	}
	if salvageValue.IsNegative() {
		return nil, shared.NewValidationError("Salvage value cannot be negative")
	}
	if salvageValue.GreaterThan(purchasePrice) {
		return nil, shared.NewValidationError("Salvage value cannot exceed purchase price")
	}
	if usefulLifeYears <= 0 {
		return nil, shared.NewValidationError("Useful life must be at least one year")
	}
	if !method.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("Invalid depreciation method: %s", method))
	}
	if startDate.IsZero() {
		return nil, shared.NewValidationError("Depreciation start date is required")
	}

	return &Asset{
		TenantAggregateRoot:     shared.NewTenantAggregateRoot(tenantID),
		Number:                  number,
		Name:                    name,
		CategoryID:              categoryID,
		PurchasePrice:           purchasePrice,
		SalvageValue:            salvageValue,
		UsefulLifeYears:         usefulLifeYears,
		Method:                  method,
		DepreciationStartDate:   startDate,
		BookValue:               purchasePrice,
		AccumulatedDepreciation: decimal.Zero,
		TaxBookValue:            purchasePrice,
		Status:                  AssetStatusActive,
	}, nil
}

// IsActive returns true if the asset can still be depreciated
func (a *Asset) IsActive() bool {
	return a.Status == AssetStatusActive
}

// Dispose transitions the asset to its terminal DISPOSED state
func (a *Asset) Dispose() error {
	if a.Status != AssetStatusActive {
		return shared.NewInvalidStateError(fmt.Sprintf("Cannot dispose asset in %s status", a.Status))
	}
	now := time.Now()
	a.Status = AssetStatusDisposed
	a.DisposedAt = &now
	a.Touch()
	a.IncrementVersion()
	return nil
}

// ApplyPostedDepreciation updates the cached book value fields after a
// period record has been posted to the general ledger
func (a *Asset) ApplyPostedDepreciation(record *Depreciation) error {
	if !a.IsActive() {
		return shared.NewInvalidStateError("Cannot depreciate a non-active asset")
	}
	if record.AssetID != a.ID {
		return shared.NewValidationError("Depreciation record belongs to a different asset")
	}
	a.BookValue = record.ClosingBookValue
	a.AccumulatedDepreciation = a.AccumulatedDepreciation.Add(record.Amount)
	a.TaxBookValue = record.TaxClosingBookValue
	a.Touch()
	a.IncrementVersion()
	return nil
}

// FullyDepreciated reports whether the book value has reached salvage
func (a *Asset) FullyDepreciated() bool {
	return a.BookValue.LessThanOrEqual(a.SalvageValue)
}

// Depreciation is one monthly period record, unique per (asset, period).
// Period keys use the string form "YYYY-MM".
type Depreciation struct {
	shared.BaseEntity
	AssetID             uuid.UUID       `json:"asset_id"`
	Period              string          `json:"period"`
	OpeningBookValue    decimal.Decimal `json:"opening_book_value"`
	Amount              decimal.Decimal `json:"amount"`
	ClosingBookValue    decimal.Decimal `json:"closing_book_value"`
	TaxOpeningBookValue decimal.Decimal `json:"tax_opening_book_value"`
	TaxAmount           decimal.Decimal `json:"tax_amount"`
	TaxClosingBookValue decimal.Decimal `json:"tax_closing_book_value"`
	Posted              bool            `json:"posted"`
	TransactionID       *uuid.UUID      `json:"transaction_id,omitempty"`
}

// MarkPosted links the record to its GL transaction. A period can never
// be posted twice.
func (d *Depreciation) MarkPosted(transactionID uuid.UUID) error {
	if d.Posted {
		return shared.NewInvalidStateError(fmt.Sprintf("Depreciation for period %s is already posted", d.Period))
	}
	if d.Amount.IsZero() {
		return shared.NewValidationError("Cannot post a zero depreciation amount")
	}
	d.Posted = true
	d.TransactionID = &transactionID
	d.Touch()
	return nil
}

// PeriodKey formats a time as the canonical "YYYY-MM" period key
func PeriodKey(t time.Time) string {
	return t.Format("2006-01")
}

// ParsePeriod validates and parses a "YYYY-MM" period key
func ParsePeriod(period string) (time.Time, error) {
	t, err := time.Parse("2006-01", period)
	if err != nil {
		return time.Time{}, shared.NewValidationError(fmt.Sprintf("Invalid period %q, expected YYYY-MM", period))
	}
	return t, nil
}

// PeriodEnd returns the last instant of the month identified by period
func PeriodEnd(period string) (time.Time, error) {
	start, err := ParsePeriod(period)
	if err != nil {
		return time.Time{}, err
	}
	return start.AddDate(0, 1, 0).Add(-time.Nanosecond), nil
}
