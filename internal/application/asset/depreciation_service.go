package asset

import (
	"context"
	"fmt"
	"time"

	"github.com/finbooks/backend/internal/domain/asset"
	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DepreciationService computes depreciation schedules, posts period
// records to the general ledger and runs the monthly batch.
type DepreciationService struct {
	assetRepo    asset.Repository
	categoryRepo asset.CategoryRepository
	depRepo      asset.DepreciationRepository
	txRepo       ledger.TransactionRepository
	uow          shared.UnitOfWork
}

// NewDepreciationService creates a new DepreciationService
func NewDepreciationService(
	assetRepo asset.Repository,
	categoryRepo asset.CategoryRepository,
	depRepo asset.DepreciationRepository,
	txRepo ledger.TransactionRepository,
	uow shared.UnitOfWork,
) *DepreciationService {
	return &DepreciationService{
		assetRepo:    assetRepo,
		categoryRepo: categoryRepo,
		depRepo:      depRepo,
		txRepo:       txRepo,
		uow:          uow,
	}
}

// ScheduleLineResponse is one period of a depreciation schedule
type ScheduleLineResponse struct {
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

// MonthlyRunResult summarizes one batch run. Per-asset failures are
// collected, never fatal to the batch.
type MonthlyRunResult struct {
	Period            string              `json:"period"`
	AssetsProcessed   int                 `json:"assets_processed"`
	AssetsSkipped     int                 `json:"assets_skipped"`
	TotalDepreciation decimal.Decimal     `json:"total_depreciation"`
	Errors            []MonthlyRunFailure `json:"errors"`
}

// MonthlyRunFailure is one asset the batch could not process
type MonthlyRunFailure struct {
	AssetID uuid.UUID `json:"asset_id"`
	Number  string    `json:"number"`
	Reason  string    `json:"reason"`
}

// GenerateSchedule returns the asset's full projected schedule from its
// depreciation start date, recomputed from scratch on every call
func (s *DepreciationService) GenerateSchedule(ctx context.Context, tenantID, assetID uuid.UUID) ([]ScheduleLineResponse, error) {
	a, category, err := s.findAssetWithCategory(ctx, tenantID, assetID)
	if err != nil {
		return nil, err
	}

	schedule, err := asset.GenerateSchedule(a, category)
	if err != nil {
		return nil, err
	}

	// overlay posted flags from persisted records
	persisted, err := s.depRepo.FindByAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	posted := make(map[string]*asset.Depreciation, len(persisted))
	for i := range persisted {
		posted[persisted[i].Period] = &persisted[i]
	}

	lines := make([]ScheduleLineResponse, 0, len(schedule))
	for i := range schedule {
		line := toScheduleLine(&schedule[i])
		if rec, ok := posted[schedule[i].Period]; ok {
			line.Posted = rec.Posted
			line.TransactionID = rec.TransactionID
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// ComputePeriod computes and persists one period record for an asset,
// chaining from the latest persisted closing values. An existing record
// for the period is a conflict.
func (s *DepreciationService) ComputePeriod(ctx context.Context, tenantID, assetID uuid.UUID, period string) (*ScheduleLineResponse, error) {
	a, category, err := s.findAssetWithCategory(ctx, tenantID, assetID)
	if err != nil {
		return nil, err
	}

	exists, err := s.depRepo.ExistsForPeriod(ctx, assetID, period)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewConflictError(fmt.Sprintf("Depreciation for asset %s period %s already exists", a.Number, period))
	}

	rec, err := s.computeFromPersisted(ctx, a, category, period)
	if err != nil {
		return nil, err
	}
	if err := s.depRepo.Save(ctx, rec); err != nil {
		return nil, err
	}
	line := toScheduleLine(rec)
	return &line, nil
}

// PostToGL posts one unposted period record to the general ledger:
// DEBIT the category's depreciation expense account, CREDIT its
// accumulated depreciation account. The transaction, the record's
// posted flag and the asset's cached book values commit atomically.
func (s *DepreciationService) PostToGL(ctx context.Context, tenantID, assetID uuid.UUID, period string, userID uuid.UUID) (*ScheduleLineResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "depreciation", "PostToGL",
		telemetry.WithAttribute("asset.id", assetID.String()),
		telemetry.WithAttribute("period", period))
	defer span.End()

	a, category, err := s.findAssetWithCategory(ctx, tenantID, assetID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	rec, err := s.depRepo.FindByAssetAndPeriod(ctx, assetID, period)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, shared.NewNotFoundError(fmt.Sprintf("No depreciation record for asset %s period %s", a.Number, period))
	}

	number, err := s.txRepo.NextNumber(ctx, tenantID, time.Now().Year())
	if err != nil {
		return nil, err
	}

	sourceType := ledger.SourceTypeAsset
	tx, err := ledger.NewTransaction(tenantID, number, time.Now(), ledger.TransactionTypeDepreciation,
		fmt.Sprintf("Depreciation %s for asset %s", period, a.Number),
		[]ledger.EntryInput{
			{AccountID: category.DepreciationExpenseAccountID, Type: ledger.EntryTypeDebit, Amount: rec.Amount},
			{AccountID: category.AccumulatedDepreciationAccount, Type: ledger.EntryTypeCredit, Amount: rec.Amount},
		}, &sourceType, &assetID)
	if err != nil {
		return nil, err
	}

	if err := rec.MarkPosted(tx.ID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := tx.Post(userID); err != nil {
		return nil, err
	}
	if err := a.ApplyPostedDepreciation(rec); err != nil {
		return nil, err
	}

	err = s.uow.Execute(ctx, func(ctx context.Context) error {
		if err := s.txRepo.Save(ctx, tx); err != nil {
			return err
		}
		if err := s.depRepo.Save(ctx, rec); err != nil {
			return err
		}
		return s.assetRepo.Save(ctx, a)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	line := toScheduleLine(rec)
	return &line, nil
}

// RunMonthly computes and persists the period record for every ACTIVE
// asset whose depreciation has started by the period's end. Assets that
// already carry a record for the period are skipped, so re-running the
// same month is idempotent. Per-asset failures are collected.
func (s *DepreciationService) RunMonthly(ctx context.Context, tenantID uuid.UUID, period string) (*MonthlyRunResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "depreciation", "RunMonthly",
		telemetry.WithAttribute("period", period))
	defer span.End()

	periodEnd, err := asset.PeriodEnd(period)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	assets, err := s.assetRepo.FindActiveForDepreciation(ctx, tenantID, periodEnd)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	result := &MonthlyRunResult{
		Period:            period,
		TotalDepreciation: decimal.Zero,
		Errors:            make([]MonthlyRunFailure, 0),
	}

	for i := range assets {
		a := &assets[i]

		exists, err := s.depRepo.ExistsForPeriod(ctx, a.ID, period)
		if err != nil {
			result.Errors = append(result.Errors, MonthlyRunFailure{AssetID: a.ID, Number: a.Number, Reason: err.Error()})
			continue
		}
		if exists {
			result.AssetsSkipped++
			continue
		}

		category, err := s.categoryRepo.FindByIDForTenant(ctx, tenantID, a.CategoryID)
		if err != nil || category == nil {
			reason := "Asset category not found"
			if err != nil {
				reason = err.Error()
			}
			result.Errors = append(result.Errors, MonthlyRunFailure{AssetID: a.ID, Number: a.Number, Reason: reason})
			continue
		}

		rec, err := s.computeFromPersisted(ctx, a, category, period)
		if err != nil {
			result.Errors = append(result.Errors, MonthlyRunFailure{AssetID: a.ID, Number: a.Number, Reason: err.Error()})
			continue
		}
		if rec.Amount.IsZero() {
			result.AssetsSkipped++
			continue
		}

		// a concurrent run may have inserted the record since the
		// exists check; the unique constraint decides the race
		if err := s.depRepo.Save(ctx, rec); err != nil {
			if shared.IsConflict(err) {
				result.AssetsSkipped++
				continue
			}
			result.Errors = append(result.Errors, MonthlyRunFailure{AssetID: a.ID, Number: a.Number, Reason: err.Error()})
			continue
		}

		result.AssetsProcessed++
		result.TotalDepreciation = result.TotalDepreciation.Add(rec.Amount)
	}

	telemetry.SetAttributes(span,
		"assets.processed", result.AssetsProcessed,
		"assets.skipped", result.AssetsSkipped,
		"assets.failed", len(result.Errors))
	return result, nil
}

// computeFromPersisted chains a new period record from the latest
// persisted closings so schedules restart from stored state rather than
// in-memory history
func (s *DepreciationService) computeFromPersisted(ctx context.Context, a *asset.Asset, category *asset.Category, period string) (*asset.Depreciation, error) {
	openingBook := a.PurchasePrice
	openingTax := a.PurchasePrice
	if latest, err := s.depRepo.FindLatestForAsset(ctx, a.ID); err != nil {
		return nil, err
	} else if latest != nil {
		openingBook = latest.ClosingBookValue
		openingTax = latest.TaxClosingBookValue
	}
	return asset.ComputePeriod(a, category, period, openingBook, openingTax)
}

func (s *DepreciationService) findAssetWithCategory(ctx context.Context, tenantID, assetID uuid.UUID) (*asset.Asset, *asset.Category, error) {
	a, err := s.assetRepo.FindByIDForTenant(ctx, tenantID, assetID)
	if err != nil {
		return nil, nil, err
	}
	if a == nil {
		return nil, nil, shared.NewNotFoundError("Asset not found")
	}
	category, err := s.categoryRepo.FindByIDForTenant(ctx, tenantID, a.CategoryID)
	if err != nil {
		return nil, nil, err
	}
	if category == nil {
		return nil, nil, shared.NewNotFoundError("Asset category not found")
	}
	return a, category, nil
}

func toScheduleLine(d *asset.Depreciation) ScheduleLineResponse {
	return ScheduleLineResponse{
		Period:              d.Period,
		OpeningBookValue:    d.OpeningBookValue,
		Amount:              d.Amount,
		ClosingBookValue:    d.ClosingBookValue,
		TaxOpeningBookValue: d.TaxOpeningBookValue,
		TaxAmount:           d.TaxAmount,
		TaxClosingBookValue: d.TaxClosingBookValue,
		Posted:              d.Posted,
		TransactionID:       d.TransactionID,
	}
}
