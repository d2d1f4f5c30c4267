package asset

import (
	"fmt"
	"time"

	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// clampToSalvage caps a raw period amount so the closing book value never
// falls below salvage. Applies to every method.
func clampToSalvage(raw, opening, salvage decimal.Decimal) decimal.Decimal {
	room := opening.Sub(salvage)
	if room.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	if raw.GreaterThan(room) {
		return room
	}
	if raw.IsNegative() {
		return decimal.Zero
	}
	return raw
}

// monthsBetween returns the zero-based month index of period relative to
// the asset's depreciation start month
func monthsBetween(start time.Time, period time.Time) int {
	return (period.Year()-start.Year())*12 + int(period.Month()) - int(start.Month())
}

// ComputePeriod calculates one monthly depreciation record for an asset.
// Opening values come from the previous period's persisted closings (or
// the purchase price for the first period), which makes the whole
// schedule restartable: nothing is cached in memory across calls.
//
// The book track uses the asset's chosen method; the tax track is always
// declining-balance at the category's jurisdiction rate. The two tracks
// diverge where statutory schedules differ from management's method.
func ComputePeriod(a *Asset, category *Category, period string, openingBook, openingTax decimal.Decimal) (*Depreciation, error) {
	if !a.IsActive() {
		return nil, shared.NewInvalidStateError(fmt.Sprintf("Cannot depreciate asset %s in %s status", a.Number, a.Status))
	}
	periodStart, err := ParsePeriod(period)
	if err != nil {
		return nil, err
	}
	startMonth := time.Date(a.DepreciationStartDate.Year(), a.DepreciationStartDate.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthIndex := monthsBetween(startMonth, periodStart)
	if monthIndex < 0 {
		return nil, shared.NewValidationError(fmt.Sprintf("Period %s precedes the depreciation start date", period))
	}
	if monthIndex >= a.UsefulLifeYears*12 {
		return nil, shared.NewValidationError(fmt.Sprintf("Period %s is beyond the asset's useful life", period))
	}

	in := MethodInput{
		Cost:             a.PurchasePrice,
		Salvage:          a.SalvageValue,
		UsefulLifeYears:  a.UsefulLifeYears,
		MonthsInPeriod:   1,
		OpeningBookValue: openingBook,
		YearNumber:       monthIndex/12 + 1,
	}

	calc, err := CalculatorFor(a.Method, category.DecliningRate())
	if err != nil {
		return nil, err
	}
	raw, err := calc.Calculate(in)
	if err != nil {
		return nil, err
	}
	amount := clampToSalvage(raw, openingBook, a.SalvageValue)

	taxIn := in
	taxIn.OpeningBookValue = openingTax
	taxRaw, err := NewDecliningBalance(category.DecliningRate()).Calculate(taxIn)
	if err != nil {
		return nil, err
	}
	taxAmount := clampToSalvage(taxRaw, openingTax, a.SalvageValue)

	return &Depreciation{
		BaseEntity:          shared.NewBaseEntity(),
		AssetID:             a.ID,
		Period:              period,
		OpeningBookValue:    openingBook,
		Amount:              amount,
		ClosingBookValue:    openingBook.Sub(amount),
		TaxOpeningBookValue: openingTax,
		TaxAmount:           taxAmount,
		TaxClosingBookValue: openingTax.Sub(taxAmount),
	}, nil
}

// GenerateSchedule produces the full period sequence from the
// depreciation start date until usefulLifeYears*12 months have elapsed
// or the book value reaches salvage, whichever comes first. The result
// is finite and deterministic.
func GenerateSchedule(a *Asset, category *Category) ([]Depreciation, error) {
	startMonth := time.Date(a.DepreciationStartDate.Year(), a.DepreciationStartDate.Month(), 1, 0, 0, 0, 0, time.UTC)
	maxPeriods := a.UsefulLifeYears * 12

	schedule := make([]Depreciation, 0, maxPeriods)
	openingBook := a.PurchasePrice
	openingTax := a.PurchasePrice

	for i := 0; i < maxPeriods; i++ {
		if openingBook.LessThanOrEqual(a.SalvageValue) {
			break
		}
		period := PeriodKey(startMonth.AddDate(0, i, 0))
		rec, err := ComputePeriod(a, category, period, openingBook, openingTax)
		if err != nil {
			return nil, fmt.Errorf("period %s: %w", period, err)
		}
		schedule = append(schedule, *rec)
		openingBook = rec.ClosingBookValue
		openingTax = rec.TaxClosingBookValue
	}
	return schedule, nil
}
