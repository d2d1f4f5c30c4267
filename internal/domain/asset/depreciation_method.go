package asset

import (
	"fmt"

	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// DepreciationMethod identifies one of the supported calculation methods
type DepreciationMethod string

const (
	MethodStraightLine      DepreciationMethod = "STRAIGHT_LINE"
	MethodDecliningBalance  DepreciationMethod = "DECLINING_BALANCE"
	MethodDoubleDeclining   DepreciationMethod = "DOUBLE_DECLINING"
	MethodSumOfYearsDigits  DepreciationMethod = "SUM_OF_YEARS_DIGITS"
	MethodUnitsOfProduction DepreciationMethod = "UNITS_OF_PRODUCTION"
)

// IsValid checks if the method is a known DepreciationMethod.
// UNITS_OF_PRODUCTION is a known method that is deliberately not
// implemented (production-tracking data is not modeled).
func (m DepreciationMethod) IsValid() bool {
	switch m {
	case MethodStraightLine, MethodDecliningBalance, MethodDoubleDeclining,
		MethodSumOfYearsDigits, MethodUnitsOfProduction:
		return true
	}
	return false
}

// String returns the string representation of DepreciationMethod
func (m DepreciationMethod) String() string {
	return string(m)
}

// AllDepreciationMethods returns every known method
func AllDepreciationMethods() []DepreciationMethod {
	return []DepreciationMethod{
		MethodStraightLine,
		MethodDecliningBalance,
		MethodDoubleDeclining,
		MethodSumOfYearsDigits,
		MethodUnitsOfProduction,
	}
}

// MethodInput carries the explicit inputs of one period's calculation.
// Calculators are pure functions of this input and nothing else.
type MethodInput struct {
	Cost             decimal.Decimal
	Salvage          decimal.Decimal
	UsefulLifeYears  int
	MonthsInPeriod   int
	OpeningBookValue decimal.Decimal
	YearNumber       int // 1-based year of the asset's life
}

// MethodCalculator computes the raw (unclamped) depreciation for one
// period. The schedule applies the salvage clamp afterwards.
type MethodCalculator interface {
	strategy.Strategy
	Method() DepreciationMethod
	Calculate(in MethodInput) (decimal.Decimal, error)
}

var (
	twelve  = decimal.NewFromInt(12)
	hundred = decimal.NewFromInt(100)
)

// straightLine: ((cost - salvage) / usefulLifeYears) / 12 * monthsInPeriod
type straightLine struct {
	strategy.BaseStrategy
}

// NewStraightLine creates the straight-line calculator
func NewStraightLine() MethodCalculator {
	return straightLine{strategy.NewBaseStrategy(
		"straight_line",
		strategy.StrategyTypeDepreciation,
		"Equal depreciation every period over the useful life",
	)}
}

func (straightLine) Method() DepreciationMethod { return MethodStraightLine }

func (straightLine) Calculate(in MethodInput) (decimal.Decimal, error) {
	yearly := in.Cost.Sub(in.Salvage).Div(decimal.NewFromInt(int64(in.UsefulLifeYears)))
	return yearly.Div(twelve).Mul(decimal.NewFromInt(int64(in.MonthsInPeriod))), nil
}

// decliningBalance: openingBookValue * (rate/100/12) * monthsInPeriod
type decliningBalance struct {
	strategy.BaseStrategy
	ratePercent decimal.Decimal
}

// NewDecliningBalance creates a declining-balance calculator at the given
// annual rate percent. Zero falls back to the 20% default.
func NewDecliningBalance(ratePercent decimal.Decimal) MethodCalculator {
	if ratePercent.IsZero() {
		ratePercent = DefaultDecliningRate
	}
	return decliningBalance{
		BaseStrategy: strategy.NewBaseStrategy(
			"declining_balance",
			strategy.StrategyTypeDepreciation,
			"Fixed percentage of the opening book value each period",
		),
		ratePercent: ratePercent,
	}
}

func (decliningBalance) Method() DepreciationMethod { return MethodDecliningBalance }

func (d decliningBalance) Calculate(in MethodInput) (decimal.Decimal, error) {
	monthlyRate := d.ratePercent.Div(hundred).Div(twelve)
	return in.OpeningBookValue.Mul(monthlyRate).Mul(decimal.NewFromInt(int64(in.MonthsInPeriod))), nil
}

// doubleDeclining: openingBookValue * (2/usefulLifeYears/12) * monthsInPeriod
type doubleDeclining struct {
	strategy.BaseStrategy
}

// NewDoubleDeclining creates the double-declining-balance calculator
func NewDoubleDeclining() MethodCalculator {
	return doubleDeclining{strategy.NewBaseStrategy(
		"double_declining",
		strategy.StrategyTypeDepreciation,
		"Twice the straight-line rate applied to the opening book value",
	)}
}

func (doubleDeclining) Method() DepreciationMethod { return MethodDoubleDeclining }

func (doubleDeclining) Calculate(in MethodInput) (decimal.Decimal, error) {
	monthlyRate := decimal.NewFromInt(2).
		Div(decimal.NewFromInt(int64(in.UsefulLifeYears))).
		Div(twelve)
	return in.OpeningBookValue.Mul(monthlyRate).Mul(decimal.NewFromInt(int64(in.MonthsInPeriod))), nil
}

// sumOfYearsDigits: ((cost-salvage) * remainingYears / sumOfYears) / 12 * months,
// remainingYears = usefulLifeYears - yearNumber + 1
type sumOfYearsDigits struct {
	strategy.BaseStrategy
}

// NewSumOfYearsDigits creates the sum-of-years-digits calculator
func NewSumOfYearsDigits() MethodCalculator {
	return sumOfYearsDigits{strategy.NewBaseStrategy(
		"sum_of_years_digits",
		strategy.StrategyTypeDepreciation,
		"Accelerated depreciation weighted by remaining years",
	)}
}

func (sumOfYearsDigits) Method() DepreciationMethod { return MethodSumOfYearsDigits }

func (sumOfYearsDigits) Calculate(in MethodInput) (decimal.Decimal, error) {
	remaining := in.UsefulLifeYears - in.YearNumber + 1
	if remaining < 0 {
		remaining = 0
	}
	sum := in.UsefulLifeYears * (in.UsefulLifeYears + 1) / 2
	yearly := in.Cost.Sub(in.Salvage).
		Mul(decimal.NewFromInt(int64(remaining))).
		Div(decimal.NewFromInt(int64(sum)))
	return yearly.Div(twelve).Mul(decimal.NewFromInt(int64(in.MonthsInPeriod))), nil
}

// unitsOfProduction is declared but unsupported: the data model carries
// no production counters to drive it.
type unitsOfProduction struct {
	strategy.BaseStrategy
}

// NewUnitsOfProduction creates the placeholder units-of-production calculator
func NewUnitsOfProduction() MethodCalculator {
	return unitsOfProduction{strategy.NewBaseStrategy(
		"units_of_production",
		strategy.StrategyTypeDepreciation,
		"Depreciation proportional to units produced (unsupported)",
	)}
}

func (unitsOfProduction) Method() DepreciationMethod { return MethodUnitsOfProduction }

func (unitsOfProduction) Calculate(MethodInput) (decimal.Decimal, error) {
	return decimal.Zero, shared.NewDomainError(shared.CodeNotImplemented,
		"Units-of-production depreciation requires production tracking data which is not modeled")
}

// CalculatorFor dispatches over the closed method set. The declining
// rate only applies to DECLINING_BALANCE; other methods ignore it.
func CalculatorFor(method DepreciationMethod, decliningRatePercent decimal.Decimal) (MethodCalculator, error) {
	switch method {
	case MethodStraightLine:
		return NewStraightLine(), nil
	case MethodDecliningBalance:
		return NewDecliningBalance(decliningRatePercent), nil
	case MethodDoubleDeclining:
		return NewDoubleDeclining(), nil
	case MethodSumOfYearsDigits:
		return NewSumOfYearsDigits(), nil
	case MethodUnitsOfProduction:
		return NewUnitsOfProduction(), nil
	default:
		return nil, shared.NewValidationError(fmt.Sprintf("Unknown depreciation method: %s", method))
	}
}
