package planning

import (
	"fmt"
	"math"

	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// StrategyName identifies one of the closed set of safety-stock strategies
type StrategyName string

const (
	StrategySimple      StrategyName = "SIMPLE"
	StrategyStatistical StrategyName = "STATISTICAL"
	StrategyPercentage  StrategyName = "PERCENTAGE_OF_DEMAND"
)

// IsValid checks if the strategy name is valid
func (n StrategyName) IsValid() bool {
	switch n {
	case StrategySimple, StrategyStatistical, StrategyPercentage:
		return true
	}
	return false
}

// String returns the string representation of StrategyName
func (n StrategyName) String() string {
	return string(n)
}

// Calculator is the capability shared by all safety-stock strategies.
// Calculators are pure: they read historical stats and never write back
// to the ledger or any store.
type Calculator interface {
	strategy.Strategy
	Calculate(stats DemandStats) Result
}

// minStatisticalHistoryDays is the demand-history floor below which the
// statistical strategy falls back to the simple one.
const minStatisticalHistoryDays = 7

// zScores maps service-level percent to the standard-normal z value.
// Unlisted levels default to 1.65 (95%).
var zScores = map[string]decimal.Decimal{
	"50":   decimal.RequireFromString("0.00"),
	"75":   decimal.RequireFromString("0.67"),
	"80":   decimal.RequireFromString("0.84"),
	"85":   decimal.RequireFromString("1.04"),
	"90":   decimal.RequireFromString("1.28"),
	"95":   decimal.RequireFromString("1.65"),
	"97":   decimal.RequireFromString("1.88"),
	"98":   decimal.RequireFromString("2.05"),
	"99":   decimal.RequireFromString("2.33"),
	"99.5": decimal.RequireFromString("2.58"),
	"99.9": decimal.RequireFromString("3.09"),
}

// defaultZScore corresponds to a 95% service level
var defaultZScore = decimal.RequireFromString("1.65")

// ZScore looks up the z value for a service-level percent
func ZScore(serviceLevel decimal.Decimal) decimal.Decimal {
	key := serviceLevel.String()
	if z, ok := zScores[key]; ok {
		return z
	}
	return defaultZScore
}

// simpleStrategy: buffer for the worst-case demand-during-lead-time gap
type simpleStrategy struct {
	strategy.BaseStrategy
}

// NewSimpleStrategy creates the lead-time based calculator
func NewSimpleStrategy() Calculator {
	return simpleStrategy{strategy.NewBaseStrategy(
		string(StrategySimple),
		strategy.StrategyTypeSafetyStock,
		"Lead-time based buffer: worst case demand minus average demand during lead time",
	)}
}

func (s simpleStrategy) Calculate(stats DemandStats) Result {
	worst := stats.MaxDailyDemand.Mul(stats.MaxLeadTimeDays)
	usual := stats.AvgDailyDemand.Mul(stats.AvgLeadTimeDays)
	suggested := worst.Sub(usual).Mul(stats.RiskMultiplier())
	return finishResult(s.Name(), suggested, stats, "")
}

// statisticalStrategy: z-score service-level buffer
type statisticalStrategy struct {
	strategy.BaseStrategy
	fallback Calculator
}

// NewStatisticalStrategy creates the z-score based calculator
func NewStatisticalStrategy() Calculator {
	return statisticalStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			string(StrategyStatistical),
			strategy.StrategyTypeSafetyStock,
			"Service-level buffer: z-score times demand deviation over the lead time",
		),
		fallback: NewSimpleStrategy(),
	}
}

func (s statisticalStrategy) Calculate(stats DemandStats) Result {
	if stats.DemandHistoryDays < minStatisticalHistoryDays {
		r := s.fallback.Calculate(stats)
		r.Notes = fmt.Sprintf("Fell back to %s: only %d days of demand history (need %d)",
			StrategySimple, stats.DemandHistoryDays, minStatisticalHistoryDays)
		return r
	}

	leadDays, _ := stats.AvgLeadTimeDays.Float64()
	if leadDays < 0 {
		leadDays = 0
	}
	sqrtLead := decimal.NewFromFloat(math.Sqrt(leadDays))
	suggested := ZScore(stats.ServiceLevel).
		Mul(sqrtLead).
		Mul(stats.DemandStdDev).
		Mul(stats.RiskMultiplier())
	return finishResult(s.Name(), suggested, stats, "")
}

// percentageStrategy: fixed fraction of a month's demand
type percentageStrategy struct {
	strategy.BaseStrategy
}

// demandFraction is the fixed 25% of average monthly demand
var demandFraction = decimal.RequireFromString("0.25")

// NewPercentageStrategy creates the percentage-of-demand calculator
func NewPercentageStrategy() Calculator {
	return percentageStrategy{strategy.NewBaseStrategy(
		string(StrategyPercentage),
		strategy.StrategyTypeSafetyStock,
		"Fixed 25% of average monthly demand",
	)}
}

func (s percentageStrategy) Calculate(stats DemandStats) Result {
	suggested := stats.AvgMonthlyDemand.Mul(demandFraction).Mul(stats.RiskMultiplier())
	return finishResult(s.Name(), suggested, stats, "")
}

// CalculatorFor dispatches over the closed strategy set
func CalculatorFor(name StrategyName) (Calculator, error) {
	switch name {
	case StrategySimple:
		return NewSimpleStrategy(), nil
	case StrategyStatistical:
		return NewStatisticalStrategy(), nil
	case StrategyPercentage:
		return NewPercentageStrategy(), nil
	default:
		return nil, shared.NewValidationError(fmt.Sprintf("Unknown safety stock strategy: %s", name))
	}
}

// AllCalculators returns every strategy in a stable order
func AllCalculators() []Calculator {
	return []Calculator{
		NewSimpleStrategy(),
		NewStatisticalStrategy(),
		NewPercentageStrategy(),
	}
}
