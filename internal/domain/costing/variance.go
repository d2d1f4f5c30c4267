package costing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VarianceLevel classifies how far a product's actual price has drifted
// from its standard cost
type VarianceLevel string

const (
	VarianceCritical VarianceLevel = "CRITICAL"
	VarianceWarning  VarianceLevel = "WARNING"
	VarianceNormal   VarianceLevel = "NORMAL"
)

// criticalThresholdPercent is the fixed ceiling above which a variance
// is critical regardless of the caller's threshold
var criticalThresholdPercent = decimal.NewFromInt(20)

// DefaultVarianceThresholdPercent is used when the caller supplies none
var DefaultVarianceThresholdPercent = decimal.NewFromInt(10)

// ClassifyVariance buckets an absolute variance percentage: critical
// above 20%, warning above the caller's threshold, normal otherwise.
// Thresholds at or above 20% still leave the critical band intact.
func ClassifyVariance(variancePercent, threshold decimal.Decimal) VarianceLevel {
	abs := variancePercent.Abs()
	if abs.GreaterThan(criticalThresholdPercent) {
		return VarianceCritical
	}
	if abs.GreaterThan(threshold) {
		return VarianceWarning
	}
	return VarianceNormal
}

// VarianceItem is one product's standard-vs-actual comparison
type VarianceItem struct {
	ProductID       uuid.UUID       `json:"product_id"`
	ProductName     string          `json:"product_name,omitempty"`
	StandardCost    decimal.Decimal `json:"standard_cost"`
	ActualCost      decimal.Decimal `json:"actual_cost"`
	Variance        decimal.Decimal `json:"variance"`
	VariancePercent decimal.Decimal `json:"variance_percent"`
	Level           VarianceLevel   `json:"level"`
}

// NewVarianceItem computes the drift of the most recent purchase price
// from the standard cost and classifies it
func NewVarianceItem(productID uuid.UUID, name string, standard, actual, threshold decimal.Decimal) VarianceItem {
	variance := actual.Sub(standard)
	percent := decimal.Zero
	if standard.IsPositive() {
		percent = variance.Div(standard).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return VarianceItem{
		ProductID:       productID,
		ProductName:     name,
		StandardCost:    standard,
		ActualCost:      actual,
		Variance:        variance.Round(4),
		VariancePercent: percent,
		Level:           ClassifyVariance(percent, threshold),
	}
}

// VarianceReport aggregates one analysis run
type VarianceReport struct {
	Threshold decimal.Decimal `json:"threshold"`
	Items     []VarianceItem  `json:"items"`
	Critical  int             `json:"critical"`
	Warning   int             `json:"warning"`
	Normal    int             `json:"normal"`
}

// Add appends an item and bumps the matching counter
func (r *VarianceReport) Add(item VarianceItem) {
	r.Items = append(r.Items, item)
	switch item.Level {
	case VarianceCritical:
		r.Critical++
	case VarianceWarning:
		r.Warning++
	default:
		r.Normal++
	}
}
