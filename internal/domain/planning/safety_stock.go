package planning

import (
	"time"

	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SafetyStock is the effective buffer-quantity record for one
// (product, warehouse) pair. At most one record is effective at any
// instant; activating a new one closes its predecessor.
type SafetyStock struct {
	shared.TenantAggregateRoot
	ProductID     uuid.UUID       `json:"product_id"`
	WarehouseID   uuid.UUID       `json:"warehouse_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	Method        string          `json:"method"`
	EffectiveFrom time.Time       `json:"effective_from"`
	EffectiveTo   *time.Time      `json:"effective_to,omitempty"`
	Active        bool            `json:"active"`
}

// NewSafetyStock creates an active recommendation record
func NewSafetyStock(tenantID, productID, warehouseID uuid.UUID, quantity decimal.Decimal, method string, effectiveFrom time.Time) (*SafetyStock, error) {
	if productID == uuid.Nil {
		return nil, shared.NewValidationError("Product ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewValidationError("Warehouse ID cannot be empty")
	}
	if quantity.IsNegative() {
		return nil, shared.NewValidationError("Safety stock quantity cannot be negative")
	}
	if effectiveFrom.IsZero() {
		effectiveFrom = time.Now()
	}
	return &SafetyStock{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ProductID:           productID,
		WarehouseID:         warehouseID,
		Quantity:            quantity,
		Method:              method,
		EffectiveFrom:       effectiveFrom,
		Active:              true,
	}, nil
}

// Supersede closes this record as of the given instant so a successor
// can become the single effective record
func (s *SafetyStock) Supersede(at time.Time) {
	s.Active = false
	s.EffectiveTo = &at
	s.Touch()
	s.IncrementVersion()
}

// IsEffectiveAt reports whether the record covers the given instant
func (s *SafetyStock) IsEffectiveAt(at time.Time) bool {
	if !s.Active && (s.EffectiveTo == nil || at.After(*s.EffectiveTo)) {
		return false
	}
	if at.Before(s.EffectiveFrom) {
		return false
	}
	return s.EffectiveTo == nil || !at.After(*s.EffectiveTo)
}

// DemandStats carries the historical inputs every strategy reads.
// Demand figures derive from trailing 90 days of paid sales; lead times
// from trailing 180 days of received purchase orders.
type DemandStats struct {
	AvgDailyDemand        decimal.Decimal
	MaxDailyDemand        decimal.Decimal
	AvgLeadTimeDays       decimal.Decimal
	MaxLeadTimeDays       decimal.Decimal
	DemandStdDev          decimal.Decimal
	DemandHistoryDays     int
	AvgMonthlyDemand      decimal.Decimal
	UnitCost              decimal.Decimal
	CurrentQuantity       decimal.Decimal
	RegionalRiskMultiplier decimal.Decimal
	ServiceLevel          decimal.Decimal // percent, e.g. 95
}

// RiskMultiplier returns the regional multiplier, defaulting to 1
func (d DemandStats) RiskMultiplier() decimal.Decimal {
	if d.RegionalRiskMultiplier.IsZero() {
		return decimal.NewFromInt(1)
	}
	return d.RegionalRiskMultiplier
}

// Result is a strategy's recommendation. RiskReduction is a bounded
// display heuristic for decision support, not a hard invariant.
type Result struct {
	Method            string          `json:"method"`
	SuggestedQuantity decimal.Decimal `json:"suggested_quantity"`
	CurrentQuantity   decimal.Decimal `json:"current_quantity"`
	FinancialImpact   decimal.Decimal `json:"financial_impact"`
	RiskReduction     decimal.Decimal `json:"risk_reduction"`
	Notes             string          `json:"notes,omitempty"`
}

// finishResult fills the derived fields shared by every strategy:
// financial impact of moving from current to suggested, and the bounded
// risk-reduction heuristic.
func finishResult(method string, suggested decimal.Decimal, stats DemandStats, notes string) Result {
	if suggested.IsNegative() {
		suggested = decimal.Zero
	}
	impact := stats.UnitCost.Mul(suggested.Sub(stats.CurrentQuantity))

	riskReduction := decimal.Zero
	if suggested.GreaterThan(stats.CurrentQuantity) && suggested.IsPositive() {
		riskReduction = suggested.Sub(stats.CurrentQuantity).Div(suggested).Mul(decimal.NewFromInt(100))
		cap := decimal.NewFromInt(95)
		if riskReduction.GreaterThan(cap) {
			riskReduction = cap
		}
	}

	return Result{
		Method:            method,
		SuggestedQuantity: suggested.Round(2),
		CurrentQuantity:   stats.CurrentQuantity,
		FinancialImpact:   impact.Round(2),
		RiskReduction:     riskReduction.Round(1),
		Notes:             notes,
	}
}
