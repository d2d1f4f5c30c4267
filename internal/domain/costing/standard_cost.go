package costing

import (
	"time"

	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StandardCost is one versioned expected-cost record for a product.
// Multiple versions may exist over time but effective ranges for a
// product must not overlap; overlap is rejected at save time.
type StandardCost struct {
	shared.TenantAggregateRoot
	ProductID     uuid.UUID       `json:"product_id"`
	MaterialCost  decimal.Decimal `json:"material_cost"`
	LaborCost     decimal.Decimal `json:"labor_cost"`
	OverheadCost  decimal.Decimal `json:"overhead_cost"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	EffectiveFrom time.Time       `json:"effective_from"`
	EffectiveTo   *time.Time      `json:"effective_to,omitempty"`
	Notes         string          `json:"notes,omitempty"`
}

// NewStandardCost creates a cost version. Total is always derived from
// the three components, never accepted from the caller.
func NewStandardCost(tenantID, productID uuid.UUID, material, labor, overhead decimal.Decimal, effectiveFrom time.Time, effectiveTo *time.Time) (*StandardCost, error) {
	if productID == uuid.Nil {
		return nil, shared.NewValidationError("Product ID cannot be empty")
	}
	if material.IsNegative() || labor.IsNegative() || overhead.IsNegative() {
		return nil, shared.NewValidationError("Cost components cannot be negative")
	}
	if effectiveFrom.IsZero() {
		return nil, shared.NewValidationError("Effective from date is required")
	}
	if effectiveTo != nil && !effectiveTo.After(effectiveFrom) {
		return nil, shared.NewValidationError("Effective to date must be after effective from date")
	}
	return &StandardCost{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ProductID:           productID,
		MaterialCost:        material,
		LaborCost:           labor,
		OverheadCost:        overhead,
		TotalCost:           material.Add(labor).Add(overhead),
		EffectiveFrom:       effectiveFrom,
		EffectiveTo:         effectiveTo,
	}, nil
}

// Close caps this version's effective range so a successor can start.
// The close instant must fall inside the current range.
func (c *StandardCost) Close(at time.Time) error {
	if !at.After(c.EffectiveFrom) {
		return shared.NewValidationError("Close date must be after the effective from date")
	}
	if c.EffectiveTo != nil && at.After(*c.EffectiveTo) {
		return shared.NewInvalidStateError("Cost version is already closed before that date")
	}
	c.EffectiveTo = &at
	c.Touch()
	c.IncrementVersion()
	return nil
}

// Overlaps reports whether this version's range intersects [from, to).
// A nil to means open-ended.
func (c *StandardCost) Overlaps(from time.Time, to *time.Time) bool {
	if c.EffectiveTo != nil && !c.EffectiveTo.After(from) {
		return false
	}
	if to != nil && !to.After(c.EffectiveFrom) {
		return false
	}
	return true
}

// IsEffectiveAt reports whether this version covers the given instant
func (c *StandardCost) IsEffectiveAt(at time.Time) bool {
	if at.Before(c.EffectiveFrom) {
		return false
	}
	return c.EffectiveTo == nil || at.Before(*c.EffectiveTo)
}
