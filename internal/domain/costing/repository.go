package costing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StandardCostRepository persists versioned cost records
type StandardCostRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*StandardCost, error)
	// FindEffective returns the version covering the given instant, or
	// a not-found error when none does.
	FindEffective(ctx context.Context, tenantID, productID uuid.UUID, at time.Time) (*StandardCost, error)
	// FindOverlapping returns versions whose range intersects
	// [from, to); callers reject the save when any exist.
	FindOverlapping(ctx context.Context, tenantID, productID uuid.UUID, from time.Time, to *time.Time) ([]*StandardCost, error)
	FindAllForProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]*StandardCost, error)
	Save(ctx context.Context, cost *StandardCost) error
}

// BOMRepository reads bill-of-materials lines
type BOMRepository interface {
	ComponentsFor(ctx context.Context, tenantID, parentProductID uuid.UUID) ([]*BOMComponent, error)
	Save(ctx context.Context, component *BOMComponent) error
}

// RevaluationRepository persists cost revaluations. Save surfaces a
// conflict error on a duplicate number race.
type RevaluationRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*CostRevaluation, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, status *RevaluationStatus, limit, offset int) ([]*CostRevaluation, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, status *RevaluationStatus) (int64, error)
	Save(ctx context.Context, revaluation *CostRevaluation) error
	NextNumber(ctx context.Context, tenantID uuid.UUID, year int) (string, error)
}

// ProductCost is the actual-cost view of one product used by variance
// analysis and revaluation
type ProductCost struct {
	ProductID           uuid.UUID
	ProductName         string
	AverageCost         decimal.Decimal
	LatestPurchasePrice decimal.Decimal
	QuantityOnHand      decimal.Decimal
}

// ProductCostReader reads product cost facts from the inventory side.
// It is a read-only port; costing never mutates inventory records.
type ProductCostReader interface {
	CostFor(ctx context.Context, tenantID, productID uuid.UUID) (*ProductCost, error)
	// CostsWithStandard returns actuals for every product that has an
	// effective standard cost, for variance analysis.
	CostsWithStandard(ctx context.Context, tenantID uuid.UUID, at time.Time) ([]*ProductCost, error)
}
