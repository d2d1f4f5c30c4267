package planning

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository manages safety-stock record persistence
type Repository interface {
	FindEffective(ctx context.Context, tenantID, productID, warehouseID uuid.UUID, at time.Time) (*SafetyStock, error)
	FindAllForProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]SafetyStock, error)
	Save(ctx context.Context, s *SafetyStock) error
}

// DemandHistoryRepository derives the statistical inputs from trailing
// sales and purchase history. The 90/180 day windows are fixed by the
// planning policy, not by callers.
type DemandHistoryRepository interface {
	// DemandStatsFor aggregates paid-sales demand (trailing 90 days) and
	// received-purchase-order lead times (trailing 180 days) for one
	// product/warehouse pair.
	DemandStatsFor(ctx context.Context, tenantID, productID, warehouseID uuid.UUID) (DemandStats, error)
}
