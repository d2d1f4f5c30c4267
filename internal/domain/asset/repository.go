package asset

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository manages fixed-asset persistence
type Repository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Asset, error)
	FindActiveForDepreciation(ctx context.Context, tenantID uuid.UUID, startedOnOrBefore time.Time) ([]Asset, error)
	Save(ctx context.Context, a *Asset) error
	// NextNumber computes the next asset number under the ASSET-{year}
	// prefix by scanning the max existing suffix.
	NextNumber(ctx context.Context, tenantID uuid.UUID, year int) (string, error)
}

// CategoryRepository manages asset category persistence
type CategoryRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Category, error)
	Save(ctx context.Context, c *Category) error
}

// DepreciationRepository manages period records. Save must surface a
// CONFLICT error on a duplicate (asset, period) so a concurrent
// double-run loses cleanly at the storage layer.
type DepreciationRepository interface {
	FindByAssetAndPeriod(ctx context.Context, assetID uuid.UUID, period string) (*Depreciation, error)
	FindByAsset(ctx context.Context, assetID uuid.UUID) ([]Depreciation, error)
	FindLatestForAsset(ctx context.Context, assetID uuid.UUID) (*Depreciation, error)
	ExistsForPeriod(ctx context.Context, assetID uuid.UUID, period string) (bool, error)
	Save(ctx context.Context, d *Depreciation) error
}
