package costing

import (
	"context"
	"fmt"
	"time"

	"github.com/finbooks/backend/internal/domain/costing"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StandardCostService manages versioned standard costs, BOM roll-ups
// and variance analysis
type StandardCostService struct {
	costRepo   costing.StandardCostRepository
	bomRepo    costing.BOMRepository
	costReader costing.ProductCostReader
}

// NewStandardCostService creates a new StandardCostService
func NewStandardCostService(
	costRepo costing.StandardCostRepository,
	bomRepo costing.BOMRepository,
	costReader costing.ProductCostReader,
) *StandardCostService {
	return &StandardCostService{
		costRepo:   costRepo,
		bomRepo:    bomRepo,
		costReader: costReader,
	}
}

// CreateStandardCostRequest represents a request to create a cost version
type CreateStandardCostRequest struct {
	ProductID     uuid.UUID       `json:"product_id" binding:"required"`
	MaterialCost  decimal.Decimal `json:"material_cost"`
	LaborCost     decimal.Decimal `json:"labor_cost"`
	OverheadCost  decimal.Decimal `json:"overhead_cost"`
	EffectiveFrom time.Time       `json:"effective_from" binding:"required"`
	EffectiveTo   *time.Time      `json:"effective_to"`
}

// StandardCostResponse represents a cost version in API responses
type StandardCostResponse struct {
	ID            uuid.UUID       `json:"id"`
	ProductID     uuid.UUID       `json:"product_id"`
	MaterialCost  decimal.Decimal `json:"material_cost"`
	LaborCost     decimal.Decimal `json:"labor_cost"`
	OverheadCost  decimal.Decimal `json:"overhead_cost"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	EffectiveFrom time.Time       `json:"effective_from"`
	EffectiveTo   *time.Time      `json:"effective_to,omitempty"`
	Version       int             `json:"version"`
}

// CreateStandardCost creates a cost version. Overlapping effective
// ranges for the same product are rejected as a conflict; callers close
// the prior version first or supply a bounded range.
func (s *StandardCostService) CreateStandardCost(ctx context.Context, tenantID uuid.UUID, req CreateStandardCostRequest) (*StandardCostResponse, error) {
	if _, err := s.costReader.CostFor(ctx, tenantID, req.ProductID); err != nil {
		return nil, err
	}

	overlapping, err := s.costRepo.FindOverlapping(ctx, tenantID, req.ProductID, req.EffectiveFrom, req.EffectiveTo)
	if err != nil {
		return nil, err
	}
	if len(overlapping) > 0 {
		return nil, shared.NewConflictError(fmt.Sprintf(
			"Effective range overlaps an existing cost version starting %s",
			overlapping[0].EffectiveFrom.Format("2006-01-02")))
	}

	cost, err := costing.NewStandardCost(tenantID, req.ProductID,
		req.MaterialCost, req.LaborCost, req.OverheadCost, req.EffectiveFrom, req.EffectiveTo)
	if err != nil {
		return nil, err
	}
	if err := s.costRepo.Save(ctx, cost); err != nil {
		return nil, err
	}
	return toStandardCostResponse(cost), nil
}

// CloseStandardCost caps the current effective version so a successor
// can start at the given date
func (s *StandardCostService) CloseStandardCost(ctx context.Context, tenantID, id uuid.UUID, at time.Time) (*StandardCostResponse, error) {
	cost, err := s.costRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if cost == nil {
		return nil, shared.NewNotFoundError("Standard cost not found")
	}
	if err := cost.Close(at); err != nil {
		return nil, err
	}
	if err := s.costRepo.Save(ctx, cost); err != nil {
		return nil, err
	}
	return toStandardCostResponse(cost), nil
}

// GetEffective returns the version covering now for one product
func (s *StandardCostService) GetEffective(ctx context.Context, tenantID, productID uuid.UUID) (*StandardCostResponse, error) {
	cost, err := s.costRepo.FindEffective(ctx, tenantID, productID, time.Now())
	if err != nil {
		return nil, err
	}
	if cost == nil {
		return nil, shared.NewNotFoundError("No effective standard cost for product")
	}
	return toStandardCostResponse(cost), nil
}

// History lists all cost versions for a product
func (s *StandardCostService) History(ctx context.Context, tenantID, productID uuid.UUID) ([]StandardCostResponse, error) {
	versions, err := s.costRepo.FindAllForProduct(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	responses := make([]StandardCostResponse, 0, len(versions))
	for _, v := range versions {
		responses = append(responses, *toStandardCostResponse(v))
	}
	return responses, nil
}

// RollUp walks the product's BOM tree and compares the rolled-up cost
// against the current effective standard cost
func (s *StandardCostService) RollUp(ctx context.Context, tenantID, productID uuid.UUID) (*costing.RolledCost, error) {
	tree := &repoBOMTree{ctx: ctx, tenantID: tenantID, svc: s}
	return costing.RollUp(tree, productID, time.Now())
}

// VarianceAnalysis compares every product's effective standard cost to
// its most recent purchase price and classifies the drift. A zero
// threshold falls back to the 10% default.
func (s *StandardCostService) VarianceAnalysis(ctx context.Context, tenantID uuid.UUID, threshold decimal.Decimal) (*costing.VarianceReport, error) {
	if threshold.IsZero() {
		threshold = costing.DefaultVarianceThresholdPercent
	}
	if threshold.IsNegative() {
		return nil, shared.NewValidationError("Variance threshold cannot be negative")
	}

	now := time.Now()
	actuals, err := s.costReader.CostsWithStandard(ctx, tenantID, now)
	if err != nil {
		return nil, err
	}

	report := &costing.VarianceReport{Threshold: threshold}
	for _, actual := range actuals {
		standard, err := s.costRepo.FindEffective(ctx, tenantID, actual.ProductID, now)
		if err != nil {
			if shared.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		if standard == nil {
			continue
		}
		report.Add(costing.NewVarianceItem(actual.ProductID, actual.ProductName,
			standard.TotalCost, actual.LatestPurchasePrice, threshold))
	}
	return report, nil
}

// repoBOMTree adapts the repositories to the domain's BOMTree walk,
// binding the context and tenant for the duration of one roll-up
type repoBOMTree struct {
	ctx      context.Context
	tenantID uuid.UUID
	svc      *StandardCostService
}

func (t *repoBOMTree) ComponentsFor(productID uuid.UUID) ([]*costing.BOMComponent, error) {
	return t.svc.bomRepo.ComponentsFor(t.ctx, t.tenantID, productID)
}

func (t *repoBOMTree) EffectiveCostFor(productID uuid.UUID, at time.Time) (*costing.StandardCost, error) {
	cost, err := t.svc.costRepo.FindEffective(t.ctx, t.tenantID, productID, at)
	if err != nil {
		return nil, err
	}
	if cost == nil {
		return nil, shared.NewNotFoundError("Standard cost not found for product " + productID.String())
	}
	return cost, nil
}

func toStandardCostResponse(c *costing.StandardCost) *StandardCostResponse {
	return &StandardCostResponse{
		ID:            c.ID,
		ProductID:     c.ProductID,
		MaterialCost:  c.MaterialCost,
		LaborCost:     c.LaborCost,
		OverheadCost:  c.OverheadCost,
		TotalCost:     c.TotalCost,
		EffectiveFrom: c.EffectiveFrom,
		EffectiveTo:   c.EffectiveTo,
		Version:       c.Version,
	}
}
