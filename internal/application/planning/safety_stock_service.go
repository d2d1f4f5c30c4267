package planning

import (
	"context"
	"time"

	"github.com/finbooks/backend/internal/domain/planning"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SafetyStockService computes strategy recommendations and manages the
// effective safety-stock record per product/warehouse pair
type SafetyStockService struct {
	stockRepo  planning.Repository
	demandRepo planning.DemandHistoryRepository
	uow        shared.UnitOfWork
}

// NewSafetyStockService creates a new SafetyStockService
func NewSafetyStockService(
	stockRepo planning.Repository,
	demandRepo planning.DemandHistoryRepository,
	uow shared.UnitOfWork,
) *SafetyStockService {
	return &SafetyStockService{
		stockRepo:  stockRepo,
		demandRepo: demandRepo,
		uow:        uow,
	}
}

// RecommendRequest asks for a safety-stock recommendation
type RecommendRequest struct {
	ProductID              uuid.UUID       `json:"product_id" binding:"required"`
	WarehouseID            uuid.UUID       `json:"warehouse_id" binding:"required"`
	Method                 string          `json:"method"`
	ServiceLevel           decimal.Decimal `json:"service_level"`
	RegionalRiskMultiplier decimal.Decimal `json:"regional_risk_multiplier"`
}

// ApplyRequest persists a recommendation as the new effective record
type ApplyRequest struct {
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	WarehouseID uuid.UUID       `json:"warehouse_id" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	Method      string          `json:"method" binding:"required"`
}

// SafetyStockResponse represents a safety-stock record in API responses
type SafetyStockResponse struct {
	ID            uuid.UUID       `json:"id"`
	ProductID     uuid.UUID       `json:"product_id"`
	WarehouseID   uuid.UUID       `json:"warehouse_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	Method        string          `json:"method"`
	EffectiveFrom time.Time       `json:"effective_from"`
	EffectiveTo   *time.Time      `json:"effective_to,omitempty"`
	Active        bool            `json:"active"`
}

// Recommend runs one strategy (or all, when method is empty) against the
// product's demand history. Strategies are pure calculators; nothing is
// persisted.
func (s *SafetyStockService) Recommend(ctx context.Context, tenantID uuid.UUID, req RecommendRequest) ([]planning.Result, error) {
	stats, err := s.demandRepo.DemandStatsFor(ctx, tenantID, req.ProductID, req.WarehouseID)
	if err != nil {
		return nil, err
	}
	if !req.ServiceLevel.IsZero() {
		stats.ServiceLevel = req.ServiceLevel
	}
	if !req.RegionalRiskMultiplier.IsZero() {
		stats.RegionalRiskMultiplier = req.RegionalRiskMultiplier
	}

	// the current effective record supplies "current quantity"
	if current, err := s.stockRepo.FindEffective(ctx, tenantID, req.ProductID, req.WarehouseID, time.Now()); err != nil {
		if !shared.IsNotFound(err) {
			return nil, err
		}
	} else if current != nil {
		stats.CurrentQuantity = current.Quantity
	}

	var calculators []planning.Calculator
	if req.Method == "" {
		calculators = planning.AllCalculators()
	} else {
		calc, err := planning.CalculatorFor(planning.StrategyName(req.Method))
		if err != nil {
			return nil, err
		}
		calculators = []planning.Calculator{calc}
	}

	results := make([]planning.Result, 0, len(calculators))
	for _, calc := range calculators {
		results = append(results, calc.Calculate(stats))
	}
	return results, nil
}

// Apply persists a new effective record, superseding the prior one. The
// supersede and the insert commit atomically so at most one record is
// ever effective.
func (s *SafetyStockService) Apply(ctx context.Context, tenantID uuid.UUID, req ApplyRequest) (*SafetyStockResponse, error) {
	if !planning.StrategyName(req.Method).IsValid() {
		return nil, shared.NewValidationError("Unknown safety stock method: " + req.Method)
	}

	now := time.Now()
	record, err := planning.NewSafetyStock(tenantID, req.ProductID, req.WarehouseID, req.Quantity, req.Method, now)
	if err != nil {
		return nil, err
	}

	current, err := s.stockRepo.FindEffective(ctx, tenantID, req.ProductID, req.WarehouseID, now)
	if err != nil && !shared.IsNotFound(err) {
		return nil, err
	}

	err = s.uow.Execute(ctx, func(ctx context.Context) error {
		if current != nil {
			current.Supersede(now)
			if err := s.stockRepo.Save(ctx, current); err != nil {
				return err
			}
		}
		return s.stockRepo.Save(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	return toSafetyStockResponse(record), nil
}

// GetEffective returns the record currently in force for the pair
func (s *SafetyStockService) GetEffective(ctx context.Context, tenantID, productID, warehouseID uuid.UUID) (*SafetyStockResponse, error) {
	record, err := s.stockRepo.FindEffective(ctx, tenantID, productID, warehouseID, time.Now())
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, shared.NewNotFoundError("No effective safety stock record")
	}
	return toSafetyStockResponse(record), nil
}

// History lists every record ever created for a product
func (s *SafetyStockService) History(ctx context.Context, tenantID, productID uuid.UUID) ([]SafetyStockResponse, error) {
	records, err := s.stockRepo.FindAllForProduct(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	responses := make([]SafetyStockResponse, 0, len(records))
	for i := range records {
		responses = append(responses, *toSafetyStockResponse(&records[i]))
	}
	return responses, nil
}

func toSafetyStockResponse(r *planning.SafetyStock) *SafetyStockResponse {
	return &SafetyStockResponse{
		ID:            r.ID,
		ProductID:     r.ProductID,
		WarehouseID:   r.WarehouseID,
		Quantity:      r.Quantity,
		Method:        r.Method,
		EffectiveFrom: r.EffectiveFrom,
		EffectiveTo:   r.EffectiveTo,
		Active:        r.Active,
	}
}
