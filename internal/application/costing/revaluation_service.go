package costing

import (
	"context"
	"fmt"
	"time"

	"github.com/finbooks/backend/internal/domain/costing"
	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RevaluationService manages the cost-revaluation approval flow and the
// resulting inventory-adjustment postings
type RevaluationService struct {
	revalRepo  costing.RevaluationRepository
	costReader costing.ProductCostReader
	txRepo     ledger.TransactionRepository
	uow        shared.UnitOfWork
}

// NewRevaluationService creates a new RevaluationService
func NewRevaluationService(
	revalRepo costing.RevaluationRepository,
	costReader costing.ProductCostReader,
	txRepo ledger.TransactionRepository,
	uow shared.UnitOfWork,
) *RevaluationService {
	return &RevaluationService{
		revalRepo:  revalRepo,
		costReader: costReader,
		txRepo:     txRepo,
		uow:        uow,
	}
}

// CreateRevaluationRequest represents a request to revalue a product's
// inventory unit cost
type CreateRevaluationRequest struct {
	ProductID           uuid.UUID       `json:"product_id" binding:"required"`
	NewUnitCost         decimal.Decimal `json:"new_unit_cost" binding:"required"`
	Quantity            decimal.Decimal `json:"quantity"`
	Reason              string          `json:"reason" binding:"required"`
	Notes               string          `json:"notes"`
	PostingDate         time.Time       `json:"posting_date"`
	AutoApprove         bool            `json:"auto_approve"`
	InventoryAccountID  uuid.UUID       `json:"inventory_account_id"`
	AdjustmentAccountID uuid.UUID       `json:"adjustment_account_id"`
}

// RevaluationResponse represents a revaluation in API responses. The
// transaction is present only when a GL posting happened.
type RevaluationResponse struct {
	ID              uuid.UUID       `json:"id"`
	Number          string          `json:"number"`
	ProductID       uuid.UUID       `json:"product_id"`
	OldUnitCost     decimal.Decimal `json:"old_unit_cost"`
	NewUnitCost     decimal.Decimal `json:"new_unit_cost"`
	Quantity        decimal.Decimal `json:"quantity"`
	ValueDifference decimal.Decimal `json:"value_difference"`
	Reason          string          `json:"reason"`
	Status          string          `json:"status"`
	PostingDate     time.Time       `json:"posting_date"`
	TransactionID   *uuid.UUID      `json:"transaction_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// CreateRevaluation fetches the product's current average cost as the
// old unit cost, computes the value difference and either stops at
// SUBMITTED or, with autoApprove, runs through APPROVED to POSTED with
// the GL adjustment in the same storage transaction.
func (s *RevaluationService) CreateRevaluation(ctx context.Context, tenantID, userID uuid.UUID, req CreateRevaluationRequest) (*RevaluationResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "revaluation", "Create",
		telemetry.WithAttribute("product.id", req.ProductID.String()))
	defer span.End()

	product, err := s.costReader.CostFor(ctx, tenantID, req.ProductID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	quantity := req.Quantity
	if quantity.IsZero() {
		quantity = product.QuantityOnHand
	}

	number, err := s.revalRepo.NextNumber(ctx, tenantID, time.Now().Year())
	if err != nil {
		return nil, err
	}

	reval, err := costing.NewCostRevaluation(tenantID, number, req.ProductID,
		product.AverageCost, req.NewUnitCost, quantity,
		costing.ReasonCode(req.Reason), req.PostingDate)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	reval.Notes = req.Notes

	if err := reval.Submit(userID); err != nil {
		return nil, err
	}

	if !req.AutoApprove {
		if err := s.revalRepo.Save(ctx, reval); err != nil {
			return nil, err
		}
		return toRevaluationResponse(reval), nil
	}

	if err := reval.Approve(userID); err != nil {
		return nil, err
	}
	if err := s.postToGL(ctx, tenantID, userID, reval, req.InventoryAccountID, req.AdjustmentAccountID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return toRevaluationResponse(reval), nil
}

// Approve moves a SUBMITTED revaluation to APPROVED
func (s *RevaluationService) Approve(ctx context.Context, tenantID, id, userID uuid.UUID) (*RevaluationResponse, error) {
	reval, err := s.findRevaluation(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := reval.Approve(userID); err != nil {
		return nil, err
	}
	if err := s.revalRepo.Save(ctx, reval); err != nil {
		return nil, err
	}
	return toRevaluationResponse(reval), nil
}

// Reject terminates a pre-POSTED revaluation
func (s *RevaluationService) Reject(ctx context.Context, tenantID, id, userID uuid.UUID, reason string) (*RevaluationResponse, error) {
	reval, err := s.findRevaluation(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := reval.Reject(userID, reason); err != nil {
		return nil, err
	}
	if err := s.revalRepo.Save(ctx, reval); err != nil {
		return nil, err
	}
	return toRevaluationResponse(reval), nil
}

// Post posts an APPROVED revaluation's inventory adjustment to the
// general ledger
func (s *RevaluationService) Post(ctx context.Context, tenantID, id, userID uuid.UUID, inventoryAccountID, adjustmentAccountID uuid.UUID) (*RevaluationResponse, error) {
	reval, err := s.findRevaluation(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := s.postToGL(ctx, tenantID, userID, reval, inventoryAccountID, adjustmentAccountID); err != nil {
		return nil, err
	}
	return toRevaluationResponse(reval), nil
}

// Get fetches one revaluation within the tenant's scope
func (s *RevaluationService) Get(ctx context.Context, tenantID, id uuid.UUID) (*RevaluationResponse, error) {
	reval, err := s.findRevaluation(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return toRevaluationResponse(reval), nil
}

// List pages revaluations, optionally filtered by status
func (s *RevaluationService) List(ctx context.Context, tenantID uuid.UUID, status string, page, pageSize int) (*shared.Paginated[RevaluationResponse], error) {
	var statusFilter *costing.RevaluationStatus
	if status != "" {
		st := costing.RevaluationStatus(status)
		statusFilter = &st
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 20
	}

	revals, err := s.revalRepo.FindAllForTenant(ctx, tenantID, statusFilter, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	total, err := s.revalRepo.CountForTenant(ctx, tenantID, statusFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]RevaluationResponse, 0, len(revals))
	for _, r := range revals {
		responses = append(responses, *toRevaluationResponse(r))
	}
	result := shared.NewPaginated(responses, total, page, pageSize)
	return &result, nil
}

// postToGL builds the balanced adjustment transaction, posts it and
// marks the revaluation POSTED, all in one storage transaction. The
// debit/credit direction follows the sign of the value difference: a
// write-up debits inventory, a write-down credits it.
func (s *RevaluationService) postToGL(ctx context.Context, tenantID, userID uuid.UUID, reval *costing.CostRevaluation, inventoryAccountID, adjustmentAccountID uuid.UUID) error {
	if inventoryAccountID == uuid.Nil || adjustmentAccountID == uuid.Nil {
		return shared.NewValidationError("Inventory and adjustment account IDs are required for posting")
	}
	if reval.ValueDifference.IsZero() {
		return shared.NewValidationError("Cannot post a revaluation with zero value difference")
	}

	amount := reval.ValueDifference.Abs()
	inventorySide := ledger.EntryTypeDebit
	if reval.IsWriteOff() {
		inventorySide = ledger.EntryTypeCredit
	}

	number, err := s.txRepo.NextNumber(ctx, tenantID, time.Now().Year())
	if err != nil {
		return err
	}

	sourceType := ledger.SourceTypeRevaluation
	tx, err := ledger.NewTransaction(tenantID, number, reval.PostingDate, ledger.TransactionTypeRevaluation,
		fmt.Sprintf("Cost revaluation %s for product %s", reval.Number, reval.ProductID),
		[]ledger.EntryInput{
			{AccountID: inventoryAccountID, Type: inventorySide, Amount: amount},
			{AccountID: adjustmentAccountID, Type: inventorySide.Opposite(), Amount: amount},
		}, &sourceType, &reval.ID)
	if err != nil {
		return err
	}
	if err := tx.Post(userID); err != nil {
		return err
	}
	if err := reval.MarkPosted(tx.ID); err != nil {
		return err
	}

	return s.uow.Execute(ctx, func(ctx context.Context) error {
		if err := s.txRepo.Save(ctx, tx); err != nil {
			return err
		}
		return s.revalRepo.Save(ctx, reval)
	})
}

func (s *RevaluationService) findRevaluation(ctx context.Context, tenantID, id uuid.UUID) (*costing.CostRevaluation, error) {
	reval, err := s.revalRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if reval == nil {
		return nil, shared.NewNotFoundError("Revaluation not found")
	}
	return reval, nil
}

func toRevaluationResponse(r *costing.CostRevaluation) *RevaluationResponse {
	return &RevaluationResponse{
		ID:              r.ID,
		Number:          r.Number,
		ProductID:       r.ProductID,
		OldUnitCost:     r.OldUnitCost,
		NewUnitCost:     r.NewUnitCost,
		Quantity:        r.Quantity,
		ValueDifference: r.ValueDifference,
		Reason:          string(r.Reason),
		Status:          string(r.Status),
		PostingDate:     r.PostingDate,
		TransactionID:   r.TransactionID,
		CreatedAt:       r.CreatedAt,
	}
}
