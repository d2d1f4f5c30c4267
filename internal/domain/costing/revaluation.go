package costing

import (
	"fmt"
	"time"

	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RevaluationStatus is the approval state of a cost revaluation
type RevaluationStatus string

const (
	RevaluationDraft     RevaluationStatus = "DRAFT"
	RevaluationSubmitted RevaluationStatus = "SUBMITTED"
	RevaluationApproved  RevaluationStatus = "APPROVED"
	RevaluationPosted    RevaluationStatus = "POSTED"
	RevaluationRejected  RevaluationStatus = "REJECTED"
)

// ReasonCode explains why a revaluation was raised
type ReasonCode string

const (
	ReasonMarketChange   ReasonCode = "MARKET_CHANGE"
	ReasonObsolescence   ReasonCode = "OBSOLESCENCE"
	ReasonDamage         ReasonCode = "DAMAGE"
	ReasonCostCorrection ReasonCode = "COST_CORRECTION"
	ReasonOther          ReasonCode = "OTHER"
)

// IsValid checks if the reason code is valid
func (r ReasonCode) IsValid() bool {
	switch r {
	case ReasonMarketChange, ReasonObsolescence, ReasonDamage, ReasonCostCorrection, ReasonOther:
		return true
	}
	return false
}

// CostRevaluation is a proposed or posted adjustment to a product's
// inventory unit cost. ValueDifference is fixed at creation as
// (new - old) * quantity and drives the debit/credit direction of the
// GL adjustment once posted.
type CostRevaluation struct {
	shared.TenantAggregateRoot
	Number          string            `json:"number"`
	ProductID       uuid.UUID         `json:"product_id"`
	OldUnitCost     decimal.Decimal   `json:"old_unit_cost"`
	NewUnitCost     decimal.Decimal   `json:"new_unit_cost"`
	Quantity        decimal.Decimal   `json:"quantity"`
	ValueDifference decimal.Decimal   `json:"value_difference"`
	Reason          ReasonCode        `json:"reason"`
	Notes           string            `json:"notes,omitempty"`
	PostingDate     time.Time         `json:"posting_date"`
	Status          RevaluationStatus `json:"status"`
	TransactionID   *uuid.UUID        `json:"transaction_id,omitempty"`
	SubmittedBy     *uuid.UUID        `json:"submitted_by,omitempty"`
	ApprovedBy      *uuid.UUID        `json:"approved_by,omitempty"`
	RejectedBy      *uuid.UUID        `json:"rejected_by,omitempty"`
	RejectedReason  string            `json:"rejected_reason,omitempty"`
}

// NewCostRevaluation creates a DRAFT revaluation
func NewCostRevaluation(tenantID uuid.UUID, number string, productID uuid.UUID, oldCost, newCost, quantity decimal.Decimal, reason ReasonCode, postingDate time.Time) (*CostRevaluation, error) {
	if number == "" {
		return nil, shared.NewValidationError("Revaluation number cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewValidationError("Product ID cannot be empty")
	}
	if newCost.IsNegative() {
		return nil, shared.NewValidationError("New unit cost cannot be negative")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewValidationError("Quantity must be positive")
	}
	if !reason.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("Invalid reason code: %s", reason))
	}
	if postingDate.IsZero() {
		postingDate = time.Now()
	}
	return &CostRevaluation{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Number:              number,
		ProductID:           productID,
		OldUnitCost:         oldCost,
		NewUnitCost:         newCost,
		Quantity:            quantity,
		ValueDifference:     newCost.Sub(oldCost).Mul(quantity),
		Reason:              reason,
		PostingDate:         postingDate,
		Status:              RevaluationDraft,
	}, nil
}

// Submit moves DRAFT to SUBMITTED
func (r *CostRevaluation) Submit(userID uuid.UUID) error {
	if r.Status != RevaluationDraft {
		return shared.NewInvalidStateError(fmt.Sprintf("Cannot submit revaluation in %s status", r.Status))
	}
	r.Status = RevaluationSubmitted
	r.SubmittedBy = &userID
	r.Touch()
	r.IncrementVersion()
	return nil
}

// Approve moves SUBMITTED to APPROVED
func (r *CostRevaluation) Approve(userID uuid.UUID) error {
	if r.Status != RevaluationSubmitted {
		return shared.NewInvalidStateError(fmt.Sprintf("Cannot approve revaluation in %s status", r.Status))
	}
	r.Status = RevaluationApproved
	r.ApprovedBy = &userID
	r.Touch()
	r.IncrementVersion()
	return nil
}

// Reject terminates any pre-POSTED revaluation
func (r *CostRevaluation) Reject(userID uuid.UUID, reason string) error {
	switch r.Status {
	case RevaluationDraft, RevaluationSubmitted, RevaluationApproved:
	default:
		return shared.NewInvalidStateError(fmt.Sprintf("Cannot reject revaluation in %s status", r.Status))
	}
	r.Status = RevaluationRejected
	r.RejectedBy = &userID
	r.RejectedReason = reason
	r.Touch()
	r.IncrementVersion()
	return nil
}

// MarkPosted records the GL transaction and moves APPROVED to POSTED
func (r *CostRevaluation) MarkPosted(transactionID uuid.UUID) error {
	if r.Status != RevaluationApproved {
		return shared.NewInvalidStateError(fmt.Sprintf("Cannot post revaluation in %s status", r.Status))
	}
	if transactionID == uuid.Nil {
		return shared.NewValidationError("Transaction ID cannot be empty")
	}
	r.Status = RevaluationPosted
	r.TransactionID = &transactionID
	r.Touch()
	r.IncrementVersion()
	return nil
}

// IsWriteOff reports whether the adjustment lowers inventory value
func (r *CostRevaluation) IsWriteOff() bool {
	return r.ValueDifference.IsNegative()
}
