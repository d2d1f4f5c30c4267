package models

import (
	"time"

	"github.com/finbooks/backend/internal/domain/costing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StandardCostModel is the persistence model for one standard cost version.
type StandardCostModel struct {
	TenantAggregateModel
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	MaterialCost  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LaborCost     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	OverheadCost  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalCost     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	EffectiveFrom time.Time       `gorm:"not null;index"`
	EffectiveTo   *time.Time      `gorm:"index"`
	Notes         string          `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (StandardCostModel) TableName() string {
	return "standard_costs"
}

// ToDomain converts the persistence model to a domain StandardCost entity.
func (m *StandardCostModel) ToDomain() *costing.StandardCost {
	c := &costing.StandardCost{
		ProductID:     m.ProductID,
		MaterialCost:  m.MaterialCost,
		LaborCost:     m.LaborCost,
		OverheadCost:  m.OverheadCost,
		TotalCost:     m.TotalCost,
		EffectiveFrom: m.EffectiveFrom,
		EffectiveTo:   m.EffectiveTo,
		Notes:         m.Notes,
	}
	m.PopulateTenantAggregateRoot(&c.TenantAggregateRoot)
	return c
}

// FromDomain populates the persistence model from a domain StandardCost entity.
func (m *StandardCostModel) FromDomain(c *costing.StandardCost) {
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	m.ProductID = c.ProductID
	m.MaterialCost = c.MaterialCost
	m.LaborCost = c.LaborCost
	m.OverheadCost = c.OverheadCost
	m.TotalCost = c.TotalCost
	m.EffectiveFrom = c.EffectiveFrom
	m.EffectiveTo = c.EffectiveTo
	m.Notes = c.Notes
}

// StandardCostModelFromDomain creates a new persistence model from a domain StandardCost.
func StandardCostModelFromDomain(c *costing.StandardCost) *StandardCostModel {
	m := &StandardCostModel{}
	m.FromDomain(c)
	return m
}

// BOMComponentModel is the persistence model for one bill-of-material line.
type BOMComponentModel struct {
	TenantAggregateModel
	ParentProductID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ComponentProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	QuantityPer        decimal.Decimal `gorm:"type:decimal(18,6);not null"`
	ScrapPercent       decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (BOMComponentModel) TableName() string {
	return "bom_components"
}

// ToDomain converts the persistence model to a domain BOMComponent entity.
func (m *BOMComponentModel) ToDomain() *costing.BOMComponent {
	c := &costing.BOMComponent{
		ParentProductID:    m.ParentProductID,
		ComponentProductID: m.ComponentProductID,
		QuantityPer:        m.QuantityPer,
		ScrapPercent:       m.ScrapPercent,
	}
	m.PopulateTenantAggregateRoot(&c.TenantAggregateRoot)
	return c
}

// FromDomain populates the persistence model from a domain BOMComponent entity.
func (m *BOMComponentModel) FromDomain(c *costing.BOMComponent) {
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	m.ParentProductID = c.ParentProductID
	m.ComponentProductID = c.ComponentProductID
	m.QuantityPer = c.QuantityPer
	m.ScrapPercent = c.ScrapPercent
}

// BOMComponentModelFromDomain creates a new persistence model from a domain BOMComponent.
func BOMComponentModelFromDomain(c *costing.BOMComponent) *BOMComponentModel {
	m := &BOMComponentModel{}
	m.FromDomain(c)
	return m
}

// RevaluationModel is the persistence model for the CostRevaluation aggregate root.
type RevaluationModel struct {
	TenantAggregateModel
	Number          string                   `gorm:"type:varchar(30);not null;uniqueIndex:idx_revaluation_tenant_number,priority:2"`
	ProductID       uuid.UUID                `gorm:"type:uuid;not null;index"`
	OldUnitCost     decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	NewUnitCost     decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	Quantity        decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	ValueDifference decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	Reason          costing.ReasonCode       `gorm:"type:varchar(30);not null"`
	Notes           string                   `gorm:"type:varchar(500)"`
	PostingDate     time.Time                `gorm:"not null;index"`
	Status          costing.RevaluationStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	TransactionID   *uuid.UUID               `gorm:"type:uuid"`
	SubmittedBy     *uuid.UUID               `gorm:"type:uuid"`
	ApprovedBy      *uuid.UUID               `gorm:"type:uuid"`
	RejectedBy      *uuid.UUID               `gorm:"type:uuid"`
	RejectedReason  string                   `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (RevaluationModel) TableName() string {
	return "cost_revaluations"
}

// ToDomain converts the persistence model to a domain CostRevaluation entity.
func (m *RevaluationModel) ToDomain() *costing.CostRevaluation {
	r := &costing.CostRevaluation{
		Number:          m.Number,
		ProductID:       m.ProductID,
		OldUnitCost:     m.OldUnitCost,
		NewUnitCost:     m.NewUnitCost,
		Quantity:        m.Quantity,
		ValueDifference: m.ValueDifference,
		Reason:          m.Reason,
		Notes:           m.Notes,
		PostingDate:     m.PostingDate,
		Status:          m.Status,
		TransactionID:   m.TransactionID,
		SubmittedBy:     m.SubmittedBy,
		ApprovedBy:      m.ApprovedBy,
		RejectedBy:      m.RejectedBy,
		RejectedReason:  m.RejectedReason,
	}
	m.PopulateTenantAggregateRoot(&r.TenantAggregateRoot)
	return r
}

// FromDomain populates the persistence model from a domain CostRevaluation entity.
func (m *RevaluationModel) FromDomain(r *costing.CostRevaluation) {
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	m.Number = r.Number
	m.ProductID = r.ProductID
	m.OldUnitCost = r.OldUnitCost
	m.NewUnitCost = r.NewUnitCost
	m.Quantity = r.Quantity
	m.ValueDifference = r.ValueDifference
	m.Reason = r.Reason
	m.Notes = r.Notes
	m.PostingDate = r.PostingDate
	m.Status = r.Status
	m.TransactionID = r.TransactionID
	m.SubmittedBy = r.SubmittedBy
	m.ApprovedBy = r.ApprovedBy
	m.RejectedBy = r.RejectedBy
	m.RejectedReason = r.RejectedReason
}

// RevaluationModelFromDomain creates a new persistence model from a domain CostRevaluation.
func RevaluationModelFromDomain(r *costing.CostRevaluation) *RevaluationModel {
	m := &RevaluationModel{}
	m.FromDomain(r)
	return m
}
