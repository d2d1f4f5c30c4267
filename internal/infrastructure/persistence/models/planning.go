package models

import (
	"time"

	"github.com/finbooks/backend/internal/domain/planning"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SafetyStockModel is the persistence model for the SafetyStock aggregate root.
type SafetyStockModel struct {
	TenantAggregateModel
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_safety_stock_product"`
	WarehouseID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_safety_stock_product"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Method        string          `gorm:"type:varchar(30);not null"`
	EffectiveFrom time.Time       `gorm:"not null;index"`
	EffectiveTo   *time.Time
	Active        bool `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (SafetyStockModel) TableName() string {
	return "safety_stocks"
}

// ToDomain converts the persistence model to a domain SafetyStock entity.
func (m *SafetyStockModel) ToDomain() *planning.SafetyStock {
	s := &planning.SafetyStock{
		ProductID:     m.ProductID,
		WarehouseID:   m.WarehouseID,
		Quantity:      m.Quantity,
		Method:        m.Method,
		EffectiveFrom: m.EffectiveFrom,
		EffectiveTo:   m.EffectiveTo,
		Active:        m.Active,
	}
	m.PopulateTenantAggregateRoot(&s.TenantAggregateRoot)
	return s
}

// FromDomain populates the persistence model from a domain SafetyStock entity.
func (m *SafetyStockModel) FromDomain(s *planning.SafetyStock) {
	m.FromDomainTenantAggregateRoot(s.TenantAggregateRoot)
	m.ProductID = s.ProductID
	m.WarehouseID = s.WarehouseID
	m.Quantity = s.Quantity
	m.Method = s.Method
	m.EffectiveFrom = s.EffectiveFrom
	m.EffectiveTo = s.EffectiveTo
	m.Active = s.Active
}

// SafetyStockModelFromDomain creates a new persistence model from a domain SafetyStock.
func SafetyStockModelFromDomain(s *planning.SafetyStock) *SafetyStockModel {
	m := &SafetyStockModel{}
	m.FromDomain(s)
	return m
}

// DemandSampleModel is one day's settled sales demand for a
// product/warehouse pair. Rows are written by the order settlement flow
// and read in 90-day trailing windows by the planning queries.
type DemandSampleModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	TenantID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_demand_sample_scope"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_demand_sample_scope"`
	WarehouseID uuid.UUID       `gorm:"type:uuid;not null;index:idx_demand_sample_scope"`
	Date        time.Time       `gorm:"type:date;not null;index"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DemandSampleModel) TableName() string {
	return "demand_samples"
}

// PurchaseLeadModel records one received purchase line's lead time.
// Rows are read in 180-day trailing windows to derive lead-time inputs.
type PurchaseLeadModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID    uuid.UUID `gorm:"type:uuid;not null;index:idx_purchase_lead_scope"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index:idx_purchase_lead_scope"`
	WarehouseID uuid.UUID `gorm:"type:uuid;not null;index:idx_purchase_lead_scope"`
	OrderedAt   time.Time `gorm:"not null"`
	ReceivedAt  time.Time `gorm:"not null;index"`
	CreatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PurchaseLeadModel) TableName() string {
	return "purchase_leads"
}

// LeadTimeDays returns the whole-day lead time of this receipt
func (m *PurchaseLeadModel) LeadTimeDays() int {
	return int(m.ReceivedAt.Sub(m.OrderedAt).Hours() / 24)
}
