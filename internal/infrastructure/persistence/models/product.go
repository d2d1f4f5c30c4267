package models

import (
	"github.com/finbooks/backend/internal/domain/costing"
	"github.com/shopspring/decimal"
)

// ProductModel carries the inventory-valuation snapshot the costing and
// planning queries read: moving-average cost, last purchase price and
// on-hand quantity. The write side lives in the inventory flows that
// settle receipts and issues.
type ProductModel struct {
	TenantAggregateModel
	Name                string          `gorm:"type:varchar(200);not null"`
	SKU                 string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_product_tenant_sku,priority:2"`
	AverageCost         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LatestPurchasePrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	QuantityOnHand      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Active              bool            `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToProductCost converts the persistence model to the costing read model.
func (m *ProductModel) ToProductCost() *costing.ProductCost {
	return &costing.ProductCost{
		ProductID:           m.ID,
		ProductName:         m.Name,
		AverageCost:         m.AverageCost,
		LatestPurchasePrice: m.LatestPurchasePrice,
		QuantityOnHand:      m.QuantityOnHand,
	}
}
