package costing

import (
	"fmt"
	"time"

	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BOMComponent is one line of a product's bill of materials: the child
// product, how many units of it go into one parent unit, and the scrap
// allowance applied on top.
type BOMComponent struct {
	shared.TenantAggregateRoot
	ParentProductID    uuid.UUID       `json:"parent_product_id"`
	ComponentProductID uuid.UUID       `json:"component_product_id"`
	QuantityPer        decimal.Decimal `json:"quantity_per"`
	ScrapPercent       decimal.Decimal `json:"scrap_percent"`
}

// NewBOMComponent creates a bill-of-materials line
func NewBOMComponent(tenantID, parentID, componentID uuid.UUID, quantityPer, scrapPercent decimal.Decimal) (*BOMComponent, error) {
	if parentID == uuid.Nil || componentID == uuid.Nil {
		return nil, shared.NewValidationError("Parent and component product IDs are required")
	}
	if parentID == componentID {
		return nil, shared.NewValidationError("A product cannot be a component of itself")
	}
	if !quantityPer.IsPositive() {
		return nil, shared.NewValidationError("Quantity per must be positive")
	}
	if scrapPercent.IsNegative() {
		return nil, shared.NewValidationError("Scrap percent cannot be negative")
	}
	return &BOMComponent{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ParentProductID:     parentID,
		ComponentProductID:  componentID,
		QuantityPer:         quantityPer,
		ScrapPercent:        scrapPercent,
	}, nil
}

// EffectiveQuantity is quantity-per grossed up for scrap
func (c *BOMComponent) EffectiveQuantity() decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	return c.QuantityPer.Mul(decimal.NewFromInt(1).Add(c.ScrapPercent.Div(hundred)))
}

// RolledCost is the result of walking a product's BOM tree
type RolledCost struct {
	ProductID       uuid.UUID       `json:"product_id"`
	MaterialCost    decimal.Decimal `json:"material_cost"`
	LaborCost       decimal.Decimal `json:"labor_cost"`
	OverheadCost    decimal.Decimal `json:"overhead_cost"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	ComponentCount  int             `json:"component_count"`
	Variance        decimal.Decimal `json:"variance"`
	VariancePercent decimal.Decimal `json:"variance_percent"`
	Recommendation  string          `json:"recommendation,omitempty"`
}

// bomMaxDepth bounds the component-tree walk as a second guard beyond
// the visited set
const bomMaxDepth = 32

// rollUpRecommendThresholdPercent triggers the update recommendation
var rollUpRecommendThresholdPercent = decimal.NewFromInt(5)

// BOMTree supplies the component lines and cost versions the roll-up
// walks over. Repository implementations satisfy it; tests use in-memory
// maps.
type BOMTree interface {
	ComponentsFor(productID uuid.UUID) ([]*BOMComponent, error)
	EffectiveCostFor(productID uuid.UUID, at time.Time) (*StandardCost, error)
}

// RollUp walks productID's component tree bottom-up, grossing each
// component's cost up by quantity-per and scrap, and compares the rolled
// total against the product's current standard cost. A component that
// itself has a BOM contributes its own rolled cost; a leaf contributes
// its effective StandardCost. Cycles are rejected.
func RollUp(tree BOMTree, productID uuid.UUID, at time.Time) (*RolledCost, error) {
	visited := map[uuid.UUID]bool{}
	result, err := rollUpNode(tree, productID, at, visited, 0)
	if err != nil {
		return nil, err
	}

	current, err := tree.EffectiveCostFor(productID, at)
	if err != nil && !shared.IsNotFound(err) {
		return nil, err
	}
	if current != nil {
		result.Variance = result.TotalCost.Sub(current.TotalCost)
		if current.TotalCost.IsPositive() {
			result.VariancePercent = result.Variance.Div(current.TotalCost).Mul(decimal.NewFromInt(100)).Round(2)
		}
		if result.VariancePercent.Abs().GreaterThan(rollUpRecommendThresholdPercent) {
			result.Recommendation = fmt.Sprintf(
				"Rolled-up cost %s differs from standard cost %s by %s%%; consider creating a new standard cost version",
				result.TotalCost, current.TotalCost, result.VariancePercent)
		}
	} else {
		result.Recommendation = "No effective standard cost on record; consider creating one from the rolled-up cost"
	}
	return result, nil
}

func rollUpNode(tree BOMTree, productID uuid.UUID, at time.Time, visited map[uuid.UUID]bool, depth int) (*RolledCost, error) {
	if depth > bomMaxDepth {
		return nil, shared.NewValidationError("BOM tree exceeds maximum depth")
	}
	if visited[productID] {
		return nil, shared.NewValidationError(fmt.Sprintf("BOM contains a cycle through product %s", productID))
	}
	visited[productID] = true
	defer delete(visited, productID)

	components, err := tree.ComponentsFor(productID)
	if err != nil {
		return nil, err
	}

	result := &RolledCost{ProductID: productID}
	for _, comp := range components {
		qty := comp.EffectiveQuantity()

		children, err := tree.ComponentsFor(comp.ComponentProductID)
		if err != nil {
			return nil, err
		}

		var material, labor, overhead decimal.Decimal
		if len(children) > 0 {
			child, err := rollUpNode(tree, comp.ComponentProductID, at, visited, depth+1)
			if err != nil {
				return nil, err
			}
			material, labor, overhead = child.MaterialCost, child.LaborCost, child.OverheadCost
			result.ComponentCount += child.ComponentCount
		} else {
			cost, err := tree.EffectiveCostFor(comp.ComponentProductID, at)
			if err != nil {
				if shared.IsNotFound(err) {
					return nil, shared.NewValidationError(fmt.Sprintf("Component product %s has no effective standard cost", comp.ComponentProductID))
				}
				return nil, err
			}
			material, labor, overhead = cost.MaterialCost, cost.LaborCost, cost.OverheadCost
		}

		result.MaterialCost = result.MaterialCost.Add(material.Mul(qty))
		result.LaborCost = result.LaborCost.Add(labor.Mul(qty))
		result.OverheadCost = result.OverheadCost.Add(overhead.Mul(qty))
		result.ComponentCount++
	}

	result.MaterialCost = result.MaterialCost.Round(4)
	result.LaborCost = result.LaborCost.Round(4)
	result.OverheadCost = result.OverheadCost.Round(4)
	result.TotalCost = result.MaterialCost.Add(result.LaborCost).Add(result.OverheadCost)
	return result, nil
}
