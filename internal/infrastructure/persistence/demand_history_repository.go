package persistence

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/finbooks/backend/internal/domain/planning"
	"github.com/finbooks/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	demandWindowDays = 90
	leadWindowDays   = 180
	// defaultLeadTimeDays is assumed when no receipts fall in the window
	defaultLeadTimeDays = 7
)

// GormDemandHistoryRepository implements planning.DemandHistoryRepository
// over the settled demand samples and purchase receipt lead times.
type GormDemandHistoryRepository struct {
	db *gorm.DB
}

// NewGormDemandHistoryRepository creates a new GormDemandHistoryRepository
func NewGormDemandHistoryRepository(db *gorm.DB) *GormDemandHistoryRepository {
	return &GormDemandHistoryRepository{db: db}
}

// DemandStatsFor aggregates trailing-window demand and lead-time inputs
// for one product/warehouse pair. Demand statistics treat the sampled
// days as the population; days without sales do not pull the average
// down below what the sampled history supports.
func (r *GormDemandHistoryRepository) DemandStatsFor(ctx context.Context, tenantID, productID, warehouseID uuid.UUID) (planning.DemandStats, error) {
	stats := planning.DemandStats{}

	since := time.Now().AddDate(0, 0, -demandWindowDays)

	var daily []struct {
		Date     time.Time
		Quantity decimal.Decimal
	}
	err := dbFrom(ctx, r.db).
		Model(&models.DemandSampleModel{}).
		Select("date, SUM(quantity) AS quantity").
		Where("tenant_id = ? AND product_id = ? AND warehouse_id = ? AND date >= ?",
			tenantID, productID, warehouseID, since).
		Group("date").
		Order("date ASC").
		Find(&daily).Error
	if err != nil {
		return stats, err
	}

	if len(daily) > 0 {
		total := decimal.Zero
		maxDaily := decimal.Zero
		for _, d := range daily {
			total = total.Add(d.Quantity)
			if d.Quantity.GreaterThan(maxDaily) {
				maxDaily = d.Quantity
			}
		}
		days := decimal.NewFromInt(int64(len(daily)))
		avg := total.Div(days)

		variance := decimal.Zero
		for _, d := range daily {
			diff := d.Quantity.Sub(avg)
			variance = variance.Add(diff.Mul(diff))
		}
		varianceF, _ := variance.Div(days).Float64()

		stats.AvgDailyDemand = avg.Round(4)
		stats.MaxDailyDemand = maxDaily
		stats.DemandStdDev = decimal.NewFromFloat(math.Sqrt(varianceF)).Round(4)
		stats.DemandHistoryDays = len(daily)
		stats.AvgMonthlyDemand = avg.Mul(decimal.NewFromInt(30)).Round(4)
	}

	avgLead, maxLead, err := r.leadTimes(ctx, tenantID, productID, warehouseID)
	if err != nil {
		return stats, err
	}
	stats.AvgLeadTimeDays = avgLead
	stats.MaxLeadTimeDays = maxLead

	unitCost, err := r.unitCost(ctx, tenantID, productID)
	if err != nil {
		return stats, err
	}
	stats.UnitCost = unitCost

	return stats, nil
}

func (r *GormDemandHistoryRepository) leadTimes(ctx context.Context, tenantID, productID, warehouseID uuid.UUID) (avg, max decimal.Decimal, err error) {
	since := time.Now().AddDate(0, 0, -leadWindowDays)

	var receipts []models.PurchaseLeadModel
	err = dbFrom(ctx, r.db).
		Where("tenant_id = ? AND product_id = ? AND warehouse_id = ? AND received_at >= ?",
			tenantID, productID, warehouseID, since).
		Find(&receipts).Error
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	if len(receipts) == 0 {
		fallback := decimal.NewFromInt(defaultLeadTimeDays)
		return fallback, fallback, nil
	}

	totalDays := 0
	maxDays := 0
	for _, receipt := range receipts {
		days := receipt.LeadTimeDays()
		totalDays += days
		if days > maxDays {
			maxDays = days
		}
	}
	avg = decimal.NewFromInt(int64(totalDays)).
		Div(decimal.NewFromInt(int64(len(receipts)))).
		Round(2)
	return avg, decimal.NewFromInt(int64(maxDays)), nil
}

func (r *GormDemandHistoryRepository) unitCost(ctx context.Context, tenantID, productID uuid.UUID) (decimal.Decimal, error) {
	var product models.ProductModel
	err := dbFrom(ctx, r.db).
		Where("tenant_id = ? AND id = ?", tenantID, productID).
		First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return product.AverageCost, nil
}
