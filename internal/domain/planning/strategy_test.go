package planning

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseStats() DemandStats {
	return DemandStats{
		AvgDailyDemand:    decimal.NewFromInt(10),
		MaxDailyDemand:    decimal.NewFromInt(15),
		AvgLeadTimeDays:   decimal.NewFromInt(14),
		MaxLeadTimeDays:   decimal.NewFromInt(21),
		DemandStdDev:      decimal.NewFromInt(10),
		DemandHistoryDays: 90,
		AvgMonthlyDemand:  decimal.NewFromInt(300),
		UnitCost:          decimal.NewFromInt(50),
		CurrentQuantity:   decimal.NewFromInt(20),
		ServiceLevel:      decimal.NewFromInt(95),
	}
}

func TestSimpleStrategy(t *testing.T) {
	calc := NewSimpleStrategy()

	t.Run("worst case minus usual demand", func(t *testing.T) {
		r := calc.Calculate(baseStats())
		// 15*21 - 10*14 = 315 - 140 = 175
		assert.True(t, r.SuggestedQuantity.Equal(decimal.NewFromInt(175)), "got %s", r.SuggestedQuantity)
		assert.Equal(t, "SIMPLE", r.Method)
	})

	t.Run("regional multiplier scales the buffer", func(t *testing.T) {
		stats := baseStats()
		stats.RegionalRiskMultiplier = decimal.RequireFromString("1.2")
		r := calc.Calculate(stats)
		assert.True(t, r.SuggestedQuantity.Equal(decimal.NewFromInt(210)), "got %s", r.SuggestedQuantity)
	})

	t.Run("never suggests below zero", func(t *testing.T) {
		stats := baseStats()
		stats.MaxDailyDemand = decimal.NewFromInt(1)
		stats.MaxLeadTimeDays = decimal.NewFromInt(1)
		r := calc.Calculate(stats)
		assert.True(t, r.SuggestedQuantity.IsZero())
	})
}

func TestStatisticalStrategy(t *testing.T) {
	calc := NewStatisticalStrategy()

	t.Run("z-score times sqrt lead time times stddev", func(t *testing.T) {
		r := calc.Calculate(baseStats())
		// 1.65 * sqrt(14) * 10 = 61.73...
		f, _ := r.SuggestedQuantity.Float64()
		assert.InDelta(t, 61.73, f, 0.01)
	})

	t.Run("falls back to simple below seven days of history", func(t *testing.T) {
		stats := baseStats()
		stats.DemandHistoryDays = 5
		r := calc.Calculate(stats)
		assert.True(t, r.SuggestedQuantity.Equal(decimal.NewFromInt(175)))
		assert.Contains(t, r.Notes, "Fell back")
	})

	t.Run("unlisted service level defaults to 1.65", func(t *testing.T) {
		stats := baseStats()
		stats.ServiceLevel = decimal.NewFromInt(93)
		r := calc.Calculate(stats)
		f, _ := r.SuggestedQuantity.Float64()
		assert.InDelta(t, 61.73, f, 0.01)
	})
}

func TestZScoreTable(t *testing.T) {
	tests := []struct {
		level string
		want  string
	}{
		{"50", "0"},
		{"90", "1.28"},
		{"95", "1.65"},
		{"99", "2.33"},
		{"99.9", "3.09"},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level := decimal.RequireFromString(tt.level)
			assert.True(t, ZScore(level).Equal(decimal.RequireFromString(tt.want)))
		})
	}
}

func TestPercentageStrategy(t *testing.T) {
	calc := NewPercentageStrategy()
	r := calc.Calculate(baseStats())
	// 300 * 0.25 = 75
	assert.True(t, r.SuggestedQuantity.Equal(decimal.NewFromInt(75)), "got %s", r.SuggestedQuantity)
}

func TestFinancialImpactAndRiskReduction(t *testing.T) {
	t.Run("impact is unit cost times quantity delta", func(t *testing.T) {
		r := NewPercentageStrategy().Calculate(baseStats())
		// (75 - 20) * 50 = 2750
		assert.True(t, r.FinancialImpact.Equal(decimal.NewFromInt(2750)), "got %s", r.FinancialImpact)
	})

	t.Run("negative impact when reducing stock", func(t *testing.T) {
		stats := baseStats()
		stats.CurrentQuantity = decimal.NewFromInt(100)
		r := NewPercentageStrategy().Calculate(stats)
		assert.True(t, r.FinancialImpact.IsNegative())
		assert.True(t, r.RiskReduction.IsZero())
	})

	t.Run("risk reduction is bounded", func(t *testing.T) {
		stats := baseStats()
		stats.CurrentQuantity = decimal.Zero
		r := NewPercentageStrategy().Calculate(stats)
		assert.True(t, r.RiskReduction.LessThanOrEqual(decimal.NewFromInt(95)))
	})
}

func TestCalculatorFor(t *testing.T) {
	for _, name := range []StrategyName{StrategySimple, StrategyStatistical, StrategyPercentage} {
		t.Run(string(name), func(t *testing.T) {
			calc, err := CalculatorFor(name)
			require.NoError(t, err)
			assert.Equal(t, string(name), calc.Name())
		})
	}
	_, err := CalculatorFor("GUESSWORK")
	assert.Error(t, err)
}

func TestSafetyStockRecord(t *testing.T) {
	tenant := uuid.New()

	t.Run("supersede closes the record", func(t *testing.T) {
		s, err := NewSafetyStock(tenant, uuid.New(), uuid.New(), decimal.NewFromInt(75), "SIMPLE", time.Now().Add(-time.Hour))
		require.NoError(t, err)
		assert.True(t, s.IsEffectiveAt(time.Now()))

		s.Supersede(time.Now())
		assert.False(t, s.Active)
		require.NotNil(t, s.EffectiveTo)
		assert.False(t, s.IsEffectiveAt(time.Now().Add(time.Hour)))
	})

	t.Run("not effective before its start", func(t *testing.T) {
		s, err := NewSafetyStock(tenant, uuid.New(), uuid.New(), decimal.NewFromInt(10), "SIMPLE", time.Now().Add(time.Hour))
		require.NoError(t, err)
		assert.False(t, s.IsEffectiveAt(time.Now()))
	})

	t.Run("rejects negative quantity", func(t *testing.T) {
		_, err := NewSafetyStock(tenant, uuid.New(), uuid.New(), decimal.NewFromInt(-1), "SIMPLE", time.Now())
		assert.Error(t, err)
	})
}
