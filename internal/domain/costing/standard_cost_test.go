package costing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStandardCost(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("derives total from components", func(t *testing.T) {
		c, err := NewStandardCost(uuid.New(), uuid.New(),
			decimal.NewFromInt(60), decimal.NewFromInt(25), decimal.NewFromInt(15), from, nil)
		require.NoError(t, err)
		assert.True(t, c.TotalCost.Equal(decimal.NewFromInt(100)))
	})

	t.Run("rejects negative components", func(t *testing.T) {
		_, err := NewStandardCost(uuid.New(), uuid.New(),
			decimal.NewFromInt(-1), decimal.Zero, decimal.Zero, from, nil)
		assert.Error(t, err)
	})

	t.Run("rejects inverted range", func(t *testing.T) {
		to := from.Add(-time.Hour)
		_, err := NewStandardCost(uuid.New(), uuid.New(),
			decimal.NewFromInt(10), decimal.Zero, decimal.Zero, from, &to)
		assert.Error(t, err)
	})
}

func TestStandardCostOverlaps(t *testing.T) {
	jan := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	jun := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	dec := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

	closed, err := NewStandardCost(uuid.New(), uuid.New(),
		decimal.NewFromInt(10), decimal.Zero, decimal.Zero, jan, &jun)
	require.NoError(t, err)
	open, err := NewStandardCost(uuid.New(), uuid.New(),
		decimal.NewFromInt(10), decimal.Zero, decimal.Zero, jun, nil)
	require.NoError(t, err)

	t.Run("adjacent ranges do not overlap", func(t *testing.T) {
		assert.False(t, closed.Overlaps(jun, nil))
		assert.False(t, open.Overlaps(jan, &jun))
	})

	t.Run("intersecting ranges overlap", func(t *testing.T) {
		mar := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
		assert.True(t, closed.Overlaps(mar, &dec))
		assert.True(t, open.Overlaps(dec, nil))
	})

	t.Run("open ended version overlaps everything after its start", func(t *testing.T) {
		assert.True(t, open.Overlaps(dec, nil))
		assert.False(t, open.Overlaps(jan, &jun))
	})
}

func TestStandardCostEffectiveness(t *testing.T) {
	jan := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	jun := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	c, err := NewStandardCost(uuid.New(), uuid.New(),
		decimal.NewFromInt(10), decimal.Zero, decimal.Zero, jan, nil)
	require.NoError(t, err)

	assert.True(t, c.IsEffectiveAt(jun))
	assert.False(t, c.IsEffectiveAt(jan.Add(-time.Hour)))

	t.Run("close caps the range", func(t *testing.T) {
		require.NoError(t, c.Close(jun))
		assert.False(t, c.IsEffectiveAt(jun))
		assert.True(t, c.IsEffectiveAt(jun.Add(-time.Hour)))
	})

	t.Run("cannot close before the start", func(t *testing.T) {
		other, err := NewStandardCost(uuid.New(), uuid.New(),
			decimal.NewFromInt(10), decimal.Zero, decimal.Zero, jun, nil)
		require.NoError(t, err)
		assert.Error(t, other.Close(jan))
	})
}

func TestClassifyVariance(t *testing.T) {
	threshold := DefaultVarianceThresholdPercent

	tests := []struct {
		name    string
		percent string
		want    VarianceLevel
	}{
		{"well inside threshold", "5", VarianceNormal},
		{"exactly at threshold", "10", VarianceNormal},
		{"above threshold", "12.5", VarianceWarning},
		{"exactly twenty", "20", VarianceWarning},
		{"above twenty", "20.01", VarianceCritical},
		{"negative drift counts by magnitude", "-25", VarianceCritical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyVariance(decimal.RequireFromString(tt.percent), threshold)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewVarianceItem(t *testing.T) {
	t.Run("computes drift percentage", func(t *testing.T) {
		item := NewVarianceItem(uuid.New(), "Widget",
			decimal.NewFromInt(100), decimal.NewFromInt(115), DefaultVarianceThresholdPercent)
		assert.True(t, item.Variance.Equal(decimal.NewFromInt(15)))
		assert.True(t, item.VariancePercent.Equal(decimal.NewFromInt(15)))
		assert.Equal(t, VarianceWarning, item.Level)
	})

	t.Run("zero standard cost yields zero percent", func(t *testing.T) {
		item := NewVarianceItem(uuid.New(), "Freebie",
			decimal.Zero, decimal.NewFromInt(5), DefaultVarianceThresholdPercent)
		assert.True(t, item.VariancePercent.IsZero())
		assert.Equal(t, VarianceNormal, item.Level)
	})
}

func TestVarianceReport(t *testing.T) {
	report := &VarianceReport{Threshold: DefaultVarianceThresholdPercent}
	report.Add(NewVarianceItem(uuid.New(), "a", decimal.NewFromInt(100), decimal.NewFromInt(130), report.Threshold))
	report.Add(NewVarianceItem(uuid.New(), "b", decimal.NewFromInt(100), decimal.NewFromInt(112), report.Threshold))
	report.Add(NewVarianceItem(uuid.New(), "c", decimal.NewFromInt(100), decimal.NewFromInt(103), report.Threshold))

	assert.Equal(t, 1, report.Critical)
	assert.Equal(t, 1, report.Warning)
	assert.Equal(t, 1, report.Normal)
	assert.Len(t, report.Items, 3)
}
