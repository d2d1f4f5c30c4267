package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryBalanceCache(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	accountID := uuid.New()

	t.Run("miss on empty cache", func(t *testing.T) {
		c := NewInMemoryBalanceCache(time.Minute)
		_, found, err := c.GetBalance(ctx, tenantID, accountID)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("set then get", func(t *testing.T) {
		c := NewInMemoryBalanceCache(time.Minute)
		require.NoError(t, c.SetBalance(ctx, tenantID, accountID, decimal.NewFromFloat(1234.56)))

		balance, found, err := c.GetBalance(ctx, tenantID, accountID)
		require.NoError(t, err)
		assert.True(t, found)
		assert.True(t, balance.Equal(decimal.NewFromFloat(1234.56)))
	})

	t.Run("invalidate removes the entry", func(t *testing.T) {
		c := NewInMemoryBalanceCache(time.Minute)
		require.NoError(t, c.SetBalance(ctx, tenantID, accountID, decimal.NewFromInt(10)))
		require.NoError(t, c.InvalidateBalance(ctx, tenantID, accountID))

		_, found, err := c.GetBalance(ctx, tenantID, accountID)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("expired entry reads as a miss", func(t *testing.T) {
		c := NewInMemoryBalanceCache(time.Minute)
		require.NoError(t, c.SetBalance(ctx, tenantID, accountID, decimal.NewFromInt(10)))

		c.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

		_, found, err := c.GetBalance(ctx, tenantID, accountID)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("tenants do not share entries", func(t *testing.T) {
		c := NewInMemoryBalanceCache(time.Minute)
		require.NoError(t, c.SetBalance(ctx, tenantID, accountID, decimal.NewFromInt(10)))

		_, found, err := c.GetBalance(ctx, uuid.New(), accountID)
		require.NoError(t, err)
		assert.False(t, found)
	})
}
