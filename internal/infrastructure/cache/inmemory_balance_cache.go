package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InMemoryBalanceCache is a process-local balance cache for single
// instance deployments and tests. Entries expire lazily on read.
type InMemoryBalanceCache struct {
	mu      sync.RWMutex
	entries map[string]inMemoryBalanceEntry
	ttl     time.Duration
	now     func() time.Time
}

type inMemoryBalanceEntry struct {
	balance   decimal.Decimal
	expiresAt time.Time
}

// NewInMemoryBalanceCache creates a new in-memory balance cache
func NewInMemoryBalanceCache(ttl time.Duration) *InMemoryBalanceCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &InMemoryBalanceCache{
		entries: make(map[string]inMemoryBalanceEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func balanceKey(tenantID, accountID uuid.UUID) string {
	return tenantID.String() + ":" + accountID.String()
}

// GetBalance returns the cached balance and whether it was present
func (c *InMemoryBalanceCache) GetBalance(ctx context.Context, tenantID, accountID uuid.UUID) (decimal.Decimal, bool, error) {
	key := balanceKey(tenantID, accountID)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return decimal.Zero, false, nil
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return decimal.Zero, false, nil
	}

	return entry.balance, true, nil
}

// SetBalance stores the balance with the configured TTL
func (c *InMemoryBalanceCache) SetBalance(ctx context.Context, tenantID, accountID uuid.UUID, balance decimal.Decimal) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[balanceKey(tenantID, accountID)] = inMemoryBalanceEntry{
		balance:   balance,
		expiresAt: c.now().Add(c.ttl),
	}
	return nil
}

// InvalidateBalance removes the cached balance for an account
func (c *InMemoryBalanceCache) InvalidateBalance(ctx context.Context, tenantID, accountID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, balanceKey(tenantID, accountID))
	return nil
}
