package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fakeBalanceCache records cache traffic for assertions
type fakeBalanceCache struct {
	mu       sync.Mutex
	balances map[string]decimal.Decimal
	sets     int
	hits     int
}

func newFakeBalanceCache() *fakeBalanceCache {
	return &fakeBalanceCache{balances: make(map[string]decimal.Decimal)}
}

func (c *fakeBalanceCache) GetBalance(_ context.Context, tenantID, accountID uuid.UUID) (decimal.Decimal, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.balances[tenantID.String()+accountID.String()]
	if ok {
		c.hits++
	}
	return b, ok, nil
}

func (c *fakeBalanceCache) SetBalance(_ context.Context, tenantID, accountID uuid.UUID, balance decimal.Decimal) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.balances[tenantID.String()+accountID.String()] = balance
	c.sets++
	return nil
}

func (c *fakeBalanceCache) InvalidateBalance(_ context.Context, tenantID, accountID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.balances, tenantID.String()+accountID.String())
	return nil
}

func postedEntry(accountID uuid.UUID, entryType ledger.EntryType, amount int64, date time.Time, createdAt time.Time) ledger.PostedEntry {
	e := ledger.LedgerEntry{
		AccountID:    accountID,
		Type:         entryType,
		Amount:       decimal.NewFromInt(amount),
		AmountInBase: decimal.NewFromInt(amount),
	}
	e.ID = uuid.New()
	e.CreatedAt = createdAt
	return ledger.PostedEntry{Entry: e, TransactionDate: date}
}

func TestRunningBalance(t *testing.T) {
	tenantID := uuid.New()
	cash, _ := newTestAccounts(t, tenantID)

	jan := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	t.Run("folds entries in date then creation order", func(t *testing.T) {
		txRepo := new(MockTransactionRepository)
		accountRepo := new(MockAccountRepository)
		svc := NewJournalQueryService(txRepo, accountRepo, nil)

		accountRepo.On("FindByIDForTenant", mock.Anything, tenantID, cash.ID).Return(&cash, nil)
		// fed out of order; the fold must reorder by date
		txRepo.On("PostedEntriesForAccount", mock.Anything, tenantID, cash.ID, (*time.Time)(nil)).
			Return([]ledger.PostedEntry{
				postedEntry(cash.ID, ledger.EntryTypeCredit, 30, feb, feb),
				postedEntry(cash.ID, ledger.EntryTypeDebit, 100, jan, jan),
			}, nil)

		resp, err := svc.RunningBalance(context.Background(), tenantID, cash.ID, nil)
		require.NoError(t, err)

		assert.Equal(t, "DEBIT", resp.NormalSide)
		require.Len(t, resp.Lines, 2)
		assert.True(t, resp.Lines[0].Balance.Equal(decimal.NewFromInt(100)))
		assert.True(t, resp.Lines[1].Balance.Equal(decimal.NewFromInt(70)))
		assert.True(t, resp.Balance.Equal(decimal.NewFromInt(70)))
	})

	t.Run("caches the as-of-now balance", func(t *testing.T) {
		txRepo := new(MockTransactionRepository)
		accountRepo := new(MockAccountRepository)
		cache := newFakeBalanceCache()
		svc := NewJournalQueryService(txRepo, accountRepo, cache)

		accountRepo.On("FindByIDForTenant", mock.Anything, tenantID, cash.ID).Return(&cash, nil)
		txRepo.On("PostedEntriesForAccount", mock.Anything, tenantID, cash.ID, (*time.Time)(nil)).
			Return([]ledger.PostedEntry{
				postedEntry(cash.ID, ledger.EntryTypeDebit, 50, jan, jan),
			}, nil)

		_, err := svc.RunningBalance(context.Background(), tenantID, cash.ID, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, cache.sets)
	})

	t.Run("as-of statements bypass the cache", func(t *testing.T) {
		txRepo := new(MockTransactionRepository)
		accountRepo := new(MockAccountRepository)
		cache := newFakeBalanceCache()
		svc := NewJournalQueryService(txRepo, accountRepo, cache)

		asOf := jan
		accountRepo.On("FindByIDForTenant", mock.Anything, tenantID, cash.ID).Return(&cash, nil)
		txRepo.On("PostedEntriesForAccount", mock.Anything, tenantID, cash.ID, &asOf).
			Return([]ledger.PostedEntry{
				postedEntry(cash.ID, ledger.EntryTypeDebit, 50, jan, jan),
			}, nil)

		resp, err := svc.RunningBalance(context.Background(), tenantID, cash.ID, &asOf)
		require.NoError(t, err)
		assert.Equal(t, 0, cache.sets)
		require.NotNil(t, resp.AsOf)
	})

	t.Run("unknown account maps to not found", func(t *testing.T) {
		txRepo := new(MockTransactionRepository)
		accountRepo := new(MockAccountRepository)
		svc := NewJournalQueryService(txRepo, accountRepo, nil)

		missing := uuid.New()
		accountRepo.On("FindByIDForTenant", mock.Anything, tenantID, missing).Return(nil, shared.ErrNotFound)

		_, err := svc.RunningBalance(context.Background(), tenantID, missing, nil)
		require.Error(t, err)
		assert.True(t, shared.IsNotFound(err))
	})
}

func TestAccountBalance(t *testing.T) {
	tenantID := uuid.New()
	cash, revenue := newTestAccounts(t, tenantID)

	jan := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	t.Run("serves a cache hit without touching the repository", func(t *testing.T) {
		txRepo := new(MockTransactionRepository)
		accountRepo := new(MockAccountRepository)
		cache := newFakeBalanceCache()
		require.NoError(t, cache.SetBalance(context.Background(), tenantID, cash.ID, decimal.NewFromInt(250)))
		cache.sets = 0
		svc := NewJournalQueryService(txRepo, accountRepo, cache)

		balance, err := svc.AccountBalance(context.Background(), tenantID, cash.ID)
		require.NoError(t, err)
		assert.True(t, balance.Equal(decimal.NewFromInt(250)))
		assert.Equal(t, 1, cache.hits)
		txRepo.AssertNotCalled(t, "PostedEntriesForAccount", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("recomputes and backfills on a miss", func(t *testing.T) {
		txRepo := new(MockTransactionRepository)
		accountRepo := new(MockAccountRepository)
		cache := newFakeBalanceCache()
		svc := NewJournalQueryService(txRepo, accountRepo, cache)

		accountRepo.On("FindByIDForTenant", mock.Anything, tenantID, revenue.ID).Return(&revenue, nil)
		txRepo.On("PostedEntriesForAccount", mock.Anything, tenantID, revenue.ID, (*time.Time)(nil)).
			Return([]ledger.PostedEntry{
				postedEntry(revenue.ID, ledger.EntryTypeCredit, 90, jan, jan),
			}, nil)

		balance, err := svc.AccountBalance(context.Background(), tenantID, revenue.ID)
		require.NoError(t, err)
		// revenue is credit-normal, so a credit increases it
		assert.True(t, balance.Equal(decimal.NewFromInt(90)))
		assert.Equal(t, 1, cache.sets)
	})
}

func TestListJournal(t *testing.T) {
	tenantID := uuid.New()
	cash, revenue := newTestAccounts(t, tenantID)

	t.Run("rejects an invalid status filter", func(t *testing.T) {
		txRepo := new(MockTransactionRepository)
		accountRepo := new(MockAccountRepository)
		svc := NewJournalQueryService(txRepo, accountRepo, nil)

		_, err := svc.ListJournal(context.Background(), tenantID, JournalListFilter{Status: "PENDING"})
		require.Error(t, err)
		assert.Equal(t, shared.CodeValidation, shared.ErrorCode(err))
	})

	t.Run("clamps page size and derives line metadata", func(t *testing.T) {
		txRepo := new(MockTransactionRepository)
		accountRepo := new(MockAccountRepository)
		svc := NewJournalQueryService(txRepo, accountRepo, nil)

		tx := balancedDraft(t, tenantID, "JE-2026-0001", cash.ID, revenue.ID, 100)
		txRepo.On("FindAllForTenant", mock.Anything, tenantID, mock.MatchedBy(func(f ledger.TransactionFilter) bool {
			return f.Page == 1 && f.PageSize == 20
		})).Return([]ledger.Transaction{*tx}, nil)
		txRepo.On("CountForTenant", mock.Anything, tenantID, mock.Anything).Return(int64(1), nil)
		txRepo.On("ReversedTransactionIDs", mock.Anything, tenantID, []uuid.UUID{tx.ID}).Return(nil, nil)

		page, err := svc.ListJournal(context.Background(), tenantID, JournalListFilter{PageSize: 5000})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)

		line := page.Items[0]
		assert.Equal(t, "JE-2026-0001", line.Number)
		assert.Equal(t, 2, line.EntryCount)
		assert.True(t, line.Balanced)
		assert.True(t, line.TotalDebit.Equal(decimal.NewFromInt(100)))
		assert.Equal(t, int64(1), page.Total)
	})

	t.Run("flags reversed transactions from the back-reference", func(t *testing.T) {
		txRepo := new(MockTransactionRepository)
		accountRepo := new(MockAccountRepository)
		svc := NewJournalQueryService(txRepo, accountRepo, nil)

		reversedTx := balancedDraft(t, tenantID, "JE-2026-0002", cash.ID, revenue.ID, 100)
		plainTx := balancedDraft(t, tenantID, "JE-2026-0003", cash.ID, revenue.ID, 50)
		// Note wording alone must not mark a line as reversed.
		require.NoError(t, plainTx.AppendNote(uuid.New(), "Reversed the warehouse count by hand"))

		txRepo.On("FindAllForTenant", mock.Anything, tenantID, mock.Anything).
			Return([]ledger.Transaction{*reversedTx, *plainTx}, nil)
		txRepo.On("CountForTenant", mock.Anything, tenantID, mock.Anything).Return(int64(2), nil)
		txRepo.On("ReversedTransactionIDs", mock.Anything, tenantID, []uuid.UUID{reversedTx.ID, plainTx.ID}).
			Return([]uuid.UUID{reversedTx.ID}, nil)

		page, err := svc.ListJournal(context.Background(), tenantID, JournalListFilter{})
		require.NoError(t, err)
		require.Len(t, page.Items, 2)
		assert.True(t, page.Items[0].HasReversal)
		assert.False(t, page.Items[1].HasReversal)
	})
}
