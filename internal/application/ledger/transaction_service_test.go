package ledger

import (
	"context"
	"fmt"
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

// MockTransactionRepository is a mock implementation of ledger.TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Transaction, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*ledger.Transaction, error) {
	args := m.Called(ctx, tenantID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.TransactionFilter) ([]ledger.Transaction, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]ledger.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.TransactionFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepository) Save(ctx context.Context, tx *ledger.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) NextNumber(ctx context.Context, tenantID uuid.UUID, year int) (string, error) {
	args := m.Called(ctx, tenantID, year)
	return args.String(0), args.Error(1)
}

func (m *MockTransactionRepository) ReversedTransactionIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, tenantID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockTransactionRepository) PostedEntriesForAccount(ctx context.Context, tenantID, accountID uuid.UUID, asOf *time.Time) ([]ledger.PostedEntry, error) {
	args := m.Called(ctx, tenantID, accountID, asOf)
	return args.Get(0).([]ledger.PostedEntry), args.Error(1)
}

// MockAccountRepository is a mock implementation of ledger.AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Account, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByIDsForTenant(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]ledger.Account, error) {
	args := m.Called(ctx, tenantID, ids)
	return args.Get(0).([]ledger.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*ledger.Account, error) {
	args := m.Called(ctx, tenantID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.AccountFilter) ([]ledger.Account, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]ledger.Account), args.Error(1)
}

func (m *MockAccountRepository) Save(ctx context.Context, account *ledger.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) HasEntries(ctx context.Context, accountID uuid.UUID) (bool, error) {
	args := m.Called(ctx, accountID)
	return args.Bool(0), args.Error(1)
}

// passthroughUoW executes the function without a real storage transaction
type passthroughUoW struct{}

func (passthroughUoW) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestAccounts(t *testing.T, tenantID uuid.UUID) (ledger.Account, ledger.Account) {
	t.Helper()
	cash, err := ledger.NewAccount(tenantID, "1000", "Cash", ledger.AccountTypeAsset, "")
	require.NoError(t, err)
	revenue, err := ledger.NewAccount(tenantID, "4000", "Sales Revenue", ledger.AccountTypeRevenue, "")
	require.NoError(t, err)
	return *cash, *revenue
}

func balancedDraft(t *testing.T, tenantID uuid.UUID, number string, debitAccount, creditAccount uuid.UUID, amount int64) *ledger.Transaction {
	t.Helper()
	tx, err := ledger.NewTransaction(tenantID, number, time.Now(), ledger.TransactionTypeGeneral, "test entry",
		[]ledger.EntryInput{
			{AccountID: debitAccount, Type: ledger.EntryTypeDebit, Amount: decimal.NewFromInt(amount)},
			{AccountID: creditAccount, Type: ledger.EntryTypeCredit, Amount: decimal.NewFromInt(amount)},
		}, nil, nil)
	require.NoError(t, err)
	return tx
}

func TestCreateTransaction(t *testing.T) {
	tenantID := uuid.New()
	cash, revenue := newTestAccounts(t, tenantID)

	t.Run("creates a draft with a year scoped number", func(t *testing.T) {
		txRepo := new(MockTransactionRepository)
		accountRepo := new(MockAccountRepository)
		svc := NewTransactionService(txRepo, accountRepo, nil, passthroughUoW{})

		accountRepo.On("FindByIDsForTenant", mock.Anything, tenantID, mock.Anything).
			Return([]ledger.Account{cash, revenue}, nil)
		txRepo.On("NextNumber", mock.Anything, tenantID, 2025).Return("JE-2025-0042", nil)
		txRepo.On("Save", mock.Anything, mock.AnythingOfType("*ledger.Transaction")).Return(nil)

		resp, err := svc.CreateTransaction(context.Background(), tenantID, CreateTransactionRequest{
			Date:        time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
			Type:        "GENERAL",
			Description: "June sales",
			Entries: []EntryRequest{
				{AccountID: cash.ID, Type: "DEBIT", Amount: decimal.NewFromInt(100)},
				{AccountID: revenue.ID, Type: "CREDIT", Amount: decimal.NewFromInt(90)},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "JE-2025-0042", resp.Number)
		assert.Equal(t, "DRAFT", resp.Status)
		// drafts may be unbalanced while being edited
		assert.False(t, resp.Balanced)
		txRepo.AssertExpectations(t)
	})

	t.Run("rejects an account outside the tenant", func(t *testing.T) {
		txRepo := new(MockTransactionRepository)
		accountRepo := new(MockAccountRepository)
		svc := NewTransactionService(txRepo, accountRepo, nil, passthroughUoW{})

		accountRepo.On("FindByIDsForTenant", mock.Anything, tenantID, mock.Anything).
			Return([]ledger.Account{}, nil)

		_, err := svc.CreateTransaction(context.Background(), tenantID, CreateTransactionRequest{
			Date: time.Now(),
			Type: "GENERAL",
			Entries: []EntryRequest{
				{AccountID: uuid.New(), Type: "DEBIT", Amount: decimal.NewFromInt(100)},
			},
		})
		require.Error(t, err)
		assert.Equal(t, shared.CodeNotFound, shared.ErrorCode(err))
		txRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects an inactive account", func(t *testing.T) {
		txRepo := new(MockTransactionRepository)
		accountRepo := new(MockAccountRepository)
		svc := NewTransactionService(txRepo, accountRepo, nil, passthroughUoW{})

		inactive := cash
		require.NoError(t, inactive.Deactivate())
		accountRepo.On("FindByIDsForTenant", mock.Anything, tenantID, mock.Anything).
			Return([]ledger.Account{inactive}, nil)

		_, err := svc.CreateTransaction(context.Background(), tenantID, CreateTransactionRequest{
			Date: time.Now(),
			Type: "GENERAL",
			Entries: []EntryRequest{
				{AccountID: inactive.ID, Type: "DEBIT", Amount: decimal.NewFromInt(100)},
			},
		})
		require.Error(t, err)
		assert.Equal(t, shared.CodeValidation, shared.ErrorCode(err))
	})
}

func TestPostTransaction(t *testing.T) {
	tenantID := uuid.New()
	userID := uuid.New()
	cash, revenue := newTestAccounts(t, tenantID)

	t.Run("posts a balanced draft", func(t *testing.T) {
		txRepo := new(MockTransactionRepository)
		svc := NewTransactionService(txRepo, new(MockAccountRepository), nil, passthroughUoW{})

		tx := balancedDraft(t, tenantID, "JE-2025-0001", cash.ID, revenue.ID, 100)
		txRepo.On("FindByIDForTenant", mock.Anything, tenantID, tx.ID).Return(tx, nil)
		txRepo.On("Save", mock.Anything, tx).Return(nil)

		resp, err := svc.PostTransaction(context.Background(), tenantID, tx.ID, userID)
		require.NoError(t, err)
		assert.Equal(t, "POSTED", resp.Status)
		assert.NotNil(t, resp.PostedAt)
	})

	t.Run("unbalanced draft fails and stays draft", func(t *testing.T) {
		txRepo := new(MockTransactionRepository)
		svc := NewTransactionService(txRepo, new(MockAccountRepository), nil, passthroughUoW{})

		tx, err := ledger.NewTransaction(tenantID, "JE-2025-0002", time.Now(), ledger.TransactionTypeGeneral, "",
			[]ledger.EntryInput{
				{AccountID: cash.ID, Type: ledger.EntryTypeDebit, Amount: decimal.NewFromInt(100)},
				{AccountID: revenue.ID, Type: ledger.EntryTypeCredit, Amount: decimal.NewFromInt(90)},
			}, nil, nil)
		require.NoError(t, err)
		txRepo.On("FindByIDForTenant", mock.Anything, tenantID, tx.ID).Return(tx, nil)

		_, err = svc.PostTransaction(context.Background(), tenantID, tx.ID, userID)
		require.Error(t, err)
		assert.Equal(t, shared.CodeOutOfBalance, shared.ErrorCode(err))
		assert.Equal(t, ledger.TransactionStatusDraft, tx.Status)
		txRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("missing transaction is not found", func(t *testing.T) {
		txRepo := new(MockTransactionRepository)
		svc := NewTransactionService(txRepo, new(MockAccountRepository), nil, passthroughUoW{})

		id := uuid.New()
		txRepo.On("FindByIDForTenant", mock.Anything, tenantID, id).Return(nil, nil)

		_, err := svc.PostTransaction(context.Background(), tenantID, id, userID)
		assert.Equal(t, shared.CodeNotFound, shared.ErrorCode(err))
	})
}

func TestPostAndVoidDropCachedBalances(t *testing.T) {
	tenantID := uuid.New()
	userID := uuid.New()
	cash, revenue := newTestAccounts(t, tenantID)

	seedCache := func(t *testing.T) *fakeBalanceCache {
		t.Helper()
		c := newFakeBalanceCache()
		require.NoError(t, c.SetBalance(context.Background(), tenantID, cash.ID, decimal.NewFromInt(100)))
		require.NoError(t, c.SetBalance(context.Background(), tenantID, revenue.ID, decimal.NewFromInt(100)))
		return c
	}

	t.Run("posting invalidates every touched account", func(t *testing.T) {
		txRepo := new(MockTransactionRepository)
		cache := seedCache(t)
		svc := NewTransactionService(txRepo, new(MockAccountRepository), cache, passthroughUoW{})

		tx := balancedDraft(t, tenantID, "JE-2025-0010", cash.ID, revenue.ID, 50)
		txRepo.On("FindByIDForTenant", mock.Anything, tenantID, tx.ID).Return(tx, nil)
		txRepo.On("Save", mock.Anything, tx).Return(nil)

		_, err := svc.PostTransaction(context.Background(), tenantID, tx.ID, userID)
		require.NoError(t, err)

		_, ok, _ := cache.GetBalance(context.Background(), tenantID, cash.ID)
		assert.False(t, ok, "cash balance still cached after post")
		_, ok, _ = cache.GetBalance(context.Background(), tenantID, revenue.ID)
		assert.False(t, ok, "revenue balance still cached after post")
	})

	t.Run("voiding invalidates every touched account", func(t *testing.T) {
		txRepo := new(MockTransactionRepository)
		cache := seedCache(t)
		svc := NewTransactionService(txRepo, new(MockAccountRepository), cache, passthroughUoW{})

		tx := balancedDraft(t, tenantID, "JE-2025-0011", cash.ID, revenue.ID, 50)
		require.NoError(t, tx.Post(userID))
		txRepo.On("FindByIDForTenant", mock.Anything, tenantID, tx.ID).Return(tx, nil)
		txRepo.On("Save", mock.Anything, tx).Return(nil)

		_, err := svc.VoidTransaction(context.Background(), tenantID, tx.ID, userID, "entered twice")
		require.NoError(t, err)

		_, ok, _ := cache.GetBalance(context.Background(), tenantID, cash.ID)
		assert.False(t, ok, "cash balance still cached after void")
		_, ok, _ = cache.GetBalance(context.Background(), tenantID, revenue.ID)
		assert.False(t, ok, "revenue balance still cached after void")
	})

	t.Run("failed post leaves the cache untouched", func(t *testing.T) {
		txRepo := new(MockTransactionRepository)
		cache := seedCache(t)
		svc := NewTransactionService(txRepo, new(MockAccountRepository), cache, passthroughUoW{})

		tx := balancedDraft(t, tenantID, "JE-2025-0012", cash.ID, revenue.ID, 50)
		txRepo.On("FindByIDForTenant", mock.Anything, tenantID, tx.ID).Return(tx, nil)
		txRepo.On("Save", mock.Anything, tx).Return(assert.AnError)

		_, err := svc.PostTransaction(context.Background(), tenantID, tx.ID, userID)
		require.Error(t, err)

		balance, ok, _ := cache.GetBalance(context.Background(), tenantID, cash.ID)
		assert.True(t, ok)
		assert.True(t, balance.Equal(decimal.NewFromInt(100)))
	})
}

func TestCreateReverseEntry(t *testing.T) {
	tenantID := uuid.New()
	userID := uuid.New()
	cash, revenue := newTestAccounts(t, tenantID)

	t.Run("reversal is immediately posted with swapped legs", func(t *testing.T) {
		txRepo := new(MockTransactionRepository)
		svc := NewTransactionService(txRepo, new(MockAccountRepository), nil, passthroughUoW{})

		original := balancedDraft(t, tenantID, "JE-2025-0001", cash.ID, revenue.ID, 250)
		require.NoError(t, original.Post(userID))

		txRepo.On("FindByIDForTenant", mock.Anything, tenantID, original.ID).Return(original, nil)
		txRepo.On("NextNumber", mock.Anything, tenantID, time.Now().Year()).Return("JE-2025-0002", nil)
		txRepo.On("Save", mock.Anything, mock.AnythingOfType("*ledger.Transaction")).Return(nil)

		resp, err := svc.CreateReverseEntry(context.Background(), tenantID, original.ID, userID, "duplicate billing")
		require.NoError(t, err)
		assert.Equal(t, "POSTED", resp.Status)
		assert.Equal(t, "REVERSAL", resp.Type)
		require.Len(t, resp.Entries, 2)
		assert.Equal(t, "CREDIT", resp.Entries[0].Type)
		assert.Equal(t, "DEBIT", resp.Entries[1].Type)
		// both the reversal and the annotated original were saved
		txRepo.AssertNumberOfCalls(t, "Save", 2)
	})

	t.Run("voided original cannot be reversed", func(t *testing.T) {
		txRepo := new(MockTransactionRepository)
		svc := NewTransactionService(txRepo, new(MockAccountRepository), nil, passthroughUoW{})

		original := balancedDraft(t, tenantID, "JE-2025-0003", cash.ID, revenue.ID, 10)
		require.NoError(t, original.Post(userID))
		require.NoError(t, original.Void(userID))

		txRepo.On("FindByIDForTenant", mock.Anything, tenantID, original.ID).Return(original, nil)
		txRepo.On("NextNumber", mock.Anything, tenantID, time.Now().Year()).Return("JE-2025-0004", nil)

		_, err := svc.CreateReverseEntry(context.Background(), tenantID, original.ID, userID, "")
		assert.Equal(t, shared.CodeInvalidState, shared.ErrorCode(err))
	})
}

func TestBulkApprove(t *testing.T) {
	tenantID := uuid.New()
	approverID := uuid.New()
	cash, revenue := newTestAccounts(t, tenantID)

	t.Run("partial success with one unbalanced transaction", func(t *testing.T) {
		txRepo := new(MockTransactionRepository)
		svc := NewTransactionService(txRepo, new(MockAccountRepository), nil, passthroughUoW{})

		good1 := balancedDraft(t, tenantID, "JE-2025-0001", cash.ID, revenue.ID, 100)
		good2 := balancedDraft(t, tenantID, "JE-2025-0002", cash.ID, revenue.ID, 200)
		bad, err := ledger.NewTransaction(tenantID, "JE-2025-0003", time.Now(), ledger.TransactionTypeGeneral, "",
			[]ledger.EntryInput{
				{AccountID: cash.ID, Type: ledger.EntryTypeDebit, Amount: decimal.NewFromInt(100)},
				{AccountID: revenue.ID, Type: ledger.EntryTypeCredit, Amount: decimal.NewFromInt(90)},
			}, nil, nil)
		require.NoError(t, err)

		for _, tx := range []*ledger.Transaction{good1, good2, bad} {
			txRepo.On("FindByIDForTenant", mock.Anything, tenantID, tx.ID).Return(tx, nil)
		}
		txRepo.On("Save", mock.Anything, mock.AnythingOfType("*ledger.Transaction")).Return(nil)

		result, err := svc.BulkApprove(context.Background(), tenantID,
			[]uuid.UUID{good1.ID, good2.ID, bad.ID}, approverID)
		require.NoError(t, err)

		assert.Len(t, result.Successful, 2)
		require.Len(t, result.Failed, 1)
		assert.Equal(t, bad.ID, result.Failed[0].TransactionID)
		assert.Equal(t, shared.CodeOutOfBalance, result.Failed[0].Code)
		assert.Equal(t, ledger.TransactionStatusDraft, bad.Status)
		assert.Equal(t, ledger.TransactionStatusPosted, good1.Status)
		assert.Equal(t, ledger.TransactionStatusPosted, good2.Status)
	})

	t.Run("missing transactions fail without aborting the batch", func(t *testing.T) {
		txRepo := new(MockTransactionRepository)
		svc := NewTransactionService(txRepo, new(MockAccountRepository), nil, passthroughUoW{})

		good := balancedDraft(t, tenantID, "JE-2025-0005", cash.ID, revenue.ID, 50)
		missing := uuid.New()
		txRepo.On("FindByIDForTenant", mock.Anything, tenantID, good.ID).Return(good, nil)
		txRepo.On("FindByIDForTenant", mock.Anything, tenantID, missing).Return(nil, nil)
		txRepo.On("Save", mock.Anything, mock.AnythingOfType("*ledger.Transaction")).Return(nil)

		result, err := svc.BulkApprove(context.Background(), tenantID, []uuid.UUID{missing, good.ID}, approverID)
		require.NoError(t, err)
		assert.Len(t, result.Successful, 1)
		assert.Len(t, result.Failed, 1)
		assert.Equal(t, shared.CodeNotFound, result.Failed[0].Code)
	})

	t.Run("empty id list is a validation error", func(t *testing.T) {
		svc := NewTransactionService(new(MockTransactionRepository), new(MockAccountRepository), nil, passthroughUoW{})
		_, err := svc.BulkApprove(context.Background(), tenantID, nil, approverID)
		assert.Equal(t, shared.CodeValidation, shared.ErrorCode(err))
	})
}

func TestBulkApproveRepositoryError(t *testing.T) {
	tenantID := uuid.New()
	cash, revenue := newTestAccounts(t, tenantID)

	txRepo := new(MockTransactionRepository)
	svc := NewTransactionService(txRepo, new(MockAccountRepository), nil, passthroughUoW{})

	tx := balancedDraft(t, tenantID, "JE-2025-0009", cash.ID, revenue.ID, 75)
	txRepo.On("FindByIDForTenant", mock.Anything, tenantID, tx.ID).Return(tx, nil)
	txRepo.On("Save", mock.Anything, tx).Return(fmt.Errorf("connection reset"))

	result, err := svc.BulkApprove(context.Background(), tenantID, []uuid.UUID{tx.ID}, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, result.Successful)
	require.Len(t, result.Failed, 1)
	assert.Contains(t, result.Failed[0].Reason, "connection reset")
}
