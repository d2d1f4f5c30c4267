package costing

import (
	"context"
	"testing"
	"time"

	"github.com/finbooks/backend/internal/domain/costing"
	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRevaluationRepository is a mock of costing.RevaluationRepository
type MockRevaluationRepository struct {
	mock.Mock
}

func (m *MockRevaluationRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*costing.CostRevaluation, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*costing.CostRevaluation), args.Error(1)
}

func (m *MockRevaluationRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, status *costing.RevaluationStatus, limit, offset int) ([]*costing.CostRevaluation, error) {
	args := m.Called(ctx, tenantID, status, limit, offset)
	return args.Get(0).([]*costing.CostRevaluation), args.Error(1)
}

func (m *MockRevaluationRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, status *costing.RevaluationStatus) (int64, error) {
	args := m.Called(ctx, tenantID, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRevaluationRepository) Save(ctx context.Context, revaluation *costing.CostRevaluation) error {
	args := m.Called(ctx, revaluation)
	return args.Error(0)
}

func (m *MockRevaluationRepository) NextNumber(ctx context.Context, tenantID uuid.UUID, year int) (string, error) {
	args := m.Called(ctx, tenantID, year)
	return args.String(0), args.Error(1)
}

// MockProductCostReader is a mock of costing.ProductCostReader
type MockProductCostReader struct {
	mock.Mock
}

func (m *MockProductCostReader) CostFor(ctx context.Context, tenantID, productID uuid.UUID) (*costing.ProductCost, error) {
	args := m.Called(ctx, tenantID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*costing.ProductCost), args.Error(1)
}

func (m *MockProductCostReader) CostsWithStandard(ctx context.Context, tenantID uuid.UUID, at time.Time) ([]*costing.ProductCost, error) {
	args := m.Called(ctx, tenantID, at)
	return args.Get(0).([]*costing.ProductCost), args.Error(1)
}

// MockLedgerTransactionRepository is a mock of ledger.TransactionRepository
type MockLedgerTransactionRepository struct {
	mock.Mock
}

func (m *MockLedgerTransactionRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Transaction, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Transaction), args.Error(1)
}

func (m *MockLedgerTransactionRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*ledger.Transaction, error) {
	args := m.Called(ctx, tenantID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Transaction), args.Error(1)
}

func (m *MockLedgerTransactionRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.TransactionFilter) ([]ledger.Transaction, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]ledger.Transaction), args.Error(1)
}

func (m *MockLedgerTransactionRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.TransactionFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerTransactionRepository) Save(ctx context.Context, tx *ledger.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockLedgerTransactionRepository) NextNumber(ctx context.Context, tenantID uuid.UUID, year int) (string, error) {
	args := m.Called(ctx, tenantID, year)
	return args.String(0), args.Error(1)
}

func (m *MockLedgerTransactionRepository) PostedEntriesForAccount(ctx context.Context, tenantID, accountID uuid.UUID, asOf *time.Time) ([]ledger.PostedEntry, error) {
	args := m.Called(ctx, tenantID, accountID, asOf)
	return args.Get(0).([]ledger.PostedEntry), args.Error(1)
}

func (m *MockLedgerTransactionRepository) ReversedTransactionIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, tenantID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// passthroughUoW executes the function without a real storage transaction
type passthroughUoW struct{}

func (passthroughUoW) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type revalFixture struct {
	revalRepo  *MockRevaluationRepository
	costReader *MockProductCostReader
	txRepo     *MockLedgerTransactionRepository
	svc        *RevaluationService

	tenantID  uuid.UUID
	userID    uuid.UUID
	productID uuid.UUID
}

func newRevalFixture(t *testing.T) *revalFixture {
	t.Helper()
	f := &revalFixture{
		revalRepo:  new(MockRevaluationRepository),
		costReader: new(MockProductCostReader),
		txRepo:     new(MockLedgerTransactionRepository),
		tenantID:   uuid.New(),
		userID:     uuid.New(),
		productID:  uuid.New(),
	}
	f.svc = NewRevaluationService(f.revalRepo, f.costReader, f.txRepo, passthroughUoW{})

	f.costReader.On("CostFor", mock.Anything, f.tenantID, f.productID).Return(&costing.ProductCost{
		ProductID:      f.productID,
		ProductName:    "Widget",
		AverageCost:    decimal.NewFromInt(100),
		QuantityOnHand: decimal.NewFromInt(500),
	}, nil)
	f.revalRepo.On("NextNumber", mock.Anything, f.tenantID, time.Now().Year()).Return("REVAL-2025-0001", nil)
	return f
}

func TestCreateRevaluation(t *testing.T) {
	t.Run("without auto approve stops at submitted", func(t *testing.T) {
		f := newRevalFixture(t)
		f.revalRepo.On("Save", mock.Anything, mock.AnythingOfType("*costing.CostRevaluation")).Return(nil)

		resp, err := f.svc.CreateRevaluation(context.Background(), f.tenantID, f.userID, CreateRevaluationRequest{
			ProductID:   f.productID,
			NewUnitCost: decimal.NewFromInt(125),
			Quantity:    decimal.NewFromInt(200),
			Reason:      "MARKET_CHANGE",
		})
		require.NoError(t, err)
		assert.Equal(t, "SUBMITTED", resp.Status)
		assert.True(t, resp.OldUnitCost.Equal(decimal.NewFromInt(100)))
		assert.True(t, resp.ValueDifference.Equal(decimal.NewFromInt(5000)), "got %s", resp.ValueDifference)
		assert.Nil(t, resp.TransactionID)
		f.txRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("auto approve posts a write up to the ledger", func(t *testing.T) {
		f := newRevalFixture(t)
		inventoryAccount := uuid.New()
		adjustmentAccount := uuid.New()

		f.txRepo.On("NextNumber", mock.Anything, f.tenantID, time.Now().Year()).Return("JE-2025-0200", nil)
		var postedTx *ledger.Transaction
		f.txRepo.On("Save", mock.Anything, mock.AnythingOfType("*ledger.Transaction")).
			Run(func(args mock.Arguments) { postedTx = args.Get(1).(*ledger.Transaction) }).
			Return(nil)
		f.revalRepo.On("Save", mock.Anything, mock.AnythingOfType("*costing.CostRevaluation")).Return(nil)

		resp, err := f.svc.CreateRevaluation(context.Background(), f.tenantID, f.userID, CreateRevaluationRequest{
			ProductID:           f.productID,
			NewUnitCost:         decimal.NewFromInt(125),
			Quantity:            decimal.NewFromInt(200),
			Reason:              "MARKET_CHANGE",
			AutoApprove:         true,
			InventoryAccountID:  inventoryAccount,
			AdjustmentAccountID: adjustmentAccount,
		})
		require.NoError(t, err)
		assert.Equal(t, "POSTED", resp.Status)
		require.NotNil(t, resp.TransactionID)

		require.NotNil(t, postedTx)
		assert.Equal(t, ledger.TransactionStatusPosted, postedTx.Status)
		assert.Equal(t, ledger.TransactionTypeRevaluation, postedTx.Type)
		require.Len(t, postedTx.Entries, 2)
		// positive value difference debits inventory
		assert.Equal(t, inventoryAccount, postedTx.Entries[0].AccountID)
		assert.Equal(t, ledger.EntryTypeDebit, postedTx.Entries[0].Type)
		assert.Equal(t, adjustmentAccount, postedTx.Entries[1].AccountID)
		assert.Equal(t, ledger.EntryTypeCredit, postedTx.Entries[1].Type)
		assert.True(t, postedTx.Entries[0].Amount.Equal(decimal.NewFromInt(5000)))
		assert.True(t, postedTx.IsBalanced())
	})

	t.Run("write down credits inventory", func(t *testing.T) {
		f := newRevalFixture(t)
		f.txRepo.On("NextNumber", mock.Anything, f.tenantID, time.Now().Year()).Return("JE-2025-0201", nil)
		var postedTx *ledger.Transaction
		f.txRepo.On("Save", mock.Anything, mock.AnythingOfType("*ledger.Transaction")).
			Run(func(args mock.Arguments) { postedTx = args.Get(1).(*ledger.Transaction) }).
			Return(nil)
		f.revalRepo.On("Save", mock.Anything, mock.AnythingOfType("*costing.CostRevaluation")).Return(nil)

		resp, err := f.svc.CreateRevaluation(context.Background(), f.tenantID, f.userID, CreateRevaluationRequest{
			ProductID:           f.productID,
			NewUnitCost:         decimal.NewFromInt(80),
			Quantity:            decimal.NewFromInt(50),
			Reason:              "OBSOLESCENCE",
			AutoApprove:         true,
			InventoryAccountID:  uuid.New(),
			AdjustmentAccountID: uuid.New(),
		})
		require.NoError(t, err)
		assert.True(t, resp.ValueDifference.Equal(decimal.NewFromInt(-1000)))

		require.NotNil(t, postedTx)
		assert.Equal(t, ledger.EntryTypeCredit, postedTx.Entries[0].Type)
		assert.Equal(t, ledger.EntryTypeDebit, postedTx.Entries[1].Type)
		assert.True(t, postedTx.Entries[0].Amount.Equal(decimal.NewFromInt(1000)))
	})

	t.Run("defaults quantity to stock on hand", func(t *testing.T) {
		f := newRevalFixture(t)
		f.revalRepo.On("Save", mock.Anything, mock.AnythingOfType("*costing.CostRevaluation")).Return(nil)

		resp, err := f.svc.CreateRevaluation(context.Background(), f.tenantID, f.userID, CreateRevaluationRequest{
			ProductID:   f.productID,
			NewUnitCost: decimal.NewFromInt(110),
			Reason:      "COST_CORRECTION",
		})
		require.NoError(t, err)
		assert.True(t, resp.Quantity.Equal(decimal.NewFromInt(500)))
		// (110 - 100) * 500
		assert.True(t, resp.ValueDifference.Equal(decimal.NewFromInt(5000)))
	})

	t.Run("auto approve without accounts fails before any write", func(t *testing.T) {
		f := newRevalFixture(t)

		_, err := f.svc.CreateRevaluation(context.Background(), f.tenantID, f.userID, CreateRevaluationRequest{
			ProductID:   f.productID,
			NewUnitCost: decimal.NewFromInt(125),
			Quantity:    decimal.NewFromInt(200),
			Reason:      "MARKET_CHANGE",
			AutoApprove: true,
		})
		require.Error(t, err)
		assert.Equal(t, shared.CodeValidation, shared.ErrorCode(err))
		f.revalRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestApproveAndReject(t *testing.T) {
	newSubmitted := func(t *testing.T, f *revalFixture) *costing.CostRevaluation {
		t.Helper()
		reval, err := costing.NewCostRevaluation(f.tenantID, "REVAL-2025-0002", f.productID,
			decimal.NewFromInt(100), decimal.NewFromInt(125), decimal.NewFromInt(200),
			costing.ReasonMarketChange, time.Now())
		require.NoError(t, err)
		require.NoError(t, reval.Submit(f.userID))
		return reval
	}

	t.Run("approve a submitted revaluation", func(t *testing.T) {
		f := newRevalFixture(t)
		reval := newSubmitted(t, f)
		f.revalRepo.On("FindByIDForTenant", mock.Anything, f.tenantID, reval.ID).Return(reval, nil)
		f.revalRepo.On("Save", mock.Anything, reval).Return(nil)

		resp, err := f.svc.Approve(context.Background(), f.tenantID, reval.ID, f.userID)
		require.NoError(t, err)
		assert.Equal(t, "APPROVED", resp.Status)
	})

	t.Run("reject keeps the record with its reason", func(t *testing.T) {
		f := newRevalFixture(t)
		reval := newSubmitted(t, f)
		f.revalRepo.On("FindByIDForTenant", mock.Anything, f.tenantID, reval.ID).Return(reval, nil)
		f.revalRepo.On("Save", mock.Anything, reval).Return(nil)

		resp, err := f.svc.Reject(context.Background(), f.tenantID, reval.ID, f.userID, "source price disputed")
		require.NoError(t, err)
		assert.Equal(t, "REJECTED", resp.Status)
	})

	t.Run("missing revaluation is not found", func(t *testing.T) {
		f := newRevalFixture(t)
		id := uuid.New()
		f.revalRepo.On("FindByIDForTenant", mock.Anything, f.tenantID, id).Return(nil, nil)

		_, err := f.svc.Approve(context.Background(), f.tenantID, id, f.userID)
		assert.Equal(t, shared.CodeNotFound, shared.ErrorCode(err))
	})
}
