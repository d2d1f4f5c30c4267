package ledger

import (
	"context"
	"testing"

	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateAccount(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates an account with the base currency default", func(t *testing.T) {
		accountRepo := new(MockAccountRepository)
		svc := NewAccountService(accountRepo)

		accountRepo.On("FindByCode", mock.Anything, tenantID, "1000").Return(nil, shared.ErrNotFound)
		accountRepo.On("Save", mock.Anything, mock.AnythingOfType("*ledger.Account")).Return(nil)

		resp, err := svc.CreateAccount(context.Background(), tenantID, CreateAccountRequest{
			Code: "1000",
			Name: "Cash",
			Type: "ASSET",
		})
		require.NoError(t, err)
		assert.Equal(t, "1000", resp.Code)
		assert.Equal(t, "USD", resp.Currency)
		assert.Equal(t, "DEBIT", resp.NormalSide)
		assert.True(t, resp.Active)
	})

	t.Run("rejects a duplicate code within the tenant", func(t *testing.T) {
		accountRepo := new(MockAccountRepository)
		svc := NewAccountService(accountRepo)

		existing, err := ledger.NewAccount(tenantID, "1000", "Cash", ledger.AccountTypeAsset, "")
		require.NoError(t, err)
		accountRepo.On("FindByCode", mock.Anything, tenantID, "1000").Return(existing, nil)

		_, err = svc.CreateAccount(context.Background(), tenantID, CreateAccountRequest{
			Code: "1000",
			Name: "Another Cash",
			Type: "ASSET",
		})
		require.Error(t, err)
		assert.True(t, shared.IsConflict(err))
		accountRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects an invalid type", func(t *testing.T) {
		accountRepo := new(MockAccountRepository)
		svc := NewAccountService(accountRepo)

		accountRepo.On("FindByCode", mock.Anything, tenantID, "9000").Return(nil, shared.ErrNotFound)

		_, err := svc.CreateAccount(context.Background(), tenantID, CreateAccountRequest{
			Code: "9000",
			Name: "Mystery",
			Type: "CONTRA",
		})
		require.Error(t, err)
		assert.Equal(t, shared.CodeValidation, shared.ErrorCode(err))
	})
}

func TestRenameAccount(t *testing.T) {
	tenantID := uuid.New()
	cash, _ := newTestAccounts(t, tenantID)

	t.Run("renames and bumps nothing else", func(t *testing.T) {
		accountRepo := new(MockAccountRepository)
		svc := NewAccountService(accountRepo)

		account := cash
		accountRepo.On("FindByIDForTenant", mock.Anything, tenantID, cash.ID).Return(&account, nil)
		accountRepo.On("Save", mock.Anything, mock.AnythingOfType("*ledger.Account")).Return(nil)

		resp, err := svc.RenameAccount(context.Background(), tenantID, cash.ID, "Petty Cash")
		require.NoError(t, err)
		assert.Equal(t, "Petty Cash", resp.Name)
		assert.Equal(t, cash.Code, resp.Code)
	})

	t.Run("unknown account maps to not found", func(t *testing.T) {
		accountRepo := new(MockAccountRepository)
		svc := NewAccountService(accountRepo)

		missing := uuid.New()
		accountRepo.On("FindByIDForTenant", mock.Anything, tenantID, missing).Return(nil, nil)

		_, err := svc.RenameAccount(context.Background(), tenantID, missing, "Name")
		require.Error(t, err)
		assert.True(t, shared.IsNotFound(err))
	})
}

func TestDeactivateAccount(t *testing.T) {
	tenantID := uuid.New()
	cash, _ := newTestAccounts(t, tenantID)

	t.Run("deactivates then reactivates", func(t *testing.T) {
		accountRepo := new(MockAccountRepository)
		svc := NewAccountService(accountRepo)

		account := cash
		accountRepo.On("FindByIDForTenant", mock.Anything, tenantID, cash.ID).Return(&account, nil)
		accountRepo.On("Save", mock.Anything, mock.AnythingOfType("*ledger.Account")).Return(nil)

		resp, err := svc.DeactivateAccount(context.Background(), tenantID, cash.ID)
		require.NoError(t, err)
		assert.False(t, resp.Active)

		resp, err = svc.ActivateAccount(context.Background(), tenantID, cash.ID)
		require.NoError(t, err)
		assert.True(t, resp.Active)
	})

	t.Run("deactivating twice is invalid state", func(t *testing.T) {
		accountRepo := new(MockAccountRepository)
		svc := NewAccountService(accountRepo)

		account := cash
		require.NoError(t, account.Deactivate())
		accountRepo.On("FindByIDForTenant", mock.Anything, tenantID, cash.ID).Return(&account, nil)

		_, err := svc.DeactivateAccount(context.Background(), tenantID, cash.ID)
		require.Error(t, err)
		assert.Equal(t, shared.CodeInvalidState, shared.ErrorCode(err))
	})
}

func TestListAccounts(t *testing.T) {
	tenantID := uuid.New()
	cash, revenue := newTestAccounts(t, tenantID)

	t.Run("filters by type", func(t *testing.T) {
		accountRepo := new(MockAccountRepository)
		svc := NewAccountService(accountRepo)

		accountRepo.On("FindAllForTenant", mock.Anything, tenantID, mock.MatchedBy(func(f ledger.AccountFilter) bool {
			return f.Type != nil && *f.Type == ledger.AccountTypeAsset
		})).Return([]ledger.Account{cash}, nil)

		responses, err := svc.ListAccounts(context.Background(), tenantID, AccountListFilter{Type: "ASSET"})
		require.NoError(t, err)
		require.Len(t, responses, 1)
		assert.Equal(t, cash.Code, responses[0].Code)
		_ = revenue
	})

	t.Run("rejects an invalid type filter", func(t *testing.T) {
		accountRepo := new(MockAccountRepository)
		svc := NewAccountService(accountRepo)

		_, err := svc.ListAccounts(context.Background(), tenantID, AccountListFilter{Type: "WEIRD"})
		require.Error(t, err)
		assert.Equal(t, shared.CodeValidation, shared.ErrorCode(err))
	})
}
