package ledger

import (
	"context"
	"fmt"

	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// AccountService manages the chart of accounts
type AccountService struct {
	accountRepo ledger.AccountRepository
}

// NewAccountService creates a new AccountService
func NewAccountService(accountRepo ledger.AccountRepository) *AccountService {
	return &AccountService{accountRepo: accountRepo}
}

// CreateAccountRequest represents a request to create an account
type CreateAccountRequest struct {
	Code     string `json:"code" binding:"required,max=20"`
	Name     string `json:"name" binding:"required"`
	Type     string `json:"type" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	Currency string `json:"currency"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID         uuid.UUID `json:"id"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	NormalSide string    `json:"normal_side"`
	Currency   string    `json:"currency"`
	Active     bool      `json:"active"`
	Version    int       `json:"version"`
}

// AccountListFilter defines filtering options for account listings
type AccountListFilter struct {
	Type     string `form:"type"`
	Active   *bool  `form:"active"`
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// CreateAccount creates an account; duplicate codes within the tenant
// are rejected
func (s *AccountService) CreateAccount(ctx context.Context, tenantID uuid.UUID, req CreateAccountRequest) (*AccountResponse, error) {
	existing, err := s.accountRepo.FindByCode(ctx, tenantID, req.Code)
	if err != nil && !shared.IsNotFound(err) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewConflictError(fmt.Sprintf("Account code %s already exists", req.Code))
	}

	account, err := ledger.NewAccount(tenantID, req.Code, req.Name, ledger.AccountType(req.Type), valueobject.Currency(req.Currency))
	if err != nil {
		return nil, err
	}
	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}
	return toAccountResponse(account), nil
}

// GetAccount fetches one account within the tenant's scope
func (s *AccountService) GetAccount(ctx context.Context, tenantID, id uuid.UUID) (*AccountResponse, error) {
	account, err := s.findAccount(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return toAccountResponse(account), nil
}

// ListAccounts lists accounts with filtering
func (s *AccountService) ListAccounts(ctx context.Context, tenantID uuid.UUID, filter AccountListFilter) ([]AccountResponse, error) {
	domainFilter := ledger.AccountFilter{
		Active:   filter.Active,
		Search:   filter.Search,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}
	if filter.Type != "" {
		accountType := ledger.AccountType(filter.Type)
		if !accountType.IsValid() {
			return nil, shared.NewValidationError("Invalid account type filter")
		}
		domainFilter.Type = &accountType
	}

	accounts, err := s.accountRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]AccountResponse, 0, len(accounts))
	for i := range accounts {
		responses = append(responses, *toAccountResponse(&accounts[i]))
	}
	return responses, nil
}

// RenameAccount changes an account's display name
func (s *AccountService) RenameAccount(ctx context.Context, tenantID, id uuid.UUID, name string) (*AccountResponse, error) {
	account, err := s.findAccount(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := account.Rename(name); err != nil {
		return nil, err
	}
	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}
	return toAccountResponse(account), nil
}

// DeactivateAccount soft-deactivates an account. Accounts referenced by
// ledger entries are never physically deleted; deactivation is the only
// retirement path.
func (s *AccountService) DeactivateAccount(ctx context.Context, tenantID, id uuid.UUID) (*AccountResponse, error) {
	account, err := s.findAccount(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := account.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}
	return toAccountResponse(account), nil
}

// ActivateAccount reactivates a previously deactivated account
func (s *AccountService) ActivateAccount(ctx context.Context, tenantID, id uuid.UUID) (*AccountResponse, error) {
	account, err := s.findAccount(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	account.Activate()
	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}
	return toAccountResponse(account), nil
}

func (s *AccountService) findAccount(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Account, error) {
	account, err := s.accountRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, shared.NewNotFoundError("Account not found")
	}
	return account, nil
}

func toAccountResponse(a *ledger.Account) *AccountResponse {
	return &AccountResponse{
		ID:         a.ID,
		Code:       a.Code,
		Name:       a.Name,
		Type:       a.Type.String(),
		NormalSide: a.Type.NormalBalance().String(),
		Currency:   string(a.Currency),
		Active:     a.Active,
		Version:    a.Version,
	}
}
