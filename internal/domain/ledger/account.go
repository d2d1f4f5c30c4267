package ledger

import (
	"fmt"

	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// AccountType classifies a node in the chart of accounts
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeRevenue   AccountType = "REVENUE"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// IsValid checks if the account type is valid
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity,
		AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// String returns the string representation of AccountType
func (t AccountType) String() string {
	return string(t)
}

// NormalBalance returns the entry side that increases accounts of this
// type. Asset and expense accounts are debit-normal; liability, equity
// and revenue accounts are credit-normal.
func (t AccountType) NormalBalance() EntryType {
	switch t {
	case AccountTypeAsset, AccountTypeExpense:
		return EntryTypeDebit
	default:
		return EntryTypeCredit
	}
}

// AllAccountTypes returns all valid account types
func AllAccountTypes() []AccountType {
	return []AccountType{
		AccountTypeAsset,
		AccountTypeLiability,
		AccountTypeEquity,
		AccountTypeRevenue,
		AccountTypeExpense,
	}
}

// Account represents a node in the chart of accounts.
// Accounts referenced by ledger entries are never physically deleted;
// they are deactivated instead so the audit trail stays resolvable.
type Account struct {
	shared.TenantAggregateRoot
	Code     string               `json:"code"`
	Name     string               `json:"name"`
	Type     AccountType          `json:"type"`
	Currency valueobject.Currency `json:"currency"`
	Active   bool                 `json:"active"`
}

// NewAccount creates a new active account
func NewAccount(tenantID uuid.UUID, code, name string, accountType AccountType, currency valueobject.Currency) (*Account, error) {
	if code == "" {
		return nil, shared.NewValidationError("Account code cannot be empty")
	}
	if len(code) > 20 {
		return nil, shared.NewValidationError("Account code cannot exceed 20 characters")
	}
	if name == "" {
		return nil, shared.NewValidationError("Account name cannot be empty")
	}
	if !accountType.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("Invalid account type: %s", accountType))
	}
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}

	return &Account{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Name:                name,
		Type:                accountType,
		Currency:            currency,
		Active:              true,
	}, nil
}

// Deactivate soft-deactivates the account. Deactivated accounts keep
// their history but cannot receive new ledger entries.
func (a *Account) Deactivate() error {
	if !a.Active {
		return shared.NewInvalidStateError("Account is already inactive")
	}
	a.Active = false
	a.Touch()
	a.IncrementVersion()
	return nil
}

// Activate re-enables the account
func (a *Account) Activate() {
	a.Active = true
	a.Touch()
	a.IncrementVersion()
}

// Rename updates the account name
func (a *Account) Rename(name string) error {
	if name == "" {
		return shared.NewValidationError("Account name cannot be empty")
	}
	a.Name = name
	a.Touch()
	a.IncrementVersion()
	return nil
}

// IsDebitNormal returns true for debit-normal account types
func (a *Account) IsDebitNormal() bool {
	return a.Type.NormalBalance() == EntryTypeDebit
}
