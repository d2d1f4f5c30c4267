package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AccountRepository manages chart-of-accounts persistence
type AccountRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Account, error)
	FindByIDsForTenant(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Account, error)
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Account, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter AccountFilter) ([]Account, error)
	Save(ctx context.Context, account *Account) error
	HasEntries(ctx context.Context, accountID uuid.UUID) (bool, error)
}

// AccountFilter holds query options for account listings
type AccountFilter struct {
	Type     *AccountType
	Active   *bool
	Search   string
	Page     int
	PageSize int
}

// TransactionRepository manages journal transaction persistence.
// Save must persist the header and all entry legs in one atomic storage
// transaction; a duplicate (tenant, number) surfaces as a CONFLICT error.
type TransactionRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Transaction, error)
	FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*Transaction, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter TransactionFilter) ([]Transaction, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter TransactionFilter) (int64, error)
	Save(ctx context.Context, tx *Transaction) error
	// NextNumber computes the next transaction number for the year by
	// scanning the max existing suffix under the year prefix. Gaps are
	// permitted when a prior attempt failed after number reservation.
	NextNumber(ctx context.Context, tenantID uuid.UUID, year int) (string, error)
	// PostedEntriesForAccount returns entries of POSTED (never VOIDED)
	// transactions for one account, ordered by transaction date then
	// entry creation time, optionally bounded by an as-of date.
	PostedEntriesForAccount(ctx context.Context, tenantID, accountID uuid.UUID, asOf *time.Time) ([]PostedEntry, error)
	// ReversedTransactionIDs returns the subset of ids that a
	// non-voided reversal points back at through its TRANSACTION
	// source reference.
	ReversedTransactionIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error)
}

// TransactionFilter holds query options for transaction listings
type TransactionFilter struct {
	Status    *TransactionStatus
	Type      *TransactionType
	AccountID *uuid.UUID
	DateFrom  *time.Time
	DateTo    *time.Time
	Search    string
	Page      int
	PageSize  int
	OrderBy   string
	OrderDir  string
}
