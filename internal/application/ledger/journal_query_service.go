package ledger

import (
	"context"
	"time"

	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceCache caches computed account balances. A nil-safe no-op
// implementation is acceptable; the Redis implementation lives in
// infrastructure/cache.
type BalanceCache interface {
	GetBalance(ctx context.Context, tenantID, accountID uuid.UUID) (decimal.Decimal, bool, error)
	SetBalance(ctx context.Context, tenantID, accountID uuid.UUID, balance decimal.Decimal) error
	InvalidateBalance(ctx context.Context, tenantID, accountID uuid.UUID) error
}

// JournalQueryService serves read-side journal listings and derived
// balances. It never mutates the ledger.
type JournalQueryService struct {
	txRepo      ledger.TransactionRepository
	accountRepo ledger.AccountRepository
	cache       BalanceCache
}

// NewJournalQueryService creates a new JournalQueryService
func NewJournalQueryService(
	txRepo ledger.TransactionRepository,
	accountRepo ledger.AccountRepository,
	cache BalanceCache,
) *JournalQueryService {
	return &JournalQueryService{
		txRepo:      txRepo,
		accountRepo: accountRepo,
		cache:       cache,
	}
}

// JournalListFilter defines filtering options for journal listings
type JournalListFilter struct {
	Status    string     `form:"status"`
	Type      string     `form:"type"`
	AccountID *uuid.UUID `form:"account_id"`
	DateFrom  *time.Time `form:"date_from"`
	DateTo    *time.Time `form:"date_to"`
	Search    string     `form:"search"`
	Page      int        `form:"page"`
	PageSize  int        `form:"page_size"`
}

// JournalLineResponse is one transaction row in a journal listing,
// carrying the derived compliance metadata alongside the raw fields
type JournalLineResponse struct {
	ID          uuid.UUID       `json:"id"`
	Number      string          `json:"number"`
	Date        time.Time       `json:"date"`
	Period      string          `json:"period"`
	Type        string          `json:"type"`
	Status      string          `json:"status"`
	Description string          `json:"description"`
	EntryCount  int             `json:"entry_count"`
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
	Imbalance   decimal.Decimal `json:"imbalance"`
	Balanced    bool            `json:"balanced"`
	HasReversal bool            `json:"has_reversal"`
	NoteCount   int             `json:"note_count"`
	PostedAt    *time.Time      `json:"posted_at,omitempty"`
	PostedBy    *uuid.UUID      `json:"posted_by,omitempty"`
	VoidedAt    *time.Time      `json:"voided_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// RunningBalanceResponse is one account's derived statement
type RunningBalanceResponse struct {
	AccountID   uuid.UUID            `json:"account_id"`
	AccountCode string               `json:"account_code"`
	NormalSide  string               `json:"normal_side"`
	Lines       []ledger.BalanceLine `json:"lines"`
	Balance     decimal.Decimal      `json:"balance"`
	AsOf        *time.Time           `json:"as_of,omitempty"`
}

// ListJournal returns a page of transactions with derived metadata
func (s *JournalQueryService) ListJournal(ctx context.Context, tenantID uuid.UUID, filter JournalListFilter) (*shared.Paginated[JournalLineResponse], error) {
	domainFilter := ledger.TransactionFilter{
		AccountID: filter.AccountID,
		DateFrom:  filter.DateFrom,
		DateTo:    filter.DateTo,
		Search:    filter.Search,
		Page:      filter.Page,
		PageSize:  filter.PageSize,
	}
	if filter.Status != "" {
		status := ledger.TransactionStatus(filter.Status)
		if !status.IsValid() {
			return nil, shared.NewValidationError("Invalid transaction status filter")
		}
		domainFilter.Status = &status
	}
	if filter.Type != "" {
		txType := ledger.TransactionType(filter.Type)
		if !txType.IsValid() {
			return nil, shared.NewValidationError("Invalid transaction type filter")
		}
		domainFilter.Type = &txType
	}
	if domainFilter.Page < 1 {
		domainFilter.Page = 1
	}
	if domainFilter.PageSize < 1 || domainFilter.PageSize > 200 {
		domainFilter.PageSize = 20
	}

	txs, err := s.txRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.txRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(txs))
	for i := range txs {
		ids[i] = txs[i].ID
	}
	reversedIDs, err := s.txRepo.ReversedTransactionIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	reversed := make(map[uuid.UUID]bool, len(reversedIDs))
	for _, id := range reversedIDs {
		reversed[id] = true
	}

	lines := make([]JournalLineResponse, 0, len(txs))
	for i := range txs {
		lines = append(lines, toJournalLine(&txs[i], reversed[txs[i].ID]))
	}

	page := shared.NewPaginated(lines, total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// RunningBalance computes the derived statement for one account by
// folding posted entries in (transaction date, creation time) order
func (s *JournalQueryService) RunningBalance(ctx context.Context, tenantID, accountID uuid.UUID, asOf *time.Time) (*RunningBalanceResponse, error) {
	account, err := s.accountRepo.FindByIDForTenant(ctx, tenantID, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, shared.NewNotFoundError("Account not found")
	}

	entries, err := s.txRepo.PostedEntriesForAccount(ctx, tenantID, accountID, asOf)
	if err != nil {
		return nil, err
	}

	normalSide := account.Type.NormalBalance()
	lines := ledger.ComputeRunningBalance(normalSide, entries)

	balance := decimal.Zero
	if len(lines) > 0 {
		balance = lines[len(lines)-1].Balance
	}

	// full statements bypass the cache; only the as-of-now final
	// balance is worth caching
	if asOf == nil && s.cache != nil {
		_ = s.cache.SetBalance(ctx, tenantID, accountID, balance)
	}

	return &RunningBalanceResponse{
		AccountID:   account.ID,
		AccountCode: account.Code,
		NormalSide:  normalSide.String(),
		Lines:       lines,
		Balance:     balance,
		AsOf:        asOf,
	}, nil
}

// AccountBalance returns only the current balance of one account,
// consulting the cache before folding entries
func (s *JournalQueryService) AccountBalance(ctx context.Context, tenantID, accountID uuid.UUID) (decimal.Decimal, error) {
	if s.cache != nil {
		if balance, ok, err := s.cache.GetBalance(ctx, tenantID, accountID); err == nil && ok {
			return balance, nil
		}
	}

	account, err := s.accountRepo.FindByIDForTenant(ctx, tenantID, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	if account == nil {
		return decimal.Zero, shared.NewNotFoundError("Account not found")
	}

	entries, err := s.txRepo.PostedEntriesForAccount(ctx, tenantID, accountID, nil)
	if err != nil {
		return decimal.Zero, err
	}

	balance := ledger.AccountBalance(account.Type.NormalBalance(), entries)
	if s.cache != nil {
		_ = s.cache.SetBalance(ctx, tenantID, accountID, balance)
	}
	return balance, nil
}

func toJournalLine(tx *ledger.Transaction, hasReversal bool) JournalLineResponse {
	return JournalLineResponse{
		ID:          tx.ID,
		Number:      tx.Number,
		Date:        tx.Date,
		Period:      tx.Date.Format("2006-01"),
		Type:        tx.Type.String(),
		Status:      tx.Status.String(),
		Description: tx.Description,
		EntryCount:  len(tx.Entries),
		TotalDebit:  tx.TotalDebitBase(),
		TotalCredit: tx.TotalCreditBase(),
		Imbalance:   tx.Imbalance(),
		Balanced:    tx.IsBalanced(),
		HasReversal: hasReversal,
		NoteCount:   len(tx.Notes),
		PostedAt:    tx.PostedAt,
		PostedBy:    tx.PostedBy,
		VoidedAt:    tx.VoidedAt,
		CreatedAt:   tx.CreatedAt,
	}
}
