package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/domain/shared/valueobject"
	"github.com/finbooks/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionService provides application-level journal transaction operations
type TransactionService struct {
	txRepo      ledger.TransactionRepository
	accountRepo ledger.AccountRepository
	cache       BalanceCache
	uow         shared.UnitOfWork
}

// NewTransactionService creates a new TransactionService. The cache may
// be nil; cached balances then expire on TTL alone.
func NewTransactionService(
	txRepo ledger.TransactionRepository,
	accountRepo ledger.AccountRepository,
	cache BalanceCache,
	uow shared.UnitOfWork,
) *TransactionService {
	return &TransactionService{
		txRepo:      txRepo,
		accountRepo: accountRepo,
		cache:       cache,
		uow:         uow,
	}
}

// EntryRequest is one journal entry line in a create request
type EntryRequest struct {
	AccountID    uuid.UUID       `json:"account_id" binding:"required"`
	Type         string          `json:"type" binding:"required,oneof=DEBIT CREDIT"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	Currency     string          `json:"currency"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
	Description  string          `json:"description"`
}

// CreateTransactionRequest represents a request to create a journal transaction
type CreateTransactionRequest struct {
	Date        time.Time      `json:"date" binding:"required"`
	Type        string         `json:"type" binding:"required"`
	Description string         `json:"description"`
	Entries     []EntryRequest `json:"entries" binding:"required,min=1,dive"`
	SourceType  *string        `json:"source_type"`
	SourceID    *uuid.UUID     `json:"source_id"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID          uuid.UUID       `json:"id"`
	Number      string          `json:"number"`
	Date        time.Time       `json:"date"`
	Type        string          `json:"type"`
	Status      string          `json:"status"`
	Description string          `json:"description"`
	SourceType  *string         `json:"source_type,omitempty"`
	SourceID    *uuid.UUID      `json:"source_id,omitempty"`
	Entries     []EntryResponse `json:"entries"`
	Notes       []NoteResponse  `json:"notes,omitempty"`
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
	Balanced    bool            `json:"balanced"`
	PostedAt    *time.Time      `json:"posted_at,omitempty"`
	VoidedAt    *time.Time      `json:"voided_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	Version     int             `json:"version"`
}

// EntryResponse represents one entry leg in API responses
type EntryResponse struct {
	ID           uuid.UUID       `json:"id"`
	AccountID    uuid.UUID       `json:"account_id"`
	Type         string          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
	AmountInBase decimal.Decimal `json:"amount_in_base"`
	Description  string          `json:"description,omitempty"`
	LineNo       int             `json:"line_no"`
}

// NoteResponse represents an append-only transaction note
type NoteResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// BulkApproveResult reports the per-item outcome of a bulk approve.
// Partial success is the designed behavior: one bad transaction never
// aborts the batch.
type BulkApproveResult struct {
	Successful []uuid.UUID         `json:"successful"`
	Failed     []BulkApproveFailed `json:"failed"`
}

// BulkApproveFailed is one transaction that could not be approved
type BulkApproveFailed struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	Code          string    `json:"code"`
	Reason        string    `json:"reason"`
}

// CreateTransaction creates a DRAFT transaction. Every entry's account
// must exist within the tenant; balance is not required until posting.
func (s *TransactionService) CreateTransaction(ctx context.Context, tenantID uuid.UUID, req CreateTransactionRequest) (*TransactionResponse, error) {
	txType := ledger.TransactionType(req.Type)
	if !txType.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("Invalid transaction type: %s", req.Type))
	}

	if err := s.verifyAccounts(ctx, tenantID, req.Entries); err != nil {
		return nil, err
	}

	number, err := s.txRepo.NextNumber(ctx, tenantID, req.Date.Year())
	if err != nil {
		return nil, err
	}

	inputs := make([]ledger.EntryInput, 0, len(req.Entries))
	for _, e := range req.Entries {
		inputs = append(inputs, ledger.EntryInput{
			AccountID:    e.AccountID,
			Type:         ledger.EntryType(e.Type),
			Amount:       e.Amount,
			Currency:     valueobject.Currency(e.Currency),
			ExchangeRate: e.ExchangeRate,
			Description:  e.Description,
		})
	}

	var sourceType *ledger.SourceType
	if req.SourceType != nil {
		st := ledger.SourceType(*req.SourceType)
		sourceType = &st
	}

	tx, err := ledger.NewTransaction(tenantID, number, req.Date, txType, req.Description, inputs, sourceType, req.SourceID)
	if err != nil {
		return nil, err
	}

	if err := s.txRepo.Save(ctx, tx); err != nil {
		return nil, err
	}

	return toTransactionResponse(tx), nil
}

// GetTransaction fetches one transaction within the tenant's scope
func (s *TransactionService) GetTransaction(ctx context.Context, tenantID, id uuid.UUID) (*TransactionResponse, error) {
	tx, err := s.findTransaction(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return toTransactionResponse(tx), nil
}

// PostTransaction transitions a DRAFT transaction to POSTED after the
// balance check. The status change and version bump persist atomically.
func (s *TransactionService) PostTransaction(ctx context.Context, tenantID, id, userID uuid.UUID) (*TransactionResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "PostTransaction",
		telemetry.WithAttribute("transaction.id", id.String()))
	defer span.End()

	tx, err := s.findTransaction(ctx, tenantID, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := tx.Post(userID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.txRepo.Save(ctx, tx); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.invalidateBalances(ctx, tx)

	return toTransactionResponse(tx), nil
}

// VoidTransaction transitions a POSTED transaction to VOIDED. Entries
// remain stored for audit but drop out of active balance folds.
func (s *TransactionService) VoidTransaction(ctx context.Context, tenantID, id, userID uuid.UUID, reason string) (*TransactionResponse, error) {
	tx, err := s.findTransaction(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Void(userID); err != nil {
		return nil, err
	}
	if reason != "" {
		if err := tx.AppendNote(userID, fmt.Sprintf("Voided: %s", reason)); err != nil {
			return nil, err
		}
	}

	if err := s.txRepo.Save(ctx, tx); err != nil {
		return nil, err
	}
	s.invalidateBalances(ctx, tx)

	return toTransactionResponse(tx), nil
}

// CreateReverseEntry creates and posts a transaction that cancels the
// original: every leg's side swapped, dated now, linked back by note and
// source reference. Both writes happen in one storage transaction.
func (s *TransactionService) CreateReverseEntry(ctx context.Context, tenantID, originalID, userID uuid.UUID, reason string) (*TransactionResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "CreateReverseEntry",
		telemetry.WithAttribute("transaction.id", originalID.String()))
	defer span.End()

	original, err := s.findTransaction(ctx, tenantID, originalID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	number, err := s.txRepo.NextNumber(ctx, tenantID, time.Now().Year())
	if err != nil {
		return nil, err
	}

	reversal, err := original.BuildReversal(number, userID, reason)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := original.AppendNote(userID, fmt.Sprintf("Reversed by transaction %s", reversal.Number)); err != nil {
		return nil, err
	}

	err = s.uow.Execute(ctx, func(ctx context.Context) error {
		if err := s.txRepo.Save(ctx, reversal); err != nil {
			return err
		}
		return s.txRepo.Save(ctx, original)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.invalidateBalances(ctx, reversal)

	return toTransactionResponse(reversal), nil
}

// BulkApprove posts each DRAFT transaction in the list, collecting
// failures instead of aborting. Each post commits independently.
func (s *TransactionService) BulkApprove(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID, approverID uuid.UUID) (*BulkApproveResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "BulkApprove",
		telemetry.WithAttribute("transaction.count", len(ids)))
	defer span.End()

	if len(ids) == 0 {
		return nil, shared.NewValidationError("Transaction ID list cannot be empty")
	}

	result := &BulkApproveResult{
		Successful: make([]uuid.UUID, 0, len(ids)),
		Failed:     make([]BulkApproveFailed, 0),
	}

	for _, id := range ids {
		if err := s.approveOne(ctx, tenantID, id, approverID); err != nil {
			result.Failed = append(result.Failed, BulkApproveFailed{
				TransactionID: id,
				Code:          shared.ErrorCode(err),
				Reason:        err.Error(),
			})
			continue
		}
		result.Successful = append(result.Successful, id)
	}

	telemetry.SetAttributes(span,
		"transaction.approved", len(result.Successful),
		"transaction.failed", len(result.Failed))
	return result, nil
}

// AppendNote adds an append-only note to a transaction in any status
func (s *TransactionService) AppendNote(ctx context.Context, tenantID, id, userID uuid.UUID, text string) (*TransactionResponse, error) {
	tx, err := s.findTransaction(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := tx.AppendNote(userID, text); err != nil {
		return nil, err
	}
	if err := s.txRepo.Save(ctx, tx); err != nil {
		return nil, err
	}
	return toTransactionResponse(tx), nil
}

func (s *TransactionService) approveOne(ctx context.Context, tenantID, id, approverID uuid.UUID) error {
	tx, err := s.findTransaction(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := tx.Post(approverID); err != nil {
		return err
	}
	if err := s.txRepo.Save(ctx, tx); err != nil {
		return err
	}
	s.invalidateBalances(ctx, tx)
	return nil
}

// invalidateBalances drops cached balances for every account the
// transaction touches. Best effort; a failed delete only means the
// cached value lives until its TTL.
func (s *TransactionService) invalidateBalances(ctx context.Context, tx *ledger.Transaction) {
	if s.cache == nil {
		return
	}
	seen := make(map[uuid.UUID]bool, len(tx.Entries))
	for _, e := range tx.Entries {
		if seen[e.AccountID] {
			continue
		}
		seen[e.AccountID] = true
		_ = s.cache.InvalidateBalance(ctx, tx.TenantID, e.AccountID)
	}
}

func (s *TransactionService) findTransaction(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Transaction, error) {
	tx, err := s.txRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, shared.NewNotFoundError("Transaction not found")
	}
	return tx, nil
}

// verifyAccounts checks every referenced account exists in the tenant
// and is active. Cross-tenant references surface as not-found, never as
// a hint the account exists elsewhere.
func (s *TransactionService) verifyAccounts(ctx context.Context, tenantID uuid.UUID, entries []EntryRequest) error {
	seen := make(map[uuid.UUID]bool, len(entries))
	ids := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		if !seen[e.AccountID] {
			seen[e.AccountID] = true
			ids = append(ids, e.AccountID)
		}
	}

	accounts, err := s.accountRepo.FindByIDsForTenant(ctx, tenantID, ids)
	if err != nil {
		return err
	}

	found := make(map[uuid.UUID]*ledger.Account, len(accounts))
	for i := range accounts {
		found[accounts[i].ID] = &accounts[i]
	}
	for _, id := range ids {
		acct, ok := found[id]
		if !ok {
			return shared.NewNotFoundError(fmt.Sprintf("Account %s not found", id))
		}
		if !acct.Active {
			return shared.NewValidationError(fmt.Sprintf("Account %s is inactive", acct.Code))
		}
	}
	return nil
}

func toTransactionResponse(tx *ledger.Transaction) *TransactionResponse {
	entries := make([]EntryResponse, 0, len(tx.Entries))
	for _, e := range tx.Entries {
		entries = append(entries, EntryResponse{
			ID:           e.ID,
			AccountID:    e.AccountID,
			Type:         e.Type.String(),
			Amount:       e.Amount,
			Currency:     string(e.Currency),
			ExchangeRate: e.ExchangeRate,
			AmountInBase: e.AmountInBase,
			Description:  e.Description,
			LineNo:       e.LineNo,
		})
	}

	notes := make([]NoteResponse, 0, len(tx.Notes))
	for _, n := range tx.Notes {
		notes = append(notes, NoteResponse{
			ID:        n.ID,
			UserID:    n.UserID,
			Text:      n.Text,
			CreatedAt: n.CreatedAt,
		})
	}

	return &TransactionResponse{
		ID:          tx.ID,
		Number:      tx.Number,
		Date:        tx.Date,
		Type:        tx.Type.String(),
		Status:      tx.Status.String(),
		Description: tx.Description,
		SourceType:  (*string)(tx.SourceType),
		SourceID:    tx.SourceID,
		Entries:     entries,
		Notes:       notes,
		TotalDebit:  tx.TotalDebitBase(),
		TotalCredit: tx.TotalCreditBase(),
		Balanced:    tx.IsBalanced(),
		PostedAt:    tx.PostedAt,
		VoidedAt:    tx.VoidedAt,
		CreatedAt:   tx.CreatedAt,
		Version:     tx.Version,
	}
}
