package ledger

import (
	"fmt"
	"time"

	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionStatus represents the lifecycle state of a journal transaction
type TransactionStatus string

const (
	TransactionStatusDraft  TransactionStatus = "DRAFT"
	TransactionStatusPosted TransactionStatus = "POSTED"
	TransactionStatusVoided TransactionStatus = "VOIDED"
)

// IsValid checks if the status is a valid TransactionStatus
func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionStatusDraft, TransactionStatusPosted, TransactionStatusVoided:
		return true
	}
	return false
}

// String returns the string representation of TransactionStatus
func (s TransactionStatus) String() string {
	return string(s)
}

// TransactionType classifies the origin of a journal transaction
type TransactionType string

const (
	TransactionTypeGeneral      TransactionType = "GENERAL"
	TransactionTypeDepreciation TransactionType = "DEPRECIATION"
	TransactionTypeRevaluation  TransactionType = "REVALUATION"
	TransactionTypeAdjustment   TransactionType = "ADJUSTMENT"
	TransactionTypeReversal     TransactionType = "REVERSAL"
)

// IsValid checks if the transaction type is valid
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeGeneral, TransactionTypeDepreciation,
		TransactionTypeRevaluation, TransactionTypeAdjustment, TransactionTypeReversal:
		return true
	}
	return false
}

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// SourceType identifies the kind of document that produced a transaction
type SourceType string

const (
	SourceTypeAsset       SourceType = "ASSET"
	SourceTypeRevaluation SourceType = "REVALUATION"
	SourceTypeBill        SourceType = "BILL"
	SourceTypeInvoice     SourceType = "INVOICE"
	SourceTypeTransaction SourceType = "TRANSACTION" // reversal linking back to the original
)

// TransactionNote is an append-only annotation on a transaction.
// Notes survive posting: they are the only mutation allowed on a
// POSTED transaction besides void/reverse.
type TransactionNote struct {
	ID            uuid.UUID `json:"id"`
	TransactionID uuid.UUID `json:"transaction_id"`
	UserID        uuid.UUID `json:"user_id"`
	Text          string    `json:"text"`
	CreatedAt     time.Time `json:"created_at"`
}

// BalanceTolerance is the absolute epsilon used when validating that a
// transaction balances. Multi-currency conversion rounds each leg
// independently, so totals may disagree by fractions of a cent; the
// tolerance absorbs that. It is used for balance validation only, never
// for storage.
var BalanceTolerance = decimal.NewFromFloat(0.01)

// Transaction is a journal entry header: one atomic financial event
// composed of debit and credit legs that must net to zero before it may
// be posted. Owned exclusively by one tenant; immutable once POSTED
// except for status transitions and append-only notes.
type Transaction struct {
	shared.TenantAggregateRoot
	Number      string            `json:"number"`
	Date        time.Time         `json:"date"`
	Type        TransactionType   `json:"type"`
	Status      TransactionStatus `json:"status"`
	Description string            `json:"description"`
	SourceType  *SourceType       `json:"source_type,omitempty"`
	SourceID    *uuid.UUID        `json:"source_id,omitempty"`
	Entries     []LedgerEntry     `json:"entries"`
	Notes       []TransactionNote `json:"notes"`
	PostedAt    *time.Time        `json:"posted_at,omitempty"`
	PostedBy    *uuid.UUID        `json:"posted_by,omitempty"`
	VoidedAt    *time.Time        `json:"voided_at,omitempty"`
	VoidedBy    *uuid.UUID        `json:"voided_by,omitempty"`
}

// NewTransaction creates a DRAFT transaction with its entry legs.
// Drafts may be temporarily unbalanced while being edited; balance is
// enforced at posting time.
func NewTransaction(
	tenantID uuid.UUID,
	number string,
	date time.Time,
	txType TransactionType,
	description string,
	entries []EntryInput,
	sourceType *SourceType,
	sourceID *uuid.UUID,
) (*Transaction, error) {
	if number == "" {
		return nil, shared.NewValidationError("Transaction number cannot be empty")
	}
	if date.IsZero() {
		return nil, shared.NewValidationError("Transaction date is required")
	}
	if !txType.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("Invalid transaction type: %s", txType))
	}
	if len(entries) == 0 {
		return nil, shared.NewValidationError("Transaction requires at least one entry")
	}

	t := &Transaction{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Number:              number,
		Date:                date,
		Type:                txType,
		Status:              TransactionStatusDraft,
		Description:         description,
		SourceType:          sourceType,
		SourceID:            sourceID,
		Entries:             make([]LedgerEntry, 0, len(entries)),
		Notes:               make([]TransactionNote, 0),
	}

	for i, in := range entries {
		entry, err := newLedgerEntry(t.ID, i+1, in)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}
		t.Entries = append(t.Entries, *entry)
	}

	return t, nil
}

// TotalDebitBase sums all debit legs in base currency
func (t *Transaction) TotalDebitBase() decimal.Decimal {
	total := decimal.Zero
	for _, e := range t.Entries {
		if e.Type == EntryTypeDebit {
			total = total.Add(e.AmountInBase)
		}
	}
	return total
}

// TotalCreditBase sums all credit legs in base currency
func (t *Transaction) TotalCreditBase() decimal.Decimal {
	total := decimal.Zero
	for _, e := range t.Entries {
		if e.Type == EntryTypeCredit {
			total = total.Add(e.AmountInBase)
		}
	}
	return total
}

// Imbalance returns |total debits - total credits| in base currency
func (t *Transaction) Imbalance() decimal.Decimal {
	return t.TotalDebitBase().Sub(t.TotalCreditBase()).Abs()
}

// IsBalanced reports whether debits equal credits within BalanceTolerance
func (t *Transaction) IsBalanced() bool {
	return t.Imbalance().LessThanOrEqual(BalanceTolerance)
}

// Post transitions DRAFT -> POSTED. The authoritative balance check sums
// base-currency amounts and compares within BalanceTolerance.
func (t *Transaction) Post(userID uuid.UUID) error {
	if t.Status != TransactionStatusDraft {
		return shared.NewInvalidStateError(fmt.Sprintf("Cannot post transaction in %s status", t.Status))
	}
	if !t.IsBalanced() {
		return shared.NewDomainError(shared.CodeOutOfBalance,
			fmt.Sprintf("Transaction is out of balance: debits %s, credits %s",
				t.TotalDebitBase().StringFixed(2), t.TotalCreditBase().StringFixed(2)))
	}

	now := time.Now()
	t.Status = TransactionStatusPosted
	t.PostedAt = &now
	t.PostedBy = &userID
	t.Touch()
	t.IncrementVersion()
	return nil
}

// Void transitions POSTED -> VOIDED. Entries are retained for audit but
// must be excluded from active balance computation by queries.
func (t *Transaction) Void(userID uuid.UUID) error {
	if t.Status != TransactionStatusPosted {
		return shared.NewInvalidStateError(fmt.Sprintf("Cannot void transaction in %s status", t.Status))
	}

	now := time.Now()
	t.Status = TransactionStatusVoided
	t.VoidedAt = &now
	t.VoidedBy = &userID
	t.Touch()
	t.IncrementVersion()
	return nil
}

// AppendNote adds an append-only note. Allowed in any status.
func (t *Transaction) AppendNote(userID uuid.UUID, text string) error {
	if text == "" {
		return shared.NewValidationError("Note text cannot be empty")
	}
	t.Notes = append(t.Notes, TransactionNote{
		ID:            uuid.New(),
		TransactionID: t.ID,
		UserID:        userID,
		Text:          text,
		CreatedAt:     time.Now(),
	})
	t.Touch()
	return nil
}

// BuildReversal constructs a new transaction that cancels this one:
// every leg's side swapped, dated now, immediately POSTED. Posting the
// original and its reversal together nets every account to its prior
// balance. Fails when the original is already VOIDED.
func (t *Transaction) BuildReversal(number string, userID uuid.UUID, reason string) (*Transaction, error) {
	if t.Status == TransactionStatusVoided {
		return nil, shared.NewInvalidStateError("Cannot reverse a voided transaction")
	}

	inputs := make([]EntryInput, 0, len(t.Entries))
	for _, e := range t.Entries {
		inputs = append(inputs, e.Reversed())
	}

	desc := fmt.Sprintf("Reversal of %s", t.Number)
	if reason != "" {
		desc = fmt.Sprintf("%s: %s", desc, reason)
	}

	srcType := SourceTypeTransaction
	srcID := t.ID
	rev, err := NewTransaction(t.TenantID, number, time.Now(), TransactionTypeReversal, desc, inputs, &srcType, &srcID)
	if err != nil {
		return nil, err
	}
	if err := rev.Post(userID); err != nil {
		return nil, err
	}
	if err := rev.AppendNote(userID, fmt.Sprintf("Reverses transaction %s", t.Number)); err != nil {
		return nil, err
	}
	return rev, nil
}

// IsDraft returns true if the transaction is in DRAFT status
func (t *Transaction) IsDraft() bool {
	return t.Status == TransactionStatusDraft
}

// IsPosted returns true if the transaction is in POSTED status
func (t *Transaction) IsPosted() bool {
	return t.Status == TransactionStatusPosted
}

// IsVoided returns true if the transaction is in VOIDED status
func (t *Transaction) IsVoided() bool {
	return t.Status == TransactionStatusVoided
}
