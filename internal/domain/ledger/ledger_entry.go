package ledger

import (
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryType represents the side of a ledger entry
type EntryType string

const (
	EntryTypeDebit  EntryType = "DEBIT"
	EntryTypeCredit EntryType = "CREDIT"
)

// IsValid checks if the entry type is valid
func (t EntryType) IsValid() bool {
	return t == EntryTypeDebit || t == EntryTypeCredit
}

// String returns the string representation of EntryType
func (t EntryType) String() string {
	return string(t)
}

// Opposite returns the other side: DEBIT for CREDIT and vice versa
func (t EntryType) Opposite() EntryType {
	if t == EntryTypeDebit {
		return EntryTypeCredit
	}
	return EntryTypeDebit
}

// LedgerEntry is one debit or credit leg of a transaction. Entries are a
// composition of their transaction: they are only ever created through
// it and only deleted with a DRAFT parent.
//
// AmountInBase is computed once at creation (amount * exchange rate) and
// persisted for audit reproducibility; it is never recomputed from a
// later rate.
type LedgerEntry struct {
	shared.BaseEntity
	TransactionID uuid.UUID            `json:"transaction_id"`
	AccountID     uuid.UUID            `json:"account_id"`
	Type          EntryType            `json:"type"`
	Amount        decimal.Decimal      `json:"amount"`
	Currency      valueobject.Currency `json:"currency"`
	ExchangeRate  decimal.Decimal      `json:"exchange_rate"`
	AmountInBase  decimal.Decimal      `json:"amount_in_base"`
	Description   string               `json:"description"`
	LineNo        int                  `json:"line_no"`
}

// EntryInput captures the caller-supplied fields for one entry line
type EntryInput struct {
	AccountID    uuid.UUID
	Type         EntryType
	Amount       decimal.Decimal
	Currency     valueobject.Currency
	ExchangeRate decimal.Decimal
	Description  string
}

// newLedgerEntry validates input and computes the base-currency amount
func newLedgerEntry(transactionID uuid.UUID, lineNo int, in EntryInput) (*LedgerEntry, error) {
	if in.AccountID == uuid.Nil {
		return nil, shared.NewValidationError("Entry account ID cannot be empty")
	}
	if !in.Type.IsValid() {
		return nil, shared.NewValidationError("Entry type must be DEBIT or CREDIT")
	}
	if in.Amount.IsNegative() {
		return nil, shared.NewValidationError("Entry amount cannot be negative")
	}
	currency := in.Currency
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	rate := in.ExchangeRate
	if rate.IsZero() {
		rate = decimal.NewFromInt(1)
	}
	if rate.IsNegative() {
		return nil, shared.NewValidationError("Exchange rate must be positive")
	}

	return &LedgerEntry{
		BaseEntity:    shared.NewBaseEntity(),
		TransactionID: transactionID,
		AccountID:     in.AccountID,
		Type:          in.Type,
		Amount:        in.Amount,
		Currency:      currency,
		ExchangeRate:  rate,
		AmountInBase:  in.Amount.Mul(rate),
		Description:   in.Description,
		LineNo:        lineNo,
	}, nil
}

// Reversed returns the input for an entry with the opposite side, used
// when building a reversal transaction
func (e *LedgerEntry) Reversed() EntryInput {
	return EntryInput{
		AccountID:    e.AccountID,
		Type:         e.Type.Opposite(),
		Amount:       e.Amount,
		Currency:     e.Currency,
		ExchangeRate: e.ExchangeRate,
		Description:  e.Description,
	}
}

// SignedBaseAmount returns the base-currency amount signed for balance
// folding on an account with the given normal side: entries on the
// normal side add, entries on the opposite side subtract.
func (e *LedgerEntry) SignedBaseAmount(normalSide EntryType) decimal.Decimal {
	if e.Type == normalSide {
		return e.AmountInBase
	}
	return e.AmountInBase.Neg()
}
