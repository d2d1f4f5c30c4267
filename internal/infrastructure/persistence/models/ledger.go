package models

import (
	"time"

	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/finbooks/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountModel is the persistence model for the Account aggregate root.
type AccountModel struct {
	TenantAggregateModel
	Code     string               `gorm:"type:varchar(20);not null;uniqueIndex:idx_account_tenant_code,priority:2"`
	Name     string               `gorm:"type:varchar(200);not null"`
	Type     ledger.AccountType   `gorm:"type:varchar(20);not null;index"`
	Currency valueobject.Currency `gorm:"type:varchar(3);not null"`
	Active   bool                 `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the persistence model to a domain Account entity.
func (m *AccountModel) ToDomain() *ledger.Account {
	a := &ledger.Account{
		Code:     m.Code,
		Name:     m.Name,
		Type:     m.Type,
		Currency: m.Currency,
		Active:   m.Active,
	}
	m.PopulateTenantAggregateRoot(&a.TenantAggregateRoot)
	return a
}

// FromDomain populates the persistence model from a domain Account entity.
func (m *AccountModel) FromDomain(a *ledger.Account) {
	m.FromDomainTenantAggregateRoot(a.TenantAggregateRoot)
	m.Code = a.Code
	m.Name = a.Name
	m.Type = a.Type
	m.Currency = a.Currency
	m.Active = a.Active
}

// AccountModelFromDomain creates a new persistence model from a domain Account.
func AccountModelFromDomain(a *ledger.Account) *AccountModel {
	m := &AccountModel{}
	m.FromDomain(a)
	return m
}

// TransactionModel is the persistence model for the Transaction aggregate root.
// Entry and note rows are owned by the header and saved with it.
type TransactionModel struct {
	TenantAggregateModel
	Number      string                   `gorm:"type:varchar(30);not null;uniqueIndex:idx_transaction_tenant_number,priority:2"`
	Date        time.Time                `gorm:"not null;index"`
	Type        ledger.TransactionType   `gorm:"type:varchar(20);not null;index"`
	Status      ledger.TransactionStatus `gorm:"type:varchar(10);not null;default:'DRAFT';index"`
	Description string                   `gorm:"type:varchar(500)"`
	SourceType  *ledger.SourceType       `gorm:"type:varchar(20);index"`
	SourceID    *uuid.UUID               `gorm:"type:uuid;index"`
	PostedAt    *time.Time
	PostedBy    *uuid.UUID              `gorm:"type:uuid"`
	VoidedAt    *time.Time
	VoidedBy    *uuid.UUID              `gorm:"type:uuid"`
	Entries     []LedgerEntryModel      `gorm:"foreignKey:TransactionID;references:ID"`
	Notes       []TransactionNoteModel  `gorm:"foreignKey:TransactionID;references:ID"`
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "ledger_transactions"
}

// ToDomain converts the persistence model to a domain Transaction entity.
func (m *TransactionModel) ToDomain() *ledger.Transaction {
	t := &ledger.Transaction{
		Number:      m.Number,
		Date:        m.Date,
		Type:        m.Type,
		Status:      m.Status,
		Description: m.Description,
		SourceType:  m.SourceType,
		SourceID:    m.SourceID,
		PostedAt:    m.PostedAt,
		PostedBy:    m.PostedBy,
		VoidedAt:    m.VoidedAt,
		VoidedBy:    m.VoidedBy,
	}
	m.PopulateTenantAggregateRoot(&t.TenantAggregateRoot)

	t.Entries = make([]ledger.LedgerEntry, len(m.Entries))
	for i, e := range m.Entries {
		t.Entries[i] = *e.ToDomain()
	}
	t.Notes = make([]ledger.TransactionNote, len(m.Notes))
	for i, n := range m.Notes {
		t.Notes[i] = n.ToDomain()
	}
	return t
}

// FromDomain populates the persistence model from a domain Transaction entity.
func (m *TransactionModel) FromDomain(t *ledger.Transaction) {
	m.FromDomainTenantAggregateRoot(t.TenantAggregateRoot)
	m.Number = t.Number
	m.Date = t.Date
	m.Type = t.Type
	m.Status = t.Status
	m.Description = t.Description
	m.SourceType = t.SourceType
	m.SourceID = t.SourceID
	m.PostedAt = t.PostedAt
	m.PostedBy = t.PostedBy
	m.VoidedAt = t.VoidedAt
	m.VoidedBy = t.VoidedBy

	m.Entries = make([]LedgerEntryModel, len(t.Entries))
	for i := range t.Entries {
		m.Entries[i].FromDomain(&t.Entries[i])
	}
	m.Notes = make([]TransactionNoteModel, len(t.Notes))
	for i := range t.Notes {
		m.Notes[i].FromDomain(t.Notes[i])
	}
}

// TransactionModelFromDomain creates a new persistence model from a domain Transaction.
func TransactionModelFromDomain(t *ledger.Transaction) *TransactionModel {
	m := &TransactionModel{}
	m.FromDomain(t)
	return m
}

// LedgerEntryModel is the persistence model for one entry leg.
type LedgerEntryModel struct {
	BaseModel
	TransactionID uuid.UUID            `gorm:"type:uuid;not null;index"`
	AccountID     uuid.UUID            `gorm:"type:uuid;not null;index"`
	Type          ledger.EntryType     `gorm:"type:varchar(6);not null"`
	Amount        decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Currency      valueobject.Currency `gorm:"type:varchar(3);not null"`
	ExchangeRate  decimal.Decimal      `gorm:"type:decimal(18,8);not null;default:1"`
	AmountInBase  decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Description   string               `gorm:"type:varchar(500)"`
	LineNo        int                  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LedgerEntryModel) TableName() string {
	return "ledger_entries"
}

// ToDomain converts the persistence model to a domain LedgerEntry entity.
func (m *LedgerEntryModel) ToDomain() *ledger.LedgerEntry {
	return &ledger.LedgerEntry{
		BaseEntity:    m.BaseModel.ToDomain(),
		TransactionID: m.TransactionID,
		AccountID:     m.AccountID,
		Type:          m.Type,
		Amount:        m.Amount,
		Currency:      m.Currency,
		ExchangeRate:  m.ExchangeRate,
		AmountInBase:  m.AmountInBase,
		Description:   m.Description,
		LineNo:        m.LineNo,
	}
}

// FromDomain populates the persistence model from a domain LedgerEntry entity.
func (m *LedgerEntryModel) FromDomain(e *ledger.LedgerEntry) {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.TransactionID = e.TransactionID
	m.AccountID = e.AccountID
	m.Type = e.Type
	m.Amount = e.Amount
	m.Currency = e.Currency
	m.ExchangeRate = e.ExchangeRate
	m.AmountInBase = e.AmountInBase
	m.Description = e.Description
	m.LineNo = e.LineNo
}

// TransactionNoteModel is the persistence model for append-only notes.
type TransactionNoteModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	TransactionID uuid.UUID `gorm:"type:uuid;not null;index"`
	UserID        uuid.UUID `gorm:"type:uuid;not null"`
	Text          string    `gorm:"type:varchar(1000);not null"`
	CreatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TransactionNoteModel) TableName() string {
	return "ledger_transaction_notes"
}

// ToDomain converts the persistence model to a domain TransactionNote.
func (m *TransactionNoteModel) ToDomain() ledger.TransactionNote {
	return ledger.TransactionNote{
		ID:            m.ID,
		TransactionID: m.TransactionID,
		UserID:        m.UserID,
		Text:          m.Text,
		CreatedAt:     m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain TransactionNote.
func (m *TransactionNoteModel) FromDomain(n ledger.TransactionNote) {
	m.ID = n.ID
	m.TransactionID = n.TransactionID
	m.UserID = n.UserID
	m.Text = n.Text
	m.CreatedAt = n.CreatedAt
}
