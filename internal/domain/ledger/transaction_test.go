package ledger

import (
	"testing"
	"time"

	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func balancedEntries(debitAccount, creditAccount uuid.UUID, amount string) []EntryInput {
	amt, _ := decimal.NewFromString(amount)
	return []EntryInput{
		{AccountID: debitAccount, Type: EntryTypeDebit, Amount: amt},
		{AccountID: creditAccount, Type: EntryTypeCredit, Amount: amt},
	}
}

func newDraftTransaction(t *testing.T, entries []EntryInput) *Transaction {
	t.Helper()
	tx, err := NewTransaction(uuid.New(), "JE-2025-0001", time.Now(), TransactionTypeGeneral, "test entry", entries, nil, nil)
	require.NoError(t, err)
	return tx
}

func TestNewTransaction(t *testing.T) {
	debit := uuid.New()
	credit := uuid.New()

	t.Run("creates draft with entries", func(t *testing.T) {
		tx := newDraftTransaction(t, balancedEntries(debit, credit, "100"))
		assert.Equal(t, TransactionStatusDraft, tx.Status)
		assert.Len(t, tx.Entries, 2)
		assert.Equal(t, 1, tx.Entries[0].LineNo)
		assert.Equal(t, 2, tx.Entries[1].LineNo)
	})

	t.Run("rejects empty entry list", func(t *testing.T) {
		_, err := NewTransaction(uuid.New(), "JE-2025-0001", time.Now(), TransactionTypeGeneral, "", nil, nil, nil)
		require.Error(t, err)
		assert.Equal(t, shared.CodeValidation, shared.ErrorCode(err))
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		_, err := NewTransaction(uuid.New(), "JE-2025-0001", time.Now(), TransactionTypeGeneral, "", []EntryInput{
			{AccountID: debit, Type: EntryTypeDebit, Amount: decimal.NewFromInt(-5)},
		}, nil, nil)
		require.Error(t, err)
		assert.Equal(t, shared.CodeValidation, shared.ErrorCode(err))
	})

	t.Run("rejects missing number", func(t *testing.T) {
		_, err := NewTransaction(uuid.New(), "", time.Now(), TransactionTypeGeneral, "", balancedEntries(debit, credit, "10"), nil, nil)
		require.Error(t, err)
	})

	t.Run("defaults exchange rate to one", func(t *testing.T) {
		tx := newDraftTransaction(t, balancedEntries(debit, credit, "100"))
		assert.True(t, tx.Entries[0].ExchangeRate.Equal(decimal.NewFromInt(1)))
		assert.True(t, tx.Entries[0].AmountInBase.Equal(decimal.NewFromInt(100)))
	})

	t.Run("draft may be unbalanced", func(t *testing.T) {
		tx := newDraftTransaction(t, []EntryInput{
			{AccountID: debit, Type: EntryTypeDebit, Amount: decimal.NewFromInt(100)},
			{AccountID: credit, Type: EntryTypeCredit, Amount: decimal.NewFromInt(90)},
		})
		assert.False(t, tx.IsBalanced())
		assert.Equal(t, TransactionStatusDraft, tx.Status)
	})
}

func TestTransactionPost(t *testing.T) {
	debit := uuid.New()
	credit := uuid.New()
	user := uuid.New()

	t.Run("posts a balanced draft", func(t *testing.T) {
		tx := newDraftTransaction(t, balancedEntries(debit, credit, "100"))
		require.NoError(t, tx.Post(user))
		assert.Equal(t, TransactionStatusPosted, tx.Status)
		require.NotNil(t, tx.PostedAt)
		assert.Equal(t, user, *tx.PostedBy)
	})

	t.Run("rejects unbalanced draft and leaves it DRAFT", func(t *testing.T) {
		tx := newDraftTransaction(t, []EntryInput{
			{AccountID: debit, Type: EntryTypeDebit, Amount: decimal.NewFromInt(100)},
			{AccountID: credit, Type: EntryTypeCredit, Amount: decimal.NewFromInt(90)},
		})
		err := tx.Post(user)
		require.Error(t, err)
		assert.Equal(t, shared.CodeOutOfBalance, shared.ErrorCode(err))
		assert.Equal(t, TransactionStatusDraft, tx.Status)
	})

	t.Run("tolerates rounding within epsilon", func(t *testing.T) {
		tx := newDraftTransaction(t, []EntryInput{
			{AccountID: debit, Type: EntryTypeDebit, Amount: decimal.RequireFromString("100.005")},
			{AccountID: credit, Type: EntryTypeCredit, Amount: decimal.NewFromInt(100)},
		})
		assert.NoError(t, tx.Post(user))
	})

	t.Run("rejects imbalance just above epsilon", func(t *testing.T) {
		tx := newDraftTransaction(t, []EntryInput{
			{AccountID: debit, Type: EntryTypeDebit, Amount: decimal.RequireFromString("100.011")},
			{AccountID: credit, Type: EntryTypeCredit, Amount: decimal.NewFromInt(100)},
		})
		err := tx.Post(user)
		require.Error(t, err)
		assert.Equal(t, shared.CodeOutOfBalance, shared.ErrorCode(err))
	})

	t.Run("balance check uses base currency amounts", func(t *testing.T) {
		tx := newDraftTransaction(t, []EntryInput{
			{AccountID: debit, Type: EntryTypeDebit, Amount: decimal.NewFromInt(50), Currency: valueobject.EUR, ExchangeRate: decimal.NewFromInt(2)},
			{AccountID: credit, Type: EntryTypeCredit, Amount: decimal.NewFromInt(100)},
		})
		assert.True(t, tx.IsBalanced())
		assert.NoError(t, tx.Post(user))
	})

	t.Run("cannot post twice", func(t *testing.T) {
		tx := newDraftTransaction(t, balancedEntries(debit, credit, "100"))
		require.NoError(t, tx.Post(user))
		err := tx.Post(user)
		require.Error(t, err)
		assert.Equal(t, shared.CodeInvalidState, shared.ErrorCode(err))
	})
}

func TestTransactionVoid(t *testing.T) {
	debit := uuid.New()
	credit := uuid.New()
	user := uuid.New()

	t.Run("voids a posted transaction", func(t *testing.T) {
		tx := newDraftTransaction(t, balancedEntries(debit, credit, "100"))
		require.NoError(t, tx.Post(user))
		require.NoError(t, tx.Void(user))
		assert.Equal(t, TransactionStatusVoided, tx.Status)
		// Entries stay for audit.
		assert.Len(t, tx.Entries, 2)
	})

	t.Run("cannot void a draft", func(t *testing.T) {
		tx := newDraftTransaction(t, balancedEntries(debit, credit, "100"))
		err := tx.Void(user)
		require.Error(t, err)
		assert.Equal(t, shared.CodeInvalidState, shared.ErrorCode(err))
	})

	t.Run("cannot void twice", func(t *testing.T) {
		tx := newDraftTransaction(t, balancedEntries(debit, credit, "100"))
		require.NoError(t, tx.Post(user))
		require.NoError(t, tx.Void(user))
		assert.Error(t, tx.Void(user))
	})
}

func TestBuildReversal(t *testing.T) {
	debit := uuid.New()
	credit := uuid.New()
	user := uuid.New()

	t.Run("swaps every leg and posts immediately", func(t *testing.T) {
		tx := newDraftTransaction(t, balancedEntries(debit, credit, "250"))
		require.NoError(t, tx.Post(user))

		rev, err := tx.BuildReversal("JE-2025-0002", user, "correction")
		require.NoError(t, err)
		assert.Equal(t, TransactionStatusPosted, rev.Status)
		assert.Equal(t, TransactionTypeReversal, rev.Type)
		require.Len(t, rev.Entries, 2)
		assert.Equal(t, EntryTypeCredit, rev.Entries[0].Type)
		assert.Equal(t, debit, rev.Entries[0].AccountID)
		assert.Equal(t, EntryTypeDebit, rev.Entries[1].Type)
		assert.Equal(t, credit, rev.Entries[1].AccountID)
		require.NotNil(t, rev.SourceID)
		assert.Equal(t, tx.ID, *rev.SourceID)
		assert.NotEmpty(t, rev.Notes)
	})

	t.Run("reversal round-trip nets accounts to zero", func(t *testing.T) {
		tx := newDraftTransaction(t, balancedEntries(debit, credit, "250"))
		require.NoError(t, tx.Post(user))
		rev, err := tx.BuildReversal("JE-2025-0002", user, "")
		require.NoError(t, err)

		var entries []PostedEntry
		for _, e := range tx.Entries {
			if e.AccountID == debit {
				entries = append(entries, PostedEntry{Entry: e, TransactionDate: tx.Date})
			}
		}
		for _, e := range rev.Entries {
			if e.AccountID == debit {
				entries = append(entries, PostedEntry{Entry: e, TransactionDate: rev.Date})
			}
		}
		net := AccountBalance(EntryTypeDebit, entries)
		assert.True(t, net.IsZero(), "expected zero net, got %s", net)
	})

	t.Run("cannot reverse a voided transaction", func(t *testing.T) {
		tx := newDraftTransaction(t, balancedEntries(debit, credit, "250"))
		require.NoError(t, tx.Post(user))
		require.NoError(t, tx.Void(user))

		_, err := tx.BuildReversal("JE-2025-0002", user, "")
		require.Error(t, err)
		assert.Equal(t, shared.CodeInvalidState, shared.ErrorCode(err))
	})
}

func TestAppendNote(t *testing.T) {
	tx := newDraftTransaction(t, balancedEntries(uuid.New(), uuid.New(), "10"))

	require.NoError(t, tx.AppendNote(uuid.New(), "first"))
	require.NoError(t, tx.AppendNote(uuid.New(), "second"))
	assert.Len(t, tx.Notes, 2)

	assert.Error(t, tx.AppendNote(uuid.New(), ""))
}
