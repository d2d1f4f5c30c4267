package ledger

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PostedEntry pairs a ledger entry with its transaction date for balance
// folding. Only entries of POSTED, non-voided transactions belong here;
// the repository filter is responsible for excluding VOIDED ones.
type PostedEntry struct {
	Entry           LedgerEntry
	TransactionDate time.Time
}

// BalanceLine is one step of a running balance: the entry applied and
// the balance after it.
type BalanceLine struct {
	EntryID      uuid.UUID       `json:"entry_id"`
	Type         EntryType       `json:"type"`
	AmountInBase decimal.Decimal `json:"amount_in_base"`
	Balance      decimal.Decimal `json:"balance"`
	Date         time.Time       `json:"date"`
}

// ComputeRunningBalance folds entries for one account into a running
// balance sequence. Running balances are derived, never stored.
//
// Ordering is load-bearing: transaction date ascending, then entry
// creation timestamp ascending. Any other fold order produces balances
// that disagree with the books.
func ComputeRunningBalance(normalSide EntryType, entries []PostedEntry) []BalanceLine {
	sorted := make([]PostedEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].TransactionDate.Equal(sorted[j].TransactionDate) {
			return sorted[i].TransactionDate.Before(sorted[j].TransactionDate)
		}
		return sorted[i].Entry.CreatedAt.Before(sorted[j].Entry.CreatedAt)
	})

	lines := make([]BalanceLine, 0, len(sorted))
	balance := decimal.Zero
	for _, pe := range sorted {
		balance = balance.Add(pe.Entry.SignedBaseAmount(normalSide))
		lines = append(lines, BalanceLine{
			EntryID:      pe.Entry.ID,
			Type:         pe.Entry.Type,
			AmountInBase: pe.Entry.AmountInBase,
			Balance:      balance,
			Date:         pe.TransactionDate,
		})
	}
	return lines
}

// AccountBalance folds entries to the final balance only
func AccountBalance(normalSide EntryType, entries []PostedEntry) decimal.Decimal {
	balance := decimal.Zero
	for _, pe := range entries {
		balance = balance.Add(pe.Entry.SignedBaseAmount(normalSide))
	}
	return balance
}
