package persistence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTransactionRepository implements ledger.TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// FindByIDForTenant finds a transaction with its entries and notes
func (r *GormTransactionRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Transaction, error) {
	var model models.TransactionModel
	if err := dbFrom(ctx, r.db).
		Preload("Entries", func(db *gorm.DB) *gorm.DB { return db.Order("line_no ASC") }).
		Preload("Notes", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds a transaction by its journal number
func (r *GormTransactionRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*ledger.Transaction, error) {
	var model models.TransactionModel
	if err := dbFrom(ctx, r.db).
		Preload("Entries", func(db *gorm.DB) *gorm.DB { return db.Order("line_no ASC") }).
		Preload("Notes", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("tenant_id = ? AND number = ?", tenantID, number).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists transactions with filtering
func (r *GormTransactionRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.TransactionFilter) ([]ledger.Transaction, error) {
	query := r.applyFilter(
		dbFrom(ctx, r.db).Model(&models.TransactionModel{}).Where("ledger_transactions.tenant_id = ?", tenantID),
		filter,
	)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	query = query.Order(orderClause(filter))

	var transactionModels []models.TransactionModel
	if err := query.
		Preload("Entries", func(db *gorm.DB) *gorm.DB { return db.Order("line_no ASC") }).
		Preload("Notes", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Find(&transactionModels).Error; err != nil {
		return nil, err
	}

	transactions := make([]ledger.Transaction, len(transactionModels))
	for i, model := range transactionModels {
		transactions[i] = *model.ToDomain()
	}
	return transactions, nil
}

// CountForTenant counts transactions matching the filter
func (r *GormTransactionRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.TransactionFilter) (int64, error) {
	var total int64
	query := r.applyFilter(
		dbFrom(ctx, r.db).Model(&models.TransactionModel{}).Where("ledger_transactions.tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *GormTransactionRepository) applyFilter(query *gorm.DB, filter ledger.TransactionFilter) *gorm.DB {
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.AccountID != nil {
		query = query.Where(
			"id IN (SELECT transaction_id FROM ledger_entries WHERE account_id = ?)",
			*filter.AccountID,
		)
	}
	if filter.DateFrom != nil {
		query = query.Where("date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("date <= ?", *filter.DateTo)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("number ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	return query
}

// orderClause builds a validated ORDER BY from the filter. Unknown
// columns fall back to date so caller input never reaches the SQL.
func orderClause(filter ledger.TransactionFilter) string {
	column := "date"
	switch filter.OrderBy {
	case "number", "date", "status", "type", "created_at":
		column = filter.OrderBy
	}
	dir := "DESC"
	if strings.EqualFold(filter.OrderDir, "asc") {
		dir = "ASC"
	}
	return column + " " + dir + ", created_at " + dir
}

// Save persists the header and all entry legs in one storage
// transaction. Entries are upserted; notes are append-only.
func (r *GormTransactionRepository) Save(ctx context.Context, tx *ledger.Transaction) error {
	model := models.TransactionModelFromDomain(tx)

	err := dbFrom(ctx, r.db).Transaction(func(db *gorm.DB) error {
		if err := db.Omit(clause.Associations).Save(model).Error; err != nil {
			return err
		}
		if len(model.Entries) > 0 {
			if err := db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&model.Entries).Error; err != nil {
				return err
			}
		}
		if len(model.Notes) > 0 {
			if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.Notes).Error; err != nil {
				return err
			}
		}
		return nil
	})

	return translateSaveError(err, fmt.Sprintf("Transaction number %s already exists", tx.Number))
}

// NextNumber computes the next journal number under the JE-{year}
// prefix by scanning the max existing suffix. Gaps are permitted when a
// prior attempt failed after number reservation; the unique index on
// (tenant_id, number) is what resolves concurrent reservations.
func (r *GormTransactionRepository) NextNumber(ctx context.Context, tenantID uuid.UUID, year int) (string, error) {
	prefix := fmt.Sprintf("JE-%d-", year)
	max, err := maxNumberSuffix(dbFrom(ctx, r.db), "ledger_transactions", tenantID, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefix, max+1), nil
}

// PostedEntriesForAccount returns entries of POSTED transactions for
// one account, ordered by transaction date then entry creation time.
// VOIDED transactions never contribute.
func (r *GormTransactionRepository) PostedEntriesForAccount(ctx context.Context, tenantID, accountID uuid.UUID, asOf *time.Time) ([]ledger.PostedEntry, error) {
	type entryRow struct {
		models.LedgerEntryModel
		TransactionDate time.Time
	}

	query := dbFrom(ctx, r.db).
		Table("ledger_entries").
		Select("ledger_entries.*, ledger_transactions.date AS transaction_date").
		Joins("JOIN ledger_transactions ON ledger_transactions.id = ledger_entries.transaction_id").
		Where("ledger_transactions.tenant_id = ?", tenantID).
		Where("ledger_transactions.status = ?", ledger.TransactionStatusPosted).
		Where("ledger_entries.account_id = ?", accountID)

	if asOf != nil {
		query = query.Where("ledger_transactions.date <= ?", *asOf)
	}

	var rows []entryRow
	if err := query.
		Order("ledger_transactions.date ASC, ledger_entries.created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	entries := make([]ledger.PostedEntry, len(rows))
	for i, row := range rows {
		entries[i] = ledger.PostedEntry{
			Entry:           *row.LedgerEntryModel.ToDomain(),
			TransactionDate: row.TransactionDate,
		}
	}
	return entries, nil
}

// ReversedTransactionIDs returns the subset of ids referenced as the
// source of a non-voided reversal transaction.
func (r *GormTransactionRepository) ReversedTransactionIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var reversed []uuid.UUID
	err := dbFrom(ctx, r.db).Model(&models.TransactionModel{}).
		Distinct("source_id").
		Where("tenant_id = ? AND source_type = ? AND source_id IN ? AND status <> ?",
			tenantID, ledger.SourceTypeTransaction, ids, ledger.TransactionStatusVoided).
		Pluck("source_id", &reversed).Error
	if err != nil {
		return nil, err
	}
	return reversed, nil
}

// maxNumberSuffix scans the highest numeric suffix under prefix for a
// tenant. Shared by the document-number generators.
func maxNumberSuffix(db *gorm.DB, table string, tenantID uuid.UUID, prefix string) (int, error) {
	var last string
	// Suffixes grow past four digits, so a plain lexicographic sort would
	// rank "9999" above "10000". Longer numbers always carry the larger
	// suffix under a fixed prefix.
	err := db.Table(table).
		Select("number").
		Where("tenant_id = ? AND number LIKE ?", tenantID, prefix+"%").
		Order("length(number) DESC, number DESC").
		Limit(1).
		Scan(&last).Error
	if err != nil {
		return 0, err
	}
	if last == "" {
		return 0, nil
	}

	suffix := strings.TrimPrefix(last, prefix)
	max, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, fmt.Errorf("malformed document number %q: %w", last, err)
	}
	return max, nil
}
