package persistence

import (
	"context"
	"errors"

	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAccountRepository implements ledger.AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// FindByIDForTenant finds an account by ID within a tenant
func (r *GormAccountRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Account, error) {
	var model models.AccountModel
	if err := dbFrom(ctx, r.db).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDsForTenant finds the accounts matching ids within a tenant.
// Missing IDs are simply absent from the result; callers decide whether
// that is an error.
func (r *GormAccountRepository) FindByIDsForTenant(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]ledger.Account, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var accountModels []models.AccountModel
	if err := dbFrom(ctx, r.db).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Find(&accountModels).Error; err != nil {
		return nil, err
	}

	accounts := make([]ledger.Account, len(accountModels))
	for i, model := range accountModels {
		accounts[i] = *model.ToDomain()
	}
	return accounts, nil
}

// FindByCode finds an account by its chart code within a tenant
func (r *GormAccountRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*ledger.Account, error) {
	var model models.AccountModel
	if err := dbFrom(ctx, r.db).
		Where("tenant_id = ? AND code = ?", tenantID, code).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists accounts with filtering
func (r *GormAccountRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.AccountFilter) ([]ledger.Account, error) {
	query := dbFrom(ctx, r.db).Model(&models.AccountModel{}).
		Where("tenant_id = ?", tenantID)

	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("code ILIKE ? OR name ILIKE ?", pattern, pattern)
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var accountModels []models.AccountModel
	if err := query.Order("code ASC").Find(&accountModels).Error; err != nil {
		return nil, err
	}

	accounts := make([]ledger.Account, len(accountModels))
	for i, model := range accountModels {
		accounts[i] = *model.ToDomain()
	}
	return accounts, nil
}

// Save persists an account, translating duplicate codes to CONFLICT
func (r *GormAccountRepository) Save(ctx context.Context, account *ledger.Account) error {
	model := models.AccountModelFromDomain(account)
	err := dbFrom(ctx, r.db).Save(model).Error
	return translateSaveError(err, "Account code already exists for this organization")
}

// HasEntries reports whether any ledger entry references the account
func (r *GormAccountRepository) HasEntries(ctx context.Context, accountID uuid.UUID) (bool, error) {
	var count int64
	if err := dbFrom(ctx, r.db).Model(&models.LedgerEntryModel{}).
		Where("account_id = ?", accountID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
