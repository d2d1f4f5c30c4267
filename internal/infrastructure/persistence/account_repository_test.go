package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/finbooks/backend/internal/domain/ledger"
	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/finbooks/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockAccountRepository creates a GormAccountRepository with a mocked SQL connection
func newMockAccountRepository(t *testing.T) (*GormAccountRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormAccountRepository(gormDB), mock, mockDB
}

func accountRows(id, tenantID uuid.UUID, code, name string, accountType ledger.AccountType) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "tenant_id", "version", "code", "name", "type", "currency", "active"}).
		AddRow(id, tenantID, int64(1), code, name, accountType, "USD", true)
}

func TestGormAccountRepository_FindByIDForTenant(t *testing.T) {
	t.Run("finds account within tenant", func(t *testing.T) {
		repo, mock, mockDB := newMockAccountRepository(t)
		defer mockDB.Close()

		accountID := uuid.New()
		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "accounts" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, accountID, 1).
			WillReturnRows(accountRows(accountID, tenantID, "1000", "Cash", ledger.AccountTypeAsset))

		account, err := repo.FindByIDForTenant(context.Background(), tenantID, accountID)

		assert.NoError(t, err)
		require.NotNil(t, account)
		assert.Equal(t, accountID, account.ID)
		assert.Equal(t, tenantID, account.TenantID)
		assert.Equal(t, "1000", account.Code)
		assert.Equal(t, valueobject.USD, account.Currency)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for missing account", func(t *testing.T) {
		repo, mock, mockDB := newMockAccountRepository(t)
		defer mockDB.Close()

		accountID := uuid.New()
		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "accounts" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, accountID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		account, err := repo.FindByIDForTenant(context.Background(), tenantID, accountID)

		assert.Error(t, err)
		assert.Nil(t, account)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormAccountRepository_FindByIDsForTenant(t *testing.T) {
	t.Run("finds multiple accounts", func(t *testing.T) {
		repo, mock, mockDB := newMockAccountRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		id1 := uuid.New()
		id2 := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "version", "code", "name", "type", "currency", "active"}).
			AddRow(id1, tenantID, int64(1), "1000", "Cash", ledger.AccountTypeAsset, "USD", true).
			AddRow(id2, tenantID, int64(1), "4000", "Sales Revenue", ledger.AccountTypeRevenue, "USD", true)

		mock.ExpectQuery(`SELECT \* FROM "accounts" WHERE tenant_id = \$1 AND id IN \(\$2,\$3\)`).
			WithArgs(tenantID, id1, id2).
			WillReturnRows(rows)

		accounts, err := repo.FindByIDsForTenant(context.Background(), tenantID, []uuid.UUID{id1, id2})

		assert.NoError(t, err)
		assert.Len(t, accounts, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns nil for empty ids", func(t *testing.T) {
		repo, _, mockDB := newMockAccountRepository(t)
		defer mockDB.Close()

		accounts, err := repo.FindByIDsForTenant(context.Background(), uuid.New(), nil)

		assert.NoError(t, err)
		assert.Empty(t, accounts)
	})
}

func TestGormAccountRepository_FindByCode(t *testing.T) {
	t.Run("finds account by code", func(t *testing.T) {
		repo, mock, mockDB := newMockAccountRepository(t)
		defer mockDB.Close()

		accountID := uuid.New()
		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "accounts" WHERE tenant_id = \$1 AND code = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, "2000", 1).
			WillReturnRows(accountRows(accountID, tenantID, "2000", "Accounts Payable", ledger.AccountTypeLiability))

		account, err := repo.FindByCode(context.Background(), tenantID, "2000")

		assert.NoError(t, err)
		require.NotNil(t, account)
		assert.Equal(t, "2000", account.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormAccountRepository_FindAllForTenant(t *testing.T) {
	t.Run("applies type filter and orders by code", func(t *testing.T) {
		repo, mock, mockDB := newMockAccountRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		assetType := ledger.AccountTypeAsset

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "version", "code", "name", "type", "currency", "active"}).
			AddRow(uuid.New(), tenantID, int64(1), "1000", "Cash", assetType, "USD", true).
			AddRow(uuid.New(), tenantID, int64(1), "1200", "Accounts Receivable", assetType, "USD", true)

		mock.ExpectQuery(`SELECT \* FROM "accounts" WHERE tenant_id = \$1 AND type = \$2 ORDER BY code ASC`).
			WithArgs(tenantID, assetType).
			WillReturnRows(rows)

		accounts, err := repo.FindAllForTenant(context.Background(), tenantID, ledger.AccountFilter{Type: &assetType})

		assert.NoError(t, err)
		assert.Len(t, accounts, 2)
		assert.Equal(t, "1000", accounts[0].Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormAccountRepository_Save(t *testing.T) {
	t.Run("translates duplicate code to conflict", func(t *testing.T) {
		repo, mock, mockDB := newMockAccountRepository(t)
		defer mockDB.Close()

		account, err := ledger.NewAccount(uuid.New(), "1000", "Cash", ledger.AccountTypeAsset, valueobject.USD)
		require.NoError(t, err)

		mock.ExpectExec(`UPDATE "accounts" SET`).
			WillReturnError(gorm.ErrDuplicatedKey)

		err = repo.Save(context.Background(), account)

		assert.Error(t, err)
		assert.True(t, shared.IsConflict(err))
	})
}

func TestGormAccountRepository_HasEntries(t *testing.T) {
	t.Run("returns true when entries reference the account", func(t *testing.T) {
		repo, mock, mockDB := newMockAccountRepository(t)
		defer mockDB.Close()

		accountID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "ledger_entries" WHERE account_id = \$1`).
			WithArgs(accountID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		has, err := repo.HasEntries(context.Background(), accountID)

		assert.NoError(t, err)
		assert.True(t, has)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns false when no entries exist", func(t *testing.T) {
		repo, mock, mockDB := newMockAccountRepository(t)
		defer mockDB.Close()

		accountID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "ledger_entries" WHERE account_id = \$1`).
			WithArgs(accountID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		has, err := repo.HasEntries(context.Background(), accountID)

		assert.NoError(t, err)
		assert.False(t, has)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormAccountRepository_InterfaceCompliance(t *testing.T) {
	repo, _, mockDB := newMockAccountRepository(t)
	defer mockDB.Close()

	var _ ledger.AccountRepository = repo
}
