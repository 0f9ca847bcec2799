package persistence

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock, func()) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return &Database{DB: gormDB}, mock, func() { mockDB.Close() }
}

func TestDatabase_WithTenant(t *testing.T) {
	t.Run("scopes queries to the tenant", func(t *testing.T) {
		db, mock, cleanup := newMockDatabase(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT \* FROM "price_lists" WHERE tenant_id = \$1 AND is_active = \$2`).
			WithArgs("tenant-1", true).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		var rows []map[string]interface{}
		err := db.WithTenant("tenant-1").
			Where("is_active = ?", true).
			Table("price_lists").
			Find(&rows).Error

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("does not mutate the base handle", func(t *testing.T) {
		db, _, cleanup := newMockDatabase(t)
		defer cleanup()

		scoped := db.WithTenant("tenant-1")
		assert.NotSame(t, db.DB, scoped)
	})

	t.Run("panics on empty tenant ID", func(t *testing.T) {
		db, _, cleanup := newMockDatabase(t)
		defer cleanup()

		assert.Panics(t, func() {
			db.WithTenant("")
		})
	})
}

func TestDatabase_Transaction(t *testing.T) {
	t.Run("commits when fn succeeds", func(t *testing.T) {
		db, mock, cleanup := newMockDatabase(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "discounts" SET "is_active"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := db.Transaction(func(tx *gorm.DB) error {
			return tx.Table("discounts").
				Where("code = ?", "SPRING10").
				Update("is_active", false).Error
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when fn fails", func(t *testing.T) {
		db, mock, cleanup := newMockDatabase(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := db.Transaction(func(tx *gorm.DB) error {
			return assert.AnError
		})

		assert.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDatabase_Stats(t *testing.T) {
	db, _, cleanup := newMockDatabase(t)
	defer cleanup()

	stats, err := db.Stats()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, stats.OpenConnections, 0)
}

func TestDatabase_PingAndClose(t *testing.T) {
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	db := &Database{DB: gormDB}

	mock.ExpectPing()
	assert.NoError(t, db.Ping())

	mock.ExpectClose()
	assert.NoError(t, db.Close())
}
