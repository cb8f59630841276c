package helpers

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// FixedNow is the clock used by mocked gorm connections.
var FixedNow = time.Date(2024, 6, 13, 10, 20, 0, 0, time.UTC)

var settingColumns = []string{"key", "value", "created_at", "updated_at"}

const (
	selectSetting = `SELECT \* FROM "settings" WHERE key = \$1`
	upsertSetting = `INSERT INTO "settings" .* ON CONFLICT \("key"\) DO UPDATE SET`
)

// MockDB is a gorm Postgres connection backed by sqlmock. Unmet
// expectations fail the test at cleanup.
type MockDB struct {
	DB   *gorm.DB
	Mock sqlmock.Sqlmock
}

func NewMockDB(t *testing.T) *MockDB {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return FixedNow },
	})
	require.NoError(t, err)

	m := &MockDB{DB: db, Mock: mock}
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet(), "unmet sql expectations")
		_ = sqlDB.Close()
	})
	return m
}

// ExpectSetting makes the next settings lookup return one row.
func (m *MockDB) ExpectSetting(key, value string) {
	m.Mock.ExpectQuery(selectSetting).
		WillReturnRows(sqlmock.NewRows(settingColumns).AddRow(key, value, FixedNow, FixedNow))
}

// ExpectNoSetting makes the next settings lookup return no rows.
func (m *MockDB) ExpectNoSetting() {
	m.Mock.ExpectQuery(selectSetting).
		WillReturnRows(sqlmock.NewRows(settingColumns))
}

func (m *MockDB) ExpectSettingQueryError(err error) {
	m.Mock.ExpectQuery(selectSetting).WillReturnError(err)
}

// ExpectUpsert expects one transactional insert-or-update of a setting.
func (m *MockDB) ExpectUpsert() {
	m.Mock.ExpectBegin()
	m.Mock.ExpectExec(upsertSetting).WillReturnResult(sqlmock.NewResult(0, 1))
	m.Mock.ExpectCommit()
}

func (m *MockDB) ExpectUpsertError(err error) {
	m.Mock.ExpectBegin()
	m.Mock.ExpectExec(upsertSetting).WillReturnError(err)
	m.Mock.ExpectRollback()
}
