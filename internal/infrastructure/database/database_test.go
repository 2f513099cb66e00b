package database

import (
	"path/filepath"
	"testing"

	"receivables/internal/config"
	"receivables/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

func TestDialect(t *testing.T) {
	tests := []struct {
		dbType   string
		wantName string
		wantErr  bool
	}{
		{dbType: "sqlite", wantName: "sqlite"},
		{dbType: "mysql", wantName: "mysql"},
		{dbType: "postgres", wantName: "postgres"},
		{dbType: "oracle", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.dbType, func(t *testing.T) {
			d, err := Dialect(&config.DatabaseConfig{Type: tt.dbType, Path: "x.db", Port: 1})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, d.Name())
		})
	}
}

func TestOpen_SQLiteFileCreatesSchema(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Type:         "sqlite",
		Path:         filepath.Join(t.TempDir(), "data.db"),
		MaxOpenConns: 10,
	}

	db, err := Open(cfg, zap.NewNop())
	require.NoError(t, err)

	for _, table := range []interface{}{&model.Account{}, &model.Customer{}, &model.Payment{}, &model.OutboxMessage{}} {
		assert.True(t, db.Migrator().HasTable(table))
	}
	assert.True(t, db.Migrator().HasColumn(&model.Payment{}, "businessDate"))
	assert.True(t, db.Migrator().HasColumn(&model.Customer{}, "createdAt"))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)

	// 再次迁移不报错
	require.NoError(t, Migrate(db))
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "data.db?_pragma=busy_timeout(5000)", sqliteDSN("data.db"))
	assert.Equal(t, "file:x.db?mode=rwc&_pragma=busy_timeout(5000)", sqliteDSN("file:x.db?mode=rwc"))
}

func TestGormLogger_LogModeReturnsCopy(t *testing.T) {
	base := NewGormLogger(zap.NewNop(), DefaultGormLoggerConfig())

	silent, ok := base.LogMode(gormlogger.Silent).(*GormLogger)
	require.True(t, ok)

	assert.Equal(t, gormlogger.Silent, silent.level)
	assert.Equal(t, gormlogger.Warn, base.level)
	assert.NotSame(t, base, silent)
}
