// Package testutil 测试用的存储辅助函数
package testutil

import (
	"testing"

	"receivables/internal/infrastructure/database"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewSQLiteDB 每个测试独立的内存库，已完成建表
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.OpenWithDialector(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
