// Package dbtest 为测试提供迁移好的 SQLite 内存数据库。
package dbtest

import (
	"context"
	"database/sql"
	"testing"

	"yatube/internal/database"

	"github.com/stretchr/testify/require"
)

// New 返回一个独立的内存数据库，测试结束时自动关闭
func New(t testing.TB) *sql.DB {
	t.Helper()
	ctx := context.Background()

	db, err := database.OpenDSN(ctx, database.DriverSQLite, "file::memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(ctx, db, database.DriverSQLite))
	return db
}
