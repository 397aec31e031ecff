// Package testutil 提供测试用的数据库与数据构造工具
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/book"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/bookcopy"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/infrastructure/persistence/mysql"
)

// NewTestDB 创建迁移好的SQLite测试库
// 说明:
// 1. 使用临时文件而不是:memory:,连接重建后数据仍然存在
// 2. 单连接:事务天然串行,与生产环境的行锁语义一致(不会读到别人的未提交数据)
// 3. SQLite不支持FOR UPDATE,GORM的sqlite驱动会忽略锁子句
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "library.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), mysql.GormConfig(logger.Silent))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, mysql.AutoMigrate(db))
	return db
}

// SeedBook 插入一本图书及n个AVAILABLE副本(编号1..n)
func SeedBook(t *testing.T, db *gorm.DB, isbn, title string, copies int) (*book.Book, []*bookcopy.BookCopy) {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	b, err := book.NewBook(isbn, title, "Autor "+title, now)
	require.NoError(t, err)
	require.NoError(t, mysql.NewBookRepository(db).Create(ctx, b))

	copyRepo := mysql.NewBookCopyRepository(db)
	out := make([]*bookcopy.BookCopy, 0, copies)
	for i := 1; i <= copies; i++ {
		c, err := bookcopy.NewBookCopy(b.ID, i, bookcopy.ConditionGood, now)
		require.NoError(t, err)
		require.NoError(t, copyRepo.Create(ctx, c))
		out = append(out, c)
	}
	return b, out
}
