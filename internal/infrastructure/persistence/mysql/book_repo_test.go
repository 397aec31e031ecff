package mysql_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/book"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/infrastructure/persistence/mysql"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/testutil"
)

func TestBookRepository(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	books := mysql.NewBookRepository(db)

	testutil.SeedBook(t, db, "9780000000201", "Dom Casmurro", 0)
	testutil.SeedBook(t, db, "9780000000202", "Capitaes da Areia", 0)
	seeded, _ := testutil.SeedBook(t, db, "9780000000203", "Memorias Postumas", 0)

	t.Run("按ID读取", func(t *testing.T) {
		found, err := books.FindByID(ctx, seeded.ID)
		require.NoError(t, err)
		assert.Equal(t, "Memorias Postumas", found.Title)
		assert.Equal(t, "9780000000203", found.ISBN)
	})

	t.Run("不存在", func(t *testing.T) {
		_, err := books.FindByID(ctx, 9999)
		assert.ErrorIs(t, err, book.ErrBookNotFound)
	})

	t.Run("ISBN重复", func(t *testing.T) {
		dup, err := book.NewBook("978-0-00-000020-3", "Outra", "Outro", t0)
		require.NoError(t, err)
		assert.ErrorIs(t, books.Create(ctx, dup), book.ErrISBNDuplicate)
	})

	t.Run("按书名排序分页", func(t *testing.T) {
		list, total, err := books.List(ctx, book.ListParams{Page: 1, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, list, 2)
		assert.Equal(t, "Capitaes da Areia", list[0].Title)
		assert.Equal(t, "Dom Casmurro", list[1].Title)

		list, _, err = books.List(ctx, book.ListParams{Page: 2, PageSize: 2})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Memorias Postumas", list[0].Title)
	})

	t.Run("关键词", func(t *testing.T) {
		list, total, err := books.List(ctx, book.ListParams{Keyword: "Casmurro"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, list, 1)

		list, total, err = books.List(ctx, book.ListParams{Keyword: "nada"})
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, list)
	})
}
