package circulation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/book"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/cart"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/testutil"
)

func TestCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b1, _ := testutil.SeedBook(t, f.db, "9780000000051", "Primeiro", 1)
	b2, _ := testutil.SeedBook(t, f.db, "9780000000052", "Segundo", 0)

	item, err := f.cart.Add(ctx, readerA, b1.ID)
	require.NoError(t, err)
	assert.Equal(t, "Primeiro", item.BookTitle)

	// 没有副本的书也可以加入书篮,结算时才判断
	_, err = f.cart.Add(ctx, readerA, b2.ID)
	require.NoError(t, err)

	_, err = f.cart.Add(ctx, readerA, b1.ID)
	assert.ErrorIs(t, err, cart.ErrDuplicateItem)

	_, err = f.cart.Add(ctx, readerA, 9999)
	assert.ErrorIs(t, err, book.ErrBookNotFound)

	// 不同读者的书篮互不影响
	_, err = f.cart.Add(ctx, readerB, b1.ID)
	require.NoError(t, err)

	items, err := f.cart.List(ctx, readerA)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, b1.ID, items[0].BookID)
	assert.Equal(t, b2.ID, items[1].BookID)

	require.NoError(t, f.cart.Remove(ctx, readerA, b2.ID))
	assert.ErrorIs(t, f.cart.Remove(ctx, readerA, b2.ID), cart.ErrItemNotFound)

	n, err := f.cart.Clear(ctx, readerA)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	items, err = f.cart.List(ctx, readerB)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
