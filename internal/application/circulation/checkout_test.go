package circulation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/bookcopy"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/cart"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/loan"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/testutil"
	apperrors "github.com/Pedrooaj/biblioteca-unifor-backend/pkg/errors"
)

// 三本书中一本没有可借副本:PARTIAL,两条借阅一条失败,书篮清空
func TestCheckoutPartial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bookA, copiesA := testutil.SeedBook(t, f.db, "9780000000011", "Livro A", 1)
	bookB, _ := testutil.SeedBook(t, f.db, "9780000000012", "Livro B", 1)
	bookC, _ := testutil.SeedBook(t, f.db, "9780000000013", "Livro C", 2)

	// 另一位读者先借走A唯一的副本
	_, err := f.allocate.Execute(ctx, readerB, bookA.ID, f.dueIn(7))
	require.NoError(t, err)

	for _, id := range []uint{bookA.ID, bookB.ID, bookC.ID} {
		_, err := f.cart.Add(ctx, readerA, id)
		require.NoError(t, err)
	}

	result, err := f.checkout.Execute(ctx, readerA, f.dueIn(7))
	require.NoError(t, err)

	assert.Equal(t, CheckoutPartial, result.Status)
	assert.Equal(t, 3, result.TotalItems)
	require.Len(t, result.Loans, 2)
	assert.ElementsMatch(t, []uint{bookB.ID, bookC.ID}, []uint{result.Loans[0].BookID, result.Loans[1].BookID})

	require.Len(t, result.Failures, 1)
	failure := result.Failures[0]
	assert.Equal(t, bookA.ID, failure.BookID)
	assert.Equal(t, "Livro A", failure.Title)
	assert.Equal(t, apperrors.ReasonNoCopy, failure.Reason)
	assert.Equal(t, []bookcopy.Snapshot{
		{CopyID: copiesA[0].ID, CopyNumber: 1, Status: bookcopy.StatusLoaned},
	}, failure.Copies)

	items, err := f.cart.List(ctx, readerA)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCheckoutComplete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b1, _ := testutil.SeedBook(t, f.db, "9780000000014", "Livro D", 1)
	b2, _ := testutil.SeedBook(t, f.db, "9780000000015", "Livro E", 1)

	_, err := f.cart.Add(ctx, readerA, b1.ID)
	require.NoError(t, err)
	_, err = f.cart.Add(ctx, readerA, b2.ID)
	require.NoError(t, err)

	result, err := f.checkout.Execute(ctx, readerA, f.dueIn(14))
	require.NoError(t, err)
	assert.Equal(t, CheckoutComplete, result.Status)
	assert.Len(t, result.Loans, 2)
	assert.Empty(t, result.Failures)
}

func TestCheckoutLoanLimitIsPerItem(t *testing.T) {
	policy := DefaultPolicy()
	policy.MaxActiveLoans = 1
	f := newFixtureWithPolicy(t, policy)
	ctx := context.Background()
	b1, _ := testutil.SeedBook(t, f.db, "9780000000016", "Livro F", 1)
	b2, _ := testutil.SeedBook(t, f.db, "9780000000017", "Livro G", 1)

	_, err := f.cart.Add(ctx, readerA, b1.ID)
	require.NoError(t, err)
	_, err = f.cart.Add(ctx, readerA, b2.ID)
	require.NoError(t, err)

	result, err := f.checkout.Execute(ctx, readerA, f.dueIn(7))
	require.NoError(t, err)
	assert.Equal(t, CheckoutPartial, result.Status)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, apperrors.ReasonLoanLimitReached, result.Failures[0].Reason)
	assert.Empty(t, result.Failures[0].Copies)
}

func TestCheckoutRejectsBeforeAllocating(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.checkout.Execute(ctx, readerA, f.dueIn(7))
	assert.ErrorIs(t, err, cart.ErrEmptyCart)

	b, copies := testutil.SeedBook(t, f.db, "9780000000018", "Livro H", 1)
	_, err = f.cart.Add(ctx, readerA, b.ID)
	require.NoError(t, err)

	_, err = f.checkout.Execute(ctx, readerA, f.clock.Now())
	assert.ErrorIs(t, err, loan.ErrInvalidDueDate)

	// 到期日非法时书篮保持不变
	items, err := f.cart.List(ctx, readerA)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, bookcopy.StatusAvailable, f.copyStatus(t, copies[0].ID))
}
