package circulation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/book"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/bookcopy"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/reservation"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/testutil"
)

func TestReserveGate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, copies := testutil.SeedBook(t, f.db, "9780000000021", "Grande Sertao", 2)

	// 有可借副本时不能预约
	_, err := f.reserve.Execute(ctx, readerC, b.ID, f.dueIn(7))
	assert.ErrorIs(t, err, reservation.ErrCopiesAvailable)

	_, err = f.allocate.Execute(ctx, readerA, b.ID, f.dueIn(7))
	require.NoError(t, err)
	_, err = f.reserve.Execute(ctx, readerC, b.ID, f.dueIn(7))
	assert.ErrorIs(t, err, reservation.ErrCopiesAvailable)

	_, err = f.allocate.Execute(ctx, readerB, b.ID, f.dueIn(7))
	require.NoError(t, err)

	// 全部借出:绑定到编号最小的已借出副本,副本仍为LOANED
	r, err := f.reserve.Execute(ctx, readerC, b.ID, f.dueIn(7))
	require.NoError(t, err)
	assert.Equal(t, reservation.StatusActive, r.Status)
	assert.Equal(t, copies[0].ID, r.BookCopyID)
	assert.Equal(t, 1, r.CopyNumber)
	assert.Equal(t, "Grande Sertao", r.BookTitle)
	assert.Equal(t, bookcopy.StatusLoaned, f.copyStatus(t, copies[0].ID))

	// 同一读者不能重复预约
	_, err = f.reserve.Execute(ctx, readerC, b.ID, f.dueIn(7))
	assert.ErrorIs(t, err, reservation.ErrDuplicateReservation)

	// 另一位读者绑定到下一个副本
	other := readerA
	other.UserID = 50
	r2, err := f.reserve.Execute(ctx, other, b.ID, f.dueIn(7))
	require.NoError(t, err)
	assert.Equal(t, copies[1].ID, r2.BookCopyID)

	// 所有借出的副本都已被预约
	other.UserID = 51
	_, err = f.reserve.Execute(ctx, other, b.ID, f.dueIn(7))
	assert.ErrorIs(t, err, reservation.ErrNoCopyToReserve)

	f.requireConsistent(t, copies)
}

func TestReserveValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, copies := testutil.SeedBook(t, f.db, "9780000000022", "A Moreninha", 1)
	_, err := f.allocate.Execute(ctx, readerA, b.ID, f.dueIn(7))
	require.NoError(t, err)

	_, err = f.reserve.Execute(ctx, readerB, 9999, f.dueIn(7))
	assert.ErrorIs(t, err, book.ErrBookNotFound)

	for _, due := range []int{0, -2} {
		_, err = f.reserve.Execute(ctx, readerB, b.ID, f.dueIn(due))
		assert.ErrorIs(t, err, reservation.ErrInvalidDueDate)
	}

	active, err := f.reservations.FindActiveByCopy(ctx, copies[0].ID)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestReserveBookWithoutCopies(t *testing.T) {
	f := newFixture(t)
	b, _ := testutil.SeedBook(t, f.db, "9780000000023", "Senhora", 0)

	_, err := f.reserve.Execute(context.Background(), readerA, b.ID, f.dueIn(7))
	assert.ErrorIs(t, err, reservation.ErrNoCopyToReserve)
}
