package circulation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/bookcopy"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/circulation"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/loan"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/testutil"
)

func TestReturnWithoutReservationFreesCopy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, copies := testutil.SeedBook(t, f.db, "9780000000031", "Quincas Borba", 1)

	l, err := f.allocate.Execute(ctx, readerA, b.ID, f.dueIn(7))
	require.NoError(t, err)

	f.clock.Advance(3*24*time.Hour + 5*time.Hour)
	receipt, err := f.ret.Execute(ctx, readerA, l.ID)
	require.NoError(t, err)

	assert.Equal(t, loan.StatusReturned, receipt.Loan.Status)
	require.NotNil(t, receipt.Loan.ReturnedAt)
	assert.True(t, receipt.Loan.ReturnedAt.Equal(f.clock.Now()))
	assert.Equal(t, 3, receipt.DurationDays)
	assert.Equal(t, bookcopy.StatusAvailable, receipt.CopyStatus)
	assert.Zero(t, receipt.ReservationID)
	assert.Equal(t, "Quincas Borba", receipt.Loan.BookTitle)
	assert.Equal(t, bookcopy.StatusAvailable, f.copyStatus(t, copies[0].ID))
	assert.Empty(t, f.notifier.Events())
}

func TestReturnWithReservationHoldsCopy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, copies := testutil.SeedBook(t, f.db, "9780000000032", "Lucíola", 1)

	l, err := f.allocate.Execute(ctx, readerA, b.ID, f.dueIn(7))
	require.NoError(t, err)
	r, err := f.reserve.Execute(ctx, readerB, b.ID, f.dueIn(10))
	require.NoError(t, err)

	receipt, err := f.ret.Execute(ctx, readerA, l.ID)
	require.NoError(t, err)
	assert.Equal(t, bookcopy.StatusReserved, receipt.CopyStatus)
	assert.Equal(t, r.ID, receipt.ReservationID)
	assert.Equal(t, bookcopy.StatusReserved, f.copyStatus(t, copies[0].ID))

	events := f.notifier.Events()
	require.Len(t, events, 1)
	assert.Equal(t, r.ID, events[0].ReservationID)
	assert.Equal(t, readerB.UserID, events[0].UserID)
	assert.Equal(t, copies[0].ID, events[0].BookCopyID)
	assert.Equal(t, b.ID, events[0].BookID)
	assert.True(t, events[0].HoldUntil.Equal(f.dueIn(10)))

	// 其他读者借不到被保留的副本
	_, err = f.allocate.Execute(ctx, readerC, b.ID, f.dueIn(7))
	assert.ErrorIs(t, err, circulation.ErrNoCopy)

	f.requireConsistent(t, copies)
}

func TestReturnRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, _ := testutil.SeedBook(t, f.db, "9780000000033", "Helena", 1)

	l, err := f.allocate.Execute(ctx, readerA, b.ID, f.dueIn(7))
	require.NoError(t, err)

	_, err = f.ret.Execute(ctx, readerA, 9999)
	assert.ErrorIs(t, err, loan.ErrLoanNotFound)

	_, err = f.ret.Execute(ctx, readerB, l.ID)
	assert.ErrorIs(t, err, loan.ErrNotBorrower)

	_, err = f.ret.Execute(ctx, readerA, l.ID)
	require.NoError(t, err)

	_, err = f.ret.Execute(ctx, readerA, l.ID)
	assert.ErrorIs(t, err, loan.ErrAlreadyReturned)
}
