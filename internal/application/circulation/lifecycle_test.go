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
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/reservation"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/testutil"
)

// 一本书一个副本:A借 → B结算失败 → B预约 → A归还(副本保留给B) → B借到
func TestSingleCopyLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	x, copies := testutil.SeedBook(t, f.db, "9780000000041", "Livro X", 1)

	// A结算成功
	_, err := f.cart.Add(ctx, readerA, x.ID)
	require.NoError(t, err)
	resultA, err := f.checkout.Execute(ctx, readerA, f.dueIn(7))
	require.NoError(t, err)
	require.Equal(t, CheckoutComplete, resultA.Status)
	loanA := resultA.Loans[0]
	assert.Equal(t, bookcopy.StatusLoaned, f.copyStatus(t, copies[0].ID))

	// B结算:PARTIAL,失败原因NO_COPY
	_, err = f.cart.Add(ctx, readerB, x.ID)
	require.NoError(t, err)
	resultB, err := f.checkout.Execute(ctx, readerB, f.dueIn(7))
	require.NoError(t, err)
	assert.Equal(t, CheckoutPartial, resultB.Status)
	require.Len(t, resultB.Failures, 1)
	assert.Equal(t, x.ID, resultB.Failures[0].BookID)
	assert.Equal(t, circulation.ErrNoCopy.Reason, resultB.Failures[0].Reason)

	// B预约
	r, err := f.reserve.Execute(ctx, readerB, x.ID, f.dueIn(7))
	require.NoError(t, err)
	assert.Equal(t, copies[0].ID, r.BookCopyID)
	f.requireConsistent(t, copies)

	// A归还:副本保留给B
	f.clock.Advance(2 * 24 * time.Hour)
	receipt, err := f.ret.Execute(ctx, readerA, loanA.ID)
	require.NoError(t, err)
	assert.Equal(t, loan.StatusReturned, receipt.Loan.Status)
	assert.Equal(t, bookcopy.StatusReserved, f.copyStatus(t, copies[0].ID))
	f.requireConsistent(t, copies)

	// B借到保留给自己的副本,预约兑现
	loanB, err := f.allocate.Execute(ctx, readerB, x.ID, f.dueIn(7))
	require.NoError(t, err)
	assert.Equal(t, copies[0].ID, loanB.BookCopyID)
	assert.Equal(t, bookcopy.StatusLoaned, f.copyStatus(t, copies[0].ID))

	mine, err := f.query.MyReservations(ctx, readerB)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, reservation.StatusFulfilled, mine[0].Status)
	f.requireConsistent(t, copies)
}

// 预约者借到另一个副本时,预约同样兑现,原先绑定的副本不受影响
func TestAllocateFulfillsReservationOnOtherCopy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, copies := testutil.SeedBook(t, f.db, "9780000000042", "Livro Y", 2)

	loanA, err := f.allocate.Execute(ctx, readerA, b.ID, f.dueIn(7))
	require.NoError(t, err)
	loanB, err := f.allocate.Execute(ctx, readerB, b.ID, f.dueIn(7))
	require.NoError(t, err)

	r, err := f.reserve.Execute(ctx, readerC, b.ID, f.dueIn(7))
	require.NoError(t, err)
	require.Equal(t, loanA.BookCopyID, r.BookCopyID)

	// B归还的副本没人预约,回到在架,C直接借走
	_, err = f.ret.Execute(ctx, readerB, loanB.ID)
	require.NoError(t, err)
	loanC, err := f.allocate.Execute(ctx, readerC, b.ID, f.dueIn(7))
	require.NoError(t, err)
	assert.Equal(t, loanB.BookCopyID, loanC.BookCopyID)

	active, err := f.reservations.FindActiveByCopy(ctx, loanA.BookCopyID)
	require.NoError(t, err)
	assert.Nil(t, active)

	// A归还时已没有等待的预约
	receipt, err := f.ret.Execute(ctx, readerA, loanA.ID)
	require.NoError(t, err)
	assert.Equal(t, bookcopy.StatusAvailable, receipt.CopyStatus)
	f.requireConsistent(t, copies)
}

func TestRenew(t *testing.T) {
	policy := DefaultPolicy()
	policy.MaxRenewals = 1
	policy.RenewalPeriod = 5 * 24 * time.Hour
	f := newFixtureWithPolicy(t, policy)
	ctx := context.Background()
	b, _ := testutil.SeedBook(t, f.db, "9780000000043", "Livro Z", 1)

	l, err := f.allocate.Execute(ctx, readerA, b.ID, f.dueIn(7))
	require.NoError(t, err)

	_, err = f.renew.Execute(ctx, readerB, l.ID)
	assert.ErrorIs(t, err, loan.ErrNotBorrower)

	renewed, err := f.renew.Execute(ctx, readerA, l.ID)
	require.NoError(t, err)
	assert.True(t, renewed.DueAt.Equal(f.dueIn(12)))
	assert.Equal(t, 1, renewed.Renewals)

	_, err = f.renew.Execute(ctx, readerA, l.ID)
	assert.ErrorIs(t, err, loan.ErrRenewalLimitReached)

	_, err = f.renew.Execute(ctx, readerA, 9999)
	assert.ErrorIs(t, err, loan.ErrLoanNotFound)
}

func TestRenewBlockedByReservation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, _ := testutil.SeedBook(t, f.db, "9780000000044", "Livro W", 1)

	l, err := f.allocate.Execute(ctx, readerA, b.ID, f.dueIn(7))
	require.NoError(t, err)
	_, err = f.reserve.Execute(ctx, readerB, b.ID, f.dueIn(7))
	require.NoError(t, err)

	_, err = f.renew.Execute(ctx, readerA, l.ID)
	assert.ErrorIs(t, err, loan.ErrRenewalBlocked)

	unchanged, err := f.loans.FindByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Zero(t, unchanged.Renewals)

	_, err = f.ret.Execute(ctx, readerA, l.ID)
	require.NoError(t, err)
	_, err = f.renew.Execute(ctx, readerA, l.ID)
	assert.ErrorIs(t, err, loan.ErrAlreadyReturned)
}

func TestExpireReservations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	held, heldCopies := testutil.SeedBook(t, f.db, "9780000000045", "Livro V", 1)
	waiting, waitingCopies := testutil.SeedBook(t, f.db, "9780000000046", "Livro U", 1)

	// held:归还后保留给B;waiting:副本仍在A手里
	loanHeld, err := f.allocate.Execute(ctx, readerA, held.ID, f.dueIn(7))
	require.NoError(t, err)
	_, err = f.allocate.Execute(ctx, readerA, waiting.ID, f.dueIn(30))
	require.NoError(t, err)
	_, err = f.reserve.Execute(ctx, readerB, held.ID, f.dueIn(3))
	require.NoError(t, err)
	_, err = f.reserve.Execute(ctx, readerB, waiting.ID, f.dueIn(3))
	require.NoError(t, err)
	_, err = f.ret.Execute(ctx, readerA, loanHeld.ID)
	require.NoError(t, err)
	require.Equal(t, bookcopy.StatusReserved, f.copyStatus(t, heldCopies[0].ID))

	// 未到期时什么都不做
	n, err := f.expire.Execute(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	f.clock.Advance(4 * 24 * time.Hour)
	n, err = f.expire.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Equal(t, bookcopy.StatusAvailable, f.copyStatus(t, heldCopies[0].ID))
	assert.Equal(t, bookcopy.StatusLoaned, f.copyStatus(t, waitingCopies[0].ID))

	mine, err := f.query.MyReservations(ctx, readerB)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	for _, r := range mine {
		assert.Equal(t, reservation.StatusExpired, r.Status)
	}

	// 过期后其他读者可以直接借
	_, err = f.allocate.Execute(ctx, readerC, held.ID, f.dueIn(7))
	require.NoError(t, err)
	f.requireConsistent(t, append(heldCopies, waitingCopies...))
}

func TestMyLoansOverdue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b1, _ := testutil.SeedBook(t, f.db, "9780000000047", "Livro T", 1)
	b2, _ := testutil.SeedBook(t, f.db, "9780000000048", "Livro S", 1)

	_, err := f.allocate.Execute(ctx, readerA, b1.ID, f.dueIn(2))
	require.NoError(t, err)
	f.clock.Advance(time.Hour)
	_, err = f.allocate.Execute(ctx, readerA, b2.ID, f.dueIn(10))
	require.NoError(t, err)

	f.clock.Advance(3 * 24 * time.Hour)
	views, err := f.query.MyLoans(ctx, readerA)
	require.NoError(t, err)
	require.Len(t, views, 2)

	// 借出时间倒序
	assert.Equal(t, "Livro S", views[0].BookTitle)
	assert.False(t, views[0].Overdue)
	assert.Equal(t, "Livro T", views[1].BookTitle)
	assert.True(t, views[1].Overdue)

	other, err := f.query.MyLoans(ctx, readerB)
	require.NoError(t, err)
	assert.Empty(t, other)

	_, err = f.query.MyLoans(ctx, circulation.Permission{})
	assert.ErrorIs(t, err, circulation.ErrUnauthenticated)
}
