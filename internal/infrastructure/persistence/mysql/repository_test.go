package mysql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/bookcopy"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/cart"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/loan"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/reservation"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/infrastructure/persistence/mysql"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/testutil"
)

var t0 = time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)

func TestFindAllocatable(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	copies := mysql.NewBookCopyRepository(db)
	loans := mysql.NewLoanRepository(db)
	reservations := mysql.NewReservationRepository(db)
	b, cs := testutil.SeedBook(t, db, "9780000000071", "Repo", 3)

	// 空书目
	empty, _ := testutil.SeedBook(t, db, "9780000000072", "Vazio", 0)
	got, err := copies.FindAllocatable(ctx, empty.ID, 1, nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	// 副本1借出给用户1
	require.NoError(t, copies.SetStatus(ctx, cs[0].ID, bookcopy.StatusLoaned))
	l, err := loan.NewLoan(1, cs[0].ID, t0, t0.Add(48*time.Hour))
	require.NoError(t, err)
	require.NoError(t, loans.Create(ctx, l))

	// 副本2为用户2保留
	require.NoError(t, copies.SetStatus(ctx, cs[1].ID, bookcopy.StatusReserved))
	r, err := reservation.NewReservation(2, cs[1].ID, t0, t0.Add(48*time.Hour))
	require.NoError(t, err)
	require.NoError(t, reservations.Create(ctx, r))

	// 普通读者只能拿到副本3
	got, err = copies.FindAllocatable(ctx, b.ID, 3, nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, cs[2].ID, got.ID)

	// 预约者优先拿到保留给自己的副本
	got, err = copies.FindAllocatable(ctx, b.ID, 2, nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, cs[1].ID, got.ID)

	// 跳过已尝试的候选
	got, err = copies.FindAllocatable(ctx, b.ID, 2, []uint{cs[1].ID})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, cs[2].ID, got.ID)

	got, err = copies.FindAllocatable(ctx, b.ID, 3, []uint{cs[2].ID})
	require.NoError(t, err)
	assert.Nil(t, got)

	n, err := copies.CountAllocatable(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// 副本1有ACTIVE借阅且没人预约,可以预约
	reservable, err := copies.FindReservable(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, reservable)
	assert.Equal(t, cs[0].ID, reservable.ID)
}

func TestHistoricalReservationDoesNotBlock(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	copies := mysql.NewBookCopyRepository(db)
	reservations := mysql.NewReservationRepository(db)
	b, cs := testutil.SeedBook(t, db, "9780000000073", "Historico", 1)

	r, err := reservation.NewReservation(5, cs[0].ID, t0, t0.Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, reservations.Create(ctx, r))
	require.NoError(t, reservations.SetStatus(ctx, r.ID, reservation.StatusExpired))

	got, err := copies.FindAllocatable(ctx, b.ID, 9, nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, cs[0].ID, got.ID)

	// 终态预约不能再次变更
	assert.ErrorIs(t, reservations.SetStatus(ctx, r.ID, reservation.StatusFulfilled), reservation.ErrReservationNotFound)

	// active_copy_id已释放,同一副本可以再次预约
	r2, err := reservation.NewReservation(6, cs[0].ID, t0, t0.Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, reservations.Create(ctx, r2))
	r3, err := reservation.NewReservation(7, cs[0].ID, t0, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.ErrorIs(t, reservations.Create(ctx, r3), reservation.ErrCopyAlreadyReserved)
}

func TestCompareAndSetStatus(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	copies := mysql.NewBookCopyRepository(db)
	_, cs := testutil.SeedBook(t, db, "9780000000074", "CAS", 1)
	c := cs[0]

	require.NoError(t, copies.CompareAndSetStatus(ctx, c.ID, c.Version, bookcopy.StatusLoaned))

	// 旧版本号再次更新失败
	err := copies.CompareAndSetStatus(ctx, c.ID, c.Version, bookcopy.StatusAvailable)
	assert.ErrorIs(t, err, bookcopy.ErrVersionConflict)

	updated, err := copies.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, bookcopy.StatusLoaned, updated.Status)
	assert.Equal(t, c.Version+1, updated.Version)
}

func TestLoanUniqueActivePerCopy(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	loans := mysql.NewLoanRepository(db)
	b, cs := testutil.SeedBook(t, db, "9780000000075", "Unico", 1)

	first, err := loan.NewLoan(1, cs[0].ID, t0, t0.Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, loans.Create(ctx, first))

	second, err := loan.NewLoan(2, cs[0].ID, t0, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.ErrorIs(t, loans.Create(ctx, second), loan.ErrCopyAlreadyLoaned)

	require.NoError(t, first.MarkReturned(t0.Add(time.Minute)))
	require.NoError(t, loans.MarkReturned(ctx, first))
	assert.ErrorIs(t, loans.MarkReturned(ctx, first), loan.ErrAlreadyReturned)

	// 归还后可以再借
	require.NoError(t, loans.Create(ctx, second))

	found, err := loans.FindByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, found.BookID)
	assert.Equal(t, "Unico", found.BookTitle)
	assert.Equal(t, 1, found.CopyNumber)

	n, err := loans.CountByCopy(ctx, cs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestTransactionRollback(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	tx := mysql.NewTxManager(db)
	carts := mysql.NewCartRepository(db)
	b, _ := testutil.SeedBook(t, db, "9780000000076", "Rollback", 0)

	boom := errors.New("boom")
	err := tx.Transaction(ctx, func(txCtx context.Context) error {
		if err := carts.Add(txCtx, &cart.Item{UserID: 1, BookID: b.ID, CreatedAt: t0}); err != nil {
			return err
		}
		// 嵌套调用复用外层事务
		return tx.Transaction(txCtx, func(context.Context) error { return boom })
	})
	assert.ErrorIs(t, err, boom)

	items, err := carts.ListByUser(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, items)
}
