package circulation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/book"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/bookcopy"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/cart"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/circulation"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/loan"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/reservation"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/infrastructure/persistence/mysql"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/testutil"
	"github.com/Pedrooaj/biblioteca-unifor-backend/pkg/clock"
)

var (
	readerA = circulation.Permission{UserID: 1, Role: circulation.RoleReader}
	readerB = circulation.Permission{UserID: 2, Role: circulation.RoleReader}
	readerC = circulation.Permission{UserID: 3, Role: circulation.RoleReader}
)

// recordingNotifier 记录收到的通知
type recordingNotifier struct {
	mu     sync.Mutex
	events []circulation.ReservationReadyEvent
}

func (n *recordingNotifier) ReservationReady(_ context.Context, e circulation.ReservationReadyEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

func (n *recordingNotifier) Events() []circulation.ReservationReadyEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]circulation.ReservationReadyEvent(nil), n.events...)
}

type fixture struct {
	db       *gorm.DB
	clock    *clock.Manual
	notifier *recordingNotifier

	books        book.Repository
	copies       bookcopy.Repository
	loans        loan.Repository
	reservations reservation.Repository
	carts        cart.Repository
	tx           *mysql.TxManager

	resolver *Resolver
	allocate *AllocateUseCase
	checkout *CheckoutUseCase
	reserve  *ReserveUseCase
	ret      *ReturnLoanUseCase
	renew    *RenewLoanUseCase
	cart     *CartUseCase
	query    *QueryUseCase
	expire   *ExpireReservationsUseCase
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithPolicy(t, DefaultPolicy())
}

func newFixtureWithPolicy(t *testing.T, policy Policy) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)

	f := &fixture{
		db:           db,
		clock:        clock.NewManual(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)),
		notifier:     &recordingNotifier{},
		books:        mysql.NewBookRepository(db),
		copies:       mysql.NewBookCopyRepository(db),
		loans:        mysql.NewLoanRepository(db),
		reservations: mysql.NewReservationRepository(db),
		carts:        mysql.NewCartRepository(db),
		tx:           mysql.NewTxManager(db),
	}
	f.resolver = NewResolver(f.copies)
	f.allocate = NewAllocateUseCase(f.books, f.copies, f.loans, f.reservations, f.resolver, f.tx, f.clock, policy)
	f.checkout = NewCheckoutUseCase(f.carts, f.copies, f.allocate, f.clock)
	f.reserve = NewReserveUseCase(f.books, f.copies, f.reservations, f.resolver, f.tx, f.clock, policy)
	f.ret = NewReturnLoanUseCase(f.copies, f.loans, f.reservations, f.tx, f.notifier, f.clock)
	f.renew = NewRenewLoanUseCase(f.loans, f.reservations, f.tx, policy)
	f.cart = NewCartUseCase(f.carts, f.books, f.clock)
	f.query = NewQueryUseCase(f.loans, f.reservations, f.clock)
	f.expire = NewExpireReservationsUseCase(f.copies, f.loans, f.reservations, f.tx, f.clock, policy)
	return f
}

func (f *fixture) dueIn(days int) time.Time {
	return f.clock.Now().Add(time.Duration(days) * 24 * time.Hour)
}

func (f *fixture) copyStatus(t *testing.T, id uint) bookcopy.Status {
	t.Helper()
	c, err := f.copies.FindByID(context.Background(), id)
	require.NoError(t, err)
	return c.Status
}

func (f *fixture) activeLoansOn(t *testing.T, copyID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&mysql.LoanModel{}).
		Where("book_copy_id = ? AND status = ?", copyID, string(loan.StatusActive)).
		Count(&n).Error)
	return n
}

// requireConsistent 副本状态必须等于由借阅/预约记录推导出的状态
func (f *fixture) requireConsistent(t *testing.T, copies []*bookcopy.BookCopy) {
	t.Helper()
	ctx := context.Background()
	for _, c := range copies {
		stored := f.copyStatus(t, c.ID)

		loaned, err := f.loans.HasActiveForCopy(ctx, c.ID)
		require.NoError(t, err)
		res, err := f.reservations.FindActiveByCopy(ctx, c.ID)
		require.NoError(t, err)

		switch {
		case loaned:
			require.Equal(t, bookcopy.StatusLoaned, stored, "copy %d", c.CopyNumber)
		case stored == bookcopy.StatusReserved:
			require.NotNil(t, res, "copy %d is RESERVED without an active reservation", c.CopyNumber)
		default:
			require.Equal(t, bookcopy.StatusAvailable, stored, "copy %d", c.CopyNumber)
		}
	}
}
