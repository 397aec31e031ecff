package circulation

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/book"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/bookcopy"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/circulation"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/reservation"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/infrastructure/persistence/mysql"
	"github.com/Pedrooaj/biblioteca-unifor-backend/pkg/clock"
	apperrors "github.com/Pedrooaj/biblioteca-unifor-backend/pkg/errors"
	"github.com/Pedrooaj/biblioteca-unifor-backend/pkg/metrics"
	"github.com/Pedrooaj/biblioteca-unifor-backend/pkg/tracing"
)

// ReserveUseCase 预约(没有可借副本时的兜底)
//
// 预约绑定到一个"已借出、有ACTIVE借阅、还没人预约"的副本上,
// 副本状态保持LOANED,等归还时由ReturnLoanUseCase转为RESERVED。
type ReserveUseCase struct {
	bookRepo        book.Repository
	copyRepo        bookcopy.Repository
	reservationRepo reservation.Repository
	resolver        *Resolver
	txManager       *mysql.TxManager
	clock           clock.Clock
	policy          Policy
}

// NewReserveUseCase 创建预约用例
func NewReserveUseCase(
	bookRepo book.Repository,
	copyRepo bookcopy.Repository,
	reservationRepo reservation.Repository,
	resolver *Resolver,
	txManager *mysql.TxManager,
	clk clock.Clock,
	policy Policy,
) *ReserveUseCase {
	return &ReserveUseCase{
		bookRepo:        bookRepo,
		copyRepo:        copyRepo,
		reservationRepo: reservationRepo,
		resolver:        resolver,
		txManager:       txManager,
		clock:           clk,
		policy:          policy.normalized(),
	}
}

// Execute 预约bookID
//
// 按顺序检查:NOT_FOUND → INVALID_DUE_DATE → DUPLICATE_RESERVATION → COPIES_AVAILABLE → NO_COPY_TO_RESERVE
func (uc *ReserveUseCase) Execute(ctx context.Context, perm circulation.Permission, bookID uint, dueAt time.Time) (r *reservation.Reservation, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "Reserve")
	span.SetAttributes(attribute.Int64("book_id", int64(bookID)))
	defer func() { tracing.EndSpan(span, err) }()

	if !perm.Valid() {
		return nil, circulation.ErrUnauthenticated
	}
	b, err := uc.bookRepo.FindByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !dueAt.After(uc.clock.Now()) {
		return nil, reservation.ErrInvalidDueDate
	}

	for attempt := 0; attempt < uc.policy.AllocationRetries; attempt++ {
		r, err = uc.reserveOnce(ctx, perm.UserID, bookID, dueAt)
		// 两个读者同时预约同一副本:唯一索引拒绝后一个,重新挑选
		if !errors.Is(err, apperrors.ErrConcurrentUpdate) {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	r.BookID = b.ID
	r.BookTitle = b.Title
	r.BookAuthor = b.Author
	metrics.IncCounter(metrics.ReservationsCreatedTotal)
	return r, nil
}

func (uc *ReserveUseCase) reserveOnce(ctx context.Context, userID, bookID uint, dueAt time.Time) (*reservation.Reservation, error) {
	var created *reservation.Reservation
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		existing, err := uc.reservationRepo.FindActiveByUserAndBook(txCtx, userID, bookID)
		if err != nil {
			return err
		}
		if existing != nil {
			return reservation.ErrDuplicateReservation
		}

		free, err := uc.resolver.HasFreeCopy(txCtx, bookID)
		if err != nil {
			return err
		}
		if free {
			return reservation.ErrCopiesAvailable
		}

		c, err := uc.copyRepo.FindReservable(txCtx, bookID)
		if err != nil {
			return err
		}
		if c == nil {
			return reservation.ErrNoCopyToReserve
		}

		r, err := reservation.NewReservation(userID, c.ID, uc.clock.Now(), dueAt)
		if err != nil {
			return err
		}
		if err := uc.reservationRepo.Create(txCtx, r); err != nil {
			return err
		}
		r.CopyNumber = c.CopyNumber
		created = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
