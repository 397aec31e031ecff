package circulation

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/bookcopy"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/circulation"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/loan"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/reservation"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/infrastructure/persistence/mysql"
	"github.com/Pedrooaj/biblioteca-unifor-backend/pkg/clock"
	"github.com/Pedrooaj/biblioteca-unifor-backend/pkg/metrics"
	"github.com/Pedrooaj/biblioteca-unifor-backend/pkg/tracing"
)

// LoanReceipt 归还回执
type LoanReceipt struct {
	Loan          *loan.Loan
	CopyStatus    bookcopy.Status // 归还后副本的状态(AVAILABLE或RESERVED)
	DurationDays  int             // 借阅天数(整天,向下取整)
	ReservationID uint            // 副本被保留给的预约,0表示没有
}

// ReturnLoanUseCase 归还
//
// 一个事务内完成:借阅 → RETURNED,副本 → RESERVED(有ACTIVE预约)或AVAILABLE。
// 事务提交后,如果副本被保留,触发预约到书通知(失败不影响归还)。
type ReturnLoanUseCase struct {
	copyRepo        bookcopy.Repository
	loanRepo        loan.Repository
	reservationRepo reservation.Repository
	txManager       *mysql.TxManager
	notifier        circulation.Notifier
	clock           clock.Clock
}

// NewReturnLoanUseCase 创建归还用例
func NewReturnLoanUseCase(
	copyRepo bookcopy.Repository,
	loanRepo loan.Repository,
	reservationRepo reservation.Repository,
	txManager *mysql.TxManager,
	notifier circulation.Notifier,
	clk clock.Clock,
) *ReturnLoanUseCase {
	if notifier == nil {
		notifier = circulation.NopNotifier{}
	}
	return &ReturnLoanUseCase{
		copyRepo:        copyRepo,
		loanRepo:        loanRepo,
		reservationRepo: reservationRepo,
		txManager:       txManager,
		notifier:        notifier,
		clock:           clk,
	}
}

// Execute 归还loanID
//
// 失败:NOT_FOUND、FORBIDDEN(不是借阅人)、ALREADY_RETURNED
func (uc *ReturnLoanUseCase) Execute(ctx context.Context, perm circulation.Permission, loanID uint) (receipt *LoanReceipt, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "ReturnLoan")
	span.SetAttributes(attribute.Int64("loan_id", int64(loanID)))
	defer func() { tracing.EndSpan(span, err) }()

	if !perm.Valid() {
		return nil, circulation.ErrUnauthenticated
	}

	var (
		returned *loan.Loan
		held     *reservation.Reservation
		status   bookcopy.Status
	)
	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 锁顺序:借阅 → 副本,与分配用例(副本 → 借阅插入)不会形成环
		l, err := uc.loanRepo.LockByID(txCtx, loanID)
		if err != nil {
			return err
		}
		if !l.BelongsTo(perm.UserID) {
			return loan.ErrNotBorrower
		}
		if !l.IsActive() {
			return loan.ErrAlreadyReturned
		}

		c, err := uc.copyRepo.LockByID(txCtx, l.BookCopyID)
		if err != nil {
			return err
		}

		if err := l.MarkReturned(uc.clock.Now()); err != nil {
			return err
		}
		if err := uc.loanRepo.MarkReturned(txCtx, l); err != nil {
			return err
		}

		held, err = uc.reservationRepo.FindActiveByCopy(txCtx, c.ID)
		if err != nil {
			return err
		}
		status = bookcopy.StatusAfterReturn(held != nil)
		if err := uc.copyRepo.SetStatus(txCtx, c.ID, status); err != nil {
			return err
		}
		returned = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 重新读取以带上书名和副本编号
	if full, findErr := uc.loanRepo.FindByID(ctx, loanID); findErr == nil {
		returned = full
	} else {
		log.Warn().Err(findErr).Uint("loan_id", loanID).Msg("读取归还后的借阅失败")
	}

	receipt = &LoanReceipt{
		Loan:         returned,
		CopyStatus:   status,
		DurationDays: returned.DurationDays(uc.clock.Now()),
	}
	metrics.IncCounterVec(metrics.ReturnsTotal, map[string]string{"outcome": string(status)})

	if held != nil {
		receipt.ReservationID = held.ID
		uc.notifier.ReservationReady(ctx, circulation.ReservationReadyEvent{
			ReservationID: held.ID,
			UserID:        held.UserID,
			BookID:        returned.BookID,
			BookTitle:     returned.BookTitle,
			BookCopyID:    returned.BookCopyID,
			CopyNumber:    returned.CopyNumber,
			HoldUntil:     held.DueAt,
			OccurredAt:    timeOrNow(returned.ReturnedAt, uc.clock),
		})
	}
	return receipt, nil
}

func timeOrNow(t *time.Time, clk clock.Clock) time.Time {
	if t != nil {
		return *t
	}
	return clk.Now()
}
