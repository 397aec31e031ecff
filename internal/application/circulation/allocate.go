package circulation

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/book"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/bookcopy"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/circulation"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/loan"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/reservation"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/infrastructure/persistence/mysql"
	"github.com/Pedrooaj/biblioteca-unifor-backend/pkg/clock"
	apperrors "github.com/Pedrooaj/biblioteca-unifor-backend/pkg/errors"
	"github.com/Pedrooaj/biblioteca-unifor-backend/pkg/metrics"
	"github.com/Pedrooaj/biblioteca-unifor-backend/pkg/tracing"
)

const tracerName = "circulation"

// AllocateUseCase 为读者分配一个副本并创建借阅
// 教学要点:这是流通引擎最核心的用例
//
// 核心问题:同一副本被两个读者同时借走
// 错误实现("先查后建"):
//  1. 查询可借副本 → 副本#1
//  2. 创建借阅
//     结果:两个请求都在步骤1拿到副本#1,产生两条ACTIVE借阅
//
// 正确实现(三道防线):
//  1. SELECT ... FOR UPDATE SKIP LOCKED 锁定候选副本,并发事务会跳到下一行
//  2. UPDATE ... WHERE id = ? AND version = ? 版本号CAS,丢失竞争则换下一个候选
//  3. loans.active_copy_id唯一索引,数据库层面保证一个副本最多一条ACTIVE借阅
type AllocateUseCase struct {
	bookRepo        book.Repository
	copyRepo        bookcopy.Repository
	loanRepo        loan.Repository
	reservationRepo reservation.Repository
	resolver        *Resolver
	txManager       *mysql.TxManager
	clock           clock.Clock
	policy          Policy
}

// NewAllocateUseCase 创建分配用例
func NewAllocateUseCase(
	bookRepo book.Repository,
	copyRepo bookcopy.Repository,
	loanRepo loan.Repository,
	reservationRepo reservation.Repository,
	resolver *Resolver,
	txManager *mysql.TxManager,
	clk clock.Clock,
	policy Policy,
) *AllocateUseCase {
	return &AllocateUseCase{
		bookRepo:        bookRepo,
		copyRepo:        copyRepo,
		loanRepo:        loanRepo,
		reservationRepo: reservationRepo,
		resolver:        resolver,
		txManager:       txManager,
		clock:           clk,
		policy:          policy.normalized(),
	}
}

// Execute 为bookID分配副本,返回新建的ACTIVE借阅
//
// 失败:
//   - INVALID_DUE_DATE:dueAt不晚于当前时间(不做任何写操作)
//   - NOT_FOUND:图书不存在
//   - LOAN_LIMIT_REACHED:超过同时借阅上限
//   - NO_COPY:没有可借副本
func (uc *AllocateUseCase) Execute(ctx context.Context, perm circulation.Permission, bookID uint, dueAt time.Time) (l *loan.Loan, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "Allocate")
	span.SetAttributes(attribute.Int64("book_id", int64(bookID)))
	defer func() {
		tracing.EndSpan(span, err)
		if err != nil {
			metrics.IncCounterVec(metrics.AllocationFailuresTotal, map[string]string{
				"reason": apperrors.GetAppError(err).Reason,
			})
		}
	}()

	if !perm.Valid() {
		return nil, circulation.ErrUnauthenticated
	}
	if !dueAt.After(uc.clock.Now()) {
		return nil, loan.ErrInvalidDueDate
	}
	b, err := uc.bookRepo.FindByID(ctx, bookID)
	if err != nil {
		return nil, err
	}

	// 丢失CAS竞争的副本记入tried,下一轮跳过
	var tried []uint
	for attempt := 0; attempt < uc.policy.AllocationRetries; attempt++ {
		var candidate uint
		l, err = uc.allocateOnce(ctx, perm.UserID, bookID, dueAt, tried, &candidate)
		if err == nil {
			break
		}
		if !errors.Is(err, apperrors.ErrConcurrentUpdate) || candidate == 0 {
			return nil, err
		}
		metrics.IncCounter(metrics.AllocationConflictsTotal)
		log.Debug().Uint("book_id", bookID).Uint("copy_id", candidate).Int("attempt", attempt+1).
			Msg("副本并发冲突,尝试下一个候选")
		tried = append(tried, candidate)
	}
	if err != nil {
		return nil, err
	}

	l.BookID = b.ID
	l.BookTitle = b.Title
	metrics.IncCounter(metrics.LoansCreatedTotal)
	return l, nil
}

// allocateOnce 在一个事务内完成:锁定候选 → CAS改状态 → 创建借阅 → 兑现预约
func (uc *AllocateUseCase) allocateOnce(
	ctx context.Context,
	userID, bookID uint,
	dueAt time.Time,
	tried []uint,
	candidate *uint,
) (*loan.Loan, error) {
	var created *loan.Loan
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		if uc.policy.MaxActiveLoans > 0 {
			n, err := uc.loanRepo.CountActiveByUser(txCtx, userID)
			if err != nil {
				return err
			}
			if n >= int64(uc.policy.MaxActiveLoans) {
				return loan.ErrLoanLimitReached
			}
		}

		c, err := uc.resolver.findNext(txCtx, bookID, userID, tried)
		if err != nil {
			return err
		}
		if c == nil {
			return circulation.ErrNoCopy
		}
		*candidate = c.ID

		if err := uc.copyRepo.CompareAndSetStatus(txCtx, c.ID, c.Version, bookcopy.StatusLoaned); err != nil {
			return err
		}

		now := uc.clock.Now()
		l, err := loan.NewLoan(userID, c.ID, now, dueAt)
		if err != nil {
			return err
		}
		if err := uc.loanRepo.Create(txCtx, l); err != nil {
			return err
		}
		l.CopyNumber = c.CopyNumber

		if err := uc.fulfillReservation(txCtx, userID, bookID, c.ID); err != nil {
			return err
		}
		created = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// fulfillReservation 读者借到了这本书,他对这本书的ACTIVE预约随之兑现
// 预约绑定的是另一个已保留的副本时,把那个副本放回在架
func (uc *AllocateUseCase) fulfillReservation(ctx context.Context, userID, bookID, loanedCopyID uint) error {
	r, err := uc.reservationRepo.FindActiveByUserAndBook(ctx, userID, bookID)
	if err != nil || r == nil {
		return err
	}
	if err := uc.reservationRepo.SetStatus(ctx, r.ID, reservation.StatusFulfilled); err != nil {
		return err
	}
	if r.BookCopyID == loanedCopyID {
		return nil
	}

	held, err := uc.copyRepo.LockByID(ctx, r.BookCopyID)
	if err != nil {
		return err
	}
	if held.Status != bookcopy.StatusReserved {
		return nil
	}
	busy, err := uc.loanRepo.HasActiveForCopy(ctx, held.ID)
	if err != nil || busy {
		return err
	}
	return uc.copyRepo.SetStatus(ctx, held.ID, bookcopy.StatusAvailable)
}
