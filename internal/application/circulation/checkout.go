package circulation

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/bookcopy"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/cart"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/circulation"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/loan"
	"github.com/Pedrooaj/biblioteca-unifor-backend/pkg/clock"
	apperrors "github.com/Pedrooaj/biblioteca-unifor-backend/pkg/errors"
	"github.com/Pedrooaj/biblioteca-unifor-backend/pkg/metrics"
	"github.com/Pedrooaj/biblioteca-unifor-backend/pkg/tracing"
)

// CheckoutStatus 结算结果
type CheckoutStatus string

const (
	CheckoutComplete CheckoutStatus = "COMPLETE" // 书篮中的书全部借到
	CheckoutPartial  CheckoutStatus = "PARTIAL"  // 至少一本没借到
)

// Failure 单本书的失败原因
type Failure struct {
	BookID  uint
	Title   string
	Reason  string              // 机器可读原因,如NO_COPY
	Message string              // 给读者看的提示
	Copies  []bookcopy.Snapshot // NO_COPY时附带该书所有副本的当前状态
}

// CheckoutResult 结算结果
type CheckoutResult struct {
	Status     CheckoutStatus
	TotalItems int
	Loans      []*loan.Loan
	Failures   []Failure
}

// CheckoutUseCase 书篮结算
//
// 每本书各自走一次AllocateUseCase(各自一个事务):
// 一本书失败只记录到Failures,不影响其他书;结算结束后无论成败都清空书篮。
type CheckoutUseCase struct {
	cartRepo cart.Repository
	copyRepo bookcopy.Repository
	allocate *AllocateUseCase
	clock    clock.Clock
}

// NewCheckoutUseCase 创建结算用例
func NewCheckoutUseCase(
	cartRepo cart.Repository,
	copyRepo bookcopy.Repository,
	allocate *AllocateUseCase,
	clk clock.Clock,
) *CheckoutUseCase {
	return &CheckoutUseCase{
		cartRepo: cartRepo,
		copyRepo: copyRepo,
		allocate: allocate,
		clock:    clk,
	}
}

// Execute 结算书篮
//
// 失败(整体):EMPTY_CART、INVALID_DUE_DATE、读取书篮失败
// 其余失败都降级为Failures条目,Status=PARTIAL
func (uc *CheckoutUseCase) Execute(ctx context.Context, perm circulation.Permission, dueAt time.Time) (result *CheckoutResult, err error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, tracerName, "Checkout")
	defer func() { tracing.EndSpan(span, err) }()

	if !perm.Valid() {
		return nil, circulation.ErrUnauthenticated
	}
	// 到期日只校验一次,避免每本书都报同样的错
	if !dueAt.After(uc.clock.Now()) {
		return nil, loan.ErrInvalidDueDate
	}

	items, err := uc.cartRepo.ListByUser(ctx, perm.UserID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, cart.ErrEmptyCart
	}
	span.SetAttributes(attribute.Int("item_count", len(items)))

	result = &CheckoutResult{
		TotalItems: len(items),
		Loans:      make([]*loan.Loan, 0, len(items)),
		Failures:   make([]Failure, 0),
	}
	for _, item := range items {
		l, err := uc.allocate.Execute(ctx, perm, item.BookID, dueAt)
		if err != nil {
			result.Failures = append(result.Failures, uc.failureOf(ctx, item, err))
			continue
		}
		result.Loans = append(result.Loans, l)
	}

	// 书篮无条件清空;清空失败不影响已经创建的借阅
	if _, err := uc.cartRepo.Clear(ctx, perm.UserID); err != nil {
		log.Error().Err(err).Uint("user_id", perm.UserID).Msg("结算后清空书篮失败")
	}

	result.Status = CheckoutComplete
	if len(result.Failures) > 0 {
		result.Status = CheckoutPartial
	}

	metrics.IncCounterVec(metrics.CheckoutsTotal, map[string]string{"status": string(result.Status)})
	metrics.ObserveHistogram(metrics.CheckoutDuration, time.Since(start).Seconds())
	log.Info().
		Uint("user_id", perm.UserID).
		Int("total", result.TotalItems).
		Int("loans", len(result.Loans)).
		Int("failures", len(result.Failures)).
		Str("status", string(result.Status)).
		Msg("书篮结算完成")
	return result, nil
}

func (uc *CheckoutUseCase) failureOf(ctx context.Context, item *cart.Item, err error) Failure {
	appErr := apperrors.GetAppError(err)
	f := Failure{
		BookID:  item.BookID,
		Title:   item.BookTitle,
		Reason:  appErr.Reason,
		Message: appErr.Message,
	}

	if appErr.Kind() == apperrors.KindStorage {
		log.Error().Err(err).Uint("book_id", item.BookID).Msg("结算单本图书失败")
	}

	if errors.Is(err, circulation.ErrNoCopy) {
		copies, listErr := uc.copyRepo.ListByBook(ctx, item.BookID)
		if listErr != nil {
			log.Warn().Err(listErr).Uint("book_id", item.BookID).Msg("查询副本状态失败")
		} else {
			f.Copies = bookcopy.SnapshotOf(copies)
		}
	}
	return f
}
