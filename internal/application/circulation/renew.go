package circulation

import (
	"context"

	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/circulation"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/loan"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/reservation"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/infrastructure/persistence/mysql"
	"github.com/Pedrooaj/biblioteca-unifor-backend/pkg/tracing"
)

// RenewLoanUseCase 续借
// 有读者预约了该副本时不允许续借
type RenewLoanUseCase struct {
	loanRepo        loan.Repository
	reservationRepo reservation.Repository
	txManager       *mysql.TxManager
	policy          Policy
}

// NewRenewLoanUseCase 创建续借用例
func NewRenewLoanUseCase(
	loanRepo loan.Repository,
	reservationRepo reservation.Repository,
	txManager *mysql.TxManager,
	policy Policy,
) *RenewLoanUseCase {
	return &RenewLoanUseCase{
		loanRepo:        loanRepo,
		reservationRepo: reservationRepo,
		txManager:       txManager,
		policy:          policy.normalized(),
	}
}

// Execute 续借loanID,返回顺延后的借阅
//
// 失败:NOT_FOUND、FORBIDDEN、ALREADY_RETURNED、RENEWAL_LIMIT_REACHED、RENEWAL_BLOCKED
func (uc *RenewLoanUseCase) Execute(ctx context.Context, perm circulation.Permission, loanID uint) (renewed *loan.Loan, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "RenewLoan")
	defer func() { tracing.EndSpan(span, err) }()

	if !perm.Valid() {
		return nil, circulation.ErrUnauthenticated
	}

	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		l, err := uc.loanRepo.LockByID(txCtx, loanID)
		if err != nil {
			return err
		}
		if !l.BelongsTo(perm.UserID) {
			return loan.ErrNotBorrower
		}
		if err := l.Renew(uc.policy.RenewalPeriod, uc.policy.MaxRenewals); err != nil {
			return err
		}

		waiting, err := uc.reservationRepo.FindActiveByCopy(txCtx, l.BookCopyID)
		if err != nil {
			return err
		}
		if waiting != nil {
			return loan.ErrRenewalBlocked
		}
		return uc.loanRepo.UpdateDue(txCtx, l)
	})
	if err != nil {
		return nil, err
	}
	return uc.loanRepo.FindByID(ctx, loanID)
}
