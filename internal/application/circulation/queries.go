package circulation

import (
	"context"

	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/circulation"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/loan"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/reservation"
	"github.com/Pedrooaj/biblioteca-unifor-backend/pkg/clock"
)

// LoanView 我的借阅列表项
type LoanView struct {
	*loan.Loan
	Overdue bool
}

// QueryUseCase 读者查询自己的借阅和预约
type QueryUseCase struct {
	loanRepo        loan.Repository
	reservationRepo reservation.Repository
	clock           clock.Clock
}

// NewQueryUseCase 创建查询用例
func NewQueryUseCase(loanRepo loan.Repository, reservationRepo reservation.Repository, clk clock.Clock) *QueryUseCase {
	return &QueryUseCase{
		loanRepo:        loanRepo,
		reservationRepo: reservationRepo,
		clock:           clk,
	}
}

// MyLoans 我的借阅(含已归还),Overdue按当前时间计算
func (uc *QueryUseCase) MyLoans(ctx context.Context, perm circulation.Permission) ([]LoanView, error) {
	if !perm.Valid() {
		return nil, circulation.ErrUnauthenticated
	}
	loans, err := uc.loanRepo.ListByUser(ctx, perm.UserID)
	if err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	views := make([]LoanView, len(loans))
	for i, l := range loans {
		views[i] = LoanView{Loan: l, Overdue: l.IsOverdue(now)}
	}
	return views, nil
}

// MyReservations 我的预约
func (uc *QueryUseCase) MyReservations(ctx context.Context, perm circulation.Permission) ([]*reservation.Reservation, error) {
	if !perm.Valid() {
		return nil, circulation.ErrUnauthenticated
	}
	return uc.reservationRepo.ListByUser(ctx, perm.UserID)
}
