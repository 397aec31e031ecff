package circulation

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/bookcopy"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/loan"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/reservation"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/infrastructure/persistence/mysql"
	"github.com/Pedrooaj/biblioteca-unifor-backend/pkg/clock"
	"github.com/Pedrooaj/biblioteca-unifor-backend/pkg/metrics"
)

// ExpireReservationsUseCase 清理过期预约
//
// 到期的ACTIVE预约置为EXPIRED;如果副本正为它保留(RESERVED且没有ACTIVE借阅),放回在架。
// 由cmd/api中的后台任务定期调用。
type ExpireReservationsUseCase struct {
	copyRepo        bookcopy.Repository
	loanRepo        loan.Repository
	reservationRepo reservation.Repository
	txManager       *mysql.TxManager
	clock           clock.Clock
	policy          Policy
}

// NewExpireReservationsUseCase 创建过期清理用例
func NewExpireReservationsUseCase(
	copyRepo bookcopy.Repository,
	loanRepo loan.Repository,
	reservationRepo reservation.Repository,
	txManager *mysql.TxManager,
	clk clock.Clock,
	policy Policy,
) *ExpireReservationsUseCase {
	return &ExpireReservationsUseCase{
		copyRepo:        copyRepo,
		loanRepo:        loanRepo,
		reservationRepo: reservationRepo,
		txManager:       txManager,
		clock:           clk,
		policy:          policy.normalized(),
	}
}

// Execute 处理一批过期预约,返回实际过期的条数
func (uc *ExpireReservationsUseCase) Execute(ctx context.Context) (int, error) {
	expired, err := uc.reservationRepo.ListExpired(ctx, uc.clock.Now(), uc.policy.SweepBatch)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, r := range expired {
		err := uc.expireOne(ctx, r)
		switch {
		case err == nil:
			n++
		case errors.Is(err, reservation.ErrReservationNotFound):
			// 已被兑现或取消
		default:
			log.Error().Err(err).Uint("reservation_id", r.ID).Msg("预约过期处理失败")
		}
	}

	if n > 0 {
		metrics.AddCounter(metrics.ReservationsExpiredTotal, float64(n))
		log.Info().Int("count", n).Msg("已清理过期预约")
	}
	return n, nil
}

func (uc *ExpireReservationsUseCase) expireOne(ctx context.Context, r *reservation.Reservation) error {
	return uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 先锁副本再改预约
		c, err := uc.copyRepo.LockByID(txCtx, r.BookCopyID)
		if err != nil {
			return err
		}
		if err := uc.reservationRepo.SetStatus(txCtx, r.ID, reservation.StatusExpired); err != nil {
			return err
		}
		if c.Status != bookcopy.StatusReserved {
			return nil
		}

		busy, err := uc.loanRepo.HasActiveForCopy(txCtx, c.ID)
		if err != nil || busy {
			return err
		}
		return uc.copyRepo.SetStatus(txCtx, c.ID, bookcopy.StatusAvailable)
	})
}
