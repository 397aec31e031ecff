package catalog

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/book"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/bookcopy"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/circulation"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/loan"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/reservation"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/infrastructure/persistence/mysql"
	"github.com/Pedrooaj/biblioteca-unifor-backend/pkg/clock"
)

// CopyUseCase 副本管理
// 查询对所有读者开放,增删改只允许馆员
type CopyUseCase struct {
	bookRepo        book.Repository
	copyRepo        bookcopy.Repository
	loanRepo        loan.Repository
	reservationRepo reservation.Repository
	txManager       *mysql.TxManager
	clock           clock.Clock
}

// NewCopyUseCase 创建副本管理用例
func NewCopyUseCase(
	bookRepo book.Repository,
	copyRepo bookcopy.Repository,
	loanRepo loan.Repository,
	reservationRepo reservation.Repository,
	txManager *mysql.TxManager,
	clk clock.Clock,
) *CopyUseCase {
	return &CopyUseCase{
		bookRepo:        bookRepo,
		copyRepo:        copyRepo,
		loanRepo:        loanRepo,
		reservationRepo: reservationRepo,
		txManager:       txManager,
		clock:           clk,
	}
}

// AddCopyRequest 新增副本请求
type AddCopyRequest struct {
	BookID     uint
	CopyNumber int    // 0表示自动编号(当前最大编号+1)
	Condition  string // 空串默认为GOOD
}

// Add 新增副本
// 失败:FORBIDDEN、NOT_FOUND(图书)、DUPLICATE_COPY_NUMBER
func (uc *CopyUseCase) Add(ctx context.Context, perm circulation.Permission, req AddCopyRequest) (*bookcopy.BookCopy, error) {
	if !perm.IsLibrarian() {
		return nil, circulation.ErrForbidden
	}
	cond, err := bookcopy.ParseCondition(req.Condition)
	if err != nil {
		return nil, err
	}
	if req.CopyNumber < 0 {
		return nil, bookcopy.ErrInvalidCopyNumber
	}
	if _, err := uc.bookRepo.FindByID(ctx, req.BookID); err != nil {
		return nil, err
	}

	var created *bookcopy.BookCopy
	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		number := req.CopyNumber
		if number == 0 {
			maxNumber, err := uc.copyRepo.MaxCopyNumber(txCtx, req.BookID)
			if err != nil {
				return err
			}
			number = maxNumber + 1
		}

		c, err := bookcopy.NewBookCopy(req.BookID, number, cond, uc.clock.Now())
		if err != nil {
			return err
		}
		// 并发自动编号撞号时由唯一索引返回ErrDuplicateCopyNumber
		if err := uc.copyRepo.Create(txCtx, c); err != nil {
			return err
		}
		created = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// List 按编号列出某本书的副本
func (uc *CopyUseCase) List(ctx context.Context, bookID uint) ([]*bookcopy.BookCopy, error) {
	if _, err := uc.bookRepo.FindByID(ctx, bookID); err != nil {
		return nil, err
	}
	return uc.copyRepo.ListByBook(ctx, bookID)
}

// UpdateCondition 更新品相
func (uc *CopyUseCase) UpdateCondition(ctx context.Context, perm circulation.Permission, copyID uint, condition string) (*bookcopy.BookCopy, error) {
	if !perm.IsLibrarian() {
		return nil, circulation.ErrForbidden
	}
	if condition == "" {
		return nil, bookcopy.ErrInvalidCondition
	}
	cond, err := bookcopy.ParseCondition(condition)
	if err != nil {
		return nil, err
	}
	if err := uc.copyRepo.UpdateCondition(ctx, copyID, cond); err != nil {
		return nil, err
	}
	return uc.copyRepo.FindByID(ctx, copyID)
}

// Remove 删除副本
// 只要有借阅或预约记录(含历史)引用该副本就拒绝删除,返回COPY_IN_USE
func (uc *CopyUseCase) Remove(ctx context.Context, perm circulation.Permission, copyID uint) error {
	if !perm.IsLibrarian() {
		return circulation.ErrForbidden
	}

	return uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		if _, err := uc.copyRepo.LockByID(txCtx, copyID); err != nil {
			return err
		}

		loans, err := uc.loanRepo.CountByCopy(txCtx, copyID)
		if err != nil {
			return err
		}
		reservations, err := uc.reservationRepo.CountByCopy(txCtx, copyID)
		if err != nil {
			return err
		}
		if loans > 0 || reservations > 0 {
			return bookcopy.ErrCopyInUse
		}

		if err := uc.copyRepo.Delete(txCtx, copyID); err != nil {
			return err
		}
		log.Info().Uint("copy_id", copyID).Msg("副本已删除")
		return nil
	})
}
