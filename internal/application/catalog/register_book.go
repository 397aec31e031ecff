package catalog

import (
	"context"

	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/book"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/bookcopy"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/circulation"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/infrastructure/persistence/mysql"
	"github.com/Pedrooaj/biblioteca-unifor-backend/pkg/clock"
	apperrors "github.com/Pedrooaj/biblioteca-unifor-backend/pkg/errors"
)

// maxInitialCopies 登记图书时一次最多创建的副本数
const maxInitialCopies = 500

// RegisterBookUseCase 图书登记用例(馆员)
// 设计说明:
// 1. 图书和初始副本在同一个事务中创建,要么全部成功,要么全部失败
// 2. 初始副本编号为1..N,品相GOOD
type RegisterBookUseCase struct {
	bookRepo  book.Repository
	copyRepo  bookcopy.Repository
	txManager *mysql.TxManager
	clock     clock.Clock
}

// NewRegisterBookUseCase 创建登记用例
func NewRegisterBookUseCase(
	bookRepo book.Repository,
	copyRepo bookcopy.Repository,
	txManager *mysql.TxManager,
	clk clock.Clock,
) *RegisterBookUseCase {
	return &RegisterBookUseCase{
		bookRepo:  bookRepo,
		copyRepo:  copyRepo,
		txManager: txManager,
		clock:     clk,
	}
}

// RegisterBookRequest 登记请求DTO
type RegisterBookRequest struct {
	ISBN   string // ISBN号
	Title  string // 书名
	Author string // 作者
	Copies int    // 初始副本数(可以为0)
}

// RegisterBookResponse 登记响应DTO
type RegisterBookResponse struct {
	Book   *book.Book
	Copies []*bookcopy.BookCopy
}

// Execute 执行登记
func (uc *RegisterBookUseCase) Execute(ctx context.Context, perm circulation.Permission, req RegisterBookRequest) (*RegisterBookResponse, error) {
	if !perm.IsLibrarian() {
		return nil, circulation.ErrForbidden
	}
	if req.Copies < 0 || req.Copies > maxInitialCopies {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "初始副本数必须在0到500之间")
	}

	now := uc.clock.Now()
	b, err := book.NewBook(req.ISBN, req.Title, req.Author, now)
	if err != nil {
		return nil, err
	}

	resp := &RegisterBookResponse{Book: b}
	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// ISBN唯一索引兜底,返回ErrISBNDuplicate
		if err := uc.bookRepo.Create(txCtx, b); err != nil {
			return err
		}
		for n := 1; n <= req.Copies; n++ {
			c, err := bookcopy.NewBookCopy(b.ID, n, bookcopy.ConditionGood, now)
			if err != nil {
				return err
			}
			if err := uc.copyRepo.Create(txCtx, c); err != nil {
				return err
			}
			resp.Copies = append(resp.Copies, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
