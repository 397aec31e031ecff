package circulation

import (
	"context"

	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/book"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/cart"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/circulation"
	"github.com/Pedrooaj/biblioteca-unifor-backend/pkg/clock"
)

// CartUseCase 书篮管理
// 加入书篮时不检查是否有可借副本,结算时才分配
type CartUseCase struct {
	cartRepo cart.Repository
	bookRepo book.Repository
	clock    clock.Clock
}

// NewCartUseCase 创建书篮用例
func NewCartUseCase(cartRepo cart.Repository, bookRepo book.Repository, clk clock.Clock) *CartUseCase {
	return &CartUseCase{
		cartRepo: cartRepo,
		bookRepo: bookRepo,
		clock:    clk,
	}
}

// Add 加入书篮
// 失败:NOT_FOUND(图书不存在)、DUPLICATE_CART_ITEM
func (uc *CartUseCase) Add(ctx context.Context, perm circulation.Permission, bookID uint) (*cart.Item, error) {
	if !perm.Valid() {
		return nil, circulation.ErrUnauthenticated
	}
	b, err := uc.bookRepo.FindByID(ctx, bookID)
	if err != nil {
		return nil, err
	}

	item := &cart.Item{
		UserID:    perm.UserID,
		BookID:    bookID,
		CreatedAt: uc.clock.Now(),
	}
	if err := uc.cartRepo.Add(ctx, item); err != nil {
		return nil, err
	}
	item.BookTitle = b.Title
	item.BookAuthor = b.Author
	return item, nil
}

// Remove 移出书篮
func (uc *CartUseCase) Remove(ctx context.Context, perm circulation.Permission, bookID uint) error {
	if !perm.Valid() {
		return circulation.ErrUnauthenticated
	}
	return uc.cartRepo.Remove(ctx, perm.UserID, bookID)
}

// List 查看书篮
func (uc *CartUseCase) List(ctx context.Context, perm circulation.Permission) ([]*cart.Item, error) {
	if !perm.Valid() {
		return nil, circulation.ErrUnauthenticated
	}
	return uc.cartRepo.ListByUser(ctx, perm.UserID)
}

// Clear 清空书篮,返回移除的条数
func (uc *CartUseCase) Clear(ctx context.Context, perm circulation.Permission) (int64, error) {
	if !perm.Valid() {
		return 0, circulation.ErrUnauthenticated
	}
	return uc.cartRepo.Clear(ctx, perm.UserID)
}
