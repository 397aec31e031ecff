package circulation

import (
	"context"

	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/bookcopy"
)

// Resolver 可借副本判定
//
// 副本可借的条件:
//  1. 属于该图书
//  2. 没有ACTIVE借阅
//  3. 状态AVAILABLE且没有ACTIVE预约;或状态RESERVED且ACTIVE预约属于holderID
//
// 只有ACTIVE预约会阻挡借阅,已完成/过期/取消的历史预约不参与判定。
// 判定在SQL中一次完成,事务内调用时同时加行锁(FOR UPDATE SKIP LOCKED)。
type Resolver struct {
	copyRepo bookcopy.Repository
}

// NewResolver 创建判定器
func NewResolver(copyRepo bookcopy.Repository) *Resolver {
	return &Resolver{copyRepo: copyRepo}
}

// FindAllocatableCopy 返回holderID可借的副本,没有返回nil
func (r *Resolver) FindAllocatableCopy(ctx context.Context, bookID, holderID uint) (*bookcopy.BookCopy, error) {
	return r.copyRepo.FindAllocatable(ctx, bookID, holderID, nil)
}

// findNext 跳过已尝试过的候选
func (r *Resolver) findNext(ctx context.Context, bookID, holderID uint, tried []uint) (*bookcopy.BookCopy, error) {
	return r.copyRepo.FindAllocatable(ctx, bookID, holderID, tried)
}

// HasFreeCopy 是否存在任何读者都能直接借走的副本
func (r *Resolver) HasFreeCopy(ctx context.Context, bookID uint) (bool, error) {
	n, err := r.copyRepo.CountAllocatable(ctx, bookID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
