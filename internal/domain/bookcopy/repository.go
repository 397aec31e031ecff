package bookcopy

import (
	"context"
)

// Repository 副本仓储接口
type Repository interface {
	// Create 创建副本,(book_id, copy_number)冲突返回ErrDuplicateCopyNumber
	Create(ctx context.Context, copy *BookCopy) error

	// FindByID 根据ID查找副本
	FindByID(ctx context.Context, id uint) (*BookCopy, error)

	// ListByBook 按副本编号升序列出某本书的全部副本
	ListByBook(ctx context.Context, bookID uint) ([]*BookCopy, error)

	// MaxCopyNumber 返回某本书当前最大的副本编号(没有副本返回0)
	MaxCopyNumber(ctx context.Context, bookID uint) (int, error)

	// FindAllocatable 查找可分配给holderID的副本
	// 可分配:没有ACTIVE借阅,并且满足以下之一
	//   - 状态AVAILABLE且没有ACTIVE预约
	//   - 状态RESERVED且ACTIVE预约属于holderID
	// 持有者自己的RESERVED副本排在最前,其余按编号升序;找不到返回nil, nil
	// 在事务内调用时使用FOR UPDATE SKIP LOCKED,跳过其他事务正在处理的行
	// skip中的副本ID会被排除(用于CAS失败后换下一个候选)
	FindAllocatable(ctx context.Context, bookID, holderID uint, skip []uint) (*BookCopy, error)

	// FindReservable 查找编号最小的"已借出、有ACTIVE借阅且无ACTIVE预约"的副本;找不到返回nil, nil
	FindReservable(ctx context.Context, bookID uint) (*BookCopy, error)

	// CountAllocatable 统计任何人都可以直接借走的副本数
	CountAllocatable(ctx context.Context, bookID uint) (int64, error)

	// CompareAndSetStatus 乐观锁更新状态
	// UPDATE book_copies SET status=?, version=version+1 WHERE id=? AND version=?
	// 版本不匹配返回ErrVersionConflict
	CompareAndSetStatus(ctx context.Context, id uint, expectedVersion int, status Status) error

	// SetStatus 直接设置状态(调用方已持有行锁)
	SetStatus(ctx context.Context, id uint, status Status) error

	// LockByID 悲观锁查询副本(SELECT ... FOR UPDATE)
	LockByID(ctx context.Context, id uint) (*BookCopy, error)

	// UpdateCondition 更新品相
	UpdateCondition(ctx context.Context, id uint, condition Condition) error

	// Delete 删除副本(引用检查由调用方在同一事务内完成)
	Delete(ctx context.Context, id uint) error
}
