package loan

import (
	"context"
)

// Repository 借阅仓储接口
type Repository interface {
	// Create 创建ACTIVE借阅
	// 同一副本已有ACTIVE借阅时返回ErrCopyAlreadyLoaned
	Create(ctx context.Context, loan *Loan) error

	// FindByID 根据ID查找借阅
	FindByID(ctx context.Context, id uint) (*Loan, error)

	// LockByID 悲观锁查询借阅(SELECT ... FOR UPDATE)
	LockByID(ctx context.Context, id uint) (*Loan, error)

	// MarkReturned 将ACTIVE借阅置为RETURNED并释放active_copy_id
	// 借阅已不是ACTIVE时返回ErrAlreadyReturned
	MarkReturned(ctx context.Context, loan *Loan) error

	// UpdateDue 写回续借后的应还日期和续借次数
	UpdateDue(ctx context.Context, loan *Loan) error

	// CountActiveByUser 统计用户当前ACTIVE借阅数
	CountActiveByUser(ctx context.Context, userID uint) (int64, error)

	// ListByUser 查询用户的全部借阅(借出时间倒序,含书名和副本编号)
	ListByUser(ctx context.Context, userID uint) ([]*Loan, error)

	// HasActiveForCopy 副本是否有ACTIVE借阅
	HasActiveForCopy(ctx context.Context, copyID uint) (bool, error)

	// CountByCopy 统计引用该副本的借阅记录数(含历史)
	CountByCopy(ctx context.Context, copyID uint) (int64, error)
}
