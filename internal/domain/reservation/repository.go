package reservation

import (
	"context"
	"time"
)

// Repository 预约仓储接口
type Repository interface {
	// Create 创建ACTIVE预约,副本已有ACTIVE预约时返回ErrCopyAlreadyReserved
	Create(ctx context.Context, r *Reservation) error

	// FindActiveByCopy 查找副本上的ACTIVE预约,没有返回nil, nil
	FindActiveByCopy(ctx context.Context, copyID uint) (*Reservation, error)

	// FindActiveByUserAndBook 查找读者对某本书的ACTIVE预约,没有返回nil, nil
	FindActiveByUserAndBook(ctx context.Context, userID, bookID uint) (*Reservation, error)

	// SetStatus 将ACTIVE预约置为终态并释放active_copy_id
	// 预约已不是ACTIVE时返回ErrReservationNotFound
	SetStatus(ctx context.Context, id uint, status Status) error

	// ListExpired 列出now之前到期的ACTIVE预约
	ListExpired(ctx context.Context, now time.Time, limit int) ([]*Reservation, error)

	// ListByUser 查询读者的全部预约(预约时间倒序,含书名)
	ListByUser(ctx context.Context, userID uint) ([]*Reservation, error)

	// CountByCopy 统计引用该副本的预约记录数(含历史)
	CountByCopy(ctx context.Context, copyID uint) (int64, error)
}
