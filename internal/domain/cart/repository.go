package cart

import (
	"context"
)

// Repository 书篮仓储接口
type Repository interface {
	// Add 加入书篮,重复返回ErrDuplicateItem
	Add(ctx context.Context, item *Item) error

	// Remove 移出书篮,不存在返回ErrItemNotFound
	Remove(ctx context.Context, userID, bookID uint) error

	// ListByUser 按加入时间列出书篮条目(含书名)
	ListByUser(ctx context.Context, userID uint) ([]*Item, error)

	// Clear 清空书篮,返回删除条数
	Clear(ctx context.Context, userID uint) (int64, error)
}
