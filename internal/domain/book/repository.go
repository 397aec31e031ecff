package book

import (
	"context"
)

// Repository 图书仓储
// 实现方从ctx中取事务,可以参与外层事务
type Repository interface {
	// Create 写入图书并回填ID,ISBN重复返回ErrISBNDuplicate
	Create(ctx context.Context, book *Book) error

	// FindByID 不存在返回ErrBookNotFound
	FindByID(ctx context.Context, id uint) (*Book, error)

	// List 按书名排序分页,返回当前页和总数
	List(ctx context.Context, params ListParams) ([]*Book, int64, error)
}

// ListParams 列表查询参数
type ListParams struct {
	Page     int    // 从1开始
	PageSize int    // <=0时取默认值
	Keyword  string // 匹配书名、作者、ISBN
}
