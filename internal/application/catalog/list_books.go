package catalog

import (
	"context"

	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/book"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/bookcopy"
)

// ListBooksUseCase 图书列表查询用例(所有读者可用)
// 列表项附带当前可直接借走的副本数,读者据此决定借阅还是预约
type ListBooksUseCase struct {
	bookRepo book.Repository
	copyRepo bookcopy.Repository
}

// NewListBooksUseCase 创建列表查询用例
func NewListBooksUseCase(bookRepo book.Repository, copyRepo bookcopy.Repository) *ListBooksUseCase {
	return &ListBooksUseCase{
		bookRepo: bookRepo,
		copyRepo: copyRepo,
	}
}

// ListBooksRequest 列表查询请求DTO
type ListBooksRequest struct {
	Page     int    // 页码(从1开始)
	PageSize int    // 每页数量
	Keyword  string // 搜索关键词(标题、作者、ISBN)
}

// BookListItem 列表项
type BookListItem struct {
	*book.Book
	Available int64
}

// ListBooksResponse 列表查询响应DTO
type ListBooksResponse struct {
	List     []BookListItem
	Total    int64
	Page     int
	PageSize int
}

// Execute 执行列表查询
// 1. 参数默认值处理(page默认1, pageSize默认20)
// 2. 参数范围限制(pageSize最大100)
func (uc *ListBooksUseCase) Execute(ctx context.Context, req ListBooksRequest) (*ListBooksResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	books, total, err := uc.bookRepo.List(ctx, book.ListParams{
		Page:     req.Page,
		PageSize: req.PageSize,
		Keyword:  req.Keyword,
	})
	if err != nil {
		return nil, err
	}

	list := make([]BookListItem, len(books))
	for i, b := range books {
		n, err := uc.copyRepo.CountAllocatable(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		list[i] = BookListItem{Book: b, Available: n}
	}

	return &ListBooksResponse{
		List:     list,
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
	}, nil
}
