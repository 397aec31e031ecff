package dto

import (
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/application/catalog"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/book"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/bookcopy"
)

// RegisterBookRequest 登记图书(馆员)
// validator tag说明:
// - required: 必填字段
// - min/max: 数值范围校验
type RegisterBookRequest struct {
	ISBN   string `json:"isbn" binding:"required" example:"978-85-359-0277-8"`
	Title  string `json:"title" binding:"required,max=200" example:"Dom Casmurro"`
	Author string `json:"author" binding:"required,max=100" example:"Machado de Assis"`
	Copies int    `json:"copies" binding:"min=0,max=500" example:"3"` // 初始副本数,编号1..N
}

// BookResponse 图书详情
type BookResponse struct {
	ID        uint   `json:"id" example:"1"`
	ISBN      string `json:"isbn" example:"9788535902778"`
	Title     string `json:"title" example:"Dom Casmurro"`
	Author    string `json:"author" example:"Machado de Assis"`
	CreatedAt string `json:"created_at" example:"2024-01-15 10:30:00"`
}

// RegisterBookResponse 登记结果
type RegisterBookResponse struct {
	Book   BookResponse   `json:"book"`
	Copies []CopyResponse `json:"copies"`
}

// BookListItem 图书列表项
// Available为当前可借副本数
type BookListItem struct {
	ID        uint   `json:"id" example:"1"`
	ISBN      string `json:"isbn" example:"9788535902778"`
	Title     string `json:"title" example:"Dom Casmurro"`
	Author    string `json:"author" example:"Machado de Assis"`
	Available int64  `json:"available" example:"2"`
}

// ListBooksRequest 图书列表请求
type ListBooksRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
	Keyword  string `form:"keyword" binding:"omitempty,max=100" example:"Machado"`
}

// AddCopyRequest 新增副本(馆员)
// copy_number为空时自动编号(当前最大编号+1)
type AddCopyRequest struct {
	CopyNumber int    `json:"copy_number" binding:"omitempty,min=1" example:"4"`
	Condition  string `json:"condition" binding:"omitempty,oneof=NEW GOOD WORN DAMAGED" example:"NEW"`
}

// UpdateConditionRequest 修改副本品相(馆员)
type UpdateConditionRequest struct {
	Condition string `json:"condition" binding:"required,oneof=NEW GOOD WORN DAMAGED" example:"WORN"`
}

// CopyResponse 副本
type CopyResponse struct {
	ID         uint   `json:"id" example:"3"`
	BookID     uint   `json:"book_id" example:"1"`
	CopyNumber int    `json:"copy_number" example:"1"`
	Status     string `json:"status" example:"AVAILABLE"`
	Condition  string `json:"condition" example:"GOOD"`
	UpdatedAt  string `json:"updated_at" example:"2024-01-15 10:30:00"`
}

// ToBookResponse 图书转换
func ToBookResponse(b *book.Book) BookResponse {
	return BookResponse{
		ID:        b.ID,
		ISBN:      b.ISBN,
		Title:     b.Title,
		Author:    b.Author,
		CreatedAt: FormatTime(b.CreatedAt),
	}
}

// ToCopyResponse 副本转换
func ToCopyResponse(c *bookcopy.BookCopy) CopyResponse {
	return CopyResponse{
		ID:         c.ID,
		BookID:     c.BookID,
		CopyNumber: c.CopyNumber,
		Status:     string(c.Status),
		Condition:  string(c.Condition),
		UpdatedAt:  FormatTime(c.UpdatedAt),
	}
}

// ToCopyResponses 批量转换
func ToCopyResponses(copies []*bookcopy.BookCopy) []CopyResponse {
	out := make([]CopyResponse, 0, len(copies))
	for _, c := range copies {
		out = append(out, ToCopyResponse(c))
	}
	return out
}

// ToBookListItems 列表转换
func ToBookListItems(items []catalog.BookListItem) []BookListItem {
	out := make([]BookListItem, 0, len(items))
	for _, item := range items {
		out = append(out, BookListItem{
			ID:        item.ID,
			ISBN:      item.ISBN,
			Title:     item.Title,
			Author:    item.Author,
			Available: item.Available,
		})
	}
	return out
}
