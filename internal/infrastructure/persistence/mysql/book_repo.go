package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/book"
	apperrors "github.com/Pedrooaj/biblioteca-unifor-backend/pkg/errors"
)

const defaultBookPageSize = 20

type bookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	model := bookModelOf(b)
	err := dbFromContext(ctx, r.db).Create(model).Error
	switch {
	case isDuplicateError(err):
		return book.ErrISBNDuplicate
	case err != nil:
		return apperrors.Wrap(err, "写入图书失败")
	}

	b.ID = model.ID
	b.CreatedAt, b.UpdatedAt = model.CreatedAt, model.UpdatedAt
	return nil
}

func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	err := dbFromContext(ctx, r.db).Take(&model, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, book.ErrBookNotFound
	}
	if err != nil {
		return nil, apperrors.Wrapf(err, "读取图书%d失败", id)
	}
	return bookOf(&model), nil
}

func (r *bookRepository) List(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	query := dbFromContext(ctx, r.db).Model(&BookModel{}).Scopes(matchKeyword(params.Keyword))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "统计图书数量失败")
	}
	if total == 0 {
		return []*book.Book{}, 0, nil
	}

	var models []BookModel
	err := query.Scopes(paginate(params.Page, params.PageSize)).
		Order("title ASC").Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书列表失败")
	}

	books := make([]*book.Book, 0, len(models))
	for i := range models {
		books = append(books, bookOf(&models[i]))
	}
	return books, total, nil
}

func matchKeyword(keyword string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if keyword == "" {
			return db
		}
		like := "%" + keyword + "%"
		return db.Where("title LIKE ? OR author LIKE ? OR isbn LIKE ?", like, like, like)
	}
}

func paginate(page, size int) func(*gorm.DB) *gorm.DB {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = defaultBookPageSize
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset((page - 1) * size).Limit(size)
	}
}

func bookModelOf(b *book.Book) *BookModel {
	return &BookModel{
		ISBN:      b.ISBN,
		Title:     b.Title,
		Author:    b.Author,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func bookOf(m *BookModel) *book.Book {
	return &book.Book{
		ID:        m.ID,
		ISBN:      m.ISBN,
		Title:     m.Title,
		Author:    m.Author,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
