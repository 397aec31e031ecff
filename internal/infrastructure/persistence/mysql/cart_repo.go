package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/cart"
	apperrors "github.com/Pedrooaj/biblioteca-unifor-backend/pkg/errors"
)

// cartRepository 书篮仓储实现
type cartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建书篮仓储
func NewCartRepository(db *gorm.DB) cart.Repository {
	return &cartRepository{db: db}
}

type cartRow struct {
	CartItemModel `gorm:"embedded"`
	BookTitle     string
	BookAuthor    string
}

// Add 加入书篮,依赖(user_id, book_id)唯一索引去重
func (r *cartRepository) Add(ctx context.Context, item *cart.Item) error {
	model := &CartItemModel{
		UserID:    item.UserID,
		BookID:    item.BookID,
		CreatedAt: item.CreatedAt,
	}
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return cart.ErrDuplicateItem
		}
		return apperrors.Wrap(err, "加入书篮失败")
	}
	item.ID = model.ID
	item.CreatedAt = model.CreatedAt
	return nil
}

// Remove 移出书篮
func (r *cartRepository) Remove(ctx context.Context, userID, bookID uint) error {
	result := r.getDB(ctx).Where("user_id = ? AND book_id = ?", userID, bookID).Delete(&CartItemModel{})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "移出书篮失败")
	}
	if result.RowsAffected == 0 {
		return cart.ErrItemNotFound
	}
	return nil
}

// ListByUser 书篮内容(按加入顺序)
func (r *cartRepository) ListByUser(ctx context.Context, userID uint) ([]*cart.Item, error) {
	var rows []cartRow
	err := r.getDB(ctx).Table("cart_items").
		Select("cart_items.*, books.title AS book_title, books.author AS book_author").
		Joins("JOIN books ON books.id = cart_items.book_id").
		Where("cart_items.user_id = ?", userID).
		Order("cart_items.created_at ASC, cart_items.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询书篮失败")
	}

	items := make([]*cart.Item, len(rows))
	for i, row := range rows {
		items[i] = &cart.Item{
			ID:         row.ID,
			UserID:     row.UserID,
			BookID:     row.BookID,
			CreatedAt:  row.CreatedAt,
			BookTitle:  row.BookTitle,
			BookAuthor: row.BookAuthor,
		}
	}
	return items, nil
}

// Clear 清空书篮
func (r *cartRepository) Clear(ctx context.Context, userID uint) (int64, error) {
	result := r.getDB(ctx).Where("user_id = ?", userID).Delete(&CartItemModel{})
	if result.Error != nil {
		return 0, apperrors.Wrap(result.Error, "清空书篮失败")
	}
	return result.RowsAffected, nil
}

func (r *cartRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}
