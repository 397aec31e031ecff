package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/bookcopy"
	apperrors "github.com/Pedrooaj/biblioteca-unifor-backend/pkg/errors"
)

// bookCopyRepository 副本仓储实现
// 教学要点:
// 1. 可借判断完全在SQL中完成,结合loans/reservations的active_copy_id
// 2. 事务内的候选查询使用FOR UPDATE SKIP LOCKED,并发借阅不会挑中同一行
// 3. 状态变更走版本号CAS,丢失竞争时返回ErrVersionConflict
type bookCopyRepository struct {
	db *gorm.DB
}

// NewBookCopyRepository 创建副本仓储
func NewBookCopyRepository(db *gorm.DB) bookcopy.Repository {
	return &bookCopyRepository{db: db}
}

// Create 创建副本
func (r *bookCopyRepository) Create(ctx context.Context, c *bookcopy.BookCopy) error {
	model := &BookCopyModel{
		BookID:     c.BookID,
		CopyNumber: c.CopyNumber,
		Status:     string(c.Status),
		Condition:  string(c.Condition),
		Version:    c.Version,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
	if model.Version == 0 {
		model.Version = 1
	}

	if err := r.getDB(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return bookcopy.ErrDuplicateCopyNumber
		}
		return apperrors.Wrap(err, "创建副本失败")
	}

	c.ID = model.ID
	c.Version = model.Version
	c.CreatedAt = model.CreatedAt
	c.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找副本
func (r *bookCopyRepository) FindByID(ctx context.Context, id uint) (*bookcopy.BookCopy, error) {
	var model BookCopyModel
	if err := r.getDB(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bookcopy.ErrCopyNotFound
		}
		return nil, apperrors.Wrap(err, "查询副本失败")
	}
	return toBookCopyEntity(&model), nil
}

// LockByID 悲观锁查询副本
// 教学要点:必须使用getDB(ctx)从context获取事务DB
func (r *bookCopyRepository) LockByID(ctx context.Context, id uint) (*bookcopy.BookCopy, error) {
	var model BookCopyModel
	if err := r.getDB(ctx).Clauses(forUpdate()).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bookcopy.ErrCopyNotFound
		}
		return nil, apperrors.Wrap(err, "锁定副本失败")
	}
	return toBookCopyEntity(&model), nil
}

// ListByBook 按编号列出副本
func (r *bookCopyRepository) ListByBook(ctx context.Context, bookID uint) ([]*bookcopy.BookCopy, error) {
	var models []BookCopyModel
	if err := r.getDB(ctx).Where("book_id = ?", bookID).Order("copy_number ASC").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询副本列表失败")
	}
	copies := make([]*bookcopy.BookCopy, len(models))
	for i := range models {
		copies[i] = toBookCopyEntity(&models[i])
	}
	return copies, nil
}

// MaxCopyNumber 当前最大副本编号
func (r *bookCopyRepository) MaxCopyNumber(ctx context.Context, bookID uint) (int, error) {
	var maxNumber int
	err := r.getDB(ctx).Model(&BookCopyModel{}).
		Select("COALESCE(MAX(copy_number), 0)").
		Where("book_id = ?", bookID).
		Scan(&maxNumber).Error
	if err != nil {
		return 0, apperrors.Wrap(err, "查询副本编号失败")
	}
	return maxNumber, nil
}

// FindAllocatable 查找可分配副本
//
// SELECT c.* FROM book_copies c
// LEFT JOIN reservations r ON r.active_copy_id = c.id
// WHERE c.book_id = ?
//
//	AND NOT EXISTS (SELECT 1 FROM loans l WHERE l.active_copy_id = c.id)
//	AND ((c.status = 'AVAILABLE' AND r.id IS NULL) OR (c.status = 'RESERVED' AND r.user_id = ?))
//
// ORDER BY (RESERVED优先), c.copy_number LIMIT 1 [FOR UPDATE OF c SKIP LOCKED]
func (r *bookCopyRepository) FindAllocatable(ctx context.Context, bookID, holderID uint, skip []uint) (*bookcopy.BookCopy, error) {
	query := r.allocatable(ctx, bookID, holderID)
	if len(skip) > 0 {
		query = query.Where("c.id NOT IN ?", skip)
	}
	if inTx(ctx) {
		query = query.Clauses(skipLocked("c"))
	}

	// 只有持有者自己的预约副本可能是RESERVED,所以按状态排序即"持有优先"
	var model BookCopyModel
	err := query.Select("c.*").
		Order("CASE WHEN c.status = 'RESERVED' THEN 0 ELSE 1 END, c.copy_number ASC").
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(err, "查询可借副本失败")
	}
	return toBookCopyEntity(&model), nil
}

// CountAllocatable 统计任何读者都能直接借走的副本数
func (r *bookCopyRepository) CountAllocatable(ctx context.Context, bookID uint) (int64, error) {
	var n int64
	// holderID=0不会匹配任何预约,只统计AVAILABLE且无人预约的副本
	if err := r.allocatable(ctx, bookID, 0).Count(&n).Error; err != nil {
		return 0, apperrors.Wrap(err, "统计可借副本失败")
	}
	return n, nil
}

// FindReservable 查找可预约副本
func (r *bookCopyRepository) FindReservable(ctx context.Context, bookID uint) (*bookcopy.BookCopy, error) {
	query := r.getDB(ctx).Table("book_copies AS c").
		Where("c.book_id = ? AND c.status = ?", bookID, string(bookcopy.StatusLoaned)).
		Where("EXISTS (SELECT 1 FROM loans l WHERE l.active_copy_id = c.id)").
		Where("NOT EXISTS (SELECT 1 FROM reservations r WHERE r.active_copy_id = c.id)")
	if inTx(ctx) {
		query = query.Clauses(skipLocked("c"))
	}

	var model BookCopyModel
	if err := query.Select("c.*").Order("c.copy_number ASC").Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(err, "查询可预约副本失败")
	}
	return toBookCopyEntity(&model), nil
}

// CompareAndSetStatus 乐观锁更新状态
// UPDATE book_copies SET status = ?, version = version + 1 WHERE id = ? AND version = ?
func (r *bookCopyRepository) CompareAndSetStatus(ctx context.Context, id uint, expectedVersion int, status bookcopy.Status) error {
	result := r.getDB(ctx).Model(&BookCopyModel{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(map[string]interface{}{
			"status":  string(status),
			"version": gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新副本状态失败")
	}
	if result.RowsAffected == 0 {
		return bookcopy.ErrVersionConflict
	}
	return nil
}

// SetStatus 直接设置状态,同样递增版本号
func (r *bookCopyRepository) SetStatus(ctx context.Context, id uint, status bookcopy.Status) error {
	result := r.getDB(ctx).Model(&BookCopyModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":  string(status),
			"version": gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新副本状态失败")
	}
	if result.RowsAffected == 0 {
		return bookcopy.ErrCopyNotFound
	}
	return nil
}

// UpdateCondition 更新品相
func (r *bookCopyRepository) UpdateCondition(ctx context.Context, id uint, condition bookcopy.Condition) error {
	result := r.getDB(ctx).Model(&BookCopyModel{}).
		Where("id = ?", id).
		Update("copy_condition", string(condition))
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新副本品相失败")
	}
	if result.RowsAffected == 0 {
		return bookcopy.ErrCopyNotFound
	}
	return nil
}

// Delete 删除副本
func (r *bookCopyRepository) Delete(ctx context.Context, id uint) error {
	result := r.getDB(ctx).Delete(&BookCopyModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "删除副本失败")
	}
	if result.RowsAffected == 0 {
		return bookcopy.ErrCopyNotFound
	}
	return nil
}

// allocatable 可借副本的公共查询条件
func (r *bookCopyRepository) allocatable(ctx context.Context, bookID, holderID uint) *gorm.DB {
	return r.getDB(ctx).Table("book_copies AS c").
		Joins("LEFT JOIN reservations r ON r.active_copy_id = c.id").
		Where("c.book_id = ?", bookID).
		Where("NOT EXISTS (SELECT 1 FROM loans l WHERE l.active_copy_id = c.id)").
		Where("((c.status = ? AND r.id IS NULL) OR (c.status = ? AND r.user_id = ?))",
			string(bookcopy.StatusAvailable), string(bookcopy.StatusReserved), holderID)
}

// toBookCopyEntity GORM模型 → 领域实体
func toBookCopyEntity(model *BookCopyModel) *bookcopy.BookCopy {
	return &bookcopy.BookCopy{
		ID:         model.ID,
		BookID:     model.BookID,
		CopyNumber: model.CopyNumber,
		Status:     bookcopy.Status(model.Status),
		Condition:  bookcopy.Condition(model.Condition),
		Version:    model.Version,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}

func (r *bookCopyRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}
