package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/loan"
	apperrors "github.com/Pedrooaj/biblioteca-unifor-backend/pkg/errors"
)

// loanRepository 借阅仓储实现
type loanRepository struct {
	db *gorm.DB
}

// NewLoanRepository 创建借阅仓储
func NewLoanRepository(db *gorm.DB) loan.Repository {
	return &loanRepository{db: db}
}

// loanRow 借阅+书目信息的查询结果
type loanRow struct {
	LoanModel  `gorm:"embedded"`
	BookID     uint
	BookTitle  string
	CopyNumber int
}

const loanWithBookColumns = "loans.*, book_copies.book_id AS book_id, books.title AS book_title, book_copies.copy_number AS copy_number"

// Create 创建借阅
// 教学要点:active_copy_id唯一索引是"一个副本最多一条ACTIVE借阅"的最后防线
func (r *loanRepository) Create(ctx context.Context, l *loan.Loan) error {
	copyID := l.BookCopyID
	model := &LoanModel{
		UserID:       l.UserID,
		BookCopyID:   l.BookCopyID,
		ActiveCopyID: &copyID,
		BorrowedAt:   l.BorrowedAt,
		DueAt:        l.DueAt,
		Status:       string(l.Status),
		Renewals:     l.Renewals,
	}

	if err := r.getDB(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return loan.ErrCopyAlreadyLoaned
		}
		return apperrors.Wrap(err, "创建借阅失败")
	}

	l.ID = model.ID
	return nil
}

// FindByID 根据ID查找借阅(含书目信息)
func (r *loanRepository) FindByID(ctx context.Context, id uint) (*loan.Loan, error) {
	var rows []loanRow
	err := r.withBook(ctx).Where("loans.id = ?", id).Limit(1).Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询借阅失败")
	}
	if len(rows) == 0 {
		return nil, loan.ErrLoanNotFound
	}
	return toLoanEntity(&rows[0]), nil
}

// LockByID 悲观锁查询借阅
func (r *loanRepository) LockByID(ctx context.Context, id uint) (*loan.Loan, error) {
	var model LoanModel
	if err := r.getDB(ctx).Clauses(forUpdate()).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, loan.ErrLoanNotFound
		}
		return nil, apperrors.Wrap(err, "锁定借阅失败")
	}
	return toLoanEntity(&loanRow{LoanModel: model}), nil
}

// MarkReturned 归还
// UPDATE loans SET status='RETURNED', returned_at=?, active_copy_id=NULL WHERE id=? AND status='ACTIVE'
func (r *loanRepository) MarkReturned(ctx context.Context, l *loan.Loan) error {
	result := r.getDB(ctx).Model(&LoanModel{}).
		Where("id = ? AND status = ?", l.ID, string(loan.StatusActive)).
		Updates(map[string]interface{}{
			"status":         string(loan.StatusReturned),
			"returned_at":    l.ReturnedAt,
			"active_copy_id": nil,
		})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新借阅失败")
	}
	if result.RowsAffected == 0 {
		return loan.ErrAlreadyReturned
	}
	return nil
}

// UpdateDue 写回续借结果
func (r *loanRepository) UpdateDue(ctx context.Context, l *loan.Loan) error {
	result := r.getDB(ctx).Model(&LoanModel{}).
		Where("id = ? AND status = ?", l.ID, string(loan.StatusActive)).
		Updates(map[string]interface{}{
			"due_at":   l.DueAt,
			"renewals": l.Renewals,
		})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "续借失败")
	}
	if result.RowsAffected == 0 {
		return loan.ErrAlreadyReturned
	}
	return nil
}

// CountActiveByUser 统计用户ACTIVE借阅
func (r *loanRepository) CountActiveByUser(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := r.getDB(ctx).Model(&LoanModel{}).
		Where("user_id = ? AND status = ?", userID, string(loan.StatusActive)).
		Count(&n).Error
	if err != nil {
		return 0, apperrors.Wrap(err, "统计借阅失败")
	}
	return n, nil
}

// ListByUser 用户借阅列表(借出时间倒序)
func (r *loanRepository) ListByUser(ctx context.Context, userID uint) ([]*loan.Loan, error) {
	var rows []loanRow
	err := r.withBook(ctx).
		Where("loans.user_id = ?", userID).
		Order("loans.borrowed_at DESC, loans.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询借阅列表失败")
	}
	loans := make([]*loan.Loan, len(rows))
	for i := range rows {
		loans[i] = toLoanEntity(&rows[i])
	}
	return loans, nil
}

// HasActiveForCopy 副本是否有ACTIVE借阅
func (r *loanRepository) HasActiveForCopy(ctx context.Context, copyID uint) (bool, error) {
	var n int64
	if err := r.getDB(ctx).Model(&LoanModel{}).Where("active_copy_id = ?", copyID).Count(&n).Error; err != nil {
		return false, apperrors.Wrap(err, "查询借阅失败")
	}
	return n > 0, nil
}

// CountByCopy 引用该副本的借阅记录数
func (r *loanRepository) CountByCopy(ctx context.Context, copyID uint) (int64, error) {
	var n int64
	if err := r.getDB(ctx).Model(&LoanModel{}).Where("book_copy_id = ?", copyID).Count(&n).Error; err != nil {
		return 0, apperrors.Wrap(err, "统计借阅失败")
	}
	return n, nil
}

func (r *loanRepository) withBook(ctx context.Context) *gorm.DB {
	return r.getDB(ctx).Table("loans").
		Select(loanWithBookColumns).
		Joins("JOIN book_copies ON book_copies.id = loans.book_copy_id").
		Joins("JOIN books ON books.id = book_copies.book_id")
}

// toLoanEntity 查询结果 → 领域实体
func toLoanEntity(row *loanRow) *loan.Loan {
	return &loan.Loan{
		ID:         row.ID,
		UserID:     row.UserID,
		BookCopyID: row.BookCopyID,
		BorrowedAt: row.BorrowedAt,
		DueAt:      row.DueAt,
		ReturnedAt: row.ReturnedAt,
		Status:     loan.Status(row.Status),
		Renewals:   row.Renewals,
		BookID:     row.BookID,
		BookTitle:  row.BookTitle,
		CopyNumber: row.CopyNumber,
	}
}

func (r *loanRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}
