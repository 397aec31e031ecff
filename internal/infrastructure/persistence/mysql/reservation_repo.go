package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/reservation"
	apperrors "github.com/Pedrooaj/biblioteca-unifor-backend/pkg/errors"
)

// reservationRepository 预约仓储实现
type reservationRepository struct {
	db *gorm.DB
}

// NewReservationRepository 创建预约仓储
func NewReservationRepository(db *gorm.DB) reservation.Repository {
	return &reservationRepository{db: db}
}

type reservationRow struct {
	ReservationModel `gorm:"embedded"`
	BookID           uint
	BookTitle        string
	BookAuthor       string
	CopyNumber       int
}

const reservationWithBookColumns = "reservations.*, book_copies.book_id AS book_id, books.title AS book_title, books.author AS book_author, book_copies.copy_number AS copy_number"

// Create 创建预约
func (r *reservationRepository) Create(ctx context.Context, res *reservation.Reservation) error {
	copyID := res.BookCopyID
	model := &ReservationModel{
		UserID:       res.UserID,
		BookCopyID:   res.BookCopyID,
		ActiveCopyID: &copyID,
		ReservedAt:   res.ReservedAt,
		DueAt:        res.DueAt,
		Status:       string(res.Status),
	}

	if err := r.getDB(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return reservation.ErrCopyAlreadyReserved
		}
		return apperrors.Wrap(err, "创建预约失败")
	}

	res.ID = model.ID
	return nil
}

// FindActiveByCopy 副本上的ACTIVE预约
func (r *reservationRepository) FindActiveByCopy(ctx context.Context, copyID uint) (*reservation.Reservation, error) {
	return r.findOne(r.withBook(ctx).Where("reservations.active_copy_id = ?", copyID))
}

// FindActiveByUserAndBook 读者对某本书的ACTIVE预约
func (r *reservationRepository) FindActiveByUserAndBook(ctx context.Context, userID, bookID uint) (*reservation.Reservation, error) {
	return r.findOne(r.withBook(ctx).
		Where("reservations.user_id = ? AND reservations.status = ?", userID, string(reservation.StatusActive)).
		Where("book_copies.book_id = ?", bookID).
		Order("reservations.id ASC"))
}

// SetStatus 结束ACTIVE预约
// UPDATE reservations SET status=?, active_copy_id=NULL WHERE id=? AND status='ACTIVE'
func (r *reservationRepository) SetStatus(ctx context.Context, id uint, status reservation.Status) error {
	result := r.getDB(ctx).Model(&ReservationModel{}).
		Where("id = ? AND status = ?", id, string(reservation.StatusActive)).
		Updates(map[string]interface{}{
			"status":         string(status),
			"active_copy_id": nil,
		})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新预约失败")
	}
	if result.RowsAffected == 0 {
		return reservation.ErrReservationNotFound
	}
	return nil
}

// ListExpired 已过期限的ACTIVE预约
func (r *reservationRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]*reservation.Reservation, error) {
	query := r.withBook(ctx).
		Where("reservations.status = ? AND reservations.due_at < ?", string(reservation.StatusActive), now).
		Order("reservations.due_at ASC, reservations.id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	return r.findMany(query)
}

// ListByUser 读者的预约列表(预约时间倒序)
func (r *reservationRepository) ListByUser(ctx context.Context, userID uint) ([]*reservation.Reservation, error) {
	return r.findMany(r.withBook(ctx).
		Where("reservations.user_id = ?", userID).
		Order("reservations.reserved_at DESC, reservations.id DESC"))
}

// CountByCopy 引用该副本的预约记录数
func (r *reservationRepository) CountByCopy(ctx context.Context, copyID uint) (int64, error) {
	var n int64
	if err := r.getDB(ctx).Model(&ReservationModel{}).Where("book_copy_id = ?", copyID).Count(&n).Error; err != nil {
		return 0, apperrors.Wrap(err, "统计预约失败")
	}
	return n, nil
}

func (r *reservationRepository) withBook(ctx context.Context) *gorm.DB {
	return r.getDB(ctx).Table("reservations").
		Select(reservationWithBookColumns).
		Joins("JOIN book_copies ON book_copies.id = reservations.book_copy_id").
		Joins("JOIN books ON books.id = book_copies.book_id")
}

func (r *reservationRepository) findOne(query *gorm.DB) (*reservation.Reservation, error) {
	var rows []reservationRow
	if err := query.Limit(1).Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询预约失败")
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return toReservationEntity(&rows[0]), nil
}

func (r *reservationRepository) findMany(query *gorm.DB) ([]*reservation.Reservation, error) {
	var rows []reservationRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询预约列表失败")
	}
	out := make([]*reservation.Reservation, len(rows))
	for i := range rows {
		out[i] = toReservationEntity(&rows[i])
	}
	return out, nil
}

// toReservationEntity 查询结果 → 领域实体
func toReservationEntity(row *reservationRow) *reservation.Reservation {
	return &reservation.Reservation{
		ID:         row.ID,
		UserID:     row.UserID,
		BookCopyID: row.BookCopyID,
		ReservedAt: row.ReservedAt,
		DueAt:      row.DueAt,
		Status:     reservation.Status(row.Status),
		BookID:     row.BookID,
		BookTitle:  row.BookTitle,
		BookAuthor: row.BookAuthor,
		CopyNumber: row.CopyNumber,
	}
}

func (r *reservationRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}
