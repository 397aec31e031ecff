package reservation

import "time"

// Status 预约状态
type Status string

const (
	StatusActive    Status = "ACTIVE"    // 等待中/保留中
	StatusFulfilled Status = "FULFILLED" // 预约者已借走
	StatusExpired   Status = "EXPIRED"   // 超过期限未取
	StatusCancelled Status = "CANCELLED" // 读者取消
)

// Reservation 预约记录
// 业务规则:
// 1. 预约绑定到具体副本,同一副本最多一条ACTIVE预约(active_copy_id唯一索引)
// 2. 同一读者对同一本书最多一条ACTIVE预约
// 3. 只有ACTIVE预约会阻止其他读者借走该副本
type Reservation struct {
	ID         uint
	UserID     uint
	BookCopyID uint
	ReservedAt time.Time
	DueAt      time.Time
	Status     Status

	// 查询时填充
	BookID     uint
	BookTitle  string
	BookAuthor string
	CopyNumber int
}

// NewReservation 创建ACTIVE预约
func NewReservation(userID, copyID uint, now, dueAt time.Time) (*Reservation, error) {
	if !dueAt.After(now) {
		return nil, ErrInvalidDueDate
	}
	return &Reservation{
		UserID:     userID,
		BookCopyID: copyID,
		ReservedAt: now,
		DueAt:      dueAt,
		Status:     StatusActive,
	}, nil
}

// IsActive 是否有效
func (r *Reservation) IsActive() bool {
	return r.Status == StatusActive
}

// IsExpired 是否已过期限(只对ACTIVE预约有意义)
func (r *Reservation) IsExpired(now time.Time) bool {
	return r.IsActive() && now.After(r.DueAt)
}
