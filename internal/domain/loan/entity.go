package loan

import (
	"time"
)

// Status 借阅状态
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusReturned Status = "RETURNED"
)

// Loan 借阅记录(聚合根)
// 业务规则:
// 1. 同一副本同一时刻最多一条ACTIVE借阅(数据库唯一索引active_copy_id保证)
// 2. ReturnedAt只在归还时写入
type Loan struct {
	ID         uint
	UserID     uint
	BookCopyID uint
	BorrowedAt time.Time
	DueAt      time.Time
	ReturnedAt *time.Time
	Status     Status
	Renewals   int

	// 以下为查询时填充的只读信息
	BookID     uint
	BookTitle  string
	CopyNumber int
}

// NewLoan 创建借阅记录
// dueAt必须晚于now,否则返回ErrInvalidDueDate
func NewLoan(userID, copyID uint, now, dueAt time.Time) (*Loan, error) {
	if !dueAt.After(now) {
		return nil, ErrInvalidDueDate
	}
	return &Loan{
		UserID:     userID,
		BookCopyID: copyID,
		BorrowedAt: now,
		DueAt:      dueAt,
		Status:     StatusActive,
	}, nil
}

// IsActive 是否处于借阅中
func (l *Loan) IsActive() bool {
	return l.Status == StatusActive
}

// BelongsTo 是否为指定用户的借阅
func (l *Loan) BelongsTo(userID uint) bool {
	return l.UserID == userID
}

// IsOverdue 是否逾期(只有ACTIVE借阅会逾期)
func (l *Loan) IsOverdue(now time.Time) bool {
	return l.IsActive() && now.After(l.DueAt)
}

// MarkReturned 标记归还
func (l *Loan) MarkReturned(now time.Time) error {
	if !l.IsActive() {
		return ErrAlreadyReturned
	}
	l.Status = StatusReturned
	l.ReturnedAt = &now
	return nil
}

// Renew 续借:在当前应还日期基础上顺延period
func (l *Loan) Renew(period time.Duration, maxRenewals int) error {
	if !l.IsActive() {
		return ErrAlreadyReturned
	}
	if maxRenewals > 0 && l.Renewals >= maxRenewals {
		return ErrRenewalLimitReached
	}
	l.DueAt = l.DueAt.Add(period)
	l.Renewals++
	return nil
}

// DurationDays 借阅时长(整天,向下取整)
// 未归还时以now为结束时间
func (l *Loan) DurationDays(now time.Time) int {
	end := now
	if l.ReturnedAt != nil {
		end = *l.ReturnedAt
	}
	d := end.Sub(l.BorrowedAt)
	if d <= 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}
