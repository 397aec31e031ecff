package bookcopy

import "time"

// Status 副本流通状态
type Status string

const (
	StatusAvailable Status = "AVAILABLE" // 在架可借
	StatusLoaned    Status = "LOANED"    // 已借出
	StatusReserved  Status = "RESERVED"  // 已归还,为预约者保留
)

// Valid 是否为合法状态
func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusLoaned, StatusReserved:
		return true
	}
	return false
}

// Condition 副本物理品相
type Condition string

const (
	ConditionNew     Condition = "NEW"
	ConditionGood    Condition = "GOOD"
	ConditionWorn    Condition = "WORN"
	ConditionDamaged Condition = "DAMAGED"
)

// ParseCondition 解析品相,空串默认为GOOD
func ParseCondition(s string) (Condition, error) {
	if s == "" {
		return ConditionGood, nil
	}
	c := Condition(s)
	switch c {
	case ConditionNew, ConditionGood, ConditionWorn, ConditionDamaged:
		return c, nil
	}
	return "", ErrInvalidCondition
}

// BookCopy 图书副本实体(可借阅的最小单位)
// 设计说明:
// 1. (BookID, CopyNumber)唯一
// 2. Version用于乐观并发控制,每次状态变更+1
// 3. 状态机: AVAILABLE → LOANED → (RESERVED →) AVAILABLE
//
// 状态只是"提示",是否可借最终由流通引擎结合借阅/预约记录判断
type BookCopy struct {
	ID         uint
	BookID     uint
	CopyNumber int
	Status     Status
	Condition  Condition
	Version    int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewBookCopy 创建在架副本
func NewBookCopy(bookID uint, copyNumber int, condition Condition, now time.Time) (*BookCopy, error) {
	if copyNumber <= 0 {
		return nil, ErrInvalidCopyNumber
	}
	if condition == "" {
		condition = ConditionGood
	}
	return &BookCopy{
		BookID:     bookID,
		CopyNumber: copyNumber,
		Status:     StatusAvailable,
		Condition:  condition,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// StatusAfterReturn 归还后副本应处的状态
// 有人在等(存在ACTIVE预约)则保留给预约者,否则回到在架
func StatusAfterReturn(hasActiveReservation bool) Status {
	if hasActiveReservation {
		return StatusReserved
	}
	return StatusAvailable
}

// Snapshot 副本状态快照(结算失败时返回给前端)
type Snapshot struct {
	CopyID     uint   `json:"copy_id"`
	CopyNumber int    `json:"copy_number"`
	Status     Status `json:"status"`
}

// SnapshotOf 生成副本快照
func SnapshotOf(copies []*BookCopy) []Snapshot {
	out := make([]Snapshot, 0, len(copies))
	for _, c := range copies {
		out = append(out, Snapshot{CopyID: c.ID, CopyNumber: c.CopyNumber, Status: c.Status})
	}
	return out
}
