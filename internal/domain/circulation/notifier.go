package circulation

import (
	"context"
	"time"
)

// RoutingKeyReservationReady 预约到书事件的路由键
const RoutingKeyReservationReady = "reservation.ready"

// ReservationReadyEvent 预约的副本已归还,等待预约者取书
type ReservationReadyEvent struct {
	ReservationID uint      `json:"reservation_id"`
	UserID        uint      `json:"user_id"`
	BookID        uint      `json:"book_id"`
	BookTitle     string    `json:"book_title"`
	BookCopyID    uint      `json:"book_copy_id"`
	CopyNumber    int       `json:"copy_number"`
	HoldUntil     time.Time `json:"hold_until"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Notifier 通知钩子
// 只在事务提交后调用;实现方必须自行吞掉错误,不能影响归还结果
type Notifier interface {
	ReservationReady(ctx context.Context, event ReservationReadyEvent)
}

// NopNotifier 不发送任何通知(未配置消息队列时使用)
type NopNotifier struct{}

// ReservationReady 实现Notifier
func (NopNotifier) ReservationReady(context.Context, ReservationReadyEvent) {}
