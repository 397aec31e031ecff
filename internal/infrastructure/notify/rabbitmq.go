// Package notify 预约到书通知的消息队列实现
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/circulation"
	"github.com/Pedrooaj/biblioteca-unifor-backend/pkg/circuitbreaker"
)

// Publisher 消息发布能力(*mq.Publisher实现了它)
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
}

// RabbitMQNotifier 把ReservationReady事件发布到RabbitMQ
//
// 发布经过熔断器：MQ不可用时快速失败，不拖慢归还请求。
// 所有错误只记录日志，不会返回给调用方。
type RabbitMQNotifier struct {
	publisher Publisher
	breaker   *circuitbreaker.CircuitBreaker
	timeout   time.Duration
}

// NewRabbitMQNotifier 创建通知器
func NewRabbitMQNotifier(publisher Publisher, breaker *circuitbreaker.CircuitBreaker) *RabbitMQNotifier {
	if breaker == nil {
		breaker = circuitbreaker.NewCircuitBreaker("notifier", circuitbreaker.Config{})
	}
	return &RabbitMQNotifier{
		publisher: publisher,
		breaker:   breaker,
		timeout:   3 * time.Second,
	}
}

// ReservationReady 实现circulation.Notifier
func (n *RabbitMQNotifier) ReservationReady(ctx context.Context, event circulation.ReservationReadyEvent) {
	// 请求结束后ctx会被取消,发布使用独立的超时
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
	defer cancel()

	err := n.breaker.Execute(func() error {
		return n.publisher.Publish(pubCtx, circulation.RoutingKeyReservationReady, event)
	})
	if err == nil {
		return
	}

	logEvt := log.Warn().Err(err).
		Uint("reservation_id", event.ReservationID).
		Uint("user_id", event.UserID).
		Uint("book_copy_id", event.BookCopyID)
	if errors.Is(err, circuitbreaker.ErrOpenState) {
		logEvt.Msg("通知熔断中,跳过预约到书通知")
		return
	}
	logEvt.Msg("发布预约到书通知失败")
}

var _ circulation.Notifier = (*RabbitMQNotifier)(nil)
