package main

import (
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	appcirculation "github.com/Pedrooaj/biblioteca-unifor-backend/internal/application/circulation"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/circulation"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/infrastructure/config"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/infrastructure/notify"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/infrastructure/persistence/redis"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/interface/http/middleware"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/interface/http/router"
	"github.com/Pedrooaj/biblioteca-unifor-backend/pkg/circuitbreaker"
	"github.com/Pedrooaj/biblioteca-unifor-backend/pkg/jwt"
	"github.com/Pedrooaj/biblioteca-unifor-backend/pkg/mq"
)

// App 启动所需的全部组件
type App struct {
	Engine  *gin.Engine
	Sweeper *appcirculation.ExpireReservationsUseCase
}

// ========================================
// 自定义Provider
// ========================================
// 构造函数参数需要从Config中提取时，编写Provider函数。
// main.go的手动注入和wire.go的Wire注入共用这些函数。

// provideJWTManager 从配置创建JWT管理器
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.TokenTTL,
		jwt.WithIssuer(cfg.JWT.Issuer),
		jwt.WithLeeway(cfg.JWT.Leeway),
	)
}

// provideSessionStore 从Redis客户端创建Token黑名单
func provideSessionStore(client *goredis.Client) *redis.SessionStore {
	return redis.NewSessionStore(client)
}

// provideIdempotencyStore 从Redis客户端创建幂等键存储
func provideIdempotencyStore(client *goredis.Client) *redis.IdempotencyStore {
	return redis.NewIdempotencyStore(client)
}

// providePolicy 流通规则
func providePolicy(cfg *config.Config) appcirculation.Policy {
	return appcirculation.PolicyFromConfig(cfg.Circulation)
}

// provideNotifier 预约到书通知
// 未配置RabbitMQ或连接失败时不发送通知(归还流程不受影响)
func provideNotifier(cfg *config.Config) (circulation.Notifier, func()) {
	if cfg.RabbitMQ.URL == "" {
		log.Info().Msg("未配置RabbitMQ,预约到书通知已关闭")
		return circulation.NopNotifier{}, func() {}
	}

	publisher, err := mq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.ExchangeType)
	if err != nil {
		log.Warn().Err(err).Msg("连接RabbitMQ失败,预约到书通知已关闭")
		return circulation.NopNotifier{}, func() {}
	}

	breaker := circuitbreaker.NewCircuitBreaker("reservation-notifier", circuitbreaker.Config{
		Timeout: 30 * time.Second,
	})
	breaker.SetStateChangeCallback(func(name string, from, to circuitbreaker.State) {
		log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("熔断器状态变化")
	})

	cleanup := func() {
		if err := publisher.Close(); err != nil {
			log.Warn().Err(err).Msg("关闭RabbitMQ连接失败")
		}
	}
	return notify.NewRabbitMQNotifier(publisher, breaker), cleanup
}

// provideRouter 创建gin引擎
func provideRouter(
	cfg *config.Config,
	handlers router.Handlers,
	authMiddleware *middleware.AuthMiddleware,
	idempotency middleware.IdempotencyStore,
) *gin.Engine {
	return router.New(handlers, authMiddleware, idempotency, router.Options{
		Mode:           cfg.Server.Mode,
		IdempotencyTTL: cfg.Circulation.IdempotencyTTL,
		EnableSwagger:  cfg.Server.Mode != gin.ReleaseMode,
	})
}
