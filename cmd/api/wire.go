//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 说明：
// 1. Wire在编译期生成依赖组装代码，零运行时开销
// 2. 运行 `wire gen ./cmd/api` 生成wire_gen.go
// 3. 生成的InitializeApp与main.go中的buildApp等价
//
// 核心概念：
// - Provider: 提供依赖的构造函数（如NewLoanRepository）
// - Injector: 声明最终要构造的目标类型（*App）
// - wire.Bind: 把具体类型绑定到接口（如*redis.SessionStore → middleware.TokenBlacklist）

package main

import (
	"github.com/google/wire"

	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/application/catalog"
	appcirculation "github.com/Pedrooaj/biblioteca-unifor-backend/internal/application/circulation"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/infrastructure/config"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/infrastructure/persistence/mysql"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/infrastructure/persistence/redis"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/interface/http/handler"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/interface/http/middleware"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/interface/http/router"
	"github.com/Pedrooaj/biblioteca-unifor-backend/pkg/clock"
)

// infrastructureSet 基础设施层依赖
// 包含：数据库、Redis、消息通知、时钟
var infrastructureSet = wire.NewSet(
	mysql.NewDB,
	redis.NewClient,
	provideSessionStore,
	provideIdempotencyStore,
	provideNotifier,
	clock.NewSystem,
)

// repositorySet 仓储层依赖
var repositorySet = wire.NewSet(
	mysql.NewBookRepository,
	mysql.NewBookCopyRepository,
	mysql.NewLoanRepository,
	mysql.NewReservationRepository,
	mysql.NewCartRepository,
	mysql.NewTxManager,
)

// applicationSet 应用层依赖
var applicationSet = wire.NewSet(
	providePolicy,
	appcirculation.NewResolver,
	appcirculation.NewAllocateUseCase,
	appcirculation.NewCheckoutUseCase,
	appcirculation.NewReserveUseCase,
	appcirculation.NewReturnLoanUseCase,
	appcirculation.NewRenewLoanUseCase,
	appcirculation.NewCartUseCase,
	appcirculation.NewQueryUseCase,
	appcirculation.NewExpireReservationsUseCase,
	catalog.NewRegisterBookUseCase,
	catalog.NewListBooksUseCase,
	catalog.NewCopyUseCase,
)

// interfaceSet HTTP层依赖
var interfaceSet = wire.NewSet(
	provideJWTManager,
	middleware.NewAuthMiddleware,
	wire.Bind(new(middleware.TokenBlacklist), new(*redis.SessionStore)),
	wire.Bind(new(middleware.IdempotencyStore), new(*redis.IdempotencyStore)),
	wire.Bind(new(handler.TokenRevoker), new(*redis.SessionStore)),
	handler.NewUserHandler,
	handler.NewBookHandler,
	handler.NewCartHandler,
	handler.NewLoanHandler,
	handler.NewReservationHandler,
	wire.Struct(new(router.Handlers), "*"),
	provideRouter,
)

// InitializeApp Wire Injector
func InitializeApp(cfg *config.Config) (*App, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		applicationSet,
		interfaceSet,
		wire.Struct(new(App), "Engine", "Sweeper"),
	)
	return nil, nil, nil
}
