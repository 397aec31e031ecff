package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/application/catalog"
	appcirculation "github.com/Pedrooaj/biblioteca-unifor-backend/internal/application/circulation"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/infrastructure/config"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/infrastructure/logger"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/infrastructure/persistence/mysql"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/infrastructure/persistence/redis"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/interface/http/handler"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/interface/http/middleware"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/interface/http/router"
	"github.com/Pedrooaj/biblioteca-unifor-backend/pkg/clock"
	"github.com/Pedrooaj/biblioteca-unifor-backend/pkg/metrics"
	"github.com/Pedrooaj/biblioteca-unifor-backend/pkg/tracing"
)

// @title       图书馆流通服务 API
// @version     1.0
// @description 书篮结算、借阅、预约、归还
// @BasePath    /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("加载配置失败")
	}

	// 2. 日志、指标、链路追踪
	logCloser, err := logger.Setup(cfg.Log)
	if err != nil {
		log.Fatal().Err(err).Msg("初始化日志失败")
	}
	defer logCloser.Close()

	metrics.InitMetrics()

	if cfg.Tracing.Enabled {
		shutdownTracer, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.CollectorURL)
		if err != nil {
			log.Fatal().Err(err).Msg("初始化链路追踪失败")
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracer(ctx); err != nil {
				log.Warn().Err(err).Msg("关闭链路追踪失败")
			}
		}()
	}

	log.Info().
		Int("port", cfg.Server.Port).
		Str("mode", cfg.Server.Mode).
		Str("database", fmt.Sprintf("%s:%d/%s", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)).
		Str("redis", cfg.Redis.Addr()).
		Msg("配置加载成功")

	// 3. 依赖注入
	app, cleanup, err := buildApp(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("初始化服务失败")
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 4. 后台清理过期预约
	go runReservationSweeper(ctx, app.Sweeper, cfg.Circulation.ReservationSweepInterval)

	// 5. 启动HTTP服务
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.Engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("服务启动成功")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP服务异常退出")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("收到退出信号,正在关闭服务")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("关闭HTTP服务失败")
		os.Exit(1)
	}
	log.Info().Msg("服务已停止")
}

// buildApp 手动依赖注入
// 依赖链：Repository ← UseCase ← Handler ← Router
// wire.go中的InitializeApp生成同样的组装代码
func buildApp(cfg *config.Config) (*App, func(), error) {
	db, err := mysql.NewDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return nil, nil, err
	}

	// 基础设施层
	bookRepo := mysql.NewBookRepository(db)
	copyRepo := mysql.NewBookCopyRepository(db)
	loanRepo := mysql.NewLoanRepository(db)
	reservationRepo := mysql.NewReservationRepository(db)
	cartRepo := mysql.NewCartRepository(db)
	txManager := mysql.NewTxManager(db)
	sessionStore := provideSessionStore(redisClient)
	idempotencyStore := provideIdempotencyStore(redisClient)
	jwtManager := provideJWTManager(cfg)
	notifier, closeNotifier := provideNotifier(cfg)
	clk := clock.NewSystem()
	policy := providePolicy(cfg)

	// 应用层
	resolver := appcirculation.NewResolver(copyRepo)
	allocateUseCase := appcirculation.NewAllocateUseCase(bookRepo, copyRepo, loanRepo, reservationRepo, resolver, txManager, clk, policy)
	checkoutUseCase := appcirculation.NewCheckoutUseCase(cartRepo, copyRepo, allocateUseCase, clk)
	reserveUseCase := appcirculation.NewReserveUseCase(bookRepo, copyRepo, reservationRepo, resolver, txManager, clk, policy)
	returnUseCase := appcirculation.NewReturnLoanUseCase(copyRepo, loanRepo, reservationRepo, txManager, notifier, clk)
	renewUseCase := appcirculation.NewRenewLoanUseCase(loanRepo, reservationRepo, txManager, policy)
	cartUseCase := appcirculation.NewCartUseCase(cartRepo, bookRepo, clk)
	queryUseCase := appcirculation.NewQueryUseCase(loanRepo, reservationRepo, clk)
	expireUseCase := appcirculation.NewExpireReservationsUseCase(copyRepo, loanRepo, reservationRepo, txManager, clk, policy)
	registerBookUseCase := catalog.NewRegisterBookUseCase(bookRepo, copyRepo, txManager, clk)
	listBooksUseCase := catalog.NewListBooksUseCase(bookRepo, copyRepo)
	copyUseCase := catalog.NewCopyUseCase(bookRepo, copyRepo, loanRepo, reservationRepo, txManager, clk)

	// 接口层
	handlers := router.Handlers{
		User:        handler.NewUserHandler(sessionStore, clk),
		Book:        handler.NewBookHandler(registerBookUseCase, listBooksUseCase, copyUseCase),
		Cart:        handler.NewCartHandler(cartUseCase, checkoutUseCase),
		Loan:        handler.NewLoanHandler(allocateUseCase, returnUseCase, renewUseCase, queryUseCase),
		Reservation: handler.NewReservationHandler(reserveUseCase, queryUseCase),
	}
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, sessionStore)

	cleanup := func() {
		closeNotifier()
		if err := redisClient.Close(); err != nil {
			log.Warn().Err(err).Msg("关闭Redis连接失败")
		}
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	return &App{
		Engine:  provideRouter(cfg, handlers, authMiddleware, idempotencyStore),
		Sweeper: expireUseCase,
	}, cleanup, nil
}

// runReservationSweeper 定时把过期的ACTIVE预约标记为EXPIRED
// 每个周期处理一批,剩余的留到下个周期
func runReservationSweeper(ctx context.Context, uc *appcirculation.ExpireReservationsUseCase, interval time.Duration) {
	if interval <= 0 {
		log.Info().Msg("预约过期清理已关闭")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := uc.Execute(ctx); err != nil {
				log.Error().Err(err).Msg("清理过期预约失败")
			}
		}
	}
}
