// Package router 组装gin路由
package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/interface/http/handler"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/interface/http/middleware"
)

// Handlers 所有HTTP处理器
type Handlers struct {
	User        *handler.UserHandler
	Book        *handler.BookHandler
	Cart        *handler.CartHandler
	Loan        *handler.LoanHandler
	Reservation *handler.ReservationHandler
}

// Options 路由选项
type Options struct {
	Mode           string        // debug | release | test
	IdempotencyTTL time.Duration // 结算幂等键保留时间
	EnableSwagger  bool
}

// New 创建gin引擎并注册全部路由
//
// 路由分组：
//   - /ping、/metrics、/swagger/*any
//   - /api/v1 公开:图书列表、副本列表
//   - /api/v1 需要登录:书篮、结算、借阅、预约、馆藏管理、注销
func New(h Handlers, auth *middleware.AuthMiddleware, idempotency middleware.IdempotencyStore, opts Options) *gin.Engine {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Metrics())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if opts.EnableSwagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/api/v1")

	// 公开接口
	v1.GET("/books", h.Book.ListBooks)
	v1.GET("/books/:id/copies", h.Book.ListCopies)

	// 需要登录
	authorized := v1.Group("")
	authorized.Use(auth.RequireAuth())
	{
		authorized.GET("/me", h.User.Me)
		authorized.POST("/auth/logout", h.User.Logout)

		// 馆藏管理(馆员)
		authorized.POST("/books", h.Book.RegisterBook)
		authorized.POST("/books/:id/copies", h.Book.AddCopy)
		authorized.PATCH("/copies/:id", h.Book.UpdateCondition)
		authorized.DELETE("/copies/:id", h.Book.RemoveCopy)

		// 书篮
		authorized.GET("/cart", h.Cart.List)
		authorized.POST("/cart", h.Cart.Add)
		authorized.DELETE("/cart", h.Cart.Clear)
		authorized.DELETE("/cart/:book_id", h.Cart.Remove)
		authorized.POST("/cart/checkout", middleware.Idempotency(idempotency, opts.IdempotencyTTL), h.Cart.Checkout)

		// 借阅
		authorized.POST("/loans", h.Loan.Allocate)
		authorized.GET("/loans/mine", h.Loan.Mine)
		authorized.POST("/loans/:id/return", h.Loan.Return)
		authorized.POST("/loans/:id/renew", h.Loan.Renew)

		// 预约
		authorized.POST("/reservations", h.Reservation.Reserve)
		authorized.GET("/reservations/mine", h.Reservation.Mine)
	}

	return r
}
