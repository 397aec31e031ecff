package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/interface/http/dto"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/interface/http/middleware"
	"github.com/Pedrooaj/biblioteca-unifor-backend/pkg/clock"
	"github.com/Pedrooaj/biblioteca-unifor-backend/pkg/response"
)

// TokenRevoker 注销Token(redis.SessionStore实现)
type TokenRevoker interface {
	AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error
}

// UserHandler 读者身份HTTP处理器
// 设计说明：
// 1. Token由统一认证服务签发,这里只提供"我是谁"和注销
// 2. 注销把Token写入黑名单,TTL取Token剩余有效期
type UserHandler struct {
	revoker TokenRevoker
	clock   clock.Clock
}

// NewUserHandler 创建读者身份处理器
func NewUserHandler(revoker TokenRevoker, clk clock.Clock) *UserHandler {
	return &UserHandler{
		revoker: revoker,
		clock:   clk,
	}
}

// Me 当前读者
// @Summary      当前读者
// @Tags         读者
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=dto.MeResponse}
// @Router       /api/v1/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	perm := middleware.GetPermission(c)
	response.Success(c, dto.MeResponse{
		UserID: perm.UserID,
		Role:   string(perm.Role),
	})
}

// Logout 注销
// @Summary      注销
// @Description  当前Token加入黑名单,之后的请求返回Token已失效
// @Tags         读者
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response
// @Router       /api/v1/auth/logout [post]
func (h *UserHandler) Logout(c *gin.Context) {
	ttl := middleware.GetClaims(c).Remaining(h.clock.Now())
	if err := h.revoker.AddToBlacklist(c.Request.Context(), middleware.GetToken(c), ttl); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
