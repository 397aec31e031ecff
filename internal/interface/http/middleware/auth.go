package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/circulation"
	apperrors "github.com/Pedrooaj/biblioteca-unifor-backend/pkg/errors"
	"github.com/Pedrooaj/biblioteca-unifor-backend/pkg/jwt"
	"github.com/Pedrooaj/biblioteca-unifor-backend/pkg/response"
)

// Context中使用的key
const (
	ContextKeyUserID = "user_id"
	ContextKeyRole   = "role"
	ContextKeyToken  = "token"
	ContextKeyClaims = "claims"
)

// TokenBlacklist Token黑名单查询(redis.SessionStore实现)
type TokenBlacklist interface {
	IsInBlacklist(ctx context.Context, token string) (bool, error)
}

// AuthMiddleware JWT认证中间件
// 设计说明：
// 1. 从Header提取Token
// 2. 检查Token黑名单
// 3. 验证Token有效性
// 4. 将读者身份(user_id、role)注入Context,Handler再转换成circulation.Permission
type AuthMiddleware struct {
	jwtManager *jwt.Manager
	blacklist  TokenBlacklist
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *jwt.Manager, blacklist TokenBlacklist) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		blacklist:  blacklist,
	}
}

// RequireAuth 要求登录
// 使用方式：
//
//	authorized := r.Group("/api/v1")
//	authorized.Use(authMiddleware.RequireAuth())
//	authorized.POST("/cart/checkout", checkoutHandler.Checkout)
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. 从Header提取Token
		// 格式：Authorization: Bearer <token>
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		// 2. 解析Token格式
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			response.Fail(c, apperrors.ErrCodeInvalidToken, apperrors.ReasonUnauthorized, "Token格式错误")
			c.Abort()
			return
		}

		tokenString := parts[1]

		// 3. 检查Token是否在黑名单中（读者已注销或Token被强制失效）
		isBlacklisted, err := m.blacklist.IsInBlacklist(c.Request.Context(), tokenString)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if isBlacklisted {
			response.Fail(c, apperrors.ErrCodeTokenExpired, apperrors.ReasonUnauthorized, "Token已失效，请重新登录")
			c.Abort()
			return
		}

		// 4. 验证Token并解析Claims
		claims, err := m.jwtManager.Parse(tokenString)
		if err != nil {
			response.Error(c, err) // ErrTokenExpired、ErrInvalidToken
			c.Abort()
			return
		}

		// 5. 将身份注入到Context
		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyRole, claims.Role)
		c.Set(ContextKeyToken, tokenString)
		c.Set(ContextKeyClaims, claims)

		c.Next()
	}
}

// =========================================
// Context辅助函数（供Handler使用）
// =========================================

// GetUserID 从Context获取当前登录读者ID,未登录返回0
func GetUserID(c *gin.Context) uint {
	if userID, exists := c.Get(ContextKeyUserID); exists {
		if uid, ok := userID.(uint); ok {
			return uid
		}
	}
	return 0
}

// GetRole 从Context获取角色
func GetRole(c *gin.Context) string {
	return c.GetString(ContextKeyRole)
}

// GetToken 当前请求使用的原始Token
func GetToken(c *gin.Context) string {
	return c.GetString(ContextKeyToken)
}

// GetClaims 当前请求的Claims
func GetClaims(c *gin.Context) *jwt.Claims {
	if v, exists := c.Get(ContextKeyClaims); exists {
		if claims, ok := v.(*jwt.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetPermission 把Context中的身份转换为流通引擎使用的Permission
// 未登录时返回零值,用例会拒绝(UNAUTHORIZED)
func GetPermission(c *gin.Context) circulation.Permission {
	return circulation.Permission{
		UserID: GetUserID(c),
		Role:   circulation.ParseRole(GetRole(c)),
	}
}
