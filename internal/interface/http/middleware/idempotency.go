package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/infrastructure/persistence/redis"
	apperrors "github.com/Pedrooaj/biblioteca-unifor-backend/pkg/errors"
	"github.com/Pedrooaj/biblioteca-unifor-backend/pkg/response"
)

const (
	// IdempotencyKeyHeader 客户端传入的幂等键
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayHeader 响应来自缓存时设置为true
	IdempotencyReplayHeader = "X-Idempotency-Replayed"

	maxIdempotencyKeyLen = 128
)

// IdempotencyStore 幂等响应存储(redis.IdempotencyStore实现)
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (*redis.CachedResponse, error)
	Save(ctx context.Context, key string, resp redis.CachedResponse, ttl time.Duration) error
}

// bodyRecorder 在写给客户端的同时保留一份响应体
type bodyRecorder struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency 幂等中间件(用于书篮结算)
//
// 流程：
// 1. 没有Idempotency-Key直接放行
// 2. 命中缓存:原样返回第一次的响应,不再执行Handler
// 3. 未命中:执行Handler,把可缓存的响应写入Redis
//
// Redis故障时放行(fail open),结算本身的正确性由数据库保证。
// 幂等键按读者和路由隔离,不同读者使用相同的key互不影响。
func Idempotency(store IdempotencyStore, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLen {
			response.Error(c, apperrors.NewReason(apperrors.ErrCodeInvalidParams, apperrors.ReasonInvalidParams, "Idempotency-Key过长"))
			c.Abort()
			return
		}

		scoped := fmt.Sprintf("%d:%s:%s", GetUserID(c), c.FullPath(), key)
		ctx := c.Request.Context()

		cached, err := store.Get(ctx, scoped)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("读取幂等键失败,按普通请求处理")
			c.Next()
			return
		}
		if cached != nil {
			log.Info().Str("key", key).Uint("user_id", GetUserID(c)).Msg("幂等键命中,返回缓存结果")
			c.Header(IdempotencyReplayHeader, "true")
			c.Data(cached.StatusCode, "application/json; charset=utf-8", cached.Body)
			c.Abort()
			return
		}

		rec := &bodyRecorder{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = rec

		c.Next()

		if !cacheable(rec.Status(), rec.body.Bytes()) {
			return
		}
		if err := store.Save(ctx, scoped, redis.CachedResponse{
			StatusCode: rec.Status(),
			Body:       rec.body.Bytes(),
		}, ttl); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("保存幂等键失败")
		}
	}
}

// cacheable 服务端故障(HTTP 5xx或业务码5xxxx)不缓存,允许客户端重试
func cacheable(status int, body []byte) bool {
	if status >= 500 || len(body) == 0 {
		return false
	}
	var resp response.Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return false
	}
	return resp.Code < apperrors.ErrCodeInternal
}
