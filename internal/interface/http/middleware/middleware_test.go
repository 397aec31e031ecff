package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/domain/circulation"
	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/infrastructure/persistence/redis"
	apperrors "github.com/Pedrooaj/biblioteca-unifor-backend/pkg/errors"
	"github.com/Pedrooaj/biblioteca-unifor-backend/pkg/jwt"
	"github.com/Pedrooaj/biblioteca-unifor-backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubBlacklist struct {
	revoked map[string]bool
	err     error
}

func (b stubBlacklist) IsInBlacklist(_ context.Context, token string) (bool, error) {
	return b.revoked[token], b.err
}

type stubStore struct {
	saved  map[string]redis.CachedResponse
	getErr error
}

func (s *stubStore) Get(_ context.Context, key string) (*redis.CachedResponse, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	if resp, ok := s.saved[key]; ok {
		return &resp, nil
	}
	return nil, nil
}

func (s *stubStore) Save(_ context.Context, key string, resp redis.CachedResponse, _ time.Duration) error {
	s.saved[key] = resp
	return nil
}

func codeOf(t *testing.T, w *httptest.ResponseRecorder) int {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Code
}

func TestRequireAuth(t *testing.T) {
	manager := jwt.NewManager("middleware-secret", time.Hour)
	token, err := manager.Issue(7, "librarian", time.Now())
	require.NoError(t, err)

	run := func(bl TokenBlacklist, header string) (*httptest.ResponseRecorder, *circulation.Permission) {
		var seen *circulation.Permission
		r := gin.New()
		r.GET("/p", NewAuthMiddleware(manager, bl).RequireAuth(), func(c *gin.Context) {
			p := GetPermission(c)
			seen = &p
			response.Success(c, nil)
		})
		req := httptest.NewRequest(http.MethodGet, "/p", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w, seen
	}

	t.Run("有效Token注入身份", func(t *testing.T) {
		w, perm := run(stubBlacklist{}, "Bearer "+token)
		assert.Equal(t, 0, codeOf(t, w))
		require.NotNil(t, perm)
		assert.Equal(t, uint(7), perm.UserID)
		assert.True(t, perm.IsLibrarian())
	})

	t.Run("缺少Token", func(t *testing.T) {
		w, perm := run(stubBlacklist{}, "")
		assert.Equal(t, apperrors.ErrCodeUnauthorized, codeOf(t, w))
		assert.Nil(t, perm)
	})

	t.Run("格式错误", func(t *testing.T) {
		w, _ := run(stubBlacklist{}, token)
		assert.Equal(t, apperrors.ErrCodeInvalidToken, codeOf(t, w))
	})

	t.Run("已注销", func(t *testing.T) {
		w, perm := run(stubBlacklist{revoked: map[string]bool{token: true}}, "Bearer "+token)
		assert.Equal(t, apperrors.ErrCodeTokenExpired, codeOf(t, w))
		assert.Nil(t, perm)
	})

	t.Run("黑名单不可用", func(t *testing.T) {
		w, perm := run(stubBlacklist{err: apperrors.Wrap(errors.New("dial tcp"), "检查黑名单失败")}, "Bearer "+token)
		assert.Equal(t, apperrors.ErrCodeInternal, codeOf(t, w))
		assert.Nil(t, perm)
	})

	t.Run("签名不匹配", func(t *testing.T) {
		other, err := jwt.NewManager("other-secret", time.Hour).Issue(7, "reader", time.Now())
		require.NoError(t, err)
		w, _ := run(stubBlacklist{}, "Bearer "+other)
		assert.Equal(t, apperrors.ErrCodeInvalidToken, codeOf(t, w))
	})
}

func TestGetPermissionWithoutAuth(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	perm := GetPermission(c)
	assert.False(t, perm.Valid())
	assert.Equal(t, circulation.RoleReader, perm.Role)
	assert.Nil(t, GetClaims(c))
	assert.Empty(t, GetToken(c))
}

func idempotentEngine(store IdempotencyStore, handler gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.POST("/checkout", func(c *gin.Context) {
		c.Set(ContextKeyUserID, uint(1))
		c.Next()
	}, Idempotency(store, time.Minute), handler)
	return r
}

func postWithKey(r *gin.Engine, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotency(t *testing.T) {
	t.Run("重试返回缓存结果", func(t *testing.T) {
		store := &stubStore{saved: map[string]redis.CachedResponse{}}
		calls := 0
		r := idempotentEngine(store, func(c *gin.Context) {
			calls++
			response.Success(c, gin.H{"call": calls})
		})

		first := postWithKey(r, "k1")
		second := postWithKey(r, "k1")

		assert.Equal(t, 1, calls)
		assert.Equal(t, first.Body.String(), second.Body.String())
		assert.Equal(t, "true", second.Header().Get(IdempotencyReplayHeader))
		assert.Contains(t, store.saved, "1:/checkout:k1")
	})

	t.Run("没有key不缓存", func(t *testing.T) {
		store := &stubStore{saved: map[string]redis.CachedResponse{}}
		calls := 0
		r := idempotentEngine(store, func(c *gin.Context) {
			calls++
			response.Success(c, nil)
		})

		postWithKey(r, "")
		postWithKey(r, "")
		assert.Equal(t, 2, calls)
		assert.Empty(t, store.saved)
	})

	t.Run("存储错误不缓存", func(t *testing.T) {
		store := &stubStore{saved: map[string]redis.CachedResponse{}}
		calls := 0
		r := idempotentEngine(store, func(c *gin.Context) {
			calls++
			response.Error(c, apperrors.Wrap(errors.New("deadlock"), "结算失败"))
		})

		postWithKey(r, "k2")
		postWithKey(r, "k2")
		assert.Equal(t, 2, calls)
		assert.Empty(t, store.saved)
	})

	t.Run("业务失败也缓存", func(t *testing.T) {
		store := &stubStore{saved: map[string]redis.CachedResponse{}}
		r := idempotentEngine(store, func(c *gin.Context) {
			response.Error(c, apperrors.ErrInvalidDueDate)
		})

		postWithKey(r, "k3")
		assert.Contains(t, store.saved, "1:/checkout:k3")
	})

	t.Run("Redis故障时放行", func(t *testing.T) {
		store := &stubStore{saved: map[string]redis.CachedResponse{}, getErr: errors.New("connection refused")}
		calls := 0
		r := idempotentEngine(store, func(c *gin.Context) {
			calls++
			response.Success(c, nil)
		})

		w := postWithKey(r, "k4")
		assert.Equal(t, 1, calls)
		assert.Equal(t, 0, codeOf(t, w))
	})

	t.Run("key过长", func(t *testing.T) {
		store := &stubStore{saved: map[string]redis.CachedResponse{}}
		calls := 0
		r := idempotentEngine(store, func(c *gin.Context) {
			calls++
		})

		w := postWithKey(r, strings.Repeat("x", maxIdempotencyKeyLen+1))
		assert.Equal(t, 0, calls)
		assert.Equal(t, apperrors.ErrCodeInvalidParams, codeOf(t, w))
	})
}

func TestMetricsAndLoggerPassThrough(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(), Metrics())
	r.GET("/ok", func(c *gin.Context) { response.Success(c, nil) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
