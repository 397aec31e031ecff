package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedResponse 缓存的HTTP响应
type CachedResponse struct {
	StatusCode int    `json:"status_code"`
	Body       []byte `json:"body"`
}

// IdempotencyStore 幂等键存储
// 结算请求带Idempotency-Key时，第一次的响应写入Redis，重试直接返回缓存结果，
// 避免网络重试导致同一书篮被结算两次。
// Key设计：library:idempotency:{scope}:{key}
type IdempotencyStore struct {
	client *redis.Client
}

// NewIdempotencyStore 创建幂等键存储
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client}
}

// Get 读取缓存的响应,未命中返回nil, nil
func (s *IdempotencyStore) Get(ctx context.Context, key string) (*CachedResponse, error) {
	val, err := s.client.Get(ctx, idempotencyKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取幂等键失败: %w", err)
	}

	var resp CachedResponse
	if err := json.Unmarshal(val, &resp); err != nil {
		return nil, fmt.Errorf("解析缓存响应失败: %w", err)
	}
	return &resp, nil
}

// Save 保存响应
func (s *IdempotencyStore) Save(ctx context.Context, key string, resp CachedResponse, ttl time.Duration) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("序列化响应失败: %w", err)
	}
	return s.client.Set(ctx, idempotencyKey(key), data, ttl).Err()
}

func idempotencyKey(key string) string {
	return keyPrefix + "idempotency:" + key
}
