package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/Pedrooaj/biblioteca-unifor-backend/pkg/errors"
)

// SessionStore 已注销Token的黑名单
//
// 令牌本身无状态,注销后在剩余有效期内记一条 library:revoked:{sha256(token)},
// 到期由Redis自动清理。key里只存摘要,不落原始Token。
type SessionStore struct {
	client *redis.Client
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// AddToBlacklist 注销Token,ttl<=0说明Token已经过期,不用再记
func (s *SessionStore) AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, revokedKey(token), 1, ttl).Err(); err != nil {
		return apperrors.Wrap(err, "注销Token失败")
	}
	return nil
}

func (s *SessionStore) IsInBlacklist(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedKey(token)).Result()
	if err != nil {
		return false, apperrors.Wrap(err, "检查Token状态失败")
	}
	return n > 0, nil
}

func revokedKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return keyPrefix + "revoked:" + hex.EncodeToString(sum[:])
}
