package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Pedrooaj/biblioteca-unifor-backend/internal/infrastructure/config"
)

// keyPrefix 本服务写入的所有key都带这个前缀,和其他服务共用实例时互不干扰
const keyPrefix = "library:"

const pingTimeout = 3 * time.Second

// NewClient 按配置建立连接池,启动时Ping一次,连不上直接返回错误
func NewClient(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(optionsFrom(cfg.Redis))

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("连接Redis %s 失败: %w", cfg.Redis.Addr(), err)
	}

	log.Info().
		Str("addr", cfg.Redis.Addr()).
		Int("db", cfg.Redis.DB).
		Int("pool_size", cfg.Redis.PoolSize).
		Msg("Redis已连接")
	return client, nil
}

func optionsFrom(c config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:         c.Addr(),
		Password:     c.Password,
		DB:           c.DB,
		PoolSize:     c.PoolSize,
		MinIdleConns: c.MinIdleConns,
		DialTimeout:  c.DialTimeout,
		ReadTimeout:  c.ReadTimeout,
		WriteTimeout: c.WriteTimeout,
	}
}
