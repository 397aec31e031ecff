package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 全局配置结构
// 设计说明：使用Viper管理配置，支持YAML文件、环境变量覆盖
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	JWT         JWTConfig         `mapstructure:"jwt"`
	Log         LogConfig         `mapstructure:"log"`
	RabbitMQ    RabbitMQConfig    `mapstructure:"rabbitmq"`
	Tracing     TracingConfig     `mapstructure:"tracing"`
	Circulation CirculationConfig `mapstructure:"circulation"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"` // debug | release | test
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	Charset         string        `mapstructure:"charset"`
	ParseTime       bool          `mapstructure:"parse_time"`
	Loc             string        `mapstructure:"loc"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN 生成MySQL连接字符串
// 格式：user:password@tcp(host:port)/dbname?charset=utf8mb4&parseTime=True&loc=UTC
// 注意：loc参数需要URL编码
func (d DatabaseConfig) DSN() string {
	loc := url.QueryEscape(d.Loc)
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.Charset, d.ParseTime, loc)
}

type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr 返回Redis地址
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig 统一认证服务的令牌参数
// TokenTTL只影响本地签发(联调用),校验以令牌里的exp为准
type JWTConfig struct {
	Secret   string        `mapstructure:"secret"`
	Issuer   string        `mapstructure:"issuer"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
	Leeway   time.Duration `mapstructure:"leeway"`
}

type LogConfig struct {
	Level        string `mapstructure:"level"`  // debug | info | warn | error
	Format       string `mapstructure:"format"` // console | json
	Output       string `mapstructure:"output"` // stdout | stderr | /path/to/file
	EnableCaller bool   `mapstructure:"enable_caller"`
}

// RabbitMQConfig 预约到书通知使用的消息队列
// URL为空时不发送通知
type RabbitMQConfig struct {
	URL          string `mapstructure:"url"`
	Exchange     string `mapstructure:"exchange"`
	ExchangeType string `mapstructure:"exchange_type"`
}

// TracingConfig 链路追踪
type TracingConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	ServiceName  string `mapstructure:"service_name"`
	CollectorURL string `mapstructure:"collector_url"` // OTLP gRPC地址,如localhost:4317
}

// CirculationConfig 流通规则
type CirculationConfig struct {
	MaxActiveLoans           int           `mapstructure:"max_active_loans"` // 0表示不限制
	MaxRenewals              int           `mapstructure:"max_renewals"`     // 0表示不限制
	RenewalPeriod            time.Duration `mapstructure:"renewal_period"`
	AllocationRetries        int           `mapstructure:"allocation_retries"`
	ReservationSweepInterval time.Duration `mapstructure:"reservation_sweep_interval"`
	ReservationSweepBatch    int           `mapstructure:"reservation_sweep_batch"`
	IdempotencyTTL           time.Duration `mapstructure:"idempotency_ttl"`
}

// Load 加载配置文件
// 支持：
// 1. 默认加载config/config.yaml
// 2. 通过环境变量LIBRARY_ENV指定环境（如config.prod.yaml）
// 3. 环境变量覆盖（如LIBRARY_DATABASE_PASSWORD → database.password）
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	if env := os.Getenv("LIBRARY_ENV"); env != "" {
		v.SetConfigName("config." + env)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	v.SetEnvPrefix("LIBRARY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults 配置文件缺省时的默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("jwt.issuer", "library-auth")
	v.SetDefault("jwt.token_ttl", 2*time.Hour)
	v.SetDefault("rabbitmq.exchange", "library.events")
	v.SetDefault("rabbitmq.exchange_type", "topic")
	v.SetDefault("tracing.service_name", "library-circulation")
	v.SetDefault("circulation.max_active_loans", 5)
	v.SetDefault("circulation.max_renewals", 2)
	v.SetDefault("circulation.renewal_period", 7*24*time.Hour)
	v.SetDefault("circulation.allocation_retries", 3)
	v.SetDefault("circulation.reservation_sweep_interval", time.Hour)
	v.SetDefault("circulation.reservation_sweep_batch", 100)
	v.SetDefault("circulation.idempotency_ttl", 24*time.Hour)
}

// validate 配置校验
func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("无效的服务端口: %d", cfg.Server.Port)
	}

	if cfg.JWT.Secret == "your-secret-key-change-in-production" && cfg.Server.Mode == "release" {
		return fmt.Errorf("生产环境必须修改JWT密钥")
	}

	c := cfg.Circulation
	if c.MaxActiveLoans < 0 || c.MaxRenewals < 0 {
		return fmt.Errorf("借阅上限和续借次数不能为负数")
	}
	if c.RenewalPeriod <= 0 {
		return fmt.Errorf("无效的续借周期: %s", c.RenewalPeriod)
	}
	if c.AllocationRetries < 1 {
		return fmt.Errorf("分配重试次数至少为1: %d", c.AllocationRetries)
	}

	return nil
}
