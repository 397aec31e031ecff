package jwt

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/Pedrooaj/biblioteca-unifor-backend/pkg/errors"
)

// DefaultIssuer 统一认证服务签发Token时使用的iss
const DefaultIssuer = "library-auth"

// Manager 读者身份令牌
//
// 令牌由统一认证服务签发,本服务只校验签名、签发方和有效期,
// 再从中取出读者ID和角色。Issue仅供联调和测试使用。
type Manager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	leeway time.Duration
}

// Option 可选配置
type Option func(*Manager)

// WithIssuer 指定签发方,空字符串时不校验iss
func WithIssuer(issuer string) Option {
	return func(m *Manager) { m.issuer = issuer }
}

// WithLeeway 允许的时钟偏差
func WithLeeway(d time.Duration) Option {
	return func(m *Manager) { m.leeway = d }
}

func NewManager(secret string, ttl time.Duration, opts ...Option) *Manager {
	m := &Manager{
		secret: []byte(secret),
		issuer: DefaultIssuer,
		ttl:    ttl,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Claims 令牌中携带的读者身份
// Role: reader | librarian
type Claims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Remaining 距离过期还剩多久,没有exp时返回0
func (c *Claims) Remaining(now time.Time) time.Duration {
	if c == nil || c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Time.Sub(now)
}

// Issue 签发一个访问令牌
func (m *Manager) Issue(userID uint, role string, now time.Time) (string, error) {
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", apperrors.Wrap(err, "签发Token失败")
	}
	return signed, nil
}

// Parse 校验令牌并返回身份
// 只接受HS256;过期返回ErrTokenExpired,其余任何问题都是ErrInvalidToken
func (m *Manager) Parse(raw string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(m.leeway),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, opts...)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, apperrors.ErrTokenExpired
	case err != nil:
		return nil, apperrors.ErrInvalidToken
	case claims.UserID == 0:
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}
