package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CookieName 会话 cookie 名称
const CookieName = "session"

// Session 客户端持有的会话声明，不在服务端保存
//
// 时间精度为毫秒（UTC），保证编码后解码得到相同的值
type Session struct {
	Authenticated bool      `json:"authenticated"`
	Username      string    `json:"username"`
	Created       time.Time `json:"created"`
	Expires       time.Time `json:"expires"`
}

// NewSession 创建一个已认证的会话
func NewSession(username string, now time.Time, ttl time.Duration) Session {
	created := now.UTC().Truncate(time.Millisecond)
	return Session{
		Authenticated: true,
		Username:      username,
		Created:       created,
		Expires:       created.Add(ttl),
	}
}

// Expired 判断会话在 now 时刻是否已过期，仅 now < Expires 时有效
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.Expires)
}

type sessionClaims struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username"`
	Created       int64  `json:"created"`
	Expires       int64  `json:"expires"`
	jwt.RegisteredClaims
}

// Codec 会话与 cookie 值之间的编解码（HS256 签名）
type Codec struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

// NewCodec 创建编解码器；secret 为空时每个进程随机生成，重启后旧会话失效
func NewCodec(secret []byte, ttl time.Duration, secure bool) (*Codec, error) {
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
	}
	return &Codec{secret: secret, ttl: ttl, secure: secure}, nil
}

// TTL 会话有效期
func (c *Codec) TTL() time.Duration { return c.ttl }

// Encode 将会话签名为 cookie 值
func (c *Codec) Encode(s Session) (string, error) {
	claims := sessionClaims{
		Authenticated: s.Authenticated,
		Username:      s.Username,
		Created:       s.Created.UnixMilli(),
		Expires:       s.Expires.UnixMilli(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   s.Username,
			IssuedAt:  jwt.NewNumericDate(s.Created),
			ExpiresAt: jwt.NewNumericDate(s.Expires),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(c.secret)
}

// Decode 解析 cookie 值；截断、篡改或任意垃圾输入均返回 nil
//
// 过期不在此处判断，由 Service 决定会话状态
func (c *Codec) Decode(token string) *Session {
	if token == "" {
		return nil
	}
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithoutClaimsValidation())
	if err != nil || !parsed.Valid {
		return nil
	}
	return &Session{
		Authenticated: claims.Authenticated,
		Username:      claims.Username,
		Created:       time.UnixMilli(claims.Created).UTC(),
		Expires:       time.UnixMilli(claims.Expires).UTC(),
	}
}

// Cookie 构造会话 cookie
func (c *Codec) Cookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(c.ttl / time.Second),
	}
}

// ClearCookie 构造立即过期的 cookie，用于登出
func (c *Codec) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	}
}
