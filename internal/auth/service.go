package auth

import (
	"fmt"
	"net/http"
	"time"

	"PortfolioCMS/internal/errs"
	"PortfolioCMS/internal/log"
)

var (
	// ErrMissingCredentials 用户名或密码为空
	ErrMissingCredentials = errs.New(errs.ErrValidation, "Username and password are required")
	// ErrInvalidCredentials 用户名不存在与密码错误使用同一提示，不泄露账户是否存在
	ErrInvalidCredentials = errs.New(errs.ErrUnauthorized, "Invalid username or password")
)

// Service 认证服务（Auth Gate）
type Service struct {
	creds *CredentialStore
	codec *Codec
	now   func() time.Time
}

// NewService 创建认证服务实例
func NewService(creds *CredentialStore, codec *Codec) *Service {
	return &Service{creds: creds, codec: codec, now: time.Now}
}

// Codec 返回会话编解码器
func (s *Service) Codec() *Codec { return s.codec }

// Login 校验凭据，成功时返回会话与已签名的 cookie
func (s *Service) Login(username, password string) (Session, *http.Cookie, error) {
	if username == "" || password == "" {
		return Session{}, nil, ErrMissingCredentials
	}

	ok, err := s.creds.Verify(username, password)
	if err != nil {
		return Session{}, nil, fmt.Errorf("verify credentials: %w", err)
	}
	if !ok {
		log.Warnf(log.Fields{"username": username}, "管理员登录失败")
		return Session{}, nil, ErrInvalidCredentials
	}

	sess := NewSession(username, s.now(), s.codec.TTL())
	token, err := s.codec.Encode(sess)
	if err != nil {
		return Session{}, nil, fmt.Errorf("encode session: %w", err)
	}
	log.Infof(log.Fields{"username": username}, "管理员登录成功")
	return sess, s.codec.Cookie(token), nil
}

// Logout 返回清除会话的 cookie；会话不在服务端保存，无需其他操作
func (s *Service) Logout() *http.Cookie {
	return s.codec.ClearCookie()
}

// State 计算会话所处的状态
func (s *Service) State(sess *Session) State {
	if sess == nil {
		return Anonymous
	}
	if !sess.Authenticated || sess.Username != s.creds.Username() || sess.Expired(s.now()) {
		return Expired
	}
	return Authenticated
}

// IsAuthenticated 会话已认证、身份匹配且未过期
func (s *Service) IsAuthenticated(sess *Session) bool {
	return s.State(sess) == Authenticated
}

// SessionFromRequest 从请求 cookie 中解码会话，不存在或无效时返回 nil
func (s *Service) SessionFromRequest(r *http.Request) *Session {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil
	}
	return s.codec.Decode(cookie.Value)
}

// Authenticate 请求是否携带有效的管理员会话
func (s *Service) Authenticate(r *http.Request) (*Session, bool) {
	sess := s.SessionFromRequest(r)
	return sess, s.IsAuthenticated(sess)
}
