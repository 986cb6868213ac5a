package auth

// LoginRequest 登录请求结构
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse 登录 / 登出响应结构
type LoginResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	RedirectTo string `json:"redirectTo,omitempty"`
}

// SessionResponse 会话状态查询响应，未登录时 username 为 null
type SessionResponse struct {
	Authenticated bool    `json:"authenticated"`
	Username      *string `json:"username"`
}

// State 会话状态机
type State int

const (
	// Anonymous 无 cookie 或 cookie 无法解码
	Anonymous State = iota
	// Authenticated 有效的管理员会话
	Authenticated
	// Expired 会话已过期或身份不匹配
	Expired
)

func (s State) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case Expired:
		return "expired"
	default:
		return "anonymous"
	}
}

// 登录 / 登出后前端跳转地址
const (
	RedirectAfterLogin  = "/admin"
	RedirectAfterLogout = "/"
)
