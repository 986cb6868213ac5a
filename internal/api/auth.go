package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"PortfolioCMS/internal/auth"
	"PortfolioCMS/internal/errs"
	"PortfolioCMS/internal/metrics"
)

// AuthHandler 认证相关的处理器
type AuthHandler struct {
	authService *auth.Service
	metrics     *metrics.Metrics
}

// NewAuthHandler 创建认证处理器实例
func NewAuthHandler(authService *auth.Service, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		metrics:     m,
	}
}

// HandleLogin 处理登录请求
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		h.metrics.Login("invalid")
		writeError(w, r, errInvalidBody, "")
		return
	}

	_, cookie, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrValidation), errors.Is(err, errs.ErrUnauthorized):
			h.metrics.Login("invalid")
		default:
			h.metrics.Login("error")
		}
		writeError(w, r, err, "Server error occurred while processing login request")
		return
	}
	h.metrics.Login("success")

	// 设置会话 cookie
	http.SetCookie(w, cookie)

	writeJSON(w, http.StatusOK, auth.LoginResponse{
		Success:    true,
		Message:    "Login successful",
		RedirectTo: auth.RedirectAfterLogin,
	})
}

// HandleLogout 处理登出请求，总是成功
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.authService.Logout())

	writeJSON(w, http.StatusOK, auth.LoginResponse{
		Success:    true,
		Message:    "Logged out successfully",
		RedirectTo: auth.RedirectAfterLogout,
	})
}

// HandleSession 查询当前会话状态
func (h *AuthHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	resp := auth.SessionResponse{}
	if sess, ok := h.authService.Authenticate(r); ok {
		username := sess.Username
		resp.Authenticated = true
		resp.Username = &username
	}
	writeJSON(w, http.StatusOK, resp)
}

// RequireAuth 未登录时返回 401，不调用 next
func (h *AuthHandler) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := h.authService.Authenticate(r); !ok {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Success: false, Message: "Unauthorized"})
			return
		}
		next(w, r)
	}
}
