package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"PortfolioCMS/internal/errs"
	"PortfolioCMS/internal/log"
)

// maxBodySize JSON 请求体上限
const maxBodySize = 8 << 20

var errInvalidBody = errs.New(errs.ErrValidation, "Invalid request body")

// errorResponse 统一错误响应
type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// writeJSON 输出 JSON 响应
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnf(log.Fields{"error": err}, "写入响应失败")
	}
}

// statusFor 错误类别到 HTTP 状态码
func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError 将错误转换为 {success:false, message}；5xx 只返回 fallback 文本，原因写入日志
func writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := statusFor(err)
	msg := errs.Message(err)
	if status == http.StatusInternalServerError {
		log.Errorf(log.Fields{"error": err, "path": r.URL.Path, "requestId": RequestID(r.Context())}, "%s", fallback)
		msg = fallback
	}
	writeJSON(w, status, errorResponse{Success: false, Message: msg})
}

// readJSONObject 读取请求体并确认是 JSON 对象
func readJSONObject(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		return nil, errInvalidBody
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
		return nil, errInvalidBody
	}
	return trimmed, nil
}

// decodeInto 将 JSON 对象合并到 v 上
func decodeInto(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return errs.New(errs.ErrValidation, "Invalid request body")
	}
	return nil
}
