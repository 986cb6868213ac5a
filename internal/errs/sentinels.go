// Package errs 定义跨层共用的哨兵错误，API 层据此映射 HTTP 状态码
package errs

import "errors"

var (
	// ErrValidation 必填字段缺失或格式错误
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized 没有有效的管理员会话或凭据错误
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound 请求的 slug 或 section 不存在
	ErrNotFound = errors.New("not found")

	// ErrConflict 新建或改名时 slug 重复
	ErrConflict = errors.New("conflict")

	// ErrCorruptEntity 已保存的记录无法解析
	ErrCorruptEntity = errors.New("corrupt entity")

	// ErrStorage 底层文件读写或解码失败
	ErrStorage = errors.New("storage failure")
)

// Message 返回可直接展示给前端的错误文本（去掉哨兵前缀）
func Message(err error) string {
	if err == nil {
		return ""
	}
	var m interface{ UserMessage() string }
	if errors.As(err, &m) {
		return m.UserMessage()
	}
	return err.Error()
}

// userError 携带哨兵与面向用户的文本
type userError struct {
	kind error
	msg  string
}

func (e *userError) Error() string       { return e.kind.Error() + ": " + e.msg }
func (e *userError) Unwrap() error       { return e.kind }
func (e *userError) UserMessage() string { return e.msg }

// New 构造一个属于 kind 类别、带用户提示文本的错误
func New(kind error, msg string) error {
	return &userError{kind: kind, msg: msg}
}
