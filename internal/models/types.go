package models

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"PortfolioCMS/internal/errs"
)

// StringList 字符串数组，兼容前端提交的 JSON 字符串或逗号分隔字符串
type StringList []string

// ParseStringList 先按 JSON 数组解析，失败则按逗号切分并去除空白
func ParseStringList(s string) StringList {
	s = strings.TrimSpace(s)
	if s == "" {
		return StringList{}
	}
	var arr []string
	if err := json.Unmarshal([]byte(s), &arr); err == nil {
		if arr == nil {
			return StringList{}
		}
		return arr
	}
	parts := strings.Split(s, ",")
	out := make(StringList, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// MarshalJSON nil 输出为 []
func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// UnmarshalJSON 支持数组或字符串两种形态
func (l *StringList) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		if arr == nil {
			arr = []string{}
		}
		*l = arr
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: expected a list of strings", errs.ErrValidation)
	}
	*l = ParseStringList(s)
	return nil
}

// FlexBool 布尔值，兼容 "true"/"false" 字符串；除字面量 "true" 外均为 false
type FlexBool bool

// UnmarshalJSON 支持 bool 或字符串
func (b *FlexBool) UnmarshalJSON(data []byte) error {
	var v bool
	if err := json.Unmarshal(data, &v); err == nil {
		*b = FlexBool(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: expected a boolean", errs.ErrValidation)
	}
	*b = FlexBool(s == "true")
	return nil
}

// Extra 扩展字段：未建模的 JSON 键原样保存并在输出时平铺回对象
type Extra map[string]any

// marshalInline 将结构体与扩展字段合并为一个 JSON 对象，已建模字段优先
func marshalInline(v any, extra Extra) ([]byte, error) {
	base, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return base, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(base, &m); err != nil {
		return nil, err
	}
	for k, val := range extra {
		if _, known := m[k]; known {
			continue
		}
		raw, err := json.Marshal(val)
		if err != nil {
			return nil, fmt.Errorf("extension field %q: %w", k, err)
		}
		m[k] = raw
	}
	return json.Marshal(m)
}

// unmarshalInline 解析已建模字段，其余键合并进 extra（合并语义，便于 PUT 局部更新）
func unmarshalInline(data []byte, v any, extra *Extra) error {
	if err := json.Unmarshal(data, v); err != nil {
		return err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	known := jsonKeys(reflect.TypeOf(v).Elem())
	for k, raw := range m {
		if known[k] {
			continue
		}
		var val any
		if err := json.Unmarshal(raw, &val); err != nil {
			return err
		}
		if *extra == nil {
			*extra = Extra{}
		}
		(*extra)[k] = val
	}
	return nil
}

var keyCache sync.Map // reflect.Type -> map[string]bool

// jsonKeys 返回结构体所有 JSON 键名（含 "-" 忽略的字段以外）
func jsonKeys(t reflect.Type) map[string]bool {
	if cached, ok := keyCache.Load(t); ok {
		return cached.(map[string]bool)
	}
	keys := make(map[string]bool, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if name == "" {
			name = f.Name
		}
		keys[name] = true
	}
	keyCache.Store(t, keys)
	return keys
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidSlug 小写字母数字，以单个连字符分隔
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// validateRequired 标题与 slug 必填，slug 需满足格式
func validateRequired(title, slug string) error {
	if strings.TrimSpace(title) == "" || slug == "" {
		return errs.New(errs.ErrValidation, "Title and slug are required")
	}
	if !ValidSlug(slug) {
		return errs.New(errs.ErrValidation, "Slug may only contain lowercase letters, numbers and single hyphens")
	}
	return nil
}

// Timestamp 服务端时间戳统一为毫秒精度的 UTC
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}
