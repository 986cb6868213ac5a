package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"PortfolioCMS/internal/errs"
	"PortfolioCMS/internal/models"
)

const delimiter = "---"

// Metadata front matter 中的键值
//
// 值类型：string（标量）、[]string（数组键）、bool（布尔键）、json.RawMessage（JSON 键），
// 未在 Schema 中声明的键按 JSON 优先解析为 any
type Metadata map[string]any

// Schema 描述一类实体的 front matter 键：输出顺序与各键的类型
type Schema struct {
	Order  []string
	Arrays map[string]bool
	Bools  map[string]bool
	JSON   map[string]bool
}

func (s Schema) known(key string) bool {
	for _, k := range s.Order {
		if k == key {
			return true
		}
	}
	return false
}

// Parse 拆分 front matter 与正文并按 Schema 解析各键；只有头部的 CRLF 被视为换行，正文按原样返回
func (s Schema) Parse(text string) (Metadata, string, error) {
	first, rest, found := strings.Cut(text, "\n")
	if !found || strings.TrimSuffix(first, "\r") != delimiter {
		return nil, "", fmt.Errorf("%w: missing front matter", errs.ErrCorruptEntity)
	}

	meta := Metadata{}
	for {
		raw, tail, found := strings.Cut(rest, "\n")
		line := strings.TrimSuffix(raw, "\r")
		if !found && line != delimiter {
			return nil, "", fmt.Errorf("%w: unterminated front matter", errs.ErrCorruptEntity)
		}
		rest = tail
		if line == delimiter {
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, "", fmt.Errorf("%w: malformed front matter line %q", errs.ErrCorruptEntity, line)
		}
		key = strings.TrimSpace(key)
		v, err := s.parseValue(key, strings.TrimSpace(value))
		if err != nil {
			return nil, "", err
		}
		meta[key] = v
	}

	// 正文与 front matter 之间的一个空行属于格式本身
	body, ok := strings.CutPrefix(rest, "\n")
	if !ok {
		body = strings.TrimPrefix(rest, "\r\n")
	}
	return meta, body, nil
}

func (s Schema) parseValue(key, raw string) (any, error) {
	switch {
	case s.Arrays[key]:
		return []string(models.ParseStringList(raw)), nil
	case s.Bools[key]:
		return raw == "true", nil
	case s.JSON[key]:
		if raw == "" {
			return json.RawMessage("{}"), nil
		}
		if !json.Valid([]byte(raw)) {
			return nil, fmt.Errorf("%w: key %q is not valid JSON", errs.ErrCorruptEntity, key)
		}
		return json.RawMessage(raw), nil
	case s.known(key):
		if strings.HasPrefix(raw, `"`) {
			var str string
			if err := json.Unmarshal([]byte(raw), &str); err == nil {
				return str, nil
			}
		}
		return raw, nil
	default:
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err == nil {
			return v, nil
		}
		return raw, nil
	}
}

// Render 是 Parse 的逆操作：先按 Order 输出已知键，再按字典序输出其余键
func (s Schema) Render(meta Metadata, body string) (string, error) {
	var b strings.Builder
	b.WriteString(delimiter + "\n")

	write := func(key string) error {
		v, err := s.renderValue(key, meta[key])
		if err != nil {
			return fmt.Errorf("front matter key %q: %w", key, err)
		}
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(v)
		b.WriteString("\n")
		return nil
	}

	for _, key := range s.Order {
		if _, ok := meta[key]; !ok {
			continue
		}
		if err := write(key); err != nil {
			return "", err
		}
	}

	extra := make([]string, 0, len(meta))
	for key := range meta {
		if !s.known(key) {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		if strings.ContainsAny(key, ":\n") || strings.TrimSpace(key) != key || key == "" {
			return "", fmt.Errorf("%w: unsupported front matter key %q", errs.ErrValidation, key)
		}
		if err := write(key); err != nil {
			return "", err
		}
	}

	b.WriteString(delimiter + "\n\n")
	b.WriteString(body)
	return b.String(), nil
}

func (s Schema) renderValue(key string, v any) (string, error) {
	switch {
	case s.Arrays[key]:
		list, _ := v.([]string)
		if list == nil {
			list = []string{}
		}
		out, err := json.Marshal(list)
		return string(out), err
	case s.Bools[key]:
		if b, _ := v.(bool); b {
			return "true", nil
		}
		return "false", nil
	case s.JSON[key]:
		raw, ok := v.(json.RawMessage)
		if !ok {
			var err error
			if raw, err = json.Marshal(v); err != nil {
				return "", err
			}
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return "", err
		}
		return buf.String(), nil
	case s.known(key):
		str, ok := v.(string)
		if !ok {
			str = fmt.Sprint(v)
		}
		if needsQuoting(str) {
			out, err := json.Marshal(str)
			return string(out), err
		}
		return str, nil
	default:
		out, err := json.Marshal(v)
		return string(out), err
	}
}

// needsQuoting 原样写出后无法被 Parse 还原的字符串
func needsQuoting(s string) bool {
	return strings.ContainsAny(s, "\r\n") ||
		strings.HasPrefix(s, `"`) ||
		strings.TrimSpace(s) != s
}

// String 读取标量键，缺失时返回空字符串
func (m Metadata) String(key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// Strings 读取数组键，缺失时返回空切片
func (m Metadata) Strings(key string) []string {
	if v, ok := m[key].([]string); ok {
		return v
	}
	return []string{}
}

// Bool 读取布尔键
func (m Metadata) Bool(key string) bool {
	v, _ := m[key].(bool)
	return v
}

// Time 读取 RFC 3339 时间标量，缺失或为空时返回零值
func (m Metadata) Time(key string) (time.Time, error) {
	s := m.String(key)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: key %q: %w", errs.ErrCorruptEntity, key, err)
	}
	return t.UTC(), nil
}

// Raw 读取 JSON 键
func (m Metadata) Raw(key string) json.RawMessage {
	v, _ := m[key].(json.RawMessage)
	return v
}

// Extra 返回 Schema 未声明的键；没有时返回 nil
func (s Schema) Extra(meta Metadata) map[string]any {
	var out map[string]any
	for k, v := range meta {
		if s.known(k) {
			continue
		}
		if out == nil {
			out = map[string]any{}
		}
		out[k] = v
	}
	return out
}

// FormatTime 时间标量的写出格式，零值写为空
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
