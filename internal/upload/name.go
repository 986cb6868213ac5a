package upload

import (
	"fmt"
	"path"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// SanitizeName 生成安全且唯一的文件名：<折叠后的小写基名>-<毫秒时间戳><小写扩展名>
//
// 例如 "Résumé Photo.PNG" -> "resume-photo-1700000000000.png"
func SanitizeName(original string, now time.Time) string {
	name := path.Base(strings.ReplaceAll(original, `\`, "/"))
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)

	return fmt.Sprintf("%s-%d%s", slugify(base), now.UnixMilli(), cleanExt(ext))
}

// fold 去掉变音符号（é -> e），无法转换时原样返回
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// slugify 折叠后转小写，非 [a-z0-9] 字符逐个替换为 '-'
func slugify(s string) string {
	s = strings.ToLower(fold(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}

func cleanExt(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	var b strings.Builder
	for _, r := range ext {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return "." + b.String()
}
