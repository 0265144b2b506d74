package binding

import (
	"regexp"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate 将文本中的 ${key} 替换为 lookup 返回的值。
// lookup 为空或 key 不存在时保留原占位符。
func Interpolate(text string, lookup func(key string) (string, bool)) string {
	if lookup == nil {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		key := strings.TrimSpace(groups[1])
		if key == "" {
			return match
		}
		if val, ok := lookup(key); ok {
			return val
		}
		return match
	})
}

// MapLookup 把普通 map 包装为 Interpolate 使用的 lookup。
func MapLookup(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}
