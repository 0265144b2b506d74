package binding

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DateLayout 为日期类字段在报告中的显示格式。
const DateLayout = "2006-01-02"

// Fields 是一次报告生成的只读字段表，构造时复制调用方的数据。
type Fields struct {
	values map[string]any
}

// NewFields 复制 values 并返回只读字段表。
func NewFields(values map[string]any) Fields {
	cp := make(map[string]any, len(values))
	for k, v := range values {
		cp[k] = v
	}
	return Fields{values: cp}
}

// Get 返回原始值。
func (f Fields) Get(key string) (any, bool) {
	v, ok := f.values[key]
	return v, ok
}

// String 返回格式化后的字段值，缺失时为空串。
func (f Fields) String(key string) string {
	return Format(f.values[key])
}

// Present 判断字段是否存在且去除空白后非空。
func (f Fields) Present(key string) bool {
	return strings.TrimSpace(f.String(key)) != ""
}

// Truncated 返回按 max 截断后的字段值。
func (f Fields) Truncated(key string, max int) string {
	return Truncate(f.values[key], max)
}

// Keys 返回全部字段名（已排序）。
func (f Fields) Keys() []string {
	keys := make([]string, 0, len(f.values))
	for k := range f.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Lookup 供 Interpolate 使用，report.Filename 通过它读取 ci_no。
func (f Fields) Lookup(key string) (string, bool) {
	v, ok := f.values[key]
	if !ok {
		return "", false
	}
	return Format(v), true
}

// MarshalJSON 输出字段原值，便于调试与归档。
func (f Fields) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.values)
}

// UnmarshalJSON 从 JSON 对象读取字段；数字保持 json.Number 以避免精度丢失。
func (f *Fields) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var values map[string]any
	if err := dec.Decode(&values); err != nil {
		return err
	}
	*f = NewFields(values)
	return nil
}

// Format 将字段值转为显示文本：整数按十进制、浮点取最短表示、时间按 DateLayout。
func Format(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case int:
		return strconv.Itoa(v)
	case int8, int16, int32, int64:
		return fmt.Sprintf("%d", v)
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.Format(DateLayout)
	case *time.Time:
		if v == nil || v.IsZero() {
			return ""
		}
		return v.Format(DateLayout)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Truncate 将值格式化后限制在 max 个字符（按 rune 计）内。
// 超长时保留前 max-3 个字符并追加 "..."；max 不超过 3 时直接截取前 max 个字符。
func Truncate(value any, max int) string {
	s := Format(value)
	if s == "" || max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= len(ellipsis) {
		return string(runes[:max])
	}
	return string(runes[:max-len(ellipsis)]) + ellipsis
}

const ellipsis = "..."
