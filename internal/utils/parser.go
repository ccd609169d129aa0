package utils

import (
	"strings"
	"time"
)

// SplitList 按分隔符拆分并去除空白，丢弃空项和 placeholder（如 OMDb 的 "N/A"）
func SplitList(s, sep string, placeholders ...string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}

	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || isPlaceholder(p, placeholders) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// OptionalString 空串或 placeholder 返回 nil
func OptionalString(s string, placeholders ...string) *string {
	s = strings.TrimSpace(s)
	if s == "" || isPlaceholder(s, placeholders) {
		return nil
	}
	return &s
}

// ParseDate 依次尝试多种格式解析日期，全部失败返回 nil
func ParseDate(s string, layouts ...string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// ParseQueryList 解析查询参数中的列表，支持重复参数和逗号分隔
// 例如 ?genre=Acción,Drama&genre=Terror
func ParseQueryList(values []string) []string {
	var out []string
	for _, v := range values {
		out = append(out, SplitList(v, ",")...)
	}
	return out
}

func isPlaceholder(s string, placeholders []string) bool {
	for _, p := range placeholders {
		if strings.EqualFold(s, p) {
			return true
		}
	}
	return false
}
