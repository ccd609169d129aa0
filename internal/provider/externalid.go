package provider

import (
	"strconv"
	"unicode/utf16"
)

// MinFallbackExternalID 哈希生成的 external id 不低于该值，避免与较小的真实 ID 冲突
const MinFallbackExternalID = 1_000_000

// ExternalIDFromIMDb 从 IMDb 风格 ID（两位字母前缀 + 数字，如 tt0111161）提取 external id。
// 无法得到正整数时退回到 title+year 的哈希。
func ExternalIDFromIMDb(nativeID, title, year string) int64 {
	if id, ok := parseNativeID(nativeID); ok {
		return id
	}
	return FallbackExternalID(title, year)
}

func parseNativeID(nativeID string) (int64, bool) {
	if nativeID == "" {
		return 0, false
	}
	digits := nativeID
	if len(nativeID) > 2 && isLetter(nativeID[0]) && isLetter(nativeID[1]) {
		digits = nativeID[2:]
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// FallbackExternalID 对 title+year 做确定性哈希：
// 按 UTF-16 编码单元做 h = h*31 + c 的 32 位有符号运算，取绝对值，
// 小于 MinFallbackExternalID 时整体上移 MinFallbackExternalID。
func FallbackExternalID(title, year string) int64 {
	var h int32
	for _, unit := range utf16.Encode([]rune(title + year)) {
		h = h*31 + int32(unit)
	}

	v := int64(h)
	if v < 0 {
		v = -v
	}
	if v < MinFallbackExternalID {
		v += MinFallbackExternalID
	}
	return v
}
