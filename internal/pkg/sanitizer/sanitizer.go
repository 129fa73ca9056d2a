package sanitizer

import "strings"

// String 通用字符串脫敏（保留首尾）
func String(s string, start, end int) string {
	if len(s) <= start+end {
		return "***"
	}
	return s[:start] + "***" + s[len(s)-end:]
}

// APIKey 代理 GUI API 密鑰脫敏（保留前後 4 位）
func APIKey(s string) string {
	if len(s) < 8 {
		return "***"
	}
	return s[:4] + "***" + s[len(s)-4:]
}

// DeviceID 設備 ID 脫敏
// Syncthing 設備 ID 形如 8 組 7 字符，只保留第一組便於對照
func DeviceID(s string) string {
	if s == "" {
		return ""
	}
	if idx := strings.Index(s, "-"); idx > 0 {
		return s[:idx] + "-***"
	}
	return String(s, 7, 0)
}
