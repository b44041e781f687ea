// Package utils provides small helpers shared by the CLI and internal
// packages.
package utils

import (
	"strconv"
	"strings"
)

// SplitAndTrim splits s by sep, trims each part and drops empty parts.
func SplitAndTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// JSONPointerToPath renders a JSON Pointer (RFC 6901) such as
// "#/metadata/tags/0" as "metadata.tags[0]".
func JSONPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}

	var b strings.Builder
	for _, token := range strings.Split(ptr, "/") {
		token = strings.ReplaceAll(token, "~1", "/")
		token = strings.ReplaceAll(token, "~0", "~")
		if token == "" {
			continue
		}
		if idx, err := strconv.Atoi(token); err == nil {
			b.WriteString("[" + strconv.Itoa(idx) + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(token)
	}
	return b.String()
}

// TruncateEnd keeps the first max-3 bytes of s followed by "..." when s is
// longer than max.
func TruncateEnd(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

// TruncateStart keeps "..." followed by the last max-3 bytes of s when s is
// longer than max. Paths read better this way since the file name survives.
func TruncateStart(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[len(s)-max:]
	}
	return "..." + s[len(s)-(max-3):]
}
