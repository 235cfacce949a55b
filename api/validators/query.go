package validators

import (
	"net/http"
	"strings"
	"unicode/utf8"
)

const maxQueryValueLen = 255

// QueryString returns the trimmed query value for key, capped at 255 bytes.
func QueryString(r *http.Request, key string) string {
	return clip(strings.TrimSpace(r.URL.Query().Get(key)), maxQueryValueLen)
}

// clip shortens s to at most n bytes without splitting a rune.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
