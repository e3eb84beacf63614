// Package outputfmt prepares error text for chat replies. Hosts, bot tokens
// and credentials never reach the requester.
package outputfmt

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	redacted = "[redacted]"

	// MaxErrorRunes bounds how much of an error is shown to a requester.
	MaxErrorRunes = 300
)

var (
	absoluteURLInTextRE = regexp.MustCompile(`https?://[^\s"'<>]+`)
	botTokenPathRE      = regexp.MustCompile(`/bot[0-9]+:[A-Za-z0-9_-]+`)
	bearerRE            = regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._~+/=-]+`)
)

// FormatErrorForDisplay sanitizes and shortens err for a chat reply.
func FormatErrorForDisplay(err error) string {
	if err == nil {
		return ""
	}
	out := SanitizeErrorText(err.Error())
	if utf8.RuneCountInString(out) > MaxErrorRunes {
		r := []rune(out)
		out = string(r[:MaxErrorRunes]) + "..."
	}
	return out
}

// SanitizeErrorText strips URL hosts, Telegram bot tokens and bearer
// credentials from raw while keeping path and query details.
func SanitizeErrorText(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	out := absoluteURLInTextRE.ReplaceAllStringFunc(raw, sanitizeURLInText)
	out = botTokenPathRE.ReplaceAllString(out, "/bot"+redacted)
	out = bearerRE.ReplaceAllString(out, "Bearer "+redacted)
	return out
}

func sanitizeURLInText(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return raw
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if q := redactSensitiveQuery(u.Query()); q != "" {
		path += "?" + q
	}
	if frag := u.EscapedFragment(); frag != "" {
		path += "#" + frag
	}
	return path
}

func redactSensitiveQuery(q url.Values) string {
	if len(q) == 0 {
		return ""
	}
	for k := range q {
		if isSensitiveQueryKey(k) {
			q.Set(k, redacted)
		}
	}
	return q.Encode()
}

var sensitiveKeyParts = []string{"apikey", "authorization", "token", "secret", "password", "cookie"}

func isSensitiveQueryKey(key string) bool {
	n := strings.ToLower(strings.TrimSpace(key))
	n = strings.NewReplacer("-", "", "_", "").Replace(n)
	if n == "" {
		return false
	}
	if n == "key" {
		return true
	}
	for _, part := range sensitiveKeyParts {
		if strings.Contains(n, part) {
			return true
		}
	}
	return false
}
