// Package subject cleans up and validates the domains users type into chat.
package subject

import (
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"
)

var domainPattern = regexp.MustCompile(`^(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}$`)

// Normalize reduces pasted input such as "https://www.Example.com:8443/a?b"
// to a bare lowercase host. Applying it twice gives the same result.
func Normalize(s string) string {
	for {
		next := normalizeOnce(s)
		if next == s {
			return next
		}
		s = next
	}
}

// normalizeOnce never grows its input, so Normalize reaches a fixed point.
func normalizeOnce(s string) string {
	s = strings.TrimSpace(s)
	for {
		lower := strings.ToLower(s)
		switch {
		case strings.HasPrefix(lower, "https://"):
			s = s[len("https://"):]
		case strings.HasPrefix(lower, "http://"):
			s = s[len("http://"):]
		case strings.HasPrefix(lower, "www."):
			s = s[len("www."):]
		default:
			if i := strings.IndexAny(s, "/?#"); i >= 0 {
				s = s[:i]
			}
			if i := strings.IndexByte(s, ':'); i >= 0 {
				s = s[:i]
			}
			return strings.ToLower(strings.TrimSpace(s))
		}
	}
}

// IsValidDomain reports whether s looks like a registrable host name.
func IsValidDomain(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 253 || !domainPattern.MatchString(s) {
		return false
	}
	if _, err := publicsuffix.EffectiveTLDPlusOne(strings.ToLower(s)); err != nil {
		return false
	}
	return true
}

// LooksLikeEmail is a loose check used to pick between email and username
// wording in replies. The API accepts either.
func LooksLikeEmail(s string) bool {
	at := strings.LastIndexByte(s, '@')
	return at > 0 && at < len(s)-1 && strings.Contains(s[at+1:], ".")
}
