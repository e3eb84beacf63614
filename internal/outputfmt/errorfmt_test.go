package outputfmt

import (
	"errors"
	"strings"
	"testing"
)

func TestSanitizeErrorText_RemovesHostAndRedactsSensitiveQuery(t *testing.T) {
	in := `leakradar domain summary: Get "https://api.leakradar.io/search/domain/example.com?light=false&api_key=sk-test-secret": context deadline exceeded`

	out := SanitizeErrorText(in)
	if strings.Contains(out, "api.leakradar.io") {
		t.Fatalf("host should be removed, got %q", out)
	}
	if strings.Contains(out, "sk-test-secret") {
		t.Fatalf("sensitive key value should be redacted, got %q", out)
	}
	if !strings.Contains(out, `Get "/search/domain/example.com?`) {
		t.Fatalf("expected path to be kept, got %q", out)
	}
	if !strings.Contains(out, "api_key=%5Bredacted%5D") || !strings.Contains(out, "light=false") {
		t.Fatalf("expected query to be redacted selectively, got %q", out)
	}
}

func TestSanitizeErrorText_RedactsBotToken(t *testing.T) {
	in := `Post "https://api.telegram.org/bot123456:AAH-secret_token/sendDocument": EOF`
	out := SanitizeErrorText(in)
	if strings.Contains(out, "AAH-secret_token") || strings.Contains(out, "123456") {
		t.Fatalf("bot token should be redacted, got %q", out)
	}
	if !strings.Contains(out, "/bot[redacted]/sendDocument") {
		t.Fatalf("expected redacted bot path, got %q", out)
	}
}

func TestSanitizeErrorText_RedactsBearer(t *testing.T) {
	out := SanitizeErrorText("upstream rejected Authorization: Bearer abc.def-123")
	if strings.Contains(out, "abc.def-123") {
		t.Fatalf("bearer credential should be redacted, got %q", out)
	}
}

func TestFormatErrorForDisplay(t *testing.T) {
	if got := FormatErrorForDisplay(nil); got != "" {
		t.Fatalf("nil error should format as empty string, got %q", got)
	}
	err := errors.New(`Post "https://example.com/api?apikey=123": bad gateway`)
	got := FormatErrorForDisplay(err)
	if strings.Contains(got, "example.com") {
		t.Fatalf("host should be removed, got %q", got)
	}
	if !strings.Contains(got, "/api?apikey=%5Bredacted%5D") {
		t.Fatalf("expected redacted apikey query, got %q", got)
	}

	long := FormatErrorForDisplay(errors.New(strings.Repeat("é", MaxErrorRunes+10)))
	if n := len([]rune(long)); n != MaxErrorRunes+3 {
		t.Fatalf("expected truncation to %d runes plus ellipsis, got %d", MaxErrorRunes, n)
	}
}
