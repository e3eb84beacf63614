package replyfmt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Charile333/TGBOT/internal/leakradar"
)

func TestEmbeddedCatalogRendersEveryKey(t *testing.T) {
	c := Default()
	require.NotEmpty(t, c.Keys())
	for _, key := range c.Keys() {
		out := c.Render(key, Fields{"Name": "Ann", "Subject": "example.com", "Kind": "employees", "Count": 2})
		assert.NotEmpty(t, out, key)
		assert.NotEqual(t, key, out, "template %s failed to render", key)
	}
}

func TestRenderUnknownKeyFallsBack(t *testing.T) {
	assert.Equal(t, "no_such_key", Text("no_such_key", nil))
}

func TestParseCatalogRejectsBadTemplate(t *testing.T) {
	_, err := ParseCatalog([]byte("broken: \"{{.Name\"\n"))
	assert.Error(t, err)
}

func TestStartGreetsByName(t *testing.T) {
	assert.Contains(t, Text("start", Fields{"Name": "Ann"}), "Hi Ann!")
}

func TestExportAllDonePlural(t *testing.T) {
	assert.Equal(t, "✅ Sent 1 CSV file", Text("export_all_done", Fields{"Count": 1}))
	assert.Equal(t, "✅ Sent 3 CSV files", Text("export_all_done", Fields{"Count": 3}))
}

func TestTruncate(t *testing.T) {
	short := strings.Repeat("a", MaxMessageRunes)
	assert.Equal(t, short, Truncate(short))

	long := strings.Repeat("é", MaxMessageRunes+1)
	got := Truncate(long)
	assert.True(t, strings.HasSuffix(got, TruncationNotice))
	assert.Equal(t, TruncatedRunes+utf8.RuneCountInString(TruncationNotice), utf8.RuneCountInString(got))
}

func TestDomainSummary(t *testing.T) {
	s := leakradar.DomainSummary{
		EmployeesCompromised: 3,
		CustomersCompromised: 1,
		EmployeePasswords: &leakradar.PasswordStats{
			TotalPass: 3,
			Weak:      &leakradar.StrengthBucket{Qty: 2, Perc: 66.666},
		},
		BlacklistedValue: "example",
	}
	out := DomainSummary("example.com", s)
	assert.Contains(t, out, "Domain leak report: example.com")
	assert.Contains(t, out, "Total: 4 leaked records")
	assert.Contains(t, out, "Weak: 2 (66.7%)")
	assert.Contains(t, out, "Too weak: 0 (0.0%)")
	assert.NotContains(t, out, "Customer passwords")
	assert.Contains(t, out, "Blacklisted value: example")

	empty := DomainSummary("example.com", leakradar.DomainSummary{})
	assert.Contains(t, empty, "No leaks found")
	assert.NotContains(t, empty, "Password strength")
}

func TestLeakListShowsTenAndHidesLockedPasswords(t *testing.T) {
	items := make([]leakradar.Record, 12)
	for i := range items {
		items[i] = leakradar.Record{Username: fmt.Sprintf("user%d", i), URL: "https://example.com/" + strings.Repeat("p", 60), Password: "secret"}
	}
	items[0].Unlocked = true
	items[0].Password = strings.Repeat("x", 25)

	out := LeakList(leakradar.Customers, "example.com", leakradar.Page[leakradar.Record]{Items: items, Total: 12, Page: 1, PageSize: 10})
	assert.Contains(t, out, "Customer leaks")
	assert.Contains(t, out, "Records (first 10)")
	assert.Contains(t, out, "10. 🔒 user9")
	assert.NotContains(t, out, "user10")
	assert.Contains(t, out, "Password: "+strings.Repeat("x", 20)+"...")
	assert.Equal(t, 1, strings.Count(out, "Password:"))

	none := LeakList(leakradar.ThirdParties, "example.com", leakradar.Page[leakradar.Record]{})
	assert.Contains(t, none, "No third-party leaks found")
}

func TestSubdomainsAndURLsPreview(t *testing.T) {
	subs := make([]leakradar.Subdomain, 25)
	for i := range subs {
		subs[i] = leakradar.Subdomain{Subdomain: fmt.Sprintf("s%d.example.com", i), Occurrences: i}
	}
	out := Subdomains("example.com", leakradar.Page[leakradar.Subdomain]{Items: subs, Total: 25})
	assert.Contains(t, out, "Subdomains (first 20)")
	assert.Contains(t, out, "20. s19.example.com (seen 19 times)")
	assert.NotContains(t, out, "s20.example.com")

	long := "https://example.com/" + strings.Repeat("a", 80)
	urls := URLs("example.com", leakradar.Page[leakradar.LeakedURL]{Items: []leakradar.LeakedURL{{URL: long, Occurrences: 2}}, Total: 1})
	assert.Contains(t, urls, long[:60]+"... (seen 2 times)")
}

func TestExportJobsGlyphsAndOverflow(t *testing.T) {
	p := leakradar.Page[leakradar.ExportJob]{
		Total: 12,
		Items: []leakradar.ExportJob{
			{ID: 1, Filename: "a.csv", Status: "COMPLETED", FinishedAt: "2024-05-01"},
			{ID: 2, Filename: "b.csv", Status: "pending"},
			{ID: 3, Filename: "c.csv", Status: "IN_PROGRESS"},
			{ID: 4, Filename: "d.csv", Status: "FAILED"},
			{ID: 5, Filename: "e.csv", Status: "WEIRD"},
		},
	}
	out := ExportJobs(p)
	assert.Contains(t, out, "1. ✅ a.csv")
	assert.Contains(t, out, "Finished: 2024-05-01")
	assert.Contains(t, out, "2. ⏳ b.csv")
	assert.Contains(t, out, "3. 🔄 c.csv")
	assert.Contains(t, out, "4. ❌ d.csv")
	assert.Contains(t, out, "5. ❓ e.csv")
	assert.Contains(t, out, "... 2 more not shown")

	assert.Equal(t, Text("exports_empty", nil), ExportJobs(leakradar.Page[leakradar.ExportJob]{}))
}

func TestCaptions(t *testing.T) {
	c := DomainCaption("example.com", leakradar.ThirdParties, 120, 5)
	assert.Contains(t, c, "Domain: example.com")
	assert.Contains(t, c, "Type: Third-party")
	assert.Contains(t, c, "Records: 120")
	assert.Contains(t, c, "Unlocked now: 5")

	e := EmailCaption("john@example.com", 3, 0)
	assert.Contains(t, e, "Email: john@example.com")
}

func TestErrorText(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"auth", &leakradar.Error{Op: "domain summary", Kind: leakradar.KindAuth, Status: 401}, "API authentication failed"},
		{"quota on unlock", &leakradar.Error{Op: "unlock employees", Kind: leakradar.KindQuota, Status: 403}, "Insufficient permission or credits"},
		{"quota on export", &leakradar.Error{Op: "create export", Kind: leakradar.KindQuota, Status: 403}, "A paid plan is required"},
		{"bad export", &leakradar.Error{Op: "create export", Kind: leakradar.KindBadRequest, Status: 400}, "check the parameters"},
		{"not found", &leakradar.Error{Op: "domain summary", Kind: leakradar.KindNotFound, Status: 404}, "Not found or no related data"},
		{"validation", &leakradar.Error{Op: "domain summary", Kind: leakradar.KindValidation, Status: 422}, "Domain format validation failed"},
		{"timeout", &leakradar.Error{Op: "urls", Kind: leakradar.KindTransport, Timeout: true, Err: context.DeadlineExceeded}, "Request timed out"},
		{"decode", &leakradar.Error{Op: "urls", Kind: leakradar.KindDecode}, "malformed response"},
		{"other status", &leakradar.Error{Op: "urls", Kind: leakradar.KindHTTP, Status: 502, Detail: "upstream"}, "API returned error: 502 - upstream"},
		{"wrapped", fmt.Errorf("lookup: %w", &leakradar.Error{Op: "subdomains", Kind: leakradar.KindAuth, Status: 401}), "API authentication failed"},
		{"plain", errors.New(`Get "https://host.example/x?token=abc": refused`), `Get "/x?token=%5Bredacted%5D": refused`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, ErrorText(tt.err), tt.want)
		})
	}
	assert.Empty(t, ErrorText(nil))
}
