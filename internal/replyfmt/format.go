package replyfmt

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Charile333/TGBOT/internal/leakradar"
)

const (
	// MaxMessageRunes is the longest reply sent as is. Longer replies are cut
	// to TruncatedRunes and get TruncationNotice appended.
	MaxMessageRunes  = 4000
	TruncatedRunes   = 3900
	TruncationNotice = "\n\n... (message too long, truncated)"

	ruleLine = "========================================"

	listPreview   = 10
	domainPreview = 20
	exportPreview = 10
)

// Truncate applies the message size cap.
func Truncate(s string) string {
	if utf8.RuneCountInString(s) <= MaxMessageRunes {
		return s
	}
	r := []rune(s)
	return string(r[:TruncatedRunes]) + TruncationNotice
}

func shorten(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + "..."
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

// KindLabel is the display name of a leak kind in replies.
func KindLabel(k leakradar.LeakKind) string {
	switch k {
	case leakradar.Employees:
		return "Employee"
	case leakradar.Customers:
		return "Customer"
	case leakradar.ThirdParties:
		return "Third-party"
	default:
		return k.Label()
	}
}

// DomainSummary formats the default domain report.
func DomainSummary(domain string, s leakradar.DomainSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔍 Domain leak report: %s\n\n%s\n", domain, ruleLine)
	if s.Total() > 0 {
		b.WriteString("\n⚠️ Leaks found\n\n")
	} else {
		b.WriteString("\n✅ No leaks found\n")
	}
	fmt.Fprintf(&b, "👤 Employees: %d\n", s.EmployeesCompromised)
	fmt.Fprintf(&b, "🤝 Third parties: %d\n", s.ThirdPartiesCompromised)
	fmt.Fprintf(&b, "👥 Customers: %d", s.CustomersCompromised)
	if s.Total() > 0 {
		fmt.Fprintf(&b, "\n\n📊 Total: %d leaked records", s.Total())
	}

	if s.HasPasswordStats() {
		b.WriteString("\n\n📈 Password strength:")
		writeStrength(&b, "👤 Employee passwords", s.EmployeePasswords)
		writeStrength(&b, "🤝 Third-party passwords", s.ThirdPartiesPasswords)
		writeStrength(&b, "👥 Customer passwords", s.CustomerPasswords)
	}
	if v := strings.TrimSpace(s.BlacklistedValue); v != "" {
		fmt.Fprintf(&b, "\n\n⚠️ Blacklisted value: %s", v)
	}
	return Truncate(b.String())
}

func writeStrength(b *strings.Builder, title string, st *leakradar.PasswordStats) {
	if st == nil || st.TotalPass <= 0 {
		return
	}
	fmt.Fprintf(b, "\n\n%s:", title)
	for _, row := range []struct {
		name   string
		bucket *leakradar.StrengthBucket
	}{
		{"Too weak", st.TooWeak},
		{"Weak", st.Weak},
		{"Medium", st.Medium},
		{"Strong", st.Strong},
	} {
		var q leakradar.StrengthBucket
		if row.bucket != nil {
			q = *row.bucket
		}
		fmt.Fprintf(b, "\n   • %s: %d (%.1f%%)", row.name, q.Qty, q.Perc)
	}
}

// LeakList formats one page of domain records of a kind.
func LeakList(kind leakradar.LeakKind, domain string, p leakradar.Page[leakradar.Record]) string {
	label := KindLabel(kind)
	var b strings.Builder
	fmt.Fprintf(&b, "📋 %s leaks", label)
	if domain != "" {
		fmt.Fprintf(&b, "\nDomain: %s", domain)
	}
	fmt.Fprintf(&b, "\n%s\n\n📊 Statistics:", ruleLine)
	fmt.Fprintf(&b, "\n• Total: %d", p.Total)
	fmt.Fprintf(&b, "\n• Unlocked: %d", p.TotalUnlocked)
	fmt.Fprintf(&b, "\n• Page: %d", max(p.Page, 1))
	fmt.Fprintf(&b, "\n• Page size: %d", p.PageSize)

	if len(p.Items) == 0 {
		fmt.Fprintf(&b, "\n\n✅ No %s leaks found", strings.ToLower(label))
		return Truncate(b.String())
	}
	items := p.Items[:min(len(p.Items), listPreview)]
	fmt.Fprintf(&b, "\n\n📝 Records (first %d):", len(items))
	for i, r := range items {
		idType := "username"
		if r.IsEmail {
			idType = "email"
		}
		fmt.Fprintf(&b, "\n\n%d. %s %s (%s)", i+1, lockGlyph(r.Unlocked), orNA(r.Username), idType)
		fmt.Fprintf(&b, "\n   URL: %s", shorten(orNA(r.URL), 50))
		writePassword(&b, r)
	}
	return Truncate(b.String())
}

// EmailResult formats one page of records for an email or username.
func EmailResult(email string, p leakradar.Page[leakradar.Record]) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📧 Email/username lookup: %s\n%s\n\n📊 Statistics:", email, ruleLine)
	fmt.Fprintf(&b, "\n• Total: %d", p.Total)
	fmt.Fprintf(&b, "\n• Unlocked: %d", p.TotalUnlocked)

	if len(p.Items) == 0 {
		b.WriteString("\n\n✅ No leaks found")
		return Truncate(b.String())
	}
	items := p.Items[:min(len(p.Items), listPreview)]
	fmt.Fprintf(&b, "\n\n📝 Records (first %d):", len(items))
	for i, r := range items {
		fmt.Fprintf(&b, "\n\n%d. %s %s", i+1, lockGlyph(r.Unlocked), shorten(orNA(r.URL), 50))
		writePassword(&b, r)
	}
	return Truncate(b.String())
}

func writePassword(b *strings.Builder, r leakradar.Record) {
	if r.Unlocked && r.Password != "" {
		fmt.Fprintf(b, "\n   Password: %s", shorten(r.Password, 20))
	}
}

func lockGlyph(unlocked bool) string {
	if unlocked {
		return "🔓"
	}
	return "🔒"
}

// Subdomains formats one page of subdomains.
func Subdomains(domain string, p leakradar.Page[leakradar.Subdomain]) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🌐 Subdomains: %s\n%s\n\n📊 Statistics:\n• Subdomains: %d", domain, ruleLine, p.Total)
	if len(p.Items) == 0 {
		b.WriteString("\n\n✅ No subdomains found")
		return Truncate(b.String())
	}
	items := p.Items[:min(len(p.Items), domainPreview)]
	fmt.Fprintf(&b, "\n\n📝 Subdomains (first %d):", len(items))
	for i, s := range items {
		fmt.Fprintf(&b, "\n%d. %s (seen %d times)", i+1, orNA(s.Subdomain), s.Occurrences)
	}
	return Truncate(b.String())
}

// URLs formats one page of leaked URLs.
func URLs(domain string, p leakradar.Page[leakradar.LeakedURL]) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔗 URLs: %s\n%s\n\n📊 Statistics:\n• URLs: %d", domain, ruleLine, p.Total)
	if len(p.Items) == 0 {
		b.WriteString("\n\n✅ No URLs found")
		return Truncate(b.String())
	}
	items := p.Items[:min(len(p.Items), domainPreview)]
	fmt.Fprintf(&b, "\n\n📝 URLs (first %d):", len(items))
	for i, u := range items {
		fmt.Fprintf(&b, "\n%d. %s (seen %d times)", i+1, shorten(orNA(u.URL), 60), u.Occurrences)
	}
	return Truncate(b.String())
}

// StatusGlyph maps a job status to its list marker.
func StatusGlyph(s leakradar.JobStatus) string {
	switch s.Normalize() {
	case leakradar.JobCompleted:
		return "✅"
	case leakradar.JobPending:
		return "⏳"
	case leakradar.JobInProgress:
		return "🔄"
	case leakradar.JobFailed:
		return "❌"
	default:
		return "❓"
	}
}

// ExportJobs formats the most recent jobs, with a notice when more exist.
func ExportJobs(p leakradar.Page[leakradar.ExportJob]) string {
	if len(p.Items) == 0 {
		return Text("exports_empty", nil)
	}
	total := max(p.Total, len(p.Items))
	var b strings.Builder
	fmt.Fprintf(&b, "📋 Export jobs (%d total)\n\n%s", total, ruleLine)
	for i, j := range p.Items[:min(len(p.Items), exportPreview)] {
		status := strings.TrimSpace(string(j.Status))
		if status == "" {
			status = "UNKNOWN"
		}
		fmt.Fprintf(&b, "\n\n%d. %s %s", i+1, StatusGlyph(j.Status), orNA(j.Filename))
		fmt.Fprintf(&b, "\n   ID: %d", j.ID)
		fmt.Fprintf(&b, "\n   Status: %s", status)
		if j.FinishedAt != "" {
			fmt.Fprintf(&b, "\n   Finished: %s", j.FinishedAt)
		}
	}
	if total > exportPreview {
		fmt.Fprintf(&b, "\n\n... %d more not shown", total-exportPreview)
	}
	return Truncate(b.String())
}

// DomainCaption is the document caption of a domain export.
func DomainCaption(domain string, kind leakradar.LeakKind, records, unlocked int) string {
	return Text("domain_caption", Fields{"Subject": domain, "Kind": KindLabel(kind), "Records": records, "Unlocked": unlocked})
}

// EmailCaption is the document caption of an email export.
func EmailCaption(email string, records, unlocked int) string {
	return Text("email_caption", Fields{"Subject": email, "Records": records, "Unlocked": unlocked})
}
