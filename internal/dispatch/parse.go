package dispatch

import (
	"regexp"
	"slices"
	"strings"

	"github.com/Charile333/TGBOT/internal/leakradar"
	"github.com/Charile333/TGBOT/internal/replyfmt"
	"github.com/Charile333/TGBOT/internal/subject"
)

type IntentKind int

const (
	IntentUnknown IntentKind = iota
	IntentStartHelp
	IntentListLeaks
	IntentEmailLookup
	IntentSubdomainLookup
	IntentURLLookup
	IntentExport
	IntentExportEmail
	IntentExportAll
	IntentExportsList
	IntentDomainLookup
	IntentExportJob
)

func (k IntentKind) String() string {
	switch k {
	case IntentStartHelp:
		return "start_help"
	case IntentListLeaks:
		return "list_leaks"
	case IntentEmailLookup:
		return "email_lookup"
	case IntentSubdomainLookup:
		return "subdomain_lookup"
	case IntentURLLookup:
		return "url_lookup"
	case IntentExport:
		return "export"
	case IntentExportEmail:
		return "export_email"
	case IntentExportAll:
		return "export_all"
	case IntentExportsList:
		return "exports_list"
	case IntentDomainLookup:
		return "domain_lookup"
	case IntentExportJob:
		return "export_job"
	default:
		return "unknown"
	}
}

// Intent is what a message asks for. Subject is already normalized and
// validated when it names a domain.
type Intent struct {
	Kind     IntentKind
	Command  string
	LeakKind leakradar.LeakKind
	Subject  string
	// Email marks an export job whose subject is an email or username.
	Email bool
	Raw   string
}

// ParseError is a message that cannot be acted on. Reply is the single text
// sent back.
type ParseError struct {
	Key    string
	Fields replyfmt.Fields
}

func (e *ParseError) Error() string { return "dispatch: " + e.Key }

func (e *ParseError) Reply() string { return replyfmt.Text(e.Key, e.Fields) }

type matcher func(cmd string, hasArgs bool) bool

// exact matches a bare command with nothing after it.
func exact(names ...string) matcher {
	return func(cmd string, hasArgs bool) bool {
		return !hasArgs && slices.Contains(names, cmd)
	}
}

// command matches on the first token only.
func command(names ...string) matcher {
	return func(cmd string, _ bool) bool {
		return slices.Contains(names, cmd)
	}
}

type rule struct {
	match matcher
	build func(cmd, args string) (Intent, error)
}

var rules = []rule{
	{exact("/start", "/help"), func(cmd, _ string) (Intent, error) {
		return Intent{Kind: IntentStartHelp, Command: cmd}, nil
	}},
	{command("/employees"), leakList(leakradar.Employees)},
	{command("/customers"), leakList(leakradar.Customers)},
	{command("/thirdparties", "/third_parties"), leakList(leakradar.ThirdParties)},
	{command("/email"), func(cmd, args string) (Intent, error) {
		if args == "" {
			return Intent{}, &ParseError{Key: "email_usage"}
		}
		return Intent{Kind: IntentEmailLookup, Command: cmd, Subject: args}, nil
	}},
	{command("/subdomains"), domainCommand(IntentSubdomainLookup)},
	{command("/urls"), domainCommand(IntentURLLookup)},
	{exact("/exports"), func(cmd, _ string) (Intent, error) {
		return Intent{Kind: IntentExportsList, Command: cmd}, nil
	}},
	{command("/export"), func(cmd, args string) (Intent, error) { return parseExport(cmd, args, true) }},
	{command("/exportjob"), func(cmd, args string) (Intent, error) { return parseExport(cmd, args, false) }},
}

// Parse maps message text to an Intent. It makes no network calls.
func Parse(text string) (Intent, error) {
	clean := CleanText(text)
	if clean == "" {
		return Intent{}, &ParseError{Key: "help"}
	}
	if !strings.HasPrefix(clean, "/") {
		domain := subject.Normalize(clean)
		if !subject.IsValidDomain(domain) {
			return Intent{}, &ParseError{Key: "invalid_domain", Fields: replyfmt.Fields{"Input": clean}}
		}
		return Intent{Kind: IntentDomainLookup, Subject: domain, Raw: clean}, nil
	}

	cmd, args := splitCommand(clean)
	cmd = normalizeSlashCommand(cmd)
	for _, r := range rules {
		if r.match(cmd, args != "") {
			intent, err := r.build(cmd, args)
			if err != nil {
				return Intent{}, err
			}
			intent.Raw = clean
			return intent, nil
		}
	}
	return Intent{Kind: IntentUnknown, Command: cmd, Raw: clean}, nil
}

func leakList(kind leakradar.LeakKind) func(cmd, args string) (Intent, error) {
	return func(cmd, args string) (Intent, error) {
		domain, err := requireDomain(cmd, args, true)
		if err != nil {
			return Intent{}, err
		}
		return Intent{Kind: IntentListLeaks, Command: cmd, LeakKind: kind, Subject: domain}, nil
	}
}

func domainCommand(kind IntentKind) func(cmd, args string) (Intent, error) {
	return func(cmd, args string) (Intent, error) {
		domain, err := requireDomain(cmd, args, true)
		if err != nil {
			return Intent{}, err
		}
		return Intent{Kind: kind, Command: cmd, Subject: domain}, nil
	}
}

func requireDomain(cmd, args string, usage bool) (string, error) {
	if args == "" && usage {
		return "", &ParseError{Key: "command_usage", Fields: replyfmt.Fields{"Usage": cmd + " <domain>"}}
	}
	domain := subject.Normalize(args)
	if !subject.IsValidDomain(domain) {
		return "", &ParseError{Key: "invalid_domain_short", Fields: replyfmt.Fields{"Input": args}}
	}
	return domain, nil
}

// parseExport handles "<cmd> <type> <subject...>". The "all" type is only
// offered by the local pipeline.
func parseExport(cmd, args string, allowAll bool) (Intent, error) {
	parts := strings.Fields(args)
	if len(parts) < 2 {
		return Intent{}, &ParseError{Key: "export_usage", Fields: replyfmt.Fields{"Command": cmd, "AllowAll": allowAll}}
	}
	typ := strings.ToLower(parts[0])
	target := strings.Join(parts[1:], " ")

	jobKind := func(k IntentKind) IntentKind {
		if allowAll {
			return k
		}
		return IntentExportJob
	}

	switch {
	case typ == "all" && allowAll:
		domain, err := requireDomain(cmd, target, false)
		if err != nil {
			return Intent{}, err
		}
		return Intent{Kind: IntentExportAll, Command: cmd, Subject: domain}, nil
	case typ == "email":
		return Intent{Kind: jobKind(IntentExportEmail), Command: cmd, Subject: target, Email: true}, nil
	}
	kind, ok := leakradar.ParseLeakKind(typ)
	if !ok {
		return Intent{}, &ParseError{Key: "export_unknown_kind", Fields: replyfmt.Fields{"Kind": parts[0], "AllowAll": allowAll}}
	}
	domain, err := requireDomain(cmd, target, false)
	if err != nil {
		return Intent{}, err
	}
	return Intent{Kind: jobKind(IntentExport), Command: cmd, LeakKind: kind, Subject: domain}, nil
}

var mentionTokenRE = regexp.MustCompile(`^@\w+$`)

// CleanText trims text, drops "@bot" from "/cmd@bot", and removes standalone
// "@handle" tokens. Addresses such as user@example.com are left alone, and so
// is anything after "/email" or an "email" export type, where a username
// subject may itself start with "@".
func CleanText(text string) string {
	fields := strings.Fields(text)
	out := fields[:0]
	verbatim := false
	for _, f := range fields {
		if !verbatim && mentionTokenRE.MatchString(f) {
			continue
		}
		if len(out) == 0 && strings.HasPrefix(f, "/") {
			if at := strings.IndexByte(f, '@'); at > 0 {
				f = f[:at]
			}
		}
		out = append(out, f)
		verbatim = verbatim || takesEmailSubject(out)
	}
	return strings.Join(out, " ")
}

func takesEmailSubject(tokens []string) bool {
	switch len(tokens) {
	case 1:
		return normalizeSlashCommand(tokens[0]) == "/email"
	case 2:
		cmd := normalizeSlashCommand(tokens[0])
		return (cmd == "/export" || cmd == "/exportjob") && strings.EqualFold(tokens[1], "email")
	default:
		return false
	}
}

func splitCommand(text string) (cmd string, rest string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ""
	}
	i := strings.IndexAny(text, " \n\t")
	if i == -1 {
		return text, ""
	}
	return text[:i], strings.TrimSpace(text[i:])
}

func normalizeSlashCommand(cmd string) string {
	cmd = strings.TrimSpace(cmd)
	if cmd == "" || !strings.HasPrefix(cmd, "/") {
		return ""
	}
	if at := strings.IndexByte(cmd, '@'); at >= 0 {
		cmd = cmd[:at]
	}
	return strings.ToLower(cmd)
}
