package dispatch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Charile333/TGBOT/internal/leakradar"
)

func TestParseRoutes(t *testing.T) {
	cases := []struct {
		text    string
		kind    IntentKind
		subject string
		leak    leakradar.LeakKind
	}{
		{"/start", IntentStartHelp, "", 0},
		{"/help", IntentStartHelp, "", 0},
		{"/employees example.com", IntentListLeaks, "example.com", leakradar.Employees},
		{"/customers https://www.Example.com/login", IntentListLeaks, "example.com", leakradar.Customers},
		{"/third_parties example.com", IntentListLeaks, "example.com", leakradar.ThirdParties},
		{"/thirdparties example.com", IntentListLeaks, "example.com", leakradar.ThirdParties},
		{"/email user@example.com", IntentEmailLookup, "user@example.com", 0},
		{"/subdomains example.com", IntentSubdomainLookup, "example.com", 0},
		{"/urls example.com", IntentURLLookup, "example.com", 0},
		{"/exports", IntentExportsList, "", 0},
		{"/export customers example.com", IntentExport, "example.com", leakradar.Customers},
		{"/export all example.com", IntentExportAll, "example.com", 0},
		{"/export email user@example.com", IntentExportEmail, "user@example.com", 0},
		{"/exportjob thirdparties example.com", IntentExportJob, "example.com", leakradar.ThirdParties},
		{"example.com", IntentDomainLookup, "example.com", 0},
		{"HTTP://WWW.Example.COM:8080/path", IntentDomainLookup, "example.com", 0},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			in, err := Parse(tc.text)
			require.NoError(t, err)
			assert.Equal(t, tc.kind, in.Kind)
			assert.Equal(t, tc.subject, in.Subject)
			assert.Equal(t, tc.leak, in.LeakKind)
		})
	}
}

func TestParseStripsBotSuffixAndMentions(t *testing.T) {
	in, err := Parse("/Employees@LeakBot example.com")
	require.NoError(t, err)
	assert.Equal(t, IntentListLeaks, in.Kind)
	assert.Equal(t, "/employees", in.Command)

	in, err = Parse("@LeakBot /help")
	require.NoError(t, err)
	assert.Equal(t, IntentStartHelp, in.Kind)
}

func TestCleanTextKeepsEmails(t *testing.T) {
	assert.Equal(t, "/email user@example.com", CleanText(" @someone  /email@bot   user@example.com "))
	assert.Equal(t, "/subdomains example.com", CleanText("/subdomains@bot example.com @someone"))
}

func TestCleanTextKeepsHandleSubjects(t *testing.T) {
	assert.Equal(t, "/email @johndoe", CleanText("@LeakBot /email@LeakBot @johndoe"))
	assert.Equal(t, "/export email @johndoe", CleanText("/export email @johndoe"))
	assert.Equal(t, "/exportjob EMAIL @johndoe", CleanText("/exportjob EMAIL @johndoe"))
	assert.Equal(t, "/urls example.com", CleanText("/urls @someone example.com"))

	in, err := Parse("/email @johndoe")
	require.NoError(t, err)
	assert.Equal(t, IntentEmailLookup, in.Kind)
	assert.Equal(t, "@johndoe", in.Subject)
}

func TestParseExportJobEmail(t *testing.T) {
	in, err := Parse("/exportjob email someone")
	require.NoError(t, err)
	assert.Equal(t, IntentExportJob, in.Kind)
	assert.True(t, in.Email)
	assert.Equal(t, "someone", in.Subject)
}

func TestParseRejections(t *testing.T) {
	cases := []struct {
		text string
		key  string
	}{
		{"", "help"},
		{"   ", "help"},
		{"not a domain", "invalid_domain"},
		{"/employees", "command_usage"},
		{"/urls bad_domain", "invalid_domain_short"},
		{"/email", "email_usage"},
		{"/export", "export_usage"},
		{"/export employees", "export_usage"},
		{"/export passwords example.com", "export_unknown_kind"},
		{"/exportjob all example.com", "export_unknown_kind"},
		{"/export all nope", "invalid_domain_short"},
	}
	for _, tc := range cases {
		t.Run(tc.key+"/"+tc.text, func(t *testing.T) {
			_, err := Parse(tc.text)
			var perr *ParseError
			require.True(t, errors.As(err, &perr), "got %v", err)
			assert.Equal(t, tc.key, perr.Key)
			assert.NotEmpty(t, perr.Reply())
		})
	}
}

func TestParseUnknownCommand(t *testing.T) {
	in, err := Parse("/frobnicate now")
	require.NoError(t, err)
	assert.Equal(t, IntentUnknown, in.Kind)
	assert.Equal(t, "/frobnicate", in.Command)

	// /start with arguments is not an exact match.
	in, err = Parse("/start please")
	require.NoError(t, err)
	assert.Equal(t, IntentUnknown, in.Kind)
}
