package dispatch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Charile333/TGBOT/internal/dispatch/dispatchmock"
	"github.com/Charile333/TGBOT/internal/export"
	"github.com/Charile333/TGBOT/internal/exportjob"
	"github.com/Charile333/TGBOT/internal/leakradar"
	"github.com/Charile333/TGBOT/internal/telegram"
)

type sentDoc struct {
	path, filename, caption string
}

type fakeSender struct {
	mu       sync.Mutex
	messages []string
	docs     []sentDoc
	docErr   error
}

func (f *fakeSender) SendMessage(_ context.Context, _ int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, text)
	return nil
}

func (f *fakeSender) SendDocument(_ context.Context, _ int64, path, filename, caption string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs = append(f.docs, sentDoc{path, filename, caption})
	return f.docErr
}

func (f *fakeSender) last() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.messages) == 0 {
		return ""
	}
	return f.messages[len(f.messages)-1]
}

type fakeExporter struct {
	one     export.Outcome
	all     export.Report
	targets []export.Target
}

func (f *fakeExporter) ExportOne(_ context.Context, _ int64, t export.Target) export.Outcome {
	f.targets = append(f.targets, t)
	out := f.one
	out.Target = t
	return out
}

func (f *fakeExporter) ExportAll(_ context.Context, _ int64, domain string) export.Report {
	f.targets = append(f.targets, export.Target{Subject: domain})
	return f.all
}

type fakeJobs struct {
	res    exportjob.Result
	err    error
	target export.Target
}

func (f *fakeJobs) Run(_ context.Context, t export.Target) (exportjob.Result, error) {
	f.target = t
	return f.res, f.err
}

func (f *fakeJobs) MaxWait() time.Duration { return 5 * time.Minute }

type harness struct {
	api    *dispatchmock.MockLeakAPI
	sender *fakeSender
	exp    *fakeExporter
	jobs   *fakeJobs
	d      *Dispatcher
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)
	h := &harness{
		api:    dispatchmock.NewMockLeakAPI(ctrl),
		sender: &fakeSender{},
		exp:    &fakeExporter{},
		jobs:   &fakeJobs{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h.d = New(h.api, h.sender, h.exp, h.jobs, logger)
	h.d.newID = func() string { return "req-1" }
	return h
}

func msg(text string) *telegram.Message {
	return &telegram.Message{
		Chat: &telegram.Chat{ID: 42},
		From: &telegram.User{FirstName: "Ana"},
		Text: text,
	}
}

func TestDomainLookupAcksThenReports(t *testing.T) {
	h := newHarness(t)
	h.api.EXPECT().
		DomainSummary(gomock.Any(), "example.com").
		Return(leakradar.DomainSummary{EmployeesCompromised: 3, CustomersCompromised: 1}, nil)

	h.d.HandleMessage(context.Background(), msg("https://www.example.com/login"))

	require.Len(t, h.sender.messages, 2)
	assert.Contains(t, h.sender.messages[0], "Looking up domain: example.com")
	assert.Contains(t, h.sender.messages[1], "example.com")
}

func TestLeakListUsesFirstPageOfTen(t *testing.T) {
	h := newHarness(t)
	h.api.EXPECT().
		DomainLeaks(gomock.Any(), "example.com", leakradar.Customers, 1, 10).
		Return(leakradar.Page[leakradar.Record]{Total: 0}, nil)

	h.d.HandleMessage(context.Background(), msg("/customers example.com"))
	assert.Len(t, h.sender.messages, 2)
}

func TestQueryFailureRendersErrorText(t *testing.T) {
	h := newHarness(t)
	h.api.EXPECT().
		DomainSummary(gomock.Any(), "example.com").
		Return(leakradar.DomainSummary{}, &leakradar.Error{Op: "domain summary", Kind: leakradar.KindAuth, Status: 401})

	h.d.HandleMessage(context.Background(), msg("example.com"))

	assert.Contains(t, h.sender.last(), "Query failed")
	assert.Contains(t, h.sender.last(), "API authentication failed")
}

func TestSubdomainsAndURLsUseTwenty(t *testing.T) {
	h := newHarness(t)
	gomock.InOrder(
		h.api.EXPECT().Subdomains(gomock.Any(), "example.com", 1, 20).Return(leakradar.Page[leakradar.Subdomain]{}, nil),
		h.api.EXPECT().URLs(gomock.Any(), "example.com", 1, 20).Return(leakradar.Page[leakradar.LeakedURL]{}, nil),
	)
	h.d.HandleMessage(context.Background(), msg("/subdomains example.com"))
	h.d.HandleMessage(context.Background(), msg("/urls example.com"))
	assert.Len(t, h.sender.messages, 4)
}

func TestEmailLookup(t *testing.T) {
	h := newHarness(t)
	h.api.EXPECT().EmailLeaks(gomock.Any(), "user@example.com", 1, 10).Return(leakradar.Page[leakradar.Record]{}, nil)
	h.d.HandleMessage(context.Background(), msg("/email user@example.com"))
	assert.Len(t, h.sender.messages, 2)
}

func TestExportsListFailure(t *testing.T) {
	h := newHarness(t)
	h.api.EXPECT().
		ListExports(gomock.Any(), 1, 10).
		Return(leakradar.Page[leakradar.ExportJob]{}, &leakradar.Error{Op: "list exports", Kind: leakradar.KindQuota, Status: 403})

	h.d.HandleMessage(context.Background(), msg("/exports"))
	assert.Contains(t, h.sender.last(), "A paid plan is required")
}

func TestParseErrorsSendSingleReply(t *testing.T) {
	h := newHarness(t)
	h.d.HandleMessage(context.Background(), msg("/employees"))
	require.Len(t, h.sender.messages, 1)
	assert.Contains(t, h.sender.messages[0], "/employees <domain>")
}

func TestUnknownCommandReply(t *testing.T) {
	h := newHarness(t)
	h.d.HandleMessage(context.Background(), msg("/nope"))
	require.Len(t, h.sender.messages, 1)
	assert.Contains(t, h.sender.messages[0], "/nope")
}

func TestStartGreetsByName(t *testing.T) {
	h := newHarness(t)
	h.d.HandleMessage(context.Background(), msg("/start"))
	require.Len(t, h.sender.messages, 1)
	assert.Contains(t, h.sender.messages[0], "Ana")
}

func TestExportOneRepliesByStatus(t *testing.T) {
	cases := []struct {
		status export.Status
		want   string
	}{
		{export.StatusDelivered, "CSV file sent"},
		{export.StatusNoData, "No related data"},
		{export.StatusMaterializeFailed, "Failed to build"},
		{export.StatusDeliveryFailed, "Failed to send"},
	}
	for _, tc := range cases {
		t.Run(tc.status.String(), func(t *testing.T) {
			h := newHarness(t)
			h.exp.one = export.Outcome{Status: tc.status}
			h.d.HandleMessage(context.Background(), msg("/export employees example.com"))
			require.Len(t, h.sender.messages, 2)
			assert.Contains(t, h.sender.last(), tc.want)
			assert.Equal(t, export.DomainTarget("example.com", leakradar.Employees), h.exp.targets[0])
		})
	}
}

func TestExportEmailTarget(t *testing.T) {
	h := newHarness(t)
	h.exp.one = export.Outcome{Status: export.StatusNoData}
	h.d.HandleMessage(context.Background(), msg("/export email user@example.com"))
	require.Len(t, h.exp.targets, 1)
	assert.True(t, h.exp.targets[0].Email)
	assert.Equal(t, "user@example.com", h.exp.targets[0].Subject)
}

func TestExportAllCountsCompleted(t *testing.T) {
	h := newHarness(t)
	h.exp.all = export.Report{Attempted: 3, Completed: 2}
	h.d.HandleMessage(context.Background(), msg("/export all example.com"))
	assert.Contains(t, h.sender.last(), "Sent 2 CSV files")

	h.exp.all = export.Report{Attempted: 3, Completed: 0, Err: errors.New("boom")}
	h.d.HandleMessage(context.Background(), msg("/export all example.com"))
	assert.Contains(t, h.sender.last(), "No data found")
}

func TestExportJobSendsAndRemovesFile(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "job7_example.com.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n"), 0o600))
	h.jobs.res = exportjob.Result{JobID: 7, Path: path}

	h.d.HandleMessage(context.Background(), msg("/exportjob employees example.com"))

	require.Len(t, h.sender.docs, 1)
	assert.Contains(t, h.sender.docs[0].caption, "job 7")
	assert.Equal(t, "job7_example.com.csv", h.sender.docs[0].filename)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	assert.Contains(t, h.sender.last(), "CSV file sent")
	assert.Contains(t, h.sender.messages[0], "5m0s")
}

func TestExportJobKeepsFileWhenSendFails(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "job8.csv")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	h.jobs.res = exportjob.Result{JobID: 8, Path: path}
	h.sender.docErr = errors.New("upload failed")

	h.d.HandleMessage(context.Background(), msg("/exportjob customers example.com"))

	_, err := os.Stat(path)
	assert.NoError(t, err)
	assert.Contains(t, h.sender.last(), "Failed to send")
}

func TestExportJobErrors(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{exportjob.ErrTimeout, "Timed out"},
		{exportjob.ErrJobFailed, "failed on the server"},
		{exportjob.ErrJobNotFound, "not found"},
		{exportjob.ErrDownloadFailed, "could not be downloaded"},
		{&leakradar.Error{Op: "create export", Kind: leakradar.KindQuota, Status: 403}, "paid plan"},
	}
	for _, tc := range cases {
		t.Run(tc.want, func(t *testing.T) {
			h := newHarness(t)
			h.jobs.res = exportjob.Result{JobID: 9}
			h.jobs.err = tc.err
			h.d.HandleMessage(context.Background(), msg("/exportjob email someone@example.com"))
			assert.True(t, h.jobs.target.Email)
			assert.Contains(t, h.sender.last(), tc.want)
			assert.Empty(t, h.sender.docs)
		})
	}
}

func TestExportCaption(t *testing.T) {
	c := ExportCaption(export.DomainTarget("example.com", leakradar.ThirdParties), 12, 4)
	assert.Contains(t, c, "Third-party")
	assert.Contains(t, c, "12")

	c = ExportCaption(export.EmailTarget("a@b.io"), 1, 0)
	assert.Contains(t, c, "a@b.io")
}
