// Package dispatch turns chat messages into LeakRadar lookups and exports.
// Every message gets exactly one final reply, preceded by an
// acknowledgement when network work is involved.
package dispatch

//go:generate go run go.uber.org/mock/mockgen -package=dispatchmock -destination=dispatchmock/leakapi_mock.go github.com/Charile333/TGBOT/internal/dispatch LeakAPI

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/Charile333/TGBOT/internal/export"
	"github.com/Charile333/TGBOT/internal/exportjob"
	"github.com/Charile333/TGBOT/internal/leakradar"
	"github.com/Charile333/TGBOT/internal/replyfmt"
	"github.com/Charile333/TGBOT/internal/telegram"
)

const (
	listPageSize   = 10
	domainPageSize = 20
	exportsListMax = 10
)

// LeakAPI is the query side of the LeakRadar client.
type LeakAPI interface {
	DomainSummary(ctx context.Context, domain string) (leakradar.DomainSummary, error)
	DomainLeaks(ctx context.Context, domain string, kind leakradar.LeakKind, page, pageSize int) (leakradar.Page[leakradar.Record], error)
	EmailLeaks(ctx context.Context, email string, page, pageSize int) (leakradar.Page[leakradar.Record], error)
	Subdomains(ctx context.Context, domain string, page, pageSize int) (leakradar.Page[leakradar.Subdomain], error)
	URLs(ctx context.Context, domain string, page, pageSize int) (leakradar.Page[leakradar.LeakedURL], error)
	ListExports(ctx context.Context, page, pageSize int) (leakradar.Page[leakradar.ExportJob], error)
}

type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendDocument(ctx context.Context, chatID int64, path, filename, caption string) error
}

type Exporter interface {
	ExportOne(ctx context.Context, chatID int64, t export.Target) export.Outcome
	ExportAll(ctx context.Context, chatID int64, domain string) export.Report
}

type JobRunner interface {
	Run(ctx context.Context, t export.Target) (exportjob.Result, error)
	MaxWait() time.Duration
}

type Dispatcher struct {
	api      LeakAPI
	sender   Sender
	exporter Exporter
	jobs     JobRunner
	logger   *slog.Logger
	newID    func() string
}

func New(api LeakAPI, sender Sender, exporter Exporter, jobs JobRunner, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		api:      api,
		sender:   sender,
		exporter: exporter,
		jobs:     jobs,
		logger:   logger,
		newID:    uuid.NewString,
	}
}

// turn carries per-message state through one dispatch.
type turn struct {
	chatID int64
	from   *telegram.User
	logger *slog.Logger
}

// HandleMessage parses msg and runs the matching handler to completion.
func (d *Dispatcher) HandleMessage(ctx context.Context, msg *telegram.Message) {
	if msg == nil || msg.Chat == nil {
		return
	}
	t := turn{
		chatID: msg.Chat.ID,
		from:   msg.From,
		logger: d.logger.With("request_id", d.newID(), "chat_id", msg.Chat.ID),
	}

	intent, err := Parse(msg.Text)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			t.logger.Info("dispatch_rejected", "reason", perr.Key)
			d.reply(ctx, t, perr.Reply())
			return
		}
		t.logger.Warn("dispatch_parse_error", "error", err.Error())
		return
	}
	t.logger.Info("dispatch_intent", "intent", intent.Kind.String(), "command", intent.Command, "subject", intent.Subject)

	switch intent.Kind {
	case IntentStartHelp:
		d.startHelp(ctx, t, intent)
	case IntentDomainLookup:
		d.domainLookup(ctx, t, intent)
	case IntentListLeaks:
		d.listLeaks(ctx, t, intent)
	case IntentEmailLookup:
		d.emailLookup(ctx, t, intent)
	case IntentSubdomainLookup:
		d.subdomains(ctx, t, intent)
	case IntentURLLookup:
		d.urls(ctx, t, intent)
	case IntentExportsList:
		d.exportsList(ctx, t)
	case IntentExport:
		d.ack(ctx, t, "export_kind_ack", replyfmt.Fields{"Kind": kindWord(intent.LeakKind), "Subject": intent.Subject})
		d.exportOne(ctx, t, export.DomainTarget(intent.Subject, intent.LeakKind))
	case IntentExportEmail:
		d.ack(ctx, t, "export_email_ack", replyfmt.Fields{"Subject": intent.Subject})
		d.exportOne(ctx, t, export.EmailTarget(intent.Subject))
	case IntentExportAll:
		d.exportAll(ctx, t, intent)
	case IntentExportJob:
		d.exportJob(ctx, t, intent)
	default:
		d.reply(ctx, t, replyfmt.Text("unknown_command", replyfmt.Fields{"Command": intent.Command}))
	}
}

func (d *Dispatcher) startHelp(ctx context.Context, t turn, in Intent) {
	if in.Command == "/start" {
		d.reply(ctx, t, replyfmt.Text("start", replyfmt.Fields{"Name": t.from.FirstNameOr("there")}))
		return
	}
	d.reply(ctx, t, replyfmt.Text("help", nil))
}

func (d *Dispatcher) domainLookup(ctx context.Context, t turn, in Intent) {
	d.ack(ctx, t, "processing_domain", replyfmt.Fields{"Subject": in.Subject})
	summary, err := d.api.DomainSummary(ctx, in.Subject)
	if err != nil {
		d.fail(ctx, t, "query_failed_domain", in.Subject, err)
		return
	}
	d.reply(ctx, t, replyfmt.DomainSummary(in.Subject, summary))
}

func (d *Dispatcher) listLeaks(ctx context.Context, t turn, in Intent) {
	d.ack(ctx, t, "processing_leaks", replyfmt.Fields{"Kind": kindWord(in.LeakKind), "Subject": in.Subject})
	page, err := d.api.DomainLeaks(ctx, in.Subject, in.LeakKind, 1, listPageSize)
	if err != nil {
		d.fail(ctx, t, "query_failed", in.Subject, err)
		return
	}
	d.reply(ctx, t, replyfmt.LeakList(in.LeakKind, in.Subject, page))
}

func (d *Dispatcher) emailLookup(ctx context.Context, t turn, in Intent) {
	d.ack(ctx, t, "processing_email", replyfmt.Fields{"Subject": in.Subject})
	page, err := d.api.EmailLeaks(ctx, in.Subject, 1, listPageSize)
	if err != nil {
		d.fail(ctx, t, "query_failed_email", in.Subject, err)
		return
	}
	d.reply(ctx, t, replyfmt.EmailResult(in.Subject, page))
}

func (d *Dispatcher) subdomains(ctx context.Context, t turn, in Intent) {
	d.ack(ctx, t, "processing_subdomains", replyfmt.Fields{"Subject": in.Subject})
	page, err := d.api.Subdomains(ctx, in.Subject, 1, domainPageSize)
	if err != nil {
		d.fail(ctx, t, "query_failed_domain", in.Subject, err)
		return
	}
	d.reply(ctx, t, replyfmt.Subdomains(in.Subject, page))
}

func (d *Dispatcher) urls(ctx context.Context, t turn, in Intent) {
	d.ack(ctx, t, "processing_urls", replyfmt.Fields{"Subject": in.Subject})
	page, err := d.api.URLs(ctx, in.Subject, 1, domainPageSize)
	if err != nil {
		d.fail(ctx, t, "query_failed_domain", in.Subject, err)
		return
	}
	d.reply(ctx, t, replyfmt.URLs(in.Subject, page))
}

func (d *Dispatcher) exportsList(ctx context.Context, t turn) {
	d.ack(ctx, t, "processing_exports", nil)
	page, err := d.api.ListExports(ctx, 1, exportsListMax)
	if err != nil {
		t.logger.Warn("dispatch_call_error", "error", err.Error())
		d.reply(ctx, t, replyfmt.Text("exports_failed", replyfmt.Fields{"Error": replyfmt.ErrorText(err)}))
		return
	}
	d.reply(ctx, t, replyfmt.ExportJobs(page))
}

func (d *Dispatcher) exportOne(ctx context.Context, t turn, target export.Target) {
	out := d.exporter.ExportOne(ctx, t.chatID, target)
	switch out.Status {
	case export.StatusDelivered:
		d.reply(ctx, t, replyfmt.Text("export_sent", nil))
	case export.StatusNoData:
		d.reply(ctx, t, replyfmt.Text("export_no_data", nil))
	case export.StatusMaterializeFailed:
		d.reply(ctx, t, replyfmt.Text("export_build_failed", nil))
	default:
		d.reply(ctx, t, replyfmt.Text("export_send_failed", nil))
	}
}

func (d *Dispatcher) exportAll(ctx context.Context, t turn, in Intent) {
	d.ack(ctx, t, "export_all_ack", replyfmt.Fields{"Subject": in.Subject})
	rep := d.exporter.ExportAll(ctx, t.chatID, in.Subject)
	if rep.Err != nil {
		t.logger.Warn("dispatch_export_all_partial", "completed", rep.Completed, "attempted", rep.Attempted, "error", rep.Err.Error())
	}
	if rep.Completed > 0 {
		d.reply(ctx, t, replyfmt.Text("export_all_done", replyfmt.Fields{"Count": rep.Completed}))
		return
	}
	d.reply(ctx, t, replyfmt.Text("export_all_none", nil))
}

func (d *Dispatcher) exportJob(ctx context.Context, t turn, in Intent) {
	target := export.DomainTarget(in.Subject, in.LeakKind)
	kind := kindWord(in.LeakKind)
	if in.Email {
		target = export.EmailTarget(in.Subject)
		kind = "email"
	}
	d.ack(ctx, t, "exportjob_ack", replyfmt.Fields{"Kind": kind, "Subject": in.Subject, "MaxWait": d.jobs.MaxWait().String()})

	res, err := d.jobs.Run(ctx, target)
	if err != nil {
		t.logger.Warn("dispatch_export_job_error", "job_id", res.JobID, "error", err.Error())
		d.reply(ctx, t, replyfmt.Text("exportjob_failed", replyfmt.Fields{"ID": res.JobID, "Error": jobErrorText(err)}))
		return
	}

	caption := replyfmt.Text("job_caption", replyfmt.Fields{"ID": res.JobID, "Subject": in.Subject, "Kind": kind})
	if err := d.sender.SendDocument(ctx, t.chatID, res.Path, filepath.Base(res.Path), caption); err != nil {
		t.logger.Warn("dispatch_send_document_error", "path", res.Path, "error", err.Error())
		d.reply(ctx, t, replyfmt.Text("export_send_failed", nil))
		return
	}
	if err := os.Remove(res.Path); err != nil {
		t.logger.Warn("dispatch_cleanup_error", "path", res.Path, "error", err.Error())
	}
	d.reply(ctx, t, replyfmt.Text("export_sent", nil))
}

func jobErrorText(err error) string {
	switch {
	case errors.Is(err, exportjob.ErrTimeout):
		return "Timed out waiting for the export, the job may still be running"
	case errors.Is(err, exportjob.ErrJobFailed):
		return "The export job failed on the server"
	case errors.Is(err, exportjob.ErrJobNotFound):
		return "The export job was not found"
	case errors.Is(err, exportjob.ErrDownloadFailed):
		return "The export finished but the file could not be downloaded"
	default:
		return replyfmt.ErrorText(err)
	}
}

// ExportCaption builds the document caption for a pipeline export.
func ExportCaption(t export.Target, records, unlocked int) string {
	if t.Email {
		return replyfmt.EmailCaption(t.Subject, records, unlocked)
	}
	return replyfmt.DomainCaption(t.Subject, t.Kind, records, unlocked)
}

func kindWord(k leakradar.LeakKind) string {
	return k.Label()
}

func (d *Dispatcher) ack(ctx context.Context, t turn, key string, f replyfmt.Fields) {
	d.reply(ctx, t, replyfmt.Text(key, f))
}

func (d *Dispatcher) fail(ctx context.Context, t turn, key, subj string, err error) {
	t.logger.Warn("dispatch_call_error", "error", err.Error())
	d.reply(ctx, t, replyfmt.Text(key, replyfmt.Fields{"Subject": subj, "Error": replyfmt.ErrorText(err)}))
}

func (d *Dispatcher) reply(ctx context.Context, t turn, text string) {
	if err := d.sender.SendMessage(ctx, t.chatID, text); err != nil {
		t.logger.Warn("telegram_send_error", "error", err.Error())
	}
}
