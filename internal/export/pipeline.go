// Package export runs the unlock, fetch, CSV and deliver sequence for one
// leak kind or for all of them.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"

	"github.com/Charile333/TGBOT/internal/leakradar"
)

const DefaultMaxItems = 10000

type LeakSource interface {
	UnlockDomainLeaks(ctx context.Context, domain string, kind leakradar.LeakKind, max int) ([]leakradar.Record, error)
	UnlockEmailLeaks(ctx context.Context, email string, max int) ([]leakradar.Record, error)
	FetchAllDomainLeaks(ctx context.Context, domain string, kind leakradar.LeakKind, maxItems int) []leakradar.Record
	FetchAllEmailLeaks(ctx context.Context, email string, maxItems int) []leakradar.Record
}

type DocumentSender interface {
	SendDocument(ctx context.Context, chatID int64, path, filename, caption string) error
}

type Materializer interface {
	Write(records []leakradar.Record, prefix string) (string, error)
}

// Target names what to export: a domain and kind, or an email.
type Target struct {
	Subject string
	Kind    leakradar.LeakKind
	Email   bool
}

func DomainTarget(domain string, kind leakradar.LeakKind) Target {
	return Target{Subject: domain, Kind: kind}
}

func EmailTarget(email string) Target {
	return Target{Subject: email, Email: true}
}

func (t Target) prefix() string {
	if t.Email {
		return "email_" + t.Subject
	}
	return t.Subject + "_" + t.Kind.Path()
}

func (t Target) String() string {
	if t.Email {
		return "email:" + t.Subject
	}
	return t.Kind.Path() + ":" + t.Subject
}

type Status int

const (
	StatusDelivered Status = iota
	StatusNoData
	StatusMaterializeFailed
	StatusDeliveryFailed
)

func (s Status) String() string {
	switch s {
	case StatusDelivered:
		return "delivered"
	case StatusNoData:
		return "no_data"
	case StatusMaterializeFailed:
		return "materialize_failed"
	case StatusDeliveryFailed:
		return "delivery_failed"
	default:
		return "unknown"
	}
}

// Outcome is the receipt of one export attempt.
type Outcome struct {
	Target   Target
	Status   Status
	Records  int
	Unlocked int
	// UnlockErr is recorded but never stops the export.
	UnlockErr error
	// Path is the file left behind when delivery failed.
	Path string
	Err  error
}

func (o Outcome) Delivered() bool { return o.Status == StatusDelivered }

// Report summarises ExportAll. Err aggregates every failed kind.
type Report struct {
	Attempted int
	Completed int
	Outcomes  []Outcome
	Err       error
}

// CaptionFunc builds the document caption for a finished export.
type CaptionFunc func(t Target, records, unlocked int) string

type Options struct {
	MaxItems int
	Caption  CaptionFunc
	Logger   *slog.Logger
}

type Pipeline struct {
	source LeakSource
	sender DocumentSender
	writer Materializer
	opts   Options
}

func NewPipeline(source LeakSource, sender DocumentSender, writer Materializer, opts Options) *Pipeline {
	if opts.MaxItems <= 0 {
		opts.MaxItems = DefaultMaxItems
	}
	if opts.Caption == nil {
		opts.Caption = func(t Target, records, unlocked int) string {
			return fmt.Sprintf("%s: %d records (%d unlocked now)", t, records, unlocked)
		}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Pipeline{source: source, sender: sender, writer: writer, opts: opts}
}

// ExportOne unlocks what it can, fetches everything up to MaxItems, writes a
// CSV and sends it. The file is removed only after a successful send.
func (p *Pipeline) ExportOne(ctx context.Context, chatID int64, t Target) Outcome {
	logger := p.opts.Logger.With("target", t.String(), "chat_id", chatID)
	out := Outcome{Target: t}

	var unlocked []leakradar.Record
	var err error
	if t.Email {
		unlocked, err = p.source.UnlockEmailLeaks(ctx, t.Subject, p.opts.MaxItems)
	} else {
		unlocked, err = p.source.UnlockDomainLeaks(ctx, t.Subject, t.Kind, p.opts.MaxItems)
	}
	if err != nil {
		out.UnlockErr = err
		logger.Warn("export_unlock_error", "error", err.Error())
	} else {
		out.Unlocked = len(unlocked)
		logger.Info("export_unlocked", "count", out.Unlocked)
	}

	var records []leakradar.Record
	if t.Email {
		records = p.source.FetchAllEmailLeaks(ctx, t.Subject, p.opts.MaxItems)
	} else {
		records = p.source.FetchAllDomainLeaks(ctx, t.Subject, t.Kind, p.opts.MaxItems)
	}
	out.Records = len(records)
	if len(records) == 0 {
		out.Status = StatusNoData
		logger.Info("export_no_data")
		return out
	}

	path, err := p.writer.Write(records, t.prefix())
	if err != nil {
		out.Status = StatusMaterializeFailed
		out.Err = fmt.Errorf("write csv for %s: %w", t, err)
		logger.Warn("export_materialize_error", "error", err.Error())
		return out
	}

	caption := p.opts.Caption(t, out.Records, out.Unlocked)
	if err := p.sender.SendDocument(ctx, chatID, path, filepath.Base(path), caption); err != nil {
		out.Status = StatusDeliveryFailed
		out.Path = path
		out.Err = fmt.Errorf("send %s: %w", filepath.Base(path), err)
		logger.Warn("export_delivery_error", "path", path, "error", err.Error())
		return out
	}

	out.Status = StatusDelivered
	if err := os.Remove(path); err != nil {
		logger.Warn("export_cleanup_error", "path", path, "error", err.Error())
	}
	logger.Info("export_delivered", "records", out.Records, "unlocked", out.Unlocked)
	return out
}

// ExportAll exports every leak kind of domain in order. A failing kind never
// stops the remaining ones.
func (p *Pipeline) ExportAll(ctx context.Context, chatID int64, domain string) Report {
	var rep Report
	var errs *multierror.Error
	for _, kind := range leakradar.LeakKinds {
		o := p.ExportOne(ctx, chatID, DomainTarget(domain, kind))
		rep.Attempted++
		rep.Outcomes = append(rep.Outcomes, o)
		if o.Delivered() {
			rep.Completed++
		}
		if o.Err != nil {
			errs = multierror.Append(errs, o.Err)
		}
	}
	rep.Err = errs.ErrorOrNil()
	p.opts.Logger.Info("export_all_done", "domain", domain, "attempted", rep.Attempted, "completed", rep.Completed)
	return rep
}
