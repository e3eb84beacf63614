// Package exportjob drives LeakRadar's server-side export jobs: create,
// wait for completion, then download the result.
package exportjob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/Charile333/TGBOT/internal/export"
	"github.com/Charile333/TGBOT/internal/fsstore"
	"github.com/Charile333/TGBOT/internal/leakradar"
	"github.com/Charile333/TGBOT/internal/pagination"
)

const (
	DefaultPollInterval = 5 * time.Second
	DefaultMaxWait      = 300 * time.Second
	DefaultMaxBytes     = 50 << 20

	// statusPageSize is how many recent jobs are scanned for the one we wait on.
	statusPageSize = 100
)

var (
	ErrTimeout        = errors.New("exportjob: timed out waiting for completion")
	ErrJobFailed      = errors.New("exportjob: job failed")
	ErrJobNotFound    = errors.New("exportjob: job not found")
	ErrDownloadFailed = errors.New("exportjob: all download strategies failed")
)

type API interface {
	CreateDomainExport(ctx context.Context, domain string, kind leakradar.LeakKind) (leakradar.ExportCreated, error)
	CreateEmailExport(ctx context.Context, email string) (leakradar.ExportCreated, error)
	ListExports(ctx context.Context, page, pageSize int) (leakradar.Page[leakradar.ExportJob], error)
	Download(ctx context.Context, rawURL string) (io.ReadCloser, context.CancelFunc, error)
}

type Options struct {
	Dir          string
	PollInterval time.Duration
	MaxWait      time.Duration
	MaxBytes     int64
	Now          func() time.Time
	Sleep        func(ctx context.Context, d time.Duration) error
	Logger       *slog.Logger
}

func (o Options) normalize() Options {
	if o.Dir == "" {
		o.Dir = "temp_exports"
	}
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.MaxWait <= 0 {
		o.MaxWait = DefaultMaxWait
	}
	if o.MaxBytes <= 0 {
		o.MaxBytes = DefaultMaxBytes
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Sleep == nil {
		o.Sleep = pagination.SleepContext
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

type Poller struct {
	api  API
	opts Options
}

func New(api API, opts Options) *Poller {
	return &Poller{api: api, opts: opts.normalize()}
}

// MaxWait is the configured completion bound.
func (p *Poller) MaxWait() time.Duration { return p.opts.MaxWait }

// Create starts a CSV export job for t and returns its id.
func (p *Poller) Create(ctx context.Context, t export.Target) (int64, error) {
	var created leakradar.ExportCreated
	var err error
	if t.Email {
		created, err = p.api.CreateEmailExport(ctx, t.Subject)
	} else {
		created, err = p.api.CreateDomainExport(ctx, t.Subject, t.Kind)
	}
	if err != nil {
		return 0, err
	}
	if created.ExportID == 0 {
		return 0, fmt.Errorf("exportjob: create %s: response carries no export_id", t)
	}
	p.opts.Logger.Info("export_job_created", "id", created.ExportID, "target", t.String())
	return created.ExportID, nil
}

// Status looks id up among the most recent jobs.
func (p *Poller) Status(ctx context.Context, id int64) (leakradar.ExportJob, error) {
	page, err := p.api.ListExports(ctx, 1, statusPageSize)
	if err != nil {
		return leakradar.ExportJob{}, err
	}
	for _, j := range page.Items {
		if j.ID == id {
			return j, nil
		}
	}
	return leakradar.ExportJob{}, fmt.Errorf("%w: id %d", ErrJobNotFound, id)
}

// AwaitCompletion polls the job list every PollInterval until the job is
// COMPLETED, fails, disappears, or MaxWait elapses. The job itself is left
// running on timeout.
func (p *Poller) AwaitCompletion(ctx context.Context, id int64) (leakradar.ExportJob, error) {
	logger := p.opts.Logger.With("id", id)
	start := p.opts.Now()
	for polls := 1; p.opts.Now().Sub(start) < p.opts.MaxWait; polls++ {
		job, err := p.Status(ctx, id)
		if err != nil {
			return leakradar.ExportJob{}, err
		}
		status := job.Status.Normalize()
		switch {
		case status == leakradar.JobCompleted:
			logger.Info("export_job_completed", "polls", polls)
			return job, nil
		case status.IsFailure():
			return job, fmt.Errorf("%w: id %d status %s", ErrJobFailed, id, status)
		}
		logger.Debug("export_job_pending", "status", string(status), "polls", polls)
		if err := p.opts.Sleep(ctx, p.opts.PollInterval); err != nil {
			return leakradar.ExportJob{}, err
		}
	}
	return leakradar.ExportJob{}, fmt.Errorf("%w: id %d after %s", ErrTimeout, id, p.opts.MaxWait)
}

// Strategy is one way of fetching a finished export.
type Strategy struct {
	Name string
	URL  func(job leakradar.ExportJob) string
}

// Strategies are tried in order, once each.
var Strategies = []Strategy{
	{Name: "direct_url", URL: func(j leakradar.ExportJob) string { return j.DirectURL() }},
	{Name: "download_endpoint", URL: func(j leakradar.ExportJob) string {
		return "/exports/" + strconv.FormatInt(j.ID, 10) + "/download"
	}},
	{Name: "file_endpoint", URL: func(j leakradar.ExportJob) string {
		return "/exports/" + strconv.FormatInt(j.ID, 10) + "/file"
	}},
}

// Download saves the export of a completed job into the export directory.
// The first strategy that succeeds wins.
func (p *Poller) Download(ctx context.Context, job leakradar.ExportJob) (string, error) {
	name := job.Filename
	if name == "" {
		name = fmt.Sprintf("export_%d.csv", job.ID)
	}
	dst := filepath.Join(p.opts.Dir, fmt.Sprintf("job%d_%s", job.ID, export.SafeName(name)))

	var errs *multierror.Error
	for _, s := range Strategies {
		u := s.URL(job)
		if u == "" {
			continue
		}
		n, err := p.fetchTo(ctx, u, dst)
		if err != nil {
			p.opts.Logger.Warn("export_download_attempt_failed", "id", job.ID, "strategy", s.Name, "error", err.Error())
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", s.Name, err))
			continue
		}
		p.opts.Logger.Info("export_downloaded", "id", job.ID, "strategy", s.Name, "bytes", n)
		return dst, nil
	}
	return "", fmt.Errorf("%w: %w", ErrDownloadFailed, errs.ErrorOrNil())
}

func (p *Poller) fetchTo(ctx context.Context, rawURL, dst string) (int64, error) {
	body, cancel, err := p.api.Download(ctx, rawURL)
	if err != nil {
		return 0, err
	}
	defer cancel()
	defer body.Close()
	return fsstore.WriteStreamAtomic(dst, body, p.opts.MaxBytes, fsstore.FileOptions{})
}

// Result is a downloaded export.
type Result struct {
	JobID int64
	Job   leakradar.ExportJob
	Path  string
}

// Run creates a job for t, waits for it and downloads the file.
func (p *Poller) Run(ctx context.Context, t export.Target) (Result, error) {
	id, err := p.Create(ctx, t)
	if err != nil {
		return Result{}, err
	}
	res := Result{JobID: id}
	job, err := p.AwaitCompletion(ctx, id)
	if err != nil {
		return res, err
	}
	res.Job = job
	path, err := p.Download(ctx, job)
	if err != nil {
		return res, err
	}
	res.Path = path
	return res, nil
}
