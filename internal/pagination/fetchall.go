// Package pagination drains paginated listings into a single slice.
package pagination

import (
	"context"
	"log/slog"
	"time"
)

const (
	DefaultPageSize = 100
	DefaultMaxItems = 10000
	DefaultDelay    = 500 * time.Millisecond
)

// PageFunc fetches one 1-based page.
type PageFunc[T any] func(ctx context.Context, page, pageSize int) ([]T, error)

type Options struct {
	PageSize int
	MaxItems int
	// Delay is slept before every request except the first. It is fixed and
	// does not react to server responses.
	Delay time.Duration
	// Sleep replaces the context-aware sleep in tests.
	Sleep  func(ctx context.Context, d time.Duration) error
	Logger *slog.Logger
	// Name labels log lines.
	Name string
}

func (o Options) normalize() Options {
	if o.PageSize <= 0 {
		o.PageSize = DefaultPageSize
	}
	if o.MaxItems <= 0 {
		o.MaxItems = DefaultMaxItems
	}
	if o.Delay < 0 {
		o.Delay = 0
	}
	if o.Sleep == nil {
		o.Sleep = SleepContext
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Name == "" {
		o.Name = "fetch_all"
	}
	return o
}

// FetchAll requests pages until one comes back empty or short, the item cap is
// reached, or a request fails. A failure ends the walk and whatever was
// gathered before it is returned. There is no retry.
func FetchAll[T any](ctx context.Context, fetch PageFunc[T], opts Options) []T {
	opts = opts.normalize()
	out := make([]T, 0)
	for page := 1; ; page++ {
		if page > 1 && opts.Delay > 0 {
			if err := opts.Sleep(ctx, opts.Delay); err != nil {
				opts.Logger.Info(opts.Name+"_cancelled", "page", page, "items", len(out))
				return out
			}
		}
		items, err := fetch(ctx, page, opts.PageSize)
		if err != nil {
			opts.Logger.Warn(opts.Name+"_page_error", "page", page, "items", len(out), "error", err.Error())
			return out
		}
		if len(items) == 0 {
			break
		}
		out = append(out, items...)
		opts.Logger.Debug(opts.Name+"_page", "page", page, "page_items", len(items), "items", len(out))
		if len(out) >= opts.MaxItems {
			out = out[:opts.MaxItems]
			break
		}
		if len(items) < opts.PageSize {
			break
		}
	}
	return out
}

// SleepContext waits for d or until ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
