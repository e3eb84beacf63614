package leakradar

import (
	"context"

	"github.com/Charile333/TGBOT/internal/pagination"
)

// FetchAllDomainLeaks walks every page of a domain listing.
func (c *Client) FetchAllDomainLeaks(ctx context.Context, domain string, kind LeakKind, maxItems int) []Record {
	fetch := func(ctx context.Context, page, pageSize int) ([]Record, error) {
		p, err := c.DomainLeaks(ctx, domain, kind, page, pageSize)
		return p.Items, err
	}
	return pagination.FetchAll(ctx, fetch, c.fetchOptions("fetch_all_"+kind.Path(), maxItems))
}

// FetchAllEmailLeaks walks every page of an email lookup.
func (c *Client) FetchAllEmailLeaks(ctx context.Context, email string, maxItems int) []Record {
	fetch := func(ctx context.Context, page, pageSize int) ([]Record, error) {
		p, err := c.EmailLeaks(ctx, email, page, pageSize)
		return p.Items, err
	}
	return pagination.FetchAll(ctx, fetch, c.fetchOptions("fetch_all_email", maxItems))
}

func (c *Client) fetchOptions(name string, maxItems int) pagination.Options {
	delay := c.opts.PageDelay
	if delay <= 0 {
		delay = pagination.DefaultDelay
	}
	return pagination.Options{
		PageSize: MaxPageSize,
		MaxItems: maxItems,
		Delay:    delay,
		Sleep:    c.opts.Sleep,
		Logger:   c.opts.Logger,
		Name:     name,
	}
}
