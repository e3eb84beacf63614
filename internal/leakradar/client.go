package leakradar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.leakradar.io"

	// MaxPageSize is the largest page the listing endpoints accept.
	MaxPageSize = 100

	defaultQueryTimeout    = 30 * time.Second
	defaultUnlockTimeout   = 60 * time.Second
	defaultDownloadTimeout = 60 * time.Second
)

type Options struct {
	BaseURL         string
	APIKey          string
	QueryTimeout    time.Duration
	UnlockTimeout   time.Duration
	DownloadTimeout time.Duration
	// PageDelay is the pause between page requests in the fetch-all helpers.
	PageDelay time.Duration
	// Sleep overrides the page delay wait, mainly for tests.
	Sleep  func(ctx context.Context, d time.Duration) error
	Logger *slog.Logger
}

func (o Options) normalize() Options {
	o.BaseURL = strings.TrimRight(strings.TrimSpace(o.BaseURL), "/")
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	o.APIKey = strings.TrimSpace(o.APIKey)
	if o.QueryTimeout <= 0 {
		o.QueryTimeout = defaultQueryTimeout
	}
	if o.UnlockTimeout <= 0 {
		o.UnlockTimeout = defaultUnlockTimeout
	}
	if o.DownloadTimeout <= 0 {
		o.DownloadTimeout = defaultDownloadTimeout
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Client talks to the LeakRadar search API. Every call is bearer authenticated
// and bounded by its own timeout.
type Client struct {
	http *http.Client
	opts Options
}

func NewClient(httpClient *http.Client, opts Options) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{http: httpClient, opts: opts.normalize()}
}

func (c *Client) BaseURL() string { return c.opts.BaseURL }

// DomainSummary returns the per-kind leak counts for a domain, including the
// password strength breakdown.
func (c *Client) DomainSummary(ctx context.Context, domain string) (DomainSummary, error) {
	var out DomainSummary
	q := url.Values{"light": {"false"}}
	err := c.doJSON(ctx, "domain summary", http.MethodGet, "/search/domain/"+url.PathEscape(domain), q, nil, c.opts.QueryTimeout, &out)
	return out, err
}

// DomainLeaks returns one page of leaked records of the given kind.
func (c *Client) DomainLeaks(ctx context.Context, domain string, kind LeakKind, page, pageSize int) (Page[Record], error) {
	var out Page[Record]
	path := "/search/domain/" + url.PathEscape(domain) + "/" + kind.Path()
	err := c.doJSON(ctx, kind.Path()+" leaks", http.MethodGet, path, pageQuery(page, pageSize), nil, c.opts.QueryTimeout, &out)
	return out, err
}

// EmailLeaks returns one page of records for an email address or username.
func (c *Client) EmailLeaks(ctx context.Context, email string, page, pageSize int) (Page[Record], error) {
	var out Page[Record]
	body := map[string]any{"email": email}
	err := c.doJSON(ctx, "email leaks", http.MethodPost, "/search/email", pageQuery(page, pageSize), body, c.opts.QueryTimeout, &out)
	return out, err
}

func (c *Client) Subdomains(ctx context.Context, domain string, page, pageSize int) (Page[Subdomain], error) {
	var out Page[Subdomain]
	path := "/search/domain/" + url.PathEscape(domain) + "/subdomains"
	err := c.doJSON(ctx, "subdomains", http.MethodGet, path, pageQuery(page, pageSize), nil, c.opts.QueryTimeout, &out)
	return out, err
}

func (c *Client) URLs(ctx context.Context, domain string, page, pageSize int) (Page[LeakedURL], error) {
	var out Page[LeakedURL]
	path := "/search/domain/" + url.PathEscape(domain) + "/urls"
	err := c.doJSON(ctx, "urls", http.MethodGet, path, pageQuery(page, pageSize), nil, c.opts.QueryTimeout, &out)
	return out, err
}

// UnlockDomainLeaks unlocks up to max records. A 404 means there is nothing
// left to unlock and yields an empty slice with no error.
func (c *Client) UnlockDomainLeaks(ctx context.Context, domain string, kind LeakKind, max int) ([]Record, error) {
	path := "/search/domain/" + url.PathEscape(domain) + "/" + kind.Path() + "/unlock"
	q := url.Values{"max": {strconv.Itoa(max)}}
	return c.unlock(ctx, "unlock "+kind.Path(), path, q, nil)
}

func (c *Client) UnlockEmailLeaks(ctx context.Context, email string, max int) ([]Record, error) {
	body := map[string]any{"email": email, "max": max}
	return c.unlock(ctx, "unlock email", "/search/email/unlock", nil, body)
}

func (c *Client) unlock(ctx context.Context, op, path string, q url.Values, body any) ([]Record, error) {
	var raw json.RawMessage
	err := c.doJSON(ctx, op, http.MethodPost, path, q, body, c.opts.UnlockTimeout, &raw)
	if errors.Is(err, ErrNotFound) {
		c.opts.Logger.Info("leakradar_unlock_nothing", "op", op)
		return []Record{}, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeUnlocked(op, raw)
}

// decodeUnlocked accepts either a bare list or a page-shaped object.
func decodeUnlocked(op string, raw json.RawMessage) ([]Record, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []Record{}, nil
	}
	switch raw[0] {
	case '[':
		var items []Record
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, &Error{Op: op, Kind: KindDecode, Err: err}
		}
		return items, nil
	case '{':
		var page Page[Record]
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, &Error{Op: op, Kind: KindDecode, Err: err}
		}
		if page.Items == nil {
			return []Record{}, nil
		}
		return page.Items, nil
	default:
		return nil, &Error{Op: op, Kind: KindDecode, Err: fmt.Errorf("unexpected payload")}
	}
}

func (c *Client) CreateDomainExport(ctx context.Context, domain string, kind LeakKind) (ExportCreated, error) {
	var out ExportCreated
	path := "/search/domain/" + url.PathEscape(domain) + "/" + kind.Path() + "/export"
	err := c.doJSON(ctx, "create export", http.MethodPost, path, url.Values{"format": {"csv"}}, nil, c.opts.QueryTimeout, &out)
	return out, err
}

func (c *Client) CreateEmailExport(ctx context.Context, email string) (ExportCreated, error) {
	var out ExportCreated
	body := map[string]any{"email": email}
	err := c.doJSON(ctx, "create export", http.MethodPost, "/search/email/export", url.Values{"format": {"csv"}}, body, c.opts.QueryTimeout, &out)
	return out, err
}

// ListExports returns a page of export jobs, most recent first.
func (c *Client) ListExports(ctx context.Context, page, pageSize int) (Page[ExportJob], error) {
	var out Page[ExportJob]
	q := url.Values{"page": {strconv.Itoa(max(page, 1))}, "page_size": {strconv.Itoa(max(pageSize, 1))}}
	err := c.doJSON(ctx, "list exports", http.MethodGet, "/exports", q, nil, c.opts.QueryTimeout, &out)
	return out, err
}

// ResolveURL turns an API path or a relative link into an absolute URL on the
// configured base.
func (c *Client) ResolveURL(ref string) string {
	ref = strings.TrimSpace(ref)
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return c.opts.BaseURL + "/" + strings.TrimLeft(ref, "/")
}

// Download opens a GET on rawURL. The API key is only attached when rawURL
// points at the API host, so presigned storage links never see it. The caller
// must close the returned body and call cancel.
func (c *Client) Download(ctx context.Context, rawURL string) (io.ReadCloser, context.CancelFunc, error) {
	const op = "download"
	reqCtx, cancel := context.WithTimeout(ctx, c.opts.DownloadTimeout)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.ResolveURL(rawURL), nil)
	if err != nil {
		cancel()
		return nil, nil, &Error{Op: op, Kind: KindTransport, Err: err}
	}
	if c.isAPIHost(req.URL) {
		c.authorize(req)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		cancel()
		return nil, nil, transportError(op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		cancel()
		return nil, nil, statusError(op, resp.StatusCode, raw)
	}
	return resp.Body, cancel, nil
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, q url.Values, body any, timeout time.Duration, out any) error {
	u := c.opts.BaseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &Error{Op: op, Kind: KindTransport, Err: err}
		}
		reader = bytes.NewReader(b)
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, method, u, reader)
	if err != nil {
		return &Error{Op: op, Kind: KindTransport, Err: err}
	}
	c.authorize(req)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.opts.Logger.Warn("leakradar_request_error", "op", op, "error", err.Error())
		return transportError(op, err)
	}
	raw, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return transportError(op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := statusError(op, resp.StatusCode, raw)
		c.opts.Logger.Warn("leakradar_request_status", "op", op, "status", resp.StatusCode, "detail", apiErr.Detail)
		return apiErr
	}
	c.opts.Logger.Debug("leakradar_request_ok", "op", op, "status", resp.StatusCode, "duration", time.Since(start).String())

	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = []byte("null")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Op: op, Kind: KindDecode, Status: resp.StatusCode, Err: err}
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.opts.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
	}
}

func (c *Client) isAPIHost(u *url.URL) bool {
	base, err := url.Parse(c.opts.BaseURL)
	if err != nil || u == nil {
		return false
	}
	return strings.EqualFold(base.Host, u.Host)
}

func pageQuery(page, pageSize int) url.Values {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return url.Values{"page": {strconv.Itoa(page)}, "page_size": {strconv.Itoa(pageSize)}}
}

func transportError(op string, err error) *Error {
	return &Error{Op: op, Kind: KindTransport, Timeout: isTimeout(err), Err: err}
}

func statusError(op string, status int, raw []byte) *Error {
	return &Error{Op: op, Kind: kindForStatus(status), Status: status, Detail: detailFromBody(raw)}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// detailFromBody extracts the FastAPI style "detail" field, which is either a
// string or a list of validation entries.
func detailFromBody(raw []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(body.Detail, &s); err == nil {
		return strings.TrimSpace(s)
	}
	d := strings.TrimSpace(string(body.Detail))
	if len(d) > 200 {
		d = d[:200] + "..."
	}
	return d
}
