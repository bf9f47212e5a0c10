// Package backend talks to the earnings job queue over HTTP.
package backend

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Veraticus/hntax/internal/common"
	"github.com/Veraticus/hntax/internal/model"
	"github.com/hashicorp/go-cleanhttp"
)

// maxBodySize bounds how much of a response is read.
const maxBodySize = 32 << 20

// Client implements service.JobQueue against the backend's HTTP API.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	logger     *slog.Logger
	userAgent  string
	timeout    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the pooled default client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds each request. Zero means no client-side timeout. The
// timeout is set on a copy, so a client passed to WithHTTPClient is left as
// it was.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithLogger sets the logger for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a client for the backend rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("%w: backend base URL", common.ErrMissingConfig)
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: backend base URL %q: %v", common.ErrInvalidConfig, baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: backend base URL %q must be http or https", common.ErrInvalidConfig, baseURL)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")

	c := &Client{
		baseURL:    u,
		httpClient: cleanhttp.DefaultPooledClient(),
		logger:     slog.Default(),
		userAgent:  "hntax",
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}

	return c, nil
}

// Enqueue registers a job. The response body is ignored.
func (c *Client) Enqueue(ctx context.Context, address model.Address, year model.TaxYear) error {
	body, err := c.get(ctx, "enqueue", address, year)
	if err != nil {
		return err
	}

	c.logger.Debug("Job enqueued",
		"address", address.Short(),
		"tax_year", year.String(),
		"response_bytes", len(body))
	return nil
}

// Poll fetches job status; a missing or falsy data field means not ready.
func (c *Client) Poll(ctx context.Context, address model.Address, year model.TaxYear) (model.PollResult, error) {
	body, err := c.get(ctx, "data", address, year)
	if err != nil {
		return model.PollResult{}, err
	}

	result, err := model.DecodePollResult(body)
	if err != nil {
		return model.PollResult{}, fmt.Errorf("%w: %v", common.ErrTransport, err)
	}

	c.logger.Debug("Polled job",
		"address", address.Short(),
		"tax_year", year.String(),
		"ready", result.Ready,
		"records", len(result.Data))
	return result, nil
}

// endpoint builds {base}/{resource}/{address}?tax_year={year}.
func (c *Client) endpoint(resource string, address model.Address, year model.TaxYear) string {
	u := *c.baseURL
	u.Path = u.Path + "/" + resource + "/" + address.String()
	u.RawPath = ""

	q := url.Values{}
	q.Set("tax_year", year.String())
	u.RawQuery = q.Encode()

	return u.String()
}

func (c *Client) get(ctx context.Context, resource string, address model.Address, year model.TaxYear) ([]byte, error) {
	endpoint := c.endpoint(resource, address, year)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", resource, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", common.ErrTransport, resource, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s response: %v", common.ErrTransport, resource, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned %d: %s", common.ErrTransport, resource, resp.StatusCode, truncate(string(body), 200))
	}

	return body, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
