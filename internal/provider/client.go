package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	httpTimeout  = 15 * time.Second
	maxErrorBody = 512
)

// client is the HTTP plumbing shared by every adapter: one *http.Client and a
// per-provider token bucket that caps outbound request bursts.
type client struct {
	provider string
	baseURL  string
	http     *http.Client
	limiter  *rate.Limiter
}

// Option configures an adapter.
type Option func(*client)

// WithBaseURL points the adapter at a different API root, e.g. a test server.
func WithBaseURL(baseURL string) Option {
	return func(c *client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) { c.http = hc }
}

// WithRateLimit caps outbound requests per second, with an equal burst.
func WithRateLimit(perSecond int) Option {
	return func(c *client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), perSecond)
		}
	}
}

func newClient(provider, baseURL string, opts []Option) client {
	c := client{
		provider: provider,
		baseURL:  baseURL,
		http:     &http.Client{Timeout: httpTimeout},
		limiter:  rate.NewLimiter(rate.Limit(5), 5),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// getJSON issues a GET and decodes a 2xx JSON body into out.
func (c client) getJSON(ctx context.Context, url string, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", c.provider, err)
	}
	return c.do(req, header, out)
}

// postJSON marshals body, POSTs it and decodes a 2xx JSON body into out.
func (c client) postJSON(ctx context.Context, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s: marshal request: %w", c.provider, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%s: build request: %w", c.provider, err)
	}
	header := http.Header{}
	header.Set("Content-Type", "application/json")
	return c.do(req, header, out)
}

func (c client) do(req *http.Request, header http.Header, out any) error {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return fmt.Errorf("%s: rate limit wait: %w", c.provider, err)
	}

	req.Header.Set("Accept", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Drop the request URL from the error; it carries credentials.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return &TransportError{Provider: c.provider, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Provider: c.provider, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return &APIError{Provider: c.provider, StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: json unmarshal: %w", c.provider, err)
	}
	return nil
}
