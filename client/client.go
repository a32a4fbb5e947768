package client

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/adamwoolhether/requisition/client/throttle"
)

// Version is reported in the default User-Agent header.
const Version = "1.0.0"

// DefaultUserAgent is sent on every request that does not set its own.
const DefaultUserAgent = "requisition/" + Version + " (+https://github.com/adamwoolhether/requisition)"

// DefaultExpectContinueTimeout is how long a request sent with
// [Request.ExpectContinue] waits for "100 Continue" on a transport that
// sets no ExpectContinueTimeout of its own.
const DefaultExpectContinueTimeout = time.Second

// Client is a request factory. It holds the transport, logger, tracer and
// an immutable snapshot of default request configuration; it is safe for
// concurrent use.
type Client struct {
	hc        *http.Client
	logger    *slog.Logger
	tracer    trace.Tracer
	userAgent string
	defaults  Config
}

// Build creates a [Client] with the given options. Without options it
// uses [http.DefaultTransport], the default slog logger and a no-op tracer.
func Build(optFns ...Option) (*Client, error) {
	client := &Client{
		logger:    slog.Default(),
		tracer:    noop.NewTracerProvider().Tracer("no-op tracer"),
		userAgent: DefaultUserAgent,
	}

	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}

	hc := &http.Client{}
	if opts.client != nil {
		cpy := *opts.client
		hc = &cpy
	}
	hc.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	if opts.logger != nil {
		client.logger = opts.logger
	}

	if opts.tracer != nil {
		client.tracer = opts.tracer
	}

	if opts.userAgent != "" {
		client.userAgent = opts.userAgent
	}

	if opts.defaults != nil {
		client.defaults = *opts.defaults
	}

	var transport http.RoundTripper
	switch {
	case opts.rt != nil:
		transport = opts.rt
	case opts.client != nil && opts.client.Transport != nil:
		transport = opts.client.Transport
	default:
		transport = http.DefaultTransport
	}
	if t, ok := transport.(*http.Transport); ok {
		transport = withExpectContinue(t, opts.expectContinueTimeout)
	}
	if opts.throttle != nil {
		rt, err := throttle.NewRoundTripper(opts.throttle.RPS, opts.throttle.Burst, func() *slog.Logger { return client.logger }, transport)
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
		transport = rt
	}
	hc.Transport = transport
	client.hc = hc

	return client, nil
}

// withExpectContinue returns t, or a clone of it, whose
// ExpectContinueTimeout is the given override, or at least
// DefaultExpectContinueTimeout when t has none. An unset timeout makes
// the transport send bodies without waiting for "100 Continue".
func withExpectContinue(t *http.Transport, override *time.Duration) *http.Transport {
	want := t.ExpectContinueTimeout
	switch {
	case override != nil:
		want = *override
	case want == 0:
		want = DefaultExpectContinueTimeout
	}
	if want == t.ExpectContinueTimeout {
		return t
	}

	t = t.Clone()
	t.ExpectContinueTimeout = want
	return t
}

// New returns a request builder for method and rawURL. cfgs are merged in
// order, and every key left unset falls back to the client's defaults.
// Errors in rawURL or the configuration are reported by [Request.Do].
func (c *Client) New(method, rawURL string, cfgs ...Config) *Request {
	var cfg Config
	for _, next := range cfgs {
		cfg = next.withDefaults(cfg)
	}
	cfg = cfg.withDefaults(c.defaults)

	return newRequest(c, method, rawURL, cfg)
}

// Get returns a GET request builder.
func (c *Client) Get(rawURL string, cfgs ...Config) *Request {
	return c.New(http.MethodGet, rawURL, cfgs...)
}

// Head returns a HEAD request builder.
func (c *Client) Head(rawURL string, cfgs ...Config) *Request {
	return c.New(http.MethodHead, rawURL, cfgs...)
}

// Post returns a POST request builder.
func (c *Client) Post(rawURL string, cfgs ...Config) *Request {
	return c.New(http.MethodPost, rawURL, cfgs...)
}

// Put returns a PUT request builder.
func (c *Client) Put(rawURL string, cfgs ...Config) *Request {
	return c.New(http.MethodPut, rawURL, cfgs...)
}

// Patch returns a PATCH request builder.
func (c *Client) Patch(rawURL string, cfgs ...Config) *Request {
	return c.New(http.MethodPatch, rawURL, cfgs...)
}

// Delete returns a DELETE request builder.
func (c *Client) Delete(rawURL string, cfgs ...Config) *Request {
	return c.New(http.MethodDelete, rawURL, cfgs...)
}

// Options returns an OPTIONS request builder.
func (c *Client) Options(rawURL string, cfgs ...Config) *Request {
	return c.New(http.MethodOptions, rawURL, cfgs...)
}

// Defaults returns a copy of the client's default request configuration.
func (c *Client) Defaults() Config {
	return c.defaults.clone()
}
