package client

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/http/httpguts"
)

// Request is a pending HTTP request. Builder methods mutate it and return
// it for chaining; the network call happens at most once, the first time
// [Request.Do] or [Request.Start] is called. Errors found while building
// are kept and returned by Do.
type Request struct {
	client *Client
	logger *slog.Logger

	mu             sync.Mutex
	method         string
	url            *url.URL
	header         http.Header
	query          url.Values
	body           any
	filename       string
	length         int64
	maxRedirects   int
	redirects      []string
	timeout        time.Duration
	timer          *time.Timer
	cookie         string
	expectContinue bool
	transport      http.RoundTripper
	closeConn      bool
	err            error

	state  state
	done   chan struct{}
	resp   *Response
	resErr error
}

func newRequest(c *Client, method, rawURL string, cfg Config) *Request {
	r := &Request{
		client:       c,
		logger:       c.logger,
		method:       strings.ToUpper(method),
		header:       make(http.Header),
		maxRedirects: DefaultRedirects,
		done:         make(chan struct{}),
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		r.fail(fmt.Errorf("parsing url: %w", err))
		u = &url.URL{}
	}
	r.url = u
	r.query = u.Query()

	if !httpguts.ValidHeaderFieldName(r.method) {
		r.fail(fmt.Errorf("invalid method %q", method))
	}

	if err := cfg.Validate(); err != nil {
		r.fail(fmt.Errorf("validating config: %w", err))
	}

	r.header.Set("Accept-Encoding", "gzip")
	r.header.Set("User-Agent", c.userAgent)
	r.apply(cfg)

	return r
}

// apply copies the configuration keys onto the builder as if the matching
// builder methods had been called.
func (r *Request) apply(cfg Config) {
	r.SetHeaders(cfg.Headers)
	r.Query(cfg.Query)
	if cfg.Agent != nil {
		r.Agent(cfg.Agent)
	}
	if cfg.DisableKeepAlive {
		r.Agent(nil)
	}
	if cfg.Redirects != nil {
		r.Redirects(*cfg.Redirects)
	}
	if cfg.Timeout > 0 {
		r.Timeout(cfg.Timeout)
	}
	if cfg.Type != "" {
		r.Type(cfg.Type)
	}
	if cfg.Body != nil {
		r.Send(cfg.Body)
	}
	if cfg.Filename != "" {
		r.SendFile(cfg.Filename)
	}
}

// fail records the first builder error. Callers hold r.mu or own r exclusively.
func (r *Request) fail(err error) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
}

// mutable reports whether builder calls may still change r and logs the
// ones that arrive too late. Callers hold r.mu.
func (r *Request) mutable(op string) bool {
	if r.state == stateUnstarted {
		return true
	}

	r.logger.Warn("ignoring request change after execution started", "op", op, "method", r.method, "url", r.url.String())
	return false
}

// Method returns the request method.
func (r *Request) Method() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.method
}

// URL returns the current request URL, including merged query parameters.
func (r *Request) URL() *url.URL {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := *r.url
	if r.state == stateUnstarted {
		u.RawQuery = r.query.Encode()
	}
	return &u
}

// Header returns a copy of the header that will be sent.
func (r *Request) Header() http.Header {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.header.Clone()
}

// Err returns the first error recorded while building, if any.
func (r *Request) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.err
}

// Set sets header key to value, replacing any earlier value. Keys are
// case-insensitive.
func (r *Request) Set(key, value string) *Request {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.mutable("Set") {
		r.set(key, value)
	}
	return r
}

// SetHeaders sets every header in headers.
func (r *Request) SetHeaders(headers map[string]string) *Request {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.mutable("SetHeaders") {
		for k, v := range headers {
			r.set(k, v)
		}
	}
	return r
}

// set validates and stores one header. Callers hold r.mu.
func (r *Request) set(key, value string) {
	if !httpguts.ValidHeaderFieldName(key) {
		r.fail(fmt.Errorf("invalid header name %q", key))
		return
	}
	if !httpguts.ValidHeaderFieldValue(value) {
		r.fail(fmt.Errorf("invalid value for header %q", key))
		return
	}
	r.header.Set(key, value)
}

// Auth sets Basic authorization. name may be "user:pass"; otherwise pass
// (default "") is joined to it with a colon.
func (r *Request) Auth(name string, pass ...string) *Request {
	var p string
	if len(pass) > 0 {
		p = pass[0]
	}
	if !strings.Contains(name, ":") {
		name += ":"
	}

	return r.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(name+p)))
}

// Agent sets the transport used for this request only. A nil rt keeps the
// client transport but disables keep-alive for the request.
func (r *Request) Agent(rt http.RoundTripper) *Request {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.mutable("Agent") {
		r.transport = rt
		r.closeConn = rt == nil
	}
	return r
}

// Timeout fails the request with a 408 [StatusError] when the final
// response headers have not arrived within d. Zero disables it.
func (r *Request) Timeout(d time.Duration) *Request {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case !r.mutable("Timeout"):
	case d < 0:
		r.fail(errors.New("timeout must not be negative"))
	default:
		r.timeout = d
	}
	return r
}

// ClearTimeout disarms the timeout, including one already running.
func (r *Request) ClearTimeout() *Request {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.timeout = 0
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	return r
}

// Redirects sets how many redirects are followed automatically. Zero
// disables following.
func (r *Request) Redirects(n int) *Request {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case !r.mutable("Redirects"):
	case n < 0:
		r.fail(fmt.Errorf("redirect limit %d must not be negative", n))
	default:
		r.maxRedirects = n
	}
	return r
}

// IfModifiedSince sets the If-Modified-Since header.
func (r *Request) IfModifiedSince(t time.Time) *Request {
	return r.Set("If-Modified-Since", t.UTC().Format(http.TimeFormat))
}

// IfNoneMatch sets the If-None-Match header.
func (r *Request) IfNoneMatch(tag string) *Request {
	return r.Set("If-None-Match", tag)
}

// Type sets Content-Type from a short name ("json", "form", "html"), an
// extension or a full media type. Unknown names are ignored.
func (r *Request) Type(name string) *Request {
	ct, ok := contentType(name)
	if !ok {
		return r
	}

	return r.Set("Content-Type", ct)
}

// Cookie serialises one cookie and appends it to the Cookie header.
func (r *Request) Cookie(name, value string, opts ...CookieOption) *Request {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.mutable("Cookie") {
		return r
	}

	c := &http.Cookie{Name: name, Value: value}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.Valid(); err != nil {
		r.fail(fmt.Errorf("cookie %q: %w", name, err))
		return r
	}

	if r.cookie == "" {
		r.cookie = c.String()
	} else {
		r.cookie += "; " + c.String()
	}
	r.header.Set("Cookie", r.cookie)

	return r
}

// Query merges params into the URL query. Later values replace earlier
// ones for the same key.
func (r *Request) Query(params map[string]string) *Request {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.mutable("Query") {
		for k, v := range params {
			r.query.Set(k, v)
		}
	}
	return r
}

// Send sets or extends the body.
//
// Keyed values (map[string]any, map[string]string, url.Values) merge into
// an earlier keyed body. Strings default the content type to
// urlencoded and are joined with "&" for urlencoded bodies or
// concatenated otherwise. Any other value replaces the body. When no
// content type has been set, it defaults to JSON.
func (r *Request) Send(body any) *Request {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.mutable("Send") {
		return r
	}

	ctype := r.header.Get("Content-Type")
	var next string
	r.body, next = mergeBody(r.body, body, ctype)
	if next != ctype {
		r.header.Set("Content-Type", next)
	}
	if r.header.Get("Content-Type") == "" {
		ct, _ := contentType("json")
		r.header.Set("Content-Type", ct)
	}

	return r
}

// SendFile streams the file at path as the body. The content type is
// resolved from its extension and the length from a stat right before
// sending.
func (r *Request) SendFile(path string) *Request {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.mutable("SendFile") {
		return r
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		r.fail(fmt.Errorf("resolving file %q: %w", path, err))
		return r
	}
	r.filename = abs
	if ct, ok := contentType(filepath.Base(path)); ok {
		r.header.Set("Content-Type", ct)
	}

	return r
}

// ExpectContinue sends "Expect: 100-continue" and holds the body back
// until the server answers, or the transport's ExpectContinueTimeout ends.
func (r *Request) ExpectContinue() *Request {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.mutable("ExpectContinue") {
		r.header.Set("Expect", "100-continue")
		r.expectContinue = true
	}
	return r
}
