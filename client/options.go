package client

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/requisition/client/sink"
	"github.com/adamwoolhether/requisition/client/throttle"
)

// Option is a functional option for configuring a [Client] via [Build].
type Option func(*options) error
type options struct {
	client                *http.Client
	rt                    http.RoundTripper
	userAgent             string
	throttle              *throttle.Config
	logger                *slog.Logger
	tracer                trace.Tracer
	defaults              *Config
	expectContinueTimeout *time.Duration
}

// WithClient replaces the default [http.Client] used by the [Client].
// Its CheckRedirect policy is overridden: redirects are always followed
// by [Request] itself.
func WithClient(hc *http.Client) Option {
	return func(c *options) error {
		if hc == nil {
			return errors.New("client must not be nil")
		}
		c.client = hc
		return nil
	}
}

// WithTransport sets a custom [http.RoundTripper] as the base transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *options) error {
		if rt == nil {
			return errors.New("transport must not be nil")
		}
		c.rt = rt
		return nil
	}
}

// WithUserAgent overrides the User-Agent header set on every request
// that does not carry one.
func WithUserAgent(header string) Option {
	return func(c *options) error {
		if header == "" {
			return errors.New("user agent must not be empty")
		}
		c.userAgent = header
		return nil
	}
}

// WithThrottle enables per-host token-bucket rate limiting with the given
// requests per second and burst capacity.
func WithThrottle(rps, burst int) Option {
	return func(c *options) error {
		if rps <= 0 || burst <= 0 {
			return fmt.Errorf("rps[%d] and burst[%d] %w", rps, burst, throttle.ErrMustNotBeZero)
		}
		c.throttle = &throttle.Config{RPS: rps, Burst: burst}
		return nil
	}
}

// WithLogger injects a custom [slog.Logger] into the [Client].
func WithLogger(logger *slog.Logger) Option {
	return func(c *options) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		c.logger = logger
		return nil
	}
}

// WithTracer sets the tracer used to record one span per executed request.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *options) error {
		if tracer == nil {
			return errors.New("tracer must not be nil")
		}
		c.tracer = tracer
		return nil
	}
}

// WithDefaults sets the configuration applied to every request built by
// the [Client] for each key the caller leaves unset.
func WithDefaults(cfg Config) Option {
	return func(c *options) error {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("validating defaults: %w", err)
		}
		cpy := cfg.clone()
		c.defaults = &cpy
		return nil
	}
}

// WithExpectContinueTimeout sets how long a request sent with
// [Request.ExpectContinue] waits for a "100 Continue" before sending
// its body anyway. It only applies to an [http.Transport].
func WithExpectContinueTimeout(d time.Duration) Option {
	return func(c *options) error {
		if d <= 0 {
			return errors.New("expect continue timeout must be positive")
		}
		c.expectContinueTimeout = &d
		return nil
	}
}

// JSONOption is a functional option for [Response.JSON].
type JSONOption func(*jsonOpts)

type jsonOpts struct {
	useNumber bool
}

// WithJSONNumber tells the JSON decoder to use [json.Decoder.UseNumber],
// preserving number precision as [json.Number] instead of float64.
func WithJSONNumber() JSONOption {
	return func(opts *jsonOpts) {
		opts.useNumber = true
	}
}

// SaveOption is a functional option for [Response.SaveTo].
type SaveOption = sink.Option

// CookieOption sets an attribute on a cookie added with [Request.Cookie].
type CookieOption func(*http.Cookie)

// CookiePath sets the Path attribute.
func CookiePath(path string) CookieOption {
	return func(c *http.Cookie) { c.Path = path }
}

// CookieDomain sets the Domain attribute.
func CookieDomain(domain string) CookieOption {
	return func(c *http.Cookie) { c.Domain = domain }
}

// CookieExpires sets the Expires attribute.
func CookieExpires(t time.Time) CookieOption {
	return func(c *http.Cookie) { c.Expires = t }
}

// CookieMaxAge sets the Max-Age attribute in seconds.
func CookieMaxAge(seconds int) CookieOption {
	return func(c *http.Cookie) { c.MaxAge = seconds }
}

// CookieHTTPOnly sets the HttpOnly attribute.
func CookieHTTPOnly() CookieOption {
	return func(c *http.Cookie) { c.HttpOnly = true }
}

// CookieSecure sets the Secure attribute.
func CookieSecure() CookieOption {
	return func(c *http.Cookie) { c.Secure = true }
}

// CookieSameSite sets the SameSite attribute.
func CookieSameSite(mode http.SameSite) CookieOption {
	return func(c *http.Cookie) { c.SameSite = mode }
}
