package throttle

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

var (
	ErrMustNotBeZero = errors.New("must be greater than zero")
	ErrWaitingFailed = errors.New("limiter waiting failed")
	ErrContextEnded  = errors.New("throttle context ended")
)

// Config defines the throttler's
// Requests Per Second and Burst Rate
type Config struct {
	RPS   int
	Burst int
}

// throttle is an http.RoundTripper holding one time/rate token
// bucket limiter per request host.
type throttle struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      int
	burst    int
	next     http.RoundTripper
	logFn    func() *slog.Logger
}

// NewRoundTripper returns an http.RoundTripper that throttles outbound requests
// per host using token bucket rate limiters. logFn lazily resolves the logger at
// request time, making option ordering irrelevant. A nil-returning logFn skips
// the calls to *Limiter.Allow().
func NewRoundTripper(rps, burst int, logFn func() *slog.Logger, next http.RoundTripper) (http.RoundTripper, error) {
	if rps <= 0 || burst <= 0 {
		return nil, fmt.Errorf("rps[%d] and burst[%d] %w", rps, burst, ErrMustNotBeZero)
	}
	if next == nil {
		next = http.DefaultTransport
	}
	if logFn == nil {
		logFn = func() *slog.Logger { return nil }
	}

	t := &throttle{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
		burst:    burst,
		next:     next,
		logFn:    logFn,
	}

	return t, nil
}

func (t *throttle) limiter(host string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	lim, ok := t.limiters[host]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(t.rps), t.burst)
		t.limiters[host] = lim
	}

	return lim
}

func (t *throttle) RoundTrip(r *http.Request) (*http.Response, error) {
	ctx := r.Context()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w early: %w", ErrContextEnded, err)
	}

	lim := t.limiter(r.URL.Host)

	var waited time.Duration
	logger := t.logFn()
	if logger != nil {
		if lim.Allow() {
			return t.next.RoundTrip(r)
		}

		logger.Info("throttle tokens exhausted", "host", r.URL.Host, "rate", t.rps, "burst", t.burst, "path", r.URL.Path)

		defer func() {
			logger.Info("throttle wait complete", "host", r.URL.Host, "waited", waited.String())
		}()
	}

	start := time.Now()

	err := lim.Wait(ctx)
	waited = time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWaitingFailed, err)
	}

	if err := ctx.Err(); err != nil { // Check context hasn't expired again.
		return nil, fmt.Errorf("%w post-wait: %w", ErrContextEnded, err)
	}

	return t.next.RoundTrip(r)
}
