package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptrace"
	"os"
	"strconv"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// state tracks the single execution of a Request.
type state int

const (
	stateUnstarted state = iota
	stateInFlight
	stateCompleted
)

// Do executes the request and returns its response. The network call is
// made once: later and concurrent calls wait for, and return, the same
// result. The context of the call that starts execution governs it.
func (r *Request) Do(ctx context.Context) (*Response, error) {
	if r.begin() {
		r.complete(r.execute(ctx))
	}

	select {
	case <-r.done:
		return r.resp, r.resErr
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Start begins execution in the background if it has not started yet.
func (r *Request) Start(ctx context.Context) *Request {
	if r.begin() {
		go func() {
			r.complete(r.execute(ctx))
		}()
	}

	return r
}

// Done returns a channel that is closed once the request completes.
func (r *Request) Done() <-chan struct{} { return r.done }

// Result blocks until the request completes and returns its result. It
// does not start execution.
func (r *Request) Result() (*Response, error) {
	<-r.done
	return r.resp, r.resErr
}

// Redirected returns the URLs visited by redirects so far.
func (r *Request) Redirected() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.redirects...)
}

func (r *Request) begin() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != stateUnstarted {
		return false
	}
	r.state = stateInFlight

	return true
}

func (r *Request) complete(resp *Response, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.resp, r.resErr = resp, err
	r.state = stateCompleted
	close(r.done)
}

func (r *Request) execute(ctx context.Context) (*Response, error) {
	if err := r.Err(); err != nil {
		return nil, err
	}

	method, target := r.mergeQuery()
	ctx, span := r.client.tracer.Start(ctx, "requisition.request",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("url.full", target),
		),
	)
	defer span.End()

	ctx, cancel := context.WithCancelCause(ctx)
	r.armTimer(cancel)

	res, err := r.run(ctx)
	if fired := r.stopTimer(); fired && err == nil {
		discard(r.logger, res.Body)
		err = newTimeoutError()
	}
	if err != nil {
		cancel(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	resp := newResponse(res, r.Redirected(), r.logger, func() { cancel(nil) })

	span.SetAttributes(
		attribute.Int("http.status_code", resp.StatusCode),
		attribute.Int("http.redirects", len(resp.redirects)),
	)
	if resp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, resp.Status)
	}

	return resp, nil
}

func (r *Request) armTimer(cancel context.CancelCauseFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.timeout <= 0 {
		return
	}
	r.timer = time.AfterFunc(r.timeout, func() {
		cancel(newTimeoutError())
	})
}

// stopTimer disarms the timeout and reports whether it had already fired.
func (r *Request) stopTimer() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.timer == nil {
		return false
	}
	fired := !r.timer.Stop()
	r.timer = nil

	return fired
}

// mergeQuery encodes the accumulated query into the URL of the first hop
// and returns the method and URL it will be sent to.
func (r *Request) mergeQuery() (string, string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.url.RawQuery = r.query.Encode()
	return r.method, r.url.String()
}

// run sends the first hop and follows redirects from its response.
func (r *Request) run(ctx context.Context) (*http.Response, error) {
	if err := r.setLength(); err != nil {
		return nil, err
	}

	hc := r.httpClient()

	res, err := r.send(ctx, hc)
	if err != nil {
		return nil, err
	}

	return r.follow(ctx, hc, res)
}

// setLength resolves the body length of a file upload, and the sniffed
// content type when the extension gave none. An explicit Content-Length
// header wins over the stat.
func (r *Request) setLength() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.length = -1
	if cl := r.header.Get("Content-Length"); cl != "" {
		n, err := strconv.ParseInt(cl, 10, 64)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: invalid content-length %q", ErrInvalidRequest, cl)
		}
		r.length = n
	}
	r.header.Del("Content-Length")

	if r.filename == "" {
		return nil
	}

	if r.length < 0 {
		info, err := os.Stat(r.filename)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrTransport, err)
		}
		r.length = info.Size()
	}

	if r.header.Get("Content-Type") == "" {
		mt, err := mimetype.DetectFile(r.filename)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrTransport, err)
		}
		r.header.Set("Content-Type", mt.String())
	}

	return nil
}

func (r *Request) httpClient() *http.Client {
	if r.transport == nil {
		return r.client.hc
	}

	cpy := *r.client.hc
	cpy.Transport = r.transport
	return &cpy
}

// send issues one hop for the current method, URL, header and body.
func (r *Request) send(ctx context.Context, hc *http.Client) (*http.Response, error) {
	req, err := r.newHTTPRequest(ctx)
	if err != nil {
		return nil, err
	}

	res, err := hc.Do(req)
	if err != nil {
		var se *StatusError
		if errors.As(context.Cause(ctx), &se) {
			return nil, se
		}
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	return res, nil
}

func (r *Request) newHTTPRequest(ctx context.Context) (*http.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		body   io.Reader = http.NoBody
		length int64
		file   *os.File
	)
	switch {
	case r.filename != "":
		f, err := os.Open(r.filename)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTransport, err)
		}
		file = f
		body, length = f, r.length
		if length == 0 {
			f.Close()
			file, body = nil, http.NoBody
		}
	case r.body != nil:
		var err error
		body, length, err = encodeBody(r.body, r.header.Get("Content-Type"))
		if err != nil {
			return nil, err
		}
		switch {
		case length < 0:
			length = r.length
		case r.length >= 0 && r.length != length:
			return nil, fmt.Errorf("%w: content-length %d does not match the %d byte body", ErrInvalidRequest, r.length, length)
		}
	}

	if r.expectContinue {
		ctx = httptrace.WithClientTrace(ctx, &httptrace.ClientTrace{
			Got100Continue: func() {
				r.logger.Debug("got 100 continue", "method", r.method, "url", r.url.String())
			},
		})
	}

	req, err := http.NewRequestWithContext(ctx, r.method, r.url.String(), body)
	if err != nil {
		if file != nil {
			file.Close()
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if length > 0 {
		req.ContentLength = length
	}
	req.Header = r.header.Clone()
	if host := req.Header.Get("Host"); host != "" {
		req.Host = host
		req.Header.Del("Host")
	}
	req.Close = r.closeConn

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	return req, nil
}

// discard drains up to maxDrainSize of body and closes it so the
// connection can be reused.
func discard(logger *slog.Logger, body io.ReadCloser) {
	if body == nil {
		return
	}
	if _, err := io.Copy(io.Discard, io.LimitReader(body, maxDrainSize)); err != nil {
		logger.Error("failed to discard unused body", "error", err)
	}
	if err := body.Close(); err != nil {
		logger.Error("failed to close response body", "error", err)
	}
}
