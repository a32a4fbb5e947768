package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/adamwoolhether/requisition/client/sink"
)

// Response wraps the final response of a request. Its body can be read
// once, by exactly one of Buffer, Text, JSON, SaveTo or Pipe. Dump,
// Destroy or Close release it without reading.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Method     string
	URL        *url.URL

	raw       io.ReadCloser
	redirects []string
	logger    *slog.Logger
	release   func()
	consumed  atomic.Bool
	empty     bool

	length       func() (int64, bool)
	charset      func() string
	lastModified func() (time.Time, bool)
	links        func() map[string]string
	cookies      func() map[string]string
}

func newResponse(res *http.Response, redirects []string, logger *slog.Logger, release func()) *Response {
	resp := &Response{
		StatusCode: res.StatusCode,
		Status:     res.Status,
		Header:     res.Header,
		Method:     res.Request.Method,
		URL:        res.Request.URL,
		raw:        res.Body,
		redirects:  redirects,
		logger:     logger,
		release:    sync.OnceFunc(release),
	}

	resp.length = sync.OnceValues(resp.parseLength)
	resp.charset = sync.OnceValue(resp.parseCharset)
	resp.lastModified = sync.OnceValues(resp.parseLastModified)
	resp.links = sync.OnceValue(func() map[string]string {
		return parseLinks(resp.Header.Values("Link"), resp.URL)
	})
	resp.cookies = sync.OnceValue(resp.parseCookies)

	if n, ok := resp.Length(); (ok && n == 0) || emptyStatus(resp.StatusCode) || resp.Method == http.MethodHead {
		resp.empty = true
		discard(logger, resp.raw)
		resp.release()
	}

	return resp
}

func emptyStatus(code int) bool {
	switch code {
	case http.StatusNoContent, http.StatusResetContent, http.StatusNotModified:
		return true
	}

	return isRedirect(code)
}

// Redirects returns the URLs followed to reach this response, in order.
func (r *Response) Redirects() []string {
	return append([]string(nil), r.redirects...)
}

// Get returns the first value of the named header. The name is
// case-insensitive.
func (r *Response) Get(name string) string {
	return r.Header.Get(name)
}

// Is reports whether the Content-Type matches any of types. Targets may be
// short names ("json", "html", "urlencoded", "multipart"), full media
// types, "type/*" wildcards or "+suffix" forms. Short and exact targets
// are returned as given; wildcard and suffix ones return the actual media
// type. Without targets the media type itself is returned.
func (r *Response) Is(types ...string) (string, bool) {
	actual := mediaType(r.Header.Get("Content-Type"))
	if actual == "" {
		return "", false
	}
	if len(types) == 0 {
		return actual, true
	}

	for _, t := range types {
		expected := normalizeTarget(t)
		if expected == "" || !mimeMatch(expected, actual) {
			continue
		}
		if strings.Contains(expected, "*") {
			return actual, true
		}
		return t, true
	}

	return "", false
}

// Length returns the Content-Length header, if present and valid.
func (r *Response) Length() (int64, bool) { return r.length() }

func (r *Response) parseLength() (int64, bool) {
	v := r.Header.Get("Content-Length")
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}

	return n, true
}

// Charset returns the lower-cased charset parameter of the Content-Type.
func (r *Response) Charset() string { return r.charset() }

func (r *Response) parseCharset() string {
	_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return ""
	}

	return strings.ToLower(params["charset"])
}

// ETag returns the ETag header.
func (r *Response) ETag() string {
	return r.Header.Get("ETag")
}

// Location returns the Location header.
func (r *Response) Location() string {
	return r.Header.Get("Location")
}

// LastModified returns the parsed Last-Modified header.
func (r *Response) LastModified() (time.Time, bool) { return r.lastModified() }

func (r *Response) parseLastModified() (time.Time, bool) {
	v := r.Header.Get("Last-Modified")
	if v == "" {
		return time.Time{}, false
	}
	t, err := http.ParseTime(v)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

// Links returns the Link header relations mapped to their targets, which
// are resolved against the response URL.
func (r *Response) Links() map[string]string { return r.links() }

// Cookies returns the name and value of every valid Set-Cookie header.
func (r *Response) Cookies() map[string]string { return r.cookies() }

func (r *Response) parseCookies() map[string]string {
	cookies := make(map[string]string)
	for _, c := range (&http.Response{Header: r.Header}).Cookies() {
		cookies[c.Name] = c.Value
	}

	return cookies
}

// take claims the body stream for one reader.
func (r *Response) take() (io.ReadCloser, error) {
	if r.consumed.Swap(true) {
		return nil, ErrBodyConsumed
	}
	if r.empty {
		return http.NoBody, nil
	}

	return &releaseCloser{ReadCloser: r.raw, release: r.release}, nil
}

// decoded claims the body and wraps it for decompression.
func (r *Response) decoded() (io.Reader, io.Closer, error) {
	body, err := r.take()
	if err != nil {
		return nil, nil, err
	}
	if r.empty {
		return body, body, nil
	}

	dec, err := decompress(body, r.Header.Get("Content-Encoding"))
	if err != nil {
		body.Close()
		return nil, nil, err
	}

	return dec, body, nil
}

// Buffer reads the whole body as sent by the server, without decoding.
func (r *Response) Buffer() ([]byte, error) {
	body, err := r.take()
	if err != nil {
		return nil, err
	}
	defer r.closeBody(body)

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %w", ErrTransport, err)
	}

	return data, nil
}

// Text reads the whole body, decompressing it and converting its charset
// to UTF-8.
func (r *Response) Text() (string, error) {
	dec, c, err := r.decoded()
	if err != nil {
		return "", err
	}
	defer r.closeBody(c)

	var buf strings.Builder
	if _, err := io.Copy(&buf, transcode(dec, r.Charset())); err != nil {
		if errors.Is(err, ErrDecode) {
			return "", err
		}
		return "", fmt.Errorf("%w: reading body: %w", ErrTransport, err)
	}

	return buf.String(), nil
}

// JSON decodes the text body as a single JSON value into dst.
func (r *Response) JSON(dst any, optFns ...JSONOption) error {
	var opts jsonOpts
	for _, opt := range optFns {
		opt(&opts)
	}

	text, err := r.Text()
	if err != nil {
		return err
	}

	dec := json.NewDecoder(strings.NewReader(text))
	if opts.useNumber {
		dec.UseNumber()
	}
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: json: %w", ErrDecode, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: json: trailing data after value", ErrDecode)
	}

	return nil
}

// SaveTo writes the decompressed body to path and returns it. An empty
// path saves to a new file in the system temp directory.
func (r *Response) SaveTo(ctx context.Context, path string, optFns ...SaveOption) (string, error) {
	dec, c, err := r.decoded()
	if err != nil {
		return "", err
	}
	defer r.closeBody(c)

	if path == "" {
		path = sink.TempPath()
	}

	length := int64(-1)
	if n, ok := r.Length(); ok && r.Header.Get("Content-Encoding") == "" {
		length = n
	}
	if r.empty {
		length = 0
	}

	if err := sink.ToFile(ctx, dec, length, path, r.logger, optFns...); err != nil {
		return "", fmt.Errorf("saving body to %q: %w", path, err)
	}

	return path, nil
}

// Pipe copies the raw, still encoded body to w and returns the bytes
// written.
func (r *Response) Pipe(w io.Writer) (int64, error) {
	body, err := r.take()
	if err != nil {
		return 0, err
	}
	defer r.closeBody(body)

	n, err := io.Copy(w, body)
	if err != nil {
		return n, fmt.Errorf("piping body: %w", err)
	}

	return n, nil
}

// Dump discards the body so the connection can be reused.
func (r *Response) Dump() *Response {
	if r.consumed.Swap(true) {
		return r
	}
	if !r.empty {
		discard(r.logger, r.raw)
	}
	r.release()

	return r
}

// Destroy closes the body without reading it.
func (r *Response) Destroy() *Response {
	if r.consumed.Swap(true) {
		return r
	}
	if !r.empty {
		r.closeBody(r.raw)
	}
	r.release()

	return r
}

// Close releases the body if it has not been read. It is safe to call
// after any other body method.
func (r *Response) Close() error {
	r.Destroy()
	return nil
}

// Expect returns an [*UnexpectedStatusError] when the status code is not
// one of codes. A snippet of the body is read into the error and the body
// is released.
func (r *Response) Expect(codes ...int) error {
	for _, c := range codes {
		if r.StatusCode == c {
			return nil
		}
	}

	var snippet []byte
	if body, err := r.take(); err == nil {
		snippet, _ = io.ReadAll(io.LimitReader(body, maxErrBodySize))
		r.closeBody(body)
	}

	statusErr := &UnexpectedStatusError{
		StatusCode: r.StatusCode,
		Body:       string(bytes.TrimSpace(snippet)),
		Err:        ErrUnexpectedStatusCode,
	}
	if r.StatusCode == http.StatusUnauthorized || r.StatusCode == http.StatusForbidden {
		statusErr.Err = errors.Join(ErrUnexpectedStatusCode, ErrAuthFailure)
	}

	return statusErr
}

func (r *Response) closeBody(c io.Closer) {
	if err := c.Close(); err != nil {
		r.logger.Error("failed to close response body", "error", err)
	}
}

// releaseCloser releases the request resources when the body is closed.
type releaseCloser struct {
	io.ReadCloser
	release func()
}

func (rc *releaseCloser) Close() error {
	defer rc.release()
	return rc.ReadCloser.Close()
}
