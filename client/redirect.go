package client

import (
	"context"
	"fmt"
	"net/http"
)

func isRedirect(code int) bool {
	switch code {
	case http.StatusMultipleChoices,
		http.StatusMovedPermanently,
		http.StatusFound,
		http.StatusSeeOther,
		http.StatusUseProxy,
		http.StatusTemporaryRedirect,
		http.StatusPermanentRedirect:
		return true
	}

	return false
}

// follow keeps requesting the Location of redirect responses until a
// non-redirect arrives, a redirect carries no Location, or the budget is
// spent. The last response received is returned either way.
func (r *Request) follow(ctx context.Context, hc *http.Client, res *http.Response) (*http.Response, error) {
	for isRedirect(res.StatusCode) {
		loc := res.Header.Get("Location")
		if loc == "" {
			return res, nil
		}

		next, ok, err := r.redirect(res.Request.URL.String(), loc)
		if err != nil {
			discard(r.logger, res.Body)
			return nil, err
		}
		if !ok {
			return res, nil
		}

		r.logger.Debug("following redirect", "status", res.StatusCode, "from", res.Request.URL.String(), "to", next, "method", r.Method())
		discard(r.logger, res.Body)

		if res, err = r.send(ctx, hc); err != nil {
			return nil, err
		}
	}

	return res, nil
}

// redirect rewrites r for the next hop to loc, resolved against from. It
// reports false when the redirect budget is spent.
func (r *Request) redirect(from, loc string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.redirects) >= r.maxRedirects {
		return "", false, nil
	}

	base, err := r.url.Parse(from)
	if err != nil {
		return "", false, fmt.Errorf("%w: redirect from %q: %w", ErrTransport, from, err)
	}
	u, err := base.Parse(loc)
	if err != nil {
		return "", false, fmt.Errorf("%w: redirect location %q: %w", ErrTransport, loc, err)
	}

	for _, h := range []string{"Content-Type", "Content-Length", "Transfer-Encoding", "Cookie", "Host", "Expect"} {
		r.header.Del(h)
	}
	if r.method != http.MethodHead {
		r.method = http.MethodGet
	}
	r.body = nil
	r.filename = ""
	r.length = -1
	r.expectContinue = false

	r.url = u
	r.redirects = append(r.redirects, u.String())

	return u.String(), true, nil
}
