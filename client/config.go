package client

import (
	"maps"
	"net/http"
	"time"

	"github.com/adamwoolhether/requisition/internal/validate"
)

// DefaultRedirects is the redirect budget of a request that does not set one.
const DefaultRedirects = 3

// Config holds the recognised request configuration keys. It is used both
// per request ([Client.New]) and as the defaults of a [Client]
// ([WithDefaults]). A zero field means "not set".
type Config struct {
	Headers          map[string]string `json:"headers,omitempty" yaml:"headers,omitempty" validate:"omitempty,dive,keys,required,header,endkeys"`
	Query            map[string]string `json:"query,omitempty" yaml:"query,omitempty" validate:"omitempty,dive,keys,required,endkeys"`
	Agent            http.RoundTripper `json:"-" yaml:"-" validate:"-"`
	DisableKeepAlive bool              `json:"disableKeepAlive,omitempty" yaml:"disableKeepAlive,omitempty"`
	Redirects        *int              `json:"redirects,omitempty" yaml:"redirects,omitempty" validate:"omitempty,gte=0,lte=100"`
	Timeout          time.Duration     `json:"timeout,omitempty" yaml:"timeout,omitempty" validate:"gte=0"`
	Type             string            `json:"type,omitempty" yaml:"type,omitempty" validate:"omitempty,mediatype"`
	Body             any               `json:"body,omitempty" yaml:"body,omitempty" validate:"-"`
	Filename         string            `json:"filename,omitempty" yaml:"filename,omitempty"`
}

// Validate reports every invalid field of c.
func (c Config) Validate() error {
	return validate.Check(&c)
}

// withDefaults fills each unset key of c from d. Keys are taken whole:
// Headers set on c replace, rather than merge with, the default headers.
func (c Config) withDefaults(d Config) Config {
	out := c.clone()
	if out.Headers == nil {
		out.Headers = maps.Clone(d.Headers)
	}
	if out.Query == nil {
		out.Query = maps.Clone(d.Query)
	}
	if out.Agent == nil {
		out.Agent = d.Agent
	}
	if !out.DisableKeepAlive {
		out.DisableKeepAlive = d.DisableKeepAlive
	}
	if out.Redirects == nil && d.Redirects != nil {
		n := *d.Redirects
		out.Redirects = &n
	}
	if out.Timeout == 0 {
		out.Timeout = d.Timeout
	}
	if out.Type == "" {
		out.Type = d.Type
	}
	if out.Body == nil {
		out.Body = d.Body
	}
	if out.Filename == "" {
		out.Filename = d.Filename
	}

	return out
}

func (c Config) clone() Config {
	out := c
	out.Headers = maps.Clone(c.Headers)
	out.Query = maps.Clone(c.Query)
	if c.Redirects != nil {
		n := *c.Redirects
		out.Redirects = &n
	}

	return out
}

// Redirects returns a pointer to n, for use in [Config.Redirects].
func Redirects(n int) *int {
	return &n
}
