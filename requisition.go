// Package requisition is a fluent HTTP client. Requests are built by
// chaining methods and sent lazily, at most once:
//
//	resp, err := requisition.Get("https://api.example.com/users/1").
//		Set("Accept", "application/json").
//		Do(ctx)
//
// The package-level functions use a shared client built with no options.
// Use [Defaults] for a client with its own default configuration, or the
// [github.com/adamwoolhether/requisition/client] package for full control.
package requisition

import (
	"slices"
	"sync"

	"github.com/adamwoolhether/requisition/client"
)

var std = sync.OnceValue(func() *client.Client {
	c, err := client.Build()
	if err != nil {
		panic("requisition: building default client: " + err.Error())
	}
	return c
})

// Defaults returns a new client whose requests fall back to cfg for every
// configuration key they leave unset. opts are passed to [client.Build].
func Defaults(cfg client.Config, opts ...client.Option) (*client.Client, error) {
	return client.Build(append(slices.Clip(opts), client.WithDefaults(cfg))...)
}

// New returns a request builder for method and url on the shared client.
func New(method, url string, cfgs ...client.Config) *client.Request {
	return std().New(method, url, cfgs...)
}

// Get returns a GET request builder on the shared client.
func Get(url string, cfgs ...client.Config) *client.Request {
	return std().Get(url, cfgs...)
}

// Head returns a HEAD request builder on the shared client.
func Head(url string, cfgs ...client.Config) *client.Request {
	return std().Head(url, cfgs...)
}

// Post returns a POST request builder on the shared client.
func Post(url string, cfgs ...client.Config) *client.Request {
	return std().Post(url, cfgs...)
}

// Put returns a PUT request builder on the shared client.
func Put(url string, cfgs ...client.Config) *client.Request {
	return std().Put(url, cfgs...)
}

// Patch returns a PATCH request builder on the shared client.
func Patch(url string, cfgs ...client.Config) *client.Request {
	return std().Patch(url, cfgs...)
}

// Delete returns a DELETE request builder on the shared client.
func Delete(url string, cfgs ...client.Config) *client.Request {
	return std().Delete(url, cfgs...)
}

// Options returns an OPTIONS request builder on the shared client.
func Options(url string, cfgs ...client.Config) *client.Request {
	return std().Options(url, cfgs...)
}
