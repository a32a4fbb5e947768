// Package client builds fluent, lazily executed HTTP requests on top of
// [net/http] and wraps their responses.
//
// # Building a Client
//
// Use [Build] to create a [Client] with functional options:
//
//	c, err := client.Build(
//		client.WithUserAgent("myapp/1.0"),
//		client.WithDefaults(client.Config{Timeout: 10 * time.Second}),
//	)
//
// # Making Requests
//
// Chain builder methods on a [Request]; nothing is sent until
// [Request.Do] or [Request.Start] is called, and the request is sent at
// most once:
//
//	resp, err := c.Post("https://api.example.com/v1/users").
//		Set("X-Request-ID", "abc123").
//		Send(map[string]any{"name": "alice"}).
//		Timeout(5 * time.Second).
//		Do(ctx)
//
// Redirects are followed up to [DefaultRedirects] hops, or the budget
// given to [Request.Redirects]. POST, PUT and similar requests become GET
// after a redirect and lose their body.
//
// # Reading Responses
//
// A [Response] body is read once, by one of [Response.Buffer],
// [Response.Text], [Response.JSON], [Response.SaveTo] or [Response.Pipe]:
//
//	var user struct{ ID int }
//	if err := resp.JSON(&user); err != nil { ... }
//
// Text, JSON and SaveTo undo gzip and deflate encoding. Buffer and Pipe
// return the bytes as sent. Call [Response.Dump] or [Response.Close] when
// the body is not needed.
//
// # Saving Files
//
// Stream a response body directly to disk with optional checksum
// verification and progress reporting:
//
//	path, err := resp.SaveTo(ctx, "/tmp/file.bin",
//		sink.WithChecksum(sha256.New(), expectedHex),
//		sink.WithProgress(),
//	)
//
// For lower-level control see the
// [github.com/adamwoolhether/requisition/client/sink] package.
package client
