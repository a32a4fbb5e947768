// Package cli implements the requisition command line tool.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/adamwoolhether/requisition/client"
)

// flags holds the parsed command line of one invocation.
type flags struct {
	headers        []string
	query          []string
	data           string
	json           string
	file           string
	user           string
	cookies        []string
	timeout        time.Duration
	maxRedirects   int
	expectContinue bool
	ifNoneMatch    string
	output         string
	sha256         string
	include        bool
	raw            bool
	selectPath     string
	schema         string
	config         string
	noColor        bool
	fail           bool
	verbose        bool
}

// NewRootCommand builds the command tree. version is reported by the
// version subcommand and in the User-Agent.
func NewRootCommand(version string) *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "requisition [flags] <method> <url>",
		Short: "Send an HTTP request and print the response.",
		Long: `requisition sends a single HTTP request and prints the response body.

Examples:
  requisition get https://httpbin.org/get
  requisition post https://httpbin.org/post --json '{"name":"gopher"}'
  requisition get https://httpbin.org/gzip --select headers.Host
  requisition get https://go.dev/dl/ -o - --max-redirects 5`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			method, target := "GET", args[0]
			if len(args) == 2 {
				method, target = args[0], args[1]
			}
			return run(cmd, version, f, method, target)
		},
	}

	fs := cmd.Flags()
	fs.StringArrayVarP(&f.headers, "header", "H", nil, "Request header as key:value (repeatable)")
	fs.StringArrayVarP(&f.query, "query", "q", nil, "Query parameter as key=value (repeatable)")
	fs.StringVarP(&f.data, "data", "d", "", "Request body; @path reads it from a file (urlencoded unless a type is set)")
	fs.StringVar(&f.json, "json", "", "JSON request body")
	fs.StringVarP(&f.file, "file", "F", "", "Stream the file at path as the request body")
	fs.StringVarP(&f.user, "user", "u", "", "Basic auth as user[:pass]")
	fs.StringArrayVarP(&f.cookies, "cookie", "b", nil, "Cookie as name=value (repeatable)")
	fs.DurationVar(&f.timeout, "timeout", 0, "Fail when response headers take longer than this (e.g. 10s)")
	fs.IntVar(&f.maxRedirects, "max-redirects", -1, "Redirects to follow (default 3)")
	fs.BoolVar(&f.expectContinue, "expect-continue", false, "Send Expect: 100-continue before the body")
	fs.StringVar(&f.ifNoneMatch, "if-none-match", "", "Send If-None-Match with this entity tag")
	fs.StringVarP(&f.output, "output", "o", "", "Save the decoded body to a file; - picks a temp file")
	fs.StringVar(&f.sha256, "sha256", "", "With -o, require the saved body to have this hex SHA-256 sum")
	fs.BoolVarP(&f.include, "include", "i", false, "Print the status line and response headers")
	fs.BoolVar(&f.raw, "raw", false, "Print the body as received, without decoding")
	fs.StringVar(&f.selectPath, "select", "", "Print only this gjson path of a JSON body")
	fs.StringVar(&f.schema, "schema", "", "Validate a JSON body against this JSON Schema file")
	fs.StringVar(&f.config, "config", "", "YAML file with default request configuration")
	fs.BoolVar(&f.fail, "fail", false, "Exit non-zero when the status is not 2xx")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "Log redirects and request details to stderr")

	cmd.PersistentFlags().BoolVar(&f.noColor, "no-color", false, "Disable colored output")

	cmd.AddCommand(newVersionCommand(version))

	return cmd
}

// Execute runs the command line and returns the process exit code.
func Execute(version string, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand(version)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			fmt.Fprintln(stderr, color.RedString("error:"), exitErr.Err)
		}
		return exitErr.Code
	}

	fmt.Fprintln(stderr, color.RedString("error:"), err)
	return ExitUsageError
}

func run(cmd *cobra.Command, version string, f flags, method, target string) error {
	if f.noColor {
		color.NoColor = true
	}

	c, err := buildClient(cmd.ErrOrStderr(), version, f)
	if err != nil {
		return &ExitError{Code: ExitConfigError, Err: err}
	}

	req, err := buildRequest(c, f, method, target)
	if err != nil {
		return &ExitError{Code: ExitUsageError, Err: err}
	}

	resp, err := req.Do(cmd.Context())
	if err != nil {
		code := ExitNetworkError
		if errors.Is(err, client.ErrInvalidRequest) || errors.Is(err, client.ErrEncode) {
			code = ExitUsageError
		}
		return &ExitError{Code: code, Err: err}
	}
	defer resp.Close()

	if err := render(cmd, f, resp); err != nil {
		return err
	}

	if f.fail && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		return &ExitError{Code: ExitHTTPError}
	}

	return nil
}

func buildClient(stderr io.Writer, version string, f flags) (*client.Client, error) {
	level := slog.LevelWarn
	if f.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	opts := []client.Option{
		client.WithLogger(logger),
		client.WithUserAgent("requisition-cli/" + version),
	}

	if f.config != "" {
		cfg, err := loadConfig(f.config)
		if err != nil {
			return nil, err
		}
		opts = append(opts, client.WithDefaults(cfg))
	}

	return client.Build(opts...)
}

func buildRequest(c *client.Client, f flags, method, target string) (*client.Request, error) {
	req := c.New(method, target)

	for _, h := range f.headers {
		k, v, ok := strings.Cut(h, ":")
		if !ok {
			return nil, fmt.Errorf("header %q: want key:value", h)
		}
		req.Set(strings.TrimSpace(k), strings.TrimSpace(v))
	}

	query := make(map[string]string, len(f.query))
	for _, q := range f.query {
		k, v, ok := strings.Cut(q, "=")
		if !ok {
			return nil, fmt.Errorf("query %q: want key=value", q)
		}
		query[k] = v
	}
	req.Query(query)

	for _, ck := range f.cookies {
		name, value, ok := strings.Cut(ck, "=")
		if !ok {
			return nil, fmt.Errorf("cookie %q: want name=value", ck)
		}
		req.Cookie(name, value)
	}

	if f.user != "" {
		req.Auth(f.user)
	}
	if f.timeout > 0 {
		req.Timeout(f.timeout)
	}
	if f.maxRedirects >= 0 {
		req.Redirects(f.maxRedirects)
	}
	if f.ifNoneMatch != "" {
		req.IfNoneMatch(f.ifNoneMatch)
	}
	if f.expectContinue {
		req.ExpectContinue()
	}

	set := 0
	for _, s := range []string{f.data, f.json, f.file} {
		if s != "" {
			set++
		}
	}
	if set > 1 {
		return nil, errors.New("only one of --data, --json and --file may be given")
	}

	switch {
	case f.data != "":
		data := f.data
		if path, ok := strings.CutPrefix(data, "@"); ok {
			b, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("reading data file: %w", err)
			}
			data = string(b)
		}
		req.Send(data)
	case f.json != "":
		if !json.Valid([]byte(f.json)) {
			return nil, errors.New("--json is not valid JSON")
		}
		req.Type("json").Send(json.RawMessage(f.json))
	case f.file != "":
		req.SendFile(f.file)
	}

	if err := req.Err(); err != nil {
		return nil, err
	}

	return req, nil
}
