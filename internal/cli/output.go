package cli

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/xeipuuv/gojsonschema"

	"github.com/adamwoolhether/requisition/client"
	"github.com/adamwoolhether/requisition/client/sink"
)

// render writes the response to the command's output according to f.
func render(cmd *cobra.Command, f flags, resp *client.Response) error {
	out := cmd.OutOrStdout()

	if f.include {
		writeHead(out, resp)
	}

	switch {
	case f.output != "":
		path := f.output
		if path == "-" {
			path = ""
		}
		var opts []client.SaveOption
		if f.sha256 != "" {
			opts = append(opts, sink.WithChecksum(sha256.New(), f.sha256))
		}
		if f.verbose {
			opts = append(opts, sink.WithProgress())
		}
		saved, err := resp.SaveTo(cmd.Context(), path, opts...)
		if err != nil {
			return &ExitError{Code: ExitOutputError, Err: err}
		}
		fmt.Fprintln(cmd.ErrOrStderr(), color.GreenString("saved"), saved)
		return nil

	case f.raw:
		if _, err := resp.Pipe(out); err != nil {
			return &ExitError{Code: ExitOutputError, Err: err}
		}
		return nil
	}

	text, err := resp.Text()
	if err != nil {
		return &ExitError{Code: ExitOutputError, Err: err}
	}

	if f.schema != "" {
		if err := validateSchema(f.schema, text); err != nil {
			return &ExitError{Code: ExitSchemaError, Err: err}
		}
	}

	if f.selectPath != "" {
		if !gjson.Valid(text) {
			return &ExitError{Code: ExitOutputError, Err: fmt.Errorf("--select needs a JSON body, got %q", contentType(resp))}
		}
		result := gjson.Get(text, f.selectPath)
		if !result.Exists() {
			return &ExitError{Code: ExitOutputError, Err: fmt.Errorf("path %q not found in body", f.selectPath)}
		}
		text = result.String()
	}

	fmt.Fprint(out, text)
	if text != "" && !strings.HasSuffix(text, "\n") {
		fmt.Fprintln(out)
	}

	return nil
}

func writeHead(w io.Writer, resp *client.Response) {
	status := color.New(color.FgGreen, color.Bold)
	switch {
	case resp.StatusCode >= 400:
		status = color.New(color.FgRed, color.Bold)
	case resp.StatusCode >= 300:
		status = color.New(color.FgYellow, color.Bold)
	}
	cyan := color.New(color.FgCyan).SprintFunc()

	status.Fprintf(w, "%s %s\n", resp.Method, resp.Status)
	for _, u := range resp.Redirects() {
		fmt.Fprintf(w, "%s %s\n", cyan("Redirected:"), u)
	}

	keys := make([]string, 0, len(resp.Header))
	for k := range resp.Header {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		for _, v := range resp.Header[k] {
			fmt.Fprintf(w, "%s %s\n", cyan(k+":"), v)
		}
	}
	fmt.Fprintln(w)
}

func contentType(resp *client.Response) string {
	if t, ok := resp.Is(); ok {
		return t
	}
	return "no content type"
}

func validateSchema(path, body string) error {
	schemaData, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading schema file: %w", err)
	}

	schemaLoader := gojsonschema.NewBytesLoader(schemaData)
	documentLoader := gojsonschema.NewStringLoader(body)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if result.Valid() {
		return nil
	}

	var errs []string
	for _, desc := range result.Errors() {
		errs = append(errs, desc.String())
	}
	return fmt.Errorf("schema validation failed: %s", strings.Join(errs, "; "))
}
