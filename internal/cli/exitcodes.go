package cli

import "fmt"

// Exit codes for the requisition CLI
const (
	// ExitSuccess indicates the request completed and the output was written
	ExitSuccess = 0

	// ExitHTTPError indicates a non-2xx status with --fail
	ExitHTTPError = 1

	// ExitSchemaError indicates the body failed --schema validation
	ExitSchemaError = 2

	// ExitConfigError indicates an unreadable or invalid --config file
	ExitConfigError = 3

	// ExitNetworkError indicates a transport failure or timeout
	ExitNetworkError = 4

	// ExitOutputError indicates the body could not be decoded or written
	ExitOutputError = 5

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

// ExitError carries the exit code of a failed run. Err may be nil when
// the output already explains the failure.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}
