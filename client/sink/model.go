package sink

import (
	"errors"
	"fmt"
)

var (
	ErrContentLengthMismatch = errors.New("content length mismatch")
	ErrChecksumMismatch      = errors.New("checksum mismatch")
	ErrCancelled             = errors.New("save cancelled")
)

// MismatchError reports a saved body that differs from what the caller
// or the server declared. Err is one of the mismatch sentinels.
type MismatchError struct {
	Err  error
	Want string
	Got  string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%v: want %s, got %s", e.Err, e.Want, e.Got)
}

func (e *MismatchError) Unwrap() error {
	return e.Err
}
