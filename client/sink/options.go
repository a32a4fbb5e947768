package sink

import (
	"errors"
	"hash"
	"io/fs"
)

// Option configures [ToFile].
type Option func(*options) error

type options struct {
	digest   *digest
	progress bool
	mode     fs.FileMode
}

// WithChecksum verifies the saved bytes against expected, the hex
// encoded sum of h (e.g. sha256.New()). A mismatch fails with
// [ErrChecksumMismatch] and leaves no file behind.
func WithChecksum(h hash.Hash, expected string) Option {
	return func(opts *options) error {
		if h == nil {
			return errors.New("hash must not be nil")
		}
		if expected == "" {
			return errors.New("expected checksum must not be empty")
		}

		d, err := newDigest(h, expected)
		if err != nil {
			return err
		}
		opts.digest = d
		return nil
	}
}

// WithProgress logs the bytes saved so far through the logger passed to
// [ToFile].
func WithProgress() Option {
	return func(opts *options) error {
		opts.progress = true
		return nil
	}
}

// WithMode sets the permission bits of the saved file. The default is 0644.
func WithMode(mode fs.FileMode) Option {
	return func(opts *options) error {
		if mode&^fs.ModePerm != 0 {
			return errors.New("mode must only hold permission bits")
		}
		opts.mode = mode
		return nil
	}
}
