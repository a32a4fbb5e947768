package client

import (
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// decompress wraps body in a reader for the given Content-Encoding.
func decompress(body io.Reader, contentEncoding string) (io.Reader, error) {
	switch enc := strings.ToLower(strings.TrimSpace(contentEncoding)); enc {
	case "", "identity":
		return body, nil
	case "gzip", "x-gzip":
		zr, err := gzip.NewReader(body)
		if err != nil {
			return nil, fmt.Errorf("%w: gzip: %w", ErrDecode, err)
		}
		return decodeReader{zr}, nil
	case "deflate":
		zr, err := zlib.NewReader(body)
		if err != nil {
			return nil, fmt.Errorf("%w: deflate: %w", ErrDecode, err)
		}
		return decodeReader{zr}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported content encoding %q", ErrDecode, enc)
	}
}

// transcode converts body from charset to UTF-8. Unknown and UTF-8
// charsets pass through unchanged.
func transcode(body io.Reader, charset string) io.Reader {
	if charset == "" {
		return body
	}

	enc, err := htmlindex.Get(charset)
	if err != nil || enc == unicode.UTF8 || enc == encoding.Nop {
		return body
	}

	return enc.NewDecoder().Reader(body)
}

// decodeReader marks read failures of a decompressing stream as decode
// errors.
type decodeReader struct {
	r io.Reader
}

func (d decodeReader) Read(p []byte) (int, error) {
	n, err := d.r.Read(p)
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return n, err
}
