package sink

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"hash"
	"strings"
)

// digest hashes the saved bytes and compares the sum to an expected one.
type digest struct {
	hash hash.Hash
	want []byte
}

func newDigest(h hash.Hash, expected string) (*digest, error) {
	want, err := hex.DecodeString(strings.TrimSpace(expected))
	if err != nil {
		return nil, fmt.Errorf("expected checksum is not hex: %w", err)
	}
	if len(want) != h.Size() {
		return nil, fmt.Errorf("expected checksum has %d bytes, hash produces %d", len(want), h.Size())
	}

	return &digest{hash: h, want: want}, nil
}

func (d *digest) verify() error {
	if d == nil {
		return nil
	}

	got := d.hash.Sum(nil)
	if !bytes.Equal(got, d.want) {
		return &MismatchError{
			Err:  ErrChecksumMismatch,
			Want: hex.EncodeToString(d.want),
			Got:  hex.EncodeToString(got),
		}
	}

	return nil
}
