package sink_test

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/adamwoolhether/requisition/client/sink"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestToFile(t *testing.T) {
	content := "hello, disk"
	sum := sha256.Sum256([]byte(content))
	good := hex.EncodeToString(sum[:])

	testCases := []struct {
		name          string
		contentLength int64
		opts          []sink.Option
		expErr        error
	}{
		{
			name:          "known length",
			contentLength: int64(len(content)),
		},
		{
			name:          "unknown length",
			contentLength: -1,
		},
		{
			name:          "length mismatch",
			contentLength: 3,
			expErr:        sink.ErrContentLengthMismatch,
		},
		{
			name:          "checksum pass",
			contentLength: -1,
			opts:          []sink.Option{sink.WithChecksum(sha256.New(), good)},
		},
		{
			name:          "checksum upper case",
			contentLength: -1,
			opts:          []sink.Option{sink.WithChecksum(sha256.New(), strings.ToUpper(good))},
		},
		{
			name:          "checksum fail",
			contentLength: -1,
			opts:          []sink.Option{sink.WithChecksum(sha256.New(), strings.Repeat("ab", sha256.Size))},
			expErr:        sink.ErrChecksumMismatch,
		},
		{
			name:          "with progress",
			contentLength: int64(len(content)),
			opts:          []sink.Option{sink.WithProgress()},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			dest := filepath.Join(dir, "out.txt")

			err := sink.ToFile(t.Context(), strings.NewReader(content), tc.contentLength, dest, discardLogger(), tc.opts...)
			if tc.expErr != nil {
				if !errors.Is(err, tc.expErr) {
					t.Fatalf("exp err %v; got: %v", tc.expErr, err)
				}
				entries, _ := os.ReadDir(dir)
				if len(entries) != 0 {
					t.Errorf("expected temp file cleanup, found %d entries", len(entries))
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}

			got, err := os.ReadFile(dest)
			if err != nil {
				t.Fatalf("reading dest: %v", err)
			}
			if diff := cmp.Diff(content, string(got)); diff != "" {
				t.Errorf("content mismatch (-want +got):\n%s", diff)
			}

			entries, _ := os.ReadDir(dir)
			if len(entries) != 1 {
				t.Errorf("expected only the saved file, found %d entries", len(entries))
			}
		})
	}
}

func TestToFile_MismatchDetail(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.txt")

	err := sink.ToFile(t.Context(), strings.NewReader("abc"), 5, dest, discardLogger())

	var mismatch *sink.MismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected *MismatchError, got %T: %v", err, err)
	}
	want := &sink.MismatchError{Err: sink.ErrContentLengthMismatch, Want: "5 bytes", Got: "3 bytes"}
	if diff := cmp.Diff(want.Error(), mismatch.Error()); diff != "" {
		t.Errorf("error mismatch (-want +got):\n%s", diff)
	}
}

func TestToFile_KeepsExistingOnFailure(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.txt")
	if err := os.WriteFile(dest, []byte("previous"), 0o600); err != nil {
		t.Fatal(err)
	}

	err := sink.ToFile(t.Context(), strings.NewReader("new"), 10, dest, discardLogger())
	if !errors.Is(err, sink.ErrContentLengthMismatch) {
		t.Fatalf("expected length mismatch, got %v", err)
	}

	got, _ := os.ReadFile(dest)
	if string(got) != "previous" {
		t.Errorf("existing file was modified: %q", got)
	}
}

func TestToFile_Mode(t *testing.T) {
	dir := t.TempDir()

	testCases := map[string]struct {
		opts []sink.Option
		exp  os.FileMode
	}{
		"default": {exp: 0o644},
		"custom":  {opts: []sink.Option{sink.WithMode(0o600)}, exp: 0o600},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			dest := filepath.Join(dir, name)
			if err := sink.ToFile(t.Context(), strings.NewReader("x"), 1, dest, discardLogger(), tc.opts...); err != nil {
				t.Fatal(err)
			}

			info, err := os.Stat(dest)
			if err != nil {
				t.Fatal(err)
			}
			if got := info.Mode().Perm(); got != tc.exp {
				t.Errorf("exp mode %v, got %v", tc.exp, got)
			}
		})
	}
}

func TestToFile_ProgressLog(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	dest := filepath.Join(t.TempDir(), "out.txt")

	if err := sink.ToFile(t.Context(), strings.NewReader("0123456789"), 10, dest, logger, sink.WithProgress()); err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{"body saved", "written=10", "percent=100"} {
		if !strings.Contains(logs.String(), want) {
			t.Errorf("expected %q in logs:\n%s", want, logs.String())
		}
	}
}

func TestToFile_EmptyDest(t *testing.T) {
	if err := sink.ToFile(t.Context(), strings.NewReader("x"), -1, "", discardLogger()); err == nil {
		t.Fatal("expected error for empty dest path")
	}
}

func TestToFile_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	dest := filepath.Join(t.TempDir(), "out.txt")
	err := sink.ToFile(ctx, strings.NewReader("x"), -1, dest, discardLogger())
	if !errors.Is(err, sink.ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Errorf("dest should not exist, stat err: %v", err)
	}
}

func TestToFile_InvalidOption(t *testing.T) {
	testCases := map[string]sink.Option{
		"nilHash":     sink.WithChecksum(nil, "ab"),
		"emptySum":    sink.WithChecksum(sha256.New(), ""),
		"notHex":      sink.WithChecksum(sha256.New(), "zz"),
		"shortSum":    sink.WithChecksum(sha256.New(), "deadbeef"),
		"nonPermMode": sink.WithMode(os.ModeDir | 0o755),
	}

	for name, opt := range testCases {
		t.Run(name, func(t *testing.T) {
			dest := filepath.Join(t.TempDir(), "out.txt")
			if err := sink.ToFile(t.Context(), strings.NewReader("x"), -1, dest, discardLogger(), opt); err == nil {
				t.Fatal("expected option error")
			}
		})
	}
}

func TestTempPath(t *testing.T) {
	a, b := sink.TempPath(), sink.TempPath()
	if a == b {
		t.Fatalf("expected distinct temp paths, got %q twice", a)
	}
	if filepath.Dir(a) != filepath.Clean(os.TempDir()) {
		t.Errorf("temp path %q not under %q", a, os.TempDir())
	}
}
