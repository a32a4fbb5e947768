package sink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const defaultMode = 0o644

// TempPath returns a fresh, not yet existing path in the system temp
// directory.
func TempPath() string {
	return filepath.Join(os.TempDir(), "requisition-"+uuid.NewString())
}

// ToFile streams body to destPath. The bytes land in a hidden temp file
// next to destPath that is renamed into place only once the copy, the
// length check and the checksum succeed; on any error it is removed and
// destPath is left untouched. A negative contentLength skips the length
// check.
func ToFile(ctx context.Context, body io.Reader, contentLength int64, destPath string, logger *slog.Logger, optFns ...Option) error {
	if destPath == "" {
		return errors.New("destPath must not be empty")
	}

	opts := options{mode: defaultMode}
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return fmt.Errorf("applying option: %w", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	}

	file, err := os.CreateTemp(filepath.Dir(destPath), "."+filepath.Base(destPath)+"-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	var saved bool
	defer func() {
		if err := file.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			logger.Error("failed to close temp file", "path", file.Name(), "error", err)
		}
		if saved {
			return
		}
		if err := os.Remove(file.Name()); err != nil {
			logger.Error("failed to remove temp file", "path", file.Name(), "error", err)
		}
	}()

	var w io.Writer = file
	if opts.digest != nil {
		w = io.MultiWriter(file, opts.digest.hash)
	}
	m := &meter{w: w, dest: destPath, total: contentLength, start: time.Now()}
	if opts.progress {
		m.logger = logger
	}

	if _, err := io.Copy(m, &contextReader{ctx: ctx, r: body}); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %w", ErrCancelled, ctxErr)
		}
		return fmt.Errorf("copying body: %w", err)
	}

	if contentLength >= 0 && m.written != contentLength {
		return &MismatchError{
			Err:  ErrContentLengthMismatch,
			Want: strconv.FormatInt(contentLength, 10) + " bytes",
			Got:  strconv.FormatInt(m.written, 10) + " bytes",
		}
	}

	if err := opts.digest.verify(); err != nil {
		return err
	}

	if err := file.Chmod(opts.mode); err != nil {
		return fmt.Errorf("setting file mode: %w", err)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(file.Name(), destPath); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	saved = true
	m.done()

	return nil
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}
