package sink

import (
	"io"
	"log/slog"
	"time"
)

const progressInterval = time.Second

// meter counts the bytes written through it. With a logger it also
// reports progress, at most once per progressInterval.
type meter struct {
	w       io.Writer
	logger  *slog.Logger
	dest    string
	total   int64
	written int64
	start   time.Time
	last    time.Time
}

func (m *meter) Write(p []byte) (int, error) {
	n, err := m.w.Write(p)
	m.written += int64(n)

	if m.logger != nil && time.Since(m.last) >= progressInterval {
		m.last = time.Now()
		m.report("saving body")
	}

	return n, err
}

func (m *meter) done() {
	if m.logger != nil {
		m.report("body saved")
	}
}

func (m *meter) report(msg string) {
	elapsed := time.Since(m.start)
	attrs := []any{
		"path", m.dest,
		"written", m.written,
		"elapsed", elapsed.Round(time.Millisecond),
	}
	if secs := elapsed.Seconds(); secs > 0 {
		attrs = append(attrs, "bytesPerSec", int64(float64(m.written)/secs))
	}
	if m.total > 0 {
		attrs = append(attrs, "total", m.total, "percent", m.written*100/m.total)
	}

	m.logger.Info(msg, attrs...)
}
