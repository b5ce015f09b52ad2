package external

import (
	"io"
	"log/slog"
	"sync"

	"github.com/tidusjar/RequestPlex/internal/types"
)

// newDiscardSlog returns a slog.Logger that drops everything, for tests that
// do not assert on log output.
func newDiscardSlog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// captureLogger records warn-level messages so tests can assert on what a
// provider client reports.
type captureLogger struct {
	mu    sync.Mutex
	warns []string
}

func (l *captureLogger) Info(string, ...any) {}

func (l *captureLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func (l *captureLogger) Error(string, ...any) {}

func (l *captureLogger) With(...any) types.Logger { return l }
