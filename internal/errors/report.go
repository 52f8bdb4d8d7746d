package errors

import (
	"context"
	"log/slog"
	"sync"
)

// Reporter receives errors that a component handles locally instead of returning
// them to its caller. The registry treats corrupt storage as empty and the store
// keeps serving after a consistency violation; both still hand the error to a
// Reporter so the failure stays visible.
type Reporter interface {
	Report(ctx context.Context, op string, err error)
}

type slogReporter struct {
	logger *slog.Logger
}

// NewSlogReporter returns a Reporter that logs at error level.
func NewSlogReporter(logger *slog.Logger) Reporter {
	return &slogReporter{logger: logger}
}

func (r *slogReporter) Report(ctx context.Context, op string, err error) {
	if err == nil || r.logger == nil {
		return
	}
	r.logger.ErrorContext(ctx, "suppressed error",
		slog.String("operation", op),
		slog.Any("error", err),
	)
}

// RecordingReporter keeps every reported error in memory. Tests use it to
// assert that a suppressed failure was observed.
type RecordingReporter struct {
	mu      sync.Mutex
	reports []Report
}

// Report is a single entry captured by RecordingReporter.
type Report struct {
	Op  string
	Err error
}

// Report implements Reporter.
func (r *RecordingReporter) Report(_ context.Context, op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, Report{Op: op, Err: err})
}

// Reports returns a copy of the captured entries.
func (r *RecordingReporter) Reports() []Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Report, len(r.reports))
	copy(out, r.reports)
	return out
}
