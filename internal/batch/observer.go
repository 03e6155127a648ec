package batch

import (
	"log/slog"

	"webpconv/internal/conversion"
	"webpconv/internal/logging"
)

// Start describes a batch about to run.
type Start struct {
	BatchID string
	Root    string
	Total   int
	Workers int
}

// Progress is emitted once per finished file.
type Progress struct {
	BatchID string
	Outcome conversion.Outcome
	Done    int
	Total   int
	Totals  conversion.Totals
}

// Observer receives batch events. The orchestrator calls it from a single
// goroutine, so implementations need no locking.
type Observer interface {
	BatchStarted(Start)
	FileFinished(Progress)
	BatchFinished(Report)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) BatchStarted(Start) {}

func (NopObserver) FileFinished(Progress) {}

func (NopObserver) BatchFinished(Report) {}

// MultiObserver forwards each event to every observer in order.
type MultiObserver []Observer

func (m MultiObserver) BatchStarted(s Start) {
	for _, o := range m {
		o.BatchStarted(s)
	}
}

func (m MultiObserver) FileFinished(p Progress) {
	for _, o := range m {
		o.FileFinished(p)
	}
}

func (m MultiObserver) BatchFinished(r Report) {
	for _, o := range m {
		o.BatchFinished(r)
	}
}

// LogObserver writes per-file status lines at debug level and, unless
// Quiet is set, sampled progress lines at info level.
type LogObserver struct {
	logger  *slog.Logger
	sampler *logging.ProgressSampler
	quiet   bool
}

// NewLogObserver builds a LogObserver. quietProgress suppresses the sampled
// progress lines, for when a progress bar already shows them.
func NewLogObserver(logger *slog.Logger, quietProgress bool) *LogObserver {
	return &LogObserver{
		logger:  logging.NewComponentLogger(logger, "batch"),
		sampler: logging.NewProgressSampler(10),
		quiet:   quietProgress,
	}
}

func (l *LogObserver) BatchStarted(s Start) {
	l.sampler.Reset()
	l.logger.Info("batch started",
		logging.String(logging.FieldBatchID, s.BatchID),
		logging.String("root", s.Root),
		logging.Int("candidates", s.Total),
		logging.Int("workers", s.Workers),
	)
}

func (l *LogObserver) FileFinished(p Progress) {
	o := p.Outcome
	attrs := []logging.Attr{
		logging.String(logging.FieldBatchID, p.BatchID),
		logging.String(logging.FieldSource, o.Source),
		logging.String(logging.FieldOutcome, o.Kind.String()),
	}
	switch o.Kind {
	case conversion.DiscardedLarger, conversion.DiscardedEmpty:
		l.logger.Debug(o.StatusLine(), logging.Args(append(attrs, logging.String(logging.FieldOutput, o.Output))...)...)
	case conversion.Converted:
		l.logger.Debug(o.StatusLine(), logging.Args(append(attrs,
			logging.Int64("source_bytes", o.SourceSize),
			logging.Int64("output_bytes", o.OutputSize),
			logging.Duration("elapsed", o.Elapsed),
		)...)...)
	default:
		l.logger.Debug(o.StatusLine(), logging.Args(attrs...)...)
	}

	if l.quiet || !l.sampler.ShouldLog(p.Done, p.Total) {
		return
	}
	l.logger.Info("batch progress",
		logging.String(logging.FieldBatchID, p.BatchID),
		logging.Int("done", p.Done),
		logging.Int("total", p.Total),
		logging.Int("converted", p.Totals.Converted),
		logging.Int("failed", p.Totals.Failed),
	)
}

func (l *LogObserver) BatchFinished(r Report) {
	attrs := []logging.Attr{
		logging.String(logging.FieldBatchID, r.BatchID),
		logging.Int("total", r.Totals.Total),
		logging.Int("converted", r.Totals.Converted),
		logging.Int("skipped", r.Totals.Skipped),
		logging.Int("failed", r.Totals.Failed),
		logging.Int("webp_bigger", r.Totals.DiscardedLarger),
		logging.Int("webp_zero_size", r.Totals.DiscardedEmpty),
		logging.String("saved", logging.FormatBytes(r.Totals.SavedBytes())),
		logging.Duration("duration", r.Duration()),
	}
	if r.Cancelled {
		logging.WarnWithContext(l.logger, "batch interrupted", "batch_cancelled", append(attrs,
			logging.String(logging.FieldImpact, "remaining images were not converted"),
			logging.String(logging.FieldErrorHint, "run the same command again to resume"),
		)...)
		return
	}
	l.logger.Info("batch finished", logging.Args(attrs...)...)
}
