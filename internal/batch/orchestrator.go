package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"webpconv/internal/config"
	"webpconv/internal/conversion"
	"webpconv/internal/discovery"
	"webpconv/internal/encoder"
	"webpconv/internal/logging"
	"webpconv/internal/services"
)

// Request describes one batch.
type Request struct {
	Root            string
	Extensions      []string
	CaseInsensitive bool
	OutputExtension string
	Params          encoder.Params
	// Workers is the pool size; values below 2 run jobs sequentially.
	Workers int
}

// RequestFromConfig fills a Request for root from the loaded configuration.
func RequestFromConfig(cfg *config.Config, root string) Request {
	return Request{
		Root:            root,
		Extensions:      cfg.Batch.Extensions,
		CaseInsensitive: cfg.Batch.CaseInsensitiveExtensions,
		OutputExtension: cfg.Encoder.OutputExtension,
		Params:          encoder.ParamsFromConfig(cfg.Encoder),
		Workers:         cfg.Batch.Workers,
	}
}

// Orchestrator runs batches. One Orchestrator may run several batches, in
// sequence or concurrently; each Run owns its own statistics.
type Orchestrator struct {
	encoder  conversion.Encoder
	observer Observer
	logger   *slog.Logger
	lockDir  string
	newID    func() string
	now      func() time.Time
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithObserver sets the event sink.
func WithObserver(o Observer) Option {
	return func(orc *Orchestrator) {
		if o != nil {
			orc.observer = o
		}
	}
}

// WithLogger sets the logger handed to discovery and jobs.
func WithLogger(logger *slog.Logger) Option {
	return func(orc *Orchestrator) {
		orc.logger = logger
	}
}

// WithLockDir enables the per-root batch lock under dir.
func WithLockDir(dir string) Option {
	return func(orc *Orchestrator) {
		orc.lockDir = strings.TrimSpace(dir)
	}
}

// New constructs an Orchestrator that encodes through enc.
func New(enc conversion.Encoder, opts ...Option) *Orchestrator {
	orc := &Orchestrator{
		encoder:  enc,
		observer: NopObserver{},
		newID:    uuid.NewString,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(orc)
	}
	orc.logger = logging.NewComponentLogger(orc.logger, "batch")
	return orc
}

// Run discovers candidates under req.Root and converts each of them.
//
// A missing root (services.ErrNotFound), invalid parameters
// (services.ErrValidation) or a held lock (services.ErrBatchLocked) abort
// before any file is touched. Per-file failures never abort the batch. When
// ctx is cancelled no further jobs start, running encoders are killed, and
// Run returns the partial report together with ctx.Err().
func (o *Orchestrator) Run(ctx context.Context, req Request) (Report, error) {
	if err := validateRequest(&req); err != nil {
		return Report{}, err
	}

	if o.lockDir != "" {
		lock, err := acquireLock(o.lockDir, req.Root)
		if err != nil {
			return Report{}, err
		}
		defer func() {
			if err := lock.Unlock(); err != nil {
				o.logger.Warn("batch lock release failed", logging.Error(err))
			}
		}()
	}

	entries, err := discovery.Discover(req.Root, discovery.Options{
		Extensions:      req.Extensions,
		CaseInsensitive: req.CaseInsensitive,
		Logger:          o.logger,
	})
	if err != nil {
		return Report{}, err
	}

	report := Report{
		BatchID:   o.newID(),
		Root:      req.Root,
		Workers:   req.Workers,
		StartedAt: o.now(),
	}
	ctx = services.WithBatchID(ctx, report.BatchID)
	stats := conversion.NewStatistics(len(entries))

	o.observer.BatchStarted(Start{
		BatchID: report.BatchID,
		Root:    req.Root,
		Total:   len(entries),
		Workers: req.Workers,
	})

	done := 0
	for outcome := range o.dispatch(ctx, req, entries) {
		stats.Merge(outcome)
		done++
		if outcome.Kind == conversion.Failed && outcome.Err != nil && !errors.Is(outcome.Err, context.Canceled) {
			report.Failures = append(report.Failures, fmt.Sprintf("%s: %v", outcome.Source, outcome.Err))
		}
		o.observer.FileFinished(Progress{
			BatchID: report.BatchID,
			Outcome: outcome,
			Done:    done,
			Total:   len(entries),
			Totals:  stats.Snapshot(),
		})
	}

	report.FinishedAt = o.now()
	report.Totals = stats.Snapshot()
	ctxErr := ctx.Err()
	report.Cancelled = ctxErr != nil
	o.observer.BatchFinished(report)

	if ctxErr != nil {
		return report, ctxErr
	}
	return report, nil
}

func validateRequest(req *Request) error {
	if strings.TrimSpace(req.Root) == "" {
		return services.Wrap(services.ErrValidation, "batch", "validate request", "root directory is required", nil)
	}
	if err := req.Params.Validate(); err != nil {
		return services.Wrap(services.ErrValidation, "batch", "validate request", "", err)
	}
	req.OutputExtension = config.NormalizeExtension(req.OutputExtension)
	if req.OutputExtension == "" {
		req.OutputExtension = "webp"
	}
	if req.Workers < 1 {
		req.Workers = 1
	}
	return nil
}
