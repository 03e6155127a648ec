package history

import (
	"context"
	"log/slog"
	"time"

	"webpconv/internal/batch"
	"webpconv/internal/logging"
)

const recordTimeout = 10 * time.Second

// Observer records every finished batch into the store.
type Observer struct {
	batch.NopObserver
	store  *Store
	logger *slog.Logger
}

// NewObserver wraps store as a batch.Observer.
func NewObserver(store *Store, logger *slog.Logger) *Observer {
	return &Observer{store: store, logger: logging.NewComponentLogger(logger, "history")}
}

// BatchFinished stores the report. Failures are logged, never fatal.
func (o *Observer) BatchFinished(r batch.Report) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if err := o.store.Record(ctx, r); err != nil {
		logging.WarnWithContext(o.logger, "batch history not recorded", "history_record_failed",
			logging.String(logging.FieldBatchID, r.BatchID),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check history.path permissions or disable [history]"),
			logging.String(logging.FieldImpact, "batch is missing from the history command"),
		)
	}
}
