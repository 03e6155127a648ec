package batch

import (
	"time"

	"webpconv/internal/conversion"
)

// Report is the final, read-only summary of one batch.
type Report struct {
	BatchID    string            `json:"batch_id"`
	Root       string            `json:"root"`
	Workers    int               `json:"workers"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Cancelled  bool              `json:"cancelled"`
	Totals     conversion.Totals `json:"totals"`
	// Failures lists "source: error" lines for Failed outcomes.
	Failures []string `json:"failures,omitempty"`
}

// Duration is the batch wall time.
func (r Report) Duration() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// CompressionRatio delegates to the totals.
func (r Report) CompressionRatio() float64 {
	return r.Totals.CompressionRatio()
}
