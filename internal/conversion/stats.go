package conversion

import (
	"sync"
	"time"
)

// Totals is a point-in-time copy of batch statistics.
type Totals struct {
	Total           int           `json:"total"`
	Converted       int           `json:"converted"`
	Skipped         int           `json:"skipped"`
	Failed          int           `json:"failed"`
	DiscardedLarger int           `json:"discarded_larger"`
	DiscardedEmpty  int           `json:"discarded_empty"`
	SourceBytes     int64         `json:"source_bytes"`
	OutputBytes     int64         `json:"output_bytes"`
	Elapsed         time.Duration `json:"elapsed_ns"`
}

// Processed counts merged outcomes.
func (t Totals) Processed() int {
	return t.Converted + t.Skipped + t.Failed + t.DiscardedLarger + t.DiscardedEmpty
}

// CompressionRatio is SourceBytes divided by OutputBytes, or 0 when nothing
// was written.
func (t Totals) CompressionRatio() float64 {
	if t.OutputBytes <= 0 {
		return 0
	}
	return float64(t.SourceBytes) / float64(t.OutputBytes)
}

// SavedBytes is how much smaller the kept outputs are than their sources.
func (t Totals) SavedBytes() int64 {
	return t.SourceBytes - t.OutputBytes
}

// Statistics accumulates outcomes for one batch. Merge is safe for
// concurrent use.
type Statistics struct {
	mu     sync.Mutex
	totals Totals
}

// NewStatistics starts an empty accumulator for total candidates.
func NewStatistics(total int) *Statistics {
	return &Statistics{totals: Totals{Total: total}}
}

// Merge folds one outcome into the totals. Byte totals only grow for
// Converted outcomes; encoder time accumulates for every outcome.
func (s *Statistics) Merge(o Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch o.Kind {
	case Converted:
		s.totals.Converted++
		s.totals.SourceBytes += o.SourceSize
		s.totals.OutputBytes += o.OutputSize
	case Skipped:
		s.totals.Skipped++
	case Failed:
		s.totals.Failed++
	case DiscardedLarger:
		s.totals.DiscardedLarger++
	case DiscardedEmpty:
		s.totals.DiscardedEmpty++
	}
	s.totals.Elapsed += o.Elapsed
}

// Snapshot returns a copy of the current totals.
func (s *Statistics) Snapshot() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totals
}
