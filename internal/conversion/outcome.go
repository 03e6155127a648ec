package conversion

import (
	"fmt"
	"time"

	"webpconv/internal/logging"
)

// Kind is the terminal classification of one file.
type Kind int

const (
	Converted Kind = iota
	Skipped
	Failed
	DiscardedLarger
	DiscardedEmpty
)

var kindNames = [...]string{
	Converted:       "converted",
	Skipped:         "skipped",
	Failed:          "failed",
	DiscardedLarger: "discarded_larger",
	DiscardedEmpty:  "discarded_empty",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// MarshalText renders the kind by name in JSON output.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Outcome is the single result produced for one source file.
type Outcome struct {
	Kind       Kind
	Source     string
	Output     string
	SourceSize int64
	// OutputSize is the encoded size; set for Converted and DiscardedLarger.
	OutputSize int64
	// Elapsed is the wall time of the encoder call; zero for Skipped.
	Elapsed time.Duration
	Err     error
}

// DeltaPercent is the output size change relative to the source, rounded to
// a whole percent. Zero when the source size is unknown.
func (o Outcome) DeltaPercent() int64 {
	if o.SourceSize <= 0 {
		return 0
	}
	delta := (o.OutputSize - o.SourceSize) * 100
	if delta < 0 {
		return -((-delta + o.SourceSize/2) / o.SourceSize)
	}
	return (delta + o.SourceSize/2) / o.SourceSize
}

// StatusLine renders a one-line human description of the outcome.
func (o Outcome) StatusLine() string {
	switch o.Kind {
	case Converted:
		return fmt.Sprintf("converted %s (%+d%% / %s, %s -> %s, %s)",
			o.Source,
			o.DeltaPercent(),
			logging.FormatBytes(o.OutputSize-o.SourceSize),
			logging.FormatBytes(o.SourceSize),
			logging.FormatBytes(o.OutputSize),
			o.Elapsed.Round(time.Millisecond),
		)
	case Skipped:
		return fmt.Sprintf("skipped %s (webp up to date)", o.Source)
	case DiscardedLarger:
		return fmt.Sprintf("discarded %s (webp bigger than source: %s > %s, deleted)",
			o.Output, logging.FormatBytes(o.OutputSize), logging.FormatBytes(o.SourceSize))
	case DiscardedEmpty:
		return fmt.Sprintf("discarded %s (webp file size zero, deleted)", o.Output)
	case Failed:
		if o.Err != nil {
			return fmt.Sprintf("failed %s: %v", o.Source, o.Err)
		}
		return fmt.Sprintf("failed %s", o.Source)
	default:
		return fmt.Sprintf("%s %s", o.Kind, o.Source)
	}
}
