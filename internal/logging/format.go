package logging

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatBytes renders a byte count in IEC units. Negative values keep their
// sign so size deltas read naturally.
func FormatBytes(n int64) string {
	if n < 0 {
		return "-" + humanize.IBytes(uint64(-n))
	}
	return humanize.IBytes(uint64(n))
}

// FormatClock renders a duration as mm:ss, rolling minutes past 59.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
