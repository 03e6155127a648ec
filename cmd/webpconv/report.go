package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"webpconv/internal/batch"
	"webpconv/internal/logging"
)

// newPrinter picks number formatting from LC_ALL, LC_NUMERIC or LANG,
// falling back to English.
func newPrinter() *message.Printer {
	for _, key := range []string{"LC_ALL", "LC_NUMERIC", "LANG"} {
		if tag, ok := parseLocale(os.Getenv(key)); ok {
			return message.NewPrinter(tag)
		}
	}
	return message.NewPrinter(language.English)
}

// parseLocale turns POSIX locale names such as de_DE.UTF-8 into a language tag.
func parseLocale(value string) (language.Tag, bool) {
	value = strings.TrimSpace(value)
	if value == "" || value == "C" || value == "POSIX" {
		return language.Und, false
	}
	if i := strings.IndexAny(value, ".@"); i >= 0 {
		value = value[:i]
	}
	tag, err := language.Parse(strings.ReplaceAll(value, "_", "-"))
	if err != nil {
		return language.Und, false
	}
	return tag, true
}

func formatRatio(ratio float64) string {
	if ratio <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f x", ratio)
}

var reportHeaders = []string{
	"total", "converted", "skipped", "failed", "webp bigger", "webp zero size",
	"time", "size original", "size webp", "compression",
}

// renderReport renders the final batch table followed by any failures.
func renderReport(r batch.Report, p *message.Printer) string {
	t := r.Totals
	row := []string{
		p.Sprintf("%d", t.Total),
		p.Sprintf("%d", t.Converted),
		p.Sprintf("%d", t.Skipped),
		p.Sprintf("%d", t.Failed),
		p.Sprintf("%d", t.DiscardedLarger),
		p.Sprintf("%d", t.DiscardedEmpty),
		logging.FormatClock(r.Duration()),
		logging.FormatBytes(t.SourceBytes),
		logging.FormatBytes(t.OutputBytes),
		formatRatio(t.CompressionRatio()),
	}
	aligns := make([]columnAlignment, len(reportHeaders))
	for i := range aligns {
		aligns[i] = alignRight
	}

	var b strings.Builder
	b.WriteString(renderTable(reportHeaders, [][]string{row}, aligns))
	b.WriteByte('\n')
	if r.Cancelled {
		b.WriteString(p.Sprintf("Interrupted after %d of %d images; run again to resume.\n", t.Processed(), t.Total))
	}
	for _, failure := range r.Failures {
		b.WriteString("failed: ")
		b.WriteString(failure)
		b.WriteByte('\n')
	}
	return b.String()
}

// reportView is the JSON shape of a batch report.
type reportView struct {
	batch.Report
	DurationSeconds  float64 `json:"duration_seconds"`
	CompressionRatio float64 `json:"compression_ratio"`
	SavedBytes       int64   `json:"saved_bytes"`
}

func newReportView(r batch.Report) reportView {
	return reportView{
		Report:           r,
		DurationSeconds:  r.Duration().Round(time.Millisecond).Seconds(),
		CompressionRatio: r.CompressionRatio(),
		SavedBytes:       r.Totals.SavedBytes(),
	}
}
