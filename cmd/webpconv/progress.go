package main

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"

	"webpconv/internal/batch"
)

// progressObserver draws a terminal progress bar advanced once per file.
type progressObserver struct {
	batch.NopObserver
	w   io.Writer
	bar *progressbar.ProgressBar
}

func newProgressObserver(w io.Writer) *progressObserver {
	return &progressObserver{w: w}
}

func (p *progressObserver) BatchStarted(s batch.Start) {
	p.bar = progressbar.NewOptions(s.Total,
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionSetWidth(70),
		progressbar.OptionSetDescription("converting"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func (p *progressObserver) FileFinished(batch.Progress) {
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}

func (p *progressObserver) BatchFinished(batch.Report) {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	fmt.Fprintln(p.w)
}
