package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Tracker wraps a progress bar for row reduction.
type Tracker struct {
	bar   *progressbar.ProgressBar
	label string
	out   io.Writer
}

// NewSpinner creates a spinner for operations with unknown total count.
func NewSpinner(label string) *Tracker {
	return newSpinner(os.Stderr, label)
}

func newSpinner(w io.Writer, label string) *Tracker {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetWidth(20),
		progressbar.OptionSetDescription(label),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	return &Tracker{bar: bar, label: label, out: w}
}

// NewTracker creates a progress bar counting rows up to total.
func NewTracker(label string, total int) *Tracker {
	return newTracker(os.Stderr, label, total)
}

func newTracker(w io.Writer, label string, total int) *Tracker {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(label),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &Tracker{bar: bar, label: label, out: w}
}

// Tick increments the progress by 1. Safe for concurrent use.
func (t *Tracker) Tick() {
	t.Add(1)
}

// Add advances the bar by n rows. Safe for concurrent use, so it can be
// passed directly as a quantile progress callback.
func (t *Tracker) Add(n int) {
	_ = t.bar.Add(n)
}

// Current returns the number of rows counted so far.
func (t *Tracker) Current() int64 {
	return t.bar.State().CurrentNum
}

// FinishSuccess clears the bar completely (no output).
func (t *Tracker) FinishSuccess() {
	_ = t.bar.Finish()
	_ = t.bar.Clear()
}

// FinishError clears the bar and prints an error message.
func (t *Tracker) FinishError(err error) {
	_ = t.bar.Finish()
	_ = t.bar.Clear()
	fmt.Fprintf(t.out, "  %s error: %v\n", t.label, err)
}
