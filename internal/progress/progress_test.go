package progress

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestNewTracker(t *testing.T) {
	tests := []struct {
		name  string
		label string
		total int
	}{
		{name: "standard tracker", label: "Reducing rows", total: 100},
		{name: "zero total", label: "Empty reduction", total: 0},
		{name: "large total", label: "Many rows", total: 1_000_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := newTracker(&bytes.Buffer{}, tt.label, tt.total)
			if tracker.bar == nil {
				t.Fatal("tracker.bar should not be nil")
			}
			if tracker.label != tt.label {
				t.Errorf("tracker.label = %q, want %q", tracker.label, tt.label)
			}
		})
	}
}

func TestTrackerAddConcurrent(t *testing.T) {
	tracker := newTracker(&bytes.Buffer{}, "rows", 1000)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				tracker.Add(10)
			}
		}()
	}
	wg.Wait()

	if got := tracker.Current(); got != 1000 {
		t.Errorf("Current() = %d, want 1000", got)
	}
	tracker.FinishSuccess()
}

func TestTrackerTick(t *testing.T) {
	tracker := newTracker(&bytes.Buffer{}, "rows", 3)
	tracker.Tick()
	tracker.Tick()
	if got := tracker.Current(); got != 2 {
		t.Errorf("Current() = %d, want 2", got)
	}
}

func TestFinishError(t *testing.T) {
	var buf bytes.Buffer
	tracker := newTracker(&buf, "Computing percentiles", 10)
	tracker.FinishError(errors.New("boom"))

	if !strings.Contains(buf.String(), "Computing percentiles error: boom") {
		t.Errorf("output %q should contain the error message", buf.String())
	}
}

func TestSpinner(t *testing.T) {
	spinner := newSpinner(&bytes.Buffer{}, "Loading")
	if spinner.bar == nil {
		t.Fatal("spinner.bar should not be nil")
	}
	spinner.Tick()
	spinner.FinishSuccess()
}
