package sync

import (
	gosync "sync"

	"github.com/devark-ai/devark/internal/api"
)

// Progress is a snapshot of an in-flight upload.
type Progress struct {
	Uploaded int `json:"uploaded"`
	Total    int `json:"total"`
}

// Percent returns upload progress as a percentage (0–100).
func (p Progress) Percent() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Uploaded) / float64(p.Total) * 100
}

// Done reports whether the upload has finished.
func (p Progress) Done() bool {
	return p.Total > 0 && p.Uploaded >= p.Total
}

// ProgressTracker retains the latest upload progress so callers
// can read a consistent snapshot outside the upload callback,
// including from other goroutines.
type ProgressTracker struct {
	mu      gosync.RWMutex
	current Progress
}

// Callback returns an api.ProgressFunc that records progress
// into the tracker and forwards to next when non-nil.
func (t *ProgressTracker) Callback(next api.ProgressFunc) api.ProgressFunc {
	return func(current, total int) {
		t.mu.Lock()
		t.current = Progress{Uploaded: current, Total: total}
		t.mu.Unlock()
		if next != nil {
			next(current, total)
		}
	}
}

// Current returns the latest recorded progress.
func (t *ProgressTracker) Current() Progress {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

// Reset clears the tracker before a new run.
func (t *ProgressTracker) Reset() {
	t.mu.Lock()
	t.current = Progress{}
	t.mu.Unlock()
}
