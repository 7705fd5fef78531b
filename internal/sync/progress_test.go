package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressPercent(t *testing.T) {
	assert.Zero(t, Progress{}.Percent())
	assert.InDelta(t, 50.0,
		Progress{Uploaded: 1, Total: 2}.Percent(), 0.001)
	assert.InDelta(t, 100.0,
		Progress{Uploaded: 4, Total: 4}.Percent(), 0.001)
}

func TestProgressDone(t *testing.T) {
	assert.False(t, Progress{}.Done())
	assert.False(t, Progress{Uploaded: 1, Total: 2}.Done())
	assert.True(t, Progress{Uploaded: 2, Total: 2}.Done())
}

func TestProgressTracker(t *testing.T) {
	var tracker ProgressTracker
	var forwarded [][2]int

	cb := tracker.Callback(func(current, total int) {
		forwarded = append(forwarded, [2]int{current, total})
	})
	cb(1, 3)
	cb(3, 3)

	assert.Equal(t, Progress{Uploaded: 3, Total: 3},
		tracker.Current())
	assert.Equal(t, [][2]int{{1, 3}, {3, 3}}, forwarded)

	tracker.Reset()
	assert.Zero(t, tracker.Current())
}
