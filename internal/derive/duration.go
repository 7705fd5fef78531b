// Package derive holds the pure derivations computed over a
// session's message sequence: active duration, edited-file
// languages, conversation highlights, and token usage.
package derive

import "time"

const (
	// Gaps longer than this are idle time and excluded.
	maxGapSeconds = 900
	// A session's active duration is capped at 8 hours.
	maxDurationSeconds = 28800
)

// DurationStats describes the active-time calculation over a
// timestamped sequence.
type DurationStats struct {
	DurationSeconds int
	ActiveGaps      int
	IdleGaps        int
}

// ActiveDuration sums the gaps between consecutive timestamps,
// counting a gap only when it is positive and at most 15 minutes.
// Non-positive gaps (duplicate or reversed timestamps) are
// ignored entirely; longer gaps count as idle. The total is
// capped at 8 hours.
func ActiveDuration(timestamps []time.Time) DurationStats {
	var stats DurationStats
	total := 0
	for i := 1; i < len(timestamps); i++ {
		gap := int(timestamps[i].Sub(timestamps[i-1]).Seconds())
		if gap <= 0 {
			continue
		}
		if gap > maxGapSeconds {
			stats.IdleGaps++
			continue
		}
		stats.ActiveGaps++
		total += gap
	}
	if total > maxDurationSeconds {
		total = maxDurationSeconds
	}
	stats.DurationSeconds = total
	return stats
}
