package gamification

import (
	"sort"
	"time"
)

// ComputeStreak returns the current and the longest run of consecutive days.
// days are calendar dates (time of day is ignored, duplicates are fine). The
// current streak is the run that ends today or yesterday; a streak is not lost
// until a whole day passes without a review.
func ComputeStreak(days []time.Time, today time.Time) (current, longest int) {
	if len(days) == 0 {
		return 0, 0
	}

	uniq := make(map[time.Time]bool, len(days))
	sorted := make([]time.Time, 0, len(days))
	for _, d := range days {
		d = dateOf(d)
		if !uniq[d] {
			uniq[d] = true
			sorted = append(sorted, d)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	run := 0
	for i, d := range sorted {
		if i > 0 && sorted[i-1].AddDate(0, 0, 1).Equal(d) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	today = dateOf(today)
	last := sorted[len(sorted)-1]
	if !last.Equal(today) && !last.AddDate(0, 0, 1).Equal(today) {
		return 0, longest
	}
	return run, longest
}

// dateOf drops the clock part but keeps the location, so dates compare in the
// caller's timezone.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
