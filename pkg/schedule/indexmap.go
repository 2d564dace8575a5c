package schedule

import "fmt"

// IndexMap resolves, for each interval, the index of the greatest change
// time <= the interval's start: a "hold last value" step-function lookup
// into the per-change-time parameter vectors.
//
// Both inputs are ascending, and every interval start is itself a merged
// checkpoint, so a single forward scan with two cursors suffices: the
// change-time cursor advances only while the next change time is <= the
// current start, and clamps at the last index once exhausted. The emitted
// sequence is therefore non-decreasing and starts at 0.
func IndexMap(intervals []Interval, changeTimes []Time) ([]int, error) {
	if len(changeTimes) == 0 {
		return nil, ErrNoChangeTimes
	}
	if len(intervals) > 0 && changeTimes[0] > intervals[0].Start {
		return nil, fmt.Errorf("schedule: first change time %d is after first interval start %d",
			changeTimes[0], intervals[0].Start)
	}
	indexes := make([]int, 0, len(intervals))
	cursor := 0
	for _, iv := range intervals {
		for cursor+1 < len(changeTimes) && changeTimes[cursor+1] <= iv.Start {
			cursor++
		}
		indexes = append(indexes, cursor)
	}
	return indexes, nil
}
