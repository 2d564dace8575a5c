package schedule

// Interval is a half-open time span [Start, End) between two consecutive
// checkpoints. One interval is one atomic unit of external computation.
type Interval struct {
	Start Time
	End   Time
}

// Duration returns End - Start.
func (iv Interval) Duration() Time { return iv.End - iv.Start }

// IntervalsOf pairs consecutive checkpoints into n-1 contiguous intervals:
// interval i's End equals interval i+1's Start, covering [times[0],
// times[n-1]] with no gaps or overlaps. Returns ErrTooFewCheckpoints when
// fewer than two checkpoints are given.
func IntervalsOf(times []Time) ([]Interval, error) {
	if len(times) < 2 {
		return nil, ErrTooFewCheckpoints
	}
	intervals := make([]Interval, 0, len(times)-1)
	for i := 0; i < len(times)-1; i++ {
		intervals = append(intervals, Interval{Start: times[i], End: times[i+1]})
	}
	return intervals, nil
}
