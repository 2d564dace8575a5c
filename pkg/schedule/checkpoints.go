// Package schedule turns a periodic export cadence and a set of irregular
// parameter-change times into an executable simulation plan.
//
// The pipeline is: merge the two time sources into one sorted checkpoint
// sequence, pair consecutive checkpoints into half-open intervals, resolve
// for each interval the parameter index that was last in effect at its
// start, and derive a lexicographically sortable output name per interval.
// The resulting Plan is immutable and is consumed by pkg/simulate.
package schedule

import (
	"errors"
	"fmt"
)

// Time is a non-negative simulation time value. The domain unit is minutes
// (matching r.spread's init_time/lag), but the scheduling math is unit-free.
type Time int

// Errors returned by plan construction.
var (
	// ErrNoChangeTimes indicates an empty change-time sequence.
	ErrNoChangeTimes = errors.New("schedule: no change times")

	// ErrTooFewCheckpoints indicates fewer than two checkpoints, from which
	// no interval can be formed.
	ErrTooFewCheckpoints = errors.New("schedule: need at least two checkpoints")
)

// Checkpoints merges the periodic export grid {0, step, 2*step, ...} with
// the given change times into one ascending, duplicate-free sequence,
// restricted to values <= maxTime.
//
// changeTimes must be non-decreasing with first element 0 (enforced by
// scenario validation upstream). Change times beyond maxTime are ignored;
// a change time equal to maxTime is included even when maxTime is not on
// the step grid. If maxTime is not a multiple of step the sequence simply
// stops at the last grid value <= maxTime; no remainder checkpoint is
// synthesized.
func Checkpoints(step, maxTime Time, changeTimes []Time) ([]Time, error) {
	if step <= 0 {
		return nil, fmt.Errorf("schedule: step must be positive, got %d", step)
	}
	if maxTime < 0 {
		return nil, fmt.Errorf("schedule: max time must be non-negative, got %d", maxTime)
	}
	if len(changeTimes) == 0 {
		return nil, ErrNoChangeTimes
	}
	if changeTimes[0] != 0 {
		return nil, fmt.Errorf("schedule: change times must start at 0, got %d", changeTimes[0])
	}
	for i := 1; i < len(changeTimes); i++ {
		if changeTimes[i] < changeTimes[i-1] {
			return nil, fmt.Errorf("schedule: change times must be non-decreasing, got %d after %d",
				changeTimes[i], changeTimes[i-1])
		}
	}

	// Linear merge of two sorted sources: the periodic grid and the change
	// times. Dedup happens naturally because both sources are ascending.
	merged := make([]Time, 0, len(changeTimes)+int(maxTime/step)+1)
	grid := Time(0)
	ci := 0
	for grid <= maxTime || ci < len(changeTimes) {
		var next Time
		switch {
		case ci >= len(changeTimes):
			next = grid
			grid += step
		case grid > maxTime:
			next = changeTimes[ci]
			ci++
		case changeTimes[ci] < grid:
			next = changeTimes[ci]
			ci++
		case changeTimes[ci] == grid:
			next = grid
			grid += step
			ci++
		default:
			next = grid
			grid += step
		}
		if next > maxTime {
			continue
		}
		if n := len(merged); n > 0 && merged[n-1] == next {
			continue
		}
		merged = append(merged, next)
	}
	return merged, nil
}
