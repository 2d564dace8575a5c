package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervalsOf(t *testing.T) {
	got, err := IntervalsOf([]Time{0, 4, 5, 8, 9, 12})
	require.NoError(t, err)
	assert.Equal(t, []Interval{{0, 4}, {4, 5}, {5, 8}, {8, 9}, {9, 12}}, got)
}

func TestIntervalsOf_Contiguous(t *testing.T) {
	times, err := Checkpoints(2, 9, []Time{0, 3, 5})
	require.NoError(t, err)
	intervals, err := IntervalsOf(times)
	require.NoError(t, err)

	require.Len(t, intervals, len(times)-1)
	for i, iv := range intervals {
		assert.Less(t, iv.Start, iv.End, "interval %d is empty or inverted", i)
		if i > 0 {
			assert.Equal(t, intervals[i-1].End, iv.Start, "gap between interval %d and %d", i-1, i)
		}
	}
	assert.Equal(t, Time(0), intervals[0].Start)
	assert.Equal(t, Time(8), intervals[len(intervals)-1].End)
}

func TestIntervalsOf_TooFew(t *testing.T) {
	for _, times := range [][]Time{nil, {}, {0}} {
		_, err := IntervalsOf(times)
		assert.ErrorIs(t, err, ErrTooFewCheckpoints)
	}
}

func TestInterval_Duration(t *testing.T) {
	assert.Equal(t, Time(3), Interval{Start: 5, End: 8}.Duration())
}
