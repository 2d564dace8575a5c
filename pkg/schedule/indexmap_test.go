package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexMap(t *testing.T) {
	tests := []struct {
		name        string
		intervals   []Interval
		changeTimes []Time
		want        []int
	}{
		{
			name:        "hold last value across intervals",
			intervals:   []Interval{{0, 4}, {4, 5}, {5, 8}},
			changeTimes: []Time{0, 5},
			want:        []int{0, 0, 1},
		},
		{
			name:        "every interval starts on a change",
			intervals:   []Interval{{0, 3}, {3, 4}, {4, 5}, {5, 6}},
			changeTimes: []Time{0, 3, 4, 5, 6},
			want:        []int{0, 1, 2, 3},
		},
		{
			name:        "sparse changes",
			intervals:   []Interval{{0, 1}, {1, 3}, {3, 8}, {8, 9}},
			changeTimes: []Time{0, 3},
			want:        []int{0, 0, 1, 1},
		},
		{
			name:        "single change time clamps everywhere",
			intervals:   []Interval{{0, 2}, {2, 4}, {4, 6}},
			changeTimes: []Time{0},
			want:        []int{0, 0, 0},
		},
		{
			name:        "no intervals",
			intervals:   nil,
			changeTimes: []Time{0},
			want:        []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IndexMap(tt.intervals, tt.changeTimes)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIndexMap_Properties(t *testing.T) {
	changeTimes := []Time{0, 3, 5, 11}
	times, err := Checkpoints(2, 14, changeTimes)
	require.NoError(t, err)
	intervals, err := IntervalsOf(times)
	require.NoError(t, err)

	indexes, err := IndexMap(intervals, changeTimes)
	require.NoError(t, err)

	require.Len(t, indexes, len(intervals))
	assert.Equal(t, 0, indexes[0], "index sequence must start at 0")
	for i := 1; i < len(indexes); i++ {
		assert.GreaterOrEqual(t, indexes[i], indexes[i-1], "index sequence must be non-decreasing")
		assert.Less(t, indexes[i], len(changeTimes), "index out of range")
	}
}

func TestIndexMap_Invalid(t *testing.T) {
	_, err := IndexMap([]Interval{{0, 2}}, nil)
	assert.ErrorIs(t, err, ErrNoChangeTimes)

	_, err = IndexMap([]Interval{{0, 2}}, []Time{1})
	assert.Error(t, err)
}
