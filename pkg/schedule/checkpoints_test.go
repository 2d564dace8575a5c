package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckpoints(t *testing.T) {
	tests := []struct {
		name        string
		step        Time
		maxTime     Time
		changeTimes []Time
		want        []Time
	}{
		{
			name:        "changes between grid points",
			step:        2,
			maxTime:     9,
			changeTimes: []Time{0, 3, 5},
			want:        []Time{0, 2, 3, 4, 5, 6, 8},
		},
		{
			name:        "changes on grid points",
			step:        1,
			maxTime:     10,
			changeTimes: []Time{0, 2, 5},
			want:        []Time{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		},
		{
			name:        "off-grid change with off-grid horizon",
			step:        3,
			maxTime:     11,
			changeTimes: []Time{0, 5},
			want:        []Time{0, 3, 5, 6, 9},
		},
		{
			name:        "all changes coincide with grid",
			step:        4,
			maxTime:     16,
			changeTimes: []Time{0, 4, 12},
			want:        []Time{0, 4, 8, 12, 16},
		},
		{
			name:        "change beyond horizon is ignored",
			step:        4,
			maxTime:     16,
			changeTimes: []Time{0, 4, 12, 20},
			want:        []Time{0, 4, 8, 12, 16},
		},
		{
			name:        "mixed grid and off-grid changes",
			step:        3,
			maxTime:     14,
			changeTimes: []Time{0, 2, 6, 7},
			want:        []Time{0, 2, 3, 6, 7, 9, 12},
		},
		{
			name:        "change exactly at off-grid horizon is included",
			step:        4,
			maxTime:     10,
			changeTimes: []Time{0, 10},
			want:        []Time{0, 4, 8, 10},
		},
		{
			name:        "multiple changes inside one step window",
			step:        10,
			maxTime:     10,
			changeTimes: []Time{0, 2, 5},
			want:        []Time{0, 2, 5, 10},
		},
		{
			name:        "single change at zero",
			step:        5,
			maxTime:     15,
			changeTimes: []Time{0},
			want:        []Time{0, 5, 10, 15},
		},
		{
			name:        "duplicate change times collapse",
			step:        4,
			maxTime:     8,
			changeTimes: []Time{0, 3, 3},
			want:        []Time{0, 3, 4, 8},
		},
		{
			name:        "zero horizon",
			step:        2,
			maxTime:     0,
			changeTimes: []Time{0},
			want:        []Time{0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Checkpoints(tt.step, tt.maxTime, tt.changeTimes)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckpoints_NoDuplicates(t *testing.T) {
	// A change time coinciding with a periodic point must not produce a
	// duplicate: the result is a set, not a multiset.
	for step := Time(1); step <= 5; step++ {
		got, err := Checkpoints(step, 20, []Time{0, 4, 5, 10, 15})
		require.NoError(t, err)
		for i := 1; i < len(got); i++ {
			assert.Less(t, got[i-1], got[i], "step=%d produced non-ascending sequence %v", step, got)
		}
	}
}

func TestCheckpoints_Idempotent(t *testing.T) {
	first, err := Checkpoints(2, 9, []Time{0, 3, 5})
	require.NoError(t, err)
	second, err := Checkpoints(2, 9, []Time{0, 3, 5})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCheckpoints_Invalid(t *testing.T) {
	tests := []struct {
		name        string
		step        Time
		maxTime     Time
		changeTimes []Time
	}{
		{"zero step", 0, 10, []Time{0}},
		{"negative step", -2, 10, []Time{0}},
		{"negative horizon", 2, -1, []Time{0}},
		{"empty change times", 2, 10, nil},
		{"first change not zero", 2, 10, []Time{1, 5}},
		{"decreasing change times", 2, 10, []Time{0, 5, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Checkpoints(tt.step, tt.maxTime, tt.changeTimes)
			assert.Error(t, err)
		})
	}
}
