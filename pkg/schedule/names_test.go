package schedule

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutputNames(t *testing.T) {
	tests := []struct {
		name      string
		basename  string
		intervals []Interval
		want      []string
	}{
		{
			name:      "single digit width degenerates to no padding",
			basename:  "fire",
			intervals: []Interval{{0, 4}, {4, 5}, {5, 8}},
			want:      []string{"fire_4", "fire_5", "fire_8"},
		},
		{
			name:      "two digit width",
			basename:  "firespread",
			intervals: []Interval{{0, 3}, {3, 12}},
			want:      []string{"firespread_03", "firespread_12"},
		},
		{
			name:      "width from final end time",
			basename:  "fire_spread",
			intervals: []Interval{{0, 1}, {1, 26}, {26, 150}},
			want:      []string{"fire_spread_001", "fire_spread_026", "fire_spread_150"},
		},
		{
			name:      "no intervals",
			basename:  "fire",
			intervals: nil,
			want:      nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OutputNames(tt.basename, tt.intervals))
		})
	}
}

func TestOutputNames_LexicographicOrder(t *testing.T) {
	intervals := []Interval{{0, 5}, {5, 56}, {56, 189}, {189, 8547}}
	names := OutputNames("burn", intervals)

	assert.True(t, sort.StringsAreSorted(names),
		"lexicographic order must equal chronological order: %v", names)
}
