package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	plan, err := Build(2, 9, []Time{0, 3, 5}, "fire")
	require.NoError(t, err)

	require.Equal(t, 6, plan.Len())
	assert.Equal(t, Segment{Interval: Interval{0, 2}, ParamIndex: 0, Output: "fire_2"}, plan.Segment(0))
	assert.Equal(t, Segment{Interval: Interval{2, 3}, ParamIndex: 0, Output: "fire_3"}, plan.Segment(1))
	assert.Equal(t, Segment{Interval: Interval{3, 4}, ParamIndex: 1, Output: "fire_4"}, plan.Segment(2))
	assert.Equal(t, Segment{Interval: Interval{4, 5}, ParamIndex: 1, Output: "fire_5"}, plan.Segment(3))
	assert.Equal(t, Segment{Interval: Interval{5, 6}, ParamIndex: 2, Output: "fire_6"}, plan.Segment(4))
	assert.Equal(t, Segment{Interval: Interval{6, 8}, ParamIndex: 2, Output: "fire_8"}, plan.Segment(5))

	assert.Equal(t, "fire_8", plan.FinalOutput())
	assert.Equal(t, Time(8), plan.Horizon())
}

func TestBuild_HorizonShorterThanStep(t *testing.T) {
	// Only checkpoint 0 survives; no interval can be formed.
	_, err := Build(10, 5, []Time{0}, "fire")
	assert.ErrorIs(t, err, ErrTooFewCheckpoints)
}

func TestNewPlan_LengthMismatch(t *testing.T) {
	intervals := []Interval{{0, 2}, {2, 4}}

	_, err := NewPlan(intervals, []int{0}, []string{"a", "b"})
	assert.Error(t, err)

	_, err = NewPlan(intervals, []int{0, 0}, []string{"a"})
	assert.Error(t, err)
}

func TestPlan_AccessorsCopy(t *testing.T) {
	plan, err := Build(4, 16, []Time{0, 4, 12}, "fire")
	require.NoError(t, err)

	ivs := plan.Intervals()
	ivs[0].Start = 99
	assert.Equal(t, Time(0), plan.Segment(0).Interval.Start, "mutating the copy must not affect the plan")

	outs := plan.Outputs()
	outs[0] = "mutated"
	assert.NotEqual(t, "mutated", plan.Segment(0).Output)
}
