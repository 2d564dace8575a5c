package schedule

import "fmt"

// Segment is one plan entry: an interval, the parameter index in effect
// for it, and the name of the raster it produces.
type Segment struct {
	Interval   Interval
	ParamIndex int
	Output     string
}

// Plan is the immutable aggregate the orchestrator iterates: intervals,
// parameter indices and output names as three parallel sequences of equal
// length. Construct with NewPlan or Build; a length mismatch indicates a
// bug in an upstream component, never a user error.
type Plan struct {
	intervals []Interval
	indexes   []int
	outputs   []string
}

// NewPlan validates and aggregates the three parallel sequences.
func NewPlan(intervals []Interval, indexes []int, outputs []string) (*Plan, error) {
	if len(intervals) != len(indexes) || len(intervals) != len(outputs) {
		return nil, fmt.Errorf("schedule: plan sequences out of sync: %d intervals, %d indexes, %d outputs",
			len(intervals), len(indexes), len(outputs))
	}
	return &Plan{intervals: intervals, indexes: indexes, outputs: outputs}, nil
}

// Build composes the full planning pipeline: checkpoint merge, interval
// pairing, index mapping and output naming.
func Build(step, maxTime Time, changeTimes []Time, basename string) (*Plan, error) {
	times, err := Checkpoints(step, maxTime, changeTimes)
	if err != nil {
		return nil, err
	}
	intervals, err := IntervalsOf(times)
	if err != nil {
		return nil, err
	}
	indexes, err := IndexMap(intervals, changeTimes)
	if err != nil {
		return nil, err
	}
	return NewPlan(intervals, indexes, OutputNames(basename, intervals))
}

// Len returns the number of segments in the plan.
func (p *Plan) Len() int { return len(p.intervals) }

// Segment returns segment i. Panics on out-of-range i, as slice indexing
// would; callers iterate 0..Len()-1.
func (p *Plan) Segment(i int) Segment {
	return Segment{Interval: p.intervals[i], ParamIndex: p.indexes[i], Output: p.outputs[i]}
}

// Intervals returns a copy of the interval sequence.
func (p *Plan) Intervals() []Interval {
	out := make([]Interval, len(p.intervals))
	copy(out, p.intervals)
	return out
}

// Outputs returns a copy of the output name sequence.
func (p *Plan) Outputs() []string {
	out := make([]string, len(p.outputs))
	copy(out, p.outputs)
	return out
}

// FinalOutput returns the last segment's output name: the externally
// visible "answer" of a completed run. Empty for an empty plan.
func (p *Plan) FinalOutput() string {
	if len(p.outputs) == 0 {
		return ""
	}
	return p.outputs[len(p.outputs)-1]
}

// Horizon returns the end time of the last interval, or 0 for an empty plan.
func (p *Plan) Horizon() Time {
	if len(p.intervals) == 0 {
		return 0
	}
	return p.intervals[len(p.intervals)-1].End
}
