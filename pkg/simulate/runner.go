package simulate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pyrelab/firespread/pkg/gis"
	"github.com/pyrelab/firespread/pkg/output"
	"github.com/pyrelab/firespread/pkg/schedule"
)

// DefaultROSBasename prefixes the transient rate-of-spread rasters. They
// exist only between r.ros and the g.remove at the end of each segment;
// a stable name means a crashed run leaves at most one generation behind
// (cleaned up with `firespread clean`).
const DefaultROSBasename = "firespread.ros"

// SpreadColorRules is the fixed ramp applied to every produced raster:
// unburned grey through yellow to red at the latest arrival time.
const SpreadColorRules = "0% 50:50:50\n60% yellow\n100% red\n"

// Config configures a Runner.
type Config struct {
	// ROSBasename overrides the transient ROS raster prefix.
	// Default: DefaultROSBasename.
	ROSBasename string

	// Progress enables progress record emission after each segment.
	Progress bool

	// Logger receives per-segment log entries. Default: zap.NewNop().
	Logger *zap.Logger
}

// Summary contains aggregate results from a finished run.
type Summary struct {
	// State is the terminal state, Succeeded or Aborted.
	State State

	// SegmentsCompleted counts fully completed segments; on abort the
	// artifacts of the completed prefix are kept (no rollback).
	SegmentsCompleted int

	// SegmentsTotal is the number of segments in the plan.
	SegmentsTotal int

	// Outputs lists the produced rasters in chronological order.
	Outputs []string

	// FinalOutput is the last produced raster, the run's answer.
	// Empty when no segment completed.
	FinalOutput string

	// Duration is the total wall-clock run time.
	Duration time.Duration
}

// SegmentError reports a failed external step, carrying enough context
// (which segment, which step) to diagnose the abort.
type SegmentError struct {
	// Segment is the 0-based index of the failed segment.
	Segment int

	// Step is the external module that failed, e.g. "r.spread".
	Step string

	// Err is the underlying failure.
	Err error
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("segment %d: %s: %v", e.Segment, e.Step, e.Err)
}

func (e *SegmentError) Unwrap() error { return e.Err }

// Runner executes one simulation plan against a GRASS session.
//
// Runner is safe for single use only; create a new Runner for each run.
// Execution is strictly sequential: each segment's start raster is the
// previous segment's output, so there is nothing to parallelize.
type Runner struct {
	session gis.Session
	plan    *schedule.Plan
	params  Params
	writer  output.Writer
	runID   string
	cfg     Config

	state State
	seed  string
}

// New creates a Runner for one run.
func New(session gis.Session, plan *schedule.Plan, params Params, writer output.Writer, runID string, cfg Config) *Runner {
	if cfg.ROSBasename == "" {
		cfg.ROSBasename = DefaultROSBasename
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Runner{
		session: session,
		plan:    plan,
		params:  params,
		writer:  writer,
		runID:   runID,
		cfg:     cfg,
		state:   Running,
		seed:    params.Start,
	}
}

// State returns the current run state.
func (r *Runner) State() State { return r.state }

// Run drives the plan to completion or first failure. The returned error
// is nil exactly when the summary state is Succeeded. Cancellation is
// honored between segments only, never inside an in-flight module call
// beyond what the context passes down to the process.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	summary := Summary{State: Running, SegmentsTotal: r.plan.Len()}
	rosMaps := gis.ROSMapsFor(r.cfg.ROSBasename)

	for i := 0; i < r.plan.Len(); i++ {
		if err := ctx.Err(); err != nil {
			r.abort(ctx, &summary, i, "", err)
			summary.Duration = time.Since(start)
			return summary, err
		}

		seg := r.plan.Segment(i)
		segStart := time.Now()
		r.cfg.Logger.Debug("Starting segment",
			zap.Int("segment", i),
			zap.Int("start", int(seg.Interval.Start)),
			zap.Int("end", int(seg.Interval.End)),
			zap.Int("param_index", seg.ParamIndex),
			zap.String("seed", r.seed),
			zap.String("output", seg.Output))

		if err := r.runSegment(ctx, i, seg, rosMaps); err != nil {
			var segErr *SegmentError
			step := ""
			if errors.As(err, &segErr) {
				step = segErr.Step
			}
			r.abort(ctx, &summary, i, step, err)
			summary.Duration = time.Since(start)
			return summary, err
		}

		// Seed threading: the raster just produced is where the fire
		// front is now, so it becomes the next segment's start.
		r.seed = seg.Output
		summary.SegmentsCompleted++
		summary.Outputs = append(summary.Outputs, seg.Output)
		summary.FinalOutput = seg.Output

		r.writeSegmentRecord(ctx, i, seg, time.Since(segStart))
		if r.cfg.Progress {
			r.writeProgressRecord(ctx, &summary, seg)
		}
	}

	r.state = Succeeded
	summary.State = Succeeded
	summary.Duration = time.Since(start)
	r.writeSummaryRecord(ctx, &summary)
	return summary, nil
}

// runSegment executes the five external steps for segment index.
func (r *Runner) runSegment(ctx context.Context, index int, seg schedule.Segment, rosMaps gis.RateOfSpreadMaps) error {
	if err := r.session.RateOfSpread(ctx, r.params.ROSInput(seg.ParamIndex, r.cfg.ROSBasename)); err != nil {
		return &SegmentError{Segment: index, Step: "r.ros", Err: err}
	}

	spread := gis.SpreadInput{
		Max:      rosMaps.Max,
		Dir:      rosMaps.MaxDir,
		Base:     rosMaps.Base,
		Start:    r.seed,
		Output:   seg.Output,
		InitTime: int(seg.Interval.Start),
		Lag:      int(seg.Interval.Duration()),
	}
	if err := r.session.Spread(ctx, spread); err != nil {
		return &SegmentError{Segment: index, Step: "r.spread", Err: err}
	}

	// The transient ROS rasters must go before the next segment: a
	// leftover of the same name would silently feed stale rates into the
	// next r.spread, so removal failure is fatal rather than best-effort.
	if err := r.session.RemoveRasters(ctx, rosMaps.Names()...); err != nil {
		return &SegmentError{Segment: index, Step: "g.remove", Err: err}
	}

	// r.spread writes 0 for cells the fire never reached; flag them as
	// nulls so downstream stats and rendering treat them as no-data.
	if err := r.session.SetNull(ctx, seg.Output, "0"); err != nil {
		return &SegmentError{Segment: index, Step: "r.null", Err: err}
	}

	if err := r.session.ApplyColorRules(ctx, seg.Output, SpreadColorRules); err != nil {
		return &SegmentError{Segment: index, Step: "r.colors", Err: err}
	}
	return nil
}

// abort finalizes state on the first failure.
func (r *Runner) abort(ctx context.Context, summary *Summary, segment int, step string, cause error) {
	r.state = Aborted
	summary.State = Aborted

	code := output.ErrCodeModuleFailed
	switch {
	case errors.Is(cause, context.Canceled) || errors.Is(cause, context.DeadlineExceeded):
		code = output.ErrCodeCancelled
	default:
		if _, ok := gis.IsModuleError(cause); !ok {
			code = output.ErrCodeInvariant
		}
	}

	r.cfg.Logger.Error("Run aborted",
		zap.Int("segment", segment),
		zap.String("step", step),
		zap.Error(cause))

	if r.writer == nil {
		return
	}
	// Record emission is observability, not a pipeline step; failures
	// here are logged, not propagated over the original cause.
	wctx := ctx
	if wctx.Err() != nil {
		wctx = context.Background()
	}
	if err := r.writer.WriteError(wctx, &output.ErrorRecord{
		Code:    code,
		Message: cause.Error(),
		Segment: segment,
		Step:    step,
	}); err != nil {
		r.cfg.Logger.Warn("Failed to write error record", zap.Error(err))
	}
	r.writeSummaryRecord(wctx, summary)
}

func (r *Runner) writeSegmentRecord(ctx context.Context, index int, seg schedule.Segment, elapsed time.Duration) {
	if r.writer == nil {
		return
	}
	rec := &output.SegmentRecord{
		Index:      index,
		Start:      int(seg.Interval.Start),
		End:        int(seg.Interval.End),
		ParamIndex: seg.ParamIndex,
		Seed:       r.previousSeed(index),
		Output:     seg.Output,
		Elapsed:    elapsed,
	}
	if err := r.writer.WriteSegment(ctx, rec); err != nil {
		r.cfg.Logger.Warn("Failed to write segment record", zap.Error(err))
	}
}

// previousSeed is the seed the given segment started from: the original
// start raster for segment 0, otherwise the previous segment's output.
func (r *Runner) previousSeed(index int) string {
	if index == 0 {
		return r.params.Start
	}
	return r.plan.Segment(index - 1).Output
}

func (r *Runner) writeProgressRecord(ctx context.Context, summary *Summary, seg schedule.Segment) {
	if r.writer == nil {
		return
	}
	rec := &output.ProgressRecord{
		SegmentsDone:  summary.SegmentsCompleted,
		SegmentsTotal: summary.SegmentsTotal,
		SimTime:       int(seg.Interval.End),
		Output:        seg.Output,
	}
	if err := r.writer.WriteProgress(ctx, rec); err != nil {
		r.cfg.Logger.Warn("Failed to write progress record", zap.Error(err))
	}
}

func (r *Runner) writeSummaryRecord(ctx context.Context, summary *Summary) {
	if r.writer == nil {
		return
	}
	rec := &output.SummaryRecord{
		State:             summary.State.String(),
		SegmentsCompleted: summary.SegmentsCompleted,
		SegmentsTotal:     summary.SegmentsTotal,
		Outputs:           summary.Outputs,
		FinalOutput:       summary.FinalOutput,
		Duration:          summary.Duration,
		DurationHuman:     summary.Duration.Round(time.Millisecond).String(),
	}
	if err := r.writer.WriteSummary(ctx, rec); err != nil {
		r.cfg.Logger.Warn("Failed to write summary record", zap.Error(err))
	}
}
