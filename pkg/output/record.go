// Package output provides JSONL output for simulation runs.
//
// Output is structured as typed record envelopes containing segment
// results, errors, and progress updates. Each line is a self-contained
// JSON object that can be parsed independently.
package output

import (
	"encoding/json"
	"errors"
	"time"
)

// Record type constants define the envelope types for JSONL output.
// These follow the pattern: firespread.<type>.v<version>
const (
	// TypeSegment identifies completed-segment records.
	TypeSegment = "firespread.segment.v1"

	// TypeError identifies error records.
	TypeError = "firespread.error.v1"

	// TypeProgress identifies progress update records.
	TypeProgress = "firespread.progress.v1"

	// TypeSummary identifies final summary records.
	TypeSummary = "firespread.summary.v1"

	// TypePreflight identifies preflight check records.
	TypePreflight = "firespread.preflight.v1"
)

// Record is the envelope for all JSONL output.
//
// Each line of JSONL output contains a Record with a type-specific
// payload in the Data field.
type Record struct {
	// Type identifies the record type (e.g., "firespread.segment.v1").
	Type string `json:"type"`

	// TS is the timestamp when the record was created (RFC3339Nano).
	TS time.Time `json:"ts"`

	// RunID is the correlation ID for this simulation run.
	RunID string `json:"run_id"`

	// Engine identifies the compute backend (always "grass" today).
	Engine string `json:"engine"`

	// Data contains the type-specific payload as raw JSON.
	Data json.RawMessage `json:"data"`
}

// SegmentRecord is the data payload for one completed segment.
type SegmentRecord struct {
	// Index is the 0-based segment position in the plan.
	Index int `json:"index"`

	// Start and End delimit the segment in simulated minutes.
	Start int `json:"start"`
	End   int `json:"end"`

	// ParamIndex is the parameter-vector index that was in effect.
	ParamIndex int `json:"param_index"`

	// Seed is the start raster the segment was propagated from.
	Seed string `json:"seed"`

	// Output is the produced cumulative time-of-arrival raster.
	Output string `json:"output"`

	// Elapsed is the wall-clock time the segment took.
	Elapsed time.Duration `json:"elapsed_ns"`
}

// PreflightRecord is the data payload for pre-run checks.
//
// Preflight records are emitted before the first segment so a run that is
// going to fail on missing inputs fails before touching GRASS state.
type PreflightRecord struct {
	Mode    string                 `json:"mode"`
	Results []PreflightCheckResult `json:"results"`
}

// PreflightCheckResult is a single input check result.
type PreflightCheckResult struct {
	Raster string `json:"raster"`
	Role   string `json:"role"`
	Found  bool   `json:"found"`
	Detail string `json:"detail,omitempty"`
}

// ErrorRecord is the data payload for errors. The run aborts on the first
// error; the record identifies which segment and which external step
// failed so the abort is diagnosable from the JSONL stream alone.
type ErrorRecord struct {
	// Code is a machine-readable error code.
	Code string `json:"code"`

	// Message is a human-readable error description.
	Message string `json:"message"`

	// Segment is the 0-based segment index the error occurred in, or -1
	// when the error is not segment-specific.
	Segment int `json:"segment"`

	// Step names the external step that failed (e.g. "r.spread").
	Step string `json:"step,omitempty"`
}

// Error codes for ErrorRecord.
const (
	// ErrCodeConfig indicates a configuration mismatch caught before the run.
	ErrCodeConfig = "CONFIG"

	// ErrCodeModuleFailed indicates an external GRASS module returned failure.
	ErrCodeModuleFailed = "MODULE_FAILED"

	// ErrCodeInvariant indicates an internal plan invariant violation.
	ErrCodeInvariant = "INVARIANT"

	// ErrCodeCancelled indicates the run was cancelled between segments.
	ErrCodeCancelled = "CANCELLED"
)

// ProgressRecord is the data payload for progress updates, emitted after
// each segment when progress emission is enabled.
type ProgressRecord struct {
	// SegmentsDone is the number of segments completed so far.
	SegmentsDone int `json:"segments_done"`

	// SegmentsTotal is the number of segments in the plan.
	SegmentsTotal int `json:"segments_total"`

	// SimTime is the simulated time reached, in minutes.
	SimTime int `json:"sim_time"`

	// Output is the raster just produced.
	Output string `json:"output,omitempty"`
}

// SummaryRecord is the data payload for the final summary.
type SummaryRecord struct {
	// State is the terminal run state: "succeeded" or "aborted".
	State string `json:"state"`

	// SegmentsCompleted is the number of segments that finished.
	SegmentsCompleted int `json:"segments_completed"`

	// SegmentsTotal is the number of segments in the plan.
	SegmentsTotal int `json:"segments_total"`

	// Outputs lists the rasters produced, in order.
	Outputs []string `json:"outputs,omitempty"`

	// FinalOutput is the last produced raster, the run's answer.
	FinalOutput string `json:"final_output,omitempty"`

	// Duration is the total run duration.
	Duration time.Duration `json:"duration_ns"`

	// DurationHuman is a human-readable duration string.
	DurationHuman string `json:"duration"`
}

// Writer errors.
var (
	// ErrWriterClosed is returned when writing to a closed writer.
	ErrWriterClosed = errors.New("writer is closed")
)

// WriteError wraps errors that occur during write operations.
type WriteError struct {
	Op  string // Operation that failed (e.g., "marshal_data", "write")
	Err error  // Underlying error
}

func (e *WriteError) Error() string {
	return "output: " + e.Op + ": " + e.Err.Error()
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
