package runlog

import "time"

// RunState is the lifecycle state of a registered run.
//
// NOTE: These values are persisted in run.json and are part of the stable
// on-disk contract.
type RunState string

const (
	RunStatePending   RunState = "pending"
	RunStateRunning   RunState = "running"
	RunStateSucceeded RunState = "succeeded"
	RunStateAborted   RunState = "aborted"
	RunStateUnknown   RunState = "unknown"
)

// RunRecord is the persistent record written to run.json.
//
// The schema is designed for backward-compatible extension (additive fields).
type RunRecord struct {
	RunID        string   `json:"run_id"`
	Name         string   `json:"name,omitempty"`
	State        RunState `json:"state"`
	ScenarioPath string   `json:"scenario_path"`

	// Basename and the segment counters mirror the run's summary so the
	// registry can answer "how far did it get" without parsing JSONL.
	Basename          string `json:"basename,omitempty"`
	FinalOutput       string `json:"final_output,omitempty"`
	SegmentsCompleted int    `json:"segments_completed,omitempty"`
	SegmentsTotal     int    `json:"segments_total,omitempty"`

	PID       int       `json:"pid,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	StartedAt     *time.Time `json:"started_at,omitempty"`
	EndedAt       *time.Time `json:"ended_at,omitempty"`
	LastHeartbeat *time.Time `json:"last_heartbeat,omitempty"`

	// RecordsPath is the JSONL stream of the run; StderrPath captures the
	// child's stderr for detached runs.
	RecordsPath string `json:"records_path,omitempty"`
	StderrPath  string `json:"stderr_path,omitempty"`
}

// Terminal reports whether the state can no longer change.
func (s RunState) Terminal() bool {
	return s == RunStateSucceeded || s == RunStateAborted
}
