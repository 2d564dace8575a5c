package simulate

// State is the run state machine. A run starts Running and terminates in
// exactly one of Succeeded or Aborted; there is no paused or retrying
// state by design.
type State int

const (
	// Running is the in-progress state.
	Running State = iota

	// Succeeded means every segment completed.
	Succeeded

	// Aborted means a step failed and all remaining segments were skipped.
	Aborted
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Aborted:
		return "aborted"
	}
	return "unknown"
}
