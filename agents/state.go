package agents

// ExecutionState tracks one engine through a single request. The engine
// returns to StateIdle after every request, whether it ended Done or Failed.
type ExecutionState int

const (
	StateIdle ExecutionState = iota
	StatePlanning
	StateExecuting
	StateDone
	StateFailed
)

func (s ExecutionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlanning:
		return "planning"
	case StateExecuting:
		return "executing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
