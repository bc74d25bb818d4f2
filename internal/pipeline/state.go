package pipeline

// State is the per-model position in the training state machine.
type State int

const (
	StatePending State = iota
	StateFitting
	StateEvaluating
	StateTrackingAttempted
	StateTracked
	StateFallbackFitting
	StateFallbackEvaluated
	StateFallbackPersisted
	StateDoneSuccess
	StateDoneFailure
)

// String returns string representation of the state.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateFitting:
		return "fitting"
	case StateEvaluating:
		return "evaluating"
	case StateTrackingAttempted:
		return "tracking_attempted"
	case StateTracked:
		return "tracked"
	case StateFallbackFitting:
		return "fallback_fitting"
	case StateFallbackEvaluated:
		return "fallback_evaluated"
	case StateFallbackPersisted:
		return "fallback_persisted"
	case StateDoneSuccess:
		return "done_success"
	case StateDoneFailure:
		return "done_failure"
	default:
		return "unknown"
	}
}
