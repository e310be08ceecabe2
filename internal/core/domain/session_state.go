package domain

// SessionState is the lifecycle state of the client session.
type SessionState string

const (
	StateUnauthenticated SessionState = "unauthenticated"
	StateAuthenticated   SessionState = "authenticated"
	StateJoined          SessionState = "joined"
)

// validTransitions defines the allowed session state machine transitions.
// Logout is additionally allowed from any state, including itself.
var validTransitions = map[SessionState][]SessionState{
	StateUnauthenticated: {StateAuthenticated},
	StateAuthenticated:   {StateJoined, StateUnauthenticated},
	StateJoined:          {StateAuthenticated, StateUnauthenticated},
}

// CanTransitionTo reports whether moving from the current state to next is valid.
func (s SessionState) CanTransitionTo(next SessionState) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
