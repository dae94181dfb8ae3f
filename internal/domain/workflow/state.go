package workflow

// State represents a workflow state in the approval-request lifecycle
type State string

const (
	StateDraft            State = "DRAFT"
	StateSubmitted        State = "SUBMITTED"
	StateUnderReview      State = "UNDER_REVIEW"
	StatePendingDocuments State = "PENDING_DOCUMENTS"
	StateApprovedPrelim   State = "APPROVED_PRELIM"
	StateApproved         State = "APPROVED"
	StateRejected         State = "REJECTED"
	StateCancelled        State = "CANCELLED"
	StateRevoked          State = "REVOKED"
	StateExpired          State = "EXPIRED"
)

var validStates = map[State]bool{
	StateDraft:            true,
	StateSubmitted:        true,
	StateUnderReview:      true,
	StatePendingDocuments: true,
	StateApprovedPrelim:   true,
	StateApproved:         true,
	StateRejected:         true,
	StateCancelled:        true,
	StateRevoked:          true,
	StateExpired:          true,
}

// terminalStates end the request lifecycle. The only transitions out of them are
// the admin escapes already in the transition table (Revoke from APPROVED).
// APPROVED_PRELIM is deliberately not terminal: it is a provisional approval
// awaiting confirmation.
var terminalStates = map[State]bool{
	StateApproved:  true,
	StateRejected:  true,
	StateCancelled: true,
	StateRevoked:   true,
	StateExpired:   true,
}

// NonTerminalStates returns the set of states in which a request still occupies
// its (case, benefit) slot. The duplicate guard queries against exactly this set.
func NonTerminalStates() []State {
	return []State{
		StateDraft,
		StateSubmitted,
		StateUnderReview,
		StatePendingDocuments,
		StateApprovedPrelim,
	}
}

// IsTerminal returns true if the state is a terminal state (no further transitions allowed)
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// IsValid returns true if the state is a valid workflow state
func (s State) IsValid() bool {
	return validStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}
