package workflow

// Rule describes one legal transition: the closed set of source states an action
// accepts and the single target state it produces. Decision marks transitions
// that stamp decided_by/decided_at on the request.
type Rule struct {
	Sources  []State
	Target   State
	Decision bool
}

// transitionTable is the single source of truth for legal transitions. Any
// (state, action) pair not derivable from it is rejected, regardless of the
// actor's authorization.
var transitionTable = map[Action]Rule{
	ActionSubmit: {
		Sources: []State{StateDraft},
		Target:  StateSubmitted,
	},
	ActionStartReview: {
		Sources: []State{StateSubmitted},
		Target:  StateUnderReview,
	},
	ActionApprove: {
		Sources:  []State{StateUnderReview},
		Target:   StateApproved,
		Decision: true,
	},
	ActionReject: {
		Sources:  []State{StateSubmitted, StateUnderReview},
		Target:   StateRejected,
		Decision: true,
	},
	ActionRequestDocuments: {
		Sources: []State{StateSubmitted, StateUnderReview},
		Target:  StatePendingDocuments,
	},
	ActionResubmit: {
		Sources: []State{StatePendingDocuments},
		Target:  StateSubmitted,
	},
	ActionFastTrackApprove: {
		Sources:  []State{StateDraft, StateSubmitted},
		Target:   StateApprovedPrelim,
		Decision: true,
	},
	ActionCancel: {
		Sources:  NonTerminalStates(),
		Target:   StateCancelled,
		Decision: true,
	},
	ActionRevoke: {
		Sources:  []State{StateApproved, StateApprovedPrelim},
		Target:   StateRevoked,
		Decision: true,
	},
	ActionConfirmFastTrack: {
		Sources:  []State{StateApprovedPrelim},
		Target:   StateApproved,
		Decision: true,
	},
	ActionExpire: {
		Sources: []State{StateSubmitted, StateUnderReview, StatePendingDocuments},
		Target:  StateExpired,
	},
}

// RuleFor returns the transition rule for an action
func RuleFor(action Action) (Rule, bool) {
	rule, ok := transitionTable[action]
	return rule, ok
}

// Allows reports whether the action may fire from the given state
func Allows(from State, action Action) bool {
	rule, ok := transitionTable[action]
	if !ok {
		return false
	}
	for _, s := range rule.Sources {
		if s == from {
			return true
		}
	}
	return false
}

// Target resolves the target state for firing action from the given state.
// It fails with ErrInvalidTransition for any pair not in the table.
func Target(from State, action Action) (State, error) {
	rule, ok := transitionTable[action]
	if !ok {
		return "", NewInvalidTransition(action, from, nil)
	}
	if !Allows(from, action) {
		return "", NewInvalidTransition(action, from, rule.Sources)
	}
	return rule.Target, nil
}

// AllowedSources returns the permitted source states for an action
func AllowedSources(action Action) []State {
	rule, ok := transitionTable[action]
	if !ok {
		return nil
	}
	return append([]State{}, rule.Sources...)
}
