package workflow

import "testing"

func TestState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StateDraft, false},
		{StateSubmitted, false},
		{StateUnderReview, false},
		{StatePendingDocuments, false},
		{StateApprovedPrelim, false},
		{StateApproved, true},
		{StateRejected, true},
		{StateCancelled, true},
		{StateRevoked, true},
		{StateExpired, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsTerminal(); got != tt.expected {
				t.Errorf("State.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected bool
	}{
		{"valid state", StateDraft, true},
		{"valid state", StateExpired, true},
		{"invalid state", State("INVALID"), false},
		{"empty state", State(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.expected {
				t.Errorf("State.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_String(t *testing.T) {
	state := StateUnderReview
	if got := state.String(); got != "UNDER_REVIEW" {
		t.Errorf("State.String() = %v, want %v", got, "UNDER_REVIEW")
	}
}

func TestAction_String(t *testing.T) {
	action := ActionFastTrackApprove
	if got := action.String(); got != "FAST_TRACK_APPROVE" {
		t.Errorf("Action.String() = %v, want %v", got, "FAST_TRACK_APPROVE")
	}
}

func TestNonTerminalStates(t *testing.T) {
	states := NonTerminalStates()

	if len(states) != 5 {
		t.Fatalf("NonTerminalStates() returned %d states, want 5", len(states))
	}

	for _, s := range states {
		if s.IsTerminal() {
			t.Errorf("NonTerminalStates() contains terminal state %s", s)
		}
		if !s.IsValid() {
			t.Errorf("NonTerminalStates() contains invalid state %s", s)
		}
	}
}
