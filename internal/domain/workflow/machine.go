package workflow

import "fmt"

// Machine tracks the current state of one approval request and validates
// transitions against the static transition table.
type Machine struct {
	current State
}

// NewMachine creates a machine positioned at the given state. It fails if the
// state is not a member of the closed state set (e.g. a corrupted row).
func NewMachine(current State) (*Machine, error) {
	if !current.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidState, current)
	}
	return &Machine{current: current}, nil
}

// State returns the current state
func (m *Machine) State() State {
	return m.current
}

// CanApply returns true if the action is permitted in the current state
func (m *Machine) CanApply(action Action) bool {
	return Allows(m.current, action)
}

// Apply fires the action, advancing to the target state if the transition table
// allows it
func (m *Machine) Apply(action Action) error {
	target, err := Target(m.current, action)
	if err != nil {
		return err
	}
	m.current = target
	return nil
}

// PermittedActions returns all actions that may fire from the current state
func (m *Machine) PermittedActions() []Action {
	var actions []Action
	for action := range transitionTable {
		if Allows(m.current, action) {
			actions = append(actions, action)
		}
	}
	return actions
}
