package pipeline

import "fmt"

// State is the position of a run in its plan.
type State int

const (
	Pending State = iota
	Cleaned
	Compiled
	Discovered
	Classified
	Resolved
	Staged
	Transferred
	Failed
	Interrupted
)

var stateNames = [...]string{
	Pending:     "pending",
	Cleaned:     "cleaned",
	Compiled:    "compiled",
	Discovered:  "discovered",
	Classified:  "classified",
	Resolved:    "resolved",
	Staged:      "staged",
	Transferred: "transferred",
	Failed:      "failed",
	Interrupted: "interrupted",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// IsTerminal reports whether the run can no longer move.
func (s State) IsTerminal() bool {
	return s == Failed || s == Interrupted
}

// machine tracks a run against its plan. A run may only move to the next
// state of its plan, to Failed, or to Interrupted.
type machine struct {
	plan    []State
	pos     int
	current State
}

func newMachine(plan []State) *machine {
	return &machine{plan: plan, current: plan[0]}
}

func (m *machine) State() State {
	return m.current
}

// Next returns the successor in the plan, or false when the plan is complete.
func (m *machine) Next() (State, bool) {
	if m.current.IsTerminal() || m.pos+1 >= len(m.plan) {
		return 0, false
	}
	return m.plan[m.pos+1], true
}

// Transition validates and performs from -> to.
func (m *machine) Transition(from, to State) error {
	if m.current != from {
		return fmt.Errorf("invalid transition: expected %s, got %s", from, m.current)
	}
	if m.current.IsTerminal() {
		return fmt.Errorf("disallowed transition: %s is terminal", m.current)
	}
	if to.IsTerminal() {
		m.current = to
		return nil
	}
	next, ok := m.Next()
	if !ok || next != to {
		return fmt.Errorf("disallowed transition: %s -> %s", from, to)
	}
	m.pos++
	m.current = to
	return nil
}
