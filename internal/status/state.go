package status

import (
	"fmt"
	"slices"
	"sync"

	"github.com/penguingram/messenger/internal/bus"
)

// State is the coarse authentication state of the client.
type State string

const (
	LoggedOut      State = "LOGGED_OUT"
	Authenticating State = "AUTHENTICATING"
	Authenticated  State = "AUTHENTICATED"
)

// validTransitions lists the states reachable from each state.
// LoggedOut goes straight to Authenticated when a stored session is restored.
var validTransitions = map[State][]State{
	LoggedOut:      {Authenticating, Authenticated},
	Authenticating: {Authenticated, LoggedOut},
	Authenticated:  {LoggedOut},
}

// Machine tracks and enforces authentication state transitions.
type Machine struct {
	mu      sync.RWMutex
	current State
	bus     *bus.Bus
}

// NewMachine creates a machine in the LoggedOut state.
func NewMachine(b *bus.Bus) *Machine {
	return &Machine{
		current: LoggedOut,
		bus:     b,
	}
}

// Current returns the current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Is reports whether the machine is in state s.
func (m *Machine) Is(s State) bool {
	return m.Current() == s
}

// Transition moves to a new state or returns an error if the move is not allowed.
func (m *Machine) Transition(to State) error {
	m.mu.Lock()
	from := m.current
	if !slices.Contains(validTransitions[from], to) {
		m.mu.Unlock()
		return fmt.Errorf("invalid transition from %s to %s", from, to)
	}
	m.current = to
	m.mu.Unlock()

	if m.bus != nil {
		m.bus.Emit(bus.SessionStateChanged, StatusChange{From: from, To: to})
	}
	return nil
}

// StatusChange is the payload of session.state_changed events.
type StatusChange struct {
	From State
	To   State
}
