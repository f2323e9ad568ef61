package status

import (
	"testing"
	"time"

	"github.com/penguingram/messenger/internal/bus"
)

func TestInitialState(t *testing.T) {
	m := NewMachine(nil)
	if m.Current() != LoggedOut {
		t.Errorf("initial state = %s, want %s", m.Current(), LoggedOut)
	}
}

func TestValidTransitions(t *testing.T) {
	tests := []struct {
		name string
		path []State
	}{
		{"login", []State{Authenticating, Authenticated}},
		{"failed login", []State{Authenticating, LoggedOut}},
		{"restore", []State{Authenticated}},
		{"login then logout", []State{Authenticating, Authenticated, LoggedOut}},
		{"restore then logout then login", []State{Authenticated, LoggedOut, Authenticating, Authenticated}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine(nil)
			for _, s := range tt.path {
				if err := m.Transition(s); err != nil {
					t.Fatalf("Transition(%s) error = %v", s, err)
				}
			}
			if got, want := m.Current(), tt.path[len(tt.path)-1]; got != want {
				t.Errorf("final state = %s, want %s", got, want)
			}
		})
	}
}

func TestInvalidTransitions(t *testing.T) {
	tests := []struct {
		name  string
		setup []State
		to    State
	}{
		{"logged out to logged out", nil, LoggedOut},
		{"authenticated to authenticating", []State{Authenticated}, Authenticating},
		{"authenticated to authenticated", []State{Authenticated}, Authenticated},
		{"authenticating twice", []State{Authenticating}, Authenticating},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine(nil)
			for _, s := range tt.setup {
				if err := m.Transition(s); err != nil {
					t.Fatalf("setup Transition(%s) error = %v", s, err)
				}
			}
			before := m.Current()
			if err := m.Transition(tt.to); err == nil {
				t.Errorf("Transition(%s) from %s should fail", tt.to, before)
			}
			if m.Current() != before {
				t.Errorf("state changed to %s after rejected transition", m.Current())
			}
		})
	}
}

func TestTransitionPublishesEvent(t *testing.T) {
	b := bus.New()
	ch, unsub := b.Subscribe("session.", 10)
	defer unsub()

	m := NewMachine(b)
	if err := m.Transition(Authenticating); err != nil {
		t.Fatal(err)
	}

	select {
	case evt := <-ch:
		if evt.Kind != bus.SessionStateChanged {
			t.Fatalf("kind = %q, want %q", evt.Kind, bus.SessionStateChanged)
		}
		change, ok := evt.Payload.(StatusChange)
		if !ok {
			t.Fatalf("payload type = %T, want StatusChange", evt.Payload)
		}
		if change.From != LoggedOut || change.To != Authenticating {
			t.Errorf("change = %+v, want LoggedOut->Authenticating", change)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for state change event")
	}
}

func TestIs(t *testing.T) {
	m := NewMachine(nil)
	if !m.Is(LoggedOut) || m.Is(Authenticated) {
		t.Error("Is() disagrees with Current()")
	}
}
