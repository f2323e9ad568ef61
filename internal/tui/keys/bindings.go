package keys

import "github.com/gdamore/tcell/v2"

// Action is a keybinding.
type Action struct {
	Key         tcell.Key
	Rune        rune
	Description string
	Handler     func()
}

// Matches reports whether ev triggers the action.
func (a *Action) Matches(ev *tcell.EventKey) bool {
	if a.Key != tcell.KeyRune {
		return ev.Key() == a.Key
	}
	return ev.Key() == tcell.KeyRune && ev.Rune() == a.Rune
}

// Registry holds keybindings by scope, in registration order.
type Registry struct {
	global []*Action
	views  map[string][]*Action
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{views: make(map[string][]*Action)}
}

// AddGlobal registers a binding active on every page.
func (r *Registry) AddGlobal(a *Action) {
	r.global = append(r.global, a)
}

// AddView registers a binding active on one page.
func (r *Registry) AddView(view string, a *Action) {
	r.views[view] = append(r.views[view], a)
}

// HandleEvent runs the first binding of view, then of the global scope,
// matching ev. Returns true if a handler ran.
func (r *Registry) HandleEvent(view string, ev *tcell.EventKey) bool {
	for _, scope := range [][]*Action{r.views[view], r.global} {
		for _, a := range scope {
			if a.Matches(ev) {
				a.Handler()
				return true
			}
		}
	}
	return false
}
