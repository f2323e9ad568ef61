package keys

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestRegistryDispatch(t *testing.T) {
	r := NewRegistry()
	var got []string
	r.AddGlobal(&Action{Key: tcell.KeyRune, Rune: '?', Description: "Help", Handler: func() { got = append(got, "help") }})
	r.AddGlobal(&Action{Key: tcell.KeyRune, Rune: 'r', Handler: func() { got = append(got, "global-r") }})
	r.AddView("thread", &Action{Key: tcell.KeyRune, Rune: 'r', Description: "Record", Handler: func() { got = append(got, "record") }})
	r.AddView("thread", &Action{Key: tcell.KeyCtrlR, Handler: func() { got = append(got, "ctrl-r") }})

	r.HandleEvent("thread", tcell.NewEventKey(tcell.KeyRune, 'r', tcell.ModNone))
	r.HandleEvent("chats", tcell.NewEventKey(tcell.KeyRune, 'r', tcell.ModNone))
	r.HandleEvent("thread", tcell.NewEventKey(tcell.KeyCtrlR, 0, tcell.ModCtrl))
	r.HandleEvent("chats", tcell.NewEventKey(tcell.KeyRune, '?', tcell.ModNone))
	if r.HandleEvent("chats", tcell.NewEventKey(tcell.KeyRune, 'z', tcell.ModNone)) {
		t.Error("unbound key handled")
	}

	want := []string{"record", "global-r", "ctrl-r", "help"}
	if len(got) != len(want) {
		t.Fatalf("handled %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("handled[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
