package picker

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		if !ok {
			t.Fatalf("Update() returned %T, want Model", next)
		}
	}
	return m
}

func items(names ...string) []Item {
	out := make([]Item, len(names))
	for i, n := range names {
		out[i] = Item{Label: n + " 1.0: test package", Value: n}
	}
	return out
}

func TestModelSelect(t *testing.T) {
	tests := []struct {
		name string
		keys []tea.Msg
		want string
	}{
		{name: "first", keys: []tea.Msg{tea.KeyMsg{Type: tea.KeyEnter}}, want: "git"},
		{name: "down", keys: []tea.Msg{tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter}}, want: "vim"},
		{name: "j twice", keys: []tea.Msg{runes("j"), runes("j"), tea.KeyMsg{Type: tea.KeyEnter}}, want: "htop"},
		{name: "past end", keys: []tea.Msg{runes("j"), runes("j"), runes("j"), tea.KeyMsg{Type: tea.KeyEnter}}, want: "htop"},
		{name: "back up", keys: []tea.Msg{runes("j"), runes("k"), runes("k"), tea.KeyMsg{Type: tea.KeyEnter}}, want: "git"},
		{name: "end", keys: []tea.Msg{runes("G"), tea.KeyMsg{Type: tea.KeyEnter}}, want: "htop"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New("Select a package:", nil)
			m = update(t, m, loadedMsg{items("git", "vim", "htop")})
			m = update(t, m, tt.keys...)

			got, err := m.Result()
			if err != nil {
				t.Fatalf("Result() error = %v", err)
			}
			if got.Value != tt.want {
				t.Errorf("Result() = %q, want %q", got.Value, tt.want)
			}
		})
	}
}

func TestModelCancel(t *testing.T) {
	for _, key := range []tea.Msg{runes("q"), tea.KeyMsg{Type: tea.KeyEsc}, tea.KeyMsg{Type: tea.KeyCtrlC}} {
		m := New("Select a package:", nil)
		m = update(t, m, loadedMsg{items("git")}, key)

		if _, err := m.Result(); !errors.Is(err, ErrCanceled) {
			t.Errorf("Result() after %v error = %v, want ErrCanceled", key, err)
		}
	}
}

func TestModelCancelWhileLoading(t *testing.T) {
	m := update(t, New("Select a package:", nil), tea.KeyMsg{Type: tea.KeyCtrlC})
	if _, err := m.Result(); !errors.Is(err, ErrCanceled) {
		t.Errorf("Result() error = %v, want ErrCanceled", err)
	}
}

func TestModelLoaderResults(t *testing.T) {
	failure := errors.New("nix search failed")

	m := update(t, New("t", nil), errorMsg{failure})
	if _, err := m.Result(); !errors.Is(err, failure) {
		t.Errorf("Result() error = %v, want %v", err, failure)
	}

	m = update(t, New("t", nil), loadedMsg{nil})
	if _, err := m.Result(); !errors.Is(err, ErrNoItems) {
		t.Errorf("Result() error = %v, want ErrNoItems", err)
	}
}

func TestModelRunLoader(t *testing.T) {
	m := New("t", func() ([]Item, error) { return items("git"), nil })
	msg, ok := m.runLoader().(loadedMsg)
	if !ok || len(msg.items) != 1 {
		t.Fatalf("runLoader() = %#v", msg)
	}
}

func TestModelScrolls(t *testing.T) {
	names := make([]string, 25)
	for i := range names {
		names[i] = string(rune('a' + i))
	}
	m := update(t, New("t", nil), loadedMsg{items(names...)})
	for i := 0; i < 15; i++ {
		m = update(t, m, runes("j"))
	}

	if m.offset != 15-defaultHeight+1 {
		t.Errorf("offset = %d, want %d", m.offset, 15-defaultHeight+1)
	}
	view := m.View()
	if !strings.Contains(view, "> p 1.0") {
		t.Errorf("View() does not mark the cursor item:\n%s", view)
	}
	if strings.Contains(view, " a 1.0") {
		t.Errorf("View() still shows scrolled-out item:\n%s", view)
	}
}
