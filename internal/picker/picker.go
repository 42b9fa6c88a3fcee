// Package picker is the interactive package chooser used by add and
// remove when no package is named on the command line.
package picker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	// ErrCanceled is returned when the user quits without choosing.
	ErrCanceled = errors.New("selection canceled")
	// ErrNoItems is returned when the loader produced nothing to choose.
	ErrNoItems = errors.New("nothing to choose from")
)

// --- Styles ---
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("78")).Bold(true)
	itemStyle    = lipgloss.NewStyle()
	faintStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("197"))
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
)

// defaultHeight is the number of items shown at once.
const defaultHeight = 10

// Item is one choice. Label is shown, Value is returned.
type Item struct {
	Label string
	Value string
}

// Loader produces the items to choose from. It runs once, off the UI loop.
type Loader func() ([]Item, error)

// --- Messages ---
type loadedMsg struct{ items []Item }

type errorMsg struct{ err error }

// --- Model ---
type state int

const (
	stateLoading state = iota
	stateChoosing
	stateDone
)

// Model is the bubbletea model behind Run.
type Model struct {
	title   string
	load    Loader
	spinner spinner.Model
	state   state

	items  []Item
	cursor int
	offset int
	height int

	chosen   *Item
	canceled bool
	err      error
}

// New creates a picker that loads its items with load.
func New(title string, load Loader) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle
	return Model{
		title:   title,
		load:    load,
		spinner: s,
		state:   stateLoading,
		height:  defaultHeight,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.runLoader)
}

func (m Model) runLoader() tea.Msg {
	items, err := m.load()
	if err != nil {
		return errorMsg{err}
	}
	return loadedMsg{items}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case loadedMsg:
		if len(msg.items) == 0 {
			m.state = stateDone
			m.err = ErrNoItems
			return m, tea.Quit
		}
		m.items = msg.items
		m.state = stateChoosing
		return m, nil

	case errorMsg:
		m.state = stateDone
		m.err = msg.err
		return m, tea.Quit

	case tea.WindowSizeMsg:
		// title, footer and a blank line
		if h := msg.Height - 3; h > 0 && h < defaultHeight {
			m.height = h
		} else {
			m.height = defaultHeight
		}
		m.clampOffset()
		return m, nil

	default:
		var cmd tea.Cmd
		if m.state == stateLoading {
			m.spinner, cmd = m.spinner.Update(msg)
		}
		return m, cmd
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc", "q":
		m.state = stateDone
		m.canceled = true
		return m, tea.Quit
	}
	if m.state != stateChoosing {
		return m, nil
	}

	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = len(m.items) - 1
	case "enter":
		item := m.items[m.cursor]
		m.chosen = &item
		m.state = stateDone
		return m, tea.Quit
	}
	m.clampOffset()
	return m, nil
}

// clampOffset scrolls the window so the cursor stays visible.
func (m *Model) clampOffset() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

func (m Model) View() string {
	switch m.state {
	case stateLoading:
		return fmt.Sprintf("%s %s\n", m.spinner.View(), faintStyle.Render("Searching..."))
	case stateDone:
		if m.err != nil && !errors.Is(m.err, ErrNoItems) {
			return errorStyle.Render("Error: "+m.err.Error()) + "\n"
		}
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")

	end := min(m.offset+m.height, len(m.items))
	for i := m.offset; i < end; i++ {
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> " + m.items[i].Label))
		} else {
			b.WriteString(itemStyle.Render("  " + m.items[i].Label))
		}
		b.WriteString("\n")
	}

	b.WriteString(faintStyle.Render(fmt.Sprintf("%d/%d  ↑/k ↓/j move • enter select • q quit", m.cursor+1, len(m.items))))
	b.WriteString("\n")
	return b.String()
}

// Result reports the outcome of a finished model.
func (m Model) Result() (Item, error) {
	switch {
	case m.err != nil:
		return Item{}, m.err
	case m.canceled || m.chosen == nil:
		return Item{}, ErrCanceled
	default:
		return *m.chosen, nil
	}
}

// Run shows the picker and blocks until the user chooses or cancels.
func Run(ctx context.Context, title string, load Loader, opts ...tea.ProgramOption) (Item, error) {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	final, err := tea.NewProgram(New(title, load), opts...).Run()
	if err != nil {
		return Item{}, fmt.Errorf("picker: %w", err)
	}
	m, ok := final.(Model)
	if !ok {
		return Item{}, fmt.Errorf("picker: unexpected model %T", final)
	}
	return m.Result()
}
