package prompt

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// confirm is a yes/no question. Enter answers no.
type confirm struct {
	question  string
	answer    bool
	cancelled bool
}

func (m *confirm) Init() tea.Cmd {
	return nil
}

func (m *confirm) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case "y", "Y":
		m.answer = true
		return m, tea.Quit
	case "n", "N", "enter":
		m.answer = false
		return m, tea.Quit
	case "esc", "ctrl+c":
		m.cancelled = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *confirm) View() string {
	return titleStyle.Render(m.question) + " " + hintStyle.Render("[y/N]") + "\n"
}

// input edits a single line, prefilled with the current value.
type input struct {
	label     string
	original  string
	field     textinput.Model
	cancelled bool
}

func newInput(label, value string) *input {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 60
	ti.SetValue(value)
	ti.Focus()
	return &input{label: label, original: value, field: ti}
}

func (m *input) Init() tea.Cmd {
	return textinput.Blink
}

func (m *input) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			return m, tea.Quit
		case "esc", "ctrl+c":
			m.cancelled = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.field, cmd = m.field.Update(msg)
	return m, cmd
}

// result is the edited value, or the original one when the field was
// cleared.
func (m *input) result() string {
	v := strings.TrimSpace(m.field.Value())
	if v == "" {
		return m.original
	}
	return v
}

func (m *input) View() string {
	return titleStyle.Render(m.label) + "\n" + m.field.View() + "\n" +
		hintStyle.Render("Enter: confirm, Esc: cancel") + "\n"
}
