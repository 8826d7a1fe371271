// Package prompt provides the small interactive dialogs used by commands:
// paginated pickers, yes/no confirmation and single-line input.
package prompt

import (
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/crate/internal/errmsg"
)

// ErrCancelled is returned when the user leaves a dialog with Esc or Ctrl+C.
var ErrCancelled = errors.New("cancelled")

// DefaultPageSize is the number of items shown per page by pickers.
const DefaultPageSize = 20

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	itemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	markedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("114"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// UI is what interactive commands need from the terminal.
type UI interface {
	// Choose returns the index of one label.
	Choose(title string, labels []string) (int, error)
	// ChooseMany returns the indexes of the marked labels in the order they
	// were marked.
	ChooseMany(title string, labels []string) ([]int, error)
	Confirm(question string) (bool, error)
	// Input edits value. An empty answer keeps value.
	Input(label, value string) (string, error)
}

// Prompter runs dialogs as Bubble Tea programs.
type Prompter struct {
	In       io.Reader
	Out      io.Writer
	PageSize int
}

var _ UI = (*Prompter)(nil)

// New returns a Prompter on the process terminal.
func New(pageSize int) *Prompter {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Prompter{In: os.Stdin, Out: os.Stderr, PageSize: pageSize}
}

func (p *Prompter) run(m tea.Model) (tea.Model, error) {
	final, err := tea.NewProgram(m, tea.WithInput(p.In), tea.WithOutput(p.Out)).Run()
	if err != nil {
		return nil, fmt.Errorf("run prompt: %w", err)
	}
	return final, nil
}

// Choose implements UI.
func (p *Prompter) Choose(title string, labels []string) (int, error) {
	if len(labels) == 0 {
		return 0, errmsg.Reportable("Nothing to choose from")
	}
	final, err := p.run(newChooser(title, labels, p.PageSize, false))
	if err != nil {
		return 0, err
	}
	c := final.(*chooser)
	if c.cancelled {
		return 0, ErrCancelled
	}
	return c.marked[0], nil
}

// ChooseMany implements UI.
func (p *Prompter) ChooseMany(title string, labels []string) ([]int, error) {
	if len(labels) == 0 {
		return nil, errmsg.Reportable("Nothing to choose from")
	}
	final, err := p.run(newChooser(title, labels, p.PageSize, true))
	if err != nil {
		return nil, err
	}
	c := final.(*chooser)
	if c.cancelled {
		return nil, ErrCancelled
	}
	return c.marked, nil
}

// Confirm implements UI.
func (p *Prompter) Confirm(question string) (bool, error) {
	final, err := p.run(&confirm{question: question})
	if err != nil {
		return false, err
	}
	c := final.(*confirm)
	if c.cancelled {
		return false, ErrCancelled
	}
	return c.answer, nil
}

// Input implements UI.
func (p *Prompter) Input(label, value string) (string, error) {
	final, err := p.run(newInput(label, value))
	if err != nil {
		return "", err
	}
	in := final.(*input)
	if in.cancelled {
		return "", ErrCancelled
	}
	return in.result(), nil
}

// ChooseOne picks one item. label renders an item and defaults to fmt.Sprint.
func ChooseOne[T any](ui UI, title string, items []T, label func(T) string) (T, error) {
	var zero T
	i, err := ui.Choose(title, labels(items, label))
	if err != nil {
		return zero, err
	}
	return items[i], nil
}

// ChooseSome picks items in selection order; the first one chosen comes
// first.
func ChooseSome[T any](ui UI, title string, items []T, label func(T) string) ([]T, error) {
	idx, err := ui.ChooseMany(title, labels(items, label))
	if err != nil {
		return nil, err
	}
	out := make([]T, len(idx))
	for i, j := range idx {
		out[i] = items[j]
	}
	return out, nil
}

func labels[T any](items []T, label func(T) string) []string {
	out := make([]string, len(items))
	for i, item := range items {
		if label != nil {
			out[i] = label(item)
		} else {
			out[i] = fmt.Sprint(item)
		}
	}
	return out
}
