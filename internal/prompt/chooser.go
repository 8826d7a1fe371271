package prompt

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/paginator"
	tea "github.com/charmbracelet/bubbletea"
)

// chooser is a paginated list. In multi mode, space marks items and enter
// accepts the marks; otherwise enter picks the item under the cursor.
type chooser struct {
	title     string
	labels    []string
	multi     bool
	pager     paginator.Model
	cursor    int // index within the current page
	marked    []int
	cancelled bool
}

func newChooser(title string, labels []string, pageSize int, multi bool) *chooser {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	p := paginator.New()
	p.Type = paginator.Arabic
	p.PerPage = pageSize
	p.SetTotalPages(len(labels))
	return &chooser{title: title, labels: labels, multi: multi, pager: p}
}

func (m *chooser) Init() tea.Cmd {
	return nil
}

// current is the index of the item under the cursor.
func (m *chooser) current() int {
	return m.pager.Page*m.pager.PerPage + m.cursor
}

func (m *chooser) pageLen() int {
	start, end := m.pager.GetSliceBounds(len(m.labels))
	return end - start
}

func (m *chooser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc", "ctrl+c", "q":
		m.cancelled = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j":
		if m.cursor < m.pageLen()-1 {
			m.cursor++
		}
		return m, nil
	case " ":
		if m.multi {
			m.toggle(m.current())
		}
		return m, nil
	case "enter":
		if !m.multi || len(m.marked) == 0 {
			m.marked = []int{m.current()}
		}
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.pager, cmd = m.pager.Update(msg)
	m.cursor = min(m.cursor, m.pageLen()-1)
	return m, cmd
}

func (m *chooser) toggle(i int) {
	if pos := slices.Index(m.marked, i); pos >= 0 {
		m.marked = slices.Delete(m.marked, pos, pos+1)
		return
	}
	m.marked = append(m.marked, i)
}

func (m *chooser) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")

	start, end := m.pager.GetSliceBounds(len(m.labels))
	for i := start; i < end; i++ {
		prefix := "  "
		style := itemStyle
		if i-start == m.cursor {
			prefix = "> "
			style = cursorStyle
		}
		if m.multi {
			if pos := slices.Index(m.marked, i); pos >= 0 {
				prefix += "[x] "
				style = markedStyle
			} else {
				prefix += "[ ] "
			}
		}
		b.WriteString(style.Render(prefix + m.labels[i]))
		b.WriteByte('\n')
	}

	if m.pager.TotalPages > 1 {
		b.WriteString("\n  " + m.pager.View() + "\n")
	}

	hint := "↑/↓: move, ←/→: page, Enter: select, Esc: cancel"
	if m.multi {
		hint = "↑/↓: move, ←/→: page, Space: mark, Enter: accept, Esc: cancel"
	}
	b.WriteString("\n" + hintStyle.Render(hint) + "\n")
	return b.String()
}
