package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wippyai/nichefmt"
)

// chromeLines is the title, blank and help lines around the value list.
const chromeLines = 4

type row struct {
	entry    entry
	depth    int
	expanded bool
	// more is a placeholder for children cut off by max_children.
	more bool
}

type interactiveModel struct {
	in       *inspector
	title    string
	roots    []entry
	rows     []row
	filter   textinput.Model
	selected int
	offset   int
	height   int
	state    modelState
}

type modelState int

const (
	stateBrowse modelState = iota
	stateFilter
)

func newInteractiveModel(in *inspector, values []nichefmt.Value, title string) *interactiveModel {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "value name"
	ti.Width = 40

	m := &interactiveModel{in: in, title: title, filter: ti, height: 20, state: stateBrowse}
	for _, v := range values {
		m.roots = append(m.roots, in.entry(v))
	}
	m.applyFilter()
	return m
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-chromeLines, 1)
		m.scroll()
		return m, nil

	case tea.KeyMsg:
		if m.state == stateFilter {
			return m.updateFilter(msg)
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.selected < len(m.rows)-1 {
				m.selected++
			}

		case "home", "g":
			m.selected = 0

		case "end", "G":
			m.selected = max(len(m.rows)-1, 0)

		case "enter", " ":
			m.toggle()

		case "right", "l":
			if len(m.rows) > 0 && !m.rows[m.selected].expanded {
				m.toggle()
			}

		case "left", "h":
			m.collapseOrParent()

		case "/":
			m.state = stateFilter
			m.filter.Focus()
			return m, textinput.Blink
		}
		m.scroll()
	}

	return m, nil
}

func (m *interactiveModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.filter.SetValue("")
		m.applyFilter()
		fallthrough
	case "enter":
		m.state = stateBrowse
		m.filter.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

// applyFilter rebuilds the list from the roots whose name contains the
// filter text. Expanded state is dropped.
func (m *interactiveModel) applyFilter() {
	q := strings.ToLower(m.filter.Value())
	m.rows = m.rows[:0]
	for _, e := range m.roots {
		if q == "" || strings.Contains(strings.ToLower(e.name), q) {
			m.rows = append(m.rows, row{entry: e})
		}
	}
	m.selected, m.offset = 0, 0
}

func (m *interactiveModel) toggle() {
	if len(m.rows) == 0 {
		return
	}
	r := &m.rows[m.selected]
	if r.more || !r.entry.expandable(m.in) {
		return
	}
	if r.expanded {
		m.collapse(m.selected)
		return
	}

	children, omitted := m.in.expand(r.entry.value, m.in.maxChildren)
	added := make([]row, 0, len(children)+1)
	for _, c := range children {
		added = append(added, row{entry: c, depth: r.depth + 1})
	}
	if omitted != 0 {
		more := "more"
		if omitted > 0 {
			more = fmt.Sprintf("%d more", omitted)
		}
		added = append(added, row{entry: entry{name: "...", summary: more}, depth: r.depth + 1, more: true})
	}
	r.expanded = true

	tail := append(added, m.rows[m.selected+1:]...)
	m.rows = append(m.rows[:m.selected+1], tail...)
}

func (m *interactiveModel) collapse(i int) {
	depth := m.rows[i].depth
	end := i + 1
	for end < len(m.rows) && m.rows[end].depth > depth {
		end++
	}
	m.rows = append(m.rows[:i+1], m.rows[end:]...)
	m.rows[i].expanded = false
}

func (m *interactiveModel) collapseOrParent() {
	if len(m.rows) == 0 {
		return
	}
	if m.rows[m.selected].expanded {
		m.collapse(m.selected)
		return
	}
	depth := m.rows[m.selected].depth
	for i := m.selected - 1; i >= 0; i-- {
		if m.rows[i].depth < depth {
			m.selected = i
			return
		}
	}
}

// scroll keeps the selection inside the visible window.
func (m *interactiveModel) scroll() {
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+m.height {
		m.offset = m.selected - m.height + 1
	}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("nichefmt"))
	b.WriteString(" ")
	b.WriteString(m.title)
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString(errorStyle.Render("No values match."))
		b.WriteString("\n")
	}

	pal := palette{
		name:    nameStyle.Render,
		typ:     typeStyle.Render,
		summary: summaryStyle.Render,
		muted:   helpStyle.Render,
	}
	end := min(m.offset+m.height, len(m.rows))
	for i := m.offset; i < end; i++ {
		r := m.rows[i]
		marker := "  "
		switch {
		case r.expanded:
			marker = "▾ "
		case !r.more && r.entry.expandable(m.in):
			marker = "▸ "
		}
		indent := strings.Repeat("  ", r.depth)
		if i == m.selected {
			b.WriteString(selectedStyle.Render(indent + marker + formatLine(r.entry.name, r.entry.typ, r.entry.summary, plainPalette())))
		} else {
			b.WriteString(indent + marker + formatLine(r.entry.name, r.entry.typ, r.entry.summary, pal))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.state == stateFilter {
		b.WriteString(m.filter.View())
	} else {
		b.WriteString(helpStyle.Render("↑/↓ select • enter expand • ← collapse • / filter • q quit"))
	}
	return b.String()
}

func runInteractive(in *inspector, values []nichefmt.Value, title string) error {
	p := tea.NewProgram(newInteractiveModel(in, values, title), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
