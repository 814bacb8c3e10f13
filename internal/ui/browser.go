package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"typesizes/internal/report"
)

type browserKeys struct {
	Up          key.Binding
	Down        key.Binding
	Toggle      key.Binding
	Expand      key.Binding
	Collapse    key.Binding
	ExpandAll   key.Binding
	CollapseAll key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func (k browserKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.Help, k.Quit}
}

func (k browserKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Toggle},
		{k.Expand, k.Collapse, k.ExpandAll, k.CollapseAll},
		{k.Help, k.Quit},
	}
}

var defaultBrowserKeys = browserKeys{
	Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Toggle:      key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "toggle")),
	Expand:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "expand")),
	Collapse:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "collapse")),
	ExpandAll:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "expand all")),
	CollapseAll: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "collapse all")),
	Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:        key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

var (
	browserTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	browserCursorStyle = lipgloss.NewStyle().Reverse(true)
	browserKindStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	browserSizeStyle   = lipgloss.NewStyle().Bold(true)
	browserLevelStyles = []lipgloss.Style{
		lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	}
	browserBadStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

type treeRow struct {
	node  report.Node
	depth int
}

// BrowserModel is an interactive, collapsible view of parsed types.
type BrowserModel struct {
	title    string
	types    []*report.Type
	expanded map[report.Node]bool
	rows     []treeRow
	cursor   int
	offset   int
	width    int
	height   int
	keys     browserKeys
	help     help.Model
}

// NewBrowserModel returns a browser with every type collapsed.
func NewBrowserModel(title string, types []*report.Type) *BrowserModel {
	m := &BrowserModel{
		title:    title,
		types:    types,
		expanded: make(map[report.Node]bool),
		width:    80,
		height:   24,
		keys:     defaultBrowserKeys,
		help:     help.New(),
	}
	m.rebuild()
	return m
}

func (m *BrowserModel) Init() tea.Cmd { return nil }

func (m *BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.scroll()
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			m.move(-1)
		case key.Matches(msg, m.keys.Down):
			m.move(1)
		case key.Matches(msg, m.keys.Toggle):
			if n := m.current(); n != nil && expandable(n) {
				m.setExpanded(n, !m.expanded[n])
			}
		case key.Matches(msg, m.keys.Expand):
			if n := m.current(); n != nil && expandable(n) {
				m.setExpanded(n, true)
			}
		case key.Matches(msg, m.keys.Collapse):
			m.collapseCurrent()
		case key.Matches(msg, m.keys.ExpandAll):
			m.setAll(true)
		case key.Matches(msg, m.keys.CollapseAll):
			m.setAll(false)
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
	}
	return m, nil
}

func (m *BrowserModel) View() string {
	var b strings.Builder
	b.WriteString(browserTitleStyle.Render(fmt.Sprintf("%s (%d types)", m.title, len(m.types))))
	b.WriteString("\n\n")
	end := min(m.offset+m.pageSize(), len(m.rows))
	for i := m.offset; i < end; i++ {
		line := m.renderRow(m.rows[i])
		if i == m.cursor {
			line = browserCursorStyle.Render(">") + line[1:]
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// Rows returns the number of visible rows.
func (m *BrowserModel) Rows() int { return len(m.rows) }

// Cursor returns the index of the selected row.
func (m *BrowserModel) Cursor() int { return m.cursor }

func (m *BrowserModel) current() report.Node {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor].node
}

func expandable(n report.Node) bool {
	return len(report.Children(n)) > 0
}

func (m *BrowserModel) rebuild() {
	m.rows = m.rows[:0]
	var add func(n report.Node, depth int)
	add = func(n report.Node, depth int) {
		m.rows = append(m.rows, treeRow{node: n, depth: depth})
		if !m.expanded[n] {
			return
		}
		for _, c := range report.Children(n) {
			add(c, depth+1)
		}
	}
	for _, t := range m.types {
		add(t, 0)
	}
	m.cursor = max(0, min(m.cursor, len(m.rows)-1))
	m.scroll()
}

func (m *BrowserModel) setExpanded(n report.Node, open bool) {
	if open {
		m.expanded[n] = true
	} else {
		delete(m.expanded, n)
	}
	m.rebuild()
}

// collapseCurrent folds the selected node, or jumps to its parent when it is
// already folded.
func (m *BrowserModel) collapseCurrent() {
	n := m.current()
	if n == nil {
		return
	}
	if m.expanded[n] {
		m.setExpanded(n, false)
		return
	}
	depth := m.rows[m.cursor].depth
	for i := m.cursor - 1; i >= 0; i-- {
		if m.rows[i].depth < depth {
			m.cursor = i
			m.scroll()
			return
		}
	}
}

func (m *BrowserModel) setAll(open bool) {
	var keep report.Node
	if open {
		keep = m.current()
	} else if m.cursor < len(m.rows) {
		// Stay on the enclosing type.
		for i := m.cursor; i >= 0; i-- {
			if m.rows[i].depth == 0 {
				keep = m.rows[i].node
				break
			}
		}
	}
	clear(m.expanded)
	if open {
		for _, t := range m.types {
			report.Walk(t, func(n report.Node, _ int) bool {
				if expandable(n) {
					m.expanded[n] = true
				}
				return true
			})
		}
	}
	m.rebuild()
	for i, r := range m.rows {
		if r.node == keep {
			m.cursor = i
			break
		}
	}
	m.scroll()
}

func (m *BrowserModel) move(delta int) {
	m.cursor = max(0, min(m.cursor+delta, len(m.rows)-1))
	m.scroll()
}

func (m *BrowserModel) pageSize() int {
	// Title, blank, blank and one help line.
	return max(m.height-4, 1)
}

func (m *BrowserModel) scroll() {
	page := m.pageSize()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+page {
		m.offset = m.cursor - page + 1
	}
	m.offset = max(0, m.offset)
}

func (m *BrowserModel) renderRow(r treeRow) string {
	marker := "  "
	if expandable(r.node) {
		marker = "▸ "
		if m.expanded[r.node] {
			marker = "▾ "
		}
	}
	indent := strings.Repeat("  ", r.depth)
	size := fmt.Sprintf("%d B", r.node.Bytes())
	if t, ok := r.node.(*report.Type); ok {
		size += fmt.Sprintf(", align %d", t.Align)
	}

	kind := ""
	if _, ok := r.node.(*report.Type); !ok {
		kind = r.node.Kind().String()
	}
	name := ""
	if named, ok := r.node.(report.Named); ok {
		name = named.DisplayName()
	}

	// 1 for the cursor column, 2 spaces before the size.
	fixed := 1 + runewidth.StringWidth(indent+marker) + runewidth.StringWidth(size) + 2
	if kind != "" {
		fixed += runewidth.StringWidth(kind) + 1
	}
	room := max(m.width-fixed, 8)
	if runewidth.StringWidth(name) > room {
		name = runewidth.Truncate(name, room, report.Ellipsis)
	}

	var b strings.Builder
	b.WriteString(" ")
	b.WriteString(indent)
	b.WriteString(marker)
	if kind != "" {
		b.WriteString(browserKindStyle.Render(kind))
		if name != "" {
			b.WriteString(" ")
		}
	}
	b.WriteString(styleName(name))
	b.WriteString("  ")
	b.WriteString(browserSizeStyle.Render(size))
	return b.String()
}

func styleName(name string) string {
	if name == "" {
		return ""
	}
	var b strings.Builder
	for _, tok := range report.SplitName(name).Tokens {
		style := browserBadStyle
		if tok.Level >= 0 {
			style = browserLevelStyles[tok.Level%len(browserLevelStyles)]
		}
		b.WriteString(style.Render(tok.Text))
	}
	return b.String()
}
