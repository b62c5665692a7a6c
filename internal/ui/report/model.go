package report

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/watchfloor/internal/intel"
)

// AssessmentsLoaded is sent when a load command completes.
type AssessmentsLoaded struct {
	Rows []Row
	Err  error
}

// Loader returns a command that loads rows at or above min.
type Loader func(min intel.Level) tea.Cmd

var filterCycle = []intel.Level{intel.LevelLow, intel.LevelMedium, intel.LevelHigh, intel.LevelCritical}

var browserColumns = []table.Column{
	{Title: "PRIORITY", Width: 9},
	{Title: "SCORE", Width: 6},
	{Title: "THREAT", Width: 20},
	{Title: "TITLE", Width: 60},
}

// Model is the report browser. It does NOT hold the store; rows arrive
// via AssessmentsLoaded.
type Model struct {
	load   Loader
	min    intel.Level
	rows   []Row
	table  table.Model
	detail bool
	err    error
	width  int
	height int
	ready  bool
}

// New creates a browser starting at min priority.
func New(load Loader, min intel.Level) Model {
	t := table.New(
		table.WithColumns(browserColumns),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.Bold(true).Foreground(colorHighlight)
	s.Selected = s.Selected.Bold(true).Background(colorPrimary)
	t.SetStyles(s)
	if !min.Valid() {
		min = intel.LevelLow
	}
	return Model{load: load, min: min, table: t}
}

func (m Model) Init() tea.Cmd {
	if m.load != nil {
		return m.load(m.min)
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height, m.ready = msg.Width, msg.Height, true
		m.resize()
		return m, nil

	case AssessmentsLoaded:
		m.err = msg.Err
		if msg.Err == nil {
			m.rows = msg.Rows
			m.table.SetRows(tableRows(m.rows))
			if m.table.Cursor() >= len(m.rows) {
				m.table.SetCursor(max(len(m.rows)-1, 0))
			}
		}
		return m, nil

	case tea.KeyMsg:
		m.err = nil
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "enter", " ":
			m.detail = !m.detail && len(m.rows) > 0
			m.resize()
			return m, nil
		case "esc":
			m.detail = false
			m.resize()
			return m, nil
		case "p":
			m.min = nextLevel(m.min)
			if m.load != nil {
				return m, m.load(m.min)
			}
			return m, nil
		case "r":
			if m.load != nil {
				return m, m.load(m.min)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	var b strings.Builder
	b.WriteString(m.table.View())
	b.WriteString("\n")
	if m.detail {
		if r, ok := m.Selected(); ok {
			b.WriteString(RenderDetail(r, m.width))
			b.WriteString("\n")
		}
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n")
	}
	b.WriteString(m.statusLine())
	return b.String()
}

// Selected returns the row under the cursor.
func (m Model) Selected() (Row, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.rows) {
		return Row{}, false
	}
	return m.rows[i], true
}

// MinPriority returns the current filter.
func (m Model) MinPriority() intel.Level { return m.min }

// Detail reports whether the detail pane is open.
func (m Model) Detail() bool { return m.detail }

func (m Model) statusLine() string {
	keys := statusBarKey.Render("enter") + " detail  " +
		statusBarKey.Render("p") + " priority  " +
		statusBarKey.Render("r") + " reload  " +
		statusBarKey.Render("q") + " quit"
	line := "≥ " + PriorityBadge(m.min) + "  " + strconv.Itoa(len(m.rows)) + " assessments  " + keys
	if m.width > 0 {
		return statusBar.Width(m.width).Render(line)
	}
	return statusBar.Render(line)
}

// resize gives the table whatever the detail pane and status bar leave.
func (m *Model) resize() {
	if !m.ready {
		return
	}
	h := m.height - 2
	if m.detail {
		h = m.height / 3
	}
	m.table.SetHeight(max(h, 3))
	m.table.SetWidth(m.width)
}

func tableRows(rows []Row) []table.Row {
	out := make([]table.Row, len(rows))
	for i, r := range rows {
		c := cells(r, browserColumns[3].Width)
		// The bubbles table measures raw strings, so the colored badge is
		// replaced by the plain level.
		out[i] = table.Row{string(r.Assessment.Priority), c[1], c[3], c[4]}
	}
	return out
}

func nextLevel(l intel.Level) intel.Level {
	for i, f := range filterCycle {
		if f == l {
			return filterCycle[(i+1)%len(filterCycle)]
		}
	}
	return intel.LevelLow
}
