package report

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/watchfloor/internal/intel"
)

// 256-color palette.
var (
	colorPrimary   = lipgloss.Color("62")
	colorSecondary = lipgloss.Color("241")
	colorMuted     = lipgloss.Color("240")
	colorHighlight = lipgloss.Color("212")
)

var priorityColors = map[intel.Level]lipgloss.Color{
	intel.LevelCritical: lipgloss.Color("196"), // Red
	intel.LevelHigh:     lipgloss.Color("208"), // Orange
	intel.LevelMedium:   lipgloss.Color("220"), // Yellow
	intel.LevelLow:      colorSecondary,
}

// PriorityBadge renders a priority in its color.
func PriorityBadge(l intel.Level) string {
	c, ok := priorityColors[l]
	if !ok {
		c = colorMuted
	}
	return lipgloss.NewStyle().Bold(l.AtLeast(intel.LevelHigh)).Foreground(c).Render(string(l))
}

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight).
	Padding(0, 1)

var labelStyle = lipgloss.NewStyle().
	Foreground(colorSecondary)

var detailStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorPrimary).
	Padding(0, 1)

var statusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

var statusBarKey = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

var errorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("196")).
	Bold(true).
	Padding(0, 1)
