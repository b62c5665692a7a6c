// Package report renders assessments: a static lipgloss table for the CLI
// and an interactive bubbletea browser.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/abelbrown/watchfloor/internal/intel"
)

// Row is one assessment with the article fields the views show.
type Row struct {
	Assessment intel.IntelligenceAssessment
	Title      string
	Source     string
}

var tableHeaders = []string{"PRIORITY", "SCORE", "CONF", "THREAT", "TITLE", "TAGS"}

// RenderTable renders rows as a bordered table. width <= 0 leaves the
// table at its natural width.
func RenderTable(rows []Row, width int) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorMuted)).
		Headers(tableHeaders...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	if width > 0 {
		t = t.Width(width)
	}
	for _, r := range rows {
		t.Row(cells(r, 60)...)
	}
	return t.Render()
}

func cells(r Row, titleWidth int) []string {
	a := r.Assessment
	return []string{
		PriorityBadge(a.Priority),
		fmt.Sprintf("%.1f", a.OverallScore),
		fmt.Sprintf("%.0f", a.Confidence),
		threatLabel(a.Threat),
		truncate(r.Title, titleWidth),
		strings.Join(a.Tags, ","),
	}
}

func threatLabel(t intel.ThreatAssessment) string {
	if t.PrimaryThreat == "" || t.PrimaryThreat == intel.ThreatNone {
		return "-"
	}
	return fmt.Sprintf("%s/%s", t.PrimaryThreat, t.Level)
}

// RenderDetail renders everything an analyst needs to judge one
// assessment: entities, threat evidence and the score breakdown.
func RenderDetail(r Row, width int) string {
	a := r.Assessment
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s\n", PriorityBadge(a.Priority), r.Title)
	if r.Source != "" {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("source:"), r.Source)
	}
	fmt.Fprintf(&b, "%s %.1f  %s %.0f  %s %.0f\n",
		labelStyle.Render("score:"), a.OverallScore,
		labelStyle.Render("confidence:"), a.Confidence,
		labelStyle.Render("priority confidence:"), a.PriorityConfidence)
	if a.Threat.PrimaryThreat != "" && a.Threat.PrimaryThreat != intel.ThreatNone {
		m := a.Threat.Modifiers
		fmt.Fprintf(&b, "%s %s %.1f (%s, %s, %s)\n", labelStyle.Render("threat:"),
			a.Threat.PrimaryThreat, a.Threat.Score, m.Timeframe, orDash(m.Region), m.Certainty)
	}

	for _, class := range intel.EntityClasses {
		if names := a.Entities.Entities[class]; len(names) > 0 {
			fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(string(class)+":"), strings.Join(names, ", "))
		}
	}
	for _, rel := range a.Entities.Relationships {
		fmt.Fprintf(&b, "%s %s %s\n", labelStyle.Render("relationship:"), rel.Type, strings.Join(rel.Members, " / "))
	}
	if a.Duplicate.IsDuplicate {
		fmt.Fprintf(&b, "%s of %s (%.2f)\n", labelStyle.Render("duplicate:"), a.Duplicate.DuplicateOfID, a.Duplicate.Similarity)
	}

	b.WriteString(labelStyle.Render("breakdown:") + "\n")
	for _, name := range sortedKeys(a.Breakdown.Primary) {
		c := a.Breakdown.Primary[name]
		fmt.Fprintf(&b, "  %-22s %6.1f x %.2f = %5.2f\n", name, c.Score, c.Weight, c.Contribution)
	}
	if a.Breakdown.SecondaryApplied {
		fmt.Fprintf(&b, "  %-22s %6.1f\n", "secondary", a.Breakdown.SecondaryComposite)
	}
	fmt.Fprintf(&b, "  %-22s %6.2f\n", "context multiplier", a.Breakdown.ContextMultiplier)
	if len(a.Breakdown.Overrides) > 0 {
		fmt.Fprintf(&b, "  %-22s %s\n", "overrides", strings.Join(a.Breakdown.Overrides, ", "))
	}
	for _, d := range a.Diagnostics {
		fmt.Fprintf(&b, "%s %s %s\n", labelStyle.Render("diagnostic:"), d.Code, d.Message)
	}

	style := detailStyle
	if width > 2 {
		style = style.Width(width - 2)
	}
	return style.Render(strings.TrimRight(b.String(), "\n"))
}

func sortedKeys(m map[string]intel.Contribution) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// truncate shortens s to max runes with an ellipsis.
func truncate(s string, max int) string {
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
