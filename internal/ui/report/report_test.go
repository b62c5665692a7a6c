package report

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/watchfloor/internal/intel"
)

func rows() []Row {
	return []Row{
		{
			Title:  "Iran confirms missile test near Strait of Hormuz",
			Source: "reuters.com",
			Assessment: intel.IntelligenceAssessment{
				ID: "1", Priority: intel.LevelCritical, OverallScore: 88.4, Confidence: 81,
				Tags:   []string{intel.TagBreaking, intel.TagPremiumSource},
				Threat: intel.ThreatAssessment{PrimaryThreat: intel.ThreatMilitary, Level: intel.LevelCritical, Score: 95},
				Entities: intel.EntityAnalysis{
					Entities: map[intel.EntityClass][]string{
						intel.ClassCountries: {"IRAN"},
						intel.ClassLocations: {"STRAIT OF HORMUZ"},
					},
				},
				Breakdown: intel.Breakdown{
					Primary:           map[string]intel.Contribution{intel.DimKeyword: {Score: 80, Weight: 0.3, Contribution: 24}},
					ContextMultiplier: 1,
					Overrides:         []string{"threat_critical"},
				},
			},
		},
		{
			Title:      "Local bakery wins award",
			Assessment: intel.IntelligenceAssessment{ID: "2", Priority: intel.LevelLow, OverallScore: 12},
		},
	}
}

type loaderSpy struct {
	calls []intel.Level
}

func (l *loaderSpy) load(min intel.Level) tea.Cmd {
	l.calls = append(l.calls, min)
	return func() tea.Msg { return AssessmentsLoaded{Rows: rows()} }
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loaded(t *testing.T, spy *loaderSpy) Model {
	t.Helper()
	m := New(spy.load, intel.LevelLow)
	model, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	model, _ = model.Update(AssessmentsLoaded{Rows: rows()})
	return model.(Model)
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(rows(), 0)
	for _, want := range []string{"PRIORITY", "CRITICAL", "88.4", "MILITARY/CRITICAL", "BREAKING,PREMIUM_SOURCE", "Local bakery"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestRenderDetail(t *testing.T) {
	out := RenderDetail(rows()[0], 100)
	for _, want := range []string{"reuters.com", "IRAN", "STRAIT OF HORMUZ", "threat_critical", intel.DimKeyword} {
		if !strings.Contains(out, want) {
			t.Errorf("detail missing %q:\n%s", want, out)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"abc", 2, "ab"},
		{"any", 0, "any"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestModelInitLoads(t *testing.T) {
	spy := &loaderSpy{}
	if cmd := New(spy.load, intel.LevelHigh).Init(); cmd == nil {
		t.Fatal("Init should return a command")
	}
	if len(spy.calls) != 1 || spy.calls[0] != intel.LevelHigh {
		t.Errorf("expected load at HIGH, got %v", spy.calls)
	}
	if cmd := New(nil, intel.LevelLow).Init(); cmd != nil {
		t.Error("Init should return nil without a loader")
	}
}

func TestModelNavigationAndDetail(t *testing.T) {
	m := loaded(t, &loaderSpy{})

	r, ok := m.Selected()
	if !ok || r.Assessment.ID != "1" {
		t.Fatalf("expected first row selected, got %+v", r)
	}

	model, _ := m.Update(key("down"))
	m = model.(Model)
	if r, _ := m.Selected(); r.Assessment.ID != "2" {
		t.Errorf("down should select second row, got %s", r.Assessment.ID)
	}

	model, _ = m.Update(key("enter"))
	m = model.(Model)
	if !m.Detail() {
		t.Error("enter should open detail")
	}
	if !strings.Contains(m.View(), "Local bakery") {
		t.Error("detail view should show the selected title")
	}

	model, _ = m.Update(key("esc"))
	if model.(Model).Detail() {
		t.Error("esc should close detail")
	}
}

func TestModelPriorityFilterCycles(t *testing.T) {
	spy := &loaderSpy{}
	m := loaded(t, spy)

	want := []intel.Level{intel.LevelMedium, intel.LevelHigh, intel.LevelCritical, intel.LevelLow}
	for _, w := range want {
		model, cmd := m.Update(key("p"))
		m = model.(Model)
		if m.MinPriority() != w {
			t.Errorf("expected %s, got %s", w, m.MinPriority())
		}
		if cmd == nil {
			t.Error("p should reload")
		}
	}
	if len(spy.calls) != len(want) {
		t.Errorf("expected %d loads, got %d", len(want), len(spy.calls))
	}
}

func TestModelLoadError(t *testing.T) {
	m := loaded(t, &loaderSpy{})
	model, _ := m.Update(AssessmentsLoaded{Err: errors.New("database locked")})
	m = model.(Model)

	if !strings.Contains(m.View(), "database locked") {
		t.Error("view should show the load error")
	}
	if _, ok := m.Selected(); !ok {
		t.Error("rows should survive a failed reload")
	}
}

func TestModelQuit(t *testing.T) {
	_, cmd := loaded(t, &loaderSpy{}).Update(key("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}
