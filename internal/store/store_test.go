package store

import (
	"testing"
	"time"

	"github.com/abelbrown/watchfloor/internal/intel"
)

var now = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

func openMemory(t *testing.T) *Store {
	t.Helper()
	st, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func article(id string, age time.Duration) intel.Article {
	return intel.Article{
		ID:          id,
		Title:       "Title " + id,
		Body:        "Body " + id,
		URL:         "https://example.com/" + id,
		PublishedAt: now.Add(-age),
		FetchedAt:   now,
		Source:      intel.Source{Domain: "example.com", FeedLabel: "Example", BaseCredibility: 70},
	}
}

func assessment(id, articleID string, p intel.Level, score float64, at time.Time) intel.IntelligenceAssessment {
	return intel.IntelligenceAssessment{
		ID:           id,
		ArticleID:    articleID,
		AnalyzedAt:   at,
		OverallScore: score,
		Priority:     p,
		Tags:         []string{intel.TagBreaking},
	}
}

func TestOpen(t *testing.T) {
	st := openMemory(t)
	for _, table := range []string{"articles", "assessments"} {
		var name string
		err := st.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Fatalf("%s table not created: %v", table, err)
		}
	}
}

func TestOpenMemoryIsSharedInProcess(t *testing.T) {
	first := openMemory(t)
	second := openMemory(t)

	if _, err := first.SaveArticles([]intel.Article{article("shared", time.Hour)}); err != nil {
		t.Fatalf("SaveArticles failed: %v", err)
	}
	if _, ok, err := second.Article("shared"); err != nil || !ok {
		t.Errorf("second store did not see the article: ok=%v err=%v", ok, err)
	}
}

func TestOpenFile(t *testing.T) {
	path := t.TempDir() + "/watchfloor.db"
	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := st.SaveArticles([]intel.Article{article("a", time.Hour)}); err != nil {
		t.Fatalf("SaveArticles failed: %v", err)
	}
	st.Close()

	st, err = Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer st.Close()
	if _, ok, err := st.Article("a"); err != nil || !ok {
		t.Errorf("Article after reopen: ok=%v err=%v", ok, err)
	}
}

func TestSaveArticlesIgnoresKnownIDs(t *testing.T) {
	st := openMemory(t)

	n, err := st.SaveArticles([]intel.Article{article("a", time.Hour), article("b", 2*time.Hour)})
	if err != nil {
		t.Fatalf("SaveArticles failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 new, got %d", n)
	}

	changed := article("a", time.Hour)
	changed.Title = "Rewritten"
	n, err = st.SaveArticles([]intel.Article{changed, article("c", 3*time.Hour)})
	if err != nil {
		t.Fatalf("SaveArticles failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 new, got %d", n)
	}

	got, ok, err := st.Article("a")
	if err != nil || !ok {
		t.Fatalf("Article: ok=%v err=%v", ok, err)
	}
	if got.Title != "Title a" {
		t.Errorf("stored article was replaced: %q", got.Title)
	}
	if got.Source.BaseCredibility != 70 || !got.PublishedAt.Equal(now.Add(-time.Hour)) {
		t.Errorf("round trip lost fields: %+v", got)
	}
}

func TestSaveArticlesRequiresID(t *testing.T) {
	st := openMemory(t)
	if _, err := st.SaveArticles([]intel.Article{{Title: "no id"}}); err == nil {
		t.Error("expected error for article without id")
	}
	if n, err := st.SaveArticles(nil); n != 0 || err != nil {
		t.Errorf("empty save: n=%d err=%v", n, err)
	}
}

func TestRecentArticles(t *testing.T) {
	st := openMemory(t)
	if _, err := st.SaveArticles([]intel.Article{
		article("new", time.Hour),
		article("old", 48*time.Hour),
		article("mid", 5*time.Hour),
		article("newest", time.Minute),
	}); err != nil {
		t.Fatalf("SaveArticles failed: %v", err)
	}

	tests := []struct {
		name  string
		since time.Time
		limit int
		want  []string
	}{
		{"window", now.Add(-24 * time.Hour), 0, []string{"mid", "new", "newest"}},
		{"limit keeps newest", now.Add(-24 * time.Hour), 2, []string{"new", "newest"}},
		{"everything", time.Time{}, 0, []string{"old", "mid", "new", "newest"}},
		{"nothing", now.Add(time.Hour), 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := st.RecentArticles(tt.since, tt.limit)
			if err != nil {
				t.Fatalf("RecentArticles failed: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d articles, got %d", len(tt.want), len(got))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("position %d: expected %s, got %s", i, id, got[i].ID)
				}
			}
		})
	}
}

func TestUnassessed(t *testing.T) {
	st := openMemory(t)
	if _, err := st.SaveArticles([]intel.Article{
		article("a", 3*time.Hour), article("b", 2*time.Hour), article("c", time.Hour),
	}); err != nil {
		t.Fatalf("SaveArticles failed: %v", err)
	}
	if err := st.SaveAssessment(assessment("x1", "b", intel.LevelLow, 30, now)); err != nil {
		t.Fatalf("SaveAssessment failed: %v", err)
	}

	got, err := st.Unassessed(0)
	if err != nil {
		t.Fatalf("Unassessed failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Errorf("expected [a c], got %v", ids(got))
	}

	got, _ = st.Unassessed(1)
	if len(got) != 1 || got[0].ID != "a" {
		t.Errorf("expected [a], got %v", ids(got))
	}
}

func TestAssessments(t *testing.T) {
	st := openMemory(t)
	err := st.SaveAssessments([]intel.IntelligenceAssessment{
		assessment("1", "a", intel.LevelLow, 20, now.Add(-2*time.Hour)),
		assessment("2", "b", intel.LevelHigh, 74, now.Add(-time.Hour)),
		assessment("3", "c", intel.LevelCritical, 91, now.Add(-3*time.Hour)),
		assessment("4", "d", intel.LevelMedium, 55, now.Add(-time.Hour)),
	})
	if err != nil {
		t.Fatalf("SaveAssessments failed: %v", err)
	}

	all, err := st.Assessments(intel.LevelLow, 0)
	if err != nil {
		t.Fatalf("Assessments failed: %v", err)
	}
	want := []string{"2", "4", "1", "3"}
	if len(all) != len(want) {
		t.Fatalf("expected %d, got %d", len(want), len(all))
	}
	for i, id := range want {
		if all[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, all[i].ID)
		}
	}

	high, _ := st.Assessments(intel.LevelHigh, 0)
	if len(high) != 2 {
		t.Errorf("expected 2 at HIGH or above, got %d", len(high))
	}
	limited, _ := st.Assessments(intel.LevelLow, 1)
	if len(limited) != 1 || limited[0].ID != "2" {
		t.Errorf("limit: got %+v", limited)
	}
	if !all[0].HasTag(intel.TagBreaking) || !all[0].AnalyzedAt.Equal(now.Add(-time.Hour)) {
		t.Errorf("round trip lost fields: %+v", all[0])
	}
}

func TestReanalysisAddsRows(t *testing.T) {
	st := openMemory(t)
	st.SaveAssessment(assessment("first", "a", intel.LevelLow, 30, now.Add(-time.Hour)))
	st.SaveAssessment(assessment("second", "a", intel.LevelMedium, 52, now))

	got, err := st.AssessmentsFor("a")
	if err != nil {
		t.Fatalf("AssessmentsFor failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != "second" {
		t.Errorf("expected newest first, got %+v", got)
	}

	if err := st.SaveAssessment(assessment("first", "a", intel.LevelLow, 30, now)); err == nil {
		t.Error("expected error reusing an assessment id")
	}
}

func TestCounts(t *testing.T) {
	st := openMemory(t)
	st.SaveArticles([]intel.Article{article("a", time.Hour), article("b", time.Hour)})
	st.SaveAssessment(assessment("1", "a", intel.LevelLow, 10, now))

	arts, asmts, err := st.Counts()
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	if arts != 2 || asmts != 1 {
		t.Errorf("expected 2/1, got %d/%d", arts, asmts)
	}
}

func ids(articles []intel.Article) []string {
	out := make([]string, len(articles))
	for i, a := range articles {
		out[i] = a.ID
	}
	return out
}
