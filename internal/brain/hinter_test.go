package brain

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/abelbrown/watchfloor/internal/intel"
)

type stubProvider struct {
	content string
	err     error
	got     Request
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Generate(_ context.Context, req Request) (Response, error) {
	s.got = req
	return Response{Content: s.content}, s.err
}

func TestParseHint(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
		want    map[intel.EntityClass]int
	}{
		{
			name:    "plain",
			content: `{"summary":"Test.","entities":{"countries":["DPRK","United States"],"locations":["Yellow Sea"]}}`,
			want:    map[intel.EntityClass]int{intel.ClassCountries: 2, intel.ClassLocations: 1},
		},
		{
			name:    "fenced",
			content: "Here you go:\n```json\n{\"entities\":{\"weapons\":[\"ICBM\", \" \"]}}\n```",
			want:    map[intel.EntityClass]int{intel.ClassWeapons: 1},
		},
		{
			name:    "unknown class dropped",
			content: `{"summary":"s","entities":{"people":["Kim"]}}`,
			want:    map[intel.EntityClass]int{},
		},
		{name: "no json", content: "I cannot help with that.", wantErr: true},
		{name: "broken json", content: `{"entities": [}`, wantErr: true},
		{name: "empty", content: `{}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := ParseHint(tt.content)
			if tt.wantErr {
				if !errors.Is(err, ErrNoHint) {
					t.Errorf("expected ErrNoHint, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseHint failed: %v", err)
			}
			if len(h.Entities) != len(tt.want) {
				t.Errorf("expected %d classes, got %v", len(tt.want), h.Entities)
			}
			for class, n := range tt.want {
				if len(h.Entities[class]) != n {
					t.Errorf("%s: expected %d names, got %v", class, n, h.Entities[class])
				}
			}
		})
	}
}

func TestHinterHint(t *testing.T) {
	p := &stubProvider{content: `{"summary":"Missile test.","entities":{"countries":["DPRK"]}}`}
	a := intel.Article{ID: "a1", Title: "Pyongyang fires missile", Body: "Details."}

	h, err := NewHinter(p).Hint(context.Background(), a)
	if err != nil {
		t.Fatalf("Hint failed: %v", err)
	}
	if h.Provider != "stub" || h.Summary != "Missile test." {
		t.Errorf("unexpected hint %+v", h)
	}
	if got := h.Entities[intel.ClassCountries]; len(got) != 1 || got[0] != "DPRK" {
		t.Errorf("unexpected countries %v", got)
	}
	if !p.got.JSON || p.got.UserPrompt != "Pyongyang fires missile\n\nDetails." {
		t.Errorf("unexpected request %+v", p.got)
	}
}

func TestHinterErrors(t *testing.T) {
	a := intel.Article{ID: "a1", Title: "t"}
	if _, err := NewHinter(&stubProvider{err: errors.New("down")}).Hint(context.Background(), a); err == nil {
		t.Error("expected provider error")
	}
	if _, err := NewHinter(&stubProvider{content: "nope"}).Hint(context.Background(), a); !errors.Is(err, ErrNoHint) {
		t.Errorf("expected ErrNoHint, got %v", err)
	}
}

func TestHinterOverOllama(t *testing.T) {
	srv := chatServer(t, http.StatusOK, `{"entities":{"locations":["Strait of Hormuz"]}}`, nil)
	defer srv.Close()

	h, err := NewHinter(NewOllamaProvider(srv.URL, "m", time.Second, 0)).
		Hint(context.Background(), intel.Article{ID: "x", Title: "Tankers diverted"})
	if err != nil {
		t.Fatalf("Hint failed: %v", err)
	}
	if h.Provider != "ollama" || len(h.Entities[intel.ClassLocations]) != 1 {
		t.Errorf("unexpected hint %+v", h)
	}
}

func TestPromptTruncates(t *testing.T) {
	long := make([]rune, maxPromptRunes+100)
	for i := range long {
		long[i] = 'x'
	}
	if got := len([]rune(prompt(intel.Article{Title: string(long)}))); got != maxPromptRunes {
		t.Errorf("expected %d runes, got %d", maxPromptRunes, got)
	}
}
