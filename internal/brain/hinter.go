package brain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/abelbrown/watchfloor/internal/intel"
)

// maxPromptRunes bounds the article text sent to the model.
const maxPromptRunes = 2000

const hintSystemPrompt = `You extract named entities from news articles for a security analyst.
Reply with one JSON object and nothing else:
{"summary": "<one sentence>",
 "entities": {"countries": [], "organizations": [], "technologies": [],
              "weapons": [], "weaponSystems": [], "locations": []}}
Use full common names (e.g. "North Korea", not "DPRK"). Omit classes with no entities.`

// ErrNoHint is returned when the model's reply holds no usable hint.
var ErrNoHint = errors.New("no usable hint in response")

// Hinter asks a Provider for an entity/summary hint about an article.
type Hinter struct {
	provider Provider
}

func NewHinter(p Provider) *Hinter {
	return &Hinter{provider: p}
}

// Hint returns the provider's hint for a. Unknown entity classes in the
// reply are dropped.
func (h *Hinter) Hint(ctx context.Context, a intel.Article) (*intel.Hint, error) {
	resp, err := h.provider.Generate(ctx, Request{
		SystemPrompt: hintSystemPrompt,
		UserPrompt:   prompt(a),
		MaxTokens:    512,
		JSON:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("%s hint for %s: %w", h.provider.Name(), a.ID, err)
	}
	hint, err := ParseHint(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("%s hint for %s: %w", h.provider.Name(), a.ID, err)
	}
	hint.Provider = h.provider.Name()
	return hint, nil
}

// ParseHint decodes a model reply. Models often wrap JSON in prose or code
// fences, so the outermost braces are taken.
func ParseHint(content string) (*intel.Hint, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, ErrNoHint
	}
	var raw struct {
		Summary  string              `json:"summary"`
		Entities map[string][]string `json:"entities"`
	}
	if err := json.Unmarshal([]byte(content[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoHint, err)
	}

	hint := &intel.Hint{
		Summary:  strings.TrimSpace(raw.Summary),
		Entities: make(map[intel.EntityClass][]string),
	}
	for _, class := range intel.EntityClasses {
		for _, name := range raw.Entities[string(class)] {
			if name = strings.TrimSpace(name); name != "" {
				hint.Entities[class] = append(hint.Entities[class], name)
			}
		}
	}
	if hint.Summary == "" && len(hint.Entities) == 0 {
		return nil, ErrNoHint
	}
	return hint, nil
}

func prompt(a intel.Article) string {
	text := a.Title + "\n\n" + a.Body
	if r := []rune(text); len(r) > maxPromptRunes {
		text = string(r[:maxPromptRunes])
	}
	return text
}
