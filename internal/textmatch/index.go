package textmatch

import "sort"

// Term is one phrase to look for. Key groups terms that mean the same
// thing (a canonical entity name, a keyword); Text is the phrase itself.
type Term struct {
	Key  string
	Text string

	// CaseStrict terms only match when the original text spells them in
	// upper case, for short aliases that collide with ordinary words.
	CaseStrict bool
}

// Hit is one match in a word stream.
type Hit struct {
	Key  string
	Term string
	Pos  int // index of the first matched word
	Len  int // number of words consumed
}

type phrase struct {
	key        string
	text       string
	tokens     []string
	caseStrict bool
}

// Index is an immutable set of phrases keyed by their first token.
// It is safe for concurrent use.
type Index struct {
	byFirst map[string][]phrase
	size    int
}

// minPluralLen is the shortest final token that also matches with an
// S or ES suffix (MISSILE -> MISSILES, but not US -> USS).
const minPluralLen = 4

// New builds an index. When two terms normalize to the same tokens the
// first one wins.
func New(terms []Term) *Index {
	ix := &Index{byFirst: make(map[string][]phrase)}
	seen := make(map[string]bool)
	for _, t := range terms {
		toks := Tokenize(t.Text)
		if len(toks) == 0 {
			continue
		}
		norm := joinTokens(toks)
		if seen[norm] {
			continue
		}
		seen[norm] = true
		ix.size++
		ix.byFirst[toks[0]] = append(ix.byFirst[toks[0]], phrase{
			key:        t.Key,
			text:       norm,
			tokens:     toks,
			caseStrict: t.CaseStrict,
		})
	}
	for first, ps := range ix.byFirst {
		// Longest first; ties by text for a stable order.
		sort.SliceStable(ps, func(i, j int) bool {
			if len(ps[i].tokens) != len(ps[j].tokens) {
				return len(ps[i].tokens) > len(ps[j].tokens)
			}
			return ps[i].text < ps[j].text
		})
		ix.byFirst[first] = ps
	}
	return ix
}

// Keys builds an index where each text is its own key.
func Keys(texts ...string) *Index {
	terms := make([]Term, len(texts))
	for i, t := range texts {
		terms[i] = Term{Key: Normalize(t), Text: t}
	}
	return New(terms)
}

// Len returns the number of distinct phrases in the index.
func (ix *Index) Len() int {
	return ix.size
}

// Find scans words left to right. At each position the longest matching
// phrase wins and its words are consumed. original may be nil, in which
// case case-strict terms never match.
func (ix *Index) Find(words, original []string) []Hit {
	var hits []Hit
	for i := 0; i < len(words); {
		p, ok := ix.matchAt(words, original, i)
		if !ok {
			i++
			continue
		}
		hits = append(hits, Hit{Key: p.key, Term: p.text, Pos: i, Len: len(p.tokens)})
		i += len(p.tokens)
	}
	return hits
}

// Contains reports whether any phrase occurs in words.
func (ix *Index) Contains(words []string) bool {
	for i := range words {
		if _, ok := ix.matchAt(words, nil, i); ok {
			return true
		}
	}
	return false
}

// Count returns the number of hits per key.
func (ix *Index) Count(words, original []string) map[string]int {
	counts := make(map[string]int)
	for _, h := range ix.Find(words, original) {
		counts[h.Key]++
	}
	return counts
}

// Distinct returns the matched keys in order of first appearance.
func (ix *Index) Distinct(words, original []string) []string {
	var keys []string
	seen := make(map[string]bool)
	for _, h := range ix.Find(words, original) {
		if !seen[h.Key] {
			seen[h.Key] = true
			keys = append(keys, h.Key)
		}
	}
	return keys
}

func (ix *Index) matchAt(words, original []string, i int) (phrase, bool) {
	cands := ix.byFirst[words[i]]
	if len(cands) == 0 {
		// The first token may itself be a plural of a single-word phrase.
		cands = ix.pluralCandidates(words[i])
	}
	for _, p := range cands {
		if i+len(p.tokens) > len(words) {
			continue
		}
		if !tokensMatch(p.tokens, words[i:i+len(p.tokens)]) {
			continue
		}
		if p.caseStrict && !caseMatches(p.tokens, original, i) {
			continue
		}
		return p, true
	}
	return phrase{}, false
}

func (ix *Index) pluralCandidates(w string) []phrase {
	for _, suffix := range []string{"ES", "S"} {
		if len(w) > len(suffix) && w[len(w)-len(suffix):] == suffix {
			stem := w[:len(w)-len(suffix)]
			var out []phrase
			for _, p := range ix.byFirst[stem] {
				if len(p.tokens) == 1 {
					out = append(out, p)
				}
			}
			if len(out) > 0 {
				return out
			}
		}
	}
	return nil
}

func tokensMatch(tokens, words []string) bool {
	last := len(tokens) - 1
	for k, tok := range tokens {
		w := words[k]
		if w == tok {
			continue
		}
		if k == last && len(tok) >= minPluralLen && (w == tok+"S" || w == tok+"ES") {
			continue
		}
		return false
	}
	return true
}

func caseMatches(tokens, original []string, i int) bool {
	if i+len(tokens) > len(original) {
		return false
	}
	for k, tok := range tokens {
		if original[i+k] != tok {
			return false
		}
	}
	return true
}

func joinTokens(toks []string) string {
	n := len(toks) - 1
	for _, t := range toks {
		n += len(t)
	}
	b := make([]byte, 0, n)
	for i, t := range toks {
		if i > 0 {
			b = append(b, ' ')
		}
		b = append(b, t...)
	}
	return string(b)
}
