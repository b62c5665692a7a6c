// Package preprocess turns an article into the canonical form every scorer
// reads: upper-cased, punctuation-free word streams with the title counted
// twice.
package preprocess

import (
	"regexp"
	"strings"

	"github.com/abelbrown/watchfloor/internal/intel"
	"github.com/abelbrown/watchfloor/internal/textmatch"
)

// Content is the preprocessed form of one article. It is derived per call
// and never stored.
type Content struct {
	Title    string // normalized title
	Body     string // normalized body
	Combined string // title, title again, body

	// Words is Combined split into tokens; Original holds the same tokens
	// in their original letter case.
	Words    []string
	Original []string

	TitleWords []string
	BodyWords  []string

	// Raw is title and body upper-cased with punctuation kept, for the
	// pattern extractors that need digits, dashes and currency signs.
	Raw string

	Sentences []string
	WordCount int
}

var sentenceSplit = regexp.MustCompile(`[.!?]+(?:\s+|$)|\n+`)

// Process builds Content for a. Empty input yields zero-length content.
func Process(a intel.Article) Content {
	titleWords := textmatch.Tokenize(a.Title)
	bodyWords := textmatch.Tokenize(a.Body)
	titleOrig := textmatch.TokenizeOriginal(a.Title)
	bodyOrig := textmatch.TokenizeOriginal(a.Body)

	words := make([]string, 0, 2*len(titleWords)+len(bodyWords))
	words = append(words, titleWords...)
	words = append(words, titleWords...)
	words = append(words, bodyWords...)

	orig := make([]string, 0, len(words))
	orig = append(orig, titleOrig...)
	orig = append(orig, titleOrig...)
	orig = append(orig, bodyOrig...)

	return Content{
		Title:      strings.Join(titleWords, " "),
		Body:       strings.Join(bodyWords, " "),
		Combined:   strings.Join(words, " "),
		Words:      words,
		Original:   orig,
		TitleWords: titleWords,
		BodyWords:  bodyWords,
		Raw:        strings.ToUpper(strings.TrimSpace(a.Title + "\n" + a.Body)),
		Sentences:  sentences(a.Title, a.Body),
		WordCount:  len(words),
	}
}

// InTitle reports whether word position pos falls in either title copy.
func (c Content) InTitle(pos int) bool {
	return pos < 2*len(c.TitleWords)
}

// Empty reports whether there is no text at all.
func (c Content) Empty() bool {
	return c.WordCount == 0
}

func sentences(parts ...string) []string {
	var out []string
	for _, p := range parts {
		for _, s := range sentenceSplit.Split(p, -1) {
			if n := textmatch.Normalize(s); n != "" {
				out = append(out, n)
			}
		}
	}
	return out
}
