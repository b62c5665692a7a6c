package scoring

import "regexp"

// attributionPatterns detect an article citing a wire service or outlet.
var attributionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)according to (Reuters|AP|AFP|Bloomberg|NYT|New York Times|Washington Post|WSJ|Wall Street Journal|CNN|BBC|Associated Press)`),
	regexp.MustCompile(`(?i)\b(Reuters|AP|AFP|Bloomberg) reports?\b`),
	regexp.MustCompile(`(?i)reported by (Reuters|AP|AFP|Bloomberg|NYT|Washington Post)`),
	regexp.MustCompile(`(?i)citing (Reuters|AP|AFP|Bloomberg)`),
	regexp.MustCompile(`(?i)\((Reuters|AP|AFP|Bloomberg)\)`),
}

// Attribution returns the outlet an article attributes its reporting to,
// or "" when it cites none.
func Attribution(text string) string {
	for _, p := range attributionPatterns {
		if m := p.FindStringSubmatch(text); len(m) > 1 {
			return m[1]
		}
	}
	return ""
}
