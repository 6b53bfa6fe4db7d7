package chunker

import (
	"regexp"
	"strings"

	"github.com/dgallion1/crawlchunk/internal/doctree"
	"golang.org/x/net/html"
)

var markdownLink = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)

// Classifier flags blocks whose heading matches a boilerplate pattern.
// It is immutable after construction.
type Classifier struct {
	patterns []string
	exact    bool
}

// NewClassifier normalizes the patterns once.
func NewClassifier(patterns []string, mode string) *Classifier {
	c := &Classifier{exact: mode == MatchExact}
	for _, p := range patterns {
		if n := NormalizeHeading(p); n != "" {
			c.patterns = append(c.patterns, n)
		}
	}
	return c
}

// IsBoilerplate classifies a block by its heading. Intro and pseudo-subtitle
// blocks are never boilerplate.
func (c *Classifier) IsBoilerplate(b doctree.RawBlock) bool {
	if b.IsIntro() || b.Subtitle {
		return false
	}
	return c.Match(b.HeadingText)
}

// Match reports whether heading matches any pattern.
func (c *Classifier) Match(heading string) bool {
	h := NormalizeHeading(heading)
	if h == "" {
		return false
	}
	for _, p := range c.patterns {
		if c.exact && h == p {
			return true
		}
		if !c.exact && strings.Contains(h, p) {
			return true
		}
	}
	return false
}

// NormalizeHeading reduces a heading to comparable text: markdown links keep
// their label, inline HTML is dropped, entities are decoded, whitespace is
// collapsed and the result is lower-cased.
func NormalizeHeading(s string) string {
	s = markdownLink.ReplaceAllString(s, "$1")
	if strings.ContainsAny(s, "<&") {
		s = htmlText(s)
	}
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func htmlText(s string) string {
	var buf strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return buf.String()
		case html.TextToken:
			buf.Write(z.Text())
		}
	}
}
