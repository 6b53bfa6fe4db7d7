package parser

import (
	"regexp"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// atxLine matches optional leading whitespace, a run of '#', at least one
// whitespace and some heading text.
var atxLine = regexp.MustCompile(`^\s*(#{1,6})\s+\S`)

// Line is one source line, tagged as a heading or plain text.
type Line struct {
	Text    string // Raw line without the trailing newline
	Level   int    // ATX heading level, 0 for plain lines
	Heading string // Heading text with markers and closing sequence removed
}

// IsHeading reports whether the line is an ATX heading.
func (l Line) IsHeading() bool {
	return l.Level > 0
}

// ScanLines splits src into lines and tags heading lines. Headings are
// recognized line by line, wherever they sit (HTML blocks, indented or lazy
// lines), except inside a fenced code block that has a closing fence.
func ScanLines(src string) []Line {
	raw := strings.Split(src, "\n")
	code := closedFenceLines(src, raw)

	lines := make([]Line, len(raw))
	for i, r := range raw {
		lines[i] = Line{Text: r}
		if code[i] {
			continue
		}
		m := atxLine.FindStringSubmatch(r)
		if m == nil {
			continue
		}
		if t := atxText(strings.TrimSpace(r)); t != "" {
			lines[i].Level = len(m[1])
			lines[i].Heading = t
		}
	}
	return lines
}

// closedFenceLines returns the content lines of the fenced code blocks
// goldmark finds. A fence that runs to the end of its container without a
// closing fence protects nothing, so one stray ``` cannot swallow the rest of
// a page.
func closedFenceLines(src string, raw []string) map[int]bool {
	b := []byte(src)
	starts := lineStarts(b)
	code := map[int]bool{}

	doc := goldmark.New().Parser().Parse(text.NewReader(b))
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fb, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		segs := fb.Lines()
		if segs.Len() == 0 {
			return ast.WalkSkipChildren, nil
		}
		first := lineOf(starts, segs.At(0).Start)
		last := lineOf(starts, segs.At(segs.Len()-1).Start)
		if first < 1 || last+1 >= len(raw) || !closesFence(raw[first-1], raw[last+1]) {
			return ast.WalkSkipChildren, nil
		}
		for i := first; i <= last; i++ {
			code[i] = true
		}
		return ast.WalkSkipChildren, nil
	})
	return code
}

// lineStarts returns the byte offset at which each line begins.
func lineStarts(b []byte) []int {
	starts := []int{0}
	for i, c := range b {
		if c == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func lineOf(starts []int, off int) int {
	return sort.SearchInts(starts, off+1) - 1
}

// fenceRun returns the fence character, its run length and the rest of the
// line, after quote and list markers.
func fenceRun(line string) (byte, int, string) {
	s := strings.TrimLeft(line, " \t>-*+")
	if s == "" || (s[0] != '`' && s[0] != '~') {
		return 0, 0, ""
	}
	n := 0
	for n < len(s) && s[n] == s[0] {
		n++
	}
	return s[0], n, s[n:]
}

// closesFence reports whether closing ends the fence opened by opening.
func closesFence(opening, closing string) bool {
	oc, on, _ := fenceRun(opening)
	cc, cn, rest := fenceRun(closing)
	return on >= 3 && cc == oc && cn >= on && strings.TrimSpace(rest) == ""
}

// atxText strips the opening run of '#', surrounding blanks and an optional
// closing sequence.
func atxText(line string) string {
	s := strings.TrimLeft(line, "#")
	s = strings.TrimSpace(s)
	if t := strings.TrimRight(s, "#"); t != s {
		if t == "" {
			return ""
		}
		if strings.HasSuffix(t, " ") || strings.HasSuffix(t, "\t") {
			s = strings.TrimSpace(t)
		}
	}
	return s
}
