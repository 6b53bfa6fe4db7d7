package parser

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/crawlchunk/internal/doctree"
)

// ErrInvalidEncoding is returned for documents that are not UTF-8.
var ErrInvalidEncoding = errors.New("document is not valid UTF-8")

// ParseDocument extracts the page header (source URL, title, subtitle) and
// returns the remaining body. Missing header parts are left nil.
func ParseDocument(src string, cfg Config) (doctree.Document, error) {
	if !utf8.ValidString(src) {
		return doctree.Document{}, ErrInvalidEncoding
	}
	src = strings.ReplaceAll(src, "\r\n", "\n")
	lines := ScanLines(src)

	var doc doctree.Document
	bodyStart := 0
	if marker := findSourceMarker(lines); marker >= 0 {
		bodyStart = marker + 1
		for i := marker + 1; i < len(lines); i++ {
			if lines[i].IsHeading() {
				break
			}
			if s := strings.TrimSpace(lines[i].Text); s != "" {
				doc.SourceURL = &s
				bodyStart = i + 1
				break
			}
		}
	}

	dropped := map[int]bool{}
	title := -1
	for i := bodyStart; i < len(lines); i++ {
		if lines[i].Level == 1 && !isSourceMarker(lines[i]) {
			title = i
			break
		}
	}

	subtitleLine := -1
	if title >= 0 {
		t := lines[title].Heading
		doc.PageTitle = &t
		dropped[title] = true

		for i := title + 1; i < len(lines); i++ {
			if lines[i].Level == 2 {
				break
			}
			if lines[i].Level == 1 && !isSourceMarker(lines[i]) {
				s := lines[i].Heading
				doc.PageSubtitle = &s
				dropped[i] = true
				break
			}
		}
		if doc.PageSubtitle == nil {
			if i := pseudoSubtitle(lines, title, cfg); i >= 0 {
				s := lines[i].Heading
				doc.PageSubtitle = &s
				subtitleLine = i
			}
		}
	}

	body := make([]string, 0, len(lines)-bodyStart)
	for i := bodyStart; i < len(lines); i++ {
		if dropped[i] {
			continue
		}
		if i == subtitleLine {
			doc.SubtitleLine = len(body) + 1
		}
		body = append(body, lines[i].Text)
	}
	doc.Body = strings.Join(body, "\n")

	return doc, nil
}

func findSourceMarker(lines []Line) int {
	for i, l := range lines {
		if isSourceMarker(l) {
			return i
		}
	}
	return -1
}

func isSourceMarker(l Line) bool {
	return l.Level == 1 && strings.EqualFold(strings.Join(strings.Fields(l.Heading), " "), "source url")
}

// pseudoSubtitle finds a short level-2 heading separated from the title only
// by blank lines and followed by more content. Returns -1 when there is none.
func pseudoSubtitle(lines []Line, title int, cfg Config) int {
	for i := title + 1; i < len(lines) && i-title <= cfg.SubtitleMaxDistance; i++ {
		l := lines[i]
		if !l.IsHeading() {
			if strings.TrimSpace(l.Text) != "" {
				return -1
			}
			continue
		}
		if l.Level != 2 || len(strings.Fields(l.Heading)) > cfg.SubtitleMaxWords {
			return -1
		}
		for j := i + 1; j < len(lines); j++ {
			if strings.TrimSpace(lines[j].Text) != "" {
				return i
			}
		}
		return -1
	}
	return -1
}
