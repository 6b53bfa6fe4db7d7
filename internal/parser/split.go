package parser

import (
	"strings"

	"github.com/dgallion1/crawlchunk/internal/doctree"
)

// Split partitions the document body into heading-delimited blocks and marks
// the block opened by a pseudo-subtitle, if any.
func Split(doc doctree.Document, cfg Config) []doctree.RawBlock {
	return splitLines(ScanLines(doc.Body), doc.SubtitleLine, cfg)
}

// SplitBody partitions body at the configured heading levels.
func SplitBody(body string, cfg Config) []doctree.RawBlock {
	return splitLines(ScanLines(body), 0, cfg)
}

func splitLines(lines []Line, subtitleLine int, cfg Config) []doctree.RawBlock {
	var blocks []doctree.RawBlock
	var current doctree.RawBlock
	var buf []string

	flush := func() {
		current.Content = strings.Join(buf, "\n")
		buf = buf[:0]
		// A blank intro carries nothing; headed blocks are kept even when
		// empty and filtered later with the other empty chunks.
		if current.IsIntro() && strings.TrimSpace(current.Content) == "" {
			return
		}
		blocks = append(blocks, current)
	}

	for i, l := range lines {
		if l.IsHeading() && cfg.splitsAt(l.Level) {
			flush()
			current = doctree.RawBlock{
				HeadingText:  l.Heading,
				HeadingLevel: l.Level,
				Subtitle:     subtitleLine > 0 && i+1 == subtitleLine,
			}
			continue
		}
		buf = append(buf, l.Text)
	}
	flush()

	return blocks
}
