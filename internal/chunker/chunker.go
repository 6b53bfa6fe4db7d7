package chunker

import (
	"strings"

	"github.com/dgallion1/crawlchunk/internal/doctree"
)

// Chunker turns heading-delimited blocks into numbered chunks. It holds only
// immutable configuration and is safe for concurrent use.
type Chunker struct {
	cfg        Config
	classifier *Classifier
}

// New validates cfg and prepares the boilerplate classifier.
func New(cfg Config) (*Chunker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Chunker{
		cfg:        cfg,
		classifier: NewClassifier(cfg.BoilerplatePatterns, cfg.MatchMode),
	}, nil
}

// Config returns the configuration the chunker was built with.
func (c *Chunker) Config() Config {
	return c.cfg
}

// ChunkBlocks generates every chunk of a document and then numbers them.
// Numbering waits until fallback windows and merges are known.
func (c *Chunker) ChunkBlocks(blocks []doctree.RawBlock) []doctree.Chunk {
	var chunks []doctree.Chunk
	for _, b := range blocks {
		chunks = append(chunks, c.chunkBlock(b)...)
	}
	if c.cfg.MergeShortWords > 0 {
		chunks = mergeShort(chunks, c.cfg.MergeShortWords)
	}
	return number(chunks)
}

// chunkBlock emits one chunk for the block, or its fallback windows when the
// block is over the token limit. Empty blocks yield nothing.
func (c *Chunker) chunkBlock(b doctree.RawBlock) []doctree.Chunk {
	text := strings.TrimSpace(b.Content)

	heading := b.HeadingText
	if b.IsIntro() || b.Subtitle {
		heading = ""
	}
	if c.cfg.PrependHeading && heading != "" {
		prefix := strings.Repeat("#", b.HeadingLevel) + " " + heading
		if text == "" {
			text = prefix
		} else {
			text = prefix + "\n\n" + text
		}
	}
	if text == "" {
		return nil
	}
	if c.cfg.MinChunkWords > 0 && WordCount(text) < c.cfg.MinChunkWords {
		return nil
	}

	boiler := c.classifier.IsBoilerplate(b)
	if EstimateTokens(text, c.cfg.TokensPerWord) <= c.cfg.TokenLimit {
		return []doctree.Chunk{{Text: text, SectionHeading: heading, IsBoilerplate: boiler}}
	}

	parts := Windows(text, c.cfg.WindowSize, c.cfg.Overlap)
	out := make([]doctree.Chunk, 0, len(parts))
	for _, p := range parts {
		out = append(out, doctree.Chunk{Text: p, SectionHeading: heading, IsBoilerplate: boiler})
	}
	return out
}

// mergeShort folds a chunk into its predecessor when both carry the same
// section heading and the chunk is shorter than threshold words.
func mergeShort(chunks []doctree.Chunk, threshold int) []doctree.Chunk {
	out := make([]doctree.Chunk, 0, len(chunks))
	for _, ch := range chunks {
		if n := len(out); n > 0 {
			prev := &out[n-1]
			ph := NormalizeHeading(prev.SectionHeading)
			if ph != "" && ph == NormalizeHeading(ch.SectionHeading) && WordCount(ch.Text) < threshold {
				prev.Text = strings.TrimRight(prev.Text, " \t\n") + "\n\n" + strings.TrimSpace(ch.Text)
				continue
			}
		}
		out = append(out, ch)
	}
	return out
}

// number drops empty chunks and assigns index, count and word count.
func number(chunks []doctree.Chunk) []doctree.Chunk {
	out := make([]doctree.Chunk, 0, len(chunks))
	for _, ch := range chunks {
		ch.Text = strings.TrimSpace(ch.Text)
		if ch.Text == "" {
			continue
		}
		out = append(out, ch)
	}
	for i := range out {
		out[i].Index = i
		out[i].Count = len(out)
		out[i].WordCount = WordCount(out[i].Text)
	}
	return out
}
