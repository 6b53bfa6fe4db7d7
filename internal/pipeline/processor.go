package pipeline

import (
	"errors"
	"fmt"

	"github.com/dgallion1/crawlchunk/internal/chunker"
	"github.com/dgallion1/crawlchunk/internal/doctree"
	"github.com/dgallion1/crawlchunk/internal/parser"
)

// ErrPanic marks a document whose processing panicked.
var ErrPanic = errors.New("panic while processing document")

// Processor turns one Markdown document into emitted records. It holds only
// immutable configuration and is safe for concurrent use.
type Processor struct {
	parserCfg parser.Config
	chunker   *chunker.Chunker
}

// NewProcessor validates both configurations up front so that no document is
// processed with a broken setup.
func NewProcessor(pcfg parser.Config, ccfg chunker.Config) (*Processor, error) {
	if err := pcfg.Validate(); err != nil {
		return nil, fmt.Errorf("parser config: %w", err)
	}
	c, err := chunker.New(ccfg)
	if err != nil {
		return nil, fmt.Errorf("chunker config: %w", err)
	}
	return &Processor{parserCfg: pcfg, chunker: c}, nil
}

// Process parses, splits, chunks and assembles one document. A document with
// no usable text yields no records and no error.
func (p *Processor) Process(raw []byte, src chunker.Source) (records []doctree.Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			records = nil
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()

	doc, err := parser.ParseDocument(string(raw), p.parserCfg)
	if err != nil {
		return nil, err
	}
	blocks := parser.Split(doc, p.parserCfg)
	chunks := p.chunker.ChunkBlocks(blocks)
	return p.chunker.Assemble(doc, chunks, src), nil
}
