package emit

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgallion1/crawlchunk/internal/doctree"
)

// Emitter writes the records of one document. Implementations must not leave
// partial output behind when they return an error.
type Emitter interface {
	Emit(ctx context.Context, filePath string, records []doctree.Record) error
}

// Remover is implemented by emitters that can withdraw a document they
// already wrote.
type Remover interface {
	Remove(filePath string) error
}

// Multi hands a document to several emitters in order. The first failure
// stops the chain and the document is withdrawn from every earlier emitter
// that is a Remover, so a failed document leaves no output behind.
type Multi []Emitter

func (m Multi) Emit(ctx context.Context, filePath string, records []doctree.Record) error {
	for i, e := range m {
		err := e.Emit(ctx, filePath, records)
		if err == nil {
			continue
		}
		errs := []error{err}
		for _, prev := range m[:i] {
			if r, ok := prev.(Remover); ok {
				if rerr := r.Remove(filePath); rerr != nil {
					errs = append(errs, fmt.Errorf("roll back %s: %w", filePath, rerr))
				}
			}
		}
		return errors.Join(errs...)
	}
	return nil
}

// Index is the aggregate summary written next to a run's output.
type Index struct {
	RunID       string               `json:"run_id"`
	TotalFiles  int                  `json:"total_files"`
	TotalChunks int                  `json:"total_chunks"`
	Files       []doctree.IndexEntry `json:"files"`
}
