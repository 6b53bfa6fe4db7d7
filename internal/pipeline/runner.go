package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/crawlchunk/internal/doctree"
	"github.com/dgallion1/crawlchunk/internal/emit"
)

// Failure records a document that produced no output because of an error.
type Failure struct {
	FilePath string `json:"file_path"`
	Error    string `json:"error"`
}

// Report summarizes one run.
type Report struct {
	RunID       string               `json:"run_id"`
	Discovered  int                  `json:"discovered"`
	TotalFiles  int                  `json:"total_files"`
	TotalChunks int                  `json:"total_chunks"`
	Files       []doctree.IndexEntry `json:"files"`
	Failures    []Failure            `json:"failures"`
}

// Index converts the report into the aggregate index document.
func (r *Report) Index() emit.Index {
	return emit.Index{
		RunID:       r.RunID,
		TotalFiles:  r.TotalFiles,
		TotalChunks: r.TotalChunks,
		Files:       r.Files,
	}
}

// Outcome is reported once per document as soon as it finishes.
type Outcome struct {
	FilePath string
	Chunks   int
	Err      error
}

// Target is the input and destination of one run.
type Target struct {
	RunID      string
	Inputs     []Input
	Emitter    emit.Emitter
	OnDocument func(Outcome) // Optional, called concurrently
}

// Runner processes the documents of a run with bounded concurrency. Every
// document is numbered from its own chunks only, so the order in which
// workers finish does not affect the output.
type Runner struct {
	proc       *Processor
	workers    int
	docTimeout time.Duration
	log        *slog.Logger
	stats      *DocStats
}

func NewRunner(proc *Processor, workers int, docTimeout time.Duration, stats *DocStats, log *slog.Logger) *Runner {
	if workers <= 0 {
		workers = 1
	}
	return &Runner{
		proc:       proc,
		workers:    workers,
		docTimeout: docTimeout,
		log:        log,
		stats:      stats,
	}
}

// Run processes every input of t. Per-document failures are collected in the
// report; the returned error is non-nil only when ctx is canceled.
func (r *Runner) Run(ctx context.Context, t Target) (*Report, error) {
	log := r.log.With("run_id", t.RunID)

	type result struct {
		entry   *doctree.IndexEntry
		failure *Failure
	}
	results := make([]result, len(t.Inputs))

	var g errgroup.Group
	g.SetLimit(r.workers)
	for i, in := range t.Inputs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			start := time.Now()
			records, err := r.processOne(ctx, in, t.Emitter)
			if r.stats != nil {
				r.stats.Record(time.Since(start), len(records))
			}

			switch {
			case err != nil:
				log.Warn("document skipped", "file", in.Source.FilePath, "error", err)
				results[i].failure = &Failure{FilePath: in.Source.FilePath, Error: err.Error()}
			case len(records) > 0:
				results[i].entry = &doctree.IndexEntry{
					FilePath:   in.Source.FilePath,
					ChunkCount: len(records),
					SourceURL:  records[0].Metadata.SourceURL,
				}
			default:
				log.Debug("document produced no chunks", "file", in.Source.FilePath)
			}
			if t.OnDocument != nil {
				t.OnDocument(Outcome{FilePath: in.Source.FilePath, Chunks: len(records), Err: err})
			}
			return nil
		})
	}
	_ = g.Wait()

	rep := &Report{
		RunID:      t.RunID,
		Discovered: len(t.Inputs),
		Files:      []doctree.IndexEntry{},
		Failures:   []Failure{},
	}
	for _, res := range results {
		if res.entry != nil {
			rep.Files = append(rep.Files, *res.entry)
			rep.TotalFiles++
			rep.TotalChunks += res.entry.ChunkCount
		}
		if res.failure != nil {
			rep.Failures = append(rep.Failures, *res.failure)
		}
	}
	log.Info("run complete",
		"discovered", rep.Discovered,
		"files", rep.TotalFiles,
		"chunks", rep.TotalChunks,
		"failures", len(rep.Failures),
	)
	if err := ctx.Err(); err != nil {
		return rep, fmt.Errorf("run %s interrupted: %w", t.RunID, err)
	}
	return rep, nil
}

// processOne reads, processes and emits a single document under the
// per-document timeout. Documents without chunks are not emitted.
func (r *Runner) processOne(ctx context.Context, in Input, em emit.Emitter) ([]doctree.Record, error) {
	if r.docTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.docTimeout)
		defer cancel()
	}

	raw, err := os.ReadFile(in.AbsPath)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	type processed struct {
		records []doctree.Record
		err     error
	}
	done := make(chan processed, 1)
	go func() {
		recs, err := r.proc.Process(raw, in.Source)
		done <- processed{recs, err}
	}()

	var res processed
	select {
	case res = <-done:
	case <-ctx.Done():
		return nil, fmt.Errorf("process: %w", ctx.Err())
	}
	if res.err != nil {
		return nil, fmt.Errorf("process: %w", res.err)
	}
	if len(res.records) == 0 {
		return nil, nil
	}
	if err := em.Emit(ctx, in.Source.FilePath, res.records); err != nil {
		return nil, fmt.Errorf("emit: %w", err)
	}
	return res.records, nil
}
