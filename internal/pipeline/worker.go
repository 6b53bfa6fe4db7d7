package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dgallion1/crawlchunk/internal/emit"
)

var ErrInvalidRunID = errors.New("invalid run id")

// ValidRunID reports whether id names a single directory below the input and
// output bases.
func ValidRunID(id string) bool {
	if id == "" || id == "." || id == ".." {
		return false
	}
	return !strings.ContainsAny(id, `/\`)
}

// Worker executes a run job: discover, chunk and emit, then write the index.
type Worker struct {
	runner     *Runner
	inputBase  string
	outputBase string
	sink       emit.Emitter // Optional
	log        *slog.Logger
}

func NewWorker(runner *Runner, inputBase, outputBase string, sink emit.Emitter, log *slog.Logger) *Worker {
	return &Worker{
		runner:     runner,
		inputBase:  inputBase,
		outputBase: outputBase,
		sink:       sink,
		log:        log,
	}
}

// Process runs the full pipeline for a job. The job status reflects the
// outcome; the returned error is set when the run could not complete.
func (w *Worker) Process(ctx context.Context, job *Job) (*Report, error) {
	log := w.log.With("job_id", job.ID, "run_id", job.RunID)

	if !ValidRunID(job.RunID) {
		return nil, w.fail(job, "queued", fmt.Errorf("%w: %q", ErrInvalidRunID, job.RunID))
	}

	// Phase 1: Discover
	job.SetStatus(StatusDiscovering, "discovering")
	runDir := filepath.Join(w.inputBase, job.RunID)
	inputs, err := Discover(runDir)
	if err != nil {
		log.Error("discovery failed", "error", err)
		return nil, w.fail(job, "discovering", err)
	}
	job.SetTotalDocuments(len(inputs))
	log.Info("discovered documents", "documents", len(inputs))

	// Phase 2: Chunk and emit
	job.SetStatus(StatusChunking, "chunking")
	files := emit.NewFileEmitter(filepath.Join(w.outputBase, job.RunID))
	var em emit.Emitter = files
	if w.sink != nil {
		em = emit.Multi{files, w.sink}
	}
	rep, runErr := w.runner.Run(ctx, Target{
		RunID:      job.RunID,
		Inputs:     inputs,
		Emitter:    em,
		OnDocument: job.RecordOutcome,
	})
	job.SetReport(rep)
	for _, f := range rep.Failures {
		job.AddError(fmt.Sprintf("%s: %s", f.FilePath, f.Error))
	}
	if runErr != nil {
		log.Error("run interrupted", "error", runErr)
		return rep, w.fail(job, "chunking", runErr)
	}

	// Phase 3: Index
	if job.WriteIndex {
		job.SetStatus(StatusWriting, "writing index")
		p, err := files.WriteIndex(rep.Index())
		if err != nil {
			log.Error("index write failed", "error", err)
			return rep, w.fail(job, "writing index", err)
		}
		log.Info("wrote index", "path", p)
	}

	switch {
	case len(rep.Failures) > 0 && rep.TotalFiles > 0:
		job.SetStatus(StatusPartial, "done")
	case len(rep.Failures) > 0:
		job.SetStatus(StatusFailed, "chunking")
	default:
		job.SetStatus(StatusCompleted, "done")
	}
	return rep, nil
}

func (w *Worker) fail(job *Job, phase string, err error) error {
	job.AddError(err.Error())
	job.SetStatus(StatusFailed, phase)
	return err
}
