// Command chunkrun chunks every crawled page of one run and writes JSONL
// records next to an optional chunks_index.json.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dgallion1/crawlchunk/internal/config"
	"github.com/dgallion1/crawlchunk/internal/emit"
	"github.com/dgallion1/crawlchunk/internal/pipeline"
)

func main() {
	os.Exit(run())
}

func run() int {
	log := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		return 1
	}

	flag.StringVar(&cfg.RunID, "run-id", cfg.RunID, "run id (subdirectory of the input base)")
	flag.StringVar(&cfg.InputBase, "input", cfg.InputBase, "input base directory")
	flag.StringVar(&cfg.OutputBase, "output", cfg.OutputBase, "output base directory")
	flag.BoolVar(&cfg.WriteIndex, "write-index", cfg.WriteIndex, "write chunks_index.json")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		return 1
	}

	proc, err := pipeline.NewProcessor(cfg.ParserConfig(), cfg.ChunkerConfig())
	if err != nil {
		log.Error("invalid configuration", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var sink emit.Emitter
	if cfg.SinkURL != "" {
		s := emit.NewHTTPSink(cfg.SinkURL, cfg.SinkAPIKey, log)
		defer s.Close()
		sink = s
	}

	stats := pipeline.NewDocStats(24 * time.Hour)
	runner := pipeline.NewRunner(proc, cfg.DocWorkers, cfg.DocTimeout, stats, log)
	worker := pipeline.NewWorker(runner, cfg.InputBase, cfg.OutputBase, sink, log)

	job := pipeline.NewJob("cli", cfg.RunID, cfg.WriteIndex)
	rep, err := worker.Process(ctx, job)
	if err != nil {
		log.Error("run failed", "run_id", cfg.RunID, "error", err)
		return 1
	}

	docs := stats.Snapshot()
	log.Info("summary",
		"run_id", rep.RunID,
		"status", job.Snapshot().Status,
		"discovered", rep.Discovered,
		"files", rep.TotalFiles,
		"chunks", rep.TotalChunks,
		"failures", len(rep.Failures),
		"avg_chunks", docs.AvgChunks,
		"p95_ms", docs.P95Ms,
	)
	return 0
}
