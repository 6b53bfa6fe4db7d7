package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dgallion1/crawlchunk/internal/api"
	"github.com/dgallion1/crawlchunk/internal/config"
	"github.com/dgallion1/crawlchunk/internal/emit"
	"github.com/dgallion1/crawlchunk/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// A missing .env is fine; the environment wins over it.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize pipeline.
	proc, err := pipeline.NewProcessor(cfg.ParserConfig(), cfg.ChunkerConfig())
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	stats := pipeline.NewDocStats(time.Hour)
	runner := pipeline.NewRunner(proc, cfg.DocWorkers, cfg.DocTimeout, stats, log)

	var sink *emit.HTTPSink
	var sinkEmitter emit.Emitter
	if cfg.SinkURL != "" {
		sink = emit.NewHTTPSink(cfg.SinkURL, cfg.SinkAPIKey, log)
		sinkEmitter = sink
	}
	worker := pipeline.NewWorker(runner, cfg.InputBase, cfg.OutputBase, sinkEmitter, log)
	orch := pipeline.NewOrchestrator(worker, cfg.WorkerCount, cfg.MaxQueueSize, cfg.JobTTL, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, proc, stats, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
		if sink != nil {
			sink.Close()
		}
	}()

	log.Info("starting crawlchunk", "port", cfg.Port, "input", cfg.InputBase, "output", cfg.OutputBase)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
