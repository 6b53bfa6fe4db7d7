package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dgallion1/crawlchunk/internal/pipeline"
)

type runRequest struct {
	RunID      string `json:"run_id"`
	WriteIndex *bool  `json:"write_index"`
}

// handleSubmitRun queues a chunking run over <InputBase>/<run_id>.
func (s *Server) handleSubmitRun(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)

	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.RunID == "" {
		req.RunID = s.cfg.RunID
	}
	if !pipeline.ValidRunID(req.RunID) {
		jsonError(w, fmt.Sprintf("invalid run_id %q", req.RunID), http.StatusBadRequest)
		return
	}
	writeIndex := s.cfg.WriteIndex
	if req.WriteIndex != nil {
		writeIndex = *req.WriteIndex
	}

	job := pipeline.NewJob(uuid.NewString(), req.RunID, writeIndex)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	snap := job.Snapshot()
	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   snap.ID,
		"run_id":   snap.RunID,
		"status":   snap.Status,
		"poll_url": fmt.Sprintf("/api/runs/%s/status", snap.ID),
	})
}

func (s *Server) handleRunStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	resp := map[string]any{
		"job_id":   snap.ID,
		"run_id":   snap.RunID,
		"status":   snap.Status,
		"phase":    snap.Phase,
		"progress": snap.Progress,
	}
	if rep := job.Report(); rep != nil {
		resp["report"] = rep
	}
	writeJSON(w, http.StatusOK, resp)
}
