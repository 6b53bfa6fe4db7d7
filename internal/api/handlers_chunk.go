package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dgallion1/crawlchunk/internal/chunker"
	"github.com/dgallion1/crawlchunk/internal/doctree"
)

type chunkRequest struct {
	Markdown string `json:"markdown"`
	FilePath string `json:"file_path"`
	Depth    *int   `json:"depth"`
}

// handleChunk chunks a single Markdown document without writing output.
func (s *Server) handleChunk(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)

	var req chunkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			jsonError(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Markdown == "" {
		jsonError(w, "markdown is required", http.StatusBadRequest)
		return
	}

	src := chunker.SourceFromPath(req.FilePath)
	if req.Depth != nil {
		if *req.Depth < 0 {
			jsonError(w, "depth must not be negative", http.StatusBadRequest)
			return
		}
		src.Depth = *req.Depth
	}

	start := time.Now()
	records, err := s.processor.Process([]byte(req.Markdown), src)
	if s.stats != nil {
		s.stats.Record(time.Since(start), len(records))
	}
	if err != nil {
		jsonError(w, "chunking failed: "+err.Error(), http.StatusBadRequest)
		return
	}
	if records == nil {
		records = []doctree.Record{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"chunks": records})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
