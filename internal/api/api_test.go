package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/crawlchunk/internal/config"
	"github.com/dgallion1/crawlchunk/internal/doctree"
	"github.com/dgallion1/crawlchunk/internal/pipeline"
)

const petraDoc = `# Source URL
https://www.desy.de/research/petra.html

# PETRA III

Intro paragraph about the storage ring.

## Experiments

Beamlines and end stations.

## External Links

- https://example.org
`

type testEnv struct {
	srv  *Server
	orch *pipeline.Orchestrator
	cfg  config.Config
}

func newTestEnv(t *testing.T, apiKey string) *testEnv {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.APIKey = apiKey
	cfg.InputBase = t.TempDir()
	cfg.OutputBase = t.TempDir()
	require.NoError(t, cfg.Validate())

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	proc, err := pipeline.NewProcessor(cfg.ParserConfig(), cfg.ChunkerConfig())
	require.NoError(t, err)
	stats := pipeline.NewDocStats(time.Hour)
	runner := pipeline.NewRunner(proc, cfg.DocWorkers, cfg.DocTimeout, stats, log)
	worker := pipeline.NewWorker(runner, cfg.InputBase, cfg.OutputBase, nil, log)
	orch := pipeline.NewOrchestrator(worker, 1, 4, time.Hour, log)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)

	return &testEnv{
		srv:  NewServer(orch, proc, stats, log, cfg),
		orch: orch,
		cfg:  cfg,
	}
}

func (e *testEnv) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t, "secret")
	rec := e.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAuth(t *testing.T) {
	e := newTestEnv(t, "secret")

	rec := e.do(t, http.MethodGet, "/api/stats", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/stats", "", "wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/stats", "", "secret")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthDisabledWithoutKey(t *testing.T) {
	e := newTestEnv(t, "")
	rec := e.do(t, http.MethodGet, "/api/stats", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestChunk(t *testing.T) {
	e := newTestEnv(t, "")
	body, err := json.Marshal(map[string]any{"markdown": petraDoc, "file_path": "depth_2/petra.md"})
	require.NoError(t, err)

	rec := e.do(t, http.MethodPost, "/api/chunk", string(body), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Chunks []doctree.Record `json:"chunks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Chunks, 3)
	assert.Equal(t, 2, resp.Chunks[0].Metadata.Depth)
	assert.Equal(t, "depth_2/petra.md", resp.Chunks[0].Metadata.FilePath)
	assert.True(t, resp.Chunks[2].Metadata.IsBoilerplate)

	var stats struct {
		Documents pipeline.StatsSnapshot `json:"documents"`
	}
	rec = e.do(t, http.MethodGet, "/api/stats", "", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.Documents.Count)
	assert.Equal(t, 3, stats.Documents.Chunks)
}

func TestChunk_DepthOverride(t *testing.T) {
	e := newTestEnv(t, "")
	body, _ := json.Marshal(map[string]any{"markdown": petraDoc, "depth": 5})
	rec := e.do(t, http.MethodPost, "/api/chunk", string(body), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Chunks []doctree.Record `json:"chunks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Chunks)
	assert.Equal(t, 5, resp.Chunks[0].Metadata.Depth)
	assert.Equal(t, "", resp.Chunks[0].Metadata.FilePath)
}

func TestChunk_BadRequests(t *testing.T) {
	e := newTestEnv(t, "")
	tests := []struct {
		name string
		body string
	}{
		{"not json", "{"},
		{"missing markdown", `{"file_path":"a.md"}`},
		{"negative depth", `{"markdown":"text","depth":-1}`},
		{"wrong type", `{"markdown":42}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(t, http.MethodPost, "/api/chunk", tt.body, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestChunk_EmptyResultIsArray(t *testing.T) {
	e := newTestEnv(t, "")
	rec := e.do(t, http.MethodPost, "/api/chunk", `{"markdown":"# Source URL\nhttps://x.org\n"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"chunks":[]}`, rec.Body.String())
}

func TestRuns_SubmitAndPoll(t *testing.T) {
	e := newTestEnv(t, "")
	p := filepath.Join(e.cfg.InputBase, "7", "depth_1", "petra.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(petraDoc), 0o644))

	rec := e.do(t, http.MethodPost, "/api/runs", `{"run_id":"7","write_index":true}`, "")
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	var submit struct {
		JobID   string `json:"job_id"`
		RunID   string `json:"run_id"`
		PollURL string `json:"poll_url"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &submit))
	assert.Equal(t, "7", submit.RunID)
	require.NotEmpty(t, submit.JobID)

	var status struct {
		Status string           `json:"status"`
		Report *pipeline.Report `json:"report"`
	}
	require.Eventually(t, func() bool {
		rec := e.do(t, http.MethodGet, submit.PollURL, "", "")
		if rec.Code != http.StatusOK {
			return false
		}
		_ = json.Unmarshal(rec.Body.Bytes(), &status)
		return status.Status == string(pipeline.StatusCompleted)
	}, 5*time.Second, 10*time.Millisecond)

	require.NotNil(t, status.Report)
	assert.Equal(t, 3, status.Report.TotalChunks)
	assert.FileExists(t, filepath.Join(e.cfg.OutputBase, "7", "depth_1", "petra.md.jsonl"))
	assert.FileExists(t, filepath.Join(e.cfg.OutputBase, "7", "chunks_index.json"))
}

func TestRuns_InvalidRunID(t *testing.T) {
	e := newTestEnv(t, "")
	rec := e.do(t, http.MethodPost, "/api/runs", `{"run_id":"../x"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRuns_StatusNotFound(t *testing.T) {
	e := newTestEnv(t, "")
	rec := e.do(t, http.MethodGet, "/api/runs/nope/status", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
