package emit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dgallion1/crawlchunk/internal/doctree"
)

// HTTPSink pushes each document's records to an indexing service.
type HTTPSink struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *slog.Logger
	backoff    func(attempt int) time.Duration
}

func NewHTTPSink(baseURL, apiKey string, log *slog.Logger) *HTTPSink {
	return &HTTPSink{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log:     log,
		backoff: Backoff,
	}
}

// DocumentRequest is the body for PUT /documents/{file_path}.
type DocumentRequest struct {
	FilePath string           `json:"file_path"`
	Records  []doctree.Record `json:"records"`
}

// Emit uploads the records, retrying transient failures.
func (s *HTTPSink) Emit(ctx context.Context, filePath string, records []doctree.Record) error {
	body, err := json.Marshal(DocumentRequest{FilePath: filePath, Records: records})
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}

	return withRetry(ctx, s.log, s.backoff, filePath, func() error {
		return s.put(ctx, filePath, body)
	})
}

func (s *HTTPSink) put(ctx context.Context, filePath string, body []byte) error {
	u := s.baseURL + "/documents/" + escapePath(filePath)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, u, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &RetryableError{Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return statusError(filePath, resp.StatusCode, respBody)
}

func escapePath(p string) string {
	segs := strings.Split(p, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}

// Close releases idle connections.
func (s *HTTPSink) Close() {
	s.httpClient.CloseIdleConnections()
}
