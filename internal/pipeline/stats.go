package pipeline

import (
	"slices"
	"sync"
	"time"
)

// docSample is one processed document: how long it took and how many chunks
// it produced.
type docSample struct {
	at     time.Time
	ms     int64
	chunks int
}

// StatsSnapshot aggregates the documents processed inside the window.
type StatsSnapshot struct {
	Count     int     `json:"count"`
	Chunks    int     `json:"chunks"`
	AvgChunks float64 `json:"avg_chunks"`
	MinMs     int64   `json:"min_ms"`
	MaxMs     int64   `json:"max_ms"`
	AvgMs     float64 `json:"avg_ms"`
	P50Ms     float64 `json:"p50_ms"`
	P95Ms     float64 `json:"p95_ms"`
	P99Ms     float64 `json:"p99_ms"`
}

// DocStats keeps a rolling window of per-document samples shared by batch
// runs and the synchronous chunk endpoint. Safe for concurrent use.
type DocStats struct {
	mu     sync.Mutex
	window time.Duration
	buf    []docSample
	now    func() time.Time
}

func NewDocStats(window time.Duration) *DocStats {
	if window <= 0 {
		window = time.Hour
	}
	return &DocStats{window: window, now: time.Now}
}

// Record adds one document. Failed documents are recorded with zero chunks.
func (s *DocStats) Record(d time.Duration, chunks int) {
	smp := docSample{ms: max(d.Milliseconds(), 0), chunks: max(chunks, 0)}

	s.mu.Lock()
	defer s.mu.Unlock()
	smp.at = s.now()
	s.expire(smp.at)
	s.buf = append(s.buf, smp)
}

func (s *DocStats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	s.expire(s.now())
	samples := slices.Clone(s.buf)
	s.mu.Unlock()

	n := len(samples)
	if n == 0 {
		return StatsSnapshot{}
	}
	ms := make([]int64, n)
	var totalMs int64
	snap := StatsSnapshot{Count: n}
	for i, smp := range samples {
		ms[i] = smp.ms
		totalMs += smp.ms
		snap.Chunks += smp.chunks
	}
	slices.Sort(ms)

	snap.AvgChunks = float64(snap.Chunks) / float64(n)
	snap.MinMs, snap.MaxMs = ms[0], ms[n-1]
	snap.AvgMs = float64(totalMs) / float64(n)
	snap.P50Ms = quantile(ms, 0.50)
	snap.P95Ms = quantile(ms, 0.95)
	snap.P99Ms = quantile(ms, 0.99)
	return snap
}

// expire drops samples older than the window. Samples arrive in time order,
// so the expired ones form a prefix.
func (s *DocStats) expire(now time.Time) {
	cutoff := now.Add(-s.window)
	i, _ := slices.BinarySearchFunc(s.buf, cutoff, func(smp docSample, t time.Time) int {
		return smp.at.Compare(t)
	})
	s.buf = slices.Delete(s.buf, 0, i)
}

// quantile interpolates linearly between the two closest ranks of sorted.
func quantile(sorted []int64, q float64) float64 {
	pos := float64(len(sorted)-1) * q
	lo := int(pos)
	if lo >= len(sorted)-1 {
		return float64(sorted[len(sorted)-1])
	}
	frac := pos - float64(lo)
	return float64(sorted[lo]) + float64(sorted[lo+1]-sorted[lo])*frac
}
