package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"
)

// Metrics stores application metrics
type Metrics struct {
	requestsTotal      atomic.Uint64
	requestsInProgress atomic.Int64
	requestsSuccess    atomic.Uint64
	requestsFailed     atomic.Uint64
	analysesTotal      atomic.Uint64
	analysesFailed     atomic.Uint64
	searchesTotal      atomic.Uint64
	startTime          time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// IncrementAnalyses counts a saved analysis
func (m *Metrics) IncrementAnalyses() { m.analysesTotal.Add(1) }

// IncrementAnalysesFailed counts a model reply that could not be parsed
func (m *Metrics) IncrementAnalysesFailed() { m.analysesFailed.Add(1) }

// IncrementSearches counts a served search
func (m *Metrics) IncrementSearches() { m.searchesTotal.Add(1) }

// Snapshot returns current metrics
func (m *Metrics) Snapshot() map[string]any {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	return map[string]any{
		"requests_total":       m.requestsTotal.Load(),
		"requests_in_progress": m.requestsInProgress.Load(),
		"requests_success":     m.requestsSuccess.Load(),
		"requests_failed":      m.requestsFailed.Load(),
		"analyses_total":       m.analysesTotal.Load(),
		"analyses_failed":      m.analysesFailed.Load(),
		"searches_total":       m.searchesTotal.Load(),
		"uptime_seconds":       time.Since(m.startTime).Seconds(),
		"memory": map[string]any{
			"alloc_bytes":       ms.Alloc,
			"total_alloc_bytes": ms.TotalAlloc,
			"sys_bytes":         ms.Sys,
			"num_gc":            ms.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}
}

// Middleware tracks request metrics
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.requestsTotal.Add(1)
		m.requestsInProgress.Add(1)
		defer m.requestsInProgress.Add(-1)

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}
		next.ServeHTTP(wrapped, r)

		if wrapped.statusCode >= 200 && wrapped.statusCode < 400 {
			m.requestsSuccess.Add(1)
		} else {
			m.requestsFailed.Add(1)
		}
	})
}

// Handler returns metrics as JSON
func (m *Metrics) Handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(m.Snapshot())
}
