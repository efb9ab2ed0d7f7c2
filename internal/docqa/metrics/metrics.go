// Package metrics collects business metrics for the QA service.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics tracks query, upload and LLM counters for the service.
type Metrics struct {
	queriesTotal  uint64
	cacheHits     uint64
	cacheMisses   uint64
	queryErrors   uint64

	uploadsTotal  uint64
	deletesTotal  uint64
	extractErrors uint64

	llmCallsTotal uint64
	llmErrors     uint64
	llmFallbacks  uint64
	llmDuration   float64

	startTime  time.Time
	durationMu sync.Mutex
}

var (
	global *Metrics
	once   sync.Once
)

// Get returns the global metrics instance.
func Get() *Metrics {
	once.Do(func() {
		global = &Metrics{startTime: time.Now()}
	})
	return global
}

// RecordQuery records one query with its cache outcome.
func (m *Metrics) RecordQuery(cacheHit bool, err error) {
	atomic.AddUint64(&m.queriesTotal, 1)
	if err != nil {
		atomic.AddUint64(&m.queryErrors, 1)
		return
	}
	if cacheHit {
		atomic.AddUint64(&m.cacheHits, 1)
	} else {
		atomic.AddUint64(&m.cacheMisses, 1)
	}
}

// RecordUpload records a completed upload.
func (m *Metrics) RecordUpload() {
	atomic.AddUint64(&m.uploadsTotal, 1)
}

// RecordDelete records a completed delete.
func (m *Metrics) RecordDelete() {
	atomic.AddUint64(&m.deletesTotal, 1)
}

// RecordExtractError records a failed PDF text extraction.
func (m *Metrics) RecordExtractError() {
	atomic.AddUint64(&m.extractErrors, 1)
}

// RecordLLMCall records one model call. Fallback answers are counted
// separately so mock responses are visible in the stats.
func (m *Metrics) RecordLLMCall(duration time.Duration, err error) {
	atomic.AddUint64(&m.llmCallsTotal, 1)
	if err != nil {
		atomic.AddUint64(&m.llmErrors, 1)
		return
	}

	m.durationMu.Lock()
	m.llmDuration += duration.Seconds()
	m.durationMu.Unlock()
}

// RecordLLMFallback records a mock answer served in place of a model
// call.
func (m *Metrics) RecordLLMFallback() {
	atomic.AddUint64(&m.llmFallbacks, 1)
}

// Stats returns the current counters for the stats endpoint.
func (m *Metrics) Stats() map[string]interface{} {
	m.durationMu.Lock()
	llmDuration := m.llmDuration
	startTime := m.startTime
	m.durationMu.Unlock()

	cacheHits := atomic.LoadUint64(&m.cacheHits)
	cacheMisses := atomic.LoadUint64(&m.cacheMisses)
	cacheTotal := cacheHits + cacheMisses
	cacheHitRate := 0.0
	if cacheTotal > 0 {
		cacheHitRate = float64(cacheHits) / float64(cacheTotal)
	}

	llmTotal := atomic.LoadUint64(&m.llmCallsTotal)
	avgLLMDuration := 0.0
	llmOK := llmTotal - atomic.LoadUint64(&m.llmErrors)
	if llmOK > 0 {
		avgLLMDuration = llmDuration / float64(llmOK)
	}

	return map[string]interface{}{
		"queries": map[string]interface{}{
			"total":          atomic.LoadUint64(&m.queriesTotal),
			"cache_hits":     cacheHits,
			"cache_misses":   cacheMisses,
			"cache_hit_rate": cacheHitRate,
			"errors":         atomic.LoadUint64(&m.queryErrors),
		},
		"documents": map[string]interface{}{
			"uploads":        atomic.LoadUint64(&m.uploadsTotal),
			"deletes":        atomic.LoadUint64(&m.deletesTotal),
			"extract_errors": atomic.LoadUint64(&m.extractErrors),
		},
		"llm": map[string]interface{}{
			"calls_total":         llmTotal,
			"total_duration_secs": llmDuration,
			"avg_duration_secs":   avgLLMDuration,
			"errors":              atomic.LoadUint64(&m.llmErrors),
			"fallbacks":           atomic.LoadUint64(&m.llmFallbacks),
		},
		"uptime_seconds": time.Since(startTime).Seconds(),
	}
}

// Reset clears all counters. Intended for tests.
func (m *Metrics) Reset() {
	atomic.StoreUint64(&m.queriesTotal, 0)
	atomic.StoreUint64(&m.cacheHits, 0)
	atomic.StoreUint64(&m.cacheMisses, 0)
	atomic.StoreUint64(&m.queryErrors, 0)
	atomic.StoreUint64(&m.uploadsTotal, 0)
	atomic.StoreUint64(&m.deletesTotal, 0)
	atomic.StoreUint64(&m.extractErrors, 0)
	atomic.StoreUint64(&m.llmCallsTotal, 0)
	atomic.StoreUint64(&m.llmErrors, 0)
	atomic.StoreUint64(&m.llmFallbacks, 0)

	m.durationMu.Lock()
	m.llmDuration = 0
	m.startTime = time.Now()
	m.durationMu.Unlock()
}
