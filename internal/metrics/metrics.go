// Package metrics provides application-level metrics collection.
// This is a lightweight metrics foundation using atomic counters.
// For production observability, consider integrating with Prometheus or similar.
package metrics

import (
	"sync/atomic"
	"time"
)

// Metrics holds application metrics using atomic counters for thread safety.
type Metrics struct {
	// HTTP metrics
	requestsTotal atomic.Int64
	requestErrors atomic.Int64

	// Custody metrics
	unlocksTotal   atomic.Int64
	unlockFailures atomic.Int64

	// Ledger metrics
	submissionsTotal atomic.Int64
	ledgerLatency    atomic.Int64

	// Cache metrics
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
}

// Global is the global metrics instance.
//
//nolint:gochecknoglobals // Intentional global for metrics access
var Global = &Metrics{}

// RecordRequest records an HTTP request and whether it failed.
func (m *Metrics) RecordRequest(status int) {
	m.requestsTotal.Add(1)
	if status >= 500 {
		m.requestErrors.Add(1)
	}
}

// RecordUnlock records a wallet unlock attempt.
func (m *Metrics) RecordUnlock(err error) {
	m.unlocksTotal.Add(1)
	if err != nil {
		m.unlockFailures.Add(1)
	}
}

// RecordSubmission records a ledger submission and its duration.
func (m *Metrics) RecordSubmission(duration time.Duration) {
	m.submissionsTotal.Add(1)
	m.ledgerLatency.Add(duration.Nanoseconds())
}

// RecordCacheHit records a cache hit.
func (m *Metrics) RecordCacheHit() {
	m.cacheHits.Add(1)
}

// RecordCacheMiss records a cache miss.
func (m *Metrics) RecordCacheMiss() {
	m.cacheMisses.Add(1)
}

// Snapshot is a point-in-time view of all counters.
type Snapshot struct {
	RequestsTotal    int64 `json:"requests_total"`
	RequestErrors    int64 `json:"request_errors"`
	UnlocksTotal     int64 `json:"unlocks_total"`
	UnlockFailures   int64 `json:"unlock_failures"`
	SubmissionsTotal int64 `json:"submissions_total"`
	CacheHits        int64 `json:"cache_hits"`
	CacheMisses      int64 `json:"cache_misses"`

	// AvgLedgerLatency is the mean submission latency.
	AvgLedgerLatency time.Duration `json:"avg_ledger_latency_ns"`
}

// GetSnapshot returns the current counter values.
func (m *Metrics) GetSnapshot() Snapshot {
	s := Snapshot{
		RequestsTotal:    m.requestsTotal.Load(),
		RequestErrors:    m.requestErrors.Load(),
		UnlocksTotal:     m.unlocksTotal.Load(),
		UnlockFailures:   m.unlockFailures.Load(),
		SubmissionsTotal: m.submissionsTotal.Load(),
		CacheHits:        m.cacheHits.Load(),
		CacheMisses:      m.cacheMisses.Load(),
	}
	if s.SubmissionsTotal > 0 {
		s.AvgLedgerLatency = time.Duration(m.ledgerLatency.Load() / s.SubmissionsTotal)
	}
	return s
}

// Reset zeroes all counters. Intended for tests.
func (m *Metrics) Reset() {
	m.requestsTotal.Store(0)
	m.requestErrors.Store(0)
	m.unlocksTotal.Store(0)
	m.unlockFailures.Store(0)
	m.submissionsTotal.Store(0)
	m.ledgerLatency.Store(0)
	m.cacheHits.Store(0)
	m.cacheMisses.Store(0)
}
