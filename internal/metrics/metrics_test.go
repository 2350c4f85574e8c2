package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	apperr "unigate/pkg/errors"
)

func TestRecordRequest(t *testing.T) {
	m := &Metrics{}

	m.RecordRequest(200)
	m.RecordRequest(404)
	m.RecordRequest(500)

	s := m.GetSnapshot()
	assert.Equal(t, int64(3), s.RequestsTotal)
	assert.Equal(t, int64(1), s.RequestErrors)
}

func TestRecordUnlock(t *testing.T) {
	m := &Metrics{}

	m.RecordUnlock(nil)
	m.RecordUnlock(apperr.ErrInvalidCredential)

	s := m.GetSnapshot()
	assert.Equal(t, int64(2), s.UnlocksTotal)
	assert.Equal(t, int64(1), s.UnlockFailures)
}

func TestRecordSubmission(t *testing.T) {
	m := &Metrics{}

	m.RecordSubmission(100 * time.Millisecond)
	m.RecordSubmission(200 * time.Millisecond)

	s := m.GetSnapshot()
	assert.Equal(t, int64(2), s.SubmissionsTotal)
	assert.Equal(t, 150*time.Millisecond, s.AvgLedgerLatency)
}

func TestCacheCounters(t *testing.T) {
	m := &Metrics{}

	m.RecordCacheHit()
	m.RecordCacheMiss()
	m.RecordCacheMiss()

	s := m.GetSnapshot()
	assert.Equal(t, int64(1), s.CacheHits)
	assert.Equal(t, int64(2), s.CacheMisses)
}

func TestReset(t *testing.T) {
	m := &Metrics{}
	m.RecordRequest(500)
	m.RecordUnlock(nil)

	m.Reset()
	assert.Equal(t, Snapshot{}, m.GetSnapshot())
}
