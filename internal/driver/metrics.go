package driver

import (
	"fmt"
	"sync/atomic"
)

// Metrics tracks counters for a batch run.
type Metrics struct {
	requests    atomic.Int64 // mismatches diagnosed
	candidates  atomic.Int64 // fix candidates emitted
	failures    atomic.Int64 // files that failed to load or parse
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
}

// Requests returns the number of mismatches diagnosed.
func (m *Metrics) Requests() int64 {
	return m.requests.Load()
}

// Candidates returns the number of fix candidates emitted.
func (m *Metrics) Candidates() int64 {
	return m.candidates.Load()
}

// Failures returns the number of files that failed.
func (m *Metrics) Failures() int64 {
	return m.failures.Load()
}

// Summary renders a one-line report for the CLI's timing output.
func (m *Metrics) Summary() string {
	return fmt.Sprintf("requests=%d candidates=%d failures=%d cache=%d/%d",
		m.requests.Load(), m.candidates.Load(), m.failures.Load(),
		m.cacheHits.Load(), m.cacheHits.Load()+m.cacheMisses.Load())
}
