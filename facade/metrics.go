package facade

import (
	"sync"
	"time"

	"github.com/teranos/accelbridge/bridge"
)

// Recorder aggregates call metrics across every facade operation. Counters
// live for the process lifetime and reset only on re-initialization; it
// never touches backend state.
type Recorder struct {
	mu        sync.Mutex
	calls     uint64
	errors    uint64
	totalTime time.Duration
	lastCall  time.Time
	lastError string
}

// NewRecorder returns a zeroed metrics recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record accounts one dispatched operation. err may be nil.
func (r *Recorder) Record(elapsed time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls++
	r.totalTime += elapsed
	r.lastCall = time.Now()
	if err != nil {
		r.errors++
		r.lastError = err.Error()
	}
}

// Snapshot returns a read-only copy of the counters.
func (r *Recorder) Snapshot() bridge.MetricsSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := bridge.MetricsSnapshot{
		Calls:     r.calls,
		Errors:    r.errors,
		TotalTime: r.totalTime,
		LastCall:  r.lastCall,
		LastError: r.lastError,
	}
	if r.calls > 0 {
		snap.AvgExecutionTime = r.totalTime / time.Duration(r.calls)
	}
	return snap
}

// Reset zeroes all counters. Only re-initialization paths call this.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = 0
	r.errors = 0
	r.totalTime = 0
	r.lastCall = time.Time{}
	r.lastError = ""
}
