package facade

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/teranos/accelbridge/errors"
)

func TestRecorderCounts(t *testing.T) {
	r := NewRecorder()

	r.Record(10*time.Millisecond, nil)
	r.Record(20*time.Millisecond, nil)
	r.Record(30*time.Millisecond, errors.New("boom"))

	m := r.Snapshot()
	assert.Equal(t, uint64(3), m.Calls)
	assert.Equal(t, uint64(1), m.Errors)
	assert.Equal(t, 60*time.Millisecond, m.TotalTime)
	assert.Equal(t, 20*time.Millisecond, m.AvgExecutionTime)
	assert.Equal(t, "boom", m.LastError)
	assert.False(t, m.LastCall.IsZero())
}

func TestRecorderEmptySnapshot(t *testing.T) {
	m := NewRecorder().Snapshot()
	assert.Zero(t, m.Calls)
	assert.Zero(t, m.AvgExecutionTime)
	assert.Empty(t, m.LastError)
}

func TestRecorderReset(t *testing.T) {
	r := NewRecorder()
	r.Record(time.Millisecond, errors.New("boom"))
	r.Reset()

	m := r.Snapshot()
	assert.Zero(t, m.Calls)
	assert.Zero(t, m.Errors)
	assert.Zero(t, m.TotalTime)
	assert.Empty(t, m.LastError)
}

func TestRecorderConcurrent(t *testing.T) {
	r := NewRecorder()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(fail bool) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				var err error
				if fail {
					err = errors.New("boom")
				}
				r.Record(time.Microsecond, err)
			}
		}(i%2 == 0)
	}
	wg.Wait()

	m := r.Snapshot()
	assert.Equal(t, uint64(800), m.Calls)
	assert.Equal(t, uint64(400), m.Errors)
}
