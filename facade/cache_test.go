package facade

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/accelbridge/errors"
)

func TestCacheSlotServesFreshEntry(t *testing.T) {
	slot := newCacheSlot[int](time.Hour)
	var fetches atomic.Int64
	fetch := func() (int, error) {
		fetches.Add(1)
		return 42, nil
	}

	v1, at1, err := slot.get(fetch)
	require.NoError(t, err)
	v2, at2, err := slot.get(fetch)
	require.NoError(t, err)

	assert.Equal(t, 42, v1)
	assert.Equal(t, 42, v2)
	assert.Equal(t, at1, at2, "entries inside TTL share a fetch timestamp")
	assert.Equal(t, int64(1), fetches.Load())
}

func TestCacheSlotRefetchesAfterExpiry(t *testing.T) {
	slot := newCacheSlot[int](30 * time.Millisecond)
	var fetches atomic.Int64
	fetch := func() (int, error) {
		fetches.Add(1)
		return int(fetches.Load()), nil
	}

	_, at1, _ := slot.get(fetch)
	time.Sleep(50 * time.Millisecond)
	v, at2, _ := slot.get(fetch)

	assert.Equal(t, 2, v)
	assert.True(t, at2.After(at1), "post-expiry read must carry a new timestamp")
}

func TestCacheSlotInvalidate(t *testing.T) {
	slot := newCacheSlot[string](time.Hour)
	var fetches atomic.Int64
	fetch := func() (string, error) {
		fetches.Add(1)
		return "value", nil
	}

	slot.get(fetch)
	slot.invalidate()
	slot.get(fetch)

	assert.Equal(t, int64(2), fetches.Load())
}

func TestCacheSlotErrorNotCached(t *testing.T) {
	slot := newCacheSlot[int](time.Hour)
	calls := 0

	_, _, err := slot.get(func() (int, error) {
		calls++
		return 0, errors.New("fetch failed")
	})
	assert.Error(t, err)

	v, _, err := slot.get(func() (int, error) {
		calls++
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, 2, calls, "a failed fetch must not poison the slot")
}

func TestCacheSlotConcurrentReaders(t *testing.T) {
	slot := newCacheSlot[int](time.Hour)
	var fetches atomic.Int64

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, _, err := slot.get(func() (int, error) {
				fetches.Add(1)
				return 99, nil
			})
			assert.NoError(t, err)
			assert.Equal(t, 99, v)
		}()
	}
	wg.Wait()

	// Duplicate concurrent refreshes are tolerated, but all readers agree
	assert.GreaterOrEqual(t, fetches.Load(), int64(1))
}

func TestCacheSlotSetTTL(t *testing.T) {
	slot := newCacheSlot[int](time.Hour)
	var fetches atomic.Int64
	fetch := func() (int, error) {
		fetches.Add(1)
		return 1, nil
	}

	slot.get(fetch)
	slot.setTTL(time.Nanosecond)
	time.Sleep(time.Millisecond)
	slot.get(fetch)

	assert.Equal(t, int64(2), fetches.Load(), "shrinking the TTL expires the entry")
}
