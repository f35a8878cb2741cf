package debounce

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEndCoalescesRepeatedCalls(t *testing.T) {
	var calls int32
	var lastFull int32
	d := New(30*time.Millisecond, func(key int, full bool) {
		atomic.AddInt32(&calls, 1)
		if full {
			atomic.StoreInt32(&lastFull, 1)
		}
	})
	d.End(5, false)
	d.End(5, false)
	d.End(5, true)
	assert.True(t, d.Join(time.Second))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&lastFull))
}

func TestEndDifferentKeysFireIndependently(t *testing.T) {
	var calls int32
	d := New(10*time.Millisecond, func(key int, full bool) {
		atomic.AddInt32(&calls, 1)
	})
	d.End(1, false)
	d.End(2, false)
	assert.True(t, d.Join(time.Second))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFinishRunsImmediately(t *testing.T) {
	var ran int32
	d := New(time.Hour, func(key int, full bool) {
		atomic.StoreInt32(&ran, 1)
	})
	d.End(1, false)
	d.Finish(1)
	assert.Equal(t, int32(1), atomic.LoadInt32(&ran))
}

func TestJoinTimesOutOnSlowCallback(t *testing.T) {
	d := New(time.Millisecond, func(key int, full bool) {
		time.Sleep(200 * time.Millisecond)
	})
	d.End(1, false)
	assert.False(t, d.Join(20*time.Millisecond))
}

func TestNewWithWorkersFiresAcrossPool(t *testing.T) {
	var calls int32
	d := NewWithWorkers(5*time.Millisecond, func(key int, full bool) {
		atomic.AddInt32(&calls, 1)
	}, 4)
	for i := 0; i < 8; i++ {
		d.End(i, false)
	}
	assert.True(t, d.Join(time.Second))
	assert.Equal(t, int32(8), atomic.LoadInt32(&calls))
}

func TestCloseFallsBackToSynchronousFire(t *testing.T) {
	var ran int32
	d := New(5*time.Millisecond, func(key int, full bool) {
		atomic.StoreInt32(&ran, 1)
	})
	d.Close()
	d.End(1, false)
	assert.True(t, d.Join(time.Second))
	assert.Equal(t, int32(1), atomic.LoadInt32(&ran))
}
