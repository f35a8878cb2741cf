package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueueDequeueFIFO(t *testing.T) {
	q := New[int]()
	require.True(t, q.Enqueue(1))
	require.True(t, q.Enqueue(2))
	v, ok := q.WaitDequeue()
	require.True(t, ok)
	assert.Equal(t, 1, v)
	v, ok = q.WaitDequeue()
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestEnqueueBulk(t *testing.T) {
	q := New[int]()
	q.EnqueueBulk([]int{1, 2, 3})
	assert.Equal(t, 3, q.Len())
}

func TestWaitDequeueBlocksUntilEnqueue(t *testing.T) {
	q := New[int]()
	done := make(chan int, 1)
	go func() {
		v, ok := q.WaitDequeue()
		if ok {
			done <- v
		}
	}()
	time.Sleep(20 * time.Millisecond)
	q.Enqueue(42)
	select {
	case v := <-done:
		assert.Equal(t, 42, v)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for dequeue")
	}
}

func TestCloseWakesWaiters(t *testing.T) {
	q := New[int]()
	done := make(chan bool, 1)
	go func() {
		_, ok := q.WaitDequeue()
		done <- ok
	}()
	time.Sleep(20 * time.Millisecond)
	q.Close()
	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for close to wake waiter")
	}
}

func TestEnqueueAfterCloseFails(t *testing.T) {
	q := New[int]()
	q.Close()
	assert.False(t, q.Enqueue(1))
}

func TestTryDequeueEmpty(t *testing.T) {
	q := New[int]()
	_, ok := q.TryDequeue()
	assert.False(t, ok)
}
