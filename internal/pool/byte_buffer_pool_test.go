package pool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByteBuffer_MustWrite(t *testing.T) {
	bb := newByteBuffer(SegmentBufferDefaultSize)

	bb.MustWrite([]byte("hello"))
	assert.Equal(t, []byte("hello"), bb.Bytes())
	assert.Equal(t, 5, bb.Len())

	bb.MustWrite([]byte(" world"))
	assert.Equal(t, []byte("hello world"), bb.Bytes())
}

func TestByteBuffer_MustWriteGrowsPastInitialCapacity(t *testing.T) {
	bb := newByteBuffer(16)

	large := make([]byte, 1024)
	bb.MustWrite(large)

	assert.Equal(t, 1024, bb.Len())
	assert.GreaterOrEqual(t, cap(bb.B), 1024)
}

func TestByteBuffer_ResetPreservesCapacity(t *testing.T) {
	bb := newByteBuffer(SegmentBufferDefaultSize)
	bb.MustWrite([]byte("some data"))
	originalCap := cap(bb.B)

	bb.Reset()

	assert.Equal(t, 0, bb.Len())
	assert.Equal(t, originalCap, cap(bb.B))
}

func TestByteBufferPool_GetReturnsUsableBuffer(t *testing.T) {
	pool := NewByteBufferPool(8192, 65536)

	bb := pool.Get()
	require.NotNil(t, bb)
	assert.GreaterOrEqual(t, cap(bb.B), 8192)
	assert.Equal(t, 0, bb.Len())

	pool.Put(bb)
}

func TestByteBufferPool_PutResetsBeforeReuse(t *testing.T) {
	pool := NewByteBufferPool(1024, 4096)

	bb := pool.Get()
	bb.MustWrite([]byte("sensitive data"))
	pool.Put(bb)

	assert.Equal(t, 0, bb.Len(), "Put should reset the buffer it reclaims")
}

func TestByteBufferPool_DiscardsOversizedBuffers(t *testing.T) {
	pool := NewByteBufferPool(1024, 4096)

	bb := pool.Get()
	bb.MustWrite(make([]byte, 10000)) // grows past the 4096 threshold
	require.Greater(t, cap(bb.B), 4096)

	pool.Put(bb)

	// The discarded buffer must not come back from Get.
	fresh := pool.Get()
	assert.LessOrEqual(t, cap(fresh.B), 4096)
}

func TestByteBufferPool_ZeroThresholdNeverDiscards(t *testing.T) {
	pool := NewByteBufferPool(1024, 0)

	bb := pool.Get()
	bb.MustWrite(make([]byte, 1024*1024))
	pool.Put(bb)

	reused := pool.Get()
	require.NotNil(t, reused)
}

func TestByteBufferPool_PutNilIsNoop(t *testing.T) {
	pool := NewByteBufferPool(1024, 4096)
	assert.NotPanics(t, func() {
		pool.Put(nil)
	})
}

func TestByteBufferPool_ConcurrentGetPut(t *testing.T) {
	pool := NewByteBufferPool(SegmentBufferDefaultSize, SegmentBufferMaxThreshold)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				bb := pool.Get()
				bb.MustWrite([]byte("page bytes"))
				pool.Put(bb)
			}
		}()
	}
	wg.Wait()
}
