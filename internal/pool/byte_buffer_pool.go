package pool

import "sync"

// SegmentBufferDefaultSize and SegmentBufferMaxThreshold size the pool
// segment.Writer.Finalize draws from: large enough that a typical segment
// assembles without a single reallocation, capped so a pathologically
// large segment's buffer isn't retained in the pool indefinitely.
const (
	SegmentBufferDefaultSize  = 1024 * 1024     // 1MiB
	SegmentBufferMaxThreshold = 1024 * 1024 * 8 // 8MiB
)

// ByteBuffer is a reusable, append-only byte buffer. Finalize writes a
// segment's header, data region, index region and footer into one
// sequentially, reading Len() as it goes to record each block's offset.
type ByteBuffer struct {
	B []byte
}

func newByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{B: make([]byte, 0, defaultSize)}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset empties the buffer while retaining its backing array for reuse.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the number of bytes written so far, i.e. the offset the
// next MustWrite will land at.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// MustWrite appends data, growing the buffer if necessary.
func (bb *ByteBuffer) MustWrite(data []byte) {
	bb.B = append(bb.B, data...)
}

// ByteBufferPool pools ByteBuffers of one default size via sync.Pool,
// discarding (rather than retaining) any buffer that grew past
// maxThreshold so one oversized segment can't pin a large buffer forever.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a pool whose buffers start at defaultSize.
func NewByteBufferPool(defaultSize, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool:         sync.Pool{New: func() any { return newByteBuffer(defaultSize) }},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a ByteBuffer from the pool, allocating one if none is idle.
func (p *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := p.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns bb to the pool for reuse, unless it grew past maxThreshold.
func (p *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}
	if p.maxThreshold > 0 && cap(bb.B) > p.maxThreshold {
		return
	}
	bb.Reset()
	p.pool.Put(bb)
}
