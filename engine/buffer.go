package engine

import (
	"sync"
)

// ChunkSize is the fixed copy chunk size. Cancellation and pause are
// checked between chunks, so the chunk is kept small enough that a copy
// reacts to either within a fraction of a second even on slow shares.
const ChunkSize = 64 * 1024

// BufferPool manages reusable byte buffers to minimize GC overhead across
// many chunked copies.
type BufferPool struct {
	pool sync.Pool
}

// NewBufferPool creates a new BufferPool that allocates buffers of the specified size.
// If size is <= 0, ChunkSize is used.
func NewBufferPool(size int) *BufferPool {
	if size <= 0 {
		size = ChunkSize
	}
	return &BufferPool{
		pool: sync.Pool{
			New: func() any {
				b := make([]byte, size)
				return &b
			},
		},
	}
}

// Get retrieves a reusable byte buffer from the pool.
// The caller should defer calling Put on this buffer once finished.
func (bp *BufferPool) Get() *[]byte {
	return bp.pool.Get().(*[]byte)
}

// Put returns the byte buffer to the pool so it can be reused.
// The caller should not hold onto or read/write to the buffer after calling Put.
func (bp *BufferPool) Put(b *[]byte) {
	// A basic sanity check to avoid returning nil pointers.
	if b != nil {
		bp.pool.Put(b)
	}
}
