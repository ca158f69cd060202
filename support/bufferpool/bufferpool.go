// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package bufferpool maintains a pool of reusable fixed-size byte buffers,
// suitable for datagram receive loops.
package bufferpool

import (
	"sync"
	"sync/atomic"
)

// Pool maintains a pool of buffers. It allocates a new buffer when one is
// unavailable.
type Pool struct {
	// Size is the size of the buffers in this pool.
	Size int

	base sync.Pool
}

// Get returns a buffer, allocating one if one is not available. The returned
// buffer has its full capacity and a reference count of 1.
//
// The caller should return the buffer to the pool by calling its Release
// method when done with it.
func (bp *Pool) Get() *Buffer {
	b, ok := bp.base.Get().(*Buffer)
	if !ok {
		b = &Buffer{
			bytes: make([]byte, bp.Size),
		}
	}

	b.pool = bp
	b.size = -1
	atomic.StoreInt64(&b.refcount, 1)
	return b
}

// Buffer contains a byte buffer that can be released into a Pool for reuse.
//
// Buffer is reference counted. Failure to release a Buffer will not cause a
// memory leak, but will prevent its reuse.
type Buffer struct {
	refcount int64

	bytes []byte
	size  int

	pool *Pool
}

// Bytes returns this buffer's byte slice, honoring any Truncate.
func (b *Buffer) Bytes() []byte {
	if b.size >= 0 {
		return b.bytes[:b.size]
	}
	return b.bytes
}

// Len returns the number of bytes in the buffer.
func (b *Buffer) Len() int { return len(b.Bytes()) }

// Truncate caps the number of bytes returned by Bytes.
func (b *Buffer) Truncate(size int) { b.size = size }

// Retain adds a reference to b, preventing it from reentering the pool until
// a matching Release.
//
// Retain is safe for concurrent use.
func (b *Buffer) Retain() {
	atomic.AddInt64(&b.refcount, 1)
}

// Release drops a reference to b. When the last reference is dropped, b
// returns to its pool.
//
// Release is safe for concurrent use.
func (b *Buffer) Release() {
	switch rc := atomic.AddInt64(&b.refcount, -1); {
	case rc < 0:
		panic("buffer released more times than it was retained")
	case rc == 0:
		b.pool.base.Put(b)
	}
}
