// Package ringbuf provides a pool of reusable 512-byte block buffers.
//
// Block header reads in the filesystem core, and the staging buffers of
// blockdev.File, borrow a buffer from the pool and return it when done,
// the same pattern the teacher library uses for its internal/utils
// buffer pool, sized here to the device's fixed block size instead of a
// variable one. Block writes do not use the pool: the internal/codec
// encoders allocate a fresh 512-byte block for every block they encode.
package ringbuf

import "sync"

// BlockSize is the device's fixed block size; Get never hands back a
// buffer shorter than this.
const BlockSize = 512

var pool = sync.Pool{
	New: func() interface{} {
		return make([]byte, BlockSize)
	},
}

// Get returns a zeroed BlockSize-byte buffer from the pool.
func Get() []byte {
	buf := pool.Get().([]byte)
	for i := range buf {
		buf[i] = 0
	}
	return buf
}

// Put returns buf to the pool. Callers must not use buf after calling Put.
func Put(buf []byte) {
	if cap(buf) < BlockSize {
		return
	}
	pool.Put(buf[:BlockSize])
}
