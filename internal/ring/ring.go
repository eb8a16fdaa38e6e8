// Package ring implements the lock-free single-producer/single-consumer byte
// ring buffer that sits between the decode side and the device side of an
// audio pipeline. The decode thread is the sole writer; the real-time device
// thread is the sole reader. Neither ever blocks on the other.
package ring

import (
	"sync/atomic"

	perr "github.com/jscyril/playd/pkg/errors"
)

// Buffer is a fixed-capacity SPSC ring buffer over raw PCM bytes.
//
// Write and Flush must only be called by the producer (the decode side);
// Read must only be called by the consumer (the real-time device side).
// WriteCapacity/ReadCapacity may be called by either side as a hint.
//
// The write and read cursors live on separate cache lines so that the
// producer and the consumer never contend for the same line.
type Buffer struct {
	writePos atomic.Uint64
	_pad1    [56]byte
	readPos  atomic.Uint64
	_pad2    [56]byte

	buf  []byte
	mask uint64
}

// New creates a Buffer whose capacity is the next power of two at least
// minBytes. minBytes must be positive; a non-positive size is an internal
// programming error, not a runtime condition, so it is reported via the
// error taxonomy's Internal kind rather than silently clamped.
func New(minBytes int) (*Buffer, error) {
	if minBytes <= 0 {
		return nil, perr.New(perr.KindInternal, "ring.New", nil)
	}
	size := 1
	for size < minBytes {
		size <<= 1
	}
	return &Buffer{
		buf:  make([]byte, size),
		mask: uint64(size - 1),
	}, nil
}

// Cap returns the buffer's total capacity in bytes.
func (b *Buffer) Cap() int {
	return len(b.buf)
}

// WriteCapacity returns the number of bytes that can currently be written
// without overrunning the reader.
func (b *Buffer) WriteCapacity() int {
	w := b.writePos.Load()
	r := b.readPos.Load()
	return len(b.buf) - int(w-r)
}

// ReadCapacity returns the number of bytes currently available to read.
func (b *Buffer) ReadCapacity() int {
	w := b.writePos.Load()
	r := b.readPos.Load()
	return int(w - r)
}

// Write copies as much of p as fits into free space and returns the number
// of bytes actually written. It never blocks: if the buffer is full, it
// writes nothing and returns 0.
func (b *Buffer) Write(p []byte) int {
	w := b.writePos.Load()
	r := b.readPos.Load()

	free := uint64(len(b.buf)) - (w - r)
	n := uint64(len(p))
	if n > free {
		n = free
	}
	if n == 0 {
		return 0
	}

	pos := w & b.mask
	first := uint64(len(b.buf)) - pos
	if first >= n {
		copy(b.buf[pos:pos+n], p[:n])
	} else {
		copy(b.buf[pos:], p[:first])
		copy(b.buf[:n-first], p[first:n])
	}

	b.writePos.Store(w + n)
	return int(n)
}

// Read copies as much of the available data into p as fits and returns the
// number of bytes actually read. It never blocks: if the buffer is empty,
// it reads nothing and returns 0. Callers needing silence on underrun must
// zero-fill the remainder of p themselves.
func (b *Buffer) Read(p []byte) int {
	r := b.readPos.Load()
	w := b.writePos.Load()

	avail := w - r
	n := uint64(len(p))
	if n > avail {
		n = avail
	}
	if n == 0 {
		return 0
	}

	pos := r & b.mask
	first := uint64(len(b.buf)) - pos
	if first >= n {
		copy(p[:n], b.buf[pos:pos+n])
	} else {
		copy(p[:first], b.buf[pos:])
		copy(p[first:n], b.buf[:n-first])
	}

	b.readPos.Store(r + n)
	return int(n)
}

// Flush discards all buffered data, resetting the buffer to empty.
// It is intended for the producer side to call between loads/seeks, once it
// knows the consumer has stopped reading (the Sink must be in a stopped
// state); it is not safe to call concurrently with an in-flight Read.
func (b *Buffer) Flush() {
	r := b.readPos.Load()
	b.writePos.Store(r)
}
