/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package buffer

import (
	liberr "github.com/nabbar/golib/errors"
)

// Buffer is a fixed-capacity byte buffer with a consuming cursor.
// It is not safe for concurrent use: a buffer belongs to exactly one
// connection, itself driven by exactly one worker.
type Buffer struct {
	dat []byte
	cur int
	end int
}

// Capacity returns the fixed capacity of the buffer.
func (o *Buffer) Capacity() int {
	return len(o.dat)
}

// Reset returns cursor and filled length to zero. Contents are not
// zeroed.
func (o *Buffer) Reset() {
	o.cur = 0
	o.end = 0
}

// Remaining returns the number of filled bytes not yet consumed.
func (o *Buffer) Remaining() int {
	return o.end - o.cur
}

// Free returns the number of bytes that can still be appended before
// the buffer is full.
func (o *Buffer) Free() int {
	return len(o.dat) - o.end
}

// Bytes returns a view of the unconsumed bytes. The view is only valid
// until the next mutating call.
func (o *Buffer) Bytes() []byte {
	return o.dat[o.cur:o.end]
}

// Tail returns the writable view between filled length and capacity,
// for direct system-call reads. Grow must be called with the number of
// bytes actually written into it.
func (o *Buffer) Tail() []byte {
	return o.dat[o.end:]
}

// Consume advances the cursor by n.
func (o *Buffer) Consume(n int) liberr.Error {
	if n < 0 || n > o.Remaining() {
		return ErrorBufferUnderflow.Error(nil)
	}

	o.cur += n

	if o.cur == o.end {
		o.cur = 0
		o.end = 0
	}

	return nil
}

// Grow advances the filled length by n after a direct write into Tail.
func (o *Buffer) Grow(n int) liberr.Error {
	if n < 0 || n > o.Free() {
		return ErrorBufferOverflow.Error(nil)
	}

	o.end += n
	return nil
}

// Append copies p into the buffer after the filled bytes.
func (o *Buffer) Append(p []byte) liberr.Error {
	if len(p) > o.Free() {
		return ErrorBufferOverflow.Error(nil)
	}

	copy(o.dat[o.end:], p)
	o.end += len(p)

	return nil
}

// CopyOut copies len(p) unconsumed bytes into p and advances the
// cursor past them.
func (o *Buffer) CopyOut(p []byte) liberr.Error {
	if len(p) > o.Remaining() {
		return ErrorBufferUnderflow.Error(nil)
	}

	copy(p, o.dat[o.cur:o.end])
	return o.Consume(len(p))
}

// Compact moves the unconsumed bytes to the front of the buffer so
// that the whole tail becomes writable again.
func (o *Buffer) Compact() {
	if o.cur == 0 {
		return
	}

	n := copy(o.dat, o.dat[o.cur:o.end])
	o.cur = 0
	o.end = n
}
