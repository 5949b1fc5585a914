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

// Package queue implements the bounded lock-free hand-off queue used
// to transfer accepted descriptors from the acceptor thread to a
// worker. The queue accepts multiple producers and exactly one
// consumer; a mutex guarded list would be correct too, but regresses
// hand-off latency under connection storms, so the lock-free ring is
// kept as the reference structure.
package queue

import (
	libplr "github.com/nabbar/dbfront/poller"
)

const (
	// DefaultCapacity is the ring capacity used when none is given.
	DefaultCapacity = 1024

	minCapacity = 8
)

// Item is one hand-off record: an accepted descriptor and the
// readiness mask it must be registered with.
type Item struct {
	FD     int
	Events libplr.EventFlag
}

// New returns an empty queue. The capacity is rounded up to the next
// power of two, with a floor of 8; zero or negative selects
// DefaultCapacity.
func New(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	size := uint64(minCapacity)
	for size < uint64(capacity) {
		size <<= 1
	}

	q := &Queue{
		msk: size - 1,
		buf: make([]slot, size),
	}

	for i := range q.buf {
		q.buf[i].seq.Store(uint64(i))
	}

	return q
}
