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

package queue

import (
	"sync/atomic"
)

type slot struct {
	seq atomic.Uint64
	itm Item
}

// Queue is a bounded ring with per-slot sequence counters. Producers
// claim a slot with a compare-and-swap on the enqueue counter; the
// single consumer follows the dequeue counter. FIFO order holds per
// producer.
type Queue struct {
	msk uint64
	buf []slot

	enq atomic.Uint64
	_   [7]uint64 // keep the two counters on distinct cache lines
	deq atomic.Uint64
}

// Capacity returns the fixed ring capacity.
func (o *Queue) Capacity() int {
	return len(o.buf)
}

// Len returns an instantaneous item count. The value is approximate
// while producers are active.
func (o *Queue) Len() int {
	e := o.enq.Load()
	d := o.deq.Load()

	if e < d {
		return 0
	}

	return int(e - d)
}

// Push enqueues the item. It returns false when the ring is full, in
// which case the caller applies its backpressure policy.
func (o *Queue) Push(itm Item) bool {
	pos := o.enq.Load()

	for {
		s := &o.buf[pos&o.msk]
		seq := s.seq.Load()
		dif := int64(seq) - int64(pos)

		if dif == 0 {
			if o.enq.CompareAndSwap(pos, pos+1) {
				s.itm = itm
				s.seq.Store(pos + 1)
				return true
			}

			pos = o.enq.Load()
		} else if dif < 0 {
			return false
		} else {
			pos = o.enq.Load()
		}
	}
}

// Pop dequeues the oldest item. It must only be called from the single
// consumer goroutine. It returns false when the ring is empty.
func (o *Queue) Pop() (Item, bool) {
	pos := o.deq.Load()
	s := &o.buf[pos&o.msk]
	seq := s.seq.Load()

	if int64(seq)-int64(pos+1) < 0 {
		return Item{}, false
	}

	itm := s.itm
	s.seq.Store(pos + o.msk + 1)
	o.deq.Store(pos + 1)

	return itm, true
}
