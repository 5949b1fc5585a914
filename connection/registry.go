//go:build linux

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

package connection

import (
	"sync"

	hdl "github.com/nabbar/dbfront/handler"
	libplr "github.com/nabbar/dbfront/poller"
)

// Registry is the process wide connection table, indexed by socket
// descriptor. Slots are created on the first accept of a descriptor
// number, reset in place when the operating system recycles that
// number, and never freed for the life of the process.
//
// The table is sharded by descriptor so that workers driving disjoint
// descriptors contend on disjoint locks; the steady state access
// pattern is single worker per slot, the lock only matters during
// hand-off and the shutdown sweep.
type Registry struct {
	nbs uint64
	shr []shard
}

type shard struct {
	mu  sync.Mutex
	con map[int]*Connection
}

// NewRegistry returns an empty registry with the given shard count,
// normally aligned with the worker pool size.
func NewRegistry(nbShard int) *Registry {
	if nbShard < 1 {
		nbShard = 1
	}

	r := &Registry{
		nbs: uint64(nbShard),
		shr: make([]shard, nbShard),
	}

	for i := range r.shr {
		r.shr[i].con = make(map[int]*Connection)
	}

	return r
}

func (o *Registry) shard(fd int) *shard {
	return &o.shr[uint64(fd)%o.nbs]
}

// Get returns the connection stored for the descriptor, or nil.
func (o *Registry) Get(fd int) *Connection {
	s := o.shard(fd)

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.con[fd]
}

// CreateOrReset returns the slot for the descriptor: a new connection
// on first use, the recycled one reset in place when the descriptor
// number comes back.
func (o *Registry) CreateOrReset(fd int, ev libplr.EventFlag, w Worker, fct hdl.Factory) *Connection {
	s := o.shard(fd)

	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.con[fd]; ok {
		c.Reset(ev, w, fct)
		return c
	}

	c := New(fd, ev, w, fct)
	s.con[fd] = c

	return c
}

// Len returns the number of slots, live or recyclable.
func (o *Registry) Len() int {
	var n int

	for i := range o.shr {
		o.shr[i].mu.Lock()
		n += len(o.shr[i].con)
		o.shr[i].mu.Unlock()
	}

	return n
}

// Range calls fct for each slot until fct returns false.
func (o *Registry) Range(fct func(c *Connection) bool) {
	for i := range o.shr {
		o.shr[i].mu.Lock()
		lst := make([]*Connection, 0, len(o.shr[i].con))

		for _, c := range o.shr[i].con {
			lst = append(lst, c)
		}

		o.shr[i].mu.Unlock()

		for _, c := range lst {
			if !fct(c) {
				return
			}
		}
	}
}
