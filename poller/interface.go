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

// Package poller wraps the operating system event demultiplexer used
// by the acceptor and worker threads. Each Poller instance belongs to
// exactly one goroutine: registration and wait calls are never mixed
// across threads.
package poller

import (
	liberr "github.com/nabbar/golib/errors"
)

// EventFlag is the readiness mask registered for a descriptor.
type EventFlag uint8

const (
	// Read requests read-readiness notification.
	Read EventFlag = 1 << iota
	// Write requests write-readiness notification.
	Write
)

// Has returns true if the mask contains all bits of f.
func (e EventFlag) Has(f EventFlag) bool {
	return e&f == f
}

// String returns a short code for the mask, following the network
// protocol enum formatting.
func (e EventFlag) String() string {
	switch {
	case e.Has(Read | Write):
		return "rw"
	case e.Has(Write):
		return "w"
	case e.Has(Read):
		return "r"
	}

	return ""
}

// FuncEvent is the callback invoked by Wait for each ready descriptor.
type FuncEvent func(fd int, ev EventFlag)

// Poller is a single-threaded event demultiplexer: it watches a set of
// file descriptors and reports readiness through the Wait callback.
type Poller interface {
	// Register adds the descriptor to the watched set with the given
	// readiness mask.
	Register(fd int, ev EventFlag) liberr.Error

	// Modify replaces the readiness mask of an already registered
	// descriptor.
	Modify(fd int, ev EventFlag) liberr.Error

	// Unregister removes the descriptor from the watched set. It is
	// not an error to unregister a descriptor twice.
	Unregister(fd int) liberr.Error

	// Wait blocks at most msec milliseconds (negative means no limit)
	// and invokes fct for each ready descriptor. An interrupted wait
	// returns nil with no events delivered.
	Wait(msec int, fct FuncEvent) liberr.Error

	// Close releases the demultiplexer descriptor.
	Close() error
}
