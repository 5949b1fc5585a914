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

// Package connection holds the per-client state of the socket
// front-end: the socket descriptor, the read and write buffers, the
// owned protocol handler and the disconnect latch, plus the process
// wide registry that recycles connection slots when the operating
// system reuses a descriptor number.
//
// A connection is only ever driven by the single worker that owns it:
// none of its methods are safe for concurrent use, except the
// disconnect latch which may be observed from the shutdown sweep.
package connection

import (
	hdl "github.com/nabbar/dbfront/handler"
	libplr "github.com/nabbar/dbfront/poller"
)

// Worker is the non-owning back reference a connection keeps on the
// I/O thread currently driving it.
type Worker interface {
	// ID returns the stable worker identifier.
	ID() int

	// Poller returns the event demultiplexer owned by the worker.
	Poller() libplr.Poller
}

// New returns a Connection bound to an accepted descriptor, owned by
// the given worker. The protocol handler is not created yet: it
// appears on the first Protocol call, once the session really begins.
func New(fd int, ev libplr.EventFlag, w Worker, fct hdl.Factory) *Connection {
	c := &Connection{
		fd: fd,
	}

	c.init(ev, w, fct)

	return c
}
