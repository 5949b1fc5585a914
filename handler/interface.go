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

// Package handler defines the boundary between the socket front-end
// and the wire-protocol implementation. A handler instance belongs to
// exactly one connection; it is created lazily on the first byte of a
// session and dropped when the connection slot is reset.
//
// Process is invoked by the connection state machine whenever the
// connection may make progress. The handler consumes whole packets
// from the read side, appends responses to the write side, and reports
// through its Status what it is waiting for. A handler keeps all
// session state itself: when ReadBytes yields ErrWouldBlock in the
// middle of a packet, the handler returns NeedRead and resumes from
// its own state on the next invocation.
package handler

import (
	"net"

	liberr "github.com/nabbar/golib/errors"
)

// Conn is the I/O surface a connection exposes to its handler.
type Conn interface {
	// ReadBytes fills out completely from the connection read buffer,
	// refilling from the socket as needed. It returns ErrWouldBlock
	// when not enough bytes are available without blocking, or a
	// connection error when the peer is gone.
	ReadBytes(out []byte) error

	// Buffered returns the number of bytes already readable without a
	// new system call.
	Buffered() int

	// BufferWriteBytes appends one wire packet to the connection write
	// buffer: a one byte type tag, a four byte big-endian length
	// covering the length field plus the payload, then the payload.
	// The whole packet is accepted or an error is returned.
	BufferWriteBytes(payload []byte, typ byte) error

	// LocalAddr returns the local socket address.
	LocalAddr() net.Addr

	// RemoteAddr returns the peer socket address.
	RemoteAddr() net.Addr
}

// Handler drives one protocol session over a Conn.
type Handler interface {
	Process(c Conn) Status
}

// Factory returns a fresh Handler for a new session.
type Factory func() Handler

// Func allows using a plain function as a Handler.
type Func func(c Conn) Status

// Process calls f(c).
func (f Func) Process(c Conn) Status {
	return f(c)
}

// ErrWouldBlock is returned by Conn operations that cannot make
// progress without blocking the worker thread. It carries the
// ErrorWouldBlock code and is shared to keep the hot path free of
// per-call error allocation.
var ErrWouldBlock liberr.Error

func init() {
	ErrWouldBlock = ErrorWouldBlock.Error(nil)
}

// IsWouldBlock returns true if err carries the would-block code.
func IsWouldBlock(err error) bool {
	return liberr.Has(err, ErrorWouldBlock)
}
