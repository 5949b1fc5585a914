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
	hdl "github.com/nabbar/dbfront/handler"
	"golang.org/x/sys/unix"
)

// Buffered returns the number of bytes readable without a system call.
func (o *Connection) Buffered() int {
	return o.rbuf.Remaining()
}

// RefillReadBuffer issues one non blocking read into the read buffer.
// It returns true when at least one new byte is available. It returns
// false without raising the disconnect latch when the socket has no
// data right now, and false with the latch raised on end of file or a
// hard error. When the buffer is already full of unconsumed bytes, no
// read is issued and it returns true.
func (o *Connection) RefillReadBuffer() bool {
	if o.Disconnected() {
		return false
	}

	if o.rbuf.Free() == 0 {
		o.rbuf.Compact()
	}

	if o.rbuf.Free() == 0 {
		// full of unconsumed bytes: nothing to refill
		return o.rbuf.Remaining() > 0
	}

	for {
		n, err := unix.Read(o.fd, o.rbuf.Tail())

		switch {
		case n > 0:
			_ = o.rbuf.Grow(n)
			o.touch()
			return true

		case n == 0 && err == nil:
			// peer closed the stream
			o.setDisconnected()
			return false

		case err == unix.EINTR:
			continue

		case err == unix.EAGAIN:
			return false

		default:
			o.setDisconnected()
			return false
		}
	}
}

// ReadBytes fills out completely from the read buffer, refilling from
// the socket as needed. It returns handler.ErrWouldBlock when the
// bytes are not available without blocking, and a connection error
// when the peer is gone. On success the cursor moves past the copied
// bytes.
func (o *Connection) ReadBytes(out []byte) error {
	if len(out) > o.rbuf.Capacity() {
		return ErrorReadOversize.Error(nil)
	}

	for o.rbuf.Remaining() < len(out) {
		if o.RefillReadBuffer() {
			continue
		}

		if o.Disconnected() {
			return ErrorConnectionLost.Error(nil)
		}

		return hdl.ErrWouldBlock
	}

	return o.rbuf.CopyOut(out)
}
