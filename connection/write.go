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
	"encoding/binary"

	hdl "github.com/nabbar/dbfront/handler"
	"golang.org/x/sys/unix"
)

const (
	// PacketTypeSize is the width of the packet type tag.
	PacketTypeSize = 1

	// PacketLenSize is the width of the big-endian length field. The
	// length covers itself plus the payload.
	PacketLenSize = 4

	// PacketHeaderSize is the full header width preceding a payload.
	PacketHeaderSize = PacketTypeSize + PacketLenSize
)

// HasPendingWrites reports whether buffered outbound bytes remain to
// be flushed to the socket.
func (o *Connection) HasPendingWrites() bool {
	return o.wbuf.Remaining() > 0 || len(o.spl) > 0
}

// BufferWriteBytes appends one wire packet to the write buffer: the
// type tag, the big-endian length field, then the payload. When the
// packet does not fit the remaining capacity, the buffer is flushed
// first; a packet larger than the whole buffer, or blocked behind a
// full socket, parks its tail in an overflow slice drained by the
// flush path, so the call always accepts the whole packet and wire
// bytes stay contiguous and ordered.
func (o *Connection) BufferWriteBytes(payload []byte, typ byte) error {
	if o.Disconnected() {
		return ErrorConnectionLost.Error(nil)
	}

	var hdr [PacketHeaderSize]byte
	hdr[0] = typ
	binary.BigEndian.PutUint32(hdr[PacketTypeSize:], uint32(PacketLenSize+len(payload)))

	size := PacketHeaderSize + len(payload)

	if len(o.spl) == 0 && size > o.wbuf.Free() {
		if err := o.FlushWriteBuffer(); err != nil && !hdl.IsWouldBlock(err) {
			return err
		}
	}

	if len(o.spl) == 0 && size <= o.wbuf.Free() {
		_ = o.wbuf.Append(hdr[:])
		_ = o.wbuf.Append(payload)
		return nil
	}

	// ordering: once the overflow is in use, everything goes behind it
	o.spl = append(o.spl, hdr[:]...)
	o.spl = append(o.spl, payload...)

	return nil
}

// FlushWriteBuffer writes all buffered bytes to the socket, looping
// over partial writes, then drains the overflow slice. It returns
// handler.ErrWouldBlock when the socket cannot take more without
// blocking, keeping the unwritten remainder buffered; a hard error
// raises the disconnect latch.
func (o *Connection) FlushWriteBuffer() error {
	if o.Disconnected() {
		return ErrorConnectionLost.Error(nil)
	}

	for o.wbuf.Remaining() > 0 {
		n, err := unix.Write(o.fd, o.wbuf.Bytes())

		if n > 0 {
			_ = o.wbuf.Consume(n)
			o.touch()
		}

		switch {
		case err == nil:
		case err == unix.EINTR:
		case err == unix.EAGAIN:
			return hdl.ErrWouldBlock
		default:
			o.setDisconnected()
			return ErrorConnectionLost.Error(err)
		}
	}

	for len(o.spl) > 0 {
		n, err := unix.Write(o.fd, o.spl)

		if n > 0 {
			o.spl = o.spl[n:]
			o.touch()
		}

		switch {
		case err == nil:
		case err == unix.EINTR:
		case err == unix.EAGAIN:
			return hdl.ErrWouldBlock
		default:
			o.setDisconnected()
			return ErrorConnectionLost.Error(err)
		}
	}

	o.spl = nil

	return nil
}
