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
	"net"
	"sync/atomic"
	"time"

	libbuf "github.com/nabbar/dbfront/buffer"
	hdl "github.com/nabbar/dbfront/handler"
	libplr "github.com/nabbar/dbfront/poller"
	liberr "github.com/nabbar/golib/errors"
	"golang.org/x/sys/unix"
)

// Connection is the per-client object of the front-end. The zero value
// is not usable: connections are built by New and recycled by Reset.
type Connection struct {
	fd int

	wrk Worker
	fct hdl.Factory
	prt hdl.Handler

	rbuf *libbuf.Buffer
	wbuf *libbuf.Buffer
	spl  []byte

	evt libplr.EventFlag
	dsc atomic.Bool
	cls atomic.Bool
	fin bool

	lst time.Time
	lcl net.Addr
	rmt net.Addr
}

func (o *Connection) init(ev libplr.EventFlag, w Worker, fct hdl.Factory) {
	if o.rbuf == nil {
		o.rbuf = libbuf.New(libbuf.DefaultSize)
		o.wbuf = libbuf.New(libbuf.DefaultSize)
	} else {
		o.rbuf.Reset()
		o.wbuf.Reset()
	}

	o.spl = nil
	o.prt = nil
	o.fct = fct
	o.wrk = w
	o.evt = ev
	o.fin = false

	o.dsc.Store(false)
	o.cls.Store(false)

	o.touch()
	o.resolveAddr()
}

func (o *Connection) touch() {
	o.lst = time.Now()
}

func (o *Connection) resolveAddr() {
	if sa, err := unix.Getsockname(o.fd); err == nil {
		o.lcl = sockaddrToAddr(sa)
	}

	if sa, err := unix.Getpeername(o.fd); err == nil {
		o.rmt = sockaddrToAddr(sa)
	}
}

func sockaddrToAddr(sa unix.Sockaddr) net.Addr {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return &net.TCPAddr{IP: append(net.IP{}, a.Addr[:]...), Port: a.Port}
	case *unix.SockaddrInet6:
		return &net.TCPAddr{IP: append(net.IP{}, a.Addr[:]...), Port: a.Port}
	}

	return nil
}

// FD returns the socket descriptor.
func (o *Connection) FD() int {
	return o.fd
}

// Events returns the readiness mask currently registered.
func (o *Connection) Events() libplr.EventFlag {
	return o.evt
}

// LocalAddr returns the local socket address.
func (o *Connection) LocalAddr() net.Addr {
	return o.lcl
}

// RemoteAddr returns the peer socket address.
func (o *Connection) RemoteAddr() net.Addr {
	return o.rmt
}

// LastIO returns the time of the last successful socket read or write.
func (o *Connection) LastIO() time.Time {
	return o.lst
}

// Disconnected reports the disconnect latch. The latch only moves from
// false to true; Reset is the single way back.
func (o *Connection) Disconnected() bool {
	return o.dsc.Load()
}

func (o *Connection) setDisconnected() {
	o.dsc.Store(true)
}

// MarkDone records that the protocol handler ended the session: the
// state machine drains pending output then closes.
func (o *Connection) MarkDone() {
	o.fin = true
}

// IsDone reports whether the session end was recorded.
func (o *Connection) IsDone() bool {
	return o.fin
}

// Protocol returns the handler owned by this connection, creating it
// on first use.
func (o *Connection) Protocol() hdl.Handler {
	if o.prt == nil && o.fct != nil {
		o.prt = o.fct()
	}

	return o.prt
}

// Register adds the connection descriptor to the owning worker poller
// with the current readiness mask.
func (o *Connection) Register() liberr.Error {
	if o.wrk == nil {
		return ErrorConnectionWorker.Error(nil)
	}

	return o.wrk.Poller().Register(o.fd, o.evt)
}

// Arm updates the registered readiness mask if it changed.
func (o *Connection) Arm(ev libplr.EventFlag) liberr.Error {
	if ev == o.evt {
		return nil
	}

	if o.wrk == nil {
		return ErrorConnectionWorker.Error(nil)
	}

	if err := o.wrk.Poller().Modify(o.fd, ev); err != nil {
		return err
	}

	o.evt = ev
	return nil
}

// CloseSocket closes the descriptor, removes the poller registration
// and raises the disconnect latch. It is idempotent and does not free
// the connection: the registry keeps the slot for descriptor reuse.
func (o *Connection) CloseSocket() {
	if o.cls.Swap(true) {
		return
	}

	if o.wrk != nil {
		_ = o.wrk.Poller().Unregister(o.fd)
	}

	_ = unix.Close(o.fd)
	o.setDisconnected()
}

// Reset reinitializes the slot for a fresh session on a recycled
// descriptor number: buffers cleared, handler dropped, latch cleared,
// ownership moved to the given worker.
func (o *Connection) Reset(ev libplr.EventFlag, w Worker, fct hdl.Factory) {
	o.init(ev, w, fct)
}
