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

package server

import (
	"context"
	"net"
	"time"

	libcon "github.com/nabbar/dbfront/connection"
	libplr "github.com/nabbar/dbfront/poller"
	sckque "github.com/nabbar/dbfront/queue"
	libwrk "github.com/nabbar/dbfront/worker"
	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"
	loglvl "github.com/nabbar/golib/logger/level"
	libptc "github.com/nabbar/golib/network/protocol"
	"golang.org/x/sys/unix"
)

const (
	// waitTick bounds one acceptor wait so the loop observes the stop
	// flag at a steady pace.
	waitTick = 1000

	// dispatchRetry bounds the spin over a saturated worker queue
	// before the descriptor is dropped.
	dispatchRetry = 50

	// acceptPause is the breather applied when the process runs out of
	// descriptors on accept.
	acceptPause = 50 * time.Millisecond
)

// Listen binds the listening socket, starts the worker pool and runs
// the acceptor loop in the calling goroutine until the context ends or
// Shutdown is called.
func (o *srv) Listen(ctx context.Context) liberr.Error {
	o.mux.Lock()

	if o.run.Load() {
		o.mux.Unlock()
		return ErrorServerRunning.Error(nil)
	}

	nbw := o.cfg.Workers()
	o.reg = libcon.NewRegistry(nbw)
	o.wks = make([]libwrk.Worker, 0, nbw)

	stopWorkers := func() {
		for _, w := range o.wks {
			_ = w.Stop(context.Background())
		}
	}

	for i := 0; i < nbw; i++ {
		w, err := libwrk.New(i, o.reg, o.fct, o.cfg.Queue(), o.cfg.ConIdleTimeout.Time())

		if err != nil {
			stopWorkers()
			o.mux.Unlock()
			return err
		}

		w.RegisterFuncError(o.fctError)
		w.RegisterFuncInfo(o.fctInfo)
		w.RegisterFuncClose(o.decOpen)
		w.RegisterLogger(func() liblog.Logger {
			return o.logger()
		})

		o.wks = append(o.wks, w)
	}

	lfd, err := o.bind()
	if err != nil {
		stopWorkers()
		o.mux.Unlock()
		return err
	}

	pol, err := libplr.New()
	if err != nil {
		_ = unix.Close(lfd)
		stopWorkers()
		o.mux.Unlock()
		return err
	}

	var pfd [2]int
	if e := unix.Pipe2(pfd[:], unix.O_NONBLOCK|unix.O_CLOEXEC); e != nil {
		_ = unix.Close(lfd)
		_ = pol.Close()
		stopWorkers()
		o.mux.Unlock()
		return ErrorServerWakePipe.Error(e)
	}

	if err = pol.Register(lfd, libplr.Read); err == nil {
		err = pol.Register(pfd[0], libplr.Read)
	}

	if err != nil {
		_ = unix.Close(lfd)
		_ = unix.Close(pfd[0])
		_ = unix.Close(pfd[1])
		_ = pol.Close()
		stopWorkers()
		o.mux.Unlock()
		return err
	}

	o.lfd = lfd
	o.prd = pfd[0]
	o.pwr = pfd[1]
	o.don = make(chan struct{})
	o.cnt.Store(0)
	o.opn.Store(0)
	o.run.Store(true)
	o.gon.Store(false)
	o.mux.Unlock()

	for _, w := range o.wks {
		if err = w.Start(ctx); err != nil {
			break
		}
	}

	if err == nil {
		o.logEntry(loglvl.InfoLevel, "server '%s %s' is starting with %d workers", o.cfg.Network.String(), o.cfg.Address, nbw)
		err = o.acceptLoop(ctx, pol)
	}

	o.teardown(pol)

	return err
}

func (o *srv) bind() (int, liberr.Error) {
	var (
		fam int
		sad unix.Sockaddr
		ip4 = o.adr.IP.To4()
	)

	if o.cfg.Network == libptc.NetworkTCP6 || (len(o.adr.IP) > 0 && ip4 == nil) {
		sa6 := &unix.SockaddrInet6{Port: o.adr.Port}
		copy(sa6.Addr[:], o.adr.IP.To16())
		fam, sad = unix.AF_INET6, sa6
	} else {
		sa4 := &unix.SockaddrInet4{Port: o.adr.Port}
		if ip4 != nil {
			copy(sa4.Addr[:], ip4)
		}
		fam, sad = unix.AF_INET, sa4
	}

	fd, e := unix.Socket(fam, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if e != nil {
		return -1, ErrorServerListen.Error(e)
	}

	_ = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)

	if e = unix.Bind(fd, sad); e != nil {
		_ = unix.Close(fd)
		return -1, ErrorServerBind.Error(e)
	}

	if e = unix.Listen(fd, o.cfg.ListenBacklog()); e != nil {
		_ = unix.Close(fd)
		return -1, ErrorServerListen.Error(e)
	}

	return fd, nil
}

func (o *srv) wakeAcceptor() {
	o.mux.Lock()
	fd := o.pwr
	o.mux.Unlock()

	if fd < 0 {
		return
	}

	var b = [1]byte{1}

	for {
		_, e := unix.Write(fd, b[:])

		if e == unix.EINTR {
			continue
		}

		return
	}
}

func (o *srv) acceptLoop(ctx context.Context, pol libplr.Poller) liberr.Error {
	for o.run.Load() {
		if ctx.Err() != nil {
			return nil
		}

		err := pol.Wait(waitTick, func(fd int, _ libplr.EventFlag) {
			switch fd {
			case o.lfd:
				o.acceptBurst()
			case o.prd:
				o.drainWake()
			}
		})

		if err != nil {
			o.fctError(err)
			o.logEntry(loglvl.ErrorLevel, "acceptor loop has failed: %v", err)
			return err
		}
	}

	return nil
}

func (o *srv) drainWake() {
	var b [256]byte

	for {
		n, e := unix.Read(o.prd, b[:])

		if e == unix.EINTR {
			continue
		}

		if e != nil || n < len(b) {
			return
		}
	}
}

// acceptBurst accepts until the listen queue is empty. Accepted
// descriptors are made non blocking with Nagle disabled, then
// dispatched round-robin over the worker pool.
func (o *srv) acceptBurst() {
	for o.run.Load() {
		nfd, sad, e := unix.Accept4(o.lfd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)

		switch {
		case e == unix.EINTR:
			continue

		case e == unix.EAGAIN:
			return

		case e == unix.EMFILE || e == unix.ENFILE:
			o.fctError(ErrorServerAccept.Error(e))
			o.logEntry(loglvl.ErrorLevel, "out of descriptors on accept: %v", e)
			time.Sleep(acceptPause)
			return

		case e != nil:
			o.fctError(ErrorServerAccept.Error(e))
			return
		}

		mtrAccepted.Inc()

		_ = unix.SetsockoptInt(nfd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)

		if o.upd != nil {
			o.upd(nfd)
		}

		if max := o.cfg.MaxConn; max > 0 && o.opn.Load() >= max {
			_ = unix.Close(nfd)
			mtrRejected.Inc()
			o.fctError(ErrorServerMaxConn.Error(nil))
			continue
		}

		o.opn.Add(1)
		mtrOpenConnections.Inc()
		o.fctInfo(o.adr, sockaddrToAddr(sad), libcon.ConnectionNew)
		o.dispatch(nfd)
	}
}

// dispatch hands the descriptor to the next worker by round-robin. A
// saturated queue is retried briefly, throttling the accept rate; a
// stopped worker yields its turn. A descriptor that cannot be placed
// is closed, never leaked.
func (o *srv) dispatch(fd int) {
	var (
		itm = sckque.Item{FD: fd, Events: libplr.Read}
		nbw = uint64(len(o.wks))
		idx = (o.cnt.Add(1) - 1) % nbw
	)

	for try := 0; try < dispatchRetry; try++ {
		w := o.wks[idx]

		if !w.IsRunning() {
			idx = (idx + 1) % nbw
			continue
		}

		if w.Enqueue(itm) {
			return
		}

		time.Sleep(200 * time.Microsecond)
	}

	_ = unix.Close(fd)
	o.decOpen()
	mtrDispatchDrop.Inc()
	o.fctError(ErrorServerDispatch.Error(nil))
	o.logEntry(loglvl.ErrorLevel, "descriptor %d dropped: no worker can take it", fd)
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

// teardown stops the workers, closes the listener and the acceptor
// resources, then marks the server gone.
func (o *srv) teardown(pol libplr.Poller) {
	o.run.Store(false)

	ctx, cnl := context.WithTimeout(context.Background(), 10*time.Second)
	defer cnl()

	for _, w := range o.wks {
		if err := w.Stop(ctx); err != nil {
			o.fctError(err)
		}
	}

	o.mux.Lock()

	if o.lfd >= 0 {
		_ = unix.Close(o.lfd)
		o.lfd = -1
	}

	if o.prd >= 0 {
		_ = unix.Close(o.prd)
		_ = unix.Close(o.pwr)
		o.prd = -1
		o.pwr = -1
	}

	don := o.don
	o.mux.Unlock()

	_ = pol.Close()

	o.gon.Store(true)
	o.logEntry(loglvl.InfoLevel, "server '%s' is gone", o.cfg.Address)

	if don != nil {
		close(don)
	}
}
