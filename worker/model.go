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

package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	libcon "github.com/nabbar/dbfront/connection"
	hdl "github.com/nabbar/dbfront/handler"
	libplr "github.com/nabbar/dbfront/poller"
	sckque "github.com/nabbar/dbfront/queue"
	libatm "github.com/nabbar/golib/atomic"
	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"
	loglvl "github.com/nabbar/golib/logger/level"
	"golang.org/x/sys/unix"
)

// waitTick bounds one demultiplexer wait so that the loop observes the
// stop flag and runs the idle sweep at a steady pace.
const waitTick = 1000

type wrk struct {
	id  int
	pol libplr.Poller
	reg *libcon.Registry
	fct hdl.Factory
	que *sckque.Queue

	prd int
	pwr int
	idl time.Duration

	// fds is the set of descriptors owned by this worker. It is only
	// touched from the loop goroutine.
	fds map[int]struct{}

	mux sync.Mutex
	don chan struct{}
	run atomic.Bool
	clo sync.Once
	swp time.Time

	fe  libatm.Value[libcon.FuncError]
	fi  libatm.Value[libcon.FuncInfo]
	fcl libatm.Value[func()]
	fl  libatm.Value[liblog.FuncLog]
}

func (o *wrk) ID() int {
	return o.id
}

func (o *wrk) Poller() libplr.Poller {
	return o.pol
}

func (o *wrk) IsRunning() bool {
	return o.run.Load()
}

func (o *wrk) Connections() int {
	o.mux.Lock()
	defer o.mux.Unlock()

	return len(o.fds)
}

func (o *wrk) Done() <-chan struct{} {
	o.mux.Lock()
	defer o.mux.Unlock()

	return o.don
}

func (o *wrk) RegisterFuncError(f libcon.FuncError) {
	o.fe.Store(f)
}

func (o *wrk) RegisterFuncInfo(f libcon.FuncInfo) {
	o.fi.Store(f)
}

func (o *wrk) RegisterFuncClose(f func()) {
	o.fcl.Store(f)
}

func (o *wrk) RegisterLogger(f liblog.FuncLog) {
	o.fl.Store(f)
}

func (o *wrk) fctError(e ...error) {
	if f := o.fe.Load(); f != nil && len(e) > 0 {
		f(e...)
	}
}

func (o *wrk) fctInfo(cn *libcon.Connection, st libcon.ConnState) {
	if f := o.fi.Load(); f != nil {
		f(cn.LocalAddr(), cn.RemoteAddr(), st)
	}
}

func (o *wrk) logEntry(lvl loglvl.Level, msg string, args ...interface{}) {
	if f := o.fl.Load(); f != nil {
		if l := f(); l != nil {
			l.Entry(lvl, msg, args...).FieldAdd("worker", o.id).Log()
		}
	}
}

// Enqueue pushes a hand-off record and wakes the loop with one byte on
// the wake pipe. The wake is coalesced: one byte may cover many
// records, and a full pipe means a wake is already pending.
func (o *wrk) Enqueue(itm sckque.Item) bool {
	if !o.que.Push(itm) {
		return false
	}

	o.wake()
	return true
}

func (o *wrk) wake() {
	var b = [1]byte{1}

	for {
		_, e := unix.Write(o.pwr, b[:])

		if e == unix.EINTR {
			continue
		}

		return
	}
}

func (o *wrk) Start(ctx context.Context) liberr.Error {
	o.mux.Lock()
	defer o.mux.Unlock()

	if o.run.Load() {
		return ErrorWorkerRunning.Error(nil)
	}

	o.don = make(chan struct{})
	o.run.Store(true)

	go o.loop(ctx)

	return nil
}

func (o *wrk) Stop(ctx context.Context) liberr.Error {
	o.run.Store(false)
	o.wake()

	select {
	case <-o.Done():
		// a worker never started still holds its pipe and poller
		o.cleanup()
		return nil
	case <-ctx.Done():
		return ErrorWorkerStop.Error(ctx.Err())
	}
}

func (o *wrk) loop(ctx context.Context) {
	o.mux.Lock()
	don := o.don
	o.mux.Unlock()

	defer func() {
		o.cleanup()
		o.run.Store(false)
		close(don)
	}()

	o.logEntry(loglvl.InfoLevel, "worker loop is starting")
	o.swp = time.Now()

	for o.run.Load() {
		if ctx.Err() != nil {
			return
		}

		err := o.pol.Wait(waitTick, func(fd int, ev libplr.EventFlag) {
			if fd == o.prd {
				o.onWake()
			} else {
				o.drive(fd, ev)
			}
		})

		if err != nil {
			o.fctError(err)
			o.logEntry(loglvl.ErrorLevel, "worker loop has failed: %v", err)
			return
		}

		o.sweepIdle()
	}
}

// onWake drains the wake pipe, then the hand-off queue.
func (o *wrk) onWake() {
	var b [256]byte

	for {
		n, e := unix.Read(o.prd, b[:])

		if e == unix.EINTR {
			continue
		}

		if e != nil || n < len(b) {
			break
		}
	}

	for {
		itm, ok := o.que.Pop()
		if !ok {
			return
		}

		o.attach(itm)
	}
}

// attach creates or recycles the registry slot for a handed-off
// descriptor and registers it with the demultiplexer.
func (o *wrk) attach(itm sckque.Item) {
	cn := o.reg.CreateOrReset(itm.FD, itm.Events, o, o.fct)

	if err := cn.Register(); err != nil {
		// a recycled number may carry a stale registration
		if err = o.pol.Modify(itm.FD, itm.Events); err != nil {
			o.fctError(err)
			cn.CloseSocket()
			if f := o.fcl.Load(); f != nil {
				f()
			}
			return
		}
	}

	o.mux.Lock()
	o.fds[itm.FD] = struct{}{}
	o.mux.Unlock()

	o.logEntry(loglvl.DebugLevel, "descriptor %d attached", itm.FD)
}

func (o *wrk) closeConn(cn *libcon.Connection) {
	fd := cn.FD()
	cn.CloseSocket()

	o.mux.Lock()
	_, own := o.fds[fd]

	if own {
		delete(o.fds, fd)
	}

	o.mux.Unlock()

	if own {
		o.fctInfo(cn, libcon.ConnectionClose)

		if f := o.fcl.Load(); f != nil {
			f()
		}
	}
}

// sweepIdle closes connections with no traffic for longer than the
// configured idle timeout. It runs at most once per wait tick.
func (o *wrk) sweepIdle() {
	if o.idl <= 0 || time.Since(o.swp) < time.Second {
		return
	}

	o.swp = time.Now()

	o.mux.Lock()
	lst := make([]int, 0, len(o.fds))

	for fd := range o.fds {
		lst = append(lst, fd)
	}

	o.mux.Unlock()

	for _, fd := range lst {
		if cn := o.reg.Get(fd); cn != nil && !cn.Disconnected() {
			if time.Since(cn.LastIO()) > o.idl {
				o.logEntry(loglvl.DebugLevel, "descriptor %d idle for too long", fd)
				o.closeConn(cn)
			}
		}
	}
}

// cleanup closes every owned connection and the worker resources. It
// runs once, whether the loop exits or the worker never started.
func (o *wrk) cleanup() {
	o.clo.Do(func() {
		o.mux.Lock()
		lst := make([]int, 0, len(o.fds))

		for fd := range o.fds {
			lst = append(lst, fd)
		}

		o.mux.Unlock()

		for _, fd := range lst {
			if cn := o.reg.Get(fd); cn != nil {
				o.closeConn(cn)
			}
		}

		_ = o.pol.Unregister(o.prd)
		_ = unix.Close(o.prd)
		_ = unix.Close(o.pwr)
		_ = o.pol.Close()

		o.logEntry(loglvl.InfoLevel, "worker loop is gone")
	})
}
