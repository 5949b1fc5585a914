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

// Package worker implements the I/O threads of the socket front-end.
// Each worker owns an event demultiplexer, a wake pipe and a lock-free
// hand-off queue; after hand-off, all I/O and protocol work of a
// connection stays on its worker, so the queue is the only cross
// thread structure of the steady state.
package worker

import (
	"context"
	"time"

	libcon "github.com/nabbar/dbfront/connection"
	hdl "github.com/nabbar/dbfront/handler"
	libplr "github.com/nabbar/dbfront/poller"
	sckque "github.com/nabbar/dbfront/queue"
	libatm "github.com/nabbar/golib/atomic"
	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"
	"golang.org/x/sys/unix"
)

// Worker is one I/O thread of the pool.
type Worker interface {
	// ID returns the stable worker identifier, zero based.
	ID() int

	// Poller returns the event demultiplexer owned by this worker.
	Poller() libplr.Poller

	// Enqueue hands a descriptor off to this worker and wakes its
	// loop. It returns false when the hand-off queue is full: the
	// caller applies its backpressure policy.
	Enqueue(itm sckque.Item) bool

	// Start launches the worker loop goroutine.
	Start(ctx context.Context) liberr.Error

	// Stop signals the loop to exit and waits for it, bounded by the
	// given context. On exit the worker has closed all its
	// connections, its wake pipe and its demultiplexer.
	Stop(ctx context.Context) liberr.Error

	// Done closes when the loop has fully exited.
	Done() <-chan struct{}

	// IsRunning reports whether the loop is active.
	IsRunning() bool

	// Connections returns the number of sessions currently owned.
	Connections() int

	// RegisterFuncError sets the asynchronous error callback.
	RegisterFuncError(f libcon.FuncError)

	// RegisterFuncInfo sets the connection event callback.
	RegisterFuncInfo(f libcon.FuncInfo)

	// RegisterFuncClose sets the hook invoked once per closed session.
	RegisterFuncClose(f func())

	// RegisterLogger sets the logger provider.
	RegisterLogger(f liblog.FuncLog)
}

// New builds a stopped worker. The registry is shared by the pool; the
// factory provides one protocol handler per session; idle closes
// silent connections when positive.
func New(id int, reg *libcon.Registry, fct hdl.Factory, queueSize int, idle time.Duration) (Worker, liberr.Error) {
	pol, err := libplr.New()
	if err != nil {
		return nil, err
	}

	var pfd [2]int
	if e := unix.Pipe2(pfd[:], unix.O_NONBLOCK|unix.O_CLOEXEC); e != nil {
		_ = pol.Close()
		return nil, ErrorWorkerPipe.Error(e)
	}

	if err = pol.Register(pfd[0], libplr.Read); err != nil {
		_ = unix.Close(pfd[0])
		_ = unix.Close(pfd[1])
		_ = pol.Close()
		return nil, err
	}

	w := &wrk{
		id:  id,
		pol: pol,
		reg: reg,
		fct: fct,
		que: sckque.New(queueSize),
		prd: pfd[0],
		pwr: pfd[1],
		idl: idle,
		fds: make(map[int]struct{}),
		don: make(chan struct{}),
		fe:  libatm.NewValue[libcon.FuncError](),
		fi:  libatm.NewValue[libcon.FuncInfo](),
		fcl: libatm.NewValue[func()](),
		fl:  libatm.NewValue[liblog.FuncLog](),
	}

	close(w.don)

	return w, nil
}
