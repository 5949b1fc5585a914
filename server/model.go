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
	"sync"
	"sync/atomic"
	"time"

	sckcfg "github.com/nabbar/dbfront/config"
	libcon "github.com/nabbar/dbfront/connection"
	hdl "github.com/nabbar/dbfront/handler"
	libwrk "github.com/nabbar/dbfront/worker"
	libatm "github.com/nabbar/golib/atomic"
	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"
	loglvl "github.com/nabbar/golib/logger/level"
)

type srv struct {
	cfg sckcfg.Server
	adr *net.TCPAddr
	upd UpdateConn
	fct hdl.Factory

	reg *libcon.Registry
	wks []libwrk.Worker

	cnt atomic.Uint64
	opn atomic.Int64

	mux sync.Mutex
	don chan struct{}
	run atomic.Bool
	gon atomic.Bool

	lfd int
	prd int
	pwr int

	fe libatm.Value[libcon.FuncError]
	fi libatm.Value[libcon.FuncInfo]
	fl libatm.Value[liblog.FuncLog]
}

func (o *srv) IsRunning() bool {
	return o.run.Load()
}

func (o *srv) IsGone() bool {
	return o.gon.Load()
}

func (o *srv) OpenConnections() int64 {
	return o.opn.Load()
}

func (o *srv) Done() <-chan struct{} {
	o.mux.Lock()
	defer o.mux.Unlock()

	if o.don == nil {
		c := make(chan struct{})
		close(c)
		return c
	}

	return o.don
}

func (o *srv) RegisterFuncError(f libcon.FuncError) {
	o.fe.Store(f)
}

func (o *srv) RegisterFuncInfo(f libcon.FuncInfo) {
	o.fi.Store(f)
}

func (o *srv) RegisterLogger(f liblog.FuncLog) {
	o.fl.Store(f)
}

func (o *srv) fctError(e ...error) {
	if f := o.fe.Load(); f != nil && len(e) > 0 {
		f(e...)
	}
}

func (o *srv) fctInfo(local, remote net.Addr, st libcon.ConnState) {
	if f := o.fi.Load(); f != nil {
		f(local, remote, st)
	}
}

func (o *srv) logger() liblog.Logger {
	if f := o.fl.Load(); f != nil {
		if l := f(); l != nil {
			return l
		}
	}

	return liblog.New(context.Background())
}

func (o *srv) logEntry(lvl loglvl.Level, msg string, args ...interface{}) {
	o.logger().Entry(lvl, msg, args...).FieldAdd("bind", o.cfg.Address).Log()
}

func (o *srv) decOpen() {
	o.opn.Add(-1)
	mtrOpenConnections.Dec()
}

// Shutdown stops accepting, stops every worker and waits for the full
// teardown, bounded by the given context.
func (o *srv) Shutdown(ctx context.Context) liberr.Error {
	if o.run.Swap(false) {
		o.wakeAcceptor()
	}

	select {
	case <-o.Done():
		return nil
	case <-ctx.Done():
		return ErrorServerStop.Error(ctx.Err())
	}
}

// Close is Shutdown bounded by an internal deadline.
func (o *srv) Close() error {
	ctx, cnl := context.WithTimeout(context.Background(), 5*time.Second)
	defer cnl()

	if err := o.Shutdown(ctx); err != nil {
		return err
	}

	return nil
}
