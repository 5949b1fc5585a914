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

// Package server hosts the listening socket of the front-end and the
// acceptor thread distributing accepted descriptors over the worker
// pool by round-robin. Apart from the per-worker hand-off queue and
// the atomic open connection counter that workers decrement when a
// session closes, no state is shared between the acceptor and the
// workers.
package server

import (
	"context"
	"net"

	sckcfg "github.com/nabbar/dbfront/config"
	libcon "github.com/nabbar/dbfront/connection"
	hdl "github.com/nabbar/dbfront/handler"
	libatm "github.com/nabbar/golib/atomic"
	liberr "github.com/nabbar/golib/errors"
	liblog "github.com/nabbar/golib/logger"
)

// UpdateConn lets the caller tune an accepted socket descriptor before
// it is handed off to a worker, typically to set extra socket options.
type UpdateConn func(fd int)

// Server is the socket front-end instance.
type Server interface {
	// Listen binds the listening socket, starts the worker pool and
	// runs the acceptor loop until the context ends or Shutdown is
	// called. It blocks for the life of the server.
	Listen(ctx context.Context) liberr.Error

	// Shutdown stops accepting, stops every worker and closes every
	// open connection, bounded by the given context.
	Shutdown(ctx context.Context) liberr.Error

	// Close is Shutdown with an internal deadline.
	Close() error

	// Done closes when the server is fully stopped.
	Done() <-chan struct{}

	// IsRunning reports whether the acceptor loop is active.
	IsRunning() bool

	// IsGone reports whether the server holds no resource: true before
	// the first Listen and after a complete stop.
	IsGone() bool

	// OpenConnections returns the number of currently open sessions.
	OpenConnections() int64

	// RegisterFuncError sets the asynchronous error callback.
	RegisterFuncError(f libcon.FuncError)

	// RegisterFuncInfo sets the connection event callback.
	RegisterFuncInfo(f libcon.FuncInfo)

	// RegisterLogger sets the logger provider.
	RegisterLogger(f liblog.FuncLog)
}

// New builds a stopped server. The factory provides one protocol
// handler per session; upd may be nil. The configuration is validated
// and the listening address resolved before returning.
func New(upd UpdateConn, fct hdl.Factory, cfg sckcfg.Server) (Server, liberr.Error) {
	if fct == nil {
		return nil, ErrorInvalidHandler.Error(nil)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	adr, e := net.ResolveTCPAddr(cfg.Network.Code(), cfg.Address)
	if e != nil {
		return nil, ErrorInvalidAddress.Error(e)
	}

	s := &srv{
		cfg: cfg,
		adr: adr,
		upd: upd,
		fct: fct,
		lfd: -1,
		prd: -1,
		pwr: -1,
		don: nil,
		fe:  libatm.NewValue[libcon.FuncError](),
		fi:  libatm.NewValue[libcon.FuncInfo](),
		fl:  libatm.NewValue[liblog.FuncLog](),
	}

	s.gon.Store(true)

	return s, nil
}
