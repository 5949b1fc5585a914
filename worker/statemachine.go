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
	libcon "github.com/nabbar/dbfront/connection"
	hdl "github.com/nabbar/dbfront/handler"
	libplr "github.com/nabbar/dbfront/poller"
)

// drive resolves a ready descriptor to its connection and advances the
// state machine. A readiness event with no registry slot is stale and
// only clears the registration.
func (o *wrk) drive(fd int, ev libplr.EventFlag) {
	cn := o.reg.Get(fd)

	if cn == nil {
		_ = o.pol.Unregister(fd)
		return
	}

	if ev.Has(libplr.Read) {
		o.fctInfo(cn, libcon.ConnectionRead)
	}

	if ev.Has(libplr.Write) {
		o.fctInfo(cn, libcon.ConnectionWrite)
	}

	o.stateMachine(cn)
}

// stateMachine advances one connection until progress is blocked by a
// specific readiness condition, then re-arms for exactly that
// condition. It is level-triggered in effect: within one invocation it
// loops over flush and protocol processing until the session yields,
// ends, or fails.
func (o *wrk) stateMachine(cn *libcon.Connection) {
	for {
		if cn.Disconnected() {
			o.closeConn(cn)
			return
		}

		if cn.HasPendingWrites() {
			if err := cn.FlushWriteBuffer(); err != nil {
				if hdl.IsWouldBlock(err) {
					o.rearm(cn, libplr.Read|libplr.Write)
					return
				}

				o.closeConn(cn)
				return
			}
		}

		if cn.IsDone() {
			// output drained, end of session
			o.closeConn(cn)
			return
		}

		prt := cn.Protocol()
		if prt == nil {
			o.closeConn(cn)
			return
		}

		switch prt.Process(cn) {
		case hdl.Continue:

		case hdl.NeedRead:
			ev := libplr.Read
			if cn.HasPendingWrites() {
				ev |= libplr.Write
			}

			o.rearm(cn, ev)
			return

		case hdl.NeedWrite:
			o.rearm(cn, libplr.Read|libplr.Write)
			return

		case hdl.Done:
			cn.MarkDone()

		default:
			o.closeConn(cn)
			return
		}
	}
}

func (o *wrk) rearm(cn *libcon.Connection, ev libplr.EventFlag) {
	if err := cn.Arm(ev); err != nil {
		o.fctError(err)
		o.closeConn(cn)
	}
}
