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

package poller

import (
	liberr "github.com/nabbar/golib/errors"
	"golang.org/x/sys/unix"
)

const maxWaitEvents = 128

// New returns an epoll backed Poller.
func New() (Poller, liberr.Error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, ErrorPollerCreate.Error(err)
	}

	return &plr{
		efd: fd,
		evt: make([]unix.EpollEvent, maxWaitEvents),
	}, nil
}

type plr struct {
	efd int
	evt []unix.EpollEvent
}

func epollMask(ev EventFlag) uint32 {
	var m uint32 = unix.EPOLLRDHUP

	if ev.Has(Read) {
		m |= unix.EPOLLIN
	}

	if ev.Has(Write) {
		m |= unix.EPOLLOUT
	}

	return m
}

func eventMask(ep uint32) EventFlag {
	var ev EventFlag

	// hangup and error conditions surface as read-readiness so that the
	// state machine observes EOF or the socket error on its next read
	if ep&(unix.EPOLLIN|unix.EPOLLRDHUP|unix.EPOLLHUP|unix.EPOLLERR) != 0 {
		ev |= Read
	}

	if ep&unix.EPOLLOUT != 0 {
		ev |= Write
	}

	return ev
}

func (o *plr) Register(fd int, ev EventFlag) liberr.Error {
	e := unix.EpollCtl(o.efd, unix.EPOLL_CTL_ADD, fd, &unix.EpollEvent{
		Events: epollMask(ev),
		Fd:     int32(fd),
	})

	if e != nil {
		return ErrorPollerRegister.Error(e)
	}

	return nil
}

func (o *plr) Modify(fd int, ev EventFlag) liberr.Error {
	e := unix.EpollCtl(o.efd, unix.EPOLL_CTL_MOD, fd, &unix.EpollEvent{
		Events: epollMask(ev),
		Fd:     int32(fd),
	})

	if e != nil {
		return ErrorPollerModify.Error(e)
	}

	return nil
}

func (o *plr) Unregister(fd int) liberr.Error {
	e := unix.EpollCtl(o.efd, unix.EPOLL_CTL_DEL, fd, nil)

	if e != nil && e != unix.ENOENT && e != unix.EBADF {
		return ErrorPollerUnregister.Error(e)
	}

	return nil
}

func (o *plr) Wait(msec int, fct FuncEvent) liberr.Error {
	n, e := unix.EpollWait(o.efd, o.evt, msec)

	if e == unix.EINTR {
		return nil
	} else if e != nil {
		return ErrorPollerWait.Error(e)
	}

	for i := 0; i < n; i++ {
		fct(int(o.evt[i].Fd), eventMask(o.evt[i].Events))
	}

	return nil
}

func (o *plr) Close() error {
	return unix.Close(o.efd)
}
