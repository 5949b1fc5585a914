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

// helper_test.go provides the shared fixtures of the connection suite:
// a minimal owning worker backed by a real demultiplexer, socket pair
// construction, and peer-side read and write helpers.
package connection_test

import (
	libplr "github.com/nabbar/dbfront/poller"
	"golang.org/x/sys/unix"

	. "github.com/onsi/gomega"
)

type testWorker struct {
	id  int
	pol libplr.Poller
}

func (w *testWorker) ID() int {
	return w.id
}

func (w *testWorker) Poller() libplr.Poller {
	return w.pol
}

func newTestWorker() *testWorker {
	pol, err := libplr.New()
	Expect(err).To(BeNil())

	return &testWorker{
		id:  0,
		pol: pol,
	}
}

// newSocketPair returns a non blocking unix stream socket pair: the
// first descriptor plays the server side, the second the peer.
func newSocketPair() (int, int) {
	sfd, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	Expect(err).To(Succeed())

	return sfd[0], sfd[1]
}

// peerWrite pushes all given bytes into the peer side of the pair.
func peerWrite(fd int, p []byte) {
	for len(p) > 0 {
		n, err := unix.Write(fd, p)

		if err == unix.EINTR || err == unix.EAGAIN {
			continue
		}

		Expect(err).To(Succeed())
		p = p[n:]
	}
}

// peerDrain collects whatever is currently readable on the peer side.
func peerDrain(fd int) []byte {
	var (
		out []byte
		buf = make([]byte, 4096)
	)

	for {
		n, err := unix.Read(fd, buf)

		if n > 0 {
			out = append(out, buf[:n]...)
			continue
		}

		if err == unix.EINTR {
			continue
		}

		return out
	}
}
