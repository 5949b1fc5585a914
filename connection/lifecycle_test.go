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

// lifecycle_test.go validates the read path semantics over partial
// input, the monotone disconnect latch on peer loss, close idempotency
// and the slot reset for a fresh session.
package connection_test

import (
	"bytes"

	libcon "github.com/nabbar/dbfront/connection"
	hdl "github.com/nabbar/dbfront/handler"
	libplr "github.com/nabbar/dbfront/poller"
	"golang.org/x/sys/unix"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Connection Lifecycle", func() {
	var (
		wkr  *testWorker
		cn   *libcon.Connection
		peer int
	)

	BeforeEach(func() {
		wkr = newTestWorker()

		var fd int
		fd, peer = newSocketPair()
		cn = libcon.New(fd, libplr.Read, wkr, nil)
	})

	AfterEach(func() {
		cn.CloseSocket()
		_ = unix.Close(peer)
		_ = wkr.pol.Close()
	})

	Context("read path", func() {
		It("should report no progress on an empty socket without disconnecting", func() {
			Expect(cn.RefillReadBuffer()).To(BeFalse())
			Expect(cn.Disconnected()).To(BeFalse())
		})

		It("should buffer what the peer sent", func() {
			peerWrite(peer, []byte("abc"))

			Expect(cn.RefillReadBuffer()).To(BeTrue())
			Expect(cn.Buffered()).To(Equal(3))
		})

		It("should serve reads across partial arrivals", func() {
			peerWrite(peer, []byte("hell"))

			out := make([]byte, 4)
			Expect(cn.ReadBytes(out)).To(Succeed())
			Expect(out).To(Equal([]byte("hell")))

			// header consumed, payload paused: would-block, no spin
			err := cn.ReadBytes(make([]byte, 2))
			Expect(hdl.IsWouldBlock(err)).To(BeTrue())
			Expect(cn.Disconnected()).To(BeFalse())

			peerWrite(peer, []byte("o!"))

			out = make([]byte, 2)
			Expect(cn.ReadBytes(out)).To(Succeed())
			Expect(out).To(Equal([]byte("o!")))
		})

		It("should return the bytes in peer order across many fragments", func() {
			var sent []byte

			for i := 0; i < 64; i++ {
				frag := bytes.Repeat([]byte{byte(i)}, 37)
				peerWrite(peer, frag)
				sent = append(sent, frag...)
			}

			got := make([]byte, len(sent))

			for off := 0; off < len(got); {
				end := off + 100
				if end > len(got) {
					end = len(got)
				}

				err := cn.ReadBytes(got[off:end])
				if err != nil {
					Expect(hdl.IsWouldBlock(err)).To(BeTrue())
					continue
				}

				off = end
			}

			Expect(got).To(Equal(sent))
		})

		It("should refuse a read larger than the buffer capacity", func() {
			err := cn.ReadBytes(make([]byte, 9000))
			Expect(err).ToNot(BeNil())
			Expect(hdl.IsWouldBlock(err)).To(BeFalse())
		})

		It("should latch the disconnect on peer close", func() {
			peerWrite(peer, []byte("bye"))
			Expect(unix.Close(peer)).To(Succeed())
			peer = -1

			// buffered bytes still readable
			out := make([]byte, 3)
			Expect(cn.ReadBytes(out)).To(Succeed())
			Expect(out).To(Equal([]byte("bye")))

			Expect(cn.RefillReadBuffer()).To(BeFalse())
			Expect(cn.Disconnected()).To(BeTrue())

			// the latch is monotone
			Expect(cn.RefillReadBuffer()).To(BeFalse())
			Expect(cn.Disconnected()).To(BeTrue())
		})
	})

	Context("write path on a lost peer", func() {
		It("should latch the disconnect on a hard write error", func() {
			Expect(unix.Close(peer)).To(Succeed())
			peer = -1

			pay := bytes.Repeat([]byte{'x'}, 1024)

			var failed bool

			for i := 0; i < 64 && !failed; i++ {
				if err := cn.BufferWriteBytes(pay, 0x01); err != nil {
					failed = true
					break
				}

				if err := cn.FlushWriteBuffer(); err != nil && !hdl.IsWouldBlock(err) {
					failed = true
				}
			}

			Expect(failed).To(BeTrue())
			Expect(cn.Disconnected()).To(BeTrue())
		})
	})

	Context("close", func() {
		It("should be idempotent", func() {
			cn.CloseSocket()
			Expect(cn.Disconnected()).To(BeTrue())

			cn.CloseSocket()
			Expect(cn.Disconnected()).To(BeTrue())
		})
	})

	Context("reset", func() {
		It("should clear the latch, the buffers and the handler", func() {
			var made int

			fct := func() hdl.Handler {
				made++
				return hdl.Func(func(c hdl.Conn) hdl.Status { return hdl.Done })
			}

			fd2, peer2 := newSocketPair()

			defer func() {
				_ = unix.Close(peer2)
			}()

			cn2 := libcon.New(fd2, libplr.Read, wkr, fct)

			Expect(cn2.Protocol()).ToNot(BeNil())
			Expect(cn2.Protocol()).ToNot(BeNil())
			Expect(made).To(Equal(1))

			peerWrite(peer2, []byte("junk"))
			Expect(cn2.RefillReadBuffer()).To(BeTrue())
			cn2.CloseSocket()
			Expect(cn2.Disconnected()).To(BeTrue())

			// the kernel may hand the number back: same slot, new session
			cn2.Reset(libplr.Read, wkr, fct)

			Expect(cn2.Disconnected()).To(BeFalse())
			Expect(cn2.Buffered()).To(Equal(0))
			Expect(cn2.HasPendingWrites()).To(BeFalse())

			Expect(cn2.Protocol()).ToNot(BeNil())
			Expect(made).To(Equal(2))
		})
	})
})
