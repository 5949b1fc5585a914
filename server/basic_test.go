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

// basic_test.go provides fundamental operational tests for the socket
// server: lifecycle, framed echo round trips, session end on handler
// completion, and graceful shutdown.
package server_test

import (
	"bytes"
	"context"
	"io"
	"time"

	scksrv "github.com/nabbar/dbfront/server"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Server Basic Operations", func() {
	var (
		ctx context.Context
		cnl context.CancelFunc
		srv scksrv.Server
		adr string
	)

	BeforeEach(func() {
		ctx, cnl = context.WithTimeout(x, 60*time.Second)
		adr = getTestAddress()
		srv = createServer(adr)
	})

	AfterEach(func() {
		if srv != nil {
			_ = srv.Shutdown(ctx)
		}

		if cnl != nil {
			cnl()
		}
	})

	It("should start and stop", func() {
		startServer(ctx, srv)
		waitForServerRunning(srv, 2*time.Second)

		Expect(srv.IsGone()).To(BeFalse())

		Expect(srv.Shutdown(ctx)).To(BeNil())
		Expect(srv.IsRunning()).To(BeFalse())

		Eventually(srv.IsGone, 2*time.Second).Should(BeTrue())
		Expect(srv.Done()).To(BeClosed())
	})

	It("should refuse a second Listen while running", func() {
		startServer(ctx, srv)
		waitForServerRunning(srv, 2*time.Second)

		err := srv.Listen(ctx)
		Expect(err).ToNot(BeNil())
		Expect(err.IsCode(scksrv.ErrorServerRunning)).To(BeTrue())
	})

	It("should echo one framed packet", func() {
		startServer(ctx, srv)
		waitForServerRunning(srv, 2*time.Second)

		con := connectClient(adr)

		defer func() {
			_ = con.Close()
		}()

		sendFrame(con, 0x41, []byte("hello"))

		typ, pay := recvFrame(con)
		Expect(typ).To(Equal(byte(0x41)))
		Expect(pay).To(Equal([]byte("hello")))
	})

	It("should echo many packets in order on one session", func() {
		startServer(ctx, srv)
		waitForServerRunning(srv, 2*time.Second)

		con := connectClient(adr)

		defer func() {
			_ = con.Close()
		}()

		for i := 1; i <= 20; i++ {
			msg := bytes.Repeat([]byte{byte(i)}, i*11)
			sendFrame(con, byte(i), msg)

			typ, pay := recvFrame(con)
			Expect(typ).To(Equal(byte(i)))
			Expect(pay).To(Equal(msg))
		}
	})

	It("should echo a payload larger than the socket buffer", func() {
		startServer(ctx, srv)
		waitForServerRunning(srv, 2*time.Second)

		con := connectClient(adr)

		defer func() {
			_ = con.Close()
		}()

		// the response does not fit the write buffer: the state
		// machine must flush and re-arm until it drains
		pay := bytes.Repeat([]byte{0xC3}, 4*8192)

		Expect(con.SetWriteDeadline(time.Now().Add(5 * time.Second))).To(Succeed())
		_, err := con.Write(frame(0x10, pay))
		Expect(err).To(Succeed())

		Expect(con.SetReadDeadline(time.Now().Add(5 * time.Second))).To(Succeed())

		hdr := make([]byte, 5)
		_, err = io.ReadFull(con, hdr)
		Expect(err).To(Succeed())
		Expect(hdr[0]).To(Equal(byte(0x10)))

		got := make([]byte, len(pay))
		_, err = io.ReadFull(con, got)
		Expect(err).To(Succeed())
		Expect(got).To(Equal(pay))
	})

	It("should close the session once the handler is done", func() {
		one, err := scksrv.New(nil, onceFactory, createDefaultConfig(adr))
		Expect(err).To(BeNil())

		startServer(ctx, one)
		waitForServerRunning(one, 2*time.Second)

		defer func() {
			_ = one.Shutdown(ctx)
		}()

		con := connectClient(adr)

		defer func() {
			_ = con.Close()
		}()

		sendFrame(con, 0x01, []byte("bye"))

		typ, pay := recvFrame(con)
		Expect(typ).To(Equal(byte(0x01)))
		Expect(pay).To(Equal([]byte("bye")))

		Expect(con.SetReadDeadline(time.Now().Add(2 * time.Second))).To(Succeed())

		_, err2 := con.Read(make([]byte, 1))
		Expect(err2).To(Equal(io.EOF))

		waitForConnections(one, 0, 2*time.Second)
	})

	It("should count open connections", func() {
		startServer(ctx, srv)
		waitForServerRunning(srv, 2*time.Second)

		var cls []io.Closer

		for i := 0; i < 3; i++ {
			cls = append(cls, connectClient(adr))
		}

		waitForConnections(srv, 3, 2*time.Second)

		for _, c := range cls {
			_ = c.Close()
		}

		waitForConnections(srv, 0, 2*time.Second)
	})
})
