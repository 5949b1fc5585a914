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

// creation_test.go tests server initialization and configuration
// validation: proper instance creation, initial state, and the error
// conditions of the construction phase.
package server_test

import (
	scksrv "github.com/nabbar/dbfront/server"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Server Creation", func() {
	Context("with valid configuration", func() {
		It("should create a server with minimal configuration", func() {
			srv := createServer(getTestAddress())

			Expect(srv.IsRunning()).To(BeFalse())
			Expect(srv.IsGone()).To(BeTrue())
			Expect(srv.OpenConnections()).To(Equal(int64(0)))
		})

		It("should report Done as closed before any Listen", func() {
			srv := createServer(getTestAddress())
			Expect(srv.Done()).To(BeClosed())
		})

		It("should accept a connection update function", func() {
			upd := func(fd int) {
				_ = fd
			}

			srv, err := scksrv.New(upd, echoFactory, createDefaultConfig(getTestAddress()))
			Expect(err).To(BeNil())
			Expect(srv).ToNot(BeNil())
		})
	})

	Context("with invalid configuration", func() {
		It("should fail without a handler factory", func() {
			srv, err := scksrv.New(nil, nil, createDefaultConfig(getTestAddress()))

			Expect(srv).To(BeNil())
			Expect(err).ToNot(BeNil())
			Expect(err.IsCode(scksrv.ErrorInvalidHandler)).To(BeTrue())
		})

		It("should fail with an empty address", func() {
			srv, err := scksrv.New(nil, echoFactory, createDefaultConfig(""))

			Expect(srv).To(BeNil())
			Expect(err).ToNot(BeNil())
		})

		It("should fail with an unresolvable address", func() {
			srv, err := scksrv.New(nil, echoFactory, createDefaultConfig("not-an-address"))

			Expect(srv).To(BeNil())
			Expect(err).ToNot(BeNil())
			Expect(err.IsCode(scksrv.ErrorInvalidAddress)).To(BeTrue())
		})
	})
})
